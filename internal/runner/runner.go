// Package runner runs the post-generation hook command of watch mode. A
// new generation restarts a hook that is still running.
package runner

import (
	"fmt"
	"io"
	"os/exec"
	"sync"
)

// Runner manages one child process.
type Runner struct {
	argv    []string
	workDir string
	stdout  io.Writer
	stderr  io.Writer

	mu   sync.Mutex
	cmd  *exec.Cmd
	done chan struct{}
	err  error
}

// New creates a runner for argv. stdout and stderr may be nil to discard
// the output.
func New(argv []string, workDir string, stdout, stderr io.Writer) *Runner {
	return &Runner{
		argv:    argv,
		workDir: workDir,
		stdout:  stdout,
		stderr:  stderr,
	}
}

func (r *Runner) newCmd() (*exec.Cmd, error) {
	if len(r.argv) == 0 {
		return nil, fmt.Errorf("empty hook command")
	}
	cmd := exec.Command(r.argv[0], r.argv[1:]...)
	if r.workDir != "" {
		cmd.Dir = r.workDir
	}
	cmd.Stdout = r.stdout
	cmd.Stderr = r.stderr
	return cmd, nil
}

// wait reaps cmd and records its exit status.
func (r *Runner) wait(cmd *exec.Cmd, done chan struct{}) {
	err := cmd.Wait()
	r.mu.Lock()
	if r.done == done {
		r.err = err
	}
	r.mu.Unlock()
	close(done)
}

// Restart stops and restarts the child process.
func (r *Runner) Restart() error {
	if err := r.Stop(); err != nil {
		return err
	}
	return r.Start()
}

// Wait blocks until the child process exits and returns its exit error.
func (r *Runner) Wait() error {
	r.mu.Lock()
	done := r.done
	r.mu.Unlock()
	if done == nil {
		return nil
	}
	<-done
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Running returns true if the child process is running.
func (r *Runner) Running() bool {
	r.mu.Lock()
	done := r.done
	r.mu.Unlock()
	if done == nil {
		return false
	}
	select {
	case <-done:
		return false
	default:
		return true
	}
}
