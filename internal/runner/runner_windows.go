//go:build windows

package runner

import (
	"fmt"
	"time"
)

// Start starts the child process.
func (r *Runner) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cmd, err := r.newCmd()
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting hook %q: %w", r.argv[0], err)
	}

	r.cmd, r.done, r.err = cmd, make(chan struct{}), nil
	go r.wait(cmd, r.done)
	return nil
}

// Stop kills the child process. Windows has no SIGTERM for console
// processes.
func (r *Runner) Stop() error {
	r.mu.Lock()
	cmd, done := r.cmd, r.done
	r.mu.Unlock()

	if cmd == nil || cmd.Process == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	default:
	}

	cmd.Process.Kill()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		<-done
	}
	return nil
}
