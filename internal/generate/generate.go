// Package generate drives the compiler over a set of schema documents and
// writes the TypeScript modules, the shared types module and the index.
package generate

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/cfnts/cfnts/internal/buildcache"
	"github.com/cfnts/cfnts/internal/config"
	"github.com/cfnts/cfnts/internal/diagnostic"
	"github.com/cfnts/cfnts/internal/metadata"
	"github.com/cfnts/cfnts/internal/render"
	"github.com/cfnts/cfnts/internal/schema"
	"github.com/cfnts/cfnts/internal/source"
	"github.com/cfnts/cfnts/internal/walker"
)

const (
	SharedFile = "shared.ts"
	IndexFile  = "index.ts"
)

// Failure is a document that could not be compiled.
type Failure struct {
	TypeName string
	Origin   string
	Err      error
}

func (f Failure) Error() string {
	return fmt.Sprintf("%s (%s): %v", f.TypeName, f.Origin, f.Err)
}

// Result summarizes one generation run.
type Result struct {
	// Generated and Cached list type names, sorted.
	Generated []string
	Cached    []string
	Failed    []Failure
	// Removed lists stale output files deleted by the run.
	Removed []string
}

// Option configures a Generator.
type Option func(*Generator)

// WithDocs sets the supplemental documentation.
func WithDocs(d *source.DocFile) Option {
	return func(g *Generator) { g.docs = d }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) { g.logger = l }
}

// Generator compiles documents from a source into an output directory.
// Runs are serialized; a Generator may be reused, e.g. by watch mode.
type Generator struct {
	cfg    *config.Config
	src    source.SchemaSource
	docs   *source.DocFile
	logger *slog.Logger

	mu        sync.Mutex
	collector *diagnostic.Collector
}

// New creates a generator.
func New(cfg *config.Config, src source.SchemaSource, opts ...Option) *Generator {
	g := &Generator{cfg: cfg, src: src, logger: slog.Default()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Diagnostics returns the collector of the last run.
func (g *Generator) Diagnostics() *diagnostic.Collector {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.collector
}

// Run generates every document. A document that fails to compile is
// recorded in the result and does not stop the others; the returned error
// covers listing, writing and cancellation.
func (g *Generator) Run(ctx context.Context) (*Result, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	schemas, err := g.src.Schemas(ctx)
	if err != nil {
		return nil, err
	}
	schemas, dups := dedupe(schemas)

	collector := diagnostic.NewCollector(g.cfg.Strict, g.cfg.Quiet)
	g.collector = collector
	var reporter diagnostic.Reporter = collector
	if !g.cfg.Quiet {
		reporter = diagnostic.NewLogReporter(g.logger, collector)
	}

	var cache *buildcache.Cache
	if g.cfg.Cache != "" {
		cache = buildcache.Open(g.cfg.Cache, g.cfg.Fingerprint())
	}

	opts := g.cfg.RenderOptions()
	results := make([]docResult, len(schemas))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.workers())
	for i, s := range schemas {
		eg.Go(func() error {
			select {
			case <-egCtx.Done():
				return egCtx.Err()
			default:
			}
			r, err := g.one(s, reporter, cache, opts)
			results[i] = r
			return err
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	res := &Result{Failed: dups}
	var files []*render.File
	seen := make(map[string]bool)
	for i, r := range results {
		s := schemas[i]
		switch {
		case r.err != nil:
			res.Failed = append(res.Failed, Failure{TypeName: s.TypeName, Origin: s.Origin, Err: r.err})
			continue
		case r.cached:
			res.Cached = append(res.Cached, s.TypeName)
		default:
			res.Generated = append(res.Generated, s.TypeName)
		}
		seen[s.TypeName] = true
		files = append(files, &render.File{TypeName: s.TypeName, Path: render.FilePath(s.TypeName)})
	}
	sort.Strings(res.Generated)
	sort.Strings(res.Cached)

	if err := writeFile(filepath.Join(g.cfg.Output, SharedFile), render.FormatShared(opts)); err != nil {
		return nil, err
	}
	if err := writeFile(filepath.Join(g.cfg.Output, IndexFile), render.FormatIndex(files)); err != nil {
		return nil, err
	}

	if cache != nil {
		res.Removed = g.removeStale(cache, seen, schemas)
		cache.Prune(seen)
		if err := buildcache.Save(g.cfg.Cache, cache); err != nil {
			g.logger.Warn("failed to save build cache", "path", g.cfg.Cache, "error", err)
		}
	}

	g.logger.Info("generation complete",
		"generated", len(res.Generated),
		"cached", len(res.Cached),
		"failed", len(res.Failed),
		"diagnostics", collector.Summary())
	return res, nil
}

func (g *Generator) workers() int {
	if g.cfg.Workers > 0 {
		return g.cfg.Workers
	}
	return runtime.GOMAXPROCS(0)
}

type docResult struct {
	cached bool
	err    error
}

// one compiles and writes a single document. Compile problems land in
// docResult.err; the returned error is reserved for write failures.
func (g *Generator) one(s source.Schema, reporter diagnostic.Reporter, cache *buildcache.Cache, opts render.Options) (docResult, error) {
	hash := buildcache.Hash(s.Data, g.docs.Fingerprint(s.TypeName))
	out := filepath.Join(g.cfg.Output, render.FilePath(s.TypeName))
	if cache.Fresh(s.TypeName, hash) {
		g.logger.Debug("unchanged, skipping", "type", s.TypeName)
		return docResult{cached: true}, nil
	}

	counter := &countingReporter{next: reporter}
	rt, err := Compile(s.Data, counter, g.docs)
	if err != nil {
		return docResult{err: err}, nil
	}
	if rt.TypeName != s.TypeName {
		return docResult{err: fmt.Errorf("document declares type %q", rt.TypeName)}, nil
	}

	f := render.RenderResource(rt, opts)
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return docResult{}, fmt.Errorf("creating output directory: %w", err)
	}
	if err := writeFile(out, f.Format(opts)); err != nil {
		return docResult{}, err
	}
	g.logger.Debug("generated", "type", s.TypeName, "path", out)

	// In strict mode diagnostics are errors; keep such documents out of the
	// cache so the next run reports them again.
	if cache != nil && !(g.cfg.Strict && counter.count() > 0) {
		cache.Record(s.TypeName, hash, out)
	}
	return docResult{}, nil
}

// Compile parses and walks one document. Invariant violations inside the
// compiler surface as errors instead of panics.
func Compile(data []byte, reporter diagnostic.Reporter, docs *source.DocFile) (rt *metadata.ResourceType, err error) {
	defer func() {
		if r := recover(); r != nil {
			rt, err = nil, fmt.Errorf("internal compiler error: %v", r)
		}
	}()

	doc, err := schema.ParseDocument(data)
	if err != nil {
		return nil, fmt.Errorf("parsing schema: %w", err)
	}
	opts := []walker.Option{walker.WithReporter(reporter)}
	if docs != nil {
		opts = append(opts, walker.WithDocSource(docs))
	}
	return walker.Build(doc, opts...), nil
}

// removeStale deletes outputs of cached types that are no longer present,
// unless another current type now writes the same path.
func (g *Generator) removeStale(cache *buildcache.Cache, seen map[string]bool, schemas []source.Schema) []string {
	current := make(map[string]bool, len(schemas))
	for _, s := range schemas {
		current[filepath.Join(g.cfg.Output, render.FilePath(s.TypeName))] = true
	}
	var removed []string
	for typeName, e := range cache.Entries {
		if seen[typeName] || current[e.Output] {
			continue
		}
		if err := os.Remove(e.Output); err == nil {
			g.logger.Info("removed stale output", "type", typeName, "path", e.Output)
			removed = append(removed, e.Output)
		}
	}
	sort.Strings(removed)
	return removed
}

// dedupe keeps the first document of each type name and of each output
// path, and reports the rest as failures.
func dedupe(schemas []source.Schema) ([]source.Schema, []Failure) {
	first := make(map[string]string)
	paths := make(map[string]string)
	var out []source.Schema
	var failed []Failure
	for _, s := range schemas {
		if origin, ok := first[s.TypeName]; ok {
			failed = append(failed, Failure{
				TypeName: s.TypeName,
				Origin:   s.Origin,
				Err:      fmt.Errorf("duplicate of %s", origin),
			})
			continue
		}
		path := render.FilePath(s.TypeName)
		if other, ok := paths[path]; ok {
			failed = append(failed, Failure{
				TypeName: s.TypeName,
				Origin:   s.Origin,
				Err:      fmt.Errorf("output path %s is already used by %s", path, other),
			})
			continue
		}
		first[s.TypeName] = s.Origin
		paths[path] = s.TypeName
		out = append(out, s)
	}
	return out, failed
}

// countingReporter counts the diagnostics of one document.
type countingReporter struct {
	next diagnostic.Reporter

	mu sync.Mutex
	n  int
}

func (r *countingReporter) Report(d diagnostic.Diagnostic) {
	r.mu.Lock()
	r.n++
	r.mu.Unlock()
	r.next.Report(d)
}

func (r *countingReporter) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.n
}

func writeFile(path, content string) error {
	// Write-if-changed keeps downstream file watchers quiet.
	existing, err := os.ReadFile(path)
	if err == nil && string(existing) == content {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
