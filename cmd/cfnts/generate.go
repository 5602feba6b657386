package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/cfnts/cfnts/internal/buildcache"
	"github.com/cfnts/cfnts/internal/config"
	"github.com/cfnts/cfnts/internal/generate"
	"github.com/cfnts/cfnts/internal/logging"
	"github.com/cfnts/cfnts/internal/source"
)

// generateFlags override config keys when set.
type generateFlags struct {
	schemas       string
	output        string
	docs          string
	include       []string
	exactOptional bool
	workers       int
	strict        bool
	quiet         bool
	noCache       bool
	clean         bool
}

func (f *generateFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.schemas, "schemas", "", "directory of resource schema documents")
	fs.StringVarP(&f.output, "out", "o", "", "output directory")
	fs.StringVar(&f.docs, "docs", "", "supplemental documentation file")
	fs.StringSliceVar(&f.include, "include", nil, "only generate type names matching these globs")
	fs.BoolVar(&f.exactOptional, "exact-optional", false, "add \"| undefined\" to optional properties")
	fs.IntVar(&f.workers, "workers", 0, "parallel documents (default: one per CPU)")
	fs.BoolVar(&f.strict, "strict", false, "treat diagnostics as errors")
	fs.BoolVar(&f.quiet, "quiet", false, "suppress diagnostic warnings")
	fs.BoolVar(&f.noCache, "no-cache", false, "ignore and do not write the build cache")
	fs.BoolVar(&f.clean, "clean", false, "delete the build cache before generating")
}

// apply copies the flags that were set onto cfg and validates the result.
func (f *generateFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	fs := cmd.Flags()
	if fs.Changed("schemas") {
		cfg.Schemas = f.schemas
	}
	if fs.Changed("out") {
		cfg.Output = f.output
	}
	if fs.Changed("docs") {
		cfg.Docs = f.docs
	}
	if fs.Changed("include") {
		cfg.Include = f.include
	}
	if fs.Changed("exact-optional") {
		cfg.ExactOptional = f.exactOptional
	}
	if fs.Changed("workers") {
		cfg.Workers = f.workers
	}
	if fs.Changed("strict") {
		cfg.Strict = f.strict
	}
	if fs.Changed("quiet") {
		cfg.Quiet = f.quiet
	}
	if f.clean && cfg.Cache != "" {
		buildcache.Delete(cfg.Cache)
	}
	if f.noCache {
		cfg.Cache = ""
	}
	return cfg.Validate()
}

func newGenerateCmd(g *globalFlags) *cobra.Command {
	f := &generateFlags{}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate TypeScript modules from resource schemas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := f.apply(cmd, cfg); err != nil {
				return err
			}
			gen, err := newGenerator(cfg)
			if err != nil {
				return err
			}
			return runOnce(cmd.Context(), gen, cfg, cmd.OutOrStdout())
		},
	}
	f.register(cmd)
	return cmd
}

func newGenerator(cfg *config.Config) (*generate.Generator, error) {
	opts := []generate.Option{generate.WithLogger(logging.Logger())}
	if cfg.Docs != "" {
		docs, err := source.LoadDocFile(cfg.Docs)
		if err != nil {
			return nil, err
		}
		opts = append(opts, generate.WithDocs(docs))
	}
	src := &source.DirSource{Dir: cfg.Schemas, Include: cfg.Include}
	return generate.New(cfg, src, opts...), nil
}

// runOnce runs the generator and reports the outcome. Failed documents and
// strict-mode diagnostics make the run fail.
func runOnce(ctx context.Context, gen *generate.Generator, cfg *config.Config, out io.Writer) error {
	res, err := gen.Run(ctx)
	if err != nil {
		return err
	}
	for _, f := range res.Failed {
		logging.Error("document failed", "type", f.TypeName, "origin", f.Origin, "error", f.Err)
	}
	diags := gen.Diagnostics()
	fmt.Fprintf(out, "%d generated, %d unchanged, %d failed (%s) -> %s\n",
		len(res.Generated), len(res.Cached), len(res.Failed), diags.Summary(), cfg.Output)

	if len(res.Failed) > 0 {
		return fmt.Errorf("%d document(s) failed", len(res.Failed))
	}
	if cfg.Strict && diags.HasErrors() {
		return fmt.Errorf("strict mode: %s", diags.Summary())
	}
	return nil
}
