package config

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-json-experiment/json"
	"gopkg.in/yaml.v3"

	"github.com/cfnts/cfnts/internal/logging"
	"github.com/cfnts/cfnts/internal/metadata"
	"github.com/cfnts/cfnts/internal/render"
)

// FileNames are the config files discovered in a directory, in order.
var FileNames = []string{"cfnts.yaml", "cfnts.yml"}

// Config represents the cfnts configuration.
type Config struct {
	// Schemas is the directory holding resource schema documents.
	Schemas string `yaml:"schemas" json:"schemas"`
	// Docs is an optional supplemental documentation file.
	Docs string `yaml:"docs,omitempty" json:"docs,omitempty"`
	// Output is the directory generated modules are written to.
	Output string `yaml:"output" json:"output"`
	// Include restricts generation to type names matching one of the
	// globs, e.g. "AWS::S3::*".
	Include []string `yaml:"include,omitempty" json:"include,omitempty"`

	SharedModule   string            `yaml:"sharedModule,omitempty" json:"sharedModule,omitempty"`
	ExactOptional  bool              `yaml:"exactOptional,omitempty" json:"exactOptional,omitempty"`
	SortProperties bool              `yaml:"sortProperties" json:"sortProperties"`
	WellKnownTypes map[string]string `yaml:"wellKnownTypes,omitempty" json:"wellKnownTypes,omitempty"`

	// Workers bounds parallel document processing; 0 means one per CPU.
	Workers  int    `yaml:"workers,omitempty" json:"-"`
	LogLevel string `yaml:"logLevel,omitempty" json:"-"`
	Strict   bool   `yaml:"strict,omitempty" json:"strict,omitempty"`
	Quiet    bool   `yaml:"quiet,omitempty" json:"-"`
	// Cache is the incremental build cache file; empty disables caching.
	Cache string `yaml:"cache,omitempty" json:"-"`

	Registry RegistryConfig `yaml:"registry,omitempty" json:"-"`

	// OnGenerate is a command watch mode runs in the output directory after
	// every successful generation, e.g. ["npx", "tsc", "--noEmit"].
	OnGenerate []string `yaml:"onGenerate,omitempty" json:"-"`
}

// RegistryConfig controls `cfnts fetch`.
type RegistryConfig struct {
	Region string   `yaml:"region,omitempty"`
	Types  []string `yaml:"types,omitempty"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Schemas:        "schemas",
		Output:         "out",
		SharedModule:   "../shared",
		SortProperties: true,
		WellKnownTypes: map[string]string{
			metadata.WellKnownPolicyDocument: render.PolicyDocumentTypeName,
		},
		LogLevel: "info",
		Cache:    ".cfnts-cache.json",
	}
}

// Find returns the config file in dir, or "" when there is none.
func Find(dir string) string {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// Load reads and parses a cfnts config file. Relative paths in the file
// are resolved against the file's directory.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
	}
	defer f.Close()

	config := DefaultConfig()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&config); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config file %q: %w", path, err)
	}
	config.resolvePaths(filepath.Dir(path))

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config in %q: %w", path, err)
	}

	return &config, nil
}

func (c *Config) resolvePaths(base string) {
	for _, p := range []*string{&c.Schemas, &c.Docs, &c.Output, &c.Cache} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(base, *p)
		}
	}
}

// Validate checks the config for logical errors.
func (c *Config) Validate() error {
	if c.Schemas == "" {
		return fmt.Errorf("schemas must not be empty")
	}
	if c.Output == "" {
		return fmt.Errorf("output must not be empty")
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	if _, ok := logging.ParseLevel(c.LogLevel); !ok {
		return fmt.Errorf("logLevel: unknown level %q", c.LogLevel)
	}
	if c.Strict && c.Quiet {
		return fmt.Errorf("strict and quiet cannot both be set")
	}
	for _, pattern := range c.Include {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return fmt.Errorf("include: invalid pattern %q: %w", pattern, err)
		}
	}
	return nil
}

// RenderOptions returns the renderer options the config selects.
func (c *Config) RenderOptions() render.Options {
	opts := render.Options{
		SortProperties: c.SortProperties,
		ExactOptional:  c.ExactOptional,
		WellKnownTypes: c.WellKnownTypes,
		SharedModule:   c.SharedModule,
	}
	if opts.SharedModule == "" {
		opts.SharedModule = render.DefaultOptions().SharedModule
	}
	return opts
}

// Fingerprint hashes the settings that affect generated output. Two configs
// with the same fingerprint render every document identically.
func (c *Config) Fingerprint() string {
	data, err := json.Marshal(c, json.Deterministic(true))
	if err != nil {
		// Config holds only strings, bools, slices and maps.
		panic(fmt.Sprintf("config: fingerprint: %v", err))
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
