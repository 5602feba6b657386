package config

import (
	"testing"
)

func TestValidateDetailed_Valid(t *testing.T) {
	cfg := DefaultConfig()
	result := cfg.ValidateDetailed()
	if !result.IsValid() {
		t.Errorf("expected valid config, got errors: %v", result.Errors)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("expected no warnings, got %v", result.Warnings)
	}
}

func TestValidateDetailed_MissingSchemas(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Schemas = ""
	result := cfg.ValidateDetailed()
	if result.IsValid() {
		t.Error("expected invalid config")
	}
}

func TestValidateDetailed_Warnings(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"include without separator", func(c *Config) { c.Include = []string{"S3"} }},
		{"absolute shared module", func(c *Config) { c.SharedModule = "/abs/shared" }},
		{"unknown marker", func(c *Config) { c.WellKnownTypes["json-schema"] = "JSONSchema" }},
		{"too many workers", func(c *Config) { c.Workers = 1 << 20 }},
		{"registry without region", func(c *Config) { c.Registry.Types = []string{"AWS::S3::Bucket"} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			result := cfg.ValidateDetailed()
			if !result.IsValid() {
				t.Fatalf("expected valid config, got errors: %v", result.Errors)
			}
			if len(result.Warnings) != 1 {
				t.Errorf("expected 1 warning, got %v", result.Warnings)
			}
		})
	}
}
