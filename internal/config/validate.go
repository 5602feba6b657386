package config

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/cfnts/cfnts/internal/metadata"
)

// ValidationResult holds config validation results.
type ValidationResult struct {
	Errors   []string
	Warnings []string
}

// ValidateDetailed performs thorough config validation with suggestions.
func (c *Config) ValidateDetailed() *ValidationResult {
	result := &ValidationResult{}
	if err := c.Validate(); err != nil {
		result.Errors = append(result.Errors, err.Error())
	}

	for _, pattern := range c.Include {
		if !strings.Contains(pattern, "::") {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("include: pattern %q has no \"::\" separator; did you mean %q?", pattern, "AWS::"+pattern+"::*"))
		}
	}

	if filepath.IsAbs(c.SharedModule) {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("sharedModule: %q is absolute; generated imports will not be portable", c.SharedModule))
	}

	for marker := range c.WellKnownTypes {
		if marker != metadata.WellKnownPolicyDocument {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("wellKnownTypes: unknown marker %q is never produced", marker))
		}
	}

	if c.Workers > 4*runtime.NumCPU() {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("workers: %d is far above the %d available CPUs", c.Workers, runtime.NumCPU()))
	}

	if c.Registry.Region == "" && len(c.Registry.Types) > 0 {
		result.Warnings = append(result.Warnings,
			"registry.region is empty; fetch uses the region of the default AWS profile")
	}

	return result
}

// IsValid returns true if there are no errors.
func (r *ValidationResult) IsValid() bool {
	return len(r.Errors) == 0
}
