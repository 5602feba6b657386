// Package source loads resource schema documents and supplemental
// documentation.
package source

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-json-experiment/json"
)

// Schema is one raw resource schema document.
type Schema struct {
	TypeName string
	// Origin names where the document came from: a file path, or
	// "registry:<type>" for documents fetched from CloudFormation.
	Origin string
	Data   []byte
}

// SchemaSource lists resource schema documents.
type SchemaSource interface {
	Schemas(ctx context.Context) ([]Schema, error)
}

// DirSource reads every *.json document under Dir. When Include is set,
// only documents whose type name matches one of the globs are returned.
type DirSource struct {
	Dir     string
	Include []string
}

// Schemas returns the matching documents ordered by path.
func (s *DirSource) Schemas(ctx context.Context) ([]Schema, error) {
	var paths []string
	err := filepath.WalkDir(s.Dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".json") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing schemas in %s: %w", s.Dir, err)
	}
	sort.Strings(paths)

	var out []Schema
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading schema: %w", err)
		}
		typeName, err := peekTypeName(data)
		if err != nil {
			return nil, fmt.Errorf("schema %s: %w", path, err)
		}
		if !MatchAny(s.Include, typeName) {
			continue
		}
		out = append(out, Schema{TypeName: typeName, Origin: path, Data: data})
	}
	return out, nil
}

// peekTypeName reads only the typeName member of a document.
func peekTypeName(data []byte) (string, error) {
	var head struct {
		TypeName string `json:"typeName"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return "", fmt.Errorf("invalid JSON: %w", err)
	}
	if head.TypeName == "" {
		return "", fmt.Errorf("missing typeName")
	}
	return head.TypeName, nil
}

// MatchAny reports whether typeName matches one of the glob patterns. An
// empty pattern list matches everything.
func MatchAny(patterns []string, typeName string) bool {
	if len(patterns) == 0 {
		return true
	}
	for _, p := range patterns {
		if ok, _ := filepath.Match(p, typeName); ok {
			return true
		}
	}
	return false
}

// FileName returns the file a fetched schema is stored under:
// "AWS::S3::Bucket" → "aws-s3-bucket.json".
func FileName(typeName string) string {
	return strings.ToLower(strings.ReplaceAll(typeName, "::", "-")) + ".json"
}

// WriteSchemas stores schemas in dir and returns the written paths.
func WriteSchemas(dir string, schemas []Schema) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating schema directory %s: %w", dir, err)
	}
	paths := make([]string, 0, len(schemas))
	for _, s := range schemas {
		path := filepath.Join(dir, FileName(s.TypeName))
		if err := os.WriteFile(path, s.Data, 0o644); err != nil {
			return paths, fmt.Errorf("writing schema %s: %w", s.TypeName, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
