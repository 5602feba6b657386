package source

import (
	"fmt"
	"os"

	"github.com/go-json-experiment/json"

	"github.com/cfnts/cfnts/internal/walker"
)

// TypeDocs is the supplemental documentation of one resource type.
type TypeDocs struct {
	Description string            `json:"description,omitempty"`
	Properties  map[string]string `json:"properties,omitempty"`
	// Definitions maps a definition name to its property descriptions.
	Definitions map[string]map[string]string `json:"definitions,omitempty"`
}

// DocFile is a supplemental documentation file:
//
//	{"types": {"AWS::S3::Bucket": {"description": "...", "properties": {...}}}}
type DocFile struct {
	Types map[string]*TypeDocs `json:"types"`
}

var _ walker.DocSource = (*DocFile)(nil)

// LoadDocFile reads a documentation file.
func LoadDocFile(path string) (*DocFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading docs file: %w", err)
	}
	var f DocFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing docs file %s: %w", path, err)
	}
	return &f, nil
}

func (f *DocFile) lookup(typeName string) *TypeDocs {
	if f == nil {
		return nil
	}
	return f.Types[typeName]
}

// TypeDescription implements walker.DocSource.
func (f *DocFile) TypeDescription(typeName string) (string, bool) {
	t := f.lookup(typeName)
	if t == nil || t.Description == "" {
		return "", false
	}
	return t.Description, true
}

// PropertyDescription implements walker.DocSource.
func (f *DocFile) PropertyDescription(typeName, property string) (string, bool) {
	t := f.lookup(typeName)
	if t == nil {
		return "", false
	}
	d, ok := t.Properties[property]
	return d, ok && d != ""
}

// DefinitionPropertyDescription implements walker.DocSource.
func (f *DocFile) DefinitionPropertyDescription(typeName, definition, property string) (string, bool) {
	t := f.lookup(typeName)
	if t == nil {
		return "", false
	}
	d, ok := t.Definitions[definition][property]
	return d, ok && d != ""
}

// Fingerprint returns a stable encoding of the documentation for
// typeName, empty when there is none.
func (f *DocFile) Fingerprint(typeName string) []byte {
	t := f.lookup(typeName)
	if t == nil {
		return nil
	}
	data, err := json.Marshal(t, json.Deterministic(true))
	if err != nil {
		return nil
	}
	return data
}
