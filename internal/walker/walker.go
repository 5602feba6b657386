// Package walker compiles one CloudFormation resource schema document into
// the metadata type model: it merges allOf fragments, separates
// documentation from type shape, resolves references and classifies
// read-only properties and attributes.
package walker

import (
	"github.com/cfnts/cfnts/internal/diagnostic"
	"github.com/cfnts/cfnts/internal/metadata"
	"github.com/cfnts/cfnts/internal/schema"
)

// DocSource supplies documentation that enriches or overrides the
// descriptions found in the schema itself.
type DocSource interface {
	TypeDescription(typeName string) (string, bool)
	PropertyDescription(typeName, property string) (string, bool)
	DefinitionPropertyDescription(typeName, definition, property string) (string, bool)
}

// Option configures a Walker.
type Option func(*Walker)

// WithReporter sets the diagnostics channel. Without it diagnostics are
// discarded.
func WithReporter(r diagnostic.Reporter) Option {
	return func(w *Walker) { w.reporter = r }
}

// WithDocSource sets the supplemental documentation source.
func WithDocSource(s DocSource) Option {
	return func(w *Walker) { w.docs = s }
}

// WithExceptions replaces the legacy attribute exception table.
func WithExceptions(table map[string][]string) Option {
	return func(w *Walker) { w.exceptions = table }
}

// Walker converts one document. It is not safe for concurrent use; build a
// new one per document.
type Walker struct {
	doc        *schema.Document
	rt         *metadata.ResourceType
	reporter   diagnostic.Reporter
	docs       DocSource
	exceptions map[string][]string

	// inlineStack holds the non-definition pointers currently being expanded
	// in place, to break cyclic inline references.
	inlineStack []string

	// scope identifies the object whose property descriptions may be
	// overridden by the DocSource: the root ("#") or a definition.
	scopePath       string
	scopeDefinition string
}

// Build compiles doc into a ResourceType. Problems in the schema are
// reported through the configured reporter and degrade to unknown types.
func Build(doc *schema.Document, opts ...Option) *metadata.ResourceType {
	w := &Walker{
		doc:        doc,
		rt:         metadata.NewResourceType(doc.TypeName),
		exceptions: LegacyAttributes,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w.build()
}

func (w *Walker) build() *metadata.ResourceType {
	for _, name := range w.doc.Definitions.Keys() {
		path := schema.DefinitionPrefix + name
		v, _ := w.doc.Definitions.Get(name)
		if v.Kind != schema.Object {
			w.warn(diagnostic.CategoryShape, path, "definition %q is not a schema object", name)
			w.rt.Define(name, &metadata.TypeDefinition{Type: metadata.Unknown()})
			continue
		}
		w.scopePath, w.scopeDefinition = path, name
		t, doc := w.walkFragment(v.Obj, path)
		w.rt.Define(name, &metadata.TypeDefinition{Documentation: nonEmpty(doc), Type: t})
	}

	w.scopePath, w.scopeDefinition = "#", ""
	root := schema.NewMap()
	for _, k := range rootFields {
		if v, ok := w.doc.Root.Get(k); ok {
			root.Set(k, v)
		}
	}
	t := metadata.Type{Kind: metadata.KindObject}
	if root.Len() > 0 {
		t, _ = w.walkFragment(root, "#")
	}
	if k := metadata.Deref(t, w.rt).Kind; k != metadata.KindObject && k != metadata.KindUnion {
		w.warn(diagnostic.CategoryShape, "#", "resource properties resolve to %s, expected an object", k)
	}

	rootDoc := &metadata.Documentation{Description: w.doc.Description, Link: w.doc.SourceURL}
	if w.docs != nil {
		if desc, ok := w.docs.TypeDescription(w.doc.TypeName); ok {
			rootDoc.Description = desc
		}
	}
	w.rt.Properties = metadata.TypeDefinition{Documentation: nonEmpty(rootDoc), Type: t}

	c := newClassifier(w)
	c.classify()
	c.commit()
	w.rt.Attributes = c.attributes()
	return w.rt
}

func (w *Walker) warn(category diagnostic.Category, path string, format string, args ...any) {
	diagnostic.Warn(w.reporter, category, diagnostic.Location{TypeName: w.doc.TypeName, Path: path}, format, args...)
}

func nonEmpty(d *metadata.Documentation) *metadata.Documentation {
	if d.IsEmpty() {
		return nil
	}
	return d
}
