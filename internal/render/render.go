// Package render emits TypeScript declarations for compiled resource types.
package render

import (
	"sort"
	"strings"

	"github.com/cfnts/cfnts/internal/metadata"
	"github.com/cfnts/cfnts/internal/simplify"
)

// Options control declaration output.
type Options struct {
	// SortProperties orders object members by name (byte order) instead of
	// declaration order.
	SortProperties bool

	// ExactOptional adds "| undefined" to optional properties, for projects
	// compiled with exactOptionalPropertyTypes.
	ExactOptional bool

	// WellKnownTypes maps a documentation marker (e.g.
	// metadata.WellKnownPolicyDocument) to the shared type rendered instead
	// of the structural expansion.
	WellKnownTypes map[string]string

	// SharedModule is the import path of the shared types module, relative
	// to a resource module.
	SharedModule string
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		SortProperties: true,
		WellKnownTypes: map[string]string{
			metadata.WellKnownPolicyDocument: PolicyDocumentTypeName,
		},
		SharedModule: "../shared",
	}
}

// Declaration is one emitted named type.
type Declaration struct {
	Name string
	// Doc is the leading comment block, possibly empty.
	Doc string
	// Code is the declaration itself.
	Code string
}

func (d Declaration) String() string {
	return d.Doc + d.Code
}

// Renderer renders declarations for one resource type and records the
// definitions and shared types they reference. It is not safe for
// concurrent use.
type Renderer struct {
	rt    *metadata.ResourceType
	opts  Options
	names *nameTable

	decls      []Declaration
	referenced map[string]bool
	shared     map[string]bool
}

// NewRenderer creates a renderer for rt. Reserved identifiers are never
// given to definitions.
func NewRenderer(rt *metadata.ResourceType, opts Options, reserved ...string) *Renderer {
	r := &Renderer{
		rt:         rt,
		opts:       opts,
		names:      newNameTable(reserved...),
		referenced: make(map[string]bool),
		shared:     make(map[string]bool),
	}
	for _, name := range rt.DefinitionNames {
		r.names.assign(name)
	}
	return r
}

// Render appends a declaration named name for the given view of def.
func (r *Renderer) Render(name string, def *metadata.TypeDefinition, mode simplify.Mode) {
	r.render(name, def, simplify.Simplify(def.Type, mode, r.rt))
}

// RenderDefinition appends the declaration of a named definition of the
// resource type under its assigned identifier.
func (r *Renderer) RenderDefinition(definition string, mode simplify.Mode) {
	def := r.rt.Definition(definition)
	if def == nil {
		return
	}
	r.render(r.Identifier(definition), def, simplify.SimplifyDefinition(definition, mode, r.rt))
}

func (r *Renderer) render(name string, def *metadata.TypeDefinition, t metadata.Type) {
	doc := NewEmitter(0)
	writeDoc(doc, def.Documentation)

	code := NewEmitter(0)
	if t.Kind == metadata.KindObject {
		if len(t.Properties) == 0 {
			code.Line("export interface %s {}", name)
		} else {
			code.Block("export interface %s", name)
			r.writeProperties(code, t)
			code.EndBlock()
		}
	} else {
		code.Line("export type %s = %s;", name, r.typeExpr(t, 0))
	}
	r.decls = append(r.decls, Declaration{Name: name, Doc: doc.String(), Code: code.String()})
}

// Declarations returns the declarations rendered so far, in order.
func (r *Renderer) Declarations() []Declaration {
	return r.decls
}

// Identifier returns the TypeScript name of a definition.
func (r *Renderer) Identifier(definition string) string {
	return r.names.assign(definition)
}

// IsReferenced reports whether a rendered declaration refers to the named
// definition.
func (r *Renderer) IsReferenced(definition string) bool {
	return r.referenced[definition]
}

// Referenced returns the referenced definition names, sorted.
func (r *Renderer) Referenced() []string {
	return sortedKeys(r.referenced)
}

// SharedUsed returns the shared type names referenced, sorted.
func (r *Renderer) SharedUsed() []string {
	return sortedKeys(r.shared)
}

func (r *Renderer) writeProperties(e *Emitter, t metadata.Type) {
	props := t.Properties
	if r.opts.SortProperties {
		props = append([]*metadata.PropertyInfo(nil), props...)
		sort.SliceStable(props, func(i, j int) bool { return props[i].Name < props[j].Name })
	}
	for _, p := range props {
		writeDoc(e, p.Documentation)
		expr, substituted := r.propertyExpr(p, e.Level())
		opt := ""
		if !t.IsRequired(p.Name) {
			opt = "?"
			open := p.Type.Kind == metadata.KindAny || p.Type.Kind == metadata.KindUnknown
			if r.opts.ExactOptional && (substituted || !open) {
				expr += " | undefined"
			}
		}
		e.Line("%s%s: %s;", tsPropertyKey(p.Name), opt, expr)
	}
}

// propertyExpr renders the type of a property, substituting a shared type
// for recognized well-known shapes. It reports whether it substituted.
func (r *Renderer) propertyExpr(p *metadata.PropertyInfo, level int) (string, bool) {
	if p.Documentation != nil && p.Documentation.WellKnownType != "" {
		if name := r.opts.WellKnownTypes[p.Documentation.WellKnownType]; name != "" {
			r.shared[name] = true
			return name, true
		}
	}
	return r.typeExpr(p.Type, level), false
}

// typeExpr renders t as a type expression. level is the indentation of the
// line the expression starts on; inline objects are laid out below it.
func (r *Renderer) typeExpr(t metadata.Type, level int) string {
	switch t.Kind {
	case metadata.KindAny:
		return "any"
	case metadata.KindUnknown:
		return "unknown"
	case metadata.KindBoolean:
		return "boolean"
	case metadata.KindInteger, metadata.KindNumber:
		return "number"
	case metadata.KindNull:
		return "null"
	case metadata.KindString:
		return "string"
	case metadata.KindConst:
		if t.Literal == nil {
			return "unknown"
		}
		return t.Literal.String()
	case metadata.KindEnum:
		parts := make([]string, 0, len(t.Values))
		for _, v := range t.Values {
			parts = append(parts, v.String())
		}
		if len(parts) == 0 {
			return "never"
		}
		return strings.Join(parts, " | ")
	case metadata.KindArray:
		elem := metadata.Any()
		if t.Items != nil {
			elem = t.Items.Type
		}
		expr := r.typeExpr(elem, level)
		if elem.Kind == metadata.KindUnion || (elem.Kind == metadata.KindEnum && len(elem.Values) > 1) {
			expr = "(" + expr + ")"
		}
		return expr + "[]"
	case metadata.KindRecord:
		value := metadata.Unknown()
		if t.Value != nil {
			value = *t.Value
		}
		return "Record<string, " + r.typeExpr(value, level) + ">"
	case metadata.KindObject:
		if len(t.Properties) == 0 {
			return "{}"
		}
		inner := NewEmitter(level + 1)
		r.writeProperties(inner, t)
		return "{\n" + inner.String() + indentString(level) + "}"
	case metadata.KindReference:
		if t.Shared {
			r.shared[t.Ref] = true
			return t.Ref
		}
		r.referenced[t.Ref] = true
		return r.names.assign(t.Ref)
	case metadata.KindUnion:
		parts := make([]string, 0, len(t.Members))
		for _, m := range t.Members {
			parts = append(parts, r.typeExpr(m, level))
		}
		return strings.Join(parts, " | ")
	}
	return "unknown"
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
