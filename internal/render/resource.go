package render

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cfnts/cfnts/internal/metadata"
	"github.com/cfnts/cfnts/internal/simplify"
)

// File is the rendered module of one resource type.
type File struct {
	TypeName string
	// Path is the module path relative to the output directory.
	Path string

	PropsName      string
	AttributesName string // empty when the resource has no attributes

	Declarations []Declaration
	// SharedTypes are the shared type names the module imports.
	SharedTypes []string
}

// RenderResource renders the writable properties, the attributes and every
// definition reachable from them.
func RenderResource(rt *metadata.ResourceType, opts Options) *File {
	_, _, resource := ResourceNames(rt.TypeName)
	base := Identifier(resource)
	f := &File{
		TypeName:  rt.TypeName,
		Path:      FilePath(rt.TypeName),
		PropsName: base + "Props",
	}
	if rt.Attributes != nil {
		f.AttributesName = base + "Attributes"
	}

	reserved := append([]string{f.PropsName, f.AttributesName}, sharedNames(opts)...)
	r := NewRenderer(rt, opts, reserved...)
	r.Render(f.PropsName, &rt.Properties, simplify.Writable)
	if rt.Attributes != nil {
		attrs := *rt.Attributes
		if attrs.Documentation == nil {
			attrs.Documentation = &metadata.Documentation{
				Description: fmt.Sprintf("Attributes of %s, available through Fn::GetAtt.", rt.TypeName),
			}
		}
		r.Render(f.AttributesName, &attrs, simplify.Attributes)
	}
	renderReachable(r, rt)

	f.Declarations = r.Declarations()
	f.SharedTypes = r.SharedUsed()
	return f
}

// renderReachable renders referenced definitions until a pass over the
// definitions adds nothing. Rendering a definition may reference others in
// any order; the referenced set only grows and the definitions are finite.
func renderReachable(r *Renderer, rt *metadata.ResourceType) {
	emitted := make(map[string]bool)
	for changed := true; changed; {
		changed = false
		for _, name := range rt.DefinitionNames {
			if emitted[name] || !r.IsReferenced(name) {
				continue
			}
			emitted[name] = true
			changed = true
			r.RenderDefinition(name, simplify.Writable)
		}
	}
}

// Header is the first line of every generated module.
const Header = "// Code generated by cfnts. DO NOT EDIT."

// Format returns the TypeScript source of f.
func (f *File) Format(opts Options) string {
	var sb strings.Builder
	sb.WriteString(Header)
	sb.WriteString("\n// Source: ")
	sb.WriteString(f.TypeName)
	sb.WriteString("\n\n")
	if len(f.SharedTypes) > 0 {
		fmt.Fprintf(&sb, "import type { %s } from %s;\n\n", strings.Join(f.SharedTypes, ", "), quote(opts.SharedModule))
	}
	for i, d := range f.Declarations {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(d.String())
	}
	return sb.String()
}

// FormatIndex returns the index module re-exporting every resource module
// under its namespace, plus the shared module.
func FormatIndex(files []*File) string {
	sorted := append([]*File(nil), files...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].TypeName < sorted[j].TypeName })

	var sb strings.Builder
	sb.WriteString(Header)
	sb.WriteString("\n\n")
	sb.WriteString("export * from \"./shared\";\n")
	used := make(map[string]bool)
	for _, f := range sorted {
		ns := Namespace(f.TypeName)
		for used[ns] {
			ns += "_"
		}
		used[ns] = true
		fmt.Fprintf(&sb, "export * as %s from %s;\n", ns, quote("./"+strings.TrimSuffix(f.Path, ".ts")))
	}
	return sb.String()
}
