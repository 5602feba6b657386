// Package simplify projects a built resource type graph into the views the
// renderer emits: the full model, the writable properties and the
// attributes.
package simplify

import (
	"strings"

	"github.com/cfnts/cfnts/internal/metadata"
)

// Mode selects a projection.
type Mode int

const (
	// Full returns the type unchanged.
	Full Mode = iota
	// Writable drops read-only properties and inlines trivial aliases.
	Writable
	// Attributes keeps only attribute properties and inlines plain objects.
	Attributes
)

func (m Mode) String() string {
	switch m {
	case Full:
		return "full"
	case Writable:
		return "writable"
	case Attributes:
		return "attributes"
	default:
		return "unknown"
	}
}

// TagTypeName is the shared type that replaces key/value tag definitions.
const TagTypeName = "Tag"

// Simplify returns the projection of t selected by mode. References are
// resolved against rt; a reference already being expanded on the current
// path is returned as-is.
func Simplify(t metadata.Type, mode Mode, rt *metadata.ResourceType) metadata.Type {
	if mode == Full {
		return t
	}
	s := &simplifier{mode: mode, rt: rt, stack: make(map[string]bool)}
	return s.simplify(t)
}

// SimplifyDefinition is Simplify applied to the type of the named
// definition. References back to the definition itself stay references.
func SimplifyDefinition(name string, mode Mode, rt *metadata.ResourceType) metadata.Type {
	def := rt.Definition(name)
	if def == nil {
		return metadata.Unknown()
	}
	if mode == Full {
		return def.Type
	}
	s := &simplifier{mode: mode, rt: rt, stack: map[string]bool{name: true}}
	return s.simplify(def.Type)
}

// IsTagDefinition reports whether a definition is a {Key, Value} string pair
// named like a tag, which is rendered as the shared Tag type.
func IsTagDefinition(name string, t metadata.Type) bool {
	if !strings.HasSuffix(name, "Tag") && !strings.HasSuffix(name, "Tags") {
		return false
	}
	if t.Kind != metadata.KindObject || len(t.Properties) != 2 {
		return false
	}
	for _, key := range []string{"Key", "Value"} {
		p := t.Property(key)
		if p == nil || p.Type.Kind != metadata.KindString {
			return false
		}
	}
	return true
}

type simplifier struct {
	mode  Mode
	rt    *metadata.ResourceType
	stack map[string]bool
}

func (s *simplifier) simplify(t metadata.Type) metadata.Type {
	switch t.Kind {
	case metadata.KindObject:
		return s.object(t)
	case metadata.KindArray:
		if t.Items == nil {
			return t
		}
		return metadata.ArrayOf(s.simplify(t.Items.Type), t.Items.Documentation)
	case metadata.KindRecord:
		if t.Value == nil {
			return t
		}
		return metadata.RecordOf(s.simplify(*t.Value))
	case metadata.KindUnion:
		members := make([]metadata.Type, 0, len(t.Members))
		for _, m := range t.Members {
			members = append(members, s.simplify(m))
		}
		return metadata.SimplifyUnion(members)
	case metadata.KindReference:
		return s.reference(t)
	default:
		return t
	}
}

func (s *simplifier) object(t metadata.Type) metadata.Type {
	out := metadata.Type{Kind: metadata.KindObject}
	for _, p := range t.Properties {
		if !s.keep(p) {
			continue
		}
		np := *p
		np.Type = s.simplify(p.Type)
		out.Properties = append(out.Properties, &np)
	}
	for _, name := range t.Required {
		if out.Property(name) != nil {
			out.Required = append(out.Required, name)
		}
	}
	return out
}

func (s *simplifier) keep(p *metadata.PropertyInfo) bool {
	switch s.mode {
	case Writable:
		return !p.ReadOnly
	case Attributes:
		return p.IsAttribute
	default:
		return true
	}
}

func (s *simplifier) reference(t metadata.Type) metadata.Type {
	if t.Shared || s.stack[t.Ref] {
		return t
	}
	def := s.rt.Definition(t.Ref)
	if def == nil {
		return t
	}
	if s.mode == Writable && IsTagDefinition(t.Ref, def.Type) {
		return metadata.SharedRef(TagTypeName)
	}
	if !s.inlines(def.Type) {
		return t
	}
	s.stack[t.Ref] = true
	defer delete(s.stack, t.Ref)
	return s.simplify(def.Type)
}

// inlines reports whether a reference to a definition of type target is
// replaced by the target itself.
func (s *simplifier) inlines(target metadata.Type) bool {
	switch target.Kind {
	case metadata.KindEnum, metadata.KindUnion:
		return false
	case metadata.KindObject:
		return s.mode == Attributes
	default:
		return true
	}
}
