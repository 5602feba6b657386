package metadata

// IsSameType reports whether a and b are structurally identical.
//
// The comparison is order-sensitive: object properties, enum values and
// union members must appear in the same order. It is used to deduplicate
// union members and to detect ambiguous attribute types, not to decide
// semantic set equality.
func IsSameType(a, b Type) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindArray:
		return IsSameType(itemType(a), itemType(b))
	case KindObject:
		if len(a.Properties) != len(b.Properties) || len(a.Required) != len(b.Required) {
			return false
		}
		for i := range a.Properties {
			if a.Properties[i].Name != b.Properties[i].Name {
				return false
			}
			if !IsSameType(a.Properties[i].Type, b.Properties[i].Type) {
				return false
			}
		}
		for _, r := range a.Required {
			if !b.IsRequired(r) {
				return false
			}
		}
		return true
	case KindRecord:
		return IsSameType(valueType(a), valueType(b))
	case KindConst:
		if a.Literal == nil || b.Literal == nil {
			return a.Literal == b.Literal
		}
		return a.Literal.Equal(*b.Literal)
	case KindEnum:
		if len(a.Values) != len(b.Values) {
			return false
		}
		for i := range a.Values {
			if !a.Values[i].Equal(b.Values[i]) {
				return false
			}
		}
		return true
	case KindReference:
		return a.Ref == b.Ref && a.Shared == b.Shared
	case KindUnion:
		if len(a.Members) != len(b.Members) {
			return false
		}
		for i := range a.Members {
			if !IsSameType(a.Members[i], b.Members[i]) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// SimplifyUnion flattens nested unions and removes structural duplicates,
// keeping the first occurrence of each member. Zero members yield unknown,
// one member yields that member.
func SimplifyUnion(members []Type) Type {
	var flat []Type
	var add func(t Type)
	add = func(t Type) {
		if t.Kind == KindUnion {
			for _, m := range t.Members {
				add(m)
			}
			return
		}
		for _, existing := range flat {
			if IsSameType(existing, t) {
				return
			}
		}
		flat = append(flat, t)
	}
	for _, m := range members {
		add(m)
	}

	switch len(flat) {
	case 0:
		return Unknown()
	case 1:
		return flat[0]
	default:
		return Type{Kind: KindUnion, Members: flat}
	}
}

// Deref follows references through the definitions arena until a
// non-reference type is reached. Shared references, dangling references and
// cycles made only of references are returned as-is.
func Deref(t Type, rt *ResourceType) Type {
	seen := make(map[string]bool)
	for t.Kind == KindReference && !t.Shared {
		if seen[t.Ref] {
			return t
		}
		seen[t.Ref] = true
		def := rt.Definition(t.Ref)
		if def == nil {
			return t
		}
		t = def.Type
	}
	return t
}

// ContainsStructure reports whether t contains an object or record anywhere,
// looking through references, arrays and unions.
func ContainsStructure(t Type, rt *ResourceType) bool {
	return containsStructure(t, rt, make(map[string]bool))
}

func containsStructure(t Type, rt *ResourceType, visiting map[string]bool) bool {
	switch t.Kind {
	case KindObject, KindRecord:
		return true
	case KindArray:
		return containsStructure(itemType(t), rt, visiting)
	case KindUnion:
		for _, m := range t.Members {
			if containsStructure(m, rt, visiting) {
				return true
			}
		}
		return false
	case KindReference:
		if t.Shared {
			return true
		}
		if visiting[t.Ref] {
			return false
		}
		def := rt.Definition(t.Ref)
		if def == nil {
			return false
		}
		visiting[t.Ref] = true
		defer delete(visiting, t.Ref)
		return containsStructure(def.Type, rt, visiting)
	default:
		return false
	}
}

// Includes reports whether t is, or is a union containing, a member of kind k.
func Includes(t Type, k Kind) bool {
	if t.Kind == k {
		return true
	}
	if t.Kind == KindUnion {
		for _, m := range t.Members {
			if m.Kind == k {
				return true
			}
		}
	}
	return false
}

func itemType(t Type) Type {
	if t.Items == nil {
		return Any()
	}
	return t.Items.Type
}

func valueType(t Type) Type {
	if t.Value == nil {
		return Unknown()
	}
	return *t.Value
}
