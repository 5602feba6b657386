package metadata

import (
	"testing"

	"github.com/cfnts/cfnts/internal/schema"
)

func object(required []string, props ...*PropertyInfo) Type {
	return Type{Kind: KindObject, Properties: props, Required: required}
}

func prop(name string, t Type) *PropertyInfo {
	return &PropertyInfo{Name: name, Type: t}
}

func TestIsSameType(t *testing.T) {
	str := Primitive(KindString)
	num := Primitive(KindNumber)
	one := schema.NumberValue("1")
	oneFloat := schema.NumberValue("1.0")
	two := schema.NumberValue("2")

	tests := []struct {
		name string
		a, b Type
		want bool
	}{
		{"same primitive", str, str, true},
		{"different primitive", str, num, false},
		{"arrays by element", ArrayOf(str, nil), ArrayOf(str, &Documentation{Description: "x"}), true},
		{"arrays differ", ArrayOf(str, nil), ArrayOf(num, nil), false},
		{"records", RecordOf(str), RecordOf(str), true},
		{"records differ", RecordOf(str), RecordOf(num), false},
		{"references", Ref("A"), Ref("A"), true},
		{"references differ", Ref("A"), Ref("B"), false},
		{"shared reference differs from local", Ref("Tag"), SharedRef("Tag"), false},
		{"const by value", Type{Kind: KindConst, Literal: &one}, Type{Kind: KindConst, Literal: &oneFloat}, true},
		{"const differ", Type{Kind: KindConst, Literal: &one}, Type{Kind: KindConst, Literal: &two}, false},
		{"enum order matters",
			Type{Kind: KindEnum, Values: []schema.Value{schema.StringValue("a"), schema.StringValue("b")}},
			Type{Kind: KindEnum, Values: []schema.Value{schema.StringValue("b"), schema.StringValue("a")}},
			false},
		{"objects equal",
			object([]string{"A"}, prop("A", str), prop("B", num)),
			object([]string{"A"}, prop("A", str), prop("B", num)),
			true},
		{"object property order matters",
			object(nil, prop("A", str), prop("B", num)),
			object(nil, prop("B", num), prop("A", str)),
			false},
		{"object required differs",
			object([]string{"A"}, prop("A", str)),
			object(nil, prop("A", str)),
			false},
		{"object documentation ignored",
			object(nil, &PropertyInfo{Name: "A", Type: str, Documentation: &Documentation{Description: "one"}}),
			object(nil, &PropertyInfo{Name: "A", Type: str, Documentation: &Documentation{Description: "two"}}),
			true},
		{"unions member-wise",
			Type{Kind: KindUnion, Members: []Type{str, num}},
			Type{Kind: KindUnion, Members: []Type{num, str}},
			false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsSameType(tt.a, tt.b); got != tt.want {
				t.Errorf("IsSameType() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSimplifyUnion(t *testing.T) {
	str := Primitive(KindString)
	num := Primitive(KindNumber)
	boolean := Primitive(KindBoolean)

	if got := SimplifyUnion(nil); got.Kind != KindUnknown {
		t.Errorf("empty union = %s, want unknown", got.Kind)
	}
	if got := SimplifyUnion([]Type{str, str}); got.Kind != KindString {
		t.Errorf("duplicate members = %s, want string", got.Kind)
	}

	nested := Type{Kind: KindUnion, Members: []Type{num, str}}
	got := SimplifyUnion([]Type{str, nested, boolean, ArrayOf(str, nil), ArrayOf(str, nil)})
	if got.Kind != KindUnion {
		t.Fatalf("expected union, got %s", got.Kind)
	}
	want := []Kind{KindString, KindNumber, KindBoolean, KindArray}
	if len(got.Members) != len(want) {
		t.Fatalf("expected %d members, got %d", len(want), len(got.Members))
	}
	for i, k := range want {
		if got.Members[i].Kind != k {
			t.Errorf("member %d = %s, want %s", i, got.Members[i].Kind, k)
		}
	}
}

func TestSimplifyUnion_IdempotentAndDeduplicated(t *testing.T) {
	str := Primitive(KindString)
	inputs := [][]Type{
		{str},
		{str, str, str},
		{Ref("A"), Ref("B"), Ref("A")},
		{RecordOf(str), Type{Kind: KindUnion, Members: []Type{RecordOf(str), Any()}}, Any()},
		{object(nil, prop("A", str)), object(nil, prop("A", str)), object([]string{"A"}, prop("A", str))},
	}

	for i, in := range inputs {
		once := SimplifyUnion(in)
		twice := SimplifyUnion([]Type{once})
		if !IsSameType(once, twice) {
			t.Errorf("input %d: SimplifyUnion is not idempotent", i)
		}
		if once.Kind != KindUnion {
			continue
		}
		for a := range once.Members {
			if once.Members[a].Kind == KindUnion {
				t.Errorf("input %d: nested union survived", i)
			}
			for b := a + 1; b < len(once.Members); b++ {
				if IsSameType(once.Members[a], once.Members[b]) {
					t.Errorf("input %d: members %d and %d are duplicates", i, a, b)
				}
			}
		}
	}
}

func TestDeref(t *testing.T) {
	rt := NewResourceType("Test::Resource")
	rt.Define("Alias", &TypeDefinition{Type: Ref("Target")})
	rt.Define("Target", &TypeDefinition{Type: Primitive(KindString)})
	rt.Define("Loop", &TypeDefinition{Type: Ref("Loop")})

	if got := Deref(Ref("Alias"), rt); got.Kind != KindString {
		t.Errorf("Deref(Alias) = %s, want string", got.Kind)
	}
	if got := Deref(Ref("Loop"), rt); got.Kind != KindReference {
		t.Errorf("Deref(Loop) = %s, want the reference back", got.Kind)
	}
	if got := Deref(Ref("Missing"), rt); got.Ref != "Missing" {
		t.Errorf("Deref(Missing) = %+v", got)
	}
	if got := Deref(SharedRef("Tag"), rt); !got.Shared {
		t.Error("shared references must not be followed")
	}
}

func TestContainsStructure(t *testing.T) {
	rt := NewResourceType("Test::Resource")
	rt.Define("Node", &TypeDefinition{Type: object(nil, prop("Next", Ref("Node")))})
	rt.Define("Names", &TypeDefinition{Type: ArrayOf(Primitive(KindString), nil)})
	rt.Define("Self", &TypeDefinition{Type: Type{Kind: KindUnion, Members: []Type{Primitive(KindString), Ref("Self")}}})

	tests := []struct {
		name string
		t    Type
		want bool
	}{
		{"string", Primitive(KindString), false},
		{"object", object(nil), true},
		{"record", RecordOf(Any()), true},
		{"array of objects", ArrayOf(object(nil), nil), true},
		{"union with record", Type{Kind: KindUnion, Members: []Type{Primitive(KindString), RecordOf(Any())}}, true},
		{"reference to object", Ref("Node"), true},
		{"reference to string array", Ref("Names"), false},
		{"self-referencing union", Ref("Self"), false},
		{"shared type", SharedRef("Tag"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ContainsStructure(tt.t, rt); got != tt.want {
				t.Errorf("ContainsStructure() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDocumentation_AddAlternative(t *testing.T) {
	d := &Documentation{Description: "primary"}
	d.AddAlternative("primary")
	d.AddAlternative("")
	d.AddAlternative("other")
	d.AddAlternative("other")
	if len(d.Alternatives) != 1 || d.Alternatives[0] != "other" {
		t.Errorf("unexpected alternatives %v", d.Alternatives)
	}
	if d.IsEmpty() {
		t.Error("expected non-empty documentation")
	}
	var nilDoc *Documentation
	if !nilDoc.IsEmpty() {
		t.Error("nil documentation must be empty")
	}
}

func TestResourceType_DefineKeepsOrder(t *testing.T) {
	rt := NewResourceType("Test::Resource")
	rt.Define("B", &TypeDefinition{Type: Any()})
	rt.Define("A", &TypeDefinition{Type: Any()})
	rt.Define("B", &TypeDefinition{Type: Unknown()})

	if len(rt.DefinitionNames) != 2 || rt.DefinitionNames[0] != "B" || rt.DefinitionNames[1] != "A" {
		t.Errorf("unexpected order %v", rt.DefinitionNames)
	}
	if rt.Definition("B").Type.Kind != KindUnknown {
		t.Error("Define should replace the existing definition")
	}
	var nilRT *ResourceType
	if nilRT.Definition("A") != nil {
		t.Error("nil resource has no definitions")
	}
}
