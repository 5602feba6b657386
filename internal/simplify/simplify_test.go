package simplify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cfnts/cfnts/internal/metadata"
	"github.com/cfnts/cfnts/internal/schema"
	"github.com/cfnts/cfnts/internal/walker"
)

func buildResource(t *testing.T, src string) *metadata.ResourceType {
	t.Helper()
	doc, err := schema.ParseDocument([]byte(src))
	require.NoError(t, err)
	return walker.Build(doc)
}

func names(t metadata.Type) []string {
	var out []string
	for _, p := range t.Properties {
		out = append(out, p.Name)
	}
	return out
}

func TestSimplify_RoundTrip(t *testing.T) {
	rt := buildResource(t, `{
		"typeName": "Test::Resource",
		"properties": {
			"Name": {"type": "string"},
			"Id": {"type": "string"}
		},
		"required": ["Name"],
		"readOnlyProperties": ["/properties/Id"]
	}`)

	props := Simplify(rt.Properties.Type, Writable, rt)
	assert.Equal(t, []string{"Name"}, names(props))
	assert.Equal(t, []string{"Name"}, props.Required)

	require.NotNil(t, rt.Attributes)
	attrs := Simplify(rt.Attributes.Type, Attributes, rt)
	assert.Equal(t, []string{"Id"}, names(attrs))
	assert.Equal(t, []string{"Id"}, attrs.Required)
}

func TestSimplify_WritableAndAttributesAreComplements(t *testing.T) {
	rt := buildResource(t, `{
		"typeName": "Test::Resource",
		"properties": {
			"A": {"type": "string"},
			"B": {"type": "string"},
			"C": {"type": "integer"},
			"D": {"type": "boolean"}
		},
		"required": ["A", "B"],
		"readOnlyProperties": ["/properties/B", "/properties/D"]
	}`)

	props := Simplify(rt.Properties.Type, Writable, rt)
	attrs := Simplify(rt.Attributes.Type, Attributes, rt)
	assert.Equal(t, []string{"A", "C"}, names(props))
	assert.Equal(t, []string{"A"}, props.Required)
	assert.Equal(t, []string{"B", "D"}, names(attrs))
}

func TestSimplify_PromotedAncestorDropped(t *testing.T) {
	rt := buildResource(t, `{
		"typeName": "Test::Resource",
		"properties": {
			"Endpoint": {
				"type": "object",
				"properties": {"Address": {"type": "string"}, "Port": {"type": "integer"}}
			},
			"Name": {"type": "string"}
		},
		"readOnlyProperties": ["/properties/Endpoint/Address", "/properties/Endpoint/Port"]
	}`)

	props := Simplify(rt.Properties.Type, Writable, rt)
	assert.Equal(t, []string{"Name"}, names(props))

	attrs := Simplify(rt.Attributes.Type, Attributes, rt)
	require.Equal(t, []string{"Endpoint"}, names(attrs))
	assert.Equal(t, []string{"Address", "Port"}, names(attrs.Properties[0].Type))
}

func TestSimplify_ReferenceInlining(t *testing.T) {
	rt := buildResource(t, `{
		"typeName": "Test::Resource",
		"definitions": {
			"Arn": {"type": "string", "pattern": "^arn:"},
			"Mode": {"type": "string", "enum": ["ON", "OFF"]},
			"Rule": {"type": "object", "properties": {"Id": {"type": "string"}}},
			"Labels": {"type": "object", "patternProperties": {".*": {"$ref": "#/definitions/Arn"}}},
			"Tag": {
				"type": "object",
				"properties": {"Key": {"type": "string"}, "Value": {"type": "string"}},
				"required": ["Key", "Value"]
			}
		},
		"properties": {
			"Target": {"$ref": "#/definitions/Arn"},
			"Mode": {"$ref": "#/definitions/Mode"},
			"Rule": {"$ref": "#/definitions/Rule"},
			"Labels": {"$ref": "#/definitions/Labels"},
			"Tags": {"type": "array", "items": {"$ref": "#/definitions/Tag"}}
		}
	}`)

	props := Simplify(rt.Properties.Type, Writable, rt)
	assert.Equal(t, metadata.Primitive(metadata.KindString), props.Property("Target").Type)
	assert.Equal(t, metadata.Ref("Mode"), props.Property("Mode").Type)
	assert.Equal(t, metadata.Ref("Rule"), props.Property("Rule").Type)

	labels := props.Property("Labels").Type
	require.Equal(t, metadata.KindRecord, labels.Kind)
	assert.Equal(t, metadata.KindString, labels.Value.Kind)

	tags := props.Property("Tags").Type
	require.Equal(t, metadata.KindArray, tags.Kind)
	assert.Equal(t, metadata.SharedRef(TagTypeName), tags.Items.Type)

	// The attributes view flattens plain objects but keeps enums named.
	rule := Simplify(metadata.Ref("Rule"), Attributes, rt)
	assert.Equal(t, metadata.KindObject, rule.Kind)
	assert.Equal(t, metadata.Ref("Mode"), Simplify(metadata.Ref("Mode"), Attributes, rt))
}

func TestSimplify_SelfReferenceTerminates(t *testing.T) {
	rt := metadata.NewResourceType("Test::Resource")
	rt.Define("Node", &metadata.TypeDefinition{Type: metadata.Type{
		Kind: metadata.KindObject,
		Properties: []*metadata.PropertyInfo{
			{Name: "Value", Type: metadata.Primitive(metadata.KindString), IsAttribute: true},
			{Name: "Next", Type: metadata.Ref("Node"), IsAttribute: true},
		},
	}})
	rt.Define("Nested", &metadata.TypeDefinition{Type: metadata.RecordOf(metadata.Ref("Nested"))})

	node := Simplify(metadata.Ref("Node"), Attributes, rt)
	require.Equal(t, metadata.KindObject, node.Kind)
	assert.Equal(t, metadata.Ref("Node"), node.Property("Next").Type)

	assert.Equal(t, metadata.Ref("Node"), Simplify(metadata.Ref("Node"), Writable, rt))

	nested := Simplify(metadata.Ref("Nested"), Writable, rt)
	require.Equal(t, metadata.KindRecord, nested.Kind)
	assert.Equal(t, metadata.Ref("Nested"), *nested.Value)
}

func TestSimplifyDefinition(t *testing.T) {
	rt := metadata.NewResourceType("Test::Resource")
	rt.Define("List", &metadata.TypeDefinition{Type: metadata.ArrayOf(metadata.Ref("List"), nil)})
	rt.Define("Map", &metadata.TypeDefinition{Type: metadata.RecordOf(metadata.Ref("Map"))})

	list := SimplifyDefinition("List", Writable, rt)
	require.Equal(t, metadata.KindArray, list.Kind)
	assert.Equal(t, metadata.Ref("List"), list.Items.Type)

	m := SimplifyDefinition("Map", Attributes, rt)
	require.Equal(t, metadata.KindRecord, m.Kind)
	assert.Equal(t, metadata.Ref("Map"), *m.Value)

	assert.Equal(t, rt.Definitions["List"].Type, SimplifyDefinition("List", Full, rt))
	assert.Equal(t, metadata.Unknown(), SimplifyDefinition("Missing", Writable, rt))
}

func TestSimplify_UnionsCollapseAfterFiltering(t *testing.T) {
	str := metadata.Primitive(metadata.KindString)
	u := metadata.Type{Kind: metadata.KindUnion, Members: []metadata.Type{
		{Kind: metadata.KindObject, Properties: []*metadata.PropertyInfo{{Name: "A", Type: str}, {Name: "Id", Type: str, ReadOnly: true}}},
		{Kind: metadata.KindObject, Properties: []*metadata.PropertyInfo{{Name: "A", Type: str}}},
	}}
	got := Simplify(u, Writable, metadata.NewResourceType("Test::Resource"))
	require.Equal(t, metadata.KindObject, got.Kind)
	assert.Equal(t, []string{"A"}, names(got))
}

func TestSimplify_FullIsIdentity(t *testing.T) {
	typ := metadata.Type{Kind: metadata.KindObject, Properties: []*metadata.PropertyInfo{
		{Name: "Id", Type: metadata.Ref("X"), ReadOnly: true},
	}}
	assert.Equal(t, typ, Simplify(typ, Full, metadata.NewResourceType("Test::Resource")))
}

func TestIsTagDefinition(t *testing.T) {
	str := metadata.Primitive(metadata.KindString)
	pair := metadata.Type{Kind: metadata.KindObject, Properties: []*metadata.PropertyInfo{
		{Name: "Key", Type: str}, {Name: "Value", Type: str},
	}}
	assert.True(t, IsTagDefinition("Tag", pair))
	assert.True(t, IsTagDefinition("ResourceTags", pair))
	assert.False(t, IsTagDefinition("Pair", pair))

	withExtra := pair
	withExtra.Properties = append(append([]*metadata.PropertyInfo{}, pair.Properties...), &metadata.PropertyInfo{Name: "PropagateAtLaunch", Type: str})
	assert.False(t, IsTagDefinition("Tag", withExtra))
}

func TestMode_String(t *testing.T) {
	assert.Equal(t, "writable", Writable.String())
	assert.Equal(t, "attributes", Attributes.String())
	assert.Equal(t, "full", Full.String())
}
