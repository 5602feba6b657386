package render

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/txtar"

	"github.com/cfnts/cfnts/internal/metadata"
	"github.com/cfnts/cfnts/internal/schema"
	"github.com/cfnts/cfnts/internal/simplify"
	"github.com/cfnts/cfnts/internal/walker"
)

// TestGolden renders testdata/*.txtar archives. Each holds a schema.json
// and the expected module under its output path.
func TestGolden(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "*.txtar"))
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			ar, err := txtar.ParseFile(path)
			require.NoError(t, err)

			var src []byte
			var wantPath, want string
			for _, f := range ar.Files {
				if f.Name == "schema.json" {
					src = f.Data
				} else {
					wantPath, want = f.Name, string(f.Data)
				}
			}
			require.NotNil(t, src, "archive has no schema.json")

			doc, err := schema.ParseDocument(src)
			require.NoError(t, err)
			f := RenderResource(walker.Build(doc), DefaultOptions())
			assert.Equal(t, wantPath, f.Path)
			assert.Equal(t, want, f.Format(DefaultOptions()))
		})
	}
}

func renderType(t *testing.T, typ metadata.Type, opts Options) string {
	t.Helper()
	r := NewRenderer(metadata.NewResourceType("Test::Resource"), opts)
	r.Render("X", &metadata.TypeDefinition{Type: typ}, simplify.Full)
	require.Len(t, r.Declarations(), 1)
	return r.Declarations()[0].String()
}

func TestRender_ExactOptional(t *testing.T) {
	typ := metadata.Type{
		Kind: metadata.KindObject,
		Properties: []*metadata.PropertyInfo{
			{Name: "A", Type: metadata.Primitive(metadata.KindString)},
			{Name: "B", Type: metadata.Any()},
			{Name: "C", Type: metadata.Primitive(metadata.KindString)},
			{Name: "D", Type: metadata.Unknown()},
		},
		Required: []string{"C"},
	}

	got := renderType(t, typ, Options{SortProperties: true, ExactOptional: true})
	assert.Equal(t, "export interface X {\n"+
		"  A?: string | undefined;\n"+
		"  B?: any;\n"+
		"  C: string;\n"+
		"  D?: unknown;\n"+
		"}\n", got)

	got = renderType(t, typ, Options{SortProperties: true})
	assert.Contains(t, got, "  A?: string;\n")
}

func TestRender_PropertyOrder(t *testing.T) {
	typ := metadata.Type{
		Kind: metadata.KindObject,
		Properties: []*metadata.PropertyInfo{
			{Name: "b", Type: metadata.Primitive(metadata.KindNumber)},
			{Name: "B", Type: metadata.Primitive(metadata.KindNumber)},
			{Name: "a", Type: metadata.Primitive(metadata.KindNumber)},
		},
	}
	sorted := renderType(t, typ, Options{SortProperties: true})
	assert.Equal(t, "export interface X {\n  B?: number;\n  a?: number;\n  b?: number;\n}\n", sorted)

	declared := renderType(t, typ, Options{})
	assert.Equal(t, "export interface X {\n  b?: number;\n  B?: number;\n  a?: number;\n}\n", declared)
}

func TestRender_TypeExpressions(t *testing.T) {
	str := metadata.Primitive(metadata.KindString)
	num := metadata.Primitive(metadata.KindNumber)
	union := metadata.Type{Kind: metadata.KindUnion, Members: []metadata.Type{str, num}}
	lit := schema.StringValue("on")
	enum := metadata.Type{Kind: metadata.KindEnum, Values: []schema.Value{schema.StringValue("a"), schema.NumberValue("2"), schema.BoolValue(true)}}

	tests := []struct {
		name string
		typ  metadata.Type
		want string
	}{
		{"integer", metadata.Primitive(metadata.KindInteger), "number"},
		{"null", metadata.Primitive(metadata.KindNull), "null"},
		{"const", metadata.Type{Kind: metadata.KindConst, Literal: &lit}, `"on"`},
		{"enum", enum, `"a" | 2 | true`},
		{"array of union", metadata.ArrayOf(union, nil), "(string | number)[]"},
		{"array of enum", metadata.ArrayOf(enum, nil), `("a" | 2 | true)[]`},
		{"nested array", metadata.ArrayOf(metadata.ArrayOf(str, nil), nil), "string[][]"},
		{"record", metadata.RecordOf(metadata.ArrayOf(str, nil)), "Record<string, string[]>"},
		{"empty object", metadata.Type{Kind: metadata.KindObject}, "{}"},
		{"shared", metadata.SharedRef("Tag"), "Tag"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.typ.Kind == metadata.KindObject {
				assert.Equal(t, "export interface X {}\n", renderType(t, tt.typ, Options{}))
				return
			}
			assert.Equal(t, "export type X = "+tt.want+";\n", renderType(t, tt.typ, Options{}))
		})
	}
}

func TestRender_InlineObjectAndQuotedKeys(t *testing.T) {
	typ := metadata.Type{
		Kind: metadata.KindObject,
		Properties: []*metadata.PropertyInfo{
			{Name: "Endpoint", Type: metadata.Type{
				Kind: metadata.KindObject,
				Properties: []*metadata.PropertyInfo{
					{Name: "Address", Type: metadata.Primitive(metadata.KindString),
						Documentation: &metadata.Documentation{Description: "Host name."}},
				},
				Required: []string{"Address"},
			}},
			{Name: "my-key", Type: metadata.Primitive(metadata.KindString)},
			{Name: "say \"hi\"", Type: metadata.Primitive(metadata.KindString)},
		},
	}
	got := renderType(t, typ, Options{})
	assert.Equal(t, "export interface X {\n"+
		"  Endpoint?: {\n"+
		"    /** Host name. */\n"+
		"    Address: string;\n"+
		"  };\n"+
		"  \"my-key\"?: string;\n"+
		"  \"say \\\"hi\\\"\"?: string;\n"+
		"}\n", got)
}

func TestRender_DocumentationTags(t *testing.T) {
	f := func(v float64) *float64 { return &v }
	n := func(v int) *int { return &v }
	yes := true
	def := schema.StringValue("x")
	d := &metadata.Documentation{
		Description:      "Line one.\nLine two.",
		Alternatives:     []string{"Other form."},
		Minimum:          f(0),
		Maximum:          f(10.5),
		ExclusiveMinimum: f(-1),
		ExclusiveMaximum: f(11),
		MultipleOf:       f(0.5),
		MinLength:        n(1),
		MaxLength:        n(2),
		MinItems:         n(3),
		MaxItems:         n(4),
		UniqueItems:      &yes,
		Patterns:         []string{"^a", "^b"},
		Formats:          []string{"uri"},
		Default:          &def,
		Examples:         []schema.Value{schema.NumberValue("1"), schema.StringValue("two")},
		Deprecated:       true,
		Relationships:    []metadata.Relationship{{TypeName: "AWS::S3::Bucket", PropertyPath: "/properties/Arn"}},
		Link:             "https://example.com",
	}
	assert.Equal(t, []string{
		"Line one.",
		"Line two.",
		"",
		"Other form.",
		"@minimum 0",
		"@maximum 10.5",
		"@exclusiveMinimum -1",
		"@exclusiveMaximum 11",
		"@multipleOf 0.5",
		"@minLength 1",
		"@maxLength 2",
		"@minItems 3",
		"@maxItems 4",
		"@uniqueItems",
		"@pattern ^a",
		"@pattern ^b",
		"@format uri",
		`@default "x"`,
		"@example 1",
		`@example "two"`,
		"@deprecated",
		"@see AWS::S3::Bucket /properties/Arn",
		"@see https://example.com",
	}, docLines(d))
}

func TestRender_CommentEscaping(t *testing.T) {
	def := &metadata.TypeDefinition{
		Documentation: &metadata.Documentation{Description: "Glob like a/*/b */ ends here.", Patterns: []string{"^.*/$"}},
		Type:          metadata.Primitive(metadata.KindString),
	}
	r := NewRenderer(metadata.NewResourceType("Test::Resource"), Options{})
	r.Render("X", def, simplify.Full)
	got := r.Declarations()[0].Doc

	assert.Equal(t, "/**\n * Glob like a/*\\/b *\\/ ends here.\n * @pattern ^.*\\/$\n */\n", got)
	assert.Equal(t, 1, strings.Count(got, "*/"))
}

func TestRender_WellKnownSubstitution(t *testing.T) {
	typ := metadata.Type{
		Kind: metadata.KindObject,
		Properties: []*metadata.PropertyInfo{{
			Name:          "Policy",
			Type:          metadata.RecordOf(metadata.Any()),
			Documentation: &metadata.Documentation{WellKnownType: metadata.WellKnownPolicyDocument},
		}},
	}

	r := NewRenderer(metadata.NewResourceType("Test::Resource"), DefaultOptions())
	r.Render("X", &metadata.TypeDefinition{Type: typ}, simplify.Full)
	assert.Contains(t, r.Declarations()[0].Code, "Policy?: PolicyDocument;")
	assert.Equal(t, []string{"PolicyDocument"}, r.SharedUsed())

	r = NewRenderer(metadata.NewResourceType("Test::Resource"), Options{})
	r.Render("X", &metadata.TypeDefinition{Type: typ}, simplify.Full)
	assert.Contains(t, r.Declarations()[0].Code, "Policy?: Record<string, any>;")
	assert.Empty(t, r.SharedUsed())
}

func TestRenderResource_SelfReference(t *testing.T) {
	doc, err := schema.ParseDocument([]byte(`{
		"typeName": "Test::Tree",
		"definitions": {
			"Node": {
				"type": "object",
				"properties": {
					"Value": {"type": "string"},
					"Children": {"type": "array", "items": {"$ref": "#/definitions/Node"}}
				}
			}
		},
		"properties": {"Root": {"$ref": "#/definitions/Node"}}
	}`))
	require.NoError(t, err)

	f := RenderResource(walker.Build(doc), DefaultOptions())
	require.Len(t, f.Declarations, 2)
	assert.Equal(t, "TreeProps", f.Declarations[0].Name)
	assert.Equal(t, "Node", f.Declarations[1].Name)
	assert.Equal(t, "export interface Node {\n  Children?: Node[];\n  Value?: string;\n}\n", f.Declarations[1].Code)
	assert.Empty(t, f.AttributesName)
}

func TestRenderResource_NameCollisions(t *testing.T) {
	rt := metadata.NewResourceType("AWS::Demo::Widget")
	rt.Define("Record", &metadata.TypeDefinition{Type: metadata.Type{Kind: metadata.KindEnum, Values: []schema.Value{schema.StringValue("A")}}})
	rt.Define("WidgetProps", &metadata.TypeDefinition{Type: metadata.Type{Kind: metadata.KindUnion, Members: []metadata.Type{
		metadata.Primitive(metadata.KindString), metadata.Primitive(metadata.KindNumber),
	}}})
	rt.Properties = metadata.TypeDefinition{Type: metadata.Type{
		Kind: metadata.KindObject,
		Properties: []*metadata.PropertyInfo{
			{Name: "Kind", Type: metadata.Ref("Record")},
			{Name: "Value", Type: metadata.Ref("WidgetProps")},
		},
	}}

	f := RenderResource(rt, DefaultOptions())
	var names []string
	for _, d := range f.Declarations {
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{"WidgetProps", "Record_", "WidgetProps_"}, names)
	assert.Contains(t, f.Declarations[0].Code, "Kind?: Record_;")
	assert.Contains(t, f.Declarations[0].Code, "Value?: WidgetProps_;")
}

func TestRenderResource_SelfReferentialAliases(t *testing.T) {
	rt := metadata.NewResourceType("Test::Resource")
	rt.Define("List", &metadata.TypeDefinition{Type: metadata.ArrayOf(metadata.Ref("List"), nil)})
	rt.Define("Tree", &metadata.TypeDefinition{Type: metadata.RecordOf(metadata.Ref("Tree"))})
	rt.Properties = metadata.TypeDefinition{Type: metadata.Type{
		Kind: metadata.KindObject,
		Properties: []*metadata.PropertyInfo{
			{Name: "Items", Type: metadata.Ref("List")},
			{Name: "Index", Type: metadata.Ref("Tree")},
		},
	}}

	f := RenderResource(rt, DefaultOptions())
	require.Len(t, f.Declarations, 3)
	assert.Equal(t, "export interface ResourceProps {\n  Index?: Record<string, Tree>;\n  Items?: List[];\n}\n", f.Declarations[0].Code)
	assert.Equal(t, "export type List = List[];\n", f.Declarations[1].Code)
	assert.Equal(t, "export type Tree = Record<string, Tree>;\n", f.Declarations[2].Code)
}

func TestRenderResource_SharedNamesReserved(t *testing.T) {
	doc, err := schema.ParseDocument([]byte(`{
		"typeName": "AWS::Demo::Group",
		"definitions": {
			"Tag": {
				"type": "object",
				"properties": {
					"Key": {"type": "string"},
					"Value": {"type": "string"},
					"PropagateAtLaunch": {"type": "boolean"}
				},
				"required": ["Key", "Value"]
			},
			"ResourceTag": {
				"type": "object",
				"properties": {"Key": {"type": "string"}, "Value": {"type": "string"}},
				"required": ["Key", "Value"]
			},
			"PolicyDocument": {
				"type": "object",
				"properties": {"Name": {"type": "string"}}
			}
		},
		"properties": {
			"LaunchTags": {"type": "array", "items": {"$ref": "#/definitions/Tag"}},
			"Tags": {"type": "array", "items": {"$ref": "#/definitions/ResourceTag"}},
			"Document": {"$ref": "#/definitions/PolicyDocument"},
			"AccessPolicyDocument": {"type": "object"}
		}
	}`))
	require.NoError(t, err)

	f := RenderResource(walker.Build(doc), DefaultOptions())
	assert.Equal(t, []string{"PolicyDocument", "Tag"}, f.SharedTypes)

	var names []string
	for _, d := range f.Declarations {
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{"GroupProps", "Tag_", "PolicyDocument_"}, names)

	props := f.Declarations[0].Code
	assert.Contains(t, props, "AccessPolicyDocument?: PolicyDocument;")
	assert.Contains(t, props, "Document?: PolicyDocument_;")
	assert.Contains(t, props, "LaunchTags?: Tag_[];")
	assert.Contains(t, props, "Tags?: Tag[];")

	out := f.Format(DefaultOptions())
	assert.Contains(t, out, `import type { PolicyDocument, Tag } from "../shared";`)
	assert.NotContains(t, out, "export interface Tag {")
	assert.NotContains(t, out, "export interface PolicyDocument {")
}

func TestRender_ExactOptionalWellKnown(t *testing.T) {
	typ := metadata.Type{
		Kind: metadata.KindObject,
		Properties: []*metadata.PropertyInfo{
			{
				Name:          "Policy",
				Type:          metadata.Any(),
				Documentation: &metadata.Documentation{WellKnownType: metadata.WellKnownPolicyDocument},
			},
			{Name: "Extra", Type: metadata.Any()},
		},
	}
	opts := DefaultOptions()
	opts.ExactOptional = true

	r := NewRenderer(metadata.NewResourceType("Test::Resource"), opts)
	r.Render("X", &metadata.TypeDefinition{Type: typ}, simplify.Full)
	code := r.Declarations()[0].Code
	assert.Contains(t, code, "  Policy?: PolicyDocument | undefined;\n")
	assert.Contains(t, code, "  Extra?: any;\n")
}

func TestRenderer_Referenced(t *testing.T) {
	rt := metadata.NewResourceType("Test::Resource")
	rt.Define("A", &metadata.TypeDefinition{Type: metadata.Type{Kind: metadata.KindEnum, Values: []schema.Value{schema.StringValue("x")}}})
	rt.Define("B", &metadata.TypeDefinition{Type: metadata.Type{Kind: metadata.KindEnum, Values: []schema.Value{schema.StringValue("y")}}})

	r := NewRenderer(rt, Options{})
	r.Render("X", &metadata.TypeDefinition{Type: metadata.ArrayOf(metadata.Ref("B"), nil)}, simplify.Writable)
	assert.Equal(t, []string{"B"}, r.Referenced())
	assert.True(t, r.IsReferenced("B"))
	assert.False(t, r.IsReferenced("A"))
}

func TestFormatShared(t *testing.T) {
	got := FormatShared(DefaultOptions())
	assert.True(t, strings.HasPrefix(got, Header+"\n\n"))
	assert.Contains(t, got, "export interface Tag {\n  /** The tag key. */\n  Key: string;\n")
	assert.Contains(t, got, "export interface PolicyDocument {\n")
	assert.Contains(t, got, `  Version?: "2012-10-17" | "2008-10-17";`)
	assert.Contains(t, got, "  Statement: PolicyStatement | PolicyStatement[];\n")
	assert.Contains(t, got, `  Effect: "Allow" | "Deny";`)
	assert.Contains(t, got, `  Principal?: "*" | Record<string, string | string[]>;`)
}

func TestFormatIndex(t *testing.T) {
	files := []*File{
		{TypeName: "AWS::SQS::Queue", Path: FilePath("AWS::SQS::Queue")},
		{TypeName: "AWS::S3::Bucket", Path: FilePath("AWS::S3::Bucket")},
		{TypeName: "Alexa::ASK::Skill", Path: FilePath("Alexa::ASK::Skill")},
	}
	assert.Equal(t, Header+"\n\n"+
		"export * from \"./shared\";\n"+
		"export * as S3Bucket from \"./s3/bucket\";\n"+
		"export * as SQSQueue from \"./sqs/queue\";\n"+
		"export * as AlexaASKSkill from \"./alexa-ask/skill\";\n", FormatIndex(files))
}

func TestNames(t *testing.T) {
	assert.Equal(t, "MyRuleName", Identifier("my-rule name"))
	assert.Equal(t, "S3", Identifier("s3"))
	assert.Equal(t, "IAMRole", Identifier("IAMRole"))
	assert.Equal(t, "_", Identifier("--"))
	assert.True(t, strings.HasPrefix(Identifier("2fa"), "_"))

	assert.Equal(t, "ec2/security-group.ts", FilePath("AWS::EC2::SecurityGroup"))
	assert.Equal(t, "test/resource.ts", FilePath("Test::Resource"))
	assert.Equal(t, "EC2SecurityGroup", Namespace("AWS::EC2::SecurityGroup"))

	vendor, service, resource := ResourceNames("AWS::S3::Bucket")
	assert.Equal(t, []string{"AWS", "S3", "Bucket"}, []string{vendor, service, resource})

	assert.Equal(t, "Name", tsPropertyKey("Name"))
	assert.Equal(t, `"0day"`, tsPropertyKey("0day"))
	assert.Equal(t, `""`, tsPropertyKey(""))
}
