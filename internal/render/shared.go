package render

import (
	"strings"

	"github.com/cfnts/cfnts/internal/metadata"
	"github.com/cfnts/cfnts/internal/schema"
	"github.com/cfnts/cfnts/internal/simplify"
)

// PolicyDocumentTypeName is the shared type substituted for IAM policy
// documents.
const PolicyDocumentTypeName = "PolicyDocument"

const policyStatementTypeName = "PolicyStatement"

// sharedNames returns the identifiers a resource module may import from the
// shared module under opts. Local definitions never take these names.
func sharedNames(opts Options) []string {
	names := []string{simplify.TagTypeName, PolicyDocumentTypeName, policyStatementTypeName}
	for _, name := range opts.WellKnownTypes {
		names = append(names, name)
	}
	return names
}

// sharedTypes builds the caller-supplied types every resource module may
// import, as a resource type of definitions.
func sharedTypes() *metadata.ResourceType {
	str := metadata.Primitive(metadata.KindString)
	strOrList := metadata.Type{Kind: metadata.KindUnion, Members: []metadata.Type{str, metadata.ArrayOf(str, nil)}}
	doc := func(s string) *metadata.Documentation { return &metadata.Documentation{Description: s} }

	rt := metadata.NewResourceType("cfnts::Shared")
	rt.Define(simplify.TagTypeName, &metadata.TypeDefinition{
		Documentation: doc("A key-value pair attached to a resource."),
		Type: metadata.Type{
			Kind: metadata.KindObject,
			Properties: []*metadata.PropertyInfo{
				{Name: "Key", Type: str, Documentation: doc("The tag key.")},
				{Name: "Value", Type: str, Documentation: doc("The tag value.")},
			},
			Required: []string{"Key", "Value"},
		},
	})
	rt.Define(PolicyDocumentTypeName, &metadata.TypeDefinition{
		Documentation: &metadata.Documentation{
			Description: "An IAM policy document.",
			Link:        "https://docs.aws.amazon.com/IAM/latest/UserGuide/reference_policies_grammar.html",
		},
		Type: metadata.Type{
			Kind: metadata.KindObject,
			Properties: []*metadata.PropertyInfo{
				{Name: "Version", Type: metadata.Type{Kind: metadata.KindEnum, Values: []schema.Value{
					schema.StringValue("2012-10-17"), schema.StringValue("2008-10-17"),
				}}},
				{Name: "Id", Type: str},
				{Name: "Statement", Type: metadata.Type{Kind: metadata.KindUnion, Members: []metadata.Type{
					metadata.Ref(policyStatementTypeName),
					metadata.ArrayOf(metadata.Ref(policyStatementTypeName), nil),
				}}},
			},
			Required: []string{"Statement"},
		},
	})
	principal := metadata.Type{Kind: metadata.KindUnion, Members: []metadata.Type{
		{Kind: metadata.KindConst, Literal: ptr(schema.StringValue("*"))},
		metadata.RecordOf(strOrList),
	}}
	rt.Define(policyStatementTypeName, &metadata.TypeDefinition{
		Documentation: doc("One statement of an IAM policy document."),
		Type: metadata.Type{
			Kind: metadata.KindObject,
			Properties: []*metadata.PropertyInfo{
				{Name: "Sid", Type: str},
				{Name: "Effect", Type: metadata.Type{Kind: metadata.KindEnum, Values: []schema.Value{
					schema.StringValue("Allow"), schema.StringValue("Deny"),
				}}},
				{Name: "Principal", Type: principal},
				{Name: "NotPrincipal", Type: principal},
				{Name: "Action", Type: strOrList},
				{Name: "NotAction", Type: strOrList},
				{Name: "Resource", Type: strOrList},
				{Name: "NotResource", Type: strOrList},
				{Name: "Condition", Type: metadata.RecordOf(metadata.RecordOf(metadata.Any()))},
			},
			Required: []string{"Effect"},
		},
	})
	return rt
}

// FormatShared returns the source of the shared types module.
func FormatShared(opts Options) string {
	rt := sharedTypes()
	r := NewRenderer(rt, Options{SortProperties: false, ExactOptional: opts.ExactOptional})
	for _, name := range rt.DefinitionNames {
		r.RenderDefinition(name, simplify.Full)
	}

	var sb strings.Builder
	sb.WriteString(Header)
	sb.WriteString("\n\n")
	for i, d := range r.Declarations() {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(d.String())
	}
	return sb.String()
}

func ptr[T any](v T) *T { return &v }
