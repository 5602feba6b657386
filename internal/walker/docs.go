package walker

import (
	"strings"

	"github.com/cfnts/cfnts/internal/diagnostic"
	"github.com/cfnts/cfnts/internal/metadata"
	"github.com/cfnts/cfnts/internal/schema"
)

// policyDocumentNames are property names known to hold IAM policy documents
// even though they do not end in "PolicyDocument".
var policyDocumentNames = map[string]bool{
	"KeyPolicy":      true,
	"PolicyText":     true,
	"ResourcePolicy": true,
}

// extractDocumentation collects the documentation fields of frag. When
// asArray is set, string length bounds are read as item bounds.
func (w *Walker) extractDocumentation(frag *schema.Map, asArray bool, path string) *metadata.Documentation {
	doc := &metadata.Documentation{}
	for _, k := range frag.Keys() {
		v, _ := frag.Get(k)
		switch k {
		case "description":
			doc.Description = stringOf(v)
		case "title":
			doc.Title = stringOf(v)
		case "minimum":
			doc.Minimum = floatOf(v)
		case "maximum":
			doc.Maximum = floatOf(v)
		case "exclusiveMinimum":
			doc.ExclusiveMinimum = floatOf(v)
		case "exclusiveMaximum":
			doc.ExclusiveMaximum = floatOf(v)
		case "multipleOf":
			doc.MultipleOf = floatOf(v)
		case "minLength":
			if asArray {
				doc.MinItems = intOf(v)
			} else {
				doc.MinLength = intOf(v)
			}
		case "maxLength":
			if asArray {
				doc.MaxItems = intOf(v)
			} else {
				doc.MaxLength = intOf(v)
			}
		case "minItems":
			doc.MinItems = intOf(v)
		case "maxItems":
			doc.MaxItems = intOf(v)
		case "uniqueItems":
			if v.Kind == schema.Bool {
				b := v.Bool
				doc.UniqueItems = &b
			}
		case "pattern":
			for _, p := range v.Strings() {
				doc.AddPattern(p)
			}
		case "format":
			for _, f := range v.Strings() {
				doc.AddFormat(f)
			}
		case "default":
			dv := v
			doc.Default = &dv
		case "examples":
			if v.Kind == schema.Array {
				doc.Examples = append(doc.Examples, v.Arr...)
			} else {
				doc.Examples = append(doc.Examples, v)
			}
		case "deprecated":
			doc.Deprecated = v.Kind == schema.Bool && v.Bool
		case "relationshipRef":
			w.addRelationships(doc, v, path)
		}
	}
	return doc
}

// addRelationships reads a relationshipRef hint, either a single
// {typeName, propertyPath} object or a list of them.
func (w *Walker) addRelationships(doc *metadata.Documentation, v schema.Value, path string) {
	refs := []schema.Value{v}
	if v.Kind == schema.Array {
		refs = v.Arr
	}
	for _, r := range refs {
		if r.Kind != schema.Object {
			w.warn(diagnostic.CategoryShape, path+"/relationshipRef", "relationshipRef is not an object")
			continue
		}
		tn, _ := r.Obj.Get("typeName")
		pp, _ := r.Obj.Get("propertyPath")
		if tn.Kind != schema.String || tn.Str == "" {
			continue
		}
		doc.Relationships = append(doc.Relationships, metadata.Relationship{
			TypeName:     tn.Str,
			PropertyPath: stringOf(pp),
		})
	}
}

// foldDocOnlyBranches removes anyOf/oneOf from frag when every branch carries
// documentation only, returning the removed branches. Such branches describe
// alternatives of one type and would otherwise become a union of identical
// members.
func foldDocOnlyBranches(frag *schema.Map) (*schema.Map, []*schema.Map) {
	var folded []*schema.Map
	out := frag
	for _, key := range []string{fieldAnyOf, fieldOneOf} {
		v, ok := frag.Get(key)
		if !ok || v.Kind != schema.Array || len(v.Arr) == 0 {
			continue
		}
		var branches []*schema.Map
		docOnly := true
		for _, b := range v.Arr {
			if b.Kind != schema.Object || hasShape(b.Obj) {
				docOnly = false
				break
			}
			branches = append(branches, b.Obj)
		}
		if !docOnly {
			continue
		}
		if out == frag {
			out = frag.Clone()
		}
		out.Delete(key)
		folded = append(folded, branches...)
	}
	return out, folded
}

// addAlternatives merges the documentation of folded branches into doc.
func (w *Walker) addAlternatives(doc *metadata.Documentation, branches []*schema.Map, asArray bool, path string) {
	for _, b := range branches {
		bd := w.extractDocumentation(b, asArray, path)
		doc.AddAlternative(bd.Description)
		for _, p := range bd.Patterns {
			doc.AddPattern(p)
		}
		for _, f := range bd.Formats {
			doc.AddFormat(f)
		}
	}
}

// markWellKnown tags properties holding IAM policy documents.
func markWellKnown(name string, t metadata.Type, doc *metadata.Documentation) {
	if doc == nil || doc.WellKnownType != "" {
		return
	}
	named := strings.HasSuffix(name, "PolicyDocument") || policyDocumentNames[name]
	described := strings.Contains(strings.ToLower(doc.Description), "policy document")
	if !named && !described {
		return
	}
	if policyShaped(t) {
		doc.WellKnownType = metadata.WellKnownPolicyDocument
	}
}

func policyShaped(t metadata.Type) bool {
	switch t.Kind {
	case metadata.KindObject, metadata.KindRecord, metadata.KindAny, metadata.KindUnknown:
		return true
	case metadata.KindUnion:
		for _, m := range t.Members {
			switch m.Kind {
			case metadata.KindObject, metadata.KindRecord, metadata.KindString, metadata.KindAny:
			default:
				return false
			}
		}
		return true
	default:
		return false
	}
}

func stringOf(v schema.Value) string {
	if v.Kind != schema.String {
		return ""
	}
	return v.Str
}

func floatOf(v schema.Value) *float64 {
	f, ok := v.Float()
	if !ok {
		return nil
	}
	return &f
}

func intOf(v schema.Value) *int {
	n, ok := v.Int()
	if !ok {
		return nil
	}
	return &n
}
