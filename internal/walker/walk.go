package walker

import (
	"fmt"
	"strings"

	"github.com/cfnts/cfnts/internal/diagnostic"
	"github.com/cfnts/cfnts/internal/metadata"
	"github.com/cfnts/cfnts/internal/schema"
)

// walkFragment merges the allOf fragments of frag, splits documentation from
// shape and converts the shape into a Type.
func (w *Walker) walkFragment(frag *schema.Map, path string) (metadata.Type, *metadata.Documentation) {
	merged := w.mergeFragments(w.flattenAllOf(frag, path), path)
	merged, folded := foldDocOnlyBranches(merged)

	s := shapeOf(merged)
	doc := w.extractDocumentation(merged, s == shapeArray, path)
	w.addAlternatives(doc, folded, s == shapeArray, path)
	return w.walkType(merged, s, path), doc
}

// shapeOf detects the shape of an allOf-free fragment. Checks run in
// priority order since a fragment may satisfy several of them.
func shapeOf(frag *schema.Map) shape {
	switch {
	case frag.Has(fieldRef):
		return shapeRef
	case frag.Has(fieldConst):
		return shapeConst
	case frag.Has(fieldEnum):
		return shapeEnum
	}

	names := typeNames(frag)
	if (len(names) == 1 && names[0] == "array") || (!frag.Has(fieldType) && frag.Has(fieldItems)) {
		return shapeArray
	}
	if len(names) > 1 {
		return shapeMultiType
	}
	if len(names) == 1 {
		s, ok := shapeForTypeName(names[0])
		if !ok {
			return shapeUnrecognized
		}
		if s == shapeObject {
			return objectShape(frag)
		}
		return s
	}
	if frag.Has(fieldType) {
		// "type" present but not a string or list of strings.
		return shapeUnrecognized
	}

	switch {
	case !hasShape(frag):
		for _, k := range []string{"format", "pattern", "minLength", "maxLength"} {
			if frag.Has(k) {
				return shapeString
			}
		}
		return shapeEmpty
	case frag.Has(fieldProperties):
		return shapeObject
	case frag.Has(fieldPatternProperties) || frag.Has(fieldAdditionalProperties):
		return shapeRecord
	case frag.Has(fieldAnyOf) || frag.Has(fieldOneOf):
		return shapeUnion
	}
	return shapeUnrecognized
}

// objectShape decides between a fixed-property object and a record for a
// fragment typed "object".
func objectShape(frag *schema.Map) shape {
	if frag.Has(fieldProperties) || frag.Has(fieldAnyOf) || frag.Has(fieldOneOf) {
		return shapeObject
	}
	return shapeRecord
}

// walkType converts a fragment of detected shape s into a Type.
func (w *Walker) walkType(frag *schema.Map, s shape, path string) metadata.Type {
	switch s {
	case shapeEmpty:
		return metadata.Any()
	case shapeUnrecognized:
		w.warn(diagnostic.CategoryShape, path, "unrecognized schema shape (fields %s)", strings.Join(frag.Keys(), ", "))
		return metadata.Unknown()
	case shapeMultiType:
		w.reportUnmodeled(frag, path)
		return w.walkMultiType(frag, path)
	}

	if extra := unexpectedFields(frag, s); len(extra) > 0 {
		w.warn(diagnostic.CategoryShape, path, "fields %s are not used by a %s schema", strings.Join(extra, ", "), s)
	}

	switch s {
	case shapeRef:
		return w.walkRef(frag, path)
	case shapeConst:
		v, _ := frag.Get(fieldConst)
		return metadata.Type{Kind: metadata.KindConst, Literal: &v}
	case shapeEnum:
		return w.walkEnum(frag, path)
	case shapeArray:
		return w.walkArray(frag, path)
	case shapeBoolean:
		return metadata.Primitive(metadata.KindBoolean)
	case shapeNumber:
		if typeNames(frag)[0] == "integer" {
			return metadata.Primitive(metadata.KindInteger)
		}
		return metadata.Primitive(metadata.KindNumber)
	case shapeNull:
		return metadata.Primitive(metadata.KindNull)
	case shapeString:
		return metadata.Primitive(metadata.KindString)
	case shapeObject:
		return w.walkObject(frag, path)
	case shapeRecord:
		return w.walkRecord(frag, path)
	case shapeUnion:
		return w.walkUnion(frag, path)
	}
	panic(fmt.Sprintf("walker: unhandled shape %s", s))
}

func (w *Walker) reportUnmodeled(frag *schema.Map, path string) {
	var extra []string
	for _, k := range frag.Keys() {
		if !docFields[k] && !shapeFields[k] {
			extra = append(extra, k)
		}
	}
	if len(extra) > 0 {
		w.warn(diagnostic.CategoryShape, path, "unmodeled fields %s", strings.Join(extra, ", "))
	}
}

func (w *Walker) walkRef(frag *schema.Map, path string) metadata.Type {
	v, _ := frag.Get(fieldRef)
	if v.Kind != schema.String {
		w.warn(diagnostic.CategoryReference, path, "$ref must be a string, got %s", v.Kind)
		return metadata.Unknown()
	}
	ref := v.Str
	if name, ok := schema.DefinitionName(ref); ok {
		if !w.doc.Definitions.Has(name) {
			w.warn(diagnostic.CategoryReference, path, "dangling reference %s", ref)
			return metadata.Unknown()
		}
		return metadata.Ref(name)
	}
	if !schema.IsLocalPointer(ref) {
		w.warn(diagnostic.CategoryReference, path, "unsupported external reference %s", ref)
		return metadata.Unknown()
	}
	if w.onInlineStack(ref) {
		w.warn(diagnostic.CategoryReference, path, "cyclic inline reference %s", ref)
		return metadata.Unknown()
	}
	target, err := w.doc.Resolve(ref)
	if err != nil {
		w.warn(diagnostic.CategoryReference, path, "dangling reference: %v", err)
		return metadata.Unknown()
	}
	if target.Kind != schema.Object {
		w.warn(diagnostic.CategoryReference, path, "reference %s does not point at a schema", ref)
		return metadata.Unknown()
	}

	w.inlineStack = append(w.inlineStack, ref)
	defer func() { w.inlineStack = w.inlineStack[:len(w.inlineStack)-1] }()
	t, _ := w.walkFragment(target.Obj, ref)
	return t
}

func (w *Walker) walkEnum(frag *schema.Map, path string) metadata.Type {
	v, _ := frag.Get(fieldEnum)
	if v.Kind != schema.Array || len(v.Arr) == 0 {
		w.warn(diagnostic.CategoryShape, path, "enum must be a non-empty array")
		return metadata.Unknown()
	}
	values := make([]schema.Value, 0, len(v.Arr))
	for _, e := range v.Arr {
		dup := false
		for _, seen := range values {
			if seen.Equal(e) {
				dup = true
				break
			}
		}
		if !dup {
			values = append(values, e)
		}
	}
	return metadata.Type{Kind: metadata.KindEnum, Values: values}
}

func (w *Walker) walkArray(frag *schema.Map, path string) metadata.Type {
	items, ok := frag.Get(fieldItems)
	if !ok {
		return metadata.ArrayOf(metadata.Any(), nil)
	}
	ipath := path + "/items"
	switch items.Kind {
	case schema.Object:
		t, doc := w.walkFragment(items.Obj, ipath)
		return metadata.ArrayOf(t, nonEmpty(doc))
	case schema.Array:
		w.warn(diagnostic.CategoryShape, ipath, "tuple items are not supported, using the union of the item schemas")
		var members []metadata.Type
		for i, it := range items.Arr {
			if it.Kind != schema.Object {
				continue
			}
			t, _ := w.walkFragment(it.Obj, fmt.Sprintf("%s/%d", ipath, i))
			members = append(members, t)
		}
		return metadata.ArrayOf(metadata.SimplifyUnion(members), nil)
	default:
		w.warn(diagnostic.CategoryShape, ipath, "items must be a schema object, got %s", items.Kind)
		return metadata.ArrayOf(metadata.Unknown(), nil)
	}
}

// walkMultiType handles "type": [...] by walking one branch per type name
// with the shape fields that type name uses.
func (w *Walker) walkMultiType(frag *schema.Map, path string) metadata.Type {
	var members []metadata.Type
	for _, name := range typeNames(frag) {
		s, ok := shapeForTypeName(name)
		if !ok {
			w.warn(diagnostic.CategoryShape, path, "unknown type name %q", name)
			members = append(members, metadata.Unknown())
			continue
		}
		allowed := make(map[string]bool)
		for _, f := range allowedShapeFields[s] {
			allowed[f] = true
		}
		branch := schema.NewMap()
		for _, k := range frag.Keys() {
			switch {
			case k == fieldType:
				branch.Set(k, schema.StringValue(name))
			case allowed[k]:
				v, _ := frag.Get(k)
				branch.Set(k, v)
			}
		}
		members = append(members, w.walkType(branch, shapeOf(branch), path))
	}
	return metadata.SimplifyUnion(members)
}

func (w *Walker) walkObject(frag *schema.Map, path string) metadata.Type {
	for _, key := range []string{fieldAnyOf, fieldOneOf} {
		if v, ok := frag.Get(key); ok {
			return w.walkObjectBranches(frag, key, v, path)
		}
	}

	t := metadata.Type{Kind: metadata.KindObject}
	if req, ok := frag.Get(fieldRequired); ok {
		for _, name := range req.Strings() {
			if !t.IsRequired(name) {
				t.Required = append(t.Required, name)
			}
		}
	}
	props, ok := frag.Get(fieldProperties)
	if !ok {
		return t
	}
	if props.Kind != schema.Object {
		w.warn(diagnostic.CategoryShape, path+"/properties", "properties must be an object, got %s", props.Kind)
		return t
	}

	for _, name := range props.Obj.Keys() {
		v, _ := props.Obj.Get(name)
		ppath := path + "/properties/" + escapePointer(name)
		prop := &metadata.PropertyInfo{Name: name}
		if v.Kind != schema.Object {
			w.warn(diagnostic.CategoryShape, ppath, "property schema must be an object, got %s", v.Kind)
			prop.Type = metadata.Unknown()
			t.Properties = append(t.Properties, prop)
			continue
		}
		pt, pdoc := w.walkFragment(v.Obj, ppath)
		if path == w.scopePath {
			w.overrideDescription(pdoc, name)
		}
		markWellKnown(name, pt, pdoc)
		prop.Type = pt
		prop.Documentation = nonEmpty(pdoc)
		t.Properties = append(t.Properties, prop)
	}
	for _, name := range t.Required {
		if t.Property(name) == nil {
			w.warn(diagnostic.CategoryShape, path, "required property %q is not declared", name)
		}
	}
	return t
}

// walkObjectBranches merges every branch of an object-level anyOf/oneOf
// with the shape fields shared by the branches, giving a union of objects.
func (w *Walker) walkObjectBranches(frag *schema.Map, key string, v schema.Value, path string) metadata.Type {
	if v.Kind != schema.Array {
		w.warn(diagnostic.CategoryShape, path+"/"+key, "%s must be an array, got %s", key, v.Kind)
		return metadata.Unknown()
	}
	base := schema.NewMap()
	for _, k := range frag.Keys() {
		if k != key && shapeFields[k] {
			val, _ := frag.Get(k)
			base.Set(k, val)
		}
	}

	var members []metadata.Type
	for i, b := range v.Arr {
		bpath := fmt.Sprintf("%s/%s/%d", path, key, i)
		if b.Kind != schema.Object {
			w.warn(diagnostic.CategoryShape, bpath, "%s branch is not a schema object", key)
			continue
		}
		branch := b.Obj
		if target, tpath, ok := w.refOnlyTarget(branch, bpath); ok {
			w.inlineStack = append(w.inlineStack, tpath)
			t, _ := w.walkFragment(w.mergeFragments([]*schema.Map{base, target}, bpath), bpath)
			w.inlineStack = w.inlineStack[:len(w.inlineStack)-1]
			members = append(members, t)
			continue
		}
		t, _ := w.walkFragment(w.mergeFragments([]*schema.Map{base, branch}, bpath), bpath)
		members = append(members, t)
	}
	return metadata.SimplifyUnion(members)
}

func (w *Walker) walkRecord(frag *schema.Map, path string) metadata.Type {
	var values []metadata.Type
	if pp, ok := frag.Get(fieldPatternProperties); ok {
		if pp.Kind == schema.Object {
			for _, pattern := range pp.Obj.Keys() {
				sub, _ := pp.Obj.Get(pattern)
				spath := path + "/patternProperties/" + escapePointer(pattern)
				if sub.Kind != schema.Object {
					w.warn(diagnostic.CategoryShape, spath, "pattern property schema must be an object")
					continue
				}
				t, _ := w.walkFragment(sub.Obj, spath)
				values = append(values, t)
			}
		} else {
			w.warn(diagnostic.CategoryShape, path+"/patternProperties", "patternProperties must be an object, got %s", pp.Kind)
		}
	}

	closed := false
	if ap, ok := frag.Get(fieldAdditionalProperties); ok {
		switch ap.Kind {
		case schema.Object:
			t, _ := w.walkFragment(ap.Obj, path+"/additionalProperties")
			values = append(values, t)
		case schema.Bool:
			closed = !ap.Bool
		}
	}

	if len(values) == 0 {
		if closed {
			// No properties and nothing else allowed.
			return metadata.Type{Kind: metadata.KindObject}
		}
		return metadata.RecordOf(metadata.Any())
	}
	return metadata.RecordOf(metadata.SimplifyUnion(values))
}

// walkUnion handles a bare anyOf/oneOf.
func (w *Walker) walkUnion(frag *schema.Map, path string) metadata.Type {
	var members []metadata.Type
	for _, key := range []string{fieldAnyOf, fieldOneOf} {
		v, ok := frag.Get(key)
		if !ok {
			continue
		}
		if v.Kind != schema.Array {
			w.warn(diagnostic.CategoryShape, path+"/"+key, "%s must be an array, got %s", key, v.Kind)
			continue
		}
		for i, b := range v.Arr {
			bpath := fmt.Sprintf("%s/%s/%d", path, key, i)
			if b.Kind != schema.Object {
				w.warn(diagnostic.CategoryShape, bpath, "%s branch is not a schema object", key)
				continue
			}
			t, _ := w.walkFragment(b.Obj, bpath)
			members = append(members, t)
		}
	}
	return metadata.SimplifyUnion(members)
}

// overrideDescription replaces a property description with the supplemental
// documentation for the current scope, if any.
func (w *Walker) overrideDescription(doc *metadata.Documentation, property string) {
	if w.docs == nil {
		return
	}
	var desc string
	var ok bool
	if w.scopeDefinition == "" {
		desc, ok = w.docs.PropertyDescription(w.doc.TypeName, property)
	} else {
		desc, ok = w.docs.DefinitionPropertyDescription(w.doc.TypeName, w.scopeDefinition, property)
	}
	if ok {
		doc.Description = desc
	}
}

func escapePointer(s string) string {
	s = strings.ReplaceAll(s, "~", "~0")
	return strings.ReplaceAll(s, "/", "~1")
}
