package walker

import (
	"sort"

	"github.com/cfnts/cfnts/internal/schema"
)

// Field names that describe the shape of a value.
const (
	fieldRef                  = "$ref"
	fieldType                 = "type"
	fieldConst                = "const"
	fieldEnum                 = "enum"
	fieldItems                = "items"
	fieldProperties           = "properties"
	fieldPatternProperties    = "patternProperties"
	fieldAdditionalProperties = "additionalProperties"
	fieldRequired             = "required"
	fieldAllOf                = "allOf"
	fieldAnyOf                = "anyOf"
	fieldOneOf                = "oneOf"
)

var shapeFields = map[string]bool{
	fieldRef:                  true,
	fieldType:                 true,
	fieldConst:                true,
	fieldEnum:                 true,
	fieldItems:                true,
	fieldProperties:           true,
	fieldPatternProperties:    true,
	fieldAdditionalProperties: true,
	fieldRequired:             true,
	fieldAllOf:                true,
	fieldAnyOf:                true,
	fieldOneOf:                true,
}

// docFields carry documentation only and never contribute a type.
var docFields = map[string]bool{
	"description":      true,
	"title":            true,
	"minimum":          true,
	"maximum":          true,
	"exclusiveMinimum": true,
	"exclusiveMaximum": true,
	"multipleOf":       true,
	"minLength":        true,
	"maxLength":        true,
	"minItems":         true,
	"maxItems":         true,
	"uniqueItems":      true,
	"pattern":          true,
	"format":           true,
	"default":          true,
	"examples":         true,
	"deprecated":       true,
	"relationshipRef":  true,

	// Accepted without being rendered.
	"$comment":            true,
	"$schema":             true,
	"$id":                 true,
	"insertionOrder":      true,
	"arrayType":           true,
	"markdownDescription": true,
	"minProperties":       true,
	"maxProperties":       true,
}

// concatFields are list-valued fields concatenated (and deduplicated) when
// fragments are merged.
var concatFields = map[string]bool{
	fieldRequired: true,
	"examples":    true,
}

// objectMergeFields are name-keyed maps merged member by member.
var objectMergeFields = map[string]bool{
	fieldProperties:        true,
	fieldPatternProperties: true,
	"definitions":          true,
}

// rootFields are the document root members that describe the properties
// object. Everything else at the root is resource metadata.
var rootFields = []string{
	fieldType,
	fieldProperties,
	fieldRequired,
	fieldPatternProperties,
	fieldAdditionalProperties,
	fieldAllOf,
	fieldAnyOf,
	fieldOneOf,
}

// shape is the detected kind of a schema fragment, in dispatch priority
// order.
type shape int

const (
	shapeRef shape = iota
	shapeConst
	shapeEnum
	shapeArray
	shapeMultiType
	shapeBoolean
	shapeNumber
	shapeNull
	shapeString
	shapeObject
	shapeRecord
	shapeUnion
	shapeEmpty
	shapeUnrecognized
)

func (s shape) String() string {
	switch s {
	case shapeRef:
		return "reference"
	case shapeConst:
		return "const"
	case shapeEnum:
		return "enum"
	case shapeArray:
		return "array"
	case shapeMultiType:
		return "multi-type"
	case shapeBoolean:
		return "boolean"
	case shapeNumber:
		return "number"
	case shapeNull:
		return "null"
	case shapeString:
		return "string"
	case shapeObject:
		return "object"
	case shapeRecord:
		return "record"
	case shapeUnion:
		return "union"
	case shapeEmpty:
		return "empty"
	default:
		return "unrecognized"
	}
}

// allowedShapeFields lists, per shape, the shape fields it consumes. Any
// other shape field present on a fragment is reported.
var allowedShapeFields = map[shape][]string{
	shapeRef:     {fieldRef},
	shapeConst:   {fieldConst, fieldType},
	shapeEnum:    {fieldEnum, fieldType},
	shapeArray:   {fieldType, fieldItems},
	shapeBoolean: {fieldType},
	shapeNumber:  {fieldType},
	shapeNull:    {fieldType},
	shapeString:  {fieldType},
	shapeObject: {fieldType, fieldProperties, fieldRequired, fieldAdditionalProperties,
		fieldPatternProperties, fieldAnyOf, fieldOneOf},
	shapeRecord: {fieldType, fieldPatternProperties, fieldAdditionalProperties},
	shapeUnion:  {fieldAnyOf, fieldOneOf},
}

// shapeForTypeName maps a JSON Schema type name to the shape it selects.
func shapeForTypeName(name string) (shape, bool) {
	switch name {
	case "array":
		return shapeArray, true
	case "boolean":
		return shapeBoolean, true
	case "integer", "number":
		return shapeNumber, true
	case "null":
		return shapeNull, true
	case "string":
		return shapeString, true
	case "object":
		return shapeObject, true
	default:
		return shapeUnrecognized, false
	}
}

// hasShape reports whether frag declares any shape field.
func hasShape(frag *schema.Map) bool {
	for _, k := range frag.Keys() {
		if shapeFields[k] {
			return true
		}
	}
	return false
}

// unexpectedFields returns, sorted, the fields of frag that the detected
// shape does not consume: foreign shape fields and unmodeled fields.
func unexpectedFields(frag *schema.Map, s shape) []string {
	allowed := make(map[string]bool)
	for _, f := range allowedShapeFields[s] {
		allowed[f] = true
	}
	var out []string
	for _, k := range frag.Keys() {
		if docFields[k] || allowed[k] {
			continue
		}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// typeNames returns the declared "type" names of a fragment.
func typeNames(frag *schema.Map) []string {
	v, ok := frag.Get(fieldType)
	if !ok {
		return nil
	}
	return v.Strings()
}
