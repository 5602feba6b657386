// Package metadata defines the type model produced by the schema walker.
// It is a normalized representation of CloudFormation resource schemas
// suitable for TypeScript declaration generation.
package metadata

import "github.com/cfnts/cfnts/internal/schema"

// Kind identifies the shape of a Type.
type Kind string

const (
	KindAny       Kind = "any"     // explicitly unconstrained
	KindUnknown   Kind = "unknown" // unresolved or unrecognized
	KindBoolean   Kind = "boolean"
	KindInteger   Kind = "integer"
	KindNumber    Kind = "number"
	KindNull      Kind = "null"
	KindString    Kind = "string"
	KindConst     Kind = "const"     // single literal value
	KindEnum      Kind = "enum"      // closed set of literal values
	KindArray     Kind = "array"     // T[]
	KindObject    Kind = "object"    // ordered named properties
	KindRecord    Kind = "record"    // Record<string, T>
	KindReference Kind = "reference" // named definition, resolved lazily
	KindUnion     Kind = "union"     // A | B
)

// Type is a tagged union over the Kind constants.
type Type struct {
	Kind Kind `json:"kind"`

	// Items holds the element of an array.
	// Only set when Kind == KindArray.
	Items *ItemInfo `json:"items,omitempty"`

	// Properties holds the properties of an object in declaration order.
	// Only set when Kind == KindObject.
	Properties []*PropertyInfo `json:"properties,omitempty"`

	// Required lists the required property names of an object.
	Required []string `json:"required,omitempty"`

	// Value holds the value type of a record.
	// Only set when Kind == KindRecord.
	Value *Type `json:"value,omitempty"`

	// Ref names the referenced definition.
	// Only set when Kind == KindReference.
	Ref string `json:"ref,omitempty"`

	// Shared marks a reference to a caller-supplied type (e.g. the shared Tag
	// type) rather than a definition of the current resource.
	Shared bool `json:"shared,omitempty"`

	// Literal holds the value of a const.
	Literal *schema.Value `json:"literal,omitempty"`

	// Values holds the members of an enum.
	Values []schema.Value `json:"values,omitempty"`

	// Members holds the alternatives of a union. Always flattened,
	// deduplicated and of length >= 2.
	Members []Type `json:"members,omitempty"`
}

// ItemInfo describes the element type of an array.
type ItemInfo struct {
	Type          Type           `json:"type"`
	Documentation *Documentation `json:"documentation,omitempty"`
}

// PropertyInfo describes a single object property.
type PropertyInfo struct {
	Name          string         `json:"name"`
	Type          Type           `json:"type"`
	Documentation *Documentation `json:"documentation,omitempty"`

	// IsAttribute is true when the value is retrievable after creation by
	// name (Fn::GetAtt).
	IsAttribute bool `json:"isAttribute,omitempty"`

	// ReadOnly is true when the template author cannot supply the value.
	ReadOnly bool `json:"readOnly,omitempty"`
}

// TypeDefinition pairs a type with its documentation. Used for the root
// properties type, named definitions and the attributes projection.
type TypeDefinition struct {
	Documentation *Documentation `json:"documentation,omitempty"`
	Type          Type           `json:"type"`
}

// ResourceType is the compiled form of one resource schema document.
type ResourceType struct {
	TypeName string `json:"typeName"`

	// DefinitionNames keeps the document order of Definitions.
	DefinitionNames []string                   `json:"definitionNames,omitempty"`
	Definitions     map[string]*TypeDefinition `json:"definitions,omitempty"`

	Properties TypeDefinition `json:"properties"`

	// Attributes is nil when the resource exposes no attributes. When set,
	// its type is always KindObject.
	Attributes *TypeDefinition `json:"attributes,omitempty"`
}

// NewResourceType creates a resource with an empty definitions arena.
func NewResourceType(typeName string) *ResourceType {
	return &ResourceType{
		TypeName:    typeName,
		Definitions: make(map[string]*TypeDefinition),
	}
}

// Define adds or replaces a named definition, keeping first-seen order.
func (r *ResourceType) Define(name string, def *TypeDefinition) {
	if _, ok := r.Definitions[name]; !ok {
		r.DefinitionNames = append(r.DefinitionNames, name)
	}
	r.Definitions[name] = def
}

// Definition returns the named definition, or nil.
func (r *ResourceType) Definition(name string) *TypeDefinition {
	if r == nil {
		return nil
	}
	return r.Definitions[name]
}

// Property returns the named property of an object type, or nil.
func (t *Type) Property(name string) *PropertyInfo {
	for _, p := range t.Properties {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// IsRequired reports whether name is in the object's required set.
func (t *Type) IsRequired(name string) bool {
	for _, r := range t.Required {
		if r == name {
			return true
		}
	}
	return false
}

// Any returns the explicitly unconstrained type.
func Any() Type { return Type{Kind: KindAny} }

// Unknown returns the unresolved type.
func Unknown() Type { return Type{Kind: KindUnknown} }

// Primitive returns a type of the given primitive kind.
func Primitive(k Kind) Type { return Type{Kind: k} }

// ArrayOf returns an array of the given element type.
func ArrayOf(elem Type, doc *Documentation) Type {
	return Type{Kind: KindArray, Items: &ItemInfo{Type: elem, Documentation: doc}}
}

// RecordOf returns a string-keyed record of the given value type.
func RecordOf(value Type) Type {
	return Type{Kind: KindRecord, Value: &value}
}

// Ref returns a reference to a named definition.
func Ref(name string) Type {
	return Type{Kind: KindReference, Ref: name}
}

// SharedRef returns a reference to a caller-supplied shared type.
func SharedRef(name string) Type {
	return Type{Kind: KindReference, Ref: name, Shared: true}
}
