package metadata

import "github.com/cfnts/cfnts/internal/schema"

// WellKnownPolicyDocument marks a property holding an IAM policy document.
const WellKnownPolicyDocument = "iam-policy-document"

// Documentation holds descriptive metadata extracted from a schema fragment.
// It is purely informational and never participates in type equality.
type Documentation struct {
	Description string `json:"description,omitempty"`
	Title       string `json:"title,omitempty"`

	// Alternatives holds descriptions contributed by anyOf/oneOf branches
	// that carried documentation only.
	Alternatives []string `json:"alternatives,omitempty"`

	// Numeric constraints
	Minimum          *float64 `json:"minimum,omitempty"`
	Maximum          *float64 `json:"maximum,omitempty"`
	ExclusiveMinimum *float64 `json:"exclusiveMinimum,omitempty"`
	ExclusiveMaximum *float64 `json:"exclusiveMaximum,omitempty"`
	MultipleOf       *float64 `json:"multipleOf,omitempty"`

	// String length constraints
	MinLength *int `json:"minLength,omitempty"`
	MaxLength *int `json:"maxLength,omitempty"`

	// Array constraints
	MinItems    *int  `json:"minItems,omitempty"`
	MaxItems    *int  `json:"maxItems,omitempty"`
	UniqueItems *bool `json:"uniqueItems,omitempty"`

	// Patterns and Formats may hold several alternatives.
	Patterns []string `json:"patterns,omitempty"`
	Formats  []string `json:"formats,omitempty"`

	Default  *schema.Value  `json:"default,omitempty"`
	Examples []schema.Value `json:"examples,omitempty"`

	Deprecated bool `json:"deprecated,omitempty"`

	// WellKnownType is a structural marker (see WellKnownPolicyDocument) the
	// renderer may substitute with a shared named type.
	WellKnownType string `json:"wellKnownType,omitempty"`

	// Relationships lists other resource types this value refers to.
	Relationships []Relationship `json:"relationships,omitempty"`

	// Link is an external documentation URL.
	Link string `json:"link,omitempty"`
}

// Relationship is a relationshipRef hint to another resource type.
type Relationship struct {
	TypeName     string `json:"typeName"`
	PropertyPath string `json:"propertyPath,omitempty"`
}

// IsEmpty reports whether the bag carries no information.
func (d *Documentation) IsEmpty() bool {
	if d == nil {
		return true
	}
	return d.Description == "" && d.Title == "" && len(d.Alternatives) == 0 &&
		d.Minimum == nil && d.Maximum == nil && d.ExclusiveMinimum == nil &&
		d.ExclusiveMaximum == nil && d.MultipleOf == nil &&
		d.MinLength == nil && d.MaxLength == nil &&
		d.MinItems == nil && d.MaxItems == nil && d.UniqueItems == nil &&
		len(d.Patterns) == 0 && len(d.Formats) == 0 &&
		d.Default == nil && len(d.Examples) == 0 && !d.Deprecated &&
		d.WellKnownType == "" && len(d.Relationships) == 0 && d.Link == ""
}

// AddPattern appends a pattern unless already present.
func (d *Documentation) AddPattern(p string) {
	d.Patterns = appendUnique(d.Patterns, p)
}

// AddFormat appends a format unless already present.
func (d *Documentation) AddFormat(f string) {
	d.Formats = appendUnique(d.Formats, f)
}

// AddAlternative records a branch description unless already present or
// equal to the primary description.
func (d *Documentation) AddAlternative(desc string) {
	if desc == "" || desc == d.Description {
		return
	}
	d.Alternatives = appendUnique(d.Alternatives, desc)
}

func appendUnique(list []string, v string) []string {
	if v == "" {
		return list
	}
	for _, x := range list {
		if x == v {
			return list
		}
	}
	return append(list, v)
}
