package walker

import (
	"sort"
	"strings"

	"github.com/cfnts/cfnts/internal/diagnostic"
	"github.com/cfnts/cfnts/internal/metadata"
	"github.com/cfnts/cfnts/internal/schema"
)

const wildcard = "*"

type flags struct {
	readOnly  bool
	attribute bool
}

// classifier computes read-only and attribute flags for the properties of a
// built resource. Flags live in an overlay keyed by node identity until
// commit, so a definition reached from several paths is classified once.
type classifier struct {
	w       *Walker
	rt      *metadata.ResourceType
	overlay map[*metadata.PropertyInfo]*flags
}

type propertyPath struct {
	raw  string
	segs []string
}

func (p propertyPath) key() string { return strings.Join(p.segs, "/") }

func (p propertyPath) hasWildcard() bool {
	for _, s := range p.segs {
		if s == wildcard {
			return true
		}
	}
	return false
}

func newClassifier(w *Walker) *classifier {
	return &classifier{
		w:       w,
		rt:      w.rt,
		overlay: make(map[*metadata.PropertyInfo]*flags),
	}
}

func (c *classifier) flags(p *metadata.PropertyInfo) *flags {
	f, ok := c.overlay[p]
	if !ok {
		f = &flags{readOnly: p.ReadOnly, attribute: p.IsAttribute}
		c.overlay[p] = f
	}
	return f
}

// classify marks every readOnlyProperties path, then promotes breadcrumb
// ancestors, then applies the legacy exception table.
func (c *classifier) classify() {
	var explicit []propertyPath
	seen := make(map[string]bool)
	for _, raw := range c.w.doc.ReadOnlyProperties {
		p := propertyPath{raw: raw, segs: schema.SplitPath(raw)}
		if len(p.segs) == 0 || seen[p.key()] {
			continue
		}
		seen[p.key()] = true
		explicit = append(explicit, p)
	}

	for _, p := range explicit {
		c.markExplicit(p)
	}
	for _, p := range breadcrumbs(explicit, seen) {
		c.promote(p)
	}
	c.applyExceptions()
}

func (c *classifier) markExplicit(p propertyPath) {
	matches := c.resolve(p.segs)
	if len(matches) == 0 {
		c.w.warn(diagnostic.CategoryAttribute, p.raw, "read-only path matches no property")
		return
	}
	eligible := !p.hasWildcard()
	for _, m := range matches {
		f := c.flags(m)
		f.readOnly = true
		if eligible && !metadata.ContainsStructure(m.Type, c.rt) {
			f.attribute = true
		}
	}
	for _, m := range matches[1:] {
		if !metadata.IsSameType(matches[0].Type, m.Type) {
			c.w.warn(diagnostic.CategoryAttribute, p.raw,
				"ambiguous attribute type: path resolves to %d properties of different types, using the first", len(matches))
			break
		}
	}
}

// breadcrumbs returns the non-leaf prefixes of the explicit paths that are
// not explicit themselves, deepest first.
func breadcrumbs(explicit []propertyPath, isExplicit map[string]bool) []propertyPath {
	var out []propertyPath
	seen := make(map[string]bool)
	for _, p := range explicit {
		for n := len(p.segs) - 1; n > 0; n-- {
			prefix := propertyPath{segs: p.segs[:n]}
			prefix.raw = "/properties/" + prefix.key()
			k := prefix.key()
			if p.segs[n-1] == wildcard || isExplicit[k] || seen[k] {
				continue
			}
			seen[k] = true
			out = append(out, prefix)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return len(out[i].segs) > len(out[j].segs)
	})
	return out
}

// promote applies the breadcrumb rules to every property p resolves to: an
// ancestor whose children are all read-only becomes read-only in their
// place, and an ancestor with an attribute child is an attribute.
func (c *classifier) promote(p propertyPath) {
	for _, anc := range c.resolve(p.segs) {
		children := c.children(anc)
		if len(children) == 0 {
			continue
		}
		allReadOnly, anyAttribute := true, false
		for _, ch := range children {
			f := c.flags(ch)
			allReadOnly = allReadOnly && f.readOnly
			anyAttribute = anyAttribute || f.attribute
		}
		if allReadOnly {
			c.flags(anc).readOnly = true
			for _, ch := range children {
				c.flags(ch).readOnly = false
			}
		}
		if anyAttribute {
			c.flags(anc).attribute = true
		}
	}
}

func (c *classifier) applyExceptions() {
	names := c.w.exceptions[c.rt.TypeName]
	for _, name := range names {
		found := false
		for _, t := range c.expand(c.rt.Properties.Type, false) {
			if t.Kind != metadata.KindObject {
				continue
			}
			if p := t.Property(name); p != nil {
				c.flags(p).attribute = true
				found = true
			}
		}
		if !found {
			c.w.warn(diagnostic.CategoryAttribute, "/properties/"+name, "legacy attribute exception names a missing property")
		}
	}
}

// resolve returns the properties addressed by segs, starting at the root
// properties type. Objects are entered by name, arrays by "*", references
// through the definitions arena and unions through every branch.
func (c *classifier) resolve(segs []string) []*metadata.PropertyInfo {
	current := []metadata.Type{c.rt.Properties.Type}
	var matches []*metadata.PropertyInfo
	for _, seg := range segs {
		var next []metadata.Type
		matches = nil
		for _, t := range current {
			for _, e := range c.expand(t, false) {
				switch e.Kind {
				case metadata.KindArray:
					if seg == wildcard && e.Items != nil {
						next = append(next, e.Items.Type)
					}
				case metadata.KindRecord:
					if e.Value != nil {
						next = append(next, *e.Value)
					}
				case metadata.KindObject:
					p := e.Property(seg)
					if p == nil || containsProperty(matches, p) {
						continue
					}
					matches = append(matches, p)
					next = append(next, p.Type)
				}
			}
		}
		current = next
	}
	return matches
}

// children returns the properties directly below p, looking through
// references, unions and arrays.
func (c *classifier) children(p *metadata.PropertyInfo) []*metadata.PropertyInfo {
	var out []*metadata.PropertyInfo
	for _, t := range c.expand(p.Type, true) {
		if t.Kind != metadata.KindObject {
			continue
		}
		for _, ch := range t.Properties {
			if !containsProperty(out, ch) {
				out = append(out, ch)
			}
		}
	}
	return out
}

// expand flattens t into its concrete alternatives by following non-shared
// references and fanning out unions (and arrays, if throughArrays is set).
func (c *classifier) expand(t metadata.Type, throughArrays bool) []metadata.Type {
	var out []metadata.Type
	seen := make(map[string]bool)
	var visit func(t metadata.Type)
	visit = func(t metadata.Type) {
		switch t.Kind {
		case metadata.KindReference:
			if t.Shared || seen[t.Ref] {
				return
			}
			seen[t.Ref] = true
			if def := c.rt.Definition(t.Ref); def != nil {
				visit(def.Type)
			}
		case metadata.KindUnion:
			for _, m := range t.Members {
				visit(m)
			}
		case metadata.KindArray:
			if !throughArrays {
				out = append(out, t)
			} else if t.Items != nil {
				visit(t.Items.Type)
			}
		default:
			out = append(out, t)
		}
	}
	visit(t)
	return out
}

// commit writes the overlay onto the property nodes.
func (c *classifier) commit() {
	for p, f := range c.overlay {
		p.ReadOnly = f.readOnly
		p.IsAttribute = f.attribute
	}
}

// attributes projects the root properties marked as attributes into an
// object type. It returns nil when there are none.
func (c *classifier) attributes() *metadata.TypeDefinition {
	attrs := metadata.Type{Kind: metadata.KindObject}
	for _, t := range c.expand(c.rt.Properties.Type, false) {
		if t.Kind != metadata.KindObject {
			continue
		}
		for _, p := range t.Properties {
			if !p.IsAttribute || attrs.Property(p.Name) != nil {
				continue
			}
			attrs.Properties = append(attrs.Properties, p)
			attrs.Required = append(attrs.Required, p.Name)
		}
	}
	if len(attrs.Properties) == 0 {
		return nil
	}
	return &metadata.TypeDefinition{Type: attrs}
}

func containsProperty(list []*metadata.PropertyInfo, p *metadata.PropertyInfo) bool {
	for _, x := range list {
		if x == p {
			return true
		}
	}
	return false
}
