package render

import (
	"strconv"
	"strings"

	"github.com/cfnts/cfnts/internal/metadata"
)

// docLines returns the body lines of the doc comment for d, or nil when
// there is nothing to say.
func docLines(d *metadata.Documentation) []string {
	if d.IsEmpty() {
		return nil
	}
	var lines []string
	text := d.Description
	if text == "" {
		text = d.Title
	}
	lines = appendText(lines, text)
	for _, alt := range d.Alternatives {
		if len(lines) > 0 {
			lines = append(lines, "")
		}
		lines = appendText(lines, alt)
	}

	tag := func(name, value string) {
		line := "@" + name
		if value != "" {
			line += " " + escapeComment(value)
		}
		lines = append(lines, line)
	}
	num := func(name string, f *float64) {
		if f != nil {
			tag(name, strconv.FormatFloat(*f, 'f', -1, 64))
		}
	}
	count := func(name string, n *int) {
		if n != nil {
			tag(name, strconv.Itoa(*n))
		}
	}

	num("minimum", d.Minimum)
	num("maximum", d.Maximum)
	num("exclusiveMinimum", d.ExclusiveMinimum)
	num("exclusiveMaximum", d.ExclusiveMaximum)
	num("multipleOf", d.MultipleOf)
	count("minLength", d.MinLength)
	count("maxLength", d.MaxLength)
	count("minItems", d.MinItems)
	count("maxItems", d.MaxItems)
	if d.UniqueItems != nil && *d.UniqueItems {
		tag("uniqueItems", "")
	}
	for _, p := range d.Patterns {
		tag("pattern", p)
	}
	for _, f := range d.Formats {
		tag("format", f)
	}
	if d.Default != nil {
		tag("default", d.Default.String())
	}
	for _, ex := range d.Examples {
		tag("example", ex.String())
	}
	if d.Deprecated {
		tag("deprecated", "")
	}
	for _, rel := range d.Relationships {
		target := rel.TypeName
		if rel.PropertyPath != "" {
			target += " " + rel.PropertyPath
		}
		tag("see", target)
	}
	if d.Link != "" {
		tag("see", d.Link)
	}
	return lines
}

func appendText(lines []string, text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return lines
	}
	for _, l := range strings.Split(text, "\n") {
		lines = append(lines, escapeComment(strings.TrimRight(l, " \t\r")))
	}
	return lines
}

// writeDoc emits the doc comment for d at the emitter's indentation.
func writeDoc(e *Emitter, d *metadata.Documentation) {
	lines := docLines(d)
	switch len(lines) {
	case 0:
		return
	case 1:
		e.Line("/** %s */", lines[0])
		return
	}
	e.Line("/**")
	for _, l := range lines {
		if l == "" {
			e.Line(" *")
		} else {
			e.Line(" * %s", l)
		}
	}
	e.Line(" */")
}

// escapeComment keeps text from closing the surrounding comment early.
func escapeComment(s string) string {
	return strings.ReplaceAll(s, "*/", `*\/`)
}
