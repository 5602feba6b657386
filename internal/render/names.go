package render

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var nonIdentRe = regexp.MustCompile(`[^A-Za-z0-9]+`)

// builtinNames are global TypeScript types a generated declaration must
// not shadow.
var builtinNames = map[string]bool{
	"Array": true, "Boolean": true, "Date": true, "Error": true, "Function": true,
	"Map": true, "Number": true, "Object": true, "Omit": true, "Partial": true,
	"Pick": true, "Promise": true, "Readonly": true, "Record": true, "Required": true,
	"Set": true, "String": true, "Symbol": true,
}

// Identifier converts an arbitrary name into a PascalCase TypeScript
// identifier: "my-rule name" → "MyRuleName", "s3" → "S3".
func Identifier(s string) string {
	// A Caser keeps state between calls, so each call gets its own.
	title := cases.Title(language.Und, cases.NoLower)
	var sb strings.Builder
	for _, part := range nonIdentRe.Split(s, -1) {
		if part == "" {
			continue
		}
		sb.WriteString(title.String(part))
	}
	out := sb.String()
	if out == "" {
		return "_"
	}
	if unicode.IsDigit(rune(out[0])) {
		out = "_" + out
	}
	return out
}

// ResourceNames splits a type name such as "AWS::S3::Bucket" into vendor,
// service and resource parts. Missing parts are empty.
func ResourceNames(typeName string) (vendor, service, resource string) {
	parts := strings.Split(typeName, "::")
	switch len(parts) {
	case 0:
		return "", "", ""
	case 1:
		return "", "", parts[0]
	case 2:
		return "", parts[0], parts[1]
	default:
		return parts[0], parts[1], strings.Join(parts[2:], "")
	}
}

// FilePath returns the output path of a resource module, relative to the
// output directory: "AWS::EC2::SecurityGroup" → "ec2/security-group.ts".
// Vendors other than AWS are folded into the directory name.
func FilePath(typeName string) string {
	vendor, service, resource := ResourceNames(typeName)
	dir := toKebabCase(service)
	if vendor != "" && vendor != "AWS" {
		dir = toKebabCase(vendor) + "-" + dir
	}
	if dir == "" {
		dir = "misc"
	}
	return dir + "/" + toKebabCase(resource) + ".ts"
}

// Namespace returns the index re-export name of a resource module:
// "AWS::S3::Bucket" → "S3Bucket".
func Namespace(typeName string) string {
	vendor, service, resource := ResourceNames(typeName)
	ns := Identifier(service) + Identifier(resource)
	if vendor != "" && vendor != "AWS" {
		ns = Identifier(vendor) + ns
	}
	return ns
}

// nameTable assigns unique identifiers to definitions.
type nameTable struct {
	used  map[string]bool
	names map[string]string
}

func newNameTable(reserved ...string) *nameTable {
	t := &nameTable{used: make(map[string]bool), names: make(map[string]string)}
	for _, r := range reserved {
		t.used[r] = true
	}
	return t
}

// assign returns the identifier of name, allocating one on first use.
// Collisions with builtins, reserved names or other definitions get a "_"
// suffix, e.g. "Record" → "Record_".
func (t *nameTable) assign(name string) string {
	if id, ok := t.names[name]; ok {
		return id
	}
	id := Identifier(name)
	if builtinNames[id] {
		id += "_"
	}
	for t.used[id] {
		id += "_"
	}
	t.used[id] = true
	t.names[name] = id
	return id
}

// tsPropertyKey returns a property key, quoted when the name is not a
// valid identifier.
func tsPropertyKey(name string) string {
	if len(name) == 0 {
		return `""`
	}
	for i, r := range name {
		if i == 0 {
			if !((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_' || r == '$') {
				return quote(name)
			}
		} else {
			if !((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '$') {
				return quote(name)
			}
		}
	}
	return name
}

func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}

// toKebabCase converts PascalCase and camelCase names to kebab-case.
func toKebabCase(s string) string {
	var result strings.Builder
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			prev := rune(s[i-1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) {
				result.WriteByte('-')
			}
		}
		result.WriteRune(r)
	}
	out := nonIdentRe.ReplaceAllString(result.String(), "-")
	out = strings.Trim(out, "-")
	return strings.ToLower(out)
}
