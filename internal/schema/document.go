package schema

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Document is one CloudFormation resource schema.
type Document struct {
	TypeName    string
	Description string
	// SourceURL is the sourceUrl (or documentationUrl) of the schema.
	SourceURL string

	// Root is the whole document object. Root-level properties, required and
	// combinators are read from it by the walker; pointer resolution starts
	// here.
	Root *Map

	// Definitions are the named sub-schemas under "definitions".
	Definitions *Map

	// ReadOnlyProperties are the JSON-pointer-like paths of provider-computed
	// properties, e.g. "/properties/Arn" or "/properties/Rules/*/Id".
	ReadOnlyProperties []string

	// Path is the file the document was read from, if any.
	Path string
}

// ReadDocument reads and parses a schema file.
func ReadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading schema %s: %w", path, err)
	}
	doc, err := ParseDocument(data)
	if err != nil {
		return nil, fmt.Errorf("parsing schema %s: %w", path, err)
	}
	doc.Path = path
	return doc, nil
}

// ParseDocument parses schema bytes into a Document.
func ParseDocument(data []byte) (*Document, error) {
	v, err := Parse(data)
	if err != nil {
		return nil, err
	}
	if v.Kind != Object {
		return nil, fmt.Errorf("schema root must be an object, got %s", v.Kind)
	}
	return NewDocument(v.Obj)
}

// NewDocument builds a Document from an already decoded root object.
func NewDocument(root *Map) (*Document, error) {
	doc := &Document{Root: root, Definitions: NewMap()}

	tn, ok := root.Get("typeName")
	if !ok || tn.Kind != String || tn.Str == "" {
		return nil, fmt.Errorf("schema is missing typeName")
	}
	doc.TypeName = tn.Str

	if d, ok := root.Get("description"); ok && d.Kind == String {
		doc.Description = d.Str
	}
	for _, key := range []string{"sourceUrl", "documentationUrl"} {
		if u, ok := root.Get(key); ok && u.Kind == String && u.Str != "" {
			doc.SourceURL = u.Str
			break
		}
	}
	if defs, ok := root.Get("definitions"); ok && defs.Kind == Object {
		doc.Definitions = defs.Obj
	}
	if ro, ok := root.Get("readOnlyProperties"); ok {
		doc.ReadOnlyProperties = ro.Strings()
	}
	return doc, nil
}

// DefinitionPrefix is the pointer prefix of named definition slots.
const DefinitionPrefix = "#/definitions/"

// DefinitionName returns the definition named by ref when ref points at a
// definition slot ("#/definitions/Name"), and false otherwise.
func DefinitionName(ref string) (string, bool) {
	if !strings.HasPrefix(ref, DefinitionPrefix) {
		return "", false
	}
	name := unescapePointer(strings.TrimPrefix(ref, DefinitionPrefix))
	if name == "" || strings.Contains(name, "/") {
		return "", false
	}
	return name, true
}

// IsLocalPointer reports whether ref addresses the current document.
func IsLocalPointer(ref string) bool {
	return ref == "#" || strings.HasPrefix(ref, "#/")
}

// Resolve follows a local JSON pointer ("#/a/b/0") from the document root.
func (d *Document) Resolve(ref string) (Value, error) {
	if !IsLocalPointer(ref) {
		return Value{}, fmt.Errorf("unsupported reference %q", ref)
	}
	cur := ObjectValue(d.Root)
	if ref == "#" {
		return cur, nil
	}
	for _, raw := range strings.Split(strings.TrimPrefix(ref, "#/"), "/") {
		seg := unescapePointer(raw)
		switch cur.Kind {
		case Object:
			next, ok := cur.Obj.Get(seg)
			if !ok {
				return Value{}, fmt.Errorf("reference %q: no member %q", ref, seg)
			}
			cur = next
		case Array:
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= len(cur.Arr) {
				return Value{}, fmt.Errorf("reference %q: bad index %q", ref, seg)
			}
			cur = cur.Arr[idx]
		default:
			return Value{}, fmt.Errorf("reference %q: cannot descend into %s", ref, cur.Kind)
		}
	}
	return cur, nil
}

func unescapePointer(s string) string {
	s = strings.ReplaceAll(s, "~1", "/")
	return strings.ReplaceAll(s, "~0", "~")
}

// SplitPath splits a readOnlyProperties path into property segments,
// dropping the leading "/properties" component.
// "/properties/Endpoint/Address" → ["Endpoint", "Address"].
func SplitPath(path string) []string {
	path = strings.TrimPrefix(path, "/")
	if path == "" {
		return nil
	}
	segs := strings.Split(path, "/")
	if segs[0] == "properties" {
		segs = segs[1:]
	}
	for i := range segs {
		segs[i] = unescapePointer(segs[i])
	}
	return segs
}
