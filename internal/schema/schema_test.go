package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_PreservesOrder(t *testing.T) {
	v, err := Parse([]byte(`{"z": 1, "a": [true, null, "s"], "m": {"y": 2.50, "b": {}}}`))
	require.NoError(t, err)
	require.Equal(t, Object, v.Kind)
	assert.Equal(t, []string{"z", "a", "m"}, v.Obj.Keys())

	m, _ := v.Obj.Get("m")
	assert.Equal(t, []string{"y", "b"}, m.Obj.Keys())

	// Numbers keep their literal text.
	assert.Equal(t, `{"z":1,"a":[true,null,"s"],"m":{"y":2.50,"b":{}}}`, v.String())
}

func TestParse_Errors(t *testing.T) {
	for _, src := range []string{`{"a": }`, `{"a": 1} {"b": 2}`, ``, `[1, 2`} {
		_, err := Parse([]byte(src))
		assert.Error(t, err, "input %q", src)
	}
}

func TestValue_Equal(t *testing.T) {
	a, err := Parse([]byte(`{"x": 1, "y": ["a", 2]}`))
	require.NoError(t, err)
	b, err := Parse([]byte(`{"y": ["a", 2.0], "x": 1e0}`))
	require.NoError(t, err)
	c, err := Parse([]byte(`{"y": [2, "a"], "x": 1}`))
	require.NoError(t, err)

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, StringValue("1").Equal(NumberValue("1")))
}

func TestValue_Strings(t *testing.T) {
	assert.Equal(t, []string{"string"}, StringValue("string").Strings())
	assert.Equal(t, []string{"a", "b"}, ArrayValue(StringValue("a"), NumberValue("1"), StringValue("b")).Strings())
	assert.Nil(t, BoolValue(true).Strings())
}

func TestValue_Numbers(t *testing.T) {
	n, ok := NumberValue("42").Int()
	assert.True(t, ok)
	assert.Equal(t, 42, n)

	_, ok = NumberValue("4.5").Int()
	assert.False(t, ok)

	f, ok := NumberValue("4.5").Float()
	assert.True(t, ok)
	assert.Equal(t, 4.5, f)

	_, ok = StringValue("4").Float()
	assert.False(t, ok)
}

func TestMap_SetDeleteClone(t *testing.T) {
	m := NewMap()
	m.Set("a", NumberValue("1"))
	m.Set("b", NumberValue("2"))
	m.Set("a", NumberValue("3"))
	assert.Equal(t, []string{"a", "b"}, m.Keys())

	c := m.Clone()
	c.Delete("a")
	c.Delete("missing")
	assert.Equal(t, []string{"b"}, c.Keys())
	assert.Equal(t, []string{"a", "b"}, m.Keys())

	v, _ := m.Get("a")
	assert.Equal(t, "3", v.Str)

	var nilMap *Map
	assert.Equal(t, 0, nilMap.Len())
	assert.False(t, nilMap.Has("a"))
}

func TestParseDocument(t *testing.T) {
	doc, err := ParseDocument([]byte(`{
		"typeName": "AWS::S3::Bucket",
		"description": "A bucket.",
		"documentationUrl": "https://docs.example.com/bucket",
		"definitions": {"Rule": {"type": "object"}},
		"properties": {"BucketName": {"type": "string"}},
		"readOnlyProperties": ["/properties/Arn", "/properties/DomainName"]
	}`))
	require.NoError(t, err)

	assert.Equal(t, "AWS::S3::Bucket", doc.TypeName)
	assert.Equal(t, "A bucket.", doc.Description)
	assert.Equal(t, "https://docs.example.com/bucket", doc.SourceURL)
	assert.Equal(t, []string{"Rule"}, doc.Definitions.Keys())
	assert.Equal(t, []string{"/properties/Arn", "/properties/DomainName"}, doc.ReadOnlyProperties)
}

func TestParseDocument_Invalid(t *testing.T) {
	_, err := ParseDocument([]byte(`{"properties": {}}`))
	assert.ErrorContains(t, err, "typeName")

	_, err = ParseDocument([]byte(`[]`))
	assert.ErrorContains(t, err, "must be an object")
}

func TestReadDocument(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "aws-sqs-queue.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"typeName": "AWS::SQS::Queue"}`), 0o644))

	doc, err := ReadDocument(path)
	require.NoError(t, err)
	assert.Equal(t, "AWS::SQS::Queue", doc.TypeName)
	assert.Equal(t, path, doc.Path)

	_, err = ReadDocument(filepath.Join(dir, "missing.json"))
	assert.ErrorContains(t, err, "reading schema")
}

func TestResolve(t *testing.T) {
	doc, err := ParseDocument([]byte(`{
		"typeName": "Test::Resource",
		"definitions": {"a/b": {"type": "string"}, "List": {"items": [{"type": "integer"}]}}
	}`))
	require.NoError(t, err)

	v, err := doc.Resolve("#/definitions/a~1b")
	require.NoError(t, err)
	assert.Equal(t, Object, v.Kind)

	v, err = doc.Resolve("#/definitions/List/items/0/type")
	require.NoError(t, err)
	assert.Equal(t, "integer", v.Str)

	root, err := doc.Resolve("#")
	require.NoError(t, err)
	assert.Equal(t, doc.Root, root.Obj)

	for _, ref := range []string{
		"#/definitions/Missing",
		"#/definitions/List/items/7",
		"#/typeName/deeper",
		"other.json#/definitions/X",
	} {
		_, err := doc.Resolve(ref)
		assert.Error(t, err, ref)
	}
}

func TestDefinitionName(t *testing.T) {
	tests := []struct {
		ref  string
		name string
		ok   bool
	}{
		{"#/definitions/Rule", "Rule", true},
		{"#/definitions/a~1b", "", false},
		{"#/definitions/Rule/properties/Id", "", false},
		{"#/definitions/", "", false},
		{"#/properties/Name", "", false},
	}
	for _, tt := range tests {
		name, ok := DefinitionName(tt.ref)
		assert.Equal(t, tt.ok, ok, tt.ref)
		assert.Equal(t, tt.name, name, tt.ref)
	}
}

func TestSplitPath(t *testing.T) {
	assert.Equal(t, []string{"Endpoint", "Address"}, SplitPath("/properties/Endpoint/Address"))
	assert.Equal(t, []string{"Rules", "*", "Id"}, SplitPath("/properties/Rules/*/Id"))
	assert.Equal(t, []string{"a/b"}, SplitPath("/properties/a~1b"))
	assert.Nil(t, SplitPath("/"))
}
