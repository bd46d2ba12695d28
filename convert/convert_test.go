package convert

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toonlang/toon-ls/ast"
	"github.com/toonlang/toon-ls/lsp"
	"github.com/toonlang/toon-ls/parser"
)

func parseTOON(t *testing.T, text string) *ast.Node {
	t.Helper()
	root, err := parser.Parse(text, parser.Limits{})
	require.NoError(t, err)
	return root
}

func TestToJSON_PreservesKeyOrder(t *testing.T) {
	root := parseTOON(t, "zeta: 1\nalpha: 2\nmid: 3\n")

	out, err := ToJSON(root, "")
	require.NoError(t, err)
	assert.Equal(t, `{"zeta":1,"alpha":2,"mid":3}`+"\n", out)
}

func TestToJSON_Indented(t *testing.T) {
	root := parseTOON(t, "name: Ada\nok: true\n")

	out, err := ToJSON(root, "  ")
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"name\": \"Ada\",\n  \"ok\": true\n}\n", out)
}

func TestToJSON_ValueTypes(t *testing.T) {
	root := parseTOON(t, "s: \"quoted\"\nn: 1.50\nb: false\nz: null\nlist[2]: [1, two]\n")

	out, err := ToJSON(root, "")
	require.NoError(t, err)
	assert.Equal(t, `{"s":"quoted","n":1.50,"b":false,"z":null,"list":[1,"two"]}`+"\n", out)
}

func TestToJSON_NestedStructure(t *testing.T) {
	root := parseTOON(t, "server:\n  port: 8080\nusers[1]{id,name}:\n  1|Ada\n")

	out, err := ToJSON(root, "")
	require.NoError(t, err)
	assert.Equal(t, `{"server":{"port":8080},"users":[{"id":1,"name":"Ada"}]}`+"\n", out)
}

func TestToJSON_EmptyDocument(t *testing.T) {
	root := parseTOON(t, "")
	out, err := ToJSON(root, "")
	require.NoError(t, err)
	assert.Equal(t, "{}\n", out)
}

func TestFromJSON_PreservesKeyOrder(t *testing.T) {
	root, err := FromJSON([]byte(`{"zeta": 1, "alpha": {"inner": true}, "list": [1, 2]}`))
	require.NoError(t, err)

	top := root.Children[0]
	require.Equal(t, ast.KindObject, top.Kind)
	require.Len(t, top.Entries, 3)
	assert.Equal(t, "zeta", top.Entries[0].Key)
	assert.Equal(t, "alpha", top.Entries[1].Key)
	assert.Equal(t, "list", top.Entries[2].Key)

	inner := top.Entries[1].Value
	require.Equal(t, ast.KindObject, inner.Kind)
	assert.Equal(t, "inner", inner.Entries[0].Key)
}

func TestFromJSON_NumberNotationKept(t *testing.T) {
	root, err := FromJSON([]byte(`{"a": 1.50, "b": 1e3}`))
	require.NoError(t, err)

	entries := root.Children[0].Entries
	assert.Equal(t, "1.50", entries[0].Value.Literal)
	assert.Equal(t, float64(1.5), entries[0].Value.Num)
	assert.Equal(t, "1e3", entries[1].Value.Literal)
}

func TestFromJSON_ArrayForms(t *testing.T) {
	root, err := FromJSON([]byte(`{"flat": [1, 2], "deep": [{"a": 1}]}`))
	require.NoError(t, err)

	entries := root.Children[0].Entries
	assert.Equal(t, ast.ArrayInline, entries[0].Value.Form)
	assert.Equal(t, ast.ArrayExpanded, entries[1].Value.Form)
}

func TestFromJSON_Invalid(t *testing.T) {
	_, err := FromJSON([]byte(`{"a": }`))
	assert.Error(t, err)

	_, err = FromJSON([]byte(`{"a": 1} trailing`))
	assert.Error(t, err)
}

func TestToYAML_OrderAndTypes(t *testing.T) {
	root := parseTOON(t, "zeta: text\nalpha: 2\nok: true\nnone: null\n")

	out, err := ToYAML(root)
	require.NoError(t, err)
	assert.Equal(t, "zeta: text\nalpha: 2\nok: true\nnone: null\n", out)
}

func TestToYAML_Nested(t *testing.T) {
	root := parseTOON(t, "server:\n  port: 8080\ntags[2]: [a, b]\n")

	out, err := ToYAML(root)
	require.NoError(t, err)
	assert.Contains(t, out, "server:\n")
	assert.Contains(t, out, "port: 8080")
	assert.Contains(t, out, "- a")
	assert.Contains(t, out, "- b")
}

func TestRoundTrip_JSONToTOONToJSON(t *testing.T) {
	input := `{"name":"Ada","age":36,"tags":["math","computing"]}`

	root, err := FromJSON([]byte(input))
	require.NoError(t, err)

	toon := lsp.Format(root, lsp.DefaultFormatOptions())
	reparsed, err := parser.Parse(toon, parser.Limits{})
	require.NoError(t, err, "formatted TOON: %q", toon)

	out, err := ToJSON(reparsed, "")
	require.NoError(t, err)
	assert.Equal(t, input+"\n", out)
}
