package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toonlang/toon-ls/ast"
)

// root returns the single child of a parsed document.
func root(t *testing.T, doc *ast.Node) *ast.Node {
	t.Helper()
	require.Equal(t, ast.KindDocument, doc.Kind)
	require.Len(t, doc.Children, 1)
	return doc.Children[0]
}

func errorKinds(errs []*ParseError) []ErrorKind {
	out := make([]ErrorKind, len(errs))
	for i, e := range errs {
		out[i] = e.Kind
	}
	return out
}

func TestParse_SimpleEntries(t *testing.T) {
	doc, errs := ParseWithErrors("name: Alice\nage: 30\n", DefaultLimits())
	require.Empty(t, errs)

	obj := root(t, doc)
	require.Equal(t, ast.KindObject, obj.Kind)
	require.Len(t, obj.Entries, 2)

	assert.Equal(t, "name", obj.Entries[0].Key)
	assert.Equal(t, ast.KindString, obj.Entries[0].Value.Kind)
	assert.Equal(t, "Alice", obj.Entries[0].Value.Str)

	assert.Equal(t, "age", obj.Entries[1].Key)
	assert.Equal(t, ast.KindNumber, obj.Entries[1].Value.Kind)
	assert.Equal(t, float64(30), obj.Entries[1].Value.Num)
	assert.Equal(t, "30", obj.Entries[1].Value.Literal)
}

func TestParse_ValueTypes(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		kind  ast.NodeKind
		check func(t *testing.T, v *ast.Node)
	}{
		{"quoted string", `k: "hello world"`, ast.KindString, func(t *testing.T, v *ast.Node) {
			assert.Equal(t, "hello world", v.Str)
		}},
		{"single quoted string", `k: 'hi'`, ast.KindString, func(t *testing.T, v *ast.Node) {
			assert.Equal(t, "hi", v.Str)
		}},
		{"unquoted string", "k: Alice Smith", ast.KindString, func(t *testing.T, v *ast.Node) {
			assert.Equal(t, "Alice Smith", v.Str)
		}},
		{"integer", "k: 42", ast.KindNumber, func(t *testing.T, v *ast.Node) {
			assert.Equal(t, float64(42), v.Num)
		}},
		{"negative float", "k: -3.5", ast.KindNumber, func(t *testing.T, v *ast.Node) {
			assert.Equal(t, -3.5, v.Num)
		}},
		{"exponent keeps literal", "k: 1e3", ast.KindNumber, func(t *testing.T, v *ast.Node) {
			assert.Equal(t, float64(1000), v.Num)
			assert.Equal(t, "1e3", v.Literal)
		}},
		{"true", "k: true", ast.KindBool, func(t *testing.T, v *ast.Node) {
			assert.True(t, v.Bool)
		}},
		{"false", "k: false", ast.KindBool, func(t *testing.T, v *ast.Node) {
			assert.False(t, v.Bool)
		}},
		{"null", "k: null", ast.KindNull, nil},
		{"implicit null", "k:", ast.KindNull, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, errs := ParseWithErrors(tt.src, DefaultLimits())
			require.Empty(t, errs)
			obj := root(t, doc)
			require.Len(t, obj.Entries, 1)
			v := obj.Entries[0].Value
			assert.Equal(t, tt.kind, v.Kind)
			if tt.check != nil {
				tt.check(t, v)
			}
		})
	}
}

func TestParse_LeadingZeroNumberIsString(t *testing.T) {
	doc, errs := ParseWithErrors("code: 007\n", DefaultLimits())
	require.Empty(t, errs)
	v := root(t, doc).Entries[0].Value
	assert.Equal(t, ast.KindString, v.Kind)
	assert.Equal(t, "007", v.Str)
}

func TestParse_NestedObjects(t *testing.T) {
	src := "user:\n  name: Alice\n  address:\n    city: Berlin\nactive: true\n"
	doc, errs := ParseWithErrors(src, DefaultLimits())
	require.Empty(t, errs)

	obj := root(t, doc)
	require.Len(t, obj.Entries, 2)

	user := obj.Entries[0].Value
	require.Equal(t, ast.KindObject, user.Kind)
	require.Len(t, user.Entries, 2)

	address := user.Entries[1].Value
	require.Equal(t, ast.KindObject, address.Kind)
	require.Len(t, address.Entries, 1)
	assert.Equal(t, "city", address.Entries[0].Key)

	assert.Equal(t, "active", obj.Entries[1].Key)
	assert.Equal(t, ast.KindBool, obj.Entries[1].Value.Kind)
}

func TestParse_InlineArray(t *testing.T) {
	doc, errs := ParseWithErrors("nums: [1, 2, 3]\n", DefaultLimits())
	require.Empty(t, errs)

	arr := root(t, doc).Entries[0].Value
	require.Equal(t, ast.KindArray, arr.Kind)
	assert.Equal(t, ast.ArrayInline, arr.Form)
	assert.Equal(t, -1, arr.Declared)
	require.Len(t, arr.Items, 3)
	assert.Equal(t, float64(2), arr.Items[1].Num)
}

func TestParse_InlineArrayWithDeclaredCount(t *testing.T) {
	doc, errs := ParseWithErrors("nums[3]: [1, 2, 3]\n", DefaultLimits())
	require.Empty(t, errs)

	arr := root(t, doc).Entries[0].Value
	require.Equal(t, ast.KindArray, arr.Kind)
	assert.Equal(t, 3, arr.Declared)
	assert.Len(t, arr.Items, 3)
}

func TestParse_ExpandedArray(t *testing.T) {
	src := "items[2]:\n  - 1\n  - two\n"
	doc, errs := ParseWithErrors(src, DefaultLimits())
	require.Empty(t, errs)

	arr := root(t, doc).Entries[0].Value
	require.Equal(t, ast.KindArray, arr.Kind)
	assert.Equal(t, ast.ArrayExpanded, arr.Form)
	require.Len(t, arr.Items, 2)
	assert.Equal(t, ast.KindNumber, arr.Items[0].Kind)
	assert.Equal(t, ast.KindString, arr.Items[1].Kind)
	assert.Equal(t, "two", arr.Items[1].Str)
}

func TestParse_RootLevelExpandedArray(t *testing.T) {
	doc, errs := ParseWithErrors("- 1\n- 2\n- 3\n", DefaultLimits())
	require.Empty(t, errs)

	arr := root(t, doc)
	require.Equal(t, ast.KindArray, arr.Kind)
	assert.Equal(t, ast.ArrayExpanded, arr.Form)
	assert.Len(t, arr.Items, 3)
}

func TestParse_ExpandedArrayOfObjects(t *testing.T) {
	src := "items:\n  -\n    name: a\n  -\n    name: b\n"
	doc, errs := ParseWithErrors(src, DefaultLimits())
	require.Empty(t, errs)

	arr := root(t, doc).Entries[0].Value
	require.Equal(t, ast.KindArray, arr.Kind)
	require.Len(t, arr.Items, 2)
	require.Equal(t, ast.KindObject, arr.Items[0].Kind)
	assert.Equal(t, "a", arr.Items[0].Entries[0].Value.Str)
}

func TestParse_TabularArray(t *testing.T) {
	src := "rows[2]{a,b}:\n  1|2\n  3|4\n"
	doc, errs := ParseWithErrors(src, DefaultLimits())
	require.Empty(t, errs)

	arr := root(t, doc).Entries[0].Value
	require.Equal(t, ast.KindArray, arr.Kind)
	assert.Equal(t, ast.ArrayTabular, arr.Form)
	assert.Equal(t, []string{"a", "b"}, arr.Columns)
	require.Len(t, arr.Items, 2)

	first := arr.Items[0]
	require.Equal(t, ast.KindObject, first.Kind)
	require.Len(t, first.Entries, 2)
	assert.Equal(t, "a", first.Entries[0].Key)
	assert.Equal(t, float64(1), first.Entries[0].Value.Num)
	assert.Equal(t, "b", first.Entries[1].Key)
	assert.Equal(t, float64(2), first.Entries[1].Value.Num)

	second := arr.Items[1]
	assert.Equal(t, float64(3), second.Entries[0].Value.Num)
	assert.Equal(t, float64(4), second.Entries[1].Value.Num)
}

func TestParse_TabularCountMismatch(t *testing.T) {
	src := "rows[3]{a,b}:\n  1|2\n  3|4\n"
	doc, errs := ParseWithErrors(src, DefaultLimits())

	arr := root(t, doc).Entries[0].Value
	assert.Len(t, arr.Items, 2)

	require.Len(t, errs, 1)
	assert.Equal(t, ErrArrayCountMismatch, errs[0].Kind)
	assert.Contains(t, errs[0].Context, "declared 3")
}

func TestParse_TabularRowCellMismatch(t *testing.T) {
	src := "rows[1]{a,b,c}:\n  1|2\n"
	doc, errs := ParseWithErrors(src, DefaultLimits())

	arr := root(t, doc).Entries[0].Value
	require.Len(t, arr.Items, 1)
	row := arr.Items[0]
	require.Len(t, row.Entries, 3)
	assert.Equal(t, ast.KindNull, row.Entries[2].Value.Kind)

	require.Len(t, errs, 1)
	assert.Equal(t, ErrArrayCountMismatch, errs[0].Kind)
}

func TestParse_DeclaredCountMismatchInline(t *testing.T) {
	doc, errs := ParseWithErrors("nums[5]: [1, 2]\n", DefaultLimits())

	arr := root(t, doc).Entries[0].Value
	assert.Len(t, arr.Items, 2)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrArrayCountMismatch, errs[0].Kind)
}

func TestParse_DuplicateKeys(t *testing.T) {
	doc, errs := ParseWithErrors("name: Alice\nname: Bob\n", DefaultLimits())

	obj := root(t, doc)
	// Both entries are kept in order.
	require.Len(t, obj.Entries, 2)
	assert.Equal(t, "Alice", obj.Entries[0].Value.Str)
	assert.Equal(t, "Bob", obj.Entries[1].Value.Str)

	require.Len(t, errs, 1)
	assert.Equal(t, ErrDuplicateKey, errs[0].Kind)
	assert.Equal(t, SeverityWarning, errs[0].Severity())
	// The warning points at the second occurrence.
	assert.Equal(t, uint32(1), errs[0].Span.Start.Line)
}

func TestParse_DuplicateKeysInDifferentObjects(t *testing.T) {
	src := "a:\n  name: x\nb:\n  name: y\n"
	_, errs := ParseWithErrors(src, DefaultLimits())
	assert.Empty(t, errs, "same key in sibling objects is not a duplicate")
}

func TestParse_StrictModeAllowsDuplicateKeys(t *testing.T) {
	doc, err := Parse("name: Alice\nname: Bob\n", DefaultLimits())
	require.NoError(t, err, "duplicate keys are warnings, not strict failures")
	require.NotNil(t, doc)
}

func TestParse_StrictModeFailsOnError(t *testing.T) {
	doc, err := Parse("key: [1,2,\n", DefaultLimits())
	require.Error(t, err)
	assert.Nil(t, doc)

	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, ErrBracketMismatch, perr.Kind)
}

func TestParse_UnterminatedInlineArrayRecovery(t *testing.T) {
	doc, errs := ParseWithErrors("key: [1,2,\nnext: 3\n", DefaultLimits())

	obj := root(t, doc)
	require.Len(t, obj.Entries, 2)

	// The broken entry survives with a placeholder value.
	assert.Equal(t, "key", obj.Entries[0].Key)
	assert.Equal(t, ast.KindNull, obj.Entries[0].Value.Kind)

	// Parsing resumed on the next line.
	assert.Equal(t, "next", obj.Entries[1].Key)
	assert.Equal(t, float64(3), obj.Entries[1].Value.Num)

	require.Len(t, errs, 1)
	assert.Equal(t, ErrBracketMismatch, errs[0].Kind)
	// The span covers the trailing bracket region on the first line.
	assert.Equal(t, uint32(0), errs[0].Span.Start.Line)
	assert.Equal(t, uint32(5), errs[0].Span.Start.Column)
}

func TestParse_MissingColonRecovery(t *testing.T) {
	doc, errs := ParseWithErrors("broken 1\ngood: 2\n", DefaultLimits())

	obj := root(t, doc)
	require.Len(t, obj.Entries, 2)
	assert.Equal(t, ast.KindNull, obj.Entries[0].Value.Kind)
	assert.Equal(t, "good", obj.Entries[1].Key)

	require.Len(t, errs, 1)
	assert.Equal(t, ErrExpectedColon, errs[0].Kind)
}

func TestParse_UnterminatedStringValue(t *testing.T) {
	doc, errs := ParseWithErrors("name: \"abc\nnext: 1\n", DefaultLimits())

	obj := root(t, doc)
	require.Len(t, obj.Entries, 2)
	assert.Equal(t, "abc", obj.Entries[0].Value.Str)
	assert.Equal(t, "next", obj.Entries[1].Key)

	require.Len(t, errs, 1)
	assert.Equal(t, ErrUnterminatedString, errs[0].Kind)
}

func TestParse_QuotedKey(t *testing.T) {
	doc, errs := ParseWithErrors("\"my key\": 1\n", DefaultLimits())
	require.Empty(t, errs)
	obj := root(t, doc)
	require.Len(t, obj.Entries, 1)
	assert.Equal(t, "my key", obj.Entries[0].Key)
}

func TestParse_CommentsIgnored(t *testing.T) {
	src := "# header\nname: Alice # trailing\n# footer\n"
	doc, errs := ParseWithErrors(src, DefaultLimits())
	require.Empty(t, errs)

	obj := root(t, doc)
	require.Len(t, obj.Entries, 1)
	assert.Equal(t, "Alice", obj.Entries[0].Value.Str)
}

func TestParse_BlankLinesBetweenEntries(t *testing.T) {
	doc, errs := ParseWithErrors("a: 1\n\n\nb: 2\n", DefaultLimits())
	require.Empty(t, errs)
	assert.Len(t, root(t, doc).Entries, 2)
}

func TestParse_EmptyDocument(t *testing.T) {
	for _, src := range []string{"", "\n\n", "# only comments\n"} {
		doc, errs := ParseWithErrors(src, DefaultLimits())
		require.Empty(t, errs)
		assert.Equal(t, ast.KindDocument, doc.Kind)
		assert.Empty(t, doc.Children)
	}
}

func TestParse_OrderPreserved(t *testing.T) {
	src := "z: 1\na: 2\nm: 3\n"
	doc, errs := ParseWithErrors(src, DefaultLimits())
	require.Empty(t, errs)

	obj := root(t, doc)
	keys := make([]string, len(obj.Entries))
	for i, e := range obj.Entries {
		keys[i] = e.Key
	}
	assert.Equal(t, []string{"z", "a", "m"}, keys)
}

func TestParse_KeySpans(t *testing.T) {
	doc, errs := ParseWithErrors("name: Alice\n", DefaultLimits())
	require.Empty(t, errs)

	entry := root(t, doc).Entries[0]
	assert.Equal(t, uint32(0), entry.KeySpan.Start.Column)
	assert.Equal(t, uint32(4), entry.KeySpan.End.Column)
	assert.Equal(t, uint32(6), entry.Value.Span.Start.Column)
	assert.Equal(t, uint32(11), entry.Value.Span.End.Column)
}

// --- resource limits ---

func TestParse_DocumentSizeCeiling(t *testing.T) {
	src := "a: 1\n"
	limits := DefaultLimits()

	limits.MaxDocumentBytes = len(src)
	doc, errs := ParseWithErrors(src, limits)
	assert.Empty(t, errs, "document exactly at the ceiling parses")
	assert.Len(t, root(t, doc).Entries, 1)

	limits.MaxDocumentBytes = len(src) - 1
	doc, errs = ParseWithErrors(src, limits)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrDocumentTooLarge, errs[0].Kind)
	assert.Empty(t, doc.Children, "oversized document yields an empty tree")

	_, err := Parse(src, limits)
	require.Error(t, err)
}

func nestedObjects(levels int) string {
	var b strings.Builder
	for i := 0; i < levels-1; i++ {
		b.WriteString(strings.Repeat(" ", i))
		b.WriteString("k:\n")
	}
	b.WriteString(strings.Repeat(" ", levels-1))
	b.WriteString("k: 1\n")
	return b.String()
}

func TestParse_DepthCeiling(t *testing.T) {
	limits := DefaultLimits()
	limits.MaxDepth = 4

	// Exactly at the ceiling: parses cleanly.
	doc, errs := ParseWithErrors(nestedObjects(4), limits)
	require.Empty(t, errs)
	node := root(t, doc)
	for i := 0; i < 4; i++ {
		require.Equal(t, ast.KindObject, node.Kind)
		node = node.Entries[0].Value
	}
	assert.Equal(t, ast.KindNumber, node.Kind)

	// One level past the ceiling: only the deepest level errors, the rest
	// of the tree is intact with a placeholder at the cut.
	doc, errs = ParseWithErrors(nestedObjects(5), limits)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrMaxDepthExceeded, errs[0].Kind)

	node = root(t, doc)
	for i := 0; i < 4; i++ {
		require.Equal(t, ast.KindObject, node.Kind)
		require.Len(t, node.Entries, 1)
		node = node.Entries[0].Value
	}
	assert.Equal(t, ast.KindNull, node.Kind, "over-deep subtree becomes a placeholder")
}

func TestParse_ArrayItemCeiling(t *testing.T) {
	limits := DefaultLimits()
	limits.MaxArrayItems = 2

	doc, errs := ParseWithErrors("nums: [1, 2, 3, 4]\n", limits)
	arr := root(t, doc).Entries[0].Value
	assert.Len(t, arr.Items, 2, "items beyond the ceiling are dropped")

	require.Len(t, errs, 1)
	assert.Equal(t, ErrTooManyArrayItems, errs[0].Kind)
}

func TestParse_ArrayCeilingAppliesBeforeCountCheck(t *testing.T) {
	limits := DefaultLimits()
	limits.MaxArrayItems = 2

	// Declared matches the raw item count, but the ceiling truncates first,
	// so the count check compares against the truncated length.
	_, errs := ParseWithErrors("nums[4]: [1, 2, 3, 4]\n", limits)
	assert.Equal(t, []ErrorKind{ErrTooManyArrayItems, ErrArrayCountMismatch}, errorKinds(errs))
}

func TestParse_ObjectEntryCeiling(t *testing.T) {
	limits := DefaultLimits()
	limits.MaxObjectEntries = 2

	doc, errs := ParseWithErrors("a: 1\nb: 2\nc: 3\nd: 4\n", limits)
	obj := root(t, doc)
	assert.Len(t, obj.Entries, 2)

	require.Len(t, errs, 1)
	assert.Equal(t, ErrTooManyObjectEntries, errs[0].Kind)
}

func TestParse_ZeroLimitsUseDefaults(t *testing.T) {
	doc, errs := ParseWithErrors("a: 1\n", Limits{})
	require.Empty(t, errs)
	assert.Len(t, root(t, doc).Entries, 1)
}

func TestParse_InvalidIndentRecovery(t *testing.T) {
	src := "a: 1\n    stray: 2\nb: 3\n"
	doc, errs := ParseWithErrors(src, DefaultLimits())

	obj := root(t, doc)
	require.Len(t, obj.Entries, 2)
	assert.Equal(t, "a", obj.Entries[0].Key)
	assert.Equal(t, "b", obj.Entries[1].Key)

	require.Len(t, errs, 1)
	assert.Equal(t, ErrInvalidIndent, errs[0].Kind)
}
