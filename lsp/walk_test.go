package lsp

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toonlang/toon-ls/ast"
)

// offsetOf returns the byte offset of the nth occurrence (1-based) of sub.
func offsetOf(t *testing.T, text, sub string, n int) uint32 {
	t.Helper()
	start := 0
	for i := 0; i < n; i++ {
		idx := strings.Index(text[start:], sub)
		require.GreaterOrEqual(t, idx, 0, "occurrence %d of %q not found", n, sub)
		start += idx + 1
	}
	return uint32(start - 1)
}

func TestFindAtOffset_KeyAndValue(t *testing.T) {
	text := "name: Ada\nage: 36\n"
	snap := buildSnap(t, 1, text)

	loc := FindAtOffset(snap.Root, offsetOf(t, text, "name", 1))
	require.NotNil(t, loc)
	assert.True(t, loc.OnKey)
	assert.Equal(t, "name", loc.Key)
	assert.Equal(t, "name", loc.KeyPath())
	assert.Equal(t, ast.KindString, loc.Node.Kind)

	loc = FindAtOffset(snap.Root, offsetOf(t, text, "36", 1))
	require.NotNil(t, loc)
	assert.False(t, loc.OnKey)
	assert.Equal(t, "age", loc.KeyPath())
	assert.Equal(t, ast.KindNumber, loc.Node.Kind)
	assert.Equal(t, float64(36), loc.Node.Num)
}

func TestFindAtOffset_NestedPath(t *testing.T) {
	text := "server:\n  port: 8080\n"
	snap := buildSnap(t, 1, text)

	loc := FindAtOffset(snap.Root, offsetOf(t, text, "8080", 1))
	require.NotNil(t, loc)
	assert.Equal(t, "server.port", loc.KeyPath())
}

func TestFindAtOffset_ArrayIndexInPath(t *testing.T) {
	text := "users[2]:\n  - alice\n  - bob\n"
	snap := buildSnap(t, 1, text)

	loc := FindAtOffset(snap.Root, offsetOf(t, text, "bob", 1))
	require.NotNil(t, loc)
	assert.Equal(t, "users.1", loc.KeyPath())
	assert.Equal(t, "bob", loc.Node.Str)
}

func TestCollectKeys_SourceOrder(t *testing.T) {
	text := "b: 1\na:\n  inner: 2\nb: 3\n"
	snap := buildSnap(t, 1, text)

	keys := CollectKeys(snap.Root)
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.Key
	}
	assert.Equal(t, []string{"b", "a", "inner", "b"}, names)
}

func TestEnclosingObject_InnermostWins(t *testing.T) {
	text := "outer:\n  inner: 1\n  other: 2\ntop: 3\n"
	snap := buildSnap(t, 1, text)

	obj := enclosingObject(snap.Root, offsetOf(t, text, "other", 1))
	require.NotNil(t, obj)
	assert.Len(t, obj.Entries, 2)
	assert.Equal(t, "inner", obj.Entries[0].Key)
}

func TestEnclosingObject_FallsBackToRoot(t *testing.T) {
	text := "a: 1\n"
	snap := buildSnap(t, 1, text)

	// Offset past every node still resolves to the top-level scope.
	obj := enclosingObject(snap.Root, uint32(len(text)+10))
	require.NotNil(t, obj)
	assert.Equal(t, "a", obj.Entries[0].Key)
}
