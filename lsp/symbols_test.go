package lsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentSymbols_FlatObject(t *testing.T) {
	snap := buildSnap(t, 1, "name: Ada\nage: 36\n")

	symbols := DocumentSymbols(snap)
	require.Len(t, symbols, 2)

	assert.Equal(t, "name", symbols[0].Name)
	assert.Equal(t, SymbolString, symbols[0].Kind)
	assert.Equal(t, "string", symbols[0].Detail)
	assert.Empty(t, symbols[0].Children)

	assert.Equal(t, "age", symbols[1].Name)
	assert.Equal(t, SymbolNumber, symbols[1].Kind)
}

func TestDocumentSymbols_NestedHierarchy(t *testing.T) {
	text := "server:\n  host: local\n  port: 8080\nactive: true\n"
	snap := buildSnap(t, 1, text)

	symbols := DocumentSymbols(snap)
	require.Len(t, symbols, 2)

	server := symbols[0]
	assert.Equal(t, "server", server.Name)
	assert.Equal(t, SymbolObject, server.Kind)
	require.Len(t, server.Children, 2)
	assert.Equal(t, "host", server.Children[0].Name)
	assert.Equal(t, "port", server.Children[1].Name)

	assert.Equal(t, SymbolBoolean, symbols[1].Kind)
}

func TestDocumentSymbols_ArrayItemsIndexed(t *testing.T) {
	text := "tags[2]: [a, b]\n"
	snap := buildSnap(t, 1, text)

	symbols := DocumentSymbols(snap)
	require.Len(t, symbols, 1)
	assert.Equal(t, SymbolArray, symbols[0].Kind)
	require.Len(t, symbols[0].Children, 2)
	assert.Equal(t, "[0]", symbols[0].Children[0].Name)
	assert.Equal(t, "[1]", symbols[0].Children[1].Name)
}

func TestDocumentSymbols_SelectionInsideRange(t *testing.T) {
	text := "server:\n  port: 8080\n"
	snap := buildSnap(t, 1, text)

	symbols := DocumentSymbols(snap)
	require.Len(t, symbols, 1)
	sym := symbols[0]

	// The full range covers key through value; the selection is just the key.
	assert.Equal(t, uint32(0), sym.Span.Start.Offset)
	assert.Greater(t, sym.Span.End.Offset, sym.SelectionSpan.End.Offset)
	assert.Equal(t, uint32(0), sym.SelectionSpan.Start.Line)
	assert.Equal(t, uint32(1), sym.Span.End.Line)
}

func TestDocumentSymbols_RootArray(t *testing.T) {
	text := "- one\n- two\n"
	snap := buildSnap(t, 1, text)

	symbols := DocumentSymbols(snap)
	require.Len(t, symbols, 2)
	assert.Equal(t, "[0]", symbols[0].Name)
	assert.Equal(t, SymbolString, symbols[0].Kind)
}

func TestDocumentSymbols_EmptyDocument(t *testing.T) {
	snap := buildSnap(t, 1, "")
	assert.Empty(t, DocumentSymbols(snap))
}
