package lsp

import (
	"github.com/toonlang/toon-ls/ast"
)

// keyAtOffset resolves the key identity under the cursor, if any.
func keyAtOffset(snap *Snapshot, offset uint32) (string, bool) {
	loc := FindAtOffset(snap.Root, offset)
	if loc == nil || !loc.OnKey {
		return "", false
	}
	return loc.Key, true
}

// occurrencesOf returns the spans of every key with the given literal text,
// document wide, in source order.
func occurrencesOf(snap *Snapshot, key string) []ast.Span {
	var spans []ast.Span
	for _, occ := range CollectKeys(snap.Root) {
		if occ.Key == key {
			spans = append(spans, occ.Span)
		}
	}
	return spans
}

// Definition resolves the key under the cursor to its first occurrence in
// source order. Returns nil when the cursor is not on a key.
func Definition(snap *Snapshot, offset uint32) *ast.Span {
	key, ok := keyAtOffset(snap, offset)
	if !ok {
		return nil
	}
	spans := occurrencesOf(snap, key)
	if len(spans) == 0 {
		return nil
	}
	return &spans[0]
}

// References returns every occurrence of the key under the cursor. With
// includeDeclaration false the first occurrence is omitted. Matching is by
// exact key text within this document only.
func References(snap *Snapshot, offset uint32, includeDeclaration bool) []ast.Span {
	key, ok := keyAtOffset(snap, offset)
	if !ok {
		return nil
	}
	spans := occurrencesOf(snap, key)
	if !includeDeclaration && len(spans) > 0 {
		spans = spans[1:]
	}
	return spans
}
