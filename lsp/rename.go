package lsp

import (
	"github.com/toonlang/toon-ls/ast"
	"github.com/toonlang/toon-ls/errors"
)

// TextEdit is one replacement the client applies to rename a key.
type TextEdit struct {
	Span    ast.Span
	NewText string
}

// PrepareRename reports whether a rename can start at the offset: the cursor
// must sit on an object key. On success it returns the key's span and the
// current key text as the placeholder.
func PrepareRename(snap *Snapshot, offset uint32) (ast.Span, string, bool) {
	loc := FindAtOffset(snap.Root, offset)
	if loc == nil || !loc.OnKey {
		return ast.Span{}, "", false
	}
	return loc.KeySpan, loc.Key, true
}

// Rename produces one edit per occurrence of the key under the cursor,
// matching by exact key text document wide. It fails when the cursor is not
// on a key or when the new name is not a syntactically legal key.
func Rename(snap *Snapshot, offset uint32, newName string) ([]TextEdit, error) {
	key, ok := keyAtOffset(snap, offset)
	if !ok {
		return nil, errors.ErrNotAKey
	}
	if !isValidKeyName(newName) {
		return nil, errors.Wrapf(errors.ErrInvalidKeyName, "%q", newName)
	}

	spans := occurrencesOf(snap, key)
	edits := make([]TextEdit, 0, len(spans))
	for _, span := range spans {
		edits = append(edits, TextEdit{Span: span, NewText: newName})
	}
	return edits, nil
}

// isValidKeyName accepts identifier-shaped names: a letter or underscore
// followed by letters, digits, or underscores. Reserved literals are
// rejected since they would scan as values.
func isValidKeyName(name string) bool {
	if name == "" || name == "true" || name == "false" || name == "null" {
		return false
	}
	for i, r := range name {
		letter := r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		digit := r >= '0' && r <= '9'
		if i == 0 && !letter {
			return false
		}
		if !letter && !digit {
			return false
		}
	}
	return true
}
