package lsp

import (
	"sort"
	"strings"
)

// CompletionKind distinguishes the two item categories offered.
type CompletionKind uint8

const (
	// CompletionKey is a sibling key already used at the cursor's nesting
	// level, offered for awareness rather than insertion.
	CompletionKey CompletionKind = iota
	// CompletionLiteral is one of the true/false/null value literals.
	CompletionLiteral
)

// CompletionItem is one completion candidate.
type CompletionItem struct {
	Label  string
	Kind   CompletionKind
	Detail string
}

// CompletionAt determines whether the cursor sits in key or value position
// and returns the candidates for that context. Value position is anything
// after the line's first colon; everything else is key position.
func CompletionAt(snap *Snapshot, offset uint32) []CompletionItem {
	if inValuePosition(snap.Text, offset) {
		return []CompletionItem{
			{Label: "true", Kind: CompletionLiteral, Detail: "boolean"},
			{Label: "false", Kind: CompletionLiteral, Detail: "boolean"},
			{Label: "null", Kind: CompletionLiteral, Detail: "null"},
		}
	}

	obj := enclosingObject(snap.Root, offset)
	if obj == nil {
		return nil
	}

	seen := make(map[string]bool, len(obj.Entries))
	var items []CompletionItem
	for _, entry := range obj.Entries {
		if seen[entry.Key] {
			continue
		}
		seen[entry.Key] = true
		items = append(items, CompletionItem{
			Label:  entry.Key,
			Kind:   CompletionKey,
			Detail: "sibling key",
		})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Label < items[j].Label })
	return items
}

// inValuePosition reports whether an unquoted colon appears before the
// offset on its line.
func inValuePosition(text string, offset uint32) bool {
	if int(offset) > len(text) {
		offset = uint32(len(text))
	}
	lineStart := strings.LastIndexByte(text[:offset], '\n') + 1
	line := text[lineStart:offset]

	inString := false
	var quote byte
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case inString:
			if c == '\\' {
				i++
			} else if c == quote {
				inString = false
			}
		case c == '"' || c == '\'':
			inString = true
			quote = c
		case c == ':':
			return true
		case c == '#':
			return false
		}
	}
	return false
}
