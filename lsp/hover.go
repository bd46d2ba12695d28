package lsp

import (
	"fmt"
	"strings"

	"github.com/toonlang/toon-ls/ast"
)

// Hover is the rendered tooltip for a position: markdown contents plus the
// span the editor should highlight.
type Hover struct {
	Contents string
	Span     ast.Span
}

// HoverAt resolves the innermost node at the byte offset and renders its
// declared type and dotted key path. Returns nil when nothing is under the
// cursor.
func HoverAt(snap *Snapshot, offset uint32) *Hover {
	loc := FindAtOffset(snap.Root, offset)
	if loc == nil {
		return nil
	}

	var b strings.Builder
	if path := loc.KeyPath(); path != "" {
		fmt.Fprintf(&b, "**%s**\n\n", path)
	}
	fmt.Fprintf(&b, "Type: `%s`", loc.Node.Kind)

	switch loc.Node.Kind {
	case ast.KindArray:
		fmt.Fprintf(&b, "\n\n%d items (%s)", len(loc.Node.Items), arrayFormName(loc.Node.Form))
	case ast.KindObject:
		fmt.Fprintf(&b, "\n\n%d entries", len(loc.Node.Entries))
	case ast.KindString:
		if !loc.OnKey {
			fmt.Fprintf(&b, "\n\n`%q`", loc.Node.Str)
		}
	case ast.KindNumber:
		if !loc.OnKey {
			fmt.Fprintf(&b, "\n\n`%s`", loc.Node.Literal)
		}
	}

	span := loc.Node.Span
	if loc.OnKey {
		span = loc.KeySpan
	}
	return &Hover{Contents: b.String(), Span: span}
}

func arrayFormName(form ast.ArrayForm) string {
	switch form {
	case ast.ArrayInline:
		return "inline"
	case ast.ArrayExpanded:
		return "expanded"
	case ast.ArrayTabular:
		return "tabular"
	default:
		return "array"
	}
}
