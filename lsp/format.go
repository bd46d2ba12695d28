package lsp

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/toonlang/toon-ls/ast"
)

// FormatOptions controls re-serialization.
type FormatOptions struct {
	// IndentWidth is the number of spaces per nesting level. Ignored when
	// UseTabs is set.
	IndentWidth int
	// UseTabs indents with one tab per level instead of spaces.
	UseTabs bool
}

// DefaultFormatOptions returns two-space indentation.
func DefaultFormatOptions() FormatOptions {
	return FormatOptions{IndentWidth: 2}
}

func (o FormatOptions) unit() string {
	if o.UseTabs {
		return "\t"
	}
	width := o.IndentWidth
	if width <= 0 {
		width = 2
	}
	return strings.Repeat(" ", width)
}

// Format re-serializes the tree, preserving key order and each array's
// syntactic form. Declared array counts are normalized to the actual item
// count, and strings are quoted only when their content requires it. The
// output is idempotent: formatting it again with the same options
// reproduces it byte for byte.
func Format(root *ast.Node, opts FormatOptions) string {
	if root == nil || len(root.Children) == 0 {
		return ""
	}
	f := &formatter{unit: opts.unit()}
	top := root.Children[0]
	switch top.Kind {
	case ast.KindObject:
		f.object(top, 0)
	case ast.KindArray:
		f.arrayItems(top, 0)
	default:
		f.b.WriteString(leafText(top))
		f.b.WriteByte('\n')
	}
	return f.b.String()
}

// FormatSnapshot formats a document snapshot.
func FormatSnapshot(snap *Snapshot, opts FormatOptions) string {
	return Format(snap.Root, opts)
}

type formatter struct {
	b    strings.Builder
	unit string
}

func (f *formatter) indent(level int) {
	for i := 0; i < level; i++ {
		f.b.WriteString(f.unit)
	}
}

func (f *formatter) object(obj *ast.Node, level int) {
	for _, entry := range obj.Entries {
		f.entry(entry, level)
	}
}

func (f *formatter) entry(entry ast.ObjectEntry, level int) {
	f.indent(level)
	f.b.WriteString(keyText(entry.Key))
	value := entry.Value

	switch value.Kind {
	case ast.KindObject:
		// The notation has no empty-object form; null is the closest
		// serializable value.
		if len(value.Entries) == 0 {
			f.b.WriteString(": null\n")
			return
		}
		f.b.WriteString(":\n")
		f.object(value, level+1)

	case ast.KindArray:
		f.array(value, level)

	default:
		f.b.WriteString(": ")
		f.b.WriteString(leafText(value))
		f.b.WriteByte('\n')
	}
}

// array writes the header suffix and body for an array value; the owning
// key (without colon) has already been written at the current position.
func (f *formatter) array(arr *ast.Node, level int) {
	switch arr.Form {
	case ast.ArrayTabular:
		fmt.Fprintf(&f.b, "[%d]{%s}:\n", len(arr.Items), columnList(arr.Columns))
		for _, row := range arr.Items {
			f.indent(level + 1)
			f.b.WriteString(rowText(row))
			f.b.WriteByte('\n')
		}

	case ast.ArrayExpanded:
		if arr.Declared >= 0 || len(arr.Items) == 0 {
			fmt.Fprintf(&f.b, "[%d]:\n", len(arr.Items))
		} else {
			f.b.WriteString(":\n")
		}
		f.arrayItems(arr, level+1)

	default: // inline
		if arr.Declared >= 0 {
			fmt.Fprintf(&f.b, "[%d]", len(arr.Items))
		}
		f.b.WriteString(": [")
		for i, item := range arr.Items {
			if i > 0 {
				f.b.WriteString(", ")
			}
			f.b.WriteString(leafText(item))
		}
		f.b.WriteString("]\n")
	}
}

// arrayItems writes one dash line per item of an expanded array.
func (f *formatter) arrayItems(arr *ast.Node, level int) {
	for _, item := range arr.Items {
		f.indent(level)
		switch item.Kind {
		case ast.KindObject:
			if len(item.Entries) == 0 {
				f.b.WriteString("- null\n")
				continue
			}
			f.b.WriteString("-\n")
			f.object(item, level+1)
		case ast.KindArray:
			if item.Form == ast.ArrayInline {
				f.b.WriteString("- [")
				for i, sub := range item.Items {
					if i > 0 {
						f.b.WriteString(", ")
					}
					f.b.WriteString(leafText(sub))
				}
				f.b.WriteString("]\n")
				continue
			}
			f.b.WriteString("-\n")
			f.arrayItems(item, level+1)
		default:
			f.b.WriteString("- ")
			f.b.WriteString(leafText(item))
			f.b.WriteByte('\n')
		}
	}
}

func columnList(columns []string) string {
	parts := make([]string, len(columns))
	for i, col := range columns {
		parts[i] = keyText(col)
	}
	return strings.Join(parts, ",")
}

// rowText renders one tabular row: the row object's values in column order,
// pipe separated.
func rowText(row *ast.Node) string {
	if row.Kind != ast.KindObject {
		return leafText(row)
	}
	parts := make([]string, len(row.Entries))
	for i, entry := range row.Entries {
		parts[i] = leafText(entry.Value)
	}
	return strings.Join(parts, "|")
}

// leafText renders a primitive value. Numbers re-emit the source literal so
// the author's notation survives formatting.
func leafText(node *ast.Node) string {
	switch node.Kind {
	case ast.KindString:
		if needsQuotes(node.Str) {
			return quoteString(node.Str)
		}
		return node.Str
	case ast.KindNumber:
		if node.Literal != "" {
			return node.Literal
		}
		return strconv.FormatFloat(node.Num, 'g', -1, 64)
	case ast.KindBool:
		if node.Bool {
			return "true"
		}
		return "false"
	case ast.KindNull:
		return "null"
	default:
		// Containers reaching here came from malformed input; degrade to
		// null rather than emit unparseable text.
		return "null"
	}
}

func keyText(key string) string {
	if needsQuotes(key) {
		return quoteString(key)
	}
	return key
}

// needsQuotes reports whether a string must be quoted to survive a reparse
// as the same value. Unquoted text is restricted to identifier characters
// and interior spaces; anything else (punctuation, leading digits, reserved
// literals, edge whitespace) is quoted.
func needsQuotes(s string) bool {
	if s == "" || s == "true" || s == "false" || s == "null" {
		return true
	}
	for i, r := range s {
		letter := r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		digit := r >= '0' && r <= '9'
		if i == 0 && !letter {
			return true
		}
		if !letter && !digit && r != ' ' {
			return true
		}
	}
	return s[len(s)-1] == ' '
}

func quoteString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
