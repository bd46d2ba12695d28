package lsp

import (
	"strconv"

	"github.com/toonlang/toon-ls/ast"
)

// Location describes what sits under a byte offset: the innermost node whose
// span contains it, the dotted key path from the document root, and whether
// the offset lies on an object key rather than a value.
type Location struct {
	Node    *ast.Node
	Path    []string
	OnKey   bool
	Key     string
	KeySpan ast.Span
}

// KeyPath renders the dotted path, array items addressed by index.
func (l *Location) KeyPath() string {
	out := ""
	for i, seg := range l.Path {
		if i > 0 {
			out += "."
		}
		out += seg
	}
	return out
}

// FindAtOffset walks the tree top-down and returns the innermost location
// containing the byte offset. Containment is span-based, so nested matches
// resolve smallest-span-wins. Returns nil when the offset falls outside
// every node.
func FindAtOffset(root *ast.Node, offset uint32) *Location {
	if root == nil {
		return nil
	}
	return findIn(root, offset, nil)
}

func findIn(node *ast.Node, offset uint32, path []string) *Location {
	switch node.Kind {
	case ast.KindDocument:
		for _, child := range node.Children {
			if child.Span.ContainsOffset(offset) {
				return findIn(child, offset, path)
			}
		}
		return nil

	case ast.KindObject:
		for _, entry := range node.Entries {
			if entry.KeySpan.ContainsOffset(offset) {
				return &Location{
					Node:    entry.Value,
					Path:    append(path, entry.Key),
					OnKey:   true,
					Key:     entry.Key,
					KeySpan: entry.KeySpan,
				}
			}
			if entry.Value.Span.ContainsOffset(offset) {
				return findIn(entry.Value, offset, append(path, entry.Key))
			}
		}
		if node.Span.ContainsOffset(offset) {
			return &Location{Node: node, Path: path}
		}
		return nil

	case ast.KindArray:
		for i, item := range node.Items {
			if item.Span.ContainsOffset(offset) {
				return findIn(item, offset, append(path, strconv.Itoa(i)))
			}
		}
		if node.Span.ContainsOffset(offset) {
			return &Location{Node: node, Path: path}
		}
		return nil

	default:
		if node.Span.ContainsOffset(offset) {
			return &Location{Node: node, Path: path}
		}
		return nil
	}
}

// KeyOccurrence is one object key with its source span, in source order.
type KeyOccurrence struct {
	Key  string
	Span ast.Span
}

// CollectKeys gathers every object key in the document, depth first, in
// source order. Navigation and rename group these by literal key text.
func CollectKeys(root *ast.Node) []KeyOccurrence {
	var out []KeyOccurrence
	collectKeysInto(root, &out)
	return out
}

func collectKeysInto(node *ast.Node, out *[]KeyOccurrence) {
	if node == nil {
		return
	}
	switch node.Kind {
	case ast.KindDocument:
		for _, child := range node.Children {
			collectKeysInto(child, out)
		}
	case ast.KindObject:
		for _, entry := range node.Entries {
			*out = append(*out, KeyOccurrence{Key: entry.Key, Span: entry.KeySpan})
			collectKeysInto(entry.Value, out)
		}
	case ast.KindArray:
		for _, item := range node.Items {
			collectKeysInto(item, out)
		}
	}
}

// enclosingObject returns the innermost object whose span contains the
// offset. When the offset sits outside every object (a fresh line past the
// last entry), the top-level object acts as the fallback scope.
func enclosingObject(root *ast.Node, offset uint32) *ast.Node {
	var found *ast.Node
	var walk func(node *ast.Node)
	walk = func(node *ast.Node) {
		switch node.Kind {
		case ast.KindDocument:
			for _, child := range node.Children {
				walk(child)
			}
		case ast.KindObject:
			if node.Span.ContainsOffset(offset) {
				// Children are visited after, so deeper matches win.
				found = node
			}
			for _, entry := range node.Entries {
				walk(entry.Value)
			}
		case ast.KindArray:
			for _, item := range node.Items {
				walk(item)
			}
		}
	}
	if root == nil {
		return nil
	}
	walk(root)
	if found == nil && len(root.Children) > 0 && root.Children[0].Kind == ast.KindObject {
		found = root.Children[0]
	}
	return found
}
