// Package ast defines the positioned syntax tree for TOON documents.
//
// Nodes form a strict ownership tree: children are owned by their parent and
// there are no parent pointers. Position-based lookups are top-down
// span-containment walks from the root. A tree is immutable once built; a
// reparse produces a fresh tree rather than mutating in place.
package ast

// NodeKind discriminates the Node variants.
type NodeKind uint8

const (
	KindDocument NodeKind = iota
	KindObject
	KindArray
	KindString
	KindNumber
	KindBool
	KindNull
)

// String returns the lowercase kind name used in hovers and symbols.
func (k NodeKind) String() string {
	switch k {
	case KindDocument:
		return "document"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindNull:
		return "null"
	default:
		return "unknown"
	}
}

// ArrayForm is the syntactic shape an array had in the source document.
// The formatter preserves it on re-serialization.
type ArrayForm uint8

const (
	// ArrayInline is a bracketed, comma-separated list on one line.
	ArrayInline ArrayForm = iota
	// ArrayExpanded is one dash-prefixed value per line.
	ArrayExpanded
	// ArrayTabular is a declared column list followed by pipe-delimited
	// rows, each row decoding to one object keyed by the columns.
	ArrayTabular
)

// Node is one node of the tree. Kind selects which fields are meaningful:
//
//	KindDocument: Children
//	KindObject:   Entries
//	KindArray:    Items, Form, Columns (tabular only), Declared
//	KindString:   Str
//	KindNumber:   Num, Literal
//	KindBool:     Bool
//	KindNull:     (span only)
//
// A single struct with a kind tag keeps consumers to exhaustive switches and
// avoids interface boxing on the parser's hot path.
type Node struct {
	Kind NodeKind
	Span Span

	// Document
	Children []*Node

	// Object
	Entries []ObjectEntry

	// Array
	Items   []*Node
	Form    ArrayForm
	Columns []string
	// Declared is the item count from a key[N] header, or -1 when the
	// array carried no declared count.
	Declared int

	// Leaves
	Str     string
	Num     float64
	Literal string
	Bool    bool
}

// ObjectEntry is one key/value pair of an object. Key order is significant
// and preserved; duplicate keys are legal at this level.
type ObjectEntry struct {
	Key     string
	KeySpan Span
	Value   *Node
}

// NewDocument creates a document node.
func NewDocument(children []*Node, span Span) *Node {
	return &Node{Kind: KindDocument, Children: children, Span: span}
}

// NewObject creates an object node.
func NewObject(entries []ObjectEntry, span Span) *Node {
	return &Node{Kind: KindObject, Entries: entries, Span: span}
}

// NewArray creates an array node. declared is -1 when no count was declared.
func NewArray(items []*Node, form ArrayForm, declared int, span Span) *Node {
	return &Node{Kind: KindArray, Items: items, Form: form, Declared: declared, Span: span}
}

// NewString creates a string leaf.
func NewString(value string, span Span) *Node {
	return &Node{Kind: KindString, Str: value, Span: span}
}

// NewNumber creates a number leaf. literal is the original source text,
// preserved so formatting can round-trip the author's notation.
func NewNumber(value float64, literal string, span Span) *Node {
	return &Node{Kind: KindNumber, Num: value, Literal: literal, Span: span}
}

// NewBool creates a boolean leaf.
func NewBool(value bool, span Span) *Node {
	return &Node{Kind: KindBool, Bool: value, Span: span}
}

// NewNull creates a null leaf.
func NewNull(span Span) *Node {
	return &Node{Kind: KindNull, Span: span}
}

// IsLeaf reports whether the node has no structural children.
func (n *Node) IsLeaf() bool {
	switch n.Kind {
	case KindString, KindNumber, KindBool, KindNull:
		return true
	default:
		return false
	}
}
