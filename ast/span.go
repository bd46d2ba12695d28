package ast

import "fmt"

// Position is a location in a document. Line is zero-indexed. Column counts
// UTF-16 code units from the start of the line, matching the editor protocol
// convention. Offset is the byte offset from the start of the document and is
// what the parser uses for slicing.
type Position struct {
	Line   uint32 `json:"line"`
	Column uint32 `json:"column"`
	Offset uint32 `json:"offset"`
}

// Span is a half-open source range: Start inclusive, End exclusive.
type Span struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// NewSpan creates a span from start to end.
func NewSpan(start, end Position) Span {
	return Span{Start: start, End: end}
}

// PointSpan creates a zero-width span at the given position.
func PointSpan(pos Position) Span {
	return Span{Start: pos, End: pos}
}

// Contains reports whether the position falls inside the span.
// Comparison is by byte offset, which is total over a single document.
func (s Span) Contains(pos Position) bool {
	return pos.Offset >= s.Start.Offset && pos.Offset < s.End.Offset
}

// ContainsInclusive is Contains with an inclusive end, used for cursor
// queries where the caret may sit just past the last character of a token.
func (s Span) ContainsInclusive(pos Position) bool {
	return pos.Offset >= s.Start.Offset && pos.Offset <= s.End.Offset
}

// ContainsOffset reports whether the byte offset falls inside the span, end
// inclusive. Cursor queries use this directly so callers need not build a
// full Position.
func (s Span) ContainsOffset(offset uint32) bool {
	return offset >= s.Start.Offset && offset <= s.End.Offset
}

// Merge returns the smallest span covering both s and other.
func (s Span) Merge(other Span) Span {
	merged := s
	if other.Start.Offset < merged.Start.Offset {
		merged.Start = other.Start
	}
	if other.End.Offset > merged.End.Offset {
		merged.End = other.End
	}
	return merged
}

// Width returns the span's length in bytes.
func (s Span) Width() uint32 {
	if s.End.Offset < s.Start.Offset {
		return 0
	}
	return s.End.Offset - s.Start.Offset
}

func (s Span) String() string {
	return fmt.Sprintf("%d:%d-%d:%d", s.Start.Line, s.Start.Column, s.End.Line, s.End.Column)
}
