package parser

import (
	"sort"
	"unicode/utf8"

	"github.com/toonlang/toon-ls/ast"
)

// LineIndex maps between byte offsets and line/UTF-16-column positions for
// one document revision. Built once per parse and reused for every
// translation against that text; a new revision gets a new index.
type LineIndex struct {
	src string
	// lineStarts[i] is the byte offset of the first character of line i.
	// lineStarts[0] is always 0.
	lineStarts []int
}

// NewLineIndex builds the index for the given source text.
func NewLineIndex(src string) *LineIndex {
	starts := []int{0}
	for i := 0; i < len(src); i++ {
		if src[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &LineIndex{src: src, lineStarts: starts}
}

// LineCount returns the number of lines, counting a trailing fragment after
// the last newline as a line.
func (ix *LineIndex) LineCount() int {
	return len(ix.lineStarts)
}

// lineAt returns the zero-based line containing the byte offset.
func (ix *LineIndex) lineAt(offset int) int {
	return sort.Search(len(ix.lineStarts), func(i int) bool {
		return ix.lineStarts[i] > offset
	}) - 1
}

// lineSpan returns the byte range [start, end) of the given line, excluding
// the line terminator.
func (ix *LineIndex) lineSpan(line int) (int, int) {
	start := ix.lineStarts[line]
	end := len(ix.src)
	if line+1 < len(ix.lineStarts) {
		end = ix.lineStarts[line+1] - 1 // drop the \n
		if end > start && ix.src[end-1] == '\r' {
			end--
		}
	}
	return start, end
}

// PositionFor converts a byte offset into a Position with a UTF-16 column.
// Offsets past the end of the text clamp to the final position.
func (ix *LineIndex) PositionFor(offset int) ast.Position {
	if offset > len(ix.src) {
		offset = len(ix.src)
	}
	if offset < 0 {
		offset = 0
	}
	line := ix.lineAt(offset)
	start := ix.lineStarts[line]

	var column uint32
	for i := start; i < offset; {
		r, size := utf8.DecodeRuneInString(ix.src[i:])
		i += size
		if r == '\r' {
			continue
		}
		column += utf16Len(r)
	}
	return ast.Position{Line: uint32(line), Column: column, Offset: uint32(offset)}
}

// OffsetFor converts a line/UTF-16-column pair into a byte offset. Lines past
// the end clamp to the end of the text; columns past the end of a line clamp
// to the line end.
func (ix *LineIndex) OffsetFor(line, column uint32) int {
	if int(line) >= len(ix.lineStarts) {
		return len(ix.src)
	}
	start, end := ix.lineSpan(int(line))

	var units uint32
	for i := start; i < end; {
		if units >= column {
			return i
		}
		r, size := utf8.DecodeRuneInString(ix.src[i:])
		if r == '\r' {
			i += size
			continue
		}
		units += utf16Len(r)
		i += size
	}
	return end
}

// PositionOf resolves a position that may carry only line/column (as
// protocol positions do) into one with a correct byte offset.
func (ix *LineIndex) PositionOf(line, column uint32) ast.Position {
	offset := ix.OffsetFor(line, column)
	return ix.PositionFor(offset)
}
