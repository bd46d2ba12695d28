// Package parser turns TOON source text into a span-annotated syntax tree.
//
// Parsing is recursive descent over the scanner's token stream. Nesting is
// recognized by relative indentation: the parser tracks the column of each
// block and opens a child block when a line is deeper than its parent key.
// Resource ceilings are enforced during descent, and syntax errors are
// recovered by synchronizing to the next line boundary and substituting null
// placeholders, so ParseWithErrors always terminates with a structurally
// valid tree.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/toonlang/toon-ls/ast"
)

type parser struct {
	src    string
	tokens []Token
	pos    int
	errors []*ParseError
	limits Limits
}

// Parse parses source strictly: the first error-severity failure is returned
// and no tree is produced. Duplicate keys are warnings and do not fail a
// strict parse.
func Parse(source string, limits Limits) (*ast.Node, error) {
	doc, errs := ParseWithErrors(source, limits)
	for _, e := range errs {
		if e.Severity() == SeverityError {
			return nil, e
		}
	}
	return doc, nil
}

// ParseWithErrors parses source in recovery mode: it always returns a tree
// (possibly an empty document) together with every recorded error. This is
// the entry point the language service uses.
func ParseWithErrors(source string, limits Limits) (*ast.Node, []*ParseError) {
	limits = limits.normalized()

	if len(source) > limits.MaxDocumentBytes {
		err := NewParseError(ErrDocumentTooLarge, ast.PointSpan(ast.Position{})).
			WithContext(fmt.Sprintf("%d bytes exceeds the %d byte ceiling", len(source), limits.MaxDocumentBytes))
		return ast.NewDocument(nil, ast.PointSpan(ast.Position{})), []*ParseError{err}
	}

	p := &parser{
		src:    source,
		tokens: NewScanner(source).ScanAll(),
		limits: limits,
	}
	doc := p.parseDocument()
	return doc, p.errors
}

// --- token navigation ---

func (p *parser) current() Token {
	if p.pos < len(p.tokens) {
		return p.tokens[p.pos]
	}
	return p.tokens[len(p.tokens)-1]
}

func (p *parser) advance() Token {
	tok := p.current()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *parser) atEnd() bool {
	return p.current().Kind == TokenEOF
}

// skipTrivia skips whitespace and comments within a line.
func (p *parser) skipTrivia() {
	for {
		switch p.current().Kind {
		case TokenWhitespace, TokenComment:
			p.advance()
		default:
			return
		}
	}
}

// skipBlankLines skips trivia and newlines, landing on the first significant
// token of the next non-blank line (or EOF).
func (p *parser) skipBlankLines() {
	for {
		switch p.current().Kind {
		case TokenWhitespace, TokenComment, TokenNewline:
			p.advance()
		default:
			return
		}
	}
}

// atLineEnd reports whether the current token (after trivia) terminates the
// line.
func (p *parser) atLineEnd() bool {
	switch p.current().Kind {
	case TokenNewline, TokenEOF:
		return true
	default:
		return false
	}
}

// --- errors and recovery ---

func (p *parser) recordError(kind ErrorKind, span ast.Span) *ParseError {
	err := NewParseError(kind, span)
	p.errors = append(p.errors, err)
	return err
}

// synchronize skips tokens through the next newline so parsing resumes at a
// line boundary.
func (p *parser) synchronize() {
	for !p.atEnd() {
		if p.advance().Kind == TokenNewline {
			return
		}
	}
}

// skipDeeperLines consumes whole lines as long as they are indented deeper
// than the given column. Used to drop a subtree that exceeded the depth
// ceiling while keeping the parent block parseable.
func (p *parser) skipDeeperLines(indent uint32) {
	for {
		p.skipBlankLines()
		if p.atEnd() || p.current().Span.Start.Column <= indent {
			return
		}
		p.synchronize()
	}
}

// --- document ---

func (p *parser) parseDocument() *ast.Node {
	start := p.current().Span.Start
	p.skipBlankLines()

	if p.atEnd() {
		return ast.NewDocument(nil, ast.PointSpan(start))
	}

	var root *ast.Node
	first := p.current()
	if first.Kind == TokenDash {
		root = p.parseExpandedArray(first.Span.Start.Column, -1, 1)
	} else {
		root = p.parseObjectBlock(first.Span.Start.Column, 1)
	}

	span := ast.NewSpan(start, root.Span.End)
	return ast.NewDocument([]*ast.Node{root}, span)
}

// --- objects ---

// parseObjectBlock parses key/value entries at exactly the given indentation
// column until a shallower line, EOF, or a non-entry token ends the block.
func (p *parser) parseObjectBlock(indent uint32, depth int) *ast.Node {
	start := p.current().Span.Start
	var entries []ast.ObjectEntry
	truncated := false

	for {
		p.skipBlankLines()
		if p.atEnd() {
			break
		}

		tok := p.current()
		col := tok.Span.Start.Column
		if col < indent {
			break
		}
		if col > indent {
			p.recordError(ErrInvalidIndent, tok.Span).
				WithContext(fmt.Sprintf("line indented to column %d inside a block at column %d", col, indent))
			p.synchronize()
			continue
		}
		if tok.Kind != TokenKey && tok.Kind != TokenString {
			if tok.Kind == TokenDash {
				// A dash at object level means the block ended and an
				// enclosing array continues.
				break
			}
			p.recordError(ErrExpectedKey, tok.Span).WithContext(fmt.Sprintf("found %s", tok.Kind))
			p.synchronize()
			continue
		}

		entry, ok := p.parseObjectEntry(indent, depth)
		if !ok {
			continue
		}

		if len(entries) >= p.limits.MaxObjectEntries {
			if !truncated {
				truncated = true
				p.recordError(ErrTooManyObjectEntries, entry.KeySpan).
					WithContext(fmt.Sprintf("object exceeds %d entries", p.limits.MaxObjectEntries))
			}
			continue
		}
		entries = append(entries, entry)
	}

	p.checkDuplicateKeys(entries)

	end := start
	if n := len(entries); n > 0 {
		end = entries[n-1].Value.Span.End
	}
	return ast.NewObject(entries, ast.NewSpan(start, end))
}

// checkDuplicateKeys records a warning on every key occurrence after the
// first within one object.
func (p *parser) checkDuplicateKeys(entries []ast.ObjectEntry) {
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		if seen[e.Key] {
			p.recordError(ErrDuplicateKey, e.KeySpan).WithContext(fmt.Sprintf("key %q already defined", e.Key))
			continue
		}
		seen[e.Key] = true
	}
}

func (p *parser) parseObjectEntry(indent uint32, depth int) (ast.ObjectEntry, bool) {
	keyTok := p.advance()
	key := keyTok.Value
	keySpan := keyTok.Span

	if keyTok.Kind == TokenString && keyTok.Unterminated {
		p.recordError(ErrUnterminatedString, keyTok.Span)
		p.synchronize()
		return ast.ObjectEntry{}, false
	}

	p.skipTrivia()

	var value *ast.Node
	switch p.current().Kind {
	case TokenBracketOpen:
		value = p.parseArrayHeader(indent, depth)
	case TokenColon:
		p.advance()
		value = p.parseValue(indent, depth)
	default:
		p.recordError(ErrExpectedColon, p.current().Span).
			WithContext(fmt.Sprintf("after key %q", key))
		p.synchronize()
		value = ast.NewNull(ast.PointSpan(keySpan.End))
	}

	return ast.ObjectEntry{Key: key, KeySpan: keySpan, Value: value}, true
}

// --- values ---

// parseValue parses the value following a colon. parentIndent is the column
// of the owning key; a following line deeper than it opens a nested block.
func (p *parser) parseValue(parentIndent uint32, depth int) *ast.Node {
	p.skipTrivia()
	tok := p.current()

	switch tok.Kind {
	case TokenNewline, TokenEOF:
		return p.parseBlockValue(parentIndent, depth, tok.Span.Start)

	case TokenBracketOpen:
		arr, ok := p.parseInlineArray(-1, true)
		if !ok {
			return ast.NewNull(ast.PointSpan(tok.Span.Start))
		}
		return arr

	case TokenString:
		if tok.Unterminated {
			p.recordError(ErrUnterminatedString, tok.Span)
			p.advance()
			return ast.NewString(tok.Value, tok.Span)
		}
		p.advance()
		if p.restOfLineIsBlank() {
			return ast.NewString(tok.Value, tok.Span)
		}
		return p.parseUnquotedRun(tok)

	case TokenNumber:
		p.advance()
		node := p.numberNode(tok)
		if p.restOfLineIsBlank() {
			return node
		}
		return p.parseUnquotedRun(tok)

	case TokenBool:
		p.advance()
		if p.restOfLineIsBlank() {
			return ast.NewBool(tok.Text == "true", tok.Span)
		}
		return p.parseUnquotedRun(tok)

	case TokenNull:
		p.advance()
		if p.restOfLineIsBlank() {
			return ast.NewNull(tok.Span)
		}
		return p.parseUnquotedRun(tok)

	case TokenKey, TokenDash, TokenBadChar:
		p.advance()
		return p.parseUnquotedRun(tok)

	default:
		p.recordError(ErrExpectedValue, tok.Span).WithContext(fmt.Sprintf("found %s", tok.Kind))
		p.synchronize()
		return ast.NewNull(ast.PointSpan(tok.Span.Start))
	}
}

// parseBlockValue handles a value placed on the following lines: a nested
// object, an expanded array, or an implicit null when the next line does not
// indent past the owning key.
func (p *parser) parseBlockValue(parentIndent uint32, depth int, at ast.Position) *ast.Node {
	p.skipBlankLines()
	if p.atEnd() {
		return ast.NewNull(ast.PointSpan(at))
	}

	tok := p.current()
	if tok.Span.Start.Column <= parentIndent {
		return ast.NewNull(ast.PointSpan(at))
	}

	if depth+1 > p.limits.MaxDepth {
		p.recordError(ErrMaxDepthExceeded, tok.Span).
			WithContext(fmt.Sprintf("nesting exceeds %d levels", p.limits.MaxDepth))
		p.skipDeeperLines(parentIndent)
		return ast.NewNull(ast.PointSpan(at))
	}

	if tok.Kind == TokenDash {
		return p.parseExpandedArray(tok.Span.Start.Column, -1, depth+1)
	}
	return p.parseObjectBlock(tok.Span.Start.Column, depth+1)
}

// restOfLineIsBlank reports whether only trivia remains before the newline.
func (p *parser) restOfLineIsBlank() bool {
	p.skipTrivia()
	return p.atLineEnd()
}

// parseUnquotedRun consumes the remainder of the line as one unquoted string
// value, starting from the already-consumed first token.
func (p *parser) parseUnquotedRun(first Token) *ast.Node {
	endTok := first
	for {
		switch p.current().Kind {
		case TokenNewline, TokenEOF, TokenComment:
			text := strings.TrimRight(p.src[first.Span.Start.Offset:endTok.Span.End.Offset], " \t")
			return ast.NewString(text, ast.NewSpan(first.Span.Start, endTok.Span.End))
		case TokenWhitespace:
			p.advance()
		default:
			endTok = p.advance()
		}
	}
}

// numberNode validates a number token. Literals with leading zeros decode as
// strings (matching JSON's rejection of octal-looking notation); anything
// else that fails to parse records an invalid-number error and degrades to a
// string so the tree stays usable.
func (p *parser) numberNode(tok Token) *ast.Node {
	if hasLeadingZero(tok.Text) {
		return ast.NewString(tok.Text, tok.Span)
	}
	value, err := strconv.ParseFloat(tok.Text, 64)
	if err != nil {
		p.recordError(ErrInvalidNumber, tok.Span).WithContext(tok.Text)
		return ast.NewString(tok.Text, tok.Span)
	}
	return ast.NewNumber(value, tok.Text, tok.Span)
}

func hasLeadingZero(text string) bool {
	digits := strings.TrimPrefix(text, "-")
	return len(digits) >= 2 && digits[0] == '0' && digits[1] >= '0' && digits[1] <= '9'
}

// --- arrays ---

// parseArrayHeader parses key[N], key[N]{cols}: and the array body that the
// header shape selects: a brace column list means tabular rows, an inline
// list follows on the same line, and otherwise the declared count of
// dash-prefixed lines is expected at the next indentation level.
func (p *parser) parseArrayHeader(keyIndent uint32, depth int) *ast.Node {
	open := p.advance() // [
	declared := -1

	p.skipTrivia()
	if tok := p.current(); tok.Kind == TokenNumber {
		p.advance()
		n, err := strconv.Atoi(tok.Text)
		if err != nil || n < 0 {
			p.recordError(ErrInvalidNumber, tok.Span).WithContext("array count must be a non-negative integer")
		} else {
			declared = n
		}
	}

	p.skipTrivia()
	if p.current().Kind == TokenBracketClose {
		p.advance()
	} else {
		p.recordError(ErrBracketMismatch, p.current().Span).WithContext("expected ] to close array count")
	}

	p.skipTrivia()
	var columns []string
	if p.current().Kind == TokenBraceOpen {
		columns = p.parseColumnList()
	}

	p.skipTrivia()
	if p.current().Kind == TokenColon {
		p.advance()
	} else {
		p.recordError(ErrExpectedColon, p.current().Span).WithContext("after array header")
	}

	var arr *ast.Node
	switch {
	case columns != nil:
		arr = p.parseTabularArray(open.Span.Start, keyIndent, columns, depth)
	default:
		p.skipTrivia()
		if p.atLineEnd() {
			arr = p.parseExpandedBody(open.Span.Start, keyIndent, depth)
		} else {
			var ok bool
			arr, ok = p.parseInlineArray(declared, p.current().Kind == TokenBracketOpen)
			if !ok {
				return ast.NewNull(ast.PointSpan(open.Span.Start))
			}
		}
	}

	arr.Declared = declared
	p.checkDeclaredCount(arr, declared)
	return arr
}

// checkDeclaredCount compares a declared item count against the actual item
// count after any ceiling truncation has been applied, and records a
// non-fatal mismatch diagnostic.
func (p *parser) checkDeclaredCount(arr *ast.Node, declared int) {
	if declared < 0 || declared == len(arr.Items) {
		return
	}
	p.recordError(ErrArrayCountMismatch, arr.Span).
		WithContext(fmt.Sprintf("declared %d items, found %d", declared, len(arr.Items)))
}

func (p *parser) parseColumnList() []string {
	p.advance() // {
	columns := []string{}
	for {
		p.skipTrivia()
		tok := p.current()
		switch tok.Kind {
		case TokenBraceClose:
			p.advance()
			return columns
		case TokenKey, TokenString:
			p.advance()
			columns = append(columns, tok.Value)
		case TokenComma:
			p.advance()
		case TokenNewline, TokenEOF:
			p.recordError(ErrBracketMismatch, tok.Span).WithContext("expected } to close column list")
			return columns
		default:
			p.recordError(ErrUnexpectedToken, tok.Span).WithContext("in column list")
			p.advance()
		}
	}
}

// parseExpandedBody parses the dash-prefixed lines following a key[N]:
// header. An empty body yields an empty expanded array.
func (p *parser) parseExpandedBody(at ast.Position, keyIndent uint32, depth int) *ast.Node {
	p.skipBlankLines()
	tok := p.current()
	if p.atEnd() || tok.Span.Start.Column <= keyIndent || tok.Kind != TokenDash {
		return ast.NewArray(nil, ast.ArrayExpanded, -1, ast.PointSpan(at))
	}
	if depth+1 > p.limits.MaxDepth {
		p.recordError(ErrMaxDepthExceeded, tok.Span).
			WithContext(fmt.Sprintf("nesting exceeds %d levels", p.limits.MaxDepth))
		p.skipDeeperLines(keyIndent)
		return ast.NewArray(nil, ast.ArrayExpanded, -1, ast.PointSpan(at))
	}
	return p.parseExpandedArray(tok.Span.Start.Column, -1, depth+1)
}

// parseExpandedArray parses dash-prefixed items at exactly itemIndent.
func (p *parser) parseExpandedArray(itemIndent uint32, declared int, depth int) *ast.Node {
	start := p.current().Span.Start
	var items []*ast.Node
	truncated := false

	for {
		p.skipBlankLines()
		if p.atEnd() {
			break
		}
		tok := p.current()
		if tok.Span.Start.Column != itemIndent || tok.Kind != TokenDash {
			break
		}
		p.advance() // dash
		p.skipTrivia()

		var item *ast.Node
		if p.atLineEnd() {
			item = p.parseBlockValue(itemIndent, depth, p.current().Span.Start)
		} else {
			item = p.parseValue(itemIndent, depth)
		}

		if len(items) >= p.limits.MaxArrayItems {
			if !truncated {
				truncated = true
				p.recordError(ErrTooManyArrayItems, item.Span).
					WithContext(fmt.Sprintf("array exceeds %d items", p.limits.MaxArrayItems))
			}
			continue
		}
		items = append(items, item)
	}

	end := start
	if n := len(items); n > 0 {
		end = items[n-1].Span.End
	}
	return ast.NewArray(items, ast.ArrayExpanded, declared, ast.NewSpan(start, end))
}

// parseInlineArray parses a comma-separated list on one line. bracketed
// lists must close before the line ends; an unterminated bracketed list
// records a mismatch error spanning from the opening bracket to the line end
// and reports failure so the caller substitutes a placeholder.
func (p *parser) parseInlineArray(declared int, bracketed bool) (*ast.Node, bool) {
	start := p.current().Span.Start
	if bracketed {
		p.advance() // [
	}

	var items []*ast.Node
	truncated := false
	closed := !bracketed

	for {
		p.skipTrivia()
		tok := p.current()

		if bracketed && tok.Kind == TokenBracketClose {
			p.advance()
			closed = true
			break
		}
		if tok.Kind == TokenNewline || tok.Kind == TokenEOF {
			break
		}

		item, ok := p.parseInlineCell(TokenComma)
		if !ok {
			p.advance()
			continue
		}

		if len(items) >= p.limits.MaxArrayItems {
			if !truncated {
				truncated = true
				p.recordError(ErrTooManyArrayItems, item.Span).
					WithContext(fmt.Sprintf("array exceeds %d items", p.limits.MaxArrayItems))
			}
		} else {
			items = append(items, item)
		}

		p.skipTrivia()
		if p.current().Kind == TokenComma {
			p.advance()
		}
	}

	end := p.current().Span.Start
	span := ast.NewSpan(start, end)

	if !closed {
		p.recordError(ErrBracketMismatch, span).WithContext("inline array is missing its closing bracket")
		p.synchronize()
		return nil, false
	}
	if n := len(items); n > 0 {
		span = ast.NewSpan(start, items[n-1].Span.End)
		if closed && bracketed {
			span.End = end
		}
	}
	// Declared-count checking is the caller's job; parseValue passes -1 and
	// parseArrayHeader checks once for every body shape.
	return ast.NewArray(items, ast.ArrayInline, declared, span), true
}

// parseInlineCell parses one primitive cell of an inline list or tabular
// row. stop is the delimiter kind the cell must not consume.
func (p *parser) parseInlineCell(stop TokenKind) (*ast.Node, bool) {
	tok := p.current()
	switch tok.Kind {
	case TokenString:
		p.advance()
		if tok.Unterminated {
			p.recordError(ErrUnterminatedString, tok.Span)
		}
		return ast.NewString(tok.Value, tok.Span), true
	case TokenNumber:
		p.advance()
		return p.numberNode(tok), true
	case TokenBool:
		p.advance()
		return ast.NewBool(tok.Text == "true", tok.Span), true
	case TokenNull:
		p.advance()
		return ast.NewNull(tok.Span), true
	case TokenKey:
		// Unquoted cell text: join adjacent words until a delimiter.
		return p.parseCellRun(stop), true
	default:
		p.recordError(ErrUnexpectedToken, tok.Span).
			WithContext(fmt.Sprintf("found %s in array", tok.Kind))
		return nil, false
	}
}

// parseCellRun collects raw text until the stop delimiter, a closing
// bracket, or the line end.
func (p *parser) parseCellRun(stop TokenKind) *ast.Node {
	first := p.advance()
	endTok := first
	for {
		kind := p.current().Kind
		if kind == stop || kind == TokenNewline || kind == TokenEOF ||
			kind == TokenBracketClose || kind == TokenComment || kind == TokenPipe {
			text := strings.TrimRight(p.src[first.Span.Start.Offset:endTok.Span.End.Offset], " \t")
			return ast.NewString(text, ast.NewSpan(first.Span.Start, endTok.Span.End))
		}
		if kind == TokenWhitespace {
			p.advance()
			continue
		}
		endTok = p.advance()
	}
}

// parseTabularArray parses the pipe-delimited rows following a
// key[N]{cols}: header. Every row at a deeper indentation than the key
// becomes one object keyed by the column list.
func (p *parser) parseTabularArray(at ast.Position, keyIndent uint32, columns []string, depth int) *ast.Node {
	var items []*ast.Node
	truncated := false

	for {
		p.skipBlankLines()
		if p.atEnd() || p.current().Span.Start.Column <= keyIndent {
			break
		}
		if p.current().Kind == TokenDash {
			break
		}

		row := p.parseTabularRow(columns)

		if len(items) >= p.limits.MaxArrayItems {
			if !truncated {
				truncated = true
				p.recordError(ErrTooManyArrayItems, row.Span).
					WithContext(fmt.Sprintf("array exceeds %d items", p.limits.MaxArrayItems))
			}
			continue
		}
		items = append(items, row)
	}

	span := ast.PointSpan(at)
	if n := len(items); n > 0 {
		span = ast.NewSpan(items[0].Span.Start, items[n-1].Span.End)
		span.Start = at
	}
	arr := ast.NewArray(items, ast.ArrayTabular, -1, span)
	arr.Columns = columns
	return arr
}

// parseTabularRow parses one pipe-delimited row into an object keyed by the
// declared columns. Missing cells become nulls; a cell-count mismatch is a
// non-fatal diagnostic.
func (p *parser) parseTabularRow(columns []string) *ast.Node {
	start := p.current().Span.Start
	var cells []*ast.Node

	for {
		p.skipTrivia()
		tok := p.current()
		if tok.Kind == TokenNewline || tok.Kind == TokenEOF || tok.Kind == TokenComment {
			break
		}
		if tok.Kind == TokenPipe {
			p.advance()
			continue
		}
		cell, ok := p.parseInlineCell(TokenPipe)
		if !ok {
			p.advance()
			continue
		}
		cells = append(cells, cell)
	}

	end := start
	if n := len(cells); n > 0 {
		end = cells[n-1].Span.End
	}
	rowSpan := ast.NewSpan(start, end)

	if len(cells) != len(columns) {
		p.recordError(ErrArrayCountMismatch, rowSpan).
			WithContext(fmt.Sprintf("row has %d values, expected %d columns", len(cells), len(columns)))
	}

	entries := make([]ast.ObjectEntry, 0, len(columns))
	for i, col := range columns {
		var value *ast.Node
		if i < len(cells) {
			value = cells[i]
		} else {
			value = ast.NewNull(ast.PointSpan(end))
		}
		entries = append(entries, ast.ObjectEntry{Key: col, KeySpan: value.Span, Value: value})
	}
	return ast.NewObject(entries, rowSpan)
}
