package lsp

import (
	"github.com/toonlang/toon-ls/ast"
	"github.com/toonlang/toon-ls/parser"
)

// SemanticTokenTypes is the legend advertised in the server capabilities.
// Token type values below index into it.
var SemanticTokenTypes = []string{
	"property", // object keys
	"string",
	"number",
	"boolean",
	"null",
	"comment",
	"operator", // punctuation: colons, commas, dashes, pipes, brackets
}

const (
	tokenKey uint32 = iota
	tokenString
	tokenNumber
	tokenBoolean
	tokenNull
	tokenComment
	tokenOperator
)

// SemanticToken is one classified source token before delta encoding.
type SemanticToken struct {
	Line   uint32
	Column uint32
	Length uint32 // UTF-16 units
	Type   uint32
}

// SemanticTokensFull classifies the whole document.
func SemanticTokensFull(snap *Snapshot) []uint32 {
	return EncodeSemanticTokens(classifyTokens(snap, nil))
}

// SemanticTokensRange classifies only tokens whose span intersects the
// requested range.
func SemanticTokensRange(snap *Snapshot, span ast.Span) []uint32 {
	return EncodeSemanticTokens(classifyTokens(snap, &span))
}

// classifyTokens rescans the snapshot text and assigns a semantic type to
// each visible token. Keys are distinguished from unquoted string values by
// lookahead: a key is followed by a colon or an array header bracket, or
// appears inside a tabular column list.
func classifyTokens(snap *Snapshot, filter *ast.Span) []SemanticToken {
	tokens := parser.NewScanner(snap.Text).ScanAll()
	var out []SemanticToken

	inColumns := false
	for i, tok := range tokens {
		if filter != nil && !spansIntersect(tok.Span, *filter) {
			continue
		}

		var typ uint32
		switch tok.Kind {
		case parser.TokenKey, parser.TokenString:
			if inColumns || isKeyAt(tokens, i) {
				typ = tokenKey
			} else {
				typ = tokenString
			}
		case parser.TokenNumber:
			typ = tokenNumber
		case parser.TokenBool:
			typ = tokenBoolean
		case parser.TokenNull:
			typ = tokenNull
		case parser.TokenComment:
			typ = tokenComment
		case parser.TokenColon, parser.TokenComma, parser.TokenDash, parser.TokenPipe,
			parser.TokenBracketOpen, parser.TokenBracketClose:
			typ = tokenOperator
		case parser.TokenBraceOpen:
			inColumns = true
			typ = tokenOperator
		case parser.TokenBraceClose:
			inColumns = false
			typ = tokenOperator
		default:
			if tok.Kind == parser.TokenNewline {
				inColumns = false
			}
			continue
		}

		out = append(out, SemanticToken{
			Line:   tok.Span.Start.Line,
			Column: tok.Span.Start.Column,
			Length: tok.Span.End.Column - tok.Span.Start.Column,
			Type:   typ,
		})
	}
	return out
}

// isKeyAt reports whether the token at index is in key position: the next
// significant token on the line is a colon or the bracket of an array
// header.
func isKeyAt(tokens []parser.Token, index int) bool {
	for i := index + 1; i < len(tokens); i++ {
		switch tokens[i].Kind {
		case parser.TokenWhitespace:
			continue
		case parser.TokenColon, parser.TokenBracketOpen:
			return true
		default:
			return false
		}
	}
	return false
}

func spansIntersect(a, b ast.Span) bool {
	return a.Start.Offset < b.End.Offset && b.Start.Offset < a.End.Offset
}

// EncodeSemanticTokens converts classified tokens into the protocol's
// relative encoding: five integers per token, with line and start column
// expressed as deltas from the previous token.
func EncodeSemanticTokens(tokens []SemanticToken) []uint32 {
	data := make([]uint32, 0, len(tokens)*5)
	var prevLine, prevCol uint32

	for _, tok := range tokens {
		deltaLine := tok.Line - prevLine
		deltaCol := tok.Column
		if deltaLine == 0 {
			deltaCol = tok.Column - prevCol
		}
		data = append(data, deltaLine, deltaCol, tok.Length, tok.Type, 0)
		prevLine = tok.Line
		prevCol = tok.Column
	}
	return data
}
