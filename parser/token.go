package parser

import (
	"strings"
	"unicode/utf8"

	"github.com/toonlang/toon-ls/ast"
)

// TokenKind classifies scanner output.
type TokenKind uint8

const (
	TokenEOF TokenKind = iota
	TokenNewline
	TokenWhitespace
	TokenComment
	TokenColon
	TokenComma
	TokenDash
	TokenPipe
	TokenBracketOpen
	TokenBracketClose
	TokenBraceOpen
	TokenBraceClose
	TokenString
	TokenNumber
	TokenBool
	TokenNull
	TokenKey
	TokenBadChar
)

func (k TokenKind) String() string {
	switch k {
	case TokenEOF:
		return "EOF"
	case TokenNewline:
		return "newline"
	case TokenWhitespace:
		return "whitespace"
	case TokenComment:
		return "comment"
	case TokenColon:
		return ":"
	case TokenComma:
		return ","
	case TokenDash:
		return "-"
	case TokenPipe:
		return "|"
	case TokenBracketOpen:
		return "["
	case TokenBracketClose:
		return "]"
	case TokenBraceOpen:
		return "{"
	case TokenBraceClose:
		return "}"
	case TokenString:
		return "string"
	case TokenNumber:
		return "number"
	case TokenBool:
		return "boolean"
	case TokenNull:
		return "null"
	case TokenKey:
		return "key"
	case TokenBadChar:
		return "bad character"
	default:
		return "unknown"
	}
}

// Token is one lexical unit with its source span. Text is the raw source
// slice. Value carries the decoded content for strings (escapes resolved,
// quotes stripped) and the identifier text for keys; for all other kinds it
// equals Text.
type Token struct {
	Kind TokenKind
	Span ast.Span
	Text string
	Value string
	// Unterminated marks a string whose closing quote was missing before
	// the end of the line or input.
	Unterminated bool
}

// Scanner converts source text into a token stream. It never fails:
// unrecognized input becomes bad-character tokens and the parser decides
// recovery. Restartable only from position zero.
type Scanner struct {
	src    string
	pos    int
	line   uint32
	column uint32
	done   bool
}

// NewScanner creates a scanner over the given source.
func NewScanner(src string) *Scanner {
	return &Scanner{src: src}
}

// utf16Len returns the number of UTF-16 code units the rune occupies.
// Characters outside the basic multilingual plane take two units.
func utf16Len(r rune) uint32 {
	if r > 0xFFFF {
		return 2
	}
	return 1
}

func (s *Scanner) position() ast.Position {
	return ast.Position{Line: s.line, Column: s.column, Offset: uint32(s.pos)}
}

// advance consumes one rune and updates line/column/offset accounting.
func (s *Scanner) advance() rune {
	r, size := utf8.DecodeRuneInString(s.src[s.pos:])
	s.pos += size
	if r == '\n' {
		s.line++
		s.column = 0
	} else if r != '\r' {
		s.column += utf16Len(r)
	}
	return r
}

func (s *Scanner) peek() (rune, bool) {
	if s.pos >= len(s.src) {
		return 0, false
	}
	r, _ := utf8.DecodeRuneInString(s.src[s.pos:])
	return r, true
}

func (s *Scanner) peekAt(byteAhead int) (rune, bool) {
	if s.pos+byteAhead >= len(s.src) {
		return 0, false
	}
	r, _ := utf8.DecodeRuneInString(s.src[s.pos+byteAhead:])
	return r, true
}

func (s *Scanner) make(kind TokenKind, start ast.Position) Token {
	end := s.position()
	text := s.src[start.Offset:end.Offset]
	return Token{Kind: kind, Span: ast.NewSpan(start, end), Text: text, Value: text}
}

// ScanAll tokenizes the whole source, returning the tokens including the
// trailing EOF token.
func (s *Scanner) ScanAll() []Token {
	var tokens []Token
	for {
		tok := s.Next()
		tokens = append(tokens, tok)
		if tok.Kind == TokenEOF {
			return tokens
		}
	}
}

// Next scans and returns the next token.
func (s *Scanner) Next() Token {
	start := s.position()

	r, ok := s.peek()
	if !ok {
		return s.make(TokenEOF, start)
	}

	if s.isNumberStart() {
		return s.scanNumber(start)
	}

	switch r {
	case '\n':
		s.advance()
		return s.make(TokenNewline, start)
	case '\r':
		// CRLF is a single newline token; a lone CR joins a whitespace run.
		if next, ok := s.peekAt(1); ok && next == '\n' {
			s.advance()
			s.advance()
			return s.make(TokenNewline, start)
		}
		return s.scanWhitespace(start)
	case ' ', '\t':
		return s.scanWhitespace(start)
	case '#':
		return s.scanComment(start)
	case '"', '\'':
		return s.scanString(start, r)
	case ':':
		s.advance()
		return s.make(TokenColon, start)
	case ',':
		s.advance()
		return s.make(TokenComma, start)
	case '-':
		s.advance()
		return s.make(TokenDash, start)
	case '|':
		s.advance()
		return s.make(TokenPipe, start)
	case '[':
		s.advance()
		return s.make(TokenBracketOpen, start)
	case ']':
		s.advance()
		return s.make(TokenBracketClose, start)
	case '{':
		s.advance()
		return s.make(TokenBraceOpen, start)
	case '}':
		s.advance()
		return s.make(TokenBraceClose, start)
	}

	if isIdentStart(r) {
		return s.scanIdentifier(start)
	}

	s.advance()
	return s.make(TokenBadChar, start)
}

func isIdentStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || (r >= '0' && r <= '9')
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func (s *Scanner) isNumberStart() bool {
	r, ok := s.peek()
	if !ok {
		return false
	}
	if isDigit(r) {
		return true
	}
	if r == '-' {
		next, ok := s.peekAt(1)
		return ok && isDigit(next)
	}
	return false
}

func (s *Scanner) scanWhitespace(start ast.Position) Token {
	for {
		r, ok := s.peek()
		if !ok {
			break
		}
		if r == ' ' || r == '\t' {
			s.advance()
			continue
		}
		// A CR that is not part of CRLF collapses into the run.
		if r == '\r' {
			if next, ok := s.peekAt(1); !ok || next != '\n' {
				s.advance()
				continue
			}
		}
		break
	}
	return s.make(TokenWhitespace, start)
}

func (s *Scanner) scanComment(start ast.Position) Token {
	for {
		r, ok := s.peek()
		if !ok || r == '\n' {
			break
		}
		if r == '\r' {
			if next, ok := s.peekAt(1); ok && next == '\n' {
				break
			}
		}
		s.advance()
	}
	return s.make(TokenComment, start)
}

// scanString consumes a quoted string. A backslash escapes the following
// character; \n, \r and \t decode to their control characters, anything else
// decodes to itself. An unescaped newline or end of input before the closing
// quote ends the token early with Unterminated set.
func (s *Scanner) scanString(start ast.Position, quote rune) Token {
	s.advance() // opening quote

	var value strings.Builder
	terminated := false

	for {
		r, ok := s.peek()
		if !ok || r == '\n' || r == '\r' {
			break
		}
		if r == quote {
			s.advance()
			terminated = true
			break
		}
		if r == '\\' {
			s.advance()
			esc, ok := s.peek()
			if !ok || esc == '\n' {
				break
			}
			s.advance()
			switch esc {
			case 'n':
				value.WriteByte('\n')
			case 'r':
				value.WriteByte('\r')
			case 't':
				value.WriteByte('\t')
			default:
				value.WriteRune(esc)
			}
			continue
		}
		s.advance()
		value.WriteRune(r)
	}

	tok := s.make(TokenString, start)
	tok.Value = value.String()
	tok.Unterminated = !terminated
	return tok
}

// scanNumber commits to the longest number-like run: optional sign, digit
// run, optional fraction, optional exponent. Validity (leading zeros and the
// like) is the parser's concern.
func (s *Scanner) scanNumber(start ast.Position) Token {
	if r, ok := s.peek(); ok && r == '-' {
		s.advance()
	}
	for {
		r, ok := s.peek()
		if !ok || !isDigit(r) {
			break
		}
		s.advance()
	}
	if r, ok := s.peek(); ok && r == '.' {
		if next, ok := s.peekAt(1); ok && isDigit(next) {
			s.advance()
			for {
				r, ok := s.peek()
				if !ok || !isDigit(r) {
					break
				}
				s.advance()
			}
		}
	}
	if r, ok := s.peek(); ok && (r == 'e' || r == 'E') {
		if s.exponentFollows() {
			s.advance()
			if sign, ok := s.peek(); ok && (sign == '+' || sign == '-') {
				s.advance()
			}
			for {
				r, ok := s.peek()
				if !ok || !isDigit(r) {
					break
				}
				s.advance()
			}
		}
	}
	return s.make(TokenNumber, start)
}

// exponentFollows checks that the e/E at the cursor begins a real exponent
// (digits, optionally signed) rather than an identifier continuation.
func (s *Scanner) exponentFollows() bool {
	next, ok := s.peekAt(1)
	if !ok {
		return false
	}
	if isDigit(next) {
		return true
	}
	if next == '+' || next == '-' {
		after, ok := s.peekAt(2)
		return ok && isDigit(after)
	}
	return false
}

func (s *Scanner) scanIdentifier(start ast.Position) Token {
	for {
		r, ok := s.peek()
		if !ok || !isIdentPart(r) {
			break
		}
		s.advance()
	}
	tok := s.make(TokenKey, start)
	switch tok.Text {
	case "true", "false":
		tok.Kind = TokenBool
	case "null":
		tok.Kind = TokenNull
	}
	return tok
}
