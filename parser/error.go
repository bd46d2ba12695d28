package parser

import (
	"fmt"

	"github.com/toonlang/toon-ls/ast"
)

// ErrorKind classifies parse errors so tooling can react per kind.
type ErrorKind uint8

const (
	ErrUnexpectedToken ErrorKind = iota
	ErrExpectedColon
	ErrExpectedValue
	ErrExpectedKey
	ErrInvalidNumber
	ErrUnterminatedString
	ErrInvalidIndent
	ErrBracketMismatch
	ErrArrayCountMismatch
	ErrDuplicateKey

	// Resource-limit kinds. ErrDocumentTooLarge is the only fatal one;
	// the others truncate or substitute placeholders and parsing goes on.
	ErrMaxDepthExceeded
	ErrDocumentTooLarge
	ErrTooManyArrayItems
	ErrTooManyObjectEntries
)

func (k ErrorKind) String() string {
	switch k {
	case ErrUnexpectedToken:
		return "unexpected token"
	case ErrExpectedColon:
		return "expected colon"
	case ErrExpectedValue:
		return "expected value"
	case ErrExpectedKey:
		return "expected key"
	case ErrInvalidNumber:
		return "invalid number"
	case ErrUnterminatedString:
		return "unterminated string"
	case ErrInvalidIndent:
		return "invalid indentation"
	case ErrBracketMismatch:
		return "bracket mismatch"
	case ErrArrayCountMismatch:
		return "array count mismatch"
	case ErrDuplicateKey:
		return "duplicate key"
	case ErrMaxDepthExceeded:
		return "maximum nesting depth exceeded"
	case ErrDocumentTooLarge:
		return "document too large"
	case ErrTooManyArrayItems:
		return "too many array items"
	case ErrTooManyObjectEntries:
		return "too many object entries"
	default:
		return "parse error"
	}
}

// Severity of a parse error as surfaced to editors.
type Severity uint8

const (
	SeverityError Severity = iota
	SeverityWarning
)

// ParseError is a structured parse failure tied to a source span. It is data
// handed to diagnostics rather than a wrapped stack error; the Language
// Service mirrors it one-to-one into protocol diagnostics.
type ParseError struct {
	Kind    ErrorKind
	Span    ast.Span
	Context string
}

// NewParseError creates a parse error at the given span.
func NewParseError(kind ErrorKind, span ast.Span) *ParseError {
	return &ParseError{Kind: kind, Span: span}
}

// WithContext attaches a detail message to the error.
func (e *ParseError) WithContext(context string) *ParseError {
	e.Context = context
	return e
}

// Severity maps the kind to a diagnostic severity: duplicate keys are
// warnings, everything else is an error.
func (e *ParseError) Severity() Severity {
	if e.Kind == ErrDuplicateKey {
		return SeverityWarning
	}
	return SeverityError
}

// Message renders the human-readable diagnostic text.
func (e *ParseError) Message() string {
	if e.Context != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Context)
	}
	return e.Kind.String()
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s at line %d, column %d",
		e.Message(), e.Span.Start.Line+1, e.Span.Start.Column+1)
}
