package lsp

import (
	"github.com/toonlang/toon-ls/ast"
	"github.com/toonlang/toon-ls/parser"
)

// DiagnosticSeverity mirrors the protocol's two levels this service emits.
type DiagnosticSeverity uint8

const (
	DiagnosticError DiagnosticSeverity = iota
	DiagnosticWarning
)

// Diagnostic is one reported problem. The slice returned for a document is a
// full replacement per version; there is no incremental patching.
type Diagnostic struct {
	Span     ast.Span
	Severity DiagnosticSeverity
	Message  string
	Source   string
}

// Diagnostics maps a snapshot's parse errors one-to-one into diagnostics.
func Diagnostics(snap *Snapshot) []Diagnostic {
	out := make([]Diagnostic, 0, len(snap.Errors))
	for _, perr := range snap.Errors {
		severity := DiagnosticError
		if perr.Severity() == parser.SeverityWarning {
			severity = DiagnosticWarning
		}
		out = append(out, Diagnostic{
			Span:     perr.Span,
			Severity: severity,
			Message:  perr.Message(),
			Source:   "toon",
		})
	}
	return out
}
