// Package server wires the TOON language service to LSP clients over stdio
// or WebSocket using GLSP.
package server

import (
	"context"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"go.uber.org/zap"

	"github.com/toonlang/toon-ls/ast"
	"github.com/toonlang/toon-ls/errors"
	"github.com/toonlang/toon-ls/internal/util"
	"github.com/toonlang/toon-ls/lsp"
	"github.com/toonlang/toon-ls/parser"
	"github.com/toonlang/toon-ls/version"
)

const (
	// maxOpenDocuments limits document store size to prevent memory exhaustion.
	// A malicious or buggy client could open unlimited documents - this caps the risk.
	maxOpenDocuments = 100

	serverName = "TOON Language Server"
)

// Handler implements the LSP protocol handlers. All parsing runs on the
// worker pool; the handler goroutine submits and awaits, so a change to one
// document is fully committed before any later request observes it.
type Handler struct {
	ctx    context.Context
	store  *lsp.DocumentStore
	pool   *lsp.Scheduler
	limits parser.Limits
	format lsp.FormatOptions
	logger *zap.SugaredLogger
}

// NewHandler creates a handler backed by the given store and scheduler.
func NewHandler(ctx context.Context, store *lsp.DocumentStore, pool *lsp.Scheduler, limits parser.Limits, format lsp.FormatOptions, logger *zap.SugaredLogger) *Handler {
	return &Handler{
		ctx:    ctx,
		store:  store,
		pool:   pool,
		limits: limits,
		format: format,
		logger: logger.Named("lsp"),
	}
}

// Initialize handles the LSP initialize request and advertises capabilities.
func (h *Handler) Initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	h.logger.Infow("LSP client initializing", "client", params.ClientInfo)

	syncKind := protocol.TextDocumentSyncKindFull
	capabilities := protocol.ServerCapabilities{
		TextDocumentSync: &protocol.TextDocumentSyncOptions{
			OpenClose: util.Ptr(true),
			Change:    &syncKind,
		},
		CompletionProvider: &protocol.CompletionOptions{
			TriggerCharacters: []string{" "},
		},
		HoverProvider:              &protocol.HoverOptions{},
		DefinitionProvider:         true,
		ReferencesProvider:         true,
		DocumentSymbolProvider:     true,
		DocumentFormattingProvider: true,
		RenameProvider: &protocol.RenameOptions{
			PrepareProvider: util.Ptr(true),
		},
		SemanticTokensProvider: &protocol.SemanticTokensOptions{
			Legend: protocol.SemanticTokensLegend{
				TokenTypes:     lsp.SemanticTokenTypes,
				TokenModifiers: []string{},
			},
			Full:  true,
			Range: true,
		},
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    serverName,
			Version: util.Ptr(version.Version),
		},
	}, nil
}

// Initialized is called after the client receives InitializeResult.
func (h *Handler) Initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	h.logger.Infow("LSP client initialized")
	return nil
}

// Shutdown handles the LSP shutdown request.
func (h *Handler) Shutdown(ctx *glsp.Context) error {
	h.logger.Infow("LSP client shutting down")
	return nil
}

// SetTrace acknowledges trace level changes; the server does not emit
// $/logTrace notifications.
func (h *Handler) SetTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	return nil
}

// TextDocumentDidOpen registers the document and publishes its diagnostics.
func (h *Handler) TextDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	uri := string(params.TextDocument.URI)

	if _, _, open := h.store.Text(uri); !open {
		if h.store.Len() >= maxOpenDocuments {
			h.logger.Warnw("Document store limit reached, rejecting new document",
				"uri", uri,
				"current_count", h.store.Len(),
				"max_allowed", maxOpenDocuments,
			)
			return errors.Newf("document store limit reached (%d documents open)", maxOpenDocuments)
		}
	}

	h.store.Open(uri, params.TextDocument.Version, params.TextDocument.Text)
	h.logger.Debugw("Document opened", "uri", uri, "length", len(params.TextDocument.Text))

	return h.reparse(ctx, uri, params.TextDocument.Version, params.TextDocument.Text)
}

// TextDocumentDidChange applies full-sync changes and publishes fresh
// diagnostics before returning, so requests that follow the notification
// always see the new revision.
func (h *Handler) TextDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := string(params.TextDocument.URI)

	var text string
	applied := false
	for _, change := range params.ContentChanges {
		if whole, ok := change.(protocol.TextDocumentContentChangeEventWhole); ok {
			text = whole.Text
			applied = true
		}
	}
	if !applied {
		return nil
	}

	if !h.store.Update(uri, params.TextDocument.Version, text) {
		h.logger.Debugw("Stale change dropped", "uri", uri, "version", params.TextDocument.Version)
		return nil
	}

	return h.reparse(ctx, uri, params.TextDocument.Version, text)
}

// TextDocumentDidClose drops the document and clears its diagnostics.
func (h *Handler) TextDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := string(params.TextDocument.URI)
	h.store.Close(uri)
	h.logger.Debugw("Document closed", "uri", uri)

	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         params.TextDocument.URI,
		Diagnostics: []protocol.Diagnostic{},
	})
	return nil
}

// reparse builds a snapshot on the worker pool, commits it, and pushes the
// resulting diagnostics. Stale commits (a newer version already landed) skip
// the push.
func (h *Handler) reparse(ctx *glsp.Context, uri string, version int32, text string) error {
	result, err := h.pool.Parse(h.ctx, uri, version, text, h.limits)
	if err != nil {
		return errors.Wrapf(err, "reparsing %s", uri)
	}

	snap := result
	if !h.store.Commit(snap) {
		return nil
	}

	diags := lsp.Diagnostics(snap)
	ver := protocol.UInteger(snap.Version)
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         protocol.DocumentUri(uri),
		Version:     &ver,
		Diagnostics: protocolDiagnostics(diags),
	})
	return nil
}

// TextDocumentCompletion offers value literals or sibling keys at the cursor.
func (h *Handler) TextDocumentCompletion(ctx *glsp.Context, params *protocol.CompletionParams) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Errorw("Panic in completion handler", "panic", r, "uri", params.TextDocument.URI)
			result = []protocol.CompletionItem{}
			err = nil
		}
	}()

	snap, offset, ok := h.snapshotAt(string(params.TextDocument.URI), params.Position)
	if !ok {
		return []protocol.CompletionItem{}, nil
	}

	items := lsp.CompletionAt(snap, offset)
	out := make([]protocol.CompletionItem, len(items))
	for i, item := range items {
		kind := protocol.CompletionItemKindValue
		if item.Kind == lsp.CompletionKey {
			kind = protocol.CompletionItemKindField
		}
		out[i] = protocol.CompletionItem{
			Label:  item.Label,
			Kind:   &kind,
			Detail: stringPtrOrNil(item.Detail),
		}
	}
	return out, nil
}

// TextDocumentHover renders the key path and type of the node under the
// cursor as markdown.
func (h *Handler) TextDocumentHover(ctx *glsp.Context, params *protocol.HoverParams) (result *protocol.Hover, err error) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Errorw("Panic in hover handler", "panic", r, "uri", params.TextDocument.URI)
			result = nil
			err = nil
		}
	}()

	snap, offset, ok := h.snapshotAt(string(params.TextDocument.URI), params.Position)
	if !ok {
		return nil, nil
	}

	hover := lsp.HoverAt(snap, offset)
	if hover == nil {
		return nil, nil
	}

	rng := spanToRange(hover.Span)
	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: hover.Contents,
		},
		Range: &rng,
	}, nil
}

// TextDocumentDefinition resolves a key to its first occurrence in the
// document.
func (h *Handler) TextDocumentDefinition(ctx *glsp.Context, params *protocol.DefinitionParams) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Errorw("Panic in definition handler", "panic", r, "uri", params.TextDocument.URI)
			result = nil
			err = nil
		}
	}()

	snap, offset, ok := h.snapshotAt(string(params.TextDocument.URI), params.Position)
	if !ok {
		return nil, nil
	}

	span := lsp.Definition(snap, offset)
	if span == nil {
		return nil, nil
	}
	return protocol.Location{
		URI:   params.TextDocument.URI,
		Range: spanToRange(*span),
	}, nil
}

// TextDocumentReferences lists every occurrence of the key under the cursor.
func (h *Handler) TextDocumentReferences(ctx *glsp.Context, params *protocol.ReferenceParams) (result []protocol.Location, err error) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Errorw("Panic in references handler", "panic", r, "uri", params.TextDocument.URI)
			result = nil
			err = nil
		}
	}()

	snap, offset, ok := h.snapshotAt(string(params.TextDocument.URI), params.Position)
	if !ok {
		return nil, nil
	}

	spans := lsp.References(snap, offset, params.Context.IncludeDeclaration)
	locations := make([]protocol.Location, len(spans))
	for i, span := range spans {
		locations[i] = protocol.Location{
			URI:   params.TextDocument.URI,
			Range: spanToRange(span),
		}
	}
	return locations, nil
}

// TextDocumentDocumentSymbol produces the hierarchical document outline.
func (h *Handler) TextDocumentDocumentSymbol(ctx *glsp.Context, params *protocol.DocumentSymbolParams) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Errorw("Panic in documentSymbol handler", "panic", r, "uri", params.TextDocument.URI)
			result = []protocol.DocumentSymbol{}
			err = nil
		}
	}()

	snap := h.store.Snapshot(string(params.TextDocument.URI))
	if snap == nil {
		return []protocol.DocumentSymbol{}, nil
	}
	return protocolSymbols(lsp.DocumentSymbols(snap)), nil
}

// TextDocumentFormatting reformats the whole document on the worker pool and
// returns a single edit replacing the full text.
func (h *Handler) TextDocumentFormatting(ctx *glsp.Context, params *protocol.DocumentFormattingParams) (result []protocol.TextEdit, err error) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Errorw("Panic in formatting handler", "panic", r, "uri", params.TextDocument.URI)
			result = nil
			err = nil
		}
	}()

	uri := string(params.TextDocument.URI)
	snap := h.store.Snapshot(uri)
	if snap == nil {
		return nil, nil
	}

	// Formatting a broken tree would silently drop the unparsed regions.
	for _, perr := range snap.Errors {
		if perr.Severity() == parser.SeverityError {
			h.logger.Debugw("Formatting skipped, document has errors", "uri", uri)
			return nil, nil
		}
	}

	formatted, err := h.pool.Format(h.ctx, snap, h.format)
	if err != nil {
		return nil, errors.Wrapf(err, "formatting %s", uri)
	}
	if formatted == snap.Text {
		return []protocol.TextEdit{}, nil
	}

	end := snap.Index.PositionFor(len(snap.Text))
	return []protocol.TextEdit{{
		Range: protocol.Range{
			Start: protocol.Position{Line: 0, Character: 0},
			End:   protocol.Position{Line: end.Line, Character: end.Column},
		},
		NewText: formatted,
	}}, nil
}

// TextDocumentPrepareRename validates that the cursor sits on an object key
// and returns the key's range with its text as the placeholder.
func (h *Handler) TextDocumentPrepareRename(ctx *glsp.Context, params *protocol.PrepareRenameParams) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Errorw("Panic in prepareRename handler", "panic", r, "uri", params.TextDocument.URI)
			result = nil
			err = nil
		}
	}()

	snap, offset, ok := h.snapshotAt(string(params.TextDocument.URI), params.Position)
	if !ok {
		return nil, nil
	}

	span, placeholder, ok := lsp.PrepareRename(snap, offset)
	if !ok {
		return nil, nil
	}
	return struct {
		Range       protocol.Range `json:"range"`
		Placeholder string         `json:"placeholder"`
	}{
		Range:       spanToRange(span),
		Placeholder: placeholder,
	}, nil
}

// TextDocumentRename renames every occurrence of the key under the cursor.
func (h *Handler) TextDocumentRename(ctx *glsp.Context, params *protocol.RenameParams) (result *protocol.WorkspaceEdit, err error) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Errorw("Panic in rename handler", "panic", r, "uri", params.TextDocument.URI)
			result = nil
			err = errors.Newf("rename failed: %v", r)
		}
	}()

	snap, offset, ok := h.snapshotAt(string(params.TextDocument.URI), params.Position)
	if !ok {
		return nil, errors.ErrDocumentNotOpen
	}

	edits, err := lsp.Rename(snap, offset, params.NewName)
	if err != nil {
		return nil, err
	}

	protocolEdits := make([]protocol.TextEdit, len(edits))
	for i, edit := range edits {
		protocolEdits[i] = protocol.TextEdit{
			Range:   spanToRange(edit.Span),
			NewText: edit.NewText,
		}
	}
	return &protocol.WorkspaceEdit{
		Changes: map[protocol.DocumentUri][]protocol.TextEdit{
			params.TextDocument.URI: protocolEdits,
		},
	}, nil
}

// TextDocumentSemanticTokensFull classifies every token in the document.
func (h *Handler) TextDocumentSemanticTokensFull(ctx *glsp.Context, params *protocol.SemanticTokensParams) (result *protocol.SemanticTokens, err error) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Errorw("Panic in semanticTokens handler", "panic", r, "uri", params.TextDocument.URI)
			result = &protocol.SemanticTokens{Data: []uint32{}}
			err = nil
		}
	}()

	snap := h.store.Snapshot(string(params.TextDocument.URI))
	if snap == nil {
		return &protocol.SemanticTokens{Data: []uint32{}}, nil
	}
	return &protocol.SemanticTokens{Data: lsp.SemanticTokensFull(snap)}, nil
}

// TextDocumentSemanticTokensRange classifies tokens intersecting the range.
func (h *Handler) TextDocumentSemanticTokensRange(ctx *glsp.Context, params *protocol.SemanticTokensRangeParams) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Errorw("Panic in semanticTokens/range handler", "panic", r, "uri", params.TextDocument.URI)
			result = &protocol.SemanticTokens{Data: []uint32{}}
			err = nil
		}
	}()

	snap := h.store.Snapshot(string(params.TextDocument.URI))
	if snap == nil {
		return &protocol.SemanticTokens{Data: []uint32{}}, nil
	}

	span := rangeToSpan(snap, params.Range)
	return &protocol.SemanticTokens{Data: lsp.SemanticTokensRange(snap, span)}, nil
}

// snapshotAt resolves a document snapshot and converts the protocol position
// to a byte offset in that snapshot's text.
func (h *Handler) snapshotAt(uri string, pos protocol.Position) (*lsp.Snapshot, uint32, bool) {
	snap := h.store.Snapshot(uri)
	if snap == nil {
		return nil, 0, false
	}
	offset := snap.Index.OffsetFor(pos.Line, pos.Character)
	return snap, uint32(offset), true
}

func spanToRange(span ast.Span) protocol.Range {
	return protocol.Range{
		Start: protocol.Position{Line: span.Start.Line, Character: span.Start.Column},
		End:   protocol.Position{Line: span.End.Line, Character: span.End.Column},
	}
}

func rangeToSpan(snap *lsp.Snapshot, rng protocol.Range) ast.Span {
	start := snap.Index.OffsetFor(rng.Start.Line, rng.Start.Character)
	end := snap.Index.OffsetFor(rng.End.Line, rng.End.Character)
	return ast.Span{
		Start: snap.Index.PositionFor(start),
		End:   snap.Index.PositionFor(end),
	}
}

func protocolDiagnostics(diags []lsp.Diagnostic) []protocol.Diagnostic {
	out := make([]protocol.Diagnostic, len(diags))
	for i, d := range diags {
		severity := protocol.DiagnosticSeverityError
		if d.Severity == lsp.DiagnosticWarning {
			severity = protocol.DiagnosticSeverityWarning
		}
		out[i] = protocol.Diagnostic{
			Range:    spanToRange(d.Span),
			Severity: &severity,
			Source:   stringPtrOrNil(d.Source),
			Message:  d.Message,
		}
	}
	return out
}

func protocolSymbols(symbols []lsp.Symbol) []protocol.DocumentSymbol {
	out := make([]protocol.DocumentSymbol, len(symbols))
	for i, sym := range symbols {
		out[i] = protocol.DocumentSymbol{
			Name:           sym.Name,
			Detail:         stringPtrOrNil(sym.Detail),
			Kind:           protocol.SymbolKind(sym.Kind),
			Range:          spanToRange(sym.Span),
			SelectionRange: spanToRange(sym.SelectionSpan),
			Children:       protocolSymbols(sym.Children),
		}
	}
	return out
}

func stringPtrOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
