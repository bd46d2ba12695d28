package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	protocol "github.com/tliron/glsp/protocol_3_16"
	glspserver "github.com/tliron/glsp/server"
	"go.uber.org/zap"

	"github.com/toonlang/toon-ls/async"
	"github.com/toonlang/toon-ls/config"
	"github.com/toonlang/toon-ls/errors"
	"github.com/toonlang/toon-ls/lsp"
)

// Server owns the shared document store and worker pool and serves the LSP
// protocol over stdio or WebSocket. Each WebSocket connection gets its own
// handler and store; the stdio transport serves exactly one client.
type Server struct {
	cfg    *config.Config
	logger *zap.SugaredLogger
	pool   *async.Pool
}

// New creates a server from the loaded configuration.
func New(ctx context.Context, cfg *config.Config, logger *zap.SugaredLogger) *Server {
	pool := async.NewPool(ctx, cfg.Pool, logger)
	return &Server{
		cfg:    cfg,
		logger: logger.Named("server"),
		pool:   pool,
	}
}

// Run starts the pool and serves until the transport closes. An empty
// listen address selects stdio.
func (s *Server) Run(ctx context.Context) error {
	s.pool.Start()
	defer s.pool.Stop()

	if s.cfg.Server.Listen == "" {
		return s.runStdio(ctx)
	}
	return s.runWebSocket(ctx)
}

func (s *Server) runStdio(ctx context.Context) error {
	s.logger.Infow("Serving LSP over stdio")

	glspServer := glspserver.NewServer(s.protocolHandler(ctx), serverName, false)
	if err := glspServer.RunStdio(); err != nil {
		return errors.Wrap(err, "stdio transport")
	}
	return nil
}

// upgrader accepts any origin: the WebSocket transport is meant for local
// editor frontends, not the open internet.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func (s *Server) runWebSocket(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/lsp", func(w http.ResponseWriter, r *http.Request) {
		s.handleWebSocket(ctx, w, r)
	})

	httpServer := &http.Server{
		Addr:              s.cfg.Server.Listen,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	s.logger.Infow("Serving LSP over WebSocket", "listen", s.cfg.Server.Listen, "path", "/lsp")

	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return errors.Wrap(err, "websocket transport")
}

func (s *Server) handleWebSocket(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	s.logger.Infow("LSP WebSocket connection request", "remote", r.RemoteAddr)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Errorw("Failed to upgrade WebSocket", "error", err)
		return
	}

	glspServer := glspserver.NewServer(s.protocolHandler(ctx), serverName, false)

	// Blocks until the connection closes.
	glspServer.ServeWebSocket(conn)

	s.logger.Infow("LSP WebSocket connection closed", "remote", r.RemoteAddr)
}

// protocolHandler builds a fresh handler and document store for one client
// session and wires it into the GLSP method table.
func (s *Server) protocolHandler(ctx context.Context) *protocol.Handler {
	handler := NewHandler(
		ctx,
		lsp.NewDocumentStore(),
		lsp.NewScheduler(s.pool),
		s.cfg.Limits.ToLimits(),
		lsp.FormatOptions{
			IndentWidth: s.cfg.Format.IndentWidth,
			UseTabs:     s.cfg.Format.UseTabs,
		},
		s.logger,
	)

	return &protocol.Handler{
		Initialize:                      handler.Initialize,
		Initialized:                     handler.Initialized,
		Shutdown:                        handler.Shutdown,
		SetTrace:                        handler.SetTrace,
		TextDocumentDidOpen:             handler.TextDocumentDidOpen,
		TextDocumentDidChange:           handler.TextDocumentDidChange,
		TextDocumentDidClose:            handler.TextDocumentDidClose,
		TextDocumentCompletion:          handler.TextDocumentCompletion,
		TextDocumentHover:               handler.TextDocumentHover,
		TextDocumentDefinition:          handler.TextDocumentDefinition,
		TextDocumentReferences:          handler.TextDocumentReferences,
		TextDocumentDocumentSymbol:      handler.TextDocumentDocumentSymbol,
		TextDocumentFormatting:          handler.TextDocumentFormatting,
		TextDocumentPrepareRename:       handler.TextDocumentPrepareRename,
		TextDocumentRename:              handler.TextDocumentRename,
		TextDocumentSemanticTokensFull:  handler.TextDocumentSemanticTokensFull,
		TextDocumentSemanticTokensRange: handler.TextDocumentSemanticTokensRange,
	}
}
