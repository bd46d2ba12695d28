package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/toonlang/toon-ls/logger"
	"github.com/toonlang/toon-ls/server"
)

// ServeCmd starts the language server.
var ServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the TOON language server",
	Long: `Launch the LSP server. By default it speaks the protocol over
stdio, the transport editors spawn it with. With --listen it serves each
WebSocket connection on /lsp as an independent client session.`,
	RunE: runServe,
}

var serveListen string

func init() {
	ServeCmd.Flags().StringVar(&serveListen, "listen", "", "Serve LSP over WebSocket on this address (host:port) instead of stdio")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if serveListen != "" {
		cfg.Server.Listen = serveListen
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// Editors close stdio to stop us; the signals cover the WebSocket case.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Infow("Shutting down", "signal", sig)
		cancel()
	}()

	srv := server.New(ctx, cfg, logger.Logger)
	return srv.Run(ctx)
}
