package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/toonlang/toon-ls/cmd/toon-ls/commands"
	"github.com/toonlang/toon-ls/config"
	"github.com/toonlang/toon-ls/logger"
)

var rootCmd = &cobra.Command{
	Use:   "toon-ls",
	Short: "toon-ls - Language server and toolkit for TOON documents",
	Long: `toon-ls - Language intelligence for TOON, a compact line-oriented
JSON-equivalent notation.

Available commands:
  serve   - Start the LSP server (stdio by default, --listen for WebSocket)
  check   - Parse documents strictly and report diagnostics
  fmt     - Reformat documents to canonical style
  convert - Convert between TOON, JSON, and YAML
  version - Show version information

Examples:
  toon-ls serve                       # LSP over stdio
  toon-ls serve --listen :7117       # LSP over WebSocket
  toon-ls check config.toon          # diagnostics, non-zero exit on errors
  toon-ls fmt -w config.toon         # reformat in place
  toon-ls convert --to json a.toon   # TOON to JSON on stdout`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		jsonLogs, _ := cmd.Flags().GetBool("log-json")
		if err := logger.Initialize(jsonLogs || cfg.Log.JSON); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().Bool("log-json", false, "Emit logs as JSON instead of console format")
	rootCmd.PersistentFlags().String("config", "", "Path to a toon-ls config file")

	rootCmd.AddCommand(commands.ServeCmd)
	rootCmd.AddCommand(commands.CheckCmd)
	rootCmd.AddCommand(commands.FmtCmd)
	rootCmd.AddCommand(commands.ConvertCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	defer logger.Cleanup()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
