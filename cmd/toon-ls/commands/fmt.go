package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/toonlang/toon-ls/errors"
	"github.com/toonlang/toon-ls/lsp"
	"github.com/toonlang/toon-ls/parser"
)

// FmtCmd reformats documents to canonical style.
var FmtCmd = &cobra.Command{
	Use:   "fmt <file>...",
	Short: "Reformat TOON documents",
	Long: `Parse each file and print it back in canonical formatting: normalized
indentation, accurate array counts, minimal quoting. Files with parse errors
are left untouched. With -w the result is written back in place.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFmt,
}

var fmtWrite bool

func init() {
	FmtCmd.Flags().BoolVarP(&fmtWrite, "write", "w", false, "Write the result back to the file instead of stdout")
}

func runFmt(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	limits := cfg.Limits.ToLimits()
	opts := lsp.FormatOptions{
		IndentWidth: cfg.Format.IndentWidth,
		UseTabs:     cfg.Format.UseTabs,
	}

	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return errors.Wrapf(err, "reading %s", path)
		}

		root, parseErrors := parser.ParseWithErrors(string(data), limits)
		for _, perr := range parseErrors {
			if perr.Severity() == parser.SeverityError {
				return errors.Newf("%s:%d:%d: %s", path, perr.Span.Start.Line+1, perr.Span.Start.Column+1, perr.Message())
			}
		}

		formatted := lsp.Format(root, opts)
		if fmtWrite {
			if err := os.WriteFile(path, []byte(formatted), 0o644); err != nil {
				return errors.Wrapf(err, "writing %s", path)
			}
		} else {
			fmt.Print(formatted)
		}
	}
	return nil
}
