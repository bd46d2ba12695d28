package commands

import (
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/toonlang/toon-ls/errors"
	"github.com/toonlang/toon-ls/logger"
	"github.com/toonlang/toon-ls/parser"
)

// CheckCmd parses documents and reports diagnostics.
var CheckCmd = &cobra.Command{
	Use:   "check <file>...",
	Short: "Parse TOON documents and report diagnostics",
	Long: `Parse each file with error recovery and print every diagnostic with
its position. Exits non-zero when any file has an error-severity diagnostic;
warnings alone pass.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	limits := cfg.Limits.ToLimits()

	failed := false
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return errors.Wrapf(err, "reading %s", path)
		}
		if !checkFile(path, string(data), limits) {
			failed = true
		}
	}

	if failed {
		// The diagnostics above are the report; flush the logger before
		// the non-zero exit, since os.Exit skips main's deferred cleanup.
		logger.Cleanup()
		os.Exit(1)
	}
	return nil
}

// checkFile prints every diagnostic for one document and reports whether the
// document is free of error-severity diagnostics.
func checkFile(path, text string, limits parser.Limits) bool {
	_, parseErrors := parser.ParseWithErrors(text, limits)
	if len(parseErrors) == 0 {
		pterm.Success.Printfln("%s: ok", path)
		return true
	}

	ok := true
	for _, perr := range parseErrors {
		line := perr.Span.Start.Line + 1
		col := perr.Span.Start.Column + 1
		if perr.Severity() == parser.SeverityWarning {
			pterm.Warning.Printfln("%s:%d:%d: %s", path, line, col, perr.Message())
		} else {
			pterm.Error.Printfln("%s:%d:%d: %s", path, line, col, perr.Message())
			ok = false
		}
	}
	return ok
}
