package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/toonlang/toon-ls/ast"
	"github.com/toonlang/toon-ls/convert"
	"github.com/toonlang/toon-ls/errors"
	"github.com/toonlang/toon-ls/lsp"
	"github.com/toonlang/toon-ls/parser"
)

// ConvertCmd translates between TOON, JSON, and YAML.
var ConvertCmd = &cobra.Command{
	Use:   "convert <file>",
	Short: "Convert between TOON, JSON, and YAML",
	Long: `Convert a document between formats, preserving key order. The input
format is inferred from the file extension (.json means JSON, anything else
TOON) unless --from overrides it. Output goes to stdout.

Examples:
  toon-ls convert --to json config.toon
  toon-ls convert --to yaml config.toon
  toon-ls convert --to toon data.json`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

var (
	convertTo   string
	convertFrom string
)

func init() {
	ConvertCmd.Flags().StringVar(&convertTo, "to", "json", "Target format: json, yaml, or toon")
	ConvertCmd.Flags().StringVar(&convertFrom, "from", "", "Source format: json or toon (default: inferred from extension)")
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "reading %s", path)
	}

	from := convertFrom
	if from == "" {
		if strings.HasSuffix(path, ".json") {
			from = "json"
		} else {
			from = "toon"
		}
	}

	root, err := parseInput(from, path, data, cfg.Limits.ToLimits())
	if err != nil {
		return err
	}

	switch convertTo {
	case "json":
		out, err := convert.ToJSON(root, "  ")
		if err != nil {
			return err
		}
		fmt.Print(out)
	case "yaml":
		out, err := convert.ToYAML(root)
		if err != nil {
			return err
		}
		fmt.Print(out)
	case "toon":
		opts := lsp.FormatOptions{
			IndentWidth: cfg.Format.IndentWidth,
			UseTabs:     cfg.Format.UseTabs,
		}
		fmt.Print(lsp.Format(root, opts))
	default:
		return errors.Newf("unknown target format %q (want json, yaml, or toon)", convertTo)
	}
	return nil
}

func parseInput(from, path string, data []byte, limits parser.Limits) (*ast.Node, error) {
	switch from {
	case "json":
		root, err := convert.FromJSON(data)
		if err != nil {
			return nil, errors.Wrapf(err, "parsing %s as JSON", path)
		}
		return root, nil
	case "toon":
		root, err := parser.Parse(string(data), limits)
		if err != nil {
			return nil, errors.Wrapf(err, "parsing %s", path)
		}
		return root, nil
	default:
		return nil, errors.Newf("unknown source format %q (want json or toon)", from)
	}
}
