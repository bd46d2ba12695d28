package commands

import (
	"github.com/spf13/cobra"

	"github.com/toonlang/toon-ls/config"
)

// loadConfig resolves the configuration for a command run, honoring the
// global --config flag when set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}
