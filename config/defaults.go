package config

import (
	"github.com/spf13/viper"

	"github.com/toonlang/toon-ls/async"
	"github.com/toonlang/toon-ls/parser"
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	// Server defaults: stdio transport
	v.SetDefault("server.listen", "")

	// Parser resource ceilings
	v.SetDefault("limits.max_depth", parser.DefaultMaxDepth)
	v.SetDefault("limits.max_document_bytes", parser.DefaultMaxDocumentBytes)
	v.SetDefault("limits.max_array_items", parser.DefaultMaxArrayItems)
	v.SetDefault("limits.max_object_entries", parser.DefaultMaxObjectEntries)

	// Formatting defaults
	v.SetDefault("format.indent_width", 2)
	v.SetDefault("format.use_tabs", false)

	// Worker pool defaults
	poolDefaults := async.DefaultPoolConfig()
	v.SetDefault("pool.workers", poolDefaults.Workers)
	v.SetDefault("pool.queue_size", poolDefaults.QueueSize)

	// Logging defaults
	v.SetDefault("log.json", false)
}
