// Package config loads toon-ls configuration from files and TOON_*
// environment variables via Viper.
package config

import (
	"github.com/toonlang/toon-ls/async"
	"github.com/toonlang/toon-ls/parser"
)

// Config is the full configuration surface.
type Config struct {
	Server ServerConfig     `mapstructure:"server"`
	Limits LimitsConfig     `mapstructure:"limits"`
	Format FormatConfig     `mapstructure:"format"`
	Pool   async.PoolConfig `mapstructure:"pool"`
	Log    LogConfig        `mapstructure:"log"`
}

// ServerConfig selects the LSP transport.
type ServerConfig struct {
	// Listen is a host:port for the WebSocket transport. Empty means stdio.
	Listen string `mapstructure:"listen"`
}

// LimitsConfig overrides the parser's resource ceilings. Zero fields fall
// back to the parser defaults.
type LimitsConfig struct {
	MaxDepth         int `mapstructure:"max_depth"`
	MaxDocumentBytes int `mapstructure:"max_document_bytes"`
	MaxArrayItems    int `mapstructure:"max_array_items"`
	MaxObjectEntries int `mapstructure:"max_object_entries"`
}

// ToLimits converts the override block into parser limits.
func (l LimitsConfig) ToLimits() parser.Limits {
	return parser.Limits{
		MaxDepth:         l.MaxDepth,
		MaxDocumentBytes: l.MaxDocumentBytes,
		MaxArrayItems:    l.MaxArrayItems,
		MaxObjectEntries: l.MaxObjectEntries,
	}
}

// FormatConfig controls the formatter's indentation.
type FormatConfig struct {
	IndentWidth int  `mapstructure:"indent_width"`
	UseTabs     bool `mapstructure:"use_tabs"`
}

// LogConfig controls log output.
type LogConfig struct {
	// JSON switches from the console encoder to structured JSON output.
	JSON bool `mapstructure:"json"`
}
