// Package flags provides shared flag accessors for CLI commands.
// This package exists to avoid import cycles between the root command
// and noun subpackages (backup).
package flags

import (
	"github.com/thoreinstein/settler/internal/cli"
	"github.com/thoreinstein/settler/internal/config"
)

var (
	location cli.Location
	cfg      *config.Config
)

// Location returns the settings location given by --dir and --file.
func Location() cli.Location {
	return location
}

// SetLocation records the values of --dir and --file.
func SetLocation(l cli.Location) {
	location = l
}

// Config returns the loaded tool configuration, or the defaults when none
// has been loaded.
func Config() *config.Config {
	if cfg == nil {
		return config.Default()
	}
	return cfg
}

// SetConfig records the loaded tool configuration.
func SetConfig(c *config.Config) {
	cfg = c
}
