// Package cli implements the pinfold command-line interface.
//
// This package provides commands for parsing pip requirement manifests,
// linting them for conflicts and marker problems, verifying them against
// PyPI, exporting include graphs, and running the HTTP API server.
//
// # Commands
//
//   - parse: expand a manifest (following -r/-c includes) and list requirements
//   - lint: check a manifest for conflicts, duplicates, and marker defects
//   - verify: check declared packages and versions against PyPI
//   - graph: export the include graph as DOT, SVG, PNG, or JSON
//   - serve: run the HTTP API
//   - cache: manage the response cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging via the
// charmbracelet/log library.
package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/pinfold/pinfold/pkg/buildinfo"
	"github.com/pinfold/pinfold/pkg/cache"
)

// appName is the application name used for directories and display.
const appName = "pinfold"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config *Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           level,
		}),
		Config: DefaultConfig(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "pinfold",
		Short:        "pinfold parses and lints pip requirement manifests",
		Long:         `pinfold is a toolkit for pip-style requirement manifests. It parses requirement files (following -r/-c includes), lints them for conflicting version ranges and broken environment-marker splits, verifies declared packages against PyPI, and renders the include graph.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(configPath(cmd))
			if err != nil {
				return err
			}
			c.Config = cfg
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().String("config", "", "config file (default: .pinfold.toml in the working directory)")

	root.AddCommand(c.parseCommand())
	root.AddCommand(c.lintCommand())
	root.AddCommand(c.verifyCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())

	return root
}

func configPath(cmd *cobra.Command) string {
	path, _ := cmd.Flags().GetString("config")
	return path
}

// newCache opens the configured cache backend, falling back to the file
// cache in the default directory.
func (c *CLI) newCache(cmd *cobra.Command, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	location := c.Config.Cache.Location
	if location == "" {
		dir, err := cacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
		location = dir
	}
	return cache.Open(cmd.Context(), location)
}

// cacheDir returns the cache directory using XDG standard (~/.cache/pinfold/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
