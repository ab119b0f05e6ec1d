// Showcase browses a catalog of graphics projects by tag filters and title
// search.
//
// The serve command exposes the filter state and the ordered results over
// HTTP, query runs the pipeline once and prints the result, and browse opens
// an interactive terminal browser.
//
// Usage:
//
//	# Start the API server
//	showcase serve
//
//	# One-shot query
//	showcase query --filter api=Vulkan --title viewer
//
//	# Configure via environment
//	SERVER_HTTP_PORT=8080 CATALOG_PATH=./catalog.yaml showcase serve
package main

import (
	"os"

	"github.com/spf13/cobra"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

var (
	// configPath overrides ~/.config/showcase/config.yaml.
	configPath string
	// catalogPath overrides catalog.path from the config.
	catalogPath string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "showcase",
		Short: "Browse a project catalog by tags and title",
		Long: `showcase filters a catalog of projects by tag dimensions and title text,
groups the matches into priority buckets and orders them by name.`,
		Version:      version,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.config/showcase/config.yaml)")
	cmd.PersistentFlags().StringVar(&catalogPath, "catalog", "", "catalog file (overrides catalog.path)")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newQueryCmd())
	cmd.AddCommand(newBrowseCmd())
	cmd.AddCommand(newVersionCmd())
	return cmd
}
