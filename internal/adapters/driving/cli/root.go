// Package cli wires the cobra command tree for clharvest.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/clharvest/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	verbose    bool
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "clharvest",
	Short: "Incrementally harvest OpenCL sources from GitHub",
	Long: `clharvest walks GitHub's repository search for OpenCL-adjacent query
terms, and persists every tracked source file into a local SQLite
database with its #include directives recursively flattened.

Repositories and files that have not changed since the previous run are
detected by freshness token and skipped without re-downloading.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging to stderr")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a TOML config file")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
