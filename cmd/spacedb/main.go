// Command spacedb builds and queries multi-resolution spatial indexes from
// the command line.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/spacedb/spacedb/internal/obslog"
)

var (
	// Version is set at build time via -ldflags.
	Version = "dev"

	configPath string
	logger     *obslog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "spacedb",
	Short: "Build and query multi-resolution N-dimensional spatial indexes",
	Long: `spacedb builds an in-memory, read-optimized spatial index over a set
of (position, value) points and answers point, identifier, and shape
queries against it at a chosen resolution.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a build config file (YAML)")
	rootCmd.AddCommand(buildCmd, queryCmd, infoCmd)
}

func main() {
	logger = obslog.NewDevelopment()
	defer logger.Sync()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
