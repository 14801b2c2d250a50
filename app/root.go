// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"

	"github.com/TigerArchive/TigerArchive/internal/config"
	"github.com/TigerArchive/TigerArchive/internal/logger"
)

var (
	configPath string // directory holding main.toml

	cfg config.Config
)

var rootCmd = &cobra.Command{
	Use:   "tigerarchive",
	Short: "TigerArchive is the members portal of the alumni archive",
	Long: `TigerArchive serves the alumni archive: yearbooks, photo galleries and
history posts, each visible according to the member's tier.`,
	Args:          cobra.OnlyValidArgs,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() { //nolint: gochecknoinits
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "./etc/", "directory of main.toml")
}

// loadConfig reads the configuration and initializes logging.
func loadConfig(_ *cobra.Command, _ []string) error {
	var err error

	if cfg, err = config.ReadConfig(configPath); err != nil {
		return err
	}

	return logger.Init(cfg.Log)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
