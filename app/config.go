package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/TigerArchive/TigerArchive/internal/config"
)

func init() { //nolint: gochecknoinits
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as JSON, secrets masked",
	PreRunE: func(_ *cobra.Command, _ []string) error {
		var err error

		cfg, err = config.ReadConfig(configPath)

		return err
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		out, err := config.DumpConfigJSON(&cfg)
		if err != nil {
			return err
		}

		_, err = fmt.Fprint(cmd.OutOrStdout(), out)

		return err
	},
}
