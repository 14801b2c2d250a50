package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/TigerArchive/TigerArchive/internal/daemon"
	"github.com/TigerArchive/TigerArchive/internal/importer"
)

func init() { //nolint: gochecknoinits
	importCmd.Flags().StringVar(&categoriesFile, "categories", "", "categories JSON export, overrides Import.CategoriesFile")
	importCmd.Flags().StringVar(&postsFile, "posts", "", "posts JSON export, overrides Import.PostsFile")
	importCmd.Flags().BoolVar(&forceImport, "force", false, "import again although a previous run completed")

	rootCmd.AddCommand(importCmd)
}

var (
	categoriesFile string
	postsFile      string
	forceImport    bool

	importCmd = &cobra.Command{
		Use:     "import",
		Short:   "Import the legacy WordPress export into the content store",
		PreRunE: loadConfig,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if categoriesFile == "" {
				categoriesFile = cfg.Import.CategoriesFile
			}

			if postsFile == "" {
				postsFile = cfg.Import.PostsFile
			}

			bundle, err := importer.LoadFiles(categoriesFile, postsFile)
			if err != nil {
				return err
			}

			s, err := daemon.OpenStore(&cfg)
			if err != nil {
				return err
			}

			res, err := importer.New(s).Run(cmd.Context(), bundle, nil, forceImport)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(),
				"categories: %d imported, %d skipped, %d failed\nposts: %d imported, %d skipped, %d failed\nunknown category links: %d\n",
				res.Categories.Imported, res.Categories.Skipped, res.Categories.Errors,
				res.Posts.Imported, res.Posts.Skipped, res.Posts.Errors,
				res.UnknownCategories,
			)

			return err
		},
	}
)
