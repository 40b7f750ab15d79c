package main

import (
	"fmt"
	"os"

	"github.com/openreal2sim/review-dashboard/internal/importer"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	importDir    string
	importDryRun bool
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Seed the metadata store from a <week>/<author>/<name>/metadata.yaml data tree",
	RunE: func(cmd *cobra.Command, args []string) error {
		if importDir == "" {
			return fmt.Errorf("--dir is required")
		}
		if info, err := os.Stat(importDir); err != nil || !info.IsDir() {
			return fmt.Errorf("data root %q is not a directory", importDir)
		}

		cfg, done := setup()
		defer done()

		store := openStore(cfg)
		defer store.Close()

		if err := store.InitialMigration(cmd.Context()); err != nil {
			zap.S().Fatalw("running initial migration", "error", err)
		}

		result, err := importer.NewImporter(store, importDryRun).Import(cmd.Context(), os.DirFS(importDir))
		fmt.Fprintf(cmd.OutOrStdout(), "Done. Examined: %d, Imported: %d, Skipped: %d, Stored: %d\n", result.Examined, result.Imported, result.Skipped, result.Stored)
		return err
	},
}

func init() {
	importCmd.Flags().StringVarP(&importDir, "dir", "d", "", "Root of the reconstruction data tree")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Only print what would be imported")
}
