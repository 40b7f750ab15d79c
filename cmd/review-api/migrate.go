package main

import (
	"github.com/openreal2sim/review-dashboard/internal/store"
	"github.com/openreal2sim/review-dashboard/pkg/migrations"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Migrate the db",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, done := setup()
		defer done()
		defer zap.S().Info("Db migrated")

		zap.S().Info("Initializing data store")
		db, err := store.InitDB(cfg)
		if err != nil {
			zap.S().Fatalw("initializing data store", "error", err)
		}

		s := store.NewStore(db)
		defer s.Close()

		if err := migrations.MigrateStore(db, cfg); err != nil {
			zap.S().Fatalw("running migrations", "error", err)
		}

		return nil
	},
}
