package main

import (
	"github.com/openreal2sim/review-dashboard/internal/config"
	"github.com/openreal2sim/review-dashboard/internal/store"
	"github.com/openreal2sim/review-dashboard/pkg/log"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:   "review-api",
	Short: "review-api serves the reconstruction review dashboard.",
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(importCmd)
}

// setup reads the configuration and installs the global logger. The returned func restores the previous logger.
func setup() (*config.Config, func()) {
	cfg, err := config.New()
	if err != nil {
		zap.S().Fatalw("reading configuration", "error", err)
	}

	logger := log.InitLog(log.ParseLevel(cfg.Service.LogLevel))
	undo := zap.ReplaceGlobals(logger)

	zap.S().Infof("Using config: %s", cfg)

	return cfg, func() {
		_ = logger.Sync()
		undo()
	}
}

func openStore(cfg *config.Config) store.Store {
	zap.S().Info("Initializing data store")
	db, err := store.InitDB(cfg)
	if err != nil {
		zap.S().Fatalw("initializing data store", "error", err)
	}
	return store.NewStore(db)
}
