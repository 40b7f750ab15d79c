package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"

	apiserver "github.com/openreal2sim/review-dashboard/internal/api_server"
	"github.com/openreal2sim/review-dashboard/internal/config"
	"github.com/openreal2sim/review-dashboard/internal/objectstore"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the review api",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, done := setup()
		defer done()

		zap.S().Info("Starting API service")
		defer zap.S().Info("API service stopped")

		store := openStore(cfg)
		defer store.Close()

		if err := store.InitialMigration(cmd.Context()); err != nil {
			zap.S().Fatalw("running initial migration", "error", err)
		}

		objects, err := newObjectStore(cfg)
		if err != nil {
			zap.S().Fatalw("initializing object store", "error", err)
		}

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGHUP, syscall.SIGTERM, syscall.SIGQUIT)
		defer cancel()

		go func() {
			defer cancel()
			listener, err := newListener(cfg.Service.Address)
			if err != nil {
				zap.S().Fatalw("creating listener", "error", err)
			}

			server := apiserver.New(cfg, store, objects, listener)
			if err := server.Run(ctx); err != nil {
				zap.S().Fatalw("Error running server", "error", err)
			}
		}()

		go func() {
			defer cancel()
			listener, err := newListener(cfg.Service.MetricsAddress)
			if err != nil {
				zap.S().Fatalw("creating listener", "error", err)
			}

			metricsServer := apiserver.NewMetricServer(cfg.Service.MetricsAddress, listener)
			if err := metricsServer.Run(ctx); err != nil {
				zap.S().Fatalw("Error running metrics server", "error", err)
			}
		}()

		<-ctx.Done()
		return nil
	},
}

func newObjectStore(cfg *config.Config) (objectstore.ObjectStore, error) {
	return objectstore.NewMinioStore(
		objectstore.WithEndpoint(cfg.S3.Endpoint),
		objectstore.WithBucket(cfg.S3.Bucket),
		objectstore.WithAccessKey(cfg.S3.AccessKey),
		objectstore.WithSecretKey(cfg.S3.SecretKey),
		objectstore.WithRegion(cfg.S3.Region),
		objectstore.WithSSL(cfg.S3.UseSSL),
	)
}

func newListener(address string) (net.Listener, error) {
	if address == "" {
		address = "localhost:0"
	}
	return net.Listen("tcp", address)
}
