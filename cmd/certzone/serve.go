package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ougirez/certzone/internal/api"
	"github.com/ougirez/certzone/internal/pkg/logger"
	"github.com/ougirez/certzone/internal/service/jobs"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the ingestion job runner behind an HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), root)
		},
	}
}

func runServe(ctx context.Context, root *rootOptions) error {
	cfg := root.cfg
	if cfg.SchemaPath == "" {
		return errors.New("ingest.schema_path is required to serve")
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	runner := jobs.NewRunner(a.handler, jobs.Options{
		Schema:     cfg.SchemaPath,
		LogDir:     cfg.LogDir,
		Workers:    cfg.Workers,
		ArchiveLog: true,
	}, prometheus.DefaultRegisterer)
	// воркеры доживают до Close, а не до сигнала
	runner.Start(context.WithoutCancel(ctx))

	svc := api.NewAPIService(runner, prometheus.DefaultGatherer)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		logger.Infof(egCtx, "listening on %s", cfg.HTTPAddr)
		return svc.Serve(cfg.HTTPAddr)
	})
	eg.Go(func() error {
		<-egCtx.Done()
		logger.Info(ctx, "shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := svc.Shutdown(shutdownCtx)
		return errors.Join(err, runner.Close())
	})

	return eg.Wait()
}
