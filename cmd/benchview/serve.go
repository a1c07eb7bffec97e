package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/abdulachik/benchview/internal/config"
	"github.com/abdulachik/benchview/internal/objectstore"
	"github.com/abdulachik/benchview/internal/server"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const (
	shutdownTimeout = 10 * time.Second
	pingTimeout     = 5 * time.Second
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the results viewer",
	Long: `Serve the results viewer page and the /data endpoint, which fetches
a result file from the configured S3 bucket, classifies it and relays
it as JSON.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default LISTEN_ADDR)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if serveAddr != "" {
		cfg.ListenAddr = serveAddr
	}
	if err := cfg.ValidateForServe(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	srvCfg := server.Config{}
	var store *objectstore.Store
	if err := cfg.ValidateForStore(); err != nil {
		slog.Error("object store is incompletely configured", "error", err)
	}
	if cfg.S3BucketName != "" {
		store, err = objectstore.New(objectstore.Config{
			Bucket:      cfg.S3BucketName,
			AccessKey:   cfg.S3AccessKey,
			SecretKey:   cfg.S3SecretKey,
			EndpointURL: cfg.S3EndpointURL,
			Region:      cfg.S3Region,
		})
		if err != nil {
			return fmt.Errorf("create object store: %w", err)
		}
		srvCfg.Store = store
	}

	srv, err := server.New(srvCfg)
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}

	if store != nil {
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		err := srv.CheckStore(pingCtx, store)
		cancel()
		if err != nil {
			slog.Error("object store check failed", "bucket", store.Bucket(), "error", err)
		} else {
			slog.Info("object store reachable", "bucket", store.Bucket(), "endpoint", cfg.S3EndpointURL)
		}
	}

	httpSrv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("starting results viewer", "addr", cfg.ListenAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
