package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/tally"
	"github.com/aretw0/tally/internal/config"
	"github.com/aretw0/tally/internal/logging"
	"github.com/aretw0/tally/internal/presentation/tui"
	"github.com/aretw0/tally/pkg/adapters/redis"
	"github.com/prometheus/client_golang/prometheus"
	backend "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the transition server",
	Long:  `Starts the tally engine in server mode, exposing the transition and account APIs over HTTP.`,
	Run: func(cmd *cobra.Command, args []string) {
		configPath, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(configPath)
		if err != nil {
			fmt.Printf("Error loading config: %v\n", err)
			os.Exit(1)
		}
		if listen, _ := cmd.Flags().GetString("listen"); listen != "" {
			cfg.Listen = listen
		}

		logger := logging.New(logging.ParseLevel(cfg.LogLevel))
		registry := prometheus.NewRegistry()

		opts := []tally.Option{
			tally.WithLogger(logger),
			tally.WithMetricsRegistry(registry),
			tally.WithRentPerByte(cfg.Engine.RentPerByte),
			tally.WithLockTTL(cfg.Engine.LockTTL),
		}
		if cfg.Store.Backend == config.BackendRedis {
			client := backend.NewClient(&backend.Options{
				Addr:     cfg.Store.Redis.Addr,
				Password: cfg.Store.Redis.Password,
				DB:       cfg.Store.Redis.DB,
			})
			opts = append(opts,
				tally.WithStore(redis.NewFromClient(client, redis.WithPrefix(cfg.Store.Redis.Prefix))),
				tally.WithDistributedLocker(redis.NewLocker(client, cfg.Store.Redis.Prefix)),
			)
		}

		engine := tally.New(opts...)

		srv := &http.Server{
			Addr:    cfg.Listen,
			Handler: engine.Handler(),
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			tui.PrintBanner(tally.Version)
			logger.Info("server listening", "addr", srv.Addr, "backend", cfg.Store.Backend)
			serverErrors <- srv.ListenAndServe()
		}()

		// Channel to listen for interrupt or terminate signals.
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		// Blocking main and waiting for shutdown.
		select {
		case err := <-serverErrors:
			logger.Error("server error", "err", err)
			os.Exit(1)

		case sig := <-shutdown:
			logger.Info("starting shutdown", "signal", sig.String())

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), cfg.Shutdown)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				logger.Error("graceful shutdown did not complete", "timeout", cfg.Shutdown, "err", err)
				if err := srv.Close(); err != nil {
					logger.Error("killing server", "err", err)
				}
			}
			logger.Info("server stopped")
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("listen", "l", "", "Listen address (overrides config)")
}
