package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	backend "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/airband-io/airband"
	"github.com/airband-io/airband/internal/config"
	"github.com/airband-io/airband/internal/logging"
	"github.com/airband-io/airband/internal/metrics"
	"github.com/airband-io/airband/pkg/adapters/file"
	httpAdapter "github.com/airband-io/airband/pkg/adapters/http"
	"github.com/airband-io/airband/pkg/adapters/memory"
	redisAdapter "github.com/airband-io/airband/pkg/adapters/redis"
	"github.com/airband-io/airband/pkg/ports"
	"github.com/airband-io/airband/pkg/scoring"
	"github.com/airband-io/airband/pkg/session"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP practice server",
	Long:  `Serves scenarios over a JSON API. Sessions persist in Redis when AIRBAND_REDIS_ADDR is set, otherwise in memory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("dir") {
			cfg.ScenarioDir, _ = cmd.Flags().GetString("dir")
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Addr = addr
		}

		logger := buildLogger(cfg)

		source, err := file.New(cfg.ScenarioDir)
		if err != nil {
			return fmt.Errorf("load scenarios from %q: %w", cfg.ScenarioDir, err)
		}

		var (
			store  ports.SessionStore
			locker ports.DistributedLocker
		)
		if cfg.RedisAddr != "" {
			client := backend.NewClient(&backend.Options{
				Addr:     cfg.RedisAddr,
				Password: cfg.RedisPassword,
			})
			if err := client.Ping(cmd.Context()).Err(); err != nil {
				return fmt.Errorf("redis ping %q: %w", cfg.RedisAddr, err)
			}
			store = redisAdapter.NewFromClient(client)
			locker = redisAdapter.NewLocker(client, "")
			logger.Info("session store: redis", "addr", cfg.RedisAddr)
		} else {
			store = memory.NewStore()
			logger.Info("session store: memory")
		}

		managerOpts := []session.Option{session.WithLogger(logger)}
		if locker != nil {
			managerOpts = append(managerOpts, session.WithLocker(locker))
		}
		sessions := session.NewManager(store, managerOpts...)

		registry := prometheus.NewRegistry()
		collector := metrics.NewCollector(registry)

		server := httpAdapter.NewServer(source, source, sessions, &scoring.SimpleValidator{},
			httpAdapter.WithLogger(logger),
			httpAdapter.WithMetricsRegistry(registry),
			httpAdapter.WithEngineOptions(
				airband.WithLifecycleHooks(collector.Hooks()),
			),
		)

		srv := &http.Server{
			Addr:    cfg.Addr,
			Handler: server.Handler(),
		}

		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("airband server listening", "addr", srv.Addr, "scenarios", cfg.ScenarioDir)
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			return fmt.Errorf("server error: %w", err)

		case sig := <-shutdown:
			logger.Info("shutdown started", "signal", sig.String())

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				logger.Error("graceful shutdown incomplete, forcing close", "err", err)
				if err := srv.Close(); err != nil {
					return fmt.Errorf("close server: %w", err)
				}
			}
			logger.Info("airband server stopped")
			return nil
		}
	},
}

func buildLogger(cfg *config.Server) *slog.Logger {
	level := slog.LevelInfo
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	if cfg.LogJSON {
		return logging.NewJSON(level)
	}
	return logging.New(level)
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Listen address (overrides AIRBAND_ADDR)")
}
