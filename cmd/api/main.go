package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/BruksfildServices01/business-scheduler/internal/audit"
	"github.com/BruksfildServices01/business-scheduler/internal/config"
	dbpkg "github.com/BruksfildServices01/business-scheduler/internal/db"
	"github.com/BruksfildServices01/business-scheduler/internal/infra/lock"
	"github.com/BruksfildServices01/business-scheduler/internal/routes"
	"github.com/BruksfildServices01/business-scheduler/internal/timezone"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "scheduler",
		Short: "Business scheduling API",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply schema migrations and the appointment overlap constraint",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := bootstrap()
			if err != nil {
				return err
			}

			db, err := dbpkg.NewDB(cfg)
			if err != nil {
				logger.Error().Err(err).Msg("failed to connect to database")
				return err
			}

			if err := dbpkg.Migrate(db, logger); err != nil {
				logger.Error().Err(err).Msg("migration failed")
				return err
			}
			logger.Info().Msg("migrations applied")
			return nil
		},
	}
}

// bootstrap loads the config and builds the root logger from it.
func bootstrap() (*config.Config, zerolog.Logger, error) {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Error().Err(err).Msg("failed to load config")
		return nil, logger, err
	}

	if cfg.IsDev() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		logger = logger.Level(level)
	}

	if err := timezone.SetFallback(cfg.DefaultTimezone); err != nil {
		logger.Error().Err(err).Msg("invalid DEFAULT_TIMEZONE")
		return nil, logger, err
	}

	return cfg, logger, nil
}

func runServer() error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}

	// Database
	db, err := dbpkg.NewDB(cfg)
	if err != nil {
		logger.Error().Err(err).Msg("failed to connect to database")
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	logger.Info().Msg("connected to database")

	// Booking lock
	var locker lock.Locker = lock.Noop{}
	if cfg.RedisURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		client, err := lock.Connect(ctx, cfg.RedisURL)
		cancel()
		if err != nil {
			// The database check is authoritative; run without the lock.
			logger.Warn().Err(err).Msg("redis unavailable, booking lock disabled")
		} else {
			defer client.Close()
			locker = lock.New(client, cfg.BookingLockTTL, logger)
			logger.Info().Msg("booking lock enabled")
		}
	}

	// Audit
	dispatcher := audit.NewDispatcher(audit.New(db), logger)

	// HTTP
	if !cfg.IsDev() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	if err := routes.RegisterRoutes(r, routes.Deps{
		DB:     db,
		Config: cfg,
		Logger: logger,
		Locker: locker,
		Audit:  dispatcher,
	}); err != nil {
		logger.Error().Err(err).Msg("failed to register routes")
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	serverErr := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
	case err := <-serverErr:
		logger.Error().Err(err).Msg("server error")
		dispatcher.Close()
		return err
	}

	logger.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
	}

	// Flush pending audit events after the last request is done.
	dispatcher.Close()
	logger.Info().Msg("server stopped")
	return nil
}
