package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/lacantine/menu-catalog/auth"
	"github.com/lacantine/menu-catalog/cms"
	"github.com/lacantine/menu-catalog/internal/config"
	"github.com/lacantine/menu-catalog/internal/db"
	"github.com/lacantine/menu-catalog/internal/logging"
)

var (
	migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")
	seedOnlyFlag    = flag.Bool("seed-only", false, "Run DB seed and exit")
)

func main() {
	flag.Parse()

	// Load environment variables from .env file
	_ = godotenv.Load()

	cfg := config.Load()
	logger := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Environment: cfg.App.Env}, os.Stdout)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	dbConn, err := db.Connect(cfg.Database, logger)
	if err != nil {
		return err
	}
	defer db.Close(dbConn)

	seedOpts := db.SeedOptions{
		AdminEmail:    cfg.App.AdminEmail,
		AdminPassword: cfg.App.AdminPassword,
		SampleMenu:    cfg.App.Seed,
	}

	if *migrateOnlyFlag {
		if err := db.Migrate(dbConn, cfg.App.Migrations, cfg.Database.MigrationURL()); err != nil {
			return err
		}
		logger.Info("migrations completed")
		return nil
	}

	if *seedOnlyFlag {
		seedOpts.SampleMenu = true
		if err := db.Seed(context.Background(), dbConn, seedOpts); err != nil {
			return err
		}
		logger.Info("seeding completed")
		return nil
	}

	if err := db.Migrate(dbConn, cfg.App.Migrations, cfg.Database.MigrationURL()); err != nil {
		return err
	}
	if err := db.Seed(context.Background(), dbConn, seedOpts); err != nil {
		return err
	}

	var content cms.Source = cms.NewStatic(cms.DefaultHome())
	if cfg.CMS.BaseURL != "" {
		content = cms.NewClient(cms.Config{
			BaseURL: cfg.CMS.BaseURL,
			Token:   cfg.CMS.Token,
			Dataset: cfg.CMS.Dataset,
			Timeout: cfg.CMS.Timeout,
		})
	}

	sessions := auth.NewSessions(cfg.Session.Secret, cfg.Session.TTL, cfg.Session.Secure)
	app := NewApp(dbConn, sessions, content, logger)

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      app,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", srv.Addr, "cms", cfg.CMS.BaseURL != "")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serverErr:
		return err
	case sig := <-quit:
		logger.Info("shutdown signal received", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return err
	}
	logger.Info("server stopped gracefully")
	return nil
}
