package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/yukikurage/crm-timesheet-api/internal/config"
	"github.com/yukikurage/crm-timesheet-api/internal/database"
	"github.com/yukikurage/crm-timesheet-api/internal/logger"
	"github.com/yukikurage/crm-timesheet-api/internal/router"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "crm-timesheet",
		Short: "Role-based task and timesheet tracking API",
		Long: `CRM Timesheet API serves task management, timesheet logging and
dashboard summaries behind bearer-token authentication.

Configuration is read from the environment and an optional .env file.`,
		SilenceUsage: true,
		RunE:         runServe,
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP server (default)",
			RunE:  runServe,
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Apply database migrations and exit",
			RunE:  runMigrate,
		},
		&cobra.Command{
			Use:   "seed-admin",
			Short: "Create the bootstrap administrator if missing",
			RunE:  runSeedAdmin,
		},
	)

	return root
}

// bootstrap loads configuration, builds the logger and opens the database.
func bootstrap() (*config.Config, *zap.Logger, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogDev)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init logger: %w", err)
	}

	db, err := database.Connect(cfg, log)
	if err != nil {
		_ = log.Sync()
		return nil, nil, nil, fmt.Errorf("connect database: %w", err)
	}

	return cfg, log, db, nil
}

func closeDB(db *gorm.DB, log *zap.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Warn("close database failed", zap.Error(err))
	}
}

func seedAdmin(cfg *config.Config, db *gorm.DB, log *zap.Logger) error {
	created, err := database.SeedAdmin(db, database.AdminSeed{
		Username: cfg.AdminUsername,
		Email:    cfg.AdminEmail,
		Password: cfg.AdminPassword,
	}, log)
	if err != nil {
		return err
	}
	if created {
		log.Warn("bootstrap admin created with a temporary password; change it after first login",
			zap.String("email", cfg.AdminEmail))
	}
	return nil
}

func runMigrate(cmd *cobra.Command, args []string) error {
	_, log, db, err := bootstrap()
	if err != nil {
		return err
	}
	defer log.Sync()
	defer closeDB(db, log)

	if err := database.Migrate(db, log); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	log.Info("migrations applied")
	return nil
}

func runSeedAdmin(cmd *cobra.Command, args []string) error {
	cfg, log, db, err := bootstrap()
	if err != nil {
		return err
	}
	defer log.Sync()
	defer closeDB(db, log)

	if err := database.Migrate(db, log); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return seedAdmin(cfg, db, log)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, db, err := bootstrap()
	if err != nil {
		return err
	}
	defer log.Sync()
	defer closeDB(db, log)

	gin.SetMode(cfg.GinMode)

	if err := database.Migrate(db, log); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if cfg.SeedAdmin {
		if err := seedAdmin(cfg, db, log); err != nil {
			return fmt.Errorf("seed admin: %w", err)
		}
	}
	if cfg.OpenAIAPIKey == "" {
		log.Info("OPENAI_API_KEY not set; task generation is disabled")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.Setup(db, cfg, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("goodbye")
	return nil
}
