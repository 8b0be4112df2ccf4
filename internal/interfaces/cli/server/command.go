// Package server implements the HTTP server command.
package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"subcycle/internal/infrastructure/config"
	"subcycle/internal/infrastructure/database"
	"subcycle/internal/interfaces/container"
	httpRouter "subcycle/internal/interfaces/http"
	"subcycle/internal/interfaces/http/handlers"
	"subcycle/internal/shared/logger"
)

var (
	env           string
	autoMigrate   bool
	withScheduler bool
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Start the HTTP server",
		Long:  `Start the billing engine HTTP server, optionally with the in-process renewal scheduler.`,
		RunE:  run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")
	cmd.Flags().BoolVar(&autoMigrate, "auto-migrate", false, "Run database migrations on startup")
	cmd.Flags().BoolVar(&withScheduler, "with-scheduler", false, "Run the renewal scheduler inside the server process")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	if envVar := os.Getenv("ENV"); envVar != "" {
		env = envVar
	}

	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(&cfg.Logger, env != "production"); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.NewLogger()

	gin.SetMode(mapEnvToGinMode(env))
	gin.DefaultWriter = io.Discard

	c, err := container.Build(cfg, log, container.Options{WithScheduler: withScheduler})
	if err != nil {
		return err
	}
	defer c.Close()

	if autoMigrate {
		if err := database.Migrate(c.DB, log); err != nil {
			return err
		}
	}

	subscriptionHandler := handlers.NewSubscriptionHandler(
		c.CreateSubscription,
		c.GetSubscription,
		c.UpdateStatus,
		c.UpdateDates,
		c.CalculateDate,
		c.ProcessRenewal,
		c.PaymentComplete,
		c.PaymentFailed,
		c.Notes,
		log,
	)
	router := httpRouter.NewRouter(subscriptionHandler, log)

	server := &http.Server{
		Addr:         cfg.Server.GetAddr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	if c.RenewalScheduler != nil && cfg.Scheduler.Enabled {
		c.RenewalScheduler.Start()
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infow("http server listening", "addr", server.Addr, "env", env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-quit:
		log.Infow("shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Infow("server stopped")
	return nil
}

func mapEnvToGinMode(env string) string {
	switch env {
	case "production":
		return gin.ReleaseMode
	case "test":
		return gin.TestMode
	default:
		return gin.DebugMode
	}
}
