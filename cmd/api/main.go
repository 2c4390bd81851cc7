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

	"github.com/joho/godotenv"

	"github.com/nymkash-gerel/temuulel-app-sub002/internal/billing"
	billingStore "github.com/nymkash-gerel/temuulel-app-sub002/internal/billing/store"
	"github.com/nymkash-gerel/temuulel-app-sub002/internal/config"
	"github.com/nymkash-gerel/temuulel-app-sub002/internal/database"
	apiHttp "github.com/nymkash-gerel/temuulel-app-sub002/internal/http"
	billingHandler "github.com/nymkash-gerel/temuulel-app-sub002/internal/http/billing"
	lifecycleHandler "github.com/nymkash-gerel/temuulel-app-sub002/internal/http/lifecycle"
	workflowHandler "github.com/nymkash-gerel/temuulel-app-sub002/internal/http/workflow"
	"github.com/nymkash-gerel/temuulel-app-sub002/internal/lifecycle"
	lifecycleStore "github.com/nymkash-gerel/temuulel-app-sub002/internal/lifecycle/store"
	"github.com/nymkash-gerel/temuulel-app-sub002/internal/workflow"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	negativeLines, err := billing.ParseNegativeLinePolicy(cfg.Billing.NegativeLines)
	if err != nil {
		slog.Error("invalid billing config", "error", err)
		os.Exit(1)
	}

	labels, err := loadLabels(cfg.Workflow.LabelsFile)
	if err != nil {
		slog.Error("failed to load workflow labels", "file", cfg.Workflow.LabelsFile, "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.New(ctx, cfg.ConnectionString(), database.Pool{
		MaxOpenConns:    cfg.DB.MaxOpenConns,
		MaxIdleConns:    cfg.DB.MaxIdleConns,
		ConnMaxLifetime: cfg.DB.ConnMaxLifetime,
	})
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	registry := workflow.DefaultRegistry()

	var (
		lifecycleService = lifecycle.NewService(lifecycleStore.New(db), registry)
		billingService   = billing.NewService(billingStore.New(db), billing.Config{
			NegativeLines:  negativeLines,
			NumberAttempts: cfg.Billing.NumberAttempts,
		})
	)

	router := apiHttp.New(
		apiHttp.Options{AllowedOrigins: cfg.CORS.AllowedOrigins, Timeout: cfg.Server.Timeout},
		workflowHandler.NewHandler(registry, labels),
		lifecycleHandler.NewHandler(lifecycleService, labels),
		billingHandler.NewHandler(billingService),
	)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.Timeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("graceful shutdown failed", "error", err)
		}
	}()

	slog.Info("starting server", "app", cfg.App.Name, "addr", srv.Addr, "entities", len(registry.Entities()))

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func loadLabels(path string) (workflow.Labels, error) {
	if path == "" {
		return workflow.Labels{}, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return workflow.LoadLabels(f)
}
