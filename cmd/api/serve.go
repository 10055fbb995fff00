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

	"edc-panorama-api-server/internal/api/handlers"
	"edc-panorama-api-server/internal/api/routes"
	"edc-panorama-api-server/internal/assistant"
	"edc-panorama-api-server/internal/auth"
	"edc-panorama-api-server/internal/database"
	"edc-panorama-api-server/internal/s3"
	"edc-panorama-api-server/internal/socket"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer database.Disconnect(client)

	if _, err := database.SeedConfig(ctx, store); err != nil {
		return fmt.Errorf("seeding config: %w", err)
	}
	if cfg.Admin.Password != "" {
		if _, err := database.SeedAdmin(ctx, store, adminSeed(cfg)); err != nil {
			return fmt.Errorf("seeding admin: %w", err)
		}
	}

	tokens, err := auth.NewTokenIssuer(cfg.JWT.Secret, cfg.JWT.TTL())
	if err != nil {
		return err
	}

	var uploader handlers.PhotoUploader
	if cfg.S3.Enabled() {
		u, err := s3.NewUploader(ctx, cfg.S3)
		if err != nil {
			return fmt.Errorf("creating S3 uploader: %w", err)
		}
		uploader = u
	} else {
		slog.Warn("S3 is not configured, photo uploads are disabled")
	}

	ai := assistant.New(assistant.Config{
		APIKey:  cfg.AI.APIKey,
		BaseURL: cfg.AI.BaseURL,
		Model:   cfg.AI.Model,
		Timeout: cfg.AI.TimeoutDuration(),
	})

	router := routes.SetupRouter(routes.Dependencies{
		Config:    cfg,
		Store:     store,
		Hub:       socket.NewHub(),
		Tokens:    tokens,
		Throttle:  auth.NewThrottle(cfg.Auth.MaxFailedAttempts, cfg.Auth.Window()),
		Uploader:  uploader,
		Assistant: ai,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		slog.Info("starting API server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("running server: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down API server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down server: %w", err)
		}
		return nil
	})
	return group.Wait()
}
