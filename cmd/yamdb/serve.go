// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"yamdb/internal/auth"
	"yamdb/internal/cache"
	"yamdb/internal/config"
	"yamdb/internal/database"
	"yamdb/internal/handlers"
	"yamdb/internal/mail"
	"yamdb/internal/middleware"
	"yamdb/internal/router"
	"yamdb/internal/store"
)

func newServeCmd() *cobra.Command {
	var seed bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the API server (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg, seed || cfg.IsDev())
		},
	}
	cmd.Flags().BoolVar(&seed, "seed", false, "seed initial data (always on in development)")
	return cmd
}

// serve connects to the backing services and runs the HTTP server until
// SIGINT or SIGTERM.
func serve(ctx context.Context, cfg *config.Config, seed bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to PostgreSQL.
	db, err := database.Connect(ctx, cfg.DSN())
	if err != nil {
		return err
	}
	defer db.Close()

	// Run pending migrations.
	if err := database.Migrate(ctx, db); err != nil {
		return err
	}

	// Seed development data (no-op if data already exists).
	if seed {
		if err := database.Seed(ctx, db); err != nil {
			return err
		}
	}

	// Connect to Valkey for the auth rate limiter.
	var limiter *middleware.RateLimiter
	if cfg.AuthRateLimit > 0 {
		valkeyClient, err := cache.ConnectValkey(ctx, cache.Options{
			Host:     cfg.ValkeyHost,
			Port:     cfg.ValkeyPort,
			Password: cfg.ValkeyPassword,
			DB:       cfg.ValkeyDB,
		})
		if err != nil {
			return err
		}
		defer valkeyClient.Close()
		limiter = middleware.NewRateLimiter(valkeyClient, "auth", cfg.AuthRateLimit, cfg.AuthRateWindow)
	} else {
		slog.Warn("auth rate limiting disabled")
	}

	mailer, err := mail.New(mail.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		From:     cfg.MailFrom,
	})
	if err != nil {
		return err
	}
	if cfg.SMTPHost == "" {
		slog.Warn("smtp not configured, confirmation codes are written to the log")
	}

	codes, err := auth.NewCodes(cfg.SecretKey, cfg.ConfirmationCodeTTL)
	if err != nil {
		return err
	}
	tokens, err := auth.NewTokens(cfg.SecretKey, cfg.AccessTokenTTL)
	if err != nil {
		return err
	}

	// Initialize data stores.
	userStore := store.NewUserStore(db)
	titleStore := store.NewTitleStore(db)
	authService := auth.NewService(userStore, mailer, codes, tokens)

	r := router.New(router.Deps{
		Auth:        handlers.NewAuth(authService),
		Catalog:     handlers.NewCatalog(store.NewCategoryStore(db), store.NewGenreStore(db), titleStore, cfg.PageSize),
		Reviews:     handlers.NewReviews(titleStore, store.NewReviewStore(db), store.NewCommentStore(db), cfg.PageSize),
		Users:       handlers.NewUsers(userStore, cfg.PageSize),
		Tokens:      authService,
		UserStore:   userStore,
		AuthLimiter: limiter,
		TrustProxy:  cfg.TrustProxy,
	})

	// WriteTimeout covers signup, which waits on the SMTP server.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	}

	// Give active requests up to 30 seconds to complete.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}
