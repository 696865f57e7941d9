// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package main is the entry point for the back-office server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"backoffice/internal/assets"
	"backoffice/internal/cache"
	"backoffice/internal/config"
	"backoffice/internal/database"
	"backoffice/internal/handlers"
	"backoffice/internal/mailer"
	"backoffice/internal/middleware"
	"backoffice/internal/props"
	"backoffice/internal/render"
	"backoffice/internal/router"
	"backoffice/internal/session"
	"backoffice/internal/storage"
	"backoffice/internal/store"
)

func main() {
	// Structured logger — outputs JSON in production, text in development.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	var handler slog.Handler
	if cfg.IsDev() {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	slog.SetDefault(slog.New(handler))

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
	)

	// Connect to PostgreSQL.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run pending migrations.
	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed the permission set, system roles and the first admin account.
	// No-op once any user exists.
	if err := database.Seed(db); err != nil {
		slog.Error("failed to seed database", "error", err)
		os.Exit(1)
	}

	// Connect to Valkey (Redis-compatible session store).
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	// In non-development environments, mark session cookies as Secure.
	secureCookies := !cfg.IsDev()
	sessionStore := session.NewStore(valkeyClient, secureCookies)

	// Connect to S3-compatible object storage. Fully unset credentials
	// mean storage is optional and uploads are disabled; a partial set
	// is a misconfiguration and refuses to start.
	storageClient, err := storage.New(
		cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey,
		cfg.S3Bucket, cfg.S3PublicURL,
	)
	if err != nil {
		slog.Error("invalid S3 storage configuration", "error", err)
		os.Exit(1)
	}
	if storageClient != nil {
		slog.Info("s3 storage connected",
			"endpoint", cfg.S3Endpoint,
			"bucket", cfg.S3Bucket,
		)
	} else {
		slog.Warn("s3 storage not configured, asset uploads disabled")
	}

	// Data stores.
	userStore := store.NewUserStore(db)
	roleStore := store.NewRoleStore(db)
	permissionStore := store.NewPermissionStore(db)
	websiteStore := store.NewWebsiteSettingStore(db)
	emailStore := store.NewEmailSettingStore(db)

	// Asset resolver over object storage. Safe with a nil client.
	var objects assets.ObjectStore
	if storageClient != nil {
		objects = storageClient
	}
	resolver := assets.NewResolver(objects)

	// Mailer reads the email settings row per send, so configuration
	// changes apply without a restart.
	mail := mailer.New(emailStore, cfg.AppName)
	signer := handlers.NewVerificationSigner(cfg.AppSecret, cfg.BaseURL)

	// Shared page props and the page renderer.
	shared := props.NewBuilder(websiteStore, resolver, userStore, sessionStore, cfg.AppName, cfg.AssetVersion)
	renderer, err := render.New(shared, cfg.AssetVersion)
	if err != nil {
		slog.Error("failed to initialize renderer", "error", err)
		os.Exit(1)
	}

	// Head/footer script injection for full-page responses.
	injector := middleware.NewHTMLInjector(websiteStore, resolver)

	h := router.Handlers{
		Auth:        handlers.NewAuth(renderer, sessionStore, userStore, cfg.AppName),
		Dashboard:   handlers.NewDashboard(renderer, userStore, roleStore),
		Users:       handlers.NewUsers(renderer, sessionStore, userStore, roleStore, mail, signer),
		Roles:       handlers.NewRoles(renderer, sessionStore, roleStore, permissionStore),
		Permissions: handlers.NewPermissions(renderer, sessionStore, permissionStore),
		Settings:    handlers.NewSettings(renderer, sessionStore, websiteStore, resolver),
		Email:       handlers.NewEmail(renderer, sessionStore, emailStore, mail),
	}

	r := router.New(sessionStore, userStore, injector, h)

	// WriteTimeout must accommodate SMTP delivery on the test-email and
	// verification endpoints.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	// Give active requests up to 30 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
