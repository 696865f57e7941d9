// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for the
// back-office. Admin routes are grouped by the permission they require.
package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"backoffice/internal/handlers"
	"backoffice/internal/middleware"
	"backoffice/internal/props"
	"backoffice/internal/session"
	"backoffice/web"
)

// Handlers bundles the HTTP handler groups the router wires up.
type Handlers struct {
	Auth        *handlers.Auth
	Dashboard   *handlers.Dashboard
	Users       *handlers.Users
	Roles       *handlers.Roles
	Permissions *handlers.Permissions
	Settings    *handlers.Settings
	Email       *handlers.Email
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up. The gate is consulted per request so role
// and permission edits apply without a fresh login.
func New(sessions *session.Store, gate middleware.PermissionChecker, injector *middleware.HTMLInjector, h Handlers) chi.Router {
	r := chi.NewRouter()

	// Global middleware — applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.LoadSession(sessions))

	// Health check — no auth, no CSRF.
	r.Get("/health", healthHandler)

	// Static assets for the admin SPA.
	r.Handle("/static/*", http.FileServer(http.FS(web.StaticFS)))

	// Signed email verification links work without a session.
	r.Get("/verify-email/{id}", h.Users.VerifyEmail)

	loginLimiter := middleware.NewRateLimiter(10, time.Minute, 5*time.Minute)

	// Admin routes — CSRF-protected, pages post-processed for head/footer
	// script injection.
	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.CSRF)
		r.Use(injector.Middleware)

		// Auth pages — accessible without a session.
		r.With(props.Route("auth.login")).Get("/login", h.Auth.LoginPage)
		r.With(loginLimiter.Middleware).Post("/login", h.Auth.Login)
		r.Post("/logout", h.Auth.Logout)

		// 2FA challenge — requires auth but NOT completed 2FA.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.With(props.Route("auth.2fa")).Get("/2fa", h.Auth.TwoFAPage)
			r.With(loginLimiter.Middleware).Post("/2fa", h.Auth.TwoFAVerify)
		})

		// Authenticated + 2FA-verified admin area.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Use(middleware.Require2FA)

			// Authenticator management for the signed-in user.
			r.Post("/2fa/setup", h.Auth.TwoFASetup)
			r.Post("/2fa/confirm", h.Auth.TwoFAConfirm)
			r.Post("/2fa/disable", h.Auth.TwoFADisable)

			// Dashboard
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequirePermission(gate, "access admin dashboard"))
				r.With(props.Route("admin.dashboard")).Get("/", h.Dashboard.Index)
				r.With(props.Route("admin.dashboard")).Get("/dashboard", h.Dashboard.Index)
			})

			// User management
			r.Route("/users", func(r chi.Router) {
				r.Use(middleware.RequirePermission(gate, "manage users"))
				r.With(props.Route("admin.users.index")).Get("/", h.Users.Index)
				r.Post("/", h.Users.Store)
				r.Put("/{id}", h.Users.Update)
				r.Delete("/{id}", h.Users.Destroy)
				r.Patch("/{id}/status", h.Users.UpdateStatus)
				r.Post("/{id}/mark-verified", h.Users.MarkVerified)
				r.Post("/{id}/resend-verification", h.Users.ResendVerification)
				r.Post("/{id}/reset-2fa", h.Users.ResetTwoFA)
			})

			// Role management
			r.Route("/roles", func(r chi.Router) {
				r.Use(middleware.RequirePermission(gate, "manage roles"))
				r.With(props.Route("admin.roles.index")).Get("/", h.Roles.Index)
				r.Post("/", h.Roles.Store)
				r.Put("/{id}", h.Roles.Update)
				r.Delete("/{id}", h.Roles.Destroy)
			})

			// Permission management
			r.Route("/permissions", func(r chi.Router) {
				r.Use(middleware.RequirePermission(gate, "manage permissions"))
				r.With(props.Route("admin.permissions.index")).Get("/", h.Permissions.Index)
				r.Post("/", h.Permissions.Store)
				r.Put("/{id}", h.Permissions.Update)
				r.Delete("/{id}", h.Permissions.Destroy)
			})

			// Website and email settings
			r.Route("/settings", func(r chi.Router) {
				r.Use(middleware.RequirePermission(gate, "manage settings"))
				r.With(props.Route("admin.settings.index")).Get("/", h.Settings.Show)
				r.Put("/general", h.Settings.UpdateGeneral)
				r.Put("/footer", h.Settings.UpdateFooter)
				r.Put("/scripts", h.Settings.UpdateScripts)
				r.Post("/logo", h.Settings.UploadLogo)
				r.Post("/favicon", h.Settings.UploadFavicon)
				r.Post("/og-image", h.Settings.UploadOgImage)
			})

			// Email settings share the settings permission.
			r.Route("/email", func(r chi.Router) {
				r.Use(middleware.RequirePermission(gate, "manage settings"))
				r.With(props.Route("admin.email.index")).Get("/", h.Email.Show)
				r.Put("/", h.Email.Update)
				r.Post("/test", h.Email.SendTest)
			})
		})
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
