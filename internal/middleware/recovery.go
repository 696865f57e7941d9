// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
)

// Recoverer catches panics in downstream handlers, logs the stack trace
// with the session identity when one is loaded, and returns a 500
// instead of crashing the server. Clients driving the admin UI over
// XHR get a JSON body so the frontend can surface the failure.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				attrs := []any{
					"error", rec,
					"method", r.Method,
					"path", r.URL.Path,
					"stack", string(debug.Stack()),
				}
				if sess := SessionFromCtx(r.Context()); sess != nil {
					attrs = append(attrs, "user_id", sess.UserID.String())
				}
				slog.Error("panic recovered", attrs...)

				if wantsJSONError(r) {
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					w.Write([]byte(`{"message":"Internal Server Error"}`))
					return
				}
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// wantsJSONError reports whether the client expects a JSON error body.
// Inertia visits and XMLHttpRequest submissions both qualify.
func wantsJSONError(r *http.Request) bool {
	if r.Header.Get("X-Inertia") == "true" {
		return true
	}
	if r.Header.Get("X-Requested-With") == "XMLHttpRequest" {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}
