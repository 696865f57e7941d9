// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package props

import (
	"context"
	"net/http"
)

type contextKey string

const routeNameKey contextKey = "route_name"

// Route attaches a symbolic route name to the request context. The router
// wraps each named route with it so the component mapper can see which
// logical page is being served.
func Route(name string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), routeNameKey, name)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RouteName returns the symbolic route name set by Route, or "".
func RouteName(ctx context.Context) string {
	name, _ := ctx.Value(routeNameKey).(string)
	return name
}
