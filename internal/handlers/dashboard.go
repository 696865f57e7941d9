// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"

	"backoffice/internal/render"
	"backoffice/internal/store"
)

// Dashboard serves the admin landing page.
type Dashboard struct {
	renderer *render.Renderer
	users    *store.UserStore
	roles    *store.RoleStore
}

func NewDashboard(renderer *render.Renderer, users *store.UserStore, roles *store.RoleStore) *Dashboard {
	return &Dashboard{renderer: renderer, users: users, roles: roles}
}

// Index renders the dashboard with a few headline counts. Count failures
// degrade to zero rather than failing the page.
func (h *Dashboard) Index(w http.ResponseWriter, r *http.Request) {
	userCount, err := h.users.Count()
	if err != nil {
		slog.Warn("count users failed", "error", err)
	}

	roleCount := 0
	if roles, err := h.roles.List(); err == nil {
		roleCount = len(roles)
	} else {
		slog.Warn("list roles failed", "error", err)
	}

	h.renderer.Render(w, r, "Admin/Dashboard/Index", map[string]any{
		"title": "Dashboard",
		"stats": map[string]int{
			"users": userCount,
			"roles": roleCount,
		},
	})
}
