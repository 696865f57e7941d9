// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"backoffice/internal/render"
	"backoffice/internal/session"
	"backoffice/internal/store"
)

// Permissions serves the permission catalogue management.
type Permissions struct {
	renderer    *render.Renderer
	sessions    *session.Store
	permissions *store.PermissionStore
}

func NewPermissions(renderer *render.Renderer, sessions *session.Store, permissions *store.PermissionStore) *Permissions {
	return &Permissions{
		renderer:    renderer,
		sessions:    sessions,
		permissions: permissions,
	}
}

// Index renders the permission list.
func (h *Permissions) Index(w http.ResponseWriter, r *http.Request) {
	permissions, err := h.permissions.List()
	if err != nil {
		slog.Error("list permissions failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.renderer.Render(w, r, "Admin/Permissions/Index", map[string]any{
		"title":       "Permissions",
		"permissions": permissions,
	})
}

type permissionInput struct {
	// Names follow the "<verb> <resource>" convention, e.g. "manage users".
	Name string `json:"name" validate:"required,max=255"`
}

// Store creates a permission.
func (h *Permissions) Store(w http.ResponseWriter, r *http.Request) {
	var input permissionInput
	if err := decodeJSON(r, &input); err != nil {
		respondInvalid(w, r, map[string]string{"_": "Malformed request body."})
		return
	}
	if err := validate.Struct(input); err != nil {
		respondInvalid(w, r, fieldErrors(err))
		return
	}

	if _, err := h.permissions.Create(input.Name); err != nil {
		slog.Error("create permission failed", "error", err)
		respondStorageError(w, r, h.sessions, "/admin/permissions")
		return
	}

	respondSaved(w, r, h.sessions, "Permission created.", "/admin/permissions")
}

// Update renames a permission.
func (h *Permissions) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.permissionID(w, r)
	if !ok {
		return
	}

	var input permissionInput
	if err := decodeJSON(r, &input); err != nil {
		respondInvalid(w, r, map[string]string{"_": "Malformed request body."})
		return
	}
	if err := validate.Struct(input); err != nil {
		respondInvalid(w, r, fieldErrors(err))
		return
	}

	if err := h.permissions.Rename(id, input.Name); err != nil {
		slog.Error("rename permission failed", "permission", id, "error", err)
		respondStorageError(w, r, h.sessions, "/admin/permissions")
		return
	}

	respondSaved(w, r, h.sessions, "Permission updated.", "/admin/permissions")
}

// Destroy deletes a permission; role links go with it.
func (h *Permissions) Destroy(w http.ResponseWriter, r *http.Request) {
	id, ok := h.permissionID(w, r)
	if !ok {
		return
	}

	if err := h.permissions.Delete(id); err != nil {
		slog.Error("delete permission failed", "permission", id, "error", err)
		respondStorageError(w, r, h.sessions, "/admin/permissions")
		return
	}

	respondSaved(w, r, h.sessions, "Permission deleted.", "/admin/permissions")
}

func (h *Permissions) permissionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondFailed(w, r, h.sessions, http.StatusNotFound, "Permission not found.", "/admin/permissions")
		return uuid.Nil, false
	}
	return id, true
}
