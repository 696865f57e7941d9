// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"backoffice/internal/render"
	"backoffice/internal/session"
	"backoffice/internal/store"
)

// Roles serves role management: listing, creation, renaming, permission
// assignment, and deletion of non-protected roles.
type Roles struct {
	renderer    *render.Renderer
	sessions    *session.Store
	roles       *store.RoleStore
	permissions *store.PermissionStore
}

func NewRoles(renderer *render.Renderer, sessions *session.Store, roles *store.RoleStore, permissions *store.PermissionStore) *Roles {
	return &Roles{
		renderer:    renderer,
		sessions:    sessions,
		roles:       roles,
		permissions: permissions,
	}
}

// Index renders the role list with every permission available for
// assignment.
func (h *Roles) Index(w http.ResponseWriter, r *http.Request) {
	roles, err := h.roles.List()
	if err != nil {
		slog.Error("list roles failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	permissions, err := h.permissions.List()
	if err != nil {
		slog.Error("list permissions failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.renderer.Render(w, r, "Admin/Roles/Index", map[string]any{
		"title":       "Roles",
		"roles":       roles,
		"permissions": permissions,
	})
}

type roleInput struct {
	Name          string      `json:"name" validate:"required,max=255"`
	PermissionIDs []uuid.UUID `json:"permissionIds"`
}

// Store creates a role with an initial permission set.
func (h *Roles) Store(w http.ResponseWriter, r *http.Request) {
	var input roleInput
	if err := decodeJSON(r, &input); err != nil {
		respondInvalid(w, r, map[string]string{"_": "Malformed request body."})
		return
	}
	if err := validate.Struct(input); err != nil {
		respondInvalid(w, r, fieldErrors(err))
		return
	}

	if existing, err := h.roles.FindByName(input.Name); err == nil && existing != nil {
		respondInvalid(w, r, map[string]string{"name": "A role with this name already exists."})
		return
	}

	if _, err := h.roles.Create(input.Name, input.PermissionIDs); err != nil {
		slog.Error("create role failed", "error", err)
		respondStorageError(w, r, h.sessions, "/admin/roles")
		return
	}

	respondSaved(w, r, h.sessions, "Role created.", "/admin/roles")
}

// Update renames a role and replaces its permission set.
func (h *Roles) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.roleID(w, r)
	if !ok {
		return
	}

	var input roleInput
	if err := decodeJSON(r, &input); err != nil {
		respondInvalid(w, r, map[string]string{"_": "Malformed request body."})
		return
	}
	if err := validate.Struct(input); err != nil {
		respondInvalid(w, r, fieldErrors(err))
		return
	}

	role, err := h.roles.FindByID(id)
	if err != nil || role == nil {
		respondFailed(w, r, h.sessions, http.StatusNotFound, "Role not found.", "/admin/roles")
		return
	}

	// Protected roles keep their name but may change permissions.
	if role.Name != input.Name {
		if role.IsProtected() {
			respondInvalid(w, r, map[string]string{"name": "System roles cannot be renamed."})
			return
		}
		if existing, err := h.roles.FindByName(input.Name); err == nil && existing != nil {
			respondInvalid(w, r, map[string]string{"name": "A role with this name already exists."})
			return
		}
		if err := h.roles.Rename(id, input.Name); err != nil {
			slog.Error("rename role failed", "role", id, "error", err)
			respondStorageError(w, r, h.sessions, "/admin/roles")
			return
		}
	}

	if err := h.roles.SyncPermissions(id, input.PermissionIDs); err != nil {
		slog.Error("sync role permissions failed", "role", id, "error", err)
		respondStorageError(w, r, h.sessions, "/admin/roles")
		return
	}

	respondSaved(w, r, h.sessions, "Role updated.", "/admin/roles")
}

// Destroy deletes a role. The admin and super-admin roles are protected
// and refuse deletion.
func (h *Roles) Destroy(w http.ResponseWriter, r *http.Request) {
	id, ok := h.roleID(w, r)
	if !ok {
		return
	}

	if err := h.roles.Delete(id); err != nil {
		if errors.Is(err, store.ErrProtectedRole) {
			respondFailed(w, r, h.sessions, http.StatusUnprocessableEntity, "System roles cannot be deleted.", "/admin/roles")
			return
		}
		slog.Error("delete role failed", "role", id, "error", err)
		respondStorageError(w, r, h.sessions, "/admin/roles")
		return
	}

	respondSaved(w, r, h.sessions, "Role deleted.", "/admin/roles")
}

func (h *Roles) roleID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondFailed(w, r, h.sessions, http.StatusNotFound, "Role not found.", "/admin/roles")
		return uuid.Nil, false
	}
	return id, true
}
