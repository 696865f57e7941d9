// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers for the admin panel:
// authentication, dashboard, settings, and RBAC management. Mutating
// endpoints answer page navigations with a redirect plus a flash message
// and API calls with a JSON status object.
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"backoffice/internal/render"
	"backoffice/internal/session"
)

// maxJSONBody caps request bodies for JSON endpoints.
const maxJSONBody = 1 << 20

// decodeJSON reads a JSON request body into dst.
func decodeJSON(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, maxJSONBody)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

// respondSaved reports a successful mutation: JSON {message} for API
// calls, flash + redirect for page navigations.
func respondSaved(w http.ResponseWriter, r *http.Request, sessions *session.Store, message, location string) {
	if render.WantsJSON(r) {
		render.JSON(w, http.StatusOK, map[string]string{"message": message})
		return
	}
	if sessions != nil {
		// Losing the flash only loses the confirmation text.
		_ = sessions.SetFlash(r.Context(), r, session.Flash{Success: message})
	}
	render.Redirect(w, r, location)
}

// respondFailed reports a failed mutation the user can act on.
func respondFailed(w http.ResponseWriter, r *http.Request, sessions *session.Store, status int, message, location string) {
	if render.WantsJSON(r) {
		render.JSON(w, status, map[string]string{"message": message})
		return
	}
	if sessions != nil {
		_ = sessions.SetFlash(r.Context(), r, session.Flash{Error: message})
	}
	render.Redirect(w, r, location)
}

// respondInvalid reports field-level validation failures.
func respondInvalid(w http.ResponseWriter, r *http.Request, errs map[string]string) {
	render.JSON(w, http.StatusUnprocessableEntity, map[string]any{
		"message": "The given data was invalid.",
		"errors":  errs,
	})
}

// respondStorageError hides persistence failures behind a generic message.
func respondStorageError(w http.ResponseWriter, r *http.Request, sessions *session.Store, location string) {
	respondFailed(w, r, sessions, http.StatusInternalServerError, "Something went wrong. Please try again.", location)
}
