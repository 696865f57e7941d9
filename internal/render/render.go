// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package render serves admin pages in the Inertia protocol: the first
// visit returns the root HTML document with the page object embedded in
// a data-page attribute, and subsequent client-driven visits (marked by
// the X-Inertia header) receive the page object as bare JSON.
package render

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"

	"backoffice/internal/props"
)

//go:embed templates/root.html
var rootFS embed.FS

// headerInertia marks client-driven page visits.
const headerInertia = "X-Inertia"

// Page is the protocol page object handed to the frontend.
type Page struct {
	Component string         `json:"component"`
	Props     map[string]any `json:"props"`
	URL       string         `json:"url"`
	Version   string         `json:"version"`
}

// Renderer merges shared props into page props and writes either the
// root document or the JSON page object.
type Renderer struct {
	tmpl    *template.Template
	shared  *props.Builder
	version string
}

// New parses the embedded root template. version is the asset version
// token; a mismatch on a client-driven GET forces a full page reload.
func New(shared *props.Builder, version string) (*Renderer, error) {
	tmpl, err := template.ParseFS(rootFS, "templates/root.html")
	if err != nil {
		return nil, fmt.Errorf("parse root template: %w", err)
	}
	return &Renderer{tmpl: tmpl, shared: shared, version: version}, nil
}

// Render writes the page for the given component. Shared props are built
// fresh per request; page props win on key collisions.
func (rn *Renderer) Render(w http.ResponseWriter, r *http.Request, component string, pageProps map[string]any) {
	merged := rn.shared.Build(r)
	for k, v := range pageProps {
		merged[k] = v
	}

	page := Page{
		Component: component,
		Props:     merged,
		URL:       r.URL.RequestURI(),
		Version:   rn.version,
	}

	if r.Header.Get(headerInertia) != "" {
		// Stale asset version: tell the client to do a full reload.
		if r.Method == http.MethodGet && r.Header.Get("X-Inertia-Version") != rn.version {
			w.Header().Set("X-Inertia-Location", page.URL)
			w.WriteHeader(http.StatusConflict)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set(headerInertia, "true")
		w.Header().Set("Vary", headerInertia)
		if err := json.NewEncoder(w).Encode(page); err != nil {
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		}
		return
	}

	payload, err := json.Marshal(page)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := rn.tmpl.Execute(w, map[string]any{
		"PageJSON": string(payload),
		"Version":  rn.version,
	}); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// Redirect sends the client to another admin page. PUT, PATCH and DELETE
// get 303 so the follow-up request becomes a GET.
func Redirect(w http.ResponseWriter, r *http.Request, location string) {
	status := http.StatusFound
	switch r.Method {
	case http.MethodPut, http.MethodPatch, http.MethodDelete:
		status = http.StatusSeeOther
	}
	http.Redirect(w, r, location, status)
}

// WantsJSON reports whether the request expects a JSON status object
// rather than a redirect-with-flash.
func WantsJSON(r *http.Request) bool {
	if r.Header.Get(headerInertia) != "" {
		return false
	}
	accept := r.Header.Get("Accept")
	return accept == "application/json" || r.Header.Get("X-Requested-With") == "XMLHttpRequest"
}

// JSON writes a structured JSON response with the given status.
func JSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
