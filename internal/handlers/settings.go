// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"backoffice/internal/assets"
	"backoffice/internal/models"
	"backoffice/internal/render"
	"backoffice/internal/session"
	"backoffice/internal/store"
)

// maxUploadMemory bounds in-memory multipart parsing; larger files spill
// to disk.
const maxUploadMemory = 4 << 20

// Settings serves the website settings page and its partial updates.
type Settings struct {
	renderer *render.Renderer
	sessions *session.Store
	settings *store.WebsiteSettingStore
	assets   *assets.Resolver
}

func NewSettings(renderer *render.Renderer, sessions *session.Store, settings *store.WebsiteSettingStore, resolver *assets.Resolver) *Settings {
	return &Settings{
		renderer: renderer,
		sessions: sessions,
		settings: settings,
		assets:   resolver,
	}
}

// Show renders the settings page with the current values and resolved
// asset URLs.
func (h *Settings) Show(w http.ResponseWriter, r *http.Request) {
	setting, err := h.settings.Get()
	if err != nil {
		slog.Error("load website settings failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.renderer.Render(w, r, "Admin/Settings/Index", map[string]any{
		"title":             "Website Settings",
		"settings":          setting,
		"logoUrl":           h.assets.URL(setting.LogoPath),
		"faviconUrl":        h.assets.URL(setting.FaviconPath),
		"defaultOgImageUrl": h.assets.URL(setting.DefaultOgImagePath),
	})
}

type generalSettingsInput struct {
	SiteName        string  `json:"siteName" validate:"required,max=255"`
	SiteSubtitle    *string `json:"siteSubtitle" validate:"omitempty,max=255"`
	SiteDescription *string `json:"siteDescription" validate:"omitempty,max=1000"`
	ContactEmail    *string `json:"contactEmail" validate:"omitempty,email"`
	HomepageRoute   string  `json:"homepageRoute" validate:"required,max=255"`
}

// UpdateGeneral persists the identity fields. Fields outside this subset
// keep their stored values.
func (h *Settings) UpdateGeneral(w http.ResponseWriter, r *http.Request) {
	var input generalSettingsInput
	if err := decodeJSON(r, &input); err != nil {
		respondInvalid(w, r, map[string]string{"_": "Malformed request body."})
		return
	}
	if err := validate.Struct(input); err != nil {
		respondInvalid(w, r, fieldErrors(err))
		return
	}

	err := h.settings.UpdateGeneral(store.GeneralSettings{
		SiteName:        input.SiteName,
		SiteSubtitle:    emptyToNil(input.SiteSubtitle),
		SiteDescription: emptyToNil(input.SiteDescription),
		ContactEmail:    emptyToNil(input.ContactEmail),
		HomepageRoute:   input.HomepageRoute,
	})
	if err != nil {
		slog.Error("update general settings failed", "error", err)
		respondStorageError(w, r, h.sessions, "/admin/settings")
		return
	}

	respondSaved(w, r, h.sessions, "Website settings saved.", "/admin/settings")
}

type footerSettingsInput struct {
	CopyrightText *string `json:"copyrightText" validate:"omitempty,max=255"`
	CopyrightYear *int    `json:"copyrightYear" validate:"omitempty,min=2000,max=2100"`
}

// UpdateFooter persists the footer fields.
func (h *Settings) UpdateFooter(w http.ResponseWriter, r *http.Request) {
	var input footerSettingsInput
	if err := decodeJSON(r, &input); err != nil {
		respondInvalid(w, r, map[string]string{"_": "Malformed request body."})
		return
	}
	if err := validate.Struct(input); err != nil {
		respondInvalid(w, r, fieldErrors(err))
		return
	}

	err := h.settings.UpdateFooter(store.FooterSettings{
		CopyrightText: emptyToNil(input.CopyrightText),
		CopyrightYear: input.CopyrightYear,
	})
	if err != nil {
		slog.Error("update footer settings failed", "error", err)
		respondStorageError(w, r, h.sessions, "/admin/settings")
		return
	}

	respondSaved(w, r, h.sessions, "Footer settings saved.", "/admin/settings")
}

type scriptSettingsInput struct {
	HeaderScripts     *string `json:"headerScripts"`
	MetaPixelScript   *string `json:"metaPixelScript"`
	TiktokPixelScript *string `json:"tiktokPixelScript"`
	GoogleTagScript   *string `json:"googleTagScript"`
	FooterScripts     *string `json:"footerScripts"`
}

// UpdateScripts persists the tracking script fields verbatim.
func (h *Settings) UpdateScripts(w http.ResponseWriter, r *http.Request) {
	var input scriptSettingsInput
	if err := decodeJSON(r, &input); err != nil {
		respondInvalid(w, r, map[string]string{"_": "Malformed request body."})
		return
	}

	err := h.settings.UpdateScripts(store.ScriptSettings{
		HeaderScripts:     emptyToNil(input.HeaderScripts),
		MetaPixelScript:   emptyToNil(input.MetaPixelScript),
		TiktokPixelScript: emptyToNil(input.TiktokPixelScript),
		GoogleTagScript:   emptyToNil(input.GoogleTagScript),
		FooterScripts:     emptyToNil(input.FooterScripts),
	})
	if err != nil {
		slog.Error("update script settings failed", "error", err)
		respondStorageError(w, r, h.sessions, "/admin/settings")
		return
	}

	respondSaved(w, r, h.sessions, "Scripts saved.", "/admin/settings")
}

// UploadLogo replaces the logo asset slot.
func (h *Settings) UploadLogo(w http.ResponseWriter, r *http.Request) {
	h.uploadAsset(w, r, assets.SlotLogo, store.SlotLogo, "logo", "Logo updated.")
}

// UploadFavicon replaces the favicon asset slot.
func (h *Settings) UploadFavicon(w http.ResponseWriter, r *http.Request) {
	h.uploadAsset(w, r, assets.SlotFavicon, store.SlotFavicon, "favicon", "Favicon updated.")
}

// UploadOgImage replaces the default Open Graph image slot.
func (h *Settings) UploadOgImage(w http.ResponseWriter, r *http.Request) {
	h.uploadAsset(w, r, assets.SlotOgImage, store.SlotOgImage, "og_image", "Social share image updated.")
}

// uploadAsset validates and stores a multipart upload for a slot, then
// points the settings row at the new key. The old object is deleted
// before the new one is stored; the two steps are not transactional.
func (h *Settings) uploadAsset(w http.ResponseWriter, r *http.Request, slot assets.Slot, column store.AssetSlot, field, message string) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		respondInvalid(w, r, map[string]string{field: "A file upload is required."})
		return
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		respondInvalid(w, r, map[string]string{field: "A file upload is required."})
		return
	}
	defer file.Close()

	setting, err := h.settings.Get()
	if err != nil {
		slog.Error("load website settings failed", "error", err)
		respondStorageError(w, r, h.sessions, "/admin/settings")
		return
	}

	key, err := h.assets.Replace(r.Context(), slot, file, header, previousPath(setting, column))
	if err != nil {
		switch {
		case errors.Is(err, assets.ErrFileTooLarge), errors.Is(err, assets.ErrBadFileType):
			respondInvalid(w, r, map[string]string{field: err.Error()})
		case errors.Is(err, assets.ErrNoStorage):
			respondFailed(w, r, h.sessions, http.StatusServiceUnavailable, "File storage is not configured.", "/admin/settings")
		default:
			slog.Error("asset upload failed", "slot", slot, "error", err)
			respondStorageError(w, r, h.sessions, "/admin/settings")
		}
		return
	}

	if err := h.settings.SetAssetPath(column, key); err != nil {
		slog.Error("persist asset path failed", "slot", slot, "error", err)
		respondStorageError(w, r, h.sessions, "/admin/settings")
		return
	}

	respondSaved(w, r, h.sessions, message, "/admin/settings")
}

// previousPath returns the stored key for the slot being replaced.
func previousPath(setting *models.WebsiteSetting, column store.AssetSlot) *string {
	switch column {
	case store.SlotLogo:
		return setting.LogoPath
	case store.SlotFavicon:
		return setting.FaviconPath
	case store.SlotOgImage:
		return setting.DefaultOgImagePath
	}
	return nil
}

// emptyToNil treats an empty or missing optional string as unset.
func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
