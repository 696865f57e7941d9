// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"backoffice/internal/models"
)

// websiteSettingColumns is the scan order shared by every query that
// returns the settings row.
const websiteSettingColumns = `
	site_name, site_subtitle, site_description, contact_email, homepage_route,
	copyright_text, copyright_year,
	header_scripts, meta_pixel_script, tiktok_pixel_script, google_tag_script, footer_scripts,
	logo_path, favicon_path, default_og_image_path,
	updated_at`

// AssetSlot identifies one of the three uploadable site asset slots.
type AssetSlot string

const (
	SlotLogo    AssetSlot = "logo"
	SlotFavicon AssetSlot = "favicon"
	SlotOgImage AssetSlot = "og_image"
)

// column returns the settings table column backing the slot.
func (s AssetSlot) column() (string, error) {
	switch s {
	case SlotLogo:
		return "logo_path", nil
	case SlotFavicon:
		return "favicon_path", nil
	case SlotOgImage:
		return "default_og_image_path", nil
	}
	return "", fmt.Errorf("unknown asset slot %q", s)
}

// WebsiteSettingStore manages the singleton website settings row.
type WebsiteSettingStore struct {
	db *sql.DB
}

// NewWebsiteSettingStore returns a WebsiteSettingStore backed by the given database.
func NewWebsiteSettingStore(db *sql.DB) *WebsiteSettingStore {
	return &WebsiteSettingStore{db: db}
}

// Get returns the website settings row, creating it with schema defaults
// on first access. The fixed singleton key makes the lazy insert safe
// under concurrent first reads: at most one insert wins, everyone re-reads.
func (s *WebsiteSettingStore) Get() (*models.WebsiteSetting, error) {
	if _, err := s.db.Exec(`
		INSERT INTO website_settings (singleton_key) VALUES (1)
		ON CONFLICT (singleton_key) DO NOTHING`,
	); err != nil {
		return nil, fmt.Errorf("init website settings: %w", err)
	}

	ws := &models.WebsiteSetting{}
	err := s.db.QueryRow(`SELECT`+websiteSettingColumns+` FROM website_settings WHERE singleton_key = 1`).Scan(
		&ws.SiteName, &ws.SiteSubtitle, &ws.SiteDescription, &ws.ContactEmail, &ws.HomepageRoute,
		&ws.CopyrightText, &ws.CopyrightYear,
		&ws.HeaderScripts, &ws.MetaPixelScript, &ws.TiktokPixelScript, &ws.GoogleTagScript, &ws.FooterScripts,
		&ws.LogoPath, &ws.FaviconPath, &ws.DefaultOgImagePath,
		&ws.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("get website settings: %w", err)
	}
	return ws, nil
}

// GeneralSettings is the field subset written by the general settings form.
type GeneralSettings struct {
	SiteName        string
	SiteSubtitle    *string
	SiteDescription *string
	ContactEmail    *string
	HomepageRoute   string
}

// UpdateGeneral writes the general field subset. Fields outside the
// subset keep their prior values.
func (s *WebsiteSettingStore) UpdateGeneral(g GeneralSettings) error {
	if _, err := s.Get(); err != nil {
		return err
	}
	_, err := s.db.Exec(`
		UPDATE website_settings
		SET site_name = $1, site_subtitle = $2, site_description = $3,
		    contact_email = $4, homepage_route = $5, updated_at = now()
		WHERE singleton_key = 1`,
		g.SiteName, g.SiteSubtitle, g.SiteDescription, g.ContactEmail, g.HomepageRoute,
	)
	if err != nil {
		return fmt.Errorf("update general settings: %w", err)
	}
	return nil
}

// FooterSettings is the field subset written by the footer settings form.
type FooterSettings struct {
	CopyrightText *string
	CopyrightYear *int
}

// UpdateFooter writes the footer field subset.
func (s *WebsiteSettingStore) UpdateFooter(f FooterSettings) error {
	if _, err := s.Get(); err != nil {
		return err
	}
	_, err := s.db.Exec(`
		UPDATE website_settings
		SET copyright_text = $1, copyright_year = $2, updated_at = now()
		WHERE singleton_key = 1`,
		f.CopyrightText, f.CopyrightYear,
	)
	if err != nil {
		return fmt.Errorf("update footer settings: %w", err)
	}
	return nil
}

// ScriptSettings is the field subset written by the tracking scripts form.
type ScriptSettings struct {
	HeaderScripts     *string
	MetaPixelScript   *string
	TiktokPixelScript *string
	GoogleTagScript   *string
	FooterScripts     *string
}

// UpdateScripts writes the tracking script field subset. Values are stored
// verbatim: the admin is trusted to paste raw markup.
func (s *WebsiteSettingStore) UpdateScripts(sc ScriptSettings) error {
	if _, err := s.Get(); err != nil {
		return err
	}
	_, err := s.db.Exec(`
		UPDATE website_settings
		SET header_scripts = $1, meta_pixel_script = $2, tiktok_pixel_script = $3,
		    google_tag_script = $4, footer_scripts = $5, updated_at = now()
		WHERE singleton_key = 1`,
		sc.HeaderScripts, sc.MetaPixelScript, sc.TiktokPixelScript, sc.GoogleTagScript, sc.FooterScripts,
	)
	if err != nil {
		return fmt.Errorf("update script settings: %w", err)
	}
	return nil
}

// SetAssetPath stores the relative storage key for one asset slot.
// The caller is responsible for having already stored the file.
func (s *WebsiteSettingStore) SetAssetPath(slot AssetSlot, path string) error {
	col, err := slot.column()
	if err != nil {
		return err
	}
	if _, err := s.Get(); err != nil {
		return err
	}
	// col comes from the fixed switch above, never from user input.
	query := fmt.Sprintf(`UPDATE website_settings SET %s = $1, updated_at = now() WHERE singleton_key = 1`, col)
	if _, err := s.db.Exec(query, path); err != nil {
		return fmt.Errorf("set %s path: %w", slot, err)
	}
	return nil
}
