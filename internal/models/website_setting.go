// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"fmt"
	"time"
)

// WebsiteSetting is the single global website configuration record.
// Exactly one row exists after first access; the store creates it lazily
// with schema defaults.
type WebsiteSetting struct {
	SiteName        string  `json:"site_name"`
	SiteSubtitle    *string `json:"site_subtitle"`
	SiteDescription *string `json:"site_description"`
	ContactEmail    *string `json:"contact_email"`
	HomepageRoute   string  `json:"homepage_route"`

	CopyrightText *string `json:"copyright_text"`
	CopyrightYear *int    `json:"copyright_year"`

	// Raw markup fields, injected into rendered pages unescaped.
	// Only administrators can edit them.
	HeaderScripts     *string `json:"header_scripts"`
	MetaPixelScript   *string `json:"meta_pixel_script"`
	TiktokPixelScript *string `json:"tiktok_pixel_script"`
	GoogleTagScript   *string `json:"google_tag_script"`
	FooterScripts     *string `json:"footer_scripts"`

	// Relative storage keys, resolved to public URLs by the assets resolver.
	LogoPath           *string `json:"logo_path"`
	FaviconPath        *string `json:"favicon_path"`
	DefaultOgImagePath *string `json:"default_og_image_path"`

	UpdatedAt time.Time `json:"updated_at"`
}

// FullCopyright returns the footer copyright display string. Falls back
// to the current year and site name when the custom text is unset.
func (s *WebsiteSetting) FullCopyright() string {
	year := time.Now().Year()
	if s.CopyrightYear != nil {
		year = *s.CopyrightYear
	}
	if s.CopyrightText != nil && *s.CopyrightText != "" {
		return fmt.Sprintf("%d © %s", year, *s.CopyrightText)
	}
	return fmt.Sprintf("%d © %s", year, s.SiteName)
}
