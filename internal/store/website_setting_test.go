// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"testing"
)

// resetWebsiteSettings drops the singleton row so Get recreates defaults.
func resetWebsiteSettings(t *testing.T, db *sql.DB) {
	t.Helper()
	t.Cleanup(func() { db.Exec("DELETE FROM website_settings") })
	db.Exec("DELETE FROM website_settings")
}

func TestWebsiteSettingGetCreatesSingleton(t *testing.T) {
	db := testDB(t)
	resetWebsiteSettings(t, db)
	s := NewWebsiteSettingStore(db)

	ws, err := s.Get()
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ws == nil {
		t.Fatal("expected settings, got nil")
	}
	if ws.SiteName == "" {
		t.Error("expected default site name")
	}

	// Repeated calls are idempotent: still exactly one row.
	if _, err := s.Get(); err != nil {
		t.Fatalf("second Get: %v", err)
	}
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM website_settings").Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("row count = %d, want 1", count)
	}
}

func TestWebsiteSettingPartialUpdateRetainsOtherFields(t *testing.T) {
	db := testDB(t)
	resetWebsiteSettings(t, db)
	s := NewWebsiteSettingStore(db)

	subtitle := "The Subtitle"
	if err := s.UpdateGeneral(GeneralSettings{
		SiteName:      "Acme",
		SiteSubtitle:  &subtitle,
		HomepageRoute: "home",
	}); err != nil {
		t.Fatalf("UpdateGeneral: %v", err)
	}

	text := "Acme Corp"
	year := 2024
	if err := s.UpdateFooter(FooterSettings{CopyrightText: &text, CopyrightYear: &year}); err != nil {
		t.Fatalf("UpdateFooter: %v", err)
	}

	pixel := "<script>pixel</script>"
	if err := s.UpdateScripts(ScriptSettings{MetaPixelScript: &pixel}); err != nil {
		t.Fatalf("UpdateScripts: %v", err)
	}

	// The footer and script updates must not have touched general fields,
	// and vice versa.
	ws, err := s.Get()
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ws.SiteName != "Acme" {
		t.Errorf("site name = %q, want %q", ws.SiteName, "Acme")
	}
	if ws.SiteSubtitle == nil || *ws.SiteSubtitle != subtitle {
		t.Errorf("subtitle lost after unrelated updates")
	}
	if ws.CopyrightText == nil || *ws.CopyrightText != text {
		t.Errorf("copyright text lost after unrelated updates")
	}
	if ws.CopyrightYear == nil || *ws.CopyrightYear != year {
		t.Errorf("copyright year lost after unrelated updates")
	}
	if ws.MetaPixelScript == nil || *ws.MetaPixelScript != pixel {
		t.Errorf("meta pixel script not stored verbatim")
	}
	if ws.HeaderScripts != nil {
		t.Errorf("header scripts = %v, want nil (script update sets whole subset)", *ws.HeaderScripts)
	}
}

func TestWebsiteSettingSetAssetPath(t *testing.T) {
	db := testDB(t)
	resetWebsiteSettings(t, db)
	s := NewWebsiteSettingStore(db)

	if err := s.SetAssetPath(SlotLogo, "website/logo-abc.png"); err != nil {
		t.Fatalf("SetAssetPath logo: %v", err)
	}
	if err := s.SetAssetPath(SlotFavicon, "website/fav-abc.ico"); err != nil {
		t.Fatalf("SetAssetPath favicon: %v", err)
	}

	ws, err := s.Get()
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ws.LogoPath == nil || *ws.LogoPath != "website/logo-abc.png" {
		t.Error("logo path not stored")
	}
	if ws.FaviconPath == nil || *ws.FaviconPath != "website/fav-abc.ico" {
		t.Error("favicon path not stored")
	}
	if ws.DefaultOgImagePath != nil {
		t.Error("og image path should remain nil")
	}

	// Replacing a slot is last-write-wins.
	if err := s.SetAssetPath(SlotLogo, "website/logo-def.png"); err != nil {
		t.Fatalf("SetAssetPath replace: %v", err)
	}
	ws, _ = s.Get()
	if ws.LogoPath == nil || *ws.LogoPath != "website/logo-def.png" {
		t.Error("logo path not replaced")
	}
}

func TestAssetSlotColumnRejectsUnknown(t *testing.T) {
	if _, err := AssetSlot("banner").column(); err == nil {
		t.Error("expected error for unknown slot")
	}
}
