// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"backoffice/internal/models"
)

func TestUpdateGeneralSettings(t *testing.T) {
	env := newTestEnv(t)

	req := jsonRequest(http.MethodPut, "/admin/settings/general", map[string]any{
		"siteName":      "Integration Site",
		"siteSubtitle":  "A subtitle",
		"contactEmail":  "hello@example.com",
		"homepageRoute": "/welcome",
	})
	rec := httptest.NewRecorder()
	env.Settings.UpdateGeneral(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}

	setting, err := env.Websites.Get()
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if setting.SiteName != "Integration Site" {
		t.Errorf("SiteName = %q", setting.SiteName)
	}
	if setting.SiteSubtitle == nil || *setting.SiteSubtitle != "A subtitle" {
		t.Errorf("SiteSubtitle = %v", setting.SiteSubtitle)
	}
	if setting.HomepageRoute != "/welcome" {
		t.Errorf("HomepageRoute = %q", setting.HomepageRoute)
	}
	// Omitted optional fields clear to NULL.
	if setting.SiteDescription != nil {
		t.Errorf("SiteDescription should be nil, got %v", *setting.SiteDescription)
	}
}

func TestUpdateGeneralSettingsValidation(t *testing.T) {
	env := newTestEnv(t)

	req := jsonRequest(http.MethodPut, "/admin/settings/general", map[string]any{
		"siteName":     "",
		"contactEmail": "not-an-email",
	})
	rec := httptest.NewRecorder()
	env.Settings.UpdateGeneral(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	var body struct {
		Errors map[string]string `json:"errors"`
	}
	decodeBody(t, rec, &body)
	if body.Errors["siteName"] == "" || body.Errors["contactEmail"] == "" {
		t.Errorf("expected siteName and contactEmail errors, got %v", body.Errors)
	}
}

func TestUpdateFooterSettings(t *testing.T) {
	env := newTestEnv(t)

	req := jsonRequest(http.MethodPut, "/admin/settings/footer", map[string]any{
		"copyrightText": "Acme Inc",
		"copyrightYear": 2026,
	})
	rec := httptest.NewRecorder()
	env.Settings.UpdateFooter(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}

	setting, _ := env.Websites.Get()
	if setting.CopyrightText == nil || *setting.CopyrightText != "Acme Inc" {
		t.Errorf("CopyrightText = %v", setting.CopyrightText)
	}
	if setting.CopyrightYear == nil || *setting.CopyrightYear != 2026 {
		t.Errorf("CopyrightYear = %v", setting.CopyrightYear)
	}
}

func TestUpdateFooterRejectsImplausibleYear(t *testing.T) {
	env := newTestEnv(t)

	req := jsonRequest(http.MethodPut, "/admin/settings/footer", map[string]any{"copyrightYear": 1850})
	rec := httptest.NewRecorder()
	env.Settings.UpdateFooter(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
}

func TestUpdateScriptSettingsStoredVerbatim(t *testing.T) {
	env := newTestEnv(t)

	pixel := `<script>fbq('init', '123');</script>`
	req := jsonRequest(http.MethodPut, "/admin/settings/scripts", map[string]any{
		"metaPixelScript": pixel,
		"footerScripts":   "<script>console.log('footer')</script>",
	})
	rec := httptest.NewRecorder()
	env.Settings.UpdateScripts(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}

	setting, _ := env.Websites.Get()
	if setting.MetaPixelScript == nil || *setting.MetaPixelScript != pixel {
		t.Errorf("MetaPixelScript = %v, want stored unmodified", setting.MetaPixelScript)
	}
	if setting.GoogleTagScript != nil {
		t.Error("omitted script slots should clear to NULL")
	}
}

func TestUploadLogoWithoutStorage(t *testing.T) {
	env := newTestEnv(t)

	var buf strings.Builder
	boundary := "testboundary"
	buf.WriteString("--" + boundary + "\r\n")
	buf.WriteString("Content-Disposition: form-data; name=\"logo\"; filename=\"logo.png\"\r\n")
	buf.WriteString("Content-Type: image/png\r\n\r\n")
	buf.WriteString("\x89PNG\r\n\x1a\n fake image bytes")
	buf.WriteString("\r\n--" + boundary + "--\r\n")

	req := httptest.NewRequest(http.MethodPost, "/admin/settings/logo", strings.NewReader(buf.String()))
	req.Header.Set("Content-Type", "multipart/form-data; boundary="+boundary)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	env.Settings.UploadLogo(rec, req)

	// The test environment has no object storage configured.
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503 (body %s)", rec.Code, rec.Body.String())
	}
}

func TestEmailSettingsUpdate(t *testing.T) {
	env := newTestEnv(t)

	req := jsonRequest(http.MethodPut, "/admin/settings/email", map[string]any{
		"mailDriver":      "smtp",
		"mailHost":        "smtp.example.com",
		"mailPort":        "587",
		"mailUsername":    "mailer",
		"mailPassword":    "mail-secret",
		"mailEncryption":  "starttls",
		"mailFromAddress": "no-reply@example.com",
		"mailFromName":    "Integration",
	})
	rec := httptest.NewRecorder()
	env.Email.Update(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}

	setting, err := env.Emails.Get()
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if setting.MailDriver != "smtp" {
		t.Errorf("MailDriver = %q", setting.MailDriver)
	}
	if setting.MailHost == nil || *setting.MailHost != "smtp.example.com" {
		t.Errorf("MailHost = %v", setting.MailHost)
	}
	if setting.MailPassword == nil || *setting.MailPassword != "mail-secret" {
		t.Errorf("MailPassword not stored")
	}

	// A second update without a password keeps the stored one.
	req2 := jsonRequest(http.MethodPut, "/admin/settings/email", map[string]any{
		"mailDriver":      "smtp",
		"mailHost":        "smtp2.example.com",
		"mailPort":        "465",
		"mailUsername":    "mailer",
		"mailEncryption":  "ssl",
		"mailFromAddress": "no-reply@example.com",
		"mailFromName":    "Integration",
	})
	rec2 := httptest.NewRecorder()
	env.Email.Update(rec2, req2)

	if rec2.Code != http.StatusOK {
		t.Fatalf("second update status = %d (body %s)", rec2.Code, rec2.Body.String())
	}
	setting, _ = env.Emails.Get()
	if setting.MailHost == nil || *setting.MailHost != "smtp2.example.com" {
		t.Errorf("MailHost = %v after second update", setting.MailHost)
	}
	if setting.MailPassword == nil || *setting.MailPassword != "mail-secret" {
		t.Error("omitting the password must keep the stored value")
	}

	// Switch back to the log driver so other tests are not affected.
	reset := jsonRequest(http.MethodPut, "/admin/settings/email", map[string]any{
		"mailDriver":      "log",
		"mailFromAddress": "no-reply@example.com",
		"mailFromName":    "Integration",
	})
	env.Email.Update(httptest.NewRecorder(), reset)
}

func TestEmailSettingsRequireHostForSMTP(t *testing.T) {
	env := newTestEnv(t)

	req := jsonRequest(http.MethodPut, "/admin/settings/email", map[string]any{
		"mailDriver":      "smtp",
		"mailFromAddress": "no-reply@example.com",
		"mailFromName":    "Integration",
	})
	rec := httptest.NewRecorder()
	env.Email.Update(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	var body struct {
		Errors map[string]string `json:"errors"`
	}
	decodeBody(t, rec, &body)
	if body.Errors["mailHost"] == "" {
		t.Errorf("expected mailHost error, got %v", body.Errors)
	}
}

func TestSendTestEmailWithLogDriver(t *testing.T) {
	env := newTestEnv(t)

	req := jsonRequest(http.MethodPost, "/admin/settings/email/test", map[string]string{"to": "probe@example.com"})
	rec := httptest.NewRecorder()
	env.Email.SendTest(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
}

func TestFlashMessageReachesNextPage(t *testing.T) {
	env := newTestEnv(t)
	user := createTestUser(t, env, models.StatusActive)

	rec := httptest.NewRecorder()
	if _, err := env.Sessions.Create(context.Background(), rec, testSession(user.ID, user.Email, true, "admin")); err != nil {
		t.Fatalf("create session: %v", err)
	}
	cookie := sessionCookie(rec)
	if cookie == nil {
		t.Fatal("expected a session cookie")
	}

	// A page navigation (no JSON negotiation) gets a flash + redirect.
	body, _ := json.Marshal(map[string]any{"copyrightText": "Flash Co", "copyrightYear": 2026})
	save := httptest.NewRequest(http.MethodPut, "/admin/settings/footer", bytes.NewReader(body))
	save.Header.Set("Content-Type", "application/json")
	save.AddCookie(cookie)
	rec2 := httptest.NewRecorder()
	env.Settings.UpdateFooter(rec2, save)

	if rec2.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303 (body %s)", rec2.Code, rec2.Body.String())
	}

	// The next rendered page carries the message in all flash slots.
	page := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	page.Header.Set("X-Inertia", "true")
	page.Header.Set("X-Inertia-Version", "test")
	page.AddCookie(cookie)
	rec3 := httptest.NewRecorder()
	env.Dashboard.Index(rec3, page)

	var rendered struct {
		Props struct {
			Flash map[string]any `json:"flash"`
		} `json:"props"`
	}
	decodeBody(t, rec3, &rendered)
	if rendered.Props.Flash["message"] != "Footer settings saved." {
		t.Errorf("flash.message = %v", rendered.Props.Flash["message"])
	}
	if rendered.Props.Flash["success"] != "Footer settings saved." {
		t.Errorf("flash.success = %v", rendered.Props.Flash["success"])
	}
}

func TestDashboardIndex(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	req.Header.Set("X-Inertia", "true")
	req.Header.Set("X-Inertia-Version", "test")
	rec := httptest.NewRecorder()
	env.Dashboard.Index(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	var page struct {
		Component string         `json:"component"`
		Props     map[string]any `json:"props"`
	}
	decodeBody(t, rec, &page)
	if page.Component != "Admin/Dashboard/Index" {
		t.Errorf("component = %q", page.Component)
	}
	if _, ok := page.Props["stats"]; !ok {
		t.Error("expected stats in props")
	}
}

func TestSettingsShowMasksNothingButEmailPassword(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/admin/settings/email", nil)
	req.Header.Set("X-Inertia", "true")
	req.Header.Set("X-Inertia-Version", "test")
	rec := httptest.NewRecorder()
	env.Email.Show(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "mail-secret") {
		t.Error("stored SMTP password must never reach the client")
	}
}
