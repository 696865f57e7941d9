// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"

	"backoffice/internal/mailer"
	"backoffice/internal/models"
	"backoffice/internal/render"
	"backoffice/internal/session"
	"backoffice/internal/store"
)

// Email serves the mail settings page, updates, and the test-send action.
type Email struct {
	renderer *render.Renderer
	sessions *session.Store
	settings *store.EmailSettingStore
	mail     *mailer.Mailer
}

func NewEmail(renderer *render.Renderer, sessions *session.Store, settings *store.EmailSettingStore, mail *mailer.Mailer) *Email {
	return &Email{
		renderer: renderer,
		sessions: sessions,
		settings: settings,
		mail:     mail,
	}
}

// Show renders the email settings page. The stored password is never
// echoed back to the client.
func (h *Email) Show(w http.ResponseWriter, r *http.Request) {
	setting, err := h.settings.Get()
	if err != nil {
		slog.Error("load email settings failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	setting.MailPassword = nil

	h.renderer.Render(w, r, "Admin/Email/Index", map[string]any{
		"title":    "Email Settings",
		"settings": setting,
	})
}

type emailSettingsInput struct {
	MailDriver           string  `json:"mailDriver" validate:"required,oneof=smtp log"`
	MailHost             *string `json:"mailHost" validate:"required_if=MailDriver smtp"`
	MailPort             *string `json:"mailPort" validate:"required_if=MailDriver smtp,omitempty,numeric"`
	MailUsername         *string `json:"mailUsername" validate:"required_if=MailDriver smtp"`
	MailPassword         *string `json:"mailPassword"`
	MailEncryption       *string `json:"mailEncryption" validate:"omitempty,oneof=none tls starttls ssl smtps"`
	MailFromAddress      string  `json:"mailFromAddress" validate:"required,email"`
	MailFromName         string  `json:"mailFromName" validate:"required,max=255"`
	EnableVerification   bool    `json:"enableVerification"`
	VerificationTemplate *string `json:"verificationTemplate"`
}

// Update persists the full mail configuration. The mailer reads the row
// fresh on every send, so the new transport takes effect immediately.
// An omitted password keeps the stored one.
func (h *Email) Update(w http.ResponseWriter, r *http.Request) {
	var input emailSettingsInput
	if err := decodeJSON(r, &input); err != nil {
		respondInvalid(w, r, map[string]string{"_": "Malformed request body."})
		return
	}

	// Normalise blanks before the required_if checks so "" counts as
	// missing, not provided.
	input.MailHost = emptyToNil(input.MailHost)
	input.MailPort = emptyToNil(input.MailPort)
	input.MailUsername = emptyToNil(input.MailUsername)
	input.MailPassword = emptyToNil(input.MailPassword)
	input.MailEncryption = emptyToNil(input.MailEncryption)

	if err := validate.Struct(input); err != nil {
		respondInvalid(w, r, fieldErrors(err))
		return
	}

	password := input.MailPassword
	if password == nil {
		current, err := h.settings.Get()
		if err != nil {
			slog.Error("load email settings failed", "error", err)
			respondStorageError(w, r, h.sessions, "/admin/email")
			return
		}
		password = current.MailPassword
	}

	err := h.settings.Update(&models.EmailSetting{
		MailDriver:           input.MailDriver,
		MailHost:             input.MailHost,
		MailPort:             input.MailPort,
		MailUsername:         input.MailUsername,
		MailPassword:         password,
		MailEncryption:       input.MailEncryption,
		MailFromAddress:      input.MailFromAddress,
		MailFromName:         input.MailFromName,
		EnableVerification:   input.EnableVerification,
		VerificationTemplate: emptyToNil(input.VerificationTemplate),
	})
	if err != nil {
		slog.Error("update email settings failed", "error", err)
		respondStorageError(w, r, h.sessions, "/admin/email")
		return
	}

	respondSaved(w, r, h.sessions, "Email settings saved.", "/admin/email")
}

type testEmailInput struct {
	To string `json:"to" validate:"required,email"`
}

// SendTest sends a fixed-body test message to the given address using the
// stored settings, without altering them. Send failures are reported to
// the caller and never retried.
func (h *Email) SendTest(w http.ResponseWriter, r *http.Request) {
	var input testEmailInput
	if err := decodeJSON(r, &input); err != nil {
		respondInvalid(w, r, map[string]string{"_": "Malformed request body."})
		return
	}
	if err := validate.Struct(input); err != nil {
		respondInvalid(w, r, fieldErrors(err))
		return
	}

	if err := h.mail.SendTest(r.Context(), input.To); err != nil {
		slog.Error("test email failed", "to", input.To, "error", err)
		respondFailed(w, r, h.sessions, http.StatusBadGateway, "Test email could not be sent: "+err.Error(), "/admin/email")
		return
	}

	respondSaved(w, r, h.sessions, "Test email sent to "+input.To+".", "/admin/email")
}
