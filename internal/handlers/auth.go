// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/base64"
	"log/slog"
	"net/http"

	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"

	"backoffice/internal/middleware"
	"backoffice/internal/render"
	"backoffice/internal/session"
	"backoffice/internal/store"
)

// Auth groups all authentication-related HTTP handlers. Two-factor
// authentication is optional per user: accounts without an enabled
// authenticator log straight in.
type Auth struct {
	renderer *render.Renderer
	sessions *session.Store
	users    *store.UserStore
	appName  string
}

func NewAuth(renderer *render.Renderer, sessions *session.Store, users *store.UserStore, appName string) *Auth {
	return &Auth{
		renderer: renderer,
		sessions: sessions,
		users:    users,
		appName:  appName,
	}
}

// LoginPage renders the login form.
func (a *Auth) LoginPage(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess != nil && sess.TwoFADone {
		http.Redirect(w, r, "/admin/dashboard", http.StatusSeeOther)
		return
	}

	a.renderer.Render(w, r, "Auth/Login", map[string]any{"title": "Sign In"})
}

type loginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login checks credentials and opens a session. Users with an enabled
// authenticator are half-authenticated until they pass the 2FA challenge.
func (a *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var input loginInput
	if err := decodeJSON(r, &input); err != nil {
		respondInvalid(w, r, map[string]string{"_": "Malformed request body."})
		return
	}
	if err := validate.Struct(input); err != nil {
		respondInvalid(w, r, fieldErrors(err))
		return
	}

	user, err := a.users.FindByEmail(input.Email)
	if err != nil {
		slog.Error("login lookup failed", "error", err)
		respondInvalid(w, r, map[string]string{"email": "An unexpected error occurred."})
		return
	}
	if user == nil || !a.users.CheckPassword(user, input.Password) {
		respondInvalid(w, r, map[string]string{"email": "Invalid email or password."})
		return
	}
	if !user.IsActive() {
		respondInvalid(w, r, map[string]string{"email": "This account is not active."})
		return
	}

	roleNames := make([]string, 0, len(user.Roles))
	for _, role := range user.Roles {
		roleNames = append(roleNames, role.Name)
	}

	_, err = a.sessions.Create(r.Context(), w, &session.Data{
		UserID:    user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Roles:     roleNames,
		TwoFADone: !user.TOTPEnabled,
	})
	if err != nil {
		slog.Error("session create failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if user.TOTPEnabled {
		render.Redirect(w, r, "/admin/2fa")
		return
	}
	render.Redirect(w, r, "/admin/dashboard")
}

// TwoFAPage renders the 2FA challenge for half-authenticated sessions.
func (a *Auth) TwoFAPage(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
		return
	}
	if sess.TwoFADone {
		http.Redirect(w, r, "/admin/dashboard", http.StatusSeeOther)
		return
	}

	a.renderer.Render(w, r, "Auth/TwoFactor", map[string]any{"title": "Two-Factor Authentication"})
}

type totpInput struct {
	Code string `json:"code" validate:"required,len=6,numeric"`
}

// TwoFAVerify validates the TOTP code and completes authentication.
func (a *Auth) TwoFAVerify(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
		return
	}

	var input totpInput
	if err := decodeJSON(r, &input); err != nil {
		respondInvalid(w, r, map[string]string{"_": "Malformed request body."})
		return
	}
	if err := validate.Struct(input); err != nil {
		respondInvalid(w, r, fieldErrors(err))
		return
	}

	user, err := a.users.FindByID(sess.UserID)
	if err != nil || user == nil || user.TOTPSecret == nil {
		slog.Error("user lookup for 2fa failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if !totp.Validate(input.Code, *user.TOTPSecret) {
		respondInvalid(w, r, map[string]string{"code": "Invalid code. Please try again."})
		return
	}

	sess.TwoFADone = true
	if err := a.sessions.Update(r.Context(), r, sess); err != nil {
		slog.Error("session update failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	render.Redirect(w, r, "/admin/dashboard")
}

// TwoFASetup generates a fresh TOTP secret for the signed-in user and
// returns it with a QR code. The authenticator stays disabled until the
// user confirms a code.
func (a *Auth) TwoFASetup(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      a.appName,
		AccountName: sess.Email,
	})
	if err != nil {
		slog.Error("totp generate failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if err := a.users.SetTOTPSecret(sess.UserID, key.Secret()); err != nil {
		slog.Error("save totp secret failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	qrPNG, err := qrcode.Encode(key.URL(), qrcode.Medium, 256)
	if err != nil {
		slog.Error("qr code generation failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	render.JSON(w, http.StatusOK, map[string]string{
		"secret": key.Secret(),
		"qr":     base64.StdEncoding.EncodeToString(qrPNG),
	})
}

// TwoFAConfirm enables the authenticator after the user proves they can
// produce a valid code for the pending secret.
func (a *Auth) TwoFAConfirm(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	var input totpInput
	if err := decodeJSON(r, &input); err != nil {
		respondInvalid(w, r, map[string]string{"_": "Malformed request body."})
		return
	}
	if err := validate.Struct(input); err != nil {
		respondInvalid(w, r, fieldErrors(err))
		return
	}

	user, err := a.users.FindByID(sess.UserID)
	if err != nil || user == nil || user.TOTPSecret == nil {
		respondFailed(w, r, a.sessions, http.StatusUnprocessableEntity, "Set up an authenticator first.", "/admin/dashboard")
		return
	}

	if !totp.Validate(input.Code, *user.TOTPSecret) {
		respondInvalid(w, r, map[string]string{"code": "Invalid code. Please try again."})
		return
	}

	if err := a.users.EnableTOTP(user.ID); err != nil {
		slog.Error("enable totp failed", "error", err)
		respondStorageError(w, r, a.sessions, "/admin/dashboard")
		return
	}

	respondSaved(w, r, a.sessions, "Two-factor authentication enabled.", "/admin/dashboard")
}

// TwoFADisable turns the authenticator off and clears the stored secret.
func (a *Auth) TwoFADisable(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	if err := a.users.ResetTOTP(sess.UserID); err != nil {
		slog.Error("reset totp failed", "error", err)
		respondStorageError(w, r, a.sessions, "/admin/dashboard")
		return
	}

	respondSaved(w, r, a.sessions, "Two-factor authentication disabled.", "/admin/dashboard")
}

// Logout destroys the session and redirects to the login page.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	a.sessions.Destroy(r.Context(), w, r)
	http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
}
