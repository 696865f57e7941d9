// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"backoffice/internal/mailer"
	"backoffice/internal/middleware"
	"backoffice/internal/models"
	"backoffice/internal/render"
	"backoffice/internal/session"
	"backoffice/internal/store"
)

// usersPerPage is the page size for the user listing.
const usersPerPage = 25

// Users serves the user management pages and lifecycle actions.
type Users struct {
	renderer *render.Renderer
	sessions *session.Store
	users    *store.UserStore
	roles    *store.RoleStore
	mail     *mailer.Mailer
	signer   *VerificationSigner
}

func NewUsers(renderer *render.Renderer, sessions *session.Store, users *store.UserStore, roles *store.RoleStore, mail *mailer.Mailer, signer *VerificationSigner) *Users {
	return &Users{
		renderer: renderer,
		sessions: sessions,
		users:    users,
		roles:    roles,
		mail:     mail,
		signer:   signer,
	}
}

// Index renders the paginated user list with the available roles for the
// assignment form.
func (h *Users) Index(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}

	users, err := h.users.List(usersPerPage, (page-1)*usersPerPage)
	if err != nil {
		slog.Error("list users failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	total, err := h.users.Count()
	if err != nil {
		slog.Error("count users failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	roles, err := h.roles.List()
	if err != nil {
		slog.Error("list roles failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.renderer.Render(w, r, "Admin/Users/Index", map[string]any{
		"title": "Users",
		"users": users,
		"roles": roles,
		"page":  page,
		"total": total,
	})
}

type createUserInput struct {
	Name     string      `json:"name" validate:"required,max=255"`
	Email    string      `json:"email" validate:"required,email,max=255"`
	Password string      `json:"password" validate:"required,min=8"`
	Status   string      `json:"status" validate:"required,oneof=active inactive blocked rejected"`
	RoleIDs  []uuid.UUID `json:"roleIds"`
}

// Store creates a user with the given roles and sends the verification
// email when verification is enabled. The send failure never rolls back
// the created user.
func (h *Users) Store(w http.ResponseWriter, r *http.Request) {
	var input createUserInput
	if err := decodeJSON(r, &input); err != nil {
		respondInvalid(w, r, map[string]string{"_": "Malformed request body."})
		return
	}
	if err := validate.Struct(input); err != nil {
		respondInvalid(w, r, fieldErrors(err))
		return
	}

	if existing, err := h.users.FindByEmail(input.Email); err == nil && existing != nil {
		respondInvalid(w, r, map[string]string{"email": "This email address is already in use."})
		return
	}

	user, err := h.users.Create(input.Name, input.Email, input.Password, models.UserStatus(input.Status), input.RoleIDs)
	if err != nil {
		slog.Error("create user failed", "error", err)
		respondStorageError(w, r, h.sessions, "/admin/users")
		return
	}

	if err := h.mail.SendVerification(r.Context(), user, h.signer.Link(user.ID)); err != nil {
		slog.Error("verification email failed", "user", user.ID, "error", err)
	}

	respondSaved(w, r, h.sessions, "User created.", "/admin/users")
}

type updateUserInput struct {
	Name     string      `json:"name" validate:"required,max=255"`
	Email    string      `json:"email" validate:"required,email,max=255"`
	Password string      `json:"password" validate:"omitempty,min=8"`
	Status   string      `json:"status" validate:"required,oneof=active inactive blocked rejected"`
	RoleIDs  []uuid.UUID `json:"roleIds"`
}

// Update edits a user. An empty password keeps the current one.
func (h *Users) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.userID(w, r)
	if !ok {
		return
	}

	var input updateUserInput
	if err := decodeJSON(r, &input); err != nil {
		respondInvalid(w, r, map[string]string{"_": "Malformed request body."})
		return
	}
	if err := validate.Struct(input); err != nil {
		respondInvalid(w, r, fieldErrors(err))
		return
	}

	if existing, err := h.users.FindByEmail(input.Email); err == nil && existing != nil && existing.ID != id {
		respondInvalid(w, r, map[string]string{"email": "This email address is already in use."})
		return
	}

	if err := h.users.Update(id, input.Name, input.Email, models.UserStatus(input.Status), input.Password); err != nil {
		slog.Error("update user failed", "user", id, "error", err)
		respondStorageError(w, r, h.sessions, "/admin/users")
		return
	}
	if err := h.users.SyncRoles(id, input.RoleIDs); err != nil {
		slog.Error("sync user roles failed", "user", id, "error", err)
		respondStorageError(w, r, h.sessions, "/admin/users")
		return
	}

	respondSaved(w, r, h.sessions, "User updated.", "/admin/users")
}

// Destroy deletes a user. Admins cannot delete their own account.
func (h *Users) Destroy(w http.ResponseWriter, r *http.Request) {
	id, ok := h.userID(w, r)
	if !ok {
		return
	}

	if sess := middleware.SessionFromCtx(r.Context()); sess != nil && sess.UserID == id {
		respondFailed(w, r, h.sessions, http.StatusUnprocessableEntity, "You cannot delete your own account.", "/admin/users")
		return
	}

	if err := h.users.Delete(id); err != nil {
		slog.Error("delete user failed", "user", id, "error", err)
		respondStorageError(w, r, h.sessions, "/admin/users")
		return
	}

	respondSaved(w, r, h.sessions, "User deleted.", "/admin/users")
}

type statusInput struct {
	Status string `json:"status" validate:"required,oneof=active inactive blocked rejected"`
}

// UpdateStatus changes only the user's lifecycle status.
func (h *Users) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.userID(w, r)
	if !ok {
		return
	}

	var input statusInput
	if err := decodeJSON(r, &input); err != nil {
		respondInvalid(w, r, map[string]string{"_": "Malformed request body."})
		return
	}
	if err := validate.Struct(input); err != nil {
		respondInvalid(w, r, fieldErrors(err))
		return
	}

	if err := h.users.UpdateStatus(id, models.UserStatus(input.Status)); err != nil {
		slog.Error("update user status failed", "user", id, "error", err)
		respondStorageError(w, r, h.sessions, "/admin/users")
		return
	}

	respondSaved(w, r, h.sessions, "Status updated.", "/admin/users")
}

// ResendVerification sends a fresh verification email to an unverified user.
func (h *Users) ResendVerification(w http.ResponseWriter, r *http.Request) {
	id, ok := h.userID(w, r)
	if !ok {
		return
	}

	user, err := h.users.FindByID(id)
	if err != nil || user == nil {
		respondFailed(w, r, h.sessions, http.StatusNotFound, "User not found.", "/admin/users")
		return
	}
	if user.IsVerified() {
		respondFailed(w, r, h.sessions, http.StatusUnprocessableEntity, "This user is already verified.", "/admin/users")
		return
	}

	if err := h.mail.SendVerification(r.Context(), user, h.signer.Link(user.ID)); err != nil {
		slog.Error("verification email failed", "user", user.ID, "error", err)
		respondFailed(w, r, h.sessions, http.StatusBadGateway, "Verification email could not be sent.", "/admin/users")
		return
	}

	respondSaved(w, r, h.sessions, "Verification email sent.", "/admin/users")
}

// MarkVerified marks the user's email as verified without a round trip
// through their inbox. Idempotent.
func (h *Users) MarkVerified(w http.ResponseWriter, r *http.Request) {
	id, ok := h.userID(w, r)
	if !ok {
		return
	}

	if err := h.users.MarkVerified(id); err != nil {
		slog.Error("mark verified failed", "user", id, "error", err)
		respondStorageError(w, r, h.sessions, "/admin/users")
		return
	}

	respondSaved(w, r, h.sessions, "User marked as verified.", "/admin/users")
}

// ResetTwoFA clears a user's authenticator so they can enroll again.
func (h *Users) ResetTwoFA(w http.ResponseWriter, r *http.Request) {
	id, ok := h.userID(w, r)
	if !ok {
		return
	}

	if err := h.users.ResetTOTP(id); err != nil {
		slog.Error("reset 2fa failed", "user", id, "error", err)
		respondStorageError(w, r, h.sessions, "/admin/users")
		return
	}

	respondSaved(w, r, h.sessions, "Two-factor authentication reset.", "/admin/users")
}

// VerifyEmail is the public landing endpoint for verification links.
func (h *Users) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid verification link", http.StatusBadRequest)
		return
	}
	if !h.signer.Valid(id, r.URL.Query().Get("signature")) {
		http.Error(w, "Invalid verification link", http.StatusForbidden)
		return
	}

	if err := h.users.MarkVerified(id); err != nil {
		slog.Error("verify email failed", "user", id, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
}

// userID parses the {id} route parameter, responding 404 on garbage.
func (h *Users) userID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondFailed(w, r, h.sessions, http.StatusNotFound, "User not found.", "/admin/users")
		return uuid.Nil, false
	}
	return id, true
}
