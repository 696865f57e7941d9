// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"backoffice/internal/models"
)

func TestUserStoreAndUpdate(t *testing.T) {
	env := newTestEnv(t)

	adminRole, err := env.RoleStore.FindByName("admin")
	if err != nil || adminRole == nil {
		t.Fatalf("load admin role: %v", err)
	}

	email := "crud-" + uuid.NewString() + "@example.com"
	req := jsonRequest(http.MethodPost, "/admin/users", map[string]any{
		"name":     "New Person",
		"email":    email,
		"password": "long-enough-password",
		"status":   "active",
		"roleIds":  []string{adminRole.ID.String()},
	})
	rec := httptest.NewRecorder()
	env.Users.Store(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("store status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}

	created, err := env.UserStore.FindByEmail(email)
	if err != nil || created == nil {
		t.Fatalf("created user not found: %v", err)
	}
	t.Cleanup(func() { env.UserStore.Delete(created.ID) })

	if !created.HasRole("admin") {
		t.Error("created user should carry the admin role")
	}

	// Update name, status and drop the role assignment.
	update := jsonRequest(http.MethodPut, "/admin/users/"+created.ID.String(), map[string]any{
		"name":    "Renamed Person",
		"email":   email,
		"status":  "inactive",
		"roleIds": []string{},
	})
	update = withChiURLParam(update, "id", created.ID.String())
	rec2 := httptest.NewRecorder()
	env.Users.Update(rec2, update)

	if rec2.Code != http.StatusOK {
		t.Fatalf("update status = %d, want 200 (body %s)", rec2.Code, rec2.Body.String())
	}

	stored, _ := env.UserStore.FindByID(created.ID)
	if stored.Name != "Renamed Person" || stored.Status != models.StatusInactive {
		t.Errorf("update not persisted: name=%q status=%q", stored.Name, stored.Status)
	}
	if len(stored.Roles) != 0 {
		t.Errorf("roles should be cleared, got %d", len(stored.Roles))
	}
}

func TestUserStoreRejectsDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	existing := createTestUser(t, env, models.StatusActive)

	req := jsonRequest(http.MethodPost, "/admin/users", map[string]any{
		"name":     "Copycat",
		"email":    existing.Email,
		"password": "long-enough-password",
		"status":   "active",
	})
	rec := httptest.NewRecorder()
	env.Users.Store(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	var body struct {
		Errors map[string]string `json:"errors"`
	}
	decodeBody(t, rec, &body)
	if body.Errors["email"] == "" {
		t.Errorf("expected an email error, got %v", body.Errors)
	}
}

func TestUserStoreValidation(t *testing.T) {
	env := newTestEnv(t)

	req := jsonRequest(http.MethodPost, "/admin/users", map[string]any{
		"name":     "",
		"email":    "bogus",
		"password": "short",
		"status":   "vanished",
	})
	rec := httptest.NewRecorder()
	env.Users.Store(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	var body struct {
		Errors map[string]string `json:"errors"`
	}
	decodeBody(t, rec, &body)
	for _, field := range []string{"name", "email", "password", "status"} {
		if body.Errors[field] == "" {
			t.Errorf("expected error for %q, got %v", field, body.Errors)
		}
	}
}

func TestUserDestroyBlocksSelfDelete(t *testing.T) {
	env := newTestEnv(t)
	user := createTestUser(t, env, models.StatusActive)

	req := jsonRequest(http.MethodDelete, "/admin/users/"+user.ID.String(), nil)
	req = withChiURLParam(req, "id", user.ID.String())
	req = req.WithContext(ctxWithSession(req.Context(), testSession(user.ID, user.Email, true, "admin")))
	rec := httptest.NewRecorder()
	env.Users.Destroy(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422 (body %s)", rec.Code, rec.Body.String())
	}

	if stored, _ := env.UserStore.FindByID(user.ID); stored == nil {
		t.Error("user must survive a blocked self-delete")
	}
}

func TestUserDestroy(t *testing.T) {
	env := newTestEnv(t)
	actor := createTestUser(t, env, models.StatusActive)
	victim := createTestUser(t, env, models.StatusActive)

	req := jsonRequest(http.MethodDelete, "/admin/users/"+victim.ID.String(), nil)
	req = withChiURLParam(req, "id", victim.ID.String())
	req = req.WithContext(ctxWithSession(req.Context(), testSession(actor.ID, actor.Email, true, "admin")))
	rec := httptest.NewRecorder()
	env.Users.Destroy(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	if stored, _ := env.UserStore.FindByID(victim.ID); stored != nil {
		t.Error("user should be deleted")
	}
}

func TestUserUpdateStatus(t *testing.T) {
	env := newTestEnv(t)
	user := createTestUser(t, env, models.StatusActive)

	req := jsonRequest(http.MethodPatch, "/admin/users/"+user.ID.String()+"/status", map[string]string{"status": "blocked"})
	req = withChiURLParam(req, "id", user.ID.String())
	rec := httptest.NewRecorder()
	env.Users.UpdateStatus(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	stored, _ := env.UserStore.FindByID(user.ID)
	if stored.Status != models.StatusBlocked {
		t.Errorf("status = %q, want blocked", stored.Status)
	}
}

func TestUserNotFound(t *testing.T) {
	env := newTestEnv(t)

	req := jsonRequest(http.MethodPatch, "/admin/users/not-a-uuid/status", map[string]string{"status": "active"})
	req = withChiURLParam(req, "id", "not-a-uuid")
	rec := httptest.NewRecorder()
	env.Users.UpdateStatus(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestRoleLifecycle(t *testing.T) {
	env := newTestEnv(t)

	perms, err := env.Permissions.List()
	if err != nil || len(perms) == 0 {
		t.Fatalf("load permissions: %v", err)
	}

	name := "editors-" + uuid.NewString()[:8]
	req := jsonRequest(http.MethodPost, "/admin/roles", map[string]any{
		"name":          name,
		"permissionIds": []string{perms[0].ID.String()},
	})
	rec := httptest.NewRecorder()
	env.Roles.Store(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("store status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}

	role, err := env.RoleStore.FindByName(name)
	if err != nil || role == nil {
		t.Fatalf("created role not found: %v", err)
	}
	t.Cleanup(func() { env.RoleStore.Delete(role.ID) })

	if len(role.Permissions) != 1 {
		t.Errorf("permissions = %d, want 1", len(role.Permissions))
	}

	// Rename and swap permissions.
	renamed := name + "-renamed"
	update := jsonRequest(http.MethodPut, "/admin/roles/"+role.ID.String(), map[string]any{
		"name":          renamed,
		"permissionIds": []string{},
	})
	update = withChiURLParam(update, "id", role.ID.String())
	rec2 := httptest.NewRecorder()
	env.Roles.Update(rec2, update)

	if rec2.Code != http.StatusOK {
		t.Fatalf("update status = %d, want 200 (body %s)", rec2.Code, rec2.Body.String())
	}
	stored, _ := env.RoleStore.FindByID(role.ID)
	if stored.Name != renamed || len(stored.Permissions) != 0 {
		t.Errorf("update not persisted: name=%q perms=%d", stored.Name, len(stored.Permissions))
	}

	// Delete.
	destroy := jsonRequest(http.MethodDelete, "/admin/roles/"+role.ID.String(), nil)
	destroy = withChiURLParam(destroy, "id", role.ID.String())
	rec3 := httptest.NewRecorder()
	env.Roles.Destroy(rec3, destroy)

	if rec3.Code != http.StatusOK {
		t.Fatalf("destroy status = %d, want 200 (body %s)", rec3.Code, rec3.Body.String())
	}
	if stored, _ := env.RoleStore.FindByID(role.ID); stored != nil {
		t.Error("role should be deleted")
	}
}

func TestSystemRoleProtection(t *testing.T) {
	env := newTestEnv(t)

	admin, err := env.RoleStore.FindByName("admin")
	if err != nil || admin == nil {
		t.Fatalf("load admin role: %v", err)
	}

	// Cannot rename.
	update := jsonRequest(http.MethodPut, "/admin/roles/"+admin.ID.String(), map[string]any{
		"name": "administrator",
	})
	update = withChiURLParam(update, "id", admin.ID.String())
	rec := httptest.NewRecorder()
	env.Roles.Update(rec, update)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("rename status = %d, want 422 (body %s)", rec.Code, rec.Body.String())
	}

	// Cannot delete.
	destroy := jsonRequest(http.MethodDelete, "/admin/roles/"+admin.ID.String(), nil)
	destroy = withChiURLParam(destroy, "id", admin.ID.String())
	rec2 := httptest.NewRecorder()
	env.Roles.Destroy(rec2, destroy)

	if rec2.Code != http.StatusUnprocessableEntity {
		t.Fatalf("delete status = %d, want 422 (body %s)", rec2.Code, rec2.Body.String())
	}
	if stored, _ := env.RoleStore.FindByID(admin.ID); stored == nil {
		t.Fatal("admin role must survive")
	}

	// Permission assignments may still change.
	perms, _ := env.Permissions.List()
	ids := make([]string, 0, len(perms))
	for _, p := range perms {
		ids = append(ids, p.ID.String())
	}
	keep := jsonRequest(http.MethodPut, "/admin/roles/"+admin.ID.String(), map[string]any{
		"name":          "admin",
		"permissionIds": ids,
	})
	keep = withChiURLParam(keep, "id", admin.ID.String())
	rec3 := httptest.NewRecorder()
	env.Roles.Update(rec3, keep)

	if rec3.Code != http.StatusOK {
		t.Fatalf("permission sync status = %d, want 200 (body %s)", rec3.Code, rec3.Body.String())
	}
}

func TestRoleStoreRejectsDuplicateName(t *testing.T) {
	env := newTestEnv(t)

	req := jsonRequest(http.MethodPost, "/admin/roles", map[string]any{"name": "admin"})
	rec := httptest.NewRecorder()
	env.Roles.Store(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
}

func TestPermissionLifecycle(t *testing.T) {
	env := newTestEnv(t)

	name := "manage widgets " + uuid.NewString()[:8]
	req := jsonRequest(http.MethodPost, "/admin/permissions", map[string]string{"name": name})
	rec := httptest.NewRecorder()
	env.Perms.Store(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("store status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}

	perms, _ := env.Permissions.List()
	var id uuid.UUID
	for _, p := range perms {
		if p.Name == name {
			id = p.ID
		}
	}
	if id == uuid.Nil {
		t.Fatal("created permission not found")
	}
	t.Cleanup(func() { env.Permissions.Delete(id) })

	update := jsonRequest(http.MethodPut, "/admin/permissions/"+id.String(), map[string]string{"name": name + " v2"})
	update = withChiURLParam(update, "id", id.String())
	rec2 := httptest.NewRecorder()
	env.Perms.Update(rec2, update)

	if rec2.Code != http.StatusOK {
		t.Fatalf("update status = %d, want 200 (body %s)", rec2.Code, rec2.Body.String())
	}

	destroy := jsonRequest(http.MethodDelete, "/admin/permissions/"+id.String(), nil)
	destroy = withChiURLParam(destroy, "id", id.String())
	rec3 := httptest.NewRecorder()
	env.Perms.Destroy(rec3, destroy)

	if rec3.Code != http.StatusOK {
		t.Fatalf("destroy status = %d, want 200 (body %s)", rec3.Code, rec3.Body.String())
	}
}

func TestVerifyEmailWithSignedLink(t *testing.T) {
	env := newTestEnv(t)
	user := createTestUser(t, env, models.StatusActive)

	link := env.Signer.Link(user.ID)
	req := httptest.NewRequest(http.MethodGet, link, nil)
	req = withChiURLParam(req, "id", user.ID.String())
	rec := httptest.NewRecorder()
	env.Users.VerifyEmail(rec, req)

	if rec.Code != http.StatusSeeOther && rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want redirect (body %s)", rec.Code, rec.Body.String())
	}

	stored, _ := env.UserStore.FindByID(user.ID)
	if stored.EmailVerifiedAt == nil {
		t.Error("user should be verified after following the signed link")
	}
}

func TestVerifyEmailRejectsBadSignature(t *testing.T) {
	env := newTestEnv(t)
	user := createTestUser(t, env, models.StatusActive)

	req := httptest.NewRequest(http.MethodGet, "/verify-email/"+user.ID.String()+"?signature=deadbeef", nil)
	req = withChiURLParam(req, "id", user.ID.String())
	rec := httptest.NewRecorder()
	env.Users.VerifyEmail(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	stored, _ := env.UserStore.FindByID(user.ID)
	if stored.EmailVerifiedAt != nil {
		t.Error("user must stay unverified on a forged signature")
	}
}

func TestAdminResetTwoFA(t *testing.T) {
	env := newTestEnv(t)
	user := createTestUser(t, env, models.StatusActive)

	if err := env.UserStore.SetTOTPSecret(user.ID, "JBSWY3DPEHPK3PXP"); err != nil {
		t.Fatalf("SetTOTPSecret: %v", err)
	}
	if err := env.UserStore.EnableTOTP(user.ID); err != nil {
		t.Fatalf("EnableTOTP: %v", err)
	}

	req := jsonRequest(http.MethodPost, "/admin/users/"+user.ID.String()+"/reset-2fa", nil)
	req = withChiURLParam(req, "id", user.ID.String())
	rec := httptest.NewRecorder()
	env.Users.ResetTwoFA(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	stored, _ := env.UserStore.FindByID(user.ID)
	if stored.TOTPEnabled || stored.TOTPSecret != nil {
		t.Error("reset must clear the authenticator")
	}
}

func TestMarkVerifiedIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	user := createTestUser(t, env, models.StatusActive)

	for i := 0; i < 2; i++ {
		req := jsonRequest(http.MethodPost, "/admin/users/"+user.ID.String()+"/verify", nil)
		req = withChiURLParam(req, "id", user.ID.String())
		rec := httptest.NewRecorder()
		env.Users.MarkVerified(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("pass %d: status = %d, want 200 (body %s)", i, rec.Code, rec.Body.String())
		}
	}
}
