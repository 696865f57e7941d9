// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler integration
// tests. Tests are skipped when PostgreSQL or Valkey are unavailable.
package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"

	"backoffice/internal/assets"
	"backoffice/internal/database"
	"backoffice/internal/mailer"
	"backoffice/internal/middleware"
	"backoffice/internal/props"
	"backoffice/internal/render"
	"backoffice/internal/session"
	"backoffice/internal/store"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test PostgreSQL and runs migrations.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "backoffice")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "backoffice")
	dsn := "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}
	goose.SetBaseFS(nil)

	if err := database.Seed(db); err != nil {
		db.Close()
		t.Fatalf("seed: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

// testValkeyClient returns a Redis client for handler tests on DB 15.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")
	password := os.Getenv("VALKEY_PASSWORD")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: password,
		DB:       15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		keys, _ := client.Keys(ctx, "session:*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})

	return client
}

// testEnv holds all dependencies for handler integration tests.
type testEnv struct {
	DB          *sql.DB
	Valkey      *redis.Client
	Renderer    *render.Renderer
	Sessions    *session.Store
	Websites    *store.WebsiteSettingStore
	Emails      *store.EmailSettingStore
	UserStore   *store.UserStore
	RoleStore   *store.RoleStore
	Permissions *store.PermissionStore
	Signer      *VerificationSigner
	Settings    *Settings
	Email       *Email
	Users       *Users
	Roles       *Roles
	Perms       *Permissions
	Dashboard   *Dashboard
	Auth        *Auth
}

// newTestEnv creates a complete test environment with all handler dependencies.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testDB(t)
	vk := testValkeyClient(t)

	sessions := session.NewStore(vk, false)
	websiteStore := store.NewWebsiteSettingStore(db)
	emailStore := store.NewEmailSettingStore(db)
	userStore := store.NewUserStore(db)
	roleStore := store.NewRoleStore(db)
	permissionStore := store.NewPermissionStore(db)

	resolver := assets.NewResolver(nil)
	shared := props.NewBuilder(websiteStore, resolver, userStore, sessions, "Backoffice", "test")
	renderer, err := render.New(shared, "test")
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}

	mail := mailer.New(emailStore, "Backoffice")
	signer := NewVerificationSigner("test-secret", "http://localhost:8080")

	return &testEnv{
		DB:          db,
		Valkey:      vk,
		Renderer:    renderer,
		Sessions:    sessions,
		Websites:    websiteStore,
		Emails:      emailStore,
		UserStore:   userStore,
		RoleStore:   roleStore,
		Permissions: permissionStore,
		Signer:      signer,
		Settings:    NewSettings(renderer, sessions, websiteStore, resolver),
		Email:       NewEmail(renderer, sessions, emailStore, mail),
		Users:       NewUsers(renderer, sessions, userStore, roleStore, mail, signer),
		Roles:       NewRoles(renderer, sessions, roleStore, permissionStore),
		Perms:       NewPermissions(renderer, sessions, permissionStore),
		Dashboard:   NewDashboard(renderer, userStore, roleStore),
		Auth:        NewAuth(renderer, sessions, userStore, "Backoffice"),
	}
}

// ctxWithSession adds session data to a context using the middleware key.
func ctxWithSession(ctx context.Context, data *session.Data) context.Context {
	return context.WithValue(ctx, middleware.SessionKey, data)
}

// testSession creates a session.Data for testing.
func testSession(userID uuid.UUID, email string, twoFADone bool, roles ...string) *session.Data {
	return &session.Data{
		UserID:    userID,
		Email:     email,
		Name:      "Test User",
		Roles:     roles,
		TwoFADone: twoFADone,
	}
}

// withChiURLParam adds a chi URL parameter to a request.
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// jsonRequest builds a JSON request that negotiates a JSON response.
func jsonRequest(method, target string, body any) *http.Request {
	var reader *strings.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = strings.NewReader(string(raw))
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return req
}

// decodeBody unmarshals a recorded JSON response body.
func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode response body: %v (body %q)", err, rec.Body.String())
	}
}
