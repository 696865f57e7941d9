// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package props

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"backoffice/internal/middleware"
	"backoffice/internal/models"
	"backoffice/internal/session"
)

// SidebarCookie carries the client's sidebar-open preference.
const SidebarCookie = "sidebar_state"

// WebsiteSettingsSource provides the current website settings row.
type WebsiteSettingsSource interface {
	Get() (*models.WebsiteSetting, error)
}

// AssetURLResolver maps a stored asset key to its public URL.
type AssetURLResolver interface {
	URL(path *string) *string
}

// UserSource looks up the authenticated user and their effective
// permissions for the auth projection.
type UserSource interface {
	FindByID(id uuid.UUID) (*models.User, error)
	PermissionNames(id uuid.UUID) ([]string, error)
}

// Builder assembles the shared props for every rendered page. Each
// sub-step is independently fault-tolerant: a failing settings read,
// user lookup, or flash pop falls back to a safe default instead of
// failing the request.
type Builder struct {
	settings WebsiteSettingsSource
	assets   AssetURLResolver
	users    UserSource
	sessions *session.Store
	appName  string
	version  string
}

// NewBuilder wires the shared-props builder. appName stands in for the
// site name whenever the settings row cannot be read.
func NewBuilder(settings WebsiteSettingsSource, assets AssetURLResolver, users UserSource, sessions *session.Store, appName, version string) *Builder {
	return &Builder{
		settings: settings,
		assets:   assets,
		users:    users,
		sessions: sessions,
		appName:  appName,
		version:  version,
	}
}

// Build constructs the shared props for the request. The result is
// attached to every page regardless of route and never blocks
// route-specific data fetching.
func (b *Builder) Build(r *http.Request) map[string]any {
	shared := map[string]any{
		"quote":       quoteProps(randomQuote()),
		"sidebarOpen": SidebarOpen(r),
		"csrf":        middleware.GetCSRFToken(r),
		"version":     b.version,
	}

	if setting, err := b.settings.Get(); err == nil {
		shared["websiteSettings"] = b.settingProps(setting)
		shared["copyright"] = setting.FullCopyright()
	} else {
		shared["websiteSettings"] = b.fallbackSettingProps()
		shared["copyright"] = fmt.Sprintf("%d © %s", time.Now().Year(), b.appName)
	}

	shared["auth"] = map[string]any{"user": b.userProps(r)}
	shared["flash"] = b.flashProps(r)

	if component := b.componentPath(r); component != "" {
		shared["componentPath"] = component
	} else {
		shared["componentPath"] = nil
	}

	return shared
}

// settingProps projects the settings row into a map carrying every value
// under both its snake_case key and a camelCase alias, for older frontend
// code that still reads the legacy casing.
func (b *Builder) settingProps(setting *models.WebsiteSetting) map[string]any {
	snake := map[string]any{
		"site_name":            setting.SiteName,
		"site_subtitle":        setting.SiteSubtitle,
		"site_description":     setting.SiteDescription,
		"contact_email":        setting.ContactEmail,
		"homepage_route":       setting.HomepageRoute,
		"copyright_text":       setting.CopyrightText,
		"copyright_year":       setting.CopyrightYear,
		"logo_url":             b.assets.URL(setting.LogoPath),
		"favicon_url":          b.assets.URL(setting.FaviconPath),
		"default_og_image_url": b.assets.URL(setting.DefaultOgImagePath),
	}

	out := make(map[string]any, len(snake)*2)
	for k, v := range snake {
		out[k] = v
		out[snakeToCamel(k)] = v
	}
	return out
}

// fallbackSettingProps stands in for settingProps when the settings row
// cannot be read: the app name as site name, everything else empty. The
// frontend always sees a websiteSettings object.
func (b *Builder) fallbackSettingProps() map[string]any {
	snake := map[string]any{
		"site_name":            b.appName,
		"site_subtitle":        "",
		"site_description":     "",
		"contact_email":        "",
		"homepage_route":       "",
		"copyright_text":       "",
		"copyright_year":       nil,
		"logo_url":             nil,
		"favicon_url":          nil,
		"default_og_image_url": nil,
	}

	out := make(map[string]any, len(snake)*2)
	for k, v := range snake {
		out[k] = v
		out[snakeToCamel(k)] = v
	}
	return out
}

// userProps builds the auth.user projection. A failing lookup degrades
// to the minimal identity carried in the session rather than erroring.
func (b *Builder) userProps(r *http.Request) any {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		return nil
	}

	minimal := map[string]any{
		"id":    sess.UserID,
		"name":  sess.Name,
		"email": sess.Email,
	}

	user, err := b.users.FindByID(sess.UserID)
	if err != nil || user == nil {
		return minimal
	}

	roles := make([]map[string]any, 0, len(user.Roles))
	for _, role := range user.Roles {
		roles = append(roles, map[string]any{"id": role.ID, "name": role.Name})
	}

	permissions, err := b.users.PermissionNames(user.ID)
	if err != nil {
		permissions = nil
	}

	return map[string]any{
		"id":                user.ID,
		"name":              user.Name,
		"email":             user.Email,
		"email_verified_at": user.EmailVerifiedAt,
		"avatar_url":        b.assets.URL(user.AvatarPath),
		"is_active":         user.IsActive(),
		"roles":             roles,
		"permissions":       permissions,
	}
}

// flashProps pops the session flash. The success text is exposed under
// both "success" and the legacy "message" key older frontend code reads.
// Losing a flash message on error is acceptable; failing the page is not.
func (b *Builder) flashProps(r *http.Request) map[string]any {
	out := map[string]any{"message": nil, "success": nil, "error": nil}
	if b.sessions == nil {
		return out
	}
	flash, err := b.sessions.PopFlash(r.Context(), r)
	if err != nil {
		return out
	}
	if flash.Success != "" {
		out["message"] = flash.Success
		out["success"] = flash.Success
	}
	if flash.Error != "" {
		out["error"] = flash.Error
	}
	return out
}

// componentPath prefers an explicit client-supplied component hint and
// falls back to mapping the current route name.
func (b *Builder) componentPath(r *http.Request) string {
	if component := r.Header.Get("X-Inertia-Component"); component != "" {
		return component
	}
	if component := r.URL.Query().Get("component"); component != "" {
		return component
	}
	return MapRouteToComponent(RouteName(r.Context()))
}

// SidebarOpen resolves the sidebar state from the client cookie. An
// absent cookie means open; a present cookie is parsed permissively,
// with unrecognised values treated as closed.
func SidebarOpen(r *http.Request) bool {
	cookie, err := r.Cookie(SidebarCookie)
	if err != nil {
		return true
	}
	switch strings.ToLower(strings.TrimSpace(cookie.Value)) {
	case "1", "true", "on", "yes":
		return true
	default:
		return false
	}
}

// snakeToCamel converts a snake_case key to its camelCase alias.
func snakeToCamel(s string) string {
	parts := strings.Split(s, "_")
	for i := 1; i < len(parts); i++ {
		parts[i] = capitalize(parts[i])
	}
	return strings.Join(parts, "")
}
