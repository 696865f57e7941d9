// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package props assembles the shared page properties attached to every
// rendered admin page: site settings, the authenticated user summary,
// flash messages, UI state, and the view-component hint.
package props

import "strings"

// componentOverrides maps irregular route names to their component paths.
// Checked before the naming convention below.
var componentOverrides = map[string]string{
	"admin.dashboard":         "Admin/Dashboard/Index",
	"admin.users.index":       "Admin/Users/Index",
	"admin.roles.index":       "Admin/Roles/Index",
	"admin.permissions.index": "Admin/Permissions/Index",
	"admin.email.index":       "Admin/Email/Index",
	"admin.settings.index":    "Admin/Settings/Index",
}

// knownActions are the route actions the convention recognises as the
// third route-name segment.
var knownActions = map[string]bool{
	"index":  true,
	"create": true,
	"edit":   true,
	"show":   true,
}

// MapRouteToComponent resolves a dotted route name to a frontend
// component path, for example "admin.users.index" to "Admin/Users/Index".
// Overrides win; otherwise the convention is <Namespace>/<Resource> from
// the first two segments, plus a recognised action segment (defaulting
// to Index). Returns "" when the name doesn't fit: the hint is advisory
// and the frontend degrades to no component hint.
func MapRouteToComponent(name string) string {
	if component, ok := componentOverrides[name]; ok {
		return component
	}

	parts := strings.Split(name, ".")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return ""
	}

	component := capitalize(parts[0]) + "/" + capitalize(parts[1])
	if len(parts) >= 3 {
		action := strings.ToLower(parts[2])
		if !knownActions[action] {
			return ""
		}
		return component + "/" + capitalize(action)
	}
	return component + "/Index"
}

// capitalize upper-cases the first byte of an ASCII identifier segment.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
