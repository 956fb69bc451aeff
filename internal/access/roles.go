// Copyright (c) 2026 Sitepanel Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package access

import (
	"context"

	"github.com/sitepanel/sitepanel-go/internal/model"
)

// RoleChecker grants permissions from a static role table. Admins hold
// every permission; other roles hold only what the table lists.
type RoleChecker struct {
	grants map[string]map[string]bool
}

// NewRoleChecker builds the default role table. Editors manage content but
// cannot permanently erase it or restore from trash.
func NewRoleChecker() *RoleChecker {
	editor := make(map[string]bool)
	for _, entity := range []string{
		EntitySection, EntityPage, EntityMenu, EntityMenuItem,
		EntityBanner, EntityBannerPosition,
	} {
		for _, action := range []string{
			ActionViewAny, ActionView, ActionCreate, ActionUpdate,
			ActionDelete, ActionDeleteAny,
		} {
			editor[Permission(action, entity)] = true
		}
	}
	return &RoleChecker{grants: map[string]map[string]bool{
		model.RoleEditor: editor,
	}}
}

// Grant adds a permission to a role. Used by tests and custom deployments.
func (c *RoleChecker) Grant(role, permission string) {
	if c.grants[role] == nil {
		c.grants[role] = make(map[string]bool)
	}
	c.grants[role][permission] = true
}

// Holds implements Checker.
func (c *RoleChecker) Holds(_ context.Context, actor *model.User, permission string) bool {
	if actor == nil {
		return false
	}
	if actor.Role == model.RoleAdmin {
		return true
	}
	return c.grants[actor.Role][permission]
}

// AllowAll grants every permission to every actor, including nil actors.
// Intended for tests.
type AllowAll struct{}

// Holds implements Checker.
func (AllowAll) Holds(context.Context, *model.User, string) bool { return true }
