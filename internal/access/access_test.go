// Copyright (c) 2026 Sitepanel Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package access

import (
	"context"
	"testing"

	"github.com/sitepanel/sitepanel-go/internal/model"
)

func TestPermissionNames(t *testing.T) {
	tests := []struct {
		action, entity, want string
	}{
		{ActionUpdate, EntityMenuItem, "update_menu_item"},
		{ActionViewAny, EntityBanner, "view_any_banner"},
		{ActionForceDelete, EntityBannerPosition, "force_delete_banner_position"},
	}
	for _, tt := range tests {
		if got := Permission(tt.action, tt.entity); got != tt.want {
			t.Errorf("Permission(%q, %q) = %q, want %q", tt.action, tt.entity, got, tt.want)
		}
	}
}

func TestRoleCheckerAdminHoldsEverything(t *testing.T) {
	checker := NewRoleChecker()
	admin := &model.User{Role: model.RoleAdmin}
	ctx := context.Background()

	for _, perm := range []string{
		Permission(ActionForceDelete, EntityMenuItem),
		Permission(ActionRestore, EntityMenuItem),
		"completely_made_up",
	} {
		if !checker.Holds(ctx, admin, perm) {
			t.Errorf("admin denied %q", perm)
		}
	}
}

func TestRoleCheckerEditorGrants(t *testing.T) {
	checker := NewRoleChecker()
	editor := &model.User{Role: model.RoleEditor}
	ctx := context.Background()

	if !checker.Holds(ctx, editor, Permission(ActionUpdate, EntityMenuItem)) {
		t.Error("editor denied update_menu_item")
	}
	if !checker.Holds(ctx, editor, Permission(ActionDelete, EntityBanner)) {
		t.Error("editor denied delete_banner")
	}
	// Trash management stays admin-only
	if checker.Holds(ctx, editor, Permission(ActionForceDelete, EntityMenuItem)) {
		t.Error("editor granted force_delete_menu_item")
	}
	if checker.Holds(ctx, editor, Permission(ActionRestore, EntityMenuItem)) {
		t.Error("editor granted restore_menu_item")
	}
}

func TestRoleCheckerNilActorDenied(t *testing.T) {
	checker := NewRoleChecker()
	if checker.Holds(context.Background(), nil, Permission(ActionView, EntityPage)) {
		t.Error("nil actor granted a permission")
	}
}

func TestRoleCheckerGrant(t *testing.T) {
	checker := NewRoleChecker()
	viewer := &model.User{Role: "viewer"}
	perm := Permission(ActionViewAny, EntityMenu)
	ctx := context.Background()

	if checker.Holds(ctx, viewer, perm) {
		t.Fatal("unknown role granted before Grant")
	}
	checker.Grant("viewer", perm)
	if !checker.Holds(ctx, viewer, perm) {
		t.Error("granted permission not held")
	}
}

func TestPolicyPredicates(t *testing.T) {
	policies := NewPolicies(NewRoleChecker())
	editor := &model.User{Role: model.RoleEditor}
	ctx := context.Background()

	if !policies.MenuItem.CanUpdate(ctx, editor) {
		t.Error("editor cannot update menu items")
	}
	if policies.MenuItem.CanForceDelete(ctx, editor) {
		t.Error("editor can force delete menu items")
	}
	if !policies.Banner.CanCreate(ctx, editor) {
		t.Error("editor cannot create banners")
	}
	if policies.Banner.CanRestore(ctx, nil) {
		t.Error("anonymous can restore banners")
	}
}
