// Copyright (c) 2026 Sitepanel Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package access provides per-entity authorization predicates. Predicates
// delegate to a Checker capability; they carry no logic of their own, and
// every mutating handler consults the matching predicate before calling
// into a service.
package access

import (
	"context"

	"github.com/sitepanel/sitepanel-go/internal/model"
)

// Action names mirror the admin panel's standard abilities.
const (
	ActionViewAny        = "view_any"
	ActionView           = "view"
	ActionCreate         = "create"
	ActionUpdate         = "update"
	ActionDelete         = "delete"
	ActionDeleteAny      = "delete_any"
	ActionForceDelete    = "force_delete"
	ActionForceDeleteAny = "force_delete_any"
	ActionRestore        = "restore"
	ActionRestoreAny     = "restore_any"
)

// Entity tags used in permission names.
const (
	EntitySection        = "section"
	EntityPage           = "page"
	EntityMenu           = "menu"
	EntityMenuItem       = "menu_item"
	EntityBanner         = "banner"
	EntityBannerPosition = "banner_position"
)

// Checker is the injected permission-checking capability.
type Checker interface {
	// Holds reports whether the actor holds the named permission.
	Holds(ctx context.Context, actor *model.User, permission string) bool
}

// Permission composes the canonical permission name for an action on an
// entity type, e.g. "update_menu_item".
func Permission(action, entity string) string {
	return action + "_" + entity
}

// Policy provides the authorization predicates for one entity type.
type Policy struct {
	checker Checker
	entity  string
}

// NewPolicy creates a Policy for an entity type.
func NewPolicy(checker Checker, entity string) *Policy {
	return &Policy{checker: checker, entity: entity}
}

func (p *Policy) can(ctx context.Context, actor *model.User, action string) bool {
	return p.checker.Holds(ctx, actor, Permission(action, p.entity))
}

// CanViewAny reports whether the actor may list entities of this type.
func (p *Policy) CanViewAny(ctx context.Context, actor *model.User) bool {
	return p.can(ctx, actor, ActionViewAny)
}

// CanView reports whether the actor may view an entity.
func (p *Policy) CanView(ctx context.Context, actor *model.User) bool {
	return p.can(ctx, actor, ActionView)
}

// CanCreate reports whether the actor may create entities of this type.
func (p *Policy) CanCreate(ctx context.Context, actor *model.User) bool {
	return p.can(ctx, actor, ActionCreate)
}

// CanUpdate reports whether the actor may update an entity.
func (p *Policy) CanUpdate(ctx context.Context, actor *model.User) bool {
	return p.can(ctx, actor, ActionUpdate)
}

// CanDelete reports whether the actor may delete an entity.
func (p *Policy) CanDelete(ctx context.Context, actor *model.User) bool {
	return p.can(ctx, actor, ActionDelete)
}

// CanDeleteAny reports whether the actor may bulk-delete entities.
func (p *Policy) CanDeleteAny(ctx context.Context, actor *model.User) bool {
	return p.can(ctx, actor, ActionDeleteAny)
}

// CanForceDelete reports whether the actor may permanently erase an entity.
func (p *Policy) CanForceDelete(ctx context.Context, actor *model.User) bool {
	return p.can(ctx, actor, ActionForceDelete)
}

// CanForceDeleteAny reports whether the actor may bulk-erase entities.
func (p *Policy) CanForceDeleteAny(ctx context.Context, actor *model.User) bool {
	return p.can(ctx, actor, ActionForceDeleteAny)
}

// CanRestore reports whether the actor may restore a soft-deleted entity.
func (p *Policy) CanRestore(ctx context.Context, actor *model.User) bool {
	return p.can(ctx, actor, ActionRestore)
}

// CanRestoreAny reports whether the actor may bulk-restore entities.
func (p *Policy) CanRestoreAny(ctx context.Context, actor *model.User) bool {
	return p.can(ctx, actor, ActionRestoreAny)
}

// Policies bundles one Policy per entity type for handler wiring.
type Policies struct {
	Section  *Policy
	Page     *Policy
	Menu     *Policy
	MenuItem *Policy
	Banner   *Policy
	Position *Policy
}

// NewPolicies creates the standard policy set over one checker.
func NewPolicies(checker Checker) *Policies {
	return &Policies{
		Section:  NewPolicy(checker, EntitySection),
		Page:     NewPolicy(checker, EntityPage),
		Menu:     NewPolicy(checker, EntityMenu),
		MenuItem: NewPolicy(checker, EntityMenuItem),
		Banner:   NewPolicy(checker, EntityBanner),
		Position: NewPolicy(checker, EntityBannerPosition),
	}
}
