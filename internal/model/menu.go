// Copyright (c) 2026 Sitepanel Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines domain models and types used throughout the application
// including Menu, MenuItem, Banner, Section, and User structures.
package model

import (
	"database/sql"
	"time"

	"github.com/sitepanel/sitepanel-go/internal/translate"
)

// RootParentID is the sentinel parent id for top-level menu items.
// Stored as 0 rather than NULL to keep sibling-group queries uniform.
const RootParentID int64 = 0

// MaxMenuDepth is the deepest nesting the tree editor accepts.
const MaxMenuDepth = 6

// Menu item link types.
const (
	ItemTypeCustomURL = "custom_url"
	ItemTypeLinkable  = "linkable"
	ItemTypeGroup     = "group"
)

// ValidItemTypes contains all valid menu item types.
var ValidItemTypes = []string{ItemTypeCustomURL, ItemTypeLinkable, ItemTypeGroup}

// IsValidItemType checks if a menu item type value is valid.
func IsValidItemType(t string) bool {
	for _, v := range ValidItemTypes {
		if v == t {
			return true
		}
	}
	return false
}

// Menu represents a navigation menu owning a tree of items.
type Menu struct {
	ID        int64           `json:"id"`
	Title     translate.Value `json:"title"`
	Code      string          `json:"code"`
	IsActive  bool            `json:"is_active"`
	TenantID  sql.NullInt64   `json:"tenant_id,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	DeletedAt sql.NullTime    `json:"deleted_at,omitempty"`
}

// MenuItem represents one node of a menu tree.
// Exactly one of CustomURL / (LinkableType, LinkableID) is populated,
// consistent with Type; a group item carries neither.
type MenuItem struct {
	ID           int64           `json:"id"`
	MenuID       int64           `json:"menu_id"`
	ParentID     int64           `json:"parent_id"` // RootParentID for top level
	Label        translate.Value `json:"label"`
	Type         string          `json:"type"`
	CustomURL    sql.NullString  `json:"custom_url,omitempty"`
	LinkableType sql.NullString  `json:"linkable_type,omitempty"`
	LinkableID   sql.NullInt64   `json:"linkable_id,omitempty"`
	NewTab       bool            `json:"new_tab"`
	IsActive     bool            `json:"is_active"`
	SortOrder    int64           `json:"sort_order"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	DeletedAt    sql.NullTime    `json:"deleted_at,omitempty"`
}

// IsRoot returns true if the item sits at the top level of its menu.
func (i *MenuItem) IsRoot() bool {
	return i.ParentID == RootParentID
}

// IsDeleted returns true if the item carries a soft-delete tombstone.
func (i *MenuItem) IsDeleted() bool {
	return i.DeletedAt.Valid
}

// MenuItemNode represents a menu item with its children for tree display.
type MenuItemNode struct {
	MenuItem
	Children []MenuItemNode `json:"children"`
}

// MenuItemOption is one entry of a hierarchical parent picker:
// the item id with its label indented proportionally to tree depth.
type MenuItemOption struct {
	ID    int64  `json:"id"`
	Label string `json:"label"`
	Depth int    `json:"depth"`
}
