// Copyright (c) 2026 Sitepanel Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service provides business logic and service layer functionality.
package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/sitepanel/sitepanel-go/internal/cache"
	"github.com/sitepanel/sitepanel-go/internal/linkable"
	"github.com/sitepanel/sitepanel-go/internal/model"
	"github.com/sitepanel/sitepanel-go/internal/store"
	"github.com/sitepanel/sitepanel-go/internal/translate"
)

// MenuService implements the menu item tree: hierarchy, cascading soft
// delete, ordering, and polymorphic link resolution.
type MenuService struct {
	queries  *store.Queries
	registry *linkable.Registry
	resolver *translate.Resolver
	cache    *cache.MenuCache // nil disables tree caching
	logger   *slog.Logger
}

// NewMenuService creates a MenuService. menuCache may be nil.
func NewMenuService(queries *store.Queries, registry *linkable.Registry,
	resolver *translate.Resolver, menuCache *cache.MenuCache, logger *slog.Logger) *MenuService {
	if logger == nil {
		logger = slog.Default()
	}
	return &MenuService{
		queries:  queries,
		registry: registry,
		resolver: resolver,
		cache:    menuCache,
		logger:   logger,
	}
}

// treeIndex is an in-memory adjacency index over the live items of one menu.
// Built from a single query per operation so traversals never hit the
// database per node.
type treeIndex struct {
	byID     map[int64]*model.MenuItem
	children map[int64][]*model.MenuItem // parentID -> ordered children
}

func (s *MenuService) loadIndex(ctx context.Context, menuID int64) (*treeIndex, error) {
	items, err := s.queries.ListMenuItems(ctx, menuID)
	if err != nil {
		return nil, fmt.Errorf("loading menu items: %w", err)
	}
	return buildIndex(items), nil
}

// buildIndex builds an adjacency index from an item list already ordered by
// (parent_id, sort_order, id).
func buildIndex(items []model.MenuItem) *treeIndex {
	idx := &treeIndex{
		byID:     make(map[int64]*model.MenuItem, len(items)),
		children: make(map[int64][]*model.MenuItem),
	}
	for i := range items {
		item := &items[i]
		idx.byID[item.ID] = item
		idx.children[item.ParentID] = append(idx.children[item.ParentID], item)
	}
	return idx
}

// depth returns the nesting depth of an item, 0 for roots. A broken parent
// chain (missing row) terminates the walk.
func (idx *treeIndex) depth(id int64) int {
	depth := 0
	for {
		item, ok := idx.byID[id]
		if !ok || item.IsRoot() {
			return depth
		}
		id = item.ParentID
		depth++
	}
}

// descendants collects the transitive descendants of id, depth-first.
func (idx *treeIndex) descendants(id int64) []int64 {
	var out []int64
	var walk func(int64)
	walk = func(parentID int64) {
		for _, child := range idx.children[parentID] {
			out = append(out, child.ID)
			walk(child.ID)
		}
	}
	walk(id)
	return out
}

// height returns the number of levels in the subtree rooted at id: 1 for a
// leaf, 2 for a node with children, and so on.
func (idx *treeIndex) height(id int64) int {
	max := 0
	for _, child := range idx.children[id] {
		if h := idx.height(child.ID); h > max {
			max = h
		}
	}
	return max + 1
}

// isDescendant reports whether candidate sits in the subtree rooted at id.
func (idx *treeIndex) isDescendant(id, candidate int64) bool {
	for {
		item, ok := idx.byID[candidate]
		if !ok || item.IsRoot() {
			return false
		}
		if item.ParentID == id {
			return true
		}
		candidate = item.ParentID
	}
}

// ItemParams carries the caller-editable fields of a menu item.
type ItemParams struct {
	MenuID       int64
	ParentID     int64 // model.RootParentID for top level
	Label        translate.Value
	Type         string
	CustomURL    string
	LinkableType string
	LinkableID   int64
	NewTab       bool
	IsActive     bool
	SortOrder    int64
}

// CreateItem validates and creates a live menu item.
func (s *MenuService) CreateItem(ctx context.Context, p ItemParams) (model.MenuItem, error) {
	if _, err := s.queries.GetMenuByID(ctx, p.MenuID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.MenuItem{}, model.NewNotFoundError("menu", p.MenuID)
		}
		return model.MenuItem{}, err
	}

	idx, err := s.loadIndex(ctx, p.MenuID)
	if err != nil {
		return model.MenuItem{}, err
	}
	if err := s.validateItem(ctx, idx, p, 0); err != nil {
		return model.MenuItem{}, err
	}

	item, err := s.queries.CreateMenuItem(ctx, store.CreateMenuItemParams{
		MenuID:       p.MenuID,
		ParentID:     p.ParentID,
		Label:        p.Label,
		Type:         p.Type,
		CustomURL:    linkFields(p).customURL,
		LinkableType: linkFields(p).linkableType,
		LinkableID:   linkFields(p).linkableID,
		NewTab:       p.NewTab,
		IsActive:     p.IsActive,
		SortOrder:    p.SortOrder,
	})
	if err != nil {
		return model.MenuItem{}, fmt.Errorf("creating menu item: %w", err)
	}

	s.invalidate(ctx, p.MenuID)
	return item, nil
}

// UpdateItem validates and updates a live menu item. Changing the type
// clears the link fields belonging to the previous type.
func (s *MenuService) UpdateItem(ctx context.Context, id int64, p ItemParams) (model.MenuItem, error) {
	current, err := s.queries.GetMenuItem(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.MenuItem{}, model.NewNotFoundError("menu item", id)
		}
		return model.MenuItem{}, err
	}

	p.MenuID = current.MenuID

	idx, err := s.loadIndex(ctx, current.MenuID)
	if err != nil {
		return model.MenuItem{}, err
	}
	if err := s.validateItem(ctx, idx, p, id); err != nil {
		return model.MenuItem{}, err
	}

	fields := linkFields(p)
	item, err := s.queries.UpdateMenuItem(ctx, store.UpdateMenuItemParams{
		ID:           id,
		ParentID:     p.ParentID,
		Label:        p.Label,
		Type:         p.Type,
		CustomURL:    fields.customURL,
		LinkableType: fields.linkableType,
		LinkableID:   fields.linkableID,
		NewTab:       p.NewTab,
		IsActive:     p.IsActive,
		SortOrder:    p.SortOrder,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.MenuItem{}, model.NewNotFoundError("menu item", id)
		}
		return model.MenuItem{}, fmt.Errorf("updating menu item: %w", err)
	}

	s.invalidate(ctx, current.MenuID)
	return item, nil
}

// itemLinkFields holds the nullable link columns derived from ItemParams.
// Fields of inactive link variants stay NULL, so a type change clears the
// previous variant's payload.
type itemLinkFields struct {
	customURL    sql.NullString
	linkableType sql.NullString
	linkableID   sql.NullInt64
}

func linkFields(p ItemParams) itemLinkFields {
	var f itemLinkFields
	switch p.Type {
	case model.ItemTypeCustomURL:
		f.customURL = sql.NullString{String: p.CustomURL, Valid: true}
	case model.ItemTypeLinkable:
		f.linkableType = sql.NullString{String: p.LinkableType, Valid: true}
		f.linkableID = sql.NullInt64{Int64: p.LinkableID, Valid: true}
	}
	return f
}

// validateItem enforces the create/update rules. currentID is non-zero for
// updates and enables the cycle guard.
func (s *MenuService) validateItem(ctx context.Context, idx *treeIndex, p ItemParams, currentID int64) error {
	if !model.IsValidItemType(p.Type) {
		return model.NewValidationError("type", "unknown menu item type %q", p.Type)
	}

	switch p.Type {
	case model.ItemTypeCustomURL:
		if p.CustomURL == "" {
			return model.NewValidationError("custom_url", "custom URL is required")
		}
		u, err := url.Parse(p.CustomURL)
		if err != nil || u.Scheme == "" && !strings.HasPrefix(p.CustomURL, "/") {
			return model.NewValidationError("custom_url", "invalid URL %q", p.CustomURL)
		}
	case model.ItemTypeLinkable:
		if !s.registry.IsRegistered(p.LinkableType) {
			return model.NewValidationError("linkable_type", "unregistered linkable type %q", p.LinkableType)
		}
		target, err := s.registry.Resolve(ctx, p.LinkableType, p.LinkableID)
		if err != nil {
			return fmt.Errorf("resolving linkable: %w", err)
		}
		if target == nil {
			return model.NewValidationError("linkable_id", "%s %d does not resolve", p.LinkableType, p.LinkableID)
		}
	}

	if p.ParentID != model.RootParentID {
		parent, ok := idx.byID[p.ParentID]
		if !ok {
			return model.NewValidationError("parent_id", "parent %d does not exist", p.ParentID)
		}
		if parent.MenuID != p.MenuID {
			return model.NewValidationError("parent_id", "parent %d belongs to a different menu", p.ParentID)
		}
		// A moved item takes its subtree with it, so the depth check
		// covers the deepest descendant, not just the item itself.
		subtreeHeight := 1
		if currentID != 0 {
			if p.ParentID == currentID {
				return model.NewValidationError("parent_id", "item cannot be its own parent")
			}
			if idx.isDescendant(currentID, p.ParentID) {
				return model.NewValidationError("parent_id", "parent %d is a descendant of item %d", p.ParentID, currentID)
			}
			subtreeHeight = idx.height(currentID)
		}
		if idx.depth(p.ParentID)+subtreeHeight >= model.MaxMenuDepth {
			return model.NewValidationError("parent_id", "maximum nesting depth of %d exceeded", model.MaxMenuDepth)
		}
	}

	return nil
}

// DeleteItem soft-deletes an item and, transitively, every descendant.
// All tombstones carry the same timestamp. If some descendant deletes fail,
// the operation returns a PartialFailureError; already-deleted descendants
// stay deleted.
func (s *MenuService) DeleteItem(ctx context.Context, id int64) error {
	item, err := s.queries.GetMenuItem(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.NewNotFoundError("menu item", id)
		}
		return err
	}

	idx, err := s.loadIndex(ctx, item.MenuID)
	if err != nil {
		return err
	}

	targets := append([]int64{id}, idx.descendants(id)...)
	now := time.Now()

	var succeeded []int64
	failed := make(map[int64]error)
	for _, target := range targets {
		if err := s.queries.SoftDeleteMenuItem(ctx, target, now); err != nil {
			failed[target] = err
			continue
		}
		succeeded = append(succeeded, target)
	}

	s.invalidate(ctx, item.MenuID)

	if len(failed) > 0 {
		s.logger.Error("menu item cascade delete incomplete",
			"category", model.EventCategoryMenu,
			"item_id", id, "failed", len(failed))
		return &model.PartialFailureError{Op: "delete menu item subtree", Succeeded: succeeded, Failed: failed}
	}

	s.logger.Info("menu item deleted", "category", model.EventCategoryMenu,
		"item_id", id, "cascaded", len(targets)-1)
	return nil
}

// RestoreItem restores a single soft-deleted item. Descendants are not
// restored; a restored parent can sit above still-deleted children.
func (s *MenuService) RestoreItem(ctx context.Context, id int64) error {
	item, err := s.queries.GetMenuItemWithTrashed(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.NewNotFoundError("menu item", id)
		}
		return err
	}
	if !item.IsDeleted() {
		return model.NewValidationError("id", "item %d is not deleted", id)
	}
	if err := s.queries.RestoreMenuItem(ctx, id); err != nil {
		return fmt.Errorf("restoring menu item: %w", err)
	}
	s.invalidate(ctx, item.MenuID)
	return nil
}

// ForceDeleteItem permanently erases a single soft-deleted item. Descendants
// are not touched.
func (s *MenuService) ForceDeleteItem(ctx context.Context, id int64) error {
	item, err := s.queries.GetMenuItemWithTrashed(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.NewNotFoundError("menu item", id)
		}
		return err
	}
	if !item.IsDeleted() {
		return model.NewValidationError("id", "item %d must be deleted before force delete", id)
	}
	if err := s.queries.ForceDeleteMenuItem(ctx, id); err != nil {
		return fmt.Errorf("force deleting menu item: %w", err)
	}
	s.invalidate(ctx, item.MenuID)
	return nil
}

// Reorder assigns sortOrder = index to each id of a sibling set, in the
// order given. Ids outside the (menuID, parentID) sibling group are rejected.
func (s *MenuService) Reorder(ctx context.Context, menuID, parentID int64, orderedIDs []int64) error {
	idx, err := s.loadIndex(ctx, menuID)
	if err != nil {
		return err
	}

	siblings := make(map[int64]bool, len(idx.children[parentID]))
	for _, item := range idx.children[parentID] {
		siblings[item.ID] = true
	}

	seen := make(map[int64]bool, len(orderedIDs))
	for _, id := range orderedIDs {
		if !siblings[id] {
			return model.NewValidationError("ordered_ids", "item %d is not part of the sibling group", id)
		}
		if seen[id] {
			return model.NewValidationError("ordered_ids", "item %d listed twice", id)
		}
		seen[id] = true
	}

	for i, id := range orderedIDs {
		if err := s.queries.SetMenuItemSortOrder(ctx, id, int64(i)); err != nil {
			return fmt.Errorf("setting sort order for item %d: %w", id, err)
		}
	}

	s.invalidate(ctx, menuID)
	return nil
}

// indentMarker is the per-level prefix of hierarchical labels.
const indentMarker = "— "

// HierarchicalOptions returns a depth-first pre-order listing of the menu's
// live items, labels indented by depth, for "choose a parent" pickers.
// excludeID and its subtree are omitted (0 excludes nothing): an item may
// not become its own descendant's parent.
func (s *MenuService) HierarchicalOptions(ctx context.Context, menuID, excludeID int64) ([]model.MenuItemOption, error) {
	idx, err := s.loadIndex(ctx, menuID)
	if err != nil {
		return nil, err
	}

	var options []model.MenuItemOption
	var walk func(parentID int64, depth int)
	walk = func(parentID int64, depth int) {
		if depth >= model.MaxMenuDepth {
			return
		}
		for _, item := range idx.children[parentID] {
			if item.ID == excludeID {
				continue
			}
			options = append(options, model.MenuItemOption{
				ID:    item.ID,
				Label: strings.Repeat(indentMarker, depth) + s.resolver.Current(ctx, item.Label),
				Depth: depth,
			})
			walk(item.ID, depth+1)
		}
	}
	walk(model.RootParentID, 0)
	return options, nil
}

// FullPath walks the parent chain from the item to its root and joins the
// labels with " > ".
func (s *MenuService) FullPath(ctx context.Context, id int64) (string, error) {
	item, err := s.queries.GetMenuItem(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", model.NewNotFoundError("menu item", id)
		}
		return "", err
	}

	idx, err := s.loadIndex(ctx, item.MenuID)
	if err != nil {
		return "", err
	}

	var labels []string
	for current, ok := idx.byID[id]; ok; current, ok = idx.byID[current.ParentID] {
		labels = append([]string{s.resolver.Current(ctx, current.Label)}, labels...)
		if current.IsRoot() {
			break
		}
	}
	return strings.Join(labels, " > "), nil
}

// TreeFormattedName returns the item's label prefixed with depth-proportional
// indentation, for flat tables that simulate a tree.
func (s *MenuService) TreeFormattedName(ctx context.Context, id int64) (string, error) {
	item, err := s.queries.GetMenuItem(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", model.NewNotFoundError("menu item", id)
		}
		return "", err
	}

	idx, err := s.loadIndex(ctx, item.MenuID)
	if err != nil {
		return "", err
	}
	return strings.Repeat(indentMarker, idx.depth(id)) + s.resolver.Current(ctx, item.Label), nil
}

// ResolveURL returns the item's destination URL, or "" when the item has
// none: a group is a pure container, and a dangling linkable reference is
// not an error, just an absent URL.
func (s *MenuService) ResolveURL(ctx context.Context, id int64) (string, error) {
	item, err := s.queries.GetMenuItem(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", model.NewNotFoundError("menu item", id)
		}
		return "", err
	}

	switch item.Type {
	case model.ItemTypeCustomURL:
		return item.CustomURL.String, nil
	case model.ItemTypeLinkable:
		if !item.LinkableType.Valid || !item.LinkableID.Valid {
			return "", nil
		}
		target, err := s.registry.Resolve(ctx, item.LinkableType.String, item.LinkableID.Int64)
		if err != nil {
			return "", fmt.Errorf("resolving link target: %w", err)
		}
		if target == nil {
			return "", nil
		}
		return target.URL, nil
	default:
		return "", nil
	}
}

// HasChildren reports whether at least one live child exists, regardless of
// active state.
func (s *MenuService) HasChildren(ctx context.Context, id int64) (bool, error) {
	item, err := s.queries.GetMenuItem(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, model.NewNotFoundError("menu item", id)
		}
		return false, err
	}
	count, err := s.queries.CountLiveChildren(ctx, item.MenuID, id)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Tree returns the menu's live items composed into a tree, cached when a
// menu cache is configured. Siblings arrive ordered by sortOrder, ties
// broken by id.
func (s *MenuService) Tree(ctx context.Context, menuID int64) ([]model.MenuItemNode, error) {
	if s.cache != nil {
		if tree, ok := s.cache.GetTree(ctx, menuID); ok {
			return tree, nil
		}
	}

	items, err := s.queries.ListMenuItems(ctx, menuID)
	if err != nil {
		return nil, fmt.Errorf("loading menu items: %w", err)
	}
	tree := BuildTree(items)

	if s.cache != nil {
		if err := s.cache.SetTree(ctx, menuID, tree); err != nil {
			s.logger.Warn("caching menu tree failed", "category", model.EventCategoryCache,
				"menu_id", menuID, "error", err)
		}
	}
	return tree, nil
}

// BuildTree composes a flat, (parent_id, sort_order, id)-ordered item list
// into root-level nodes with nested children.
func BuildTree(items []model.MenuItem) []model.MenuItemNode {
	idx := buildIndex(items)
	var build func(parentID int64) []model.MenuItemNode
	build = func(parentID int64) []model.MenuItemNode {
		children := idx.children[parentID]
		if len(children) == 0 {
			return nil
		}
		nodes := make([]model.MenuItemNode, 0, len(children))
		for _, item := range children {
			nodes = append(nodes, model.MenuItemNode{
				MenuItem: *item,
				Children: build(item.ID),
			})
		}
		return nodes
	}
	return build(model.RootParentID)
}

// CreateMenu creates a menu.
func (s *MenuService) CreateMenu(ctx context.Context, p store.CreateMenuParams) (model.Menu, error) {
	menu, err := s.queries.CreateMenu(ctx, p)
	if err != nil {
		return model.Menu{}, fmt.Errorf("creating menu: %w", err)
	}
	return menu, nil
}

// GetMenu fetches a live menu by id.
func (s *MenuService) GetMenu(ctx context.Context, id int64) (model.Menu, error) {
	menu, err := s.queries.GetMenuByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Menu{}, model.NewNotFoundError("menu", id)
	}
	return menu, err
}

// ListMenus returns all live menus visible to the current tenant.
func (s *MenuService) ListMenus(ctx context.Context) ([]model.Menu, error) {
	return s.queries.ListMenus(ctx)
}

// UpdateMenu updates a menu's editable fields.
func (s *MenuService) UpdateMenu(ctx context.Context, p store.UpdateMenuParams) (model.Menu, error) {
	menu, err := s.queries.UpdateMenu(ctx, p)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Menu{}, model.NewNotFoundError("menu", p.ID)
	}
	if err == nil {
		s.invalidate(ctx, p.ID)
	}
	return menu, err
}

// DeleteMenu soft-deletes a menu. Items stay in place; menu-level queries
// filter them out via the menu's tombstone.
func (s *MenuService) DeleteMenu(ctx context.Context, id int64) error {
	if err := s.queries.SoftDeleteMenu(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.NewNotFoundError("menu", id)
		}
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

// ListItems returns a menu's live items in tree order.
func (s *MenuService) ListItems(ctx context.Context, menuID int64) ([]model.MenuItem, error) {
	return s.queries.ListMenuItems(ctx, menuID)
}

// ListItemsWithTrashed returns a menu's items including soft-deleted ones.
func (s *MenuService) ListItemsWithTrashed(ctx context.Context, menuID int64) ([]model.MenuItem, error) {
	return s.queries.ListMenuItemsWithTrashed(ctx, menuID)
}

// GetItem fetches a live item by id.
func (s *MenuService) GetItem(ctx context.Context, id int64) (model.MenuItem, error) {
	item, err := s.queries.GetMenuItem(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.MenuItem{}, model.NewNotFoundError("menu item", id)
	}
	return item, err
}

// PurgeTrashedItemsBefore permanently erases items soft-deleted before the
// cutoff. Used by the scheduled trash purge.
func (s *MenuService) PurgeTrashedItemsBefore(ctx context.Context, cutoff time.Time) (int, error) {
	items, err := s.queries.ListTrashedMenuItemsBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("listing trashed items: %w", err)
	}
	purged := 0
	for _, item := range items {
		if err := s.queries.ForceDeleteMenuItem(ctx, item.ID); err != nil {
			s.logger.Warn("purging trashed menu item failed",
				"category", model.EventCategoryMenu, "item_id", item.ID, "error", err)
			continue
		}
		purged++
	}
	return purged, nil
}

func (s *MenuService) invalidate(ctx context.Context, menuID int64) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, menuID)
	}
}
