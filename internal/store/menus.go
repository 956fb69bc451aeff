// Copyright (c) 2026 Sitepanel Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/sitepanel/sitepanel-go/internal/model"
	"github.com/sitepanel/sitepanel-go/internal/translate"
)

const menuColumns = "id, title, code, is_active, tenant_id, created_at, updated_at, deleted_at"

func scanMenu(row interface{ Scan(...any) error }) (model.Menu, error) {
	var m model.Menu
	err := row.Scan(&m.ID, &m.Title, &m.Code, &m.IsActive, &m.TenantID,
		&m.CreatedAt, &m.UpdatedAt, &m.DeletedAt)
	return m, err
}

// CreateMenuParams holds parameters for CreateMenu.
type CreateMenuParams struct {
	Title    translate.Value
	Code     string
	IsActive bool
	TenantID sql.NullInt64
}

// CreateMenu inserts a menu, stamping the current tenant when the policy
// is enabled and no tenant was supplied.
func (q *Queries) CreateMenu(ctx context.Context, p CreateMenuParams) (model.Menu, error) {
	now := time.Now()
	tenantID := q.tenancy.Stamp(ctx, p.TenantID)
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO menus (title, code, is_active, tenant_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING `+menuColumns,
		p.Title, p.Code, p.IsActive, tenantID, now, now)
	return scanMenu(row)
}

// GetMenuByID fetches a live menu by id, tenant-scoped.
func (q *Queries) GetMenuByID(ctx context.Context, id int64) (model.Menu, error) {
	filter, args := q.tenantFilter(ctx)
	query := "SELECT " + menuColumns + " FROM menus WHERE id = ? AND deleted_at IS NULL" + filter
	return scanMenu(q.db.QueryRowContext(ctx, query, append([]any{id}, args...)...))
}

// GetMenuByCode fetches a live menu by code, tenant-scoped.
func (q *Queries) GetMenuByCode(ctx context.Context, code string) (model.Menu, error) {
	filter, args := q.tenantFilter(ctx)
	query := "SELECT " + menuColumns + " FROM menus WHERE code = ? AND deleted_at IS NULL" + filter
	return scanMenu(q.db.QueryRowContext(ctx, query, append([]any{code}, args...)...))
}

// ListMenus returns all live menus, tenant-scoped, ordered by id.
func (q *Queries) ListMenus(ctx context.Context) ([]model.Menu, error) {
	filter, args := q.tenantFilter(ctx)
	query := "SELECT " + menuColumns + " FROM menus WHERE deleted_at IS NULL" + filter + " ORDER BY id"
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var menus []model.Menu
	for rows.Next() {
		m, err := scanMenu(rows)
		if err != nil {
			return nil, err
		}
		menus = append(menus, m)
	}
	return menus, rows.Err()
}

// UpdateMenuParams holds parameters for UpdateMenu.
type UpdateMenuParams struct {
	ID       int64
	Title    translate.Value
	Code     string
	IsActive bool
}

// UpdateMenu updates a menu's editable fields.
func (q *Queries) UpdateMenu(ctx context.Context, p UpdateMenuParams) (model.Menu, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE menus SET title = ?, code = ?, is_active = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
		RETURNING `+menuColumns,
		p.Title, p.Code, p.IsActive, time.Now(), p.ID)
	return scanMenu(row)
}

// SoftDeleteMenu marks a menu deleted.
func (q *Queries) SoftDeleteMenu(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx,
		"UPDATE menus SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL",
		time.Now(), id)
	return err
}

const menuItemColumns = `id, menu_id, parent_id, label, type, custom_url,
	linkable_type, linkable_id, new_tab, is_active, sort_order,
	created_at, updated_at, deleted_at`

func scanMenuItem(row interface{ Scan(...any) error }) (model.MenuItem, error) {
	var i model.MenuItem
	err := row.Scan(&i.ID, &i.MenuID, &i.ParentID, &i.Label, &i.Type, &i.CustomURL,
		&i.LinkableType, &i.LinkableID, &i.NewTab, &i.IsActive, &i.SortOrder,
		&i.CreatedAt, &i.UpdatedAt, &i.DeletedAt)
	return i, err
}

func (q *Queries) queryMenuItems(ctx context.Context, query string, args ...any) ([]model.MenuItem, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []model.MenuItem
	for rows.Next() {
		item, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// CreateMenuItemParams holds parameters for CreateMenuItem.
type CreateMenuItemParams struct {
	MenuID       int64
	ParentID     int64
	Label        translate.Value
	Type         string
	CustomURL    sql.NullString
	LinkableType sql.NullString
	LinkableID   sql.NullInt64
	NewTab       bool
	IsActive     bool
	SortOrder    int64
}

// CreateMenuItem inserts a menu item.
func (q *Queries) CreateMenuItem(ctx context.Context, p CreateMenuItemParams) (model.MenuItem, error) {
	now := time.Now()
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO menu_items (menu_id, parent_id, label, type, custom_url,
			linkable_type, linkable_id, new_tab, is_active, sort_order,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING `+menuItemColumns,
		p.MenuID, p.ParentID, p.Label, p.Type, p.CustomURL,
		p.LinkableType, p.LinkableID, p.NewTab, p.IsActive, p.SortOrder,
		now, now)
	return scanMenuItem(row)
}

// GetMenuItem fetches a live menu item by id.
func (q *Queries) GetMenuItem(ctx context.Context, id int64) (model.MenuItem, error) {
	row := q.db.QueryRowContext(ctx,
		"SELECT "+menuItemColumns+" FROM menu_items WHERE id = ? AND deleted_at IS NULL", id)
	return scanMenuItem(row)
}

// GetMenuItemWithTrashed fetches a menu item by id regardless of tombstone.
func (q *Queries) GetMenuItemWithTrashed(ctx context.Context, id int64) (model.MenuItem, error) {
	row := q.db.QueryRowContext(ctx,
		"SELECT "+menuItemColumns+" FROM menu_items WHERE id = ?", id)
	return scanMenuItem(row)
}

// ListMenuItems returns all live items of a menu ordered by sibling
// position (sort_order, then id for deterministic ties).
func (q *Queries) ListMenuItems(ctx context.Context, menuID int64) ([]model.MenuItem, error) {
	return q.queryMenuItems(ctx,
		"SELECT "+menuItemColumns+` FROM menu_items
		 WHERE menu_id = ? AND deleted_at IS NULL
		 ORDER BY parent_id, sort_order, id`, menuID)
}

// ListMenuItemsWithTrashed returns all items of a menu including
// soft-deleted ones.
func (q *Queries) ListMenuItemsWithTrashed(ctx context.Context, menuID int64) ([]model.MenuItem, error) {
	return q.queryMenuItems(ctx,
		"SELECT "+menuItemColumns+` FROM menu_items
		 WHERE menu_id = ?
		 ORDER BY parent_id, sort_order, id`, menuID)
}

// ListTrashedMenuItemsBefore returns soft-deleted items with tombstones
// older than the cutoff, for trash purging.
func (q *Queries) ListTrashedMenuItemsBefore(ctx context.Context, cutoff time.Time) ([]model.MenuItem, error) {
	return q.queryMenuItems(ctx,
		"SELECT "+menuItemColumns+` FROM menu_items
		 WHERE deleted_at IS NOT NULL AND deleted_at < ?
		 ORDER BY id`, cutoff)
}

// UpdateMenuItemParams holds parameters for UpdateMenuItem.
type UpdateMenuItemParams struct {
	ID           int64
	ParentID     int64
	Label        translate.Value
	Type         string
	CustomURL    sql.NullString
	LinkableType sql.NullString
	LinkableID   sql.NullInt64
	NewTab       bool
	IsActive     bool
	SortOrder    int64
}

// UpdateMenuItem updates all editable fields of a live menu item.
func (q *Queries) UpdateMenuItem(ctx context.Context, p UpdateMenuItemParams) (model.MenuItem, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE menu_items SET parent_id = ?, label = ?, type = ?, custom_url = ?,
			linkable_type = ?, linkable_id = ?, new_tab = ?, is_active = ?,
			sort_order = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
		RETURNING `+menuItemColumns,
		p.ParentID, p.Label, p.Type, p.CustomURL,
		p.LinkableType, p.LinkableID, p.NewTab, p.IsActive,
		p.SortOrder, time.Now(), p.ID)
	return scanMenuItem(row)
}

// SoftDeleteMenuItem marks one item deleted with the given tombstone time.
// Already-deleted items are left untouched so a cascade can share one
// timestamp across the subtree.
func (q *Queries) SoftDeleteMenuItem(ctx context.Context, id int64, deletedAt time.Time) error {
	res, err := q.db.ExecContext(ctx,
		"UPDATE menu_items SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL",
		deletedAt, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// RestoreMenuItem clears the tombstone on a single soft-deleted item.
func (q *Queries) RestoreMenuItem(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx,
		"UPDATE menu_items SET deleted_at = NULL, updated_at = ? WHERE id = ? AND deleted_at IS NOT NULL",
		time.Now(), id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ForceDeleteMenuItem permanently removes a single soft-deleted item.
func (q *Queries) ForceDeleteMenuItem(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx,
		"DELETE FROM menu_items WHERE id = ? AND deleted_at IS NOT NULL", id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SetMenuItemSortOrder assigns a new sibling position to an item.
func (q *Queries) SetMenuItemSortOrder(ctx context.Context, id, sortOrder int64) error {
	_, err := q.db.ExecContext(ctx,
		"UPDATE menu_items SET sort_order = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL",
		sortOrder, time.Now(), id)
	return err
}

// CountLiveChildren counts live children of an item, active or not.
func (q *Queries) CountLiveChildren(ctx context.Context, menuID, parentID int64) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM menu_items WHERE menu_id = ? AND parent_id = ? AND deleted_at IS NULL",
		menuID, parentID).Scan(&count)
	return count, err
}
