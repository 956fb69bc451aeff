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

const sectionColumns = "id, name, code, is_active, tenant_id, created_at, updated_at, deleted_at"

func scanSection(row interface{ Scan(...any) error }) (model.Section, error) {
	var s model.Section
	err := row.Scan(&s.ID, &s.Name, &s.Code, &s.IsActive, &s.TenantID,
		&s.CreatedAt, &s.UpdatedAt, &s.DeletedAt)
	return s, err
}

// CreateSectionParams holds parameters for CreateSection.
type CreateSectionParams struct {
	Name     translate.Value
	Code     string
	IsActive bool
	TenantID sql.NullInt64
}

// CreateSection inserts a section, stamping the current tenant when the
// policy is enabled and no tenant was supplied.
func (q *Queries) CreateSection(ctx context.Context, p CreateSectionParams) (model.Section, error) {
	now := time.Now()
	tenantID := q.tenancy.Stamp(ctx, p.TenantID)
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO sections (name, code, is_active, tenant_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING `+sectionColumns,
		p.Name, p.Code, p.IsActive, tenantID, now, now)
	return scanSection(row)
}

// GetSection fetches a live section by id, tenant-scoped.
func (q *Queries) GetSection(ctx context.Context, id int64) (model.Section, error) {
	filter, args := q.tenantFilter(ctx)
	query := "SELECT " + sectionColumns + " FROM sections WHERE id = ? AND deleted_at IS NULL" + filter
	return scanSection(q.db.QueryRowContext(ctx, query, append([]any{id}, args...)...))
}

// ListSections returns all live sections, tenant-scoped, ordered by id.
func (q *Queries) ListSections(ctx context.Context) ([]model.Section, error) {
	filter, args := q.tenantFilter(ctx)
	query := "SELECT " + sectionColumns + " FROM sections WHERE deleted_at IS NULL" + filter + " ORDER BY id"
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var sections []model.Section
	for rows.Next() {
		s, err := scanSection(rows)
		if err != nil {
			return nil, err
		}
		sections = append(sections, s)
	}
	return sections, rows.Err()
}

// ListActiveSections returns live, active sections, tenant-scoped.
func (q *Queries) ListActiveSections(ctx context.Context) ([]model.Section, error) {
	filter, args := q.tenantFilter(ctx)
	query := "SELECT " + sectionColumns + " FROM sections WHERE deleted_at IS NULL AND is_active = 1" + filter + " ORDER BY id"
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var sections []model.Section
	for rows.Next() {
		s, err := scanSection(rows)
		if err != nil {
			return nil, err
		}
		sections = append(sections, s)
	}
	return sections, rows.Err()
}

// UpdateSectionParams holds parameters for UpdateSection.
type UpdateSectionParams struct {
	ID       int64
	Name     translate.Value
	Code     string
	IsActive bool
}

// UpdateSection updates a section's editable fields.
func (q *Queries) UpdateSection(ctx context.Context, p UpdateSectionParams) (model.Section, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE sections SET name = ?, code = ?, is_active = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
		RETURNING `+sectionColumns,
		p.Name, p.Code, p.IsActive, time.Now(), p.ID)
	return scanSection(row)
}

// SoftDeleteSection marks a section deleted.
func (q *Queries) SoftDeleteSection(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx,
		"UPDATE sections SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL",
		time.Now(), id)
	return err
}

const pageColumns = "id, section_id, title, slug, body, is_active, created_at, updated_at, deleted_at"

func scanPage(row interface{ Scan(...any) error }) (model.Page, error) {
	var p model.Page
	err := row.Scan(&p.ID, &p.SectionID, &p.Title, &p.Slug, &p.Body, &p.IsActive,
		&p.CreatedAt, &p.UpdatedAt, &p.DeletedAt)
	return p, err
}

// CreatePageParams holds parameters for CreatePage.
type CreatePageParams struct {
	SectionID sql.NullInt64
	Title     translate.Value
	Slug      string
	Body      string
	IsActive  bool
}

// CreatePage inserts a page.
func (q *Queries) CreatePage(ctx context.Context, p CreatePageParams) (model.Page, error) {
	now := time.Now()
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO pages (section_id, title, slug, body, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING `+pageColumns,
		p.SectionID, p.Title, p.Slug, p.Body, p.IsActive, now, now)
	return scanPage(row)
}

// GetPage fetches a live page by id.
func (q *Queries) GetPage(ctx context.Context, id int64) (model.Page, error) {
	row := q.db.QueryRowContext(ctx,
		"SELECT "+pageColumns+" FROM pages WHERE id = ? AND deleted_at IS NULL", id)
	return scanPage(row)
}

// GetPageBySlug fetches a live page by slug.
func (q *Queries) GetPageBySlug(ctx context.Context, slug string) (model.Page, error) {
	row := q.db.QueryRowContext(ctx,
		"SELECT "+pageColumns+" FROM pages WHERE slug = ? AND deleted_at IS NULL", slug)
	return scanPage(row)
}

// CountPagesBySlug counts live pages carrying a slug, for uniqueness checks.
func (q *Queries) CountPagesBySlug(ctx context.Context, slug string) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM pages WHERE slug = ? AND deleted_at IS NULL", slug).Scan(&count)
	return count, err
}

func (q *Queries) queryPages(ctx context.Context, query string, args ...any) ([]model.Page, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var pages []model.Page
	for rows.Next() {
		p, err := scanPage(rows)
		if err != nil {
			return nil, err
		}
		pages = append(pages, p)
	}
	return pages, rows.Err()
}

// ListPages returns all live pages ordered by id.
func (q *Queries) ListPages(ctx context.Context) ([]model.Page, error) {
	return q.queryPages(ctx, "SELECT "+pageColumns+" FROM pages WHERE deleted_at IS NULL ORDER BY id")
}

// ListActivePages returns live, active pages ordered by id.
func (q *Queries) ListActivePages(ctx context.Context) ([]model.Page, error) {
	return q.queryPages(ctx,
		"SELECT "+pageColumns+" FROM pages WHERE deleted_at IS NULL AND is_active = 1 ORDER BY id")
}

// UpdatePageParams holds parameters for UpdatePage.
type UpdatePageParams struct {
	ID        int64
	SectionID sql.NullInt64
	Title     translate.Value
	Slug      string
	Body      string
	IsActive  bool
}

// UpdatePage updates a page's editable fields.
func (q *Queries) UpdatePage(ctx context.Context, p UpdatePageParams) (model.Page, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE pages SET section_id = ?, title = ?, slug = ?, body = ?, is_active = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
		RETURNING `+pageColumns,
		p.SectionID, p.Title, p.Slug, p.Body, p.IsActive, time.Now(), p.ID)
	return scanPage(row)
}

// SoftDeletePage marks a page deleted.
func (q *Queries) SoftDeletePage(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx,
		"UPDATE pages SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL",
		time.Now(), id)
	return err
}
