// Copyright (c) 2026 Sitepanel Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"time"

	"github.com/sitepanel/sitepanel-go/internal/translate"
)

// Section represents a top-level content grouping. Sections carry the
// tenant foreign key when tenancy is enabled.
type Section struct {
	ID        int64           `json:"id"`
	Name      translate.Value `json:"name"`
	Code      string          `json:"code"`
	IsActive  bool            `json:"is_active"`
	TenantID  sql.NullInt64   `json:"tenant_id,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	DeletedAt sql.NullTime    `json:"deleted_at,omitempty"`
}

// Page represents a content page belonging to a section. The body is
// stored as markdown and rendered to sanitized HTML on demand.
type Page struct {
	ID        int64           `json:"id"`
	SectionID sql.NullInt64   `json:"section_id,omitempty"`
	Title     translate.Value `json:"title"`
	Slug      string          `json:"slug"`
	Body      string          `json:"body"`
	IsActive  bool            `json:"is_active"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	DeletedAt sql.NullTime    `json:"deleted_at,omitempty"`
}
