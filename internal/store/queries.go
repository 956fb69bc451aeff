// Copyright (c) 2026 Sitepanel Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sitepanel/sitepanel-go/internal/tenancy"
)

// DBTX is the subset of database/sql used by queries, satisfied by both
// *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Queries provides typed access to all tables. Tenant-scoped tables
// (sections, menus) apply the tenancy policy implicitly.
type Queries struct {
	db      DBTX
	tenancy tenancy.Policy
}

// New creates a Queries without tenant scoping.
func New(db DBTX) *Queries {
	return &Queries{db: db, tenancy: tenancy.Disabled()}
}

// NewWithTenancy creates a Queries applying the given tenancy policy to
// Section and Menu access.
func NewWithTenancy(db DBTX, policy tenancy.Policy) *Queries {
	return &Queries{db: db, tenancy: policy}
}

// WithTx returns a Queries bound to the given transaction, keeping the
// same tenancy policy.
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx, tenancy: q.tenancy}
}

// tenantFilter builds an additional WHERE clause scoping a query to the
// current tenant. Returns an empty clause when tenancy is disabled or no
// tenant is resolvable (system access sees all rows).
func (q *Queries) tenantFilter(ctx context.Context) (string, []any) {
	if !q.tenancy.Enabled {
		return "", nil
	}
	id := q.tenancy.CurrentTenantID(ctx)
	if !id.Valid {
		return "", nil
	}
	return fmt.Sprintf(" AND %s = ?", q.tenancy.Column), []any{id.Int64}
}
