// Copyright (c) 2026 Sitepanel Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package tenancy provides optional tenant scoping for Sections and Menus.
// When enabled, list and get queries are implicitly filtered to the current
// tenant and creates stamp the tenant id when absent.
package tenancy

import (
	"context"
	"database/sql"
)

type contextKey string

const tenantContextKey contextKey = "tenant_id"

// ResolverFunc resolves the current tenant id for a request context.
// Returning false means no tenant is known (e.g. a system operation).
type ResolverFunc func(ctx context.Context) (int64, bool)

// Policy describes how tenant scoping is applied by the persistence layer.
// The zero value is a disabled policy.
type Policy struct {
	Enabled  bool
	Column   string
	resolver ResolverFunc
}

// Disabled returns a policy that applies no tenant scoping.
func Disabled() Policy {
	return Policy{}
}

// NewPolicy creates an enabled tenancy policy using the given foreign key
// column name and tenant resolver. A nil resolver reads the tenant id from
// the request context (see WithTenant).
func NewPolicy(column string, resolver ResolverFunc) Policy {
	if column == "" {
		column = "tenant_id"
	}
	if resolver == nil {
		resolver = TenantFromContext
	}
	return Policy{Enabled: true, Column: column, resolver: resolver}
}

// CurrentTenantID resolves the current tenant for ctx.
// Returns an invalid NullInt64 when tenancy is disabled or no tenant is known.
func (p Policy) CurrentTenantID(ctx context.Context) sql.NullInt64 {
	if !p.Enabled || p.resolver == nil {
		return sql.NullInt64{}
	}
	if id, ok := p.resolver(ctx); ok {
		return sql.NullInt64{Int64: id, Valid: true}
	}
	return sql.NullInt64{}
}

// Stamp fills in the tenant id on a create when the caller left it unset.
func (p Policy) Stamp(ctx context.Context, current sql.NullInt64) sql.NullInt64 {
	if !p.Enabled || current.Valid {
		return current
	}
	return p.CurrentTenantID(ctx)
}

// WithTenant returns a context carrying a tenant id.
func WithTenant(ctx context.Context, tenantID int64) context.Context {
	return context.WithValue(ctx, tenantContextKey, tenantID)
}

// TenantFromContext reads the tenant id stored by WithTenant.
func TenantFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(tenantContextKey).(int64)
	return id, ok
}
