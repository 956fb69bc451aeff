// Copyright (c) 2026 Sitepanel Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package store_test

import (
	"context"
	"testing"

	"github.com/sitepanel/sitepanel-go/internal/store"
	"github.com/sitepanel/sitepanel-go/internal/tenancy"
	"github.com/sitepanel/sitepanel-go/internal/testutil"
	"github.com/sitepanel/sitepanel-go/internal/translate"
)

func TestTenantScopingOnSections(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	queries := store.NewWithTenancy(db, tenancy.NewPolicy("tenant_id", nil))
	ctxA := tenancy.WithTenant(context.Background(), 1)
	ctxB := tenancy.WithTenant(context.Background(), 2)

	// Creates stamp the current tenant when none is supplied
	sectionA, err := queries.CreateSection(ctxA, store.CreateSectionParams{
		Name: translate.NewValue("en", "Tenant A News"), Code: "news-a", IsActive: true,
	})
	if err != nil {
		t.Fatalf("CreateSection: %v", err)
	}
	if !sectionA.TenantID.Valid || sectionA.TenantID.Int64 != 1 {
		t.Errorf("tenant not stamped: %+v", sectionA.TenantID)
	}

	if _, err := queries.CreateSection(ctxB, store.CreateSectionParams{
		Name: translate.NewValue("en", "Tenant B News"), Code: "news-b", IsActive: true,
	}); err != nil {
		t.Fatalf("CreateSection (B): %v", err)
	}

	// Lists see only the current tenant's rows
	listA, err := queries.ListSections(ctxA)
	if err != nil {
		t.Fatalf("ListSections: %v", err)
	}
	if len(listA) != 1 || listA[0].Code != "news-a" {
		t.Errorf("tenant A sees %d sections: %+v", len(listA), listA)
	}

	// Gets across the tenant boundary miss
	if _, err := queries.GetSection(ctxB, sectionA.ID); err == nil {
		t.Error("tenant B fetched tenant A's section")
	}

	// System access (no tenant in context) sees all rows
	all, err := queries.ListSections(context.Background())
	if err != nil {
		t.Fatalf("ListSections (system): %v", err)
	}
	if len(all) != 2 {
		t.Errorf("system access sees %d sections, want 2", len(all))
	}
}

func TestTenantScopingOnMenus(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	queries := store.NewWithTenancy(db, tenancy.NewPolicy("tenant_id", nil))
	ctxA := tenancy.WithTenant(context.Background(), 1)
	ctxB := tenancy.WithTenant(context.Background(), 2)

	menu, err := queries.CreateMenu(ctxA, store.CreateMenuParams{
		Title: translate.NewValue("en", "Main"), Code: "main", IsActive: true,
	})
	if err != nil {
		t.Fatalf("CreateMenu: %v", err)
	}

	if _, err := queries.GetMenuByID(ctxA, menu.ID); err != nil {
		t.Errorf("owner cannot fetch own menu: %v", err)
	}
	if _, err := queries.GetMenuByID(ctxB, menu.ID); err == nil {
		t.Error("foreign tenant fetched the menu")
	}
}

func TestDisabledTenancySeesEverything(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	scoped := store.NewWithTenancy(db, tenancy.NewPolicy("tenant_id", nil))
	plain := store.New(db)

	ctxA := tenancy.WithTenant(context.Background(), 1)
	if _, err := scoped.CreateSection(ctxA, store.CreateSectionParams{
		Name: translate.NewValue("en", "Scoped"), Code: "scoped", IsActive: true,
	}); err != nil {
		t.Fatalf("CreateSection: %v", err)
	}

	sections, err := plain.ListSections(ctxA)
	if err != nil {
		t.Fatalf("ListSections: %v", err)
	}
	if len(sections) != 1 {
		t.Errorf("unscoped queries see %d sections, want 1", len(sections))
	}
}
