// Copyright (c) 2026 Sitepanel Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"errors"
	"testing"

	"github.com/sitepanel/sitepanel-go/internal/linkable"
	"github.com/sitepanel/sitepanel-go/internal/model"
	"github.com/sitepanel/sitepanel-go/internal/store"
	"github.com/sitepanel/sitepanel-go/internal/testutil"
	"github.com/sitepanel/sitepanel-go/internal/translate"
)

func newMenuService(t *testing.T) (*MenuService, *store.Queries, func()) {
	t.Helper()
	queries, cleanup := testutil.TestQueries(t)
	resolver := translate.NewResolver([]string{"en"}, nil)
	registry := linkable.NewRegistry(testutil.TestLoggerSilent())
	return NewMenuService(queries, registry, resolver, nil, testutil.TestLoggerSilent()), queries, cleanup
}

func mustMenu(t *testing.T, queries *store.Queries) model.Menu {
	t.Helper()
	menu, err := queries.CreateMenu(context.Background(), store.CreateMenuParams{
		Title:    translate.NewValue("en", "Main"),
		Code:     "main",
		IsActive: true,
	})
	if err != nil {
		t.Fatalf("CreateMenu: %v", err)
	}
	return menu
}

func mustItem(t *testing.T, svc *MenuService, menuID, parentID int64, label string) model.MenuItem {
	t.Helper()
	item, err := svc.CreateItem(context.Background(), ItemParams{
		MenuID:    menuID,
		ParentID:  parentID,
		Label:     translate.NewValue("en", label),
		Type:      model.ItemTypeCustomURL,
		CustomURL: "/" + label,
		IsActive:  true,
	})
	if err != nil {
		t.Fatalf("CreateItem %q: %v", label, err)
	}
	return item
}

func TestCreateItemValidation(t *testing.T) {
	svc, queries, cleanup := newMenuService(t)
	defer cleanup()
	ctx := context.Background()
	menu := mustMenu(t, queries)

	tests := []struct {
		name  string
		p     ItemParams
		field string
	}{
		{
			name:  "unknown type",
			p:     ItemParams{MenuID: menu.ID, Type: "external"},
			field: "type",
		},
		{
			name:  "custom url required",
			p:     ItemParams{MenuID: menu.ID, Type: model.ItemTypeCustomURL},
			field: "custom_url",
		},
		{
			name:  "custom url malformed",
			p:     ItemParams{MenuID: menu.ID, Type: model.ItemTypeCustomURL, CustomURL: "not a url"},
			field: "custom_url",
		},
		{
			name:  "unregistered linkable type",
			p:     ItemParams{MenuID: menu.ID, Type: model.ItemTypeLinkable, LinkableType: "widget", LinkableID: 1},
			field: "linkable_type",
		},
		{
			name:  "missing parent",
			p:     ItemParams{MenuID: menu.ID, ParentID: 999, Type: model.ItemTypeGroup},
			field: "parent_id",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateItem(ctx, tt.p)
			var verr *model.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Field != tt.field {
				t.Errorf("field = %q, want %q", verr.Field, tt.field)
			}
		})
	}
}

func TestCreateItemMissingMenu(t *testing.T) {
	svc, _, cleanup := newMenuService(t)
	defer cleanup()

	_, err := svc.CreateItem(context.Background(), ItemParams{
		MenuID:    12345,
		Type:      model.ItemTypeCustomURL,
		CustomURL: "/x",
	})
	var nfe *model.NotFoundError
	if !errors.As(err, &nfe) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestCreateItemAcceptsAbsoluteAndRelativeURLs(t *testing.T) {
	svc, queries, cleanup := newMenuService(t)
	defer cleanup()
	ctx := context.Background()
	menu := mustMenu(t, queries)

	for _, u := range []string{"https://example.com/docs", "/about", "/"} {
		_, err := svc.CreateItem(ctx, ItemParams{
			MenuID:    menu.ID,
			Label:     translate.NewValue("en", "link"),
			Type:      model.ItemTypeCustomURL,
			CustomURL: u,
			IsActive:  true,
		})
		if err != nil {
			t.Errorf("CreateItem with url %q: %v", u, err)
		}
	}
}

func TestMaxDepthEnforced(t *testing.T) {
	svc, queries, cleanup := newMenuService(t)
	defer cleanup()
	ctx := context.Background()
	menu := mustMenu(t, queries)

	parentID := model.RootParentID
	for i := 0; i < model.MaxMenuDepth; i++ {
		item := mustItem(t, svc, menu.ID, parentID, "level")
		parentID = item.ID
	}

	// parentID now sits at the maximum depth; one more level must fail
	_, err := svc.CreateItem(ctx, ItemParams{
		MenuID:   menu.ID,
		ParentID: parentID,
		Label:    translate.NewValue("en", "too deep"),
		Type:     model.ItemTypeGroup,
		IsActive: true,
	})
	var verr *model.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Field != "parent_id" {
		t.Errorf("field = %q, want parent_id", verr.Field)
	}
}

func TestMaxDepthEnforcedForMovedSubtree(t *testing.T) {
	svc, queries, cleanup := newMenuService(t)
	defer cleanup()
	ctx := context.Background()
	menu := mustMenu(t, queries)

	// A chain filling all but the last level, keeping each rung.
	chain := make([]model.MenuItem, 0, model.MaxMenuDepth-1)
	parentID := model.RootParentID
	for i := 0; i < model.MaxMenuDepth-1; i++ {
		item := mustItem(t, svc, menu.ID, parentID, "rung")
		chain = append(chain, item)
		parentID = item.ID
	}

	// A two-level subtree elsewhere in the menu.
	group := mustItem(t, svc, menu.ID, model.RootParentID, "group")
	mustItem(t, svc, menu.ID, group.ID, "leaf")

	// Under the second-to-last rung the subtree's leaf lands exactly on
	// the last level.
	_, err := svc.UpdateItem(ctx, group.ID, ItemParams{
		ParentID: chain[len(chain)-2].ID,
		Label:    group.Label, Type: group.Type, CustomURL: group.CustomURL.String,
		IsActive: true,
	})
	if err != nil {
		t.Fatalf("move within depth limit: %v", err)
	}

	// Under the last rung the group itself would fit, but its leaf would
	// fall past the maximum depth.
	_, err = svc.UpdateItem(ctx, group.ID, ItemParams{
		ParentID: chain[len(chain)-1].ID,
		Label:    group.Label, Type: group.Type, CustomURL: group.CustomURL.String,
		IsActive: true,
	})
	var verr *model.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Field != "parent_id" {
		t.Errorf("field = %q, want parent_id", verr.Field)
	}
}

func TestUpdateItemCycleGuard(t *testing.T) {
	svc, queries, cleanup := newMenuService(t)
	defer cleanup()
	ctx := context.Background()
	menu := mustMenu(t, queries)

	root := mustItem(t, svc, menu.ID, model.RootParentID, "root")
	child := mustItem(t, svc, menu.ID, root.ID, "child")
	grandchild := mustItem(t, svc, menu.ID, child.ID, "grandchild")

	// Self-parenting
	_, err := svc.UpdateItem(ctx, root.ID, ItemParams{
		ParentID: root.ID, Label: root.Label, Type: root.Type, CustomURL: root.CustomURL.String,
	})
	var verr *model.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("self parent: expected ValidationError, got %v", err)
	}

	// Reparenting under own descendant
	_, err = svc.UpdateItem(ctx, root.ID, ItemParams{
		ParentID: grandchild.ID, Label: root.Label, Type: root.Type, CustomURL: root.CustomURL.String,
	})
	if !errors.As(err, &verr) {
		t.Fatalf("descendant parent: expected ValidationError, got %v", err)
	}
}

func TestUpdateItemTypeChangeClearsOldLinkFields(t *testing.T) {
	svc, queries, cleanup := newMenuService(t)
	defer cleanup()
	ctx := context.Background()
	menu := mustMenu(t, queries)

	item := mustItem(t, svc, menu.ID, model.RootParentID, "home")

	updated, err := svc.UpdateItem(ctx, item.ID, ItemParams{
		Label:    item.Label,
		Type:     model.ItemTypeGroup,
		IsActive: true,
	})
	if err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}
	if updated.CustomURL.Valid {
		t.Errorf("custom URL not cleared after type change: %q", updated.CustomURL.String)
	}
	if updated.LinkableType.Valid || updated.LinkableID.Valid {
		t.Error("linkable fields set on a group item")
	}
}

func TestDeleteItemCascadesToAllDescendants(t *testing.T) {
	svc, queries, cleanup := newMenuService(t)
	defer cleanup()
	ctx := context.Background()
	menu := mustMenu(t, queries)

	root := mustItem(t, svc, menu.ID, model.RootParentID, "root")
	a := mustItem(t, svc, menu.ID, root.ID, "a")
	b := mustItem(t, svc, menu.ID, root.ID, "b")
	aa := mustItem(t, svc, menu.ID, a.ID, "aa")
	sibling := mustItem(t, svc, menu.ID, model.RootParentID, "sibling")
	siblingChild := mustItem(t, svc, menu.ID, sibling.ID, "sibling-child")

	if err := svc.DeleteItem(ctx, root.ID); err != nil {
		t.Fatalf("DeleteItem: %v", err)
	}

	var deletedAt int64
	for i, id := range []int64{root.ID, a.ID, b.ID, aa.ID} {
		item, err := queries.GetMenuItemWithTrashed(ctx, id)
		if err != nil {
			t.Fatalf("GetMenuItemWithTrashed(%d): %v", id, err)
		}
		if !item.IsDeleted() {
			t.Errorf("item %d not deleted", id)
			continue
		}
		// The whole cascade shares one tombstone timestamp
		if i == 0 {
			deletedAt = item.DeletedAt.Time.UnixNano()
		} else if item.DeletedAt.Time.UnixNano() != deletedAt {
			t.Errorf("item %d tombstone %d differs from root %d", id, item.DeletedAt.Time.UnixNano(), deletedAt)
		}
	}

	// Unrelated subtree untouched
	for _, id := range []int64{sibling.ID, siblingChild.ID} {
		item, err := queries.GetMenuItem(ctx, id)
		if err != nil {
			t.Fatalf("GetMenuItem(%d): %v", id, err)
		}
		if item.IsDeleted() {
			t.Errorf("sibling item %d deleted by unrelated cascade", id)
		}
	}
}

func TestRestoreItemDoesNotCascade(t *testing.T) {
	svc, queries, cleanup := newMenuService(t)
	defer cleanup()
	ctx := context.Background()
	menu := mustMenu(t, queries)

	root := mustItem(t, svc, menu.ID, model.RootParentID, "root")
	child := mustItem(t, svc, menu.ID, root.ID, "child")

	if err := svc.DeleteItem(ctx, root.ID); err != nil {
		t.Fatalf("DeleteItem: %v", err)
	}
	if err := svc.RestoreItem(ctx, root.ID); err != nil {
		t.Fatalf("RestoreItem: %v", err)
	}

	restored, err := queries.GetMenuItem(ctx, root.ID)
	if err != nil {
		t.Fatalf("GetMenuItem: %v", err)
	}
	if restored.IsDeleted() {
		t.Error("root still deleted after restore")
	}
	childRow, err := queries.GetMenuItemWithTrashed(ctx, child.ID)
	if err != nil {
		t.Fatalf("GetMenuItemWithTrashed: %v", err)
	}
	if !childRow.IsDeleted() {
		t.Error("child restored alongside parent")
	}
}

func TestRestoreItemRequiresTombstone(t *testing.T) {
	svc, queries, cleanup := newMenuService(t)
	defer cleanup()
	menu := mustMenu(t, queries)
	item := mustItem(t, svc, menu.ID, model.RootParentID, "live")

	err := svc.RestoreItem(context.Background(), item.ID)
	var verr *model.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestForceDeleteItem(t *testing.T) {
	svc, queries, cleanup := newMenuService(t)
	defer cleanup()
	ctx := context.Background()
	menu := mustMenu(t, queries)
	item := mustItem(t, svc, menu.ID, model.RootParentID, "gone")

	// Live items cannot be force-deleted
	err := svc.ForceDeleteItem(ctx, item.ID)
	var verr *model.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError for live item, got %v", err)
	}

	if err := svc.DeleteItem(ctx, item.ID); err != nil {
		t.Fatalf("DeleteItem: %v", err)
	}
	if err := svc.ForceDeleteItem(ctx, item.ID); err != nil {
		t.Fatalf("ForceDeleteItem: %v", err)
	}
	_, err = queries.GetMenuItemWithTrashed(ctx, item.ID)
	if err == nil {
		t.Error("row still present after force delete")
	}
}

func TestReorder(t *testing.T) {
	svc, queries, cleanup := newMenuService(t)
	defer cleanup()
	ctx := context.Background()
	menu := mustMenu(t, queries)

	a := mustItem(t, svc, menu.ID, model.RootParentID, "a")
	b := mustItem(t, svc, menu.ID, model.RootParentID, "b")
	c := mustItem(t, svc, menu.ID, model.RootParentID, "c")
	nested := mustItem(t, svc, menu.ID, a.ID, "nested")

	if err := svc.Reorder(ctx, menu.ID, model.RootParentID, []int64{c.ID, a.ID, b.ID}); err != nil {
		t.Fatalf("Reorder: %v", err)
	}

	items, err := svc.ListItems(ctx, menu.ID)
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	order := make(map[int64]int64)
	for _, item := range items {
		order[item.ID] = item.SortOrder
	}
	if order[c.ID] != 0 || order[a.ID] != 1 || order[b.ID] != 2 {
		t.Errorf("sort orders = c:%d a:%d b:%d, want 0/1/2", order[c.ID], order[a.ID], order[b.ID])
	}

	// Member of a different sibling group
	err = svc.Reorder(ctx, menu.ID, model.RootParentID, []int64{a.ID, nested.ID})
	var verr *model.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("foreign sibling: expected ValidationError, got %v", err)
	}

	// Duplicate id
	err = svc.Reorder(ctx, menu.ID, model.RootParentID, []int64{a.ID, a.ID})
	if !errors.As(err, &verr) {
		t.Fatalf("duplicate id: expected ValidationError, got %v", err)
	}
}

func TestHierarchicalOptions(t *testing.T) {
	svc, queries, cleanup := newMenuService(t)
	defer cleanup()
	ctx := context.Background()
	menu := mustMenu(t, queries)

	root := mustItem(t, svc, menu.ID, model.RootParentID, "root")
	child := mustItem(t, svc, menu.ID, root.ID, "child")
	grandchild := mustItem(t, svc, menu.ID, child.ID, "grandchild")
	second := mustItem(t, svc, menu.ID, model.RootParentID, "second")

	options, err := svc.HierarchicalOptions(ctx, menu.ID, 0)
	if err != nil {
		t.Fatalf("HierarchicalOptions: %v", err)
	}
	wantIDs := []int64{root.ID, child.ID, grandchild.ID, second.ID}
	if len(options) != len(wantIDs) {
		t.Fatalf("got %d options, want %d", len(options), len(wantIDs))
	}
	for i, opt := range options {
		if opt.ID != wantIDs[i] {
			t.Errorf("option[%d].ID = %d, want %d", i, opt.ID, wantIDs[i])
		}
	}
	if options[0].Label != "root" {
		t.Errorf("root label = %q", options[0].Label)
	}
	if options[2].Label != "— — grandchild" {
		t.Errorf("grandchild label = %q, want two indent markers", options[2].Label)
	}

	// Excluding root removes its whole subtree
	options, err = svc.HierarchicalOptions(ctx, menu.ID, root.ID)
	if err != nil {
		t.Fatalf("HierarchicalOptions(exclude): %v", err)
	}
	if len(options) != 1 || options[0].ID != second.ID {
		t.Errorf("excluded options = %+v, want only %d", options, second.ID)
	}
}

func TestFullPath(t *testing.T) {
	svc, queries, cleanup := newMenuService(t)
	defer cleanup()
	ctx := context.Background()
	menu := mustMenu(t, queries)

	root := mustItem(t, svc, menu.ID, model.RootParentID, "products")
	child := mustItem(t, svc, menu.ID, root.ID, "hardware")
	grandchild := mustItem(t, svc, menu.ID, child.ID, "keyboards")

	path, err := svc.FullPath(ctx, grandchild.ID)
	if err != nil {
		t.Fatalf("FullPath: %v", err)
	}
	if path != "products > hardware > keyboards" {
		t.Errorf("path = %q", path)
	}
}

func TestResolveURL(t *testing.T) {
	queries, cleanup := testutil.TestQueries(t)
	defer cleanup()
	ctx := context.Background()

	resolver := translate.NewResolver([]string{"en"}, nil)
	registry := linkable.NewRegistry(testutil.TestLoggerSilent())
	pages := NewPageService(queries, resolver)
	registry.Register(LinkableTypePage, pages)
	svc := NewMenuService(queries, registry, resolver, nil, testutil.TestLoggerSilent())

	menu := mustMenu(t, queries)
	page, err := pages.Create(ctx, store.CreatePageParams{
		Title:    translate.NewValue("en", "About"),
		IsActive: true,
	})
	if err != nil {
		t.Fatalf("creating page: %v", err)
	}

	custom := mustItem(t, svc, menu.ID, model.RootParentID, "docs")
	group, err := svc.CreateItem(ctx, ItemParams{
		MenuID: menu.ID, Label: translate.NewValue("en", "More"),
		Type: model.ItemTypeGroup, IsActive: true,
	})
	if err != nil {
		t.Fatalf("creating group: %v", err)
	}
	linked, err := svc.CreateItem(ctx, ItemParams{
		MenuID: menu.ID, Label: translate.NewValue("en", "About"),
		Type: model.ItemTypeLinkable, LinkableType: LinkableTypePage, LinkableID: page.ID,
		IsActive: true,
	})
	if err != nil {
		t.Fatalf("creating linkable item: %v", err)
	}

	tests := []struct {
		name string
		id   int64
		want string
	}{
		{"custom url", custom.ID, "/docs"},
		{"group has no url", group.ID, ""},
		{"linkable resolves", linked.ID, "/about"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.ResolveURL(ctx, tt.id)
			if err != nil {
				t.Fatalf("ResolveURL: %v", err)
			}
			if got != tt.want {
				t.Errorf("url = %q, want %q", got, tt.want)
			}
		})
	}

	// A dangling reference resolves to "" rather than an error
	if err := pages.Delete(ctx, page.ID); err != nil {
		t.Fatalf("deleting page: %v", err)
	}
	got, err := svc.ResolveURL(ctx, linked.ID)
	if err != nil {
		t.Fatalf("ResolveURL after target delete: %v", err)
	}
	if got != "" {
		t.Errorf("dangling url = %q, want empty", got)
	}
}

func TestTreeComposition(t *testing.T) {
	svc, queries, cleanup := newMenuService(t)
	defer cleanup()
	ctx := context.Background()
	menu := mustMenu(t, queries)

	root := mustItem(t, svc, menu.ID, model.RootParentID, "root")
	childA := mustItem(t, svc, menu.ID, root.ID, "a")
	childB := mustItem(t, svc, menu.ID, root.ID, "b")

	if err := svc.Reorder(ctx, menu.ID, root.ID, []int64{childB.ID, childA.ID}); err != nil {
		t.Fatalf("Reorder: %v", err)
	}

	tree, err := svc.Tree(ctx, menu.ID)
	if err != nil {
		t.Fatalf("Tree: %v", err)
	}
	if len(tree) != 1 {
		t.Fatalf("got %d roots, want 1", len(tree))
	}
	if len(tree[0].Children) != 2 {
		t.Fatalf("got %d children, want 2", len(tree[0].Children))
	}
	if tree[0].Children[0].ID != childB.ID || tree[0].Children[1].ID != childA.ID {
		t.Errorf("children order = %d,%d want %d,%d",
			tree[0].Children[0].ID, tree[0].Children[1].ID, childB.ID, childA.ID)
	}

	// Deleted subtrees disappear from the tree
	if err := svc.DeleteItem(ctx, root.ID); err != nil {
		t.Fatalf("DeleteItem: %v", err)
	}
	tree, err = svc.Tree(ctx, menu.ID)
	if err != nil {
		t.Fatalf("Tree after delete: %v", err)
	}
	if len(tree) != 0 {
		t.Errorf("got %d roots after delete, want 0", len(tree))
	}
}

func TestHasChildren(t *testing.T) {
	svc, queries, cleanup := newMenuService(t)
	defer cleanup()
	ctx := context.Background()
	menu := mustMenu(t, queries)

	root := mustItem(t, svc, menu.ID, model.RootParentID, "root")
	child := mustItem(t, svc, menu.ID, root.ID, "child")

	has, err := svc.HasChildren(ctx, root.ID)
	if err != nil {
		t.Fatalf("HasChildren: %v", err)
	}
	if !has {
		t.Error("root reported childless")
	}

	if err := svc.DeleteItem(ctx, child.ID); err != nil {
		t.Fatalf("DeleteItem: %v", err)
	}
	has, err = svc.HasChildren(ctx, root.ID)
	if err != nil {
		t.Fatalf("HasChildren after delete: %v", err)
	}
	if has {
		t.Error("deleted child still counted")
	}
}

func TestTreeFormattedName(t *testing.T) {
	svc, queries, cleanup := newMenuService(t)
	defer cleanup()
	ctx := context.Background()
	menu := mustMenu(t, queries)

	root := mustItem(t, svc, menu.ID, model.RootParentID, "root")
	child := mustItem(t, svc, menu.ID, root.ID, "child")

	name, err := svc.TreeFormattedName(ctx, child.ID)
	if err != nil {
		t.Fatalf("TreeFormattedName: %v", err)
	}
	if name != "— child" {
		t.Errorf("name = %q", name)
	}
}
