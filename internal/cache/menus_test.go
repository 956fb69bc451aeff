// Copyright (c) 2026 Sitepanel Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/sitepanel/sitepanel-go/internal/model"
	"github.com/sitepanel/sitepanel-go/internal/translate"
)

func sampleTree() []model.MenuItemNode {
	root := model.MenuItemNode{}
	root.ID = 1
	root.Label = translate.NewValue("en", "Home")
	child := model.MenuItemNode{}
	child.ID = 2
	child.ParentID = 1
	root.Children = []model.MenuItemNode{child}
	return []model.MenuItemNode{root}
}

func TestMenuCacheRoundTrip(t *testing.T) {
	backend := NewSimpleMemoryCache(time.Minute)
	defer func() { _ = backend.Close() }()
	mc := NewMenuCache(backend, time.Minute)
	ctx := context.Background()

	if _, ok := mc.GetTree(ctx, 1); ok {
		t.Fatal("hit on empty cache")
	}

	if err := mc.SetTree(ctx, 1, sampleTree()); err != nil {
		t.Fatalf("SetTree: %v", err)
	}
	tree, ok := mc.GetTree(ctx, 1)
	if !ok {
		t.Fatal("miss after SetTree")
	}
	if len(tree) != 1 || tree[0].ID != 1 || len(tree[0].Children) != 1 {
		t.Errorf("tree = %+v", tree)
	}
}

func TestMenuCacheInvalidate(t *testing.T) {
	backend := NewSimpleMemoryCache(time.Minute)
	defer func() { _ = backend.Close() }()
	mc := NewMenuCache(backend, time.Minute)
	ctx := context.Background()

	_ = mc.SetTree(ctx, 1, sampleTree())
	_ = mc.SetTree(ctx, 2, sampleTree())

	mc.Invalidate(ctx, 1)
	if _, ok := mc.GetTree(ctx, 1); ok {
		t.Error("menu 1 survived Invalidate")
	}
	if _, ok := mc.GetTree(ctx, 2); !ok {
		t.Error("menu 2 dropped by single-menu Invalidate")
	}

	mc.InvalidateAll(ctx)
	if _, ok := mc.GetTree(ctx, 2); ok {
		t.Error("menu 2 survived InvalidateAll")
	}
}

func TestMenuCacheCorruptEntryDropped(t *testing.T) {
	backend := NewSimpleMemoryCache(time.Minute)
	defer func() { _ = backend.Close() }()
	mc := NewMenuCache(backend, time.Minute)
	ctx := context.Background()

	_ = backend.Set(ctx, "menus:tree:7", []byte("not json"), 0)
	if _, ok := mc.GetTree(ctx, 7); ok {
		t.Fatal("corrupt entry returned as a tree")
	}
	// Dropped, not just skipped
	if has, _ := backend.Has(ctx, "menus:tree:7"); has {
		t.Error("corrupt entry still cached")
	}
}

func TestMenuCacheHealthy(t *testing.T) {
	backend := NewSimpleMemoryCache(time.Minute)
	mc := NewMenuCache(backend, time.Minute)
	ctx := context.Background()

	if !mc.Healthy(ctx) {
		t.Error("fresh backend reported unhealthy")
	}
	_ = backend.Close()
	if mc.Healthy(ctx) {
		t.Error("closed backend reported healthy")
	}
}
