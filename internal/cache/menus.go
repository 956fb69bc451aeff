// Copyright (c) 2026 Sitepanel Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sitepanel/sitepanel-go/internal/model"
)

// menuKeyPrefix namespaces menu tree entries inside the shared cache.
const menuKeyPrefix = "menus:tree:"

// MenuCache caches built menu item trees keyed by menu ID. Trees are stored
// JSON-encoded so the same code works over memory and Redis backends.
// Any menu item mutation must invalidate the owning menu's entry.
type MenuCache struct {
	cache Cacher
	ttl   time.Duration
}

// NewMenuCache creates a menu cache over the given backend.
func NewMenuCache(cache Cacher, ttl time.Duration) *MenuCache {
	if ttl == 0 {
		ttl = time.Hour
	}
	return &MenuCache{cache: cache, ttl: ttl}
}

func menuKey(menuID int64) string {
	return fmt.Sprintf("%s%d", menuKeyPrefix, menuID)
}

// GetTree returns the cached tree for a menu, or (nil, false) on a miss.
// Backend errors other than a miss are swallowed: the caller rebuilds from
// the database either way.
func (c *MenuCache) GetTree(ctx context.Context, menuID int64) ([]model.MenuItemNode, bool) {
	data, err := c.cache.Get(ctx, menuKey(menuID))
	if err != nil {
		return nil, false
	}

	var tree []model.MenuItemNode
	if err := json.Unmarshal(data, &tree); err != nil {
		// Stale or corrupt entry, drop it.
		_ = c.cache.Delete(ctx, menuKey(menuID))
		return nil, false
	}
	return tree, true
}

// SetTree stores the built tree for a menu.
func (c *MenuCache) SetTree(ctx context.Context, menuID int64, tree []model.MenuItemNode) error {
	data, err := json.Marshal(tree)
	if err != nil {
		return fmt.Errorf("encoding menu tree: %w", err)
	}
	return c.cache.Set(ctx, menuKey(menuID), data, c.ttl)
}

// Invalidate drops the cached tree for one menu.
func (c *MenuCache) Invalidate(ctx context.Context, menuID int64) {
	_ = c.cache.Delete(ctx, menuKey(menuID))
}

// InvalidateAll drops every cached menu tree.
func (c *MenuCache) InvalidateAll(ctx context.Context) {
	type prefixDeleter interface {
		DeleteByPrefix(ctx context.Context, prefix string) error
	}
	if pd, ok := c.cache.(prefixDeleter); ok {
		_ = pd.DeleteByPrefix(ctx, menuKeyPrefix)
		return
	}
	_ = c.cache.Clear(ctx)
}

// Healthy reports whether the backing cache is usable.
func (c *MenuCache) Healthy(ctx context.Context) bool {
	_, err := c.cache.Has(ctx, menuKey(0))
	return err == nil || errors.Is(err, ErrCacheMiss)
}
