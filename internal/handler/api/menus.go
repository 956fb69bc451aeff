// Copyright (c) 2026 Sitepanel Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/sitepanel/sitepanel-go/internal/model"
	"github.com/sitepanel/sitepanel-go/internal/service"
	"github.com/sitepanel/sitepanel-go/internal/store"
	"github.com/sitepanel/sitepanel-go/internal/translate"
)

type menuRequest struct {
	Title    translate.Value `json:"title"`
	Code     string          `json:"code"`
	IsActive bool            `json:"is_active"`
}

// ListMenus returns all live menus.
func (h *Handler) ListMenus(w http.ResponseWriter, r *http.Request) {
	if !h.policies.Menu.CanViewAny(r.Context(), actor(r)) {
		WriteForbidden(w)
		return
	}
	menus, err := h.menus.ListMenus(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteSuccess(w, menus, &Meta{Total: len(menus)})
}

// CreateMenu creates a menu.
func (h *Handler) CreateMenu(w http.ResponseWriter, r *http.Request) {
	if !h.policies.Menu.CanCreate(r.Context(), actor(r)) {
		WriteForbidden(w)
		return
	}
	var req menuRequest
	if err := decode(r, &req); err != nil {
		WriteBadRequest(w, "invalid request body")
		return
	}
	menu, err := h.menus.CreateMenu(r.Context(), store.CreateMenuParams{
		Title:    req.Title,
		Code:     req.Code,
		IsActive: req.IsActive,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteCreated(w, menu)
}

// GetMenu returns one menu.
func (h *Handler) GetMenu(w http.ResponseWriter, r *http.Request) {
	if !h.policies.Menu.CanView(r.Context(), actor(r)) {
		WriteForbidden(w)
		return
	}
	id, err := idParam(r, "id")
	if err != nil {
		WriteBadRequest(w, "invalid menu id")
		return
	}
	menu, err := h.menus.GetMenu(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteSuccess(w, menu, nil)
}

// UpdateMenu updates a menu.
func (h *Handler) UpdateMenu(w http.ResponseWriter, r *http.Request) {
	if !h.policies.Menu.CanUpdate(r.Context(), actor(r)) {
		WriteForbidden(w)
		return
	}
	id, err := idParam(r, "id")
	if err != nil {
		WriteBadRequest(w, "invalid menu id")
		return
	}
	var req menuRequest
	if err := decode(r, &req); err != nil {
		WriteBadRequest(w, "invalid request body")
		return
	}
	menu, err := h.menus.UpdateMenu(r.Context(), store.UpdateMenuParams{
		ID:       id,
		Title:    req.Title,
		Code:     req.Code,
		IsActive: req.IsActive,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteSuccess(w, menu, nil)
}

// DeleteMenu soft-deletes a menu.
func (h *Handler) DeleteMenu(w http.ResponseWriter, r *http.Request) {
	if !h.policies.Menu.CanDelete(r.Context(), actor(r)) {
		WriteForbidden(w)
		return
	}
	id, err := idParam(r, "id")
	if err != nil {
		WriteBadRequest(w, "invalid menu id")
		return
	}
	if err := h.menus.DeleteMenu(r.Context(), id); err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteSuccess(w, map[string]bool{"deleted": true}, nil)
}

// MenuTree returns the menu's live items composed into a tree.
func (h *Handler) MenuTree(w http.ResponseWriter, r *http.Request) {
	if !h.policies.MenuItem.CanViewAny(r.Context(), actor(r)) {
		WriteForbidden(w)
		return
	}
	id, err := idParam(r, "id")
	if err != nil {
		WriteBadRequest(w, "invalid menu id")
		return
	}
	tree, err := h.menus.Tree(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteSuccess(w, tree, nil)
}

// ListMenuItems returns the menu's items. ?trashed=1 includes soft-deleted
// items.
func (h *Handler) ListMenuItems(w http.ResponseWriter, r *http.Request) {
	if !h.policies.MenuItem.CanViewAny(r.Context(), actor(r)) {
		WriteForbidden(w)
		return
	}
	id, err := idParam(r, "id")
	if err != nil {
		WriteBadRequest(w, "invalid menu id")
		return
	}

	var items []model.MenuItem
	if r.URL.Query().Get("trashed") == "1" {
		items, err = h.menus.ListItemsWithTrashed(r.Context(), id)
	} else {
		items, err = h.menus.ListItems(r.Context(), id)
	}
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteSuccess(w, items, &Meta{Total: len(items)})
}

type menuItemRequest struct {
	ParentID     int64           `json:"parent_id"`
	Label        translate.Value `json:"label"`
	Type         string          `json:"type"`
	CustomURL    string          `json:"custom_url"`
	LinkableType string          `json:"linkable_type"`
	LinkableID   int64           `json:"linkable_id"`
	NewTab       bool            `json:"new_tab"`
	IsActive     bool            `json:"is_active"`
	SortOrder    int64           `json:"sort_order"`
}

func (req menuItemRequest) params(menuID int64) service.ItemParams {
	return service.ItemParams{
		MenuID:       menuID,
		ParentID:     req.ParentID,
		Label:        req.Label,
		Type:         req.Type,
		CustomURL:    req.CustomURL,
		LinkableType: req.LinkableType,
		LinkableID:   req.LinkableID,
		NewTab:       req.NewTab,
		IsActive:     req.IsActive,
		SortOrder:    req.SortOrder,
	}
}

// CreateMenuItem creates an item under a menu.
func (h *Handler) CreateMenuItem(w http.ResponseWriter, r *http.Request) {
	if !h.policies.MenuItem.CanCreate(r.Context(), actor(r)) {
		WriteForbidden(w)
		return
	}
	menuID, err := idParam(r, "id")
	if err != nil {
		WriteBadRequest(w, "invalid menu id")
		return
	}
	var req menuItemRequest
	if err := decode(r, &req); err != nil {
		WriteBadRequest(w, "invalid request body")
		return
	}
	item, err := h.menus.CreateItem(r.Context(), req.params(menuID))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteCreated(w, item)
}

// GetMenuItem returns one live item.
func (h *Handler) GetMenuItem(w http.ResponseWriter, r *http.Request) {
	if !h.policies.MenuItem.CanView(r.Context(), actor(r)) {
		WriteForbidden(w)
		return
	}
	id, err := idParam(r, "id")
	if err != nil {
		WriteBadRequest(w, "invalid item id")
		return
	}
	item, err := h.menus.GetItem(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteSuccess(w, item, nil)
}

// UpdateMenuItem updates an item.
func (h *Handler) UpdateMenuItem(w http.ResponseWriter, r *http.Request) {
	if !h.policies.MenuItem.CanUpdate(r.Context(), actor(r)) {
		WriteForbidden(w)
		return
	}
	id, err := idParam(r, "id")
	if err != nil {
		WriteBadRequest(w, "invalid item id")
		return
	}
	var req menuItemRequest
	if err := decode(r, &req); err != nil {
		WriteBadRequest(w, "invalid request body")
		return
	}
	item, err := h.menus.UpdateItem(r.Context(), id, req.params(0))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteSuccess(w, item, nil)
}

// DeleteMenuItem soft-deletes an item and its descendants.
func (h *Handler) DeleteMenuItem(w http.ResponseWriter, r *http.Request) {
	if !h.policies.MenuItem.CanDelete(r.Context(), actor(r)) {
		WriteForbidden(w)
		return
	}
	id, err := idParam(r, "id")
	if err != nil {
		WriteBadRequest(w, "invalid item id")
		return
	}
	if err := h.menus.DeleteItem(r.Context(), id); err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteSuccess(w, map[string]bool{"deleted": true}, nil)
}

// RestoreMenuItem restores a single soft-deleted item.
func (h *Handler) RestoreMenuItem(w http.ResponseWriter, r *http.Request) {
	if !h.policies.MenuItem.CanRestore(r.Context(), actor(r)) {
		WriteForbidden(w)
		return
	}
	id, err := idParam(r, "id")
	if err != nil {
		WriteBadRequest(w, "invalid item id")
		return
	}
	if err := h.menus.RestoreItem(r.Context(), id); err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteSuccess(w, map[string]bool{"restored": true}, nil)
}

// ForceDeleteMenuItem permanently erases a single soft-deleted item.
func (h *Handler) ForceDeleteMenuItem(w http.ResponseWriter, r *http.Request) {
	if !h.policies.MenuItem.CanForceDelete(r.Context(), actor(r)) {
		WriteForbidden(w)
		return
	}
	id, err := idParam(r, "id")
	if err != nil {
		WriteBadRequest(w, "invalid item id")
		return
	}
	if err := h.menus.ForceDeleteItem(r.Context(), id); err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteSuccess(w, map[string]bool{"deleted": true}, nil)
}

type reorderRequest struct {
	ParentID   int64   `json:"parent_id"`
	OrderedIDs []int64 `json:"ordered_ids"`
}

// ReorderMenuItems reassigns sort orders within one sibling group.
func (h *Handler) ReorderMenuItems(w http.ResponseWriter, r *http.Request) {
	if !h.policies.MenuItem.CanUpdate(r.Context(), actor(r)) {
		WriteForbidden(w)
		return
	}
	menuID, err := idParam(r, "id")
	if err != nil {
		WriteBadRequest(w, "invalid menu id")
		return
	}
	var req reorderRequest
	if err := decode(r, &req); err != nil {
		WriteBadRequest(w, "invalid request body")
		return
	}
	if err := h.menus.Reorder(r.Context(), menuID, req.ParentID, req.OrderedIDs); err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteSuccess(w, map[string]bool{"reordered": true}, nil)
}

// MenuItemParentOptions returns the indented parent picker entries.
// ?exclude=ID omits an item and its subtree.
func (h *Handler) MenuItemParentOptions(w http.ResponseWriter, r *http.Request) {
	if !h.policies.MenuItem.CanViewAny(r.Context(), actor(r)) {
		WriteForbidden(w)
		return
	}
	menuID, err := idParam(r, "id")
	if err != nil {
		WriteBadRequest(w, "invalid menu id")
		return
	}
	var excludeID int64
	if raw := r.URL.Query().Get("exclude"); raw != "" {
		if excludeID, err = parseID(raw); err != nil {
			WriteBadRequest(w, "invalid exclude id")
			return
		}
	}
	options, err := h.menus.HierarchicalOptions(r.Context(), menuID, excludeID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteSuccess(w, options, &Meta{Total: len(options)})
}

// ResolveMenuItemURL returns the item's destination URL, empty when the
// item has none.
func (h *Handler) ResolveMenuItemURL(w http.ResponseWriter, r *http.Request) {
	if !h.policies.MenuItem.CanView(r.Context(), actor(r)) {
		WriteForbidden(w)
		return
	}
	id, err := idParam(r, "id")
	if err != nil {
		WriteBadRequest(w, "invalid item id")
		return
	}
	url, err := h.menus.ResolveURL(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteSuccess(w, map[string]string{"url": url}, nil)
}

// MenuItemPath returns the item's " > "-joined ancestor path.
func (h *Handler) MenuItemPath(w http.ResponseWriter, r *http.Request) {
	if !h.policies.MenuItem.CanView(r.Context(), actor(r)) {
		WriteForbidden(w)
		return
	}
	id, err := idParam(r, "id")
	if err != nil {
		WriteBadRequest(w, "invalid item id")
		return
	}
	path, err := h.menus.FullPath(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteSuccess(w, map[string]string{"path": path}, nil)
}
