// Copyright (c) 2026 Sitepanel Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sitepanel/sitepanel-go/internal/store"
	"github.com/sitepanel/sitepanel-go/internal/translate"
	"github.com/sitepanel/sitepanel-go/internal/util"
)

type sectionRequest struct {
	Name     translate.Value `json:"name"`
	Code     string          `json:"code"`
	IsActive bool            `json:"is_active"`
}

func (h *Handler) ListSections(w http.ResponseWriter, r *http.Request) {
	if !h.policies.Section.CanViewAny(r.Context(), actor(r)) {
		WriteForbidden(w)
		return
	}
	sections, err := h.sections.List(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteSuccess(w, sections, &Meta{Total: len(sections)})
}

func (h *Handler) CreateSection(w http.ResponseWriter, r *http.Request) {
	if !h.policies.Section.CanCreate(r.Context(), actor(r)) {
		WriteForbidden(w)
		return
	}
	var req sectionRequest
	if err := decode(r, &req); err != nil {
		WriteBadRequest(w, "invalid request body")
		return
	}
	section, err := h.sections.Create(r.Context(), store.CreateSectionParams{
		Name:     req.Name,
		Code:     req.Code,
		IsActive: req.IsActive,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteCreated(w, section)
}

func (h *Handler) GetSection(w http.ResponseWriter, r *http.Request) {
	if !h.policies.Section.CanView(r.Context(), actor(r)) {
		WriteForbidden(w)
		return
	}
	id, err := idParam(r, "id")
	if err != nil {
		WriteBadRequest(w, "invalid section id")
		return
	}
	section, err := h.sections.Get(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteSuccess(w, section, nil)
}

func (h *Handler) UpdateSection(w http.ResponseWriter, r *http.Request) {
	if !h.policies.Section.CanUpdate(r.Context(), actor(r)) {
		WriteForbidden(w)
		return
	}
	id, err := idParam(r, "id")
	if err != nil {
		WriteBadRequest(w, "invalid section id")
		return
	}
	var req sectionRequest
	if err := decode(r, &req); err != nil {
		WriteBadRequest(w, "invalid request body")
		return
	}
	section, err := h.sections.Update(r.Context(), store.UpdateSectionParams{
		ID:       id,
		Name:     req.Name,
		Code:     req.Code,
		IsActive: req.IsActive,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteSuccess(w, section, nil)
}

func (h *Handler) DeleteSection(w http.ResponseWriter, r *http.Request) {
	if !h.policies.Section.CanDelete(r.Context(), actor(r)) {
		WriteForbidden(w)
		return
	}
	id, err := idParam(r, "id")
	if err != nil {
		WriteBadRequest(w, "invalid section id")
		return
	}
	if err := h.sections.Delete(r.Context(), id); err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteSuccess(w, map[string]bool{"deleted": true}, nil)
}

type pageRequest struct {
	SectionID *int64          `json:"section_id"`
	Title     translate.Value `json:"title"`
	Slug      string          `json:"slug"`
	Body      string          `json:"body"`
	IsActive  bool            `json:"is_active"`
}

func (h *Handler) ListPages(w http.ResponseWriter, r *http.Request) {
	if !h.policies.Page.CanViewAny(r.Context(), actor(r)) {
		WriteForbidden(w)
		return
	}
	pages, err := h.pages.List(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteSuccess(w, pages, &Meta{Total: len(pages)})
}

func (h *Handler) CreatePage(w http.ResponseWriter, r *http.Request) {
	if !h.policies.Page.CanCreate(r.Context(), actor(r)) {
		WriteForbidden(w)
		return
	}
	var req pageRequest
	if err := decode(r, &req); err != nil {
		WriteBadRequest(w, "invalid request body")
		return
	}
	page, err := h.pages.Create(r.Context(), store.CreatePageParams{
		SectionID: util.NullInt64FromPtr(req.SectionID),
		Title:     req.Title,
		Slug:      req.Slug,
		Body:      req.Body,
		IsActive:  req.IsActive,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteCreated(w, page)
}

func (h *Handler) GetPage(w http.ResponseWriter, r *http.Request) {
	if !h.policies.Page.CanView(r.Context(), actor(r)) {
		WriteForbidden(w)
		return
	}
	id, err := idParam(r, "id")
	if err != nil {
		WriteBadRequest(w, "invalid page id")
		return
	}
	page, err := h.pages.Get(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteSuccess(w, page, nil)
}

// PreviewPage returns the page body rendered to sanitized HTML.
func (h *Handler) PreviewPage(w http.ResponseWriter, r *http.Request) {
	if !h.policies.Page.CanView(r.Context(), actor(r)) {
		WriteForbidden(w)
		return
	}
	id, err := idParam(r, "id")
	if err != nil {
		WriteBadRequest(w, "invalid page id")
		return
	}
	page, err := h.pages.Get(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	html, err := h.pages.RenderBody(page)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteSuccess(w, map[string]any{"id": page.ID, "html": html}, nil)
}

func (h *Handler) UpdatePage(w http.ResponseWriter, r *http.Request) {
	if !h.policies.Page.CanUpdate(r.Context(), actor(r)) {
		WriteForbidden(w)
		return
	}
	id, err := idParam(r, "id")
	if err != nil {
		WriteBadRequest(w, "invalid page id")
		return
	}
	var req pageRequest
	if err := decode(r, &req); err != nil {
		WriteBadRequest(w, "invalid request body")
		return
	}
	page, err := h.pages.Update(r.Context(), store.UpdatePageParams{
		ID:        id,
		SectionID: util.NullInt64FromPtr(req.SectionID),
		Title:     req.Title,
		Slug:      req.Slug,
		Body:      req.Body,
		IsActive:  req.IsActive,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteSuccess(w, page, nil)
}

func (h *Handler) DeletePage(w http.ResponseWriter, r *http.Request) {
	if !h.policies.Page.CanDelete(r.Context(), actor(r)) {
		WriteForbidden(w)
		return
	}
	id, err := idParam(r, "id")
	if err != nil {
		WriteBadRequest(w, "invalid page id")
		return
	}
	if err := h.pages.Delete(r.Context(), id); err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteSuccess(w, map[string]bool{"deleted": true}, nil)
}

type linkableTypeResponse struct {
	Tag   string `json:"tag"`
	Label string `json:"label"`
}

// ListLinkableTypes returns the registered linkable type tags.
func (h *Handler) ListLinkableTypes(w http.ResponseWriter, r *http.Request) {
	registered := h.registry.Registered()
	out := make([]linkableTypeResponse, 0, len(registered))
	for _, t := range registered {
		out = append(out, linkableTypeResponse{Tag: t.Tag, Label: t.Label})
	}
	WriteSuccess(w, out, &Meta{Total: len(out)})
}

// LinkableOptions returns the selectable options for a linkable type,
// labeled in the request locale.
func (h *Handler) LinkableOptions(w http.ResponseWriter, r *http.Request) {
	typeTag := chi.URLParam(r, "type")
	if !h.registry.IsRegistered(typeTag) {
		WriteError(w, http.StatusNotFound, "not_found", "unknown linkable type", nil)
		return
	}
	options := h.registry.Options(r.Context(), typeTag)
	WriteSuccess(w, options, &Meta{Total: len(options)})
}
