// Copyright (c) 2026 Sitepanel Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"database/sql"
	"io"
	"net/http"

	"github.com/sitepanel/sitepanel-go/internal/store"
	"github.com/sitepanel/sitepanel-go/internal/translate"
)

// maxUploadSize caps banner image uploads at 20 MB.
const maxUploadSize = 20 << 20

type positionRequest struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

// ListPositions returns all live banner positions.
func (h *Handler) ListPositions(w http.ResponseWriter, r *http.Request) {
	if !h.policies.Position.CanViewAny(r.Context(), actor(r)) {
		WriteForbidden(w)
		return
	}
	positions, err := h.banners.ListPositions(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteSuccess(w, positions, &Meta{Total: len(positions)})
}

// CreatePosition creates a banner position.
func (h *Handler) CreatePosition(w http.ResponseWriter, r *http.Request) {
	if !h.policies.Position.CanCreate(r.Context(), actor(r)) {
		WriteForbidden(w)
		return
	}
	var req positionRequest
	if err := decode(r, &req); err != nil {
		WriteBadRequest(w, "invalid request body")
		return
	}
	position, err := h.banners.CreatePosition(r.Context(), store.CreateBannerPositionParams{
		Name: req.Name,
		Code: req.Code,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteCreated(w, position)
}

// GetPosition returns one banner position.
func (h *Handler) GetPosition(w http.ResponseWriter, r *http.Request) {
	if !h.policies.Position.CanView(r.Context(), actor(r)) {
		WriteForbidden(w)
		return
	}
	id, err := idParam(r, "id")
	if err != nil {
		WriteBadRequest(w, "invalid position id")
		return
	}
	position, err := h.banners.GetPosition(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteSuccess(w, position, nil)
}

// UpdatePosition updates a banner position.
func (h *Handler) UpdatePosition(w http.ResponseWriter, r *http.Request) {
	if !h.policies.Position.CanUpdate(r.Context(), actor(r)) {
		WriteForbidden(w)
		return
	}
	id, err := idParam(r, "id")
	if err != nil {
		WriteBadRequest(w, "invalid position id")
		return
	}
	var req positionRequest
	if err := decode(r, &req); err != nil {
		WriteBadRequest(w, "invalid request body")
		return
	}
	position, err := h.banners.UpdatePosition(r.Context(), store.UpdateBannerPositionParams{
		ID:   id,
		Name: req.Name,
		Code: req.Code,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteSuccess(w, position, nil)
}

// DeletePosition deletes a position, cascading to its banners.
func (h *Handler) DeletePosition(w http.ResponseWriter, r *http.Request) {
	if !h.policies.Position.CanDelete(r.Context(), actor(r)) {
		WriteForbidden(w)
		return
	}
	id, err := idParam(r, "id")
	if err != nil {
		WriteBadRequest(w, "invalid position id")
		return
	}
	if err := h.banners.DeletePosition(r.Context(), id); err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteSuccess(w, map[string]bool{"deleted": true}, nil)
}

type imageTypeRequest struct {
	Name        string `json:"name"`
	Code        string `json:"code"`
	ImageWidth  int64  `json:"image_width"`
	ImageHeight int64  `json:"image_height"`
	IsHidpi     bool   `json:"is_hidpi"`
}

// ListImageTypes returns the slots declared by a position.
func (h *Handler) ListImageTypes(w http.ResponseWriter, r *http.Request) {
	if !h.policies.Position.CanView(r.Context(), actor(r)) {
		WriteForbidden(w)
		return
	}
	positionID, err := idParam(r, "id")
	if err != nil {
		WriteBadRequest(w, "invalid position id")
		return
	}
	types, err := h.banners.ListImageTypes(r.Context(), positionID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteSuccess(w, types, &Meta{Total: len(types)})
}

// CreateImageType declares an image slot for a position.
func (h *Handler) CreateImageType(w http.ResponseWriter, r *http.Request) {
	if !h.policies.Position.CanUpdate(r.Context(), actor(r)) {
		WriteForbidden(w)
		return
	}
	positionID, err := idParam(r, "id")
	if err != nil {
		WriteBadRequest(w, "invalid position id")
		return
	}
	var req imageTypeRequest
	if err := decode(r, &req); err != nil {
		WriteBadRequest(w, "invalid request body")
		return
	}
	imageType, err := h.banners.CreateImageType(r.Context(), store.CreateBannerImageTypeParams{
		PositionID:  positionID,
		Name:        req.Name,
		Code:        req.Code,
		ImageWidth:  req.ImageWidth,
		ImageHeight: req.ImageHeight,
		IsHidpi:     req.IsHidpi,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteCreated(w, imageType)
}

type bannerRequest struct {
	Name     translate.Value `json:"name"`
	Link     string          `json:"link"`
	NewTab   bool            `json:"new_tab"`
	IsActive bool            `json:"is_active"`
}

// ListBanners returns a position's live banners.
func (h *Handler) ListBanners(w http.ResponseWriter, r *http.Request) {
	if !h.policies.Banner.CanViewAny(r.Context(), actor(r)) {
		WriteForbidden(w)
		return
	}
	positionID, err := idParam(r, "id")
	if err != nil {
		WriteBadRequest(w, "invalid position id")
		return
	}
	banners, err := h.banners.ListBanners(r.Context(), positionID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteSuccess(w, banners, &Meta{Total: len(banners)})
}

// CreateBanner creates a banner under a position and derives companions.
func (h *Handler) CreateBanner(w http.ResponseWriter, r *http.Request) {
	if !h.policies.Banner.CanCreate(r.Context(), actor(r)) {
		WriteForbidden(w)
		return
	}
	positionID, err := idParam(r, "id")
	if err != nil {
		WriteBadRequest(w, "invalid position id")
		return
	}
	var req bannerRequest
	if err := decode(r, &req); err != nil {
		WriteBadRequest(w, "invalid request body")
		return
	}
	banner, err := h.banners.SaveBanner(r.Context(), 0, store.CreateBannerParams{
		PositionID: positionID,
		Name:       req.Name,
		Link:       nullString(req.Link),
		NewTab:     req.NewTab,
		IsActive:   req.IsActive,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteCreated(w, banner)
}

// GetBanner returns one live banner.
func (h *Handler) GetBanner(w http.ResponseWriter, r *http.Request) {
	if !h.policies.Banner.CanView(r.Context(), actor(r)) {
		WriteForbidden(w)
		return
	}
	id, err := idParam(r, "id")
	if err != nil {
		WriteBadRequest(w, "invalid banner id")
		return
	}
	banner, err := h.banners.GetBanner(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteSuccess(w, banner, nil)
}

// UpdateBanner updates a banner and derives companions.
func (h *Handler) UpdateBanner(w http.ResponseWriter, r *http.Request) {
	if !h.policies.Banner.CanUpdate(r.Context(), actor(r)) {
		WriteForbidden(w)
		return
	}
	id, err := idParam(r, "id")
	if err != nil {
		WriteBadRequest(w, "invalid banner id")
		return
	}
	var req bannerRequest
	if err := decode(r, &req); err != nil {
		WriteBadRequest(w, "invalid request body")
		return
	}
	banner, err := h.banners.SaveBanner(r.Context(), id, store.CreateBannerParams{
		Name:     req.Name,
		Link:     nullString(req.Link),
		NewTab:   req.NewTab,
		IsActive: req.IsActive,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteSuccess(w, banner, nil)
}

// DeleteBanner deletes a banner, its image rows, and its stored files.
func (h *Handler) DeleteBanner(w http.ResponseWriter, r *http.Request) {
	if !h.policies.Banner.CanDelete(r.Context(), actor(r)) {
		WriteForbidden(w)
		return
	}
	id, err := idParam(r, "id")
	if err != nil {
		WriteBadRequest(w, "invalid banner id")
		return
	}
	if err := h.banners.DeleteBanner(r.Context(), id); err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteSuccess(w, map[string]bool{"deleted": true}, nil)
}

// ListBannerImages returns a banner's image rows.
func (h *Handler) ListBannerImages(w http.ResponseWriter, r *http.Request) {
	if !h.policies.Banner.CanView(r.Context(), actor(r)) {
		WriteForbidden(w)
		return
	}
	id, err := idParam(r, "id")
	if err != nil {
		WriteBadRequest(w, "invalid banner id")
		return
	}
	images, err := h.banners.ListImages(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteSuccess(w, images, &Meta{Total: len(images)})
}

// AttachBannerImage validates a multipart upload against a slot and stores
// it. Form fields: file, type_id, is_hidpi.
func (h *Handler) AttachBannerImage(w http.ResponseWriter, r *http.Request) {
	if !h.policies.Banner.CanUpdate(r.Context(), actor(r)) {
		WriteForbidden(w)
		return
	}
	bannerID, err := idParam(r, "id")
	if err != nil {
		WriteBadRequest(w, "invalid banner id")
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		WriteBadRequest(w, "invalid multipart form")
		return
	}
	typeID, err := parseID(r.FormValue("type_id"))
	if err != nil {
		WriteBadRequest(w, "invalid type_id")
		return
	}
	hidpi := r.FormValue("is_hidpi") == "1" || r.FormValue("is_hidpi") == "true"

	file, header, err := r.FormFile("file")
	if err != nil {
		WriteBadRequest(w, "file is required")
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadSize))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	image, err := h.banners.AttachImage(r.Context(), bannerID, typeID, hidpi, header.Filename, data)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteCreated(w, image)
}

// DeriveBannerCompanions re-runs companion derivation for a banner.
func (h *Handler) DeriveBannerCompanions(w http.ResponseWriter, r *http.Request) {
	if !h.policies.Banner.CanUpdate(r.Context(), actor(r)) {
		WriteForbidden(w)
		return
	}
	id, err := idParam(r, "id")
	if err != nil {
		WriteBadRequest(w, "invalid banner id")
		return
	}
	if err := h.banners.DeriveCompanions(r.Context(), id); err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteSuccess(w, map[string]bool{"derived": true}, nil)
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
