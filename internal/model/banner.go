// Copyright (c) 2026 Sitepanel Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"time"

	"github.com/sitepanel/sitepanel-go/internal/translate"
)

// Supported MIME types for banner uploads.
const (
	MimeTypeJPEG = "image/jpeg"
	MimeTypePNG  = "image/png"
	MimeTypeGIF  = "image/gif"
	MimeTypeWebP = "image/webp"
)

// SupportedImageTypes returns the MIME types accepted for banner images.
func SupportedImageTypes() []string {
	return []string{MimeTypeJPEG, MimeTypePNG, MimeTypeGIF, MimeTypeWebP}
}

// IsSupportedImageType checks if a MIME type is accepted for banner images.
func IsSupportedImageType(mimeType string) bool {
	for _, t := range SupportedImageTypes() {
		if t == mimeType {
			return true
		}
	}
	return false
}

// BannerPosition represents a display position banners can be assigned to.
// A position owns one or more image type slots that every banner under it
// is expected to fill.
type BannerPosition struct {
	ID        int64        `json:"id"`
	Name      string       `json:"name"`
	Code      string       `json:"code"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
	DeletedAt sql.NullTime `json:"deleted_at,omitempty"`
}

// BannerImageType represents one image slot declared by a position.
// Width/Height of 0 mean the slot accepts any size. A HiDPI slot expects
// an upload at double the declared dimensions, with a standard-density
// companion derived from it.
type BannerImageType struct {
	ID          int64     `json:"id"`
	PositionID  int64     `json:"position_id"`
	Name        string    `json:"name"`
	Code        string    `json:"code"`
	ImageWidth  int64     `json:"image_width"`
	ImageHeight int64     `json:"image_height"`
	IsHidpi     bool      `json:"is_hidpi"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Constrained returns true if the slot declares fixed pixel dimensions.
func (t *BannerImageType) Constrained() bool {
	return t.ImageWidth > 0 && t.ImageHeight > 0
}

// UploadSize returns the pixel dimensions an upload for this slot must
// measure: the declared size, or double it when hidpi is requested.
func (t *BannerImageType) UploadSize(hidpi bool) (width, height int64) {
	if hidpi {
		return t.ImageWidth * 2, t.ImageHeight * 2
	}
	return t.ImageWidth, t.ImageHeight
}

// Banner represents a single banner under a position.
type Banner struct {
	ID         int64           `json:"id"`
	PositionID int64           `json:"position_id"`
	Name       translate.Value `json:"name"`
	Link       sql.NullString  `json:"link,omitempty"`
	NewTab     bool            `json:"new_tab"`
	IsActive   bool            `json:"is_active"`
	SortOrder  int64           `json:"sort_order"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
	DeletedAt  sql.NullTime    `json:"deleted_at,omitempty"`
}

// BannerImage represents one stored image filling a banner slot.
// At most one regular and one hidpi image exist per (banner, type) pair.
// File holds a per-locale file path since uploads may differ per language.
type BannerImage struct {
	ID          int64           `json:"id"`
	BannerID    int64           `json:"banner_id"`
	TypeID      int64           `json:"type_id"`
	File        translate.Value `json:"file"`
	IsHidpi     bool            `json:"is_hidpi"`
	ImageWidth  int64           `json:"image_width"`
	ImageHeight int64           `json:"image_height"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
