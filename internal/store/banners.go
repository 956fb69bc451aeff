// Copyright (c) 2026 Sitepanel Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/sitepanel/sitepanel-go/internal/model"
	"github.com/sitepanel/sitepanel-go/internal/translate"
)

const positionColumns = "id, name, code, created_at, updated_at, deleted_at"

func scanPosition(row interface{ Scan(...any) error }) (model.BannerPosition, error) {
	var p model.BannerPosition
	err := row.Scan(&p.ID, &p.Name, &p.Code, &p.CreatedAt, &p.UpdatedAt, &p.DeletedAt)
	return p, err
}

// CreateBannerPositionParams holds parameters for CreateBannerPosition.
type CreateBannerPositionParams struct {
	Name string
	Code string
}

// CreateBannerPosition inserts a banner position.
func (q *Queries) CreateBannerPosition(ctx context.Context, p CreateBannerPositionParams) (model.BannerPosition, error) {
	now := time.Now()
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO banner_positions (name, code, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		RETURNING `+positionColumns,
		p.Name, p.Code, now, now)
	return scanPosition(row)
}

// GetBannerPosition fetches a live position by id.
func (q *Queries) GetBannerPosition(ctx context.Context, id int64) (model.BannerPosition, error) {
	row := q.db.QueryRowContext(ctx,
		"SELECT "+positionColumns+" FROM banner_positions WHERE id = ? AND deleted_at IS NULL", id)
	return scanPosition(row)
}

// ListBannerPositions returns all live positions ordered by id.
func (q *Queries) ListBannerPositions(ctx context.Context) ([]model.BannerPosition, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT "+positionColumns+" FROM banner_positions WHERE deleted_at IS NULL ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var positions []model.BannerPosition
	for rows.Next() {
		p, err := scanPosition(rows)
		if err != nil {
			return nil, err
		}
		positions = append(positions, p)
	}
	return positions, rows.Err()
}

// UpdateBannerPositionParams holds parameters for UpdateBannerPosition.
type UpdateBannerPositionParams struct {
	ID   int64
	Name string
	Code string
}

// UpdateBannerPosition updates a position's editable fields.
func (q *Queries) UpdateBannerPosition(ctx context.Context, p UpdateBannerPositionParams) (model.BannerPosition, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE banner_positions SET name = ?, code = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
		RETURNING `+positionColumns,
		p.Name, p.Code, time.Now(), p.ID)
	return scanPosition(row)
}

// SoftDeleteBannerPosition marks a position deleted.
func (q *Queries) SoftDeleteBannerPosition(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx,
		"UPDATE banner_positions SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL",
		time.Now(), id)
	return err
}

const imageTypeColumns = `id, position_id, name, code, image_width, image_height,
	is_hidpi, created_at, updated_at`

func scanImageType(row interface{ Scan(...any) error }) (model.BannerImageType, error) {
	var t model.BannerImageType
	err := row.Scan(&t.ID, &t.PositionID, &t.Name, &t.Code, &t.ImageWidth, &t.ImageHeight,
		&t.IsHidpi, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

// CreateBannerImageTypeParams holds parameters for CreateBannerImageType.
type CreateBannerImageTypeParams struct {
	PositionID  int64
	Name        string
	Code        string
	ImageWidth  int64
	ImageHeight int64
	IsHidpi     bool
}

// CreateBannerImageType inserts an image type slot for a position.
func (q *Queries) CreateBannerImageType(ctx context.Context, p CreateBannerImageTypeParams) (model.BannerImageType, error) {
	now := time.Now()
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO banner_image_types (position_id, name, code, image_width,
			image_height, is_hidpi, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING `+imageTypeColumns,
		p.PositionID, p.Name, p.Code, p.ImageWidth, p.ImageHeight, p.IsHidpi, now, now)
	return scanImageType(row)
}

// GetBannerImageType fetches an image type by id.
func (q *Queries) GetBannerImageType(ctx context.Context, id int64) (model.BannerImageType, error) {
	row := q.db.QueryRowContext(ctx,
		"SELECT "+imageTypeColumns+" FROM banner_image_types WHERE id = ?", id)
	return scanImageType(row)
}

// ListBannerImageTypes returns the slots declared by a position ordered by id.
func (q *Queries) ListBannerImageTypes(ctx context.Context, positionID int64) ([]model.BannerImageType, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT "+imageTypeColumns+" FROM banner_image_types WHERE position_id = ? ORDER BY id",
		positionID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var types []model.BannerImageType
	for rows.Next() {
		t, err := scanImageType(rows)
		if err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, rows.Err()
}

// DeleteBannerImageType removes an image type slot.
func (q *Queries) DeleteBannerImageType(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, "DELETE FROM banner_image_types WHERE id = ?", id)
	return err
}

const bannerColumns = `id, position_id, name, link, new_tab, is_active, sort_order,
	created_at, updated_at, deleted_at`

func scanBanner(row interface{ Scan(...any) error }) (model.Banner, error) {
	var b model.Banner
	err := row.Scan(&b.ID, &b.PositionID, &b.Name, &b.Link, &b.NewTab, &b.IsActive,
		&b.SortOrder, &b.CreatedAt, &b.UpdatedAt, &b.DeletedAt)
	return b, err
}

func (q *Queries) queryBanners(ctx context.Context, query string, args ...any) ([]model.Banner, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var banners []model.Banner
	for rows.Next() {
		b, err := scanBanner(rows)
		if err != nil {
			return nil, err
		}
		banners = append(banners, b)
	}
	return banners, rows.Err()
}

// CreateBannerParams holds parameters for CreateBanner.
type CreateBannerParams struct {
	PositionID int64
	Name       translate.Value
	Link       sql.NullString
	NewTab     bool
	IsActive   bool
	SortOrder  int64
}

// CreateBanner inserts a banner.
func (q *Queries) CreateBanner(ctx context.Context, p CreateBannerParams) (model.Banner, error) {
	now := time.Now()
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO banners (position_id, name, link, new_tab, is_active, sort_order,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING `+bannerColumns,
		p.PositionID, p.Name, p.Link, p.NewTab, p.IsActive, p.SortOrder, now, now)
	return scanBanner(row)
}

// GetBanner fetches a live banner by id.
func (q *Queries) GetBanner(ctx context.Context, id int64) (model.Banner, error) {
	row := q.db.QueryRowContext(ctx,
		"SELECT "+bannerColumns+" FROM banners WHERE id = ? AND deleted_at IS NULL", id)
	return scanBanner(row)
}

// ListBannersByPosition returns live banners under a position ordered by
// sort_order, ties broken by id.
func (q *Queries) ListBannersByPosition(ctx context.Context, positionID int64) ([]model.Banner, error) {
	return q.queryBanners(ctx,
		"SELECT "+bannerColumns+` FROM banners
		 WHERE position_id = ? AND deleted_at IS NULL
		 ORDER BY sort_order, id`, positionID)
}

// ListActiveBanners returns all live banners, for derivation retries.
func (q *Queries) ListActiveBanners(ctx context.Context) ([]model.Banner, error) {
	return q.queryBanners(ctx,
		"SELECT "+bannerColumns+" FROM banners WHERE deleted_at IS NULL ORDER BY id")
}

// MaxBannerSortOrder returns the highest sort_order among live banners of a
// position, 0 when the position has none.
func (q *Queries) MaxBannerSortOrder(ctx context.Context, positionID int64) (int64, error) {
	var max int64
	err := q.db.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(sort_order), 0) FROM banners WHERE position_id = ? AND deleted_at IS NULL",
		positionID).Scan(&max)
	return max, err
}

// UpdateBannerParams holds parameters for UpdateBanner.
type UpdateBannerParams struct {
	ID       int64
	Name     translate.Value
	Link     sql.NullString
	NewTab   bool
	IsActive bool
}

// UpdateBanner updates a banner's editable fields.
func (q *Queries) UpdateBanner(ctx context.Context, p UpdateBannerParams) (model.Banner, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE banners SET name = ?, link = ?, new_tab = ?, is_active = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
		RETURNING `+bannerColumns,
		p.Name, p.Link, p.NewTab, p.IsActive, time.Now(), p.ID)
	return scanBanner(row)
}

// SoftDeleteBanner marks a banner deleted.
func (q *Queries) SoftDeleteBanner(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx,
		"UPDATE banners SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL",
		time.Now(), id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

const bannerImageColumns = `id, banner_id, type_id, file, is_hidpi,
	image_width, image_height, created_at, updated_at`

func scanBannerImage(row interface{ Scan(...any) error }) (model.BannerImage, error) {
	var img model.BannerImage
	err := row.Scan(&img.ID, &img.BannerID, &img.TypeID, &img.File, &img.IsHidpi,
		&img.ImageWidth, &img.ImageHeight, &img.CreatedAt, &img.UpdatedAt)
	return img, err
}

// CreateBannerImageParams holds parameters for CreateBannerImage.
type CreateBannerImageParams struct {
	BannerID    int64
	TypeID      int64
	File        translate.Value
	IsHidpi     bool
	ImageWidth  int64
	ImageHeight int64
}

// CreateBannerImage inserts an image row for a banner slot.
func (q *Queries) CreateBannerImage(ctx context.Context, p CreateBannerImageParams) (model.BannerImage, error) {
	now := time.Now()
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO banner_images (banner_id, type_id, file, is_hidpi,
			image_width, image_height, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING `+bannerImageColumns,
		p.BannerID, p.TypeID, p.File, p.IsHidpi, p.ImageWidth, p.ImageHeight, now, now)
	return scanBannerImage(row)
}

// GetBannerImageForSlot fetches the image filling one (banner, type,
// density) slot, if any.
func (q *Queries) GetBannerImageForSlot(ctx context.Context, bannerID, typeID int64, isHidpi bool) (model.BannerImage, error) {
	row := q.db.QueryRowContext(ctx,
		"SELECT "+bannerImageColumns+" FROM banner_images WHERE banner_id = ? AND type_id = ? AND is_hidpi = ?",
		bannerID, typeID, isHidpi)
	return scanBannerImage(row)
}

// ListBannerImages returns all images of a banner ordered by type then density.
func (q *Queries) ListBannerImages(ctx context.Context, bannerID int64) ([]model.BannerImage, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT "+bannerImageColumns+" FROM banner_images WHERE banner_id = ? ORDER BY type_id, is_hidpi",
		bannerID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var images []model.BannerImage
	for rows.Next() {
		img, err := scanBannerImage(rows)
		if err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

// UpdateBannerImageFile replaces the per-locale file paths of an image row.
func (q *Queries) UpdateBannerImageFile(ctx context.Context, id int64, file translate.Value) error {
	_, err := q.db.ExecContext(ctx,
		"UPDATE banner_images SET file = ?, updated_at = ? WHERE id = ?",
		file, time.Now(), id)
	return err
}

// DeleteBannerImage removes one image row.
func (q *Queries) DeleteBannerImage(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, "DELETE FROM banner_images WHERE id = ?", id)
	return err
}

// DeleteBannerImages removes all image rows of a banner.
func (q *Queries) DeleteBannerImages(ctx context.Context, bannerID int64) error {
	_, err := q.db.ExecContext(ctx, "DELETE FROM banner_images WHERE banner_id = ?", bannerID)
	return err
}
