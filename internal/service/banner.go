// Copyright (c) 2026 Sitepanel Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"

	"github.com/sitepanel/sitepanel-go/internal/imaging"
	"github.com/sitepanel/sitepanel-go/internal/model"
	"github.com/sitepanel/sitepanel-go/internal/storage"
	"github.com/sitepanel/sitepanel-go/internal/store"
	"github.com/sitepanel/sitepanel-go/internal/translate"
)

// bannerUploadDir is the store subdirectory banner files are written to.
const bannerUploadDir = "banners"

// BannerService enforces the image-slot constraints a position declares and
// keeps standard-density companion images in sync with HiDPI uploads.
type BannerService struct {
	queries  *store.Queries
	files    *storage.Store
	images   *imaging.Processor
	resolver *translate.Resolver
	logger   *slog.Logger
}

// NewBannerService creates a BannerService.
func NewBannerService(queries *store.Queries, files *storage.Store,
	images *imaging.Processor, resolver *translate.Resolver, logger *slog.Logger) *BannerService {
	if logger == nil {
		logger = slog.Default()
	}
	return &BannerService{
		queries:  queries,
		files:    files,
		images:   images,
		resolver: resolver,
		logger:   logger,
	}
}

// CreatePosition creates a banner position.
func (s *BannerService) CreatePosition(ctx context.Context, p store.CreateBannerPositionParams) (model.BannerPosition, error) {
	if p.Name == "" {
		return model.BannerPosition{}, model.NewValidationError("name", "name is required")
	}
	return s.queries.CreateBannerPosition(ctx, p)
}

// GetPosition fetches a live position by id.
func (s *BannerService) GetPosition(ctx context.Context, id int64) (model.BannerPosition, error) {
	pos, err := s.queries.GetBannerPosition(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.BannerPosition{}, model.NewNotFoundError("banner position", id)
	}
	return pos, err
}

// ListPositions returns all live positions.
func (s *BannerService) ListPositions(ctx context.Context) ([]model.BannerPosition, error) {
	return s.queries.ListBannerPositions(ctx)
}

// UpdatePosition updates a position's editable fields.
func (s *BannerService) UpdatePosition(ctx context.Context, p store.UpdateBannerPositionParams) (model.BannerPosition, error) {
	pos, err := s.queries.UpdateBannerPosition(ctx, p)
	if errors.Is(err, sql.ErrNoRows) {
		return model.BannerPosition{}, model.NewNotFoundError("banner position", p.ID)
	}
	return pos, err
}

// DeletePosition soft-deletes a position after cascading to every banner
// under it. Banner deletion runs its usual file cleanup. If some banners
// fail, the position stays live and a PartialFailureError reports the split.
func (s *BannerService) DeletePosition(ctx context.Context, id int64) error {
	if _, err := s.GetPosition(ctx, id); err != nil {
		return err
	}

	banners, err := s.queries.ListBannersByPosition(ctx, id)
	if err != nil {
		return fmt.Errorf("listing banners for position %d: %w", id, err)
	}

	var succeeded []int64
	failed := make(map[int64]error)
	for _, banner := range banners {
		if err := s.DeleteBanner(ctx, banner.ID); err != nil {
			failed[banner.ID] = err
			continue
		}
		succeeded = append(succeeded, banner.ID)
	}

	if len(failed) > 0 {
		s.logger.Error("banner position cascade delete incomplete",
			"category", model.EventCategoryBanner, "position_id", id, "failed", len(failed))
		return &model.PartialFailureError{Op: "delete banner position", Succeeded: succeeded, Failed: failed}
	}

	if err := s.queries.SoftDeleteBannerPosition(ctx, id); err != nil {
		return fmt.Errorf("deleting banner position %d: %w", id, err)
	}
	s.logger.Info("banner position deleted", "category", model.EventCategoryBanner,
		"position_id", id, "banners", len(banners))
	return nil
}

// CreateImageType declares an image slot for a position. Width and height
// may be 0, meaning any upload size is accepted; no dimension validation
// happens at declaration time.
func (s *BannerService) CreateImageType(ctx context.Context, p store.CreateBannerImageTypeParams) (model.BannerImageType, error) {
	if p.Name == "" {
		return model.BannerImageType{}, model.NewValidationError("name", "name is required")
	}
	if p.ImageWidth < 0 || p.ImageHeight < 0 {
		return model.BannerImageType{}, model.NewValidationError("image_width", "dimensions cannot be negative")
	}
	if _, err := s.GetPosition(ctx, p.PositionID); err != nil {
		return model.BannerImageType{}, err
	}
	return s.queries.CreateBannerImageType(ctx, p)
}

// ListImageTypes returns the slots declared by a position.
func (s *BannerService) ListImageTypes(ctx context.Context, positionID int64) ([]model.BannerImageType, error) {
	return s.queries.ListBannerImageTypes(ctx, positionID)
}

// ValidateUpload checks uploaded image bytes against a slot's declared
// dimensions: the exact declared size, or exactly double it when a HiDPI
// upload is expected. Validation is skipped (always ok) when no file is
// given, the slot is unknown, or the slot is unconstrained.
func (s *BannerService) ValidateUpload(ctx context.Context, typeID int64, hidpi bool, data []byte) error {
	if len(data) == 0 {
		return nil
	}

	imageType, err := s.queries.GetBannerImageType(ctx, typeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return err
	}
	if !imageType.Constrained() {
		return nil
	}

	wantWidth, wantHeight := imageType.UploadSize(hidpi)
	gotWidth, gotHeight, err := s.images.Measure(data)
	if err != nil {
		return model.NewValidationError("file", "unreadable image: %v", err)
	}

	if int64(gotWidth) != wantWidth || int64(gotHeight) != wantHeight {
		return model.NewValidationError("file", "Image must be exactly %d×%dpx. Got %d×%dpx.",
			wantWidth, wantHeight, gotWidth, gotHeight)
	}
	return nil
}

// AttachImage validates an upload, stores the file under the current
// locale, and records the image row for the slot. The row's dimensions are
// copied from the slot's declared size (doubled for HiDPI), not re-measured:
// once validation passed, the declared size is authoritative. Unconstrained
// slots fall back to the measured size.
func (s *BannerService) AttachImage(ctx context.Context, bannerID, typeID int64, hidpi bool, filename string, data []byte) (model.BannerImage, error) {
	banner, err := s.GetBanner(ctx, bannerID)
	if err != nil {
		return model.BannerImage{}, err
	}

	imageType, err := s.queries.GetBannerImageType(ctx, typeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.BannerImage{}, model.NewNotFoundError("banner image type", typeID)
		}
		return model.BannerImage{}, err
	}
	if imageType.PositionID != banner.PositionID {
		return model.BannerImage{}, model.NewValidationError("type_id",
			"image type %d belongs to a different position", typeID)
	}

	if mime := s.images.DetectMimeType(data); !model.IsSupportedImageType(mime) {
		return model.BannerImage{}, model.NewValidationError("file", "unsupported image type %q", mime)
	}
	if err := s.ValidateUpload(ctx, typeID, hidpi, data); err != nil {
		return model.BannerImage{}, err
	}

	width, height := imageType.UploadSize(hidpi)
	if !imageType.Constrained() {
		w, h, err := s.images.Measure(data)
		if err != nil {
			return model.BannerImage{}, model.NewValidationError("file", "unreadable image: %v", err)
		}
		width, height = int64(w), int64(h)
	}

	storedName := uuid.NewString() + filepath.Ext(filename)
	path, err := s.files.Save(filepath.Join(bannerUploadDir, strconv.FormatInt(bannerID, 10)), storedName, data)
	if err != nil {
		return model.BannerImage{}, &model.StorageError{Path: storedName, Err: err}
	}

	locale := s.resolver.CurrentLocale(ctx)

	existing, err := s.queries.GetBannerImageForSlot(ctx, bannerID, typeID, hidpi)
	switch {
	case err == nil:
		// One image per (banner, type, density) slot: a re-upload replaces
		// the current locale's file.
		if old := existing.File.In(locale); old != "" && old != path {
			if err := s.files.Delete(old); err != nil {
				s.logger.Warn("deleting replaced banner file failed",
					"category", model.EventCategoryBanner, "path", old, "error", err)
			}
		}
		file := existing.File.Clone()
		file.Set(locale, path)
		if err := s.queries.UpdateBannerImageFile(ctx, existing.ID, file); err != nil {
			return model.BannerImage{}, fmt.Errorf("updating banner image: %w", err)
		}
		existing.File = file
		return existing, nil
	case errors.Is(err, sql.ErrNoRows):
		file := translate.Value{}
		file.Set(locale, path)
		return s.queries.CreateBannerImage(ctx, store.CreateBannerImageParams{
			BannerID:    bannerID,
			TypeID:      typeID,
			File:        file,
			IsHidpi:     hidpi,
			ImageWidth:  width,
			ImageHeight: height,
		})
	default:
		return model.BannerImage{}, err
	}
}

// CreateBanner creates a banner under a position, assigning the next sort
// order (max existing + 1).
func (s *BannerService) CreateBanner(ctx context.Context, p store.CreateBannerParams) (model.Banner, error) {
	if _, err := s.GetPosition(ctx, p.PositionID); err != nil {
		return model.Banner{}, err
	}

	maxSort, err := s.queries.MaxBannerSortOrder(ctx, p.PositionID)
	if err != nil {
		return model.Banner{}, fmt.Errorf("resolving sort order: %w", err)
	}
	p.SortOrder = maxSort + 1

	return s.queries.CreateBanner(ctx, p)
}

// GetBanner fetches a live banner by id.
func (s *BannerService) GetBanner(ctx context.Context, id int64) (model.Banner, error) {
	banner, err := s.queries.GetBanner(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Banner{}, model.NewNotFoundError("banner", id)
	}
	return banner, err
}

// ListBanners returns a position's live banners ordered by sortOrder,
// ties broken by id.
func (s *BannerService) ListBanners(ctx context.Context, positionID int64) ([]model.Banner, error) {
	return s.queries.ListBannersByPosition(ctx, positionID)
}

// UpdateBanner updates a banner's editable fields.
func (s *BannerService) UpdateBanner(ctx context.Context, p store.UpdateBannerParams) (model.Banner, error) {
	banner, err := s.queries.UpdateBanner(ctx, p)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Banner{}, model.NewNotFoundError("banner", p.ID)
	}
	return banner, err
}

// SaveBanner persists a banner (create when ID is zero) and then derives
// standard-density companions for its HiDPI images. Derivation failures do
// not fail the save: they are logged and retried by the scheduler.
func (s *BannerService) SaveBanner(ctx context.Context, id int64, p store.CreateBannerParams) (model.Banner, error) {
	var banner model.Banner
	var err error
	if id == 0 {
		banner, err = s.CreateBanner(ctx, p)
	} else {
		banner, err = s.UpdateBanner(ctx, store.UpdateBannerParams{
			ID:       id,
			Name:     p.Name,
			Link:     p.Link,
			NewTab:   p.NewTab,
			IsActive: p.IsActive,
		})
	}
	if err != nil {
		return model.Banner{}, err
	}

	if err := s.DeriveCompanions(ctx, banner.ID); err != nil {
		s.logger.Warn("banner companion derivation incomplete",
			"category", model.EventCategoryBanner, "banner_id", banner.ID, "error", err)
	}
	return banner, nil
}

// DeriveCompanions creates a standard-density companion image for every
// HiDPI image of the banner that lacks one. Idempotent: a slot that already
// has a regular image is left alone, and re-derivation targets the same
// output path. A failed resize skips that slot rather than aborting.
func (s *BannerService) DeriveCompanions(ctx context.Context, bannerID int64) error {
	images, err := s.queries.ListBannerImages(ctx, bannerID)
	if err != nil {
		return fmt.Errorf("listing banner images: %w", err)
	}

	hasRegular := make(map[int64]bool)
	for _, img := range images {
		if !img.IsHidpi {
			hasRegular[img.TypeID] = true
		}
	}

	var firstErr error
	for _, img := range images {
		if !img.IsHidpi || hasRegular[img.TypeID] {
			continue
		}

		imageType, err := s.queries.GetBannerImageType(ctx, img.TypeID)
		if err != nil {
			s.logger.Warn("companion derivation skipped, slot missing",
				"category", model.EventCategoryBanner, "banner_id", bannerID, "type_id", img.TypeID)
			continue
		}
		if !imageType.Constrained() {
			// No declared target size to derive toward.
			continue
		}

		derived := translate.Value{}
		failed := false
		for locale, sourcePath := range img.File {
			target, err := s.images.Resize(sourcePath, int(imageType.ImageWidth), int(imageType.ImageHeight))
			if err != nil {
				s.logger.Warn("companion resize failed",
					"category", model.EventCategoryBanner, "banner_id", bannerID,
					"type_id", img.TypeID, "locale", locale, "error", err)
				if firstErr == nil {
					firstErr = err
				}
				failed = true
				break
			}
			derived.Set(locale, target)
		}
		if failed || derived.IsEmpty() {
			continue
		}

		if _, err := s.queries.CreateBannerImage(ctx, store.CreateBannerImageParams{
			BannerID:    bannerID,
			TypeID:      img.TypeID,
			File:        derived,
			IsHidpi:     false,
			ImageWidth:  imageType.ImageWidth,
			ImageHeight: imageType.ImageHeight,
		}); err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("creating companion image: %w", err)
			}
			continue
		}
		hasRegular[img.TypeID] = true
	}
	return firstErr
}

// DeleteBanner deletes every stored file of the banner (best-effort: a
// missing file is not an error), removes its image rows, and soft-deletes
// the banner row.
func (s *BannerService) DeleteBanner(ctx context.Context, id int64) error {
	if _, err := s.GetBanner(ctx, id); err != nil {
		return err
	}

	images, err := s.queries.ListBannerImages(ctx, id)
	if err != nil {
		return fmt.Errorf("listing banner images: %w", err)
	}

	for _, img := range images {
		for locale, path := range img.File {
			if path == "" {
				continue
			}
			if err := s.files.Delete(path); err != nil {
				s.logger.Warn("deleting banner file failed",
					"category", model.EventCategoryBanner, "banner_id", id,
					"locale", locale, "path", path, "error", err)
			}
		}
	}

	if err := s.queries.DeleteBannerImages(ctx, id); err != nil {
		return fmt.Errorf("deleting banner images: %w", err)
	}
	if err := s.queries.SoftDeleteBanner(ctx, id); err != nil {
		return fmt.Errorf("deleting banner %d: %w", id, err)
	}

	s.logger.Info("banner deleted", "category", model.EventCategoryBanner,
		"banner_id", id, "images", len(images))
	return nil
}

// ListImages returns a banner's image rows.
func (s *BannerService) ListImages(ctx context.Context, bannerID int64) ([]model.BannerImage, error) {
	return s.queries.ListBannerImages(ctx, bannerID)
}
