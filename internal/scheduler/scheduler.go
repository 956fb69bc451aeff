// Copyright (c) 2026 Sitepanel Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs the periodic maintenance jobs: retrying missing
// HiDPI companion derivations and purging expired menu item trash.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/sitepanel/sitepanel-go/internal/model"
	"github.com/sitepanel/sitepanel-go/internal/service"
	"github.com/sitepanel/sitepanel-go/internal/store"
)

// Cron schedules for the maintenance jobs.
const (
	derivationSchedule = "@every 15m"
	trashPurgeSchedule = "@daily"
)

// Scheduler owns the cron instance and the maintenance jobs.
type Scheduler struct {
	cron    *cron.Cron
	queries *store.Queries
	banners *service.BannerService
	menus   *service.MenuService
	logger  *slog.Logger

	// trashRetention is how long soft-deleted menu items are kept before
	// permanent removal. Zero disables the purge job.
	trashRetention time.Duration
}

// New creates a Scheduler. trashRetention of zero disables trash purging.
func New(queries *store.Queries, banners *service.BannerService,
	menus *service.MenuService, trashRetention time.Duration, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		cron:           cron.New(),
		queries:        queries,
		banners:        banners,
		menus:          menus,
		logger:         logger,
		trashRetention: trashRetention,
	}
}

// Start registers the jobs and starts the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(derivationSchedule, s.retryDerivations); err != nil {
		return err
	}
	if s.trashRetention > 0 {
		if _, err := s.cron.AddFunc(trashPurgeSchedule, s.purgeTrash); err != nil {
			return err
		}
	}
	s.cron.Start()
	s.logger.Info("scheduler started", "category", model.EventCategorySystem)
	return nil
}

// Stop stops the cron loop and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped", "category", model.EventCategorySystem)
}

// retryDerivations re-runs companion derivation over all active banners,
// picking up slots whose earlier derivation failed. Derivation is
// idempotent, so banners with complete slots are untouched.
func (s *Scheduler) retryDerivations() {
	ctx := context.Background()

	banners, err := s.queries.ListActiveBanners(ctx)
	if err != nil {
		s.logger.Error("listing banners for derivation retry failed",
			"category", model.EventCategoryBanner, "error", err)
		return
	}

	for _, banner := range banners {
		if err := s.banners.DeriveCompanions(ctx, banner.ID); err != nil {
			s.logger.Warn("companion derivation retry failed",
				"category", model.EventCategoryBanner, "banner_id", banner.ID, "error", err)
		}
	}
}

// purgeTrash permanently removes menu items whose tombstones are older than
// the retention window.
func (s *Scheduler) purgeTrash() {
	ctx := context.Background()
	cutoff := time.Now().Add(-s.trashRetention)

	purged, err := s.menus.PurgeTrashedItemsBefore(ctx, cutoff)
	if err != nil {
		s.logger.Error("trash purge failed", "category", model.EventCategoryMenu, "error", err)
		return
	}
	if purged > 0 {
		s.logger.Info("trash purged", "category", model.EventCategoryMenu, "items", purged)
	}
}
