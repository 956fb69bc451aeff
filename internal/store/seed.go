// Copyright (c) 2026 Sitepanel Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sitepanel/sitepanel-go/internal/auth"
	"github.com/sitepanel/sitepanel-go/internal/translate"
	"github.com/sitepanel/sitepanel-go/internal/util"
)

const (
	DefaultAdminEmail    = "admin@example.com"
	DefaultAdminPassword = "ChangeMe_2026!"
	DefaultAdminName     = "Administrator"
)

// Seed ensures the default admin user exists. When demo is true it also
// populates sample content (a section, pages, a main menu with nested
// items, and a banner position with image type slots). Idempotent: a
// database that already has the admin user is left untouched.
func Seed(ctx context.Context, db *sql.DB, demo bool) error {
	queries := New(db)

	_, err := queries.GetUserByEmail(ctx, DefaultAdminEmail)
	if err == nil {
		slog.Info("admin user already exists, skipping seed")
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("checking for admin user: %w", err)
	}

	passwordHash, err := auth.HashPassword(DefaultAdminPassword)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	user, err := queries.CreateUser(ctx, CreateUserParams{
		Email:        DefaultAdminEmail,
		PasswordHash: passwordHash,
		Role:         "admin",
		Name:         DefaultAdminName,
	})
	if err != nil {
		return fmt.Errorf("creating admin user: %w", err)
	}

	slog.Info("created default admin user",
		"id", user.ID,
		"email", user.Email,
		"password", DefaultAdminPassword,
	)

	if !demo {
		return nil
	}
	return seedDemoContent(ctx, queries)
}

// seedDemoContent creates sample content for a fresh installation.
func seedDemoContent(ctx context.Context, queries *Queries) error {
	section, err := queries.CreateSection(ctx, CreateSectionParams{
		Name:     translate.NewValue("en", "News"),
		Code:     "news",
		IsActive: true,
	})
	if err != nil {
		return fmt.Errorf("seeding section: %w", err)
	}

	var pageIDs []int64
	for _, title := range []string{"Welcome", "About Us"} {
		page, err := queries.CreatePage(ctx, CreatePageParams{
			SectionID: util.NullInt64FromValue(section.ID),
			Title:     translate.NewValue("en", title),
			Slug:      util.Slugify(title),
			Body:      "# " + title + "\n\nSample content.",
			IsActive:  true,
		})
		if err != nil {
			return fmt.Errorf("seeding page %q: %w", title, err)
		}
		pageIDs = append(pageIDs, page.ID)
	}

	menu, err := queries.CreateMenu(ctx, CreateMenuParams{
		Title:    translate.NewValue("en", "Main Menu"),
		Code:     "main",
		IsActive: true,
	})
	if err != nil {
		return fmt.Errorf("seeding menu: %w", err)
	}

	home, err := queries.CreateMenuItem(ctx, CreateMenuItemParams{
		MenuID:    menu.ID,
		Label:     translate.NewValue("en", "Home"),
		Type:      "custom_url",
		CustomURL: sql.NullString{String: "/", Valid: true},
		IsActive:  true,
		SortOrder: 0,
	})
	if err != nil {
		return fmt.Errorf("seeding menu item: %w", err)
	}
	for i, pageID := range pageIDs {
		_, err := queries.CreateMenuItem(ctx, CreateMenuItemParams{
			MenuID:       menu.ID,
			ParentID:     home.ID,
			Label:        translate.NewValue("en", fmt.Sprintf("Page %d", i+1)),
			Type:         "linkable",
			LinkableType: sql.NullString{String: "page", Valid: true},
			LinkableID:   util.NullInt64FromValue(pageID),
			IsActive:     true,
			SortOrder:    int64(i),
		})
		if err != nil {
			return fmt.Errorf("seeding menu item: %w", err)
		}
	}

	position, err := queries.CreateBannerPosition(ctx, CreateBannerPositionParams{
		Name: "Homepage Hero",
		Code: "home-hero",
	})
	if err != nil {
		return fmt.Errorf("seeding banner position: %w", err)
	}
	slots := []CreateBannerImageTypeParams{
		{PositionID: position.ID, Name: "Desktop", Code: "desktop", ImageWidth: 1200, ImageHeight: 400},
		{PositionID: position.ID, Name: "Desktop HiDPI", Code: "desktop-2x", ImageWidth: 2400, ImageHeight: 800, IsHidpi: true},
		{PositionID: position.ID, Name: "Mobile", Code: "mobile", ImageWidth: 600, ImageHeight: 300},
	}
	for _, slot := range slots {
		if _, err := queries.CreateBannerImageType(ctx, slot); err != nil {
			return fmt.Errorf("seeding image type %q: %w", slot.Code, err)
		}
	}

	slog.Info("seeded demo content",
		"section", section.Code, "menu", menu.Code, "position", position.Code)
	return nil
}
