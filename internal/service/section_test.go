// Copyright (c) 2026 Sitepanel Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sitepanel/sitepanel-go/internal/model"
	"github.com/sitepanel/sitepanel-go/internal/store"
	"github.com/sitepanel/sitepanel-go/internal/testutil"
	"github.com/sitepanel/sitepanel-go/internal/translate"
	"github.com/sitepanel/sitepanel-go/internal/util"
)

func newContentServices(t *testing.T) (*SectionService, *PageService, func()) {
	t.Helper()
	queries, cleanup := testutil.TestQueries(t)
	resolver := translate.NewResolver([]string{"en", "sl"}, map[string]string{"sl": "en"})
	return NewSectionService(queries, resolver), NewPageService(queries, resolver), cleanup
}

func TestPageCreateGeneratesSlug(t *testing.T) {
	_, pages, cleanup := newContentServices(t)
	defer cleanup()

	page, err := pages.Create(context.Background(), store.CreatePageParams{
		Title:    translate.NewValue("en", "Hello World"),
		IsActive: true,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if page.Slug != "hello-world" {
		t.Errorf("slug = %q", page.Slug)
	}
	if !util.IsValidSlug(page.Slug) {
		t.Errorf("generated slug %q invalid", page.Slug)
	}
}

func TestPageSlugMustBeUnique(t *testing.T) {
	_, pages, cleanup := newContentServices(t)
	defer cleanup()
	ctx := context.Background()

	if _, err := pages.Create(ctx, store.CreatePageParams{
		Title: translate.NewValue("en", "About"), IsActive: true,
	}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	_, err := pages.Create(ctx, store.CreatePageParams{
		Title: translate.NewValue("en", "Other"), Slug: "about",
	})
	var verr *model.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("duplicate slug: expected ValidationError, got %v", err)
	}

	// A soft-deleted page frees its slug
	first, err := pages.GetBySlug(ctx, "about")
	if err != nil {
		t.Fatalf("GetBySlug: %v", err)
	}
	if err := pages.Delete(ctx, first.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := pages.Create(ctx, store.CreatePageParams{
		Title: translate.NewValue("en", "Other"), Slug: "about",
	}); err != nil {
		t.Errorf("slug of deleted page still reserved: %v", err)
	}
}

func TestPageCreateRejectsMissingSection(t *testing.T) {
	_, pages, cleanup := newContentServices(t)
	defer cleanup()

	_, err := pages.Create(context.Background(), store.CreatePageParams{
		Title:     translate.NewValue("en", "Orphan"),
		SectionID: util.NullInt64FromValue(999),
	})
	var nfe *model.NotFoundError
	if !errors.As(err, &nfe) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestRenderBodySanitizesHTML(t *testing.T) {
	_, pages, cleanup := newContentServices(t)
	defer cleanup()

	page := model.Page{Body: "# Title\n\n<script>alert(1)</script>\n\n**bold**"}
	html, err := pages.RenderBody(page)
	if err != nil {
		t.Fatalf("RenderBody: %v", err)
	}
	out := string(html)
	if strings.Contains(out, "<script>") {
		t.Errorf("script tag survived sanitization: %q", out)
	}
	if !strings.Contains(out, "<strong>bold</strong>") {
		t.Errorf("markdown not rendered: %q", out)
	}
}

func TestSectionProvider(t *testing.T) {
	sections, _, cleanup := newContentServices(t)
	defer cleanup()
	ctx := context.Background()

	active, err := sections.Create(ctx, store.CreateSectionParams{
		Name: translate.NewValue("en", "News"), Code: "news", IsActive: true,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := sections.Create(ctx, store.CreateSectionParams{
		Name: translate.NewValue("en", "Drafts"), Code: "drafts", IsActive: false,
	}); err != nil {
		t.Fatalf("Create inactive: %v", err)
	}

	options, err := sections.Options(ctx)
	if err != nil {
		t.Fatalf("Options: %v", err)
	}
	if len(options) != 1 || options[0].ID != active.ID {
		t.Errorf("options = %+v, want only the active section", options)
	}

	target, err := sections.Resolve(ctx, active.ID)
	if err != nil || target == nil {
		t.Fatalf("Resolve = %v, %v", target, err)
	}
	if target.URL != "/sections/news" {
		t.Errorf("url = %q", target.URL)
	}

	// Dangling id
	target, err = sections.Resolve(ctx, 999)
	if err != nil || target != nil {
		t.Errorf("dangling Resolve = %v, %v", target, err)
	}
}

func TestPageProviderResolveUsesLocale(t *testing.T) {
	_, pages, cleanup := newContentServices(t)
	defer cleanup()
	ctx := context.Background()

	title := translate.NewValue("en", "About")
	title.Set("sl", "O nas")
	page, err := pages.Create(ctx, store.CreatePageParams{Title: title, IsActive: true})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	target, err := pages.Resolve(translate.WithLocale(ctx, "sl"), page.ID)
	if err != nil || target == nil {
		t.Fatalf("Resolve = %v, %v", target, err)
	}
	if target.Title != "O nas" {
		t.Errorf("localized title = %q", target.Title)
	}
	if target.URL != "/about" {
		t.Errorf("url = %q", target.URL)
	}
}
