// Copyright (c) 2026 Sitepanel Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"html/template"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"

	"github.com/sitepanel/sitepanel-go/internal/linkable"
	"github.com/sitepanel/sitepanel-go/internal/model"
	"github.com/sitepanel/sitepanel-go/internal/store"
	"github.com/sitepanel/sitepanel-go/internal/translate"
	"github.com/sitepanel/sitepanel-go/internal/util"
)

// htmlSanitizer is the shared sanitization policy for rendered page bodies.
// UGCPolicy allows safe HTML tags while stripping scripts and event handlers.
var htmlSanitizer = bluemonday.UGCPolicy()

// Linkable type tags registered by the content services.
const (
	LinkableTypeSection = "section"
	LinkableTypePage    = "page"
)

// SectionService manages content sections and serves them as menu link
// targets.
type SectionService struct {
	queries  *store.Queries
	resolver *translate.Resolver
}

// NewSectionService creates a SectionService.
func NewSectionService(queries *store.Queries, resolver *translate.Resolver) *SectionService {
	return &SectionService{queries: queries, resolver: resolver}
}

// Create creates a section.
func (s *SectionService) Create(ctx context.Context, p store.CreateSectionParams) (model.Section, error) {
	if p.Name.IsEmpty() {
		return model.Section{}, model.NewValidationError("name", "name is required")
	}
	return s.queries.CreateSection(ctx, p)
}

// Get fetches a live section by id.
func (s *SectionService) Get(ctx context.Context, id int64) (model.Section, error) {
	section, err := s.queries.GetSection(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Section{}, model.NewNotFoundError("section", id)
	}
	return section, err
}

// List returns all live sections visible to the current tenant.
func (s *SectionService) List(ctx context.Context) ([]model.Section, error) {
	return s.queries.ListSections(ctx)
}

// Update updates a section's editable fields.
func (s *SectionService) Update(ctx context.Context, p store.UpdateSectionParams) (model.Section, error) {
	section, err := s.queries.UpdateSection(ctx, p)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Section{}, model.NewNotFoundError("section", p.ID)
	}
	return section, err
}

// Delete soft-deletes a section.
func (s *SectionService) Delete(ctx context.Context, id int64) error {
	if err := s.queries.SoftDeleteSection(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.NewNotFoundError("section", id)
		}
		return err
	}
	return nil
}

// Label implements linkable.Provider.
func (s *SectionService) Label() string { return "Section" }

// Options implements linkable.Provider: active live sections only.
func (s *SectionService) Options(ctx context.Context) ([]linkable.Option, error) {
	sections, err := s.queries.ListActiveSections(ctx)
	if err != nil {
		return nil, err
	}
	options := make([]linkable.Option, 0, len(sections))
	for _, section := range sections {
		options = append(options, linkable.Option{
			ID:    section.ID,
			Title: s.resolver.Current(ctx, section.Name),
		})
	}
	return options, nil
}

// Resolve implements linkable.Provider. A deleted or unknown section is a
// dangling reference, not an error.
func (s *SectionService) Resolve(ctx context.Context, id int64) (*linkable.Target, error) {
	section, err := s.queries.GetSection(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &linkable.Target{
		Title: s.resolver.Current(ctx, section.Name),
		URL:   fmt.Sprintf("/sections/%s", section.Code),
	}, nil
}

// PageService manages content pages and serves them as menu link targets.
type PageService struct {
	queries  *store.Queries
	resolver *translate.Resolver
	markdown goldmark.Markdown
}

// NewPageService creates a PageService.
func NewPageService(queries *store.Queries, resolver *translate.Resolver) *PageService {
	return &PageService{
		queries:  queries,
		resolver: resolver,
		markdown: goldmark.New(),
	}
}

// Create creates a page. A missing slug is generated from the title; slugs
// must be unique among live pages.
func (s *PageService) Create(ctx context.Context, p store.CreatePageParams) (model.Page, error) {
	if p.Title.IsEmpty() {
		return model.Page{}, model.NewValidationError("title", "title is required")
	}
	if p.Slug == "" {
		p.Slug = util.Slugify(p.Title.Any())
	}
	if !util.IsValidSlug(p.Slug) {
		return model.Page{}, model.NewValidationError("slug", "invalid slug %q", p.Slug)
	}
	count, err := s.queries.CountPagesBySlug(ctx, p.Slug)
	if err != nil {
		return model.Page{}, err
	}
	if count > 0 {
		return model.Page{}, model.NewValidationError("slug", "slug %q is already in use", p.Slug)
	}
	if p.SectionID.Valid {
		if _, err := s.queries.GetSection(ctx, p.SectionID.Int64); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return model.Page{}, model.NewNotFoundError("section", p.SectionID.Int64)
			}
			return model.Page{}, err
		}
	}
	return s.queries.CreatePage(ctx, p)
}

// Get fetches a live page by id.
func (s *PageService) Get(ctx context.Context, id int64) (model.Page, error) {
	page, err := s.queries.GetPage(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Page{}, model.NewNotFoundError("page", id)
	}
	return page, err
}

// GetBySlug fetches a live page by slug.
func (s *PageService) GetBySlug(ctx context.Context, slug string) (model.Page, error) {
	page, err := s.queries.GetPageBySlug(ctx, slug)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Page{}, model.NewNotFoundError("page", 0)
	}
	return page, err
}

// List returns all live pages.
func (s *PageService) List(ctx context.Context) ([]model.Page, error) {
	return s.queries.ListPages(ctx)
}

// Update updates a page's editable fields.
func (s *PageService) Update(ctx context.Context, p store.UpdatePageParams) (model.Page, error) {
	if p.Slug != "" && !util.IsValidSlug(p.Slug) {
		return model.Page{}, model.NewValidationError("slug", "invalid slug %q", p.Slug)
	}
	page, err := s.queries.UpdatePage(ctx, p)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Page{}, model.NewNotFoundError("page", p.ID)
	}
	return page, err
}

// Delete soft-deletes a page.
func (s *PageService) Delete(ctx context.Context, id int64) error {
	if err := s.queries.SoftDeletePage(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.NewNotFoundError("page", id)
		}
		return err
	}
	return nil
}

// RenderBody converts a page's markdown body to sanitized HTML.
func (s *PageService) RenderBody(page model.Page) (template.HTML, error) {
	var buf bytes.Buffer
	if err := s.markdown.Convert([]byte(page.Body), &buf); err != nil {
		return "", fmt.Errorf("rendering page body: %w", err)
	}
	return template.HTML(htmlSanitizer.SanitizeBytes(buf.Bytes())), nil //nolint:gosec // sanitized above
}

// Label implements linkable.Provider.
func (s *PageService) Label() string { return "Page" }

// Options implements linkable.Provider: active live pages only.
func (s *PageService) Options(ctx context.Context) ([]linkable.Option, error) {
	pages, err := s.queries.ListActivePages(ctx)
	if err != nil {
		return nil, err
	}
	options := make([]linkable.Option, 0, len(pages))
	for _, page := range pages {
		options = append(options, linkable.Option{
			ID:    page.ID,
			Title: s.resolver.Current(ctx, page.Title),
		})
	}
	return options, nil
}

// Resolve implements linkable.Provider.
func (s *PageService) Resolve(ctx context.Context, id int64) (*linkable.Target, error) {
	page, err := s.queries.GetPage(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &linkable.Target{
		Title: s.resolver.Current(ctx, page.Title),
		URL:   "/" + page.Slug,
	}, nil
}

var (
	_ linkable.Provider = (*SectionService)(nil)
	_ linkable.Provider = (*PageService)(nil)
)
