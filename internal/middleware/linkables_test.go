// Copyright (c) 2026 Sitepanel Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sitepanel/sitepanel-go/internal/linkable"
)

type countingProvider struct {
	calls   int
	options []linkable.Option
}

func (p *countingProvider) Label() string { return "Page" }

func (p *countingProvider) Options(context.Context) ([]linkable.Option, error) {
	p.calls++
	return p.options, nil
}

func (p *countingProvider) Resolve(context.Context, int64) (*linkable.Target, error) {
	return nil, nil
}

func TestScopedLinkableOptionsServesFreshListsPerRequest(t *testing.T) {
	reg := linkable.NewRegistry(slog.New(slog.NewTextHandler(io.Discard, nil)))
	provider := &countingProvider{options: []linkable.Option{{ID: 1, Title: "Home"}}}
	reg.Register("page", provider)

	var perRequest [][]linkable.Option
	handler := ScopedLinkableOptions(reg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Two lookups within one request share the memoized list.
		reg.Options(r.Context(), "page")
		perRequest = append(perRequest, reg.Options(r.Context(), "page"))
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if provider.calls != 1 {
		t.Fatalf("provider called %d times within one request, want 1", provider.calls)
	}
	if len(perRequest[0]) != 1 {
		t.Fatalf("first request saw %d options, want 1", len(perRequest[0]))
	}

	// A page created between requests shows up in the next request's list.
	provider.options = append(provider.options, linkable.Option{ID: 2, Title: "About"})

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if provider.calls != 2 {
		t.Fatalf("provider called %d times across two requests, want 2", provider.calls)
	}
	if got := perRequest[1]; len(got) != 2 || got[1].Title != "About" {
		t.Fatalf("second request options = %+v, want the newly created page included", got)
	}
}
