// Copyright (c) 2026 Sitepanel Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package translate

import (
	"context"
	"testing"
)

func TestGetFallbackChain(t *testing.T) {
	r := NewResolver([]string{"en", "sl", "de"}, map[string]string{
		"sl": "en",
	})

	v := Value{"en": "Products", "de": "Produkte"}

	tests := []struct {
		name   string
		locale string
		want   string
	}{
		{"own entry", "de", "Produkte"},
		{"fallback to en", "sl", "Products"},
		{"no fallback configured resolves strictly", "de", "Produkte"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Get(v, tt.locale); got != tt.want {
				t.Errorf("Get(%q) = %q, want %q", tt.locale, got, tt.want)
			}
		})
	}

	// A locale with no entry and no fallback picks up the first available
	// value rather than rendering empty
	only := Value{"sl": "Izdelki"}
	if got := r.Get(only, "de"); got != "Izdelki" {
		t.Errorf("last-resort value got %q, want %q", got, "Izdelki")
	}

	// An empty value yields ""
	if got := r.Get(Value{}, "de"); got != "" {
		t.Errorf("empty value got %q, want empty", got)
	}

	// Fallback equal to the locale itself does not loop
	r2 := NewResolver([]string{"en"}, map[string]string{"en": "en"})
	if got := r2.Get(Value{}, "en"); got != "" {
		t.Errorf("self fallback got %q, want empty", got)
	}
}

func TestGetFallsBackToAnyAvailableLocale(t *testing.T) {
	r := NewResolver([]string{"en", "sl"}, nil)

	// A value translated only in a non-default locale still renders under
	// the default locale instead of coming back empty.
	v := Value{"sl": "Novice"}
	if got := r.Current(context.Background(), v); got != "Novice" {
		t.Errorf("Current = %q, want %q", got, "Novice")
	}

	// The requested locale's own entry still wins over the last resort.
	v["en"] = "News"
	if got := r.Current(context.Background(), v); got != "News" {
		t.Errorf("Current = %q, want %q", got, "News")
	}
}

func TestCurrentUsesContextLocale(t *testing.T) {
	r := NewResolver([]string{"en", "sl"}, map[string]string{"sl": "en"})
	v := Value{"en": "Home", "sl": "Domov"}

	if got := r.Current(context.Background(), v); got != "Home" {
		t.Errorf("default locale got %q", got)
	}
	ctx := WithLocale(context.Background(), "sl")
	if got := r.Current(ctx, v); got != "Domov" {
		t.Errorf("context locale got %q", got)
	}
	if got := r.CurrentLocale(ctx); got != "sl" {
		t.Errorf("CurrentLocale = %q", got)
	}
}

func TestMatch(t *testing.T) {
	r := NewResolver([]string{"en", "sl", "de"}, nil)

	tests := []struct {
		accept string
		want   string
	}{
		{"sl-SI,sl;q=0.9,en;q=0.8", "sl"},
		{"de", "de"},
		{"fr", "en"},
		{"", "en"},
		{"garbage;;;", "en"},
	}
	for _, tt := range tests {
		if got := r.Match(tt.accept); got != tt.want {
			t.Errorf("Match(%q) = %q, want %q", tt.accept, got, tt.want)
		}
	}
}

func TestIsSupported(t *testing.T) {
	r := NewResolver([]string{"en", "sl"}, nil)
	if !r.IsSupported("en") || !r.IsSupported("SL") {
		t.Error("configured locales not recognized")
	}
	if r.IsSupported("de") {
		t.Error("unconfigured locale recognized")
	}
}
