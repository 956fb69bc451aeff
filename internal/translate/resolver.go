// Copyright (c) 2026 Sitepanel Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package translate

import (
	"context"
	"strings"

	"golang.org/x/text/language"
)

type contextKey string

const localeContextKey contextKey = "locale"

// Resolver resolves translated values against a configured locale set.
// Lookup order for a value: the requested locale, then that locale's
// configured fallback, then empty. Locales without a configured fallback
// resolve strictly.
type Resolver struct {
	defaultLocale string
	locales       []string
	fallbacks     map[string]string
	matcher       language.Matcher
	tags          []language.Tag
}

// NewResolver creates a Resolver for the given locale codes.
// The first locale is the default. Fallbacks maps a locale to the locale
// consulted when a value has no entry for it (commonly everything falling
// back to the default); it may be nil.
func NewResolver(locales []string, fallbacks map[string]string) *Resolver {
	if len(locales) == 0 {
		locales = []string{"en"}
	}
	tags := make([]language.Tag, 0, len(locales))
	for _, loc := range locales {
		if tag, err := language.Parse(loc); err == nil {
			tags = append(tags, tag)
		}
	}
	if len(tags) == 0 {
		tags = []language.Tag{language.English}
	}
	return &Resolver{
		defaultLocale: locales[0],
		locales:       locales,
		fallbacks:     fallbacks,
		matcher:       language.NewMatcher(tags),
		tags:          tags,
	}
}

// DefaultLocale returns the configured default locale code.
func (r *Resolver) DefaultLocale() string {
	return r.defaultLocale
}

// Locales returns the configured locale codes.
func (r *Resolver) Locales() []string {
	return r.locales
}

// IsSupported checks if a locale code is configured.
func (r *Resolver) IsSupported(locale string) bool {
	locale = strings.ToLower(locale)
	for _, loc := range r.locales {
		if loc == locale {
			return true
		}
	}
	return false
}

// Get resolves a translated value for the given locale: the locale's own
// entry, else the entry for its configured fallback, else the first
// available value by sorted locale, else "".
func (r *Resolver) Get(v Value, locale string) string {
	if text := v.In(locale); text != "" {
		return text
	}
	if fb, ok := r.fallbacks[locale]; ok && fb != locale {
		if text := v.In(fb); text != "" {
			return text
		}
	}
	return v.Any()
}

// Current resolves a translated value for the locale carried by ctx,
// falling back to the default locale when ctx carries none.
func (r *Resolver) Current(ctx context.Context, v Value) string {
	return r.Get(v, LocaleFromContext(ctx, r.defaultLocale))
}

// CurrentLocale returns the locale carried by ctx, or the default locale.
func (r *Resolver) CurrentLocale(ctx context.Context) string {
	return LocaleFromContext(ctx, r.defaultLocale)
}

// SetCurrent stores text under the locale carried by ctx (or the default).
func (r *Resolver) SetCurrent(ctx context.Context, v *Value, text string) {
	v.Set(LocaleFromContext(ctx, r.defaultLocale), text)
}

// Match finds the best configured locale for an Accept-Language header
// or bare locale code, defaulting to the resolver's default locale.
func (r *Resolver) Match(acceptLang string) string {
	tags, _, err := language.ParseAcceptLanguage(acceptLang)
	if err != nil || len(tags) == 0 {
		tag, err := language.Parse(acceptLang)
		if err != nil {
			return r.defaultLocale
		}
		tags = []language.Tag{tag}
	}
	_, idx, _ := r.matcher.Match(tags...)
	if idx >= 0 && idx < len(r.locales) {
		return r.locales[idx]
	}
	return r.defaultLocale
}

// WithLocale returns a context carrying the given locale code.
func WithLocale(ctx context.Context, locale string) context.Context {
	return context.WithValue(ctx, localeContextKey, locale)
}

// LocaleFromContext returns the locale carried by ctx, or fallback.
func LocaleFromContext(ctx context.Context, fallback string) string {
	if loc, ok := ctx.Value(localeContextKey).(string); ok && loc != "" {
		return loc
	}
	return fallback
}
