// Copyright (c) 2026 Sitepanel Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"strconv"

	"github.com/sitepanel/sitepanel-go/internal/tenancy"
	"github.com/sitepanel/sitepanel-go/internal/translate"
)

// LocaleCookieName is the cookie name for the locale preference.
const LocaleCookieName = "sp_locale"

// Locale creates middleware that resolves the request locale and stores it
// in the context. Priority: ?locale= query parameter (updates the cookie),
// cookie preference, Accept-Language header, configured default.
func Locale(resolver *translate.Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			locale := ""

			if q := r.URL.Query().Get("locale"); q != "" && resolver.IsSupported(q) {
				locale = q
				http.SetCookie(w, &http.Cookie{
					Name:     LocaleCookieName,
					Value:    locale,
					Path:     "/",
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}

			if locale == "" {
				if c, err := r.Cookie(LocaleCookieName); err == nil && resolver.IsSupported(c.Value) {
					locale = c.Value
				}
			}

			if locale == "" {
				if accept := r.Header.Get("Accept-Language"); accept != "" {
					locale = resolver.Match(accept)
				}
			}

			if locale == "" {
				locale = resolver.DefaultLocale()
			}

			next.ServeHTTP(w, r.WithContext(translate.WithLocale(r.Context(), locale)))
		})
	}
}

// TenantHeader is the request header carrying the acting tenant id.
const TenantHeader = "X-Tenant-ID"

// Tenant creates middleware that resolves the current tenant from the
// request header and stores it in the context. When tenancy is disabled the
// middleware is a no-op.
func Tenant(enabled bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !enabled {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if raw := r.Header.Get(TenantHeader); raw != "" {
				if id, err := strconv.ParseInt(raw, 10, 64); err == nil && id > 0 {
					r = r.WithContext(tenancy.WithTenant(r.Context(), id))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
