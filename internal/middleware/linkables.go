// Copyright (c) 2026 Sitepanel Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"

	"github.com/sitepanel/sitepanel-go/internal/linkable"
)

// ScopedLinkableOptions limits linkable option memoization to a single
// request. The cache is dropped on entry, so repeated option lookups while
// serving one request reuse the memoized lists, but the next request sees
// any entities created or removed in between.
func ScopedLinkableOptions(reg *linkable.Registry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reg.ClearCache()
			next.ServeHTTP(w, r)
		})
	}
}
