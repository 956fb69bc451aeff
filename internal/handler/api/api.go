// Copyright (c) 2026 Sitepanel Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package api provides the REST handlers of the admin panel.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"

	"github.com/sitepanel/sitepanel-go/internal/access"
	"github.com/sitepanel/sitepanel-go/internal/linkable"
	"github.com/sitepanel/sitepanel-go/internal/middleware"
	"github.com/sitepanel/sitepanel-go/internal/model"
	"github.com/sitepanel/sitepanel-go/internal/service"
	"github.com/sitepanel/sitepanel-go/internal/translate"
)

// Handler holds shared dependencies for all API handlers.
type Handler struct {
	sessions *scs.SessionManager
	users    *service.UserService
	menus    *service.MenuService
	banners  *service.BannerService
	sections *service.SectionService
	pages    *service.PageService
	registry *linkable.Registry
	policies *access.Policies
	resolver *translate.Resolver
	loginLP  *middleware.LoginProtection
	logger   *slog.Logger
}

// Deps bundles the handler's collaborators.
type Deps struct {
	Sessions *scs.SessionManager
	Users    *service.UserService
	Menus    *service.MenuService
	Banners  *service.BannerService
	Sections *service.SectionService
	Pages    *service.PageService
	Registry *linkable.Registry
	Policies *access.Policies
	Resolver *translate.Resolver
	LoginLP  *middleware.LoginProtection
	Logger   *slog.Logger
}

// NewHandler creates a new API handler.
func NewHandler(d Deps) *Handler {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	return &Handler{
		sessions: d.Sessions,
		users:    d.Users,
		menus:    d.Menus,
		banners:  d.Banners,
		sections: d.Sections,
		pages:    d.Pages,
		registry: d.Registry,
		policies: d.Policies,
		resolver: d.Resolver,
		loginLP:  d.LoginLP,
		logger:   d.Logger,
	}
}

// Response is the standard API response wrapper.
type Response struct {
	Data any   `json:"data,omitempty"`
	Meta *Meta `json:"meta,omitempty"`
}

// Meta contains list metadata.
type Meta struct {
	Total int `json:"total,omitempty"`
}

// ErrorResponse is the standard API error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes a successful JSON response.
func WriteSuccess(w http.ResponseWriter, data any, meta *Meta) {
	WriteJSON(w, http.StatusOK, Response{Data: data, Meta: meta})
}

// WriteCreated writes a 201 Created JSON response.
func WriteCreated(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusCreated, Response{Data: data})
}

// WriteError writes an error JSON response.
func WriteError(w http.ResponseWriter, statusCode int, code, message string, details map[string]string) {
	WriteJSON(w, statusCode, ErrorResponse{Error: ErrorDetail{
		Code:    code,
		Message: message,
		Details: details,
	}})
}

// WriteBadRequest writes a 400 Bad Request response.
func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, "bad_request", message, nil)
}

// WriteForbidden writes a 403 Forbidden response.
func WriteForbidden(w http.ResponseWriter) {
	WriteError(w, http.StatusForbidden, "forbidden", "permission denied", nil)
}

// writeServiceError maps domain errors to HTTP responses: validation
// failures to 422, missing entities to 404, partial cascade failures to 500
// with the failed ids, anything else to a generic 500.
func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	var validationErr *model.ValidationError
	var notFoundErr *model.NotFoundError
	var partialErr *model.PartialFailureError

	switch {
	case errors.As(err, &validationErr):
		WriteError(w, http.StatusUnprocessableEntity, "validation_failed",
			validationErr.Message, map[string]string{"field": validationErr.Field})
	case errors.As(err, &notFoundErr):
		WriteError(w, http.StatusNotFound, "not_found", notFoundErr.Error(), nil)
	case errors.As(err, &partialErr):
		details := make(map[string]string, len(partialErr.Failed))
		for id, cause := range partialErr.Failed {
			details[strconv.FormatInt(id, 10)] = cause.Error()
		}
		WriteError(w, http.StatusInternalServerError, "partial_failure", partialErr.Error(), details)
	default:
		h.logger.Error("request failed", "error", err)
		WriteError(w, http.StatusInternalServerError, "internal_error", "internal server error", nil)
	}
}

// decode reads a JSON request body into v.
func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// idParam parses the named chi URL parameter as an int64.
func idParam(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}

// parseID parses a raw id string.
func parseID(raw string) (int64, error) {
	return strconv.ParseInt(raw, 10, 64)
}

// actor returns the authenticated user from the request context.
func actor(r *http.Request) *model.User {
	return middleware.UserFromContext(r.Context())
}

// Routes mounts all API routes. Everything except the auth endpoints sits
// behind the session guard.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.ScopedLinkableOptions(h.registry))

	r.Post("/auth/login", h.Login)
	r.Post("/auth/logout", h.Logout)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(h.sessions))

		r.Route("/menus", func(r chi.Router) {
			r.Get("/", h.ListMenus)
			r.Post("/", h.CreateMenu)
			r.Get("/{id}", h.GetMenu)
			r.Put("/{id}", h.UpdateMenu)
			r.Delete("/{id}", h.DeleteMenu)
			r.Get("/{id}/tree", h.MenuTree)
			r.Get("/{id}/items", h.ListMenuItems)
			r.Post("/{id}/items", h.CreateMenuItem)
			r.Get("/{id}/parent-options", h.MenuItemParentOptions)
			r.Post("/{id}/reorder", h.ReorderMenuItems)
		})

		r.Route("/menu-items", func(r chi.Router) {
			r.Get("/{id}", h.GetMenuItem)
			r.Put("/{id}", h.UpdateMenuItem)
			r.Delete("/{id}", h.DeleteMenuItem)
			r.Post("/{id}/restore", h.RestoreMenuItem)
			r.Delete("/{id}/force", h.ForceDeleteMenuItem)
			r.Get("/{id}/url", h.ResolveMenuItemURL)
			r.Get("/{id}/path", h.MenuItemPath)
		})

		r.Route("/banner-positions", func(r chi.Router) {
			r.Get("/", h.ListPositions)
			r.Post("/", h.CreatePosition)
			r.Get("/{id}", h.GetPosition)
			r.Put("/{id}", h.UpdatePosition)
			r.Delete("/{id}", h.DeletePosition)
			r.Get("/{id}/image-types", h.ListImageTypes)
			r.Post("/{id}/image-types", h.CreateImageType)
			r.Get("/{id}/banners", h.ListBanners)
			r.Post("/{id}/banners", h.CreateBanner)
		})

		r.Route("/banners", func(r chi.Router) {
			r.Get("/{id}", h.GetBanner)
			r.Put("/{id}", h.UpdateBanner)
			r.Delete("/{id}", h.DeleteBanner)
			r.Get("/{id}/images", h.ListBannerImages)
			r.Post("/{id}/images", h.AttachBannerImage)
			r.Post("/{id}/derive", h.DeriveBannerCompanions)
		})

		r.Route("/sections", func(r chi.Router) {
			r.Get("/", h.ListSections)
			r.Post("/", h.CreateSection)
			r.Get("/{id}", h.GetSection)
			r.Put("/{id}", h.UpdateSection)
			r.Delete("/{id}", h.DeleteSection)
		})

		r.Route("/pages", func(r chi.Router) {
			r.Get("/", h.ListPages)
			r.Post("/", h.CreatePage)
			r.Get("/{id}", h.GetPage)
			r.Get("/{id}/preview", h.PreviewPage)
			r.Put("/{id}", h.UpdatePage)
			r.Delete("/{id}", h.DeletePage)
		})

		r.Route("/linkables", func(r chi.Router) {
			r.Get("/", h.ListLinkableTypes)
			r.Get("/{type}/options", h.LinkableOptions)
		})
	})

	return r
}
