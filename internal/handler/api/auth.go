// Copyright (c) 2026 Sitepanel Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/sitepanel/sitepanel-go/internal/middleware"
	"github.com/sitepanel/sitepanel-go/internal/service"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// Login authenticates a user and establishes a session. Requests are rate
// limited per IP and accounts lock after repeated failures.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}
	if !h.loginLP.CheckIPRateLimit(ip) {
		WriteError(w, http.StatusTooManyRequests, "rate_limited",
			"too many login attempts, slow down", nil)
		return
	}

	var req loginRequest
	if err := decode(r, &req); err != nil {
		WriteBadRequest(w, "invalid request body")
		return
	}

	if locked, remaining := h.loginLP.IsAccountLocked(req.Email); locked {
		WriteError(w, http.StatusTooManyRequests, "account_locked",
			fmt.Sprintf("account locked, try again in %s", remaining.Round(time.Second)), nil)
		return
	}

	user, err := h.users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			h.loginLP.RecordFailedAttempt(req.Email)
			WriteError(w, http.StatusUnauthorized, "invalid_credentials",
				"invalid email or password", nil)
			return
		}
		h.writeServiceError(w, err)
		return
	}

	h.loginLP.RecordSuccessfulLogin(req.Email)

	// New session token on privilege change
	if err := h.sessions.RenewToken(r.Context()); err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.sessions.Put(r.Context(), middleware.SessionKeyUserID, user.ID)

	WriteSuccess(w, loginResponse{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
		Role:  user.Role,
	}, nil)
}

// Logout destroys the current session.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Destroy(r.Context()); err != nil {
		h.writeServiceError(w, err)
		return
	}
	WriteSuccess(w, map[string]bool{"logged_out": true}, nil)
}
