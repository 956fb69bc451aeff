// Copyright (c) 2026 Sitepanel Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sitepanel/sitepanel-go/internal/auth"
	"github.com/sitepanel/sitepanel-go/internal/model"
	"github.com/sitepanel/sitepanel-go/internal/store"
)

// ErrInvalidCredentials is returned for a wrong email/password combination.
// The caller must not reveal which half was wrong.
var ErrInvalidCredentials = errors.New("invalid credentials")

// UserService handles admin user accounts and authentication.
type UserService struct {
	queries *store.Queries
	logger  *slog.Logger
}

// NewUserService creates a UserService.
func NewUserService(queries *store.Queries, logger *slog.Logger) *UserService {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserService{queries: queries, logger: logger}
}

// Create creates a user with a hashed password.
func (s *UserService) Create(ctx context.Context, email, password, role, name string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return model.User{}, model.NewValidationError("email", "invalid email address")
	}
	if len(password) < 8 {
		return model.User{}, model.NewValidationError("password", "password must be at least 8 characters")
	}
	if role != model.RoleAdmin && role != model.RoleEditor {
		return model.User{}, model.NewValidationError("role", "unknown role %q", role)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return model.User{}, fmt.Errorf("hashing password: %w", err)
	}

	return s.queries.CreateUser(ctx, store.CreateUserParams{
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Name:         name,
	})
}

// Authenticate verifies credentials and records the login time. The hash is
// upgraded transparently when the stored parameters are outdated.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.queries.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Burn a hash check anyway to keep timing comparable.
			_, _ = auth.CheckPassword(password, "")
			return model.User{}, ErrInvalidCredentials
		}
		return model.User{}, err
	}

	ok, err := auth.CheckPassword(password, user.PasswordHash)
	if err != nil || !ok {
		s.logger.Warn("login failed", "category", model.EventCategoryAuth, "email", email)
		return model.User{}, ErrInvalidCredentials
	}

	if auth.NeedsRehash(user.PasswordHash) {
		if hash, err := auth.HashPassword(password); err == nil {
			user.PasswordHash = hash
			// Rehash failures are not fatal; the old hash still works.
			_ = s.updatePasswordHash(ctx, user.ID, hash)
		}
	}

	if err := s.queries.TouchUserLogin(ctx, user.ID); err != nil {
		s.logger.Warn("recording login time failed",
			"category", model.EventCategoryAuth, "user_id", user.ID, "error", err)
	}

	s.logger.Info("login succeeded", "category", model.EventCategoryAuth, "user_id", user.ID)
	return user, nil
}

// Get fetches a user by id.
func (s *UserService) Get(ctx context.Context, id int64) (model.User, error) {
	user, err := s.queries.GetUserByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, model.NewNotFoundError("user", id)
	}
	return user, err
}

func (s *UserService) updatePasswordHash(ctx context.Context, id int64, hash string) error {
	return s.queries.UpdateUserPasswordHash(ctx, id, hash)
}
