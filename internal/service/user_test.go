// Copyright (c) 2026 Sitepanel Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"errors"
	"testing"

	"github.com/sitepanel/sitepanel-go/internal/model"
	"github.com/sitepanel/sitepanel-go/internal/testutil"
)

func TestUserCreateValidation(t *testing.T) {
	queries, cleanup := testutil.TestQueries(t)
	defer cleanup()
	svc := NewUserService(queries, testutil.TestLoggerSilent())
	ctx := context.Background()

	tests := []struct {
		name     string
		email    string
		password string
		role     string
	}{
		{"bad email", "not-an-email", "password123", model.RoleEditor},
		{"short password", "a@example.com", "short", model.RoleEditor},
		{"unknown role", "a@example.com", "password123", "superuser"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.email, tt.password, tt.role, "Test")
			var verr *model.ValidationError
			if !errors.As(err, &verr) {
				t.Errorf("expected ValidationError, got %v", err)
			}
		})
	}
}

func TestUserAuthenticate(t *testing.T) {
	queries, cleanup := testutil.TestQueries(t)
	defer cleanup()
	svc := NewUserService(queries, testutil.TestLoggerSilent())
	ctx := context.Background()

	created, err := svc.Create(ctx, "Admin@Example.com", "correct-horse", model.RoleAdmin, "Admin")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Email != "admin@example.com" {
		t.Errorf("email not normalized: %q", created.Email)
	}

	user, err := svc.Authenticate(ctx, "admin@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if user.ID != created.ID {
		t.Errorf("authenticated wrong user: %d", user.ID)
	}

	if _, err := svc.Authenticate(ctx, "admin@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password error = %v", err)
	}
	if _, err := svc.Authenticate(ctx, "nobody@example.com", "whatever"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown user error = %v", err)
	}
}
