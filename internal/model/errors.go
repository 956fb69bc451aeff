// Copyright (c) 2026 Sitepanel Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"fmt"
	"strings"
)

// ValidationError reports malformed input to a create/update/reorder call.
// It is terminal and user-facing; callers re-prompt rather than retry.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// NewValidationError creates a ValidationError for a field.
func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// NotFoundError reports a referenced id that does not resolve.
// Mapped to 404 where ValidationError maps to 422.
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// NewNotFoundError creates a NotFoundError for an entity id.
func NewNotFoundError(entity string, id int64) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}

// PartialFailureError reports a cascade operation that failed partway.
// Items already processed stay processed; the caller decides whether to retry
// the remainder.
type PartialFailureError struct {
	Op        string
	Succeeded []int64
	Failed    map[int64]error
}

func (e *PartialFailureError) Error() string {
	ids := make([]string, 0, len(e.Failed))
	for id := range e.Failed {
		ids = append(ids, fmt.Sprintf("%d", id))
	}
	return fmt.Sprintf("%s: %d of %d items failed (ids %s)",
		e.Op, len(e.Failed), len(e.Failed)+len(e.Succeeded), strings.Join(ids, ", "))
}

// StorageError reports a file store/read/delete failure.
type StorageError struct {
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Path, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
