// Copyright (c) 2026 Sitepanel Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitepanel/sitepanel-go/internal/model"
)

func testHandler() *Handler {
	return NewHandler(Deps{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func decodeErrorBody(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var body ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestWriteServiceErrorValidation(t *testing.T) {
	h := testHandler()
	rec := httptest.NewRecorder()

	h.writeServiceError(rec, model.NewValidationError("parent_id", "parent item %d not found", 42))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decodeErrorBody(t, rec)
	assert.Equal(t, "validation_failed", body.Error.Code)
	assert.Equal(t, "parent item 42 not found", body.Error.Message)
	assert.Equal(t, "parent_id", body.Error.Details["field"])
}

func TestWriteServiceErrorNotFound(t *testing.T) {
	h := testHandler()
	rec := httptest.NewRecorder()

	h.writeServiceError(rec, model.NewNotFoundError("menu", 7))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeErrorBody(t, rec)
	assert.Equal(t, "not_found", body.Error.Code)
}

func TestWriteServiceErrorWrappedNotFound(t *testing.T) {
	h := testHandler()
	rec := httptest.NewRecorder()

	wrapped := errors.Join(errors.New("delete item"), model.NewNotFoundError("menu_item", 3))
	h.writeServiceError(rec, wrapped)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWriteServiceErrorPartialFailure(t *testing.T) {
	h := testHandler()
	rec := httptest.NewRecorder()

	h.writeServiceError(rec, &model.PartialFailureError{
		Op:        "delete cascade",
		Succeeded: []int64{1, 2},
		Failed:    map[int64]error{3: errors.New("row locked")},
	})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeErrorBody(t, rec)
	assert.Equal(t, "partial_failure", body.Error.Code)
	assert.Equal(t, "row locked", body.Error.Details["3"])
}

func TestWriteServiceErrorGeneric(t *testing.T) {
	h := testHandler()
	rec := httptest.NewRecorder()

	h.writeServiceError(rec, errors.New("disk on fire"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeErrorBody(t, rec)
	assert.Equal(t, "internal_error", body.Error.Code)
	// Internal detail must not leak to the client.
	assert.NotContains(t, body.Error.Message, "disk on fire")
}

func TestDecodeRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x","bogus":1}`))

	var dst struct {
		Name string `json:"name"`
	}
	assert.Error(t, decode(req, &dst))
}

func TestParseID(t *testing.T) {
	id, err := parseID("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	_, err = parseID("not-a-number")
	assert.Error(t, err)
}
