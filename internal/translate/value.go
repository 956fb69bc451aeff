// Copyright (c) 2026 Sitepanel Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package translate provides per-locale translated values for entity fields
// (names, titles, labels, file paths) and locale resolution for requests.
package translate

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
)

// Value maps locale codes (e.g. "en", "sl") to translated strings.
// It serializes to a JSON object for storage in TEXT columns.
type Value map[string]string

// NewValue creates a Value with a single locale entry.
func NewValue(locale, text string) Value {
	return Value{locale: text}
}

// In returns the text for the given locale, or "" if absent.
func (v Value) In(locale string) string {
	if v == nil {
		return ""
	}
	return v[locale]
}

// Set stores text under the given locale, allocating if needed.
func (v *Value) Set(locale, text string) {
	if *v == nil {
		*v = make(Value, 1)
	}
	(*v)[locale] = text
}

// Any returns the first available translation by sorted locale code,
// or "" if the value is empty. Used for display contexts where any
// language beats none.
func (v Value) Any() string {
	if len(v) == 0 {
		return ""
	}
	locales := make([]string, 0, len(v))
	for loc := range v {
		locales = append(locales, loc)
	}
	sort.Strings(locales)
	return v[locales[0]]
}

// IsEmpty returns true if no locale carries a non-empty translation.
func (v Value) IsEmpty() bool {
	for _, text := range v {
		if text != "" {
			return false
		}
	}
	return true
}

// Clone returns an independent copy of the value.
func (v Value) Clone() Value {
	if v == nil {
		return nil
	}
	out := make(Value, len(v))
	for loc, text := range v {
		out[loc] = text
	}
	return out
}

// Value implements driver.Valuer, encoding the map as a JSON object.
func (v Value) Value() (driver.Value, error) {
	if v == nil {
		return "{}", nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding translated value: %w", err)
	}
	return string(data), nil
}

// Scan implements sql.Scanner. Accepts a JSON object, or a bare string
// which is stored under the empty locale for legacy rows.
func (v *Value) Scan(src any) error {
	switch s := src.(type) {
	case nil:
		*v = nil
		return nil
	case string:
		return v.scanText(s)
	case []byte:
		return v.scanText(string(s))
	default:
		return fmt.Errorf("unsupported type %T for translated value", src)
	}
}

func (v *Value) scanText(s string) error {
	if s == "" {
		*v = Value{}
		return nil
	}
	if s[0] != '{' {
		// Plain string from a pre-translation row
		*v = Value{"": s}
		return nil
	}
	out := make(Value)
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return fmt.Errorf("decoding translated value: %w", err)
	}
	*v = out
	return nil
}
