// Copyright (c) 2026 Sitepanel Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package translate

import "testing"

func TestValueScanLegacyPlainString(t *testing.T) {
	var v Value
	if err := v.Scan("Old Title"); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if v.In("") != "Old Title" {
		t.Errorf("legacy string not stored under empty locale: %v", v)
	}
}

func TestValueAnyPicksDeterministically(t *testing.T) {
	v := Value{"sl": "Domov", "en": "Home"}
	if got := v.Any(); got != "Home" {
		t.Errorf("Any() = %q, want entry of first sorted locale", got)
	}
	if got := (Value{}).Any(); got != "" {
		t.Errorf("empty Any() = %q", got)
	}
}

func TestValueCloneIsIndependent(t *testing.T) {
	v := Value{"en": "Home"}
	c := v.Clone()
	c.Set("en", "Changed")
	if v.In("en") != "Home" {
		t.Error("clone shares storage with original")
	}
}
