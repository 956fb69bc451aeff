// Copyright (c) 2026 Sitepanel Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"strings"
	"testing"
)

const testSecret = "kJ8#mP2$vN9@qR5^wT3&xY7*zA4!bC6d"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SP_SESSION_SECRET", testSecret)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DBPath != "./data/sitepanel.db" {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if cfg.ServerAddr() != "localhost:8080" {
		t.Errorf("ServerAddr = %q", cfg.ServerAddr())
	}
	if !cfg.IsDevelopment() {
		t.Error("default env not development")
	}
	if cfg.TrashRetentionDays != 30 {
		t.Errorf("TrashRetentionDays = %d", cfg.TrashRetentionDays)
	}
	if cfg.TenancyEnabled {
		t.Error("tenancy enabled by default")
	}
	if got := cfg.EffectiveLocales(); len(got) != 1 || got[0] != "en" {
		t.Errorf("EffectiveLocales = %v", got)
	}
}

func TestLoadRejectsShortSecret(t *testing.T) {
	t.Setenv("SP_SESSION_SECRET", "too-short")

	if _, err := Load(); err == nil {
		t.Fatal("short secret accepted")
	}
}

func TestLoadRejectsKnownWeakSecret(t *testing.T) {
	t.Setenv("SP_SESSION_SECRET", "change-me-to-32-byte-secret-key!")

	_, err := Load()
	if err == nil {
		t.Fatal("weak default secret accepted")
	}
	if !strings.Contains(err.Error(), "known default") {
		t.Errorf("error = %v", err)
	}
}

func TestEffectiveLocalesOrdering(t *testing.T) {
	t.Setenv("SP_SESSION_SECRET", testSecret)
	t.Setenv("SP_LOCALES", "en,sl,de")
	t.Setenv("SP_DEFAULT_LOCALE", "sl")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	got := cfg.EffectiveLocales()
	want := []string{"sl", "en", "de"}
	if len(got) != len(want) {
		t.Fatalf("EffectiveLocales = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("EffectiveLocales[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestLocaleFallbacksParsed(t *testing.T) {
	t.Setenv("SP_SESSION_SECRET", testSecret)
	t.Setenv("SP_LOCALE_FALLBACKS", "sl:en,de:en")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LocaleFallbacks["sl"] != "en" || cfg.LocaleFallbacks["de"] != "en" {
		t.Errorf("LocaleFallbacks = %v", cfg.LocaleFallbacks)
	}
}
