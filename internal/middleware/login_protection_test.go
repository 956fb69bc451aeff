// Copyright (c) 2026 Sitepanel Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"testing"
	"time"
)

func testProtection() *LoginProtection {
	return NewLoginProtection(LoginProtectionConfig{
		IPRateLimit:       100,
		IPBurst:           3,
		MaxFailedAttempts: 3,
		LockoutDuration:   time.Minute,
		AttemptWindow:     time.Minute,
	})
}

func TestAccountLockoutAfterMaxFailures(t *testing.T) {
	lp := testProtection()
	email := "user@example.com"

	for i := 0; i < 2; i++ {
		locked, _ := lp.RecordFailedAttempt(email)
		if locked {
			t.Fatalf("locked after %d attempts", i+1)
		}
	}
	locked, remaining := lp.RecordFailedAttempt(email)
	if !locked {
		t.Fatal("not locked after max failures")
	}
	if remaining <= 0 {
		t.Errorf("lockout remaining = %v", remaining)
	}

	isLocked, _ := lp.IsAccountLocked(email)
	if !isLocked {
		t.Error("IsAccountLocked = false after lockout")
	}
}

func TestSuccessfulLoginResetsAttempts(t *testing.T) {
	lp := testProtection()
	email := "user@example.com"

	lp.RecordFailedAttempt(email)
	lp.RecordFailedAttempt(email)
	lp.RecordSuccessfulLogin(email)

	if got := lp.GetRemainingAttempts(email); got != 3 {
		t.Errorf("remaining attempts = %d, want full budget", got)
	}
	if locked, _ := lp.IsAccountLocked(email); locked {
		t.Error("account locked after successful login")
	}
}

func TestIPRateLimitBurst(t *testing.T) {
	lp := NewLoginProtection(LoginProtectionConfig{
		IPRateLimit:       0.001, // effectively no refill during the test
		IPBurst:           3,
		MaxFailedAttempts: 5,
		LockoutDuration:   time.Minute,
		AttemptWindow:     time.Minute,
	})

	for i := 0; i < 3; i++ {
		if !lp.CheckIPRateLimit("10.0.0.1") {
			t.Fatalf("request %d rejected inside burst", i+1)
		}
	}
	if lp.CheckIPRateLimit("10.0.0.1") {
		t.Error("request beyond burst accepted")
	}
	// Another IP has its own budget
	if !lp.CheckIPRateLimit("10.0.0.2") {
		t.Error("unrelated IP rejected")
	}
}

func TestLockoutBackoffDoubles(t *testing.T) {
	lp := NewLoginProtection(LoginProtectionConfig{
		IPRateLimit:       100,
		IPBurst:           10,
		MaxFailedAttempts: 1,
		LockoutDuration:   time.Minute,
		AttemptWindow:     time.Hour,
	})
	email := "user@example.com"

	lp.RecordFailedAttempt(email) // opens the tracking window
	locked, first := lp.RecordFailedAttempt(email)
	if !locked {
		t.Fatal("not locked on first threshold hit")
	}
	locked, second := lp.RecordFailedAttempt(email)
	if !locked {
		t.Fatal("not locked on second threshold hit")
	}
	if second <= first {
		t.Errorf("backoff not increasing: first %v, second %v", first, second)
	}
}
