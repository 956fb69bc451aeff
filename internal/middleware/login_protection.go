// Copyright (c) 2026 Sitepanel Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const maxLockout = 24 * time.Hour

// LoginProtection throttles the login endpoint two ways: a token bucket per
// client IP, and a per-account lockout whose duration doubles with each
// repeated lockout.
type LoginProtection struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	accounts map[string]*accountState

	ipRate  rate.Limit
	ipBurst int

	maxFailures   int
	baseLockout   time.Duration
	attemptWindow time.Duration
}

// accountState tracks failed logins for one account.
type accountState struct {
	failures    int
	windowStart time.Time
	lockedUntil time.Time
	lockouts    int
}

// LoginProtectionConfig holds configuration for login protection.
type LoginProtectionConfig struct {
	IPRateLimit       float64
	IPBurst           int
	MaxFailedAttempts int
	LockoutDuration   time.Duration
	AttemptWindow     time.Duration
}

// DefaultLoginProtectionConfig returns sensible defaults.
func DefaultLoginProtectionConfig() LoginProtectionConfig {
	return LoginProtectionConfig{
		IPRateLimit:       0.5, // one request per two seconds
		IPBurst:           5,
		MaxFailedAttempts: 5,
		LockoutDuration:   15 * time.Minute,
		AttemptWindow:     15 * time.Minute,
	}
}

// NewLoginProtection creates a login protection instance. Zero or negative
// config fields fall back to the defaults.
func NewLoginProtection(cfg LoginProtectionConfig) *LoginProtection {
	def := DefaultLoginProtectionConfig()
	if cfg.IPRateLimit <= 0 {
		cfg.IPRateLimit = def.IPRateLimit
	}
	if cfg.IPBurst <= 0 {
		cfg.IPBurst = def.IPBurst
	}
	if cfg.MaxFailedAttempts <= 0 {
		cfg.MaxFailedAttempts = def.MaxFailedAttempts
	}
	if cfg.LockoutDuration <= 0 {
		cfg.LockoutDuration = def.LockoutDuration
	}
	if cfg.AttemptWindow <= 0 {
		cfg.AttemptWindow = def.AttemptWindow
	}

	lp := &LoginProtection{
		limiters:      make(map[string]*rate.Limiter),
		accounts:      make(map[string]*accountState),
		ipRate:        rate.Limit(cfg.IPRateLimit),
		ipBurst:       cfg.IPBurst,
		maxFailures:   cfg.MaxFailedAttempts,
		baseLockout:   cfg.LockoutDuration,
		attemptWindow: cfg.AttemptWindow,
	}
	go lp.reap()
	return lp
}

// CheckIPRateLimit reports whether a login request from this IP is allowed.
func (lp *LoginProtection) CheckIPRateLimit(ip string) bool {
	lp.mu.Lock()
	lim, ok := lp.limiters[ip]
	if !ok {
		lim = rate.NewLimiter(lp.ipRate, lp.ipBurst)
		lp.limiters[ip] = lim
	}
	lp.mu.Unlock()
	return lim.Allow()
}

// IsAccountLocked reports whether the account is locked and for how much
// longer.
func (lp *LoginProtection) IsAccountLocked(email string) (bool, time.Duration) {
	lp.mu.Lock()
	defer lp.mu.Unlock()

	acct, ok := lp.accounts[email]
	if !ok || !time.Now().Before(acct.lockedUntil) {
		return false, 0
	}
	return true, time.Until(acct.lockedUntil)
}

// RecordFailedAttempt records a failed login. When the failure count inside
// the attempt window reaches the maximum, the account locks and the lock
// duration is returned.
func (lp *LoginProtection) RecordFailedAttempt(email string) (bool, time.Duration) {
	lp.mu.Lock()
	defer lp.mu.Unlock()

	now := time.Now()
	acct, ok := lp.accounts[email]
	if !ok {
		lp.accounts[email] = &accountState{failures: 1, windowStart: now}
		return false, 0
	}
	if now.Sub(acct.windowStart) > lp.attemptWindow {
		acct.failures = 1
		acct.windowStart = now
		return false, 0
	}

	acct.failures++
	if acct.failures < lp.maxFailures {
		return false, 0
	}

	lock := lp.backoff(acct.lockouts)
	acct.lockedUntil = now.Add(lock)
	acct.lockouts++
	acct.failures = 0

	slog.Warn("account locked due to failed attempts",
		"email", email,
		"lockouts", acct.lockouts,
		"duration", lock,
	)
	return true, lock
}

// backoff returns the base lockout doubled once per prior lockout, capped at
// maxLockout.
func (lp *LoginProtection) backoff(priorLockouts int) time.Duration {
	d := lp.baseLockout
	for i := 0; i < priorLockouts && d < maxLockout; i++ {
		d *= 2
	}
	if d > maxLockout {
		d = maxLockout
	}
	return d
}

// RecordSuccessfulLogin clears failed attempt tracking for an account.
func (lp *LoginProtection) RecordSuccessfulLogin(email string) {
	lp.mu.Lock()
	delete(lp.accounts, email)
	lp.mu.Unlock()
}

// GetRemainingAttempts returns how many attempts remain before lockout.
func (lp *LoginProtection) GetRemainingAttempts(email string) int {
	lp.mu.Lock()
	defer lp.mu.Unlock()

	acct, ok := lp.accounts[email]
	if !ok || time.Since(acct.windowStart) > lp.attemptWindow {
		return lp.maxFailures
	}
	if acct.failures >= lp.maxFailures {
		return 0
	}
	return lp.maxFailures - acct.failures
}

// reap periodically drops stale account entries and resets the IP limiter
// map when it grows past a sanity bound.
func (lp *LoginProtection) reap() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()
		lp.mu.Lock()
		for email, acct := range lp.accounts {
			if now.After(acct.lockedUntil) && now.Sub(acct.windowStart) > lp.attemptWindow {
				delete(lp.accounts, email)
			}
		}
		if len(lp.limiters) > 10000 {
			lp.limiters = make(map[string]*rate.Limiter)
		}
		lp.mu.Unlock()
	}
}
