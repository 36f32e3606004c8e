package faucet

import (
	"sync"
	"time"
)

// DenialReason identifies which limit blocked an admission.
type DenialReason string

const (
	ReasonWalletCooldown DenialReason = "wallet_cooldown"
	ReasonIPQuota        DenialReason = "ip_quota_exceeded"
)

// Decision is the outcome of an admission check.
type Decision struct {
	Allowed bool
	Reason  DenialReason
	RetryAt time.Time
}

// WalletStatus is the read-only answer to a wallet cooldown query.
type WalletStatus struct {
	CanRequest       bool
	RetryAt          *time.Time
	SecondsRemaining int64
}

// RateLimiter tracks per-wallet cooldowns and per-IP fixed counting windows.
//
// The wallet limit is a cooldown since the last successful dispense; failed
// attempts do not extend it. The IP limit is a fixed window counted once per
// admitted attempt regardless of outcome. Window boundaries reset at a fixed
// instant, so bursts across a boundary are possible.
type RateLimiter struct {
	mu            sync.RWMutex
	walletSuccess map[string]time.Time
	ipWindows     map[string]*ipWindow
	cooldown      time.Duration
	window        time.Duration
	maxPerWindow  int
	lastCleanup   time.Time
}

type ipWindow struct {
	count   int
	resetAt time.Time
}

const cleanupInterval = 5 * time.Minute

// NewRateLimiter creates an in-memory limiter with the given wallet cooldown
// and per-IP fixed window of maxPerWindow admitted attempts.
func NewRateLimiter(cooldown, window time.Duration, maxPerWindow int) *RateLimiter {
	return &RateLimiter{
		walletSuccess: make(map[string]time.Time),
		ipWindows:     make(map[string]*ipWindow),
		cooldown:      cooldown,
		window:        window,
		maxPerWindow:  maxPerWindow,
		lastCleanup:   time.Now(),
	}
}

// CheckAdmission decides whether a dispense attempt may proceed. It is a
// pure read of the current state and never mutates it.
func (rl *RateLimiter) CheckAdmission(wallet, ip string, now time.Time) Decision {
	rl.mu.RLock()
	defer rl.mu.RUnlock()
	return rl.checkLocked(wallet, ip, now)
}

func (rl *RateLimiter) checkLocked(wallet, ip string, now time.Time) Decision {
	if last, ok := rl.walletSuccess[wallet]; ok && now.Sub(last) < rl.cooldown {
		return Decision{Allowed: false, Reason: ReasonWalletCooldown, RetryAt: last.Add(rl.cooldown)}
	}

	if w, ok := rl.ipWindows[ip]; ok && now.Before(w.resetAt) && w.count >= rl.maxPerWindow {
		return Decision{Allowed: false, Reason: ReasonIPQuota, RetryAt: w.resetAt}
	}

	return Decision{Allowed: true}
}

// Admit runs the admission check and, when allowed, counts the attempt
// against the IP window under a single lock. Concurrent attempts therefore
// cannot slip past the quota between check and increment.
func (rl *RateLimiter) Admit(wallet, ip string, now time.Time) Decision {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	d := rl.checkLocked(wallet, ip, now)
	if d.Allowed {
		rl.recordAttemptLocked(ip, now)
	}
	rl.cleanupLocked(now)
	return d
}

// RecordAttempt counts one admitted attempt against the IP's window,
// starting a fresh window when none exists or the current one has expired.
func (rl *RateLimiter) RecordAttempt(ip string, now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.recordAttemptLocked(ip, now)
}

func (rl *RateLimiter) recordAttemptLocked(ip string, now time.Time) {
	w, ok := rl.ipWindows[ip]
	if !ok || !now.Before(w.resetAt) {
		rl.ipWindows[ip] = &ipWindow{count: 1, resetAt: now.Add(rl.window)}
		return
	}
	w.count++
}

// RecordSuccess starts the wallet's cooldown. Called only when the dispense
// actually succeeded.
func (rl *RateLimiter) RecordSuccess(wallet string, now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.walletSuccess[wallet] = now
}

// QueryWallet reports the wallet's cooldown status without counting an
// attempt.
func (rl *RateLimiter) QueryWallet(wallet string, now time.Time) WalletStatus {
	rl.mu.RLock()
	defer rl.mu.RUnlock()

	last, ok := rl.walletSuccess[wallet]
	if !ok {
		return WalletStatus{CanRequest: true}
	}

	retryAt := last.Add(rl.cooldown)
	if !now.Before(retryAt) {
		return WalletStatus{CanRequest: true}
	}

	remaining := int64(retryAt.Sub(now).Seconds())
	if retryAt.Sub(now)%time.Second != 0 {
		remaining++ // round up, matching the client-facing countdown
	}
	return WalletStatus{CanRequest: false, RetryAt: &retryAt, SecondsRemaining: remaining}
}

func (rl *RateLimiter) cleanupLocked(now time.Time) {
	if now.Sub(rl.lastCleanup) < cleanupInterval {
		return
	}

	for wallet, last := range rl.walletSuccess {
		if now.Sub(last) >= rl.cooldown {
			delete(rl.walletSuccess, wallet)
		}
	}
	for ip, w := range rl.ipWindows {
		if !now.Before(w.resetAt) {
			delete(rl.ipWindows, ip)
		}
	}

	rl.lastCleanup = now
}
