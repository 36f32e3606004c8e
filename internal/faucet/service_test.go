package faucet

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/sui-testnet-faucet/internal/broadcaster"
	"github.com/sui-testnet-faucet/internal/metrics"
	"github.com/sui-testnet-faucet/internal/model"
)

type fakeBroadcaster struct {
	mu     sync.Mutex
	result *broadcaster.Result
	err    error
	delay  time.Duration
	calls  int
}

func (f *fakeBroadcaster) Broadcast(ctx context.Context, wallet, amount string) (*broadcaster.Result, error) {
	f.mu.Lock()
	f.calls++
	result, err, delay := f.result, f.err, f.delay
	f.mu.Unlock()

	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	return result, err
}

func (f *fakeBroadcaster) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type serviceFixture struct {
	svc     *Service
	limiter *RateLimiter
	ledger  *Ledger
	stats   *Stats
	b       *fakeBroadcaster
}

func newFixture(b *fakeBroadcaster) *serviceFixture {
	limiter := NewRateLimiter(time.Hour, time.Hour, 100)
	ledger := NewLedger()
	stats := NewStats(time.Now())
	m := metrics.New(prometheus.NewRegistry())
	svc := NewService(limiter, ledger, stats, b, m, testAmount, time.Second)
	return &serviceFixture{svc: svc, limiter: limiter, ledger: ledger, stats: stats, b: b}
}

func TestDispenseSuccess(t *testing.T) {
	fx := newFixture(&fakeBroadcaster{result: &broadcaster.Result{
		TransactionHash: "0xabc",
		ExplorerURL:     "https://suiscan.xyz/testnet/tx/0xabc",
	}})
	wallet := testWallet("1")

	result, err := fx.svc.Dispense(context.Background(), wallet, "1.2.3.4")
	if err != nil {
		t.Fatalf("dispense: %v", err)
	}
	if result.TransactionHash != "0xabc" || result.Amount != testAmount {
		t.Fatalf("unexpected result: %+v", result)
	}

	t.Run("ledger entry resolved success", func(t *testing.T) {
		entry, err := fx.ledger.Get(result.RequestID)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if entry.Status != model.StatusSuccess || entry.TransactionHash != "0xabc" {
			t.Fatalf("unexpected entry: %+v", entry)
		}
	})

	t.Run("stats updated", func(t *testing.T) {
		snap := fx.stats.Snapshot(time.Now())
		if snap.TotalRequests != 1 || snap.SuccessfulRequests != 1 {
			t.Fatalf("unexpected counters: %+v", snap)
		}
		if snap.TotalDistributed != testAmount {
			t.Fatalf("unexpected total: %s", snap.TotalDistributed)
		}
	})

	t.Run("wallet cooldown started", func(t *testing.T) {
		_, err := fx.svc.Dispense(context.Background(), wallet, "1.2.3.4")
		assertKind(t, err, ErrWalletCooldown)
	})
}

func TestDispenseInvalidAddress(t *testing.T) {
	fx := newFixture(&fakeBroadcaster{})

	_, err := fx.svc.Dispense(context.Background(), "0xZZ", "1.2.3.4")
	assertKind(t, err, ErrInvalidAddress)

	if fx.ledger.Len() != 0 {
		t.Fatal("no ledger entry may exist for a malformed address")
	}
	if snap := fx.stats.Snapshot(time.Now()); snap.TotalRequests != 0 {
		t.Fatalf("stats must be untouched: %+v", snap)
	}
	if fx.b.callCount() != 0 {
		t.Fatal("broadcaster must not be called")
	}
	// the limiter must not have counted an attempt either
	if d := fx.limiter.CheckAdmission(testWallet("2"), "1.2.3.4", time.Now()); !d.Allowed {
		t.Fatalf("limiter state was touched: %+v", d)
	}
}

func TestDispenseDenialCreatesNoEntry(t *testing.T) {
	fx := newFixture(&fakeBroadcaster{result: &broadcaster.Result{TransactionHash: "0x1"}})
	wallet := testWallet("3")

	if _, err := fx.svc.Dispense(context.Background(), wallet, "1.2.3.4"); err != nil {
		t.Fatalf("first dispense: %v", err)
	}

	_, err := fx.svc.Dispense(context.Background(), wallet, "1.2.3.4")
	var ferr *Error
	if !asFaucetError(err, &ferr) || ferr.Kind != ErrWalletCooldown {
		t.Fatalf("expected wallet cooldown, got %v", err)
	}
	if ferr.RetryAt.IsZero() {
		t.Fatal("denial must carry retryAt")
	}

	if fx.ledger.Len() != 1 {
		t.Fatalf("denied request must not create an entry, got %d", fx.ledger.Len())
	}
	if snap := fx.stats.Snapshot(time.Now()); snap.TotalRequests != 1 {
		t.Fatalf("denied request must not count: %+v", snap)
	}
}

func TestDispenseFailureDoesNotCoolDownWallet(t *testing.T) {
	fx := newFixture(&fakeBroadcaster{err: errors.New("network error: unable to broadcast transaction")})
	wallet := testWallet("4")

	_, err := fx.svc.Dispense(context.Background(), wallet, "1.2.3.4")
	assertKind(t, err, ErrBroadcastFailure)

	t.Run("entry resolved failed", func(t *testing.T) {
		entries := fx.ledger.ByWallet(wallet)
		if len(entries) != 1 {
			t.Fatalf("expected 1 entry, got %d", len(entries))
		}
		if entries[0].Status != model.StatusFailed || entries[0].ErrorMessage == "" {
			t.Fatalf("unexpected entry: %+v", entries[0])
		}
	})

	t.Run("immediate retry is admitted", func(t *testing.T) {
		fx.b.mu.Lock()
		fx.b.err = nil
		fx.b.result = &broadcaster.Result{TransactionHash: "0x2"}
		fx.b.mu.Unlock()

		if _, err := fx.svc.Dispense(context.Background(), wallet, "1.2.3.4"); err != nil {
			t.Fatalf("retry after failure should be admitted: %v", err)
		}
	})

	t.Run("failed attempt still counted in totals", func(t *testing.T) {
		snap := fx.stats.Snapshot(time.Now())
		if snap.TotalRequests != 2 || snap.SuccessfulRequests != 1 {
			t.Fatalf("unexpected counters: %+v", snap)
		}
	})
}

func TestDispenseTimeout(t *testing.T) {
	fx := newFixture(&fakeBroadcaster{
		result: &broadcaster.Result{TransactionHash: "0x3"},
		delay:  5 * time.Second, // beyond the 1s fixture timeout
	})
	wallet := testWallet("5")

	_, err := fx.svc.Dispense(context.Background(), wallet, "1.2.3.4")
	assertKind(t, err, ErrBroadcastTimeout)

	entries := fx.ledger.ByWallet(wallet)
	if len(entries) != 1 || entries[0].Status != model.StatusFailed {
		t.Fatalf("timed-out request must be resolved failed: %+v", entries)
	}
}

func TestDispenseConcurrentSameWallet(t *testing.T) {
	fx := newFixture(&fakeBroadcaster{
		result: &broadcaster.Result{TransactionHash: "0x4"},
		delay:  10 * time.Millisecond,
	})
	wallet := testWallet("6")

	const n = 8
	var wg sync.WaitGroup
	results := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = fx.svc.Dispense(context.Background(), wallet, "1.2.3.4")
		}(i)
	}
	wg.Wait()

	// all entered before any cooldown existed, so every entry must be
	// resolved and stats must balance
	var success int
	for _, err := range results {
		if err == nil {
			success++
		}
	}
	snap := fx.stats.Snapshot(time.Now())
	if snap.SuccessfulRequests != int64(success) {
		t.Fatalf("stats disagree with outcomes: %d vs %d", snap.SuccessfulRequests, success)
	}
	for _, entry := range fx.ledger.ByWallet(wallet) {
		if !entry.Resolved() {
			t.Fatalf("entry left pending: %+v", entry)
		}
	}
}

func asFaucetError(err error, target **Error) bool {
	if ferr, ok := err.(*Error); ok {
		*target = ferr
		return true
	}
	return false
}
