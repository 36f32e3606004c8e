package faucet

import (
	"sync"
	"testing"
	"time"
)

func TestStatsSnapshotEmpty(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s := NewStats(start)

	snap := s.Snapshot(start.Add(90 * time.Minute))
	if snap.TotalRequests != 0 || snap.SuccessfulRequests != 0 {
		t.Fatalf("unexpected counters: %+v", snap)
	}
	if snap.TotalDistributed != "0" {
		t.Fatalf("unexpected total: %s", snap.TotalDistributed)
	}
	if snap.SuccessRate != "0.00%" {
		t.Fatalf("unexpected rate: %s", snap.SuccessRate)
	}
	if snap.Uptime != 90*time.Minute {
		t.Fatalf("unexpected uptime: %s", snap.Uptime)
	}
}

func TestStatsSuccessRate(t *testing.T) {
	s := NewStats(time.Now())
	for i := 0; i < 10; i++ {
		s.OnRequestCreated()
	}
	for i := 0; i < 8; i++ {
		if err := s.OnRequestSucceeded("100000000"); err != nil {
			t.Fatalf("onRequestSucceeded: %v", err)
		}
	}

	snap := s.Snapshot(time.Now())
	if snap.SuccessRate != "80.00%" {
		t.Fatalf("unexpected rate: %s", snap.SuccessRate)
	}
	if snap.TotalDistributed != "800000000" {
		t.Fatalf("unexpected total: %s", snap.TotalDistributed)
	}
}

func TestStatsExactSummation(t *testing.T) {
	// amounts this large lose precision in a float64; the big.Int total must
	// stay exact
	s := NewStats(time.Now())
	const amount = "9007199254740993" // 2^53 + 1
	for i := 0; i < 3; i++ {
		s.OnRequestCreated()
		if err := s.OnRequestSucceeded(amount); err != nil {
			t.Fatalf("onRequestSucceeded: %v", err)
		}
	}

	snap := s.Snapshot(time.Now())
	if snap.TotalDistributed != "27021597764222979" {
		t.Fatalf("lost precision: %s", snap.TotalDistributed)
	}
}

func TestStatsRejectsBadAmount(t *testing.T) {
	s := NewStats(time.Now())
	if err := s.OnRequestSucceeded("not-a-number"); err == nil {
		t.Fatal("expected error for malformed amount")
	}
	if snap := s.Snapshot(time.Now()); snap.SuccessfulRequests != 0 {
		t.Fatalf("counter must not move on bad amount: %+v", snap)
	}
}

func TestStatsConcurrentUpdates(t *testing.T) {
	s := NewStats(time.Now())
	const n = 200
	const amount = "100000000"

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.OnRequestCreated()
			if err := s.OnRequestSucceeded(amount); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	snap := s.Snapshot(time.Now())
	if snap.TotalRequests != n || snap.SuccessfulRequests != n {
		t.Fatalf("unexpected counters: %+v", snap)
	}
	if snap.TotalDistributed != "20000000000" { // 200 * 1e8
		t.Fatalf("unexpected total: %s", snap.TotalDistributed)
	}
	if snap.SuccessRate != "100.00%" {
		t.Fatalf("unexpected rate: %s", snap.SuccessRate)
	}
}

func TestFormatUptime(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{0, "0h 0m"},
		{61 * time.Minute, "1h 1m"},
		{25*time.Hour + 59*time.Minute, "25h 59m"},
	}
	for _, c := range cases {
		if got := FormatUptime(c.d); got != c.want {
			t.Fatalf("FormatUptime(%s) = %q, want %q", c.d, got, c.want)
		}
	}
}
