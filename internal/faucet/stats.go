package faucet

import (
	"fmt"
	"math/big"
	"sync"
	"time"
)

// Stats holds the process-wide dispense counters. totalDistributed can
// exceed the safe range of a float64 mantissa, so it is kept as a big.Int
// and summed exactly.
type Stats struct {
	mu                 sync.RWMutex
	totalRequests      int64
	successfulRequests int64
	totalDistributed   *big.Int
	startedAt          time.Time
}

// NewStats creates the stats accumulator with startedAt as the process start
// time.
func NewStats(startedAt time.Time) *Stats {
	return &Stats{
		totalDistributed: new(big.Int),
		startedAt:        startedAt,
	}
}

// OnRequestCreated counts one admitted dispense attempt.
func (s *Stats) OnRequestCreated() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.totalRequests++
}

// OnRequestSucceeded counts one successful dispense and adds its base-unit
// amount to the distributed total.
func (s *Stats) OnRequestSucceeded(amount string) error {
	add, ok := new(big.Int).SetString(amount, 10)
	if !ok {
		return fmt.Errorf("invalid amount %q", amount)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.successfulRequests++
	s.totalDistributed.Add(s.totalDistributed, add)
	return nil
}

// Snapshot is a consistent read of the counters at a point in time.
type Snapshot struct {
	TotalRequests      int64
	SuccessfulRequests int64
	TotalDistributed   string // base units, exact
	SuccessRate        string // "NN.NN%"
	Uptime             time.Duration
}

// Snapshot returns the counters as of now. SuccessRate is computed from the
// exact integer counters and rendered with two decimal places.
func (s *Stats) Snapshot(now time.Time) Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rate := "0.00%"
	if s.totalRequests > 0 {
		rate = fmt.Sprintf("%.2f%%", float64(s.successfulRequests)/float64(s.totalRequests)*100)
	}

	return Snapshot{
		TotalRequests:      s.totalRequests,
		SuccessfulRequests: s.successfulRequests,
		TotalDistributed:   s.totalDistributed.String(),
		SuccessRate:        rate,
		Uptime:             now.Sub(s.startedAt),
	}
}

// FormatUptime renders an uptime duration as "XhYm" for API responses.
func FormatUptime(d time.Duration) string {
	hours := int64(d.Hours())
	minutes := int64(d.Minutes()) % 60
	return fmt.Sprintf("%dh %dm", hours, minutes)
}
