package broadcaster

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	mrand "math/rand"
	"sync"
	"time"
)

// Simulator mimics a testnet transaction broadcast: a randomized delay
// followed by either a mock transaction hash or an occasional network error.
type Simulator struct {
	failureRate     float64
	minDelay        time.Duration
	maxDelay        time.Duration
	explorerBaseURL string

	mu  sync.Mutex
	rng *mrand.Rand
}

// NewSimulator creates a simulator with the given failure probability,
// delay range, and explorer URL prefix.
func NewSimulator(failureRate float64, minDelay, maxDelay time.Duration, explorerBaseURL string) *Simulator {
	return &Simulator{
		failureRate:     failureRate,
		minDelay:        minDelay,
		maxDelay:        maxDelay,
		explorerBaseURL: explorerBaseURL,
		rng:             mrand.New(mrand.NewSource(time.Now().UnixNano())),
	}
}

// Broadcast sleeps for a random delay in [minDelay, maxDelay], then returns
// a mock transaction or a simulated network error. Cancellation of ctx cuts
// the delay short.
func (s *Simulator) Broadcast(ctx context.Context, walletAddress, amount string) (*Result, error) {
	delay := s.minDelay
	if s.maxDelay > s.minDelay {
		delay += time.Duration(s.randInt63n(int64(s.maxDelay - s.minDelay)))
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
	}

	if s.randFloat64() < s.failureRate {
		return nil, errors.New("network error: unable to broadcast transaction")
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("generating transaction hash: %w", err)
	}
	txHash := "0x" + hex.EncodeToString(buf)

	return &Result{
		TransactionHash: txHash,
		ExplorerURL:     s.explorerBaseURL + txHash,
	}, nil
}

func (s *Simulator) randInt63n(n int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Int63n(n)
}

func (s *Simulator) randFloat64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}
