package faucet

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/sui-testnet-faucet/internal/broadcaster"
	"github.com/sui-testnet-faucet/internal/metrics"
	"github.com/sui-testnet-faucet/internal/model"
)

// Service coordinates a dispense request: admission, ledger bookkeeping,
// the broadcast call, and stats. It is the only writer of limiter and stats
// state.
type Service struct {
	limiter          *RateLimiter
	ledger           *Ledger
	stats            *Stats
	broadcaster      broadcaster.Broadcaster
	metrics          *metrics.Metrics
	amount           string
	broadcastTimeout time.Duration
	now              func() time.Time
}

// NewService creates the dispense coordinator. amount is the fixed base-unit
// grant per request.
func NewService(
	limiter *RateLimiter,
	ledger *Ledger,
	stats *Stats,
	b broadcaster.Broadcaster,
	m *metrics.Metrics,
	amount string,
	broadcastTimeout time.Duration,
) *Service {
	return &Service{
		limiter:          limiter,
		ledger:           ledger,
		stats:            stats,
		broadcaster:      b,
		metrics:          m,
		amount:           amount,
		broadcastTimeout: broadcastTimeout,
		now:              time.Now,
	}
}

// WithClock overrides the service clock. Test hook.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// DispenseResult is the outcome of a successful dispense.
type DispenseResult struct {
	RequestID       uuid.UUID
	TransactionHash string
	ExplorerURL     string
	Amount          string
}

// Dispense runs one request through the full lifecycle. On admission denial
// or validation failure no ledger entry is created and no stats are touched.
// Once an entry exists it is always resolved, success or failure, before
// Dispense returns.
func (s *Service) Dispense(ctx context.Context, wallet, ip string) (*DispenseResult, error) {
	if !ValidWalletAddress(wallet) {
		return nil, NewInvalidAddress("Invalid SUI wallet address format")
	}

	now := s.now()
	decision := s.limiter.Admit(wallet, ip, now)
	if !decision.Allowed {
		s.metrics.RateLimitDenials.WithLabelValues(string(decision.Reason)).Inc()
		if decision.Reason == ReasonWalletCooldown {
			return nil, NewWalletCooldown(decision.RetryAt)
		}
		return nil, NewIPQuotaExceeded(decision.RetryAt)
	}

	req, err := s.ledger.Create(wallet, ip, s.amount, now)
	if err != nil {
		return nil, err
	}
	s.stats.OnRequestCreated()

	// The broadcast is the only blocking step; no faucet lock is held while
	// it is in flight, and the entry stays visible as pending.
	bctx, cancel := context.WithTimeout(ctx, s.broadcastTimeout)
	defer cancel()

	start := s.now()
	result, err := s.broadcaster.Broadcast(bctx, wallet, s.amount)
	s.metrics.BroadcastDuration.Observe(s.now().Sub(start).Seconds())

	if err != nil {
		timedOut := errors.Is(err, context.DeadlineExceeded)
		if _, rerr := s.ledger.ResolveFailure(req.ID, err.Error()); rerr != nil {
			log.Error().Err(rerr).Str("request_id", req.ID.String()).Msg("failed to resolve dispense request as failed")
		}

		if timedOut {
			s.metrics.RequestsTotal.WithLabelValues("timeout").Inc()
			log.Warn().Str("request_id", req.ID.String()).Str("wallet", wallet).Msg("broadcast timed out")
			return nil, NewBroadcastTimeout("Transaction broadcast timed out")
		}

		s.metrics.RequestsTotal.WithLabelValues("failed").Inc()
		log.Warn().Err(err).Str("request_id", req.ID.String()).Str("wallet", wallet).Msg("broadcast failed")
		return nil, NewBroadcastFailure(err.Error())
	}

	if _, err := s.ledger.ResolveSuccess(req.ID, result.TransactionHash); err != nil {
		// Duplicate resolution means the coordinator's single-resolver
		// invariant broke; surface it loudly.
		log.Error().Err(err).Str("request_id", req.ID.String()).Msg("failed to resolve dispense request as success")
		return nil, NewInternal("Failed to record transaction result")
	}

	s.limiter.RecordSuccess(wallet, s.now())
	if err := s.stats.OnRequestSucceeded(s.amount); err != nil {
		log.Error().Err(err).Msg("failed to update distributed total")
	}
	s.metrics.RequestsTotal.WithLabelValues("success").Inc()

	log.Info().
		Str("request_id", req.ID.String()).
		Str("wallet", wallet).
		Str("tx_hash", result.TransactionHash).
		Msg("dispense succeeded")

	return &DispenseResult{
		RequestID:       req.ID,
		TransactionHash: result.TransactionHash,
		ExplorerURL:     result.ExplorerURL,
		Amount:          s.amount,
	}, nil
}

// WalletStatus reports whether a wallet may request now, without counting an
// attempt.
func (s *Service) WalletStatus(wallet string) WalletStatus {
	return s.limiter.QueryWallet(wallet, s.now())
}

// StatsSnapshot returns the current counters.
func (s *Service) StatsSnapshot() Snapshot {
	return s.stats.Snapshot(s.now())
}

// Recent returns up to limit ledger entries, newest first.
func (s *Service) Recent(limit int) []*model.DispenseRequest {
	return s.ledger.Recent(limit)
}

// History returns all entries for a wallet address.
func (s *Service) History(wallet string) []*model.DispenseRequest {
	return s.ledger.ByWallet(wallet)
}

// Amount returns the fixed base-unit grant per request.
func (s *Service) Amount() string {
	return s.amount
}
