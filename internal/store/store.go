package store

import (
	"context"
	"time"

	"github.com/sui-testnet-faucet/internal/model"
)

// ClientStore defines operations for API client management.
type ClientStore interface {
	CreateClient(ctx context.Context, client *model.APIClient) error
	GetClientByClientID(ctx context.Context, clientID string) (*model.APIClient, error)
	GetClientByKeyHash(ctx context.Context, keyHash string) (*model.APIClient, error)
	ListClients(ctx context.Context, page, perPage int) ([]*model.APIClient, int, error)
	TouchClientLastUsed(ctx context.Context, clientID string, usedAt time.Time) error
	SetClientActive(ctx context.Context, clientID string, active bool) error
}

// UsageStore defines operations for per-client usage logging.
type UsageStore interface {
	CreateUsage(ctx context.Context, usage *model.ClientUsage) error
	RecentUsage(ctx context.Context, clientID string, limit int) ([]*model.ClientUsage, error)
	UsageStats(ctx context.Context, clientID string, since time.Time) (*UsageSummary, error)
}

// Store combines ClientStore and UsageStore.
type Store interface {
	ClientStore
	UsageStore
}

// UsageSummary aggregates a client's logged calls.
type UsageSummary struct {
	TotalRequests      int64
	RequestsSince      int64 // calls at or after the `since` cutoff
	AvgResponseTimeMS  float64
	SuccessfulRequests int64 // status codes below 400
}
