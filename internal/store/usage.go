package store

import (
	"context"
	"fmt"
	"time"

	"github.com/sui-testnet-faucet/internal/model"
)

func (p *Postgres) CreateUsage(ctx context.Context, usage *model.ClientUsage) error {
	err := p.pool.QueryRow(ctx, `
		INSERT INTO client_usage (
			client_id, endpoint, method, status_code, response_time_ms
		) VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`,
		usage.ClientID, usage.Endpoint, usage.Method, usage.StatusCode, usage.ResponseTimeMS,
	).Scan(&usage.ID, &usage.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert client_usage: %w", err)
	}
	return nil
}

func (p *Postgres) RecentUsage(ctx context.Context, clientID string, limit int) ([]*model.ClientUsage, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}

	rows, err := p.pool.Query(ctx, `
		SELECT id, client_id, endpoint, method, status_code, response_time_ms, created_at
		FROM client_usage
		WHERE client_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, clientID, limit)
	if err != nil {
		return nil, fmt.Errorf("list client_usage: %w", err)
	}
	defer rows.Close()

	var usages []*model.ClientUsage
	for rows.Next() {
		var u model.ClientUsage
		err := rows.Scan(&u.ID, &u.ClientID, &u.Endpoint, &u.Method, &u.StatusCode, &u.ResponseTimeMS, &u.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan client_usage: %w", err)
		}
		usages = append(usages, &u)
	}
	return usages, nil
}

func (p *Postgres) UsageStats(ctx context.Context, clientID string, since time.Time) (*UsageSummary, error) {
	var summary UsageSummary
	err := p.pool.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE created_at >= $2),
			COALESCE(AVG(response_time_ms), 0),
			COUNT(*) FILTER (WHERE status_code < 400)
		FROM client_usage
		WHERE client_id = $1
	`, clientID, since).Scan(
		&summary.TotalRequests,
		&summary.RequestsSince,
		&summary.AvgResponseTimeMS,
		&summary.SuccessfulRequests,
	)
	if err != nil {
		return nil, fmt.Errorf("aggregate client_usage: %w", err)
	}
	return &summary, nil
}
