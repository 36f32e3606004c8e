package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/sui-testnet-faucet/internal/model"
)

func (p *Postgres) CreateClient(ctx context.Context, client *model.APIClient) error {
	// nullable text columns take nil when empty
	var description, homepageURL, callbackURL interface{}
	if client.Description != "" {
		description = client.Description
	}
	if client.HomepageURL != "" {
		homepageURL = client.HomepageURL
	}
	if client.CallbackURL != "" {
		callbackURL = client.CallbackURL
	}

	err := p.pool.QueryRow(ctx, `
		INSERT INTO api_clients (
			client_id, name, description, homepage_url, callback_url,
			key_hash, key_prefix, is_active
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`,
		client.ClientID, client.Name, description, homepageURL, callbackURL,
		client.KeyHash, client.KeyPrefix, client.IsActive,
	).Scan(&client.ID, &client.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert api_client: %w", err)
	}
	return nil
}

const clientColumns = `id, client_id, name, description, homepage_url, callback_url,
	key_hash, key_prefix, is_active, created_at, last_used_at`

func (p *Postgres) GetClientByClientID(ctx context.Context, clientID string) (*model.APIClient, error) {
	return p.scanClient(ctx, `SELECT `+clientColumns+` FROM api_clients WHERE client_id = $1`, clientID)
}

func (p *Postgres) GetClientByKeyHash(ctx context.Context, keyHash string) (*model.APIClient, error) {
	return p.scanClient(ctx, `SELECT `+clientColumns+` FROM api_clients WHERE key_hash = $1`, keyHash)
}

func (p *Postgres) ListClients(ctx context.Context, page, perPage int) ([]*model.APIClient, int, error) {
	var total int
	err := p.pool.QueryRow(ctx, `SELECT COUNT(*) FROM api_clients`).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count api_clients: %w", err)
	}

	offset := (page - 1) * perPage
	rows, err := p.pool.Query(ctx, `
		SELECT `+clientColumns+` FROM api_clients ORDER BY created_at DESC LIMIT $1 OFFSET $2
	`, perPage, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list api_clients: %w", err)
	}
	defer rows.Close()

	var clients []*model.APIClient
	for rows.Next() {
		client, err := scanClientFromRow(rows)
		if err != nil {
			return nil, 0, err
		}
		clients = append(clients, client)
	}
	return clients, total, nil
}

func (p *Postgres) TouchClientLastUsed(ctx context.Context, clientID string, usedAt time.Time) error {
	tag, err := p.pool.Exec(ctx, `
		UPDATE api_clients SET last_used_at = $1 WHERE client_id = $2
	`, usedAt, clientID)
	if err != nil {
		return fmt.Errorf("touch api_client: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("api client not found")
	}
	return nil
}

func (p *Postgres) SetClientActive(ctx context.Context, clientID string, active bool) error {
	tag, err := p.pool.Exec(ctx, `
		UPDATE api_clients SET is_active = $1 WHERE client_id = $2
	`, active, clientID)
	if err != nil {
		return fmt.Errorf("update api_client active: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("api client not found")
	}
	return nil
}

func (p *Postgres) scanClient(ctx context.Context, query string, args ...interface{}) (*model.APIClient, error) {
	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query api_client: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, pgx.ErrNoRows
	}
	return scanClientFromRow(rows)
}

func scanClientFromRow(rows pgx.Rows) (*model.APIClient, error) {
	var client model.APIClient
	var description, homepageURL, callbackURL *string

	err := rows.Scan(
		&client.ID, &client.ClientID, &client.Name,
		&description, &homepageURL, &callbackURL,
		&client.KeyHash, &client.KeyPrefix, &client.IsActive,
		&client.CreatedAt, &client.LastUsedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("scan api_client: %w", err)
	}

	if description != nil {
		client.Description = *description
	}
	if homepageURL != nil {
		client.HomepageURL = *homepageURL
	}
	if callbackURL != nil {
		client.CallbackURL = *callbackURL
	}

	return &client, nil
}
