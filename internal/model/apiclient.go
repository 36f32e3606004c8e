package model

import (
	"time"

	"github.com/google/uuid"
)

// APIClient is a registered third-party integration. The raw API key is
// returned once at registration; only its SHA-256 hash is stored.
type APIClient struct {
	ID          uuid.UUID  `json:"id"`
	ClientID    string     `json:"client_id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	HomepageURL string     `json:"homepage_url,omitempty"`
	CallbackURL string     `json:"callback_url,omitempty"`
	KeyHash     string     `json:"-"`
	KeyPrefix   string     `json:"key_prefix"`
	IsActive    bool       `json:"is_active"`
	CreatedAt   time.Time  `json:"created_at"`
	LastUsedAt  *time.Time `json:"last_used_at,omitempty"`
}

// ClientUsage is one logged API call made with a client's key.
type ClientUsage struct {
	ID             uuid.UUID `json:"id"`
	ClientID       string    `json:"client_id"`
	Endpoint       string    `json:"endpoint"`
	Method         string    `json:"method"`
	StatusCode     int       `json:"status_code"`
	ResponseTimeMS int64     `json:"response_time_ms"`
	CreatedAt      time.Time `json:"created_at"`
}
