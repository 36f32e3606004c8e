package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/sui-testnet-faucet/internal/model"
	"github.com/sui-testnet-faucet/internal/service"
	"github.com/sui-testnet-faucet/internal/store"
)

// fakeClientStore backs a ClientService with a single registered client.
type fakeClientStore struct {
	client *model.APIClient
	usage  []*model.ClientUsage
}

func (f *fakeClientStore) CreateClient(ctx context.Context, client *model.APIClient) error {
	f.client = client
	return nil
}

func (f *fakeClientStore) GetClientByClientID(ctx context.Context, clientID string) (*model.APIClient, error) {
	if f.client != nil && f.client.ClientID == clientID {
		return f.client, nil
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeClientStore) GetClientByKeyHash(ctx context.Context, keyHash string) (*model.APIClient, error) {
	if f.client != nil && f.client.KeyHash == keyHash {
		return f.client, nil
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeClientStore) ListClients(ctx context.Context, page, perPage int) ([]*model.APIClient, int, error) {
	if f.client == nil {
		return nil, 0, nil
	}
	return []*model.APIClient{f.client}, 1, nil
}

func (f *fakeClientStore) TouchClientLastUsed(ctx context.Context, clientID string, usedAt time.Time) error {
	return nil
}

func (f *fakeClientStore) SetClientActive(ctx context.Context, clientID string, active bool) error {
	if f.client != nil && f.client.ClientID == clientID {
		f.client.IsActive = active
	}
	return nil
}

func (f *fakeClientStore) CreateUsage(ctx context.Context, usage *model.ClientUsage) error {
	f.usage = append(f.usage, usage)
	return nil
}

func (f *fakeClientStore) RecentUsage(ctx context.Context, clientID string, limit int) ([]*model.ClientUsage, error) {
	return f.usage, nil
}

func (f *fakeClientStore) UsageStats(ctx context.Context, clientID string, since time.Time) (*store.UsageSummary, error) {
	return &store.UsageSummary{}, nil
}

func setupClient(t *testing.T) (*fakeClientStore, *service.ClientService, string) {
	t.Helper()
	fs := &fakeClientStore{}
	clients := service.NewClientService(fs)
	result, err := clients.Register(context.Background(), service.RegisterInput{Name: "test app"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return fs, clients, result.RawKey
}

func TestAPIClientAuth(t *testing.T) {
	fs, clients, rawKey := setupClient(t)

	var seen *model.APIClient
	h := APIClientAuth(clients)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetAPIClient(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("missing key rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/faucet/request", nil)
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rr.Code)
		}
	})

	t.Run("wrong key rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/faucet/request", nil)
		req.Header.Set("X-API-Key", "suifx_wrong")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rr.Code)
		}
	})

	t.Run("valid key attaches client to context", func(t *testing.T) {
		seen = nil
		req := httptest.NewRequest(http.MethodPost, "/api/v1/faucet/request", nil)
		req.Header.Set("X-API-Key", rawKey)
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
		if seen == nil || seen.ClientID != fs.client.ClientID {
			t.Fatalf("expected client in context, got %+v", seen)
		}
	})

	t.Run("deactivated key rejected", func(t *testing.T) {
		fs.client.IsActive = false
		req := httptest.NewRequest(http.MethodPost, "/api/v1/faucet/request", nil)
		req.Header.Set("X-API-Key", rawKey)
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rr.Code)
		}
	})
}

func TestUsageLogging(t *testing.T) {
	fs, clients, rawKey := setupClient(t)

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	h := APIClientAuth(clients)(UsageLogging(clients)(inner))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/faucet/request", nil)
	req.Header.Set("X-API-Key", rawKey)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if len(fs.usage) != 1 {
		t.Fatalf("expected 1 usage row, got %d", len(fs.usage))
	}
	u := fs.usage[0]
	if u.ClientID != fs.client.ClientID {
		t.Fatalf("unexpected client id: %s", u.ClientID)
	}
	if u.Endpoint != "/api/v1/faucet/request" || u.Method != http.MethodPost {
		t.Fatalf("unexpected endpoint/method: %s %s", u.Method, u.Endpoint)
	}
	if u.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected recorded 429, got %d", u.StatusCode)
	}
}
