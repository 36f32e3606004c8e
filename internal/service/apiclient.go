package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	"github.com/sui-testnet-faucet/internal/faucet"
	"github.com/sui-testnet-faucet/internal/model"
	"github.com/sui-testnet-faucet/internal/store"
)

const credentialPrefix = "suifx_"

// ClientService handles API client registration and authentication.
type ClientService struct {
	store store.Store
}

// NewClientService creates a new client service.
func NewClientService(s store.Store) *ClientService {
	return &ClientService{store: s}
}

// RegisterInput contains the parameters for registering an API client.
type RegisterInput struct {
	Name        string
	Description string
	HomepageURL string
	CallbackURL string
}

// RegisterResult contains the output of a successful registration. RawKey is
// the only place the unhashed API key ever appears.
type RegisterResult struct {
	Client *model.APIClient
	RawKey string
}

// Register validates input, generates credentials, and persists the client.
func (s *ClientService) Register(ctx context.Context, input RegisterInput) (*RegisterResult, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, faucet.NewBadRequest("Application name is required")
	}
	if len(name) > 100 {
		return nil, faucet.NewBadRequest("name must be at most 100 characters")
	}
	if len(input.Description) > 500 {
		return nil, faucet.NewBadRequest("description must be at most 500 characters")
	}
	if err := validateOptionalURL(input.HomepageURL); err != nil {
		return nil, faucet.NewBadRequest("homepage_url is not a valid URL")
	}
	if err := validateOptionalURL(input.CallbackURL); err != nil {
		return nil, faucet.NewBadRequest("callback_url is not a valid URL")
	}

	clientID, rawKey, err := generateCredentials()
	if err != nil {
		log.Error().Err(err).Msg("failed to generate client credentials")
		return nil, faucet.NewInternal("Failed to register API client")
	}

	client := &model.APIClient{
		ClientID:    clientID,
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		HomepageURL: input.HomepageURL,
		CallbackURL: input.CallbackURL,
		KeyHash:     SHA256Hex(rawKey),
		KeyPrefix:   rawKey[:len(credentialPrefix)+8] + "...",
		IsActive:    true,
	}

	if err := s.store.CreateClient(ctx, client); err != nil {
		log.Error().Err(err).Msg("failed to create API client")
		return nil, faucet.NewInternal("Failed to register API client")
	}

	return &RegisterResult{Client: client, RawKey: rawKey}, nil
}

// Authenticate resolves a raw API key to an active client and stamps its
// last-used time.
func (s *ClientService) Authenticate(ctx context.Context, rawKey string) (*model.APIClient, error) {
	client, err := s.store.GetClientByKeyHash(ctx, SHA256Hex(rawKey))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, faucet.NewUnauthorized("Invalid or inactive API key")
		}
		log.Error().Err(err).Msg("failed to look up API key")
		return nil, faucet.NewInternal("Authentication error")
	}
	if !client.IsActive {
		return nil, faucet.NewUnauthorized("Invalid or inactive API key")
	}

	if err := s.store.TouchClientLastUsed(ctx, client.ClientID, time.Now().UTC()); err != nil {
		log.Warn().Err(err).Str("client_id", client.ClientID).Msg("failed to update client last_used_at")
	}

	return client, nil
}

// Dashboard aggregates a client's profile, usage stats, and recent calls.
type Dashboard struct {
	Client        *model.APIClient
	Usage         *store.UsageSummary
	RecentCalls   []*model.ClientUsage
	SuccessRate   string
	RequestsToday int64
}

// Dashboard returns the client-facing dashboard payload.
func (s *ClientService) Dashboard(ctx context.Context, clientID string) (*Dashboard, error) {
	client, err := s.store.GetClientByClientID(ctx, clientID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, faucet.NewNotFound("Client not found")
		}
		log.Error().Err(err).Str("client_id", clientID).Msg("failed to load API client")
		return nil, faucet.NewInternal("Failed to load client")
	}

	startOfDay := time.Now().UTC().Truncate(24 * time.Hour)
	usage, err := s.store.UsageStats(ctx, clientID, startOfDay)
	if err != nil {
		log.Error().Err(err).Str("client_id", clientID).Msg("failed to aggregate client usage")
		return nil, faucet.NewInternal("Failed to load client usage")
	}

	recent, err := s.store.RecentUsage(ctx, clientID, 20)
	if err != nil {
		log.Error().Err(err).Str("client_id", clientID).Msg("failed to list client usage")
		return nil, faucet.NewInternal("Failed to load client usage")
	}

	rate := "0.00%"
	if usage.TotalRequests > 0 {
		rate = fmt.Sprintf("%.2f%%", float64(usage.SuccessfulRequests)/float64(usage.TotalRequests)*100)
	}

	return &Dashboard{
		Client:        client,
		Usage:         usage,
		RecentCalls:   recent,
		SuccessRate:   rate,
		RequestsToday: usage.RequestsSince,
	}, nil
}

// LogUsage records one API call. Best-effort: failures are logged, never
// propagated to the request path.
func (s *ClientService) LogUsage(ctx context.Context, clientID, endpoint, method string, statusCode int, elapsed time.Duration) {
	usage := &model.ClientUsage{
		ClientID:       clientID,
		Endpoint:       endpoint,
		Method:         method,
		StatusCode:     statusCode,
		ResponseTimeMS: elapsed.Milliseconds(),
	}
	if err := s.store.CreateUsage(ctx, usage); err != nil {
		log.Warn().Err(err).Str("client_id", clientID).Msg("failed to log client usage")
	}
}

// SHA256Hex returns the hex-encoded SHA-256 hash of the input.
func SHA256Hex(input string) string {
	h := sha256.Sum256([]byte(input))
	return hex.EncodeToString(h[:])
}

func generateCredentials() (clientID, rawKey string, err error) {
	idBytes := make([]byte, 8)
	if _, err := rand.Read(idBytes); err != nil {
		return "", "", fmt.Errorf("crypto/rand failed: %w", err)
	}
	keyBytes := make([]byte, 32)
	if _, err := rand.Read(keyBytes); err != nil {
		return "", "", fmt.Errorf("crypto/rand failed: %w", err)
	}
	return credentialPrefix + hex.EncodeToString(idBytes),
		credentialPrefix + hex.EncodeToString(keyBytes),
		nil
}

func validateOptionalURL(raw string) error {
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return fmt.Errorf("invalid URL %q", raw)
	}
	return nil
}
