package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/sui-testnet-faucet/internal/faucet"
	"github.com/sui-testnet-faucet/internal/model"
	"github.com/sui-testnet-faucet/internal/service"
)

type contextKey string

const apiClientContextKey contextKey = "api_client"

// GetAPIClient extracts the authenticated API client from the request context.
func GetAPIClient(ctx context.Context) *model.APIClient {
	client, _ := ctx.Value(apiClientContextKey).(*model.APIClient)
	return client
}

// APIClientAuth returns middleware that authenticates requests via the
// X-API-Key header.
func APIClientAuth(clients *service.ClientService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rawKey := r.Header.Get("X-API-Key")
			if rawKey == "" {
				respondError(w, http.StatusUnauthorized, "API key required in X-API-Key header")
				return
			}

			client, err := clients.Authenticate(r.Context(), rawKey)
			if err != nil {
				var ferr *faucet.Error
				if errors.As(err, &ferr) {
					respondError(w, ferr.Kind.HTTPStatus(), ferr.Message)
					return
				}
				respondError(w, http.StatusInternalServerError, "Authentication error")
				return
			}

			ctx := context.WithValue(r.Context(), apiClientContextKey, client)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UsageLogging returns middleware that records each authenticated call's
// endpoint, status, and elapsed time against the client. Placed inside
// APIClientAuth so the client identity is known.
func UsageLogging(clients *service.ClientService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			client := GetAPIClient(r.Context())
			if client == nil {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			clients.LogUsage(r.Context(), client.ClientID, r.URL.Path, r.Method, rec.status, time.Since(start))
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
