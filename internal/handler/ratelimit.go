package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sui-testnet-faucet/internal/faucet"
)

// RateLimitHandler serves GET /api/faucet/rate-limit/{walletAddress}: a
// read-only cooldown check that does not count as an attempt.
type RateLimitHandler struct {
	service *faucet.Service
}

func NewRateLimitHandler(svc *faucet.Service) *RateLimitHandler {
	return &RateLimitHandler{service: svc}
}

type rateLimitStatusResponse struct {
	CanRequest      bool    `json:"canRequest"`
	NextRequestTime *string `json:"nextRequestTime"`
	TimeRemaining   int64   `json:"timeRemaining"`
}

func (h *RateLimitHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	wallet := chi.URLParam(r, "walletAddress")

	status := h.service.WalletStatus(wallet)
	resp := rateLimitStatusResponse{CanRequest: status.CanRequest}
	if !status.CanRequest && status.RetryAt != nil {
		next := status.RetryAt.UTC().Format(time.RFC3339)
		resp.NextRequestTime = &next
		resp.TimeRemaining = status.SecondsRemaining
	}

	RespondData(w, http.StatusOK, resp)
}
