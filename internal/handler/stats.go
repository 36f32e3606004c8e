package handler

import (
	"net/http"
	"time"

	"github.com/sui-testnet-faucet/internal/faucet"
	"github.com/sui-testnet-faucet/internal/model"
)

// StatsHandler serves GET /api/stats.
type StatsHandler struct {
	service *faucet.Service
}

func NewStatsHandler(svc *faucet.Service) *StatsHandler {
	return &StatsHandler{service: svc}
}

type statsResponse struct {
	TotalRequests      int64           `json:"totalRequests"`
	SuccessfulRequests int64           `json:"successfulRequests"`
	TotalDistributed   string          `json:"totalDistributed"`
	SuccessRate        string          `json:"successRate"`
	Uptime             string          `json:"uptime"`
	IsHealthy          bool            `json:"isHealthy"`
	RecentRequests     []recentRequest `json:"recentRequests"`
}

type recentRequest struct {
	ID              string  `json:"id"`
	WalletAddress   string  `json:"walletAddress"`
	Amount          string  `json:"amount"`
	Status          string  `json:"status"`
	CreatedAt       string  `json:"createdAt"`
	TransactionHash *string `json:"transactionHash"`
}

func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	snap := h.service.StatsSnapshot()

	recent := h.service.Recent(10)
	items := make([]recentRequest, 0, len(recent))
	for _, req := range recent {
		items = append(items, toRecentRequest(req))
	}

	RespondData(w, http.StatusOK, statsResponse{
		TotalRequests:      snap.TotalRequests,
		SuccessfulRequests: snap.SuccessfulRequests,
		TotalDistributed:   snap.TotalDistributed,
		SuccessRate:        snap.SuccessRate,
		Uptime:             faucet.FormatUptime(snap.Uptime),
		IsHealthy:          true,
		RecentRequests:     items,
	})
}

func toRecentRequest(req *model.DispenseRequest) recentRequest {
	item := recentRequest{
		ID:            req.ID.String(),
		WalletAddress: maskAddress(req.WalletAddress),
		Amount:        formatTokenAmount(req.Amount),
		Status:        string(req.Status),
		CreatedAt:     req.CreatedAt.UTC().Format(time.RFC3339),
	}
	if req.TransactionHash != "" {
		masked := maskAddress(req.TransactionHash)
		item.TransactionHash = &masked
	}
	return item
}
