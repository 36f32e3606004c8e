package admin

import (
	"net/http"

	"github.com/sui-testnet-faucet/internal/faucet"
	"github.com/sui-testnet-faucet/internal/handler"
)

// DashboardHandler serves GET /api/admin/dashboard.
type DashboardHandler struct {
	service *faucet.Service
	version string
}

func NewDashboardHandler(svc *faucet.Service, version string) *DashboardHandler {
	return &DashboardHandler{service: svc, version: version}
}

type dashboardResponse struct {
	System             systemInfo       `json:"system"`
	Stats              dashboardStats   `json:"stats"`
	RecentTransactions []dashboardEntry `json:"recentTransactions"`
}

type systemInfo struct {
	Uptime    string `json:"uptime"`
	Version   string `json:"version"`
	IsHealthy bool   `json:"isHealthy"`
}

type dashboardStats struct {
	TotalRequests      int64  `json:"totalRequests"`
	SuccessfulRequests int64  `json:"successfulRequests"`
	SuccessRate        string `json:"successRate"`
	TotalDistributed   string `json:"totalDistributed"`
}

type dashboardEntry struct {
	ID      string `json:"id"`
	Time    string `json:"time"`
	Address string `json:"address"`
	Amount  string `json:"amount"`
	Status  string `json:"status"`
	Hash    string `json:"hash,omitempty"`
}

func (h *DashboardHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	snap := h.service.StatsSnapshot()

	recent := h.service.Recent(50)
	entries := make([]dashboardEntry, 0, len(recent))
	for _, req := range recent {
		entries = append(entries, dashboardEntry{
			ID:      req.ID.String(),
			Time:    req.CreatedAt.UTC().Format("15:04:05"),
			Address: maskAddress(req.WalletAddress),
			Amount:  req.Amount,
			Status:  string(req.Status),
			Hash:    req.TransactionHash,
		})
	}

	handler.RespondData(w, http.StatusOK, dashboardResponse{
		System: systemInfo{
			Uptime:    faucet.FormatUptime(snap.Uptime),
			Version:   h.version,
			IsHealthy: true,
		},
		Stats: dashboardStats{
			TotalRequests:      snap.TotalRequests,
			SuccessfulRequests: snap.SuccessfulRequests,
			SuccessRate:        snap.SuccessRate,
			TotalDistributed:   snap.TotalDistributed,
		},
		RecentTransactions: entries,
	})
}

func maskAddress(s string) string {
	if len(s) <= 10 {
		return s
	}
	return s[:6] + "..." + s[len(s)-4:]
}
