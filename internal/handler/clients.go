package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sui-testnet-faucet/internal/service"
)

// RegisterClientHandler serves POST /api/v1/clients/register.
type RegisterClientHandler struct {
	clients *service.ClientService
}

func NewRegisterClientHandler(clients *service.ClientService) *RegisterClientHandler {
	return &RegisterClientHandler{clients: clients}
}

type registerClientRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	HomepageURL string `json:"homepage_url,omitempty"`
	CallbackURL string `json:"callback_url,omitempty"`
}

type registerClientResponse struct {
	ClientID  string `json:"client_id"`
	APIKey    string `json:"api_key"` // shown once, never retrievable again
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}

func (h *RegisterClientHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req registerClientRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.clients.Register(r.Context(), service.RegisterInput{
		Name:        req.Name,
		Description: req.Description,
		HomepageURL: req.HomepageURL,
		CallbackURL: req.CallbackURL,
	})
	if err != nil {
		RespondFaucetError(w, err)
		return
	}

	h.clients.LogUsage(r.Context(), result.Client.ClientID, r.URL.Path, r.Method, http.StatusCreated, 0)

	RespondData(w, http.StatusCreated, registerClientResponse{
		ClientID:  result.Client.ClientID,
		APIKey:    result.RawKey,
		Name:      result.Client.Name,
		CreatedAt: result.Client.CreatedAt.UTC().Format(time.RFC3339),
	})
}

// ClientDashboardHandler serves GET /api/v1/clients/{clientId}.
type ClientDashboardHandler struct {
	clients *service.ClientService
}

func NewClientDashboardHandler(clients *service.ClientService) *ClientDashboardHandler {
	return &ClientDashboardHandler{clients: clients}
}

type clientDashboardResponse struct {
	Client         clientProfile    `json:"client"`
	Stats          clientStats      `json:"stats"`
	RecentRequests []clientUsageRow `json:"recent_requests"`
}

type clientProfile struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	CreatedAt   string  `json:"created_at"`
	IsActive    bool    `json:"is_active"`
	LastUsed    *string `json:"last_used"`
}

type clientStats struct {
	TotalRequests   int64   `json:"total_requests"`
	RequestsToday   int64   `json:"requests_today"`
	AvgResponseTime float64 `json:"avg_response_time"`
	SuccessRate     string  `json:"success_rate"`
}

type clientUsageRow struct {
	Timestamp    string `json:"timestamp"`
	Endpoint     string `json:"endpoint"`
	Method       string `json:"method"`
	StatusCode   int    `json:"status_code"`
	ResponseTime int64  `json:"response_time"`
}

func (h *ClientDashboardHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "clientId")

	dash, err := h.clients.Dashboard(r.Context(), clientID)
	if err != nil {
		RespondFaucetError(w, err)
		return
	}

	var lastUsed *string
	if dash.Client.LastUsedAt != nil {
		s := dash.Client.LastUsedAt.UTC().Format(time.RFC3339)
		lastUsed = &s
	}

	rows := make([]clientUsageRow, 0, len(dash.RecentCalls))
	for _, u := range dash.RecentCalls {
		rows = append(rows, clientUsageRow{
			Timestamp:    u.CreatedAt.UTC().Format(time.RFC3339),
			Endpoint:     u.Endpoint,
			Method:       u.Method,
			StatusCode:   u.StatusCode,
			ResponseTime: u.ResponseTimeMS,
		})
	}

	RespondData(w, http.StatusOK, clientDashboardResponse{
		Client: clientProfile{
			ID:          dash.Client.ClientID,
			Name:        dash.Client.Name,
			Description: dash.Client.Description,
			CreatedAt:   dash.Client.CreatedAt.UTC().Format(time.RFC3339),
			IsActive:    dash.Client.IsActive,
			LastUsed:    lastUsed,
		},
		Stats: clientStats{
			TotalRequests:   dash.Usage.TotalRequests,
			RequestsToday:   dash.RequestsToday,
			AvgResponseTime: dash.Usage.AvgResponseTimeMS,
			SuccessRate:     dash.SuccessRate,
		},
		RecentRequests: rows,
	})
}
