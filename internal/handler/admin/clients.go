package admin

import (
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sui-testnet-faucet/internal/handler"
	"github.com/sui-testnet-faucet/internal/httputil"
	"github.com/sui-testnet-faucet/internal/store"
)

// ListClientsHandler serves GET /api/admin/clients.
type ListClientsHandler struct {
	store store.ClientStore
}

func NewListClientsHandler(s store.ClientStore) *ListClientsHandler {
	return &ListClientsHandler{store: s}
}

type listClientsResponse struct {
	Clients []clientListItem `json:"clients"`
	Total   int              `json:"total"`
	Page    int              `json:"page"`
	PerPage int              `json:"per_page"`
}

type clientListItem struct {
	ClientID   string  `json:"client_id"`
	Name       string  `json:"name"`
	KeyPrefix  string  `json:"key_prefix"`
	IsActive   bool    `json:"is_active"`
	CreatedAt  string  `json:"created_at"`
	LastUsedAt *string `json:"last_used_at"`
}

func (h *ListClientsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	page, perPage, err := httputil.ParsePagination(r.URL.Query().Get("page"), r.URL.Query().Get("per_page"))
	if err != nil {
		handler.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	clients, total, err := h.store.ListClients(r.Context(), page, perPage)
	if err != nil {
		log.Error().Err(err).Msg("failed to list API clients")
		handler.RespondError(w, http.StatusInternalServerError, "Failed to list API clients")
		return
	}

	items := make([]clientListItem, 0, len(clients))
	for _, c := range clients {
		var lastUsed *string
		if c.LastUsedAt != nil {
			s := c.LastUsedAt.UTC().Format(time.RFC3339)
			lastUsed = &s
		}
		items = append(items, clientListItem{
			ClientID:   c.ClientID,
			Name:       c.Name,
			KeyPrefix:  c.KeyPrefix,
			IsActive:   c.IsActive,
			CreatedAt:  c.CreatedAt.UTC().Format(time.RFC3339),
			LastUsedAt: lastUsed,
		})
	}

	handler.RespondData(w, http.StatusOK, listClientsResponse{
		Clients: items,
		Total:   total,
		Page:    page,
		PerPage: perPage,
	})
}
