package handler

import (
	"encoding/json"
	"math/big"
	"net/http"

	"github.com/google/uuid"

	"github.com/sui-testnet-faucet/internal/faucet"
	"github.com/sui-testnet-faucet/internal/httputil"
)

// DispenseHandler serves POST /api/faucet/request.
type DispenseHandler struct {
	service *faucet.Service
}

func NewDispenseHandler(svc *faucet.Service) *DispenseHandler {
	return &DispenseHandler{service: svc}
}

type dispenseRequest struct {
	WalletAddress string `json:"walletAddress"`
}

type dispenseResponse struct {
	TransactionHash string    `json:"transactionHash"`
	Amount          string    `json:"amount"`
	ExplorerURL     string    `json:"explorerUrl"`
	RequestID       uuid.UUID `json:"requestId"`
}

func (h *DispenseHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req dispenseRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.service.Dispense(r.Context(), req.WalletAddress, httputil.ClientIP(r))
	if err != nil {
		RespondFaucetError(w, err)
		return
	}

	RespondData(w, http.StatusOK, dispenseResponse{
		TransactionHash: result.TransactionHash,
		Amount:          result.Amount,
		ExplorerURL:     result.ExplorerURL,
		RequestID:       result.RequestID,
	})
}

// V1DispenseHandler serves POST /api/v1/faucet/request for keyed API
// clients. Same flow as the public endpoint; the amount is rendered in whole
// tokens rather than base units.
type V1DispenseHandler struct {
	service *faucet.Service
}

func NewV1DispenseHandler(svc *faucet.Service) *V1DispenseHandler {
	return &V1DispenseHandler{service: svc}
}

type v1DispenseResponse struct {
	TransactionHash string `json:"transactionHash"`
	ExplorerURL     string `json:"explorerUrl"`
	Amount          string `json:"amount"`
	WalletAddress   string `json:"walletAddress"`
}

func (h *V1DispenseHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req dispenseRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.service.Dispense(r.Context(), req.WalletAddress, httputil.ClientIP(r))
	if err != nil {
		RespondFaucetError(w, err)
		return
	}

	RespondData(w, http.StatusOK, v1DispenseResponse{
		TransactionHash: result.TransactionHash,
		ExplorerURL:     result.ExplorerURL,
		Amount:          formatTokenAmount(result.Amount),
		WalletAddress:   req.WalletAddress,
	})
}

// formatTokenAmount converts a base-unit (1e-9) amount string to a
// one-decimal token string, e.g. "100000000" -> "0.1".
func formatTokenAmount(baseUnits string) string {
	v, ok := new(big.Int).SetString(baseUnits, 10)
	if !ok {
		return baseUnits
	}
	tenths := new(big.Int).Quo(v, big.NewInt(100_000_000))
	whole, frac := new(big.Int).QuoRem(tenths, big.NewInt(10), new(big.Int))
	return whole.String() + "." + frac.String()
}
