package model

import (
	"time"

	"github.com/google/uuid"
)

type RequestStatus string

const (
	StatusPending RequestStatus = "pending"
	StatusSuccess RequestStatus = "success"
	StatusFailed  RequestStatus = "failed"
)

// DispenseRequest records one token-dispense attempt and its outcome.
// Status moves from pending to exactly one terminal state; TransactionHash
// and ErrorMessage are mutually exclusive and set only alongside their
// terminal status.
type DispenseRequest struct {
	ID              uuid.UUID     `json:"id"`
	WalletAddress   string        `json:"wallet_address"`
	IPAddress       string        `json:"ip_address"`
	Amount          string        `json:"amount"`
	Status          RequestStatus `json:"status"`
	TransactionHash string        `json:"transaction_hash,omitempty"`
	ErrorMessage    string        `json:"error_message,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
}

// Resolved reports whether the request has reached a terminal state.
func (r *DispenseRequest) Resolved() bool {
	return r.Status != StatusPending
}
