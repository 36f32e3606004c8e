package faucet

import (
	"fmt"
	"net/http"
	"time"
)

// Error is a domain error returned by faucet operations.
// Handlers map these to appropriate HTTP responses.
type Error struct {
	Kind    ErrorKind
	Code    string    // machine-readable error code (e.g., "invalid_address", "wallet_cooldown")
	Message string    // human-readable message
	RetryAt time.Time // set on rate-limit denials
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// ErrorKind classifies domain errors for HTTP status mapping.
type ErrorKind int

const (
	ErrInvalidAddress   ErrorKind = iota // 400
	ErrBadRequest                        // 400
	ErrWalletCooldown                    // 429
	ErrIPQuota                           // 429
	ErrBroadcastFailure                  // 500
	ErrBroadcastTimeout                  // 500
	ErrNotFound                          // 404
	ErrAlreadyResolved                   // 409
	ErrUnauthorized                      // 401
	ErrInternal                          // 500
)

// HTTPStatus maps an ErrorKind to its corresponding HTTP status code.
func (k ErrorKind) HTTPStatus() int {
	switch k {
	case ErrInvalidAddress, ErrBadRequest:
		return http.StatusBadRequest
	case ErrWalletCooldown, ErrIPQuota:
		return http.StatusTooManyRequests
	case ErrNotFound:
		return http.StatusNotFound
	case ErrAlreadyResolved:
		return http.StatusConflict
	case ErrUnauthorized:
		return http.StatusUnauthorized
	case ErrBroadcastFailure, ErrBroadcastTimeout, ErrInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

func NewInvalidAddress(message string) *Error {
	return &Error{Kind: ErrInvalidAddress, Code: "invalid_address", Message: message}
}

func NewWalletCooldown(retryAt time.Time) *Error {
	return &Error{
		Kind:    ErrWalletCooldown,
		Code:    "wallet_cooldown",
		Message: "Rate limit exceeded for wallet",
		RetryAt: retryAt,
	}
}

func NewIPQuotaExceeded(retryAt time.Time) *Error {
	return &Error{
		Kind:    ErrIPQuota,
		Code:    "ip_quota_exceeded",
		Message: "Rate limit exceeded for IP address",
		RetryAt: retryAt,
	}
}

func NewBroadcastFailure(message string) *Error {
	return &Error{Kind: ErrBroadcastFailure, Code: "broadcast_failed", Message: message}
}

func NewBroadcastTimeout(message string) *Error {
	return &Error{Kind: ErrBroadcastTimeout, Code: "broadcast_timeout", Message: message}
}

func NewNotFound(message string) *Error {
	return &Error{Kind: ErrNotFound, Code: "not_found", Message: message}
}

func NewAlreadyResolved(message string) *Error {
	return &Error{Kind: ErrAlreadyResolved, Code: "already_resolved", Message: message}
}

func NewBadRequest(message string) *Error {
	return &Error{Kind: ErrBadRequest, Code: "invalid_request", Message: message}
}

func NewUnauthorized(message string) *Error {
	return &Error{Kind: ErrUnauthorized, Code: "unauthorized", Message: message}
}

func NewInternal(message string) *Error {
	return &Error{Kind: ErrInternal, Code: "internal_error", Message: message}
}
