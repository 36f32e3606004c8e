package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/sui-testnet-faucet/internal/faucet"
	"github.com/sui-testnet-faucet/internal/httputil"
)

// RespondJSON writes a JSON response with the given status code.
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	httputil.RespondJSON(w, status, data)
}

// RespondData wraps data in the {success:true, data:...} envelope.
func RespondData(w http.ResponseWriter, status int, data interface{}) {
	httputil.RespondData(w, status, data)
}

// RespondError writes a JSON error response.
func RespondError(w http.ResponseWriter, status int, message string) {
	httputil.RespondError(w, status, message)
}

// rateLimitedResponse is the 429 body; nextRequestTime is always machine
// parseable.
type rateLimitedResponse struct {
	Error           string `json:"error"`
	NextRequestTime string `json:"nextRequestTime"`
}

// RespondFaucetError maps a faucet domain error to the wire shape each kind
// requires. Unknown errors become a generic 500.
func RespondFaucetError(w http.ResponseWriter, err error) {
	var ferr *faucet.Error
	if !errors.As(err, &ferr) {
		RespondError(w, http.StatusInternalServerError, "An unexpected error occurred")
		return
	}

	switch ferr.Kind {
	case faucet.ErrWalletCooldown, faucet.ErrIPQuota:
		RespondJSON(w, http.StatusTooManyRequests, rateLimitedResponse{
			Error:           ferr.Message,
			NextRequestTime: ferr.RetryAt.UTC().Format(time.RFC3339),
		})
	case faucet.ErrBroadcastFailure, faucet.ErrBroadcastTimeout:
		RespondJSON(w, http.StatusInternalServerError, httputil.ErrorResponse{
			Error:   "Transaction failed",
			Details: ferr.Message,
		})
	default:
		RespondError(w, ferr.Kind.HTTPStatus(), ferr.Message)
	}
}

// maskAddress shortens an address or hash for display: 0x1234...abcd.
func maskAddress(s string) string {
	if len(s) <= 10 {
		return s
	}
	return s[:6] + "..." + s[len(s)-4:]
}
