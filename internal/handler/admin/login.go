package admin

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/sui-testnet-faucet/internal/handler"
	"github.com/sui-testnet-faucet/internal/middleware"
)

// Credentials is the configured admin username/password pair. The check is a
// plain equality match; this surface is a demo dashboard, not real auth.
type Credentials struct {
	Username string
	Password string
}

// LoginHandler serves POST /api/admin/login.
type LoginHandler struct {
	creds    Credentials
	sessions *middleware.SessionStore
}

func NewLoginHandler(creds Credentials, sessions *middleware.SessionStore) *LoginHandler {
	return &LoginHandler{creds: creds, sessions: sessions}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Success   bool      `json:"success"`
	SessionID string    `json:"sessionId"`
	User      loginUser `json:"user"`
}

type loginUser struct {
	Username string `json:"username"`
}

func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		handler.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		handler.RespondError(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(h.creds.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(req.Password), []byte(h.creds.Password)) == 1
	if !userOK || !passOK {
		handler.RespondError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := h.sessions.Create()
	if err != nil {
		log.Error().Err(err).Msg("failed to create admin session")
		handler.RespondError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	handler.RespondJSON(w, http.StatusOK, loginResponse{
		Success:   true,
		SessionID: token,
		User:      loginUser{Username: req.Username},
	})
}

// LogoutHandler serves POST /api/admin/logout.
type LogoutHandler struct {
	sessions *middleware.SessionStore
}

func NewLogoutHandler(sessions *middleware.SessionStore) *LogoutHandler {
	return &LogoutHandler{sessions: sessions}
}

func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if token := middleware.BearerToken(r); token != "" {
		h.sessions.Delete(token)
	}
	handler.RespondJSON(w, http.StatusOK, map[string]bool{"success": true})
}
