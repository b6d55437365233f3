package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/amadou/nexus-connect/internal/auth"
	"github.com/amadou/nexus-connect/internal/model"
	"github.com/amadou/nexus-connect/internal/service"
)

// AuthHandler exposes registration, password login, federated login, and
// the current-user endpoint.
type AuthHandler struct {
	auth   *service.AuthService
	logger *slog.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(authSvc *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: authSvc, logger: logger}
}

// tokenResponse is the credential envelope returned by register, login and
// firebase login.
type tokenResponse struct {
	AccessToken string         `json:"access_token"`
	TokenType   string         `json:"token_type"`
	User        model.UserView `json:"user"`
}

func newTokenResponse(result *service.AuthResult) tokenResponse {
	return tokenResponse{
		AccessToken: result.Token,
		TokenType:   "bearer",
		User:        result.User.View(),
	}
}

// HandleRegister creates a password account.
//
// HTTP: POST /api/auth/register
// Body: {"email": "...", "password": "...", "firstName": "...", "lastName": "..."}
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email     string `json:"email"`
		Password  string `json:"password"`
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	result, err := h.auth.Register(r.Context(), req.Email, req.Password, req.FirstName, req.LastName)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newTokenResponse(result))
}

// HandleLogin authenticates an email/password pair.
//
// HTTP: POST /api/auth/login
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	result, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newTokenResponse(result))
}

// HandleFirebase logs in (or registers) via a Firebase ID token. Mounted
// twice: under /api and at the bare root path for backward compatibility;
// both behave identically.
//
// HTTP: POST /api/auth/firebase and POST /auth/firebase
// Body: {"idToken": "..."}
func (h *AuthHandler) HandleFirebase(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDToken string `json:"idToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	result, err := h.auth.LoginFirebase(r.Context(), req.IDToken)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newTokenResponse(result))
}

// HandleMe returns the authenticated caller's sanitized profile.
//
// HTTP: GET /api/auth/me (bearer)
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		// Unreachable on a RequireAuth-protected route, but be safe.
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}

	user, err := h.auth.CurrentUser(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user.View())
}
