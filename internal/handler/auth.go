package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/Gopi-techy/SkillSlate/internal/auth"
	"github.com/Gopi-techy/SkillSlate/internal/model"
	"github.com/Gopi-techy/SkillSlate/internal/service"
)

// AuthHandler serves registration, login and session introspection under
// /api/auth.
type AuthHandler struct {
	auth   *service.AuthService
	logger *slog.Logger
}

func NewAuthHandler(authSvc *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: authSvc, logger: logger}
}

// userResponse is a user plus the session token issued for it.
type userResponse struct {
	*model.User
	Token string `json:"token,omitempty"`
}

// HandleRegister creates an account.
//
// POST /api/auth/register {"name", "email", "password"}
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "Invalid JSON body"})
		return
	}

	user, token, err := h.auth.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "User registered successfully",
		"user":    userResponse{User: user, Token: token},
	})
}

// HandleLogin authenticates with email and password.
//
// POST /api/auth/login {"email", "password"}
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "Invalid JSON body"})
		return
	}

	user, token, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Login successful",
		"user":    userResponse{User: user, Token: token},
	})
}

// HandleGitHubLogin signs in (or registers) with a GitHub access token.
//
// POST /api/auth/github/login {"access_token"}
func (h *AuthHandler) HandleGitHubLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "Invalid JSON body"})
		return
	}

	user, token, err := h.auth.GitHubLogin(r.Context(), req.AccessToken)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "GitHub login successful",
		"user":    userResponse{User: user, Token: token},
	})
}

// HandleProfile returns the authenticated user.
//
// GET /api/auth/profile
func (h *AuthHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	user, err := h.auth.Profile(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}

// HandleVerify confirms the session token is still valid.
//
// GET /api/auth/verify
func (h *AuthHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	user, err := h.auth.Profile(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Token is valid",
		"user":    user,
	})
}

// HandleLogout acknowledges a logout. Sessions are stateless JWTs, so there
// is nothing to revoke server-side; the client drops its token.
//
// POST /api/auth/logout
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"message": "Logout successful"})
}
