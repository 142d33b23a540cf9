package http

import (
	"log/slog"
	"net/http"

	"github.com/quillhq/quill/internal/service"
	apperrors "github.com/quillhq/quill/pkg/errors"
	"github.com/quillhq/quill/pkg/validator"
)

// AuthHandler exposes registration, login, and session management.
type AuthHandler struct {
	auth *service.AuthService
	log  *slog.Logger
}

// NewAuthHandler creates the auth handler.
func NewAuthHandler(auth *service.AuthService, log *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, log: log}
}

type signupRequest struct {
	Email       string `json:"email" validate:"required,email,max=255"`
	Password    string `json:"password" validate:"required,min=8,max=128"`
	DisplayName string `json:"display_name" validate:"required,min=1,max=100"`
}

// Signup handles POST /api/v1/auth/signup.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.log, err)
		return
	}
	if err := validator.Validate(req); err != nil {
		writeError(w, h.log, err)
		return
	}

	user, err := h.auth.Register(r.Context(), service.RegisterInput{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeData(w, http.StatusCreated, user)
}

type signinRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required"`
	DeviceInfo string `json:"device_info" validate:"max=500"`
}

type signinResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	User         any    `json:"user"`
}

// Signin handles POST /api/v1/auth/signin.
func (h *AuthHandler) Signin(w http.ResponseWriter, r *http.Request) {
	var req signinRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.log, err)
		return
	}
	if err := validator.Validate(req); err != nil {
		writeError(w, h.log, err)
		return
	}

	user, pair, err := h.auth.Login(r.Context(), req.Email, req.Password, service.SessionMeta{
		DeviceInfo: req.DeviceInfo,
		IPAddress:  clientIP(r),
		UserAgent:  r.UserAgent(),
	})
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeData(w, http.StatusOK, signinResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    pair.TokenType,
		ExpiresIn:    pair.ExpiresIn,
		User:         user,
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// Refresh handles POST /api/v1/auth/refresh.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.log, err)
		return
	}
	if err := validator.Validate(req); err != nil {
		writeError(w, h.log, err)
		return
	}

	pair, err := h.auth.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeData(w, http.StatusOK, pair)
}

// Logout handles POST /api/v1/auth/logout. Deleting an already-gone session
// is a 404 so clients notice stale state.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := accessTokenFromContext(r.Context())

	deleted, err := h.auth.Logout(r.Context(), token)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	if !deleted {
		writeError(w, h.log, apperrors.NotFound("session", "current"))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// LogoutAll handles POST /api/v1/auth/logout-all.
func (h *AuthHandler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	if _, err := h.auth.LogoutAll(r.Context(), user.ID); err != nil {
		writeError(w, h.log, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /api/v1/auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, userFromContext(r.Context()))
}

// Sessions handles GET /api/v1/auth/sessions.
func (h *AuthHandler) Sessions(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	token := accessTokenFromContext(r.Context())

	sessions, err := h.auth.ListActiveSessions(r.Context(), user.ID, token)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeData(w, http.StatusOK, sessions)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=128"`
}

// ChangePassword handles POST /api/v1/auth/change-password. Every session is
// revoked on success, including the caller's.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.log, err)
		return
	}
	if err := validator.Validate(req); err != nil {
		writeError(w, h.log, err)
		return
	}

	user := userFromContext(r.Context())
	if err := h.auth.ChangePassword(r.Context(), user.ID, req.CurrentPassword, req.NewPassword); err != nil {
		writeError(w, h.log, err)
		return
	}

	writeData(w, http.StatusOK, map[string]string{"message": "password changed"})
}
