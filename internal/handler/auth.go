package handler

import (
	"log/slog"
	"net/http"

	"github.com/PraneethKulukuri26/fooddeliveringBackend/internal/auth"
	"github.com/PraneethKulukuri26/fooddeliveringBackend/internal/handler/dto"
	"github.com/PraneethKulukuri26/fooddeliveringBackend/internal/service"
)

// AuthHandler handles sign-up, sign-in and the current user's profile.
type AuthHandler struct {
	responder
	auth  *service.AuthService
	users *service.UserService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authSvc *service.AuthService, users *service.UserService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		responder: responder{logger: logger},
		auth:      authSvc,
		users:     users,
	}
}

// LoginURL handles GET /auth/login.
func (h *AuthHandler) LoginURL(w http.ResponseWriter, r *http.Request) {
	url, err := h.auth.LoginURL()
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.LoginURLResponse{AuthURL: url})
}

// Callback handles GET /auth/callback, the redirect target of the Google consent screen.
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	if oauthErr := query.Get("error"); oauthErr != "" {
		h.writeErrorDetails(w, http.StatusBadRequest, codeOAuthError, "Google returned an error", map[string]string{
			"error": oauthErr,
		})
		return
	}

	code := query.Get("code")
	if code == "" {
		h.writeError(w, http.StatusBadRequest, "MISSING_CODE", "Missing code")
		return
	}

	result, err := h.auth.GoogleLogin(r.Context(), service.GoogleInput{Code: code})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.writeSignIn(w, result)
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	if !h.validate(w, req) {
		return
	}

	result, err := h.auth.Register(r.Context(), req.ToInput())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.Info("user_registered",
		"user_id", result.User.ID,
		"google", result.User.GoogleID != nil,
	)

	response := dto.ToAuthResponse(result)
	response.Status = "created"
	writeJSON(w, http.StatusCreated, response)
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	if !h.validate(w, req) {
		return
	}

	result, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToAuthResponse(result))
}

// Google handles POST /auth/google.
// It answers 201 when the Google account created a new user and 200 otherwise.
func (h *AuthHandler) Google(w http.ResponseWriter, r *http.Request) {
	var req dto.GoogleRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	if !h.validate(w, req) {
		return
	}

	result, err := h.auth.GoogleLogin(r.Context(), req.ToInput())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.writeSignIn(w, result)
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		h.writeError(w, http.StatusUnauthorized, codeUnauthorized, "Invalid or missing bearer token")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// UpdateMe handles PATCH /auth/me. The body is a JSON object merged into
// the current user.
func (h *AuthHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	if userID == "" {
		h.writeError(w, http.StatusUnauthorized, codeUnauthorized, "Invalid or missing bearer token")
		return
	}

	var fields map[string]any
	if !h.decodeJSON(w, r, &fields) {
		return
	}

	user, err := h.users.Update(r.Context(), userID, fields)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.Info("user_updated", "user_id", user.ID)
	writeJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) writeSignIn(w http.ResponseWriter, result *service.AuthResult) {
	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
		h.logger.Info("user_registered",
			"user_id", result.User.ID,
			"google", true,
		)
	}
	writeJSON(w, status, dto.ToAuthResponse(result))
}
