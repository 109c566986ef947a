package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/PraneethKulukuri26/fooddeliveringBackend/internal/auth"
	"github.com/PraneethKulukuri26/fooddeliveringBackend/internal/handler/dto"
	"github.com/PraneethKulukuri26/fooddeliveringBackend/internal/middleware"
	"github.com/PraneethKulukuri26/fooddeliveringBackend/internal/service"
)

// Error codes returned by the handlers.
const (
	codeInvalidJSON       = "INVALID_JSON"
	codeInvalidForm       = "INVALID_FORM"
	codeValidation        = "VALIDATION_ERROR"
	codeNotFound          = "NOT_FOUND"
	codeUnauthorized      = "UNAUTHORIZED"
	codeInvalidCreds      = "INVALID_CREDENTIALS"
	codeForbidden         = "FORBIDDEN"
	codeUserExists        = "USER_EXISTS"
	codeGoogleLinked      = "GOOGLE_ACCOUNT_LINKED"
	codeGoogleMismatch    = "GOOGLE_ACCOUNT_MISMATCH"
	codeGoogleUnverified  = "GOOGLE_EMAIL_UNVERIFIED"
	codeGoogleError       = "GOOGLE_ERROR"
	codeGoogleUnavailable = "GOOGLE_UNAVAILABLE"
	codeOAuthError        = "OAUTH_ERROR"
	codeOAuthConfig       = "OAUTH_NOT_CONFIGURED"
	codePayloadTooLarge   = "PAYLOAD_TOO_LARGE"
	codeInternal          = "INTERNAL_ERROR"
)

// responder writes the error bodies shared by every handler.
type responder struct {
	logger *slog.Logger
}

func (h responder) writeError(w http.ResponseWriter, status int, code, message string) {
	h.writeErrorDetails(w, status, code, message, nil)
}

func (h responder) writeErrorDetails(w http.ResponseWriter, status int, code, message string, details any) {
	writeJSON(w, status, dto.ErrorResponse{
		Error:   message,
		Code:    code,
		Details: details,
	})
}

// decodeJSON decodes the request body into v. On failure it writes the
// error response and returns false.
func (h responder) decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if isBodyTooLarge(err) {
			h.writeError(w, http.StatusRequestEntityTooLarge, codePayloadTooLarge, "Request body too large")
			return false
		}
		h.writeError(w, http.StatusBadRequest, codeInvalidJSON, "Invalid request body")
		return false
	}
	return true
}

// validate runs the request's validate tags. On failure it writes a 400
// and returns false.
func (h responder) validate(w http.ResponseWriter, req any) bool {
	err := dto.Validate(req)
	if err == nil {
		return true
	}

	var verr *dto.ValidationError
	if errors.As(err, &verr) {
		h.writeErrorDetails(w, http.StatusBadRequest, codeValidation, verr.Message(), map[string]string{
			"field": verr.Field,
		})
		return false
	}
	h.logger.Error("validation_error", "error", err)
	h.writeError(w, http.StatusInternalServerError, codeInternal, "An internal error occurred")
	return false
}

// handleServiceError maps service and Google errors to HTTP responses.
func (h responder) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var fieldErr *service.FieldError
	var googleErr *auth.GoogleError

	switch {
	case errors.Is(err, service.ErrItemNotFound),
		errors.Is(err, service.ErrDonationNotFound):
		h.writeError(w, http.StatusNotFound, codeNotFound, "Not found")
	case errors.Is(err, service.ErrUserNotFound):
		h.writeError(w, http.StatusNotFound, codeNotFound, "User not found")
	case errors.Is(err, service.ErrNameRequired):
		h.writeErrorDetails(w, http.StatusBadRequest, codeValidation, "name is required", map[string]string{"field": "name"})
	case errors.Is(err, service.ErrTitleRequired):
		h.writeErrorDetails(w, http.StatusBadRequest, codeValidation, "title is required", map[string]string{"field": "title"})
	case errors.Is(err, service.ErrEmailRequired):
		h.writeError(w, http.StatusBadRequest, "EMAIL_REQUIRED", "Email is required for registration")
	case errors.Is(err, service.ErrIdentityRequired):
		h.writeError(w, http.StatusBadRequest, "IDENTITY_REQUIRED", "code or id_token is required")
	case errors.Is(err, service.ErrInvalidCoordinates):
		h.writeError(w, http.StatusBadRequest, "INVALID_COORDINATES", "Invalid latitude/longitude")
	case errors.Is(err, service.ErrNoFieldsToUpdate):
		h.writeError(w, http.StatusBadRequest, "NO_FIELDS", "No fields to update")
	case errors.As(err, &fieldErr):
		h.writeErrorDetails(w, http.StatusBadRequest, codeValidation, fieldErr.Field+" "+fieldErr.Reason, map[string]string{
			"field":  fieldErr.Field,
			"reason": fieldErr.Reason,
		})
	case errors.Is(err, service.ErrGoogleAccountLinked):
		h.writeError(w, http.StatusBadRequest, codeGoogleLinked, "Google account already linked to another user")
	case errors.Is(err, service.ErrUserExists):
		h.writeError(w, http.StatusBadRequest, codeUserExists, "User already exists")
	case errors.Is(err, service.ErrGoogleAccountMismatch):
		h.writeError(w, http.StatusConflict, codeGoogleMismatch, "User is linked to a different Google account")
	case errors.Is(err, service.ErrGoogleEmailUnverified):
		h.writeError(w, http.StatusForbidden, codeGoogleUnverified, "Google account email is not verified")
	case errors.Is(err, service.ErrInvalidCredentials):
		h.writeError(w, http.StatusUnauthorized, codeInvalidCreds, "Invalid email or password")
	case errors.Is(err, service.ErrUnauthorized):
		h.writeError(w, http.StatusUnauthorized, codeUnauthorized, "Invalid or missing bearer token")
	case errors.Is(err, service.ErrNotDonor):
		h.writeError(w, http.StatusForbidden, codeForbidden, "User is not authorized to donate")
	case errors.Is(err, auth.ErrOAuthNotConfigured):
		h.writeError(w, http.StatusInternalServerError, codeOAuthConfig, "Google OAuth client ID not configured")
	case errors.As(err, &googleErr):
		h.writeErrorDetails(w, http.StatusBadRequest, codeGoogleError, googleErr.Code, map[string]any{
			"error": googleErr.Code,
			"info":  googleErr.Info,
		})
	case errors.Is(err, auth.ErrIncompleteUserInfo):
		h.writeError(w, http.StatusBadRequest, codeGoogleError, "Incomplete userinfo from Google")
	case errors.Is(err, auth.ErrInvalidIDToken):
		h.writeError(w, http.StatusBadRequest, codeGoogleError, "Invalid id_token")
	case errors.Is(err, auth.ErrInvalidIDTokenPayload):
		h.writeError(w, http.StatusBadRequest, codeGoogleError, "Invalid id_token payload")
	case errors.Is(err, auth.ErrGoogleUnavailable):
		h.logger.Warn("google_unavailable",
			"error", err,
			"request_id", middleware.GetRequestID(r.Context()),
		)
		h.writeError(w, http.StatusBadGateway, codeGoogleUnavailable, "Google is unavailable")
	case isBodyTooLarge(err):
		h.writeError(w, http.StatusRequestEntityTooLarge, codePayloadTooLarge, "Request body too large")
	default:
		h.logger.Error("internal_error",
			"error", err,
			"request_id", middleware.GetRequestID(r.Context()),
		)
		h.writeError(w, http.StatusInternalServerError, codeInternal, "An internal error occurred")
	}
}

func isBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}
