package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/PraneethKulukuri26/fooddeliveringBackend/internal/auth"
	"github.com/PraneethKulukuri26/fooddeliveringBackend/internal/model"
	"github.com/PraneethKulukuri26/fooddeliveringBackend/internal/service"
)

// Authenticator resolves bearer tokens. *service.AuthService implements it.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*model.AuthContext, *model.User, error)
}

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	Logger        *slog.Logger
	Authenticator Authenticator
}

// Auth returns a middleware that requires a valid bearer token.
// It injects the auth context and the current user into the request.
func Auth(cfg AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearerToken(r)
			if token == "" {
				logAuthFailure(cfg.Logger, r, "missing_token")
				writeAuthError(w)
				return
			}

			authCtx, user, err := cfg.Authenticator.Authenticate(r.Context(), token)
			if err != nil {
				if errors.Is(err, service.ErrUnauthorized) {
					logAuthFailure(cfg.Logger, r, "invalid_token")
					writeAuthError(w)
					return
				}
				cfg.Logger.Error("authentication error",
					slog.String("error", err.Error()),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeError(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Authentication temporarily unavailable")
				return
			}

			setLoggedUserID(r.Context(), authCtx.UserID)

			ctx := auth.ContextWithAuth(r.Context(), authCtx)
			ctx = auth.ContextWithUser(ctx, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireDonor returns middleware that only lets donor accounts through.
// Must be applied after Auth middleware.
func RequireDonor() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authCtx := auth.AuthFromContext(r.Context())
			if authCtx == nil {
				writeAuthError(w)
				return
			}
			if !authCtx.IsDoner {
				writeError(w, http.StatusForbidden, CodeForbidden, "User is not authorized to donate")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// extractBearerToken returns the token of an "Authorization: Bearer" header.
// The scheme is matched case-insensitively.
func extractBearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func logAuthFailure(logger *slog.Logger, r *http.Request, reason string) {
	logger.Warn("authentication failed",
		slog.String("reason", reason),
		slog.String("ip", r.RemoteAddr),
		slog.String("endpoint", r.Method+" "+r.URL.Path),
		slog.String("request_id", GetRequestID(r.Context())),
	)
}

// writeAuthError writes a 401 Unauthorized response.
// Uses the same message for all auth failures to prevent enumeration.
func writeAuthError(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Bearer`)
	writeError(w, http.StatusUnauthorized, CodeUnauthorized, "Invalid or missing bearer token")
}
