package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"
)

// Recoverer turns a handler panic into a logged 500. http.ErrAbortHandler
// is re-raised so net/http can abort the connection silently.
func Recoverer(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				v := recover()
				if v == nil {
					return
				}
				if err, ok := v.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(v)
				}

				logger.LogAttrs(r.Context(), slog.LevelError, "handler panicked",
					slog.String("request_id", GetRequestID(r.Context())),
					slog.String("route", r.Method+" "+r.URL.Path),
					slog.Any("value", v),
					slog.String("stack", string(debug.Stack())),
				)
				writeError(w, http.StatusInternalServerError, CodeInternal, "Internal server error")
			}()
			next.ServeHTTP(w, r)
		})
	}
}
