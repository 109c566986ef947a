// Package handler holds the HTTP layer: routing, request decoding and the
// mapping of service errors onto status codes.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/PraneethKulukuri26/fooddeliveringBackend/internal/handler/dto"
)

const (
	appName    = "fooddeliveringBackend"
	appVersion = "0.1.0"
)

// Handler serves the root and fallback routes.
type Handler struct{}

func New() *Handler { return &Handler{} }

type helloResponse struct {
	Message string `json:"message"`
	Version string `json:"version"`
}

// Hello answers GET /.
func (*Handler) Hello(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, helloResponse{Message: "Hello from " + appName, Version: appVersion})
}

func (*Handler) NotFound(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Not found", Code: codeNotFound})
}

func (*Handler) MethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, dto.ErrorResponse{Error: "Method not allowed", Code: "METHOD_NOT_ALLOWED"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are flushed; a failed encode means the client is gone.
	_ = json.NewEncoder(w).Encode(v)
}
