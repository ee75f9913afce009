package http

import (
	"LinkGate-Backend/internal/domain"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

const (
	headerAPIKey    = "X-API-Key"
	headerWorkspace = "X-Workspace-ID"
	headerCountry   = "CF-IPCountry"

	defaultWorkspace = "default"
	internalError    = "Internal server error"
)

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, message string, statusCode int) {
	writeJSON(w, ErrorResponse{Error: message}, statusCode)
}

// writeServiceError maps sentinel errors onto status codes. Unknown errors are
// logged and answered with a generic 500.
func writeServiceError(w http.ResponseWriter, log *zap.Logger, err error, op string) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, "Not found", http.StatusNotFound)
	case errors.Is(err, domain.ErrConflict):
		writeError(w, "Already exists", http.StatusConflict)
	case errors.Is(err, domain.ErrLimitExceeded):
		writeError(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, domain.ErrDomainNotVerified):
		writeError(w, "Domain is not verified", http.StatusForbidden)
	case errors.Is(err, domain.ErrRateLimited):
		writeError(w, "Too many requests", http.StatusTooManyRequests)
	default:
		log.Error("request failed", zap.String("op", op), zap.Error(err))
		writeError(w, internalError, http.StatusInternalServerError)
	}
}

// callerID identifies who is calling for rate limiting: API key when present, else client IP.
func callerID(r *http.Request, proxies *ProxyList) string {
	if key := strings.TrimSpace(r.Header.Get(headerAPIKey)); key != "" {
		return "key:" + key
	}
	return "ip:" + proxies.ClientIP(r)
}

func workspaceID(r *http.Request) string {
	if ws := strings.TrimSpace(r.Header.Get(headerWorkspace)); ws != "" {
		return ws
	}
	return defaultWorkspace
}

func optionalHeader(r *http.Request, name string) *string {
	v := r.Header.Get(name)
	if v == "" {
		return nil
	}
	return &v
}

func validationError(msg string) error {
	return fmt.Errorf("%w: %s", domain.ErrValidation, msg)
}
