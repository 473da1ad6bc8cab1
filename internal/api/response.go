package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/erazemk/stagehouse/internal/apperr"
)

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode response", "error", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

type errorResponse struct {
	Error     string      `json:"error"`
	Kind      apperr.Kind `json:"kind"`
	Available *int        `json:"available,omitempty"`
}

var kindStatus = map[apperr.Kind]int{
	apperr.KindUnauthenticated:          http.StatusUnauthorized,
	apperr.KindUnauthorized:             http.StatusForbidden,
	apperr.KindNotFound:                 http.StatusNotFound,
	apperr.KindInsufficientAvailability: http.StatusConflict,
	apperr.KindInvariantViolation:       http.StatusUnprocessableEntity,
}

// serviceError writes err as a JSON error. Domain errors map to their status;
// anything else is logged and reported as an internal error.
func serviceError(w http.ResponseWriter, r *http.Request, err error) {
	var e *apperr.Error
	if !errors.As(err, &e) {
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}

	resp := errorResponse{Error: e.Message, Kind: e.Kind}
	if e.Kind == apperr.KindInsufficientAvailability {
		resp.Available = &e.Available
	}
	status, ok := kindStatus[e.Kind]
	if !ok {
		status = http.StatusInternalServerError
	}
	jsonResponse(w, status, resp)
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}

// pathID parses a positive integer path value.
func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
