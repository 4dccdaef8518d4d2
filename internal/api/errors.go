package api

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/joestump/joe-bookmarks/internal/apperr"
)

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// writeError writes a JSON error response with the given HTTP status code.
func writeError(w http.ResponseWriter, status int, message, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorBody{Error: message, Code: code})
}

// writeJSON writes a JSON response with the given HTTP status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeServiceError translates an error returned by a service into a
// response. Internal errors are logged and answered with a generic message.
func writeServiceError(w http.ResponseWriter, log *zap.Logger, err error) {
	status, code := statusOf(apperr.KindOf(err))
	if status == http.StatusInternalServerError {
		log.Error("request failed", zap.Error(err))
	}
	writeError(w, status, apperr.MessageOf(err), code)
}

func statusOf(kind apperr.Kind) (int, string) {
	switch kind {
	case apperr.Validation:
		return http.StatusUnprocessableEntity, "VALIDATION_FAILED"
	case apperr.NotFound:
		return http.StatusNotFound, "NOT_FOUND"
	case apperr.Unauthorized:
		return http.StatusUnauthorized, "UNAUTHORIZED"
	case apperr.Conflict:
		return http.StatusConflict, "CONFLICT"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}
