package httpapi

import (
	"errors"
	"net/http"

	"lead-service/internal/domain"

	"go.uber.org/zap"
)

func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrDependency):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the JSON error body. Unexpected errors are logged in
// full but reported to the caller as "Server Error"; detail is attached
// only when exposeDetail (non-production deployments) is set.
func respondError(w http.ResponseWriter, logger *zap.Logger, exposeDetail bool, err error) {
	status := statusForError(err)

	body := map[string]any{"message": err.Error()}
	if status == http.StatusInternalServerError {
		logger.Error("request failed", zap.Error(err))
		body["message"] = "Server Error"
		if exposeDetail {
			body["detail"] = err.Error()
		}
	}

	writeJSON(w, status, body)
}

func unauthorized(w http.ResponseWriter) {
	writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "Unauthorized"})
}
