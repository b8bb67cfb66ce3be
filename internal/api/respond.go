package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"tenantadmin-backend/internal/domain"
	"tenantadmin-backend/internal/logger"
)

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			logger.Error("encoding response", "error", err)
		}
	}
}

// listEnvelope is the paginated list response shape.
type listEnvelope struct {
	Rows      interface{} `json:"rows"`
	Total     int64       `json:"total"`
	Page      int         `json:"page"`
	PageSize  int         `json:"page_size"`
	PageCount int         `json:"page_count"`
}

func writeList(w http.ResponseWriter, rows interface{}, info domain.PageInfo) {
	writeJSON(w, http.StatusOK, listEnvelope{
		Rows:      rows,
		Total:     info.Total,
		Page:      info.Page,
		PageSize:  info.PageSize,
		PageCount: info.PageCount,
	})
}

// writeError maps the structured error taxonomy onto HTTP status codes.
// Anything that is not a *domain.Error is logged and redacted to a 500.
func writeError(w http.ResponseWriter, err error) {
	var de *domain.Error
	if !errors.As(err, &de) {
		logger.Error("unmapped handler error", "error", err)
		de = domain.Internal()
	}
	writeJSON(w, statusFor(de.Kind), map[string]interface{}{"error": de})
}

func statusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindUnauthenticated:
		return http.StatusUnauthorized
	case domain.KindUnauthorized:
		return http.StatusForbidden
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindInvariant:
		return http.StatusUnprocessableEntity
	case domain.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// parseJSON decodes the request body, surfacing malformed input as a
// validation error rather than a bare 400 string.
func parseJSON(w http.ResponseWriter, r *http.Request, dest interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		writeError(w, domain.Validation("invalid JSON body", nil))
		return false
	}
	return true
}
