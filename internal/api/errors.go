package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gh-network/publications/internal/domain"
)

type problem struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

var errInternal = problem{Code: "internal", Message: "internal server error"}

func statusOf(kind domain.Kind) int {
	switch kind {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError отдает доменные ошибки клиенту как есть, а инфраструктурные логирует и прячет.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var de *domain.Error
	if errors.As(err, &de) {
		writeJSON(w, statusOf(de.Kind), problem{Code: de.Code, Message: de.Message})
		return
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeJSON(w, http.StatusRequestEntityTooLarge, problem{Code: "payload_too_large", Message: err.Error()})
		return
	}

	s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	writeJSON(w, http.StatusInternalServerError, errInternal)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body) //nolint:errcheck
}
