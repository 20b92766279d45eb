package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"discshelf/internal/collection"
	"discshelf/internal/services"
)

type errorResponse struct {
	Error      string `json:"error"`
	NeedsSetup bool   `json:"needsSetup,omitempty"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, errorResponse{Error: message})
}

// handleError maps the error taxonomy to HTTP statuses. Validation errors
// keep their message; everything unexpected becomes a 500, with detail
// scrubbed when running in production.
func (s *Server) handleError(w http.ResponseWriter, err error, context string) {
	switch {
	case errors.Is(err, services.ErrNotConfigured):
		s.writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:      "AI vision not configured. Set the Anthropic API key in the config file or ANTHROPIC_API_KEY.",
			NeedsSetup: true,
		})
	case errors.Is(err, collection.ErrNotFound), errors.Is(err, services.ErrNotFound):
		s.writeError(w, http.StatusNotFound, "Movie not found")
	case errors.Is(err, collection.ErrTitleRequired),
		errors.Is(err, collection.ErrTitleTooLong),
		errors.Is(err, collection.ErrNotesTooLong),
		errors.Is(err, services.ErrValidation):
		s.writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error("request failed", "context", context, "error", err)
		message := err.Error()
		if s.cfg.Production {
			message = "Internal server error"
		}
		s.writeError(w, http.StatusInternalServerError, message)
	}
}
