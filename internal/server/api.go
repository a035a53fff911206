package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/lewisedginton/zapbot/internal/intent"
	"github.com/lewisedginton/zapbot/pkg/logger"
)

const (
	maxBodyBytes = 64 << 10
	bannerText   = "ZapBot payment assistant"
)

// IntentRequest is the body of POST /v1/intents.
type IntentRequest struct {
	Input string `json:"input"`
}

// IntentResponse carries the agent's reply.
type IntentResponse struct {
	Output string `json:"output"`
}

// ErrorResponse is returned for every non-2xx API response.
type ErrorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleBanner(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(bannerText))
}

func (s *Server) handleIntent(w http.ResponseWriter, r *http.Request) {
	log := logger.GetLoggerFromContext(r.Context(), s.log)

	var req IntentRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		log.Debug("Rejected malformed intent request", logger.ErrorField(err))
		writeError(w, http.StatusBadRequest, "request body must be a JSON object with an \"input\" field")
		return
	}

	output, err := s.handler.Handle(r.Context(), req.Input)
	switch {
	case errors.Is(err, intent.ErrEmptyInput):
		writeError(w, http.StatusBadRequest, "input must not be empty")
	case err != nil:
		// the handler has already logged the cause
		writeError(w, http.StatusInternalServerError, "failed to handle input")
	default:
		writeJSON(w, http.StatusOK, IntentResponse{Output: output})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}
