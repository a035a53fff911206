package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/lewisedginton/zapbot/internal/nameservice"
	"github.com/lewisedginton/zapbot/pkg/logger"
)

// ResolveRequest is the body of POST /v1/resolve/{ens,base}.
type ResolveRequest struct {
	Name string `json:"name"`
}

// ResolveResponse carries the checksummed address for a name.
type ResolveResponse struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

func (s *Server) handleResolve(kind string, lookup func(context.Context, string) (common.Address, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.GetLoggerFromContext(r.Context(), s.log).WithFields(logger.StringField("name_service", kind))

		var req ResolveRequest
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "request body must be a JSON object with a \"name\" field")
			return
		}

		name := strings.TrimSpace(req.Name)
		if name == "" {
			writeError(w, http.StatusBadRequest, kind+" name is required")
			return
		}

		addr, err := lookup(r.Context(), name)
		switch {
		case errors.Is(err, nameservice.ErrInvalidName):
			writeError(w, http.StatusBadRequest, "invalid "+kind+" name")
		case errors.Is(err, nameservice.ErrNotFound):
			writeError(w, http.StatusNotFound, kind+" name not found")
		case errors.Is(err, nameservice.ErrNotConfigured):
			writeError(w, http.StatusServiceUnavailable, kind+" name resolution is not configured")
		case err != nil:
			log.Error("Name resolution failed", logger.StringField("name", name), logger.ErrorField(err))
			writeError(w, http.StatusInternalServerError, "failed to resolve "+kind+" name")
		default:
			writeJSON(w, http.StatusOK, ResolveResponse{Name: name, Address: addr.Hex()})
		}
	}
}
