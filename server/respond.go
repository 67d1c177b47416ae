package server

import (
	"encoding/json"
	"net/http"

	"github.com/nrfta/realestates-go"
	"github.com/nrfta/realestates-go/logging"
)

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.FromContext(r.Context()).Error("write response", "error", err)
	}
}

// writeError renders err. Errors outside the taxonomy are logged here and
// shown as a generic server error.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	e, ok := realestates.AsError(err)
	logger := logging.FromContext(r.Context())
	if !ok {
		logger.Error("request failed", "error", err)
	} else if e.Status >= http.StatusInternalServerError {
		logger.Error("request failed", "error", e)
	} else {
		logger.Debug("request rejected", "status", e.Status, "code", e.Code, "message", e.Message)
	}
	s.writeJSON(w, r, e.Status, e)
}
