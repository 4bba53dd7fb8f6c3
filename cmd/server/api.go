package main

import (
	"encoding/json"
	"net/http"

	"github.com/Simplici0/nebula-roi/internal/roi"
)

type computeRequest struct {
	Fields map[string]string `json:"fields"`
	Mode   string            `json:"mode"`
}

type computeResponse struct {
	State   roi.InputState `json:"state"`
	Result  roi.Result     `json:"result"`
	Flags   roi.Flags      `json:"flags"`
	Summary roi.Summary    `json:"summary"`
	Chart   roi.Chart      `json:"chart"`
}

// handleAPICompute evaluates a calculator state built from raw field values
// on top of the defaults. It does not touch the caller's session.
func (s *server) handleAPICompute(w http.ResponseWriter, r *http.Request) {
	var req computeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	state := roi.DefaultInputState()
	for _, field := range roi.Fields {
		if raw, ok := req.Fields[field]; ok {
			state = state.Update(field, raw)
		}
	}
	if req.Mode != "" {
		mode, err := roi.ParseMode(req.Mode)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		state = state.SetMode(mode)
	}

	result, flags := roi.Compute(state)
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(computeResponse{
		State:   state,
		Result:  result,
		Flags:   flags,
		Summary: roi.Summarize(state, result, flags),
		Chart:   roi.ChartFor(result, state.Mode),
	}); err != nil {
		s.logger.WithError(err).Warn("failed to write compute response")
	}
}
