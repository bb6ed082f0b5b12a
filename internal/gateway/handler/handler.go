// Package handler exposes the decomposition service over plain JSON HTTP.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"etymograph/internal/gateway/service/resolution"
	"etymograph/internal/gateway/watch"
	"etymograph/internal/morph"
	"etymograph/internal/resolve"
	"etymograph/internal/validate"
)

type DecompositionHandler struct {
	svc *resolution.Service
	hub *watch.Hub
	log *slog.Logger
}

func NewDecompositionHandler(svc *resolution.Service, hub *watch.Hub, log *slog.Logger) *DecompositionHandler {
	if log == nil {
		log = slog.Default()
	}
	return &DecompositionHandler{svc: svc, hub: hub, log: log}
}

type wordRequest struct {
	Word string `json:"word"`
}

type decompositionResponse struct {
	ResolutionID string                `json:"resolutionId,omitempty"`
	Word         string                `json:"word"`
	Accepted     bool                  `json:"accepted"`
	FromCache    bool                  `json:"fromCache,omitempty"`
	Attempts     int                   `json:"attempts"`
	Document     morph.Document        `json:"document"`
	Layers       [][]morph.Combination `json:"layers"`
	Edges        []morph.Edge          `json:"edges"`
	Violations   []validate.Violation  `json:"violations,omitempty"`
}

func toResponse(res resolution.Result) decompositionResponse {
	out := res.Outcome
	return decompositionResponse{
		ResolutionID: res.ResolutionID,
		Word:         out.Word,
		Accepted:     out.Accepted,
		FromCache:    res.FromCache,
		Attempts:     len(out.Attempts),
		Document:     out.Document,
		Layers:       out.Document.Combinations,
		Edges:        out.Document.Edges(),
		Violations:   out.Violations,
	}
}

// Health is the liveness probe.
func Health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (h *DecompositionHandler) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error("encode response failed", slog.Any("error", err))
	}
}

func (h *DecompositionHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]any{
		"error":   true,
		"code":    status,
		"message": message,
	})
}

// errorStatus maps service errors onto HTTP statuses: bad input is the
// caller's fault, generator failures are an upstream problem.
func errorStatus(err error) int {
	var te *resolve.TransportError
	switch {
	case errors.Is(err, resolution.ErrEmptyWord):
		return http.StatusBadRequest
	case errors.As(err, &te):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
