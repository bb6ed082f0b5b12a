package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"etymograph/internal/gateway/service/resolution"
)

// Create runs a resolution synchronously and responds with the terminal
// outcome: the accepted document, or the last rejected one flagged
// accepted=false when the attempt budget ran out.
func (h *DecompositionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req wordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "request body must be JSON with a word field")
		return
	}

	res, err := h.svc.Decompose(r.Context(), req.Word)
	if err != nil {
		h.respondError(w, errorStatus(err), err.Error())
		return
	}
	h.respondJSON(w, http.StatusOK, toResponse(res))
}

// Start kicks off a background resolution and returns its watch id.
func (h *DecompositionHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req wordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "request body must be JSON with a word field")
		return
	}

	res, err := h.svc.Start(req.Word)
	if err != nil {
		h.respondError(w, errorStatus(err), err.Error())
		return
	}
	h.respondJSON(w, http.StatusAccepted, map[string]string{
		"resolutionId": res.ResolutionID,
		"word":         strings.TrimSpace(req.Word),
	})
}

// GetByWord serves a previously accepted decomposition from the cache.
func (h *DecompositionHandler) GetByWord(w http.ResponseWriter, r *http.Request) {
	word := chi.URLParam(r, "word")
	out, ok := h.svc.Lookup(word)
	if !ok {
		h.respondError(w, http.StatusNotFound, "no accepted decomposition for that word")
		return
	}
	h.respondJSON(w, http.StatusOK, toResponse(resolution.Result{FromCache: true, Outcome: out}))
}
