package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"etymograph/internal/morph"
)

// SearchByMorpheme lists the indexed words whose decomposition contains
// the morpheme in the path. An unknown morpheme yields an empty list,
// not a 404: the index answers "which words", and "none" is an answer.
func (h *DecompositionHandler) SearchByMorpheme(w http.ResponseWriter, r *http.Request) {
	normalized := morph.NormalizeWord(chi.URLParam(r, "text"))
	if normalized == "" {
		h.respondError(w, http.StatusBadRequest, "morpheme must contain at least one letter")
		return
	}

	words := h.svc.Search(normalized)
	if words == nil {
		words = []string{}
	}
	h.respondJSON(w, http.StatusOK, map[string]any{
		"morpheme": normalized,
		"words":    words,
	})
}
