package handlers

import (
	"net/http"

	"github.com/lehigh-university-libraries/transcribe/internal/languages"
)

type languagesResponse struct {
	Default   string               `json:"default"`
	Languages []languages.Language `json:"languages"`
}

func (h *Handler) HandleLanguages(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.writeJSON(w, http.StatusOK, languagesResponse{
		Default:   h.opts.DefaultLanguage,
		Languages: languages.All(),
	})
}
