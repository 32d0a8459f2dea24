package handlers

import (
	"embed"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
)

//go:embed static
var staticFiles embed.FS

func (h *Handler) HandleStatic(w http.ResponseWriter, r *http.Request) {
	// ?image=<url> opens a new session for a remote image
	imageURL := r.URL.Query().Get("image")
	if imageURL != "" {
		sessionID, err := h.createSessionFromURL(r.Context(), imageURL, r.URL.Query().Get("language"))
		if err != nil {
			slog.Error("Failed to create session from URL", "url", imageURL, "error", err)
			http.Error(w, "Failed to process image URL: "+err.Error(), statusFor(err))
			return
		}
		http.Redirect(w, r, "/?session="+sessionID, http.StatusFound)
		return
	}

	filepath := strings.TrimPrefix(r.URL.Path, "/static/")
	filepath = strings.TrimPrefix(filepath, "/")
	if filepath == "" {
		filepath = "index.html"
	}

	if strings.Contains(filepath, "..") {
		http.Error(w, "Invalid file path", http.StatusBadRequest)
		return
	}

	root, err := fs.Sub(staticFiles, "static")
	if err != nil {
		http.Error(w, "static files unavailable", http.StatusInternalServerError)
		return
	}
	http.ServeFileFS(w, r, root, filepath)
}
