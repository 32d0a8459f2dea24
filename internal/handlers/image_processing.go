package handlers

import (
	"context"
	"log/slog"
)

// createSessionFromURL downloads an image into a new session and returns its id
func (h *Handler) createSessionFromURL(ctx context.Context, imageURL, lang string) (string, error) {
	lang, err := resolveLanguage(lang)
	if err != nil {
		return "", err
	}

	in, err := h.fetcher.Fetch(ctx, imageURL)
	if err != nil {
		return "", err
	}

	session := h.newSession(lang)
	if err := session.Controller.SelectImage(in); err != nil {
		return "", err
	}
	h.sessionStore.Set(session)

	slog.Info("Session created from URL", "session", session.ID, "url", imageURL)
	return session.ID, nil
}
