package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/lehigh-university-libraries/transcribe/internal/models"
	"github.com/lehigh-university-libraries/transcribe/internal/storage"
)

type languageRequest struct {
	Language string `json:"language"`
}

func (h *Handler) HandleSessions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		sessions := h.sessionStore.List()
		sessionList := make([]models.Snapshot, 0, len(sessions))
		for _, session := range sessions {
			sessionList = append(sessionList, session.Controller.State().Snapshot(session.ID))
		}
		h.writeJSON(w, http.StatusOK, sessionList)
	case "POST":
		h.createSession(w, r)
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) createSession(w http.ResponseWriter, r *http.Request) {
	in, lang, err := h.readImage(w, r)
	if err != nil {
		h.writeFailure(w, err, nil)
		return
	}
	lang, err = resolveLanguage(lang)
	if err != nil {
		h.writeFailure(w, err, nil)
		return
	}

	session := h.newSession(lang)
	if err := session.Controller.SelectImage(in); err != nil {
		h.writeFailure(w, err, nil)
		return
	}
	h.sessionStore.Set(session)

	slog.Info("Session created", "session", session.ID, "filename", in.Filename)
	h.writeJSON(w, http.StatusCreated, session.Controller.State().Snapshot(session.ID))
}

// HandleSessionDetail serves /api/sessions/{id} and its action sub-paths
func (h *Handler) HandleSessionDetail(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/sessions/"), "/")
	sessionID, action, _ := strings.Cut(path, "/")

	session, ok := h.getSessionOrError(w, sessionID)
	if !ok {
		return
	}

	switch action {
	case "":
		h.handleSession(w, r, session)
	case "image":
		if !h.requireMethod(w, r, http.MethodPut) {
			return
		}
		h.replaceImage(w, r, session)
	case "extract":
		if !h.requireMethod(w, r, http.MethodPost) {
			return
		}
		h.runAction(r.Context(), w, session, func(ctx context.Context) error {
			return session.Controller.RequestExtract(ctx)
		})
	case "translate", "process":
		if !h.requireMethod(w, r, http.MethodPost) {
			return
		}
		lang, err := h.readLanguage(r)
		if err != nil {
			h.writeFailure(w, err, session)
			return
		}
		h.runAction(r.Context(), w, session, func(ctx context.Context) error {
			if action == "translate" {
				return session.Controller.RequestTranslate(ctx, lang)
			}
			return session.Controller.RequestProcess(ctx, lang)
		})
	default:
		h.writeError(w, "Unknown session action: "+action, http.StatusNotFound)
	}
}

func (h *Handler) handleSession(w http.ResponseWriter, r *http.Request, session *storage.Session) {
	switch r.Method {
	case "GET":
		h.writeJSON(w, http.StatusOK, session.Controller.State().Snapshot(session.ID))
	case "DELETE":
		// Bumps the generation so an in-flight call is discarded
		session.Controller.Clear()
		h.sessionStore.Delete(session.ID)
		w.WriteHeader(http.StatusNoContent)
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) replaceImage(w http.ResponseWriter, r *http.Request, session *storage.Session) {
	in, lang, err := h.readImage(w, r)
	if err != nil {
		h.writeFailure(w, err, session)
		return
	}
	lang, err = resolveLanguage(lang)
	if err != nil {
		h.writeFailure(w, err, session)
		return
	}
	if err := session.Controller.SelectImage(in); err != nil {
		h.writeFailure(w, err, session)
		return
	}
	session.Controller.SetTargetLanguage(lang)
	h.writeJSON(w, http.StatusOK, session.Controller.State().Snapshot(session.ID))
}

// runAction performs a provider-backed step. The step keeps running if the
// client goes away so its outcome is still recorded on the session.
func (h *Handler) runAction(ctx context.Context, w http.ResponseWriter, session *storage.Session, step func(context.Context) error) {
	if err := step(context.WithoutCancel(ctx)); err != nil {
		h.writeFailure(w, err, session)
		return
	}
	h.writeJSON(w, http.StatusOK, session.Controller.State().Snapshot(session.ID))
}

// readLanguage reads an optional {"language": ...} body
func (h *Handler) readLanguage(r *http.Request) (string, error) {
	if r.Body == nil || r.ContentLength == 0 {
		return "", nil
	}
	var request languageRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		if errors.Is(err, io.EOF) {
			return "", nil
		}
		return "", &badRequest{msg: "Invalid JSON: " + err.Error()}
	}
	return resolveLanguage(request.Language)
}

func (h *Handler) requireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}
