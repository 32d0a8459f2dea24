package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/lehigh-university-libraries/transcribe/internal/gateway"
	"github.com/lehigh-university-libraries/transcribe/internal/images"
	"github.com/lehigh-university-libraries/transcribe/internal/languages"
	"github.com/lehigh-university-libraries/transcribe/internal/models"
	"github.com/lehigh-university-libraries/transcribe/internal/storage"
	"github.com/lehigh-university-libraries/transcribe/internal/workflow"
)

// Options configures the HTTP handlers
type Options struct {
	MaxUploadBytes  int64
	DefaultLanguage string

	// AllowPrivateURLs permits image URLs on loopback and private networks
	AllowPrivateURLs bool
}

type Handler struct {
	sessionStore *storage.SessionStore
	gateway      workflow.Gateway
	fetcher      *images.Fetcher
	opts         Options
}

type errorResponse struct {
	Error   string           `json:"error"`
	Session *models.Snapshot `json:"session,omitempty"`
}

// badRequest marks client input errors that are not image validation errors
type badRequest struct {
	msg string
}

func (e *badRequest) Error() string { return e.msg }

func New(gw workflow.Gateway, opts Options) *Handler {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = images.DefaultMaxBytes
	}
	if name, err := languages.Resolve(opts.DefaultLanguage); err == nil {
		opts.DefaultLanguage = name
	} else {
		if opts.DefaultLanguage != "" {
			slog.Warn("Ignoring invalid default language", "language", opts.DefaultLanguage)
		}
		opts.DefaultLanguage = "Spanish"
	}
	fetcher := images.NewFetcher(opts.MaxUploadBytes)
	fetcher.AllowPrivate = opts.AllowPrivateURLs
	return &Handler{
		sessionStore: storage.New(),
		gateway:      gw,
		fetcher:      fetcher,
		opts:         opts,
	}
}

// Routes registers every endpoint on a new mux
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/sessions", h.HandleSessions)
	mux.HandleFunc("/api/sessions/", h.HandleSessionDetail)
	mux.HandleFunc("/api/ocr", h.HandleOCR)
	mux.HandleFunc("/api/languages", h.HandleLanguages)
	mux.HandleFunc("/", h.HandleStatic)
	mux.HandleFunc("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			slog.Error("Unable to write healthcheck", "err", err)
		}
	})
	return mux
}

// PruneSessions drops sessions idle for longer than ttl
func (h *Handler) PruneSessions(ttl time.Duration) int {
	removed := h.sessionStore.Prune(time.Now().Add(-ttl))
	if removed > 0 {
		slog.Info("Pruned idle sessions", "removed", removed)
	}
	return removed
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	slog.Error(message)
	h.writeJSON(w, code, errorResponse{Error: message})
}

// writeFailure maps a workflow error onto an HTTP status and includes the
// session state when there is one.
func (h *Handler) writeFailure(w http.ResponseWriter, err error, session *storage.Session) {
	status := statusFor(err)
	resp := errorResponse{Error: workflow.UserMessage(err)}
	if session != nil {
		snap := session.Controller.State().Snapshot(session.ID)
		resp.Session = &snap
	}
	if status >= http.StatusInternalServerError {
		slog.Error("Request failed", "status", status, "error", err)
	} else {
		slog.Warn("Request rejected", "status", status, "error", err)
	}
	h.writeJSON(w, status, resp)
}

func statusFor(err error) int {
	var (
		validationErr *images.ValidationError
		encodingErr   *images.EncodingError
		badReq        *badRequest
		preErr        *workflow.PreconditionError
		configErr     *gateway.ConfigurationError
		gatewayErr    *gateway.GatewayError
		formatErr     *gateway.ResponseFormatError
		maxBytesErr   *http.MaxBytesError
	)

	switch {
	case errors.As(err, &maxBytesErr), errors.Is(err, images.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, images.ErrUnsupportedType):
		return http.StatusUnsupportedMediaType
	case errors.As(err, &validationErr), errors.As(err, &encodingErr), errors.As(err, &badReq):
		return http.StatusBadRequest
	case errors.As(err, &preErr), errors.Is(err, workflow.ErrSuperseded):
		return http.StatusConflict
	case errors.As(err, &configErr):
		return http.StatusInternalServerError
	case errors.As(err, &gatewayErr), errors.As(err, &formatErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Session helpers
func (h *Handler) getSessionOrError(w http.ResponseWriter, sessionID string) (*storage.Session, bool) {
	session, exists := h.sessionStore.Get(sessionID)
	if !exists {
		h.writeError(w, "Session not found", http.StatusNotFound)
		return nil, false
	}
	return session, true
}

func (h *Handler) newSession(lang string) *storage.Session {
	if lang == "" {
		lang = h.opts.DefaultLanguage
	}
	return &storage.Session{
		ID:         uuid.NewString(),
		CreatedAt:  time.Now(),
		Controller: workflow.New(h.gateway, workflow.WithTargetLanguage(lang)),
	}
}

// resolveLanguage returns "" for empty input so the session default applies
func resolveLanguage(lang string) (string, error) {
	if lang == "" {
		return "", nil
	}
	name, err := languages.Resolve(lang)
	if err != nil {
		return "", &badRequest{msg: err.Error()}
	}
	return name, nil
}
