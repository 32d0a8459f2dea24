package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/lehigh-university-libraries/transcribe/internal/images"
)

type urlUploadRequest struct {
	ImageURL string `json:"image_url"`
	Language string `json:"language"`
}

// readImage accepts either a multipart upload in the "file" or "files"
// field, or a JSON body naming an image_url. The returned language is the
// optional "language" value of the request.
func (h *Handler) readImage(w http.ResponseWriter, r *http.Request) (*images.Input, string, error) {
	contentType := r.Header.Get("Content-Type")
	if strings.Contains(contentType, "application/json") {
		return h.readImageURL(r)
	}
	return h.readImageFile(w, r)
}

func (h *Handler) readImageURL(r *http.Request) (*images.Input, string, error) {
	var request urlUploadRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		return nil, "", &badRequest{msg: "Invalid JSON: " + err.Error()}
	}
	if request.ImageURL == "" {
		return nil, "", &badRequest{msg: "image_url is required"}
	}

	in, err := h.fetcher.Fetch(r.Context(), request.ImageURL)
	if err != nil {
		return nil, "", err
	}
	return in, request.Language, nil
}

func (h *Handler) readImageFile(w http.ResponseWriter, r *http.Request) (*images.Input, string, error) {
	// Leave room for the multipart framing around the file itself
	r.Body = http.MaxBytesReader(w, r.Body, h.opts.MaxUploadBytes+1<<20)

	file, header, err := r.FormFile("file")
	if err != nil {
		file, header, err = r.FormFile("files")
		if err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				return nil, "", &images.ValidationError{Reason: "file too large", Kind: images.ErrTooLarge}
			}
			return nil, "", &badRequest{msg: "Failed to read file: " + err.Error()}
		}
	}
	defer file.Close()

	in, err := images.ReadInput(file, header.Header.Get("Content-Type"), header.Filename, h.opts.MaxUploadBytes)
	if err != nil {
		return nil, "", err
	}
	return in, r.FormValue("language"), nil
}

// HandleOCR extracts and translates an uploaded image in a single call
// without keeping a session.
func (h *Handler) HandleOCR(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

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

	if err := session.Controller.RequestProcess(context.WithoutCancel(r.Context()), ""); err != nil {
		h.writeFailure(w, err, session)
		return
	}

	slog.Info("One-shot OCR complete", "filename", in.Filename, "language", lang)
	h.writeJSON(w, http.StatusOK, session.Controller.State().Snapshot(""))
}
