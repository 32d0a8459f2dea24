package images

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"path/filepath"
	"strings"
)

// DefaultMaxBytes is the upload limit used when none is configured.
const DefaultMaxBytes int64 = 4 * 1024 * 1024

var allowedTypes = map[string]struct{}{
	"image/png":  {},
	"image/jpeg": {},
	"image/webp": {},
	"image/gif":  {},
	"image/heic": {},
	"image/heif": {},
}

// Input is an image selected by the user, validated but not yet encoded
type Input struct {
	Data     []byte
	MIMEType string
	Filename string
}

// Size returns the length of the image in bytes
func (in *Input) Size() int64 {
	return int64(len(in.Data))
}

// Payload is the transport form of an Input
type Payload struct {
	Data     string `json:"data"`
	MIMEType string `json:"mime_type"`
}

// DataURL renders the payload as a data URL, e.g. data:image/png;base64,...
func (p Payload) DataURL() string {
	return "data:" + p.MIMEType + ";base64," + p.Data
}

var (
	ErrTooLarge        = errors.New("file too large")
	ErrUnsupportedType = errors.New("unsupported image type")
)

// ValidationError reports an image that was rejected before encoding.
// Kind is ErrTooLarge or ErrUnsupportedType when the rejection is one of those.
type ValidationError struct {
	Reason string
	Kind   error
}

func (e *ValidationError) Error() string {
	return "invalid image: " + e.Reason
}

func (e *ValidationError) Unwrap() error {
	return e.Kind
}

// EncodingError reports a local failure to read or encode the selected file
type EncodingError struct {
	Err error
}

func (e *EncodingError) Error() string {
	if e.Err == nil {
		return "could not read the selected file"
	}
	return "could not read the selected file: " + e.Err.Error()
}

func (e *EncodingError) Unwrap() error {
	return e.Err
}

var extensionTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".webp": "image/webp",
	".gif":  "image/gif",
	".heic": "image/heic",
	".heif": "image/heif",
}

// TypeForFilename returns the image type implied by the file extension, or ""
func TypeForFilename(filename string) string {
	return extensionTypes[strings.ToLower(filepath.Ext(filename))]
}

// Allowed reports whether mimeType is an accepted image type
func Allowed(mimeType string) bool {
	_, ok := allowedTypes[normalizeType(mimeType)]
	return ok
}

func normalizeType(mimeType string) string {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.Index(mimeType, ";"); i != -1 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	if mimeType == "image/jpg" {
		return "image/jpeg"
	}
	return mimeType
}

// NewInput validates raw image bytes. When mimeType is empty or generic the
// type is sniffed from the data.
func NewInput(data []byte, mimeType, filename string, maxBytes int64) (*Input, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if len(data) == 0 {
		return nil, &ValidationError{Reason: "file is empty"}
	}
	if int64(len(data)) > maxBytes {
		return nil, &ValidationError{Reason: fmt.Sprintf("file too large (max %d bytes)", maxBytes), Kind: ErrTooLarge}
	}

	mimeType = normalizeType(mimeType)
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = normalizeType(http.DetectContentType(data))
	}
	if !Allowed(mimeType) {
		return nil, &ValidationError{Reason: fmt.Sprintf("unsupported image type %q", mimeType), Kind: ErrUnsupportedType}
	}

	return &Input{
		Data:     data,
		MIMEType: mimeType,
		Filename: filename,
	}, nil
}

// ReadInput reads at most maxBytes from r and validates the result
func ReadInput(r io.Reader, mimeType, filename string, maxBytes int64) (*Input, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}

	// Read one byte past the limit so oversized files can be told apart
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, &EncodingError{Err: err}
	}

	return NewInput(data, mimeType, filename, maxBytes)
}

// Encode converts an Input into its base64 payload
func Encode(in *Input) (Payload, error) {
	if in == nil {
		return Payload{}, &EncodingError{Err: errors.New("no image selected")}
	}

	encoded := base64.StdEncoding.EncodeToString(in.Data)
	if encoded == "" {
		return Payload{}, &EncodingError{Err: errors.New("encoded image is empty")}
	}

	return Payload{Data: encoded, MIMEType: in.MIMEType}, nil
}

// Decode reverses Encode
func Decode(p Payload) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(p.Data)
	if err != nil {
		return nil, &EncodingError{Err: err}
	}
	return data, nil
}

// Dimensions returns the pixel size of the image for the formats the
// standard decoders understand.
func Dimensions(in *Input) (int, int, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(in.Data))
	if err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}
