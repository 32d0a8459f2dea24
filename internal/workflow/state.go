package workflow

import (
	"errors"
	"time"

	"github.com/lehigh-university-libraries/transcribe/internal/models"
)

// Phase is the position of a workflow in its state machine
type Phase int

const (
	Idle Phase = iota
	Extracting
	ExtractedReady
	Translating
	TranslatedReady
	Failed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Extracting:
		return "extracting"
	case ExtractedReady:
		return "extracted_ready"
	case Translating:
		return "translating"
	case TranslatedReady:
		return "translated_ready"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Busy reports whether a provider call is outstanding in this phase
func (p Phase) Busy() bool {
	return p == Extracting || p == Translating
}

// ErrSuperseded is returned when a response arrives after the image it was
// requested for has been replaced or cleared. The response is dropped.
var ErrSuperseded = errors.New("result discarded: the image changed while the request was in flight")

// PreconditionError rejects an action requested out of order. The state is
// left untouched and no provider call is made.
type PreconditionError struct {
	Action string
	Reason string
}

func (e *PreconditionError) Error() string {
	return e.Action + ": " + e.Reason
}

// State is an immutable copy of a controller's state
type State struct {
	Phase          Phase
	Generation     uint64
	Image          *models.ImageInfo
	TargetLanguage string
	Extraction     *models.ExtractionResult
	Translation    *models.TranslationResult
	// Err is the user facing message of the last failure
	Err       string
	UpdatedAt time.Time
}

// HasImage reports whether an image is selected
func (s State) HasImage() bool {
	return s.Image != nil
}

// ExtractedText returns the extracted raw text, or empty
func (s State) ExtractedText() string {
	if s.Extraction == nil {
		return ""
	}
	return s.Extraction.RawText
}

// TranslatedText returns the translated text, or empty
func (s State) TranslatedText() string {
	if s.Translation == nil {
		return ""
	}
	return s.Translation.Text
}

// Snapshot renders the state for clients
func (s State) Snapshot(id string) models.Snapshot {
	return models.Snapshot{
		ID:             id,
		Phase:          s.Phase.String(),
		Generation:     s.Generation,
		Image:          s.Image,
		TargetLanguage: s.TargetLanguage,
		Extraction:     s.Extraction,
		Translation:    s.Translation,
		Error:          s.Err,
		UpdatedAt:      s.UpdatedAt,
	}
}
