package models

import "time"

// Confidence levels reported by the combined extract+translate call
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// ExtractionResult is the text read from an image
type ExtractionResult struct {
	RawText           string   `json:"raw_text" yaml:"raw_text"`
	StructuredText    string   `json:"structured_text,omitempty" yaml:"structured_text,omitempty"`
	SourceLanguage    string   `json:"source_language,omitempty" yaml:"source_language,omitempty"`
	Confidence        string   `json:"confidence,omitempty" yaml:"confidence,omitempty"`
	UnclearSections   []string `json:"unclear_sections,omitempty" yaml:"unclear_sections,omitempty"`
	DetectedLanguages []string `json:"detected_languages,omitempty" yaml:"detected_languages,omitempty"`
}

// Empty reports whether no text was extracted
func (r *ExtractionResult) Empty() bool {
	return r == nil || r.RawText == ""
}

// TranslationResult is extracted text rendered in a target language
type TranslationResult struct {
	Language string `json:"language" yaml:"language"`
	Text     string `json:"text" yaml:"text"`
}

// OCRResult is the output of a single extract+translate round trip
type OCRResult struct {
	Extraction  ExtractionResult  `json:"extraction" yaml:"extraction"`
	Translation TranslationResult `json:"translation" yaml:"translation"`
}

// ImageInfo describes the image currently selected in a session
type ImageInfo struct {
	Filename string `json:"filename" yaml:"filename"`
	MIMEType string `json:"mime_type" yaml:"mime_type"`
	Size     int64  `json:"size" yaml:"size"`
	Width    int    `json:"width,omitempty" yaml:"width,omitempty"`
	Height   int    `json:"height,omitempty" yaml:"height,omitempty"`
}

// Snapshot is the read-only view of a workflow rendered to clients
type Snapshot struct {
	ID             string             `json:"id,omitempty" yaml:"id,omitempty"`
	Phase          string             `json:"phase" yaml:"phase"`
	Generation     uint64             `json:"generation" yaml:"generation"`
	Image          *ImageInfo         `json:"image,omitempty" yaml:"image,omitempty"`
	TargetLanguage string             `json:"target_language" yaml:"target_language"`
	Extraction     *ExtractionResult  `json:"extraction,omitempty" yaml:"extraction,omitempty"`
	Translation    *TranslationResult `json:"translation,omitempty" yaml:"translation,omitempty"`
	Error          string             `json:"error,omitempty" yaml:"error,omitempty"`
	UpdatedAt      time.Time          `json:"updated_at" yaml:"updated_at"`
}
