package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/lehigh-university-libraries/transcribe/internal/models"
)

var (
	validate = validator.New()
	fenced   = regexp.MustCompile("(?s)```[a-zA-Z]*\\s*\\n?(.*?)\\s*```")
)

type envelope struct {
	Status         string               `json:"status" validate:"required,eq=success"`
	ExtractedText  *envelopeExtraction  `json:"extracted_text" validate:"required"`
	TranslatedText *envelopeTranslation `json:"translated_text" validate:"required"`
	Metadata       *envelopeMetadata    `json:"metadata" validate:"required"`
}

type envelopeExtraction struct {
	OriginalLanguage string  `json:"original_language"`
	RawText          *string `json:"raw_text" validate:"required"`
	StructuredText   string  `json:"structured_text"`
}

type envelopeTranslation struct {
	Language string  `json:"language" validate:"required"`
	Content  *string `json:"content" validate:"required"`
}

type envelopeMetadata struct {
	Confidence        string   `json:"confidence" validate:"required,oneof=high medium low"`
	UnclearSections   []string `json:"unclear_sections"`
	DetectedLanguages []string `json:"detected_languages"`
}

// StripFence removes a markdown code fence around a model reply, if any
func StripFence(response string) string {
	response = strings.TrimSpace(response)

	if strings.HasPrefix(response, "```") {
		body := strings.TrimPrefix(response, "```")
		if i := strings.IndexByte(body, '\n'); i != -1 {
			body = body[i+1:]
		} else {
			body = strings.TrimLeftFunc(body, isLetter)
		}
		if i := strings.LastIndex(body, "```"); i != -1 {
			body = body[:i]
		}
		return strings.TrimSpace(body)
	}

	// Prose before the fenced block
	if !strings.HasPrefix(response, "{") {
		if m := fenced.FindStringSubmatch(response); m != nil {
			return strings.TrimSpace(m[1])
		}
	}

	return response
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

// ParseEnvelope decodes the JSON reply of the combined extract+translate
// call. It returns a fully populated result or a *ResponseFormatError.
func ParseEnvelope(raw string) (models.OCRResult, error) {
	body := StripFence(raw)
	if body == "" {
		return models.OCRResult{}, &ResponseFormatError{Raw: raw, Err: errors.New("empty response")}
	}

	var env envelope
	if err := json.Unmarshal([]byte(body), &env); err != nil {
		return models.OCRResult{}, &ResponseFormatError{Raw: raw, Err: fmt.Errorf("invalid JSON: %w", err)}
	}

	if err := validate.Struct(&env); err != nil {
		return models.OCRResult{}, &ResponseFormatError{Raw: raw, Err: describeValidation(err)}
	}

	return models.OCRResult{
		Extraction: models.ExtractionResult{
			RawText:           strings.TrimSpace(*env.ExtractedText.RawText),
			StructuredText:    strings.TrimSpace(env.ExtractedText.StructuredText),
			SourceLanguage:    env.ExtractedText.OriginalLanguage,
			Confidence:        env.Metadata.Confidence,
			UnclearSections:   env.Metadata.UnclearSections,
			DetectedLanguages: env.Metadata.DetectedLanguages,
		},
		Translation: models.TranslationResult{
			Language: env.TranslatedText.Language,
			Text:     strings.TrimSpace(*env.TranslatedText.Content),
		},
	}, nil
}

func describeValidation(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		switch e.Tag() {
		case "required":
			msgs = append(msgs, e.Namespace()+" is required")
		case "eq":
			msgs = append(msgs, fmt.Sprintf("%s must be %q, got %q", e.Namespace(), e.Param(), e.Value()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of: %s", e.Namespace(), e.Param()))
		default:
			msgs = append(msgs, e.Namespace()+" is invalid")
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}
