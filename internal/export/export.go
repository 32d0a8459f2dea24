package export

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/transcribe/internal/models"
	"github.com/parquet-go/parquet-go"
	"gopkg.in/yaml.v3"
)

// Config describes the run that produced a report
type Config struct {
	Provider  string `yaml:"provider"`
	Model     string `yaml:"model"`
	Language  string `yaml:"language"`
	Source    string `yaml:"source"`
	Timestamp string `yaml:"timestamp"`
}

// Record is one processed image
type Record struct {
	Filename       string `yaml:"filename" parquet:"filename"`
	MIMEType       string `yaml:"mime_type" parquet:"mime_type"`
	Size           int64  `yaml:"size" parquet:"size"`
	SourceLanguage string `yaml:"source_language,omitempty" parquet:"source_language"`
	Confidence     string `yaml:"confidence,omitempty" parquet:"confidence"`
	RawText        string `yaml:"raw_text" parquet:"raw_text"`
	StructuredText string `yaml:"structured_text,omitempty" parquet:"structured_text"`
	TargetLanguage string `yaml:"target_language" parquet:"target_language"`
	TranslatedText string `yaml:"translated_text" parquet:"translated_text"`
	Error          string `yaml:"error,omitempty" parquet:"error"`

	DurationMillis int64 `yaml:"duration_ms" parquet:"duration_ms"`

	// Set when a reference transcription was available
	ReferenceDistance   int     `yaml:"reference_distance,omitempty" parquet:"reference_distance"`
	ReferenceSimilarity float64 `yaml:"reference_similarity,omitempty" parquet:"reference_similarity"`
}

// Report is the YAML document written by Write
type Report struct {
	Config  Config   `yaml:"config"`
	Results []Record `yaml:"results"`
}

// NewConfig stamps a Config with the current time
func NewConfig(provider, model, language, source string) Config {
	return Config{
		Provider:  provider,
		Model:     model,
		Language:  language,
		Source:    source,
		Timestamp: time.Now().Format("2006-01-02_15-04-05"),
	}
}

// FromSnapshot flattens a workflow snapshot into a Record
func FromSnapshot(snap models.Snapshot) Record {
	r := Record{
		TargetLanguage: snap.TargetLanguage,
		Error:          snap.Error,
	}
	if snap.Image != nil {
		r.Filename = snap.Image.Filename
		r.MIMEType = snap.Image.MIMEType
		r.Size = snap.Image.Size
	}
	if ex := snap.Extraction; ex != nil {
		r.SourceLanguage = ex.SourceLanguage
		r.Confidence = ex.Confidence
		r.RawText = ex.RawText
		r.StructuredText = ex.StructuredText
	}
	if tr := snap.Translation; tr != nil {
		r.TranslatedText = tr.Text
		if tr.Language != "" {
			r.TargetLanguage = tr.Language
		}
	}
	return r
}

// Write saves a report, choosing the format from the file extension
func Write(path string, report Report) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".parquet":
		return WriteParquet(path, report.Results)
	case ".yaml", ".yml":
		return WriteYAML(path, report)
	default:
		return fmt.Errorf("unsupported output format: %s (supported: .parquet, .yaml)", ext)
	}
}

func WriteYAML(path string, report Report) error {
	data, err := yaml.Marshal(&report)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write YAML file: %w", err)
	}

	slog.Info("Results saved", "path", path, "records", len(report.Results))
	return nil
}

func WriteParquet(path string, records []Record) error {
	if err := parquet.WriteFile(path, records); err != nil {
		return fmt.Errorf("failed to write parquet file: %w", err)
	}

	slog.Info("Results saved", "path", path, "records", len(records))
	return nil
}

// ReadParquet loads records previously written by WriteParquet
func ReadParquet(path string) ([]Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet: %w", err)
	}

	reader := parquet.NewGenericReader[Record](pf)
	defer reader.Close()

	records := make([]Record, 0, pf.NumRows())
	rows := make([]Record, 128)
	for {
		n, err := reader.Read(rows)
		records = append(records, rows[:n]...)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read parquet rows: %w", err)
		}
	}

	slog.Debug("Read parquet file", "path", path, "records", len(records))
	return records, nil
}
