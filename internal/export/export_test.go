package export

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/lehigh-university-libraries/transcribe/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func sampleRecords() []Record {
	return []Record{
		{Filename: "a.png", MIMEType: "image/png", Size: 10, RawText: "Hello World", TargetLanguage: "Spanish", TranslatedText: "Hola Mundo", Confidence: "high"},
		{Filename: "b.jpg", MIMEType: "image/jpeg", Size: 20, TargetLanguage: "Spanish", Error: "quota exceeded"},
	}
}

func TestFromSnapshot(t *testing.T) {
	snap := models.Snapshot{
		Phase:          "translated_ready",
		TargetLanguage: "French",
		Image:          &models.ImageInfo{Filename: "scan.png", MIMEType: "image/png", Size: 42},
		Extraction:     &models.ExtractionResult{RawText: "Hello", SourceLanguage: "English", Confidence: "medium"},
		Translation:    &models.TranslationResult{Language: "French", Text: "Bonjour"},
	}

	r := FromSnapshot(snap)
	assert.Equal(t, "scan.png", r.Filename)
	assert.Equal(t, int64(42), r.Size)
	assert.Equal(t, "Hello", r.RawText)
	assert.Equal(t, "English", r.SourceLanguage)
	assert.Equal(t, "Bonjour", r.TranslatedText)
	assert.Equal(t, "French", r.TargetLanguage)
	assert.Empty(t, r.Error)

	failed := FromSnapshot(models.Snapshot{TargetLanguage: "German", Error: "boom"})
	assert.Equal(t, "boom", failed.Error)
	assert.Empty(t, failed.Filename)
}

func TestWriteParquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "results.parquet")
	require.NoError(t, Write(path, Report{Results: sampleRecords()}))

	got, err := ReadParquet(path)
	require.NoError(t, err)
	assert.Equal(t, sampleRecords(), got)
}

func TestWriteYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.yaml")
	report := Report{
		Config:  NewConfig("gemini", "gemini-2.5-flash", "Spanish", "scans/"),
		Results: sampleRecords(),
	}
	require.NoError(t, Write(path, report))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "translated_text: Hola Mundo")

	var decoded Report
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	assert.Equal(t, report, decoded)
}

func TestWriteUnsupportedFormat(t *testing.T) {
	err := Write(filepath.Join(t.TempDir(), "results.csv"), Report{})
	assert.ErrorContains(t, err, "unsupported output format")
}
