package evaluation

import (
	"math"
	"testing"
	"time"
)

func TestCompare(t *testing.T) {
	tests := []struct {
		name           string
		reference      string
		extracted      string
		wantDistance   int
		wantSimilarity float64
	}{
		{name: "identical", reference: "Hello World", extracted: "Hello World", wantDistance: 0, wantSimilarity: 1.0},
		{name: "whitespace and case ignored", reference: "Hello\n  World", extracted: "hello world", wantDistance: 0, wantSimilarity: 1.0},
		{name: "one substitution", reference: "kitten", extracted: "sitten", wantDistance: 1, wantSimilarity: 1 - 1.0/6},
		{name: "classic", reference: "kitten", extracted: "sitting", wantDistance: 3, wantSimilarity: 1 - 3.0/7},
		{name: "runes not bytes", reference: "señor", extracted: "senor", wantDistance: 1, wantSimilarity: 0.8},
		{name: "nothing extracted", reference: "abc", extracted: "", wantDistance: 3, wantSimilarity: 0},
		{name: "both empty", reference: "", extracted: "  ", wantDistance: 0, wantSimilarity: 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compare(tt.reference, tt.extracted)
			if got.Distance != tt.wantDistance {
				t.Errorf("Distance = %d, want %d", got.Distance, tt.wantDistance)
			}
			if math.Abs(got.Similarity-tt.wantSimilarity) > 1e-9 {
				t.Errorf("Similarity = %f, want %f", got.Similarity, tt.wantSimilarity)
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	outcomes := []Outcome{
		{Score: &Score{Similarity: 0.9}, Duration: 2 * time.Second},
		{Score: &Score{Similarity: 0.5}, Duration: 4 * time.Second},
		{Duration: 3 * time.Second},
		{Failed: true, Duration: time.Second},
	}

	sum := Summarize(outcomes)

	if sum.Total != 4 || sum.Succeeded != 3 || sum.Failed != 1 || sum.Scored != 2 {
		t.Errorf("counts = %+v", sum)
	}
	if math.Abs(sum.MeanSimilarity-0.7) > 1e-9 {
		t.Errorf("MeanSimilarity = %f, want 0.7", sum.MeanSimilarity)
	}
	if sum.MinSimilarity != 0.5 {
		t.Errorf("MinSimilarity = %f, want 0.5", sum.MinSimilarity)
	}
	if sum.AverageDuration != 3*time.Second {
		t.Errorf("AverageDuration = %s, want 3s", sum.AverageDuration)
	}
	if sum.TotalDuration != 10*time.Second {
		t.Errorf("TotalDuration = %s, want 10s", sum.TotalDuration)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	sum := Summarize(nil)
	if sum != (Summary{}) {
		t.Errorf("Summarize(nil) = %+v, want zero", sum)
	}
}
