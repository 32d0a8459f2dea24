package evaluation

import (
	"strings"
	"time"
)

// Score compares extracted text with a reference transcription
type Score struct {
	Distance int
	// Similarity is 1 - Distance/len(longer text), from 0.0 to 1.0
	Similarity float64
}

// Compare scores extracted against reference after folding case and
// collapsing whitespace, so line wrapping differences are not penalised.
func Compare(reference, extracted string) Score {
	ref := []rune(normalize(reference))
	got := []rune(normalize(extracted))

	maxLen := len(ref)
	if len(got) > maxLen {
		maxLen = len(got)
	}
	if maxLen == 0 {
		return Score{Similarity: 1.0}
	}

	distance := levenshteinDistance(ref, got)
	return Score{
		Distance:   distance,
		Similarity: 1.0 - float64(distance)/float64(maxLen),
	}
}

func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// levenshteinDistance counts single-rune edits, keeping two rows of the matrix
func levenshteinDistance(s1, s2 []rune) int {
	if len(s1) == 0 {
		return len(s2)
	}
	if len(s2) == 0 {
		return len(s1)
	}

	prev := make([]int, len(s2)+1)
	curr := make([]int, len(s2)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(s1); i++ {
		curr[0] = i
		for j := 1; j <= len(s2); j++ {
			cost := 0
			if s1[i-1] != s2[j-1] {
				cost = 1
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[len(s2)]
}

// Outcome is what a batch run learned about one image
type Outcome struct {
	Failed   bool
	Score    *Score
	Duration time.Duration
}

// Summary aggregates the outcomes of a batch run
type Summary struct {
	Total     int
	Succeeded int
	Failed    int
	Scored    int

	MeanSimilarity float64
	MinSimilarity  float64

	AverageDuration time.Duration
	TotalDuration   time.Duration
}

// Summarize aggregates outcomes. Similarity figures cover only the scored
// successes; AverageDuration covers only successes.
func Summarize(outcomes []Outcome) Summary {
	sum := Summary{Total: len(outcomes)}

	totalSimilarity := 0.0
	var successDuration time.Duration
	for _, o := range outcomes {
		sum.TotalDuration += o.Duration

		if o.Failed {
			sum.Failed++
			continue
		}
		sum.Succeeded++
		successDuration += o.Duration

		if o.Score == nil {
			continue
		}
		if sum.Scored == 0 || o.Score.Similarity < sum.MinSimilarity {
			sum.MinSimilarity = o.Score.Similarity
		}
		sum.Scored++
		totalSimilarity += o.Score.Similarity
	}

	if sum.Succeeded > 0 {
		sum.AverageDuration = successDuration / time.Duration(sum.Succeeded)
	}
	if sum.Scored > 0 {
		sum.MeanSimilarity = totalSimilarity / float64(sum.Scored)
	}
	return sum
}
