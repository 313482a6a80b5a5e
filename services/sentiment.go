package services

import (
	"strings"

	"github.com/jonreiter/govader"
)

// VaderSentiment backs the sentiment primitive with the VADER lexicon. This
// is the analyzer wired in production.
type VaderSentiment struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

func NewVaderSentiment() *VaderSentiment {
	return &VaderSentiment{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

func (v *VaderSentiment) Polarity(text string) float64 {
	return v.analyzer.PolarityScores(text).Compound
}

// LexiconSentiment is a deterministic word-count analyzer over a small
// civic-complaint vocabulary. It needs no model data and is the analyzer of
// choice for tests and offline runs.
type LexiconSentiment struct{}

var (
	positiveWords = []string{
		"good", "great", "thanks", "thank", "appreciate", "excellent",
		"resolved", "fixed", "clean", "improved",
	}
	negativeWords = []string{
		"bad", "worst", "terrible", "awful", "angry", "frustrated",
		"disgusting", "filthy", "urgent", "toxic", "hazard", "hazardous",
		"danger", "dangerous", "unsafe", "stinking", "broken",
	}
)

// Polarity returns (positive hits − negative hits) / 3 clamped to [-1, 1].
func (LexiconSentiment) Polarity(text string) float64 {
	lower := strings.ToLower(text)
	tokens := tokenSet(lower)

	score := 0
	for _, w := range positiveWords {
		if hasToken(tokens, lower, w) {
			score++
		}
	}
	for _, w := range negativeWords {
		if hasToken(tokens, lower, w) {
			score--
		}
	}

	polarity := float64(score) / 3.0
	if polarity > 1 {
		return 1
	}
	if polarity < -1 {
		return -1
	}
	return polarity
}

// hasToken matches whole tokens but tolerates trailing punctuation the
// whitespace tokenizer leaves attached ("hazard!!").
func hasToken(tokens map[string]struct{}, text, word string) bool {
	if _, ok := tokens[word]; ok {
		return true
	}
	for token := range tokens {
		if strings.TrimRight(token, ".,!?:;") == word {
			return true
		}
	}
	return false
}
