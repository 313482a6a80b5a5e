package services

import (
	"regexp"
	"strings"

	"civicpulse-be/models"
)

// SentimentAnalyzer is the pluggable sentiment primitive. Polarity returns a
// value in [-1, 1]; only negative polarity contributes to severity.
type SentimentAnalyzer interface {
	Polarity(text string) float64
}

// TextSignal is the derived priority class and severity score for a
// description.
type TextSignal struct {
	Priority models.IssuePriority `json:"priority"`
	Severity float64              `json:"severity"`
}

// Urgency vocabulary: hazardous-material terms score higher than routine
// cleanup terms, which sit in the low set and subtract from the score.
var (
	highUrgencyKeywords = []string{
		"urgent", "emergency", "danger", "dangerous", "critical", "severe",
		"serious", "accident", "injury", "unsafe", "hazard", "hazardous",
		"health hazard", "toxic", "toxic chemical", "chemical", "contaminated",
		"sewage", "gas", "leak", "leaking", "explosion", "fire", "flood",
		"flooding", "collapsed", "trapped", "blocking", "blocked", "dumped",
		"spill", "immediately", "asap",
	}
	mediumUrgencyKeywords = []string{
		"problem", "issue", "concern", "trouble", "inconvenience", "annoying",
		"slow", "delayed", "waiting", "crowded", "noisy", "dirty", "messy",
		"smelly", "overflowing", "broken", "damaged", "dark",
	}
	lowUrgencyKeywords = []string{
		"minor", "small", "little", "slight", "suggestion", "improvement",
		"cleanup", "sweeping", "maintenance", "routine", "regular", "normal",
		"planned", "cosmetic", "faded",
	}
)

var urgencyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(urgent|emergency|asap|immediately|now|quickly|fast)\b`),
	regexp.MustCompile(`\b\d+\s*(hours?|days?|minutes?|weeks?)\b`),
	regexp.MustCompile(`\b(blocking|blocked|stuck|trapped|flooding|overflowing)\b`),
	regexp.MustCompile(`\b(accident|injury|danger|dangerous|harm|hazard|hazardous)\b`),
	regexp.MustCompile(`\b(toxic|chemical|gas|sewage|contaminated|spill|dumped)\b`),
	regexp.MustCompile(`\b(health hazard|safety risk|public safety)\b`),
	regexp.MustCompile(`!{2,}`),
	regexp.MustCompile(`\b(very|extremely|highly|severely)\b`),
}

var keywordPatterns = buildKeywordPatterns()

func buildKeywordPatterns() map[string]*regexp.Regexp {
	patterns := make(map[string]*regexp.Regexp)
	for _, set := range [][]string{highUrgencyKeywords, mediumUrgencyKeywords, lowUrgencyKeywords} {
		for _, kw := range set {
			patterns[kw] = regexp.MustCompile(`\b` + regexp.QuoteMeta(kw) + `\b`)
		}
	}
	return patterns
}

// TextSignalExtractor derives priority and severity from free-form
// description text via keyword, sentiment and urgency heuristics.
type TextSignalExtractor struct {
	sentiment SentimentAnalyzer
}

func NewTextSignalExtractor(sentiment SentimentAnalyzer) *TextSignalExtractor {
	return &TextSignalExtractor{sentiment: sentiment}
}

// Score returns the severity score in [0, 1] and the priority class derived
// from it. An empty description yields the explicit default of priority
// medium and severity 0.5.
func (x *TextSignalExtractor) Score(description string) TextSignal {
	if strings.TrimSpace(description) == "" {
		return TextSignal{Priority: models.PriorityMedium, Severity: 0.5}
	}

	text := strings.ToLower(description)

	highCount := countKeywords(text, highUrgencyKeywords)
	mediumCount := countKeywords(text, mediumUrgencyKeywords)
	lowCount := countKeywords(text, lowUrgencyKeywords)

	keywordScore := (0.4*float64(highCount) + 0.2*float64(mediumCount) - 0.1*float64(lowCount)) / 5.0
	keywordScore = clamp01(keywordScore)

	sentimentScore := 0.0
	if p := x.sentiment.Polarity(text); p < 0 {
		sentimentScore = -p
	}

	urgencyScore := 0.0
	for _, pattern := range urgencyPatterns {
		urgencyScore += float64(len(pattern.FindAllString(text, -1))) * 0.1
	}
	if urgencyScore > 1.0 {
		urgencyScore = 1.0
	}

	total := clamp01(0.5*keywordScore + 0.3*sentimentScore + 0.2*urgencyScore)

	return TextSignal{Priority: priorityFor(total), Severity: total}
}

func priorityFor(score float64) models.IssuePriority {
	switch {
	case score >= 0.7:
		return models.PriorityHigh
	case score >= 0.3:
		return models.PriorityMedium
	default:
		return models.PriorityLow
	}
}

func countKeywords(text string, keywords []string) int {
	count := 0
	for _, kw := range keywords {
		count += len(keywordPatterns[kw].FindAllString(text, -1))
	}
	return count
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
