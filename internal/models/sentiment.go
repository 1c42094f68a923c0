package models

import (
	"fmt"
	"strings"
)

type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "POSITIVE"
	SentimentNegative SentimentLabel = "NEGATIVE"
	SentimentNeutral  SentimentLabel = "NEUTRAL"
	SentimentMixed    SentimentLabel = "MIXED"
)

// SentimentLabels is the fixed category set every SentimentResult is scored against.
var SentimentLabels = []SentimentLabel{
	SentimentPositive,
	SentimentNegative,
	SentimentNeutral,
	SentimentMixed,
}

// ParseSentimentLabel accepts any casing of a known label.
func ParseSentimentLabel(raw string) (SentimentLabel, error) {
	label := SentimentLabel(strings.ToUpper(strings.TrimSpace(raw)))
	for _, known := range SentimentLabels {
		if label == known {
			return label, nil
		}
	}
	return "", fmt.Errorf("unknown sentiment label %q", raw)
}

// SentimentResult is the categorical sentiment of a text plus the service's confidence per category.
type SentimentResult struct {
	Label  SentimentLabel             `json:"sentiment"`
	Scores map[SentimentLabel]float64 `json:"sentimentScore"`
}

// Validate checks the label is known and that there is exactly one score per category.
func (s *SentimentResult) Validate() error {
	if _, err := ParseSentimentLabel(string(s.Label)); err != nil {
		return err
	}
	if len(s.Scores) != len(SentimentLabels) {
		return fmt.Errorf("expected %d sentiment scores, got %d", len(SentimentLabels), len(s.Scores))
	}
	for _, label := range SentimentLabels {
		if _, ok := s.Scores[label]; !ok {
			return fmt.Errorf("missing score for sentiment %s", label)
		}
	}
	return nil
}
