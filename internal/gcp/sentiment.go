package gcp

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/vertexai/genai"
	"github.com/Lllllllleong/documentinsight/internal/models"
)

// SentimentDetector classifies text sentiment with Gemini.
type SentimentDetector struct {
	model ContentGenerator
}

func NewSentimentDetector(model ContentGenerator) *SentimentDetector {
	return &SentimentDetector{model: model}
}

// sentimentResponse is the JSON object the sentiment prompt asks for.
type sentimentResponse struct {
	Sentiment      string             `json:"sentiment"`
	SentimentScore map[string]float64 `json:"sentimentScore"`
}

func (d *SentimentDetector) DetectSentiment(ctx context.Context, text, languageCode string) (*models.SentimentResult, error) {
	prompt := fmt.Sprintf(SentimentUserPrompt, languageCode, text)
	resp, err := d.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("failed to detect sentiment with gemini: %w", err)
	}

	raw := responseText(resp)
	if raw == "" {
		return nil, fmt.Errorf("gemini returned an empty response instead of JSON")
	}
	var parsed sentimentResponse
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse sentiment JSON from model: %w", err)
	}

	label, err := models.ParseSentimentLabel(parsed.Sentiment)
	if err != nil {
		return nil, err
	}
	result := &models.SentimentResult{
		Label:  label,
		Scores: make(map[models.SentimentLabel]float64, len(parsed.SentimentScore)),
	}
	for k, v := range parsed.SentimentScore {
		scoreLabel, err := models.ParseSentimentLabel(k)
		if err != nil {
			return nil, fmt.Errorf("sentimentScore: %w", err)
		}
		result.Scores[scoreLabel] = v
	}
	if err := result.Validate(); err != nil {
		return nil, err
	}
	return result, nil
}
