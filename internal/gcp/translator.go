package gcp

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/vertexai/genai"
)

// Translator translates text with Gemini.
type Translator struct {
	model ContentGenerator
}

func NewTranslator(model ContentGenerator) *Translator {
	return &Translator{model: model}
}

// TranslateText sends the text as-is, including the empty string.
func (t *Translator) TranslateText(ctx context.Context, text, sourceLanguageCode, targetLanguageCode string) (string, error) {
	prompt := fmt.Sprintf(TranslatorUserPrompt, sourceLanguageCode, targetLanguageCode, text)
	resp, err := t.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to translate with gemini: %w", err)
	}

	raw := responseText(resp)
	if raw == "" {
		return "", fmt.Errorf("gemini returned an empty response instead of JSON")
	}
	var out struct {
		TranslatedText *string `json:"translatedText"`
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return "", fmt.Errorf("failed to parse translation JSON from model: %w", err)
	}
	if out.TranslatedText == nil {
		return "", fmt.Errorf("translation response has no translatedText field")
	}
	return *out.TranslatedText, nil
}
