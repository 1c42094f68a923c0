package gcp

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/vertexai/genai"
)

// --- Extractor Model Prompts ---
const ExtractorSystemPrompt = "You are a document text detection engine. You read a document and report every detected block of text together with its structural type. You must output your response as a valid JSON array."
const ExtractorUserPrompt = `Detect the text in the provided document.

Follow these rules precisely:
1.  Report the document as a flat list of blocks, in reading order.
2.  Each block is a JSON object with exactly two keys:
    - "blockType": one of "PAGE", "LINE", "WORD", "TABLE", "CELL", "KEY_VALUE_SET", "SELECTION_ELEMENT".
    - "text": the text of the block exactly as it appears. Use an empty string for blocks without text.
3.  Every visible line of text must appear as its own "LINE" block. Do not merge lines and do not translate anything.
4.  The final output MUST be a single, valid JSON array of these objects. Do not include any text before or after the JSON array.

Example output format:
[
  {"blockType": "PAGE", "text": ""},
  {"blockType": "LINE", "text": "Quartalsbericht 2024"},
  {"blockType": "TABLE", "text": "Umsatz | 1.2 Mio"}
]`

// --- Translator Model Prompts ---
const TranslatorSystemPrompt = "You are a professional translator. You translate text faithfully between languages identified by ISO 639-1 codes, preserving meaning and tone. You must output your response as a valid JSON object."
const TranslatorUserPrompt = `Translate the text between the <text> tags from language %q to language %q.

Return a single JSON object with exactly one key, "translatedText", holding the translation.
If the text is empty, return {"translatedText": ""}. Do not include any text before or after the JSON object.

<text>%s</text>`

// --- Sentiment Model Prompts ---
const SentimentSystemPrompt = "You are a sentiment analysis engine. You classify the overall sentiment of a text and report a confidence score for every sentiment category. You must output your response as a valid JSON object."
const SentimentUserPrompt = `Analyze the sentiment of the text between the <text> tags. The text is written in language %q.

Return a single JSON object with exactly two keys:
- "sentiment": one of "POSITIVE", "NEGATIVE", "NEUTRAL", "MIXED".
- "sentimentScore": an object with the keys "Positive", "Negative", "Neutral" and "Mixed", each a confidence between 0 and 1.
Do not include any text before or after the JSON object.

<text>%s</text>`

// VertexClient holds the pre-configured generative models for the three pipeline stages.
// The underlying client lives as long as the process.
type VertexClient struct {
	ExtractorModel  *genai.GenerativeModel
	TranslatorModel *genai.GenerativeModel
	SentimentModel  *genai.GenerativeModel
}

// NewVertexClient creates a new client holding all necessary models.
func NewVertexClient(ctx context.Context, projectID, region, modelName string) (*VertexClient, error) {
	if projectID == "" || region == "" || modelName == "" {
		return nil, fmt.Errorf("NewVertexClient: projectID, region and modelName cannot be empty")
	}

	baseClient, err := genai.NewClient(ctx, projectID, region)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}

	return &VertexClient{
		ExtractorModel:  newJSONModel(baseClient, modelName, ExtractorSystemPrompt),
		TranslatorModel: newJSONModel(baseClient, modelName, TranslatorSystemPrompt),
		SentimentModel:  newJSONModel(baseClient, modelName, SentimentSystemPrompt),
	}, nil
}

// newJSONModel configures a model for deterministic, JSON-only output.
func newJSONModel(client *genai.Client, modelName, systemPrompt string) *genai.GenerativeModel {
	model := client.GenerativeModel(modelName)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(systemPrompt)},
	}
	model.GenerationConfig = genai.GenerationConfig{
		ResponseMIMEType: "application/json",
		Temperature:      genai.Ptr[float32](0.0),
	}
	// Documents and opinions routinely contain strong language; blocking them would fail the run.
	model.SafetySettings = []*genai.SafetySetting{
		{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockNone},
		{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockNone},
		{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockNone},
		{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockNone},
	}
	return model
}

// ContentGenerator is the part of *genai.GenerativeModel the stage adapters use.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// responseText concatenates the text parts of the first candidate and strips code fences.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return ""
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}

	cleanJSON := strings.TrimSpace(b.String())
	cleanJSON = strings.TrimPrefix(cleanJSON, "```json")
	cleanJSON = strings.TrimPrefix(cleanJSON, "```")
	cleanJSON = strings.TrimSuffix(cleanJSON, "```")
	return strings.TrimSpace(cleanJSON)
}
