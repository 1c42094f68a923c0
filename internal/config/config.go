package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ErrInvalidConfig is wrapped by every validation failure in this package.
var ErrInvalidConfig = errors.New("invalid configuration")

// RecordMode selects which records of a notification get processed.
type RecordMode string

const (
	// RecordModeFirst processes only the first record and ignores the rest.
	RecordModeFirst RecordMode = "first"
	// RecordModeAll processes every record as an independent pipeline run.
	RecordModeAll RecordMode = "all"
)

// Pipeline holds the provider-independent settings of the insight pipeline.
type Pipeline struct {
	SourceLanguageCode string
	TargetLanguageCode string
	RecordMode         RecordMode
	RecordConcurrency  int
}

// GCP configures the Cloud Functions deployment backed by Vertex AI.
type GCP struct {
	Pipeline
	ProjectID        string
	VertexAIRegion   string
	GeminiModel      string
	MaxDocumentBytes int64
}

// AWS configures the Lambda deployment backed by Textract, Translate and Comprehend.
type AWS struct {
	Pipeline
	// Region is optional; an empty value defers to the SDK's default resolution chain.
	Region string
}

// LoadPipeline builds a Pipeline config from environment variables.
func LoadPipeline() (*Pipeline, error) {
	concurrency, err := getInt("RECORD_CONCURRENCY", 1)
	if err != nil {
		return nil, err
	}
	p := &Pipeline{
		SourceLanguageCode: normalizeCode(getEnv("SOURCE_LANGUAGE_CODE", "de")),
		TargetLanguageCode: normalizeCode(getEnv("TARGET_LANGUAGE_CODE", "en")),
		RecordMode:         RecordMode(strings.ToLower(getEnv("RECORD_MODE", string(RecordModeFirst)))),
		RecordConcurrency:  concurrency,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks the language pair and record handling settings.
func (p *Pipeline) Validate() error {
	if p.SourceLanguageCode == "" || p.TargetLanguageCode == "" {
		return fmt.Errorf("%w: SOURCE_LANGUAGE_CODE and TARGET_LANGUAGE_CODE must be set", ErrInvalidConfig)
	}
	if p.SourceLanguageCode == p.TargetLanguageCode {
		return fmt.Errorf("%w: source and target language are both %q", ErrInvalidConfig, p.SourceLanguageCode)
	}
	switch p.RecordMode {
	case RecordModeFirst, RecordModeAll:
	default:
		return fmt.Errorf("%w: RECORD_MODE must be %q or %q, got %q", ErrInvalidConfig, RecordModeFirst, RecordModeAll, p.RecordMode)
	}
	if p.RecordConcurrency <= 0 {
		return fmt.Errorf("%w: RECORD_CONCURRENCY must be positive", ErrInvalidConfig)
	}
	return nil
}

// LoadGCP builds a GCP config from environment variables.
func LoadGCP() (*GCP, error) {
	pipeline, err := LoadPipeline()
	if err != nil {
		return nil, err
	}
	maxBytes, err := getInt("MAX_DOCUMENT_BYTES", 20<<20)
	if err != nil {
		return nil, err
	}

	c := &GCP{
		Pipeline:         *pipeline,
		ProjectID:        getEnv("PROJECT_ID", ""),
		VertexAIRegion:   getEnv("VERTEX_AI_REGION", "us-central1"),
		GeminiModel:      getEnv("GEMINI_MODEL", "gemini-1.5-pro"),
		MaxDocumentBytes: int64(maxBytes),
	}
	if c.ProjectID == "" {
		return nil, fmt.Errorf("%w: PROJECT_ID environment variable must be set", ErrInvalidConfig)
	}
	if c.MaxDocumentBytes <= 0 {
		return nil, fmt.Errorf("%w: MAX_DOCUMENT_BYTES must be positive", ErrInvalidConfig)
	}
	return c, nil
}

// LoadAWS builds an AWS config from environment variables.
func LoadAWS() (*AWS, error) {
	pipeline, err := LoadPipeline()
	if err != nil {
		return nil, err
	}
	return &AWS{
		Pipeline: *pipeline,
		Region:   getEnv("AWS_REGION", ""),
	}, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

// getInt returns fallback when key is unset, and an error when it is set but not an integer.
func getInt(key string, fallback int) (int, error) {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer, got %q", ErrInvalidConfig, key, v)
	}
	return parsed, nil
}

func normalizeCode(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}
