package models

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// DocumentReference identifies a stored document for the duration of one invocation.
type DocumentReference struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
}

// URI renders the reference with the given storage scheme, e.g. "gs" or "s3".
func (r DocumentReference) URI(scheme string) string {
	return fmt.Sprintf("%s://%s/%s", scheme, r.Bucket, r.Key)
}

// FragmentType is the structural tag the extraction service puts on each detected unit of text.
type FragmentType string

const (
	FragmentPage             FragmentType = "PAGE"
	FragmentLine             FragmentType = "LINE"
	FragmentWord             FragmentType = "WORD"
	FragmentTable            FragmentType = "TABLE"
	FragmentCell             FragmentType = "CELL"
	FragmentKeyValueSet      FragmentType = "KEY_VALUE_SET"
	FragmentSelectionElement FragmentType = "SELECTION_ELEMENT"
)

// Fragment is one unit of detected text.
type Fragment struct {
	Type FragmentType `json:"blockType"`
	Text string       `json:"text"`
}

// ExtractedText holds the line-level fragments of a document in detection order.
type ExtractedText struct {
	Lines []Fragment `json:"lines"`
}

// NewExtractedText keeps only the LINE fragments of an extraction result.
// Everything else (tables, words, key-value pairs) is dropped without error.
func NewExtractedText(fragments []Fragment) ExtractedText {
	var lines []Fragment
	for _, f := range fragments {
		if f.Type == FragmentLine {
			lines = append(lines, f)
		}
	}
	return ExtractedText{Lines: lines}
}

// FullText joins the line texts with a single space.
func (e ExtractedText) FullText() string {
	texts := make([]string, len(e.Lines))
	for i, l := range e.Lines {
		texts[i] = l.Text
	}
	return strings.Join(texts, " ")
}

// TranslatedText is the output of the translation stage.
type TranslatedText struct {
	Text               string `json:"translatedText"`
	SourceLanguageCode string `json:"sourceLanguageCode"`
	TargetLanguageCode string `json:"targetLanguageCode"`
}

// DocumentInsight is everything one pipeline run produced for a document.
type DocumentInsight struct {
	RunID      uuid.UUID         `json:"runId"`
	Document   DocumentReference `json:"document"`
	Extracted  ExtractedText     `json:"extracted"`
	Translated TranslatedText    `json:"translated"`
	Sentiment  SentimentResult   `json:"sentiment"`
}
