package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/Lllllllleong/documentinsight/internal/config"
	"github.com/Lllllllleong/documentinsight/internal/logging"
	"github.com/Lllllllleong/documentinsight/internal/models"
	"github.com/stretchr/testify/require"
)

// recorder is shared by the fakes so tests can assert on call order.
type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) add(call string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call)
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

type fakeExtractor struct {
	rec       *recorder
	fragments []models.Fragment
	err       error
	mu        sync.Mutex
	refs      []models.DocumentReference
}

func (f *fakeExtractor) ExtractFragments(ctx context.Context, ref models.DocumentReference) ([]models.Fragment, error) {
	f.rec.add("extract")
	if log, ok := logging.FromContext(ctx); ok {
		log.Debug("Extractor called.")
	}
	f.mu.Lock()
	f.refs = append(f.refs, ref)
	f.mu.Unlock()
	return f.fragments, f.err
}

type translateCall struct {
	text, source, target string
}

type fakeTranslator struct {
	rec   *recorder
	reply string
	err   error
	mu    sync.Mutex
	got   []translateCall
}

func (f *fakeTranslator) TranslateText(_ context.Context, text, source, target string) (string, error) {
	f.rec.add("translate")
	f.mu.Lock()
	f.got = append(f.got, translateCall{text: text, source: source, target: target})
	f.mu.Unlock()
	return f.reply, f.err
}

type sentimentCall struct {
	text, languageCode string
}

type fakeDetector struct {
	rec    *recorder
	result *models.SentimentResult
	err    error
	mu     sync.Mutex
	got    []sentimentCall
}

func (f *fakeDetector) DetectSentiment(_ context.Context, text, languageCode string) (*models.SentimentResult, error) {
	f.rec.add("sentiment")
	f.mu.Lock()
	f.got = append(f.got, sentimentCall{text: text, languageCode: languageCode})
	f.mu.Unlock()
	return f.result, f.err
}

func positive() *models.SentimentResult {
	return &models.SentimentResult{
		Label: models.SentimentPositive,
		Scores: map[models.SentimentLabel]float64{
			models.SentimentPositive: 0.97,
			models.SentimentNegative: 0.01,
			models.SentimentNeutral:  0.01,
			models.SentimentMixed:    0.01,
		},
	}
}

type harness struct {
	rec        *recorder
	extractor  *fakeExtractor
	translator *fakeTranslator
	detector   *fakeDetector
	logs       *bytes.Buffer
	pipeline   *DocumentInsightPipeline
}

func newHarness(t *testing.T, cfg config.Pipeline) *harness {
	t.Helper()
	rec := &recorder{}
	h := &harness{
		rec: rec,
		extractor: &fakeExtractor{rec: rec, fragments: []models.Fragment{
			{Type: models.FragmentLine, Text: "Hallo"},
			{Type: models.FragmentTable, Text: "ignored"},
			{Type: models.FragmentLine, Text: "Welt"},
		}},
		translator: &fakeTranslator{rec: rec, reply: "Hello World"},
		detector:   &fakeDetector{rec: rec, result: positive()},
		logs:       &bytes.Buffer{},
	}
	logger := slog.New(slog.NewJSONHandler(h.logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	p, err := NewDocumentInsightPipeline(cfg, "s3", h.extractor, h.translator, h.detector, logger)
	require.NoError(t, err)
	h.pipeline = p
	return h
}

func (h *harness) logLines(t *testing.T) []map[string]any {
	t.Helper()
	var lines []map[string]any
	for _, raw := range strings.Split(strings.TrimSpace(h.logs.String()), "\n") {
		if raw == "" {
			continue
		}
		var line map[string]any
		require.NoError(t, json.Unmarshal([]byte(raw), &line))
		lines = append(lines, line)
	}
	return lines
}

func (h *harness) findLog(t *testing.T, msg string) map[string]any {
	t.Helper()
	for _, line := range h.logLines(t) {
		if line["msg"] == msg {
			return line
		}
	}
	return nil
}

func defaultConfig() config.Pipeline {
	return config.Pipeline{
		SourceLanguageCode: "de",
		TargetLanguageCode: "en",
		RecordMode:         config.RecordModeFirst,
		RecordConcurrency:  1,
	}
}

func notification(keys ...string) models.StorageNotification {
	var n models.StorageNotification
	for _, k := range keys {
		n.Records = append(n.Records, models.NotificationRecord{
			EventSource: models.EventSourceS3,
			S3: models.S3Entity{
				Bucket: models.S3Bucket{Name: "lab-docs"},
				Object: models.S3Object{Key: k},
			},
		})
	}
	return n
}

func TestProcessSampleDocument(t *testing.T) {
	h := newHarness(t, defaultConfig())

	require.NoError(t, h.pipeline.Process(context.Background(), notification("reports/sample.pdf")))

	require.Equal(t, []string{"extract", "translate", "sentiment"}, h.rec.snapshot())
	require.Equal(t, []models.DocumentReference{{Bucket: "lab-docs", Key: "reports/sample.pdf"}}, h.extractor.refs)
	require.Equal(t, []translateCall{{text: "Hallo Welt", source: "de", target: "en"}}, h.translator.got)
	require.Equal(t, []sentimentCall{{text: "Hello World", languageCode: "en"}}, h.detector.got)

	extracted := h.findLog(t, "Extracted text.")
	require.NotNil(t, extracted)
	require.Equal(t, "Hallo Welt", extracted["text"])
	require.Equal(t, "s3://lab-docs/reports/sample.pdf", extracted["document"])
	require.Equal(t, float64(2), extracted["lineCount"])

	translated := h.findLog(t, "Translated text.")
	require.NotNil(t, translated)
	require.Equal(t, "Hello World", translated["text"])

	sentiment := h.findLog(t, "Detected sentiment.")
	require.NotNil(t, sentiment)
	require.Equal(t, "POSITIVE", sentiment["sentiment"])
	require.Equal(t, extracted["runId"], sentiment["runId"])
}

func TestRunReturnsInsight(t *testing.T) {
	h := newHarness(t, defaultConfig())
	ref := models.DocumentReference{Bucket: "lab-docs", Key: "reports/sample.pdf"}

	insight, err := h.pipeline.Run(context.Background(), ref)
	require.NoError(t, err)
	require.Equal(t, ref, insight.Document)
	require.Equal(t, "Hallo Welt", insight.Extracted.FullText())
	require.Equal(t, models.TranslatedText{Text: "Hello World", SourceLanguageCode: "de", TargetLanguageCode: "en"}, insight.Translated)
	require.Equal(t, models.SentimentPositive, insight.Sentiment.Label)
	require.NotEmpty(t, insight.RunID.String())
}

func TestCollaboratorsLogWithRunAttributes(t *testing.T) {
	h := newHarness(t, defaultConfig())

	insight, err := h.pipeline.Run(context.Background(), models.DocumentReference{Bucket: "lab-docs", Key: "sample.pdf"})
	require.NoError(t, err)

	line := h.findLog(t, "Extractor called.")
	require.NotNil(t, line)
	require.Equal(t, insight.RunID.String(), line["runId"])
	require.Equal(t, "s3://lab-docs/sample.pdf", line["document"])
}

func TestEmptyExtractionStillTranslates(t *testing.T) {
	h := newHarness(t, defaultConfig())
	h.extractor.fragments = []models.Fragment{{Type: models.FragmentPage}, {Type: models.FragmentWord, Text: "x"}}
	h.translator.reply = ""

	require.NoError(t, h.pipeline.Process(context.Background(), notification("blank.pdf")))

	require.Equal(t, []translateCall{{text: "", source: "de", target: "en"}}, h.translator.got)
	require.Equal(t, []sentimentCall{{text: "", languageCode: "en"}}, h.detector.got)
	require.NotNil(t, h.findLog(t, "No line fragments detected. Continuing with empty text."))
}

func TestLanguageCodesComeFromConfig(t *testing.T) {
	cfg := defaultConfig()
	cfg.SourceLanguageCode = "fr"
	cfg.TargetLanguageCode = "es"
	h := newHarness(t, cfg)
	h.extractor.fragments = []models.Fragment{{Type: models.FragmentLine, Text: "Guten Tag"}}

	require.NoError(t, h.pipeline.Process(context.Background(), notification("a.pdf")))

	require.Equal(t, "fr", h.translator.got[0].source)
	require.Equal(t, "es", h.translator.got[0].target)
	require.Equal(t, "es", h.detector.got[0].languageCode)
}

func TestExtractionFailureStopsPipeline(t *testing.T) {
	h := newHarness(t, defaultConfig())
	boom := errors.New("InvalidS3ObjectException")
	h.extractor.err = boom

	err := h.pipeline.Process(context.Background(), notification("reports/sample.pdf"))
	require.ErrorIs(t, err, boom)
	require.Equal(t, []string{"extract"}, h.rec.snapshot())
	require.Nil(t, h.findLog(t, "Extracted text."))
}

func TestTranslationFailureKeepsExtractionLog(t *testing.T) {
	h := newHarness(t, defaultConfig())
	boom := errors.New("UnsupportedLanguagePairException")
	h.translator.err = boom

	err := h.pipeline.Process(context.Background(), notification("reports/sample.pdf"))
	require.ErrorIs(t, err, boom)
	require.Equal(t, []string{"extract", "translate"}, h.rec.snapshot())
	require.Empty(t, h.detector.got)

	extracted := h.findLog(t, "Extracted text.")
	require.NotNil(t, extracted)
	require.Equal(t, "Hallo Welt", extracted["text"])
	require.Nil(t, h.findLog(t, "Translated text."))
}

func TestSentimentFailures(t *testing.T) {
	boom := errors.New("TextSizeLimitExceededException")
	tests := []struct {
		name   string
		result *models.SentimentResult
		err    error
	}{
		{name: "service error", err: boom},
		{name: "nil result"},
		{name: "unknown label", result: &models.SentimentResult{Label: "HAPPY", Scores: positive().Scores}},
		{name: "missing scores", result: &models.SentimentResult{Label: models.SentimentNeutral}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, defaultConfig())
			h.detector.result = tt.result
			h.detector.err = tt.err

			_, err := h.pipeline.Run(context.Background(), models.DocumentReference{Bucket: "b", Key: "k"})
			require.Error(t, err)
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
			}
			require.NotNil(t, h.findLog(t, "Translated text."))
			require.Nil(t, h.findLog(t, "Detected sentiment."))
		})
	}
}

func TestInvalidNotificationFailsBeforeAnyCall(t *testing.T) {
	tests := []struct {
		name string
		mode config.RecordMode
		n    models.StorageNotification
	}{
		{name: "no records", mode: config.RecordModeFirst, n: models.StorageNotification{}},
		{name: "missing key", mode: config.RecordModeFirst, n: notification("")},
		{name: "missing bucket", mode: config.RecordModeFirst, n: models.StorageNotification{Records: []models.NotificationRecord{{S3: models.S3Entity{Object: models.S3Object{Key: "k"}}}}}},
		{name: "bad later record in all mode", mode: config.RecordModeAll, n: notification("ok.pdf", "")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			cfg.RecordMode = tt.mode
			h := newHarness(t, cfg)

			err := h.pipeline.Process(context.Background(), tt.n)
			require.ErrorIs(t, err, models.ErrInvalidNotification)
			require.Empty(t, h.rec.snapshot())
		})
	}
}

func TestFirstModeIgnoresExtraRecords(t *testing.T) {
	h := newHarness(t, defaultConfig())

	// The second record is malformed but never looked at.
	require.NoError(t, h.pipeline.Process(context.Background(), notification("first.pdf", "second.pdf", "")))

	require.Equal(t, []models.DocumentReference{{Bucket: "lab-docs", Key: "first.pdf"}}, h.extractor.refs)
	warn := h.findLog(t, "Notification has more than one record; only the first is processed.")
	require.NotNil(t, warn)
	require.Equal(t, float64(2), warn["ignoredRecords"])
}

func TestAllModeProcessesEveryRecord(t *testing.T) {
	cfg := defaultConfig()
	cfg.RecordMode = config.RecordModeAll
	cfg.RecordConcurrency = 3
	h := newHarness(t, cfg)

	require.NoError(t, h.pipeline.Process(context.Background(), notification("a.pdf", "b.pdf", "c.pdf")))

	var keys []string
	for _, ref := range h.extractor.refs {
		keys = append(keys, ref.Key)
	}
	sort.Strings(keys)
	require.Equal(t, []string{"a.pdf", "b.pdf", "c.pdf"}, keys)
	require.Len(t, h.detector.got, 3)
}

func TestAllModeSequentialFailureStopsLaterRecords(t *testing.T) {
	cfg := defaultConfig()
	cfg.RecordMode = config.RecordModeAll
	h := newHarness(t, cfg)
	boom := errors.New("ProvisionedThroughputExceededException")
	h.translator.err = boom

	err := h.pipeline.Process(context.Background(), notification("a.pdf", "b.pdf"))
	require.ErrorIs(t, err, boom)
	require.Contains(t, err.Error(), "record 0")
	require.Len(t, h.extractor.refs, 1, "records after a failure are skipped")
}

func TestNewDocumentInsightPipelineValidates(t *testing.T) {
	rec := &recorder{}
	ex := &fakeExtractor{rec: rec}
	tr := &fakeTranslator{rec: rec}
	sd := &fakeDetector{rec: rec}

	_, err := NewDocumentInsightPipeline(defaultConfig(), "s3", nil, tr, sd, nil)
	require.Error(t, err)

	bad := defaultConfig()
	bad.TargetLanguageCode = ""
	_, err = NewDocumentInsightPipeline(bad, "s3", ex, tr, sd, nil)
	require.ErrorIs(t, err, config.ErrInvalidConfig)

	p, err := NewDocumentInsightPipeline(defaultConfig(), "gs", ex, tr, sd, nil)
	require.NoError(t, err)
	require.NotNil(t, p.logger)
}
