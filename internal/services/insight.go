package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Lllllllleong/documentinsight/internal/config"
	"github.com/Lllllllleong/documentinsight/internal/logging"
	"github.com/Lllllllleong/documentinsight/internal/models"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// TextExtractor pulls detected text fragments out of a stored document.
type TextExtractor interface {
	ExtractFragments(ctx context.Context, ref models.DocumentReference) ([]models.Fragment, error)
}

// TextTranslator translates text between two language codes.
type TextTranslator interface {
	TranslateText(ctx context.Context, text, sourceLanguageCode, targetLanguageCode string) (string, error)
}

// SentimentDetector scores the sentiment of a text in the given language.
type SentimentDetector interface {
	DetectSentiment(ctx context.Context, text, languageCode string) (*models.SentimentResult, error)
}

// DocumentInsightPipeline runs extract -> translate -> sentiment for one document at a time.
// It holds no per-invocation state and is safe for concurrent use.
type DocumentInsightPipeline struct {
	extractor  TextExtractor
	translator TextTranslator
	detector   SentimentDetector
	config     config.Pipeline
	logger     *slog.Logger
	// scheme is used only to render document URIs in logs and errors.
	scheme string
}

// NewDocumentInsightPipeline wires the three stage collaborators together.
func NewDocumentInsightPipeline(cfg config.Pipeline, scheme string, extractor TextExtractor, translator TextTranslator, detector SentimentDetector, logger *slog.Logger) (*DocumentInsightPipeline, error) {
	if extractor == nil || translator == nil || detector == nil {
		return nil, errors.New("extractor, translator and sentiment detector must all be provided")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DocumentInsightPipeline{
		extractor:  extractor,
		translator: translator,
		detector:   detector,
		config:     cfg,
		logger:     logger,
		scheme:     scheme,
	}, nil
}

// Process runs the pipeline for the records of a notification selected by the record mode.
// Any invalid record or stage failure is returned and fails the invocation.
func (p *DocumentInsightPipeline) Process(ctx context.Context, n models.StorageNotification) error {
	if len(n.Records) == 0 {
		p.logger.Error("Notification contains no records.")
		return fmt.Errorf("%w: no records", models.ErrInvalidNotification)
	}

	if p.config.RecordMode == config.RecordModeFirst {
		ref, err := n.Reference(0)
		if err != nil {
			p.logger.Error("Failed to read document reference from notification", "error", err)
			return err
		}
		if ignored := len(n.Records) - 1; ignored > 0 {
			p.logger.Warn("Notification has more than one record; only the first is processed.", "ignoredRecords", ignored)
		}
		_, err = p.Run(ctx, ref)
		return err
	}

	// Validate every record before any service is called.
	refs := make([]models.DocumentReference, len(n.Records))
	for i := range n.Records {
		ref, err := n.Reference(i)
		if err != nil {
			p.logger.Error("Failed to read document reference from notification", "error", err, "record", i)
			return err
		}
		refs[i] = ref
	}

	p.logger.Info("Processing all notification records.", "recordCount", len(refs), "concurrency", p.config.RecordConcurrency)
	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(p.config.RecordConcurrency)
	for i, ref := range refs {
		eg.Go(func() error {
			// A failed record cancels gctx; records not yet started are skipped.
			if err := gctx.Err(); err != nil {
				return err
			}
			if _, err := p.Run(gctx, ref); err != nil {
				return fmt.Errorf("record %d: %w", i, err)
			}
			return nil
		})
	}
	return eg.Wait()
}

// Run processes a single document. Each artifact is logged as soon as its stage succeeds,
// so a later failure leaves the earlier artifacts in the log.
func (p *DocumentInsightPipeline) Run(ctx context.Context, ref models.DocumentReference) (*models.DocumentInsight, error) {
	runID := uuid.New()
	uri := ref.URI(p.scheme)
	logCtx := p.logger.With("runId", runID.String(), "document", uri)
	logCtx.Info("Processing document.")
	ctx = logging.WithLogger(ctx, logCtx)

	// --- 1. Extraction ---
	fragments, err := p.extractor.ExtractFragments(ctx, ref)
	if err != nil {
		logCtx.Error("Text extraction failed", "error", err)
		return nil, fmt.Errorf("extract text from %s: %w", uri, err)
	}
	extracted := models.NewExtractedText(fragments)
	fullText := extracted.FullText()
	logCtx.Info("Extracted text.", "text", fullText, "lineCount", len(extracted.Lines), "fragmentCount", len(fragments))
	if fullText == "" {
		logCtx.Warn("No line fragments detected. Continuing with empty text.")
	}

	// --- 2. Translation ---
	translated, err := p.translator.TranslateText(ctx, fullText, p.config.SourceLanguageCode, p.config.TargetLanguageCode)
	if err != nil {
		logCtx.Error("Translation failed", "error", err)
		return nil, fmt.Errorf("translate text of %s: %w", uri, err)
	}
	translation := models.TranslatedText{
		Text:               translated,
		SourceLanguageCode: p.config.SourceLanguageCode,
		TargetLanguageCode: p.config.TargetLanguageCode,
	}
	logCtx.Info("Translated text.",
		"text", translation.Text,
		"sourceLanguageCode", translation.SourceLanguageCode,
		"targetLanguageCode", translation.TargetLanguageCode,
	)

	// --- 3. Sentiment ---
	sentiment, err := p.detector.DetectSentiment(ctx, translation.Text, translation.TargetLanguageCode)
	if err != nil {
		logCtx.Error("Sentiment detection failed", "error", err)
		return nil, fmt.Errorf("detect sentiment of %s: %w", uri, err)
	}
	if sentiment == nil {
		err := errors.New("sentiment detector returned no result")
		logCtx.Error("Sentiment detection failed", "error", err)
		return nil, fmt.Errorf("detect sentiment of %s: %w", uri, err)
	}
	if err := sentiment.Validate(); err != nil {
		logCtx.Error("Sentiment result is malformed", "error", err)
		return nil, fmt.Errorf("detect sentiment of %s: %w", uri, err)
	}
	logCtx.Info("Detected sentiment.", "sentiment", sentiment.Label, "sentimentScore", sentiment.Scores)

	return &models.DocumentInsight{
		RunID:      runID,
		Document:   ref,
		Extracted:  extracted,
		Translated: translation,
		Sentiment:  *sentiment,
	}, nil
}
