package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Lllllllleong/documentinsight/internal/aws"
	"github.com/Lllllllleong/documentinsight/internal/config"
	"github.com/Lllllllleong/documentinsight/internal/gcp"
)

// NewGCPDocumentInsight builds a pipeline backed by GCS and Vertex AI from environment configuration.
func NewGCPDocumentInsight(ctx context.Context) (*DocumentInsightPipeline, error) {
	cfg, err := config.LoadGCP()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	storageClient, err := gcp.NewStorageClient(ctx)
	if err != nil {
		return nil, err
	}

	vertexClient, err := gcp.NewVertexClient(ctx, cfg.ProjectID, cfg.VertexAIRegion, cfg.GeminiModel)
	if err != nil {
		return nil, fmt.Errorf("failed to create vertex client: %w", err)
	}

	logger := slog.Default()
	p, err := NewDocumentInsightPipeline(
		cfg.Pipeline,
		"gs",
		gcp.NewExtractor(gcp.NewGCSObjects(storageClient), vertexClient.ExtractorModel, cfg.MaxDocumentBytes, logger),
		gcp.NewTranslator(vertexClient.TranslatorModel),
		gcp.NewSentimentDetector(vertexClient.SentimentModel),
		logger,
	)
	if err != nil {
		return nil, err
	}
	logger.Info("Document insight pipeline initialized.",
		"provider", "gcp",
		"model", cfg.GeminiModel,
		"sourceLanguageCode", cfg.SourceLanguageCode,
		"targetLanguageCode", cfg.TargetLanguageCode,
		"recordMode", cfg.RecordMode,
	)
	return p, nil
}

// NewAWSDocumentInsight builds a pipeline backed by Textract, Translate and Comprehend.
func NewAWSDocumentInsight(ctx context.Context) (*DocumentInsightPipeline, error) {
	cfg, err := config.LoadAWS()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	clients, err := aws.NewClients(ctx, cfg.Region)
	if err != nil {
		return nil, err
	}

	logger := slog.Default()
	p, err := NewDocumentInsightPipeline(
		cfg.Pipeline,
		"s3",
		aws.NewExtractor(clients.Textract),
		aws.NewTranslator(clients.Translate),
		aws.NewSentimentDetector(clients.Comprehend),
		logger,
	)
	if err != nil {
		return nil, err
	}
	logger.Info("Document insight pipeline initialized.",
		"provider", "aws",
		"sourceLanguageCode", cfg.SourceLanguageCode,
		"targetLanguageCode", cfg.TargetLanguageCode,
		"recordMode", cfg.RecordMode,
	)
	return p, nil
}
