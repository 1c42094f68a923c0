package aws

import (
	"context"
	"fmt"

	"github.com/Lllllllleong/documentinsight/internal/models"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/comprehend"
	"github.com/aws/aws-sdk-go-v2/service/comprehend/types"
)

// ComprehendAPI is the part of *comprehend.Client the sentiment detector uses.
type ComprehendAPI interface {
	DetectSentiment(ctx context.Context, params *comprehend.DetectSentimentInput, optFns ...func(*comprehend.Options)) (*comprehend.DetectSentimentOutput, error)
}

type SentimentDetector struct {
	api ComprehendAPI
}

func NewSentimentDetector(api ComprehendAPI) *SentimentDetector {
	return &SentimentDetector{api: api}
}

func (d *SentimentDetector) DetectSentiment(ctx context.Context, text, languageCode string) (*models.SentimentResult, error) {
	out, err := d.api.DetectSentiment(ctx, &comprehend.DetectSentimentInput{
		Text:         aws.String(text),
		LanguageCode: types.LanguageCode(languageCode),
	})
	if err != nil {
		return nil, fmt.Errorf("comprehend DetectSentiment: %w", err)
	}

	label, err := models.ParseSentimentLabel(string(out.Sentiment))
	if err != nil {
		return nil, err
	}
	if out.SentimentScore == nil {
		return nil, fmt.Errorf("comprehend returned no sentiment scores")
	}
	score := out.SentimentScore
	return &models.SentimentResult{
		Label: label,
		Scores: map[models.SentimentLabel]float64{
			models.SentimentPositive: float64(aws.ToFloat32(score.Positive)),
			models.SentimentNegative: float64(aws.ToFloat32(score.Negative)),
			models.SentimentNeutral:  float64(aws.ToFloat32(score.Neutral)),
			models.SentimentMixed:    float64(aws.ToFloat32(score.Mixed)),
		},
	}, nil
}
