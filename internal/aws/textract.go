package aws

import (
	"context"
	"fmt"

	"github.com/Lllllllleong/documentinsight/internal/models"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/textract"
	"github.com/aws/aws-sdk-go-v2/service/textract/types"
)

// TextractAPI is the part of *textract.Client the extractor uses.
type TextractAPI interface {
	DetectDocumentText(ctx context.Context, params *textract.DetectDocumentTextInput, optFns ...func(*textract.Options)) (*textract.DetectDocumentTextOutput, error)
}

// Extractor detects document text with Textract, reading the document straight from S3.
type Extractor struct {
	api TextractAPI
}

func NewExtractor(api TextractAPI) *Extractor {
	return &Extractor{api: api}
}

func (e *Extractor) ExtractFragments(ctx context.Context, ref models.DocumentReference) ([]models.Fragment, error) {
	out, err := e.api.DetectDocumentText(ctx, &textract.DetectDocumentTextInput{
		Document: &types.Document{
			S3Object: &types.S3Object{
				Bucket: aws.String(ref.Bucket),
				Name:   aws.String(ref.Key),
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("textract DetectDocumentText: %w", err)
	}

	fragments := make([]models.Fragment, 0, len(out.Blocks))
	for _, block := range out.Blocks {
		fragments = append(fragments, models.Fragment{
			Type: models.FragmentType(block.BlockType),
			Text: aws.ToString(block.Text),
		})
	}
	return fragments, nil
}
