package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/translate"
)

// TranslateAPI is the part of *translate.Client the translator uses.
type TranslateAPI interface {
	TranslateText(ctx context.Context, params *translate.TranslateTextInput, optFns ...func(*translate.Options)) (*translate.TranslateTextOutput, error)
}

type Translator struct {
	api TranslateAPI
}

func NewTranslator(api TranslateAPI) *Translator {
	return &Translator{api: api}
}

// TranslateText forwards the text unchanged. Amazon Translate rejects empty input;
// that error is returned like any other.
func (t *Translator) TranslateText(ctx context.Context, text, sourceLanguageCode, targetLanguageCode string) (string, error) {
	out, err := t.api.TranslateText(ctx, &translate.TranslateTextInput{
		Text:               aws.String(text),
		SourceLanguageCode: aws.String(sourceLanguageCode),
		TargetLanguageCode: aws.String(targetLanguageCode),
	})
	if err != nil {
		return "", fmt.Errorf("translate TranslateText: %w", err)
	}
	return aws.ToString(out.TranslatedText), nil
}
