package aws

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/comprehend"
	"github.com/aws/aws-sdk-go-v2/service/textract"
	"github.com/aws/aws-sdk-go-v2/service/translate"
)

// Clients are the process-wide service handles, created once at cold start.
type Clients struct {
	Textract   *textract.Client
	Translate  *translate.Client
	Comprehend *comprehend.Client
}

// NewClients loads the default credential chain. An empty region defers to the SDK's resolution.
func NewClients(ctx context.Context, region string) (*Clients, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}
	return &Clients{
		Textract:   textract.NewFromConfig(cfg),
		Translate:  translate.NewFromConfig(cfg),
		Comprehend: comprehend.NewFromConfig(cfg),
	}, nil
}
