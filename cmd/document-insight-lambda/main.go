package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/Lllllllleong/documentinsight/internal/logging"
	"github.com/Lllllllleong/documentinsight/internal/models"
	"github.com/Lllllllleong/documentinsight/internal/services"
	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-lambda-go/lambdacontext"
)

// processor is the part of the pipeline the handler needs.
type processor interface {
	Process(ctx context.Context, n models.StorageNotification) error
}

func init() {
	slog.SetDefault(logging.New("document-insight-lambda"))
}

func main() {
	// Built once per execution environment; warm invocations reuse the clients.
	insight, err := services.NewAWSDocumentInsight(context.Background())
	if err != nil {
		slog.Error("Critical error during function initialization", "error", err)
		os.Exit(1)
	}
	lambda.Start(newHandler(insight))
}

func newHandler(p processor) func(context.Context, events.S3Event) error {
	return func(ctx context.Context, e events.S3Event) error {
		if lc, ok := lambdacontext.FromContext(ctx); ok {
			slog.Info("Received S3 notification.", "requestId", lc.AwsRequestID, "recordCount", len(e.Records))
		}
		return p.Process(ctx, toNotification(e))
	}
}

// toNotification keeps keys URL-encoded; StorageNotification.Reference decodes them.
func toNotification(e events.S3Event) models.StorageNotification {
	n := models.StorageNotification{Records: make([]models.NotificationRecord, 0, len(e.Records))}
	for _, r := range e.Records {
		n.Records = append(n.Records, models.NotificationRecord{
			EventSource: r.EventSource,
			S3: models.S3Entity{
				Bucket: models.S3Bucket{Name: r.S3.Bucket.Name},
				Object: models.S3Object{Key: r.S3.Object.Key},
			},
		})
	}
	return n
}
