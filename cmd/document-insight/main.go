package main

import (
	"context"
	"log/slog"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	"github.com/Lllllllleong/documentinsight/internal/logging"
	"github.com/Lllllllleong/documentinsight/internal/models"
	"github.com/Lllllllleong/documentinsight/internal/services"
	cloudevents "github.com/cloudevents/sdk-go/v2"
)

var (
	insightInstance *services.DocumentInsightPipeline
	once            sync.Once
	initErr         error
)

func init() {
	// --- Set up structured logging ---
	slog.SetDefault(logging.New("document-insight"))

	// Register the CloudEvent function. "AnalyzeDocument" is the entry point name configured in GCP.
	functions.CloudEvent("AnalyzeDocument", analyzeDocument)
}

// main is required by the Go Functions Framework.
func main() {}

// analyzeDocument is the Cloud Function entry point for a document-arrival event.
// Returning an error marks the invocation as failed.
func analyzeDocument(ctx context.Context, e cloudevents.Event) error {
	// Clients live for the lifetime of the instance and are reused across invocations.
	once.Do(func() {
		insightInstance, initErr = services.NewGCPDocumentInsight(context.Background())
	})
	if initErr != nil {
		slog.Error("Critical error during function initialization", "error", initErr)
		return initErr
	}

	notification, err := models.DecodeNotification(e.Data())
	if err != nil {
		slog.Error("Failed to decode event data", "error", err, "eventId", e.ID(), "data", string(e.Data()))
		return err
	}

	// Errors are already logged with context within Process.
	return insightInstance.Process(ctx, notification)
}
