package gcp

import (
	"context"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

const userAgent = "document-insight"

// ObjectSource reads stored documents.
type ObjectSource interface {
	Attrs(ctx context.Context, bucket, object string) (*storage.ObjectAttrs, error)
	NewReader(ctx context.Context, bucket, object string) (io.ReadCloser, error)
}

// NewStorageClient creates the process-wide GCS client.
func NewStorageClient(ctx context.Context) (*storage.Client, error) {
	client, err := storage.NewClient(ctx, option.WithUserAgent(userAgent))
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return client, nil
}

// GCSObjects adapts a *storage.Client to ObjectSource.
type GCSObjects struct {
	client *storage.Client
}

func NewGCSObjects(client *storage.Client) *GCSObjects {
	return &GCSObjects{client: client}
}

func (g *GCSObjects) Attrs(ctx context.Context, bucket, object string) (*storage.ObjectAttrs, error) {
	attrs, err := g.client.Bucket(bucket).Object(object).Attrs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get attributes of gs://%s/%s: %w", bucket, object, err)
	}
	return attrs, nil
}

func (g *GCSObjects) NewReader(ctx context.Context, bucket, object string) (io.ReadCloser, error) {
	r, err := g.client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get GCS object reader for gs://%s/%s: %w", bucket, object, err)
	}
	return r, nil
}
