package gcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"cloud.google.com/go/vertexai/genai"
	"github.com/Lllllllleong/documentinsight/internal/logging"
	"github.com/Lllllllleong/documentinsight/internal/models"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

const mimePDF = "application/pdf"

// supportedMIMETypes are the document formats Gemini accepts as file input.
var supportedMIMETypes = map[string]bool{
	mimePDF:      true,
	"image/png":  true,
	"image/jpeg": true,
	"image/webp": true,
}

var extensionMIMETypes = map[string]string{
	".pdf":  mimePDF,
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".webp": "image/webp",
}

// Extractor detects text fragments in a GCS document with Gemini.
type Extractor struct {
	objects  ObjectSource
	model    ContentGenerator
	maxBytes int64
	logger   *slog.Logger
}

func NewExtractor(objects ObjectSource, model ContentGenerator, maxBytes int64, logger *slog.Logger) *Extractor {
	// pdfcpu must not try to create its config directory on a read-only function filesystem.
	api.DisableConfigDir()
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{objects: objects, model: model, maxBytes: maxBytes, logger: logger}
}

// ExtractFragments validates the stored document and returns the blocks Gemini detected in it.
func (e *Extractor) ExtractFragments(ctx context.Context, ref models.DocumentReference) ([]models.Fragment, error) {
	uri := ref.URI("gs")
	// The run logger already carries the document and run ID.
	logCtx, ok := logging.FromContext(ctx)
	if !ok {
		logCtx = e.logger.With("document", uri)
	}

	attrs, err := e.objects.Attrs(ctx, ref.Bucket, ref.Key)
	if err != nil {
		return nil, err
	}
	if attrs.Size > e.maxBytes {
		return nil, fmt.Errorf("document %s is %d bytes, limit is %d", uri, attrs.Size, e.maxBytes)
	}
	mimeType := documentMIMEType(attrs.ContentType, ref.Key)
	if !supportedMIMETypes[mimeType] {
		return nil, fmt.Errorf("document %s has unsupported content type %q", uri, attrs.ContentType)
	}

	if mimeType == mimePDF {
		pageCount, err := e.pdfPageCount(ctx, ref)
		if err != nil {
			return nil, fmt.Errorf("document %s is not a readable PDF: %w", uri, err)
		}
		logCtx.Info("PDF validated.", "pageCount", pageCount, "sizeBytes", attrs.Size)
	}

	filePart := genai.FileData{
		MIMEType: mimeType,
		FileURI:  uri,
	}
	resp, err := e.model.GenerateContent(ctx, filePart, genai.Text(ExtractorUserPrompt))
	if err != nil {
		return nil, fmt.Errorf("failed to detect document text with gemini: %w", err)
	}

	raw := responseText(resp)
	if raw == "" {
		return nil, fmt.Errorf("gemini returned an empty response instead of JSON for %s", uri)
	}
	var fragments []models.Fragment
	if err := json.Unmarshal([]byte(raw), &fragments); err != nil {
		logCtx.Debug("Unparseable extraction response", "responseBody", raw)
		return nil, fmt.Errorf("failed to parse JSON from model for %s: %w", uri, err)
	}
	for i := range fragments {
		fragments[i].Type = models.FragmentType(strings.ToUpper(strings.TrimSpace(string(fragments[i].Type))))
	}
	return fragments, nil
}

// pdfPageCount downloads the PDF and lets pdfcpu parse it in relaxed mode.
func (e *Extractor) pdfPageCount(ctx context.Context, ref models.DocumentReference) (int, error) {
	r, err := e.objects.NewReader(ctx, ref.Bucket, ref.Key)
	if err != nil {
		return 0, err
	}
	defer r.Close()

	data, err := io.ReadAll(io.LimitReader(r, e.maxBytes+1))
	if err != nil {
		return 0, fmt.Errorf("failed to read PDF: %w", err)
	}
	if int64(len(data)) > e.maxBytes {
		return 0, fmt.Errorf("PDF exceeds %d bytes", e.maxBytes)
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	pageCount, err := api.PageCount(bytes.NewReader(data), conf)
	if err != nil {
		return 0, err
	}
	if pageCount == 0 {
		return 0, fmt.Errorf("PDF has no pages")
	}
	return pageCount, nil
}

// documentMIMEType trusts the stored content type unless it is missing or generic.
func documentMIMEType(contentType, key string) string {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	if ct != "" && ct != "application/octet-stream" {
		return ct
	}
	return extensionMIMETypes[strings.ToLower(path.Ext(key))]
}
