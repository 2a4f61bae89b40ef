// Package archive stores the original uploaded statements.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

const uploadTimeout = 2 * time.Minute

// GCS archives raw statement PDFs in a Cloud Storage bucket.
// It assumes Application Default Credentials are configured.
type GCS struct {
	client *storage.Client
	bucket string
}

// NewGCS creates an archiver for the given bucket.
func NewGCS(ctx context.Context, bucket string, opts ...option.ClientOption) (*GCS, error) {
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return &GCS{client: client, bucket: bucket}, nil
}

// Archive writes the raw PDF under statements/<uploadID>.pdf and
// returns the gs:// URI of the stored object.
func (g *GCS) Archive(ctx context.Context, uploadID string, data []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	object := fmt.Sprintf("statements/%s.pdf", uploadID)
	w := g.client.Bucket(g.bucket).Object(object).NewWriter(ctx)
	w.ContentType = "application/pdf"

	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("copy statement to GCS writer: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalize upload: %w", err)
	}

	return fmt.Sprintf("gs://%s/%s", g.bucket, object), nil
}

// Close releases the underlying client.
func (g *GCS) Close() error {
	return g.client.Close()
}
