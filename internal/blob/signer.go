package blob

import (
	"context"
	"fmt"
	"net/http"
	"time"
	"vinolog/backend/internal/logger"

	"cloud.google.com/go/storage"
)

// Signer converts a stored object path into a time-limited URL a client can fetch.
// An empty path signs to an empty URL without error.
type Signer interface {
	Sign(ctx context.Context, path string) (string, error)
}

// GCSSigner signs object paths against a single GCS bucket using V4 signed URLs.
type GCSSigner struct {
	client *storage.Client
	bucket string
	ttl    time.Duration
	log    *logger.Logger
}

// NewGCSSigner creates a signer for the given bucket. Credentials come from the
// environment (Application Default Credentials).
func NewGCSSigner(ctx context.Context, bucket string, ttl time.Duration, log *logger.Logger) (*GCSSigner, error) {
	if bucket == "" {
		return nil, fmt.Errorf("blob: bucket name is required")
	}
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("blob: create storage client: %w", err)
	}
	return &GCSSigner{
		client: client,
		bucket: bucket,
		ttl:    ttl,
		log:    log.With("component", "GCSSigner"),
	}, nil
}

// Sign returns a V4 signed GET URL for the object at path.
func (s *GCSSigner) Sign(ctx context.Context, path string) (string, error) {
	if path == "" {
		return "", nil
	}
	url, err := s.client.Bucket(s.bucket).SignedURL(path, &storage.SignedURLOptions{
		Method:  http.MethodGet,
		Expires: time.Now().Add(s.ttl),
		Scheme:  storage.SigningSchemeV4,
	})
	if err != nil {
		return "", fmt.Errorf("blob: sign %q: %w", path, err)
	}
	return url, nil
}

// Close releases the underlying storage client.
func (s *GCSSigner) Close() error {
	return s.client.Close()
}
