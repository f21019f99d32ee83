package storage

import (
	"context"
	"io"
)

// Uploader moves a finalized recording artifact into durable object storage
// and returns the public URL the job collection will carry. An error means
// the artifact has no durable home; the session records a nil URL and keeps
// going (degraded, surfaced, not blocking).
type Uploader interface {
	Upload(ctx context.Context, objectName string, contentType string, r io.Reader) (publicURL string, err error)
}
