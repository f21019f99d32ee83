package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"strings"

	gcs "cloud.google.com/go/storage"
	"github.com/google/uuid"
)

type GCSUploader struct {
	client *gcs.Client
	bucket string
}

func NewGCSUploader(ctx context.Context, bucket string) (*GCSUploader, error) {
	c, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, err
	}
	return &GCSUploader{client: c, bucket: bucket}, nil
}

func (u *GCSUploader) Close() error { return u.client.Close() }

func (u *GCSUploader) Upload(ctx context.Context, objectName string, contentType string, r io.Reader) (string, error) {
	obj := u.client.Bucket(u.bucket).Object(objectName)

	w := obj.NewWriter(ctx)
	w.ContentType = contentType

	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}

	// recordings are reviewed straight from the browser
	if err := obj.ACL().Set(ctx, gcs.AllUsers, gcs.RoleReader); err != nil {
		return "", err
	}

	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", u.bucket, objectName), nil
}

// RecordingObjectName builds the canonical object path for one answer:
// recordings/<job>/<candidate>/q<index>-<random>.<ext>. The random suffix
// keeps redo uploads from overwriting the artifact a reviewer may be
// watching.
func RecordingObjectName(jobID, candidateID string, questionIndex int, mimeType string) string {
	ext := "webm"
	if exts, err := mime.ExtensionsByType(baseMime(mimeType)); err == nil && len(exts) > 0 {
		ext = strings.TrimPrefix(exts[len(exts)-1], ".")
	}
	return fmt.Sprintf("recordings/%s/%s/q%d-%s.%s", jobID, candidateID, questionIndex, uuid.NewString()[:8], ext)
}

func baseMime(mt string) string {
	if i := strings.Index(mt, ";"); i >= 0 {
		return mt[:i]
	}
	return mt
}
