package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reelhire/reelhire/internal/models"
	"github.com/reelhire/reelhire/internal/utils"
)

type fakeUploader struct {
	fail bool
	last string
}

func (u *fakeUploader) Upload(ctx context.Context, objectName, contentType string, r io.Reader) (string, error) {
	if u.fail {
		return "", errors.New("bucket unreachable")
	}
	io.Copy(io.Discard, r)
	u.last = objectName
	return "https://storage.example.com/" + objectName, nil
}

type fakeArtifactRepo struct {
	rows      []models.RecordingArtifact
	insertErr error
}

func (r *fakeArtifactRepo) Insert(ctx context.Context, a *models.RecordingArtifact) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	r.rows = append(r.rows, *a)
	return nil
}

func (r *fakeArtifactRepo) ListByCandidate(ctx context.Context, jobID, candidateID string) ([]models.RecordingArtifact, error) {
	var out []models.RecordingArtifact
	for _, a := range r.rows {
		if a.JobID == jobID && a.CandidateID == candidateID {
			out = append(out, a)
		}
	}
	return out, nil
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestUploadRecordsMetadataRow(t *testing.T) {
	up := &fakeUploader{}
	repo := &fakeArtifactRepo{}
	svc := NewArtifactService(up, repo, quietLogger())

	url, err := svc.Upload(context.Background(), "recordings/j1/c1/q2-ab12cd34.webm", "video/webm", strings.NewReader("frames"))
	require.NoError(t, err)
	assert.Contains(t, url, "recordings/j1/c1/")

	require.Len(t, repo.rows, 1)
	row := repo.rows[0]
	assert.Equal(t, "j1", row.JobID)
	assert.Equal(t, "c1", row.CandidateID)
	assert.Equal(t, 2, row.QuestionIndex)
	assert.Equal(t, int64(6), row.SizeBytes)
	assert.Equal(t, "video/webm", row.MimeType)
}

func TestUploadSurvivesMetadataFailure(t *testing.T) {
	up := &fakeUploader{}
	repo := &fakeArtifactRepo{insertErr: errors.New("relation does not exist")}
	svc := NewArtifactService(up, repo, quietLogger())

	url, err := svc.Upload(context.Background(), "recordings/j1/c1/q0-ab12cd34.webm", "video/webm", strings.NewReader("frames"))
	require.NoError(t, err, "the collection carries the URL either way")
	assert.NotEmpty(t, url)
}

func TestUploadWithoutRepoSkipsBookkeeping(t *testing.T) {
	up := &fakeUploader{}
	svc := NewArtifactService(up, nil, quietLogger())

	_, err := svc.Upload(context.Background(), "recordings/j1/c1/q0-ab12cd34.webm", "video/webm", strings.NewReader("frames"))
	require.NoError(t, err)
}

func TestListRecordings(t *testing.T) {
	up := &fakeUploader{}
	repo := &fakeArtifactRepo{}
	svc := NewArtifactService(up, repo, quietLogger())
	ctx := context.Background()

	_, err := svc.Upload(ctx, "recordings/j1/c1/q0-ab12cd34.webm", "video/webm", strings.NewReader("a"))
	require.NoError(t, err)
	_, err = svc.Upload(ctx, "recordings/j1/c2/q0-ef56ab78.webm", "video/webm", strings.NewReader("b"))
	require.NoError(t, err)

	rows, err := svc.ListRecordings(ctx, "j1", "c1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "c1", rows[0].CandidateID)
}

func TestListRecordingsWithoutRepo(t *testing.T) {
	svc := NewArtifactService(&fakeUploader{}, nil, quietLogger())

	_, err := svc.ListRecordings(context.Background(), "j1", "c1")
	require.Error(t, err)
	assert.True(t, utils.IsCode(err, utils.CodeUnavailable))
}

func TestParseRecordingPath(t *testing.T) {
	jobID, candID, idx := parseRecordingPath("recordings/j1/c1/q3-ab12cd34.webm")
	assert.Equal(t, "j1", jobID)
	assert.Equal(t, "c1", candID)
	assert.Equal(t, 3, idx)

	jobID, candID, idx = parseRecordingPath("uploads/other/layout.bin")
	assert.Empty(t, jobID)
	assert.Empty(t, candID)
	assert.Zero(t, idx)
}
