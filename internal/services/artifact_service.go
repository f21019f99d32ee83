package services

import (
	"context"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"github.com/reelhire/reelhire/internal/models"
	pgrepo "github.com/reelhire/reelhire/internal/repositories/postgres"
	"github.com/reelhire/reelhire/internal/storage"
	"github.com/reelhire/reelhire/internal/utils"
)

// ArtifactService wraps an object-storage uploader and records a metadata
// row for every recording that reaches durable storage. It satisfies
// storage.Uploader, so a session can be wired with or without bookkeeping.
// A metadata insert failure never fails the upload: the collection carries
// the URL either way.
type ArtifactService struct {
	uploader storage.Uploader
	repo     pgrepo.ArtifactRepository
	log      *logrus.Logger
}

func NewArtifactService(uploader storage.Uploader, repo pgrepo.ArtifactRepository, log *logrus.Logger) *ArtifactService {
	if log == nil {
		log = logrus.New()
	}
	return &ArtifactService{uploader: uploader, repo: repo, log: log}
}

func (s *ArtifactService) Upload(ctx context.Context, objectName string, contentType string, r io.Reader) (string, error) {
	const op = "ArtifactService.Upload"

	if s.uploader == nil {
		return "", utils.E(utils.CodeInternal, op, "uploader is not configured", nil)
	}

	cr := &countingReader{r: r}
	url, err := s.uploader.Upload(ctx, objectName, contentType, cr)
	if err != nil {
		return "", err
	}

	if s.repo != nil {
		jobID, candidateID, questionIndex := parseRecordingPath(objectName)
		row := &models.RecordingArtifact{
			ID:            uuid.NewString(),
			JobID:         jobID,
			CandidateID:   candidateID,
			QuestionIndex: questionIndex,
			ObjectPath:    objectName,
			PublicURL:     url,
			SizeBytes:     cr.n,
			MimeType:      contentType,
			Metadata:      datatypes.JSON([]byte(`{"source":"recording-session"}`)),
			UploadedAt:    time.Now().UTC(),
		}
		if err := s.repo.Insert(ctx, row); err != nil {
			s.log.WithError(err).WithField("object", objectName).Warn("failed to persist artifact metadata")
		}
	}

	return url, nil
}

// ListRecordings returns the metadata rows for one candidate's uploads,
// newest first. Reviewers use this to reach artifacts that predate the
// collection's current (replace-semantics) VideoResponses.
func (s *ArtifactService) ListRecordings(ctx context.Context, jobID, candidateID string) ([]models.RecordingArtifact, error) {
	const op = "ArtifactService.ListRecordings"

	if s.repo == nil {
		return nil, utils.E(utils.CodeUnavailable, op, "artifact metadata is not configured", nil)
	}
	rows, err := s.repo.ListByCandidate(ctx, jobID, candidateID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list artifacts", err)
	}
	return rows, nil
}

// parseRecordingPath recovers the identifiers from the canonical object
// layout recordings/<job>/<candidate>/q<index>-<random>.<ext>. Unknown
// layouts yield empty ids, which is fine: the row still records the path.
func parseRecordingPath(objectName string) (jobID, candidateID string, questionIndex int) {
	parts := strings.Split(objectName, "/")
	if len(parts) != 4 || parts[0] != "recordings" {
		return "", "", 0
	}
	jobID, candidateID = parts[1], parts[2]

	base := parts[3]
	if strings.HasPrefix(base, "q") {
		if dash := strings.Index(base, "-"); dash > 1 {
			if n, err := strconv.Atoi(base[1:dash]); err == nil {
				questionIndex = n
			}
		}
	}
	return jobID, candidateID, questionIndex
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
