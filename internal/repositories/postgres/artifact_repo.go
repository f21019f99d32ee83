package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/reelhire/reelhire/internal/models"
)

type ArtifactRepository interface {
	Insert(ctx context.Context, a *models.RecordingArtifact) error
	ListByCandidate(ctx context.Context, jobID, candidateID string) ([]models.RecordingArtifact, error)
}

type artifactRepo struct {
	db *gorm.DB
}

func NewArtifactRepo(db *gorm.DB) ArtifactRepository {
	return &artifactRepo{db: db}
}

func (r *artifactRepo) Insert(ctx context.Context, a *models.RecordingArtifact) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *artifactRepo) ListByCandidate(ctx context.Context, jobID, candidateID string) ([]models.RecordingArtifact, error) {
	var rows []models.RecordingArtifact
	err := r.db.WithContext(ctx).
		Where("job_id = ? AND candidate_id = ?", jobID, candidateID).
		Order("uploaded_at DESC").
		Find(&rows).Error
	return rows, err
}
