package localstore

import (
	"context"

	"github.com/reelhire/reelhire/internal/models"
)

// SnapshotStore is the client-held persistent snapshot of the job and draft
// collections. Each collection is one serialized blob, replaced atomically
// on every write; there is no partial update.
//
// A missing snapshot is not an error: Load returns an empty slice so a fresh
// client starts from nothing.
type SnapshotStore interface {
	LoadJobs(ctx context.Context) ([]models.Job, error)
	SaveJobs(ctx context.Context, jobs []models.Job) error

	LoadDrafts(ctx context.Context) ([]models.Draft, error)
	SaveDrafts(ctx context.Context, drafts []models.Draft) error
}
