package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/reelhire/reelhire/internal/models"
)

// JobCollectionRepository is the authoritative job collection. The only
// write is a whole-collection replace; there is deliberately no per-document
// update, matching the record store contract clients rely on.
type JobCollectionRepository interface {
	FetchAll(ctx context.Context) ([]models.Job, error)
	ReplaceAll(ctx context.Context, jobs []models.Job) error
}

type jobCollectionRepo struct {
	col *mongo.Collection
}

func NewJobCollectionRepo(db *mongo.Database) JobCollectionRepository {
	return &jobCollectionRepo{col: db.Collection("jobs")}
}

func (r *jobCollectionRepo) FetchAll(ctx context.Context) ([]models.Job, error) {
	cur, err := r.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	jobs := []models.Job{}
	if err := cur.All(ctx, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

// ReplaceAll deletes everything and inserts the new collection. Not atomic,
// but the operation is idempotent: a client that saw a failure re-posts the
// same full collection and heals any partial state.
func (r *jobCollectionRepo) ReplaceAll(ctx context.Context, jobs []models.Job) error {
	if _, err := r.col.DeleteMany(ctx, bson.M{}); err != nil {
		return err
	}
	if len(jobs) == 0 {
		return nil
	}

	docs := make([]any, len(jobs))
	for i := range jobs {
		docs[i] = jobs[i]
	}
	_, err := r.col.InsertMany(ctx, docs)
	return err
}
