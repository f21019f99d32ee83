package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/reelhire/reelhire/internal/models"
)

// DraftRepository holds jobs under construction, same replace-only contract
// as the job collection.
type DraftRepository interface {
	FetchAll(ctx context.Context) ([]models.Draft, error)
	ReplaceAll(ctx context.Context, drafts []models.Draft) error
}

type draftRepo struct {
	col *mongo.Collection
}

func NewDraftRepo(db *mongo.Database) DraftRepository {
	return &draftRepo{col: db.Collection("drafts")}
}

func (r *draftRepo) FetchAll(ctx context.Context) ([]models.Draft, error) {
	cur, err := r.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	drafts := []models.Draft{}
	if err := cur.All(ctx, &drafts); err != nil {
		return nil, err
	}
	return drafts, nil
}

func (r *draftRepo) ReplaceAll(ctx context.Context, drafts []models.Draft) error {
	if _, err := r.col.DeleteMany(ctx, bson.M{}); err != nil {
		return err
	}
	if len(drafts) == 0 {
		return nil
	}

	docs := make([]any, len(drafts))
	for i := range drafts {
		docs[i] = drafts[i]
	}
	_, err := r.col.InsertMany(ctx, docs)
	return err
}
