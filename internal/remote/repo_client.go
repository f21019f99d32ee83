package remote

import (
	"context"

	"github.com/reelhire/reelhire/internal/models"
	mongorepo "github.com/reelhire/reelhire/internal/repositories/mongo"
)

// RepoClient satisfies Client directly against the mongo repositories. The
// analysis worker pool runs next to the record store and has no reason to
// loop back over HTTP; it still goes through the same reconcile semantics as
// every other client.
type RepoClient struct {
	jobs   mongorepo.JobCollectionRepository
	drafts mongorepo.DraftRepository
}

func NewRepoClient(jobs mongorepo.JobCollectionRepository, drafts mongorepo.DraftRepository) *RepoClient {
	return &RepoClient{jobs: jobs, drafts: drafts}
}

func (c *RepoClient) FetchJobs(ctx context.Context) ([]models.Job, error) {
	return c.jobs.FetchAll(ctx)
}

func (c *RepoClient) ReplaceJobs(ctx context.Context, jobs []models.Job) error {
	return c.jobs.ReplaceAll(ctx, jobs)
}

func (c *RepoClient) FetchDrafts(ctx context.Context) ([]models.Draft, error) {
	return c.drafts.FetchAll(ctx)
}

func (c *RepoClient) ReplaceDrafts(ctx context.Context, drafts []models.Draft) error {
	return c.drafts.ReplaceAll(ctx, drafts)
}
