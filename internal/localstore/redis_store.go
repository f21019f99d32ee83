package localstore

import (
	"context"

	"github.com/reelhire/reelhire/internal/cache"
	"github.com/reelhire/reelhire/internal/models"
)

// RedisStore keeps the snapshot blobs in the shared cache. Used where the
// client context has no writable filesystem but does have a redis nearby
// (kiosk deployments). Snapshots do not expire.
type RedisStore struct {
	c      cache.Cache
	prefix string
}

func NewRedisStore(c cache.Cache, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "snapshot"
	}
	return &RedisStore{c: c, prefix: prefix}
}

func (s *RedisStore) LoadJobs(ctx context.Context) ([]models.Job, error) {
	var jobs []models.Job
	hit, err := s.c.GetJSON(ctx, s.prefix+":jobs", &jobs)
	if err != nil {
		return nil, err
	}
	if !hit || jobs == nil {
		return []models.Job{}, nil
	}
	return jobs, nil
}

func (s *RedisStore) SaveJobs(ctx context.Context, jobs []models.Job) error {
	if jobs == nil {
		jobs = []models.Job{}
	}
	return s.c.SetJSON(ctx, s.prefix+":jobs", jobs, 0)
}

func (s *RedisStore) LoadDrafts(ctx context.Context) ([]models.Draft, error) {
	var drafts []models.Draft
	hit, err := s.c.GetJSON(ctx, s.prefix+":drafts", &drafts)
	if err != nil {
		return nil, err
	}
	if !hit || drafts == nil {
		return []models.Draft{}, nil
	}
	return drafts, nil
}

func (s *RedisStore) SaveDrafts(ctx context.Context, drafts []models.Draft) error {
	if drafts == nil {
		drafts = []models.Draft{}
	}
	return s.c.SetJSON(ctx, s.prefix+":drafts", drafts, 0)
}
