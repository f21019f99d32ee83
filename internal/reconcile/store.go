package reconcile

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/reelhire/reelhire/internal/localstore"
	"github.com/reelhire/reelhire/internal/models"
	"github.com/reelhire/reelhire/internal/remote"
	"github.com/reelhire/reelhire/internal/utils"
)

// Status reports how the last load/save round-trip went.
type Status string

const (
	// StatusSynced: remote and local hold the same collection.
	StatusSynced Status = "synced"
	// StatusDegraded: the last write reached local storage only; data is safe
	// but the server is behind until the next successful save or sync.
	StatusDegraded Status = "degraded"
	// StatusOffline: the last load could not reach the server and served the
	// local snapshot.
	StatusOffline Status = "offline"
)

// Store maintains the illusion of one logical job collection over two
// physically distinct copies: the local snapshot and the server-authoritative
// record store. All reads fall back to local; all writes fall back to local;
// the only fatal condition is both copies rejecting a write.
//
// Listeners registered via Subscribe fire after every adopted change, which
// is how job-scoped views notice external updates (the websocket refresh
// signal ends in a Reload here).
type Store struct {
	remote remote.Client
	local  localstore.SnapshotStore
	log    *logrus.Logger

	mu        sync.Mutex
	jobs      []models.Job
	status    Status
	listeners map[int]func()
	nextSub   int
}

func NewStore(rc remote.Client, ls localstore.SnapshotStore, log *logrus.Logger) *Store {
	if log == nil {
		log = logrus.New()
	}
	return &Store{
		remote:    rc,
		local:     ls,
		log:       log,
		jobs:      []models.Job{},
		status:    StatusSynced,
		listeners: map[int]func(){},
	}
}

// Load fetches the remote collection, merges in any local-only jobs, pushes
// the merged set back (best-effort) and adopts it. When the server is
// unreachable it serves the local snapshot with StatusOffline.
func (s *Store) Load(ctx context.Context) ([]models.Job, Status, error) {
	const op = "Store.Load"

	remoteJobs, rerr := s.remote.FetchJobs(ctx)
	if rerr != nil {
		s.log.WithError(rerr).Warn("record store unreachable, serving local snapshot")
		localJobs, lerr := s.local.LoadJobs(ctx)
		if lerr != nil {
			return nil, StatusOffline, utils.E(utils.CodeUnavailable, op, "remote unreachable and local snapshot unreadable", lerr)
		}
		s.adopt(localJobs, StatusOffline)
		return s.Snapshot(), StatusOffline, nil
	}

	localJobs, lerr := s.local.LoadJobs(ctx)
	if lerr != nil {
		// A broken snapshot must not block the online path.
		s.log.WithError(lerr).Warn("local snapshot unreadable, treating as empty")
		localJobs = nil
	}

	merged, localOnly := MergeJobs(remoteJobs, localJobs)
	if len(localOnly) > 0 {
		s.log.WithField("count", len(localOnly)).Info("pushing offline-created jobs to record store")
		if err := s.remote.ReplaceJobs(ctx, merged); err != nil {
			// Best-effort: the jobs stay in the merged set and in the local
			// snapshot, so nothing is lost; the next save retries.
			s.log.WithError(err).Warn("failed to push merged collection")
		}
	}

	if err := s.local.SaveJobs(ctx, merged); err != nil {
		s.log.WithError(err).Warn("failed to mirror merged collection locally")
	}

	s.adopt(merged, StatusSynced)
	return s.Snapshot(), StatusSynced, nil
}

// Save is write-through: remote first, local mirror on success. When the
// remote write fails the collection still lands in the local snapshot and
// the status degrades; only a double failure is fatal, in which case the
// in-memory collection is left untouched so the caller can retry as-is.
func (s *Store) Save(ctx context.Context, jobs []models.Job) (Status, error) {
	const op = "Store.Save"

	if jobs == nil {
		jobs = []models.Job{}
	}

	rerr := s.remote.ReplaceJobs(ctx, jobs)
	if rerr == nil {
		if err := s.local.SaveJobs(ctx, jobs); err != nil {
			s.log.WithError(err).Warn("remote write ok but local mirror failed")
		}
		s.adopt(jobs, StatusSynced)
		return StatusSynced, nil
	}

	s.log.WithError(rerr).Warn("record store write failed, writing local snapshot only")
	if lerr := s.local.SaveJobs(ctx, jobs); lerr != nil {
		return s.Status(), utils.E(utils.CodePersistence, op, "both remote and local writes failed", lerr)
	}

	s.adopt(jobs, StatusDegraded)
	return StatusDegraded, nil
}

// UpdateJob replaces the entry matching job.ID in the current collection and
// saves the whole collection. An unknown id is a warn-level no-op.
func (s *Store) UpdateJob(ctx context.Context, job models.Job) (Status, error) {
	s.mu.Lock()
	found := false
	jobs := make([]models.Job, len(s.jobs))
	copy(jobs, s.jobs)
	for i := range jobs {
		if jobs[i].ID == job.ID {
			jobs[i] = job
			found = true
			break
		}
	}
	status := s.status
	s.mu.Unlock()

	if !found {
		s.log.WithField("job_id", job.ID).Warn("update for unknown job id, ignoring")
		return status, nil
	}
	return s.Save(ctx, jobs)
}

// AppendJob adds a new job to the collection and saves it.
func (s *Store) AppendJob(ctx context.Context, job models.Job) (Status, error) {
	s.mu.Lock()
	jobs := make([]models.Job, len(s.jobs), len(s.jobs)+1)
	copy(jobs, s.jobs)
	jobs = append(jobs, job)
	s.mu.Unlock()
	return s.Save(ctx, jobs)
}

// Reload re-runs Load and discards the return values. Used when an external
// change is suspected (focus/visibility signal, websocket nudge) and by the
// submission pipeline's lookup retry.
func (s *Store) Reload(ctx context.Context) error {
	_, _, err := s.Load(ctx)
	return err
}

// SyncToServer pushes the current in-memory collection to the record store.
// On success a degraded status clears. Safe to call repeatedly: replacing
// the collection with the same contents is idempotent.
func (s *Store) SyncToServer(ctx context.Context) error {
	const op = "Store.SyncToServer"

	jobs := s.Snapshot()
	if err := s.remote.ReplaceJobs(ctx, jobs); err != nil {
		return utils.E(utils.CodeUnavailable, op, "record store unreachable", err)
	}
	if err := s.local.SaveJobs(ctx, jobs); err != nil {
		s.log.WithError(err).Warn("failed to refresh local snapshot after sync")
	}
	s.adopt(jobs, StatusSynced)
	return nil
}

// MarkCandidateSeen clears the one-shot "unseen result" flag. It never sets
// the flag back; only a fresh submission does that.
func (s *Store) MarkCandidateSeen(ctx context.Context, jobID, candidateID string) (Status, error) {
	job, ok := s.FindJob(jobID)
	if !ok {
		return s.Status(), utils.E(utils.CodeNotFound, "Store.MarkCandidateSeen", "job not found", nil)
	}
	cand := job.FindCandidate(candidateID)
	if cand == nil {
		return s.Status(), utils.E(utils.CodeNotFound, "Store.MarkCandidateSeen", "candidate not found", nil)
	}
	if !cand.IsNew {
		return s.Status(), nil
	}
	cand.IsNew = false
	return s.UpdateJob(ctx, job)
}

// Snapshot returns a copy of the in-memory collection.
func (s *Store) Snapshot() []models.Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Job, len(s.jobs))
	copy(out, s.jobs)
	return out
}

// FindJob returns a deep-enough copy of the job to mutate candidates safely
// before handing it back through UpdateJob.
func (s *Store) FindJob(id string) (models.Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.jobs {
		if s.jobs[i].ID == id {
			j := s.jobs[i]
			j.Candidates = make([]models.Candidate, len(s.jobs[i].Candidates))
			copy(j.Candidates, s.jobs[i].Candidates)
			return j, true
		}
	}
	return models.Job{}, false
}

func (s *Store) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Subscribe registers a listener fired after every adopted change. The
// returned function unsubscribes.
func (s *Store) Subscribe(fn func()) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *Store) adopt(jobs []models.Job, status Status) {
	s.mu.Lock()
	s.jobs = jobs
	s.status = status
	fns := make([]func(), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Drafts returns the locally stored draft collection.
func (s *Store) Drafts(ctx context.Context) ([]models.Draft, error) {
	return s.local.LoadDrafts(ctx)
}

// SaveDraft upserts one draft by id. Drafts live locally first; the remote
// draft collection is refreshed best-effort.
func (s *Store) SaveDraft(ctx context.Context, draft models.Draft) error {
	const op = "Store.SaveDraft"

	drafts, err := s.local.LoadDrafts(ctx)
	if err != nil {
		return utils.E(utils.CodePersistence, op, "load drafts", err)
	}

	replaced := false
	for i := range drafts {
		if drafts[i].ID == draft.ID {
			drafts[i] = draft
			replaced = true
			break
		}
	}
	if !replaced {
		drafts = append(drafts, draft)
	}

	if err := s.local.SaveDrafts(ctx, drafts); err != nil {
		return utils.E(utils.CodePersistence, op, "save drafts", err)
	}
	if err := s.remote.ReplaceDrafts(ctx, drafts); err != nil {
		s.log.WithError(err).Warn("failed to push draft collection")
	}
	return nil
}

// PromoteDraft removes the draft and inserts it into the job collection as a
// finalized job.
func (s *Store) PromoteDraft(ctx context.Context, draftID string) (Status, error) {
	const op = "Store.PromoteDraft"

	drafts, err := s.local.LoadDrafts(ctx)
	if err != nil {
		return s.Status(), utils.E(utils.CodePersistence, op, "load drafts", err)
	}

	idx := -1
	for i := range drafts {
		if drafts[i].ID == draftID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return s.Status(), utils.E(utils.CodeNotFound, op, "draft not found", nil)
	}

	job := drafts[idx].Job
	job.IsDraft = false
	job.LastModified = time.Now().UTC()

	status, err := s.AppendJob(ctx, job)
	if err != nil {
		return status, err
	}

	remaining := append(drafts[:idx:idx], drafts[idx+1:]...)
	if err := s.local.SaveDrafts(ctx, remaining); err != nil {
		s.log.WithError(err).Warn("promoted job saved but draft removal failed")
	} else if err := s.remote.ReplaceDrafts(ctx, remaining); err != nil {
		s.log.WithError(err).Warn("failed to push draft collection")
	}
	return status, nil
}
