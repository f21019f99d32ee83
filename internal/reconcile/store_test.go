package reconcile

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reelhire/reelhire/internal/localstore"
	"github.com/reelhire/reelhire/internal/models"
	"github.com/reelhire/reelhire/internal/utils"
)

// fakeRemote is an in-memory record store whose reachability can be toggled
// per test.
type fakeRemote struct {
	jobs   []models.Job
	drafts []models.Draft
	down   bool

	replaceCalls int
}

var errDown = errors.New("connection refused")

func (f *fakeRemote) FetchJobs(ctx context.Context) ([]models.Job, error) {
	if f.down {
		return nil, errDown
	}
	out := make([]models.Job, len(f.jobs))
	copy(out, f.jobs)
	return out, nil
}

func (f *fakeRemote) ReplaceJobs(ctx context.Context, jobs []models.Job) error {
	f.replaceCalls++
	if f.down {
		return errDown
	}
	f.jobs = make([]models.Job, len(jobs))
	copy(f.jobs, jobs)
	return nil
}

func (f *fakeRemote) FetchDrafts(ctx context.Context) ([]models.Draft, error) {
	if f.down {
		return nil, errDown
	}
	return f.drafts, nil
}

func (f *fakeRemote) ReplaceDrafts(ctx context.Context, drafts []models.Draft) error {
	if f.down {
		return errDown
	}
	f.drafts = drafts
	return nil
}

// failingSnapshot rejects every write, to exercise the double-failure path.
type failingSnapshot struct{}

func (failingSnapshot) LoadJobs(ctx context.Context) ([]models.Job, error) {
	return nil, errors.New("disk full")
}
func (failingSnapshot) SaveJobs(ctx context.Context, jobs []models.Job) error {
	return errors.New("disk full")
}
func (failingSnapshot) LoadDrafts(ctx context.Context) ([]models.Draft, error) {
	return nil, errors.New("disk full")
}
func (failingSnapshot) SaveDrafts(ctx context.Context, drafts []models.Draft) error {
	return errors.New("disk full")
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestStore(t *testing.T, remote *fakeRemote) (*Store, *localstore.FileStore) {
	t.Helper()
	fs, err := localstore.NewFileStore(t.TempDir())
	require.NoError(t, err)
	return NewStore(remote, fs, quietLogger()), fs
}

func TestLoadOnlineMirrorsLocally(t *testing.T) {
	remote := &fakeRemote{jobs: []models.Job{{ID: "j1", Title: "Backend Engineer"}}}
	store, fs := newTestStore(t, remote)

	jobs, status, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusSynced, status)
	require.Len(t, jobs, 1)

	mirrored, err := fs.LoadJobs(context.Background())
	require.NoError(t, err)
	require.Len(t, mirrored, 1)
	assert.Equal(t, "j1", mirrored[0].ID)
}

func TestLoadOfflineServesSnapshot(t *testing.T) {
	remote := &fakeRemote{jobs: []models.Job{{ID: "j1"}}}
	store, _ := newTestStore(t, remote)

	_, _, err := store.Load(context.Background())
	require.NoError(t, err)

	remote.down = true
	jobs, status, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusOffline, status)
	require.Len(t, jobs, 1)
	assert.Equal(t, "j1", jobs[0].ID)
	assert.Equal(t, StatusOffline, store.Status())
}

func TestLoadPushesOfflineCreatedJobs(t *testing.T) {
	remote := &fakeRemote{jobs: []models.Job{{ID: "server-1"}}}
	store, fs := newTestStore(t, remote)

	// a job created while offline sits only in the snapshot
	require.NoError(t, fs.SaveJobs(context.Background(), []models.Job{
		{ID: "server-1"},
		{ID: "offline-1", Title: "Created Offline"},
	}))

	jobs, status, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusSynced, status)
	require.Len(t, jobs, 2)

	require.Len(t, remote.jobs, 2)
	assert.Equal(t, "offline-1", remote.jobs[1].ID)
}

func TestSaveDegradesWhenRemoteDown(t *testing.T) {
	remote := &fakeRemote{}
	store, fs := newTestStore(t, remote)

	remote.down = true
	status, err := store.Save(context.Background(), []models.Job{{ID: "j1"}})
	require.NoError(t, err)
	assert.Equal(t, StatusDegraded, status)

	// the write is durable locally even though the server never saw it
	saved, err := fs.LoadJobs(context.Background())
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, "j1", saved[0].ID)
}

func TestSaveDoubleFailureIsFatal(t *testing.T) {
	remote := &fakeRemote{down: true}
	store := NewStore(remote, failingSnapshot{}, quietLogger())

	_, _, _ = store.Load(context.Background())
	before := store.Snapshot()

	_, err := store.Save(context.Background(), []models.Job{{ID: "j1"}})
	require.Error(t, err)
	var appErr *utils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, utils.CodePersistence, appErr.Code)

	// in-memory collection untouched so the caller can retry as-is
	assert.Equal(t, before, store.Snapshot())
}

func TestSyncToServerClearsDegraded(t *testing.T) {
	remote := &fakeRemote{}
	store, _ := newTestStore(t, remote)

	remote.down = true
	_, err := store.Save(context.Background(), []models.Job{{ID: "j1"}})
	require.NoError(t, err)
	require.Equal(t, StatusDegraded, store.Status())

	remote.down = false
	require.NoError(t, store.SyncToServer(context.Background()))
	assert.Equal(t, StatusSynced, store.Status())
	require.Len(t, remote.jobs, 1)
}

func TestUpdateJobUnknownIDIsNoOp(t *testing.T) {
	remote := &fakeRemote{jobs: []models.Job{{ID: "j1"}}}
	store, _ := newTestStore(t, remote)
	_, _, err := store.Load(context.Background())
	require.NoError(t, err)

	calls := remote.replaceCalls
	_, err = store.UpdateJob(context.Background(), models.Job{ID: "ghost"})
	require.NoError(t, err)
	assert.Equal(t, calls, remote.replaceCalls, "no-op update must not write")
	assert.Len(t, store.Snapshot(), 1)
}

func TestUpdateJobReplacesWholeDocument(t *testing.T) {
	remote := &fakeRemote{jobs: []models.Job{{ID: "j1", Title: "old"}}}
	store, _ := newTestStore(t, remote)
	_, _, err := store.Load(context.Background())
	require.NoError(t, err)

	updated := models.Job{ID: "j1", Title: "new", Candidates: []models.Candidate{{ID: "c1"}}}
	status, err := store.UpdateJob(context.Background(), updated)
	require.NoError(t, err)
	assert.Equal(t, StatusSynced, status)

	got, ok := store.FindJob("j1")
	require.True(t, ok)
	assert.Equal(t, "new", got.Title)
	require.Len(t, got.Candidates, 1)
	require.Len(t, remote.jobs, 1)
	assert.Equal(t, "new", remote.jobs[0].Title)
}

func TestMarkCandidateSeenClearsFlagOnce(t *testing.T) {
	remote := &fakeRemote{jobs: []models.Job{{
		ID:         "j1",
		Candidates: []models.Candidate{{ID: "c1", IsNew: true}},
	}}}
	store, _ := newTestStore(t, remote)
	_, _, err := store.Load(context.Background())
	require.NoError(t, err)

	_, err = store.MarkCandidateSeen(context.Background(), "j1", "c1")
	require.NoError(t, err)

	got, _ := store.FindJob("j1")
	assert.False(t, got.Candidates[0].IsNew)

	// second call is a no-op, not an error
	calls := remote.replaceCalls
	_, err = store.MarkCandidateSeen(context.Background(), "j1", "c1")
	require.NoError(t, err)
	assert.Equal(t, calls, remote.replaceCalls)
}

func TestSubscribeFiresOnAdoptAndUnsubscribes(t *testing.T) {
	remote := &fakeRemote{jobs: []models.Job{{ID: "j1"}}}
	store, _ := newTestStore(t, remote)

	fired := 0
	unsub := store.Subscribe(func() { fired++ })

	_, _, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, fired)

	unsub()
	_, _, err = store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, fired)
}

func TestDraftLifecycle(t *testing.T) {
	remote := &fakeRemote{}
	store, _ := newTestStore(t, remote)
	ctx := context.Background()

	draft := models.Draft{Job: models.Job{ID: "d1", Title: "Half-built role", IsDraft: true}, CurrentStep: 2}
	require.NoError(t, store.SaveDraft(ctx, draft))

	// upsert by id
	draft.CurrentStep = 3
	require.NoError(t, store.SaveDraft(ctx, draft))
	drafts, err := store.Drafts(ctx)
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, 3, drafts[0].CurrentStep)

	status, err := store.PromoteDraft(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, StatusSynced, status)

	drafts, err = store.Drafts(ctx)
	require.NoError(t, err)
	assert.Empty(t, drafts)

	got, ok := store.FindJob("d1")
	require.True(t, ok)
	assert.False(t, got.IsDraft)
}

func TestPromoteDraftNotFound(t *testing.T) {
	store, _ := newTestStore(t, &fakeRemote{})
	_, err := store.PromoteDraft(context.Background(), "ghost")
	var appErr *utils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, utils.CodeNotFound, appErr.Code)
}
