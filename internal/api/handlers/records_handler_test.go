package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reelhire/reelhire/internal/models"
)

type fakeJobsRepo struct {
	jobs []models.Job
	err  error
}

func (r *fakeJobsRepo) FetchAll(ctx context.Context) ([]models.Job, error) {
	return r.jobs, r.err
}

func (r *fakeJobsRepo) ReplaceAll(ctx context.Context, jobs []models.Job) error {
	if r.err != nil {
		return r.err
	}
	r.jobs = jobs
	return nil
}

type fakeDraftsRepo struct {
	drafts []models.Draft
}

func (r *fakeDraftsRepo) FetchAll(ctx context.Context) ([]models.Draft, error) {
	return r.drafts, nil
}

func (r *fakeDraftsRepo) ReplaceAll(ctx context.Context, drafts []models.Draft) error {
	r.drafts = drafts
	return nil
}

func testRouter(jobs *fakeJobsRepo, drafts *fakeDraftsRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	log := logrus.New()
	log.SetOutput(io.Discard)
	h := NewRecordsHandler(jobs, drafts, nil, nil, log)

	r := gin.New()
	r.GET("/api/jobs", h.GetJobs)
	r.POST("/api/jobs", h.ReplaceJobs)
	r.GET("/api/drafts", h.GetDrafts)
	r.POST("/api/drafts", h.ReplaceDrafts)
	return r
}

func TestGetJobs(t *testing.T) {
	jobs := &fakeJobsRepo{jobs: []models.Job{{ID: "j1", Title: "Backend Engineer"}}}
	r := testRouter(jobs, &fakeDraftsRepo{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/jobs", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var got []models.Job
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "j1", got[0].ID)
}

func TestGetJobsRepoFailure(t *testing.T) {
	jobs := &fakeJobsRepo{err: errors.New("primary stepped down")}
	r := testRouter(jobs, &fakeDraftsRepo{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/jobs", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestReplaceJobs(t *testing.T) {
	jobs := &fakeJobsRepo{jobs: []models.Job{{ID: "old"}}}
	r := testRouter(jobs, &fakeDraftsRepo{})

	body := `[{"id":"a","title":"x"},{"id":"b","title":"y"}]`
	req := httptest.NewRequest(http.MethodPost, "/api/jobs", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, jobs.jobs, 2, "replace is whole-collection, not append")
	assert.Equal(t, "a", jobs.jobs[0].ID)
}

func TestReplaceJobsRejectsNonArray(t *testing.T) {
	r := testRouter(&fakeJobsRepo{}, &fakeDraftsRepo{})

	req := httptest.NewRequest(http.MethodPost, "/api/jobs", strings.NewReader(`{"id":"a"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDraftRoundTrip(t *testing.T) {
	drafts := &fakeDraftsRepo{}
	r := testRouter(&fakeJobsRepo{}, drafts)

	body := `[{"id":"d1","title":"Half-built","currentStep":2}]`
	req := httptest.NewRequest(http.MethodPost, "/api/drafts", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, drafts.drafts, 1)
	assert.Equal(t, 2, drafts.drafts[0].CurrentStep)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/drafts", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var got []models.Draft
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "d1", got[0].ID)
}
