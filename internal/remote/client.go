package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/reelhire/reelhire/internal/models"
	"github.com/reelhire/reelhire/internal/utils"
)

// Client is the transport to the server-authoritative record store. The
// protocol is whole-collection only: every write replaces the full array,
// every read returns it. No partial-update endpoint exists.
type Client interface {
	FetchJobs(ctx context.Context) ([]models.Job, error)
	ReplaceJobs(ctx context.Context, jobs []models.Job) error

	FetchDrafts(ctx context.Context) ([]models.Draft, error)
	ReplaceDrafts(ctx context.Context, drafts []models.Draft) error
}

// HTTPClient talks JSON over HTTP. Connectivity failures come back as
// CodeUnavailable so the reconcile store can fall through to the local
// snapshot; the client itself never retries.
type HTTPClient struct {
	baseURL string
	token   string
	hc      *http.Client
}

func NewHTTPClient(baseURL, token string) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		token:   token,
		hc:      &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *HTTPClient) FetchJobs(ctx context.Context) ([]models.Job, error) {
	const op = "Remote.FetchJobs"
	var jobs []models.Job
	if err := c.get(ctx, op, "/api/jobs", &jobs); err != nil {
		return nil, err
	}
	if jobs == nil {
		jobs = []models.Job{}
	}
	return jobs, nil
}

func (c *HTTPClient) ReplaceJobs(ctx context.Context, jobs []models.Job) error {
	const op = "Remote.ReplaceJobs"
	if jobs == nil {
		jobs = []models.Job{}
	}
	return c.post(ctx, op, "/api/jobs", jobs)
}

func (c *HTTPClient) FetchDrafts(ctx context.Context) ([]models.Draft, error) {
	const op = "Remote.FetchDrafts"
	var drafts []models.Draft
	if err := c.get(ctx, op, "/api/drafts", &drafts); err != nil {
		return nil, err
	}
	if drafts == nil {
		drafts = []models.Draft{}
	}
	return drafts, nil
}

func (c *HTTPClient) ReplaceDrafts(ctx context.Context, drafts []models.Draft) error {
	const op = "Remote.ReplaceDrafts"
	if drafts == nil {
		drafts = []models.Draft{}
	}
	return c.post(ctx, op, "/api/drafts", drafts)
}

func (c *HTTPClient) get(ctx context.Context, op, path string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return utils.E(utils.CodeInternal, op, "build request", err)
	}
	c.setHeaders(req)

	resp, err := c.hc.Do(req)
	if err != nil {
		return utils.E(utils.CodeUnavailable, op, "record store unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusError(op, resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return utils.E(utils.CodeInternal, op, "decode response", err)
	}
	return nil
}

func (c *HTTPClient) post(ctx context.Context, op, path string, val any) error {
	b, err := json.Marshal(val)
	if err != nil {
		return utils.E(utils.CodeInternal, op, "encode collection", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return utils.E(utils.CodeInternal, op, "build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.setHeaders(req)

	resp, err := c.hc.Do(req)
	if err != nil {
		return utils.E(utils.CodeUnavailable, op, "record store unreachable", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return statusError(op, resp)
	}
	return nil
}

func (c *HTTPClient) setHeaders(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

func statusError(op string, resp *http.Response) error {
	msg := fmt.Sprintf("record store returned %d", resp.StatusCode)
	if resp.StatusCode >= 500 {
		return utils.E(utils.CodeUnavailable, op, msg, nil)
	}
	return utils.E(utils.CodeInternal, op, msg, nil)
}
