package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// HTTPProvider calls a remote analysis endpoint speaking the Request/Result
// contract (the record store server exposes one at /api/analyze). Used by
// client contexts that hold no model credentials of their own.
type HTTPProvider struct {
	url   string
	token string
	hc    *http.Client
}

func NewHTTPProvider(url, token string) *HTTPProvider {
	return &HTTPProvider{
		url:   url,
		token: token,
		hc:    &http.Client{Timeout: 90 * time.Second},
	}
}

func (p *HTTPProvider) Close() error { return nil }

func (p *HTTPProvider) Analyze(ctx context.Context, req Request) (Result, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return Result{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return Result{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if p.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+p.token)
	}

	resp, err := p.hc.Do(httpReq)
	if err != nil {
		return Result{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("analysis endpoint returned %d", resp.StatusCode)
	}

	var res Result
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return Result{}, err
	}
	return res, nil
}
