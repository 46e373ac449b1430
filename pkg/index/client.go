// Copyright 2025 ZapDeliver Authors
// SPDX-License-Identifier: Apache-2.0

package index

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/LeeDigitalWorks/zapdeliver/pkg/delivererr"
	"github.com/LeeDigitalWorks/zapdeliver/pkg/types"
)

// Client queries the external index over HTTP JSON. The HTTP client is an
// explicit dependency so tests can substitute a deterministic transport.
type Client struct {
	endpoint string
	kind     string
	httpc    *http.Client
}

// NewClient creates an index client from config. A nil httpc uses a client
// bounded by the configured timeout.
func NewClient(cfg types.IndexConfig, httpc *http.Client) *Client {
	if httpc == nil {
		timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpc = &http.Client{Timeout: timeout}
	}
	return &Client{
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		kind:     cfg.Kind,
		httpc:    httpc,
	}
}

// Query runs one page-bounded query. Transport and non-2xx failures are
// upstream errors: the index could not be reached or refused the query.
func (c *Client) Query(ctx context.Context, req QueryRequest) (*QueryResponse, error) {
	if req.Kind == "" {
		req.Kind = c.kind
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, delivererr.Wrap(delivererr.KindValidation, "index.query", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/query", bytes.NewReader(body))
	if err != nil {
		return nil, delivererr.Wrap(delivererr.KindValidation, "index.query", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		return nil, delivererr.Wrap(delivererr.KindUpstream, "index.query", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, delivererr.Newf(delivererr.KindUpstream, "index.query", "index returned status %d", resp.StatusCode)
	}

	var out QueryResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, delivererr.Wrap(delivererr.KindUpstream, "index.query", fmt.Errorf("decode response: %w", err))
	}
	return &out, nil
}
