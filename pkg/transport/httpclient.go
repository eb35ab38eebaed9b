// Copyright 2025 Certen Protocol
//
// HTTP transport binding pkg/client.InnerClient to the wire codec in
// pkg/rpc, grounded on the teacher's net/http usage in the root
// main.go (plain net/http, no RPC framework).

package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/certen/verifying-client/pkg/rpc"
)

// HTTPClient posts a batch of sub-requests as a single JSON array to
// ServerURL and expects a JSON array of sub-responses back, in the
// same order and count (spec.md §6's batch semantics).
type HTTPClient struct {
	ServerURL  string
	HTTPClient *http.Client
}

// NewHTTPClient builds an HTTPClient with a bounded request timeout.
func NewHTTPClient(serverURL string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPClient{
		ServerURL:  serverURL,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

// Batch implements pkg/client.InnerClient.
func (c *HTTPClient) Batch(ctx context.Context, requests []rpc.Request) ([]rpc.Response, error) {
	body, err := json.Marshal(requests)
	if err != nil {
		return nil, fmt.Errorf("encoding batch request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.ServerURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building batch http request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("batch http call failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading batch response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("batch http call returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var responses []rpc.Response
	if err := json.Unmarshal(respBody, &responses); err != nil {
		return nil, fmt.Errorf("decoding batch response body: %w", err)
	}
	return responses, nil
}
