package loadtest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const idempotencyKeyHeader = "Idempotency-Key"

// HTTPClient wraps http.Client with timeout and JSON helpers.
type HTTPClient struct {
	client  *http.Client
	baseURL string
}

// newHTTPClient creates a new HTTP client with timeout.
func newHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// do sends a request and decodes a JSON response into out when out is not
// nil. It returns the status code.
func (c *HTTPClient) do(ctx context.Context, method, path, key string, body, out any) (int, error) {
	var reader io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if key != "" {
		req.Header.Set(idempotencyKeyHeader, key)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("read response body: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return resp.StatusCode, fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, bytes.TrimSpace(data))
	}
	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode %s %s: %w", method, path, err)
		}
	}
	return resp.StatusCode, nil
}

// post sends a keyed POST. With replay set it sends the same request again
// and reports whether the server recognised the duplicate.
func (c *HTTPClient) post(ctx context.Context, path string, body, out any, replay bool) (duplicate bool, err error) {
	key := uuid.NewString()
	if _, err := c.do(ctx, http.MethodPost, path, key, body, out); err != nil {
		return false, err
	}
	if !replay {
		return false, nil
	}

	var ack ackResponse
	status, err := c.do(ctx, http.MethodPost, path, key, body, &ack)
	if err != nil {
		return false, err
	}
	if status != http.StatusOK || !ack.Duplicate {
		return false, fmt.Errorf("replayed %s was not recognised as duplicate (status %d)", path, status)
	}
	return true, nil
}
