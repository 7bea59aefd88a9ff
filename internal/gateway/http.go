// Package gateway is the only code that talks to the commerce backend, the
// newsletter provider and the geolocation service. Clients hold configuration
// only and are safe for concurrent use.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultTimeout applies when no HTTP client is configured
const DefaultTimeout = 15 * time.Second

const userAgent = "sugrae-storefront/1.0"

// maxBodyBytes bounds how much of a response is buffered
const maxBodyBytes = 4 << 20

func defaultClient(c *http.Client) *http.Client {
	if c != nil {
		return c
	}
	return &http.Client{Timeout: DefaultTimeout}
}

type response struct {
	status int
	body   []byte
}

func (r response) ok() bool {
	return r.status >= 200 && r.status < 300
}

// do sends a request with an optional JSON body. A nil error only means a
// response arrived; callers inspect the status.
func do(ctx context.Context, client *http.Client, method, url string, payload any, headers map[string]string) (response, error) {
	var body io.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return response{}, fmt.Errorf("marshaling request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return response{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return response{}, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return response{status: resp.StatusCode}, fmt.Errorf("reading response: %w", err)
	}
	return response{status: resp.StatusCode, body: respBody}, nil
}

// statusMessage is the fallback message for a non-2xx response without a
// parseable error payload
func statusMessage(status int) string {
	if text := http.StatusText(status); text != "" {
		return text
	}
	return fmt.Sprintf("unexpected status %d", status)
}
