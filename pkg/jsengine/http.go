package jsengine

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultFetchTimeout bounds a single download when the client has no timeout.
const DefaultFetchTimeout = 30 * time.Second

// maxFetchSize caps downloaded pages and scripts.
const maxFetchSize = 8 << 20

// fetch downloads uri and returns the body, failing on non-2xx responses.
func fetch(ctx context.Context, client *http.Client, uri string) (string, error) {
	if client == nil {
		client = &http.Client{Timeout: DefaultFetchTimeout}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/html, application/javascript, */*")

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("GET %s failed: %w", uri, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchSize))
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("GET %s: status %d", uri, resp.StatusCode)
	}
	return string(body), nil
}

// FetchPage downloads url and builds a Page from it. Scripts the page later
// injects are downloaded with the same client unless a library option serves them.
func FetchPage(ctx context.Context, client *http.Client, url string, opts ...PageOption) (*Page, error) {
	source, err := fetch(ctx, client, url)
	if err != nil {
		return nil, err
	}
	if client == nil {
		client = &http.Client{Timeout: DefaultFetchTimeout}
	}
	opts = append([]PageOption{WithURL(url), WithHTTPClient(client)}, opts...)
	return NewPage(source, opts...)
}
