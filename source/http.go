package source

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// HTTPReader fetches content with HTTP GET
type HTTPReader struct {
	Client *http.Client
}

// NewHTTPReader creates an HTTPReader whose requests time out after timeout,
// DefaultHTTPTimeout when zero.
func NewHTTPReader(timeout time.Duration) *HTTPReader {
	if timeout <= 0 {
		timeout = DefaultHTTPTimeout
	}
	return &HTTPReader{Client: &http.Client{Timeout: timeout}}
}

// Read fetches url and decompresses the body by the URL's extension
func (r *HTTPReader) Read(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, readError(url, err)
	}

	client := r.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, readError(url, fmt.Errorf("HTTP request failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, readError(url, fmt.Errorf("HTTP request returned status %d", resp.StatusCode))
	}

	data, err := readAll(ctx, resp.Body, stripQuery(url))
	if err != nil {
		return nil, readError(url, err)
	}
	return data, nil
}

// stripQuery drops the query string and fragment of a URL
func stripQuery(url string) string {
	if i := strings.IndexAny(url, "?#"); i >= 0 {
		return url[:i]
	}
	return url
}
