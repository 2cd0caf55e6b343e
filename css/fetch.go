package css

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// Fetcher retrieves the text content behind a stylesheet URL. The
// default fetcher speaks HTTP; tests and embedders inject their own.
type Fetcher func(ctx context.Context, url string) (string, error)

// HTTPFetcher returns a Fetcher backed by client (http.DefaultClient
// when nil). Non-2xx responses are errors.
func HTTPFetcher(client *http.Client) Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return func(ctx context.Context, url string) (string, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return "", fmt.Errorf("error creating request for %s: %w", url, err)
		}
		resp, err := client.Do(req)
		if err != nil {
			return "", fmt.Errorf("error fetching %s: %w", url, err)
		}
		defer resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return "", fmt.Errorf("error fetching %s: status %d", url, resp.StatusCode)
		}
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", fmt.Errorf("error reading %s: %w", url, err)
		}
		return string(body), nil
	}
}
