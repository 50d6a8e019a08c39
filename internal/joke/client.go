// Package joke provides the outbound client for the external joke source.
package joke

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/xiaot623/mcp-bridge/internal/domain"
)

// ErrUnavailable is returned when the joke source errors, times out, or
// responds with a non-success status.
var ErrUnavailable = errors.New("joke source unavailable")

// Client fetches jokes from an external HTTP source.
type Client struct {
	url        string
	httpClient *http.Client
}

// NewClient creates a joke client with a bounded request timeout.
func NewClient(url string, timeout time.Duration) *Client {
	return &Client{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Random fetches a random joke. The setup and punchline are returned
// exactly as received from the source.
func (c *Client) Random(ctx context.Context) (*domain.Joke, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var joke domain.Joke
	if err := json.Unmarshal(body, &joke); err != nil {
		return nil, fmt.Errorf("%w: malformed response", ErrUnavailable)
	}

	return &joke, nil
}
