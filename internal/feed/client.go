package feed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/speedwagon-io/vitaldash/internal/model"
)

// Client issues the one GET per render pass against the sensor feed.
type Client struct {
	log    *slog.Logger
	url    string
	client *http.Client

	mu      sync.Mutex
	lastErr error
	lastAt  time.Time
}

func NewClient(log *slog.Logger, url string, timeout time.Duration) *Client {
	return &Client{
		log: log,
		url: url,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *Client) URL() string {
	return c.url
}

func (c *Client) Close() error {
	c.client.CloseIdleConnections()
	return nil
}

// Fetch retrieves and decodes the current readings. Errors wrap either
// ErrNetwork or ErrParse.
func (c *Client) Fetch(ctx context.Context) ([]model.SensorReading, error) {
	readings, err := c.fetch(ctx)
	c.record(err)
	return readings, err
}

func (c *Client) fetch(ctx context.Context) ([]model.SensorReading, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrNetwork, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to execute request: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: unexpected status code: %d", ErrNetwork, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response body: %v", ErrNetwork, err)
	}

	readings, err := Decode(body)
	if err != nil {
		return nil, err
	}

	c.log.Debug("fetched sensor feed",
		slog.String("url", c.url),
		slog.Int("readings", len(readings)),
	)

	return readings, nil
}

// Health reports the outcome of the most recent fetch without contacting
// the feed. Before the first fetch it reports healthy.
func (c *Client) Health(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.lastErr != nil {
		return fmt.Errorf("last fetch at %s failed: %w", c.lastAt.Format(time.RFC3339), c.lastErr)
	}
	return nil
}

func (c *Client) record(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastErr = err
	c.lastAt = time.Now().UTC()
}
