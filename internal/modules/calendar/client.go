package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
)

const (
	defaultMaxRetries      = 3
	defaultInitialInterval = 500 * time.Millisecond
	maxFeedBytes           = 4 << 20
)

// Fetcher loads the current calendar from upstream
type Fetcher interface {
	Fetch(ctx context.Context) ([]EconomicEvent, error)
}

// Client fetches the weekly calendar JSON feed, retrying transient failures
// with exponential backoff
type Client struct {
	feedURL         string
	client          *http.Client
	maxRetries      uint64
	initialInterval time.Duration
	log             zerolog.Logger
}

// ClientOption configures a Client
type ClientOption func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) { cl.client = c }
}

// WithRetry sets the retry budget and first backoff interval
func WithRetry(maxRetries uint64, initialInterval time.Duration) ClientOption {
	return func(cl *Client) {
		cl.maxRetries = maxRetries
		cl.initialInterval = initialInterval
	}
}

// NewClient creates a new calendar feed client
func NewClient(feedURL string, log zerolog.Logger, opts ...ClientOption) *Client {
	c := &Client{
		feedURL:         feedURL,
		client:          &http.Client{Timeout: 15 * time.Second},
		maxRetries:      defaultMaxRetries,
		initialInterval: defaultInitialInterval,
		log:             log.With().Str("client", "calendar-feed").Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FeedURL returns the upstream URL, used as the cache key
func (c *Client) FeedURL() string {
	return c.feedURL
}

// Fetch downloads and decodes the feed. 4xx responses other than 429 are not
// retried.
func (c *Client) Fetch(ctx context.Context) ([]EconomicEvent, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.initialInterval
	retrying := backoff.WithContext(backoff.WithMaxRetries(policy, c.maxRetries), ctx)

	var events []EconomicEvent
	operation := func() error {
		var err error
		events, err = c.fetchOnce(ctx)
		return err
	}
	notify := func(err error, wait time.Duration) {
		c.log.Warn().Err(err).Dur("retry_in", wait).Msg("Calendar fetch failed, retrying")
	}

	if err := backoff.RetryNotify(operation, retrying, notify); err != nil {
		return nil, err
	}
	return events, nil
}

func (c *Client) fetchOnce(ctx context.Context) ([]EconomicEvent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.feedURL, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to build request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	c.log.Debug().Str("url", c.feedURL).Msg("Fetching calendar feed")
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calendar request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("calendar feed returned status %d", resp.StatusCode)
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}

	var feed []feedEvent
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxFeedBytes)).Decode(&feed); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to parse calendar feed: %w", err))
	}

	events := make([]EconomicEvent, 0, len(feed))
	for _, f := range feed {
		if event, ok := f.toEvent(); ok {
			events = append(events, event)
		}
	}
	return events, nil
}
