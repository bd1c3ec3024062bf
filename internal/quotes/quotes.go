package quotes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Quote is a short inspirational text for the home panel.
type Quote struct {
	Text   string `json:"text"`
	Author string `json:"author"`
}

// Fallback is shown whenever the quote API is unreachable.
var Fallback = Quote{
	Text:   "Every day may not be good, but there is something good in every day.",
	Author: "Alice Morse Earle",
}

// Client fetches the quote of the day from a ZenQuotes-compatible API and
// caches it for the rest of the UTC day.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.SugaredLogger

	mu        sync.RWMutex
	cached    Quote
	fetchedAt time.Time
}

func New(baseURL string, logger *zap.SugaredLogger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
		logger:  logger,
	}
}

// Today returns the cached quote for the current UTC day, fetching a
// fresh one when the cache is stale. Any failure degrades to the last
// cached quote, or the fixed fallback when nothing was ever fetched.
func (c *Client) Today(ctx context.Context) Quote {
	c.mu.RLock()
	cached, fetchedAt := c.cached, c.fetchedAt
	c.mu.RUnlock()

	today := time.Now().UTC().Format("2006-01-02")
	if !fetchedAt.IsZero() && fetchedAt.UTC().Format("2006-01-02") == today {
		return cached
	}

	if err := c.Refresh(ctx); err != nil {
		c.logger.Warnw("quote fetch failed", "error", err)
		if fetchedAt.IsZero() {
			return Fallback
		}
		return cached
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cached
}

// Refresh fetches today's quote and replaces the cache.
func (c *Client) Refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/today", nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("fetch quote: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("quote api status %d", resp.StatusCode)
	}

	// ZenQuotes answers with a single-element array: [{"q": ..., "a": ...}].
	var payload []struct {
		Q string `json:"q"`
		A string `json:"a"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return fmt.Errorf("decode quote: %w", err)
	}
	if len(payload) == 0 || payload[0].Q == "" {
		return fmt.Errorf("quote api returned no quote")
	}

	c.mu.Lock()
	c.cached = Quote{Text: payload[0].Q, Author: payload[0].A}
	c.fetchedAt = time.Now().UTC()
	c.mu.Unlock()
	return nil
}
