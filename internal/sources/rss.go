package sources

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/Atlas-Final-Project/data-crawling/internal/domain"
	"github.com/Atlas-Final-Project/data-crawling/internal/logger"
)

// defaultRequestTimeout bounds a single feed fetch.
const defaultRequestTimeout = 10 * time.Second

// RSSFetcher fetches raw articles from a source's RSS/Atom feeds.
type RSSFetcher struct {
	client *http.Client
	log    logger.Interface
}

// NewRSSFetcher creates an RSS fetcher backed by the given http.Client.
// A nil client gets a default with a bounded timeout.
func NewRSSFetcher(client *http.Client, log logger.Interface) *RSSFetcher {
	if client == nil {
		client = &http.Client{Timeout: defaultRequestTimeout}
	}
	return &RSSFetcher{client: client, log: log}
}

// Fetch retrieves every configured feed and maps its entries to raw
// articles. A single failing feed is logged and skipped; the fetch as a
// whole fails only when all feeds fail or a feed signals a hard limit.
func (f *RSSFetcher) Fetch(ctx context.Context, cfg Config) ([]domain.RawArticle, error) {
	perFeed := cfg.Limit() / len(cfg.FeedURLs)
	if perFeed < 1 {
		perFeed = 1
	}

	articles := make([]domain.RawArticle, 0, cfg.Limit())
	var lastErr error
	failed := 0

	for _, feedURL := range cfg.FeedURLs {
		items, err := f.fetchFeed(ctx, cfg, feedURL, perFeed)
		if err != nil {
			if errors.Is(err, ErrHardLimit) {
				return nil, err
			}
			f.log.Warn("feed fetch failed",
				"source", cfg.Name,
				"feed_url", feedURL,
				"error", err,
			)
			lastErr = err
			failed++
			continue
		}
		articles = append(articles, items...)
	}

	if failed == len(cfg.FeedURLs) && lastErr != nil {
		return nil, fmt.Errorf("all feeds failed for %s: %w", cfg.Name, lastErr)
	}

	return articles, nil
}

// fetchFeed retrieves and parses one feed URL.
func (f *RSSFetcher) fetchFeed(
	ctx context.Context,
	cfg Config,
	feedURL string,
	limit int,
) ([]domain.RawArticle, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	if cfg.UserAgent != "" {
		req.Header.Set("User-Agent", cfg.UserAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("%w: %s returned 429", ErrHardLimit, feedURL)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch feed: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read feed body: %w", err)
	}

	parsed, err := gofeed.NewParser().ParseString(string(body))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	items := make([]domain.RawArticle, 0, limit)
	for _, entry := range parsed.Items {
		if len(items) >= limit {
			break
		}
		if entry.Link == "" {
			continue
		}

		items = append(items, domain.RawArticle{
			Title:        entry.Title,
			Content:      entryContent(entry),
			URL:          entry.Link,
			RSSPublished: entry.Published,
			Source:       cfg.Name,
		})
	}

	return items, nil
}

// entryContent prefers the full content block, falling back to the
// entry description/summary.
func entryContent(entry *gofeed.Item) string {
	if entry.Content != "" {
		return entry.Content
	}
	return entry.Description
}
