// Package sources defines source configurations and the adapters that
// turn one source's raw article stream into canonical Articles.
package sources

import (
	"errors"
	"fmt"
)

var (
	// ErrHardLimit indicates the source explicitly throttled us (e.g. HTTP
	// 429). The orchestrator must put the source into cooldown instead of
	// retrying with ordinary backoff.
	ErrHardLimit = errors.New("source signalled a hard rate limit")
	// ErrNoSources indicates no sources were found in the configuration.
	ErrNoSources = errors.New("no sources found in configuration")
	// ErrUnknownKind indicates a source kind with no registered fetcher.
	ErrUnknownKind = errors.New("unknown source kind")
)

// Source kinds.
const (
	// KindRSS fetches articles from one or more RSS/Atom feeds.
	KindRSS = "rss"
	// KindHTML scrapes articles from an HTML listing page.
	KindHTML = "html"
)

// defaultMaxArticles bounds how many articles one source contributes per cycle.
const defaultMaxArticles = 50

// Config describes one news source. Immutable after load.
type Config struct {
	// Name identifies the source; part of the persistence fingerprint.
	Name string `mapstructure:"name" yaml:"name"`
	// Kind selects the fetcher implementation (rss or html).
	Kind string `mapstructure:"kind" yaml:"kind"`
	// FeedURLs are the RSS/Atom feeds for rss sources.
	FeedURLs []string `mapstructure:"feed_urls" yaml:"feed_urls"`
	// BaseURL is the listing page for html sources.
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`
	// LinkPattern is a regular expression selecting article links on the
	// listing page. Defaults to any path containing "/article/".
	LinkPattern string `mapstructure:"link_pattern" yaml:"link_pattern"`
	// MaxArticles bounds how many articles to fetch per cycle.
	MaxArticles int `mapstructure:"max_articles" yaml:"max_articles"`
	// UserAgent overrides the default request user agent.
	UserAgent string `mapstructure:"user_agent" yaml:"user_agent"`
}

// Validate checks that the config is usable for its kind.
func (c *Config) Validate() error {
	if c.Name == "" {
		return errors.New("source name is required")
	}

	switch c.Kind {
	case KindRSS:
		if len(c.FeedURLs) == 0 {
			return fmt.Errorf("source %s: rss source needs at least one feed_url", c.Name)
		}
	case KindHTML:
		if c.BaseURL == "" {
			return fmt.Errorf("source %s: html source needs a base_url", c.Name)
		}
	default:
		return fmt.Errorf("source %s: %w: %q", c.Name, ErrUnknownKind, c.Kind)
	}

	return nil
}

// Limit returns the per-cycle article cap for this source.
func (c *Config) Limit() int {
	if c.MaxArticles > 0 {
		return c.MaxArticles
	}
	return defaultMaxArticles
}
