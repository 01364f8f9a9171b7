package sources_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Atlas-Final-Project/data-crawling/internal/logger"
	"github.com/Atlas-Final-Project/data-crawling/internal/sources"
)

const rssFixture = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Test Feed</title>
    <item>
      <title>Earthquake hits Japan</title>
      <link>https://example.com/articles/quake</link>
      <description>A strong earthquake struck near Tokyo.</description>
      <pubDate>Fri, 14 Mar 2025 09:26:53 +0000</pubDate>
    </item>
    <item>
      <title>Markets rally</title>
      <link>https://example.com/articles/markets</link>
      <description>Stocks rose on trade news.</description>
      <pubDate>Fri, 14 Mar 2025 10:00:00 +0000</pubDate>
    </item>
    <item>
      <title>No link item</title>
      <description>This entry has no usable link.</description>
    </item>
  </channel>
</rss>`

func TestRSSFetcher_Fetch(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(rssFixture))
	}))
	defer srv.Close()

	f := sources.NewRSSFetcher(srv.Client(), logger.NewNoOp())
	cfg := sources.Config{
		Name:     "Test Feed",
		Kind:     sources.KindRSS,
		FeedURLs: []string{srv.URL},
	}

	raws, err := f.Fetch(context.Background(), cfg)

	require.NoError(t, err)
	require.Len(t, raws, 2, "the linkless entry is skipped")

	assert.Equal(t, "Earthquake hits Japan", raws[0].Title)
	assert.Equal(t, "A strong earthquake struck near Tokyo.", raws[0].Content)
	assert.Equal(t, "https://example.com/articles/quake", raws[0].URL)
	assert.Equal(t, "Fri, 14 Mar 2025 09:26:53 +0000", raws[0].RSSPublished)
	assert.Equal(t, "Test Feed", raws[0].Source)
}

func TestRSSFetcher_Fetch_RespectsLimit(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(rssFixture))
	}))
	defer srv.Close()

	f := sources.NewRSSFetcher(srv.Client(), logger.NewNoOp())
	cfg := sources.Config{
		Name:        "Test Feed",
		Kind:        sources.KindRSS,
		FeedURLs:    []string{srv.URL},
		MaxArticles: 1,
	}

	raws, err := f.Fetch(context.Background(), cfg)

	require.NoError(t, err)
	assert.Len(t, raws, 1)
}

func TestRSSFetcher_Fetch_HardLimit(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	f := sources.NewRSSFetcher(srv.Client(), logger.NewNoOp())
	cfg := sources.Config{
		Name:     "Throttled Feed",
		Kind:     sources.KindRSS,
		FeedURLs: []string{srv.URL},
	}

	_, err := f.Fetch(context.Background(), cfg)

	require.ErrorIs(t, err, sources.ErrHardLimit)
}

func TestRSSFetcher_Fetch_PartialFeedFailure(t *testing.T) {
	t.Parallel()

	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(rssFixture))
	}))
	defer good.Close()

	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer bad.Close()

	f := sources.NewRSSFetcher(nil, logger.NewNoOp())
	cfg := sources.Config{
		Name:     "Mixed Feed",
		Kind:     sources.KindRSS,
		FeedURLs: []string{bad.URL, good.URL},
	}

	raws, err := f.Fetch(context.Background(), cfg)

	require.NoError(t, err, "one healthy feed keeps the source alive")
	assert.NotEmpty(t, raws)
}

func TestRSSFetcher_Fetch_AllFeedsFail(t *testing.T) {
	t.Parallel()

	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer bad.Close()

	f := sources.NewRSSFetcher(nil, logger.NewNoOp())
	cfg := sources.Config{
		Name:     "Dead Feed",
		Kind:     sources.KindRSS,
		FeedURLs: []string{bad.URL},
	}

	_, err := f.Fetch(context.Background(), cfg)

	require.Error(t, err)
	assert.NotErrorIs(t, err, sources.ErrHardLimit)
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     sources.Config
		wantErr bool
	}{
		{"valid rss", sources.Config{Name: "a", Kind: sources.KindRSS, FeedURLs: []string{"http://x"}}, false},
		{"valid html", sources.Config{Name: "b", Kind: sources.KindHTML, BaseURL: "http://x"}, false},
		{"missing name", sources.Config{Kind: sources.KindRSS, FeedURLs: []string{"http://x"}}, true},
		{"rss without feeds", sources.Config{Name: "c", Kind: sources.KindRSS}, true},
		{"html without base url", sources.Config{Name: "d", Kind: sources.KindHTML}, true},
		{"unknown kind", sources.Config{Name: "e", Kind: "gopher"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
