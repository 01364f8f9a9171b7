package sources

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	colly "github.com/gocolly/colly/v2"

	"github.com/Atlas-Final-Project/data-crawling/internal/domain"
	"github.com/Atlas-Final-Project/data-crawling/internal/logger"
)

// HTML scraping defaults.
const (
	// defaultLinkPattern matches article permalinks on listing pages.
	defaultLinkPattern = `/article/`
	// maxParagraphs caps how much body text is taken from one page.
	maxParagraphs = 10
	// defaultUserAgent is sent when the source config does not set one.
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
)

// PaceFunc returns the current per-request delay for a source. The
// rate limiter's Delay method satisfies it.
type PaceFunc func(source string) time.Duration

// HTMLFetcher scrapes raw articles from a source's HTML listing page.
type HTMLFetcher struct {
	log     logger.Interface
	pace    PaceFunc
	timeout time.Duration
}

// NewHTMLFetcher creates an HTML fetcher. pace supplies the per-request
// delay between page visits; nil means no pacing.
func NewHTMLFetcher(log logger.Interface, pace PaceFunc) *HTMLFetcher {
	return &HTMLFetcher{
		log:     log,
		pace:    pace,
		timeout: defaultRequestTimeout,
	}
}

// Fetch scrapes the listing page for article links, then visits each
// article page. An HTTP 429 anywhere aborts the source with ErrHardLimit;
// a failing individual article page is logged and skipped.
func (f *HTMLFetcher) Fetch(ctx context.Context, cfg Config) ([]domain.RawArticle, error) {
	pattern := cfg.LinkPattern
	if pattern == "" {
		pattern = defaultLinkPattern
	}
	linkRe, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("source %s: bad link_pattern: %w", cfg.Name, err)
	}

	links, err := f.collectLinks(cfg, linkRe)
	if err != nil {
		return nil, err
	}
	if len(links) == 0 {
		f.log.Warn("no article links found", "source", cfg.Name, "base_url", cfg.BaseURL)
		return nil, nil
	}

	articles := make([]domain.RawArticle, 0, len(links))
	for _, link := range links {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return articles, ctxErr
		}

		raw, visitErr := f.fetchArticle(cfg, link)
		if visitErr != nil {
			if errors.Is(visitErr, ErrHardLimit) {
				return nil, fmt.Errorf("%w: %s while fetching %s", ErrHardLimit, cfg.Name, link)
			}
			f.log.Warn("article page fetch failed",
				"source", cfg.Name,
				"url", link,
				"error", visitErr,
			)
			continue
		}
		if raw.Title == "" {
			continue
		}
		articles = append(articles, raw)
	}

	return articles, nil
}

// collectLinks visits the listing page and gathers article links that
// match the configured pattern, in page order, up to the source limit.
func (f *HTMLFetcher) collectLinks(cfg Config, linkRe *regexp.Regexp) ([]string, error) {
	c := f.newCollector(cfg)

	var links []string
	seen := make(map[string]struct{})

	c.OnHTML("a[href]", func(e *colly.HTMLElement) {
		if len(links) >= cfg.Limit() {
			return
		}
		link := e.Request.AbsoluteURL(e.Attr("href"))
		if link == "" || !linkRe.MatchString(link) {
			return
		}
		if _, dup := seen[link]; dup {
			return
		}
		seen[link] = struct{}{}
		links = append(links, link)
	})

	var status int
	c.OnError(func(r *colly.Response, _ error) {
		status = r.StatusCode
	})

	if err := c.Visit(cfg.BaseURL); err != nil {
		if status == http.StatusTooManyRequests {
			return nil, fmt.Errorf("%w: %s listing returned 429", ErrHardLimit, cfg.Name)
		}
		return nil, fmt.Errorf("visit listing page: %w", err)
	}
	c.Wait()

	return links, nil
}

// fetchArticle visits one article page and extracts title, body text,
// and any published-time metadata.
func (f *HTMLFetcher) fetchArticle(cfg Config, url string) (domain.RawArticle, error) {
	c := f.newCollector(cfg)

	raw := domain.RawArticle{URL: url, Source: cfg.Name}

	c.OnHTML("html", func(e *colly.HTMLElement) {
		raw.Title, raw.Content, raw.Published = extractArticlePage(e.DOM)
	})

	var status int
	c.OnError(func(r *colly.Response, _ error) {
		status = r.StatusCode
	})

	if err := c.Visit(url); err != nil {
		if status == http.StatusTooManyRequests {
			return domain.RawArticle{}, fmt.Errorf("article page: %w", ErrHardLimit)
		}
		return domain.RawArticle{}, fmt.Errorf("visit article page: %w", err)
	}
	c.Wait()

	return raw, nil
}

// newCollector builds a collector with the source's user agent, the
// fetch timeout, and per-request pacing from the rate limiter.
func (f *HTMLFetcher) newCollector(cfg Config) *colly.Collector {
	ua := cfg.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}

	c := colly.NewCollector(colly.UserAgent(ua))
	c.SetRequestTimeout(f.timeout)

	if f.pace != nil {
		if delay := f.pace(cfg.Name); delay > 0 {
			_ = c.Limit(&colly.LimitRule{
				DomainGlob:  "*",
				Delay:       delay,
				Parallelism: 1,
			})
		}
	}

	return c
}

// extractArticlePage pulls the headline, body paragraphs, and published
// metadata out of an article page document.
func extractArticlePage(doc *goquery.Selection) (title, content, published string) {
	title = strings.TrimSpace(doc.Find("h1").First().Text())
	if title == "" {
		title = strings.TrimSpace(doc.Find("title").First().Text())
	}

	var paragraphs []string
	doc.Find("p").EachWithBreak(func(_ int, p *goquery.Selection) bool {
		text := strings.TrimSpace(p.Text())
		if text != "" {
			paragraphs = append(paragraphs, text)
		}
		return len(paragraphs) < maxParagraphs
	})
	content = strings.Join(paragraphs, " ")

	published, _ = doc.Find(`meta[property="article:published_time"]`).Attr("content")

	return title, content, published
}
