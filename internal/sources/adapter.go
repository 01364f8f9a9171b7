package sources

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Atlas-Final-Project/data-crawling/internal/classify"
	"github.com/Atlas-Final-Project/data-crawling/internal/domain"
	"github.com/Atlas-Final-Project/data-crawling/internal/logger"
	"github.com/Atlas-Final-Project/data-crawling/internal/ner"
)

// Fetcher retrieves one source's raw articles for a cycle.
type Fetcher interface {
	Fetch(ctx context.Context, cfg Config) ([]domain.RawArticle, error)
}

// Adapter wraps a fetcher and normalizes its raw records into canonical,
// classified Articles. One adapter serves one source.
type Adapter struct {
	cfg        Config
	fetcher    Fetcher
	classifier *classify.Classifier
	extractor  ner.Extractor
	log        logger.Interface
	now        func() time.Time
	minScore   float64
	minLength  int
}

// AdapterParams bundles the collaborators an Adapter needs.
type AdapterParams struct {
	Config     Config
	Fetcher    Fetcher
	Classifier *classify.Classifier
	Extractor  ner.Extractor
	Logger     logger.Interface
	// MinScore and MinLength tune location filtering; zero values take
	// the ner package defaults.
	MinScore  float64
	MinLength int
	// Now overrides the clock, for tests.
	Now func() time.Time
}

// NewAdapter creates an adapter for one source.
func NewAdapter(p AdapterParams) *Adapter {
	a := &Adapter{
		cfg:        p.Config,
		fetcher:    p.Fetcher,
		classifier: p.Classifier,
		extractor:  p.Extractor,
		log:        p.Logger,
		now:        p.Now,
		minScore:   p.MinScore,
		minLength:  p.MinLength,
	}
	if a.now == nil {
		a.now = time.Now
	}
	if a.minScore == 0 {
		a.minScore = ner.DefaultMinScore
	}
	if a.minLength == 0 {
		a.minLength = ner.DefaultMinLength
	}
	return a
}

// Name returns the source name this adapter serves.
func (a *Adapter) Name() string {
	return a.cfg.Name
}

// FetchArticles fetches the source and normalizes every raw record.
// Fetch errors propagate (wrapped, hard limits distinguishable with
// errors.Is(err, ErrHardLimit)); normalization never fails an article.
func (a *Adapter) FetchArticles(ctx context.Context) ([]domain.Article, error) {
	raws, err := a.fetcher.Fetch(ctx, a.cfg)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", a.cfg.Name, err)
	}

	articles := make([]domain.Article, 0, len(raws))
	for i := range raws {
		articles = append(articles, a.normalize(ctx, &raws[i]))
	}

	return articles, nil
}

// normalize builds one canonical Article from a raw record: date
// normalization with the RSS field preferred over the page field,
// keyword classification, and location extraction.
func (a *Adapter) normalize(ctx context.Context, raw *domain.RawArticle) domain.Article {
	now := a.now()
	fullText := raw.Title + " " + raw.Content

	article := domain.Article{
		ID:         domain.NewArticleID(),
		Title:      raw.Title,
		Published:  NormalizeDate(now, raw.RSSPublished, raw.Published),
		Content:    raw.Content,
		Source:     raw.Source,
		Category:   a.classifier.Categorize(raw.Title, raw.Content),
		Countries:  a.classifier.ExtractCountries(fullText),
		IsIncident: a.classifier.IsIncident(fullText),
		Locations:  a.extractLocations(ctx, raw, fullText),
		CrawledAt:  now,
	}

	return article
}

// extractLocations runs the entity extractor over the article text. An
// extractor failure degrades to an empty location list; the article is
// still ingested.
func (a *Adapter) extractLocations(ctx context.Context, raw *domain.RawArticle, text string) []string {
	if a.extractor == nil || strings.TrimSpace(text) == "" {
		return []string{}
	}

	entities, err := a.extractor.Extract(ctx, text)
	if err != nil {
		a.log.Warn("entity extraction failed",
			"source", raw.Source,
			"title", raw.Title,
			"error", err,
		)
		return []string{}
	}

	return ner.LocationNames(entities, a.minScore, a.minLength)
}

// NewFetcher returns the fetcher implementation for a source kind.
func NewFetcher(cfg Config, log logger.Interface, pace PaceFunc) (Fetcher, error) {
	switch cfg.Kind {
	case KindRSS:
		return NewRSSFetcher(nil, log), nil
	case KindHTML:
		return NewHTMLFetcher(log, pace), nil
	default:
		return nil, fmt.Errorf("source %s: %w: %q", cfg.Name, ErrUnknownKind, cfg.Kind)
	}
}
