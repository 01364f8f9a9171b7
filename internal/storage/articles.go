package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	es "github.com/elastic/go-elasticsearch/v8"

	"github.com/Atlas-Final-Project/data-crawling/internal/domain"
	"github.com/Atlas-Final-Project/data-crawling/internal/logger"
)

const defaultFindLimit = 100

// articleMapping keeps classification fields as keywords so they can be
// filtered and aggregated without analysis.
const articleMapping = `{
  "mappings": {
    "properties": {
      "id":          { "type": "keyword" },
      "title":       { "type": "text" },
      "content":     { "type": "text" },
      "source":      { "type": "keyword" },
      "category":    { "type": "keyword" },
      "countries":   { "type": "keyword" },
      "locations":   { "type": "keyword" },
      "is_incident": { "type": "boolean" },
      "published":   { "type": "date" },
      "crawled_at":  { "type": "date" }
    }
  }
}`

// ArticleStore reads and writes articles in one Elasticsearch index.
type ArticleStore struct {
	client *es.Client
	index  string
	log    logger.Interface
}

// NewArticleStore creates a store over the given index.
func NewArticleStore(client *es.Client, index string, log logger.Interface) *ArticleStore {
	if index == "" {
		index = DefaultIndex
	}
	return &ArticleStore{client: client, index: index, log: log.WithComponent("storage")}
}

// Index returns the index name the store writes to.
func (s *ArticleStore) Index() string {
	return s.index
}

// EnsureIndex creates the article index with its mapping if it does not
// exist yet.
func (s *ArticleStore) EnsureIndex(ctx context.Context) error {
	res, err := s.client.Indices.Exists(
		[]string{s.index},
		s.client.Indices.Exists.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("check index %s: %w", s.index, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusOK {
		return nil
	}
	if res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("check index %s: %s", s.index, res.String())
	}

	createRes, err := s.client.Indices.Create(
		s.index,
		s.client.Indices.Create.WithContext(ctx),
		s.client.Indices.Create.WithBody(bytes.NewReader([]byte(articleMapping))),
	)
	if err != nil {
		return fmt.Errorf("create index %s: %w", s.index, err)
	}
	defer createRes.Body.Close()

	if createRes.IsError() {
		return fmt.Errorf("create index %s: %s", s.index, createRes.String())
	}

	s.log.Info("created article index", "index", s.index)
	return nil
}

// Upsert stores an article under its fingerprint. A new fingerprint
// inserts; a known one keeps the stored identity (id, title, source)
// and overwrites the refreshable fields.
func (s *ArticleStore) Upsert(ctx context.Context, article domain.Article) (domain.UpsertResult, error) {
	docID := Fingerprint(article.Title, article.Source)

	existing, found, err := s.getArticle(ctx, docID)
	if err != nil {
		return "", err
	}

	result := domain.UpsertInserted
	doc := article
	if found {
		result = domain.UpsertUpdated
		doc.ID = existing.ID
		doc.Title = existing.Title
		doc.Source = existing.Source
	}

	if err := s.indexArticle(ctx, docID, doc); err != nil {
		return "", err
	}

	s.log.Debug("article upserted",
		"fingerprint", docID,
		"outcome", string(result),
		"title", article.Title,
		"source", article.Source,
	)
	return result, nil
}

func (s *ArticleStore) getArticle(ctx context.Context, docID string) (domain.Article, bool, error) {
	res, err := s.client.Get(
		s.index,
		docID,
		s.client.Get.WithContext(ctx),
	)
	if err != nil {
		return domain.Article{}, false, fmt.Errorf("get document %s: %w", docID, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return domain.Article{}, false, nil
	}
	if res.IsError() {
		return domain.Article{}, false, fmt.Errorf("get document %s: %s", docID, res.String())
	}

	var envelope struct {
		Found  bool           `json:"found"`
		Source domain.Article `json:"_source"`
	}
	if decodeErr := json.NewDecoder(res.Body).Decode(&envelope); decodeErr != nil {
		return domain.Article{}, false, fmt.Errorf("decode document %s: %w", docID, decodeErr)
	}

	return envelope.Source, envelope.Found, nil
}

func (s *ArticleStore) indexArticle(ctx context.Context, docID string, article domain.Article) error {
	body, err := json.Marshal(article)
	if err != nil {
		return fmt.Errorf("marshal article %s: %w", docID, err)
	}

	res, err := s.client.Index(
		s.index,
		bytes.NewReader(body),
		s.client.Index.WithContext(ctx),
		s.client.Index.WithDocumentID(docID),
		s.client.Index.WithRefresh("true"),
	)
	if err != nil {
		return fmt.Errorf("index document %s: %w", docID, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index document %s: %s", docID, res.String())
	}
	return nil
}

// Query narrows FindMany results. Zero values mean "no filter".
type Query struct {
	Source        string
	Category      string
	IncidentsOnly bool
	Limit         int
}

// FindMany returns stored articles matching the query, newest first.
func (s *ArticleStore) FindMany(ctx context.Context, q Query) ([]domain.Article, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = defaultFindLimit
	}

	body, err := json.Marshal(buildSearchBody(q, limit))
	if err != nil {
		return nil, fmt.Errorf("marshal search query: %w", err)
	}

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(s.index),
		s.client.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, fmt.Errorf("search articles: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search articles: %s", res.String())
	}

	var envelope struct {
		Hits struct {
			Hits []struct {
				Source domain.Article `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if decodeErr := json.NewDecoder(res.Body).Decode(&envelope); decodeErr != nil {
		return nil, fmt.Errorf("decode search response: %w", decodeErr)
	}

	articles := make([]domain.Article, 0, len(envelope.Hits.Hits))
	for _, hit := range envelope.Hits.Hits {
		articles = append(articles, hit.Source)
	}
	return articles, nil
}

func buildSearchBody(q Query, limit int) map[string]any {
	filters := make([]map[string]any, 0, 3)
	if q.Source != "" {
		filters = append(filters, map[string]any{"term": map[string]any{"source": q.Source}})
	}
	if q.Category != "" {
		filters = append(filters, map[string]any{"term": map[string]any{"category": q.Category}})
	}
	if q.IncidentsOnly {
		filters = append(filters, map[string]any{"term": map[string]any{"is_incident": true}})
	}

	var query map[string]any
	if len(filters) == 0 {
		query = map[string]any{"match_all": map[string]any{}}
	} else {
		query = map[string]any{"bool": map[string]any{"filter": filters}}
	}

	return map[string]any{
		"query": query,
		"size":  limit,
		"sort":  []map[string]any{{"published": map[string]any{"order": "desc"}}},
	}
}

// Count returns the number of stored articles.
func (s *ArticleStore) Count(ctx context.Context) (int64, error) {
	res, err := s.client.Count(
		s.client.Count.WithContext(ctx),
		s.client.Count.WithIndex(s.index),
	)
	if err != nil {
		return 0, fmt.Errorf("count articles: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return 0, fmt.Errorf("count articles: %s", res.String())
	}

	var envelope struct {
		Count int64 `json:"count"`
	}
	if decodeErr := json.NewDecoder(res.Body).Decode(&envelope); decodeErr != nil {
		return 0, fmt.Errorf("decode count response: %w", decodeErr)
	}
	return envelope.Count, nil
}

// Stats summarizes the stored corpus: totals plus per-category and
// per-source breakdowns.
type Stats struct {
	Total      int64            `json:"total"`
	Incidents  int64            `json:"incidents"`
	ByCategory map[string]int64 `json:"by_category"`
	BySource   map[string]int64 `json:"by_source"`
}

// Stats aggregates the index in one search round trip.
func (s *ArticleStore) Stats(ctx context.Context) (Stats, error) {
	body := map[string]any{
		"size": 0,
		"aggs": map[string]any{
			"by_category": map[string]any{"terms": map[string]any{"field": "category", "size": 50}},
			"by_source":   map[string]any{"terms": map[string]any{"field": "source", "size": 50}},
			"incidents":   map[string]any{"filter": map[string]any{"term": map[string]any{"is_incident": true}}},
		},
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return Stats{}, fmt.Errorf("marshal stats query: %w", err)
	}

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(s.index),
		s.client.Search.WithBody(bytes.NewReader(raw)),
	)
	if err != nil {
		return Stats{}, fmt.Errorf("aggregate articles: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return Stats{}, fmt.Errorf("aggregate articles: %s", res.String())
	}

	var envelope struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
		} `json:"hits"`
		Aggregations struct {
			ByCategory termsAgg `json:"by_category"`
			BySource   termsAgg `json:"by_source"`
			Incidents  struct {
				DocCount int64 `json:"doc_count"`
			} `json:"incidents"`
		} `json:"aggregations"`
	}
	if decodeErr := json.NewDecoder(res.Body).Decode(&envelope); decodeErr != nil {
		return Stats{}, fmt.Errorf("decode stats response: %w", decodeErr)
	}

	return Stats{
		Total:      envelope.Hits.Total.Value,
		Incidents:  envelope.Aggregations.Incidents.DocCount,
		ByCategory: envelope.Aggregations.ByCategory.counts(),
		BySource:   envelope.Aggregations.BySource.counts(),
	}, nil
}

type termsAgg struct {
	Buckets []struct {
		Key      string `json:"key"`
		DocCount int64  `json:"doc_count"`
	} `json:"buckets"`
}

func (a termsAgg) counts() map[string]int64 {
	out := make(map[string]int64, len(a.Buckets))
	for _, b := range a.Buckets {
		out[b.Key] = b.DocCount
	}
	return out
}

// Ping verifies the cluster is reachable.
func (s *ArticleStore) Ping(ctx context.Context) error {
	res, err := s.client.Ping(s.client.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("ping elasticsearch: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("ping elasticsearch: %s", res.String())
	}
	return nil
}
