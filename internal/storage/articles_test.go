package storage_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	es "github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Atlas-Final-Project/data-crawling/internal/domain"
	"github.com/Atlas-Final-Project/data-crawling/internal/logger"
	"github.com/Atlas-Final-Project/data-crawling/internal/storage"
)

// fakeES is an in-memory stand-in for a single-index Elasticsearch node,
// covering the handful of endpoints the store uses.
type fakeES struct {
	mu      sync.Mutex
	docs    map[string]json.RawMessage
	indices map[string]bool
	creates int
}

func newFakeES() *fakeES {
	return &fakeES{
		docs:    make(map[string]json.RawMessage),
		indices: make(map[string]bool),
	}
}

func (f *fakeES) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The v8 client rejects responses from non-Elastic products.
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")

		f.mu.Lock()
		defer f.mu.Unlock()

		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		switch {
		case r.Method == http.MethodHead && len(parts) == 1:
			if f.indices[parts[0]] {
				w.WriteHeader(http.StatusOK)
			} else {
				w.WriteHeader(http.StatusNotFound)
			}
		case r.Method == http.MethodPut && len(parts) == 1:
			f.indices[parts[0]] = true
			f.creates++
			fmt.Fprint(w, `{"acknowledged":true}`)
		case r.Method == http.MethodGet && len(parts) == 3 && parts[1] == "_doc":
			doc, ok := f.docs[parts[2]]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				fmt.Fprintf(w, `{"_id":%q,"found":false}`, parts[2])
				return
			}
			fmt.Fprintf(w, `{"_id":%q,"found":true,"_source":%s}`, parts[2], doc)
		case r.Method == http.MethodPut && len(parts) == 3 && parts[1] == "_doc":
			var body json.RawMessage
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			result := "created"
			if _, ok := f.docs[parts[2]]; ok {
				result = "updated"
			}
			f.docs[parts[2]] = body
			fmt.Fprintf(w, `{"_id":%q,"result":%q}`, parts[2], result)
		case r.Method == http.MethodGet || r.Method == http.MethodPost:
			if strings.HasSuffix(r.URL.Path, "/_count") {
				fmt.Fprintf(w, `{"count":%d}`, len(f.docs))
				return
			}
			if strings.HasSuffix(r.URL.Path, "/_search") {
				f.writeSearch(w)
				return
			}
			w.WriteHeader(http.StatusBadRequest)
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	})
}

func (f *fakeES) writeSearch(w http.ResponseWriter) {
	hits := make([]map[string]any, 0, len(f.docs))
	for id, doc := range f.docs {
		hits = append(hits, map[string]any{"_id": id, "_source": doc})
	}
	resp := map[string]any{
		"hits": map[string]any{
			"total": map[string]any{"value": len(f.docs)},
			"hits":  hits,
		},
	}
	_ = json.NewEncoder(w).Encode(resp)
}

func newTestStore(t *testing.T) (*storage.ArticleStore, *fakeES) {
	t.Helper()

	fake := newFakeES()
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)

	client, err := es.NewClient(es.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)

	return storage.NewArticleStore(client, "articles-test", logger.NewNoOp()), fake
}

func TestFingerprint(t *testing.T) {
	t.Parallel()

	a := storage.Fingerprint("Earthquake hits Japan", "BBC News")
	b := storage.Fingerprint("Earthquake hits Japan", "BBC News")
	assert.Equal(t, a, b, "same identity pair, same fingerprint")
	assert.Len(t, a, 64)

	assert.NotEqual(t, a, storage.Fingerprint("Earthquake hits Japan", "Fox News"))
	assert.NotEqual(t, a, storage.Fingerprint("Earthquake hits japan", "BBC News"))
	assert.NotEqual(t,
		storage.Fingerprint("ab", "c"),
		storage.Fingerprint("a", "bc"),
		"title and source must not bleed into each other",
	)
}

func TestArticleStore_Upsert_InsertThenUpdate(t *testing.T) {
	t.Parallel()

	store, fake := newTestStore(t)
	ctx := context.Background()

	first := domain.Article{
		ID:        domain.NewArticleID(),
		Title:     "Earthquake hits Japan",
		Source:    "BBC News",
		Content:   "initial wire copy",
		Category:  "Disaster",
		Countries: []string{"Japan"},
		Locations: []string{"Tokyo"},
		Published: time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC),
	}

	result, err := store.Upsert(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, domain.UpsertInserted, result)

	second := first
	second.ID = domain.NewArticleID()
	second.Content = "expanded copy with casualty figures"
	second.Locations = []string{"Tokyo", "Osaka"}

	result, err = store.Upsert(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, domain.UpsertUpdated, result)

	fp := storage.Fingerprint(first.Title, first.Source)
	require.Contains(t, fake.docs, fp)
	require.Len(t, fake.docs, 1, "same identity pair never duplicates")

	var stored domain.Article
	require.NoError(t, json.Unmarshal(fake.docs[fp], &stored))
	assert.Equal(t, first.ID, stored.ID, "update keeps the original article id")
	assert.Equal(t, "expanded copy with casualty figures", stored.Content)
	assert.Equal(t, []string{"Tokyo", "Osaka"}, stored.Locations)
}

func TestArticleStore_Upsert_DistinctIdentities(t *testing.T) {
	t.Parallel()

	store, fake := newTestStore(t)
	ctx := context.Background()

	base := domain.Article{Title: "Earthquake hits Japan", Content: "text"}

	for _, source := range []string{"BBC News", "Fox News"} {
		a := base
		a.ID = domain.NewArticleID()
		a.Source = source
		result, err := store.Upsert(ctx, a)
		require.NoError(t, err)
		assert.Equal(t, domain.UpsertInserted, result)
	}

	assert.Len(t, fake.docs, 2, "same title from different sources stays distinct")
}

func TestArticleStore_EnsureIndex(t *testing.T) {
	t.Parallel()

	store, fake := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.EnsureIndex(ctx))
	require.NoError(t, store.EnsureIndex(ctx))

	assert.Equal(t, 1, fake.creates, "existing index is left alone")
}

func TestArticleStore_FindMany(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.Upsert(ctx, domain.Article{
		ID:     domain.NewArticleID(),
		Title:  "Flood in Valencia",
		Source: "BBC News",
	})
	require.NoError(t, err)

	articles, err := store.FindMany(ctx, storage.Query{Limit: 10})
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Equal(t, "Flood in Valencia", articles[0].Title)
}

func TestArticleStore_Count(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t)
	ctx := context.Background()

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = store.Upsert(ctx, domain.Article{ID: domain.NewArticleID(), Title: "t", Source: "s"})
	require.NoError(t, err)

	n, err = store.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}
