package ingest_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Atlas-Final-Project/data-crawling/internal/domain"
	"github.com/Atlas-Final-Project/data-crawling/internal/ingest"
	"github.com/Atlas-Final-Project/data-crawling/internal/logger"
	"github.com/Atlas-Final-Project/data-crawling/internal/ratelimit"
	"github.com/Atlas-Final-Project/data-crawling/internal/sources"
)

// fakeAdapter serves canned articles or a canned error under a source name.
type fakeAdapter struct {
	name     string
	articles []domain.Article
	err      error
	// gate, when set, blocks FetchArticles until the channel closes.
	gate <-chan struct{}

	mu    sync.Mutex
	calls int
}

func (f *fakeAdapter) Name() string { return f.name }

func (f *fakeAdapter) FetchArticles(_ context.Context) ([]domain.Article, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.gate != nil {
		<-f.gate
	}
	return f.articles, f.err
}

func (f *fakeAdapter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakePersister upserts into memory keyed by (title, source) and can be
// told to fail specific titles.
type fakePersister struct {
	mu         sync.Mutex
	seen       map[string]bool
	failTitles map[string]bool
}

func newFakePersister() *fakePersister {
	return &fakePersister{seen: make(map[string]bool), failTitles: make(map[string]bool)}
}

func (p *fakePersister) Upsert(_ context.Context, a domain.Article) (domain.UpsertResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.failTitles[a.Title] {
		return "", errors.New("write rejected")
	}

	key := a.Title + "\x00" + a.Source
	if p.seen[key] {
		return domain.UpsertUpdated, nil
	}
	p.seen[key] = true
	return domain.UpsertInserted, nil
}

func article(title, source, category string, incident bool) domain.Article {
	return domain.Article{
		ID:         domain.NewArticleID(),
		Title:      title,
		Source:     source,
		Category:   category,
		Countries:  []string{"Unknown"},
		Locations:  []string{},
		IsIncident: incident,
		Published:  time.Now(),
		CrawledAt:  time.Now(),
	}
}

func newOrchestrator(t *testing.T, p ingest.Params) *ingest.Orchestrator {
	t.Helper()
	if p.Limiter == nil {
		p.Limiter = ratelimit.New(ratelimit.Config{})
	}
	if p.Store == nil {
		p.Store = newFakePersister()
	}
	if p.Logger == nil {
		p.Logger = logger.NewNoOp()
	}
	if p.Sleep == nil {
		p.Sleep = func(context.Context, time.Duration) error { return nil }
	}
	return ingest.New(p)
}

func TestOrchestrator_Run(t *testing.T) {
	t.Parallel()

	store := newFakePersister()
	o := newOrchestrator(t, ingest.Params{
		Adapters: []ingest.SourceAdapter{
			&fakeAdapter{name: "BBC News", articles: []domain.Article{
				article("Earthquake hits Japan", "BBC News", "Disaster", true),
				article("Markets rally", "BBC News", "General", false),
			}},
			&fakeAdapter{name: "AP News", articles: []domain.Article{
				article("Border clash escalates", "AP News", "Conflict", true),
			}},
		},
		Store: store,
	})

	summary, err := o.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, ingest.StateDone, summary.State)
	assert.NotEmpty(t, summary.CycleID)
	assert.Equal(t, 3, summary.Fetched)
	assert.Equal(t, 2, summary.Incidents)
	assert.Equal(t, map[string]int{"Disaster": 1, "General": 1, "Conflict": 1}, summary.ByCategory)
	assert.Equal(t, 3, summary.Inserted)
	assert.Zero(t, summary.Updated)
	assert.Zero(t, summary.PersistFailed)
	assert.Equal(t, 2, summary.Attempted())
}

func TestOrchestrator_Run_SecondCycleUpdates(t *testing.T) {
	t.Parallel()

	store := newFakePersister()
	adapter := &fakeAdapter{name: "BBC News", articles: []domain.Article{
		article("Earthquake hits Japan", "BBC News", "Disaster", true),
	}}
	o := newOrchestrator(t, ingest.Params{
		Adapters: []ingest.SourceAdapter{adapter},
		Store:    store,
	})

	first, err := o.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, first.Inserted)

	second, err := o.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, second.Inserted, "same identity pair does not duplicate")
	assert.Equal(t, 1, second.Updated)
}

func TestOrchestrator_Run_HardLimitIsolation(t *testing.T) {
	t.Parallel()

	throttled := &fakeAdapter{name: "AP News", err: fmt.Errorf("fetch: %w", sources.ErrHardLimit)}
	healthy := &fakeAdapter{name: "BBC News", articles: []domain.Article{
		article("Flood in Valencia", "BBC News", "Disaster", true),
	}}
	limiter := ratelimit.New(ratelimit.Config{})
	o := newOrchestrator(t, ingest.Params{
		Adapters: []ingest.SourceAdapter{throttled, healthy},
		Limiter:  limiter,
	})

	summary, err := o.Run(context.Background())
	require.NoError(t, err, "a throttled source never fails the cycle")
	assert.Equal(t, ingest.StateDone, summary.State)
	assert.Equal(t, 1, summary.Fetched)

	var apResult ingest.SourceResult
	for _, sr := range summary.Sources {
		if sr.Source == "AP News" {
			apResult = sr
		}
	}
	assert.Equal(t, ingest.FailureHardLimit, apResult.Failure)

	// Next cycle: the throttled source sits out its cooldown, the rest run.
	summary, err = o.Run(context.Background())
	require.NoError(t, err)
	for _, sr := range summary.Sources {
		if sr.Source == "AP News" {
			assert.True(t, sr.Skipped)
			assert.Positive(t, sr.CooldownLeft)
		} else {
			assert.False(t, sr.Skipped)
		}
	}
	assert.Equal(t, 1, throttled.callCount(), "cooled-down source is not fetched")
	assert.Equal(t, 2, healthy.callCount())
}

func TestOrchestrator_Run_SoftFailureBacksOff(t *testing.T) {
	t.Parallel()

	var slept []time.Duration
	var mu sync.Mutex
	flaky := &fakeAdapter{name: "BBC News", err: errors.New("connection reset")}
	o := newOrchestrator(t, ingest.Params{
		Adapters: []ingest.SourceAdapter{flaky},
		Sleep: func(_ context.Context, d time.Duration) error {
			mu.Lock()
			slept = append(slept, d)
			mu.Unlock()
			return nil
		},
	})

	summary, err := o.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ingest.FailureSoft, summary.Sources[0].Failure)
	require.Len(t, slept, 1)
	assert.Equal(t, 2*time.Second, slept[0], "healthy source paces at the base delay")

	_, err = o.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, slept, 2)
	assert.Equal(t, 4*time.Second, slept[1], "one failure doubles the base delay")

	_, err = o.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, slept, 3)
	assert.Equal(t, 8*time.Second, slept[2])
}

func TestOrchestrator_Run_PersistFailureIsolated(t *testing.T) {
	t.Parallel()

	store := newFakePersister()
	store.failTitles["Poison pill"] = true
	o := newOrchestrator(t, ingest.Params{
		Adapters: []ingest.SourceAdapter{
			&fakeAdapter{name: "BBC News", articles: []domain.Article{
				article("Good story", "BBC News", "General", false),
				article("Poison pill", "BBC News", "General", false),
				article("Another good story", "BBC News", "General", false),
			}},
		},
		Store: store,
	})

	summary, err := o.Run(context.Background())

	require.NoError(t, err, "a bad document never fails the cycle")
	assert.Equal(t, ingest.StateDone, summary.State)
	assert.Equal(t, 2, summary.Inserted)
	assert.Equal(t, 1, summary.PersistFailed)
}

func TestOrchestrator_Run_InFlightGuard(t *testing.T) {
	t.Parallel()

	gate := make(chan struct{})
	slow := &fakeAdapter{name: "BBC News", gate: gate}
	o := newOrchestrator(t, ingest.Params{
		Adapters: []ingest.SourceAdapter{slow},
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = o.Run(context.Background())
	}()

	// Wait for the first cycle to reach the blocked fetch.
	require.Eventually(t, func() bool { return slow.callCount() == 1 },
		time.Second, 5*time.Millisecond)

	_, err := o.Run(context.Background())
	assert.ErrorIs(t, err, ingest.ErrCycleInFlight)

	close(gate)
	<-done

	_, err = o.Run(context.Background())
	assert.NoError(t, err, "guard releases once the cycle finishes")
}

func TestOrchestrator_Run_NoSources(t *testing.T) {
	t.Parallel()

	o := newOrchestrator(t, ingest.Params{})

	_, err := o.Run(context.Background())

	require.ErrorIs(t, err, sources.ErrNoSources)
}

func TestOrchestrator_Run_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	o := newOrchestrator(t, ingest.Params{
		Adapters: []ingest.SourceAdapter{
			&fakeAdapter{name: "BBC News", articles: []domain.Article{
				article("Story", "BBC News", "General", false),
			}},
		},
	})

	summary, err := o.Run(ctx)

	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, summary)
	assert.Equal(t, ingest.StateFailed, summary.State)
}
