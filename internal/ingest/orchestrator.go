// Package ingest runs ingestion cycles: fetch every configured source in
// parallel, aggregate the classified articles, and persist the batch.
// Source failures stay isolated; one throttled or broken source never
// takes the cycle down.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/Atlas-Final-Project/data-crawling/internal/domain"
	"github.com/Atlas-Final-Project/data-crawling/internal/logger"
	"github.com/Atlas-Final-Project/data-crawling/internal/ratelimit"
	"github.com/Atlas-Final-Project/data-crawling/internal/sources"
)

// ErrCycleInFlight is returned when Run is called while a cycle is
// still executing. Cycles never overlap; callers skip and retry on the
// next tick.
var ErrCycleInFlight = errors.New("ingestion cycle already in flight")

// SourceAdapter is one configured source, ready to fetch and normalize.
type SourceAdapter interface {
	Name() string
	FetchArticles(ctx context.Context) ([]domain.Article, error)
}

// Persister writes one article, reporting whether it was new.
type Persister interface {
	Upsert(ctx context.Context, article domain.Article) (domain.UpsertResult, error)
}

// SleepFunc waits for a backoff delay, honoring cancellation.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Orchestrator drives ingestion cycles over a fixed set of sources.
type Orchestrator struct {
	adapters []SourceAdapter
	limiter  *ratelimit.Limiter
	store    Persister
	log      logger.Interface
	sleep    SleepFunc
	inFlight atomic.Bool
}

// Params bundles the orchestrator's collaborators.
type Params struct {
	Adapters []SourceAdapter
	Limiter  *ratelimit.Limiter
	Store    Persister
	Logger   logger.Interface
	// Sleep overrides backoff waiting, for tests.
	Sleep SleepFunc
}

// New creates an orchestrator.
func New(p Params) *Orchestrator {
	o := &Orchestrator{
		adapters: p.Adapters,
		limiter:  p.Limiter,
		store:    p.Store,
		log:      p.Logger.WithComponent("ingest"),
		sleep:    p.Sleep,
	}
	if o.sleep == nil {
		o.sleep = sleepContext
	}
	return o
}

// sourceOutcome carries one source's result out of the fetch fan-out.
type sourceOutcome struct {
	result   SourceResult
	articles []domain.Article
}

// Run executes one full cycle and returns its summary. At most one
// cycle runs at a time; a second call while one is in flight returns
// ErrCycleInFlight immediately.
func (o *Orchestrator) Run(ctx context.Context) (*CycleSummary, error) {
	if len(o.adapters) == 0 {
		return nil, fmt.Errorf("run cycle: %w", sources.ErrNoSources)
	}
	if !o.inFlight.CompareAndSwap(false, true) {
		return nil, ErrCycleInFlight
	}
	defer o.inFlight.Store(false)

	summary := &CycleSummary{
		CycleID:    uuid.NewString(),
		State:      StateIdle,
		Started:    time.Now(),
		ByCategory: make(map[string]int),
	}
	log := o.log.With("cycle_id", summary.CycleID)
	log.Info("cycle started", "sources", len(o.adapters))

	o.advance(summary, StateFetching, log)
	outcomes := o.fetchAll(ctx, log)

	if err := ctx.Err(); err != nil {
		return o.fail(summary, log, err)
	}

	o.advance(summary, StateAggregating, log)
	batch := make([]domain.Article, 0)
	for i := range outcomes {
		summary.Sources = append(summary.Sources, outcomes[i].result)
		batch = append(batch, outcomes[i].articles...)
	}
	summary.aggregate(batch)

	o.advance(summary, StatePersisting, log)
	if err := o.persist(ctx, batch, summary, log); err != nil {
		return o.fail(summary, log, err)
	}

	o.advance(summary, StateDone, log)
	summary.Finished = time.Now()
	summary.Duration = summary.Finished.Sub(summary.Started)

	log.Info("cycle finished",
		"attempted", summary.Attempted(),
		"fetched", summary.Fetched,
		"incidents", summary.Incidents,
		"inserted", summary.Inserted,
		"updated", summary.Updated,
		"persist_failed", summary.PersistFailed,
		"duration", summary.Duration,
	)
	return summary, nil
}

// fetchAll fans out one goroutine per source and waits for all of them.
func (o *Orchestrator) fetchAll(ctx context.Context, log logger.Interface) []sourceOutcome {
	outcomes := make([]sourceOutcome, len(o.adapters))

	var wg sync.WaitGroup
	for i, adapter := range o.adapters {
		wg.Add(1)
		go func(i int, adapter SourceAdapter) {
			defer wg.Done()
			outcomes[i] = o.fetchSource(ctx, adapter, log)
		}(i, adapter)
	}
	wg.Wait()

	return outcomes
}

// fetchSource attempts one source, applying cooldown gating and backoff
// pacing, and settles the limiter state from the outcome.
func (o *Orchestrator) fetchSource(ctx context.Context, adapter SourceAdapter, log logger.Interface) sourceOutcome {
	name := adapter.Name()
	result := SourceResult{Source: name}

	if !o.limiter.ShouldAttempt(name) {
		result.Skipped = true
		result.CooldownLeft = o.limiter.CooldownRemaining(name)
		log.Warn("source in cooldown, skipping",
			"source", name,
			"cooldown_left", result.CooldownLeft,
		)
		return sourceOutcome{result: result}
	}

	if delay := o.limiter.Delay(name); delay > 0 {
		log.Debug("backing off before fetch", "source", name, "delay", delay)
		if err := o.sleep(ctx, delay); err != nil {
			result.Failure = FailureSoft
			result.Err = err.Error()
			return sourceOutcome{result: result}
		}
	}

	articles, err := adapter.FetchArticles(ctx)
	switch {
	case errors.Is(err, sources.ErrHardLimit):
		o.limiter.OnHardLimit(name, 0)
		result.Failure = FailureHardLimit
		result.Err = err.Error()
		log.Warn("source hit hard limit, entering cooldown",
			"source", name,
			"cooldown_left", o.limiter.CooldownRemaining(name),
		)
	case err != nil:
		o.limiter.OnFailure(name)
		result.Failure = FailureSoft
		result.Err = err.Error()
		log.Error("source fetch failed", "source", name, "error", err)
	default:
		o.limiter.OnSuccess(name)
		result.Fetched = len(articles)
		log.Info("source fetched", "source", name, "articles", len(articles))
	}

	return sourceOutcome{result: result, articles: articles}
}

// persist upserts the batch one document at a time. A failed write is
// counted and logged; the remaining documents still persist.
func (o *Orchestrator) persist(ctx context.Context, batch []domain.Article, summary *CycleSummary, log logger.Interface) error {
	for i := range batch {
		if err := ctx.Err(); err != nil {
			return err
		}

		result, err := o.store.Upsert(ctx, batch[i])
		if err != nil {
			summary.PersistFailed++
			log.Error("article persist failed",
				"title", batch[i].Title,
				"source", batch[i].Source,
				"error", err,
			)
			continue
		}

		switch result {
		case domain.UpsertInserted:
			summary.Inserted++
		case domain.UpsertUpdated:
			summary.Updated++
		}
	}
	return nil
}

func (o *Orchestrator) advance(summary *CycleSummary, to CycleState, log logger.Interface) {
	if err := ValidateStateTransition(summary.State, to); err != nil {
		// Transitions are fixed at compile time; a bad one is a bug.
		log.Error("invalid cycle transition", "error", err)
		return
	}
	log.Debug("cycle state", "from", string(summary.State), "to", string(to))
	summary.State = to
}

func (o *Orchestrator) fail(summary *CycleSummary, log logger.Interface, err error) (*CycleSummary, error) {
	summary.State = StateFailed
	summary.Finished = time.Now()
	summary.Duration = summary.Finished.Sub(summary.Started)
	log.Error("cycle aborted", "error", err)
	return summary, err
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
