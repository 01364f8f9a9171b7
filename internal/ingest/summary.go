package ingest

import (
	"time"

	"github.com/Atlas-Final-Project/data-crawling/internal/domain"
)

// FailureKind classifies what went wrong with one source or document.
type FailureKind string

const (
	// FailureSoft is a transient fetch error; the source backs off and
	// retries next cycle.
	FailureSoft FailureKind = "soft_failure"
	// FailureHardLimit means the source throttled us; it cools down for
	// a fixed window before any retry.
	FailureHardLimit FailureKind = "hard_limit"
	// FailurePersistence is a per-document write error; the rest of the
	// batch still persists.
	FailurePersistence FailureKind = "persistence_failure"
	// FailureConfiguration means the source definition itself is unusable.
	FailureConfiguration FailureKind = "configuration_error"
)

// SourceResult records one source's outcome within a cycle.
type SourceResult struct {
	Source string `json:"source"`
	// Skipped is set when the source was in cooldown and never attempted.
	Skipped bool `json:"skipped"`
	// CooldownLeft is how long the cooldown still had to run at skip time.
	CooldownLeft time.Duration `json:"cooldown_left,omitempty"`
	// Fetched is the number of articles the source produced.
	Fetched int `json:"fetched"`
	// Failure is empty on success.
	Failure FailureKind `json:"failure,omitempty"`
	Err     string      `json:"error,omitempty"`
}

// CycleSummary is the outcome of one complete ingestion cycle.
type CycleSummary struct {
	CycleID  string        `json:"cycle_id"`
	State    CycleState    `json:"state"`
	Started  time.Time     `json:"started"`
	Finished time.Time     `json:"finished"`
	Duration time.Duration `json:"duration"`

	Sources []SourceResult `json:"sources"`

	// Aggregation view of the fetched batch.
	Fetched    int            `json:"fetched"`
	Incidents  int            `json:"incidents"`
	ByCategory map[string]int `json:"by_category"`

	// Persistence outcome.
	Inserted      int `json:"inserted"`
	Updated       int `json:"updated"`
	PersistFailed int `json:"persist_failed"`
}

// aggregate folds a batch of articles into the summary counters.
func (s *CycleSummary) aggregate(articles []domain.Article) {
	if s.ByCategory == nil {
		s.ByCategory = make(map[string]int)
	}
	for i := range articles {
		s.Fetched++
		s.ByCategory[articles[i].Category]++
		if articles[i].IsIncident {
			s.Incidents++
		}
	}
}

// Attempted returns how many sources were actually fetched this cycle.
func (s *CycleSummary) Attempted() int {
	n := 0
	for i := range s.Sources {
		if !s.Sources[i].Skipped {
			n++
		}
	}
	return n
}
