package ingest

import "fmt"

// CycleState tracks where a cycle is in its lifecycle.
type CycleState string

const (
	StateIdle        CycleState = "idle"
	StateFetching    CycleState = "fetching"
	StateAggregating CycleState = "aggregating"
	StatePersisting  CycleState = "persisting"
	StateDone        CycleState = "done"
	StateFailed      CycleState = "failed"
)

// ValidateStateTransition checks if a cycle state transition is valid.
func ValidateStateTransition(from, to CycleState) error {
	validTransitions := map[CycleState][]CycleState{
		StateIdle: {
			StateFetching, // Cycle start
		},
		StateFetching: {
			StateAggregating, // All source attempts settled
			StateFailed,      // Cancelled mid-fetch
		},
		StateAggregating: {
			StatePersisting, // Aggregated batch ready
			StateFailed,     // Cancelled mid-aggregation
		},
		StatePersisting: {
			StateDone,   // Batch written, possibly with per-document failures
			StateFailed, // Cancelled mid-persist
		},
		// Terminal states
		StateDone:   {},
		StateFailed: {},
	}

	allowed, exists := validTransitions[from]
	if !exists {
		return fmt.Errorf("unknown cycle state: %s", from)
	}
	for _, state := range allowed {
		if state == to {
			return nil
		}
	}
	return fmt.Errorf("invalid cycle state transition from %s to %s", from, to)
}

// IsTerminalState checks if a state ends the cycle.
func IsTerminalState(state CycleState) bool {
	return state == StateDone || state == StateFailed
}
