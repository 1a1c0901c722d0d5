package reconcile

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// CompletionLog is the durable side of a Tracker: an append-only record of
// (identifier, timestamp) pairs readable back as a set.
type CompletionLog interface {
	LoadIDs(ctx context.Context) (map[string]struct{}, error)
	Append(ctx context.Context, id string, ts time.Time) error
}

// Tracker decides whether an identifier (a calendar date, or a game whose
// detail files are already written) can be skipped on future runs. Marking is
// deliberately irreversible: a date marked complete is never re-fetched, even
// if the source later corrects its data.
type Tracker struct {
	name string
	log  CompletionLog
	seen map[string]struct{}
}

// NewTracker loads the completion set from its log. A read failure degrades to
// an empty set with a warning, which only costs re-fetching.
func NewTracker(ctx context.Context, name string, completionLog CompletionLog) *Tracker {
	t := &Tracker{name: name, log: completionLog, seen: make(map[string]struct{})}

	ids, err := completionLog.LoadIDs(ctx)
	if err != nil {
		log.Warn().Err(err).
			Str("tracker", name).
			Msg("Failed to read completion log, starting from empty")
		return t
	}
	t.seen = ids

	log.Debug().
		Str("tracker", name).
		Int("count", len(ids)).
		Msg("Completion log loaded")
	return t
}

// Seen reports whether the identifier was previously marked complete.
func (t *Tracker) Seen(id string) bool {
	_, ok := t.seen[id]
	return ok
}

// Mark records the identifier as complete, both in memory and in the log.
// An append failure is logged and tolerated: the in-memory mark still holds
// for the remainder of the run, and the identifier is simply re-checked on
// the next run.
func (t *Tracker) Mark(ctx context.Context, id string) {
	if _, ok := t.seen[id]; ok {
		return
	}
	t.seen[id] = struct{}{}

	if err := t.log.Append(ctx, id, time.Now()); err != nil {
		log.Error().Err(err).
			Str("tracker", t.name).
			Str("id", id).
			Msg("Failed to append to completion log")
		return
	}
	log.Debug().
		Str("tracker", t.name).
		Str("id", id).
		Msg("Marked complete")
}

// Count returns the number of identifiers marked complete.
func (t *Tracker) Count() int {
	return len(t.seen)
}

// DateComplete reports whether a date needs no further fetching: either no
// games were scheduled, or every scheduled game has gone final. A single game
// still in the pre or in state keeps the date open.
func DateComplete(states []string) bool {
	for _, state := range states {
		if state != "post" {
			return false
		}
	}
	return true
}
