// Package reconcile implements the master-table merge policy shared by every
// scrape entrypoint: an in-memory table keyed by a unique field, merged against
// freshly fetched batches and persisted through a TableStore.
package reconcile

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Record is one flat row of a master table. Values are kept as strings because
// the durable form is tabular text and no field is ever computed on.
type Record map[string]string

// Policy controls what happens when a batch re-observes a key that is already
// present in the table.
type Policy int

const (
	// LastWriteWins replaces the stored row wholesale with the new one.
	// Used for games, whose rows mutate until the game goes final.
	LastWriteWins Policy = iota

	// FirstSeenWins keeps the stored row verbatim and discards the new one.
	// Used for teams and players, which are enriched on first sight only.
	FirstSeenWins
)

func (p Policy) String() string {
	if p == FirstSeenWins {
		return "first_seen_wins"
	}
	return "last_write_wins"
}

// MergeResult is the outcome of merging one batch into a table. The counts
// make partial failures observable instead of only printed.
type MergeResult struct {
	Table []Record

	Inserted int // keys absent from the existing table
	Replaced int // keys overwritten under LastWriteWins
	Kept     int // keys retained verbatim under FirstSeenWins
	Dropped  int // malformed records missing the unique key
}

// Merge combines a batch of newly observed records into an existing table.
// The output has exactly one record per distinct unique-key value in the union
// of both inputs. Records in the batch that lack the unique key (or carry an
// empty value for it) are dropped and counted; an empty key must never become
// a row of its own. Row order in the output carries no meaning.
func Merge(existing, batch []Record, uniqueKey string, policy Policy) MergeResult {
	res := MergeResult{Table: make([]Record, 0, len(existing)+len(batch))}

	index := make(map[string]int, len(existing))
	for _, row := range existing {
		key := row[uniqueKey]
		if key == "" {
			// Pre-existing rows are trusted storage; a keyless row here means
			// the file was written by something else. Keep it but never let a
			// batch row coalesce with it.
			res.Table = append(res.Table, row)
			continue
		}
		if at, ok := index[key]; ok {
			// Duplicate already on disk. Collapse it now so the invariant
			// holds after any merge, keeping the later occurrence.
			res.Table[at] = row
			continue
		}
		index[key] = len(res.Table)
		res.Table = append(res.Table, row)
	}

	for _, row := range batch {
		key, ok := row[uniqueKey]
		if !ok || key == "" {
			res.Dropped++
			log.Warn().
				Str("unique_key", uniqueKey).
				Msg("Dropping malformed record with missing unique key")
			continue
		}

		at, seen := index[key]
		if !seen {
			index[key] = len(res.Table)
			res.Table = append(res.Table, row)
			res.Inserted++
			continue
		}

		switch policy {
		case FirstSeenWins:
			res.Kept++
		default:
			res.Table[at] = row
			res.Replaced++
		}
	}

	return res
}

// TableStore persists one master table per entity name. Implementations load
// the whole table and overwrite the whole table; deduplication is the
// reconciler's job, not the store's.
type TableStore interface {
	Load(ctx context.Context, entity string) ([]Record, error)
	Save(ctx context.Context, entity string, rows []Record) error
}

// Table is a master table held in memory for the duration of a run.
// Load it once at start, apply batches as they are fetched, flush at
// checkpoints. It assumes exclusive access to its storage target.
type Table struct {
	entity string
	key    string
	policy Policy
	store  TableStore

	rows  []Record
	dirty bool
}

// OpenTable loads the table from the store. A read failure (missing or corrupt
// file) degrades to an empty table with a warning; it is never fatal, because
// the table is re-derivable from source over subsequent runs.
func OpenTable(ctx context.Context, store TableStore, entity, uniqueKey string, policy Policy) *Table {
	t := &Table{entity: entity, key: uniqueKey, policy: policy, store: store}

	rows, err := store.Load(ctx, entity)
	if err != nil {
		log.Warn().Err(err).
			Str("entity", entity).
			Msg("Failed to load master table, starting from empty")
		return t
	}
	t.rows = rows

	log.Debug().
		Str("entity", entity).
		Int("rows", len(rows)).
		Msg("Master table loaded")
	return t
}

// Apply merges a batch into the table. An empty batch is a no-op and does not
// mark the table dirty, so a transient fetch failure can never truncate a good
// file with an empty write.
func (t *Table) Apply(batch []Record) MergeResult {
	if len(batch) == 0 {
		return MergeResult{Table: t.rows}
	}

	res := Merge(t.rows, batch, t.key, t.policy)
	// Dropped rows never entered the table, so they cannot dirty it.
	if res.Inserted > 0 || res.Replaced > 0 {
		t.dirty = true
	}
	t.rows = res.Table
	return res
}

// Flush persists the table if anything changed since the last flush. A write
// failure is reported to the caller for logging but leaves the in-memory rows
// intact; the run continues and the update is retried at the next checkpoint.
func (t *Table) Flush(ctx context.Context) error {
	if !t.dirty {
		return nil
	}
	if err := t.store.Save(ctx, t.entity, t.rows); err != nil {
		return err
	}
	t.dirty = false
	return nil
}

// Get returns the current row for a key, if present.
func (t *Table) Get(key string) (Record, bool) {
	for _, row := range t.rows {
		if row[t.key] == key {
			return row, true
		}
	}
	return nil, false
}

// Has reports whether a key is present in the table.
func (t *Table) Has(key string) bool {
	_, ok := t.Get(key)
	return ok
}

// Rows returns the current table contents. Callers must not mutate the result.
func (t *Table) Rows() []Record {
	return t.rows
}

// Len returns the number of rows currently in the table.
func (t *Table) Len() int {
	return len(t.rows)
}

// Entity returns the table's entity name.
func (t *Table) Entity() string {
	return t.entity
}
