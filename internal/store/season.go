package store

import (
	"context"
	"strconv"

	"ncaam_v1/scraper/internal/reconcile"
)

// SeasonStore namespaces a shared backend by season year, so two seasons of
// the same entity never collide on the same rows. CSV stores get the same
// separation from their per-season directories.
type SeasonStore struct {
	inner reconcile.TableStore
	year  string
}

// NewSeasonStore wraps a shared store for one season.
func NewSeasonStore(inner reconcile.TableStore, seasonYear int) *SeasonStore {
	return &SeasonStore{inner: inner, year: strconv.Itoa(seasonYear)}
}

func (s *SeasonStore) Load(ctx context.Context, entity string) ([]reconcile.Record, error) {
	return s.inner.Load(ctx, s.year+"/"+entity)
}

func (s *SeasonStore) Save(ctx context.Context, entity string, rows []reconcile.Record) error {
	return s.inner.Save(ctx, s.year+"/"+entity, rows)
}
