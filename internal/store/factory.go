package store

import (
	"context"
	"path/filepath"
	"strconv"

	"ncaam_v1/scraper/internal/config"
	"ncaam_v1/scraper/internal/reconcile"
)

// Factory selects the master table backend from STORAGE_BACKEND and returns
// a per-season store constructor plus a cleanup func. Every binary goes
// through here, so the worker and the backfill always land in the same
// masters. CSV stores are rooted per season under the data root; the
// database backend is one shared store namespaced per season.
func Factory(ctx context.Context, cfg *config.Config) (func(seasonYear int) reconcile.TableStore, func(), error) {
	switch cfg.StorageBackend {
	case "postgres":
		pg, err := NewPostgresStore(ctx, PostgresConfig{
			Host:     cfg.DatabaseHost,
			Port:     strconv.Itoa(cfg.DatabasePort),
			User:     cfg.DatabaseUser,
			Password: cfg.DatabasePassword,
			Database: cfg.DatabaseName,
			SSLMode:  cfg.DatabaseSSLMode,
		})
		if err != nil {
			return nil, nil, err
		}
		factory := func(seasonYear int) reconcile.TableStore {
			return NewSeasonStore(pg, seasonYear)
		}
		return factory, pg.Close, nil
	default:
		factory := func(seasonYear int) reconcile.TableStore {
			return NewCSVStore(filepath.Join(cfg.DataRoot, strconv.Itoa(seasonYear)))
		}
		return factory, func() {}, nil
	}
}
