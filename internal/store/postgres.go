package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"ncaam_v1/scraper/internal/reconcile"
)

// masterKeys maps each entity to the column that identifies its rows.
var masterKeys = map[string]string{
	"games":   "game_id",
	"teams":   "team_id",
	"players": "player_id",
}

// entityKey resolves the identifying column for an entity name, tolerating a
// season namespace prefix such as "2026/teams".
func entityKey(entity string) (string, bool) {
	if i := strings.LastIndexByte(entity, '/'); i >= 0 {
		entity = entity[i+1:]
	}
	key, ok := masterKeys[entity]
	return key, ok
}

const masterSchema = `
CREATE TABLE IF NOT EXISTS master_records (
	entity      TEXT NOT NULL,
	record_key  TEXT NOT NULL,
	row         JSONB NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (entity, record_key)
)`

// PostgresConfig holds database connection settings.
type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	SSLMode  string
}

// PostgresStore keeps master tables in a single keyed JSONB table, one row
// per record. Merge policy is decided upstream; Save just upserts whatever
// table state it is handed.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to the database and ensures the schema exists.
func NewPostgresStore(ctx context.Context, cfg PostgresConfig) (*PostgresStore, error) {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.Database,
		cfg.SSLMode,
	)

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	poolConfig.MaxConns = 10
	poolConfig.MinConns = 2
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, masterSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ensure master_records schema: %w", err)
	}

	log.Info().
		Str("host", cfg.Host).
		Str("port", cfg.Port).
		Str("database", cfg.Database).
		Msg("Successfully connected to database")

	return &PostgresStore{pool: pool}, nil
}

// Load reads all rows of a master table.
func (s *PostgresStore) Load(ctx context.Context, entity string) ([]reconcile.Record, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT row FROM master_records WHERE entity = $1 ORDER BY record_key`,
		entity,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s table: %w", entity, err)
	}
	defer rows.Close()

	var out []reconcile.Record
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", entity, err)
		}

		var rec reconcile.Record
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("failed to decode %s row: %w", entity, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s table: %w", entity, err)
	}
	return out, nil
}

// Save upserts every row of the table in one batch. Rows are whole-table
// state after reconciliation, so replacing the stored row is always correct.
func (s *PostgresStore) Save(ctx context.Context, entity string, rows []reconcile.Record) error {
	key, ok := entityKey(entity)
	if !ok {
		return fmt.Errorf("unknown entity %q", entity)
	}

	batch := &pgx.Batch{}
	skipped := 0
	for _, rec := range rows {
		recordKey := rec[key]
		if recordKey == "" {
			skipped++
			continue
		}
		raw, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to encode %s row %s: %w", entity, recordKey, err)
		}
		batch.Queue(
			`INSERT INTO master_records (entity, record_key, row, updated_at)
			 VALUES ($1, $2, $3, now())
			 ON CONFLICT (entity, record_key)
			 DO UPDATE SET row = EXCLUDED.row, updated_at = now()`,
			entity, recordKey, raw,
		)
	}
	if skipped > 0 {
		log.Warn().
			Str("entity", entity).
			Int("skipped", skipped).
			Msg("Rows without a record key were not persisted")
	}
	if batch.Len() == 0 {
		return nil
	}

	if err := s.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to upsert %s table: %w", entity, err)
	}

	log.Debug().
		Str("entity", entity).
		Int("rows", batch.Len()).
		Msg("Master table upserted")
	return nil
}

// Close closes the connection pool.
func (s *PostgresStore) Close() {
	if s.pool != nil {
		s.pool.Close()
		log.Info().Msg("Database connection pool closed")
	}
}

// Health checks the database connection.
func (s *PostgresStore) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	return nil
}
