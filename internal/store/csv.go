package store

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog/log"

	"ncaam_v1/scraper/internal/models"
	"ncaam_v1/scraper/internal/reconcile"
)

// masterColumns holds the canonical column order per master table. Columns
// found in rows but not listed here are appended in sorted order.
var masterColumns = map[string][]string{
	"games":   models.GameColumns,
	"teams":   models.TeamColumns,
	"players": models.PlayerColumns,
}

// CSVStore persists master tables as CSV files under a season root, one
// directory per entity: {root}/{entity}/{entity}.csv.
type CSVStore struct {
	root string
}

// NewCSVStore creates a CSV-backed table store rooted at the given directory.
func NewCSVStore(root string) *CSVStore {
	return &CSVStore{root: root}
}

func (s *CSVStore) path(entity string) string {
	return filepath.Join(s.root, entity, entity+".csv")
}

// Load reads all rows of a master table. A missing file is not an error; it
// means the table has no rows yet.
func (s *CSVStore) Load(ctx context.Context, entity string) ([]reconcile.Record, error) {
	f, err := os.Open(s.path(entity))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open %s table: %w", entity, err)
	}
	defer f.Close()

	return readRecords(f, entity)
}

// Save writes the full table atomically: rows go to a temp file in the same
// directory, then rename over the target.
func (s *CSVStore) Save(ctx context.Context, entity string, rows []reconcile.Record) error {
	target := s.path(entity)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("failed to create %s table directory: %w", entity, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), entity+"-*.csv.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s table: %w", entity, err)
	}
	defer os.Remove(tmp.Name())

	header := headerFor(masterColumns[entity], rows)
	if err := writeRecords(tmp, header, rows); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s table: %w", entity, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file for %s table: %w", entity, err)
	}

	if err := os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("failed to replace %s table: %w", entity, err)
	}

	log.Debug().
		Str("entity", entity).
		Int("rows", len(rows)).
		Str("path", target).
		Msg("Master table written")
	return nil
}

// readRecords decodes a CSV table into records keyed by the header row.
func readRecords(r io.Reader, entity string) ([]reconcile.Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s table header: %w", entity, err)
	}

	var rows []reconcile.Record
	for {
		fields, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s table row: %w", entity, err)
		}

		rec := make(reconcile.Record, len(header))
		for i, col := range header {
			if i < len(fields) {
				rec[col] = fields[i]
			}
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

// headerFor builds the output header: canonical columns first, then any
// extra keys present in the rows, sorted for a stable layout.
func headerFor(canonical []string, rows []reconcile.Record) []string {
	seen := make(map[string]bool, len(canonical))
	header := make([]string, 0, len(canonical))
	for _, col := range canonical {
		seen[col] = true
		header = append(header, col)
	}

	var extras []string
	for _, row := range rows {
		for col := range row {
			if !seen[col] {
				seen[col] = true
				extras = append(extras, col)
			}
		}
	}
	sort.Strings(extras)
	return append(header, extras...)
}

func writeRecords(w io.Writer, header []string, rows []reconcile.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}

	fields := make([]string, len(header))
	for _, row := range rows {
		for i, col := range header {
			fields[i] = row[col]
		}
		if err := cw.Write(fields); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
