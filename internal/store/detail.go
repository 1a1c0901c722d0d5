package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"ncaam_v1/scraper/internal/models"
	"ncaam_v1/scraper/internal/reconcile"
)

// DetailWriter writes per-game section files under a season root:
// {root}/{section}/{game_id}.csv. Unlike the master tables these are
// write-once per scrape; a later scrape of the same game overwrites.
type DetailWriter struct {
	root string
}

// NewDetailWriter creates a detail writer rooted at the given directory.
func NewDetailWriter(root string) *DetailWriter {
	return &DetailWriter{root: root}
}

// WriteSection writes one section file for a game. An empty row set is a
// no-op so a missing section never leaves an empty file behind.
func (w *DetailWriter) WriteSection(section, gameID string, rows []reconcile.Record) error {
	if len(rows) == 0 {
		return nil
	}

	dir := filepath.Join(w.root, section)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s directory: %w", section, err)
	}
	target := filepath.Join(dir, gameID+".csv")

	tmp, err := os.CreateTemp(dir, gameID+"-*.csv.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s/%s: %w", section, gameID, err)
	}
	defer os.Remove(tmp.Name())

	header := headerFor(models.DetailLeadColumns[section], rows)
	if err := writeRecords(tmp, header, rows); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s/%s: %w", section, gameID, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync %s/%s: %w", section, gameID, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file for %s/%s: %w", section, gameID, err)
	}

	if err := os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("failed to replace %s/%s: %w", section, gameID, err)
	}

	log.Debug().
		Str("section", section).
		Str("game_id", gameID).
		Int("rows", len(rows)).
		Msg("Detail file written")
	return nil
}

// WriteDetail writes every section of a game detail that has rows and
// returns the number of files written.
func (w *DetailWriter) WriteDetail(d *models.GameDetail) (int, error) {
	written := 0
	sections := []struct {
		name string
		rows []reconcile.Record
	}{
		{models.SectionPlayByPlay, d.Plays},
		{models.SectionTeamStats, d.TeamStats},
		{models.SectionPlayerStats, d.PlayerStats},
	}
	for _, s := range sections {
		if len(s.rows) == 0 {
			continue
		}
		if err := w.WriteSection(s.name, d.GameID, s.rows); err != nil {
			return written, err
		}
		written++
	}
	return written, nil
}
