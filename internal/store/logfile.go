package store

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// FileLog is an append-only CSV log of (id, timestamp) pairs. It backs both
// the completed-dates log and the per-game scrape log. Entries are never
// rewritten or removed; LoadIDs dedupes on read.
type FileLog struct {
	path     string
	idColumn string
}

// NewFileLog creates a log at path whose first column is named idColumn.
func NewFileLog(path, idColumn string) *FileLog {
	return &FileLog{path: path, idColumn: idColumn}
}

// LoadIDs reads every id ever appended. A missing file means an empty log.
func (l *FileLog) LoadIDs(ctx context.Context) (map[string]struct{}, error) {
	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]struct{}{}, nil
		}
		return nil, fmt.Errorf("failed to open log %s: %w", l.path, err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1

	ids := make(map[string]struct{})
	first := true
	for {
		fields, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read log %s: %w", l.path, err)
		}
		if first {
			first = false
			if len(fields) > 0 && fields[0] == l.idColumn {
				continue
			}
		}
		if len(fields) > 0 && fields[0] != "" {
			ids[fields[0]] = struct{}{}
		}
	}
	return ids, nil
}

// Append records an id with its timestamp. The file is opened with O_APPEND
// so each call is a single atomic write at the end of the log.
func (l *FileLog) Append(ctx context.Context, id string, ts time.Time) error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	writeHeader := false
	if info, err := os.Stat(l.path); os.IsNotExist(err) || (err == nil && info.Size() == 0) {
		writeHeader = true
	}

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log %s: %w", l.path, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if writeHeader {
		if err := cw.Write([]string{l.idColumn, "timestamp_updated"}); err != nil {
			return fmt.Errorf("failed to write log header: %w", err)
		}
	}
	if err := cw.Write([]string{id, ts.UTC().Format(time.RFC3339)}); err != nil {
		return fmt.Errorf("failed to append to log %s: %w", l.path, err)
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush log %s: %w", l.path, err)
	}
	return f.Sync()
}
