package reconcile

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLog struct {
	ids      map[string]struct{}
	appends  []string
	loadErr  error
	writeErr error
}

func newFakeLog(ids ...string) *fakeLog {
	f := &fakeLog{ids: make(map[string]struct{})}
	for _, id := range ids {
		f.ids[id] = struct{}{}
	}
	return f
}

func (f *fakeLog) LoadIDs(ctx context.Context) (map[string]struct{}, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.ids, nil
}

func (f *fakeLog) Append(ctx context.Context, id string, ts time.Time) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.appends = append(f.appends, id)
	return nil
}

func TestTracker_SeenAfterMark(t *testing.T) {
	ctx := context.Background()
	fl := newFakeLog()
	tracker := NewTracker(ctx, "dates", fl)

	assert.False(t, tracker.Seen("2025-01-15"))

	tracker.Mark(ctx, "2025-01-15")
	assert.True(t, tracker.Seen("2025-01-15"))
	assert.Equal(t, []string{"2025-01-15"}, fl.appends)

	// Marking twice appends once.
	tracker.Mark(ctx, "2025-01-15")
	assert.Len(t, fl.appends, 1)
}

func TestTracker_LoadsExistingLog(t *testing.T) {
	tracker := NewTracker(context.Background(), "dates", newFakeLog("2025-01-01", "2025-01-02"))

	assert.True(t, tracker.Seen("2025-01-01"))
	assert.True(t, tracker.Seen("2025-01-02"))
	assert.False(t, tracker.Seen("2025-01-03"))
	assert.Equal(t, 2, tracker.Count())
}

func TestTracker_LoadFailureDegradesToEmpty(t *testing.T) {
	fl := newFakeLog("2025-01-01")
	fl.loadErr = errors.New("disk gone")

	tracker := NewTracker(context.Background(), "dates", fl)
	assert.False(t, tracker.Seen("2025-01-01"), "unreadable log costs a re-fetch, not a crash")
	assert.Equal(t, 0, tracker.Count())
}

func TestTracker_AppendFailureStillMarksInMemory(t *testing.T) {
	ctx := context.Background()
	fl := newFakeLog()
	fl.writeErr = errors.New("disk full")

	tracker := NewTracker(ctx, "dates", fl)
	tracker.Mark(ctx, "2025-02-01")

	require.True(t, tracker.Seen("2025-02-01"), "mark holds for the rest of the run")
	assert.Empty(t, fl.appends)
}

func TestDateComplete(t *testing.T) {
	tests := []struct {
		name   string
		states []string
		want   bool
	}{
		{"no games scheduled", nil, true},
		{"all final", []string{"post", "post", "post"}, true},
		{"one live game keeps the date open", []string{"post", "in", "post"}, false},
		{"one scheduled game keeps the date open", []string{"post", "post", "pre"}, false},
		{"single pre game", []string{"pre"}, false},
		{"unknown state keeps the date open", []string{"post", ""}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DateComplete(tt.states))
		})
	}
}
