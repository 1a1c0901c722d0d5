package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSeasonYear(t *testing.T) {
	tests := []struct {
		date string
		want int
	}{
		{"2024-10-01", 2025}, // October starts the new season
		{"2024-11-15", 2025},
		{"2024-12-31", 2025},
		{"2025-01-01", 2025},
		{"2025-03-20", 2025},
		{"2025-09-30", 2025}, // pre-October still the prior season
		{"2025-10-15", 2026},
	}
	for _, tt := range tests {
		d, err := time.Parse("2006-01-02", tt.date)
		assert.NoError(t, err)
		assert.Equal(t, tt.want, SeasonYear(d), tt.date)
	}
}

func TestGameStateHelpers(t *testing.T) {
	assert.True(t, (&Game{StatusState: StatePost}).IsFinal())
	assert.True(t, (&Game{StatusState: StateIn}).IsActive())
	assert.True(t, (&Game{StatusState: StatePre}).IsScheduled())

	unknown := &Game{StatusState: "halftime?"}
	assert.False(t, unknown.IsFinal())
	assert.False(t, unknown.IsActive())
	assert.False(t, unknown.IsScheduled())
}

func TestGameToRecordCoversAllColumns(t *testing.T) {
	g := &Game{GameID: "401", HomeTeamID: "1", AwayTeamID: "2"}
	rec := g.ToRecord()

	for _, col := range GameColumns {
		_, ok := rec[col]
		assert.True(t, ok, col)
	}
	assert.Len(t, rec, len(GameColumns))
}
