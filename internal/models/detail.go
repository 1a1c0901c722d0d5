package models

import "ncaam_v1/scraper/internal/reconcile"

// Detail section names. A game's detail is split into independent sections so
// one malformed section never blocks the others from being saved.
const (
	SectionPlayByPlay  = "play_by_play"
	SectionTeamStats   = "team_stats"
	SectionPlayerStats = "player_stats"
)

// PlayColumns is the canonical column order for per-game play-by-play files.
// Both providers map onto this shape.
var PlayColumns = []string{
	"play_id", "sequence_number", "type", "description",
	"away_score", "home_score", "period", "clock",
	"scoring_play", "team_id", "timestamp_utc",
}

// DetailLeadColumns are the identifying columns written first in the team and
// player stat files; the remaining stat columns vary by provider and season.
var DetailLeadColumns = map[string][]string{
	SectionPlayByPlay:  PlayColumns,
	SectionTeamStats:   {"game_id", "team_id", "home_away"},
	SectionPlayerStats: {"game_id", "team_id", "player_id", "displayName", "starter", "didNotPlay"},
}

// SectionResult reports one detail section's outcome: rows written on success
// or the reason it was skipped. Failures stay observable and countable rather
// than only printed.
type SectionResult struct {
	Name string
	Rows int
	Err  error
}

// OK reports whether the section produced rows without error.
func (s SectionResult) OK() bool {
	return s.Err == nil && s.Rows > 0
}

// GameDetail is everything extracted from one game's detail endpoints: the
// per-game stat rows to write, plus any players or teams first observed in
// its box score. Teams is only populated by providers whose schedule feed
// lacks full team info.
type GameDetail struct {
	GameID      string
	Plays       []reconcile.Record
	TeamStats   []reconcile.Record
	PlayerStats []reconcile.Record
	Players     []Player
	Teams       []Team
	Sections    []SectionResult
}

// HasData reports whether any section produced rows. A game with no usable
// sections is not marked as scraped, so it is retried on the next run.
func (d *GameDetail) HasData() bool {
	for _, s := range d.Sections {
		if s.OK() {
			return true
		}
	}
	return false
}
