package models

import (
	"time"

	"ncaam_v1/scraper/internal/reconcile"
)

// Game lifecycle states as reported by the schedule feeds.
const (
	StatePre  = "pre"  // not started
	StateIn   = "in"   // in progress
	StatePost = "post" // final
)

// Game is one master-table row for a scheduled or played game. Fields stay
// strings because they round-trip through tabular storage and are never
// computed on.
type Game struct {
	GameID         string
	DateTimeUTC    string
	StatusDetail   string
	StatusState    string // pre, in, post
	GameLink       string
	Venue          string
	VenueCity      string
	VenueState     string
	SeasonYear     string
	SeasonType     string
	HomeTeamID     string
	HomeTeamName   string
	HomeTeamAbbrev string
	HomeScore      string
	AwayTeamID     string
	AwayTeamName   string
	AwayTeamAbbrev string
	AwayScore      string
}

// IsFinal reports whether the game has reached its terminal state. A final
// game's row is treated as immutable truth and never needs re-fetching.
func (g *Game) IsFinal() bool {
	return g.StatusState == StatePost
}

// IsActive reports whether the game is currently in progress.
func (g *Game) IsActive() bool {
	return g.StatusState == StateIn
}

// IsScheduled reports whether the game has not started yet.
func (g *Game) IsScheduled() bool {
	return g.StatusState == StatePre
}

// GameColumns is the canonical column order for the games master table.
var GameColumns = []string{
	"game_id", "date_time_utc", "status_detail", "status_state", "game_link",
	"venue", "venue_city", "venue_state", "season_year", "season_type",
	"home_team_id", "home_team_name", "home_team_abbrev", "home_score",
	"away_team_id", "away_team_name", "away_team_abbrev", "away_score",
}

// ToRecord flattens the game into a master-table row.
func (g *Game) ToRecord() reconcile.Record {
	return reconcile.Record{
		"game_id":          g.GameID,
		"date_time_utc":    g.DateTimeUTC,
		"status_detail":    g.StatusDetail,
		"status_state":     g.StatusState,
		"game_link":        g.GameLink,
		"venue":            g.Venue,
		"venue_city":       g.VenueCity,
		"venue_state":      g.VenueState,
		"season_year":      g.SeasonYear,
		"season_type":      g.SeasonType,
		"home_team_id":     g.HomeTeamID,
		"home_team_name":   g.HomeTeamName,
		"home_team_abbrev": g.HomeTeamAbbrev,
		"home_score":       g.HomeScore,
		"away_team_id":     g.AwayTeamID,
		"away_team_name":   g.AwayTeamName,
		"away_team_abbrev": g.AwayTeamAbbrev,
		"away_score":       g.AwayScore,
	}
}

// SeasonYear derives the season's ending year for a calendar date. The college
// season spans New Year, so dates from October onward belong to the next
// year's season.
func SeasonYear(date time.Time) int {
	if date.Month() >= time.October {
		return date.Year() + 1
	}
	return date.Year()
}
