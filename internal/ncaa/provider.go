// Package ncaa implements the NCAA data provider on top of the
// sdataprod.ncaa.com persisted-query gateway. It exists as a fallback slate
// source when the primary provider is unavailable, so its output is mapped
// onto the same game, team, and detail shapes.
package ncaa

import (
	"context"
	"time"

	"ncaam_v1/scraper/internal/client"
	"ncaam_v1/scraper/internal/models"
)

// gameLinkBase prefixes the relative contest URLs from the gateway.
const gameLinkBase = "https://www.ncaa.com"

// Provider adapts the NCAA gateway client and parser to the scrape runner.
type Provider struct {
	client *client.NCAA
}

// NewProvider creates the NCAA provider.
func NewProvider(baseURL string, timeout time.Duration, maxRetries int) *Provider {
	return &Provider{client: client.NewNCAA(baseURL, timeout, maxRetries)}
}

// Name identifies the provider in logs and metrics.
func (p *Provider) Name() string { return "ncaa" }

// ScheduleForDate fetches and parses the contest slate for a date.
func (p *Provider) ScheduleForDate(ctx context.Context, date time.Time) ([]models.Game, []models.Team, error) {
	payload, err := p.client.FetchContests(ctx, date)
	if err != nil {
		return nil, nil, err
	}
	games, teams := ParseContests(payload, gameLinkBase)
	return games, teams, nil
}

// GameDetail fetches the three detail endpoints for a contest. Each section
// fails independently; a game with at least one good section still counts.
func (p *Provider) GameDetail(ctx context.Context, gameID string) (*models.GameDetail, error) {
	detail := &models.GameDetail{GameID: gameID}

	pbp, err := p.client.FetchPlayByPlay(ctx, gameID)
	if err == nil {
		detail.Plays = ParsePlayByPlay(pbp, time.Now())
	}
	detail.Sections = append(detail.Sections, models.SectionResult{
		Name: models.SectionPlayByPlay,
		Rows: len(detail.Plays),
		Err:  err,
	})

	box, err := p.client.FetchBoxscore(ctx, gameID)
	if err == nil {
		detail.PlayerStats, detail.Players = ParseBoxscore(box, gameID)
	}
	detail.Sections = append(detail.Sections, models.SectionResult{
		Name: models.SectionPlayerStats,
		Rows: len(detail.PlayerStats),
		Err:  err,
	})

	stats, err := p.client.FetchTeamStats(ctx, gameID)
	if err == nil {
		detail.TeamStats, detail.Teams = ParseTeamStats(stats, gameID)
	}
	detail.Sections = append(detail.Sections, models.SectionResult{
		Name: models.SectionTeamStats,
		Rows: len(detail.TeamStats),
		Err:  err,
	})

	return detail, nil
}
