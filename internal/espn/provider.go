// Package espn implements the ESPN data provider: schedule pages for the
// daily slate and the site API summary endpoint for game detail.
package espn

import (
	"context"
	"time"

	"ncaam_v1/scraper/internal/client"
	"ncaam_v1/scraper/internal/models"
)

// Provider adapts the ESPN client and parser to the scrape runner.
type Provider struct {
	client      *client.ESPN
	pageBaseURL string
}

// NewProvider creates the ESPN provider.
func NewProvider(pageBaseURL, apiBaseURL string, timeout time.Duration, maxRetries int) *Provider {
	return &Provider{
		client:      client.NewESPN(pageBaseURL, apiBaseURL, timeout, maxRetries),
		pageBaseURL: pageBaseURL,
	}
}

// Name identifies the provider in logs and metrics.
func (p *Provider) Name() string { return "espn" }

// ScheduleForDate fetches and parses the slate for a date.
func (p *Provider) ScheduleForDate(ctx context.Context, date time.Time) ([]models.Game, []models.Team, error) {
	payload, err := p.client.FetchSchedule(ctx, date)
	if err != nil {
		return nil, nil, err
	}
	games, teams := ParseSchedule(payload, date.Format("20060102"), p.pageBaseURL)
	return games, teams, nil
}

// GameDetail fetches and parses the summary for a game.
func (p *Provider) GameDetail(ctx context.Context, gameID string) (*models.GameDetail, error) {
	payload, err := p.client.FetchGameSummary(ctx, gameID)
	if err != nil {
		return nil, err
	}
	return ParseSummary(payload, gameID), nil
}
