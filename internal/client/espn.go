package client

import (
	"context"
	"fmt"
	"time"
)

// ESPN fetches men's college basketball data from ESPN's schedule page feed
// and the site API. The schedule page is fetched with the _xhr parameter,
// which returns the page's JSON payload instead of HTML.
type ESPN struct {
	pageBaseURL string // www.espn.com
	apiBaseURL  string // site.api.espn.com sport path
	http        *HTTPClient
}

// NewESPN creates an ESPN client.
func NewESPN(pageBaseURL, apiBaseURL string, timeout time.Duration, maxRetries int) *ESPN {
	return &ESPN{
		pageBaseURL: pageBaseURL,
		apiBaseURL:  apiBaseURL,
		http:        NewHTTPClient("espn", timeout, maxRetries),
	}
}

// FetchSchedule fetches the schedule payload for a date. The events are keyed
// by the date string inside the payload, so parsing needs the same YYYYMMDD
// string used here.
func (c *ESPN) FetchSchedule(ctx context.Context, date time.Time) (map[string]any, error) {
	dateStr := date.Format("20060102")
	url := fmt.Sprintf("%s/mens-college-basketball/schedule/_/date/%s", c.pageBaseURL, dateStr)
	params := map[string]string{
		"_xhr":         "pageContent",
		"refetchShell": "false",
		"offset":       "-05:00",
		"original":     "date=" + dateStr,
		"date":         dateStr,
	}

	var payload map[string]any
	if err := c.http.GetJSON(ctx, "schedule", url, params, &payload); err != nil {
		return nil, fmt.Errorf("failed to fetch schedule for %s: %w", dateStr, err)
	}
	return payload, nil
}

// FetchGameSummary fetches the game summary (box score, plays) for a game.
func (c *ESPN) FetchGameSummary(ctx context.Context, gameID string) (map[string]any, error) {
	url := fmt.Sprintf("%s/summary", c.apiBaseURL)
	params := map[string]string{"event": gameID}

	var payload map[string]any
	if err := c.http.GetJSON(ctx, "summary", url, params, &payload); err != nil {
		return nil, fmt.Errorf("failed to fetch summary for game %s: %w", gameID, err)
	}
	return payload, nil
}
