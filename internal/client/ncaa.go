package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"ncaam_v1/scraper/internal/models"
)

// Persisted query hashes for the NCAA GraphQL gateway. These identify fixed
// server-side queries; only the variables change per request.
const (
	ncaaContestsQuery  = "GetContests_web"
	ncaaContestsHash   = "7287cda610a9326931931080cb3a604828febe6fe3c9016a7e4a36db99efdb7c"
	ncaaPbpQuery       = "NCAA_GetGamecenterPbpBasketballById_web"
	ncaaPbpHash        = "6b1232714a3598954c5bacabc0f81570e16d6ee017c9a6b93b601a3d40dafb98"
	ncaaBoxscoreQuery  = "NCAA_GetGamecenterBoxscoreBasketballById_web"
	ncaaBoxscoreHash   = "4a7fa26398db33de3ff51402a90eb5f25acef001cca28d239fe5361315d1419a"
	ncaaTeamStatsQuery = "NCAA_GetGamecenterTeamStatsBasketballById_web"
	ncaaTeamStatsHash  = "5fcf84602d59c003f37ddd1185da542578080e04fe854e935cbcaee590a0e8a2"
)

// NCAA fetches men's college basketball data from the sdataprod.ncaa.com
// GraphQL gateway using its persisted queries.
type NCAA struct {
	baseURL string
	http    *HTTPClient
}

// NewNCAA creates an NCAA gateway client.
func NewNCAA(baseURL string, timeout time.Duration, maxRetries int) *NCAA {
	return &NCAA{
		baseURL: baseURL,
		http:    NewHTTPClient("ncaa", timeout, maxRetries),
	}
}

// buildQuery assembles the persisted-query parameters. The gateway expects
// the extensions and variables objects as compact JSON in the query string.
func buildQuery(meta, hash string, variables map[string]any) (url.Values, error) {
	extensions := map[string]any{
		"persistedQuery": map[string]any{"version": 1, "sha256Hash": hash},
	}
	extJSON, err := json.Marshal(extensions)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal extensions: %w", err)
	}
	varJSON, err := json.Marshal(variables)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal variables: %w", err)
	}

	q := url.Values{}
	q.Set("meta", meta)
	q.Set("extensions", string(extJSON))
	q.Set("variables", string(varJSON))
	return q, nil
}

// FetchContests fetches the contest list for a date.
func (c *NCAA) FetchContests(ctx context.Context, date time.Time) (map[string]any, error) {
	q, err := buildQuery(ncaaContestsQuery, ncaaContestsHash, map[string]any{
		"sportCode":   "MBB",
		"division":    1,
		"seasonYear":  models.SeasonYear(date),
		"month":       int(date.Month()),
		"contestDate": date.Format("01/02/2006"),
		"week":        nil,
	})
	if err != nil {
		return nil, err
	}
	q.Set("queryName", ncaaContestsQuery)

	var payload map[string]any
	if err := c.http.GetJSON(ctx, "contests", c.baseURL+"/?"+q.Encode(), nil, &payload); err != nil {
		return nil, fmt.Errorf("failed to fetch contests for %s: %w", date.Format("2006-01-02"), err)
	}
	return payload, nil
}

// FetchPlayByPlay fetches play-by-play for a contest.
func (c *NCAA) FetchPlayByPlay(ctx context.Context, contestID string) (map[string]any, error) {
	return c.fetchByContest(ctx, "play_by_play", ncaaPbpQuery, ncaaPbpHash, contestID)
}

// FetchBoxscore fetches the box score (player stats) for a contest.
func (c *NCAA) FetchBoxscore(ctx context.Context, contestID string) (map[string]any, error) {
	return c.fetchByContest(ctx, "boxscore", ncaaBoxscoreQuery, ncaaBoxscoreHash, contestID)
}

// FetchTeamStats fetches team statistics for a contest.
func (c *NCAA) FetchTeamStats(ctx context.Context, contestID string) (map[string]any, error) {
	return c.fetchByContest(ctx, "team_stats", ncaaTeamStatsQuery, ncaaTeamStatsHash, contestID)
}

func (c *NCAA) fetchByContest(ctx context.Context, endpoint, meta, hash, contestID string) (map[string]any, error) {
	q, err := buildQuery(meta, hash, map[string]any{
		"contestId":     contestID,
		"staticTestEnv": nil,
	})
	if err != nil {
		return nil, err
	}

	var payload map[string]any
	if err := c.http.GetJSON(ctx, endpoint, c.baseURL+"/?"+q.Encode(), nil, &payload); err != nil {
		return nil, fmt.Errorf("failed to fetch %s for contest %s: %w", endpoint, contestID, err)
	}
	return payload, nil
}
