package ncaa

import (
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"ncaam_v1/scraper/internal/jsonx"
	"ncaam_v1/scraper/internal/models"
	"ncaam_v1/scraper/internal/reconcile"
)

// gameStates maps the gateway's single-letter status codes.
var gameStates = map[string]struct{ state, detail string }{
	"F": {models.StatePost, "Final"},
	"I": {models.StateIn, "Live"},
	"P": {models.StatePre, "Scheduled"},
	"D": {models.StatePre, "Delayed"},
}

func mapGameState(code string) (state, detail string) {
	if s, ok := gameStates[strings.ToUpper(code)]; ok {
		return s.state, s.detail
	}
	return "", code
}

// ParseContests extracts games and teams from a GetContests_web payload.
// The contest id doubles as the game id; when the contestId field is absent
// it is recovered from the tail of the contest url.
func ParseContests(payload map[string]any, gameBaseURL string) ([]models.Game, []models.Team) {
	contests := jsonx.Array(jsonx.Map(payload, "data"), "contests")

	var games []models.Game
	var teams []models.Team
	seenTeams := make(map[string]bool)

	for _, c := range contests {
		contest, ok := c.(map[string]any)
		if !ok {
			continue
		}

		contestURL := jsonx.String(contest, "url")
		gameID := jsonx.String(contest, "contestId")
		if gameID == "" && contestURL != "" {
			parts := strings.Split(contestURL, "/")
			gameID = parts[len(parts)-1]
		}
		if gameID == "" {
			log.Warn().Msg("Skipping contest without an id")
			continue
		}

		state, detail := mapGameState(jsonx.String(contest, "gameState"))
		game := models.Game{
			GameID:       gameID,
			DateTimeUTC:  contestDateTime(contest),
			StatusDetail: detail,
			StatusState:  state,
		}
		if contestURL != "" {
			game.GameLink = gameBaseURL + contestURL
		}
		if start := jsonx.String(contest, "startDate"); start != "" {
			if d, err := time.Parse("01/02/2006", start); err == nil {
				game.SeasonYear = strconv.Itoa(models.SeasonYear(d))
			}
		}

		home, away := splitContestTeams(jsonx.Array(contest, "teams"))
		if home != nil && away != nil {
			game.HomeTeamID = jsonx.String(home, "teamId")
			game.HomeTeamName = jsonx.String(home, "nameShort")
			game.HomeScore = jsonx.String(home, "score")
			game.AwayTeamID = jsonx.String(away, "teamId")
			game.AwayTeamName = jsonx.String(away, "nameShort")
			game.AwayScore = jsonx.String(away, "score")

			for _, t := range []map[string]any{home, away} {
				teamID := jsonx.String(t, "teamId")
				if teamID == "" || seenTeams[teamID] {
					continue
				}
				seenTeams[teamID] = true
				teams = append(teams, models.Team{
					TeamID:       teamID,
					Name:         jsonx.String(t, "nameShort"),
					Abbreviation: jsonx.String(t, "nameShort"),
					DisplayName:  jsonx.String(t, "nameFull"),
				})
			}
		}

		games = append(games, game)
	}

	return games, teams
}

func contestDateTime(contest map[string]any) string {
	date := jsonx.String(contest, "startDate")
	if t := jsonx.String(contest, "startTime"); t != "" {
		return date + " " + t
	}
	return date
}

func splitContestTeams(arr []any) (home, away map[string]any) {
	var objs []map[string]any
	for _, v := range arr {
		if m, ok := v.(map[string]any); ok {
			objs = append(objs, m)
		}
	}
	if len(objs) < 2 {
		return nil, nil
	}
	home, away = objs[0], objs[1]
	for _, m := range objs {
		if jsonx.Bool(m, "isHome") {
			home = m
		} else {
			away = m
		}
	}
	return home, away
}

// ParsePlayByPlay flattens the period-grouped play list into the canonical
// play shape. The gateway has no per-play id or wallclock, so plays are
// numbered in document order and stamped with the scrape time.
func ParsePlayByPlay(payload map[string]any, now time.Time) []reconcile.Record {
	periods := jsonx.Array(jsonx.Map(jsonx.Map(payload, "data"), "playbyplay"), "periods")

	var rows []reconcile.Record
	sequence := 0
	for _, p := range periods {
		period, ok := p.(map[string]any)
		if !ok {
			continue
		}
		periodNum := strconv.Itoa(jsonx.Int(period, "periodNumber"))

		for _, ps := range jsonx.Array(period, "playbyplayStats") {
			play, ok := ps.(map[string]any)
			if !ok {
				continue
			}
			sequence++

			desc := jsonx.String(play, "visitorText")
			if desc == "" {
				desc = jsonx.String(play, "homeText")
			}

			playType := jsonx.String(play, "eventDescription")
			if playType == "" {
				playType = "Play"
			}

			rows = append(rows, reconcile.Record{
				"play_id":         "",
				"sequence_number": strconv.Itoa(sequence),
				"type":            playType,
				"description":     desc,
				"away_score":      jsonx.String(play, "visitorScore"),
				"home_score":      jsonx.String(play, "homeScore"),
				"period":          periodNum,
				"clock":           jsonx.String(play, "clock"),
				"scoring_play":    strconv.FormatBool(isScoringPlay(desc)),
				"team_id":         jsonx.String(play, "teamId"),
				"timestamp_utc":   now.UTC().Format(time.RFC3339),
			})
		}
	}
	return rows
}

// isScoringPlay is a heuristic; the gateway does not flag scoring plays.
func isScoringPlay(desc string) bool {
	d := strings.ToLower(desc)
	return strings.Contains(d, "made") || strings.Contains(d, "dunk") || strings.Contains(d, "good")
}

// ParseBoxscore extracts player stat rows and newly observed players from a
// boxscore payload.
func ParseBoxscore(payload map[string]any, gameID string) ([]reconcile.Record, []models.Player) {
	boxscore := jsonx.Map(jsonx.Map(payload, "data"), "boxscore")

	var rows []reconcile.Record
	var players []models.Player

	for _, tb := range jsonx.Array(boxscore, "teamBoxscore") {
		teamBox, ok := tb.(map[string]any)
		if !ok {
			continue
		}
		teamID := jsonx.String(teamBox, "teamId")

		for _, ps := range jsonx.Array(teamBox, "playerStats") {
			player, ok := ps.(map[string]any)
			if !ok {
				continue
			}
			playerID := jsonx.String(player, "id")
			if playerID == "" {
				continue
			}

			first := jsonx.String(player, "firstName")
			last := jsonx.String(player, "lastName")

			players = append(players, models.Player{
				PlayerID:        playerID,
				DisplayName:     playerDisplayName(first, last),
				ShortName:       playerShortName(first, last),
				Position:        jsonx.String(player, "position"),
				Jersey:          jsonx.String(player, "number"),
				FirstSeenTeamID: teamID,
			})

			rows = append(rows, reconcile.Record{
				"game_id":              gameID,
				"team_id":              teamID,
				"player_id":            playerID,
				"displayName":          playerDisplayName(first, last),
				"starter":              strconv.FormatBool(jsonx.Bool(player, "starter")),
				"didNotPlay":           "false",
				"minutes":              jsonx.String(player, "minutesPlayed"),
				"points":               jsonx.String(player, "points"),
				"rebounds":             jsonx.String(player, "totalRebounds"),
				"assists":              jsonx.String(player, "assists"),
				"fieldGoalsMade":       jsonx.String(player, "fieldGoalsMade"),
				"fieldGoalsAttempted":  jsonx.String(player, "fieldGoalsAttempted"),
				"threePointsMade":      jsonx.String(player, "threePointsMade"),
				"threePointsAttempted": jsonx.String(player, "threePointsAttempted"),
				"freeThrowsMade":       jsonx.String(player, "freeThrowsMade"),
				"freeThrowsAttempted":  jsonx.String(player, "freeThrowsAttempted"),
				"steals":               jsonx.String(player, "steals"),
				"blocks":               jsonx.String(player, "blockedShots"),
				"turnovers":            jsonx.String(player, "turnovers"),
				"fouls":                jsonx.String(player, "personalFouls"),
			})
		}
	}

	return rows, players
}

func playerDisplayName(first, last string) string {
	if first == "" {
		return last
	}
	return first + " " + last
}

func playerShortName(first, last string) string {
	if first == "" {
		return last
	}
	return first[:1] + ". " + last
}

// ParseTeamStats extracts team stat rows and newly observed teams from a
// team stats payload. Team identity lives in the teams list; the numbers
// live in teamBoxscore, joined on teamId.
func ParseTeamStats(payload map[string]any, gameID string) ([]reconcile.Record, []models.Team) {
	boxscore := jsonx.Map(jsonx.Map(payload, "data"), "boxscore")

	teamsInfo := make(map[string]map[string]any)
	for _, t := range jsonx.Array(boxscore, "teams") {
		if m, ok := t.(map[string]any); ok {
			if id := jsonx.String(m, "teamId"); id != "" {
				teamsInfo[id] = m
			}
		}
	}

	var rows []reconcile.Record
	var teams []models.Team

	for _, tb := range jsonx.Array(boxscore, "teamBoxscore") {
		teamBox, ok := tb.(map[string]any)
		if !ok {
			continue
		}
		teamID := jsonx.String(teamBox, "teamId")
		if teamID == "" {
			continue
		}
		meta := teamsInfo[teamID]
		stats := jsonx.Map(teamBox, "teamStats")

		homeAway := "away"
		if jsonx.Bool(meta, "isHome") {
			homeAway = "home"
		}

		teams = append(teams, models.Team{
			TeamID:       teamID,
			Name:         jsonx.String(meta, "nameShort"),
			Abbreviation: jsonx.String(meta, "nameShort"),
			DisplayName:  jsonx.String(meta, "nameFull"),
			Logo:         jsonx.String(meta, "logoUrl"),
		})

		rows = append(rows, reconcile.Record{
			"game_id":              gameID,
			"team_id":              teamID,
			"home_away":            homeAway,
			"fieldGoalsMade":       jsonx.String(stats, "fieldGoalsMade"),
			"fieldGoalsAttempted":  jsonx.String(stats, "fieldGoalsAttempted"),
			"fieldGoalPercentage":  jsonx.String(stats, "fieldGoalPercentage"),
			"threePointsMade":      jsonx.String(stats, "threePointsMade"),
			"threePointsAttempted": jsonx.String(stats, "threePointsAttempted"),
			"freeThrowsMade":       jsonx.String(stats, "freeThrowsMade"),
			"freeThrowsAttempted":  jsonx.String(stats, "freeThrowsAttempted"),
			"totalRebounds":        jsonx.String(stats, "totalRebounds"),
			"offensiveRebounds":    jsonx.String(stats, "offensiveRebounds"),
			"assists":              jsonx.String(stats, "assists"),
			"steals":               jsonx.String(stats, "steals"),
			"blocks":               jsonx.String(stats, "blockedShots"),
			"turnovers":            jsonx.String(stats, "turnovers"),
			"fouls":                jsonx.String(stats, "personalFouls"),
			"points":               jsonx.String(stats, "points"),
		})
	}

	return rows, teams
}
