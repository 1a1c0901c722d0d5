package espn

import (
	"regexp"
	"strconv"

	"github.com/rs/zerolog/log"

	"ncaam_v1/scraper/internal/jsonx"
	"ncaam_v1/scraper/internal/models"
	"ncaam_v1/scraper/internal/reconcile"
)

// teamUIDPattern pulls the team id out of a uid like "s:40~l:41~t:2509".
var teamUIDPattern = regexp.MustCompile(`t:(\d+)`)

// ParseSchedule extracts games and teams from a schedule page payload. The
// events object is keyed by date string, so the caller's date selects the
// slate. Games without an id are skipped; games without two competitors keep
// their schedule fields but carry no team info.
func ParseSchedule(payload map[string]any, dateKey, pageBaseURL string) ([]models.Game, []models.Team) {
	events := jsonx.Array(jsonx.Map(payload, "events"), dateKey)

	var games []models.Game
	var teams []models.Team
	seenTeams := make(map[string]bool)

	for _, ev := range events {
		event, ok := ev.(map[string]any)
		if !ok {
			continue
		}
		gameID := jsonx.String(event, "id")
		if gameID == "" {
			log.Warn().Str("date", dateKey).Msg("Skipping schedule event without an id")
			continue
		}

		status := jsonx.Map(event, "status")
		venue := jsonx.Map(event, "venue")
		season := jsonx.Map(event, "season")

		game := models.Game{
			GameID:       gameID,
			DateTimeUTC:  jsonx.String(event, "date"),
			StatusDetail: jsonx.String(status, "detail"),
			StatusState:  jsonx.String(status, "state"),
			Venue:        jsonx.String(venue, "fullName"),
			VenueCity:    jsonx.String(jsonx.Map(venue, "address"), "city"),
			VenueState:   jsonx.String(jsonx.Map(venue, "address"), "state"),
			SeasonYear:   jsonx.String(season, "year"),
			SeasonType:   jsonx.String(season, "slug"),
		}
		if link := jsonx.String(event, "link"); link != "" {
			game.GameLink = pageBaseURL + link
		}

		home, away := splitCompetitors(jsonx.Array(event, "competitors"))
		if home != nil && away != nil {
			game.HomeTeamID = competitorTeamID(home)
			game.HomeTeamName = jsonx.String(home, "displayName")
			game.HomeTeamAbbrev = competitorAbbrev(home)
			game.HomeScore = jsonx.String(home, "score")
			game.AwayTeamID = competitorTeamID(away)
			game.AwayTeamName = jsonx.String(away, "displayName")
			game.AwayTeamAbbrev = competitorAbbrev(away)
			game.AwayScore = jsonx.String(away, "score")

			for _, comp := range []map[string]any{home, away} {
				teamID := competitorTeamID(comp)
				if teamID == "" || seenTeams[teamID] {
					continue
				}
				seenTeams[teamID] = true
				teams = append(teams, models.Team{
					TeamID:           teamID,
					UID:              jsonx.String(comp, "uid"),
					Location:         jsonx.String(comp, "location"),
					Name:             jsonx.String(comp, "name"),
					Abbreviation:     competitorAbbrev(comp),
					DisplayName:      jsonx.String(comp, "displayName"),
					ShortDisplayName: jsonx.String(comp, "shortDisplayName"),
					Logo:             jsonx.String(comp, "logo"),
				})
			}
		} else {
			log.Debug().Str("game_id", gameID).Msg("Schedule event without two competitors")
		}

		games = append(games, game)
	}

	return games, teams
}

// splitCompetitors picks the home and away entries by the isHome flag,
// falling back to positional order when the flag is absent.
func splitCompetitors(competitors []any) (home, away map[string]any) {
	if len(competitors) < 2 {
		return nil, nil
	}
	var objs []map[string]any
	for _, c := range competitors {
		if m, ok := c.(map[string]any); ok {
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

// competitorTeamID parses the team id from the competitor uid, falling back
// to the competitor id when the uid does not match.
func competitorTeamID(comp map[string]any) string {
	if m := teamUIDPattern.FindStringSubmatch(jsonx.String(comp, "uid")); m != nil {
		return m[1]
	}
	return jsonx.String(comp, "id")
}

func competitorAbbrev(comp map[string]any) string {
	if abbrev := jsonx.String(comp, "abbreviation"); abbrev != "" {
		return abbrev
	}
	return jsonx.String(comp, "abbrev")
}

// ParseSummary extracts the three detail sections and any newly seen
// players from a game summary payload. Section failures are recorded per
// section rather than failing the whole game.
func ParseSummary(payload map[string]any, gameID string) *models.GameDetail {
	detail := &models.GameDetail{GameID: gameID}

	plays := parsePlays(jsonx.Array(payload, "plays"))
	detail.Plays = plays
	detail.Sections = append(detail.Sections, models.SectionResult{
		Name: models.SectionPlayByPlay,
		Rows: len(plays),
	})

	boxscore := jsonx.Map(payload, "boxscore")

	teamStats := parseTeamStats(jsonx.Array(boxscore, "teams"), gameID)
	detail.TeamStats = teamStats
	detail.Sections = append(detail.Sections, models.SectionResult{
		Name: models.SectionTeamStats,
		Rows: len(teamStats),
	})

	playerStats, players := parsePlayerStats(jsonx.Array(boxscore, "players"), gameID)
	detail.PlayerStats = playerStats
	detail.Players = players
	detail.Sections = append(detail.Sections, models.SectionResult{
		Name: models.SectionPlayerStats,
		Rows: len(playerStats),
	})

	return detail
}

func parsePlays(plays []any) []reconcile.Record {
	var rows []reconcile.Record
	for _, p := range plays {
		play, ok := p.(map[string]any)
		if !ok {
			continue
		}
		rows = append(rows, reconcile.Record{
			"play_id":         jsonx.String(play, "id"),
			"sequence_number": jsonx.String(play, "sequenceNumber"),
			"type":            jsonx.String(jsonx.Map(play, "type"), "text"),
			"description":     jsonx.String(play, "text"),
			"away_score":      jsonx.String(play, "awayScore"),
			"home_score":      jsonx.String(play, "homeScore"),
			"period":          jsonx.String(jsonx.Map(play, "period"), "displayValue"),
			"clock":           jsonx.String(jsonx.Map(play, "clock"), "displayValue"),
			"scoring_play":    strconv.FormatBool(jsonx.Bool(play, "scoringPlay")),
			"team_id":         jsonx.String(jsonx.Map(play, "team"), "id"),
			"timestamp_utc":   jsonx.String(play, "wallclock"),
		})
	}
	return rows
}

func parseTeamStats(teams []any, gameID string) []reconcile.Record {
	var rows []reconcile.Record
	for _, t := range teams {
		teamData, ok := t.(map[string]any)
		if !ok {
			continue
		}
		teamID := jsonx.String(jsonx.Map(teamData, "team"), "id")
		if teamID == "" {
			continue
		}

		row := reconcile.Record{
			"game_id":   gameID,
			"team_id":   teamID,
			"home_away": jsonx.String(teamData, "homeAway"),
		}
		for _, s := range jsonx.Array(teamData, "statistics") {
			stat, ok := s.(map[string]any)
			if !ok {
				continue
			}
			name := jsonx.String(stat, "name")
			if name == "" {
				name = jsonx.String(stat, "abbreviation")
			}
			if name != "" {
				row[name] = jsonx.String(stat, "displayValue")
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func parsePlayerStats(teams []any, gameID string) ([]reconcile.Record, []models.Player) {
	var rows []reconcile.Record
	var players []models.Player

	for _, t := range teams {
		teamData, ok := t.(map[string]any)
		if !ok {
			continue
		}
		teamID := jsonx.String(jsonx.Map(teamData, "team"), "id")

		statistics := jsonx.Array(teamData, "statistics")
		if teamID == "" || len(statistics) == 0 {
			continue
		}
		statsDef, ok := statistics[0].(map[string]any)
		if !ok {
			continue
		}

		labels := stringSlice(jsonx.Array(statsDef, "labels"))
		if len(labels) == 0 {
			labels = stringSlice(jsonx.Array(statsDef, "keys"))
		}
		if len(labels) == 0 {
			continue
		}

		for _, a := range jsonx.Array(statsDef, "athletes") {
			entry, ok := a.(map[string]any)
			if !ok {
				continue
			}
			athlete := jsonx.Map(entry, "athlete")
			playerID := jsonx.String(athlete, "id")
			if playerID == "" {
				continue
			}

			players = append(players, models.Player{
				PlayerID:        playerID,
				UID:             jsonx.String(athlete, "uid"),
				GUID:            jsonx.String(athlete, "guid"),
				DisplayName:     jsonx.String(athlete, "displayName"),
				ShortName:       jsonx.String(athlete, "shortName"),
				Position:        jsonx.String(jsonx.Map(athlete, "position"), "abbreviation"),
				Jersey:          jsonx.String(athlete, "jersey"),
				Headshot:        jsonx.String(jsonx.Map(athlete, "headshot"), "href"),
				FirstSeenTeamID: teamID,
			})

			row := reconcile.Record{
				"game_id":     gameID,
				"team_id":     teamID,
				"player_id":   playerID,
				"displayName": jsonx.String(athlete, "displayName"),
				"starter":     strconv.FormatBool(jsonx.Bool(entry, "starter")),
				"didNotPlay":  strconv.FormatBool(jsonx.Bool(entry, "didNotPlay")),
			}
			values := jsonx.Array(entry, "stats")
			for i := 0; i < len(labels) && i < len(values); i++ {
				row[labels[i]] = jsonx.Stringify(values[i])
			}
			rows = append(rows, row)
		}
	}

	return rows, players
}

func stringSlice(arr []any) []string {
	out := make([]string, 0, len(arr))
	for _, v := range arr {
		out = append(out, jsonx.Stringify(v))
	}
	return out
}
