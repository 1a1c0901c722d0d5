// Package runner orchestrates a scrape pass: fetch the slate for a date,
// reconcile it into the master tables, pull per-game detail, and advance the
// date completion log.
package runner

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"ncaam_v1/scraper/internal/client"
	"ncaam_v1/scraper/internal/metrics"
	"ncaam_v1/scraper/internal/models"
	"ncaam_v1/scraper/internal/reconcile"
	"ncaam_v1/scraper/internal/store"
)

// Provider is a slate and detail source. Both upstream feeds implement it.
type Provider interface {
	Name() string
	ScheduleForDate(ctx context.Context, date time.Time) ([]models.Game, []models.Team, error)
	GameDetail(ctx context.Context, gameID string) (*models.GameDetail, error)
}

// Publisher receives game updates as they are observed. A nil Publisher
// disables publishing.
type Publisher interface {
	PublishGame(ctx context.Context, game models.Game) error
}

// StoreFactory yields the table store for a season. The CSV backend returns
// a store rooted at that season's directory; the database backend returns
// the same store for every season.
type StoreFactory func(seasonYear int) reconcile.TableStore

// Runner drives scrape passes for one provider. Master tables and per-game
// logs are opened lazily per season and flushed after every date.
type Runner struct {
	provider   Provider
	stores     StoreFactory
	dataRoot   string
	fetchDelay time.Duration
	publisher  Publisher

	dates   *reconcile.Tracker
	seasons map[int]*season
}

// season holds the per-season state: the three master tables, the per-game
// scrape log, and the detail writer.
type season struct {
	games   *reconcile.Table
	teams   *reconcile.Table
	players *reconcile.Table
	gameLog *reconcile.Tracker
	details *store.DetailWriter
}

// New creates a runner. The completed-dates log lives at the data root and
// is shared across seasons.
func New(ctx context.Context, provider Provider, stores StoreFactory, dataRoot string, fetchDelay time.Duration, publisher Publisher) *Runner {
	datesLog := store.NewFileLog(filepath.Join(dataRoot, "scraped_dates_final.csv"), "date")
	return &Runner{
		provider:   provider,
		stores:     stores,
		dataRoot:   dataRoot,
		fetchDelay: fetchDelay,
		publisher:  publisher,
		dates:      reconcile.NewTracker(ctx, "dates", datesLog),
		seasons:    make(map[int]*season),
	}
}

func (r *Runner) seasonFor(ctx context.Context, year int) *season {
	if s, ok := r.seasons[year]; ok {
		return s
	}

	root := filepath.Join(r.dataRoot, strconv.Itoa(year))
	tableStore := r.stores(year)
	gameLog := store.NewFileLog(filepath.Join(root, "scraped_games.csv"), "game_id")

	s := &season{
		games:   reconcile.OpenTable(ctx, tableStore, "games", "game_id", reconcile.LastWriteWins),
		teams:   reconcile.OpenTable(ctx, tableStore, "teams", "team_id", reconcile.FirstSeenWins),
		players: reconcile.OpenTable(ctx, tableStore, "players", "player_id", reconcile.FirstSeenWins),
		gameLog: reconcile.NewTracker(ctx, "games", gameLog),
		details: store.NewDetailWriter(root),
	}
	r.seasons[year] = s

	log.Info().
		Int("season", year).
		Int("games", s.games.Len()).
		Int("teams", s.teams.Len()).
		Int("players", s.players.Len()).
		Msg("Season state loaded")
	return s
}

// RunDate executes one scrape pass for a date. Dates already in the
// completion log are skipped unless force is set. The pass is incremental:
// a failure mid-date leaves already written detail files and log entries in
// place, and the next pass picks up where it stopped.
func (r *Runner) RunDate(ctx context.Context, date time.Time, force bool) error {
	dateKey := date.Format("2006-01-02")
	if !force && r.dates.Seen(dateKey) {
		log.Debug().Str("date", dateKey).Msg("Date already complete, skipping")
		return nil
	}

	log.Info().
		Str("date", dateKey).
		Str("provider", r.provider.Name()).
		Msg("Starting scrape pass")

	games, teams, err := r.provider.ScheduleForDate(ctx, date)
	if err != nil {
		return fmt.Errorf("failed to fetch slate for %s: %w", dateKey, err)
	}

	s := r.seasonFor(ctx, models.SeasonYear(date))
	r.applyGames(s, games)
	r.applyTeams(s, teams)

	for i := range games {
		game := &games[i]
		if r.publisher != nil && !game.IsScheduled() {
			if err := r.publisher.PublishGame(ctx, *game); err != nil {
				log.Warn().Err(err).Str("game_id", game.GameID).Msg("Failed to publish game update")
			}
		}

		if game.IsScheduled() || s.gameLog.Seen(game.GameID) {
			continue
		}
		if err := r.scrapeGame(ctx, s, game.GameID); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				r.flush(ctx, s)
				return err
			}
			log.Warn().Err(err).Str("game_id", game.GameID).Msg("Game detail scrape failed")
		}
	}

	states := make([]string, 0, len(games))
	for i := range games {
		states = append(states, games[i].StatusState)
	}
	if reconcile.DateComplete(states) {
		r.dates.Mark(ctx, dateKey)
		metrics.DatesCompleted.Inc()
		log.Info().Str("date", dateKey).Int("games", len(games)).Msg("Date marked complete")
	} else {
		log.Info().Str("date", dateKey).Int("games", len(games)).Msg("Date has unfinished games")
	}

	r.flush(ctx, s)
	return nil
}

// RunRange scrapes every date in [start, end] in order. Errors on a single
// date are logged and the range continues; only context cancellation stops
// the loop early.
func (r *Runner) RunRange(ctx context.Context, start, end time.Time, force bool) error {
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.RunDate(ctx, d, force); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			log.Error().Err(err).Str("date", d.Format("2006-01-02")).Msg("Scrape pass failed")
		}
	}
	metrics.RecordRunComplete()
	return nil
}

func (r *Runner) applyGames(s *season, games []models.Game) {
	if len(games) == 0 {
		return
	}
	batch := make([]reconcile.Record, 0, len(games))
	for i := range games {
		batch = append(batch, games[i].ToRecord())
	}
	res := s.games.Apply(batch)
	metrics.RecordMerge("games", res.Inserted, res.Replaced, res.Kept, res.Dropped)
	metrics.TableRows.WithLabelValues("games").Set(float64(s.games.Len()))

	log.Debug().
		Int("inserted", res.Inserted).
		Int("replaced", res.Replaced).
		Int("dropped", res.Dropped).
		Msg("Games merged")
}

func (r *Runner) applyTeams(s *season, teams []models.Team) {
	if len(teams) == 0 {
		return
	}
	batch := make([]reconcile.Record, 0, len(teams))
	for i := range teams {
		batch = append(batch, teams[i].ToRecord())
	}
	res := s.teams.Apply(batch)
	metrics.RecordMerge("teams", res.Inserted, res.Replaced, res.Kept, res.Dropped)
	metrics.TableRows.WithLabelValues("teams").Set(float64(s.teams.Len()))
}

func (r *Runner) applyPlayers(s *season, players []models.Player) {
	if len(players) == 0 {
		return
	}
	batch := make([]reconcile.Record, 0, len(players))
	for i := range players {
		batch = append(batch, players[i].ToRecord())
	}
	res := s.players.Apply(batch)
	metrics.RecordMerge("players", res.Inserted, res.Replaced, res.Kept, res.Dropped)
	metrics.TableRows.WithLabelValues("players").Set(float64(s.players.Len()))
}

// scrapeGame fetches one game's detail, writes its section files, and folds
// newly seen players and teams into the masters. The game is logged as
// scraped only when at least one section produced rows, so empty responses
// are retried on the next pass.
func (r *Runner) scrapeGame(ctx context.Context, s *season, gameID string) error {
	if err := sleepContext(ctx, r.fetchDelay); err != nil {
		return err
	}

	detail, err := r.provider.GameDetail(ctx, gameID)
	if err != nil {
		if errors.Is(err, client.ErrNotFound) {
			log.Warn().Str("game_id", gameID).Msg("Game detail not available upstream")
			return nil
		}
		return err
	}

	for _, section := range detail.Sections {
		if section.Err != nil {
			log.Warn().
				Err(section.Err).
				Str("game_id", gameID).
				Str("section", section.Name).
				Msg("Detail section failed")
			metrics.RecordSectionSkipped(section.Name)
		} else if section.Rows == 0 {
			metrics.RecordSectionSkipped(section.Name)
		}
	}

	written, err := s.details.WriteDetail(detail)
	if err != nil {
		return fmt.Errorf("failed to write detail files for %s: %w", gameID, err)
	}

	r.applyPlayers(s, detail.Players)
	if len(detail.Teams) > 0 {
		batch := make([]reconcile.Record, 0, len(detail.Teams))
		for i := range detail.Teams {
			batch = append(batch, detail.Teams[i].ToRecord())
		}
		res := s.teams.Apply(batch)
		metrics.RecordMerge("teams", res.Inserted, res.Replaced, res.Kept, res.Dropped)
	}

	if detail.HasData() {
		s.gameLog.Mark(ctx, gameID)
		metrics.GamesScraped.Inc()
		log.Info().Str("game_id", gameID).Int("files", written).Msg("Game detail saved")
	} else {
		log.Warn().Str("game_id", gameID).Msg("Game produced no detail data")
	}
	return nil
}

// flush persists all three master tables. Flush errors are logged and
// counted but do not abort the pass; the in-memory tables stay intact and
// the next flush retries.
func (r *Runner) flush(ctx context.Context, s *season) {
	for _, t := range []*reconcile.Table{s.games, s.teams, s.players} {
		err := t.Flush(ctx)
		metrics.RecordFlush(t.Entity(), err)
		if err != nil {
			log.Error().Err(err).Str("table", t.Entity()).Msg("Failed to persist master table")
		}
	}
}

// FlushAll persists every open season's tables. Called on shutdown.
func (r *Runner) FlushAll(ctx context.Context) {
	for _, s := range r.seasons {
		r.flush(ctx, s)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
