package runner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ncaam_v1/scraper/internal/models"
	"ncaam_v1/scraper/internal/reconcile"
	"ncaam_v1/scraper/internal/store"
)

// fakeProvider serves a programmable slate and detail set.
type fakeProvider struct {
	games        []models.Game
	teams        []models.Team
	details      map[string]*models.GameDetail
	scheduleErr  error
	detailCalls  []string
	scheduleHits int
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) ScheduleForDate(ctx context.Context, date time.Time) ([]models.Game, []models.Team, error) {
	f.scheduleHits++
	if f.scheduleErr != nil {
		return nil, nil, f.scheduleErr
	}
	return f.games, f.teams, nil
}

func (f *fakeProvider) GameDetail(ctx context.Context, gameID string) (*models.GameDetail, error) {
	f.detailCalls = append(f.detailCalls, gameID)
	if d, ok := f.details[gameID]; ok {
		return d, nil
	}
	return &models.GameDetail{GameID: gameID}, nil
}

func finalGame(id, homeScore, awayScore string) models.Game {
	return models.Game{
		GameID:       id,
		StatusState:  models.StatePost,
		StatusDetail: "Final",
		HomeTeamID:   "1", HomeTeamName: "Home U", HomeScore: homeScore,
		AwayTeamID: "2", AwayTeamName: "Away U", AwayScore: awayScore,
	}
}

func detailWithPlays(id string, n int) *models.GameDetail {
	d := &models.GameDetail{GameID: id}
	for i := 0; i < n; i++ {
		d.Plays = append(d.Plays, reconcile.Record{
			"play_id":         id + "-" + strconv.Itoa(i),
			"sequence_number": strconv.Itoa(i + 1),
			"description":     "play",
		})
	}
	d.Sections = []models.SectionResult{{Name: models.SectionPlayByPlay, Rows: n}}
	return d
}

func newTestRunner(t *testing.T, p Provider) (*Runner, string) {
	t.Helper()
	root := t.TempDir()
	stores := func(seasonYear int) reconcile.TableStore {
		return store.NewCSVStore(filepath.Join(root, strconv.Itoa(seasonYear)))
	}
	return New(context.Background(), p, stores, root, 0, nil), root
}

func loadTable(t *testing.T, root string, seasonYear int, entity string) map[string]reconcile.Record {
	t.Helper()
	s := store.NewCSVStore(filepath.Join(root, strconv.Itoa(seasonYear)))
	rows, err := s.Load(context.Background(), entity)
	require.NoError(t, err)
	key := map[string]string{"games": "game_id", "teams": "team_id", "players": "player_id"}[entity]
	out := make(map[string]reconcile.Record)
	for _, r := range rows {
		out[r[key]] = r
	}
	return out
}

func TestRunDate_CompleteDateWritesEverything(t *testing.T) {
	date := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	p := &fakeProvider{
		games: []models.Game{finalGame("401", "77", "70")},
		teams: []models.Team{
			{TeamID: "1", DisplayName: "Home U"},
			{TeamID: "2", DisplayName: "Away U"},
		},
		details: map[string]*models.GameDetail{
			"401": detailWithPlays("401", 3),
		},
	}

	r, root := newTestRunner(t, p)
	require.NoError(t, r.RunDate(context.Background(), date, false))

	games := loadTable(t, root, 2025, "games")
	require.Len(t, games, 1)
	assert.Equal(t, "77", games["401"]["home_score"])

	teams := loadTable(t, root, 2025, "teams")
	assert.Len(t, teams, 2)

	// Detail file written.
	_, err := os.Stat(filepath.Join(root, "2025", "play_by_play", "401.csv"))
	assert.NoError(t, err)

	// Date is complete; a second pass does not refetch.
	require.NoError(t, r.RunDate(context.Background(), date, false))
	assert.Equal(t, 1, p.scheduleHits)
}

func TestRunDate_IncompleteDateStaysOpen(t *testing.T) {
	date := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	live := models.Game{GameID: "401", StatusState: models.StateIn, HomeTeamID: "1", AwayTeamID: "2", HomeScore: "40", AwayScore: "38"}
	pre := models.Game{GameID: "402", StatusState: models.StatePre, HomeTeamID: "3", AwayTeamID: "4"}

	p := &fakeProvider{
		games:   []models.Game{live, pre},
		details: map[string]*models.GameDetail{"401": detailWithPlays("401", 2)},
	}

	r, root := newTestRunner(t, p)
	require.NoError(t, r.RunDate(context.Background(), date, false))

	// Live game scraped, scheduled game not.
	assert.Equal(t, []string{"401"}, p.detailCalls)

	// Date not complete; next pass fetches the slate again.
	require.NoError(t, r.RunDate(context.Background(), date, false))
	assert.Equal(t, 2, p.scheduleHits)

	// The live game's detail is not refetched within the same log.
	assert.Equal(t, []string{"401"}, p.detailCalls)

	// Now the live game goes final with a new score and the pre game finishes.
	p.games = []models.Game{finalGame("401", "78", "75"), finalGame("402", "60", "59")}
	p.details["402"] = detailWithPlays("402", 1)
	require.NoError(t, r.RunDate(context.Background(), date, false))

	games := loadTable(t, root, 2025, "games")
	assert.Equal(t, "78", games["401"]["home_score"], "last write wins for games")
	assert.Equal(t, "post", games["401"]["status_state"])
	require.Contains(t, games, "402")

	// All games final now; date closes and further passes skip.
	require.NoError(t, r.RunDate(context.Background(), date, false))
	assert.Equal(t, 3, p.scheduleHits)
}

func TestRunDate_TeamsFirstSeenWins(t *testing.T) {
	date := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	p := &fakeProvider{
		games: []models.Game{
			{GameID: "401", StatusState: models.StateIn, HomeTeamID: "1", AwayTeamID: "2"},
		},
		teams: []models.Team{{TeamID: "1", DisplayName: "Original Name"}},
	}

	r, root := newTestRunner(t, p)
	require.NoError(t, r.RunDate(context.Background(), date, false))

	// Source renames the team; the master keeps the first spelling.
	p.teams = []models.Team{{TeamID: "1", DisplayName: "Renamed"}}
	require.NoError(t, r.RunDate(context.Background(), date, false))

	teams := loadTable(t, root, 2025, "teams")
	assert.Equal(t, "Original Name", teams["1"]["displayName"])
}

func TestRunDate_ZeroGamesCompletesDate(t *testing.T) {
	date := time.Date(2025, 7, 4, 0, 0, 0, 0, time.UTC)
	p := &fakeProvider{}

	r, root := newTestRunner(t, p)
	require.NoError(t, r.RunDate(context.Background(), date, false))

	// Off-season date closes immediately.
	require.NoError(t, r.RunDate(context.Background(), date, false))
	assert.Equal(t, 1, p.scheduleHits)

	// No master files written for an empty slate.
	_, err := os.Stat(filepath.Join(root, "2025", "games", "games.csv"))
	assert.True(t, os.IsNotExist(err))
}

func TestRunDate_ScheduleErrorPropagates(t *testing.T) {
	p := &fakeProvider{scheduleErr: errors.New("upstream down")}
	r, _ := newTestRunner(t, p)

	err := r.RunDate(context.Background(), time.Now(), false)
	require.Error(t, err)
}

func TestRunDate_GameWithoutDataRetriedNextPass(t *testing.T) {
	date := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	p := &fakeProvider{
		games: []models.Game{
			{GameID: "401", StatusState: models.StateIn, HomeTeamID: "1", AwayTeamID: "2"},
		},
		// No detail registered: provider returns an empty GameDetail.
	}

	r, _ := newTestRunner(t, p)
	require.NoError(t, r.RunDate(context.Background(), date, false))
	require.NoError(t, r.RunDate(context.Background(), date, false))

	assert.Equal(t, []string{"401", "401"}, p.detailCalls, "empty detail is retried, not logged as scraped")
}

func TestRunDate_PlayersMergedFromDetail(t *testing.T) {
	date := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	detail := detailWithPlays("401", 1)
	detail.Players = []models.Player{
		{PlayerID: "9", DisplayName: "Sample Guard", FirstSeenTeamID: "1"},
	}

	p := &fakeProvider{
		games:   []models.Game{finalGame("401", "70", "60")},
		details: map[string]*models.GameDetail{"401": detail},
	}

	r, root := newTestRunner(t, p)
	require.NoError(t, r.RunDate(context.Background(), date, false))

	players := loadTable(t, root, 2025, "players")
	require.Contains(t, players, "9")
	assert.Equal(t, "1", players["9"]["first_seen_team_id"])
}

func TestRunDate_ForceRescrapesCompleteDate(t *testing.T) {
	date := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	p := &fakeProvider{
		games:   []models.Game{finalGame("401", "70", "60")},
		details: map[string]*models.GameDetail{"401": detailWithPlays("401", 1)},
	}

	r, _ := newTestRunner(t, p)
	require.NoError(t, r.RunDate(context.Background(), date, false))
	require.NoError(t, r.RunDate(context.Background(), date, true))

	assert.Equal(t, 2, p.scheduleHits, "force bypasses the completion log")
	assert.Equal(t, []string{"401"}, p.detailCalls, "per-game log still prevents detail refetch")
}

func TestRunRange_ContinuesPastBadDates(t *testing.T) {
	p := &fakeProvider{scheduleErr: errors.New("flaky")}
	r, _ := newTestRunner(t, p)

	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC)

	require.NoError(t, r.RunRange(context.Background(), start, end, false))
	assert.Equal(t, 3, p.scheduleHits, "every date attempted despite failures")
}

func TestRunner_StatePersistsAcrossInstances(t *testing.T) {
	date := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	root := t.TempDir()
	stores := func(seasonYear int) reconcile.TableStore {
		return store.NewCSVStore(filepath.Join(root, strconv.Itoa(seasonYear)))
	}

	p := &fakeProvider{
		games:   []models.Game{finalGame("401", "70", "60")},
		details: map[string]*models.GameDetail{"401": detailWithPlays("401", 1)},
	}

	r1 := New(context.Background(), p, stores, root, 0, nil)
	require.NoError(t, r1.RunDate(context.Background(), date, false))

	// A fresh runner (new process) sees the completion log and skips.
	r2 := New(context.Background(), p, stores, root, 0, nil)
	require.NoError(t, r2.RunDate(context.Background(), date, false))
	assert.Equal(t, 1, p.scheduleHits)
}
