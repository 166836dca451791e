package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/AdamBeresnev/leagueos/internal/apiclient"
	"github.com/AdamBeresnev/leagueos/internal/db"
	"github.com/AdamBeresnev/leagueos/internal/league"
	"github.com/AdamBeresnev/leagueos/internal/store"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

var errUpstream = errors.New("upstream unavailable")

// fakeAPI is an in-memory league API. Setting an entry in fail makes the
// named call return that error.
type fakeAPI struct {
	mu sync.Mutex

	profile      *league.Profile
	clubs        []league.Club
	seasons      []league.Season
	sessions     []league.Session
	players      []league.Player
	courts       []league.Court
	games        []league.Game
	participants map[int64][]league.GameParticipant
	leaderboards map[int64][]league.LeaderboardRow

	fail map[string]error

	created     []apiclient.NewGame
	seated      map[int64][]apiclient.ParticipantInput
	nextGameID  int64
	createError error
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		participants: map[int64][]league.GameParticipant{},
		leaderboards: map[int64][]league.LeaderboardRow{},
		fail:         map[string]error{},
		seated:       map[int64][]apiclient.ParticipantInput{},
		nextGameID:   900,
	}
}

func (f *fakeAPI) failing(call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fail[call]
}

func (f *fakeAPI) Me(ctx context.Context, token string) (*league.Profile, error) {
	if err := f.failing("me"); err != nil {
		return nil, err
	}
	return f.profile, nil
}

func (f *fakeAPI) ProfileClubs(ctx context.Context, token string) ([]league.Club, error) {
	if err := f.failing("clubs"); err != nil {
		return nil, err
	}
	return f.clubs, nil
}

func (f *fakeAPI) Seasons(ctx context.Context, token string, clubID int64, isActive *bool) ([]league.Season, error) {
	if err := f.failing("seasons"); err != nil {
		return nil, err
	}
	var out []league.Season
	for _, s := range f.seasons {
		if isActive == nil || s.IsActive == *isActive {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeAPI) Sessions(ctx context.Context, token string, clubID, seasonID int64) ([]league.Session, error) {
	if err := f.failing("sessions"); err != nil {
		return nil, err
	}
	var out []league.Session
	for _, s := range f.sessions {
		if seasonID == 0 || s.SeasonID == seasonID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeAPI) Players(ctx context.Context, token string, clubID int64, isActive bool) ([]league.Player, error) {
	if err := f.failing("players"); err != nil {
		return nil, err
	}
	var out []league.Player
	for _, p := range f.players {
		if p.IsActive == isActive {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeAPI) Courts(ctx context.Context, token string, clubID int64) ([]league.Court, error) {
	if err := f.failing("courts"); err != nil {
		return nil, err
	}
	return f.courts, nil
}

func (f *fakeAPI) Games(ctx context.Context, token string, clubID, sessionID int64) ([]league.Game, error) {
	if err := f.failing("games"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []league.Game
	for _, g := range f.games {
		if sessionID == 0 || g.SessionID == sessionID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (f *fakeAPI) GameParticipants(ctx context.Context, token string, clubID, gameID int64) ([]league.GameParticipant, error) {
	if err := f.failing("participants"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]league.GameParticipant(nil), f.participants[gameID]...), nil
}

func (f *fakeAPI) SeasonLeaderboardSnapshot(ctx context.Context, token string, clubID, seasonID int64) (league.LeaderboardSnapshot, error) {
	if err := f.failing("leaderboard"); err != nil {
		return league.LeaderboardSnapshot{}, err
	}
	return league.LeaderboardSnapshot{Rows: f.leaderboards[seasonID]}, nil
}

func (f *fakeAPI) CreateGame(ctx context.Context, token string, clubID int64, g apiclient.NewGame) (*league.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, g)
	if f.createError != nil {
		return nil, f.createError
	}
	game := league.Game{ID: f.nextGameID, SessionID: g.SessionID, CourtID: g.CourtID, StartTime: g.StartTime, ScoreA: g.ScoreA, ScoreB: g.ScoreB}
	f.nextGameID++
	f.games = append(f.games, game)
	return &game, nil
}

func (f *fakeAPI) SetGameParticipants(ctx context.Context, token string, clubID, gameID int64, participants []apiclient.ParticipantInput) (*apiclient.ParticipantsAck, error) {
	if err := f.failing("set_participants"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seated[gameID] = participants
	for _, p := range participants {
		f.participants[gameID] = append(f.participants[gameID], league.GameParticipant{GameID: gameID, PlayerID: p.PlayerID, Side: p.Side})
	}
	return &apiclient.ParticipantsAck{OK: true, GameID: gameID, ParticipantCount: len(participants)}, nil
}

func setupJournal(t *testing.T) (*sqlx.DB, *store.JournalStore) {
	t.Helper()

	database, err := db.Open("file::memory:")
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations(database))
	t.Cleanup(func() { database.Close() })

	return database, store.NewJournalStore(database)
}
