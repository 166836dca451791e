package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/AdamBeresnev/leagueos/internal/constants"
	"github.com/AdamBeresnev/leagueos/internal/dashboard"
	"github.com/AdamBeresnev/leagueos/internal/journal"
	"github.com/AdamBeresnev/leagueos/internal/league"
	"github.com/AdamBeresnev/leagueos/internal/store"
	"github.com/google/uuid"
)

var (
	ErrForbidden       = errors.New("club access denied")
	ErrAttemptNotFound = errors.New("attempt not found")
)

type AdminService struct {
	api     LeagueAPI
	journal *store.JournalStore
}

func NewAdminService(api LeagueAPI, journal *store.JournalStore) *AdminService {
	return &AdminService{api: api, journal: journal}
}

// Authorize returns the caller's profile when it may use the admin workspace
// of clubID.
func (s *AdminService) Authorize(ctx context.Context, token string, clubID int64) (*league.Profile, error) {
	return s.authorize(ctx, token, clubID, league.CanAdminClub)
}

// AuthorizeRecorder returns the caller's profile when it may record games for
// clubID.
func (s *AdminService) AuthorizeRecorder(ctx context.Context, token string, clubID int64) (*league.Profile, error) {
	return s.authorize(ctx, token, clubID, league.CanRecordForClub)
}

func (s *AdminService) authorize(ctx context.Context, token string, clubID int64, can league.ClubCapability) (*league.Profile, error) {
	profile, err := s.api.Me(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	if !can(*profile, clubID) {
		return nil, ErrForbidden
	}
	return profile, nil
}

// Roster lists active and inactive players together, ordered by name.
func (s *AdminService) Roster(ctx context.Context, token string, clubID int64) ([]league.Player, error) {
	active, err := s.api.Players(ctx, token, clubID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list active players: %w", err)
	}
	inactive, err := s.api.Players(ctx, token, clubID, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list inactive players: %w", err)
	}
	return dashboard.MergePlayers(active, inactive), nil
}

type SessionSummary struct {
	SessionID     int64             `json:"session_id"`
	Games         int               `json:"games"`
	UniquePlayers int               `json:"unique_players"`
	Incomplete    []int64           `json:"incomplete_game_ids,omitempty"`
	Attempts      []journal.Attempt `json:"attempts"`
}

// SessionSummary counts a session's games and distinct players and lists the
// attempts journaled against it. Games whose participants could not be read
// are listed as incomplete and do not contribute players.
func (s *AdminService) SessionSummary(ctx context.Context, token string, clubID, sessionID int64) (*SessionSummary, error) {
	games, err := s.api.Games(ctx, token, clubID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list session games: %w", err)
	}
	byGame, failed := fetchParticipants(ctx, s.api, token, clubID, games)

	attempts, err := s.journal.ListSessionAttempts(ctx, clubID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list session attempts: %w", err)
	}

	return &SessionSummary{
		SessionID:     sessionID,
		Games:         len(games),
		UniquePlayers: dashboard.CountUniquePlayers(games, byGame),
		Incomplete:    failed,
		Attempts:      attempts,
	}, nil
}

type JournalOverview struct {
	Counts map[journal.Outcome]int `json:"counts"`
	Recent []journal.Attempt       `json:"recent"`
}

func (s *AdminService) Journal(ctx context.Context, clubID int64) (*JournalOverview, error) {
	counts, err := s.journal.CountByOutcome(ctx, clubID)
	if err != nil {
		return nil, err
	}
	recent, err := s.journal.ListAttempts(ctx, clubID, constants.JournalListLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}
	return &JournalOverview{Counts: counts, Recent: recent}, nil
}

type AttemptDetail struct {
	journal.Attempt
	Players []int64 `json:"players"`
}

// Attempt loads one journaled attempt of clubID. Attempts of other clubs are
// reported as not found.
func (s *AdminService) Attempt(ctx context.Context, clubID int64, id uuid.UUID) (*AttemptDetail, error) {
	attempt, err := s.journal.GetAttempt(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAttemptNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}
	if attempt.ClubID != clubID {
		return nil, ErrAttemptNotFound
	}
	return &AttemptDetail{Attempt: *attempt, Players: attempt.Players()}, nil
}
