package service

import (
	"context"

	"github.com/AdamBeresnev/leagueos/internal/apiclient"
	"github.com/AdamBeresnev/leagueos/internal/league"
)

// LeagueAPI is the part of the league REST API the services depend on.
// *apiclient.Client implements it.
type LeagueAPI interface {
	Me(ctx context.Context, token string) (*league.Profile, error)
	ProfileClubs(ctx context.Context, token string) ([]league.Club, error)
	Seasons(ctx context.Context, token string, clubID int64, isActive *bool) ([]league.Season, error)
	Sessions(ctx context.Context, token string, clubID, seasonID int64) ([]league.Session, error)
	Players(ctx context.Context, token string, clubID int64, isActive bool) ([]league.Player, error)
	Courts(ctx context.Context, token string, clubID int64) ([]league.Court, error)
	Games(ctx context.Context, token string, clubID, sessionID int64) ([]league.Game, error)
	GameParticipants(ctx context.Context, token string, clubID, gameID int64) ([]league.GameParticipant, error)
	SeasonLeaderboardSnapshot(ctx context.Context, token string, clubID, seasonID int64) (league.LeaderboardSnapshot, error)
	CreateGame(ctx context.Context, token string, clubID int64, g apiclient.NewGame) (*league.Game, error)
	SetGameParticipants(ctx context.Context, token string, clubID, gameID int64, participants []apiclient.ParticipantInput) (*apiclient.ParticipantsAck, error)
}

var _ LeagueAPI = (*apiclient.Client)(nil)
