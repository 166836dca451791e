package apiclient

import (
	"context"
	"fmt"
	"strconv"

	"github.com/AdamBeresnev/leagueos/internal/league"
	"github.com/valyala/fasthttp"
)

func (c *Client) Me(ctx context.Context, token string) (*league.Profile, error) {
	p, err := doRequest[league.Profile](ctx, c, call{path: "/auth/me", token: token})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) ProfileClubs(ctx context.Context, token string) ([]league.Club, error) {
	return doRequest[[]league.Club](ctx, c, call{path: "/profile/clubs", token: token})
}

// Seasons lists the club's seasons; a nil isActive lists all of them.
func (c *Client) Seasons(ctx context.Context, token string, clubID int64, isActive *bool) ([]league.Season, error) {
	req := call{path: "/seasons", token: token, clubID: clubID}
	if isActive != nil {
		req.set("is_active", strconv.FormatBool(*isActive))
	}
	return doRequest[[]league.Season](ctx, c, req)
}

// Sessions lists sessions of one season, or of the whole club when seasonID is 0.
func (c *Client) Sessions(ctx context.Context, token string, clubID, seasonID int64) ([]league.Session, error) {
	req := call{path: "/sessions", token: token, clubID: clubID}
	req.setID("season_id", seasonID)
	return doRequest[[]league.Session](ctx, c, req)
}

func (c *Client) Players(ctx context.Context, token string, clubID int64, isActive bool) ([]league.Player, error) {
	req := call{path: "/players", token: token, clubID: clubID}
	req.set("is_active", strconv.FormatBool(isActive))
	return doRequest[[]league.Player](ctx, c, req)
}

func (c *Client) Courts(ctx context.Context, token string, clubID int64) ([]league.Court, error) {
	return doRequest[[]league.Court](ctx, c, call{path: "/courts", token: token, clubID: clubID})
}

// Games lists games of one session, or of the whole club when sessionID is 0.
func (c *Client) Games(ctx context.Context, token string, clubID, sessionID int64) ([]league.Game, error) {
	req := call{path: "/games", token: token, clubID: clubID}
	req.setID("session_id", sessionID)
	return doRequest[[]league.Game](ctx, c, req)
}

func (c *Client) GameParticipants(ctx context.Context, token string, clubID, gameID int64) ([]league.GameParticipant, error) {
	return doRequest[[]league.GameParticipant](ctx, c, call{
		path:   fmt.Sprintf("/games/%d/participants", gameID),
		token:  token,
		clubID: clubID,
	})
}

func (c *Client) SessionLeaderboard(ctx context.Context, token string, clubID, sessionID int64) ([]league.LeaderboardRow, error) {
	return doRequest[[]league.LeaderboardRow](ctx, c, call{
		path:   fmt.Sprintf("/sessions/%d/leaderboard", sessionID),
		token:  token,
		clubID: clubID,
	})
}

// SeasonLeaderboardSnapshot reads the leaderboard of the season's most recent
// scored session. A season with no such session yields an empty snapshot.
func (c *Client) SeasonLeaderboardSnapshot(ctx context.Context, token string, clubID, seasonID int64) (league.LeaderboardSnapshot, error) {
	sessions, err := c.Sessions(ctx, token, clubID, seasonID)
	if err != nil {
		return league.LeaderboardSnapshot{}, err
	}

	target := league.LatestScoredSession(sessions)
	if target == nil {
		return league.LeaderboardSnapshot{Rows: []league.LeaderboardRow{}}, nil
	}

	rows, err := c.SessionLeaderboard(ctx, token, clubID, target.ID)
	if err != nil {
		return league.LeaderboardSnapshot{}, err
	}
	return league.LeaderboardSnapshot{Session: target, Rows: rows}, nil
}

type NewGame struct {
	SessionID int64  `json:"session_id"`
	CourtID   int64  `json:"court_id"`
	StartTime string `json:"start_time"`
	ScoreA    int    `json:"score_a"`
	ScoreB    int    `json:"score_b"`
}

func (c *Client) CreateGame(ctx context.Context, token string, clubID int64, g NewGame) (*league.Game, error) {
	game, err := doRequest[league.Game](ctx, c, call{
		method: fasthttp.MethodPost,
		path:   "/games",
		token:  token,
		clubID: clubID,
		body:   g,
	})
	if err != nil {
		return nil, err
	}
	return &game, nil
}

type ParticipantInput struct {
	PlayerID int64       `json:"player_id"`
	Side     league.Side `json:"side"`
}

type ParticipantsAck struct {
	OK               bool  `json:"ok"`
	GameID           int64 `json:"game_id"`
	ParticipantCount int   `json:"participant_count"`
}

func (c *Client) SetGameParticipants(ctx context.Context, token string, clubID, gameID int64, participants []ParticipantInput) (*ParticipantsAck, error) {
	ack, err := doRequest[ParticipantsAck](ctx, c, call{
		method: fasthttp.MethodPut,
		path:   fmt.Sprintf("/games/%d/participants", gameID),
		token:  token,
		clubID: clubID,
		body:   map[string]any{"participants": participants},
	})
	if err != nil {
		return nil, err
	}
	return &ack, nil
}

// Participants converts validated participant rows into the request shape.
func Participants(rows []league.GameParticipant) []ParticipantInput {
	out := make([]ParticipantInput, 0, len(rows))
	for _, p := range rows {
		out = append(out, ParticipantInput{PlayerID: p.PlayerID, Side: p.Side})
	}
	return out
}
