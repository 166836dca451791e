package league

import (
	"time"

	"github.com/AdamBeresnev/leagueos/internal/utils"
)

type Format string

const (
	FormatSingles      Format = "SINGLES"
	FormatDoubles      Format = "DOUBLES"
	FormatMixedDoubles Format = "MIXED_DOUBLES"
)

type SessionStatus string

const (
	SessionUpcoming  SessionStatus = "UPCOMING"
	SessionOpen      SessionStatus = "OPEN"
	SessionClosed    SessionStatus = "CLOSED"
	SessionFinalized SessionStatus = "FINALIZED"
	SessionCancelled SessionStatus = "CANCELLED"
)

type Side string

const (
	SideA Side = "A"
	SideB Side = "B"
)

// DateLayout is the calendar date format sessions are keyed by.
const DateLayout = "2006-01-02"

type Club struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Season struct {
	ID             int64  `json:"id"`
	ClubID         int64  `json:"club_id"`
	Name           string `json:"name"`
	Format         Format `json:"format"`
	Weekday        int    `json:"weekday"`
	StartTimeLocal string `json:"start_time_local"`
	Timezone       string `json:"timezone"`
	IsActive       bool   `json:"is_active"`
}

type Session struct {
	ID          int64         `json:"id"`
	SeasonID    int64         `json:"season_id"`
	SessionDate string        `json:"session_date"`
	Status      SessionStatus `json:"status"`
	Location    *string       `json:"location,omitempty"`
	Address     *string       `json:"address,omitempty"`
}

// AcceptsGames reports whether new games may be recorded against the session.
func (s Session) AcceptsGames() bool {
	return s.Status == SessionOpen
}

type Game struct {
	ID        int64  `json:"id"`
	SessionID int64  `json:"session_id"`
	CourtID   int64  `json:"court_id"`
	StartTime string `json:"start_time"`
	ScoreA    int    `json:"score_a"`
	ScoreB    int    `json:"score_b"`
}

var startTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// StartedAt parses StartTime. Timestamps without an offset are read as local time.
func (g Game) StartedAt() (time.Time, bool) {
	for _, layout := range startTimeLayouts {
		if t, err := time.ParseInLocation(layout, g.StartTime, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

type GameParticipant struct {
	GameID      int64  `json:"game_id"`
	PlayerID    int64  `json:"player_id"`
	Side        Side   `json:"side"`
	DisplayName string `json:"display_name,omitempty"`
}

type Player struct {
	ID          int64   `json:"id"`
	ClubID      int64   `json:"club_id"`
	DisplayName string  `json:"display_name"`
	Email       *string `json:"email,omitempty"`
	IsActive    bool    `json:"is_active"`
}

type Court struct {
	ID       int64  `json:"id"`
	ClubID   int64  `json:"club_id"`
	Name     string `json:"name"`
	IsActive bool   `json:"is_active"`
}

type Profile struct {
	ID          int64   `json:"id"`
	Email       string  `json:"email"`
	FullName    *string `json:"full_name,omitempty"`
	DisplayName *string `json:"display_name,omitempty"`
	Role        string  `json:"role"`
	ClubRole    *string `json:"club_role,omitempty"`
	ClubID      *int64  `json:"club_id,omitempty"`
}

// Names returns the non-empty display and full names of the profile.
func (p Profile) Names() []string {
	return utils.NonBlank(p.DisplayName, p.FullName)
}

type LeaderboardRow struct {
	PlayerID       int64  `json:"player_id"`
	DisplayName    string `json:"display_name"`
	SeasonEloDelta int    `json:"season_elo_delta"`
	MatchesPlayed  int    `json:"matches_played"`
	MatchesWon     int    `json:"matches_won"`
	TotalPoints    int    `json:"total_points"`
	GlobalEloScore *int   `json:"global_elo_score,omitempty"`
}

// LeaderboardSnapshot is the latest ranked leaderboard of one season.
type LeaderboardSnapshot struct {
	Session *Session         `json:"session"`
	Rows    []LeaderboardRow `json:"rows"`
}

// WinnerSide returns the side with the higher score. Draws are rejected before
// a game is recorded, so equal scores never reach here in practice.
func WinnerSide(g Game) Side {
	if g.ScoreA > g.ScoreB {
		return SideA
	}
	return SideB
}
