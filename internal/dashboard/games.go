package dashboard

import (
	"fmt"
	"sort"
	"time"

	"github.com/AdamBeresnev/leagueos/internal/league"
)

type GameRow struct {
	ID        int64    `json:"id"`
	SessionID int64    `json:"session_id"`
	Date      string   `json:"date"`
	Season    string   `json:"season"`
	Partner   string   `json:"partner"`
	Outcome   Result   `json:"outcome"`
	StartTime string   `json:"start_time"`
	CourtID   int64    `json:"court_id"`
	CourtName string   `json:"court_name"`
	TeamA     []string `json:"team_a"`
	TeamB     []string `json:"team_b"`
	TeamAIDs  []int64  `json:"team_a_ids"`
	TeamBIDs  []int64  `json:"team_b_ids"`
	ScoreA    int      `json:"score_a"`
	ScoreB    int      `json:"score_b"`
}

// GameRows builds the player's game history, newest first.
func GameRows(g Graph, playerID int64) []GameRow {
	idx := newIndex(g)
	games := append([]league.Game(nil), PlayerGames(g.Games, g.Participants, playerID)...)
	sort.SliceStable(games, func(i, j int) bool {
		return games[i].StartTime > games[j].StartTime
	})

	rows := make([]GameRow, 0, len(games))
	for _, game := range games {
		participants := g.Participants[game.ID]
		outcome := Outcome(game, participants, playerID)

		row := GameRow{
			ID:        game.ID,
			SessionID: game.SessionID,
			Partner:   PartnerName(participants, outcome.Side, playerID),
			Outcome:   outcome.Result,
			StartTime: game.StartTime,
			CourtID:   game.CourtID,
			CourtName: fmt.Sprintf("Court %d", game.CourtID),
			ScoreA:    game.ScoreA,
			ScoreB:    game.ScoreB,
			TeamA:     []string{},
			TeamB:     []string{},
			TeamAIDs:  []int64{},
			TeamBIDs:  []int64{},
		}
		if c, ok := idx.courts[game.CourtID]; ok {
			row.CourtName = c.Name
		}

		session, hasSession := idx.sessions[game.SessionID]
		if hasSession {
			row.Date = monthDay(session.SessionDate)
			row.Season = fmt.Sprintf("Season %d", session.SeasonID)
			if season, ok := idx.seasons[session.SeasonID]; ok {
				row.Season = season.Name
			}
		} else {
			row.Date = game.StartTime
			if t, ok := game.StartedAt(); ok {
				row.Date = t.Format("Jan 2")
			}
			row.Season = "Season -"
		}

		for _, p := range participants {
			switch p.Side {
			case league.SideA:
				row.TeamA = append(row.TeamA, p.DisplayName)
				row.TeamAIDs = append(row.TeamAIDs, p.PlayerID)
			case league.SideB:
				row.TeamB = append(row.TeamB, p.DisplayName)
				row.TeamBIDs = append(row.TeamBIDs, p.PlayerID)
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// monthDay renders a session date as "Feb 17", or returns it unchanged when it
// does not parse.
func monthDay(date string) string {
	t, err := time.Parse(league.DateLayout, date)
	if err != nil {
		return date
	}
	return t.Format("Jan 2")
}
