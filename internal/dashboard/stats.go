package dashboard

import (
	"math"

	"github.com/AdamBeresnev/leagueos/internal/league"
)

type Result string

const (
	Win  Result = "W"
	Loss Result = "L"
)

// GameOutcome is a game seen from one player. Side is empty when the player
// did not take part, in which case the outcome is read from side A.
type GameOutcome struct {
	Result Result
	Side   league.Side
}

func Outcome(game league.Game, participants []league.GameParticipant, playerID int64) GameOutcome {
	winner := league.WinnerSide(game)

	var side league.Side
	if playerID != 0 {
		for _, p := range participants {
			if p.PlayerID == playerID {
				side = p.Side
				break
			}
		}
	}

	viewedFrom := side
	if viewedFrom == "" {
		viewedFrom = league.SideA
	}
	result := Loss
	if viewedFrom == winner {
		result = Win
	}
	return GameOutcome{Result: result, Side: side}
}

// PartnerName returns the teammate of the player, or the first name listed on
// side A when no teammate can be found.
func PartnerName(participants []league.GameParticipant, side league.Side, playerID int64) string {
	if len(participants) == 0 {
		return "-"
	}
	if side != "" && playerID != 0 {
		for _, p := range participants {
			if p.Side == side && p.PlayerID != playerID {
				return p.DisplayName
			}
		}
	}
	for _, p := range participants {
		if p.Side == league.SideA && p.DisplayName != "" {
			return p.DisplayName
		}
	}
	if participants[0].DisplayName != "" {
		return participants[0].DisplayName
	}
	return "-"
}

// PlayerGames keeps the games the player took part in. With no bound player
// every game is kept.
func PlayerGames(games []league.Game, participants map[int64][]league.GameParticipant, playerID int64) []league.Game {
	if playerID == 0 {
		return games
	}
	var out []league.Game
	for _, g := range games {
		for _, p := range participants[g.ID] {
			if p.PlayerID == playerID {
				out = append(out, g)
				break
			}
		}
	}
	return out
}

type StatSummary struct {
	Singles       int     `json:"singles"`
	Doubles       int     `json:"doubles"`
	Mixed         int     `json:"mixed"`
	PointsFor     int     `json:"points_for"`
	PointsAgainst int     `json:"points_against"`
	Wins          int     `json:"wins"`
	Games         int     `json:"games"`
	WinPct        float64 `json:"win_pct"`
}

// Summarize folds the player's games into profile statistics.
func Summarize(g Graph, playerID int64) StatSummary {
	idx := newIndex(g)
	games := PlayerGames(g.Games, g.Participants, playerID)

	var s StatSummary
	for _, game := range games {
		if season, ok := idx.seasonOf(game); ok {
			switch season.Format {
			case league.FormatSingles:
				s.Singles++
			case league.FormatDoubles:
				s.Doubles++
			case league.FormatMixedDoubles:
				s.Mixed++
			}
		}

		outcome := Outcome(game, g.Participants[game.ID], playerID)
		if outcome.Side == league.SideB {
			s.PointsFor += game.ScoreB
			s.PointsAgainst += game.ScoreA
		} else {
			s.PointsFor += game.ScoreA
			s.PointsAgainst += game.ScoreB
		}
		if outcome.Result == Win {
			s.Wins++
		}
	}

	s.Games = len(games)
	s.WinPct = WinPercentage(s.Wins, s.Games)
	return s
}

// WinPercentage is rounded to one decimal and 0 for a player with no games.
func WinPercentage(wins, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(wins)/float64(total)*1000) / 10
}
