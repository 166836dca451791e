package dashboard

import (
	"strings"

	"github.com/AdamBeresnev/leagueos/internal/league"
	"github.com/AdamBeresnev/leagueos/internal/utils"
)

// DefaultElo is shown for players the leaderboard has no global score for.
const DefaultElo = 1000

// SeasonSnapshot is the latest leaderboard of one season.
type SeasonSnapshot struct {
	Season league.Season
	Rows   []league.LeaderboardRow
}

type EloHistoryRow struct {
	SeasonID int64  `json:"season_id"`
	Season   string `json:"season"`
	Club     string `json:"club"`
	Elo      int    `json:"elo"`
	Change   int    `json:"change"`
}

// EloHistory returns one row per season the player appears in. Rows are
// matched by player id, and by display name only when no id matches since
// names are not unique within a club.
func EloHistory(snapshots []SeasonSnapshot, clubs []league.Club, playerID int64, names []string) []EloHistoryRow {
	clubByID := make(map[int64]league.Club, len(clubs))
	for _, c := range clubs {
		clubByID[c.ID] = c
	}

	lowered := make([]string, 0, len(names))
	for _, n := range names {
		if n = strings.ToLower(strings.TrimSpace(n)); n != "" {
			lowered = append(lowered, n)
		}
	}

	var rows []EloHistoryRow
	for _, snap := range snapshots {
		row, ok := findLeaderboardRow(snap.Rows, playerID, lowered)
		if !ok {
			continue
		}
		elo := utils.OrDefault(row.GlobalEloScore, DefaultElo)
		rows = append(rows, EloHistoryRow{
			SeasonID: snap.Season.ID,
			Season:   snap.Season.Name,
			Club:     clubName(clubByID, snap.Season.ClubID),
			Elo:      elo,
			Change:   row.SeasonEloDelta,
		})
	}
	return rows
}

func findLeaderboardRow(rows []league.LeaderboardRow, playerID int64, names []string) (league.LeaderboardRow, bool) {
	if playerID != 0 {
		for _, r := range rows {
			if r.PlayerID == playerID {
				return r, true
			}
		}
	}
	for _, r := range rows {
		name := strings.ToLower(r.DisplayName)
		for _, n := range names {
			if n == name {
				return r, true
			}
		}
	}
	return league.LeaderboardRow{}, false
}
