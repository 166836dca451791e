package dashboard

import (
	"fmt"
	"sort"
	"time"

	"github.com/AdamBeresnev/leagueos/internal/league"
	"github.com/AdamBeresnev/leagueos/internal/utils"
)

type UpcomingRow struct {
	ID       int64                `json:"id"`
	SeasonID int64                `json:"season_id"`
	Date     string               `json:"date"`
	Season   string               `json:"season"`
	Club     string               `json:"club"`
	Status   league.SessionStatus `json:"status"`
	Location string               `json:"location"`
	Address  string               `json:"address"`
}

// UpcomingSessions lists open sessions and upcoming sessions dated today or
// later, earliest first. fallbackClubID names the club of sessions whose
// season is unknown.
func UpcomingSessions(sessions []league.Session, seasons []league.Season, clubs []league.Club, fallbackClubID int64, now time.Time) []UpcomingRow {
	today := now.Format(league.DateLayout)

	var kept []league.Session
	for _, s := range sessions {
		switch s.Status {
		case league.SessionOpen:
			kept = append(kept, s)
		case league.SessionUpcoming:
			if _, err := time.Parse(league.DateLayout, s.SessionDate); err != nil {
				continue
			}
			if s.SessionDate >= today {
				kept = append(kept, s)
			}
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].SessionDate < kept[j].SessionDate
	})

	idx := newIndex(Graph{Clubs: clubs, Seasons: seasons})
	rows := make([]UpcomingRow, 0, len(kept))
	for _, s := range kept {
		row := UpcomingRow{
			ID:       s.ID,
			SeasonID: s.SeasonID,
			Date:     monthDay(s.SessionDate),
			Season:   fmt.Sprintf("Season %d", s.SeasonID),
			Club:     clubName(idx.clubs, fallbackClubID),
			Status:   s.Status,
			Location: utils.OrZero(s.Location),
			Address:  utils.OrZero(s.Address),
		}
		if season, ok := idx.seasons[s.SeasonID]; ok {
			row.Season = season.Name
			row.Club = clubName(idx.clubs, season.ClubID)
		}
		rows = append(rows, row)
	}
	return rows
}
