package dashboard

import (
	"fmt"

	"github.com/AdamBeresnev/leagueos/internal/league"
)

// Graph is everything the dashboard derives its rows from. Any collection may
// be empty when its fetch failed; the aggregations degrade by omission.
type Graph struct {
	Clubs        []league.Club
	Seasons      []league.Season
	Sessions     []league.Session
	Games        []league.Game
	Participants map[int64][]league.GameParticipant
	Courts       []league.Court
}

type index struct {
	clubs    map[int64]league.Club
	seasons  map[int64]league.Season
	sessions map[int64]league.Session
	courts   map[int64]league.Court
}

func newIndex(g Graph) index {
	idx := index{
		clubs:    make(map[int64]league.Club, len(g.Clubs)),
		seasons:  make(map[int64]league.Season, len(g.Seasons)),
		sessions: make(map[int64]league.Session, len(g.Sessions)),
		courts:   make(map[int64]league.Court, len(g.Courts)),
	}
	for _, c := range g.Clubs {
		idx.clubs[c.ID] = c
	}
	for _, s := range g.Seasons {
		idx.seasons[s.ID] = s
	}
	for _, s := range g.Sessions {
		idx.sessions[s.ID] = s
	}
	for _, c := range g.Courts {
		idx.courts[c.ID] = c
	}
	return idx
}

// seasonOf resolves the season owning a game through its session.
func (idx index) seasonOf(game league.Game) (league.Season, bool) {
	session, ok := idx.sessions[game.SessionID]
	if !ok {
		return league.Season{}, false
	}
	season, ok := idx.seasons[session.SeasonID]
	return season, ok
}

func clubName(clubs map[int64]league.Club, clubID int64) string {
	if c, ok := clubs[clubID]; ok && c.Name != "" {
		return c.Name
	}
	return fmt.Sprintf("Club %d", clubID)
}
