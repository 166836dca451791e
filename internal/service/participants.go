package service

import (
	"context"
	"sync"

	"github.com/AdamBeresnev/leagueos/internal/constants"
	"github.com/AdamBeresnev/leagueos/internal/league"
	"golang.org/x/sync/errgroup"
)

// fetchParticipants loads the participants of every game concurrently. Games
// whose participants could not be fetched are reported in failed and left out
// of the map.
func fetchParticipants(ctx context.Context, api LeagueAPI, token string, clubID int64, games []league.Game) (byGame map[int64][]league.GameParticipant, failed []int64) {
	byGame = make(map[int64][]league.GameParticipant, len(games))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(constants.DashboardFetchLimit)
	for _, game := range games {
		game := game
		g.Go(func() error {
			parts, err := api.GameParticipants(gctx, token, clubID, game.ID)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed = append(failed, game.ID)
				return nil
			}
			byGame[game.ID] = parts
			return nil
		})
	}
	_ = g.Wait()
	return byGame, failed
}

// withDisplayNames fills missing participant names from the club roster.
func withDisplayNames(byGame map[int64][]league.GameParticipant, players []league.Player) {
	names := make(map[int64]string, len(players))
	for _, p := range players {
		names[p.ID] = p.DisplayName
	}
	for gameID, parts := range byGame {
		for i := range parts {
			if parts[i].DisplayName == "" {
				parts[i].DisplayName = names[parts[i].PlayerID]
			}
		}
		byGame[gameID] = parts
	}
}
