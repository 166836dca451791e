package dashboard

import (
	"sort"
	"strings"

	"github.com/AdamBeresnev/leagueos/internal/league"
	"github.com/AdamBeresnev/leagueos/internal/utils"
)

// MergePlayers joins the active and inactive rosters. Later lists win on
// duplicate ids; the result is ordered by display name.
func MergePlayers(lists ...[]league.Player) []league.Player {
	byID := make(map[int64]league.Player)
	for _, list := range lists {
		for _, p := range list {
			byID[p.ID] = p
		}
	}

	merged := make([]league.Player, 0, len(byID))
	for _, p := range byID {
		merged = append(merged, p)
	}
	sort.Slice(merged, func(i, j int) bool {
		a, b := strings.ToLower(merged[i].DisplayName), strings.ToLower(merged[j].DisplayName)
		if a != b {
			return a < b
		}
		return merged[i].ID < merged[j].ID
	})
	return merged
}

// CountUniquePlayers counts the distinct players across the given games.
func CountUniquePlayers(games []league.Game, participantsByGame map[int64][]league.GameParticipant) int {
	seen := make(map[int64]struct{})
	for _, g := range games {
		for _, p := range participantsByGame[g.ID] {
			seen[p.PlayerID] = struct{}{}
		}
	}
	return len(seen)
}

// FindUserPlayerID binds a signed-in profile to a club player, by email first
// and then by display or full name. It returns 0 when nothing matches.
func FindUserPlayerID(profile *league.Profile, players []league.Player) int64 {
	if profile == nil {
		return 0
	}

	if email := strings.ToLower(profile.Email); email != "" {
		for _, p := range players {
			if strings.ToLower(utils.OrZero(p.Email)) == email {
				return p.ID
			}
		}
	}

	var names []string
	for _, n := range profile.Names() {
		names = append(names, strings.ToLower(strings.TrimSpace(n)))
	}
	for _, p := range players {
		name := strings.ToLower(strings.TrimSpace(p.DisplayName))
		for _, n := range names {
			if n == name {
				return p.ID
			}
		}
	}
	return 0
}
