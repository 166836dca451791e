package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/AdamBeresnev/leagueos/internal/apiclient"
	"github.com/AdamBeresnev/leagueos/internal/constants"
	"github.com/AdamBeresnev/leagueos/internal/dashboard"
	"github.com/AdamBeresnev/leagueos/internal/league"
	"github.com/AdamBeresnev/leagueos/internal/metrics"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type DashboardService struct {
	api     LeagueAPI
	metrics *metrics.Metrics
	logger  zerolog.Logger
	now     func() time.Time
}

func NewDashboardService(api LeagueAPI, m *metrics.Metrics, logger zerolog.Logger) *DashboardService {
	return &DashboardService{
		api:     api,
		metrics: m,
		logger:  logger.With().Str("component", "dashboard").Logger(),
		now:     time.Now,
	}
}

type Dashboard struct {
	Profile    *league.Profile           `json:"profile,omitempty"`
	PlayerID   int64                     `json:"player_id"`
	Stats      dashboard.StatSummary     `json:"stats"`
	Games      []dashboard.GameRow       `json:"games"`
	EloHistory []dashboard.EloHistoryRow `json:"elo_history"`
	Upcoming   []dashboard.UpcomingRow   `json:"upcoming"`
	// Degraded names the collections that could not be fetched and are empty.
	Degraded []string `json:"degraded,omitempty"`
}

// degradation collects the names of optional fetches that failed.
type degradation struct {
	mu    sync.Mutex
	names map[string]struct{}
}

func (d *degradation) add(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.names == nil {
		d.names = make(map[string]struct{})
	}
	d.names[name] = struct{}{}
}

func (d *degradation) list() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, 0, len(d.names))
	for name := range d.names {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Load gathers the club's league graph and folds it into dashboard rows for
// one player. Seasons, sessions and games are required; every other
// collection is optional and comes back empty when its fetch fails. With
// playerID 0 the player is matched from the signed-in profile.
func (s *DashboardService) Load(ctx context.Context, token string, clubID, playerID int64) (*Dashboard, error) {
	var (
		graph   = dashboard.Graph{Participants: map[int64][]league.GameParticipant{}}
		active  []league.Player
		retired []league.Player
		profile *league.Profile
		failed  degradation
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		seasons, err := s.api.Seasons(gctx, token, clubID, nil)
		if err != nil {
			return fmt.Errorf("failed to list seasons: %w", err)
		}
		graph.Seasons = seasons
		return nil
	})
	g.Go(func() error {
		sessions, err := s.api.Sessions(gctx, token, clubID, 0)
		if err != nil {
			return fmt.Errorf("failed to list sessions: %w", err)
		}
		graph.Sessions = sessions
		return nil
	})
	g.Go(func() error {
		games, err := s.api.Games(gctx, token, clubID, 0)
		if err != nil {
			return fmt.Errorf("failed to list games: %w", err)
		}
		graph.Games = games
		return nil
	})
	g.Go(func() error {
		active = optional(s, &failed, "players", func() ([]league.Player, error) {
			return s.api.Players(gctx, token, clubID, true)
		})
		return nil
	})
	g.Go(func() error {
		retired = optional(s, &failed, "inactive_players", func() ([]league.Player, error) {
			return s.api.Players(gctx, token, clubID, false)
		})
		return nil
	})
	g.Go(func() error {
		graph.Courts = optional(s, &failed, "courts", func() ([]league.Court, error) {
			return s.api.Courts(gctx, token, clubID)
		})
		return nil
	})
	g.Go(func() error {
		graph.Clubs = optional(s, &failed, "clubs", func() ([]league.Club, error) {
			return s.api.ProfileClubs(gctx, token)
		})
		return nil
	})
	g.Go(func() error {
		profile = optional(s, &failed, "profile", func() (*league.Profile, error) {
			return s.api.Me(gctx, token)
		})
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	players := dashboard.MergePlayers(active, retired)
	fromProfile := playerID == 0
	if fromProfile {
		playerID = dashboard.FindUserPlayerID(profile, players)
	}

	participants, missing := fetchParticipants(ctx, s.api, token, clubID, graph.Games)
	if len(missing) > 0 {
		s.logger.Warn().Ints64("game_ids", missing).Msg("participants unavailable for some games")
		s.degrade(&failed, "participants")
	}
	withDisplayNames(participants, players)
	graph.Participants = participants

	snapshots := s.snapshots(ctx, token, clubID, graph.Seasons, &failed)

	// Leaderboard rows fall back to name matching, using the profile's names
	// only when the player was bound from that profile.
	var names []string
	for _, p := range players {
		if p.ID == playerID && playerID != 0 {
			names = append(names, p.DisplayName)
		}
	}
	if fromProfile && profile != nil {
		names = append(names, profile.Names()...)
	}

	return &Dashboard{
		Profile:    profile,
		PlayerID:   playerID,
		Stats:      dashboard.Summarize(graph, playerID),
		Games:      dashboard.GameRows(graph, playerID),
		EloHistory: dashboard.EloHistory(snapshots, graph.Clubs, playerID, names),
		Upcoming:   dashboard.UpcomingSessions(graph.Sessions, graph.Seasons, graph.Clubs, clubID, s.now()),
		Degraded:   failed.list(),
	}, nil
}

// snapshots reads the latest leaderboard of every season, in season order.
func (s *DashboardService) snapshots(ctx context.Context, token string, clubID int64, seasons []league.Season, failed *degradation) []dashboard.SeasonSnapshot {
	out := make([]*dashboard.SeasonSnapshot, len(seasons))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(constants.DashboardFetchLimit)
	for i, season := range seasons {
		i, season := i, season
		g.Go(func() error {
			snap, err := s.api.SeasonLeaderboardSnapshot(gctx, token, clubID, season.ID)
			if apiclient.IsNotFound(err) {
				// No snapshot has been published for the season yet.
				return nil
			}
			if err != nil {
				s.logger.Warn().Err(err).Int64("season_id", season.ID).Msg("leaderboard snapshot unavailable")
				s.degrade(failed, "leaderboard")
				return nil
			}
			out[i] = &dashboard.SeasonSnapshot{Season: season, Rows: snap.Rows}
			return nil
		})
	}
	_ = g.Wait()

	var snapshots []dashboard.SeasonSnapshot
	for _, snap := range out {
		if snap != nil {
			snapshots = append(snapshots, *snap)
		}
	}
	return snapshots
}

func (s *DashboardService) degrade(failed *degradation, resource string) {
	failed.add(resource)
	if s.metrics != nil {
		s.metrics.DegradedFetches.WithLabelValues(resource).Inc()
	}
}

func optional[T any](s *DashboardService, failed *degradation, resource string, fetch func() (T, error)) T {
	v, err := fetch()
	if err != nil {
		s.logger.Warn().Err(err).Str("resource", resource).Msg("optional dashboard fetch failed")
		s.degrade(failed, resource)
		var zero T
		return zero
	}
	return v
}
