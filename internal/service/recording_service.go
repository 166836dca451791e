package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/AdamBeresnev/leagueos/internal/apiclient"
	"github.com/AdamBeresnev/leagueos/internal/config"
	"github.com/AdamBeresnev/leagueos/internal/constants"
	"github.com/AdamBeresnev/leagueos/internal/journal"
	"github.com/AdamBeresnev/leagueos/internal/league"
	"github.com/AdamBeresnev/leagueos/internal/metrics"
	"github.com/AdamBeresnev/leagueos/internal/store"
	"github.com/rs/zerolog"
)

// NoActiveSeasonMessage is the diagnostic for a club without an active season.
const NoActiveSeasonMessage = "No active season is available for this club."

// startTimeLayout matches the UTC timestamps the league API stores.
const startTimeLayout = "2006-01-02T15:04:05.000Z"

type RecordingService struct {
	api     LeagueAPI
	journal *store.JournalStore
	policy  league.SessionPolicy
	loc     *time.Location
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

func NewRecordingService(api LeagueAPI, journal *store.JournalStore, cfg *config.Config, m *metrics.Metrics, logger zerolog.Logger) (*RecordingService, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	return &RecordingService{
		api:     api,
		journal: journal,
		policy:  cfg.SessionPolicy(),
		loc:     loc,
		metrics: m,
		logger:  logger.With().Str("component", "recording").Logger(),
	}, nil
}

// Resolve finds the session games are recorded against. With no season given
// the club's first active season is used.
func (s *RecordingService) Resolve(ctx context.Context, token string, clubID, seasonID int64) (league.RecordingContext, error) {
	rc := league.NewRecordingContext(clubID)

	if seasonID == 0 {
		active := true
		seasons, err := s.api.Seasons(ctx, token, clubID, &active)
		if err != nil {
			return rc, fmt.Errorf("failed to list seasons: %w", err)
		}
		open := league.ActiveSeasons(seasons)
		if len(open) == 0 {
			rc.Diagnostic = NoActiveSeasonMessage
			return rc, nil
		}
		seasonID = open[0].ID
	}
	rc = rc.WithSeason(seasonID)

	sessions, err := s.api.Sessions(ctx, token, clubID, seasonID)
	if err != nil {
		return rc, fmt.Errorf("failed to list sessions: %w", err)
	}
	return rc.WithSessions(sessions, s.policy), nil
}

type RecordInput struct {
	SeasonID  int64    `json:"season_id"`
	StartTime string   `json:"start_time"`
	CourtID   int64    `json:"court_id"`
	ScoreA    int      `json:"score_a"`
	ScoreB    int      `json:"score_b"`
	SideA     []int64 `json:"side_a"`
	SideB     []int64 `json:"side_b"`
	// Confirm records the game even when it looks like a duplicate.
	Confirm bool `json:"confirm"`

	// RecordedBy and RequestID are journaled with the attempt.
	RecordedBy int64  `json:"-"`
	RequestID  string `json:"-"`
}

// RecordResult describes how a submission ended. Validation, NeedsConfirmation
// and Remediation are mutually exclusive; none of them is set once the game
// has been recorded.
type RecordResult struct {
	Outcome           journal.Outcome         `json:"outcome"`
	Context           league.RecordingContext `json:"context"`
	NormalizedTime    string                  `json:"normalized_time"`
	StartTime         string                  `json:"start_time,omitempty"`
	Game              *league.Game            `json:"game,omitempty"`
	Winner            league.Side             `json:"winner,omitempty"`
	Validation        *league.ValidationError `json:"validation,omitempty"`
	NeedsConfirmation bool                    `json:"needs_confirmation,omitempty"`
	Remediation       *league.Remediation     `json:"remediation,omitempty"`
}

func (s *RecordingService) Record(ctx context.Context, token string, clubID int64, in RecordInput) (*RecordResult, error) {
	normalized := league.FloorToFiveMinutes(in.StartTime)
	attempt := &journal.Attempt{
		ClubID:    clubID,
		SeasonID:  in.SeasonID,
		CourtID:   in.CourtID,
		ScoreA:    in.ScoreA,
		ScoreB:    in.ScoreB,
		PlayerIDs: journal.JoinIDs(append(slices.Clone(in.SideA), in.SideB...)),
		RequestID: in.RequestID,
	}
	if in.RecordedBy != 0 {
		attempt.RecordedBy = &in.RecordedBy
	}

	rc, err := s.Resolve(ctx, token, clubID, in.SeasonID)
	if err != nil {
		s.finish(ctx, attempt, journal.OutcomeFailed, err.Error())
		return nil, err
	}
	attempt.SeasonID = rc.SeasonID

	result := &RecordResult{Context: rc, NormalizedTime: normalized}

	sub := league.Submission{
		StartTime: normalized,
		CourtID:   in.CourtID,
		ScoreA:    in.ScoreA,
		ScoreB:    in.ScoreB,
	}
	if rc.Writable() {
		sub.SessionID = rc.Session.ID
		attempt.SessionID = rc.Session.ID
	}
	if sub.SideAPlayerIDs, err = league.PlayerPair(in.SideA); err != nil {
		return s.rejectInvalid(ctx, attempt, result, err), nil
	}
	if sub.SideBPlayerIDs, err = league.PlayerPair(in.SideB); err != nil {
		return s.rejectInvalid(ctx, attempt, result, err), nil
	}

	if err := league.ValidateSubmission(sub); err != nil {
		return s.rejectInvalid(ctx, attempt, result, err), nil
	}

	start, ok := league.CombineDateAndTimeIn(rc.Session.SessionDate, normalized, s.loc)
	if !ok {
		return s.rejectInvalid(ctx, attempt, result, league.ErrNoStartTime), nil
	}
	result.StartTime = start.UTC().Format(startTimeLayout)
	attempt.StartTime = result.StartTime

	existing := s.existingGames(ctx, token, clubID, sub.SessionID)
	if league.HasSlotConflictIn(sub, existing, s.loc) {
		result.Outcome = journal.OutcomeSlotConflict
		result.Validation = league.ErrSlotTaken
		s.finish(ctx, attempt, result.Outcome, league.ErrSlotTaken.Message)
		return result, nil
	}
	if !in.Confirm && league.IsSoftDuplicate(sub, existing) {
		result.Outcome = journal.OutcomeDuplicate
		result.NeedsConfirmation = true
		s.finish(ctx, attempt, result.Outcome, "")
		return result, nil
	}

	game, err := s.api.CreateGame(ctx, token, clubID, apiclient.NewGame{
		SessionID: sub.SessionID,
		CourtID:   sub.CourtID,
		StartTime: result.StartTime,
		ScoreA:    sub.ScoreA,
		ScoreB:    sub.ScoreB,
	})
	if err != nil {
		apiErr, ok := apiclient.AsAPIError(err)
		if !ok {
			s.finish(ctx, attempt, journal.OutcomeFailed, err.Error())
			return nil, fmt.Errorf("failed to create game: %w", err)
		}
		remediation := league.Remediate(apiErr.Kind, apiErr.Message, normalized)
		result.Outcome = journal.OutcomeRejected
		result.Remediation = &remediation
		attempt.ErrorKind = apiErr.Kind.String()
		if s.metrics != nil {
			s.metrics.ServerRejections.WithLabelValues(apiErr.Kind.String()).Inc()
		}
		s.finish(ctx, attempt, result.Outcome, remediation.Message)
		return result, nil
	}
	attempt.GameID = &game.ID

	if _, err := s.api.SetGameParticipants(ctx, token, clubID, game.ID, apiclient.Participants(sub.Participants())); err != nil {
		s.finish(ctx, attempt, journal.OutcomeFailed, err.Error())
		return nil, fmt.Errorf("failed to set participants for game %d: %w", game.ID, err)
	}

	result.Outcome = journal.OutcomeRecorded
	result.Game = game
	result.Winner = league.WinnerSide(*game)
	s.finish(ctx, attempt, result.Outcome, "")

	s.logger.Info().
		Int64("club_id", clubID).
		Int64("session_id", sub.SessionID).
		Int64("game_id", game.ID).
		Str("start_time", result.StartTime).
		Msg("game recorded")
	return result, nil
}

func (s *RecordingService) rejectInvalid(ctx context.Context, attempt *journal.Attempt, result *RecordResult, err error) *RecordResult {
	var ve *league.ValidationError
	if !errors.As(err, &ve) {
		ve = &league.ValidationError{Message: err.Error()}
	}
	result.Validation = ve
	result.Outcome = journal.OutcomeInvalid
	if errors.Is(err, league.ErrNoSession) {
		result.Outcome = journal.OutcomeNoSession
	}
	s.finish(ctx, attempt, result.Outcome, ve.Message)
	return result
}

// existingGames loads the session's games for the local duplicate checks. The
// server still rejects real conflicts, so a failed fetch only skips the checks.
func (s *RecordingService) existingGames(ctx context.Context, token string, clubID, sessionID int64) []league.RecordedGame {
	games, err := s.api.Games(ctx, token, clubID, sessionID)
	if err != nil {
		s.logger.Warn().Err(err).Int64("session_id", sessionID).Msg("skipping duplicate checks, games unavailable")
		s.degraded("session_games")
		return nil
	}

	byGame, failed := fetchParticipants(ctx, s.api, token, clubID, games)
	if len(failed) > 0 {
		s.logger.Warn().Ints64("game_ids", failed).Msg("participants unavailable for some games")
		s.degraded("participants")
	}
	return league.RecordedGames(games, byGame)
}

func (s *RecordingService) degraded(resource string) {
	if s.metrics != nil {
		s.metrics.DegradedFetches.WithLabelValues(resource).Inc()
	}
}

// finish journals the attempt. The journal is an audit trail, so a write
// failure is logged and does not change the result.
func (s *RecordingService) finish(ctx context.Context, attempt *journal.Attempt, outcome journal.Outcome, message string) {
	attempt.Outcome = outcome
	attempt.Message = message
	if s.metrics != nil {
		s.metrics.RecordAttempts.WithLabelValues(string(outcome)).Inc()
	}
	if s.journal == nil {
		return
	}
	// Journal even when the caller has gone away.
	jctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), constants.DatabaseTimeout)
	defer cancel()
	if err := s.journal.RecordAttempt(jctx, attempt); err != nil {
		s.logger.Error().Err(err).Str("outcome", string(outcome)).Msg("failed to journal recording attempt")
	}
}
