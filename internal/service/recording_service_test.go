package service

import (
	"context"
	"testing"
	"time"

	"github.com/AdamBeresnev/leagueos/internal/apiclient"
	"github.com/AdamBeresnev/leagueos/internal/config"
	"github.com/AdamBeresnev/leagueos/internal/journal"
	"github.com/AdamBeresnev/leagueos/internal/league"
	"github.com/AdamBeresnev/leagueos/internal/metrics"
	"github.com/AdamBeresnev/leagueos/internal/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testToken  = "tok"
	testClubID = int64(1)
)

func recordingFixture() *fakeAPI {
	api := newFakeAPI()
	api.seasons = []league.Season{
		{ID: 9, ClubID: testClubID, Name: "Winter", IsActive: false},
		{ID: 10, ClubID: testClubID, Name: "Spring", Format: league.FormatDoubles, IsActive: true},
	}
	api.sessions = []league.Session{
		{ID: 90, SeasonID: 9, SessionDate: "2024-01-06", Status: league.SessionFinalized},
		{ID: 100, SeasonID: 10, SessionDate: "2024-02-17", Status: league.SessionOpen},
	}
	return api
}

func newRecordingService(t *testing.T, api *fakeAPI, policy league.SessionPolicy) (*RecordingService, *store.JournalStore, *metrics.Metrics) {
	t.Helper()

	_, journalStore := setupJournal(t)
	m := metrics.New(prometheus.NewRegistry())
	cfg := &config.Config{Recording: config.RecordingConfig{SessionPolicy: string(policy)}}

	svc, err := NewRecordingService(api, journalStore, cfg, m, zerolog.Nop())
	require.NoError(t, err)
	return svc, journalStore, m
}

func validInput() RecordInput {
	return RecordInput{
		SeasonID:  10,
		StartTime: "19:07",
		CourtID:   3,
		ScoreA:    21,
		ScoreB:    17,
		SideA:     []int64{1, 2},
		SideB:     []int64{3, 4},
	}
}

func slotTimestamp(t *testing.T, date, hhmm string) string {
	t.Helper()
	ts, ok := league.CombineDateAndTime(date, hhmm)
	require.True(t, ok)
	return ts.UTC().Format(startTimeLayout)
}

func seedGame(api *fakeAPI, game league.Game, sideA, sideB [2]int64) {
	api.games = append(api.games, game)
	for _, id := range sideA {
		api.participants[game.ID] = append(api.participants[game.ID], league.GameParticipant{GameID: game.ID, PlayerID: id, Side: league.SideA})
	}
	for _, id := range sideB {
		api.participants[game.ID] = append(api.participants[game.ID], league.GameParticipant{GameID: game.ID, PlayerID: id, Side: league.SideB})
	}
}

func TestRecord_Success(t *testing.T) {
	api := recordingFixture()
	svc, journalStore, m := newRecordingService(t, api, league.PolicyStrict)
	ctx := context.Background()

	res, err := svc.Record(ctx, testToken, testClubID, validInput())
	require.NoError(t, err)

	assert.Equal(t, journal.OutcomeRecorded, res.Outcome)
	assert.Equal(t, "19:05", res.NormalizedTime)
	assert.Equal(t, slotTimestamp(t, "2024-02-17", "19:05"), res.StartTime)
	require.NotNil(t, res.Game)
	assert.Equal(t, int64(900), res.Game.ID)
	assert.Equal(t, league.SideA, res.Winner)
	assert.Nil(t, res.Validation)
	assert.Nil(t, res.Remediation)
	assert.Equal(t, int64(100), res.Context.Session.ID)

	require.Len(t, api.created, 1)
	assert.Equal(t, apiclient.NewGame{SessionID: 100, CourtID: 3, StartTime: res.StartTime, ScoreA: 21, ScoreB: 17}, api.created[0])
	assert.Equal(t, []apiclient.ParticipantInput{
		{PlayerID: 1, Side: league.SideA},
		{PlayerID: 2, Side: league.SideA},
		{PlayerID: 3, Side: league.SideB},
		{PlayerID: 4, Side: league.SideB},
	}, api.seated[900])

	attempts, err := journalStore.ListAttempts(ctx, testClubID, 10)
	require.NoError(t, err)
	require.Len(t, attempts, 1)
	assert.Equal(t, journal.OutcomeRecorded, attempts[0].Outcome)
	assert.Equal(t, int64(100), attempts[0].SessionID)
	assert.Equal(t, []int64{1, 2, 3, 4}, attempts[0].Players())
	require.NotNil(t, attempts[0].GameID)
	assert.Equal(t, int64(900), *attempts[0].GameID)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RecordAttempts.WithLabelValues("recorded")))
}

func TestRecord_ValidationFailures(t *testing.T) {
	testCases := []struct {
		name     string
		mutate   func(in *RecordInput)
		expected *league.ValidationError
	}{
		{"draw", func(in *RecordInput) { in.ScoreB = in.ScoreA }, league.ErrDraw},
		{"missing start time", func(in *RecordInput) { in.StartTime = "" }, league.ErrNoStartTime},
		{"missing player", func(in *RecordInput) { in.SideB[0] = 0 }, league.ErrMissingPlayers},
		{"duplicate player", func(in *RecordInput) { in.SideB[0] = 1 }, league.ErrDuplicatePlayers},
		{"empty side", func(in *RecordInput) { in.SideB = nil }, league.ErrMissingPlayers},
		{"third player on a side", func(in *RecordInput) { in.SideA = append(in.SideA, 9) }, league.ErrTooManyPlayers},
		{"missing court", func(in *RecordInput) { in.CourtID = 0 }, league.ErrNoCourt},
		{"unparseable start time", func(in *RecordInput) { in.StartTime = "7pm" }, league.ErrNoStartTime},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			api := recordingFixture()
			svc, journalStore, _ := newRecordingService(t, api, league.PolicyStrict)

			in := validInput()
			tc.mutate(&in)

			res, err := svc.Record(context.Background(), testToken, testClubID, in)
			require.NoError(t, err)
			assert.Equal(t, journal.OutcomeInvalid, res.Outcome)
			assert.Equal(t, tc.expected, res.Validation)
			assert.Empty(t, api.created)

			attempts, err := journalStore.ListAttempts(context.Background(), testClubID, 10)
			require.NoError(t, err)
			require.Len(t, attempts, 1)
			assert.Equal(t, tc.expected.Message, attempts[0].Message)
		})
	}
}

func TestRecord_NoWritableSession(t *testing.T) {
	api := recordingFixture()
	api.sessions = append(api.sessions, league.Session{ID: 101, SeasonID: 10, SessionDate: "2024-02-24", Status: league.SessionOpen})
	svc, _, _ := newRecordingService(t, api, league.PolicyStrict)

	res, err := svc.Record(context.Background(), testToken, testClubID, validInput())
	require.NoError(t, err)

	assert.Equal(t, journal.OutcomeNoSession, res.Outcome)
	assert.Equal(t, league.ErrNoSession, res.Validation)
	assert.Equal(t, league.MultipleOpenSessionsMessage, res.Context.Diagnostic)
	assert.Nil(t, res.Context.Session)
	assert.Empty(t, api.created)
}

func TestRecord_LatestPolicyNeverWritesToClosedSession(t *testing.T) {
	api := recordingFixture()
	api.sessions = []league.Session{{ID: 100, SeasonID: 10, SessionDate: "2024-02-17", Status: league.SessionClosed}}
	svc, _, _ := newRecordingService(t, api, league.PolicyLatest)

	res, err := svc.Record(context.Background(), testToken, testClubID, validInput())
	require.NoError(t, err)

	require.NotNil(t, res.Context.Session)
	assert.Equal(t, league.SessionClosed, res.Context.Session.Status)
	assert.Equal(t, journal.OutcomeNoSession, res.Outcome)
	assert.Empty(t, api.created)
}

func TestRecord_SlotConflict(t *testing.T) {
	api := recordingFixture()
	seedGame(api, league.Game{ID: 50, SessionID: 100, CourtID: 3, StartTime: slotTimestamp(t, "2024-02-17", "19:05"), ScoreA: 21, ScoreB: 10},
		[2]int64{5, 6}, [2]int64{7, 8})
	svc, _, _ := newRecordingService(t, api, league.PolicyStrict)

	res, err := svc.Record(context.Background(), testToken, testClubID, validInput())
	require.NoError(t, err)

	assert.Equal(t, journal.OutcomeSlotConflict, res.Outcome)
	assert.Equal(t, league.ErrSlotTaken, res.Validation)
	assert.Empty(t, api.created)
}

func TestRecord_SlotConflictInRecordingZone(t *testing.T) {
	testCases := []struct {
		name    string
		start   string
		outcome journal.Outcome
	}{
		{"same wall clock slot", "19:15", journal.OutcomeSlotConflict},
		{"utc clock of the existing game", "03:15", journal.OutcomeRecorded},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			api := recordingFixture()
			seedGame(api, league.Game{ID: 50, SessionID: 100, CourtID: 3, StartTime: "2024-02-18T03:15:00.000Z", ScoreA: 21, ScoreB: 10},
				[2]int64{5, 6}, [2]int64{7, 8})
			svc, _, _ := newRecordingService(t, api, league.PolicyStrict)
			svc.loc = time.FixedZone("PST", -8*60*60)

			in := validInput()
			in.StartTime = tc.start
			res, err := svc.Record(context.Background(), testToken, testClubID, in)
			require.NoError(t, err)

			assert.Equal(t, tc.outcome, res.Outcome)
			if tc.outcome == journal.OutcomeSlotConflict {
				assert.Equal(t, league.ErrSlotTaken, res.Validation)
				assert.Empty(t, api.created)
			}
		})
	}
}

func TestRecord_JournalsProvenance(t *testing.T) {
	api := recordingFixture()
	svc, journalStore, _ := newRecordingService(t, api, league.PolicyStrict)
	ctx := context.Background()

	in := validInput()
	in.RecordedBy = 42
	in.RequestID = "req-9"
	_, err := svc.Record(ctx, testToken, testClubID, in)
	require.NoError(t, err)
	_, err = svc.Record(ctx, testToken, testClubID, validInput())
	require.NoError(t, err)

	attempts, err := journalStore.ListSessionAttempts(ctx, testClubID, 100)
	require.NoError(t, err)
	require.Len(t, attempts, 2)
	require.NotNil(t, attempts[0].RecordedBy)
	assert.Equal(t, int64(42), *attempts[0].RecordedBy)
	assert.Equal(t, "req-9", attempts[0].RequestID)
	assert.Nil(t, attempts[1].RecordedBy)
	assert.Empty(t, attempts[1].RequestID)
}

func TestRecord_SoftDuplicateNeedsConfirmation(t *testing.T) {
	api := recordingFixture()
	seedGame(api, league.Game{ID: 50, SessionID: 100, CourtID: 4, StartTime: slotTimestamp(t, "2024-02-17", "18:30"), ScoreA: 17, ScoreB: 21},
		[2]int64{4, 3}, [2]int64{2, 1})
	svc, journalStore, _ := newRecordingService(t, api, league.PolicyStrict)
	ctx := context.Background()

	res, err := svc.Record(ctx, testToken, testClubID, validInput())
	require.NoError(t, err)
	assert.Equal(t, journal.OutcomeDuplicate, res.Outcome)
	assert.True(t, res.NeedsConfirmation)
	assert.Empty(t, api.created)

	in := validInput()
	in.Confirm = true
	res, err = svc.Record(ctx, testToken, testClubID, in)
	require.NoError(t, err)
	assert.Equal(t, journal.OutcomeRecorded, res.Outcome)
	assert.False(t, res.NeedsConfirmation)
	assert.Len(t, api.created, 1)

	counts, err := journalStore.CountByOutcome(ctx, testClubID)
	require.NoError(t, err)
	assert.Equal(t, map[journal.Outcome]int{journal.OutcomeDuplicate: 1, journal.OutcomeRecorded: 1}, counts)
}

func TestRecord_ServerRejections(t *testing.T) {
	testCases := []struct {
		name     string
		apiErr   *apiclient.APIError
		expected league.Remediation
	}{
		{
			name:     "conflict moves to next slot",
			apiErr:   &apiclient.APIError{Status: 409, Kind: league.ServerErrorConflict, Code: league.CodeGameConflict, Message: "taken"},
			expected: league.Remediation{Kind: league.ServerErrorConflict, Message: league.ConflictMessage, NextStartTime: "19:10"},
		},
		{
			name:     "invalid time",
			apiErr:   &apiclient.APIError{Status: 422, Kind: league.ServerErrorInvalidTime, Code: league.CodeInvalidGameTime},
			expected: league.Remediation{Kind: league.ServerErrorInvalidTime, Message: league.InvalidTimeMessage},
		},
		{
			name:     "immutable session",
			apiErr:   &apiclient.APIError{Status: 409, Kind: league.ServerErrorImmutable, Code: league.CodeSessionImmutable},
			expected: league.Remediation{Kind: league.ServerErrorImmutable, Message: league.ImmutableMessage, Reselect: true},
		},
		{
			name:     "generic keeps server text",
			apiErr:   &apiclient.APIError{Status: 400, Kind: league.ServerErrorGeneric, Message: "Court is inactive"},
			expected: league.Remediation{Kind: league.ServerErrorGeneric, Message: "Court is inactive"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			api := recordingFixture()
			api.createError = tc.apiErr
			svc, journalStore, m := newRecordingService(t, api, league.PolicyStrict)

			res, err := svc.Record(context.Background(), testToken, testClubID, validInput())
			require.NoError(t, err)

			assert.Equal(t, journal.OutcomeRejected, res.Outcome)
			require.NotNil(t, res.Remediation)
			assert.Equal(t, tc.expected, *res.Remediation)
			assert.Nil(t, res.Game)
			assert.Empty(t, api.seated)

			attempts, err := journalStore.ListAttempts(context.Background(), testClubID, 10)
			require.NoError(t, err)
			require.Len(t, attempts, 1)
			assert.Equal(t, tc.apiErr.Kind.String(), attempts[0].ErrorKind)
			assert.Equal(t, 1.0, testutil.ToFloat64(m.ServerRejections.WithLabelValues(tc.apiErr.Kind.String())))
		})
	}
}

func TestRecord_TransportFailure(t *testing.T) {
	api := recordingFixture()
	api.createError = errUpstream
	svc, journalStore, _ := newRecordingService(t, api, league.PolicyStrict)

	res, err := svc.Record(context.Background(), testToken, testClubID, validInput())
	assert.ErrorIs(t, err, errUpstream)
	assert.Nil(t, res)

	attempts, err := journalStore.ListAttempts(context.Background(), testClubID, 10)
	require.NoError(t, err)
	require.Len(t, attempts, 1)
	assert.Equal(t, journal.OutcomeFailed, attempts[0].Outcome)
}

func TestRecord_ParticipantFailure(t *testing.T) {
	api := recordingFixture()
	api.fail["set_participants"] = errUpstream
	svc, _, _ := newRecordingService(t, api, league.PolicyStrict)

	_, err := svc.Record(context.Background(), testToken, testClubID, validInput())
	assert.ErrorIs(t, err, errUpstream)
	assert.Len(t, api.created, 1)
}

func TestRecord_ExistingGamesUnavailable(t *testing.T) {
	api := recordingFixture()
	api.fail["games"] = errUpstream
	svc, _, m := newRecordingService(t, api, league.PolicyStrict)

	res, err := svc.Record(context.Background(), testToken, testClubID, validInput())
	require.NoError(t, err)
	assert.Equal(t, journal.OutcomeRecorded, res.Outcome)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DegradedFetches.WithLabelValues("session_games")))
}

func TestResolve(t *testing.T) {
	ctx := context.Background()

	t.Run("explicit season", func(t *testing.T) {
		svc, _, _ := newRecordingService(t, recordingFixture(), league.PolicyStrict)
		rc, err := svc.Resolve(ctx, testToken, testClubID, 10)
		require.NoError(t, err)
		assert.True(t, rc.Writable())
		assert.Equal(t, int64(100), rc.Session.ID)
	})

	t.Run("first active season", func(t *testing.T) {
		svc, _, _ := newRecordingService(t, recordingFixture(), league.PolicyStrict)
		rc, err := svc.Resolve(ctx, testToken, testClubID, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(10), rc.SeasonID)
		assert.True(t, rc.Writable())
	})

	t.Run("no active season", func(t *testing.T) {
		api := recordingFixture()
		api.seasons = api.seasons[:1]
		svc, _, _ := newRecordingService(t, api, league.PolicyStrict)
		rc, err := svc.Resolve(ctx, testToken, testClubID, 0)
		require.NoError(t, err)
		assert.Equal(t, NoActiveSeasonMessage, rc.Diagnostic)
		assert.False(t, rc.Writable())
	})

	t.Run("sessions unavailable", func(t *testing.T) {
		api := recordingFixture()
		api.fail["sessions"] = errUpstream
		svc, _, _ := newRecordingService(t, api, league.PolicyStrict)
		_, err := svc.Resolve(ctx, testToken, testClubID, 10)
		assert.ErrorIs(t, err, errUpstream)
	})
}

func TestNewRecordingService_BadTimezone(t *testing.T) {
	cfg := &config.Config{Recording: config.RecordingConfig{Timezone: "Nowhere/Special"}}
	_, err := NewRecordingService(newFakeAPI(), nil, cfg, nil, zerolog.Nop())
	assert.Error(t, err)
}

func TestStartTimeLayout(t *testing.T) {
	ts := time.Date(2024, 2, 17, 19, 5, 0, 0, time.UTC)
	assert.Equal(t, "2024-02-17T19:05:00.000Z", ts.Format(startTimeLayout))
}
