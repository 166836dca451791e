package league

import (
	"slices"
	"time"
)

// ValidationError is a submission problem the user can fix before anything is
// sent to the API.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return e.Message
}

var (
	ErrNoSession        = &ValidationError{Field: "session", Message: "No open session selected."}
	ErrNoStartTime      = &ValidationError{Field: "start_time", Message: "Please select a start time."}
	ErrDraw             = &ValidationError{Field: "score", Message: "Draw is not allowed. Scores must differ."}
	ErrMissingPlayers   = &ValidationError{Field: "players", Message: "Please select all 4 players."}
	ErrDuplicatePlayers = &ValidationError{Field: "players", Message: "Players must be unique across both sides."}
	ErrNoCourt          = &ValidationError{Field: "court", Message: "Please select a court."}
	ErrSlotTaken        = &ValidationError{Field: "start_time", Message: "A game already exists for this session, court, and start time."}
	ErrMisalignedTime   = &ValidationError{Field: "start_time", Message: "Start time must be aligned to 5-minute increments."}
	ErrTooManyPlayers   = &ValidationError{Field: "players", Message: "Each side takes exactly 2 players."}
)

// Submission is a game result as entered by the recorder. Zero ids mean
// "not selected".
type Submission struct {
	SessionID      int64    `json:"session_id"`
	StartTime      string   `json:"start_time"`
	CourtID        int64    `json:"court_id"`
	ScoreA         int      `json:"score_a"`
	ScoreB         int      `json:"score_b"`
	SideAPlayerIDs [2]int64 `json:"side_a_player_ids"`
	SideBPlayerIDs [2]int64 `json:"side_b_player_ids"`
}

// PlayerPair fits one side's ids into its two seats. Missing ids stay 0 for
// ValidateSubmission to report; extra ids are rejected, never dropped.
func PlayerPair(ids []int64) ([2]int64, error) {
	var pair [2]int64
	if len(ids) > len(pair) {
		return pair, ErrTooManyPlayers
	}
	copy(pair[:], ids)
	return pair, nil
}

func (s Submission) PlayerIDs() []int64 {
	return []int64{s.SideAPlayerIDs[0], s.SideAPlayerIDs[1], s.SideBPlayerIDs[0], s.SideBPlayerIDs[1]}
}

// Participants lists the four seats in side order.
func (s Submission) Participants() []GameParticipant {
	return []GameParticipant{
		{PlayerID: s.SideAPlayerIDs[0], Side: SideA},
		{PlayerID: s.SideAPlayerIDs[1], Side: SideA},
		{PlayerID: s.SideBPlayerIDs[0], Side: SideB},
		{PlayerID: s.SideBPlayerIDs[1], Side: SideB},
	}
}

// ValidateSubmission runs the pre-flight checks in order and returns the first
// failure. The server repeats these checks and stays authoritative.
func ValidateSubmission(s Submission) error {
	if s.SessionID == 0 {
		return ErrNoSession
	}
	if s.StartTime == "" {
		return ErrNoStartTime
	}
	if s.ScoreA == s.ScoreB {
		return ErrDraw
	}

	ids := s.PlayerIDs()
	for _, id := range ids {
		if id == 0 {
			return ErrMissingPlayers
		}
	}
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			return ErrDuplicatePlayers
		}
		seen[id] = struct{}{}
	}

	if s.CourtID == 0 {
		return ErrNoCourt
	}
	return nil
}

// RecordedGame is an already known game with its seats resolved.
type RecordedGame struct {
	Game         Game
	SideAPlayers []int64
	SideBPlayers []int64
}

// IsSoftDuplicate reports whether a game in the same session has the same four
// players and the same final score. That is most likely a double entry, so the
// caller should ask before saving.
func IsSoftDuplicate(s Submission, existing []RecordedGame) bool {
	incoming := sortedIDs(s.PlayerIDs())
	for _, g := range existing {
		if g.Game.SessionID != s.SessionID {
			continue
		}
		players := sortedIDs(append(append([]int64{}, g.SideAPlayers...), g.SideBPlayers...))
		if !slices.Equal(players, incoming) {
			continue
		}
		sameScore := (g.Game.ScoreA == s.ScoreA && g.Game.ScoreB == s.ScoreB) ||
			(g.Game.ScoreA == s.ScoreB && g.Game.ScoreB == s.ScoreA)
		if sameScore {
			return true
		}
	}
	return false
}

// HasSlotConflict reports whether the court is already booked at the
// submission's normalized start time within the same session, reading
// existing start times on the local wall clock.
func HasSlotConflict(s Submission, existing []RecordedGame) bool {
	return HasSlotConflictIn(s, existing, time.Local)
}

// HasSlotConflictIn is HasSlotConflict with the submission's clock read in loc.
func HasSlotConflictIn(s Submission, existing []RecordedGame, loc *time.Location) bool {
	if s.CourtID == 0 {
		return false
	}
	slot := FloorToFiveMinutes(s.StartTime)
	for _, g := range existing {
		if g.Game.SessionID != s.SessionID || g.Game.CourtID != s.CourtID {
			continue
		}
		started, ok := g.Game.StartedAt()
		if !ok {
			continue
		}
		if ClockIn(started, loc) == slot {
			return true
		}
	}
	return false
}

func sortedIDs(ids []int64) []int64 {
	out := slices.Clone(ids)
	slices.Sort(out)
	return out
}

// RecordedGames pairs games with their seats for the duplicate guards. Games
// whose participants are unknown are kept with empty sides.
func RecordedGames(games []Game, participantsByGame map[int64][]GameParticipant) []RecordedGame {
	out := make([]RecordedGame, 0, len(games))
	for _, g := range games {
		rg := RecordedGame{Game: g}
		for _, p := range participantsByGame[g.ID] {
			switch p.Side {
			case SideA:
				rg.SideAPlayers = append(rg.SideAPlayers, p.PlayerID)
			case SideB:
				rg.SideBPlayers = append(rg.SideBPlayers, p.PlayerID)
			}
		}
		out = append(out, rg)
	}
	return out
}
