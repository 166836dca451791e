package journal

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Outcome string

const (
	OutcomeRecorded     Outcome = "recorded"
	OutcomeInvalid      Outcome = "invalid"
	OutcomeNoSession    Outcome = "no_session"
	OutcomeSlotConflict Outcome = "slot_conflict"
	OutcomeDuplicate    Outcome = "duplicate"
	OutcomeRejected     Outcome = "rejected"
	OutcomeFailed       Outcome = "failed"
)

// Attempt is one submission made from the recording console, whatever its
// outcome. GameID is set only once the server accepted the game.
type Attempt struct {
	ID         uuid.UUID `db:"id" json:"id"`
	ClubID     int64     `db:"club_id" json:"club_id"`
	SeasonID   int64     `db:"season_id" json:"season_id"`
	SessionID  int64     `db:"session_id" json:"session_id"`
	CourtID    int64     `db:"court_id" json:"court_id"`
	StartTime  string    `db:"start_time" json:"start_time"`
	ScoreA     int       `db:"score_a" json:"score_a"`
	ScoreB     int       `db:"score_b" json:"score_b"`
	PlayerIDs  string    `db:"player_ids" json:"player_ids"`
	Outcome    Outcome   `db:"outcome" json:"outcome"`
	ErrorKind  string    `db:"error_kind" json:"error_kind,omitempty"`
	Message    string    `db:"message" json:"message,omitempty"`
	GameID     *int64    `db:"game_id" json:"game_id,omitempty"`
	// RecordedBy is the profile that submitted the game, when known.
	RecordedBy *int64    `db:"recorded_by" json:"recorded_by,omitempty"`
	RequestID  string    `db:"request_id" json:"request_id,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// JoinIDs renders player ids as the comma separated column value.
func JoinIDs(ids []int64) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.FormatInt(id, 10))
	}
	return strings.Join(parts, ",")
}

func (a Attempt) Players() []int64 {
	if a.PlayerIDs == "" {
		return nil
	}
	var ids []int64
	for _, p := range strings.Split(a.PlayerIDs, ",") {
		if id, err := strconv.ParseInt(p, 10, 64); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}
