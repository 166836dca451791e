package league

// RecordingContext is the club/season/session selection the recording screen
// works against. Values are never mutated; every transition returns a new one.
type RecordingContext struct {
	ClubID     int64    `json:"club_id"`
	SeasonID   int64    `json:"season_id"`
	Session    *Session `json:"session,omitempty"`
	Diagnostic string   `json:"diagnostic,omitempty"`
}

func NewRecordingContext(clubID int64) RecordingContext {
	return RecordingContext{ClubID: clubID}
}

// WithClub switches club and drops everything that belonged to the old one.
func (c RecordingContext) WithClub(clubID int64) RecordingContext {
	if clubID == c.ClubID {
		return c
	}
	return RecordingContext{ClubID: clubID}
}

// WithSeason switches season and drops the resolved session.
func (c RecordingContext) WithSeason(seasonID int64) RecordingContext {
	if seasonID == c.SeasonID {
		return c
	}
	return RecordingContext{ClubID: c.ClubID, SeasonID: seasonID}
}

// WithSessions resolves the writable session from the season's sessions.
func (c RecordingContext) WithSessions(sessions []Session, policy SessionPolicy) RecordingContext {
	sel := policy.Select(sessions)
	return RecordingContext{
		ClubID:     c.ClubID,
		SeasonID:   c.SeasonID,
		Session:    sel.Session,
		Diagnostic: sel.Diagnostic,
	}
}

// Writable reports whether a game can be recorded in this context.
func (c RecordingContext) Writable() bool {
	return c.Session != nil && c.Session.AcceptsGames()
}
