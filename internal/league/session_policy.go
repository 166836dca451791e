package league

import (
	"fmt"
	"sort"
	"strings"
)

const (
	NoOpenSessionMessage        = "No open session is available for this season. Open one session before recording games."
	MultipleOpenSessionsMessage = "Multiple open sessions found for this season. Close extras so exactly one open session remains."
)

// SessionSelection is the outcome of resolving the writable session of a
// season. Exactly one of Session and Diagnostic is set.
type SessionSelection struct {
	Session    *Session
	Diagnostic string
}

func (s SessionSelection) Ok() bool {
	return s.Session != nil
}

type SessionPolicy string

const (
	// PolicyStrict requires exactly one OPEN session in the season.
	PolicyStrict SessionPolicy = "strict"
	// PolicyLatest takes the most recent OPEN session, else the most recent CLOSED one.
	PolicyLatest SessionPolicy = "latest"
)

func ParseSessionPolicy(s string) (SessionPolicy, error) {
	switch p := SessionPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PolicyStrict, nil
	case PolicyStrict, PolicyLatest:
		return p, nil
	default:
		return "", fmt.Errorf("unknown session policy %q", s)
	}
}

func (p SessionPolicy) Select(sessions []Session) SessionSelection {
	if p == PolicyLatest {
		return SelectLatestSession(sessions)
	}
	return SelectWritableSession(sessions)
}

// SelectWritableSession picks the only OPEN session of a season. Ambiguity is
// reported back to the operator instead of being resolved here.
func SelectWritableSession(sessions []Session) SessionSelection {
	var open []Session
	for _, s := range sessions {
		if s.Status == SessionOpen {
			open = append(open, s)
		}
	}

	switch len(open) {
	case 0:
		return SessionSelection{Diagnostic: NoOpenSessionMessage}
	case 1:
		selected := open[0]
		return SessionSelection{Session: &selected}
	default:
		return SessionSelection{Diagnostic: MultipleOpenSessionsMessage}
	}
}

// SelectLatestSession is the permissive single-club policy.
func SelectLatestSession(sessions []Session) SessionSelection {
	sorted := sortByRecency(sessions)
	for _, status := range []SessionStatus{SessionOpen, SessionClosed} {
		for i := range sorted {
			if sorted[i].Status == status {
				selected := sorted[i]
				return SessionSelection{Session: &selected}
			}
		}
	}
	return SessionSelection{Diagnostic: NoOpenSessionMessage}
}

// LatestScoredSession returns the most recent session whose leaderboard is
// meaningful, i.e. one that is or was open for games.
func LatestScoredSession(sessions []Session) *Session {
	for _, s := range sortByRecency(sessions) {
		switch s.Status {
		case SessionFinalized, SessionClosed, SessionOpen:
			return &s
		}
	}
	return nil
}

// ActiveSeasons returns the seasons currently accepting sessions and games.
func ActiveSeasons(seasons []Season) []Season {
	active := make([]Season, 0, len(seasons))
	for _, s := range seasons {
		if s.IsActive {
			active = append(active, s)
		}
	}
	return active
}

// sortByRecency orders by session date descending, then id descending.
func sortByRecency(sessions []Session) []Session {
	sorted := make([]Session, len(sessions))
	copy(sorted, sessions)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].SessionDate != sorted[j].SessionDate {
			return sorted[i].SessionDate > sorted[j].SessionDate
		}
		return sorted[i].ID > sorted[j].ID
	})
	return sorted
}
