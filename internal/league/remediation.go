package league

// ServerErrorKind is the closed set of server rejections the recording flow
// reacts to. Anything unrecognized is ServerErrorGeneric.
type ServerErrorKind int

const (
	ServerErrorGeneric ServerErrorKind = iota
	ServerErrorConflict
	ServerErrorInvalidTime
	ServerErrorImmutable
)

// Wire codes sent by the API in error details.
const (
	CodeGameConflict     = "GAME_CONFLICT"
	CodeInvalidGameTime  = "INVALID_GAME_TIME"
	CodeSessionImmutable = "SESSION_IMMUTABLE"
)

func ServerErrorKindFromCode(code string) ServerErrorKind {
	switch code {
	case CodeGameConflict:
		return ServerErrorConflict
	case CodeInvalidGameTime:
		return ServerErrorInvalidTime
	case CodeSessionImmutable:
		return ServerErrorImmutable
	default:
		return ServerErrorGeneric
	}
}

func (k ServerErrorKind) String() string {
	switch k {
	case ServerErrorConflict:
		return "conflict"
	case ServerErrorInvalidTime:
		return "invalid_time"
	case ServerErrorImmutable:
		return "immutable"
	default:
		return "generic"
	}
}

const (
	ConflictMessage    = "A game already exists for this court and start time. Time moved to the next 5-minute slot."
	InvalidTimeMessage = "Start time must be on a 5-minute boundary. Try 7:00, 7:05, 7:10."
	ImmutableMessage   = "Selected session is not writable anymore. Select a season with one OPEN session."
	fallbackMessage    = "Failed to add game"
)

// Remediation tells the caller what to show after the server rejected a game.
type Remediation struct {
	Kind    ServerErrorKind `json:"-"`
	Message string          `json:"message"`
	// NextStartTime is the slot to retry with after a conflict.
	NextStartTime string `json:"next_start_time,omitempty"`
	// Reselect means the recording context must be resolved again.
	Reselect bool `json:"reselect,omitempty"`
}

func Remediate(kind ServerErrorKind, rawMessage, startTime string) Remediation {
	switch kind {
	case ServerErrorConflict:
		r := Remediation{Kind: kind, Message: ConflictMessage}
		if next, ok := NextSlot(startTime); ok {
			r.NextStartTime = next
		}
		return r
	case ServerErrorInvalidTime:
		return Remediation{Kind: kind, Message: InvalidTimeMessage}
	case ServerErrorImmutable:
		return Remediation{Kind: kind, Message: ImmutableMessage, Reselect: true}
	default:
		if rawMessage == "" {
			rawMessage = fallbackMessage
		}
		return Remediation{Kind: ServerErrorGeneric, Message: rawMessage}
	}
}
