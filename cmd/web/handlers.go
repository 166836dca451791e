package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/AdamBeresnev/leagueos/internal/httputil"
	"github.com/AdamBeresnev/leagueos/internal/journal"
	"github.com/AdamBeresnev/leagueos/internal/league"
	"github.com/AdamBeresnev/leagueos/internal/middleware"
	"github.com/AdamBeresnev/leagueos/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type handlers struct {
	loc        *time.Location
	recording  recorder
	dashboards dashboardLoader
	admin      adminWorkspace
}

// int64Param parses an id from the path or, when not routed, the query. An
// absent optional value is 0.
func int64Param(r *http.Request, name string, required bool) (int64, bool) {
	raw := chi.URLParam(r, name)
	if raw == "" {
		raw = r.URL.Query().Get(name)
	}
	if raw == "" {
		return 0, !required
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 0 || (required && id == 0) {
		return 0, false
	}
	return id, true
}

func token(r *http.Request) string {
	t, _ := middleware.TokenFromContext(r.Context())
	return t
}

type slotResponse struct {
	Input    string `json:"input"`
	Floored  string `json:"floored"`
	NextSlot string `json:"next_slot,omitempty"`
}

func (h *handlers) floorTime(w http.ResponseWriter, r *http.Request) {
	input := r.URL.Query().Get("time")
	next, _ := league.NextSlot(input)
	httputil.JSON(w, r, http.StatusOK, slotResponse{
		Input:    input,
		Floored:  league.FloorToFiveMinutes(input),
		NextSlot: next,
	})
}

type combineResponse struct {
	StartTime string `json:"start_time"`
	UTC       string `json:"utc"`
}

func (h *handlers) combineTime(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	t, ok := league.CombineDateAndTimeIn(q.Get("date"), q.Get("time"), h.loc)
	if !ok {
		httputil.BadRequest(w, r, "Expected date=YYYY-MM-DD and time=HH:MM", nil)
		return
	}
	httputil.JSON(w, r, http.StatusOK, combineResponse{
		StartTime: t.Format(time.RFC3339),
		UTC:       t.UTC().Format(time.RFC3339),
	})
}

func (h *handlers) recordingContext(w http.ResponseWriter, r *http.Request) {
	clubID, ok := int64Param(r, "clubID", true)
	if !ok {
		httputil.BadRequest(w, r, "Invalid club id", nil)
		return
	}
	seasonID, ok := int64Param(r, "season_id", false)
	if !ok {
		httputil.BadRequest(w, r, "Invalid season id", nil)
		return
	}

	rc, err := h.recording.Resolve(r.Context(), token(r), clubID, seasonID)
	if err != nil {
		httputil.Upstream(w, r, "Failed to resolve recording session", err)
		return
	}
	httputil.JSON(w, r, http.StatusOK, rc)
}

func recordStatus(outcome journal.Outcome) int {
	switch outcome {
	case journal.OutcomeRecorded:
		return http.StatusCreated
	case journal.OutcomeInvalid, journal.OutcomeNoSession:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusConflict
	}
}

func (h *handlers) recordGame(w http.ResponseWriter, r *http.Request) {
	clubID, ok := int64Param(r, "clubID", true)
	if !ok {
		httputil.BadRequest(w, r, "Invalid club id", nil)
		return
	}

	var in service.RecordInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httputil.BadRequest(w, r, "Invalid game submission", err)
		return
	}
	if profile := middleware.ProfileFromContext(r.Context()); profile != nil {
		in.RecordedBy = profile.ID
	}
	in.RequestID = middleware.GetRequestID(r.Context())

	result, err := h.recording.Record(r.Context(), token(r), clubID, in)
	if err != nil {
		httputil.Upstream(w, r, "Failed to record game", err)
		return
	}
	httputil.JSON(w, r, recordStatus(result.Outcome), result)
}

func (h *handlers) dashboard(w http.ResponseWriter, r *http.Request) {
	clubID, ok := int64Param(r, "clubID", true)
	if !ok {
		httputil.BadRequest(w, r, "Invalid club id", nil)
		return
	}
	playerID, ok := int64Param(r, "player_id", false)
	if !ok {
		httputil.BadRequest(w, r, "Invalid player id", nil)
		return
	}

	d, err := h.dashboards.Load(r.Context(), token(r), clubID, playerID)
	if err != nil {
		httputil.Upstream(w, r, "Failed to load dashboard", err)
		return
	}
	httputil.JSON(w, r, http.StatusOK, d)
}

func (h *handlers) roster(w http.ResponseWriter, r *http.Request) {
	clubID, ok := int64Param(r, "clubID", true)
	if !ok {
		httputil.BadRequest(w, r, "Invalid club id", nil)
		return
	}

	players, err := h.admin.Roster(r.Context(), token(r), clubID)
	if err != nil {
		httputil.Upstream(w, r, "Failed to load roster", err)
		return
	}
	httputil.JSON(w, r, http.StatusOK, players)
}

func (h *handlers) sessionSummary(w http.ResponseWriter, r *http.Request) {
	clubID, ok := int64Param(r, "clubID", true)
	if !ok {
		httputil.BadRequest(w, r, "Invalid club id", nil)
		return
	}
	sessionID, ok := int64Param(r, "sessionID", true)
	if !ok {
		httputil.BadRequest(w, r, "Invalid session id", nil)
		return
	}

	summary, err := h.admin.SessionSummary(r.Context(), token(r), clubID, sessionID)
	if err != nil {
		httputil.Upstream(w, r, "Failed to summarize session", err)
		return
	}
	httputil.JSON(w, r, http.StatusOK, summary)
}

func (h *handlers) journal(w http.ResponseWriter, r *http.Request) {
	clubID, ok := int64Param(r, "clubID", true)
	if !ok {
		httputil.BadRequest(w, r, "Invalid club id", nil)
		return
	}

	overview, err := h.admin.Journal(r.Context(), clubID)
	if err != nil {
		httputil.InternalServerError(w, r, "Failed to read recording journal", err)
		return
	}
	httputil.JSON(w, r, http.StatusOK, overview)
}

func (h *handlers) attempt(w http.ResponseWriter, r *http.Request) {
	clubID, ok := int64Param(r, "clubID", true)
	if !ok {
		httputil.BadRequest(w, r, "Invalid club id", nil)
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "attemptID"))
	if err != nil {
		httputil.BadRequest(w, r, "Invalid attempt id", err)
		return
	}

	detail, err := h.admin.Attempt(r.Context(), clubID, id)
	if errors.Is(err, service.ErrAttemptNotFound) {
		httputil.NotFound(w, r, "Attempt not found", err)
		return
	}
	if err != nil {
		httputil.InternalServerError(w, r, "Failed to read recording journal", err)
		return
	}
	httputil.JSON(w, r, http.StatusOK, detail)
}
