package store

import (
	"context"
	"fmt"

	"github.com/AdamBeresnev/leagueos/internal/journal"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type JournalStore struct {
	db *sqlx.DB
}

const (
	insertAttemptQuery = `
		INSERT INTO recording_attempts (id, club_id, season_id, session_id, court_id, start_time, score_a, score_b, player_ids, outcome, error_kind, message, game_id, recorded_by, request_id)
		VALUES (:id, :club_id, :season_id, :session_id, :court_id, :start_time, :score_a, :score_b, :player_ids, :outcome, :error_kind, :message, :game_id, :recorded_by, :request_id)
	`
	getAttemptQuery        = "SELECT * FROM recording_attempts WHERE id = ?"
	listAttemptsQuery      = "SELECT * FROM recording_attempts WHERE club_id = ? ORDER BY created_at DESC, rowid DESC LIMIT ?"
	listSessionAttemptsQry = "SELECT * FROM recording_attempts WHERE club_id = ? AND session_id = ? ORDER BY created_at ASC, rowid ASC"
	countByOutcomeQuery    = "SELECT outcome, COUNT(*) AS total FROM recording_attempts WHERE club_id = ? GROUP BY outcome"
)

func NewJournalStore(db *sqlx.DB) *JournalStore {
	return &JournalStore{db: db}
}

// RecordAttempt stores the attempt, assigning an id when it has none.
func (s *JournalStore) RecordAttempt(ctx context.Context, a *journal.Attempt) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if _, err := s.db.NamedExecContext(ctx, insertAttemptQuery, a); err != nil {
		return fmt.Errorf("failed to insert recording attempt: %w", err)
	}
	return nil
}

func (s *JournalStore) GetAttempt(ctx context.Context, id uuid.UUID) (*journal.Attempt, error) {
	var a journal.Attempt
	if err := s.db.GetContext(ctx, &a, getAttemptQuery, id); err != nil {
		return nil, err
	}
	return &a, nil
}

// ListAttempts returns the club's most recent attempts first.
func (s *JournalStore) ListAttempts(ctx context.Context, clubID int64, limit int) ([]journal.Attempt, error) {
	attempts := []journal.Attempt{}
	err := s.db.SelectContext(ctx, &attempts, listAttemptsQuery, clubID, limit)
	return attempts, err
}

// ListSessionAttempts returns the club's attempts against one session, oldest
// first. Session ids are only unique per upstream, so the club always scopes.
func (s *JournalStore) ListSessionAttempts(ctx context.Context, clubID, sessionID int64) ([]journal.Attempt, error) {
	attempts := []journal.Attempt{}
	err := s.db.SelectContext(ctx, &attempts, listSessionAttemptsQry, clubID, sessionID)
	return attempts, err
}

func (s *JournalStore) CountByOutcome(ctx context.Context, clubID int64) (map[journal.Outcome]int, error) {
	var rows []struct {
		Outcome journal.Outcome `db:"outcome"`
		Total   int             `db:"total"`
	}
	if err := s.db.SelectContext(ctx, &rows, countByOutcomeQuery, clubID); err != nil {
		return nil, fmt.Errorf("failed to count recording attempts: %w", err)
	}

	counts := make(map[journal.Outcome]int, len(rows))
	for _, r := range rows {
		counts[r.Outcome] = r.Total
	}
	return counts, nil
}
