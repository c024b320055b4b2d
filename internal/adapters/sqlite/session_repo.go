package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ananmuhameed/therapy-ai-platform/internal/core/pipeline"
	"github.com/ananmuhameed/therapy-ai-platform/internal/ports/secondary"
)

// SessionRepository implements secondary.SessionRepository with SQLite.
type SessionRepository struct {
	db DBTX
}

// NewSessionRepository creates a new SQLite session repository.
func NewSessionRepository(db DBTX) *SessionRepository {
	return &SessionRepository{db: db}
}

const sessionColumns = "id, therapist_id, patient_id, session_date, duration_minutes, status, last_error_stage, last_error_message, notes_before, notes_after, created_at, updated_at"

// CreateSession persists a new session.
// The record must have ID and Status pre-populated by the service layer.
func (r *SessionRepository) CreateSession(ctx context.Context, session *secondary.SessionRecord) error {
	if session.ID == "" {
		return fmt.Errorf("session ID must be pre-populated by service layer")
	}
	if session.Status == "" {
		return fmt.Errorf("session Status must be pre-populated by service layer")
	}

	var sessionDate sql.NullTime
	if session.SessionDate != "" {
		t, err := time.Parse(time.RFC3339, session.SessionDate)
		if err != nil {
			return fmt.Errorf("invalid session date: %w", err)
		}
		sessionDate = sql.NullTime{Time: t, Valid: true}
	}

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO sessions (id, therapist_id, patient_id, session_date, duration_minutes, status, notes_before, notes_after) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		session.ID, session.TherapistID, session.PatientID, sessionDate, session.DurationMinutes, session.Status, session.NotesBefore, session.NotesAfter,
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// GetSession retrieves a session by its ID.
func (r *SessionRepository) GetSession(ctx context.Context, id string) (*secondary.SessionRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+sessionColumns+" FROM sessions WHERE id = ?", id)

	record, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, &pipeline.NotFoundError{Entity: "session", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return record, nil
}

// ListSessions retrieves sessions matching the given filters.
func (r *SessionRepository) ListSessions(ctx context.Context, filters secondary.SessionFilters) ([]*secondary.SessionRecord, error) {
	query := "SELECT " + sessionColumns + " FROM sessions"
	args := []any{}
	where := ""

	if filters.PatientID != "" {
		where = " WHERE patient_id = ?"
		args = append(args, filters.PatientID)
	}
	if filters.Status != "" {
		if where == "" {
			where = " WHERE status = ?"
		} else {
			where += " AND status = ?"
		}
		args = append(args, filters.Status)
	}

	query += where + " ORDER BY created_at DESC"
	if filters.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filters.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*secondary.SessionRecord
	for rows.Next() {
		record, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, record)
	}
	return sessions, rows.Err()
}

// UpdateSessionStatus sets the pipeline status together with the error
// fields. All status writes go through here, keeping the three fields
// mutually consistent.
func (r *SessionRepository) UpdateSessionStatus(ctx context.Context, id, status, errorStage, errorMessage string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE sessions SET status = ?, last_error_stage = ?, last_error_message = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		status, errorStage, errorMessage, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update session status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &pipeline.NotFoundError{Entity: "session", ID: id}
	}
	return nil
}

// UpdateSessionNotes updates the therapist's before/after session notes.
func (r *SessionRepository) UpdateSessionNotes(ctx context.Context, id, notesBefore, notesAfter string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE sessions SET notes_before = ?, notes_after = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		notesBefore, notesAfter, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update session notes: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &pipeline.NotFoundError{Entity: "session", ID: id}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*secondary.SessionRecord, error) {
	var (
		sessionDate sql.NullTime
		createdAt   time.Time
		updatedAt   time.Time
	)

	record := &secondary.SessionRecord{}
	err := row.Scan(
		&record.ID, &record.TherapistID, &record.PatientID, &sessionDate,
		&record.DurationMinutes, &record.Status, &record.LastErrorStage,
		&record.LastErrorMessage, &record.NotesBefore, &record.NotesAfter,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if sessionDate.Valid {
		record.SessionDate = sessionDate.Time.Format(time.RFC3339)
	}
	record.CreatedAt = createdAt.Format(time.RFC3339)
	record.UpdatedAt = updatedAt.Format(time.RFC3339)
	return record, nil
}
