package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/meltforce/bodycoach/internal/models"
)

const sessionColumns = `id, started_at, completed_at, created_at, updated_at,
	routine_id, duration_sec, notes, feedback, pain_location, deleted_at`

func scanSession(row interface{ Scan(...any) error }) (models.SessionRecord, error) {
	var s models.SessionRecord
	var feedback, painLocation sql.NullString
	err := row.Scan(&s.ID, &s.StartedAt, &s.CompletedAt, &s.CreatedAt, &s.UpdatedAt,
		&s.RoutineID, &s.DurationSec, &s.Notes, &feedback, &painLocation, &s.DeletedAt)
	if err != nil {
		return s, err
	}
	if feedback.Valid {
		f := models.FeltRating(feedback.String)
		s.Feedback = &f
	}
	if painLocation.Valid {
		p := models.PainLocation(painLocation.String)
		s.PainLocation = &p
	}
	return s, nil
}

func sessionArgs(s *models.SessionRecord) []any {
	var feedback, painLocation *string
	if s.Feedback != nil {
		v := string(*s.Feedback)
		feedback = &v
	}
	if s.PainLocation != nil {
		v := string(*s.PainLocation)
		painLocation = &v
	}
	return []any{s.ID, s.StartedAt, s.CompletedAt, s.CreatedAt, s.UpdatedAt,
		s.RoutineID, s.DurationSec, s.Notes, feedback, painLocation, s.DeletedAt}
}

// CreateSession inserts a session row.
func (s *Store) CreateSession(ctx context.Context, rec *models.SessionRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (`+sessionColumns+`)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		sessionArgs(rec)...)
	if err != nil {
		return fmt.Errorf("inserting session: %w", err)
	}
	return nil
}

// UpdateSession replaces a session row. Returns sql.ErrNoRows when the
// session does not exist.
func (s *Store) UpdateSession(ctx context.Context, rec *models.SessionRecord) error {
	args := sessionArgs(rec)
	// id moves to the WHERE clause
	args = append(args[1:], rec.ID)
	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET started_at = ?, completed_at = ?, created_at = ?, updated_at = ?,
		 routine_id = ?, duration_sec = ?, notes = ?, feedback = ?, pain_location = ?, deleted_at = ?
		 WHERE id = ?`,
		args...)
	if err != nil {
		return fmt.Errorf("updating session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating session: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// GetSession fetches one session by id, including soft-deleted rows.
func (s *Store) GetSession(ctx context.Context, id string) (*models.SessionRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id)
	rec, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying session: %w", err)
	}
	return &rec, nil
}

// ListSessions returns all live sessions, most recently updated first.
func (s *Store) ListSessions(ctx context.Context) ([]models.SessionRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions
		 WHERE deleted_at IS NULL
		 ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()
	return collectSessions(rows)
}

// ListSessionsByProgram returns live sessions recorded against the given
// program, most recently updated first.
func (s *Store) ListSessionsByProgram(ctx context.Context, programID string) ([]models.SessionRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions
		 WHERE routine_id = ? AND deleted_at IS NULL
		 ORDER BY updated_at DESC`,
		programID)
	if err != nil {
		return nil, fmt.Errorf("querying program sessions: %w", err)
	}
	defer rows.Close()
	return collectSessions(rows)
}

func collectSessions(rows *sql.Rows) ([]models.SessionRecord, error) {
	var sessions []models.SessionRecord
	for rows.Next() {
		rec, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		sessions = append(sessions, rec)
	}
	return sessions, rows.Err()
}
