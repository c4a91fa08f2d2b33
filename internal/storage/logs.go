package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/meltforce/bodycoach/internal/models"
)

const logColumns = `id, session_id, exercise_id, program_id, day_index, created_at, updated_at,
	load_type, unit, weight, reps, reps_by_set, sets_planned, sets_completed,
	duration_sec, felt, pain_location, notes, computed_volume, deleted_at`

func scanLog(row interface{ Scan(...any) error }) (models.ExerciseLog, error) {
	var l models.ExerciseLog
	var loadType string
	var repsBySet, felt, painLocation sql.NullString
	err := row.Scan(&l.ID, &l.SessionID, &l.ExerciseID, &l.ProgramID, &l.DayIndex,
		&l.CreatedAt, &l.UpdatedAt, &loadType, &l.Unit, &l.Weight, &l.Reps, &repsBySet,
		&l.SetsPlanned, &l.SetsCompleted, &l.DurationSec, &felt, &painLocation,
		&l.Notes, &l.ComputedVolume, &l.DeletedAt)
	if err != nil {
		return l, err
	}
	l.LoadType = models.LoadType(loadType)
	if repsBySet.Valid && repsBySet.String != "" {
		if err := json.Unmarshal([]byte(repsBySet.String), &l.RepsBySet); err != nil {
			return l, fmt.Errorf("decoding reps_by_set for log %s: %w", l.ID, err)
		}
	}
	if felt.Valid {
		f := models.FeltRating(felt.String)
		l.Felt = &f
	}
	if painLocation.Valid {
		p := models.PainLocation(painLocation.String)
		l.PainLocation = &p
	}
	return l, nil
}

// SaveExerciseLog upserts a log row. ComputedVolume is refreshed on write so
// stored volume never drifts from the raw fields.
func (s *Store) SaveExerciseLog(ctx context.Context, l *models.ExerciseLog) error {
	var repsBySet *string
	if len(l.RepsBySet) > 0 {
		encoded, err := json.Marshal(l.RepsBySet)
		if err != nil {
			return fmt.Errorf("encoding reps_by_set: %w", err)
		}
		v := string(encoded)
		repsBySet = &v
	}
	var felt, painLocation *string
	if l.Felt != nil {
		v := string(*l.Felt)
		felt = &v
	}
	if l.PainLocation != nil {
		v := string(*l.PainLocation)
		painLocation = &v
	}
	l.ComputedVolume = l.ComputeVolume()

	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO exercise_logs (`+logColumns+`)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		l.ID, l.SessionID, l.ExerciseID, l.ProgramID, l.DayIndex, l.CreatedAt, l.UpdatedAt,
		string(l.LoadType), l.Unit, l.Weight, l.Reps, repsBySet, l.SetsPlanned, l.SetsCompleted,
		l.DurationSec, felt, painLocation, l.Notes, l.ComputedVolume, l.DeletedAt)
	if err != nil {
		return fmt.Errorf("saving exercise log: %w", err)
	}
	return nil
}

// GetExerciseLog fetches one log by id, including soft-deleted rows.
func (s *Store) GetExerciseLog(ctx context.Context, id string) (*models.ExerciseLog, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+logColumns+` FROM exercise_logs WHERE id = ?`, id)
	l, err := scanLog(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying exercise log: %w", err)
	}
	return &l, nil
}

// ListExerciseLogsByExercise returns live logs for one exercise, most
// recently updated first. limit <= 0 means no limit.
func (s *Store) ListExerciseLogsByExercise(ctx context.Context, exerciseID string, limit int) ([]models.ExerciseLog, error) {
	query := `SELECT ` + logColumns + ` FROM exercise_logs
		 WHERE exercise_id = ? AND deleted_at IS NULL
		 ORDER BY updated_at DESC`
	args := []any{exerciseID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying exercise logs: %w", err)
	}
	defer rows.Close()
	return collectLogs(rows)
}

// ListExerciseLogsBySessionIDs returns live logs belonging to any of the
// given sessions.
func (s *Store) ListExerciseLogsBySessionIDs(ctx context.Context, sessionIDs []string) ([]models.ExerciseLog, error) {
	if len(sessionIDs) == 0 {
		return nil, nil
	}
	placeholders := strings.TrimRight(strings.Repeat("?,", len(sessionIDs)), ",")
	args := make([]any, len(sessionIDs))
	for i, id := range sessionIDs {
		args[i] = id
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+logColumns+` FROM exercise_logs
		 WHERE session_id IN (`+placeholders+`) AND deleted_at IS NULL
		 ORDER BY updated_at DESC`,
		args...)
	if err != nil {
		return nil, fmt.Errorf("querying session logs: %w", err)
	}
	defer rows.Close()
	return collectLogs(rows)
}

// ListAllExerciseLogs returns every log row including soft-deleted ones, for
// backup export.
func (s *Store) ListAllExerciseLogs(ctx context.Context) ([]models.ExerciseLog, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+logColumns+` FROM exercise_logs ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying all exercise logs: %w", err)
	}
	defer rows.Close()
	return collectLogs(rows)
}

// ListAllSessions returns every session row including soft-deleted ones, for
// backup export.
func (s *Store) ListAllSessions(ctx context.Context) ([]models.SessionRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying all sessions: %w", err)
	}
	defer rows.Close()
	return collectSessions(rows)
}

func collectLogs(rows *sql.Rows) ([]models.ExerciseLog, error) {
	var logs []models.ExerciseLog
	for rows.Next() {
		l, err := scanLog(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning exercise log: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
