package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/meltforce/bodycoach/internal/models"
)

const programColumns = `id, created_at, updated_at, goal_track, days_per_week,
	session_minutes, phase, next_week_plan, week, deleted_at`

func encodeJSON(v any) (*string, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	s := string(b)
	return &s, nil
}

func scanProgram(row interface{ Scan(...any) error }) (models.Program, error) {
	var p models.Program
	var sessionMinutes, phase, nextWeekPlan sql.NullString
	var week string
	err := row.Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt, &p.GoalTrack, &p.DaysPerWeek,
		&sessionMinutes, &phase, &nextWeekPlan, &week, &p.DeletedAt)
	if err != nil {
		return p, err
	}
	if err := json.Unmarshal([]byte(week), &p.Week); err != nil {
		return p, fmt.Errorf("decoding week for program %s: %w", p.ID, err)
	}
	if sessionMinutes.Valid {
		p.SessionMinutes = &models.MinutesRange{}
		if err := json.Unmarshal([]byte(sessionMinutes.String), p.SessionMinutes); err != nil {
			return p, fmt.Errorf("decoding session minutes for program %s: %w", p.ID, err)
		}
	}
	if phase.Valid {
		p.Phase = &models.Phase{}
		if err := json.Unmarshal([]byte(phase.String), p.Phase); err != nil {
			return p, fmt.Errorf("decoding phase for program %s: %w", p.ID, err)
		}
	}
	if nextWeekPlan.Valid {
		p.NextWeekPlan = &models.NextWeekPlan{}
		if err := json.Unmarshal([]byte(nextWeekPlan.String), p.NextWeekPlan); err != nil {
			return p, fmt.Errorf("decoding next week plan for program %s: %w", p.ID, err)
		}
	}
	return p, nil
}

// SaveProgram upserts a program row. Nested structures are stored as JSON.
func (s *Store) SaveProgram(ctx context.Context, p *models.Program) error {
	week, err := json.Marshal(p.Week)
	if err != nil {
		return fmt.Errorf("encoding week: %w", err)
	}
	var sessionMinutes, phase, nextWeekPlan *string
	if p.SessionMinutes != nil {
		if sessionMinutes, err = encodeJSON(p.SessionMinutes); err != nil {
			return fmt.Errorf("encoding session minutes: %w", err)
		}
	}
	if p.Phase != nil {
		if phase, err = encodeJSON(p.Phase); err != nil {
			return fmt.Errorf("encoding phase: %w", err)
		}
	}
	if p.NextWeekPlan != nil {
		if nextWeekPlan, err = encodeJSON(p.NextWeekPlan); err != nil {
			return fmt.Errorf("encoding next week plan: %w", err)
		}
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO programs (`+programColumns+`)
		 VALUES (?,?,?,?,?,?,?,?,?,?)`,
		p.ID, p.CreatedAt, p.UpdatedAt, p.GoalTrack, p.DaysPerWeek,
		sessionMinutes, phase, nextWeekPlan, string(week), p.DeletedAt)
	if err != nil {
		return fmt.Errorf("saving program: %w", err)
	}
	return nil
}

// GetProgram fetches one program by id. Returns nil when not found.
func (s *Store) GetProgram(ctx context.Context, id string) (*models.Program, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+programColumns+` FROM programs WHERE id = ?`, id)
	p, err := scanProgram(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying program: %w", err)
	}
	return &p, nil
}

// GetLatestProgram returns the most recently updated live program, or nil
// when none exists.
func (s *Store) GetLatestProgram(ctx context.Context) (*models.Program, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+programColumns+` FROM programs
		 WHERE deleted_at IS NULL
		 ORDER BY updated_at DESC LIMIT 1`)
	p, err := scanProgram(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying latest program: %w", err)
	}
	return &p, nil
}

// ListAllPrograms returns every program row including soft-deleted ones, for
// backup export.
func (s *Store) ListAllPrograms(ctx context.Context) ([]models.Program, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+programColumns+` FROM programs ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying all programs: %w", err)
	}
	defer rows.Close()

	var programs []models.Program
	for rows.Next() {
		p, err := scanProgram(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning program: %w", err)
		}
		programs = append(programs, p)
	}
	return programs, rows.Err()
}
