package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"

	"github.com/meltforce/bodycoach/internal/models"
)

// GetProgress fetches the cached progress for a program, or nil when none is
// stored.
func (s *Store) GetProgress(ctx context.Context, programID string) (*models.ProgramProgress, error) {
	var p models.ProgramProgress
	var completed string
	err := s.db.QueryRowContext(ctx,
		`SELECT program_id, last_completed_day_index, next_day_index, completed_day_indices, updated_at
		 FROM program_progress WHERE program_id = ?`,
		programID).Scan(&p.ProgramID, &p.LastCompletedDayIndex, &p.NextDayIndex, &completed, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying progress: %w", err)
	}
	if err := json.Unmarshal([]byte(completed), &p.CompletedDayIndices); err != nil {
		return nil, fmt.Errorf("decoding completed day indices: %w", err)
	}
	if p.CompletedDayIndices == nil {
		p.CompletedDayIndices = []int{}
	}
	return &p, nil
}

// SaveProgress upserts the cached progress for a program.
func (s *Store) SaveProgress(ctx context.Context, p *models.ProgramProgress) error {
	completed := p.CompletedDayIndices
	if completed == nil {
		completed = []int{}
	}
	encoded, err := json.Marshal(completed)
	if err != nil {
		return fmt.Errorf("encoding completed day indices: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO program_progress
		 (program_id, last_completed_day_index, next_day_index, completed_day_indices, updated_at)
		 VALUES (?,?,?,?,?)`,
		p.ProgramID, p.LastCompletedDayIndex, p.NextDayIndex, string(encoded), p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("saving progress: %w", err)
	}
	return nil
}

var dayIndexPattern = regexp.MustCompile(`dayIndex:(\d+)`)

// dayIndexFromNotes extracts the program day a session trained, encoded in
// session notes as "dayIndex:N".
func dayIndexFromNotes(notes *string) (int, bool) {
	if notes == nil {
		return 0, false
	}
	m := dayIndexPattern.FindStringSubmatch(*notes)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// RecomputeProgress rebuilds a program's progress from its completed session
// history and persists the result. The cached row is never authoritative;
// this derivation is. The next day advances round-robin past the most
// recently completed day.
func (s *Store) RecomputeProgress(ctx context.Context, program *models.Program, now string) (*models.ProgramProgress, error) {
	sessions, err := s.ListSessionsByProgram(ctx, program.ID)
	if err != nil {
		return nil, err
	}

	progress := &models.ProgramProgress{
		ProgramID:           program.ID,
		NextDayIndex:        0,
		CompletedDayIndices: []int{},
		UpdatedAt:           now,
	}

	seen := map[int]bool{}
	var latestDay *int
	var latestCompletedAt string
	for _, sess := range sessions {
		if sess.CompletedAt == nil {
			continue
		}
		day, ok := dayIndexFromNotes(sess.Notes)
		if !ok || day < 0 || day >= program.DaysPerWeek {
			continue
		}
		if !seen[day] {
			seen[day] = true
			progress.CompletedDayIndices = append(progress.CompletedDayIndices, day)
		}
		if latestDay == nil || *sess.CompletedAt > latestCompletedAt {
			d := day
			latestDay = &d
			latestCompletedAt = *sess.CompletedAt
		}
	}
	sort.Ints(progress.CompletedDayIndices)

	if latestDay != nil {
		progress.LastCompletedDayIndex = latestDay
		progress.NextDayIndex = (*latestDay + 1) % program.DaysPerWeek
	}

	if err := s.SaveProgress(ctx, progress); err != nil {
		return nil, err
	}
	return progress, nil
}
