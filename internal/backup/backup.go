// Package backup exports the full local dataset as a JSON bundle and merges
// bundles back in. Import validates the whole bundle before touching the
// store; a bad bundle changes nothing.
package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/meltforce/bodycoach/internal/models"
	"github.com/meltforce/bodycoach/internal/storage"
)

// Bundle is the on-disk backup format. Soft-deleted records are included so
// deletions propagate across restores.
type Bundle struct {
	SchemaVersion int                    `json:"schemaVersion"`
	ExportedAt    string                 `json:"exportedAt"`
	Sessions      []models.SessionRecord `json:"sessions"`
	ExerciseLogs  []models.ExerciseLog   `json:"exerciseLogs"`
	Programs      []models.Program       `json:"programs"`
	Prefs         *models.Prefs          `json:"prefs"`
}

// Stats summarizes what an import changed.
type Stats struct {
	SessionsApplied int
	LogsApplied     int
	ProgramsApplied int
	Skipped         int
	PrefsReplaced   bool
}

// Manager runs exports and imports against a store.
type Manager struct {
	store *storage.Store
	log   *slog.Logger
}

// NewManager returns a Manager over the given store.
func NewManager(store *storage.Store, log *slog.Logger) *Manager {
	return &Manager{store: store, log: log}
}

// Export writes the full dataset to w as indented JSON.
func (m *Manager) Export(ctx context.Context, w io.Writer) error {
	sessions, err := m.store.ListAllSessions(ctx)
	if err != nil {
		return fmt.Errorf("exporting sessions: %w", err)
	}
	logs, err := m.store.ListAllExerciseLogs(ctx)
	if err != nil {
		return fmt.Errorf("exporting exercise logs: %w", err)
	}
	programs, err := m.store.ListAllPrograms(ctx)
	if err != nil {
		return fmt.Errorf("exporting programs: %w", err)
	}
	prefs, err := m.store.LoadPrefs(ctx)
	if err != nil {
		return fmt.Errorf("exporting prefs: %w", err)
	}

	// Empty tables still export as arrays so the bundle validates on import.
	if sessions == nil {
		sessions = []models.SessionRecord{}
	}
	if logs == nil {
		logs = []models.ExerciseLog{}
	}
	if programs == nil {
		programs = []models.Program{}
	}

	bundle := Bundle{
		SchemaVersion: models.SchemaVersion,
		ExportedAt:    models.NowISO(),
		Sessions:      sessions,
		ExerciseLogs:  logs,
		Programs:      programs,
		Prefs:         prefs,
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(bundle); err != nil {
		return fmt.Errorf("encoding bundle: %w", err)
	}
	return nil
}

func validTimestamp(s string) bool {
	if s == "" {
		return false
	}
	_, err := time.Parse(time.RFC3339, s)
	return err == nil
}

// Validate checks the bundle can be imported. Any failure rejects the whole
// bundle.
func Validate(b *Bundle) error {
	if b.SchemaVersion != models.SchemaVersion {
		return fmt.Errorf("unsupported schema version %d (want %d)", b.SchemaVersion, models.SchemaVersion)
	}
	// Absent arrays are malformed, not empty. An empty export carries [].
	if b.Sessions == nil || b.ExerciseLogs == nil {
		return fmt.Errorf("missing sessions or exerciseLogs array")
	}
	for i, s := range b.Sessions {
		if s.ID == "" {
			return fmt.Errorf("session %d: missing id", i)
		}
		if !validTimestamp(s.UpdatedAt) {
			return fmt.Errorf("session %s: invalid updatedAt %q", s.ID, s.UpdatedAt)
		}
	}
	for i, l := range b.ExerciseLogs {
		if l.ID == "" {
			return fmt.Errorf("exercise log %d: missing id", i)
		}
		if l.SessionID == "" || l.ExerciseID == "" {
			return fmt.Errorf("exercise log %s: missing session or exercise id", l.ID)
		}
		if !validTimestamp(l.UpdatedAt) {
			return fmt.Errorf("exercise log %s: invalid updatedAt %q", l.ID, l.UpdatedAt)
		}
	}
	for i, p := range b.Programs {
		if p.ID == "" {
			return fmt.Errorf("program %d: missing id", i)
		}
		if p.DaysPerWeek <= 0 {
			return fmt.Errorf("program %s: invalid daysPerWeek %d", p.ID, p.DaysPerWeek)
		}
		if !validTimestamp(p.UpdatedAt) {
			return fmt.Errorf("program %s: invalid updatedAt %q", p.ID, p.UpdatedAt)
		}
	}
	return nil
}

// Import reads a bundle from r and merges it into the store. Existing records
// win unless the incoming copy has a strictly newer updatedAt.
func (m *Manager) Import(ctx context.Context, r io.Reader) (*Stats, error) {
	var bundle Bundle
	dec := json.NewDecoder(r)
	if err := dec.Decode(&bundle); err != nil {
		return nil, fmt.Errorf("decoding bundle: %w", err)
	}
	if err := Validate(&bundle); err != nil {
		return nil, fmt.Errorf("invalid bundle: %w", err)
	}

	stats := &Stats{}

	for i := range bundle.Sessions {
		incoming := &bundle.Sessions[i]
		existing, err := m.store.GetSession(ctx, incoming.ID)
		if err != nil {
			return stats, err
		}
		if existing != nil && existing.UpdatedAt >= incoming.UpdatedAt {
			stats.Skipped++
			continue
		}
		if existing == nil {
			err = m.store.CreateSession(ctx, incoming)
		} else {
			err = m.store.UpdateSession(ctx, incoming)
		}
		if err != nil {
			return stats, fmt.Errorf("importing session %s: %w", incoming.ID, err)
		}
		stats.SessionsApplied++
	}

	for i := range bundle.ExerciseLogs {
		incoming := &bundle.ExerciseLogs[i]
		existing, err := m.store.GetExerciseLog(ctx, incoming.ID)
		if err != nil {
			return stats, err
		}
		if existing != nil && existing.UpdatedAt >= incoming.UpdatedAt {
			stats.Skipped++
			continue
		}
		if err := m.store.SaveExerciseLog(ctx, incoming); err != nil {
			return stats, fmt.Errorf("importing exercise log %s: %w", incoming.ID, err)
		}
		stats.LogsApplied++
	}

	for i := range bundle.Programs {
		incoming := &bundle.Programs[i]
		existing, err := m.store.GetProgram(ctx, incoming.ID)
		if err != nil {
			return stats, err
		}
		if existing != nil && existing.UpdatedAt >= incoming.UpdatedAt {
			stats.Skipped++
			continue
		}
		if err := m.store.SaveProgram(ctx, incoming); err != nil {
			return stats, fmt.Errorf("importing program %s: %w", incoming.ID, err)
		}
		stats.ProgramsApplied++
	}

	if bundle.Prefs != nil {
		if err := m.store.SavePrefs(ctx, bundle.Prefs); err != nil {
			return stats, fmt.Errorf("importing prefs: %w", err)
		}
		stats.PrefsReplaced = true
	}

	m.log.Info("backup import complete",
		"sessions", stats.SessionsApplied,
		"logs", stats.LogsApplied,
		"programs", stats.ProgramsApplied,
		"skipped", stats.Skipped)
	return stats, nil
}
