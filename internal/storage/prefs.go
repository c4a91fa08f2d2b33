package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/meltforce/bodycoach/internal/models"
)

// LoadPrefs returns the stored preferences, or fresh defaults when none have
// been saved yet.
func (s *Store) LoadPrefs(ctx context.Context) (*models.Prefs, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM prefs WHERE id = 1`).Scan(&data)
	if err == sql.ErrNoRows {
		return &models.Prefs{SchemaVersion: models.SchemaVersion}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying prefs: %w", err)
	}

	var prefs models.Prefs
	if err := json.Unmarshal([]byte(data), &prefs); err != nil {
		return nil, fmt.Errorf("decoding prefs: %w", err)
	}
	return &prefs, nil
}

// SavePrefs stores the preferences blob, stamping the current schema version.
func (s *Store) SavePrefs(ctx context.Context, prefs *models.Prefs) error {
	prefs.SchemaVersion = models.SchemaVersion
	encoded, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("encoding prefs: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO prefs (id, data) VALUES (1, ?)`, string(encoded))
	if err != nil {
		return fmt.Errorf("saving prefs: %w", err)
	}
	return nil
}
