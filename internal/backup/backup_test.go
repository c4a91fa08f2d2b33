package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/meltforce/bodycoach/internal/models"
	"github.com/meltforce/bodycoach/internal/storage"
)

func newTestStore(t *testing.T) *storage.Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	if err := storage.RunMigrations(dbPath, "../../migrations"); err != nil {
		t.Fatalf("running migrations: %v", err)
	}
	store, err := storage.Open(dbPath)
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func newTestManager(t *testing.T) (*Manager, *storage.Store) {
	t.Helper()
	store := newTestStore(t)
	return NewManager(store, slog.New(slog.DiscardHandler)), store
}

func strp(s string) *string { return &s }
func intp(v int) *int       { return &v }

func testSession(id, updatedAt string) models.SessionRecord {
	return models.SessionRecord{
		ID:        id,
		StartedAt: strp(updatedAt),
		CreatedAt: updatedAt,
		UpdatedAt: updatedAt,
	}
}

func testLog(id, sessionID, updatedAt string) models.ExerciseLog {
	return models.ExerciseLog{
		ID:         id,
		SessionID:  sessionID,
		ExerciseID: "glute-bridges",
		CreatedAt:  updatedAt,
		UpdatedAt:  updatedAt,
		LoadType:   models.LoadBodyweight,
		Reps:       intp(10),
	}
}

func testProgram(id, updatedAt string) models.Program {
	return models.Program{
		ID:          id,
		CreatedAt:   updatedAt,
		UpdatedAt:   updatedAt,
		DaysPerWeek: 3,
	}
}

// TestExportImportRoundTrip verifies a full export merges cleanly into an
// empty store.
func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	src, srcStore := newTestManager(t)

	sess := testSession("s1", "2026-03-01T10:00:00Z")
	if err := srcStore.CreateSession(ctx, &sess); err != nil {
		t.Fatalf("seeding session: %v", err)
	}
	lg := testLog("l1", "s1", "2026-03-01T10:05:00Z")
	if err := srcStore.SaveExerciseLog(ctx, &lg); err != nil {
		t.Fatalf("seeding log: %v", err)
	}
	prog := testProgram("p1", "2026-03-01T09:00:00Z")
	if err := srcStore.SaveProgram(ctx, &prog); err != nil {
		t.Fatalf("seeding program: %v", err)
	}

	var buf bytes.Buffer
	if err := src.Export(ctx, &buf); err != nil {
		t.Fatalf("Export: %v", err)
	}

	dst, dstStore := newTestManager(t)
	stats, err := dst.Import(ctx, &buf)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if stats.SessionsApplied != 1 || stats.LogsApplied != 1 || stats.ProgramsApplied != 1 {
		t.Errorf("stats = %+v, want one of each applied", stats)
	}

	got, err := dstStore.GetSession(ctx, "s1")
	if err != nil || got == nil {
		t.Fatalf("GetSession after import: %v, %v", got, err)
	}
	if got.UpdatedAt != sess.UpdatedAt {
		t.Errorf("imported session updatedAt = %q, want %q", got.UpdatedAt, sess.UpdatedAt)
	}
}

// TestImportNewerWins verifies merges keep the record with the newer
// updatedAt, skipping the rest.
func TestImportNewerWins(t *testing.T) {
	ctx := context.Background()
	mgr, store := newTestManager(t)

	existing := testSession("s1", "2026-03-05T10:00:00Z")
	existing.Notes = strp("local copy")
	if err := store.CreateSession(ctx, &existing); err != nil {
		t.Fatalf("seeding session: %v", err)
	}

	stale := testSession("s1", "2026-03-01T10:00:00Z")
	stale.Notes = strp("stale copy")
	fresh := testSession("s2", "2026-03-06T10:00:00Z")
	bundle := encodeBundle(t, &Bundle{
		SchemaVersion: models.SchemaVersion,
		ExportedAt:    models.NowISO(),
		Sessions:      []models.SessionRecord{stale, fresh},
		ExerciseLogs:  []models.ExerciseLog{},
	})

	stats, err := mgr.Import(ctx, bundle)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if stats.Skipped != 1 || stats.SessionsApplied != 1 {
		t.Errorf("stats = %+v, want 1 skipped, 1 applied", stats)
	}

	got, err := store.GetSession(ctx, "s1")
	if err != nil || got == nil {
		t.Fatalf("GetSession: %v, %v", got, err)
	}
	if got.Notes == nil || *got.Notes != "local copy" {
		t.Error("stale incoming session should not overwrite the local copy")
	}
}

// TestImportOverwritesOlder verifies a strictly newer incoming record replaces
// the local one.
func TestImportOverwritesOlder(t *testing.T) {
	ctx := context.Background()
	mgr, store := newTestManager(t)

	existing := testSession("s1", "2026-03-01T10:00:00Z")
	if err := store.CreateSession(ctx, &existing); err != nil {
		t.Fatalf("seeding session: %v", err)
	}

	newer := testSession("s1", "2026-03-07T10:00:00Z")
	newer.Notes = strp("synced copy")
	bundle := encodeBundle(t, &Bundle{
		SchemaVersion: models.SchemaVersion,
		ExportedAt:    models.NowISO(),
		Sessions:      []models.SessionRecord{newer},
		ExerciseLogs:  []models.ExerciseLog{},
	})

	if _, err := mgr.Import(ctx, bundle); err != nil {
		t.Fatalf("Import: %v", err)
	}
	got, err := store.GetSession(ctx, "s1")
	if err != nil || got == nil {
		t.Fatalf("GetSession: %v, %v", got, err)
	}
	if got.Notes == nil || *got.Notes != "synced copy" {
		t.Error("newer incoming session should replace the local copy")
	}
}

// TestImportFailClosed verifies one invalid record rejects the whole bundle
// without applying the valid ones.
func TestImportFailClosed(t *testing.T) {
	ctx := context.Background()
	mgr, store := newTestManager(t)

	good := testSession("s1", "2026-03-01T10:00:00Z")
	bad := testSession("s2", "not-a-timestamp")
	bundle := encodeBundle(t, &Bundle{
		SchemaVersion: models.SchemaVersion,
		ExportedAt:    models.NowISO(),
		Sessions:      []models.SessionRecord{good, bad},
		ExerciseLogs:  []models.ExerciseLog{},
	})

	if _, err := mgr.Import(ctx, bundle); err == nil {
		t.Fatal("expected validation error")
	}
	got, err := store.GetSession(ctx, "s1")
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if got != nil {
		t.Error("valid session applied despite bundle rejection")
	}
}

// TestImportMissingArrays verifies a bundle without the record arrays is
// rejected as malformed, not imported as a no-op.
func TestImportMissingArrays(t *testing.T) {
	ctx := context.Background()
	mgr, _ := newTestManager(t)

	cases := []struct {
		name string
		body string
	}{
		{"no arrays", `{"schemaVersion":2,"exportedAt":"2026-03-01T10:00:00Z"}`},
		{"no exerciseLogs", `{"schemaVersion":2,"exportedAt":"2026-03-01T10:00:00Z","sessions":[]}`},
		{"no sessions", `{"schemaVersion":2,"exportedAt":"2026-03-01T10:00:00Z","exerciseLogs":[]}`},
	}
	for _, tc := range cases {
		_, err := mgr.Import(ctx, strings.NewReader(tc.body))
		if err == nil || !strings.Contains(err.Error(), "missing sessions or exerciseLogs") {
			t.Errorf("%s: err = %v, want missing-array rejection", tc.name, err)
		}
	}
}

// TestExportEmptyStoreRoundTrip verifies an empty store exports arrays, not
// nulls, so its own bundle imports cleanly.
func TestExportEmptyStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	src, _ := newTestManager(t)

	var buf bytes.Buffer
	if err := src.Export(ctx, &buf); err != nil {
		t.Fatalf("Export: %v", err)
	}

	dst, _ := newTestManager(t)
	stats, err := dst.Import(ctx, &buf)
	if err != nil {
		t.Fatalf("Import of empty export: %v", err)
	}
	if stats.SessionsApplied != 0 || stats.Skipped != 0 {
		t.Errorf("stats = %+v, want nothing applied", stats)
	}
}

// TestImportPrefsReplace verifies prefs are replaced wholesale, not merged.
func TestImportPrefsReplace(t *testing.T) {
	ctx := context.Background()
	mgr, store := newTestManager(t)

	local := &models.Prefs{
		SchemaVersion: models.SchemaVersion,
		TimerPrefs:    &models.TimerPrefs{WorkSeconds: 45, RestSeconds: 15},
		FeedbackByExercise: map[string]models.Feedback{
			"plank": {Rating: models.FeltEasy},
		},
	}
	if err := store.SavePrefs(ctx, local); err != nil {
		t.Fatalf("seeding prefs: %v", err)
	}

	incoming := &models.Prefs{
		SchemaVersion: models.SchemaVersion,
		TimerPrefs:    &models.TimerPrefs{WorkSeconds: 60, RestSeconds: 30},
	}
	bundle := encodeBundle(t, &Bundle{
		SchemaVersion: models.SchemaVersion,
		ExportedAt:    models.NowISO(),
		Sessions:      []models.SessionRecord{},
		ExerciseLogs:  []models.ExerciseLog{},
		Prefs:         incoming,
	})

	stats, err := mgr.Import(ctx, bundle)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if !stats.PrefsReplaced {
		t.Error("stats.PrefsReplaced = false, want true")
	}

	got, err := store.LoadPrefs(ctx)
	if err != nil {
		t.Fatalf("LoadPrefs: %v", err)
	}
	if got.TimerPrefs == nil || got.TimerPrefs.WorkSeconds != 60 {
		t.Errorf("timer prefs = %+v, want the imported copy", got.TimerPrefs)
	}
	if len(got.FeedbackByExercise) != 0 {
		t.Error("local feedback should not survive a prefs replace")
	}
}

// TestValidate verifies per-record rejection reasons.
func TestValidate(t *testing.T) {
	valid := func() *Bundle {
		return &Bundle{
			SchemaVersion: models.SchemaVersion,
			Sessions:      []models.SessionRecord{testSession("s1", "2026-03-01T10:00:00Z")},
			ExerciseLogs:  []models.ExerciseLog{testLog("l1", "s1", "2026-03-01T10:05:00Z")},
			Programs:      []models.Program{testProgram("p1", "2026-03-01T09:00:00Z")},
		}
	}

	if err := Validate(valid()); err != nil {
		t.Fatalf("valid bundle rejected: %v", err)
	}

	cases := []struct {
		name    string
		mutate  func(*Bundle)
		wantErr string
	}{
		{"schema version", func(b *Bundle) { b.SchemaVersion = 1 }, "unsupported schema version"},
		{"nil sessions", func(b *Bundle) { b.Sessions = nil }, "missing sessions or exerciseLogs"},
		{"nil logs", func(b *Bundle) { b.ExerciseLogs = nil }, "missing sessions or exerciseLogs"},
		{"session id", func(b *Bundle) { b.Sessions[0].ID = "" }, "missing id"},
		{"session timestamp", func(b *Bundle) { b.Sessions[0].UpdatedAt = "yesterday" }, "invalid updatedAt"},
		{"log session id", func(b *Bundle) { b.ExerciseLogs[0].SessionID = "" }, "missing session or exercise id"},
		{"program days", func(b *Bundle) { b.Programs[0].DaysPerWeek = 0 }, "invalid daysPerWeek"},
	}
	for _, tc := range cases {
		b := valid()
		tc.mutate(b)
		err := Validate(b)
		if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
			t.Errorf("%s: err = %v, want %q", tc.name, err, tc.wantErr)
		}
	}
}

func encodeBundle(t *testing.T, b *Bundle) *bytes.Buffer {
	t.Helper()
	data, err := json.Marshal(b)
	if err != nil {
		t.Fatalf("encoding bundle: %v", err)
	}
	return bytes.NewBuffer(data)
}
