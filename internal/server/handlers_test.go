package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/meltforce/bodycoach/internal/catalog"
	"github.com/meltforce/bodycoach/internal/models"
	"github.com/meltforce/bodycoach/internal/pose"
	"github.com/meltforce/bodycoach/internal/storage"
)

const testAPIKey = "test-key"

func newTestServer(t *testing.T) *Server {
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

	cat, err := catalog.Load()
	if err != nil {
		t.Fatalf("loading catalog: %v", err)
	}
	return New(store, cat, nil, testAPIKey, slog.New(slog.DiscardHandler))
}

// doJSON issues a request against the server. The API key is attached to
// every request; read routes ignore it.
func doJSON(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("encoding request body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("X-API-Key", testAPIKey)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decoding response %q: %v", rec.Body.String(), err)
	}
	return v
}

func createProgram(t *testing.T, srv *Server, days int) models.Program {
	t.Helper()
	rec := doJSON(t, srv, http.MethodPost, "/api/v1/programs", models.Questionnaire{
		Goals:       "Improve posture",
		Experience:  "Beginner",
		DaysPerWeek: days,
		Equipment:   []string{"none"},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("creating program: status %d: %s", rec.Code, rec.Body.String())
	}
	return decodeBody[models.Program](t, rec)
}

// TestCreateProgramAndFetch verifies program creation and the three read
// paths: latest, by id, and missing id.
func TestCreateProgramAndFetch(t *testing.T) {
	srv := newTestServer(t)

	prog := createProgram(t, srv, 3)
	if prog.ID == "" || len(prog.Week) != 3 {
		t.Fatalf("program = %+v, want an id and 3 days", prog)
	}

	latest := doJSON(t, srv, http.MethodGet, "/api/v1/programs/latest", nil)
	if latest.Code != http.StatusOK {
		t.Fatalf("latest: status %d", latest.Code)
	}
	if got := decodeBody[models.Program](t, latest); got.ID != prog.ID {
		t.Errorf("latest program = %s, want %s", got.ID, prog.ID)
	}

	byID := doJSON(t, srv, http.MethodGet, "/api/v1/programs/"+prog.ID, nil)
	if byID.Code != http.StatusOK {
		t.Errorf("by id: status %d", byID.Code)
	}

	missing := doJSON(t, srv, http.MethodGet, "/api/v1/programs/nope", nil)
	if missing.Code != http.StatusNotFound {
		t.Errorf("missing program: status %d, want 404", missing.Code)
	}
}

// TestCreateProgramValidation verifies the daysPerWeek bounds check.
func TestCreateProgramValidation(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/programs", models.Questionnaire{DaysPerWeek: 0})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	rec = doJSON(t, srv, http.MethodPost, "/api/v1/programs", models.Questionnaire{DaysPerWeek: 8})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

// TestLatestProgramEmpty verifies 404 before any program exists.
func TestLatestProgramEmpty(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/v1/programs/latest", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

// TestMutationRequiresAPIKey verifies write routes sit behind the key while
// reads stay open.
func TestMutationRequiresAPIKey(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/programs", bytes.NewReader([]byte("{}")))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated write: status %d, want 401", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/exercises", nil)
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("unauthenticated read: status %d, want 200", rec.Code)
	}
}

// TestSessionLifecycleAdvancesProgress verifies completing a program session
// moves the round-robin day pointer.
func TestSessionLifecycleAdvancesProgress(t *testing.T) {
	srv := newTestServer(t)
	prog := createProgram(t, srv, 3)

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/sessions", map[string]any{
		"routineId": prog.ID,
		"startedAt": "2026-03-02T09:00:00Z",
		"notes":     "dayIndex:0",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("creating session: status %d: %s", rec.Code, rec.Body.String())
	}
	sess := decodeBody[models.SessionRecord](t, rec)
	if sess.ID == "" || sess.UpdatedAt == "" {
		t.Fatalf("session = %+v, want generated id and updatedAt", sess)
	}

	rec = doJSON(t, srv, http.MethodPut, "/api/v1/sessions/"+sess.ID, map[string]any{
		"routineId":   prog.ID,
		"startedAt":   "2026-03-02T09:00:00Z",
		"completedAt": "2026-03-02T09:45:00Z",
		"notes":       "dayIndex:0",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("completing session: status %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, srv, http.MethodGet, fmt.Sprintf("/api/v1/programs/%s/progress", prog.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("progress: status %d", rec.Code)
	}
	progress := decodeBody[models.ProgramProgress](t, rec)
	if progress.NextDayIndex != 1 {
		t.Errorf("nextDayIndex = %d, want 1", progress.NextDayIndex)
	}
	if len(progress.CompletedDayIndices) != 1 || progress.CompletedDayIndices[0] != 0 {
		t.Errorf("completedDayIndices = %v, want [0]", progress.CompletedDayIndices)
	}
}

// TestUpdateSessionKeepsCreatedAt verifies an update body without createdAt
// does not blank the stored value.
func TestUpdateSessionKeepsCreatedAt(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/sessions", map[string]any{
		"startedAt": "2026-03-02T09:00:00Z",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("creating session: status %d", rec.Code)
	}
	sess := decodeBody[models.SessionRecord](t, rec)
	if sess.CreatedAt == "" {
		t.Fatal("created session missing createdAt")
	}

	rec = doJSON(t, srv, http.MethodPut, "/api/v1/sessions/"+sess.ID, map[string]any{
		"startedAt":   "2026-03-02T09:00:00Z",
		"completedAt": "2026-03-02T09:45:00Z",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("updating session: status %d: %s", rec.Code, rec.Body.String())
	}
	updated := decodeBody[models.SessionRecord](t, rec)
	if updated.CreatedAt != sess.CreatedAt {
		t.Errorf("createdAt = %q after update, want %q preserved", updated.CreatedAt, sess.CreatedAt)
	}
}

// TestUpdateMissingSession verifies updating an unknown session id is a 404.
func TestUpdateMissingSession(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPut, "/api/v1/sessions/ghost", map[string]any{})
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

// TestCreateLogValidation verifies required fields and id generation.
func TestCreateLogValidation(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/logs", map[string]any{"exerciseId": "plank"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing sessionId: status %d, want 400", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodPost, "/api/v1/sessions", map[string]any{})
	sess := decodeBody[models.SessionRecord](t, rec)

	rec = doJSON(t, srv, http.MethodPost, "/api/v1/logs", map[string]any{
		"sessionId":  sess.ID,
		"exerciseId": "plank",
		"loadType":   "timed",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("creating log: status %d: %s", rec.Code, rec.Body.String())
	}
	lg := decodeBody[models.ExerciseLog](t, rec)
	if lg.ID == "" || lg.CreatedAt == "" {
		t.Errorf("log = %+v, want generated id and timestamps", lg)
	}
}

// TestExerciseLogsRoute verifies the catalog gate and the empty-list shape.
func TestExerciseLogsRoute(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/v1/exercises/not-real/logs", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown exercise: status %d, want 404", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/v1/exercises/plank/logs", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if logs := decodeBody[[]models.ExerciseLog](t, rec); logs == nil || len(logs) != 0 {
		t.Errorf("logs = %v, want empty array", logs)
	}
}

// TestRecommendationNoHistory verifies the explicit no-history payload.
func TestRecommendationNoHistory(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/v1/exercises/plank/recommendation", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decodeBody[map[string]any](t, rec)
	if body["recommendedNext"] != nil {
		t.Errorf("recommendedNext = %v, want null", body["recommendedNext"])
	}
	if reason, _ := body["reason"].(string); reason == "" {
		t.Error("reason missing from no-history payload")
	}
}

// TestNextWeekRoute verifies the phase, signals, and plan payload for a
// fresh program.
func TestNextWeekRoute(t *testing.T) {
	srv := newTestServer(t)
	prog := createProgram(t, srv, 3)

	rec := doJSON(t, srv, http.MethodGet, fmt.Sprintf("/api/v1/programs/%s/next-week", prog.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody[struct {
		Phase        models.Phase        `json:"phase"`
		NextWeekPlan models.NextWeekPlan `json:"nextWeekPlan"`
	}](t, rec)
	if body.Phase.Name != "Phase 1: Restore & Control" {
		t.Errorf("phase = %q, want week-one phase", body.Phase.Name)
	}
	if body.NextWeekPlan.Reason == "" {
		t.Error("nextWeekPlan.reason missing")
	}
}

// TestAssessmentRoute verifies keypoint-driven findings reach the report.
func TestAssessmentRoute(t *testing.T) {
	srv := newTestServer(t)

	keypoints := []pose.Keypoint{
		{Name: "left_shoulder", X: 90, Y: 100, Score: 0.9},
		{Name: "right_shoulder", X: 110, Y: 115, Score: 0.9},
		{Name: "left_hip", X: 92, Y: 200, Score: 0.9},
		{Name: "right_hip", X: 108, Y: 200, Score: 0.9},
	}
	rec := doJSON(t, srv, http.MethodPost, "/api/v1/assessment", map[string]any{
		"questionnaire":   models.Questionnaire{Goals: "Improve posture", PainAreas: []string{"Neck"}},
		"keypointsByView": map[string]any{"front": keypoints},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	body := decodeBody[struct {
		Report struct {
			Observations []struct {
				ID string `json:"id"`
			} `json:"observations"`
			Priorities []string `json:"priorities"`
		} `json:"report"`
		Views []json.RawMessage `json:"views"`
	}](t, rec)

	if len(body.Views) != 1 {
		t.Fatalf("got %d views, want 1", len(body.Views))
	}
	ids := map[string]bool{}
	for _, obs := range body.Report.Observations {
		ids[obs.ID] = true
	}
	if !ids["pose-shoulder-asymmetry"] || !ids["pain-neck"] {
		t.Errorf("observations = %v, want pose and pain findings", ids)
	}
	if len(body.Report.Priorities) == 0 || body.Report.Priorities[0] != "pain-neck" {
		t.Errorf("priorities = %v, want pain first", body.Report.Priorities)
	}
}

// TestRoutineRoute verifies the one-off routine endpoint.
func TestRoutineRoute(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/routine", models.Questionnaire{
		Goals:      "Improve posture",
		Experience: "Beginner",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody[struct {
		Sections []struct {
			Title string `json:"title"`
		} `json:"sections"`
	}](t, rec)
	if len(body.Sections) != 4 {
		t.Errorf("got %d sections, want 4", len(body.Sections))
	}
}

// TestPrefsRoundTrip verifies prefs survive a put/get cycle.
func TestPrefsRoundTrip(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPut, "/api/v1/prefs", models.Prefs{
		SchemaVersion: models.SchemaVersion,
		TimerPrefs:    &models.TimerPrefs{WorkSeconds: 40, RestSeconds: 20},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("put prefs: status %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/v1/prefs", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get prefs: status %d", rec.Code)
	}
	prefs := decodeBody[models.Prefs](t, rec)
	if prefs.TimerPrefs == nil || prefs.TimerPrefs.WorkSeconds != 40 {
		t.Errorf("prefs = %+v, want saved timer values", prefs)
	}
}

// TestExportImportRoute verifies an exported bundle imports into a second
// server.
func TestExportImportRoute(t *testing.T) {
	src := newTestServer(t)
	createProgram(t, src, 3)

	export := doJSON(t, src, http.MethodGet, "/api/v1/export", nil)
	if export.Code != http.StatusOK {
		t.Fatalf("export: status %d", export.Code)
	}
	if cd := export.Header().Get("Content-Disposition"); cd == "" {
		t.Error("export missing Content-Disposition header")
	}

	dst := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/import", bytes.NewReader(export.Body.Bytes()))
	req.Header.Set("X-API-Key", testAPIKey)
	rec := httptest.NewRecorder()
	dst.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("import: status %d: %s", rec.Code, rec.Body.String())
	}
	stats := decodeBody[map[string]any](t, rec)
	if stats["programs"] != float64(1) {
		t.Errorf("stats = %v, want 1 program applied", stats)
	}

	latest := doJSON(t, dst, http.MethodGet, "/api/v1/programs/latest", nil)
	if latest.Code != http.StatusOK {
		t.Errorf("latest after import: status %d", latest.Code)
	}
}
