package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/meltforce/bodycoach/internal/models"
)

// newTestServer creates an httptest server that routes requests to handler functions
// keyed by path. Verifies the HTTP client sends correct paths and query params.
func newTestServer(t *testing.T, handlers map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, ok := handlers[r.URL.Path]
		if !ok {
			t.Errorf("unexpected request path: %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		h(w, r)
	}))
}

func writeTestJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Fatal(err)
	}
}

// TestGetProgramLatest verifies an empty program ID maps to the latest-program
// route and the response decodes into a Program.
func TestGetProgramLatest(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/programs/latest": func(w http.ResponseWriter, r *http.Request) {
			writeTestJSON(t, w, models.Program{ID: "p1", DaysPerWeek: 3})
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL, "")
	prog, err := client.GetProgram(context.Background(), "")
	if err != nil {
		t.Fatal(err)
	}
	if prog == nil || prog.ID != "p1" {
		t.Fatalf("program = %+v, want ID p1", prog)
	}
	if prog.DaysPerWeek != 3 {
		t.Errorf("daysPerWeek=%d, want 3", prog.DaysPerWeek)
	}
}

// TestGetProgramNotFound verifies a 404 surfaces as nil program, nil error,
// matching the local data source's no-program contract.
func TestGetProgramNotFound(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/programs/latest": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"no program yet"}`))
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL, "")
	prog, err := client.GetProgram(context.Background(), "")
	if err != nil {
		t.Fatal(err)
	}
	if prog != nil {
		t.Errorf("program = %+v, want nil", prog)
	}
}

// TestGetProgressResolvesLatest verifies an empty program ID first resolves
// the latest program, then hits that program's progress route.
func TestGetProgressResolvesLatest(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/programs/latest": func(w http.ResponseWriter, r *http.Request) {
			writeTestJSON(t, w, models.Program{ID: "p1", DaysPerWeek: 3})
		},
		"/api/v1/programs/p1/progress": func(w http.ResponseWriter, r *http.Request) {
			writeTestJSON(t, w, models.ProgramProgress{ProgramID: "p1", NextDayIndex: 2, CompletedDayIndices: []int{0, 1}})
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL, "")
	progress, err := client.GetProgress(context.Background(), "")
	if err != nil {
		t.Fatal(err)
	}
	if progress == nil || progress.NextDayIndex != 2 {
		t.Fatalf("progress = %+v, want nextDayIndex 2", progress)
	}
}

// TestGetNextWeekPlan verifies the next-week route is hit for an explicit
// program ID and the composite response decodes.
func TestGetNextWeekPlan(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/programs/p1/next-week": func(w http.ResponseWriter, r *http.Request) {
			writeTestJSON(t, w, map[string]any{
				"phase":        models.Phase{Name: "Foundation", WeekIndex: 1},
				"signals":      map[string]any{"ComplianceRate": 0.75, "PainFlag": false},
				"nextWeekPlan": models.NextWeekPlan{Summary: "Next week: small progression on main lifts."},
			})
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL, "")
	outlook, err := client.GetNextWeekPlan(context.Background(), "p1")
	if err != nil {
		t.Fatal(err)
	}
	if outlook.Phase.Name != "Foundation" {
		t.Errorf("phase=%q, want Foundation", outlook.Phase.Name)
	}
	if outlook.Signals.ComplianceRate != 0.75 {
		t.Errorf("complianceRate=%f, want 0.75", outlook.Signals.ComplianceRate)
	}
}

// TestGetRecommendation verifies recommendation decoding including the
// safety flag.
func TestGetRecommendation(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/exercises/glute-bridges/recommendation": func(w http.ResponseWriter, r *http.Request) {
			writeTestJSON(t, w, map[string]any{
				"recommendedNext": map[string]any{"reps": 8},
				"reason":          "Pain reported - regress and keep range comfortable.",
				"safetyFlag":      true,
			})
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL, "")
	rec, err := client.GetRecommendation(context.Background(), "glute-bridges")
	if err != nil {
		t.Fatal(err)
	}
	if !rec.SafetyFlag {
		t.Error("safetyFlag=false, want true")
	}
	if rec.RecommendedNext.Reps == nil || *rec.RecommendedNext.Reps != 8 {
		t.Errorf("reps=%v, want 8", rec.RecommendedNext.Reps)
	}
}

// TestGetExerciseHistory verifies the limit query param is forwarded and the
// log array decodes.
func TestGetExerciseHistory(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/exercises/dumbbell-rows/logs": func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("limit"); got != "5" {
				t.Errorf("limit=%q, want 5", got)
			}
			writeTestJSON(t, w, []models.ExerciseLog{
				{ID: "l1", ExerciseID: "dumbbell-rows", SessionID: "s1"},
			})
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL, "")
	logs, err := client.GetExerciseHistory(context.Background(), "dumbbell-rows", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(logs) != 1 || logs[0].ID != "l1" {
		t.Fatalf("logs = %+v, want one log l1", logs)
	}
}

// TestGetAssessment verifies the assessment POST carries the API key header
// and the questionnaire body, and that the nested report decodes.
func TestGetAssessment(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/assessment": func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				t.Errorf("method=%s, want POST", r.Method)
			}
			if got := r.Header.Get("X-API-Key"); got != "secret" {
				t.Errorf("X-API-Key=%q, want secret", got)
			}
			var req struct {
				Questionnaire models.Questionnaire `json:"questionnaire"`
				UserNotes     string               `json:"userNotes"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Fatal(err)
			}
			if req.Questionnaire.DaysPerWeek != 3 {
				t.Errorf("daysPerWeek=%d, want 3", req.Questionnaire.DaysPerWeek)
			}
			writeTestJSON(t, w, map[string]any{
				"report": map[string]any{"summary": "Key focus areas: posture + control."},
			})
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL, "secret")
	report, err := client.GetAssessment(context.Background(), &models.Questionnaire{DaysPerWeek: 3}, "desk job")
	if err != nil {
		t.Fatal(err)
	}
	if report == nil || report.Summary == "" {
		t.Fatalf("report = %+v, want non-empty summary", report)
	}
}

// TestHTTPClientServerError verifies the client returns an error on non-200 responses.
func TestHTTPClientServerError(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/exercises": func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":"database down"}`))
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL, "")
	_, err := client.ListExercises(context.Background())
	if err == nil {
		t.Fatal("expected error for 500 response")
	}
}
