package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/meltforce/bodycoach/internal/models"
	"github.com/meltforce/bodycoach/internal/phases"
	"github.com/meltforce/bodycoach/internal/progression"
)

func (s *Server) handleCreateProgram(w http.ResponseWriter, r *http.Request) {
	var q models.Questionnaire
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if q.DaysPerWeek < 1 || q.DaysPerWeek > 7 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "daysPerWeek must be between 1 and 7"})
		return
	}

	prog := s.builder.Build(&q, uuid.New().String(), time.Now())
	if err := s.store.SaveProgram(r.Context(), prog); err != nil {
		s.log.Error("saving program", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, prog)
}

func (s *Server) handleLatestProgram(w http.ResponseWriter, r *http.Request) {
	prog, err := s.store.GetLatestProgram(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if prog == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no program yet"})
		return
	}
	writeJSON(w, http.StatusOK, prog)
}

func (s *Server) handleGetProgram(w http.ResponseWriter, r *http.Request) {
	prog, err := s.store.GetProgram(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if prog == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "program not found"})
		return
	}
	writeJSON(w, http.StatusOK, prog)
}

// handleGetProgress recomputes progress from session history on every read.
// The persisted row is only a cache.
func (s *Server) handleGetProgress(w http.ResponseWriter, r *http.Request) {
	prog, err := s.store.GetProgram(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if prog == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "program not found"})
		return
	}

	progress, err := s.store.RecomputeProgress(r.Context(), prog, models.NowISO())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, progress)
}

func (s *Server) handleNextWeek(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	prog, err := s.store.GetProgram(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if prog == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "program not found"})
		return
	}

	sessions, err := s.store.ListSessionsByProgram(ctx, prog.ID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	sessionIDs := make([]string, len(sessions))
	for i, sess := range sessions {
		sessionIDs[i] = sess.ID
	}
	logs, err := s.store.ListExerciseLogsBySessionIDs(ctx, sessionIDs)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	now := time.Now()
	goal := "Improve posture"
	if prog.GoalTrack != nil && *prog.GoalTrack != "" {
		goal = *prog.GoalTrack
	}
	phase := phases.PhaseFor(phases.WeekIndexFor(prog, now), goal)
	signals := phases.DeriveSignals(sessions, logs, prog.DaysPerWeek, now)
	signals.PhaseName = phase.Name
	plan := phases.PlanNextWeek(signals)

	writeJSON(w, http.StatusOK, map[string]any{
		"phase":        phase,
		"signals":      signals,
		"nextWeekPlan": plan,
	})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var rec models.SessionRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	now := models.NowISO()
	if rec.CreatedAt == "" {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now

	if err := s.store.CreateSession(r.Context(), &rec); err != nil {
		s.log.Error("creating session", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleUpdateSession(w http.ResponseWriter, r *http.Request) {
	var rec models.SessionRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	rec.ID = chi.URLParam(r, "id")
	rec.UpdatedAt = models.NowISO()

	// The update replaces the whole row; keep the stored created_at when the
	// client omits it.
	if rec.CreatedAt == "" {
		existing, err := s.store.GetSession(r.Context(), rec.ID)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		if existing == nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
			return
		}
		rec.CreatedAt = existing.CreatedAt
	}

	err := s.store.UpdateSession(r.Context(), &rec)
	if errors.Is(err, sql.ErrNoRows) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	// A completed program session moves the day pointer.
	if rec.CompletedAt != nil && rec.RoutineID != nil {
		s.refreshProgress(r.Context(), *rec.RoutineID)
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) refreshProgress(ctx context.Context, programID string) {
	prog, err := s.store.GetProgram(ctx, programID)
	if err != nil || prog == nil {
		return
	}
	if _, err := s.store.RecomputeProgress(ctx, prog, models.NowISO()); err != nil {
		s.log.Warn("progress recompute failed", "program", programID, "error", err)
	}
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.store.ListSessions(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if sessions == nil {
		sessions = []models.SessionRecord{}
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (s *Server) handleCreateLog(w http.ResponseWriter, r *http.Request) {
	var l models.ExerciseLog
	if err := json.NewDecoder(r.Body).Decode(&l); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if l.SessionID == "" || l.ExerciseID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "sessionId and exerciseId are required"})
		return
	}
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	now := models.NowISO()
	if l.CreatedAt == "" {
		l.CreatedAt = now
	}
	l.UpdatedAt = now

	if err := s.store.SaveExerciseLog(r.Context(), &l); err != nil {
		s.log.Error("saving exercise log", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, l)
}

func (s *Server) handleListExercises(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.All())
}

func (s *Server) handleExerciseLogs(w http.ResponseWriter, r *http.Request) {
	exerciseID := chi.URLParam(r, "id")
	if s.catalog.ByID(exerciseID) == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown exercise"})
		return
	}
	logs, err := s.store.ListExerciseLogsByExercise(r.Context(), exerciseID, parseLimit(r, 50))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if logs == nil {
		logs = []models.ExerciseLog{}
	}
	writeJSON(w, http.StatusOK, logs)
}

func (s *Server) handleRecommendation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	exerciseID := chi.URLParam(r, "id")
	ex := s.catalog.ByID(exerciseID)
	if ex == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown exercise"})
		return
	}

	logs, err := s.store.ListExerciseLogsByExercise(ctx, exerciseID, 10)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	prefs, err := s.store.LoadPrefs(ctx)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	var feedback *models.Feedback
	if fb, ok := prefs.FeedbackByExercise[exerciseID]; ok {
		feedback = &fb
	}

	result := progression.Recommend(ex, logs, feedback, s.prescriptionFor(ctx, exerciseID))
	if result == nil {
		writeJSON(w, http.StatusOK, map[string]any{
			"recommendedNext": nil,
			"reason":          "No history for this exercise yet - log a session first.",
			"safetyFlag":      false,
		})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// prescriptionFor pulls the active program's sets/reps for an exercise so the
// recommendation targets what the plan actually asks for.
func (s *Server) prescriptionFor(ctx context.Context, exerciseID string) progression.Prescription {
	prog, err := s.store.GetLatestProgram(ctx)
	if err != nil || prog == nil {
		return progression.Prescription{}
	}
	for _, day := range prog.Week {
		for _, item := range day.Routine {
			if item.ExerciseID == exerciseID {
				sets := item.Sets
				return progression.Prescription{Sets: &sets, Reps: item.Reps, RestSec: item.RestSec}
			}
		}
	}
	return progression.Prescription{}
}

func (s *Server) handleGetPrefs(w http.ResponseWriter, r *http.Request) {
	prefs, err := s.store.LoadPrefs(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}

func (s *Server) handlePutPrefs(w http.ResponseWriter, r *http.Request) {
	var prefs models.Prefs
	if err := json.NewDecoder(r.Body).Decode(&prefs); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if err := s.store.SavePrefs(r.Context(), &prefs); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="bodycoach-backup.json"`)
	if err := s.backup.Export(r.Context(), w); err != nil {
		s.log.Error("export failed", "error", err)
	}
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	stats, err := s.backup.Import(r.Context(), r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"sessions": stats.SessionsApplied,
		"logs":     stats.LogsApplied,
		"programs": stats.ProgramsApplied,
		"skipped":  stats.Skipped,
		"prefs":    stats.PrefsReplaced,
	})
}

func parseLimit(r *http.Request, fallback int) int {
	v := r.URL.Query().Get("limit")
	if v == "" {
		return fallback
	}
	limit, err := strconv.Atoi(v)
	if err != nil || limit <= 0 {
		return fallback
	}
	return limit
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
