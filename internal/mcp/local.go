package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/meltforce/bodycoach/internal/assessment"
	"github.com/meltforce/bodycoach/internal/catalog"
	"github.com/meltforce/bodycoach/internal/models"
	"github.com/meltforce/bodycoach/internal/phases"
	"github.com/meltforce/bodycoach/internal/progression"
	"github.com/meltforce/bodycoach/internal/storage"
)

// Local implements DataSource directly over the SQLite store and the
// in-process engines. Used when the MCP binary runs on the same machine
// as the data.
type Local struct {
	store   *storage.Store
	catalog *catalog.Catalog
}

// NewLocal creates a Local data source over the given store and catalog.
func NewLocal(store *storage.Store, cat *catalog.Catalog) *Local {
	return &Local{store: store, catalog: cat}
}

// resolveProgram loads the program with the given ID, or the latest program
// when the ID is empty.
func (l *Local) resolveProgram(ctx context.Context, programID string) (*models.Program, error) {
	if programID == "" {
		return l.store.GetLatestProgram(ctx)
	}
	return l.store.GetProgram(ctx, programID)
}

func (l *Local) GetProgram(ctx context.Context, programID string) (*models.Program, error) {
	return l.resolveProgram(ctx, programID)
}

func (l *Local) GetProgress(ctx context.Context, programID string) (*models.ProgramProgress, error) {
	prog, err := l.resolveProgram(ctx, programID)
	if err != nil {
		return nil, err
	}
	if prog == nil {
		return nil, nil
	}
	return l.store.RecomputeProgress(ctx, prog, models.NowISO())
}

func (l *Local) GetNextWeekPlan(ctx context.Context, programID string) (*WeekOutlook, error) {
	prog, err := l.resolveProgram(ctx, programID)
	if err != nil {
		return nil, err
	}
	if prog == nil {
		return nil, nil
	}

	sessions, err := l.store.ListSessionsByProgram(ctx, prog.ID)
	if err != nil {
		return nil, err
	}
	sessionIDs := make([]string, len(sessions))
	for i, sess := range sessions {
		sessionIDs[i] = sess.ID
	}
	logs, err := l.store.ListExerciseLogsBySessionIDs(ctx, sessionIDs)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	goal := "Improve posture"
	if prog.GoalTrack != nil && *prog.GoalTrack != "" {
		goal = *prog.GoalTrack
	}
	phase := phases.PhaseFor(phases.WeekIndexFor(prog, now), goal)
	signals := phases.DeriveSignals(sessions, logs, prog.DaysPerWeek, now)
	signals.PhaseName = phase.Name

	return &WeekOutlook{
		Phase:        phase,
		Signals:      signals,
		NextWeekPlan: phases.PlanNextWeek(signals),
	}, nil
}

func (l *Local) GetRecommendation(ctx context.Context, exerciseID string) (*progression.Result, error) {
	ex := l.catalog.ByID(exerciseID)
	if ex == nil {
		return nil, fmt.Errorf("unknown exercise %q", exerciseID)
	}

	logs, err := l.store.ListExerciseLogsByExercise(ctx, exerciseID, 10)
	if err != nil {
		return nil, err
	}
	prefs, err := l.store.LoadPrefs(ctx)
	if err != nil {
		return nil, err
	}
	var feedback *models.Feedback
	if fb, ok := prefs.FeedbackByExercise[exerciseID]; ok {
		feedback = &fb
	}

	result := progression.Recommend(ex, logs, feedback, l.prescriptionFor(ctx, exerciseID))
	if result == nil {
		return &progression.Result{Reason: "No history for this exercise yet - log a session first."}, nil
	}
	return result, nil
}

// prescriptionFor pulls the active program's sets/reps for an exercise so the
// recommendation targets what the plan actually asks for.
func (l *Local) prescriptionFor(ctx context.Context, exerciseID string) progression.Prescription {
	prog, err := l.store.GetLatestProgram(ctx)
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

func (l *Local) ListExercises(ctx context.Context) ([]catalog.Exercise, error) {
	return l.catalog.All(), nil
}

func (l *Local) GetExerciseHistory(ctx context.Context, exerciseID string, limit int) ([]models.ExerciseLog, error) {
	if l.catalog.ByID(exerciseID) == nil {
		return nil, fmt.Errorf("unknown exercise %q", exerciseID)
	}
	return l.store.ListExerciseLogsByExercise(ctx, exerciseID, limit)
}

func (l *Local) GetAssessment(ctx context.Context, q *models.Questionnaire, notes string) (*assessment.Report, error) {
	return assessment.BuildReport(assessment.Input{
		Questionnaire: q,
		UserNotes:     notes,
	}), nil
}
