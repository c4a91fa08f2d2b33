package mcp

import (
	"context"

	"github.com/meltforce/bodycoach/internal/assessment"
	"github.com/meltforce/bodycoach/internal/catalog"
	"github.com/meltforce/bodycoach/internal/models"
	"github.com/meltforce/bodycoach/internal/phases"
	"github.com/meltforce/bodycoach/internal/progression"
)

// WeekOutlook bundles the current phase, the derived signals, and the plan
// for the coming week. Matches the next-week REST response body.
type WeekOutlook struct {
	Phase        models.Phase        `json:"phase"`
	Signals      phases.Signals      `json:"signals"`
	NextWeekPlan models.NextWeekPlan `json:"nextWeekPlan"`
}

// DataSource abstracts the data layer for MCP tools. Both Local (SQLite) and
// HTTPClient (remote via REST API) satisfy this interface. An empty programID
// means the most recently created program.
type DataSource interface {
	GetProgram(ctx context.Context, programID string) (*models.Program, error)
	GetProgress(ctx context.Context, programID string) (*models.ProgramProgress, error)
	GetNextWeekPlan(ctx context.Context, programID string) (*WeekOutlook, error)
	GetRecommendation(ctx context.Context, exerciseID string) (*progression.Result, error)
	ListExercises(ctx context.Context) ([]catalog.Exercise, error)
	GetExerciseHistory(ctx context.Context, exerciseID string, limit int) ([]models.ExerciseLog, error)
	GetAssessment(ctx context.Context, q *models.Questionnaire, notes string) (*assessment.Report, error)
}

// Compile-time checks: both data sources satisfy DataSource.
var (
	_ DataSource = (*Local)(nil)
	_ DataSource = (*HTTPClient)(nil)
)
