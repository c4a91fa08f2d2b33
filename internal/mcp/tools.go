package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/meltforce/bodycoach/internal/models"
)

// --- Tool definitions ---

var toolGetProgram = mcp.NewTool("get_program",
	mcp.WithDescription("Retrieve a training program: days per week, per-day routines with sets/reps/rest, current phase, and the next-week plan."),
	mcp.WithString("program_id", mcp.Description("Program ID. Defaults to the most recently created program.")),
)

var toolGetProgress = mcp.NewTool("get_progress",
	mcp.WithDescription("Round-robin progress through a program's week: completed day indices and the next day to train."),
	mcp.WithString("program_id", mcp.Description("Program ID. Defaults to the most recently created program.")),
)

var toolGetNextWeekPlan = mcp.NewTool("get_next_week_plan",
	mcp.WithDescription("Derive the coming week's adaptation from the last rolling week of sessions: compliance, pain and fatigue flags, current phase, and the resulting progress/hold/regress plan."),
	mcp.WithString("program_id", mcp.Description("Program ID. Defaults to the most recently created program.")),
)

var toolGetRecommendation = mcp.NewTool("get_recommendation",
	mcp.WithDescription("Compute the next prescribed target for an exercise from its log history and felt-difficulty feedback. Pain-driven regressions carry a safety flag."),
	mcp.WithString("exercise_id", mcp.Required(), mcp.Description("Exercise ID from the catalog (e.g. glute-bridges, dumbbell-rows)")),
)

var toolListExercises = mcp.NewTool("list_exercises",
	mcp.WithDescription("List the full exercise catalog with categories, movement patterns, load types, required equipment, and coaching cues."),
)

var toolGetExerciseHistory = mcp.NewTool("get_exercise_history",
	mcp.WithDescription("Retrieve logged sets for an exercise, most recent first. Includes weight, reps per set, felt rating, and computed volume."),
	mcp.WithString("exercise_id", mcp.Required(), mcp.Description("Exercise ID from the catalog")),
	mcp.WithNumber("limit", mcp.Description("Maximum number of logs to return. Defaults to 20.")),
)

var toolGetAssessment = mcp.NewTool("get_assessment",
	mcp.WithDescription("Build a posture assessment report from intake answers: observations with focus tags and suggested interventions, prioritized focus areas, and a summary. Self-report only; no photos."),
	mcp.WithString("questionnaire", mcp.Required(), mcp.Description(`Intake answers as JSON: {"goals": "...", "painAreas": ["Neck"], "experience": "Beginner", "equipment": ["Resistance bands"], "daysPerWeek": 3}`)),
	mcp.WithString("notes", mcp.Description("Free-text notes from the user, included as an observation")),
)

// --- Tool handlers ---

func (h *handlers) getProgram(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	prog, err := h.ds.GetProgram(ctx, req.GetString("program_id", ""))
	if err != nil {
		h.log.Error("mcp get_program", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if prog == nil {
		return mcp.NewToolResultError("no program found - create one first"), nil
	}

	result, err := mcp.NewToolResultJSON(prog)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getProgress(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	progress, err := h.ds.GetProgress(ctx, req.GetString("program_id", ""))
	if err != nil {
		h.log.Error("mcp get_progress", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if progress == nil {
		return mcp.NewToolResultError("no program found - create one first"), nil
	}

	result, err := mcp.NewToolResultJSON(progress)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getNextWeekPlan(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	outlook, err := h.ds.GetNextWeekPlan(ctx, req.GetString("program_id", ""))
	if err != nil {
		h.log.Error("mcp get_next_week_plan", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if outlook == nil {
		return mcp.NewToolResultError("no program found - create one first"), nil
	}

	result, err := mcp.NewToolResultJSON(outlook)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getRecommendation(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exerciseID, err := req.RequireString("exercise_id")
	if err != nil {
		return mcp.NewToolResultError("exercise_id parameter is required"), nil
	}

	rec, err := h.ds.GetRecommendation(ctx, exerciseID)
	if err != nil {
		h.log.Error("mcp get_recommendation", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(rec)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) listExercises(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exercises, err := h.ds.ListExercises(ctx)
	if err != nil {
		h.log.Error("mcp list_exercises", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(exercises)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getExerciseHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exerciseID, err := req.RequireString("exercise_id")
	if err != nil {
		return mcp.NewToolResultError("exercise_id parameter is required"), nil
	}
	limit := req.GetInt("limit", 20)

	logs, err := h.ds.GetExerciseHistory(ctx, exerciseID, limit)
	if err != nil {
		h.log.Error("mcp get_exercise_history", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(logs)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getAssessment(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("questionnaire")
	if err != nil {
		return mcp.NewToolResultError("questionnaire parameter is required"), nil
	}

	var q models.Questionnaire
	if err := json.Unmarshal([]byte(raw), &q); err != nil {
		return mcp.NewToolResultError("invalid questionnaire JSON: " + err.Error()), nil
	}

	report, err := h.ds.GetAssessment(ctx, &q, req.GetString("notes", ""))
	if err != nil {
		h.log.Error("mcp get_assessment", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(report)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
