package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("BodyCoach", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("BodyCoach posture and strength coaching server. Query the training program, week-by-week adaptation plan, per-exercise progression recommendations, exercise history, and posture assessments."),
	)

	h := &handlers{ds: ds, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolGetProgram, Handler: h.getProgram},
		server.ServerTool{Tool: toolGetProgress, Handler: h.getProgress},
		server.ServerTool{Tool: toolGetNextWeekPlan, Handler: h.getNextWeekPlan},
		server.ServerTool{Tool: toolGetRecommendation, Handler: h.getRecommendation},
		server.ServerTool{Tool: toolListExercises, Handler: h.listExercises},
		server.ServerTool{Tool: toolGetExerciseHistory, Handler: h.getExerciseHistory},
		server.ServerTool{Tool: toolGetAssessment, Handler: h.getAssessment},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resCurrentProgram, Handler: h.currentProgram},
		server.ServerResource{Resource: resWeeklyPlan, Handler: h.weeklyPlan},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

// --- Resource definitions ---

var resCurrentProgram = mcp.NewResource(
	"bodycoach://current_program",
	"Current Program",
	mcp.WithResourceDescription("The active multi-week training program: days per week, exercises with sets/reps/rest, phase, and next-week plan"),
	mcp.WithMIMEType("application/json"),
)

var resWeeklyPlan = mcp.NewResource(
	"bodycoach://weekly_plan",
	"Weekly Plan",
	mcp.WithResourceDescription("This week's phase, derived training signals, and the adaptation plan for the coming week"),
	mcp.WithMIMEType("application/json"),
)
