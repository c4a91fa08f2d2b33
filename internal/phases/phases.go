// Package phases maps program weeks onto multi-week training phases and
// derives the next-week adjustment plan from aggregate weekly signals.
package phases

import (
	"fmt"

	"github.com/meltforce/bodycoach/internal/models"
)

type phaseDef struct {
	name      string
	weekStart int
	weekEnd   int // 0 = open-ended
	goal      string
}

// The phase table is fixed: ranges are inclusive and the last phase is
// open-ended.
var phaseTable = []phaseDef{
	{
		name:      "Phase 1: Restore & Control",
		weekStart: 1,
		weekEnd:   2,
		goal:      "mobility, activation, motor control, pain reduction",
	},
	{
		name:      "Phase 2: Strength & Capacity",
		weekStart: 3,
		weekEnd:   6,
		goal:      "progressive overload, capacity, technique",
	},
	{
		name:      "Phase 3: Performance & Aesthetics",
		weekStart: 7,
		weekEnd:   0,
		goal:      "hypertrophy/strength bias based on goal",
	},
}

// PhaseFor returns the active phase for the given week. weekIndex is clamped
// to >= 1. A non-empty goal is stored verbatim; otherwise the phase's default
// goal text is used.
func PhaseFor(weekIndex int, goal string) models.Phase {
	if weekIndex < 1 {
		weekIndex = 1
	}

	match := phaseTable[0]
	for _, def := range phaseTable {
		if weekIndex >= def.weekStart && (def.weekEnd == 0 || weekIndex <= def.weekEnd) {
			match = def
			break
		}
	}

	weekCount := 0
	if match.weekEnd != 0 {
		weekCount = match.weekEnd - match.weekStart + 1
	}

	if goal == "" {
		goal = match.goal
	}

	return models.Phase{
		Name:      match.name,
		WeekIndex: weekIndex,
		WeekCount: weekCount,
		Goal:      goal,
	}
}

// Signals are the aggregate inputs to next-week planning, derived from the
// most recent rolling week of sessions and logs.
type Signals struct {
	ComplianceRate float64
	PainFlag       bool
	FatigueFlag    bool
	PhaseName      string
}

// PlanNextWeek derives the coming week's adjustment as a priority cascade:
// pain regresses, fatigue holds load, strong compliance progresses, and the
// default repeats the week. Exactly one branch fires; this is total.
func PlanNextWeek(s Signals) models.NextWeekPlan {
	if s.PainFlag {
		return models.NextWeekPlan{
			Summary: "Next week: regress intensity and prioritize comfortable movement.",
			Change:  "Reduce range or load on 1-2 exercises; add extra mobility.",
			Reason:  "Pain flagged last week - regress to keep this smooth.",
		}
	}

	if s.FatigueFlag {
		return models.NextWeekPlan{
			Summary: "Next week: hold load and focus on control.",
			Change:  "Keep weights the same; aim for cleaner reps or tempo work.",
			Reason:  "Fatigue was high - hold load and refine technique.",
		}
	}

	if s.ComplianceRate >= 0.75 {
		return models.NextWeekPlan{
			Summary: "Next week: progress one variable on 1-2 lifts.",
			Change:  "Add 1-2 reps or a small load bump within your range.",
			Reason:  fmt.Sprintf("Strong compliance in %s.", s.PhaseName),
		}
	}

	return models.NextWeekPlan{
		Summary: "Next week: repeat this week and build consistency.",
		Change:  "Keep targets steady; focus on showing up.",
		Reason:  "Consistency first before adding stress.",
	}
}
