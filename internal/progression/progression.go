// Package progression computes the next prescribed target for an exercise
// from its log history and felt-difficulty feedback.
package progression

import (
	"math"

	"github.com/meltforce/bodycoach/internal/catalog"
	"github.com/meltforce/bodycoach/internal/models"
)

// Recommended is the suggested target for the next session. Nil fields mean
// "no change suggested" for that variable.
type Recommended struct {
	Sets    *int     `json:"sets,omitempty"`
	Reps    *int     `json:"reps,omitempty"`
	Weight  *float64 `json:"weight,omitempty"`
	Tempo   *string  `json:"tempo,omitempty"`
	RestSec *int     `json:"restSeconds,omitempty"`
}

// Result pairs a recommendation with the reason it was chosen. Reason is
// never empty. SafetyFlag marks pain-driven regressions.
type Result struct {
	RecommendedNext Recommended `json:"recommendedNext"`
	Reason          string      `json:"reason"`
	SafetyFlag      bool        `json:"safetyFlag,omitempty"`
}

// Prescription is the currently prescribed sets/reps for the exercise, as
// authored (range strings allowed).
type Prescription struct {
	Sets    *string `json:"sets,omitempty"`
	Reps    *string `json:"reps,omitempty"`
	RestSec *int    `json:"restSec,omitempty"`
}

const (
	tempoSlow    = "slow and controlled"
	tempoControl = "2-1-2"
	tempoPause   = "3-1-3"
)

// Recommend computes the next target. logs must be ordered most recent
// first (updatedAt descending); callers sort before calling. Returns nil when
// there is no history - callers display a neutral "keep targets consistent"
// default instead of an error.
func Recommend(ex *catalog.Exercise, logs []models.ExerciseLog, feedback *models.Feedback, rx Prescription) *Result {
	if len(logs) == 0 {
		return nil
	}
	latest := &logs[0]

	var rating models.FeltRating
	switch {
	case feedback != nil:
		rating = feedback.Rating
	case latest.Felt != nil:
		rating = *latest.Felt
	}

	setRange := parseField(rx.Sets, latest.SetsPlanned)
	repRange := parseField(rx.Reps, nil)

	if rating == models.FeltPain {
		res := &Result{
			Reason:     "Pain flagged last time - regressing to keep this smooth.",
			SafetyFlag: true,
		}
		res.RecommendedNext.Reps = repRange.Min
		res.RecommendedNext.Sets = setRange.Min
		res.RecommendedNext.Tempo = strPtr(tempoSlow)
		return res
	}

	completedSets := 0
	switch {
	case latest.SetsCompleted != nil:
		completedSets = *latest.SetsCompleted
	case latest.SetsPlanned != nil:
		completedSets = *latest.SetsPlanned
	case setRange.Min != nil:
		completedSets = *setRange.Min
	}
	repsCompleted, hasReps := latest.RepsPerSet()

	metSets := setRange.Min == nil || completedSets >= *setRange.Min
	metReps := repRange.Min == nil || !hasReps || repsCompleted >= *repRange.Min
	metTarget := metSets && metReps

	switch ex.LoadType {
	case models.LoadWeighted:
		return recommendWeighted(latest, rating, metTarget, repsCompleted, hasReps, setRange, repRange)
	case models.LoadBodyweight, models.LoadAssisted:
		return recommendBodyweight(rating, metTarget, repsCompleted, hasReps, repRange)
	default:
		return &Result{Reason: "Keep the same target and focus on consistency."}
	}
}

func recommendWeighted(latest *models.ExerciseLog, rating models.FeltRating, metTarget bool, repsCompleted int, hasReps bool, setRange, repRange models.Range) *Result {
	weight := 0.0
	if latest.Weight != nil {
		weight = *latest.Weight
	}

	if !metTarget {
		res := &Result{Reason: "Last session was short of the target - ease reps and focus on control."}
		if weight > 0 {
			res.RecommendedNext.Weight = &weight
		}
		if repRange.Min != nil {
			next := *repRange.Min
			if hasReps {
				next = repsCompleted
			}
			res.RecommendedNext.Reps = intPtr(repRange.Clamp(next - 1))
		}
		return res
	}

	if rating == models.FeltHard {
		res := &Result{Reason: "Keep the load and build a little more volume next time."}
		if weight > 0 {
			res.RecommendedNext.Weight = &weight
		}
		if repRange.Max != nil && hasReps {
			res.RecommendedNext.Reps = intPtr(repRange.Clamp(repsCompleted + 1))
		}
		return res
	}

	// Clean hit: tiered load bump, reset reps/sets to prescribed minimums.
	var increase float64
	switch {
	case weight >= 150:
		increase = weight * 0.025
	case weight >= 50:
		increase = 5
	default:
		increase = 2.5
	}
	next := roundToNearest(weight+increase, 2.5)

	res := &Result{Reason: "You hit the target cleanly - adding a small load bump."}
	res.RecommendedNext.Weight = &next
	res.RecommendedNext.Reps = repRange.Min
	res.RecommendedNext.Sets = setRange.Min
	return res
}

func recommendBodyweight(rating models.FeltRating, metTarget bool, repsCompleted int, hasReps bool, repRange models.Range) *Result {
	if !metTarget {
		res := &Result{Reason: "Keep it smooth - slightly lower reps and control the tempo."}
		if repRange.Min != nil {
			next := *repRange.Min
			if hasReps {
				next = repsCompleted
			}
			res.RecommendedNext.Reps = intPtr(repRange.Clamp(next - 1))
		}
		res.RecommendedNext.Tempo = strPtr(tempoSlow)
		return res
	}

	if rating == models.FeltHard {
		res := &Result{Reason: "Hold reps steady and improve control before pushing volume."}
		if hasReps {
			res.RecommendedNext.Reps = &repsCompleted
		} else {
			res.RecommendedNext.Reps = repRange.Min
		}
		res.RecommendedNext.Tempo = strPtr(tempoControl)
		return res
	}

	if repRange.Max != nil && hasReps {
		next := repRange.Clamp(repsCompleted + 1)
		if next < *repRange.Max {
			return &Result{
				RecommendedNext: Recommended{Reps: &next},
				Reason:          "Add a rep to keep building momentum.",
			}
		}
	}

	res := &Result{Reason: "At the top of the range - add tempo or pause for progression."}
	if repRange.Max != nil {
		res.RecommendedNext.Reps = repRange.Max
	} else if hasReps {
		res.RecommendedNext.Reps = &repsCompleted
	}
	res.RecommendedNext.Tempo = strPtr(tempoPause)
	return res
}

// parseField parses a prescription range string, falling back to a recorded
// integer when the string is absent.
func parseField(value *string, fallback *int) models.Range {
	if value != nil {
		return models.ParseRange(*value)
	}
	if fallback != nil {
		return models.RangeFromInt(*fallback)
	}
	return models.Range{}
}

func roundToNearest(value, step float64) float64 {
	return math.Round(value/step) * step
}

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }
