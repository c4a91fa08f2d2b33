package program

import (
	"fmt"
	"strings"

	"github.com/meltforce/bodycoach/internal/equipment"
	"github.com/meltforce/bodycoach/internal/models"
)

// RoutineItem is one exercise slot in a quick routine.
type RoutineItem struct {
	ExerciseID  string `json:"exerciseId"`
	Sets        string `json:"sets"`
	Reps        string `json:"reps"`
	DurationSec int    `json:"durationSec,omitempty"`
}

// RoutineSection groups routine items by session role.
type RoutineSection struct {
	Title string        `json:"title"`
	Items []RoutineItem `json:"items"`
}

// Routine is a single-session plan generated straight from the questionnaire,
// without the weekly structure of a full program.
type Routine struct {
	Summary    string           `json:"summary"`
	Priorities []string         `json:"priorities"`
	Observed   []string         `json:"observed"`
	Sections   []RoutineSection `json:"sections"`
}

// routineVolume is the main-work volume by experience and goal. Pain reduction
// overrides experience.
func routineVolume(experience, goal string) (sets, reps string) {
	switch {
	case goal == "Reduce pain":
		return "2-3", "8-10"
	case experience == "Beginner":
		return "3", "8-12"
	case experience == "Advanced":
		return "4-5", "8-12"
	default:
		return "4", "8-12"
	}
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}

// BuildRoutine generates a one-off session from the questionnaire. Sections
// flex with the equipment on hand: a foam roller adds warmup rolling, bands
// swap in for scapular work, and gym access unlocks cable and loaded slots.
func (b *Builder) BuildRoutine(q *models.Questionnaire) *Routine {
	sets, reps := routineVolume(q.Experience, q.Goals)
	avail := equipment.Normalize(q.Equipment)
	hasBands := avail.Has(equipment.Bands)
	hasDumbbells := avail.Has(equipment.Dumbbells)
	hasRoller := avail.Has(equipment.FoamRoller)
	hasGym := avail.HasGym

	warmup := []RoutineItem{
		{ExerciseID: "cat-cow", Sets: "2", Reps: "6-8", DurationSec: 60},
		{ExerciseID: "wall-slides", Sets: "2", Reps: "8-10", DurationSec: 60},
		{ExerciseID: "thoracic-rotation", Sets: "2", Reps: "6-8 per side", DurationSec: 60},
	}
	if hasRoller {
		warmup = append(warmup, RoutineItem{ExerciseID: "foam-roll-upper-back", Sets: "1", Reps: "60 sec", DurationSec: 60})
	}

	activation := []RoutineItem{
		{ExerciseID: "glute-bridges", Sets: sets, Reps: reps, DurationSec: 75},
		{ExerciseID: "bird-dog", Sets: "2-3", Reps: "6-8 per side", DurationSec: 75},
	}
	if hasBands {
		activation = append(activation, RoutineItem{ExerciseID: "band-pull-aparts", Sets: sets, Reps: reps, DurationSec: 75})
	} else {
		activation = append(activation, RoutineItem{ExerciseID: "scapular-pushups", Sets: sets, Reps: reps, DurationSec: 75})
	}

	var main []RoutineItem
	if hasDumbbells || hasGym {
		main = append(main, RoutineItem{ExerciseID: "dumbbell-rows", Sets: sets, Reps: reps, DurationSec: 90})
	} else {
		main = append(main, RoutineItem{ExerciseID: "prone-ytw", Sets: sets, Reps: "6-8 each", DurationSec: 90})
	}
	if hasGym || hasBands {
		main = append(main, RoutineItem{ExerciseID: "face-pull", Sets: "3-4", Reps: "10-12", DurationSec: 90})
	}
	if hasGym {
		main = append(main, RoutineItem{ExerciseID: "pallof-press", Sets: "3", Reps: "8-10 per side", DurationSec: 90})
	}

	cooldown := []RoutineItem{
		{ExerciseID: "hip-flexor-stretch", Sets: "2", Reps: "30 sec per side", DurationSec: 60},
		{ExerciseID: "thread-the-needle", Sets: "2", Reps: "5-6 per side", DurationSec: 60},
		{ExerciseID: "hamstring-stretch", Sets: "2", Reps: "30 sec per side", DurationSec: 60},
	}
	if contains(q.PainAreas, "Neck") {
		cooldown = append(cooldown, RoutineItem{ExerciseID: "chin-tucks", Sets: "2", Reps: "8-10", DurationSec: 60})
	}
	if contains(q.PainAreas, "Lower back") {
		cooldown = append(cooldown, RoutineItem{ExerciseID: "dead-bug", Sets: "2", Reps: "6-8 per side", DurationSec: 75})
	}

	equipmentDesc := "none"
	if len(q.Equipment) > 0 {
		equipmentDesc = strings.Join(q.Equipment, ", ")
	}
	summary := fmt.Sprintf("Goal focus: %s. Primary equipment: %s. Experience: %s.", q.Goals, equipmentDesc, q.Experience)

	priorities := make([]string, 0, 3)
	if q.Goals == "Reduce pain" {
		priorities = append(priorities, "Daily gentle mobility")
	} else {
		priorities = append(priorities, "Posture strength")
	}
	if len(q.PainAreas) > 0 {
		priorities = append(priorities, fmt.Sprintf("Focus area: %s", q.PainAreas[0]))
	} else {
		priorities = append(priorities, "Balanced full-body support")
	}
	if contains(q.Equipment, "none") {
		priorities = append(priorities, "Bodyweight consistency")
	} else {
		priorities = append(priorities, "Use your available equipment")
	}

	var observed []string
	if contains(q.PainAreas, "Neck") {
		observed = append(observed, "Neck tension tends to show with screen-heavy days.")
	}
	if contains(q.PainAreas, "Upper back") {
		observed = append(observed, "Upper-back tightness often pairs with rounded shoulders.")
	}
	if contains(q.PainAreas, "Lower back") {
		observed = append(observed, "Low-back soreness can reflect core fatigue.")
	}
	if len(q.PainAreas) == 0 {
		observed = append(observed, "No pain areas selected; focus stays preventive.")
	}
	if len(observed) < 2 {
		observed = append(observed, "Consistency matters more than intensity right now.")
	}
	if len(observed) > 3 {
		observed = observed[:3]
	}

	return &Routine{
		Summary:    summary,
		Priorities: priorities,
		Observed:   observed,
		Sections: []RoutineSection{
			{Title: "Warm-up", Items: warmup},
			{Title: "Activation", Items: activation},
			{Title: "Main", Items: main},
			{Title: "Cooldown", Items: cooldown},
		},
	}
}
