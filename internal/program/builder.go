// Package program generates weekly training programs and one-off routines
// from a questionnaire, adapting authored day templates to the user's
// available equipment.
package program

import (
	"time"

	"github.com/meltforce/bodycoach/internal/catalog"
	"github.com/meltforce/bodycoach/internal/equipment"
	"github.com/meltforce/bodycoach/internal/models"
	"github.com/meltforce/bodycoach/internal/phases"
)

// Builder generates programs against a loaded exercise catalog.
type Builder struct {
	catalog *catalog.Catalog
}

// NewBuilder returns a Builder over the given catalog.
func NewBuilder(c *catalog.Catalog) *Builder {
	return &Builder{catalog: c}
}

// intensityFor picks the main-work sets range. Pain reduction trains lighter,
// advanced trainees heavier, everyone else in between.
func intensityFor(q *models.Questionnaire) string {
	switch {
	case q.Goals == "Reduce pain":
		return "2-3"
	case q.Experience == "Advanced":
		return "4-5"
	default:
		return "3-4"
	}
}

// makeItem builds a routine item from a template slot, denormalizing the
// exercise's load type and cues.
func (b *Builder) makeItem(t templateItem) models.ProgramRoutineItem {
	item := models.ProgramRoutineItem{
		ExerciseID: t.exerciseID,
		Sets:       t.sets,
		LoadType:   models.LoadBodyweight,
	}
	if t.reps != "" {
		reps := t.reps
		item.Reps = &reps
	}
	if t.durationSec > 0 {
		d := t.durationSec
		item.DurationSec = &d
	}
	rest := t.restSec
	if rest == 0 {
		rest = 60
	}
	item.RestSec = &rest
	if ex := b.catalog.ByID(t.exerciseID); ex != nil {
		item.LoadType = ex.LoadType
		item.Cues = ex.Cues
	}
	return item
}

// pickFallback finds a replacement exercise in the same category: first an
// eligible same-load-type match, then any eligible match, then a no-equipment
// match, all in catalog order.
func (b *Builder) pickFallback(cat models.Category, load models.LoadType, avail equipment.Availability) *catalog.Exercise {
	all := b.catalog.All()

	var eligible []*catalog.Exercise
	for i := range all {
		ex := &all[i]
		if ex.Category == cat && equipment.Eligible(ex.Equipment, avail) {
			eligible = append(eligible, ex)
		}
	}
	for _, ex := range eligible {
		if ex.LoadType == load {
			return ex
		}
	}
	if len(eligible) > 0 {
		return eligible[0]
	}
	for i := range all {
		ex := &all[i]
		if ex.Category == cat && ex.RequiresOnly(equipment.None) {
			return ex
		}
	}
	for i := range all {
		if all[i].Category == cat {
			return &all[i]
		}
	}
	return nil
}

// ensureEligible swaps an item's exercise for a fallback when the user lacks
// the equipment for it. The prescription (sets, reps, durations) is kept; the
// load type and cues follow the replacement.
func (b *Builder) ensureEligible(item models.ProgramRoutineItem, avail equipment.Availability) models.ProgramRoutineItem {
	ex := b.catalog.ByID(item.ExerciseID)
	if ex == nil {
		return item
	}
	if equipment.Eligible(ex.Equipment, avail) {
		return item
	}
	fallback := b.pickFallback(ex.Category, ex.LoadType, avail)
	if fallback == nil {
		return item
	}
	item.ExerciseID = fallback.ID
	item.LoadType = fallback.LoadType
	item.Cues = fallback.Cues
	return item
}

// defaultPrescription is the back-fill prescription for a coverage addition.
func defaultPrescription(p models.MovementPattern) templateItem {
	switch p {
	case models.PatternMobility:
		return templateItem{sets: "2", reps: "6-8", durationSec: 60, restSec: 60}
	case models.PatternCore:
		return templateItem{sets: "2-3", reps: "8-12", durationSec: 60, restSec: 60}
	default:
		return templateItem{sets: "3", reps: "8-12", durationSec: 75, restSec: 60}
	}
}

var bandPreferredPatterns = map[models.MovementPattern]bool{
	models.PatternPull: true,
	models.PatternPush: true,
	models.PatternCore: true,
}

// choosePatternExercise picks the first eligible unused exercise covering the
// pattern. When bands are available, band exercises win for pull, push, and
// core slots. Falls back to a no-equipment match.
func (b *Builder) choosePatternExercise(pattern models.MovementPattern, avail equipment.Availability, preferBands bool, used map[string]bool) *catalog.Exercise {
	all := b.catalog.All()

	var eligible []*catalog.Exercise
	for i := range all {
		ex := &all[i]
		if ex.HasPattern(pattern) && equipment.Eligible(ex.Equipment, avail) && !used[ex.ID] {
			eligible = append(eligible, ex)
		}
	}

	if preferBands && bandPreferredPatterns[pattern] {
		for _, ex := range eligible {
			if ex.RequiresOnly(equipment.Bands) {
				return ex
			}
		}
	}
	if len(eligible) > 0 {
		return eligible[0]
	}

	for i := range all {
		ex := &all[i]
		if ex.HasPattern(pattern) && ex.RequiresOnly(equipment.None) && !used[ex.ID] {
			return ex
		}
	}
	return nil
}

// ensureCoverage back-fills a day so every required movement pattern appears
// at least once. Additions go to the end of the routine in pattern priority
// order; patterns with no available exercise are skipped.
func (b *Builder) ensureCoverage(day models.ProgramDay, avail equipment.Availability, preferBands bool) models.ProgramDay {
	used := map[string]bool{}
	covered := map[models.MovementPattern]bool{}
	for _, item := range day.Routine {
		used[item.ExerciseID] = true
		if ex := b.catalog.ByID(item.ExerciseID); ex != nil {
			for _, p := range ex.MovementPattern {
				covered[p] = true
			}
		}
	}

	for _, pattern := range models.RequiredPatterns {
		if covered[pattern] {
			continue
		}
		ex := b.choosePatternExercise(pattern, avail, preferBands, used)
		if ex == nil {
			continue
		}
		used[ex.ID] = true
		rx := defaultPrescription(pattern)
		rx.exerciseID = ex.ID
		day.Routine = append(day.Routine, b.makeItem(rx))
	}
	return day
}

// Build generates a weekly program from the questionnaire. Day templates are
// adapted to the user's equipment: ineligible exercises are swapped within
// their category, and minimal-equipment users get pattern coverage back-fill.
func (b *Builder) Build(q *models.Questionnaire, programID string, now time.Time) *models.Program {
	avail := equipment.Normalize(q.Equipment)
	preferBands := avail.Has(equipment.Bands)
	intensity := intensityFor(q)

	templates := templatesForDays(q.DaysPerWeek, intensity)
	days := make([]models.ProgramDay, 0, len(templates))
	for i, t := range templates {
		day := models.ProgramDay{
			DayIndex:  i,
			Title:     t.title,
			FocusTags: t.focusTags,
		}
		for _, item := range t.items {
			day.Routine = append(day.Routine, b.ensureEligible(b.makeItem(item), avail))
		}
		if avail.Has(equipment.None) || avail.Has(equipment.Bands) {
			day = b.ensureCoverage(day, avail, preferBands)
		}
		days = append(days, day)
	}

	goal := q.Goals
	if goal == "" {
		goal = "Improve posture"
	}
	phase := phases.PhaseFor(1, goal)
	plan := phases.PlanNextWeek(phases.Signals{
		ComplianceRate: 0,
		PainFlag:       len(q.PainAreas) > 0,
		FatigueFlag:    false,
		PhaseName:      phase.Name,
	})

	ts := now.UTC().Format(time.RFC3339)
	goalTrack := q.Goals
	return &models.Program{
		ID:             programID,
		CreatedAt:      ts,
		UpdatedAt:      ts,
		GoalTrack:      &goalTrack,
		DaysPerWeek:    q.DaysPerWeek,
		SessionMinutes: &models.MinutesRange{Min: 45, Max: 60},
		Phase:          &phase,
		NextWeekPlan:   &plan,
		Week:           days,
	}
}
