package models

import "time"

// LoadType classifies how resistance is applied to an exercise.
type LoadType string

const (
	LoadWeighted   LoadType = "weighted"
	LoadBodyweight LoadType = "bodyweight"
	LoadTimed      LoadType = "timed"
	LoadAssisted   LoadType = "assisted"
)

// FeltRating is the subjective post-set/session difficulty feedback.
type FeltRating string

const (
	FeltEasy     FeltRating = "easy"
	FeltModerate FeltRating = "moderate"
	FeltHard     FeltRating = "hard"
	FeltPain     FeltRating = "pain"
)

// PainLocation is a coarse body region for pain feedback.
type PainLocation string

const (
	PainNeck      PainLocation = "neck"
	PainShoulder  PainLocation = "shoulder"
	PainUpperBack PainLocation = "upper back"
	PainLowerBack PainLocation = "lower back"
	PainHips      PainLocation = "hips"
	PainKnees     PainLocation = "knees"
	PainOther     PainLocation = "other"
)

// Category groups exercises by their role within a session.
type Category string

const (
	CategoryWarmup     Category = "warmup"
	CategoryActivation Category = "activation"
	CategoryMain       Category = "main"
	CategoryCooldown   Category = "cooldown"
)

// MovementPattern is the functional category used for day-coverage balancing.
type MovementPattern string

const (
	PatternSquat    MovementPattern = "squat"
	PatternHinge    MovementPattern = "hinge"
	PatternPush     MovementPattern = "push"
	PatternPull     MovementPattern = "pull"
	PatternCore     MovementPattern = "core"
	PatternMobility MovementPattern = "mobility"
)

// RequiredPatterns is the coverage set every program day aims for, in back-fill order.
var RequiredPatterns = []MovementPattern{
	PatternSquat, PatternHinge, PatternPush, PatternPull, PatternCore, PatternMobility,
}

// Questionnaire is the user intake driving program generation.
type Questionnaire struct {
	Goals       string   `json:"goals"`
	PainAreas   []string `json:"painAreas"`
	Experience  string   `json:"experience"`
	Equipment   []string `json:"equipment"`
	DaysPerWeek int      `json:"daysPerWeek"`
}

// Feedback is per-exercise subjective feedback attached to a log or prefs.
type Feedback struct {
	Rating       FeltRating    `json:"rating"`
	PainLocation *PainLocation `json:"painLocation,omitempty"`
	Notes        *string       `json:"notes,omitempty"`
}

// SessionRecord is one guided workout. Created at session start, finalized at
// completion. Notes encode the program day as "dayIndex:N".
type SessionRecord struct {
	ID           string        `json:"id"`
	StartedAt    *string       `json:"startedAt"`
	CompletedAt  *string       `json:"completedAt"`
	CreatedAt    string        `json:"createdAt"`
	UpdatedAt    string        `json:"updatedAt"`
	RoutineID    *string       `json:"routineId"`
	DurationSec  *int          `json:"durationSec"`
	Notes        *string       `json:"notes"`
	Feedback     *FeltRating   `json:"sessionFeedback,omitempty"`
	PainLocation *PainLocation `json:"sessionPainLocation,omitempty"`
	DeletedAt    *string       `json:"deletedAt"`
}

// ExerciseLog is one exercise's result within a session. Immutable once
// written except through backup restore (newest updatedAt wins).
type ExerciseLog struct {
	ID             string        `json:"id"`
	SessionID      string        `json:"sessionId"`
	ExerciseID     string        `json:"exerciseId"`
	ProgramID      *string       `json:"programId,omitempty"`
	DayIndex       *int          `json:"dayIndex,omitempty"`
	CreatedAt      string        `json:"createdAt"`
	UpdatedAt      string        `json:"updatedAt"`
	LoadType       LoadType      `json:"loadType"`
	Unit           *string       `json:"unit"`
	Weight         *float64      `json:"weight"`
	Reps           *int          `json:"reps"`
	RepsBySet      []int         `json:"repsBySet"`
	SetsPlanned    *int          `json:"setsPlanned"`
	SetsCompleted  *int          `json:"setsCompleted"`
	DurationSec    *int          `json:"durationSec"`
	Felt           *FeltRating   `json:"felt"`
	PainLocation   *PainLocation `json:"painLocation,omitempty"`
	Notes          *string       `json:"notes"`
	ComputedVolume *float64      `json:"computedVolume"`
	DeletedAt      *string       `json:"deletedAt"`
}

// TotalReps sums repsBySet when present, else falls back to the single reps
// field. Returns 0, false when neither is recorded.
func (l *ExerciseLog) TotalReps() (int, bool) {
	if len(l.RepsBySet) > 0 {
		total := 0
		for _, r := range l.RepsBySet {
			total += r
		}
		return total, true
	}
	if l.Reps != nil {
		return *l.Reps, true
	}
	return 0, false
}

// RepsPerSet is total reps divided by completed sets, rounded to the nearest
// integer. Falls back to planned sets when completion wasn't recorded.
func (l *ExerciseLog) RepsPerSet() (int, bool) {
	reps, ok := l.TotalReps()
	if !ok || reps == 0 {
		return reps, ok
	}
	sets := 0
	if l.SetsCompleted != nil {
		sets = *l.SetsCompleted
	} else if l.SetsPlanned != nil {
		sets = *l.SetsPlanned
	}
	if sets == 0 {
		return reps, true
	}
	return int(float64(reps)/float64(sets) + 0.5), true
}

// ComputeVolume is weight x total reps for weighted logs, nil otherwise.
func (l *ExerciseLog) ComputeVolume() *float64 {
	if l.LoadType != LoadWeighted || l.Weight == nil {
		return nil
	}
	reps, ok := l.TotalReps()
	if !ok {
		return nil
	}
	v := *l.Weight * float64(reps)
	return &v
}

// ProgramRoutineItem is one prescribed exercise slot within a program day.
// LoadType and cues are denormalized from the catalog at build time.
type ProgramRoutineItem struct {
	ExerciseID  string   `json:"exerciseId"`
	Sets        string   `json:"sets"`
	Reps        *string  `json:"reps"`
	DurationSec *int     `json:"durationSec"`
	RestSec     *int     `json:"restSec"`
	LoadType    LoadType `json:"loadType"`
	Notes       *string  `json:"notes"`
	Cues        []string `json:"cues"`
}

// ProgramDay is one themed training day within a weekly program.
type ProgramDay struct {
	DayIndex  int                  `json:"dayIndex"`
	Title     string               `json:"title"`
	FocusTags []string             `json:"focusTags"`
	Routine   []ProgramRoutineItem `json:"routine"`
}

// Phase is the active multi-week macro-stage. WeekCount 0 means open-ended.
type Phase struct {
	Name      string `json:"name"`
	WeekIndex int    `json:"weekIndex"`
	WeekCount int    `json:"weekCount"`
	Goal      string `json:"goal"`
}

// NextWeekPlan is the derived adjustment guidance for the coming week.
type NextWeekPlan struct {
	Summary string `json:"summary"`
	Change  string `json:"change"`
	Reason  string `json:"reason"`
}

// MinutesRange bounds the expected duration of one session.
type MinutesRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Program is a generated weekly training program. One exists per distinct
// (daysPerWeek, goalTrack) pair and is updated in place as phases advance.
type Program struct {
	ID             string        `json:"id"`
	CreatedAt      string        `json:"createdAt"`
	UpdatedAt      string        `json:"updatedAt"`
	GoalTrack      *string       `json:"goalTrack"`
	DaysPerWeek    int           `json:"daysPerWeek"`
	SessionMinutes *MinutesRange `json:"estimatedSessionMinutesRange,omitempty"`
	Phase          *Phase        `json:"phase,omitempty"`
	NextWeekPlan   *NextWeekPlan `json:"nextWeekPlan,omitempty"`
	Week           []ProgramDay  `json:"week"`
	DeletedAt      *string       `json:"deletedAt"`
}

// ProgramProgress is a recomputable cache over session history: which days
// are done and which comes next (round-robin over daysPerWeek). The persisted
// copy is an optimization, never authoritative.
type ProgramProgress struct {
	ProgramID             string `json:"programId"`
	LastCompletedDayIndex *int   `json:"lastCompletedDayIndex"`
	NextDayIndex          int    `json:"nextDayIndex"`
	CompletedDayIndices   []int  `json:"completedDayIndices"`
	UpdatedAt             string `json:"updatedAt"`
}

// TimerPrefs are the guided-session timer defaults.
type TimerPrefs struct {
	WorkSeconds int `json:"workSeconds"`
	RestSeconds int `json:"restSeconds"`
}

// Prefs stores timer defaults, per-exercise feedback, and per-exercise
// substitutions. SchemaVersion gates backup import.
type Prefs struct {
	SchemaVersion          int                 `json:"schemaVersion"`
	TimerPrefs             *TimerPrefs         `json:"timerPrefs,omitempty"`
	FeedbackByExercise     map[string]Feedback `json:"feedbackByExercise,omitempty"`
	SubstitutionByExercise map[string]string   `json:"substitutionByExercise,omitempty"`
}

// SchemaVersion is the current persisted-record schema. Backup bundles with
// any other version are rejected outright.
const SchemaVersion = 2

// NowISO returns the current time as an RFC3339 UTC string, the timestamp
// format used on all persisted records.
func NowISO() string {
	return time.Now().UTC().Format(time.RFC3339)
}
