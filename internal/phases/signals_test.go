package phases

import (
	"testing"
	"time"

	"github.com/meltforce/bodycoach/internal/models"
)

func iso(t time.Time) string { return t.UTC().Format(time.RFC3339) }

func strp(s string) *string { return &s }

func feltp(r models.FeltRating) *models.FeltRating { return &r }

func completedSession(at time.Time, rating *models.FeltRating) models.SessionRecord {
	ts := iso(at)
	return models.SessionRecord{
		ID:          "s-" + ts,
		CompletedAt: &ts,
		UpdatedAt:   ts,
		Feedback:    rating,
	}
}

// TestDeriveSignalsCompliance verifies compliance counts completed sessions
// in the rolling window against daysPerWeek, capped at 1.
func TestDeriveSignalsCompliance(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	sessions := []models.SessionRecord{
		completedSession(now.Add(-24*time.Hour), nil),
		completedSession(now.Add(-48*time.Hour), nil),
		completedSession(now.Add(-72*time.Hour), nil),
		// Outside the window: ignored.
		completedSession(now.Add(-9*24*time.Hour), nil),
	}

	s := DeriveSignals(sessions, nil, 4, now)
	if s.ComplianceRate != 0.75 {
		t.Errorf("compliance = %v, want 0.75", s.ComplianceRate)
	}

	s = DeriveSignals(sessions, nil, 2, now)
	if s.ComplianceRate != 1 {
		t.Errorf("compliance = %v, want capped at 1", s.ComplianceRate)
	}

	s = DeriveSignals(sessions, nil, 0, now)
	if s.ComplianceRate != 0 {
		t.Errorf("compliance with zero daysPerWeek = %v, want 0", s.ComplianceRate)
	}
}

// TestDeriveSignalsIgnoresIncomplete verifies deleted and unfinished
// sessions never count toward compliance.
func TestDeriveSignalsIgnoresIncomplete(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	deleted := completedSession(now.Add(-24*time.Hour), nil)
	deleted.DeletedAt = strp(iso(now))
	unfinished := models.SessionRecord{ID: "open", UpdatedAt: iso(now)}

	s := DeriveSignals([]models.SessionRecord{deleted, unfinished}, nil, 3, now)
	if s.ComplianceRate != 0 {
		t.Errorf("compliance = %v, want 0", s.ComplianceRate)
	}
}

// TestDeriveSignalsPain verifies any pain rating in the window raises the
// pain flag, from sessions or logs alike.
func TestDeriveSignalsPain(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	s := DeriveSignals([]models.SessionRecord{
		completedSession(now.Add(-24*time.Hour), feltp(models.FeltPain)),
	}, nil, 3, now)
	if !s.PainFlag {
		t.Error("session pain rating should raise the pain flag")
	}

	logs := []models.ExerciseLog{{
		ID:        "l1",
		UpdatedAt: iso(now.Add(-24 * time.Hour)),
		Felt:      feltp(models.FeltPain),
	}}
	s = DeriveSignals(nil, logs, 3, now)
	if !s.PainFlag {
		t.Error("log pain rating should raise the pain flag")
	}

	// Pain outside the window is stale.
	logs[0].UpdatedAt = iso(now.Add(-10 * 24 * time.Hour))
	s = DeriveSignals(nil, logs, 3, now)
	if s.PainFlag {
		t.Error("stale pain rating should not raise the pain flag")
	}
}

// TestDeriveSignalsFatigue verifies fatigue needs at least three pooled
// samples with half or more rated hard.
func TestDeriveSignalsFatigue(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	hardLog := func(id string, rating models.FeltRating) models.ExerciseLog {
		return models.ExerciseLog{ID: id, UpdatedAt: iso(now.Add(-24 * time.Hour)), Felt: feltp(rating)}
	}

	// Two hard samples: under the minimum, no fatigue.
	s := DeriveSignals(nil, []models.ExerciseLog{
		hardLog("a", models.FeltHard),
		hardLog("b", models.FeltHard),
	}, 3, now)
	if s.FatigueFlag {
		t.Error("two samples should not trigger fatigue")
	}

	// Three samples, two hard: ratio >= 0.5, fatigue fires.
	s = DeriveSignals(nil, []models.ExerciseLog{
		hardLog("a", models.FeltHard),
		hardLog("b", models.FeltHard),
		hardLog("c", models.FeltEasy),
	}, 3, now)
	if !s.FatigueFlag {
		t.Error("two of three hard should trigger fatigue")
	}

	// Session and log feedback pool into one sample set.
	s = DeriveSignals([]models.SessionRecord{
		completedSession(now.Add(-24*time.Hour), feltp(models.FeltHard)),
	}, []models.ExerciseLog{
		hardLog("a", models.FeltHard),
		hardLog("b", models.FeltEasy),
	}, 3, now)
	if !s.FatigueFlag {
		t.Error("pooled session and log samples should trigger fatigue")
	}

	// One hard of four: below the ratio.
	s = DeriveSignals(nil, []models.ExerciseLog{
		hardLog("a", models.FeltHard),
		hardLog("b", models.FeltEasy),
		hardLog("c", models.FeltEasy),
		hardLog("d", models.FeltModerate),
	}, 3, now)
	if s.FatigueFlag {
		t.Error("one of four hard should not trigger fatigue")
	}
}

// TestWeekIndexFor verifies week counting from program creation, with
// unparseable timestamps pinned to week 1.
func TestWeekIndexFor(t *testing.T) {
	created := time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC)
	prog := &models.Program{CreatedAt: iso(created)}

	cases := []struct {
		now  time.Time
		want int
	}{
		{created, 1},
		{created.Add(6 * 24 * time.Hour), 1},
		{created.Add(7 * 24 * time.Hour), 2},
		{created.Add(20 * 24 * time.Hour), 3},
		{created.Add(-48 * time.Hour), 1},
	}
	for _, tc := range cases {
		if got := WeekIndexFor(prog, tc.now); got != tc.want {
			t.Errorf("WeekIndexFor(%v) = %d, want %d", tc.now, got, tc.want)
		}
	}

	bad := &models.Program{CreatedAt: "not-a-timestamp"}
	if got := WeekIndexFor(bad, created); got != 1 {
		t.Errorf("WeekIndexFor(bad timestamp) = %d, want 1", got)
	}
}
