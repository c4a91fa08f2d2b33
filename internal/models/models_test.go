package models

import "testing"

func intp(v int) *int           { return &v }
func floatp(v float64) *float64 { return &v }

// TestParseRange verifies range strings parse into min/max pairs, including
// trailing qualifiers and bare numbers.
func TestParseRange(t *testing.T) {
	cases := []struct {
		in   string
		min  int
		max  int
		open bool
	}{
		{"8-12", 8, 12, false},
		{"3", 3, 3, false},
		{"6-8 per side", 6, 8, false},
		{"30 sec", 30, 30, false},
		{"2-3", 2, 3, false},
		{"", 0, 0, true},
		{"as needed", 0, 0, true},
	}
	for _, tc := range cases {
		r := ParseRange(tc.in)
		if tc.open {
			if r.Min != nil || r.Max != nil {
				t.Errorf("ParseRange(%q) = %v-%v, want open", tc.in, r.Min, r.Max)
			}
			continue
		}
		if r.Min == nil || r.Max == nil || *r.Min != tc.min || *r.Max != tc.max {
			t.Errorf("ParseRange(%q) = %v, want %d-%d", tc.in, r, tc.min, tc.max)
		}
	}
}

// TestRangeClamp verifies clamping against closed and open ranges.
func TestRangeClamp(t *testing.T) {
	r := ParseRange("8-12")
	if got := r.Clamp(5); got != 8 {
		t.Errorf("Clamp(5) = %d, want 8", got)
	}
	if got := r.Clamp(20); got != 12 {
		t.Errorf("Clamp(20) = %d, want 12", got)
	}
	if got := r.Clamp(10); got != 10 {
		t.Errorf("Clamp(10) = %d, want 10", got)
	}

	open := Range{}
	if got := open.Clamp(99); got != 99 {
		t.Errorf("open Clamp(99) = %d, want 99", got)
	}
}

// TestTotalRepsPrefersRepsBySet verifies per-set reps win over the flat reps
// field when both exist.
func TestTotalRepsPrefersRepsBySet(t *testing.T) {
	l := &ExerciseLog{RepsBySet: []int{10, 9, 8}, Reps: intp(5)}
	total, ok := l.TotalReps()
	if !ok || total != 27 {
		t.Errorf("TotalReps = %d,%v, want 27,true", total, ok)
	}

	l = &ExerciseLog{Reps: intp(5)}
	total, ok = l.TotalReps()
	if !ok || total != 5 {
		t.Errorf("TotalReps = %d,%v, want 5,true", total, ok)
	}

	l = &ExerciseLog{}
	if _, ok := l.TotalReps(); ok {
		t.Error("TotalReps on empty log should report false")
	}
}

// TestRepsPerSet verifies averaging over completed sets, with planned sets as
// fallback and rounding to nearest.
func TestRepsPerSet(t *testing.T) {
	l := &ExerciseLog{RepsBySet: []int{10, 9}, SetsCompleted: intp(2)}
	reps, ok := l.RepsPerSet()
	if !ok || reps != 10 {
		t.Errorf("RepsPerSet = %d, want 10 (19/2 rounded)", reps)
	}

	l = &ExerciseLog{Reps: intp(24), SetsPlanned: intp(3)}
	reps, _ = l.RepsPerSet()
	if reps != 8 {
		t.Errorf("RepsPerSet with planned fallback = %d, want 8", reps)
	}

	// No set counts at all: total reps pass through.
	l = &ExerciseLog{Reps: intp(12)}
	reps, _ = l.RepsPerSet()
	if reps != 12 {
		t.Errorf("RepsPerSet without sets = %d, want 12", reps)
	}
}

// TestComputeVolume verifies volume is weight x total reps for weighted logs
// only.
func TestComputeVolume(t *testing.T) {
	l := &ExerciseLog{LoadType: LoadWeighted, Weight: floatp(20), RepsBySet: []int{10, 10}}
	v := l.ComputeVolume()
	if v == nil || *v != 400 {
		t.Errorf("ComputeVolume = %v, want 400", v)
	}

	l = &ExerciseLog{LoadType: LoadBodyweight, RepsBySet: []int{10}}
	if l.ComputeVolume() != nil {
		t.Error("bodyweight log should have nil volume")
	}

	l = &ExerciseLog{LoadType: LoadWeighted, Weight: floatp(20)}
	if l.ComputeVolume() != nil {
		t.Error("weighted log without reps should have nil volume")
	}
}

// TestLoadParamsFromLog verifies the tagged variant only carries fields that
// belong to the log's load type.
func TestLoadParamsFromLog(t *testing.T) {
	unit := "kg"
	l := &ExerciseLog{LoadType: LoadWeighted, Weight: floatp(25), Unit: &unit, DurationSec: intp(30)}
	p := LoadParamsFromLog(l)
	if p.Weight != 25 || p.Unit != "kg" {
		t.Errorf("weighted params = %+v, want weight 25 kg", p)
	}
	if p.DurationSec != 0 {
		t.Error("weighted params should not carry duration")
	}

	l = &ExerciseLog{LoadType: LoadTimed, Weight: floatp(25), DurationSec: intp(45)}
	p = LoadParamsFromLog(l)
	if p.DurationSec != 45 {
		t.Errorf("timed params duration = %d, want 45", p.DurationSec)
	}
	if p.Weight != 0 {
		t.Error("timed params should not carry weight")
	}
}
