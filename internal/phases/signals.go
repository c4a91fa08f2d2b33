package phases

import (
	"time"

	"github.com/meltforce/bodycoach/internal/models"
)

const signalWindow = 7 * 24 * time.Hour

// fatigue needs a minimum pooled sample before the ratio is trusted.
const fatigueMinSamples = 3

// DeriveSignals computes the weekly signals from session and log history.
// Compliance counts sessions completed within the rolling 7-day window ending
// at now, capped at 1. Pain fires on any "pain" rating in the window. Fatigue
// fires when at least 3 feedback samples exist and at least half are "hard";
// session-level and log-level feedback are pooled into one sample set.
func DeriveSignals(sessions []models.SessionRecord, logs []models.ExerciseLog, daysPerWeek int, now time.Time) Signals {
	cutoff := now.Add(-signalWindow)

	var completed int
	var samples, hard int
	var pain bool

	inWindow := func(iso string) bool {
		t, err := time.Parse(time.RFC3339, iso)
		if err != nil {
			return false
		}
		return !t.Before(cutoff) && !t.After(now)
	}

	for _, s := range sessions {
		if s.DeletedAt != nil || s.CompletedAt == nil || !inWindow(*s.CompletedAt) {
			continue
		}
		completed++
		if s.Feedback != nil {
			samples++
			switch *s.Feedback {
			case models.FeltHard:
				hard++
			case models.FeltPain:
				pain = true
			}
		}
	}

	for _, l := range logs {
		if l.DeletedAt != nil || l.Felt == nil || !inWindow(l.UpdatedAt) {
			continue
		}
		samples++
		switch *l.Felt {
		case models.FeltHard:
			hard++
		case models.FeltPain:
			pain = true
		}
	}

	compliance := 0.0
	if daysPerWeek > 0 {
		compliance = float64(completed) / float64(daysPerWeek)
		if compliance > 1 {
			compliance = 1
		}
	}

	fatigue := samples >= fatigueMinSamples && float64(hard) >= float64(samples)*0.5

	return Signals{
		ComplianceRate: compliance,
		PainFlag:       pain,
		FatigueFlag:    fatigue,
	}
}

// WeekIndexFor returns the 1-based program week containing now, counted from
// the program's creation timestamp. Unparseable timestamps yield week 1.
func WeekIndexFor(program *models.Program, now time.Time) int {
	created, err := time.Parse(time.RFC3339, program.CreatedAt)
	if err != nil {
		return 1
	}
	weeks := int(now.Sub(created).Hours()/(24*7)) + 1
	if weeks < 1 {
		return 1
	}
	return weeks
}
