package program

// templateItem is one authored slot in a day template. Exercises referenced
// here may be swapped out at build time for equipment reasons.
type templateItem struct {
	exerciseID  string
	sets        string
	reps        string
	durationSec int
	restSec     int
}

type dayTemplate struct {
	title     string
	focusTags []string
	items     []templateItem
}

// The day templates are hand-authored. "intensity" is the experience- and
// goal-derived sets range substituted into the main work slots.

func fullBodyA(intensity string) dayTemplate {
	return dayTemplate{
		title:     "Full Body A",
		focusTags: []string{"strength", "posture", "upper"},
		items: []templateItem{
			{"cat-cow", "2", "6-8", 60, 30},
			{"wall-slides", "2", "8-10", 60, 30},
			{"dumbbell-rows", intensity, "8-12", 90, 75},
			{"pallof-press", intensity, "8-10 per side", 90, 60},
			{"glute-bridges", "3", "10-12", 75, 60},
			{"hip-flexor-stretch", "2", "30 sec per side", 60, 30},
		},
	}
}

func fullBodyB(intensity string) dayTemplate {
	return dayTemplate{
		title:     "Full Body B",
		focusTags: []string{"mobility", "core", "lower"},
		items: []templateItem{
			{"thoracic-rotation", "2", "6-8 per side", 60, 30},
			{"bird-dog", "2-3", "6-8 per side", 75, 45},
			{"face-pull", intensity, "10-12", 90, 60},
			{"dead-bug", "3", "6-8 per side", 75, 60},
			{"hamstring-stretch", "2", "30 sec per side", 60, 30},
		},
	}
}

func fullBodyC(intensity string) dayTemplate {
	return dayTemplate{
		title:     "Full Body C",
		focusTags: []string{"strength", "upper", "core"},
		items: []templateItem{
			{"cat-cow", "2", "6-8", 60, 30},
			{"wall-angel-hold", "2", "20-30 sec", 60, 30},
			{"prone-ytw", intensity, "6-8 each", 90, 60},
			{"band-pull-aparts", intensity, "10-12", 75, 60},
			{"thread-the-needle", "2", "5-6 per side", 60, 30},
		},
	}
}

func upperA(intensity string) dayTemplate {
	return dayTemplate{
		title:     "Upper A",
		focusTags: []string{"upper", "scap", "strength"},
		items: []templateItem{
			{"wall-slides", "2", "8-10", 60, 30},
			{"dumbbell-rows", intensity, "8-12", 90, 75},
			{"face-pull", intensity, "10-12", 90, 60},
			{"prone-ytw", "3", "6-8 each", 90, 60},
		},
	}
}

func lowerA(intensity string) dayTemplate {
	return dayTemplate{
		title:     "Lower A",
		focusTags: []string{"lower", "core", "hips"},
		items: []templateItem{
			{"glute-bridges", intensity, "10-12", 75, 60},
			{"bird-dog", "2-3", "6-8 per side", 75, 45},
			{"pallof-press", "3", "8-10 per side", 90, 60},
			{"hip-flexor-stretch", "2", "30 sec per side", 60, 30},
		},
	}
}

func upperB(intensity string) dayTemplate {
	return dayTemplate{
		title:     "Upper B",
		focusTags: []string{"upper", "posture", "pull"},
		items: []templateItem{
			{"cat-cow", "2", "6-8", 60, 30},
			{"band-pull-aparts", intensity, "10-12", 75, 60},
			{"dumbbell-rows", intensity, "8-12", 90, 75},
			{"chin-tucks", "2", "8-10", 60, 30},
		},
	}
}

func lowerB(intensity string) dayTemplate {
	return dayTemplate{
		title:     "Lower B",
		focusTags: []string{"lower", "mobility", "core"},
		items: []templateItem{
			{"dead-bug", "3", "6-8 per side", 75, 60},
			{"hamstring-stretch", "2", "30 sec per side", 60, 30},
			{"thread-the-needle", "2", "5-6 per side", 60, 30},
		},
	}
}

func upperDay(intensity string) dayTemplate {
	return dayTemplate{
		title:     "Upper",
		focusTags: []string{"upper", "strength"},
		items: []templateItem{
			{"wall-slides", "2", "8-10", 60, 30},
			{"dumbbell-rows", intensity, "8-12", 90, 75},
			{"face-pull", intensity, "10-12", 90, 60},
		},
	}
}

func lowerDay(intensity string) dayTemplate {
	return dayTemplate{
		title:     "Lower",
		focusTags: []string{"lower", "core"},
		items: []templateItem{
			{"glute-bridges", intensity, "10-12", 75, 60},
			{"pallof-press", "3", "8-10 per side", 90, 60},
		},
	}
}

func pushDay(intensity string) dayTemplate {
	return dayTemplate{
		title:     "Push",
		focusTags: []string{"upper", "push"},
		items: []templateItem{
			{"wall-angel-hold", "2", "20-30 sec", 60, 30},
			{"band-pull-aparts", intensity, "10-12", 75, 60},
		},
	}
}

func pullDay(intensity string) dayTemplate {
	return dayTemplate{
		title:     "Pull",
		focusTags: []string{"upper", "pull"},
		items: []templateItem{
			{"dumbbell-rows", intensity, "8-12", 90, 75},
			{"prone-ytw", "3", "6-8 each", 90, 60},
		},
	}
}

func legsCoreDay(intensity string) dayTemplate {
	return dayTemplate{
		title:     "Legs + Core",
		focusTags: []string{"lower", "core"},
		items: []templateItem{
			{"glute-bridges", intensity, "10-12", 75, 60},
			{"dead-bug", "3", "6-8 per side", 75, 60},
			{"hip-flexor-stretch", "2", "30 sec per side", 60, 30},
		},
	}
}

// templatesForDays returns the ordered day templates for the requested
// training frequency. Anything outside 3-5 falls back to the 5-day split.
func templatesForDays(daysPerWeek int, intensity string) []dayTemplate {
	switch daysPerWeek {
	case 3:
		return []dayTemplate{fullBodyA(intensity), fullBodyB(intensity), fullBodyC(intensity)}
	case 4:
		return []dayTemplate{upperA(intensity), lowerA(intensity), upperB(intensity), lowerB(intensity)}
	default:
		return []dayTemplate{upperDay(intensity), lowerDay(intensity), pushDay(intensity), pullDay(intensity), legsCoreDay(intensity)}
	}
}
