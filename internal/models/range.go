package models

import (
	"regexp"
	"strconv"
)

// Range is an inclusive min-max prescription bound. Free-text range strings
// ("8-12", "3", "6-8 per side") are parsed only at this edge; internal code
// works with the parsed form.
type Range struct {
	Min *int
	Max *int
}

var rangeDigits = regexp.MustCompile(`\d+`)

// ParseRange extracts a {min,max} pair from a prescription value. A bare
// number yields min==max. Strings with trailing qualifiers ("per side",
// "sec") parse from their leading numbers. Empty or non-numeric input yields
// an open range.
func ParseRange(value string) Range {
	nums := rangeDigits.FindAllString(value, 2)
	if len(nums) == 0 {
		return Range{}
	}
	min, err := strconv.Atoi(nums[0])
	if err != nil {
		return Range{}
	}
	if len(nums) == 1 {
		return Range{Min: &min, Max: &min}
	}
	max, err := strconv.Atoi(nums[1])
	if err != nil {
		return Range{Min: &min, Max: &min}
	}
	return Range{Min: &min, Max: &max}
}

// RangeFromInt builds a degenerate range where min == max.
func RangeFromInt(n int) Range {
	v := n
	return Range{Min: &v, Max: &v}
}

// Clamp bounds value into the range. Open ends leave that side unbounded.
func (r Range) Clamp(value int) int {
	if r.Min != nil && value < *r.Min {
		value = *r.Min
	}
	if r.Max != nil && value > *r.Max {
		value = *r.Max
	}
	return value
}

// LoadParams is the load description for a log, as a tagged variant per load
// type so that illegal states (weight on a timed exercise) cannot be built.
type LoadParams struct {
	Type        LoadType
	Weight      float64 // weighted only
	Unit        string  // weighted only
	DurationSec int     // timed only
}

// LoadParamsFromLog derives the load variant for a log row, ignoring fields
// that do not belong to the row's load type.
func LoadParamsFromLog(l *ExerciseLog) LoadParams {
	p := LoadParams{Type: l.LoadType}
	switch l.LoadType {
	case LoadWeighted:
		if l.Weight != nil {
			p.Weight = *l.Weight
		}
		if l.Unit != nil {
			p.Unit = *l.Unit
		}
	case LoadTimed:
		if l.DurationSec != nil {
			p.DurationSec = *l.DurationSec
		}
	}
	return p
}
