// Package equipment normalizes a user's free-form equipment selection into a
// canonical availability set and decides exercise eligibility against it.
package equipment

import "strings"

// Equipment is a canonical equipment token.
type Equipment string

const (
	None       Equipment = "none"
	Bands      Equipment = "bands"
	Dumbbells  Equipment = "dumbbells"
	Barbell    Equipment = "barbell"
	Kettlebell Equipment = "kettlebell"
	Cables     Equipment = "cables"
	Machines   Equipment = "machines"
	Bench      Equipment = "bench"
	PullupBar  Equipment = "pullup_bar"
	FoamRoller Equipment = "foam_roller"
)

// canonicalOrder fixes the emission order of availability sets.
var canonicalOrder = []Equipment{
	None, Bands, Dumbbells, Barbell, Kettlebell,
	Cables, Machines, Bench, PullupBar, FoamRoller,
}

// gym is a selection-only pseudo-token; it expands into gymEquipment and is
// never a member of the availability set itself.
const gym = "gym"

var gymEquipment = []Equipment{Dumbbells, Barbell, Cables, Machines, Bench}

// selectionMap maps free-form selection strings (lowercased, trimmed) to
// canonical tokens. Unrecognized entries are dropped silently.
var selectionMap = map[string]string{
	"none":             string(None),
	"no equipment":     string(None),
	"bands":            string(Bands),
	"resistance band":  string(Bands),
	"resistance bands": string(Bands),
	"dumbbells":        string(Dumbbells),
	"dumbbell":         string(Dumbbells),
	"barbell":          string(Barbell),
	"kettlebell":       string(Kettlebell),
	"cables":           string(Cables),
	"machines":         string(Machines),
	"bench":            string(Bench),
	"pullup bar":       string(PullupBar),
	"pullup_bar":       string(PullupBar),
	"foam roller":      string(FoamRoller),
	"foam_roller":      string(FoamRoller),
	"gym":              gym,
}

// Availability is the resolved equipment context for one questionnaire
// submission. HasGym is tracked separately for display even though gym has
// already been expanded into Available.
type Availability struct {
	Available map[Equipment]bool
	HasGym    bool
}

// Has reports whether the token is in the availability set.
func (a Availability) Has(e Equipment) bool {
	return a.Available[e]
}

// normalizeValues maps raw selections to canonical tokens, deduplicated in
// first-seen order. An empty result defaults to none; none is removed when it
// co-occurs with any real selection.
func normalizeValues(selection []string) []string {
	var next []string
	seen := map[string]bool{}
	for _, raw := range selection {
		mapped, ok := selectionMap[strings.ToLower(strings.TrimSpace(raw))]
		if !ok || seen[mapped] {
			continue
		}
		seen[mapped] = true
		next = append(next, mapped)
	}
	if len(next) == 0 {
		return []string{string(None)}
	}
	if seen[string(None)] && len(next) > 1 {
		filtered := next[:0]
		for _, v := range next {
			if v != string(None) {
				filtered = append(filtered, v)
			}
		}
		return filtered
	}
	return next
}

// Normalize resolves a raw selection into an availability set. gym expands to
// dumbbells, barbell, cables, machines, and bench.
func Normalize(selection []string) Availability {
	values := normalizeValues(selection)

	avail := Availability{Available: map[Equipment]bool{}}
	for _, v := range values {
		if v == gym {
			avail.HasGym = true
			continue
		}
		avail.Available[Equipment(v)] = true
	}

	if avail.HasGym {
		for _, e := range gymEquipment {
			avail.Available[e] = true
		}
	}

	if len(avail.Available) == 0 {
		avail.Available[None] = true
	}

	return avail
}

// Eligible reports whether an exercise with the given equipment requirements
// can be performed. Exercises requiring none are always eligible; otherwise
// every required token must be available. No partial credit.
func Eligible(required []Equipment, avail Availability) bool {
	for _, e := range required {
		if e == None {
			return true
		}
	}
	for _, e := range required {
		if !avail.Has(e) {
			return false
		}
	}
	return true
}

// Match describes how an exercise's requirements line up against the
// availability set, for display.
type Match struct {
	Required  []Equipment `json:"required"`
	Available []Equipment `json:"available"`
	Eligible  bool        `json:"eligible"`
}

// Describe builds a Match for the given requirements. The available list is
// emitted in canonical token order.
func Describe(required []Equipment, avail Availability) Match {
	list := make([]Equipment, 0, len(avail.Available))
	for _, e := range canonicalOrder {
		if avail.Available[e] {
			list = append(list, e)
		}
	}
	return Match{Required: required, Available: list, Eligible: Eligible(required, avail)}
}
