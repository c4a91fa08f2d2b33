// Package assessment builds a posture assessment report from questionnaire
// self-report and optional pose-scan analysis.
package assessment

import (
	"fmt"
	"strings"

	"github.com/meltforce/bodycoach/internal/models"
	"github.com/meltforce/bodycoach/internal/pose"
)

// FocusTag is a trainable quality an observation points at. Tags feed routine
// personalization downstream.
type FocusTag string

const (
	TagTspineRotation    FocusTag = "tspine_rotation"
	TagTspineExtension   FocusTag = "tspine_extension"
	TagScapControl       FocusTag = "scap_control"
	TagNeckEndurance     FocusTag = "neck_endurance"
	TagHipExtension      FocusTag = "hip_extension"
	TagHipMobility       FocusTag = "hip_mobility"
	TagSquatPattern      FocusTag = "squat_pattern"
	TagHingePattern      FocusTag = "hinge_pattern"
	TagCoreAntiRotation  FocusTag = "core_anti_rotation"
	TagCoreAntiExtension FocusTag = "core_anti_extension"
	TagCoreStability     FocusTag = "core_stability"
	TagAnkleMobility     FocusTag = "ankle_mobility"
	TagGluteMedius       FocusTag = "glute_medius"
	TagPostureEndurance  FocusTag = "posture_endurance"
	TagPushStrength      FocusTag = "push_strength"
	TagPullStrength      FocusTag = "pull_strength"
	TagBreathing         FocusTag = "breathing"
	TagBalance           FocusTag = "balance"
)

// Confidence buckets an observation's reliability.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// InterventionType classifies a recommended intervention.
type InterventionType string

const (
	InterventionMobility     InterventionType = "mobility"
	InterventionActivation   InterventionType = "activation"
	InterventionStrength     InterventionType = "strength"
	InterventionMotorControl InterventionType = "motorControl"
	InterventionBreathing    InterventionType = "breathing"
)

// Intervention is one concrete training suggestion attached to an observation.
type Intervention struct {
	Type       InterventionType `json:"type"`
	Target     string           `json:"target"`
	Suggestion string           `json:"suggestion"`
}

// Observation is one finding in the assessment report.
type Observation struct {
	ID               string         `json:"id"`
	Title            string         `json:"title"`
	Description      string         `json:"description"`
	Confidence       Confidence     `json:"confidence"`
	Evidence         []string       `json:"evidence"`
	LikelyDrivers    []string       `json:"likelyDrivers"`
	RiskIfIgnored    string         `json:"riskIfIgnored"`
	PrimaryFocusTags []FocusTag     `json:"primaryFocusTags"`
	Interventions    []Intervention `json:"recommendedInterventions"`
}

// Report is the full assessment output.
type Report struct {
	Observations []Observation `json:"observations"`
	Priorities   []string      `json:"priorities"`
	Summary      string        `json:"summary"`
	Disclaimers  []string      `json:"disclaimers"`
}

// Input bundles everything the report builder consumes. PoseAnalysis and
// UserNotes are optional.
type Input struct {
	Questionnaire *models.Questionnaire
	PoseAnalysis  *pose.Analysis
	UserNotes     string
}

func confidenceFor(score float64) Confidence {
	switch {
	case score >= 0.75:
		return ConfidenceHigh
	case score >= 0.5:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// posePatternRisk is the shared risk line for pose-derived findings.
const posePatternRisk = "May slow progress or increase stiffness over time."

func buildPoseObservations(analysis *pose.Analysis) []Observation {
	confidence := confidenceFor(analysis.ConfidenceScore)
	var observations []Observation

	add := func(id, title, description string, evidence, drivers []string, tags []FocusTag, interventions []Intervention) {
		observations = append(observations, Observation{
			ID:               id,
			Title:            title,
			Description:      description,
			Confidence:       confidence,
			Evidence:         evidence,
			LikelyDrivers:    drivers,
			RiskIfIgnored:    posePatternRisk,
			PrimaryFocusTags: tags,
			Interventions:    interventions,
		})
	}

	for _, item := range analysis.Observations {
		lower := strings.ToLower(item)
		if strings.Contains(lower, "shoulder height") {
			add("pose-shoulder-asymmetry", "Shoulder height asymmetry",
				"Pattern suggests uneven shoulder positioning; we'll even out upper-back control.",
				[]string{"Scan: shoulder height difference"},
				[]string{"scapular control", "upper-back endurance"},
				[]FocusTag{TagScapControl, TagPostureEndurance, TagPullStrength},
				[]Intervention{
					{InterventionActivation, "scapular control", "prone Y/T/W with slow holds"},
					{InterventionStrength, "upper back", "band rows or face pulls"},
				})
		}
		if strings.Contains(lower, "forward head") {
			add("pose-forward-head", "Forward head tendency",
				"Pattern suggests forward head bias; we'll focus on neck endurance and rib alignment.",
				[]string{"Scan: head position offset"},
				[]string{"limited T-spine extension", "neck flexor endurance"},
				[]FocusTag{TagNeckEndurance, TagTspineExtension, TagPostureEndurance},
				[]Intervention{
					{InterventionMotorControl, "deep neck flexors", "chin tucks with breathing"},
					{InterventionMobility, "thoracic extension", "wall slides or T-spine rotations"},
				})
		}
		if strings.Contains(lower, "hip") {
			add("pose-hip-shift", "Hip balance asymmetry",
				"Pattern suggests hip loading bias; we'll reinforce balanced hip control.",
				[]string{"Scan: hip height or shift difference"},
				[]string{"hip stability", "single-leg control"},
				[]FocusTag{TagGluteMedius, TagHipExtension, TagCoreAntiRotation},
				[]Intervention{
					{InterventionActivation, "glute med", "side-lying hip abduction"},
					{InterventionMotorControl, "single-leg balance", "split squat holds"},
				})
		}
		if strings.Contains(lower, "knee") {
			add("pose-knee-alignment", "Knee alignment offset",
				"Pattern suggests knee tracking bias; we'll reinforce alignment and control.",
				[]string{"Scan: knee tracking offset"},
				[]string{"hip stability", "ankle mobility"},
				[]FocusTag{TagSquatPattern, TagAnkleMobility, TagGluteMedius},
				[]Intervention{
					{InterventionMotorControl, "squat tracking", "tempo bodyweight squats"},
					{InterventionMobility, "ankle", "ankle rocks and calf stretch"},
				})
		}
	}

	return observations
}

// painAreaTags maps a self-reported pain area to its two focus tags.
func painAreaTags(area string) []FocusTag {
	switch area {
	case "Upper back":
		return []FocusTag{TagScapControl, TagPostureEndurance}
	case "Lower back":
		return []FocusTag{TagCoreAntiExtension, TagHipExtension}
	case "Neck":
		return []FocusTag{TagNeckEndurance, TagTspineExtension}
	case "Hips":
		return []FocusTag{TagHipExtension, TagGluteMedius}
	case "Knees":
		return []FocusTag{TagSquatPattern, TagAnkleMobility}
	default:
		return []FocusTag{TagPostureEndurance, TagCoreStability}
	}
}

func buildSelfReportObservations(q *models.Questionnaire, userNotes string) []Observation {
	var observations []Observation

	confidence := ConfidenceLow
	if q.Experience == "Beginner" {
		confidence = ConfidenceMedium
	}

	painAreas := q.PainAreas
	if len(painAreas) > 2 {
		painAreas = painAreas[:2]
	}
	for _, area := range painAreas {
		id := "pain-" + strings.ReplaceAll(strings.ToLower(area), " ", "-")
		observations = append(observations, Observation{
			ID:               id,
			Title:            fmt.Sprintf("%s sensitivity", area),
			Description:      fmt.Sprintf("Self-report suggests %s sensitivity; we'll prioritize gentle, supportive work.", strings.ToLower(area)),
			Confidence:       confidence,
			Evidence:         []string{fmt.Sprintf("Self-report: %s discomfort", area)},
			LikelyDrivers:    []string{"local stiffness", "postural load", "limited mobility"},
			RiskIfIgnored:    "May limit training consistency or comfort.",
			PrimaryFocusTags: painAreaTags(area),
			Interventions: []Intervention{
				{InterventionMobility, area, "slow range-of-motion work and breathing"},
				{InterventionActivation, "supporting muscles", "low-load activation before main work"},
			},
		})
	}

	if strings.Contains(q.Goals, "posture") {
		observations = append(observations, Observation{
			ID:               "goal-posture-control",
			Title:            "Posture control focus",
			Description:      "Goal suggests improving posture; we'll build endurance in upper back and core.",
			Confidence:       ConfidenceMedium,
			Evidence:         []string{"Self-report: posture improvement goal"},
			LikelyDrivers:    []string{"upper-back endurance", "core stability"},
			RiskIfIgnored:    "Posture improvements may plateau.",
			PrimaryFocusTags: []FocusTag{TagPostureEndurance, TagScapControl, TagCoreAntiExtension},
			Interventions: []Intervention{
				{InterventionStrength, "upper back", "rows, pull-aparts, face pulls"},
				{InterventionMotorControl, "ribcage alignment", "breathing + bracing drills"},
			},
		})
	}

	if userNotes != "" {
		observations = append(observations, Observation{
			ID:               "notes-considerations",
			Title:            "User notes highlight",
			Description:      "Notes suggest a specific focus area; we'll adjust sessions accordingly.",
			Confidence:       ConfidenceLow,
			Evidence:         []string{"Self-report: user notes"},
			LikelyDrivers:    []string{"individual preferences"},
			RiskIfIgnored:    "Less personalized session feel.",
			PrimaryFocusTags: []FocusTag{TagPostureEndurance, TagCoreStability},
			Interventions: []Intervention{
				{InterventionMotorControl, "custom focus", "blend in preferred drills"},
			},
		})
	}

	return observations
}

func baselineObservation(index int) Observation {
	return Observation{
		ID:               fmt.Sprintf("baseline-%d", index),
		Title:            "Movement baseline",
		Description:      "Pattern suggests we can build consistent movement quality with simple progressions.",
		Confidence:       ConfidenceLow,
		Evidence:         []string{"Self-report: baseline program data"},
		LikelyDrivers:    []string{"general conditioning"},
		RiskIfIgnored:    "Progress may feel slower.",
		PrimaryFocusTags: []FocusTag{TagPostureEndurance, TagCoreStability},
		Interventions: []Intervention{
			{InterventionMotorControl, "tempo", "slow, controlled reps"},
		},
	}
}

// prioritize orders observation ids: pain findings first, pose findings next,
// everything else last. Relative order within a group is preserved.
func prioritize(observations []Observation) []string {
	var pain, poseIDs, rest []string
	for _, obs := range observations {
		switch {
		case strings.HasPrefix(obs.ID, "pain-"):
			pain = append(pain, obs.ID)
		case strings.HasPrefix(obs.ID, "pose-"):
			poseIDs = append(poseIDs, obs.ID)
		default:
			rest = append(rest, obs.ID)
		}
	}
	ordered := make([]string, 0, len(observations))
	ordered = append(ordered, pain...)
	ordered = append(ordered, poseIDs...)
	ordered = append(ordered, rest...)
	return ordered
}

// BuildReport assembles the assessment. Pose observations lead, self-report
// follows, capped at six total and padded to at least three with baselines.
func BuildReport(in Input) *Report {
	var observations []Observation
	if in.PoseAnalysis != nil {
		observations = append(observations, buildPoseObservations(in.PoseAnalysis)...)
	}
	observations = append(observations, buildSelfReportObservations(in.Questionnaire, in.UserNotes)...)

	if len(observations) > 6 {
		observations = observations[:6]
	}
	for len(observations) < 3 {
		observations = append(observations, baselineObservation(len(observations)))
	}

	summary := "Key focus areas identified."
	if len(observations) > 0 {
		top := []string{observations[0].Title}
		if len(observations) > 1 {
			top = append(top, observations[1].Title)
		}
		summary = fmt.Sprintf("Key focus areas: %s.", strings.Join(top, " + "))
	}

	return &Report{
		Observations: observations,
		Priorities:   prioritize(observations),
		Summary:      summary,
		Disclaimers: []string{
			"This scan estimates posture patterns, not a medical diagnosis.",
			"Observations may indicate movement tendencies, not injuries.",
		},
	}
}
