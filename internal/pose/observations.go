package pose

// Analysis is the interpreted output for one view: the raw metrics plus the
// observations and training priorities they trigger.
type Analysis struct {
	Metrics         Metrics  `json:"metrics"`
	Observations    []string `json:"observations"`
	Priorities      []string `json:"priorities"`
	ConfidenceScore float64  `json:"confidenceScore"`
}

// Asymmetry thresholds, as fractions of torso height (torsoLean in degrees).
// Values under threshold are considered within normal variation.
const (
	shoulderThreshold    = 0.05
	hipThreshold         = 0.05
	kneeThreshold        = 0.06
	headForwardThreshold = 0.08
	torsoLeanThreshold   = 6.0
	hipShoulderThreshold = 0.06
	scapularThreshold    = 0.06
	hipShiftThreshold    = 0.06
)

func exceeds(v *float64, threshold float64) bool {
	return v != nil && *v > threshold
}

// Interpret converts metrics into observations and priorities. Confidence is
// the average keypoint score clamped to [0.3, 1], defaulting to 0.4 when no
// keypoints scored at all.
func Interpret(m Metrics) Analysis {
	var observations, priorities []string

	if exceeds(m.ShoulderHeightDelta, shoulderThreshold) {
		observations = append(observations, "Mild shoulder height asymmetry detected.")
		priorities = append(priorities, "Upper-back symmetry and scapular control")
	}
	if exceeds(m.HipHeightDelta, hipThreshold) {
		observations = append(observations, "Hip height difference may indicate uneven load sharing.")
		priorities = append(priorities, "Hip stability and lateral balance")
	}
	if exceeds(m.KneeAlignmentDelta, kneeThreshold) {
		observations = append(observations, "Knee tracking appears offset; we'll focus on alignment.")
		priorities = append(priorities, "Lower-body alignment and stability")
	}
	if exceeds(m.HeadForwardOffset, headForwardThreshold) {
		observations = append(observations, "Forward head posture tendency detected.")
		priorities = append(priorities, "Neck + upper-back endurance")
	}
	if exceeds(m.TorsoLeanAngle, torsoLeanThreshold) {
		observations = append(observations, "Torso lean suggests a forward or backward bias.")
		priorities = append(priorities, "Core bracing and upright posture")
	}
	if exceeds(m.HipToShoulderAlignment, hipShoulderThreshold) {
		observations = append(observations, "Shoulder-to-hip alignment may be offset.")
		priorities = append(priorities, "Trunk alignment and core control")
	}
	if exceeds(m.ScapularSymmetry, scapularThreshold) {
		observations = append(observations, "Shoulder blade symmetry may be uneven.")
		priorities = append(priorities, "Scapular positioning and control")
	}
	if exceeds(m.HipShift, hipShiftThreshold) {
		observations = append(observations, "Possible lateral weight shift detected.")
		priorities = append(priorities, "Balanced weight distribution")
	}

	if len(observations) == 0 {
		observations = append(observations, "No major asymmetries detected at this time.")
	}

	confidence := 0.4
	if m.AvgKeypointScore != nil {
		confidence = *m.AvgKeypointScore
	}
	if confidence < 0.3 {
		confidence = 0.3
	}
	if confidence > 1 {
		confidence = 1
	}

	seen := map[string]bool{}
	deduped := priorities[:0]
	for _, p := range priorities {
		if seen[p] {
			continue
		}
		seen[p] = true
		deduped = append(deduped, p)
	}
	if len(deduped) > 4 {
		deduped = deduped[:4]
	}

	return Analysis{
		Metrics:         m,
		Observations:    observations,
		Priorities:      deduped,
		ConfidenceScore: confidence,
	}
}
