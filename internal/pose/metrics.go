// Package pose turns body keypoints from a pose-estimation backend into
// posture metrics and human-readable observations.
package pose

import "math"

// minKeypointScore is the confidence floor below which a keypoint is treated
// as missing.
const minKeypointScore = 0.2

// Keypoint is one detected body landmark in image coordinates.
type Keypoint struct {
	Name  string  `json:"name"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Score float64 `json:"score"`
}

// Metrics are torso-normalized posture measurements. Nil means the inputs
// needed to compute the value were missing or too low-confidence.
type Metrics struct {
	TorsoHeight            *float64 `json:"torsoHeight"`
	AvgKeypointScore       *float64 `json:"avgKeypointScore"`
	ShoulderHeightDelta    *float64 `json:"shoulderHeightDelta"`
	HipHeightDelta         *float64 `json:"hipHeightDelta"`
	KneeAlignmentDelta     *float64 `json:"kneeAlignmentDelta"`
	HeadForwardOffset      *float64 `json:"headForwardOffset"`
	TorsoLeanAngle         *float64 `json:"torsoLeanAngle"`
	HipToShoulderAlignment *float64 `json:"hipToShoulderAlignment"`
	ScapularSymmetry       *float64 `json:"scapularSymmetry"`
	HipShift               *float64 `json:"hipShift"`
}

type point struct {
	x, y, score float64
}

func keypointByName(keypoints []Keypoint, name string) *point {
	for _, kp := range keypoints {
		if kp.Name == name {
			if kp.Score < minKeypointScore {
				return nil
			}
			return &point{x: kp.X, y: kp.Y, score: kp.Score}
		}
	}
	return nil
}

func midpoint(a, b *point) *point {
	if a == nil || b == nil {
		return nil
	}
	return &point{
		x:     (a.x + b.x) / 2,
		y:     (a.y + b.y) / 2,
		score: math.Min(a.score, b.score),
	}
}

func dist(a, b *point) float64 {
	return math.Hypot(a.x-b.x, a.y-b.y)
}

// normalize divides by torso height so metrics are independent of image
// scale and subject distance.
func normalize(value *float64, torso *float64) *float64 {
	if value == nil || torso == nil || *torso == 0 {
		return nil
	}
	v := *value / *torso
	return &v
}

func score(p *point) float64 {
	if p == nil {
		return 0
	}
	return p.score
}

func averageScore(points []*point) *float64 {
	sum, n := 0.0, 0
	for _, p := range points {
		if p != nil {
			sum += p.score
			n++
		}
	}
	if n == 0 {
		return nil
	}
	avg := sum / float64(n)
	return &avg
}

func floatPtr(v float64) *float64 { return &v }

// ComputeMetrics derives posture metrics from one view's keypoints. Side
// metrics (head, lean, alignment) use whichever body side scored higher.
func ComputeMetrics(keypoints []Keypoint) Metrics {
	leftShoulder := keypointByName(keypoints, "left_shoulder")
	rightShoulder := keypointByName(keypoints, "right_shoulder")
	leftHip := keypointByName(keypoints, "left_hip")
	rightHip := keypointByName(keypoints, "right_hip")
	leftKnee := keypointByName(keypoints, "left_knee")
	rightKnee := keypointByName(keypoints, "right_knee")
	leftAnkle := keypointByName(keypoints, "left_ankle")
	rightAnkle := keypointByName(keypoints, "right_ankle")
	leftWrist := keypointByName(keypoints, "left_wrist")
	rightWrist := keypointByName(keypoints, "right_wrist")
	leftEar := keypointByName(keypoints, "left_ear")
	rightEar := keypointByName(keypoints, "right_ear")
	nose := keypointByName(keypoints, "nose")

	midShoulder := midpoint(leftShoulder, rightShoulder)
	midHip := midpoint(leftHip, rightHip)

	var torsoHeight *float64
	if midShoulder != nil && midHip != nil {
		torsoHeight = floatPtr(dist(midShoulder, midHip))
	}

	var shoulderDelta *float64
	if leftShoulder != nil && rightShoulder != nil {
		shoulderDelta = floatPtr(math.Abs(leftShoulder.y - rightShoulder.y))
	}

	var hipDelta *float64
	if leftHip != nil && rightHip != nil {
		hipDelta = floatPtr(math.Abs(leftHip.y - rightHip.y))
	}

	var kneeDelta *float64
	if leftKnee != nil && leftAnkle != nil && rightKnee != nil && rightAnkle != nil {
		kneeDelta = floatPtr((math.Abs(leftKnee.x-leftAnkle.x) + math.Abs(rightKnee.x-rightAnkle.x)) / 2)
	}

	leftSideScore := score(leftShoulder) + score(leftHip) + score(leftEar)
	rightSideScore := score(rightShoulder) + score(rightHip) + score(rightEar)
	sideShoulder, sideHip, sideEar := leftShoulder, leftHip, leftEar
	if rightSideScore > leftSideScore {
		sideShoulder, sideHip, sideEar = rightShoulder, rightHip, rightEar
	}
	sideHead := nose
	if sideHead == nil {
		sideHead = sideEar
	}

	var headForward *float64
	if sideHead != nil && sideShoulder != nil {
		headForward = floatPtr(math.Abs(sideHead.x - sideShoulder.x))
	}

	var hipShoulder *float64
	if sideShoulder != nil && sideHip != nil {
		hipShoulder = floatPtr(math.Abs(sideShoulder.x - sideHip.x))
	}

	var torsoLean *float64
	if sideShoulder != nil && sideHip != nil {
		dx := math.Abs(sideShoulder.x - sideHip.x)
		dy := math.Abs(sideShoulder.y - sideHip.y)
		if dy != 0 {
			torsoLean = floatPtr(math.Atan2(dx, dy) * 180 / math.Pi)
		}
	}

	var hipShift *float64
	switch {
	case midHip != nil && leftAnkle != nil && rightAnkle != nil:
		hipShift = floatPtr(math.Abs(midHip.x - (leftAnkle.x+rightAnkle.x)/2))
	case leftHip != nil && rightHip != nil:
		hipShift = floatPtr(math.Abs(leftHip.x-rightHip.x) / 2)
	}

	return Metrics{
		TorsoHeight: torsoHeight,
		AvgKeypointScore: averageScore([]*point{
			leftShoulder, rightShoulder, leftHip, rightHip,
			leftKnee, rightKnee, leftAnkle, rightAnkle,
			leftWrist, rightWrist, leftEar, rightEar, nose,
		}),
		ShoulderHeightDelta:    normalize(shoulderDelta, torsoHeight),
		HipHeightDelta:         normalize(hipDelta, torsoHeight),
		KneeAlignmentDelta:     normalize(kneeDelta, torsoHeight),
		HeadForwardOffset:      normalize(headForward, torsoHeight),
		TorsoLeanAngle:         torsoLean,
		HipToShoulderAlignment: normalize(hipShoulder, torsoHeight),
		ScapularSymmetry:       normalize(shoulderDelta, torsoHeight),
		HipShift:               normalize(hipShift, torsoHeight),
	}
}
