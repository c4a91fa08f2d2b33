package pose

import (
	"context"
	"fmt"
	"log/slog"
)

// View identifies the camera angle of an assessment photo.
type View string

const (
	ViewFront View = "front"
	ViewSide  View = "side"
	ViewBack  View = "back"
)

// ViewAnalysis is the analysis for a single photo.
type ViewAnalysis struct {
	View     View     `json:"view"`
	Analysis Analysis `json:"analysis"`
}

// Analyzer runs pose estimation over a set of assessment photos.
type Analyzer struct {
	estimator Estimator
	log       *slog.Logger
}

// NewAnalyzer returns an Analyzer backed by the given estimator.
func NewAnalyzer(estimator Estimator, log *slog.Logger) *Analyzer {
	return &Analyzer{estimator: estimator, log: log}
}

// AnalyzeViews processes the photos sequentially and returns an analysis per
// view that produced keypoints. A failing view is logged and skipped; the
// caller gets whatever succeeded. Returns an error only when every view fails.
func (a *Analyzer) AnalyzeViews(ctx context.Context, images map[View][]byte) ([]ViewAnalysis, error) {
	order := []View{ViewFront, ViewSide, ViewBack}

	var results []ViewAnalysis
	var lastErr error
	attempted := 0
	for _, view := range order {
		image, ok := images[view]
		if !ok {
			continue
		}
		attempted++

		keypoints, err := a.estimator.Estimate(ctx, image)
		if err != nil {
			lastErr = err
			a.log.Warn("pose estimation failed", "view", view, "error", err)
			continue
		}
		if len(keypoints) == 0 {
			a.log.Warn("no keypoints detected", "view", view)
			continue
		}

		results = append(results, ViewAnalysis{
			View:     view,
			Analysis: Interpret(ComputeMetrics(keypoints)),
		})
	}

	if attempted == 0 {
		return nil, fmt.Errorf("no assessment photos provided")
	}
	if len(results) == 0 && lastErr != nil {
		return nil, fmt.Errorf("analyzing assessment photos: %w", lastErr)
	}
	return results, nil
}
