package server

import (
	"encoding/json"
	"net/http"

	"github.com/meltforce/bodycoach/internal/assessment"
	"github.com/meltforce/bodycoach/internal/models"
	"github.com/meltforce/bodycoach/internal/pose"
)

// assessmentRequest carries the questionnaire plus optional keypoints already
// detected per camera view. Keypoints come from either the client-side model
// or the configured pose service.
type assessmentRequest struct {
	Questionnaire   models.Questionnaire       `json:"questionnaire"`
	KeypointsByView map[string][]pose.Keypoint `json:"keypointsByView,omitempty"`
	ImagesByView    map[string][]byte          `json:"imagesByView,omitempty"`
	UserNotes       string                     `json:"userNotes,omitempty"`
}

func (s *Server) handleAssessment(w http.ResponseWriter, r *http.Request) {
	var req assessmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	var views []pose.ViewAnalysis
	for _, view := range []pose.View{pose.ViewFront, pose.ViewSide, pose.ViewBack} {
		keypoints, ok := req.KeypointsByView[string(view)]
		if !ok || len(keypoints) == 0 {
			continue
		}
		views = append(views, pose.ViewAnalysis{
			View:     view,
			Analysis: pose.Interpret(pose.ComputeMetrics(keypoints)),
		})
	}

	// Raw photos go through the configured pose service. A scan failure
	// degrades the report to self-report only; it never blocks it.
	if len(views) == 0 && len(req.ImagesByView) > 0 && s.analyzer != nil {
		images := make(map[pose.View][]byte, len(req.ImagesByView))
		for name, data := range req.ImagesByView {
			images[pose.View(name)] = data
		}
		analyzed, err := s.analyzer.AnalyzeViews(r.Context(), images)
		if err != nil {
			s.log.Warn("pose analysis unavailable", "error", err)
		}
		views = analyzed
	}

	// The most confident view drives the report; the rest ride along in the
	// response for display.
	var best *pose.Analysis
	for i := range views {
		if best == nil || views[i].Analysis.ConfidenceScore > best.ConfidenceScore {
			best = &views[i].Analysis
		}
	}

	report := assessment.BuildReport(assessment.Input{
		Questionnaire: &req.Questionnaire,
		PoseAnalysis:  best,
		UserNotes:     req.UserNotes,
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"report": report,
		"views":  views,
	})
}

func (s *Server) handleRoutine(w http.ResponseWriter, r *http.Request) {
	var q models.Questionnaire
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, s.builder.BuildRoutine(&q))
}
