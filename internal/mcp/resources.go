package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func jsonResource(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (h *handlers) currentProgram(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	prog, err := h.ds.GetProgram(ctx, "")
	if err != nil {
		return nil, err
	}
	if prog == nil {
		return nil, fmt.Errorf("no program found")
	}
	return jsonResource(req.Params.URI, prog)
}

func (h *handlers) weeklyPlan(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	outlook, err := h.ds.GetNextWeekPlan(ctx, "")
	if err != nil {
		return nil, err
	}
	if outlook == nil {
		return nil, fmt.Errorf("no program found")
	}

	progress, err := h.ds.GetProgress(ctx, "")
	if err != nil {
		h.log.Warn("weekly_plan: progress lookup failed", "error", err)
	}

	return jsonResource(req.Params.URI, map[string]any{
		"phase":        outlook.Phase,
		"signals":      outlook.Signals,
		"nextWeekPlan": outlook.NextWeekPlan,
		"progress":     progress,
	})
}
