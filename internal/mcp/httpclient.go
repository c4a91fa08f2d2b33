package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/meltforce/bodycoach/internal/assessment"
	"github.com/meltforce/bodycoach/internal/catalog"
	"github.com/meltforce/bodycoach/internal/models"
	"github.com/meltforce/bodycoach/internal/progression"
)

// HTTPClient implements DataSource by calling the BodyCoach REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// data lives on the remote server (accessed over Tailscale). apiKey is
// only needed for the assessment tool, which hits a mutating endpoint.
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL, apiKey string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) do(ctx context.Context, method, path string, params url.Values, reqBody any) ([]byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var body io.Reader
	if reqBody != nil {
		data, err := json.Marshal(reqBody)
		if err != nil {
			return nil, fmt.Errorf("httpclient: encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: create request: %w", err)
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, respBody)
	}

	return respBody, nil
}

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	return c.do(ctx, http.MethodGet, path, params, nil)
}

// programPath maps an optional program ID to the matching REST path.
func programPath(programID, suffix string) string {
	if programID == "" {
		programID = "latest"
	}
	return "/api/v1/programs/" + url.PathEscape(programID) + suffix
}

func (c *HTTPClient) GetProgram(ctx context.Context, programID string) (*models.Program, error) {
	path := "/api/v1/programs/latest"
	if programID != "" {
		path = programPath(programID, "")
	}

	body, err := c.get(ctx, path, nil)
	if err != nil || body == nil {
		return nil, err
	}

	var prog models.Program
	if err := json.Unmarshal(body, &prog); err != nil {
		return nil, fmt.Errorf("httpclient: decode program: %w", err)
	}
	return &prog, nil
}

// resolveProgramID turns an empty ID into the latest program's ID, since the
// progress and next-week routes have no "latest" alias.
func (c *HTTPClient) resolveProgramID(ctx context.Context, programID string) (string, error) {
	if programID != "" {
		return programID, nil
	}
	prog, err := c.GetProgram(ctx, "")
	if err != nil {
		return "", err
	}
	if prog == nil {
		return "", nil
	}
	return prog.ID, nil
}

func (c *HTTPClient) GetProgress(ctx context.Context, programID string) (*models.ProgramProgress, error) {
	id, err := c.resolveProgramID(ctx, programID)
	if err != nil || id == "" {
		return nil, err
	}

	body, err := c.get(ctx, programPath(id, "/progress"), nil)
	if err != nil || body == nil {
		return nil, err
	}

	var progress models.ProgramProgress
	if err := json.Unmarshal(body, &progress); err != nil {
		return nil, fmt.Errorf("httpclient: decode progress: %w", err)
	}
	return &progress, nil
}

func (c *HTTPClient) GetNextWeekPlan(ctx context.Context, programID string) (*WeekOutlook, error) {
	id, err := c.resolveProgramID(ctx, programID)
	if err != nil || id == "" {
		return nil, err
	}

	body, err := c.get(ctx, programPath(id, "/next-week"), nil)
	if err != nil || body == nil {
		return nil, err
	}

	var outlook WeekOutlook
	if err := json.Unmarshal(body, &outlook); err != nil {
		return nil, fmt.Errorf("httpclient: decode next-week plan: %w", err)
	}
	return &outlook, nil
}

func (c *HTTPClient) GetRecommendation(ctx context.Context, exerciseID string) (*progression.Result, error) {
	body, err := c.get(ctx, "/api/v1/exercises/"+url.PathEscape(exerciseID)+"/recommendation", nil)
	if err != nil {
		return nil, err
	}
	if body == nil {
		return nil, fmt.Errorf("unknown exercise %q", exerciseID)
	}

	var result progression.Result
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("httpclient: decode recommendation: %w", err)
	}
	return &result, nil
}

func (c *HTTPClient) ListExercises(ctx context.Context) ([]catalog.Exercise, error) {
	body, err := c.get(ctx, "/api/v1/exercises", nil)
	if err != nil {
		return nil, err
	}

	var exercises []catalog.Exercise
	if err := json.Unmarshal(body, &exercises); err != nil {
		return nil, fmt.Errorf("httpclient: decode exercises: %w", err)
	}
	return exercises, nil
}

func (c *HTTPClient) GetExerciseHistory(ctx context.Context, exerciseID string, limit int) ([]models.ExerciseLog, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	body, err := c.get(ctx, "/api/v1/exercises/"+url.PathEscape(exerciseID)+"/logs", params)
	if err != nil {
		return nil, err
	}
	if body == nil {
		return nil, fmt.Errorf("unknown exercise %q", exerciseID)
	}

	var logs []models.ExerciseLog
	if err := json.Unmarshal(body, &logs); err != nil {
		return nil, fmt.Errorf("httpclient: decode exercise logs: %w", err)
	}
	return logs, nil
}

func (c *HTTPClient) GetAssessment(ctx context.Context, q *models.Questionnaire, notes string) (*assessment.Report, error) {
	body, err := c.do(ctx, http.MethodPost, "/api/v1/assessment", nil, map[string]any{
		"questionnaire": q,
		"userNotes":     notes,
	})
	if err != nil || body == nil {
		return nil, err
	}

	var resp struct {
		Report *assessment.Report `json:"report"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("httpclient: decode assessment: %w", err)
	}
	return resp.Report, nil
}
