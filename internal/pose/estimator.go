package pose

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Estimator detects body keypoints in one photo. Implementations may run a
// model in-process or call out to an external inference service.
type Estimator interface {
	Estimate(ctx context.Context, image []byte) ([]Keypoint, error)
}

// HTTPEstimator calls an external pose-estimation service that accepts a raw
// image and returns keypoints as JSON.
type HTTPEstimator struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Compile-time check: HTTPEstimator satisfies Estimator.
var _ Estimator = (*HTTPEstimator)(nil)

// NewHTTPEstimator creates an HTTPEstimator targeting the given base URL.
// apiKey may be empty for unauthenticated services.
func NewHTTPEstimator(baseURL, apiKey string) *HTTPEstimator {
	return &HTTPEstimator{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (e *HTTPEstimator) Estimate(ctx context.Context, image []byte) ([]Keypoint, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/v1/pose", bytes.NewReader(image))
	if err != nil {
		return nil, fmt.Errorf("pose estimator: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	if e.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.apiKey)
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pose estimator: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("pose estimator: read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("pose estimator: service returned %d: %s", resp.StatusCode, body)
	}

	var result struct {
		Keypoints []Keypoint `json:"keypoints"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("pose estimator: decode keypoints: %w", err)
	}
	return result.Keypoints, nil
}
