// ABOUTME: HTTP client for the capacity planner API
// ABOUTME: Wraps API calls with proper error handling for CLI usage

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Martel-IT/wp-nixos/planner"
	"github.com/Martel-IT/wp-nixos/profile"
)

// Client is the API client for the capacity planner service
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a new API client with the given base URL
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SetHTTPClient allows overriding the HTTP client (useful for testing)
func (c *Client) SetHTTPClient(httpClient *http.Client) {
	c.httpClient = httpClient
}

// HealthResponse represents the /api/v1/health endpoint response
type HealthResponse struct {
	Status      string `json:"status"`
	FactsSource string `json:"facts_source"`
	FactsProbe  string `json:"facts_probe"`
}

// FactsResponse represents the /api/v1/facts endpoint response
type FactsResponse struct {
	Source string                `json:"source"`
	Facts  planner.HardwareFacts `json:"facts"`
}

// PlanRequest is the input for the plan endpoints
type PlanRequest struct {
	Facts       *planner.HardwareFacts `json:"facts,omitempty"`
	TenantCount uint                   `json:"tenant_count"`
	Policy      *planner.TuningPolicy  `json:"policy,omitempty"`
}

// HardeningRequest asks for the effective profile of a managed service
type HardeningRequest struct {
	Service  string            `json:"service"`
	Level    profile.Level     `json:"level,omitempty"`
	Override *profile.Override `json:"override,omitempty"`
}

// HardeningResponse carries the composed profile
type HardeningResponse struct {
	Service string          `json:"service"`
	Level   profile.Level   `json:"level"`
	Profile profile.Profile `json:"profile"`
}

// ErrorResponse represents an API error
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

// Health calls GET /api/v1/health
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var health HealthResponse
	if err := c.getJSON(ctx, "/api/v1/health", &health); err != nil {
		return nil, err
	}
	return &health, nil
}

// Facts calls GET /api/v1/facts
func (c *Client) Facts(ctx context.Context) (*FactsResponse, error) {
	var facts FactsResponse
	if err := c.getJSON(ctx, "/api/v1/facts", &facts); err != nil {
		return nil, err
	}
	return &facts, nil
}

// Policy calls GET /api/v1/policy
func (c *Client) Policy(ctx context.Context) (*planner.TuningPolicy, error) {
	var policy planner.TuningPolicy
	if err := c.getJSON(ctx, "/api/v1/policy", &policy); err != nil {
		return nil, err
	}
	return &policy, nil
}

// Plan calls POST /api/v1/plan
func (c *Client) Plan(ctx context.Context, input *PlanRequest) (*planner.AllocationPlan, error) {
	var plan planner.AllocationPlan
	if err := c.postJSON(ctx, "/api/v1/plan", input, &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

// PlanSummary calls POST /api/v1/plan/summary and returns the text report
func (c *Client) PlanSummary(ctx context.Context, input *PlanRequest) (string, error) {
	body, err := json.Marshal(input)
	if err != nil {
		return "", fmt.Errorf("failed to marshal input: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/plan/summary", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", c.handleRequestError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", c.handleErrorResponse(resp)
	}

	text, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("invalid response from backend: %w", err)
	}
	return string(text), nil
}

// Hardening calls POST /api/v1/hardening
func (c *Client) Hardening(ctx context.Context, input *HardeningRequest) (*HardeningResponse, error) {
	var resp HardeningResponse
	if err := c.postJSON(ctx, "/api/v1/hardening", input, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.handleRequestError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.handleErrorResponse(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("invalid response from backend: %w", err)
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, path string, in, out interface{}) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to marshal input: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.handleRequestError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.handleErrorResponse(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("invalid response from backend: %w", err)
	}
	return nil
}

// handleRequestError converts context errors to user-friendly messages
func (c *Client) handleRequestError(ctx context.Context, err error) error {
	if ctx.Err() == context.Canceled {
		return fmt.Errorf("request canceled")
	}
	if ctx.Err() == context.DeadlineExceeded {
		return fmt.Errorf("request timed out")
	}
	return fmt.Errorf("cannot connect to backend at %s: %w", c.baseURL, err)
}

// handleErrorResponse parses API error responses
func (c *Client) handleErrorResponse(resp *http.Response) error {
	var errResp ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
		return fmt.Errorf("backend returned status %d", resp.StatusCode)
	}
	return fmt.Errorf("backend error: %s", errResp.Error)
}
