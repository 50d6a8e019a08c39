// Package business provides the HTTP client the bridge uses to reach the
// business operations service.
package business

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/xiaot623/mcp-bridge/internal/domain"
)

// Client is the business service client.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a business service client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// RegisterResponse is the /register response body.
type RegisterResponse struct {
	AgentID string `json:"agent_id"`
}

// StatusAck is the /report_status response body.
type StatusAck struct {
	Message string `json:"message"`
}

// TasksResponse is the /tasks response body.
type TasksResponse struct {
	Tasks map[string]domain.Task `json:"tasks"`
}

// AdderResponse is the /adder response body.
type AdderResponse struct {
	Result int `json:"result"`
}

type errorBody struct {
	Error string `json:"error"`
}

// RegisterAgent registers a new agent with the business service.
func (c *Client) RegisterAgent(ctx context.Context, name, version string) (*RegisterResponse, error) {
	body := map[string]string{"name": name, "version": version}
	var resp RegisterResponse
	if err := c.postJSON(ctx, "/register", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ReportStatus reports agent status to the business service.
func (c *Client) ReportStatus(ctx context.Context, report domain.StatusReport) (*StatusAck, error) {
	var ack StatusAck
	if err := c.postJSON(ctx, "/report_status", report, &ack); err != nil {
		return nil, err
	}
	return &ack, nil
}

// GetTasks retrieves the task table for a registered agent.
func (c *Client) GetTasks(ctx context.Context, agentID string) (map[string]domain.Task, error) {
	var resp TasksResponse
	path := "/tasks?agent_id=" + url.QueryEscape(agentID)
	if err := c.getJSON(ctx, path, &resp); err != nil {
		return nil, err
	}
	return resp.Tasks, nil
}

// AddNumber asks the business service to increment a number.
func (c *Client) AddNumber(ctx context.Context, number int) (int, error) {
	body := map[string]int{"number": number}
	var resp AdderResponse
	if err := c.postJSON(ctx, "/adder", body, &resp); err != nil {
		return 0, err
	}
	return resp.Result, nil
}

// GetJoke fetches a joke through the business service.
func (c *Client) GetJoke(ctx context.Context) (*domain.Joke, error) {
	var joke domain.Joke
	if err := c.getJSON(ctx, "/joke", &joke); err != nil {
		return nil, err
	}
	return &joke, nil
}

func (c *Client) postJSON(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, out)
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	return c.do(req, out)
}

// do executes the request and maps business service failures onto the
// bridge error taxonomy: 404 becomes not_found, everything else that is
// not a 2xx (including transport errors) becomes upstream_unavailable.
func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.NewToolError(domain.ErrCodeUpstreamUnavailable, "business service unreachable: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.NewToolError(domain.ErrCodeUpstreamUnavailable, "failed to read response: %v", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return domain.NewToolError(domain.ErrCodeNotFound, "%s", errorMessage(body, "not found"))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return domain.NewToolError(domain.ErrCodeUpstreamUnavailable, "business service error [%d]: %s", resp.StatusCode, errorMessage(body, string(body)))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return domain.NewToolError(domain.ErrCodeUpstreamUnavailable, "malformed business response: %v", err)
	}
	return nil
}

func errorMessage(body []byte, fallback string) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil && eb.Error != "" {
		return eb.Error
	}
	return fallback
}
