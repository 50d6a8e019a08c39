// Package domain defines the core domain models for the bridge and the
// business service.
package domain

import (
	"encoding/json"
	"time"
)

// Agent is a registered external entity. Agents are created on
// registration and never mutated or deleted.
type Agent struct {
	AgentID   string    `json:"agent_id"`
	Name      string    `json:"name"`
	Version   string    `json:"version"`
	CreatedAt time.Time `json:"created_at"`
}

// StatusReport is the ephemeral input to the report_status operation.
// Metrics are accepted but not retained.
type StatusReport struct {
	AgentID     string   `json:"agent_id"`
	Status      string   `json:"status"`
	CPUUsage    *float64 `json:"cpu_usage,omitempty"`
	MemoryUsage *float64 `json:"memory_usage,omitempty"`
}

// Task is a static work item shared by every agent.
type Task struct {
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

// Joke is the payload returned by the joke source.
type Joke struct {
	Setup     string `json:"setup"`
	Punchline string `json:"punchline"`
}

// Envelope is the uniform wrapper distinguishing a successful tool result
// from a typed error. Exactly one of Result or Error is set.
type Envelope struct {
	OK     bool            `json:"ok"`
	Result json.RawMessage `json:"result,omitempty"`
	Text   string          `json:"text,omitempty"`
	Error  *ToolError      `json:"error,omitempty"`
}

// CallOutcome is the terminal outcome of a dispatched call.
type CallOutcome string

const (
	CallOutcomeSucceeded CallOutcome = "succeeded"
	CallOutcomeFailed    CallOutcome = "failed"
)

// CallRecord is an append-only observability record, one per dispatch.
type CallRecord struct {
	CallID     string      `json:"call_id"`
	ClientID   string      `json:"client_id"`
	ToolName   string      `json:"tool_name"`
	Outcome    CallOutcome `json:"outcome"`
	ErrorCode  string      `json:"error_code,omitempty"`
	StartedAt  time.Time   `json:"started_at"`
	DurationMs int64       `json:"duration_ms"`
}

// ClientSession tracks a distinct caller seen by the bridge.
type ClientSession struct {
	ClientID      string    `json:"client_id"`
	ConnectedAt   time.Time `json:"connected_at"`
	RequestsCount int       `json:"requests_count"`
}

// Stats is the aggregate monitoring view exposed by the bridge.
type Stats struct {
	TotalCalls       int `json:"total_calls"`
	SucceededCalls   int `json:"succeeded_calls"`
	FailedCalls      int `json:"failed_calls"`
	ConnectedClients int `json:"connected_clients"`
}
