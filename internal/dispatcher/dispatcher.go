// Package dispatcher validates tool calls against the catalog and routes
// them to their business operation, wrapping every outcome in a uniform
// envelope.
package dispatcher

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/xiaot623/mcp-bridge/internal/domain"
	"github.com/xiaot623/mcp-bridge/internal/policy"
	"github.com/xiaot623/mcp-bridge/internal/store"
)

// Dispatcher routes validated tool calls to their handlers.
type Dispatcher struct {
	catalog      *Catalog
	policyEngine *policy.Engine
	store        *store.SQLiteStore
}

// New creates a dispatcher over the given catalog, policy engine, and
// observability store.
func New(catalog *Catalog, policyEngine *policy.Engine, st *store.SQLiteStore) *Dispatcher {
	return &Dispatcher{
		catalog:      catalog,
		policyEngine: policyEngine,
		store:        st,
	}
}

// Catalog exposes the tool catalog for listing.
func (d *Dispatcher) Catalog() *Catalog {
	return d.catalog
}

// Dispatch validates and executes one tool call. It never panics past
// this boundary and never returns a Go error: every outcome, success or
// failure, is expressed in the envelope. A call record is emitted
// regardless of outcome.
func (d *Dispatcher) Dispatch(ctx context.Context, clientID, toolName string, args map[string]interface{}) *domain.Envelope {
	startedAt := time.Now()
	env := d.dispatch(ctx, clientID, toolName, args)
	d.recordCall(ctx, clientID, toolName, startedAt, env)
	return env
}

func (d *Dispatcher) dispatch(ctx context.Context, clientID, toolName string, args map[string]interface{}) *domain.Envelope {
	tool := d.catalog.Get(toolName)
	if tool == nil {
		return errEnvelope(domain.NewToolError(domain.ErrCodeUnknownTool, "unknown tool: %s", toolName))
	}

	if args == nil {
		args = map[string]interface{}{}
	}
	validated, toolErr := validateArgs(tool.Params, args)
	if toolErr != nil {
		return errEnvelope(toolErr)
	}

	decision, reason, err := d.policyEngine.Evaluate(ctx, map[string]interface{}{
		"tool_name": toolName,
		"client_id": clientID,
		"args":      validated,
	})
	if err != nil {
		return errEnvelope(domain.NewToolError(domain.ErrCodePolicyDenied, "policy evaluation failed: %v", err))
	}
	if decision == "block" {
		if reason == "" {
			reason = "call blocked by policy"
		}
		return errEnvelope(domain.NewToolError(domain.ErrCodePolicyDenied, "%s", reason))
	}

	result, text, err := tool.Handler(ctx, validated)
	if err != nil {
		var toolErr *domain.ToolError
		if errors.As(err, &toolErr) {
			return errEnvelope(toolErr)
		}
		return errEnvelope(domain.NewToolError(domain.ErrCodeUpstreamUnavailable, "%v", err))
	}

	return &domain.Envelope{OK: true, Result: result, Text: text}
}

func (d *Dispatcher) recordCall(ctx context.Context, clientID, toolName string, startedAt time.Time, env *domain.Envelope) {
	rec := &domain.CallRecord{
		CallID:     "call_" + uuid.New().String()[:8],
		ClientID:   clientID,
		ToolName:   toolName,
		Outcome:    domain.CallOutcomeSucceeded,
		StartedAt:  startedAt,
		DurationMs: time.Since(startedAt).Milliseconds(),
	}
	if env.Error != nil {
		rec.Outcome = domain.CallOutcomeFailed
		rec.ErrorCode = string(env.Error.Code)
	}

	if err := d.store.RecordCall(ctx, rec); err != nil {
		log.Printf("WARN: failed to record call %s for client %s: %v", toolName, clientID, err)
	}
}

func errEnvelope(toolErr *domain.ToolError) *domain.Envelope {
	return &domain.Envelope{OK: false, Error: toolErr}
}
