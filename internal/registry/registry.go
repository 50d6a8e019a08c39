// Package registry implements the in-memory business operations registry:
// agent registration, status acknowledgement, the static task table, and
// the increment demo operation.
package registry

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/xiaot623/mcp-bridge/internal/domain"
)

// ErrAgentNotFound is returned when an operation references an agent id
// that was never issued by Register.
var ErrAgentNotFound = errors.New("agent not found")

// Registry owns all mutable business state. All state is process-lifetime
// only; nothing survives a restart.
type Registry struct {
	mu     sync.RWMutex
	agents map[string]domain.Agent
	tasks  map[string]domain.Task
}

// New creates a registry with the seeded task table. The task table is
// read-only for the lifetime of the process and identical for every agent.
func New() *Registry {
	return &Registry{
		agents: make(map[string]domain.Agent),
		tasks: map[string]domain.Task{
			"task1": {Description: "Update inventory", Priority: "high"},
			"task2": {Description: "Sync logs", Priority: "medium"},
		},
	}
}

// Register stores a new agent under a freshly generated id and returns it.
func (r *Registry) Register(name, version string) string {
	agentID := uuid.New().String()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.agents[agentID] = domain.Agent{
		AgentID:   agentID,
		Name:      name,
		Version:   version,
		CreatedAt: time.Now(),
	}
	return agentID
}

// ReportStatus validates that the reporting agent exists and returns an
// acknowledgement message. The reported metrics are not retained.
func (r *Registry) ReportStatus(report domain.StatusReport) (string, error) {
	r.mu.RLock()
	_, ok := r.agents[report.AgentID]
	r.mu.RUnlock()
	if !ok {
		return "", ErrAgentNotFound
	}
	return fmt.Sprintf("Status received for agent %s", report.AgentID), nil
}

// Tasks returns the shared task table for a registered agent.
func (r *Registry) Tasks(agentID string) (map[string]domain.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, ok := r.agents[agentID]; !ok {
		return nil, ErrAgentNotFound
	}

	tasks := make(map[string]domain.Task, len(r.tasks))
	for k, v := range r.tasks {
		tasks[k] = v
	}
	return tasks, nil
}

// Add implements the increment demo operation.
func (r *Registry) Add(number int) int {
	return number + 1
}

// AgentCount reports the number of registered agents.
func (r *Registry) AgentCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.agents)
}
