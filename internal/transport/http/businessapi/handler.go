// Package businessapi provides HTTP handlers for the business operations
// service.
package businessapi

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/xiaot623/mcp-bridge/internal/domain"
	"github.com/xiaot623/mcp-bridge/internal/joke"
	"github.com/xiaot623/mcp-bridge/internal/registry"
)

// Handler handles business service HTTP requests.
type Handler struct {
	registry *registry.Registry
	jokes    *joke.Client
}

// NewHandler creates a new business API handler.
func NewHandler(reg *registry.Registry, jokes *joke.Client) *Handler {
	return &Handler{
		registry: reg,
		jokes:    jokes,
	}
}

// RegisterRoutes registers business routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/register", h.RegisterAgent)
	e.POST("/report_status", h.ReportStatus)
	e.GET("/tasks", h.GetTasks)
	e.POST("/adder", h.Adder)
	e.GET("/joke", h.GetJoke)
	e.GET("/health", h.Health)
}

// RegisterRequest is the request to register an agent.
type RegisterRequest struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// NumberInput is the request body for the adder operation.
type NumberInput struct {
	Number *int `json:"number"`
}

// RegisterAgent registers a new agent.
// POST /register
func (h *Handler) RegisterAgent(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "name is required"})
	}
	if req.Version == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "version is required"})
	}

	agentID := h.registry.Register(req.Name, req.Version)
	return c.JSON(http.StatusOK, map[string]string{"agent_id": agentID})
}

// ReportStatus acknowledges a status report from a registered agent.
// POST /report_status
func (h *Handler) ReportStatus(c echo.Context) error {
	var report domain.StatusReport
	if err := c.Bind(&report); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if report.AgentID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "agent_id is required"})
	}
	if report.Status == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "status is required"})
	}

	message, err := h.registry.ReportStatus(report)
	if err != nil {
		if errors.Is(err, registry.ErrAgentNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "agent not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]string{"message": message})
}

// GetTasks returns the task table for a registered agent.
// GET /tasks?agent_id=...
func (h *Handler) GetTasks(c echo.Context) error {
	agentID := c.QueryParam("agent_id")
	if agentID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "agent_id is required"})
	}

	tasks, err := h.registry.Tasks(agentID)
	if err != nil {
		if errors.Is(err, registry.ErrAgentNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "agent not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"tasks": tasks})
}

// Adder increments the given number.
// POST /adder
func (h *Handler) Adder(c echo.Context) error {
	var input NumberInput
	if err := c.Bind(&input); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if input.Number == nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "number is required"})
	}

	return c.JSON(http.StatusOK, map[string]int{"result": h.registry.Add(*input.Number)})
}

// GetJoke fetches a joke from the external source.
// GET /joke
func (h *Handler) GetJoke(c echo.Context) error {
	jk, err := h.jokes.Random(c.Request().Context())
	if err != nil {
		if errors.Is(err, joke.ErrUnavailable) {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "could not fetch joke"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, jk)
}

// Health returns health status.
// GET /health
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": "0.1.0",
	})
}
