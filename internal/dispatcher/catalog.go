package dispatcher

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/xiaot623/mcp-bridge/internal/domain"
)

// ParamType enumerates the argument types a tool can declare.
type ParamType string

const (
	ParamTypeString  ParamType = "string"
	ParamTypeNumber  ParamType = "number"
	ParamTypeInteger ParamType = "integer"
)

// Param declares a single tool argument.
type Param struct {
	Name        string
	Type        ParamType
	Description string
	Required    bool
}

// HandlerFunc executes a tool with validated arguments. It returns the
// structured result and a human-readable summary for chat display.
type HandlerFunc func(ctx context.Context, args map[string]interface{}) (json.RawMessage, string, error)

// Tool is one catalog entry: a named operation with its declared
// parameters and the handler it routes to.
type Tool struct {
	Name        string
	Description string
	Params      []Param
	Handler     HandlerFunc
}

// Catalog stores tools keyed by name. It is populated once at startup and
// read-only afterwards.
type Catalog struct {
	mu    sync.RWMutex
	tools map[string]*Tool
	names []string
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		tools: make(map[string]*Tool),
	}
}

// Register adds a tool to the catalog.
func (c *Catalog) Register(tool *Tool) error {
	if tool == nil || tool.Name == "" {
		return fmt.Errorf("tool name is required")
	}
	if tool.Handler == nil {
		return fmt.Errorf("handler is required for %s", tool.Name)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.tools[tool.Name]; exists {
		return fmt.Errorf("tool already registered for %s", tool.Name)
	}
	c.tools[tool.Name] = tool
	c.names = append(c.names, tool.Name)
	return nil
}

// MustRegister adds a tool to the catalog or panics.
func (c *Catalog) MustRegister(tool *Tool) {
	if err := c.Register(tool); err != nil {
		panic(err)
	}
}

// Get looks up a tool by name.
func (c *Catalog) Get(name string) *Tool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tools[name]
}

// Len reports the number of registered tools.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.tools)
}

// Descriptors renders the catalog in registration order for tools/list.
func (c *Catalog) Descriptors() []domain.ToolDescriptor {
	c.mu.RLock()
	defer c.mu.RUnlock()

	descriptors := make([]domain.ToolDescriptor, 0, len(c.names))
	for _, name := range c.names {
		tool := c.tools[name]
		descriptors = append(descriptors, domain.ToolDescriptor{
			Name:        tool.Name,
			Description: tool.Description,
			InputSchema: renderSchema(tool.Params),
		})
	}
	return descriptors
}

// renderSchema builds the JSON-schema input descriptor from the declared
// parameters.
func renderSchema(params []Param) json.RawMessage {
	properties := make(map[string]interface{}, len(params))
	required := make([]string, 0, len(params))
	for _, p := range params {
		properties[p.Name] = map[string]string{
			"type":        string(p.Type),
			"description": p.Description,
		}
		if p.Required {
			required = append(required, p.Name)
		}
	}

	schema, _ := json.Marshal(map[string]interface{}{
		"type":       "object",
		"properties": properties,
		"required":   required,
	})
	return schema
}
