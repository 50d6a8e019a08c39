package dispatcher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/xiaot623/mcp-bridge/internal/business"
	"github.com/xiaot623/mcp-bridge/internal/domain"
)

// BuildCatalog assembles the fixed tool catalog, binding every tool to
// its business service operation.
func BuildCatalog(bc *business.Client) *Catalog {
	c := NewCatalog()

	c.MustRegister(&Tool{
		Name:        "register_agent",
		Description: "Register a new agent with the business server",
		Params: []Param{
			{Name: "name", Type: ParamTypeString, Description: "Name of the agent to register", Required: true},
			{Name: "version", Type: ParamTypeString, Description: "Version of the agent", Required: true},
		},
		Handler: func(ctx context.Context, args map[string]interface{}) (json.RawMessage, string, error) {
			resp, err := bc.RegisterAgent(ctx, args["name"].(string), args["version"].(string))
			if err != nil {
				return nil, "", err
			}
			result, _ := json.Marshal(resp)
			return result, fmt.Sprintf("Agent registered successfully. Agent ID: %s", resp.AgentID), nil
		},
	})

	c.MustRegister(&Tool{
		Name:        "report_status",
		Description: "Report agent status to the business server",
		Params: []Param{
			{Name: "agent_id", Type: ParamTypeString, Description: "ID of the agent reporting status", Required: true},
			{Name: "status", Type: ParamTypeString, Description: "Current status of the agent", Required: true},
			{Name: "cpu_usage", Type: ParamTypeNumber, Description: "CPU usage percentage (optional)"},
			{Name: "memory_usage", Type: ParamTypeNumber, Description: "Memory usage percentage (optional)"},
		},
		Handler: func(ctx context.Context, args map[string]interface{}) (json.RawMessage, string, error) {
			report := domain.StatusReport{
				AgentID: args["agent_id"].(string),
				Status:  args["status"].(string),
			}
			if v, ok := asFloat(args["cpu_usage"]); ok {
				report.CPUUsage = &v
			}
			if v, ok := asFloat(args["memory_usage"]); ok {
				report.MemoryUsage = &v
			}

			ack, err := bc.ReportStatus(ctx, report)
			if err != nil {
				return nil, "", err
			}
			result, _ := json.Marshal(ack)
			return result, fmt.Sprintf("Status reported successfully: %s", ack.Message), nil
		},
	})

	c.MustRegister(&Tool{
		Name:        "get_tasks",
		Description: "Get tasks assigned to a specific agent",
		Params: []Param{
			{Name: "agent_id", Type: ParamTypeString, Description: "ID of the agent to get tasks for", Required: true},
		},
		Handler: func(ctx context.Context, args map[string]interface{}) (json.RawMessage, string, error) {
			agentID := args["agent_id"].(string)
			tasks, err := bc.GetTasks(ctx, agentID)
			if err != nil {
				return nil, "", err
			}
			result, _ := json.Marshal(map[string]interface{}{"tasks": tasks})
			pretty, _ := json.MarshalIndent(tasks, "", "  ")
			return result, fmt.Sprintf("Tasks for agent %s:\n%s", agentID, pretty), nil
		},
	})

	c.MustRegister(&Tool{
		Name:        "add_number",
		Description: "Add 1 to a given number using the business server",
		Params: []Param{
			{Name: "number", Type: ParamTypeInteger, Description: "The number to add 1 to", Required: true},
		},
		Handler: func(ctx context.Context, args map[string]interface{}) (json.RawMessage, string, error) {
			number, _ := asFloat(args["number"])
			sum, err := bc.AddNumber(ctx, int(number))
			if err != nil {
				return nil, "", err
			}
			result, _ := json.Marshal(map[string]int{"result": sum})
			return result, fmt.Sprintf("Result: %d + 1 = %d", int(number), sum), nil
		},
	})

	c.MustRegister(&Tool{
		Name:        "get_joke",
		Description: "Get a random joke from the business server",
		Params:      []Param{},
		Handler: func(ctx context.Context, args map[string]interface{}) (json.RawMessage, string, error) {
			joke, err := bc.GetJoke(ctx)
			if err != nil {
				return nil, "", err
			}
			result, _ := json.Marshal(joke)
			return result, fmt.Sprintf("Here's a joke for you:\n\nSetup: %s\nPunchline: %s", joke.Setup, joke.Punchline), nil
		},
	})

	return c
}
