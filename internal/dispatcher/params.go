package dispatcher

import (
	"math"

	"github.com/xiaot623/mcp-bridge/internal/domain"
)

// validateArgs checks the raw arguments against the tool's declared
// parameters and returns a map holding only the declared fields.
// Undeclared extras are dropped rather than rejected.
func validateArgs(params []Param, args map[string]interface{}) (map[string]interface{}, *domain.ToolError) {
	validated := make(map[string]interface{}, len(params))

	for _, p := range params {
		raw, present := args[p.Name]
		if !present || raw == nil {
			if p.Required {
				return nil, domain.NewToolError(domain.ErrCodeInvalidArguments, "missing required argument %q", p.Name)
			}
			continue
		}

		switch p.Type {
		case ParamTypeString:
			if _, ok := raw.(string); !ok {
				return nil, domain.NewToolError(domain.ErrCodeInvalidArguments, "argument %q must be a string", p.Name)
			}
		case ParamTypeNumber:
			if !isNumber(raw) {
				return nil, domain.NewToolError(domain.ErrCodeInvalidArguments, "argument %q must be a number", p.Name)
			}
		case ParamTypeInteger:
			f, ok := asFloat(raw)
			if !ok || f != math.Trunc(f) {
				return nil, domain.NewToolError(domain.ErrCodeInvalidArguments, "argument %q must be an integer", p.Name)
			}
		}

		validated[p.Name] = raw
	}

	return validated, nil
}

func isNumber(v interface{}) bool {
	_, ok := asFloat(v)
	return ok
}

// asFloat normalizes the numeric representations encoding/json produces.
func asFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
