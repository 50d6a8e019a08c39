package domain

import "fmt"

// ErrorCode classifies a per-call failure. All codes are recoverable;
// none abort the process.
type ErrorCode string

const (
	ErrCodeUnknownTool         ErrorCode = "unknown_tool"
	ErrCodeInvalidArguments    ErrorCode = "invalid_arguments"
	ErrCodeNotFound            ErrorCode = "not_found"
	ErrCodeUpstreamUnavailable ErrorCode = "upstream_unavailable"
	ErrCodePolicyDenied        ErrorCode = "policy_denied"
)

// ToolError is a typed failure surfaced to the caller.
type ToolError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewToolError creates a ToolError with a formatted message.
func NewToolError(code ErrorCode, format string, args ...interface{}) *ToolError {
	return &ToolError{Code: code, Message: fmt.Sprintf(format, args...)}
}
