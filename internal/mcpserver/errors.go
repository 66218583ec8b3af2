package mcpserver

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/zbennett/bbo-extension/internal/dd"
	"github.com/zbennett/bbo-extension/internal/notation"
)

var errNoDeal = errors.New("no_live_deal")

func toolResult(data any) *mcp.CallToolResult {
	return mcp.NewToolResultStructuredOnly(data)
}

func toolError(code, message string) *mcp.CallToolResult {
	result := mcp.NewToolResultStructured(
		map[string]any{
			"error": map[string]any{
				"code":    code,
				"message": message,
			},
		},
		fmt.Sprintf("%s: %s", code, message),
	)
	result.IsError = true
	return result
}

// ErrorCode maps domain errors to the codes shared by the tools and the
// HTTP API.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return "internal_error"
	case errors.Is(err, errNoDeal):
		return "no_deal"
	case errors.Is(err, dd.ErrNotCached):
		return "not_cached"
	case errors.Is(err, dd.ErrDuplicate):
		return "in_flight"
	case errors.Is(err, dd.ErrIncompleteDeal),
		errors.Is(err, notation.ErrBadHand),
		errors.Is(err, notation.ErrHandSize),
		errors.Is(err, notation.ErrIncomplete),
		errors.Is(err, notation.ErrDuplicateCard),
		errors.Is(err, notation.ErrBadCard):
		return "invalid_request"
	case errors.Is(err, dd.ErrSolverResponse):
		return "solver_error"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "internal_error"
	}
}

func mapDomainError(err error) *mcp.CallToolResult {
	if err == nil {
		return toolError("internal_error", "unknown error")
	}
	return toolError(ErrorCode(err), err.Error())
}
