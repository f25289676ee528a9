// Package tools defines the local tool interface and registry the agent
// loop executes against. Remote GitHub tools live behind the dispatch
// facade; everything here runs in-process against the workspace.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
)

// Result is the outcome of one tool execution. IsError marks tool-level
// failures that should be shown to the model rather than abort the loop.
type Result struct {
	Content string `json:"content"`
	IsError bool   `json:"is_error,omitempty"`
}

// Tool is one locally executable capability.
type Tool interface {
	// Name returns the unique tool name.
	Name() string

	// Description explains what the tool does, for the model.
	Description() string

	// Parameters returns the JSON-schema for the tool's arguments.
	Parameters() json.RawMessage

	// Execute runs the tool with JSON-encoded arguments.
	Execute(ctx context.Context, args json.RawMessage) (Result, error)
}

// Errorf builds an error Result from a format string. Tool-level failures
// flow back into the conversation, so they are results, not Go errors.
func Errorf(format string, args ...any) Result {
	return Result{Content: fmt.Sprintf(format, args...), IsError: true}
}

// Textf builds a success Result from a format string.
func Textf(format string, args ...any) Result {
	return Result{Content: fmt.Sprintf(format, args...)}
}
