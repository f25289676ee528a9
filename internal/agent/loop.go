// Package agent runs the interactive assistant: an LLM tool-calling loop
// over the local tool registry plus the GitHub dispatch facade, wrapped in
// a line-oriented REPL with markdown rendering.
package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"codeassist/internal/llm"
	"codeassist/internal/logging"
	"codeassist/internal/tools"
)

// DefaultMaxIterations bounds one request's tool-calling loop.
const DefaultMaxIterations = 8

// ToolCallRecord documents one tool execution during a loop run.
type ToolCallRecord struct {
	Tool      string
	Arguments string
	Result    string
	IsError   bool
}

// LoopResult is the outcome of one user turn.
type LoopResult struct {
	Content    string
	ToolCalls  []ToolCallRecord
	Iterations int
}

// Loop drives the model through tool calls until it produces a final
// answer.
type Loop struct {
	client        *llm.Client
	registry      *tools.Registry
	logger        *logging.AppLogger
	systemPrompt  string
	maxIterations int
}

// NewLoop creates a tool-calling loop.
func NewLoop(client *llm.Client, registry *tools.Registry, logger *logging.AppLogger, systemPrompt string, maxIterations int) *Loop {
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}
	return &Loop{
		client:        client,
		registry:      registry,
		logger:        logger,
		systemPrompt:  systemPrompt,
		maxIterations: maxIterations,
	}
}

// Run executes one user turn. history carries prior conversation turns
// (without the system prompt); the returned slice includes this turn's
// messages so the caller can feed it back in.
func (l *Loop) Run(ctx context.Context, history []llm.Message, userMessage string) (*LoopResult, []llm.Message, error) {
	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{Role: "system", Content: l.systemPrompt})
	messages = append(messages, history...)
	messages = append(messages, llm.Message{Role: "user", Content: userMessage})

	result := &LoopResult{}
	toolDefs := l.registry.Definitions()

	for i := 0; i < l.maxIterations; i++ {
		result.Iterations++

		resp, err := l.client.ChatCompletionWithTools(ctx, messages, toolDefs)
		if err != nil {
			return nil, history, fmt.Errorf("model call failed at iteration %d: %w", i+1, err)
		}

		choice := resp.Choices[0]
		assistantMsg := choice.Message

		if choice.FinishReason != "tool_calls" || len(assistantMsg.ToolCalls) == 0 {
			result.Content = assistantMsg.Content
			messages = append(messages, assistantMsg)
			return result, stripSystem(messages), nil
		}

		messages = append(messages, assistantMsg)
		for _, toolCall := range assistantMsg.ToolCalls {
			record := l.executeTool(ctx, toolCall)
			result.ToolCalls = append(result.ToolCalls, record)

			messages = append(messages, llm.Message{
				Role:       "tool",
				Content:    record.Result,
				ToolCallID: toolCall.ID,
			})
			l.logger.Info("Tool executed", "tool", record.Tool, "error", record.IsError)
		}
	}

	return nil, history, fmt.Errorf("no final answer after %d iterations", l.maxIterations)
}

func (l *Loop) executeTool(ctx context.Context, toolCall llm.ToolCall) ToolCallRecord {
	record := ToolCallRecord{
		Tool:      toolCall.Function.Name,
		Arguments: toolCall.Function.Arguments,
	}

	tool, exists := l.registry.Get(toolCall.Function.Name)
	if !exists {
		record.Result = fmt.Sprintf("Tool %q not found", toolCall.Function.Name)
		record.IsError = true
		return record
	}

	l.logger.LogToolCall(record.Tool, decodeArgs(toolCall.Function.Arguments))

	res, err := tool.Execute(ctx, json.RawMessage(toolCall.Function.Arguments))
	if err != nil {
		record.Result = fmt.Sprintf("Tool execution error: %v", err)
		record.IsError = true
		return record
	}

	record.Result = res.Content
	record.IsError = res.IsError
	return record
}

func decodeArgs(raw string) map[string]any {
	var args map[string]any
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return map[string]any{"raw": raw}
	}
	return args
}

// stripSystem drops the leading system message so callers store only the
// conversation itself.
func stripSystem(messages []llm.Message) []llm.Message {
	if len(messages) > 0 && messages[0].Role == "system" {
		return messages[1:]
	}
	return messages
}
