package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"codeassist/internal/llm"
	"codeassist/internal/mcpclient"
)

// ErrNoMatch is returned by a Selector when no catalog tool fits the query.
var ErrNoMatch = errors.New("no tool matches the request")

// Selector maps one free-text query plus the current catalog onto exactly
// one tool invocation, or reports ErrNoMatch. The production selector is
// backed by the LLM; tests use deterministic stubs.
type Selector interface {
	Select(ctx context.Context, query string, catalog *mcpclient.Catalog) (mcpclient.Invocation, error)
}

// SelectorFunc adapts a function to the Selector interface.
type SelectorFunc func(ctx context.Context, query string, catalog *mcpclient.Catalog) (mcpclient.Invocation, error)

func (f SelectorFunc) Select(ctx context.Context, query string, catalog *mcpclient.Catalog) (mcpclient.Invocation, error) {
	return f(ctx, query, catalog)
}

// LLMSelector asks a chat model to pick the tool. The catalog is presented
// as OpenAI-style function definitions; the model's first tool call wins.
type LLMSelector struct {
	client *llm.Client
	prompt string
}

// NewLLMSelector creates a selector backed by the given chat client.
// The system prompt frames the selection task for the model.
func NewLLMSelector(client *llm.Client, systemPrompt string) *LLMSelector {
	return &LLMSelector{
		client: client,
		prompt: systemPrompt,
	}
}

// Select asks the model to choose one tool for the query. A text-only reply
// or a reply naming a tool outside the catalog is a NoMatch, never an
// invocation.
func (s *LLMSelector) Select(ctx context.Context, query string, catalog *mcpclient.Catalog) (mcpclient.Invocation, error) {
	messages := []llm.Message{
		{Role: "system", Content: s.prompt},
		{Role: "user", Content: query},
	}

	resp, err := s.client.ChatCompletionWithTools(ctx, messages, catalogToolDefs(catalog))
	if err != nil {
		return mcpclient.Invocation{}, fmt.Errorf("selector call failed: %w", err)
	}

	choice := resp.Choices[0]
	if len(choice.Message.ToolCalls) == 0 {
		return mcpclient.Invocation{}, ErrNoMatch
	}

	call := choice.Message.ToolCalls[0].Function
	if !catalog.Has(call.Name) {
		return mcpclient.Invocation{}, ErrNoMatch
	}

	args, err := call.ArgumentsMap()
	if err != nil {
		return mcpclient.Invocation{}, fmt.Errorf("selector produced malformed arguments for %q: %w", call.Name, err)
	}

	return mcpclient.NewInvocation(call.Name, args), nil
}

// catalogToolDefs converts catalog descriptors into chat tool definitions.
func catalogToolDefs(catalog *mcpclient.Catalog) []llm.ToolDefinition {
	descriptors := catalog.Descriptors()
	defs := make([]llm.ToolDefinition, 0, len(descriptors))
	for _, d := range descriptors {
		params, err := json.Marshal(d.Schema)
		if err != nil {
			params = []byte(`{"type":"object"}`)
		}
		defs = append(defs, llm.ToolDefinition{
			Type: "function",
			Function: llm.Function{
				Name:        d.Name,
				Description: d.Description,
				Parameters:  params,
			},
		})
	}
	return defs
}
