package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"codeassist/internal/dispatch"
	"codeassist/internal/tools"
)

// GitHubTool exposes the dispatch facade to the model as one tool. The
// model sees a single github_assistant capability; tool selection against
// the MCP catalog happens behind the facade.
type GitHubTool struct {
	facade *dispatch.Facade
}

// GitHubArgs are the arguments for github_assistant.
type GitHubArgs struct {
	Request string `json:"request"`
}

func NewGitHubTool(facade *dispatch.Facade) *GitHubTool {
	return &GitHubTool{facade: facade}
}

func (t *GitHubTool) Name() string {
	return "github_assistant"
}

func (t *GitHubTool) Description() string {
	return "Perform any GitHub operation: search repositories, read files from repositories, list issues and pull requests, create issues, and so on. Pass the user's GitHub request in plain language."
}

func (t *GitHubTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"request": {
				"type": "string",
				"description": "The GitHub request in plain language, e.g. 'list the repositories of user Abhitheshek'"
			}
		},
		"required": ["request"]
	}`)
}

func (t *GitHubTool) Execute(ctx context.Context, args json.RawMessage) (tools.Result, error) {
	var a GitHubArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return tools.Result{}, fmt.Errorf("invalid github_assistant arguments: %w", err)
	}
	if a.Request == "" {
		return tools.Errorf("request cannot be empty"), nil
	}

	// Dispatch never fails structurally; failures come back as text.
	return tools.Result{Content: t.facade.Dispatch(ctx, a.Request)}, nil
}
