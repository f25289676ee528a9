package local

import (
	"context"
	"encoding/json"
	"fmt"

	"codeassist/internal/tools"
	"codeassist/pkg/fileops"
)

// ReadFileTool reads one workspace file.
type ReadFileTool struct {
	ws *fileops.Workspace
}

// ReadFileArgs are the arguments for read_file.
type ReadFileArgs struct {
	Path string `json:"path"`
}

func NewReadFileTool(ws *fileops.Workspace) *ReadFileTool {
	return &ReadFileTool{ws: ws}
}

func (t *ReadFileTool) Name() string {
	return "read_file"
}

func (t *ReadFileTool) Description() string {
	return "Read the contents of a file in the workspace. The path is relative to the workspace root."
}

func (t *ReadFileTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"path": {
				"type": "string",
				"description": "Workspace-relative path of the file to read"
			}
		},
		"required": ["path"]
	}`)
}

func (t *ReadFileTool) Execute(ctx context.Context, args json.RawMessage) (tools.Result, error) {
	var a ReadFileArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return tools.Result{}, fmt.Errorf("invalid read_file arguments: %w", err)
	}

	data, err := t.ws.ReadFile(a.Path, 0)
	if err != nil {
		return tools.Errorf("%v", err), nil
	}
	return tools.Result{Content: string(data)}, nil
}
