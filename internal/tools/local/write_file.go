package local

import (
	"context"
	"encoding/json"
	"fmt"

	"codeassist/internal/tools"
	"codeassist/pkg/fileops"
)

// WriteFileTool creates or overwrites one workspace file.
type WriteFileTool struct {
	ws *fileops.Workspace
}

// WriteFileArgs are the arguments for write_file.
type WriteFileArgs struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

func NewWriteFileTool(ws *fileops.Workspace) *WriteFileTool {
	return &WriteFileTool{ws: ws}
}

func (t *WriteFileTool) Name() string {
	return "write_file"
}

func (t *WriteFileTool) Description() string {
	return "Create or overwrite a file in the workspace with the given content. Parent directories are created as needed."
}

func (t *WriteFileTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"path": {
				"type": "string",
				"description": "Workspace-relative path of the file to write"
			},
			"content": {
				"type": "string",
				"description": "Full content to write to the file"
			}
		},
		"required": ["path", "content"]
	}`)
}

func (t *WriteFileTool) Execute(ctx context.Context, args json.RawMessage) (tools.Result, error) {
	var a WriteFileArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return tools.Result{}, fmt.Errorf("invalid write_file arguments: %w", err)
	}

	if err := t.ws.WriteFile(a.Path, []byte(a.Content)); err != nil {
		return tools.Errorf("%v", err), nil
	}
	return tools.Textf("Wrote %d bytes to %s", len(a.Content), a.Path), nil
}
