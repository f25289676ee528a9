package local

import (
	"context"
	"encoding/json"
	"fmt"

	"codeassist/internal/tools"
	"codeassist/pkg/fileops"
)

// FileInfoTool reports metadata for one workspace path.
type FileInfoTool struct {
	ws *fileops.Workspace
}

// FileInfoArgs are the arguments for file_info.
type FileInfoArgs struct {
	Path string `json:"path"`
}

func NewFileInfoTool(ws *fileops.Workspace) *FileInfoTool {
	return &FileInfoTool{ws: ws}
}

func (t *FileInfoTool) Name() string {
	return "file_info"
}

func (t *FileInfoTool) Description() string {
	return "Get metadata about a file or directory in the workspace: size, modification time, permissions and type."
}

func (t *FileInfoTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"path": {
				"type": "string",
				"description": "Workspace-relative path to inspect"
			}
		},
		"required": ["path"]
	}`)
}

func (t *FileInfoTool) Execute(ctx context.Context, args json.RawMessage) (tools.Result, error) {
	var a FileInfoArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return tools.Result{}, fmt.Errorf("invalid file_info arguments: %w", err)
	}

	entry, err := t.ws.Stat(a.Path)
	if err != nil {
		return tools.Errorf("%v", err), nil
	}

	kind := "file"
	if entry.IsDir {
		kind = "directory"
	}
	return tools.Textf("%s\n  type: %s\n  size: %d bytes\n  modified: %s\n  mode: %s",
		entry.Path, kind, entry.Size, entry.ModTime.Format("2006-01-02 15:04:05"), entry.Mode), nil
}
