package local

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"codeassist/internal/tools"
	"codeassist/pkg/fileops"
)

// ListFilesTool lists workspace files, optionally filtered by a glob
// pattern against the base name.
type ListFilesTool struct {
	ws *fileops.Workspace
}

// ListFilesArgs are the arguments for list_files.
type ListFilesArgs struct {
	Path    string `json:"path,omitempty"`
	Pattern string `json:"pattern,omitempty"`
}

func NewListFilesTool(ws *fileops.Workspace) *ListFilesTool {
	return &ListFilesTool{ws: ws}
}

func (t *ListFilesTool) Name() string {
	return "list_files"
}

func (t *ListFilesTool) Description() string {
	return "List files in the workspace recursively. Optionally restrict to a subdirectory and filter by a glob pattern such as *.go. Common noise directories (node_modules, .git, vendor) are skipped."
}

func (t *ListFilesTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"path": {
				"type": "string",
				"description": "Workspace-relative directory to list (default: workspace root)"
			},
			"pattern": {
				"type": "string",
				"description": "Glob pattern matched against file names, e.g. *.go or *_test.go"
			}
		}
	}`)
}

func (t *ListFilesTool) Execute(ctx context.Context, args json.RawMessage) (tools.Result, error) {
	var a ListFilesArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return tools.Result{}, fmt.Errorf("invalid list_files arguments: %w", err)
	}

	opts := fileops.ScanOptions{}
	if a.Pattern != "" {
		pattern := a.Pattern
		opts.FileFilter = func(name string) bool {
			matched, err := filepath.Match(pattern, name)
			return err == nil && matched
		}
	}

	entries, err := t.ws.Scan(a.Path, opts)
	if err != nil {
		return tools.Errorf("%v", err), nil
	}
	if len(entries) == 0 {
		return tools.Textf("No files found."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d files:\n", len(entries))
	for _, e := range entries {
		fmt.Fprintf(&b, "%s (%d bytes)\n", e.Path, e.Size)
	}
	return tools.Result{Content: strings.TrimRight(b.String(), "\n")}, nil
}
