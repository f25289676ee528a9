package local

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"codeassist/internal/tools"
	"codeassist/pkg/fileops"
)

// searchMaxFileSize skips files too large to be source code.
const searchMaxFileSize = 2 * 1024 * 1024

// searchMaxMatches caps output so one broad query cannot flood the model.
const searchMaxMatches = 200

// SearchCodeTool searches workspace file contents for a literal substring.
type SearchCodeTool struct {
	ws *fileops.Workspace
}

// SearchCodeArgs are the arguments for search_code.
type SearchCodeArgs struct {
	Query       string `json:"query"`
	Path        string `json:"path,omitempty"`
	FilePattern string `json:"file_pattern,omitempty"`
}

func NewSearchCodeTool(ws *fileops.Workspace) *SearchCodeTool {
	return &SearchCodeTool{ws: ws}
}

func (t *SearchCodeTool) Name() string {
	return "search_code"
}

func (t *SearchCodeTool) Description() string {
	return "Search file contents in the workspace for a literal string. Returns matching lines with file paths and line numbers. Case-sensitive."
}

func (t *SearchCodeTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"query": {
				"type": "string",
				"description": "Literal text to search for"
			},
			"path": {
				"type": "string",
				"description": "Workspace-relative directory to search (default: workspace root)"
			},
			"file_pattern": {
				"type": "string",
				"description": "Glob pattern restricting which files are searched, e.g. *.go"
			}
		},
		"required": ["query"]
	}`)
}

func (t *SearchCodeTool) Execute(ctx context.Context, args json.RawMessage) (tools.Result, error) {
	var a SearchCodeArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return tools.Result{}, fmt.Errorf("invalid search_code arguments: %w", err)
	}
	if a.Query == "" {
		return tools.Errorf("query cannot be empty"), nil
	}

	opts := fileops.ScanOptions{}
	if a.FilePattern != "" {
		pattern := a.FilePattern
		opts.FileFilter = func(name string) bool {
			matched, err := filepath.Match(pattern, name)
			return err == nil && matched
		}
	}

	entries, err := t.ws.Scan(a.Path, opts)
	if err != nil {
		return tools.Errorf("%v", err), nil
	}

	var b strings.Builder
	matches := 0
	for _, entry := range entries {
		if ctx.Err() != nil {
			return tools.Result{}, ctx.Err()
		}
		if entry.Size > searchMaxFileSize {
			continue
		}

		data, err := t.ws.ReadFile(entry.Path, searchMaxFileSize)
		if err != nil || bytes.IndexByte(data, 0) >= 0 {
			continue // unreadable or binary
		}

		scanner := bufio.NewScanner(bytes.NewReader(data))
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		lineNo := 0
		for scanner.Scan() {
			lineNo++
			line := scanner.Text()
			if !strings.Contains(line, a.Query) {
				continue
			}
			fmt.Fprintf(&b, "%s:%d: %s\n", entry.Path, lineNo, strings.TrimSpace(line))
			matches++
			if matches >= searchMaxMatches {
				fmt.Fprintf(&b, "... truncated at %d matches\n", searchMaxMatches)
				return tools.Result{Content: strings.TrimRight(b.String(), "\n")}, nil
			}
		}
	}

	if matches == 0 {
		return tools.Textf("No matches for %q.", a.Query), nil
	}
	return tools.Result{Content: strings.TrimRight(b.String(), "\n")}, nil
}
