package local

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"codeassist/internal/tools"

	git "github.com/go-git/go-git/v6"
)

// GitStatusTool reports the git state of the workspace.
type GitStatusTool struct {
	workDir string
}

func NewGitStatusTool(workDir string) *GitStatusTool {
	return &GitStatusTool{workDir: workDir}
}

func (t *GitStatusTool) Name() string {
	return "git_status"
}

func (t *GitStatusTool) Description() string {
	return "Show the git status of the workspace: current branch, HEAD commit and any modified, staged or untracked files."
}

func (t *GitStatusTool) Parameters() json.RawMessage {
	return json.RawMessage(`{"type": "object", "properties": {}}`)
}

func (t *GitStatusTool) Execute(ctx context.Context, args json.RawMessage) (tools.Result, error) {
	repo, err := git.PlainOpen(t.workDir)
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return tools.Errorf("the workspace is not a git repository"), nil
		}
		return tools.Errorf("cannot open repository: %v", err), nil
	}

	var b strings.Builder

	head, err := repo.Head()
	if err != nil {
		b.WriteString("On branch: (no commits yet)\n")
	} else {
		fmt.Fprintf(&b, "On branch %s\nHEAD %s\n", head.Name().Short(), head.Hash().String()[:12])
	}

	wt, err := repo.Worktree()
	if err != nil {
		return tools.Errorf("cannot open worktree: %v", err), nil
	}
	status, err := wt.Status()
	if err != nil {
		return tools.Errorf("cannot compute status: %v", err), nil
	}

	if status.IsClean() {
		b.WriteString("Working tree clean")
		return tools.Result{Content: b.String()}, nil
	}

	files := make([]string, 0, len(status))
	for path := range status {
		files = append(files, path)
	}
	sort.Strings(files)

	b.WriteString("Changes:\n")
	for _, path := range files {
		fs := status.File(path)
		fmt.Fprintf(&b, "  %c%c %s\n", statusRune(fs.Staging), statusRune(fs.Worktree), path)
	}
	return tools.Result{Content: strings.TrimRight(b.String(), "\n")}, nil
}

func statusRune(code git.StatusCode) byte {
	if code == git.Unmodified {
		return ' '
	}
	return byte(code)
}
