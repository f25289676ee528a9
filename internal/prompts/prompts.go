// Package prompts manages the system prompts the assistant runs with.
// Prompts are markdown files with YAML frontmatter; user overrides in the
// prompts directory shadow the compiled-in defaults.
package prompts

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/frontmatter"
)

// Frontmatter is the YAML header expected at the top of a prompt file.
type Frontmatter struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
}

// Prompt is one parsed prompt: the frontmatter plus the markdown body.
type Prompt struct {
	Name        string
	Description string
	Content     string
}

// Library resolves prompts by name, preferring files in dir over the
// built-in defaults. An empty dir disables overrides.
type Library struct {
	dir string
}

// NewLibrary creates a prompt library with an optional override directory.
func NewLibrary(dir string) *Library {
	return &Library{dir: dir}
}

// Load returns the prompt with the given name. A file <dir>/<name>.md with
// valid frontmatter wins; otherwise the built-in default is returned.
func (l *Library) Load(name string) (Prompt, error) {
	if l.dir != "" {
		path := filepath.Join(l.dir, name+".md")
		if content, err := os.ReadFile(path); err == nil {
			prompt, err := Parse(content)
			if err != nil {
				return Prompt{}, fmt.Errorf("invalid prompt file %s: %w", path, err)
			}
			return prompt, nil
		}
	}

	if content, ok := builtins[name]; ok {
		return Prompt{Name: name, Content: content}, nil
	}
	return Prompt{}, fmt.Errorf("unknown prompt %q", name)
}

// Parse decodes a frontmatter-tagged prompt file.
func Parse(content []byte) (Prompt, error) {
	var matter Frontmatter
	body, err := frontmatter.Parse(bytes.NewReader(content), &matter)
	if err != nil {
		return Prompt{}, fmt.Errorf("no valid frontmatter found: %w", err)
	}
	if strings.TrimSpace(matter.Name) == "" {
		return Prompt{}, fmt.Errorf("prompt frontmatter requires a name")
	}
	text := strings.TrimSpace(string(body))
	if text == "" {
		return Prompt{}, fmt.Errorf("prompt body cannot be empty")
	}

	return Prompt{
		Name:        matter.Name,
		Description: matter.Description,
		Content:     text,
	}, nil
}

// Names returns the built-in prompt names.
func Names() []string {
	return []string{AssistantPrompt, SelectorPrompt}
}

// Built-in prompt names.
const (
	AssistantPrompt = "assistant"
	SelectorPrompt  = "selector"
)

var builtins = map[string]string{
	AssistantPrompt: `You are a coding assistant working inside a local project workspace.
You can read, write, list and search files, inspect file metadata, run the
test suite and check git status using the tools provided. For anything
involving GitHub (repositories, issues, pull requests, code search on
GitHub), use the github_assistant tool and pass it the user's request.

Rules:
- Prefer tools over guessing. If the user asks about a file, read it first.
- Keep answers concise and concrete; show file paths and line numbers.
- When you change a file, state exactly what you wrote.
- Never invent file contents or command output.`,

	SelectorPrompt: `You route one user request about GitHub to exactly one of the available
tools. Pick the single best tool and fill in its arguments from the request.
If no tool fits, reply in plain text instead of calling a tool.`,
}
