package local

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"codeassist/internal/tools"
)

// testTimeout bounds a single test run.
const testTimeout = 5 * time.Minute

// RunTestsTool runs the workspace's Go test suite.
type RunTestsTool struct {
	workDir string
}

// RunTestsArgs are the arguments for run_tests.
type RunTestsArgs struct {
	Package string `json:"package,omitempty"`
	Run     string `json:"run,omitempty"`
	Verbose bool   `json:"verbose,omitempty"`
}

func NewRunTestsTool(workDir string) *RunTestsTool {
	return &RunTestsTool{workDir: workDir}
}

func (t *RunTestsTool) Name() string {
	return "run_tests"
}

func (t *RunTestsTool) Description() string {
	return "Run Go tests in the workspace with 'go test'. Optionally restrict to a package path (e.g. ./internal/...) or a test name pattern."
}

func (t *RunTestsTool) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"package": {
				"type": "string",
				"description": "Package pattern to test, e.g. ./... or ./internal/server (default: ./...)"
			},
			"run": {
				"type": "string",
				"description": "Regular expression passed to -run to select tests"
			},
			"verbose": {
				"type": "boolean",
				"description": "Pass -v for per-test output"
			}
		}
	}`)
}

func (t *RunTestsTool) Execute(ctx context.Context, args json.RawMessage) (tools.Result, error) {
	var a RunTestsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return tools.Result{}, fmt.Errorf("invalid run_tests arguments: %w", err)
	}

	pkg := a.Package
	if pkg == "" {
		pkg = "./..."
	}
	if strings.ContainsAny(pkg, ";|&$`") {
		return tools.Errorf("invalid package pattern %q", pkg), nil
	}

	cmdArgs := []string{"test"}
	if a.Verbose {
		cmdArgs = append(cmdArgs, "-v")
	}
	if a.Run != "" {
		cmdArgs = append(cmdArgs, "-run", a.Run)
	}
	cmdArgs = append(cmdArgs, pkg)

	runCtx, cancel := context.WithTimeout(ctx, testTimeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, "go", cmdArgs...)
	cmd.Dir = t.workDir

	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	err := cmd.Run()
	text := strings.TrimRight(output.String(), "\n")

	if runCtx.Err() == context.DeadlineExceeded {
		return tools.Errorf("tests timed out after %s\n%s", testTimeout, text), nil
	}
	if err != nil {
		// Test failures land here too; the output is the useful part.
		return tools.Result{Content: fmt.Sprintf("go test failed: %v\n%s", err, text), IsError: true}, nil
	}
	if text == "" {
		text = "ok (no output)"
	}
	return tools.Result{Content: text}, nil
}
