// Package local implements the built-in filesystem tools the agent can run
// against the workspace: reading, writing, listing and searching files,
// inspecting metadata, running the test suite and checking git status. All
// file access goes through the fileops workspace boundary.
package local
