package local

import (
	"codeassist/internal/tools"
	"codeassist/pkg/fileops"
)

// RegisterAll adds the full built-in tool set for one workspace to a
// registry.
func RegisterAll(registry *tools.Registry, ws *fileops.Workspace) {
	registry.MustRegister(NewReadFileTool(ws))
	registry.MustRegister(NewWriteFileTool(ws))
	registry.MustRegister(NewListFilesTool(ws))
	registry.MustRegister(NewSearchCodeTool(ws))
	registry.MustRegister(NewFileInfoTool(ws))
	registry.MustRegister(NewRunTestsTool(ws.Dir()))
	registry.MustRegister(NewGitStatusTool(ws.Dir()))
}
