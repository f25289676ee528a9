// Package main is the entry point for the codeassist CLI.
//
// Startup sequence:
//
// 1. Load .env and initialize logging
// 2. Load (or create) configuration under the XDG config home
// 3. Resolve the GitHub token from the OS keyring or environment
// 4. Wire the LLM client, MCP dispatch facade and local tool registry
// 5. Run the interactive chat loop until exit
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"codeassist/internal/agent"
	"codeassist/internal/config"
	"codeassist/internal/credentials"
	"codeassist/internal/dispatch"
	"codeassist/internal/llm"
	"codeassist/internal/logging"
	"codeassist/internal/mcpclient"
	"codeassist/internal/prompts"
	"codeassist/internal/tools"
	"codeassist/internal/tools/local"
	"codeassist/pkg/fileops"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	// A missing .env is fine; explicit env vars still apply.
	_ = godotenv.Load()

	logger := logging.NewAppLogger()

	root := &cobra.Command{
		Use:   "codeassist",
		Short: "Code assistant with local file tools and GitHub access",
		Long: `codeassist is an interactive coding assistant. It answers questions about
the local workspace using built-in file tools and routes GitHub requests
through a Model Context Protocol tool server.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(logger)
		},
	}

	root.AddCommand(chatCmd(logger))
	root.AddCommand(toolsCmd(logger))
	root.AddCommand(authCmd(logger))
	root.AddCommand(versionCmd())

	if err := root.Execute(); err != nil {
		logger.Error("Command failed", "error", err)
		os.Exit(1)
	}
}

func chatCmd(logger *logging.AppLogger) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start the interactive assistant (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(logger)
		},
	}
}

func runChat(logger *logging.AppLogger) error {
	cfg, err := loadConfig(logger)
	if err != nil {
		return err
	}

	ws, err := openWorkspace(cfg)
	if err != nil {
		return err
	}
	defer ws.Close()

	llmClient, err := llm.NewClient(cfg.LLM, os.Getenv("LLM_API_KEY"))
	if err != nil {
		return fmt.Errorf("LLM backend not usable: %w", err)
	}

	library := prompts.NewLibrary(cfg.PromptsDir)
	selectorPrompt, err := library.Load(prompts.SelectorPrompt)
	if err != nil {
		return err
	}
	assistantPrompt, err := library.Load(prompts.AssistantPrompt)
	if err != nil {
		return err
	}

	facade := dispatch.NewFacade(
		mcpclient.NewClient(mcpServerConfig(cfg, logger), cfg.RequestTimeout(), logger),
		dispatch.NewLLMSelector(llmClient, selectorPrompt.Content),
		logger,
	)
	defer facade.Close()

	registry := tools.NewRegistry()
	local.RegisterAll(registry, ws)
	registry.MustRegister(agent.NewGitHubTool(facade))

	loop := agent.NewLoop(llmClient, registry, logger, assistantPrompt.Content, 0)
	repl := agent.NewREPL(loop, registry, agent.NewRenderer(0), logger, os.Stdin, os.Stdout)
	repl.UseHistory(agent.NewHistoryStore(agent.DefaultHistoryPath()))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return repl.Run(ctx)
}

func toolsCmd(logger *logging.AppLogger) *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List the built-in local tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(logger)
			if err != nil {
				return err
			}
			ws, err := openWorkspace(cfg)
			if err != nil {
				return err
			}
			defer ws.Close()

			registry := tools.NewRegistry()
			local.RegisterAll(registry, ws)

			for _, name := range registry.Names() {
				tool, _ := registry.Get(name)
				fmt.Printf("%-14s %s\n", name, firstSentence(tool.Description()))
			}
			fmt.Printf("%-14s %s\n", "github_assistant", "Perform GitHub operations through the MCP tool server.")
			return nil
		},
	}
}

func authCmd(logger *logging.AppLogger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the GitHub token",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set",
		Short: "Store a GitHub personal access token in the OS keyring",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Print("GitHub token: ")
			reader := bufio.NewReader(os.Stdin)
			line, err := reader.ReadString('\n')
			if err != nil {
				return fmt.Errorf("cannot read token: %w", err)
			}
			token := strings.TrimSpace(line)

			manager := credentials.NewManager()
			if err := manager.StoreGitHubToken(token); err != nil {
				return err
			}
			fmt.Println("Token stored.")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show whether a GitHub token is configured",
		RunE: func(cmd *cobra.Command, args []string) error {
			if credentials.NewManager().HasGitHubToken() {
				fmt.Println("GitHub token: configured")
			} else {
				fmt.Println("GitHub token: not configured (set one with 'codeassist auth set' or GITHUB_TOKEN)")
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove the stored GitHub token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := credentials.NewManager().DeleteGitHubToken(); err != nil {
				return err
			}
			fmt.Println("Token removed.")
			return nil
		},
	})

	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the codeassist version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("codeassist", version)
		},
	}
}

func loadConfig(logger *logging.AppLogger) (*config.Config, error) {
	if config.IsFirstRun() {
		cfg := config.DefaultConfig()
		if err := cfg.Save(); err != nil {
			return nil, fmt.Errorf("cannot write initial config: %w", err)
		}
		logger.Info("Created default configuration")
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("cannot load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func openWorkspace(cfg *config.Config) (*fileops.Workspace, error) {
	dir := cfg.WorkspaceDir
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("cannot determine working directory: %w", err)
		}
		dir = cwd
	}
	return fileops.NewWorkspace(dir)
}

// mcpServerConfig injects the GitHub token into the server environment so
// the MCP subprocess can authenticate.
func mcpServerConfig(cfg *config.Config, logger *logging.AppLogger) config.MCPServerConfig {
	server := cfg.MCPServer

	token, err := credentials.NewManager().GetGitHubToken()
	if err != nil {
		logger.Warn("No GitHub token configured; GitHub operations will be limited", "error", err)
		return server
	}

	env := make(map[string]string, len(server.Env)+1)
	for k, v := range server.Env {
		env[k] = v
	}
	env["GITHUB_PERSONAL_ACCESS_TOKEN"] = token
	server.Env = env
	return server
}

func firstSentence(text string) string {
	if idx := strings.IndexByte(text, '.'); idx > 0 {
		return text[:idx+1]
	}
	return text
}
