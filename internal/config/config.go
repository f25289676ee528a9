package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"codeassist/internal/logging"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

const AppName = "codeassist" // application name used for config directory

// MCPServerConfig describes how to reach the GitHub MCP tool server.
// Either Command (stdio subprocess) or URL (streamable HTTP) must be set;
// Command wins when both are present.
type MCPServerConfig struct {
	Command []string          `yaml:"command,omitempty"`
	URL     string            `yaml:"url,omitempty"`
	Env     map[string]string `yaml:"env,omitempty"`
}

// LLMConfig holds settings for the chat-completions backend that drives
// tool selection and conversation.
type LLMConfig struct {
	APIURL      string  `yaml:"api_url"`
	Model       string  `yaml:"model"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`
}

// Config holds user configuration for codeassist.
type Config struct {
	// WorkspaceDir is the directory local file tools operate in.
	WorkspaceDir string `yaml:"workspace_dir"`

	// MCPServer configures the remote GitHub tool provider.
	MCPServer MCPServerConfig `yaml:"mcp_server"`

	// LLM configures the conversation/selection backend.
	LLM LLMConfig `yaml:"llm"`

	// RequestTimeoutSeconds bounds a single remote tool invocation.
	RequestTimeoutSeconds int `yaml:"request_timeout_seconds"`

	// PromptsDir optionally points at user prompt templates.
	PromptsDir string `yaml:"prompts_dir,omitempty"`

	Version  string `yaml:"version"`
	InitTime int64  `yaml:"init_time"` // Unix timestamp of first setup
}

// ConfigPath returns the standard config file path for the current platform
func ConfigPath() (string, error) {
	configDir := filepath.Join(xdg.ConfigHome, AppName)
	configPath := filepath.Join(configDir, "config.yaml")

	logging.Debug("Determined config path", "path", configPath)
	return configPath, nil
}

// Load loads the config from the standard location.
// If no config exists, defaults are returned so first runs work out of the box.
func Load() (*Config, error) {
	configPath, exists := FindConfigFile()
	logging.Debug("Loading config from", "path", configPath)
	if !exists {
		cfg := DefaultConfig()
		return &cfg, nil
	}

	return LoadFrom(configPath)
}

// LoadFrom loads config from a specific path
func LoadFrom(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	cfg := DefaultConfig()
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &cfg, nil
}

// FindConfigFile returns the path to an existing config file, and whether it exists.
func FindConfigFile() (string, bool) {
	primary, err := ConfigPath()
	if err != nil {
		logging.Error("Failed to get config path", "error", err)
		return "", false
	}

	if _, err := os.Stat(primary); err == nil {
		logging.Debug("Config found at primary path", "path", primary)
		return primary, true
	}

	// Return primary path for new config
	return primary, false
}

// IsFirstRun checks if this is the first time the application is run
func IsFirstRun() bool {
	_, exists := FindConfigFile()
	return !exists
}

// DefaultConfig returns a Config with sensible defaults.
// The default MCP server is the reference GitHub server run via npx,
// the same way the hosted deployments launch it.
func DefaultConfig() Config {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}

	return Config{
		WorkspaceDir: cwd,
		MCPServer: MCPServerConfig{
			Command: []string{"npx", "-y", "@modelcontextprotocol/server-github"},
		},
		LLM: LLMConfig{
			APIURL:      "https://generativelanguage.googleapis.com/v1beta/openai",
			Model:       "gemini-2.0-flash",
			MaxTokens:   2048,
			Temperature: 0,
		},
		RequestTimeoutSeconds: 30,
		Version:               "1.0",
		InitTime:              0, // set during first save
	}
}

// Save writes the config to the standard location
func (c *Config) Save() error {
	configPath, _ := FindConfigFile()
	return c.SaveTo(configPath)
}

// SaveTo writes the config to a specific path
func (c *Config) SaveTo(path string) error {
	if c.InitTime == 0 {
		c.InitTime = time.Now().Unix()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Restrictive permissions: the file may name token env vars and hosts.
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	enc := yaml.NewEncoder(f)
	defer enc.Close()

	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// RequestTimeout returns the per-invocation timeout as a duration,
// falling back to the default when unset or nonsensical.
func (c *Config) RequestTimeout() time.Duration {
	if c.RequestTimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// Validate checks that the config can actually drive the assistant.
func (c *Config) Validate() error {
	if len(c.MCPServer.Command) == 0 && c.MCPServer.URL == "" {
		return fmt.Errorf("mcp_server requires either a command or a url")
	}
	if c.LLM.Model == "" {
		return fmt.Errorf("llm.model cannot be empty")
	}
	if c.LLM.APIURL == "" {
		return fmt.Errorf("llm.api_url cannot be empty")
	}
	if c.WorkspaceDir != "" {
		if info, err := os.Stat(c.WorkspaceDir); err != nil || !info.IsDir() {
			return fmt.Errorf("workspace_dir is not a usable directory: %s", c.WorkspaceDir)
		}
	}
	return nil
}
