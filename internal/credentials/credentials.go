// Package credentials handles secure storage and retrieval of the GitHub
// Personal Access Token the MCP server needs. The token lives in the OS
// credential store; GITHUB_TOKEN / GITHUB_PERSONAL_ACCESS_TOKEN environment
// variables act as a fallback for CI and containers without a keyring.
package credentials

import (
	"fmt"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	// Service name for OS credential store
	credentialService = "codeassist"
	// Key for GitHub Personal Access Token
	githubTokenKey = "github_pat"
)

// Environment variables checked when no token is stored. Both names are
// honored because the reference GitHub MCP server reads either.
var tokenEnvVars = []string{"GITHUB_TOKEN", "GITHUB_PERSONAL_ACCESS_TOKEN"}

// Manager handles secure storage and retrieval of authentication credentials
type Manager struct {
	service string
}

// NewManager creates a new credential manager instance
func NewManager() *Manager {
	return &Manager{
		service: credentialService,
	}
}

// StoreGitHubToken securely stores a GitHub Personal Access Token in the OS
// credential store. The token is validated before storage.
func (m *Manager) StoreGitHubToken(token string) error {
	if strings.TrimSpace(token) == "" {
		return fmt.Errorf("token cannot be empty")
	}

	if err := ValidateTokenFormat(token); err != nil {
		return fmt.Errorf("invalid token format: %w", err)
	}

	if err := keyring.Set(m.service, githubTokenKey, token); err != nil {
		return fmt.Errorf("failed to store token in credential store: %w", err)
	}

	return nil
}

// GetGitHubToken retrieves the GitHub token, preferring the credential store
// and falling back to the environment.
func (m *Manager) GetGitHubToken() (string, error) {
	token, err := keyring.Get(m.service, githubTokenKey)
	if err == nil && strings.TrimSpace(token) != "" {
		return token, nil
	}
	if err != nil && err != keyring.ErrNotFound {
		// Keyring present but broken; the env fallback may still work.
		if envToken := tokenFromEnv(); envToken != "" {
			return envToken, nil
		}
		return "", fmt.Errorf("failed to retrieve token from credential store: %w", err)
	}

	if envToken := tokenFromEnv(); envToken != "" {
		return envToken, nil
	}

	return "", fmt.Errorf("no GitHub token found - run 'codeassist auth' or set GITHUB_TOKEN")
}

// DeleteGitHubToken removes the stored token from the OS credential store.
// Returns nil if no token is stored.
func (m *Manager) DeleteGitHubToken() error {
	err := keyring.Delete(m.service, githubTokenKey)
	if err != nil && err != keyring.ErrNotFound {
		return fmt.Errorf("failed to delete token from credential store: %w", err)
	}
	return nil
}

// HasGitHubToken checks whether a token is available from any source
// without returning it.
func (m *Manager) HasGitHubToken() bool {
	if _, err := keyring.Get(m.service, githubTokenKey); err == nil {
		return true
	}
	return tokenFromEnv() != ""
}

func tokenFromEnv() string {
	for _, name := range tokenEnvVars {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			return v
		}
	}
	return ""
}

// ValidateTokenFormat validates that the token matches GitHub PAT format
// expectations. GitHub tokens carry type-specific prefixes:
//   - Classic PATs: ghp_*
//   - Fine-grained PATs: github_pat_*
//   - OAuth tokens: gho_*
//   - User-to-server tokens: ghu_*
//   - Server-to-server tokens: ghs_*
func ValidateTokenFormat(token string) error {
	token = strings.TrimSpace(token)

	// GitHub PATs are typically 40+ characters
	if len(token) < 20 {
		return fmt.Errorf("token too short (minimum 20 characters)")
	}

	validPrefixes := []string{
		"ghp_",        // Classic Personal Access Token
		"github_pat_", // Fine-grained Personal Access Token
		"gho_",        // OAuth token
		"ghu_",        // User-to-server token
		"ghs_",        // Server-to-server token
	}

	for _, prefix := range validPrefixes {
		if strings.HasPrefix(token, prefix) {
			return nil
		}
	}

	// Older or GitHub Enterprise tokens may not follow these patterns.
	return fmt.Errorf("token does not match expected GitHub PAT format (should start with ghp_ or github_pat_)")
}
