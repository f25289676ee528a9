package agent

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"codeassist/internal/llm"

	"github.com/adrg/xdg"
)

// HistoryStore persists the conversation as a JSON file so a restarted
// assistant resumes where the previous session left off. The 'clear'
// command removes the file along with the in-memory state.
type HistoryStore struct {
	path string
}

// NewHistoryStore creates a store backed by the given file path.
func NewHistoryStore(path string) *HistoryStore {
	return &HistoryStore{path: path}
}

// DefaultHistoryPath returns the standard location for conversation state
// under the XDG state home.
func DefaultHistoryPath() string {
	return filepath.Join(xdg.StateHome, "codeassist", "history.json")
}

// Load reads the stored conversation. A missing file means an empty
// history, not an error.
func (s *HistoryStore) Load() ([]llm.Message, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read history file: %w", err)
	}

	var msgs []llm.Message
	if err := json.Unmarshal(data, &msgs); err != nil {
		return nil, fmt.Errorf("failed to parse history file: %w", err)
	}
	return msgs, nil
}

// Save writes the conversation, replacing any previous state.
func (s *HistoryStore) Save(msgs []llm.Message) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}

	data, err := json.MarshalIndent(msgs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}

	// Restrictive permissions: turns may quote file contents and repo data.
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write history file: %w", err)
	}
	return nil
}

// Clear removes the stored conversation. Clearing an absent file is a no-op.
func (s *HistoryStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove history file: %w", err)
	}
	return nil
}
