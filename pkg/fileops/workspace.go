package fileops

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DefaultMaxFileSize bounds single-file reads so one oversized file cannot
// exhaust memory or blow out an LLM context window.
const DefaultMaxFileSize = 10 * 1024 * 1024

// Workspace is a security boundary around one directory. All paths passed to
// its methods are relative to that directory; traversal sequences and
// escaping symlinks are rejected by the underlying os.Root.
type Workspace struct {
	root *os.Root
	dir  string
}

// NewWorkspace opens a workspace rooted at dir. The directory must exist.
func NewWorkspace(dir string) (*Workspace, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("workspace directory cannot be empty")
	}

	abs, err := filepath.Abs(ExpandPath(dir))
	if err != nil {
		return nil, fmt.Errorf("cannot resolve workspace directory: %w", err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("cannot access workspace directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("workspace path is not a directory: %s", abs)
	}

	root, err := os.OpenRoot(abs)
	if err != nil {
		return nil, fmt.Errorf("cannot open workspace root: %w", err)
	}

	return &Workspace{root: root, dir: abs}, nil
}

// Dir returns the absolute workspace directory.
func (w *Workspace) Dir() string { return w.dir }

// Close releases the workspace root.
func (w *Workspace) Close() error {
	if w.root == nil {
		return nil
	}
	err := w.root.Close()
	w.root = nil
	return err
}

// ReadFile reads a workspace-relative file, refusing files larger than
// maxSize bytes (DefaultMaxFileSize when maxSize is zero).
func (w *Workspace) ReadFile(relPath string, maxSize int64) ([]byte, error) {
	if err := ValidateRelPath(relPath); err != nil {
		return nil, err
	}
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}

	f, err := w.root.Open(relPath)
	if err != nil {
		return nil, fmt.Errorf("cannot open %s: %w", relPath, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("cannot stat %s: %w", relPath, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory, not a file", relPath)
	}
	if info.Size() > maxSize {
		return nil, fmt.Errorf("%s is %d bytes, larger than the %d byte limit", relPath, info.Size(), maxSize)
	}

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", relPath, err)
	}
	return data, nil
}

// WriteFile writes content to a workspace-relative path, creating parent
// directories as needed.
func (w *Workspace) WriteFile(relPath string, content []byte) error {
	if err := ValidateRelPath(relPath); err != nil {
		return err
	}

	if dir := filepath.Dir(relPath); dir != "." {
		if err := w.mkdirAll(dir); err != nil {
			return fmt.Errorf("cannot create parent directories for %s: %w", relPath, err)
		}
	}

	f, err := w.root.OpenFile(relPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("cannot open %s for writing: %w", relPath, err)
	}
	defer f.Close()

	if _, err := f.Write(content); err != nil {
		return fmt.Errorf("cannot write %s: %w", relPath, err)
	}
	return nil
}

// mkdirAll creates each path segment inside the root.
func (w *Workspace) mkdirAll(relDir string) error {
	parts := strings.Split(filepath.ToSlash(relDir), "/")
	current := ""
	for _, part := range parts {
		if part == "" || part == "." {
			continue
		}
		current = filepath.Join(current, part)
		if err := w.root.Mkdir(current, 0o755); err != nil && !os.IsExist(err) {
			return err
		}
	}
	return nil
}

// Stat returns metadata for a workspace-relative path.
func (w *Workspace) Stat(relPath string) (Entry, error) {
	if err := ValidateRelPath(relPath); err != nil {
		return Entry{}, err
	}

	info, err := w.root.Stat(relPath)
	if err != nil {
		return Entry{}, fmt.Errorf("cannot stat %s: %w", relPath, err)
	}

	return Entry{
		Name:    info.Name(),
		Path:    filepath.Clean(relPath),
		IsDir:   info.IsDir(),
		Size:    info.Size(),
		ModTime: info.ModTime(),
		Mode:    info.Mode(),
	}, nil
}

// Entry is one filesystem entry discovered inside the workspace. Paths are
// always relative to the workspace root.
type Entry struct {
	Name    string
	Path    string
	IsDir   bool
	Size    int64
	ModTime time.Time
	Mode    os.FileMode
}

// ValidateRelPath rejects empty, absolute and traversing paths before they
// reach the root. os.Root would catch escapes too; this gives callers a
// clearer error earlier.
func ValidateRelPath(relPath string) error {
	if strings.TrimSpace(relPath) == "" {
		return fmt.Errorf("path cannot be empty")
	}
	if filepath.IsAbs(relPath) {
		return fmt.Errorf("path must be relative to the workspace: %s", relPath)
	}
	clean := filepath.Clean(relPath)
	if clean == ".." || strings.HasPrefix(clean, ".."+string(os.PathSeparator)) {
		return fmt.Errorf("path escapes the workspace: %s", relPath)
	}
	return nil
}

// ExpandPath expands a leading "~/" to the user's home directory.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
