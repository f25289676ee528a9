package fileops

import (
	"fmt"
	"path/filepath"
	"slices"
	"sort"
	"strings"
)

// ScanOptions configures recursive workspace scanning.
type ScanOptions struct {
	// MaxDepth limits recursion. Zero means DefaultMaxDepth.
	MaxDepth int

	// IncludeHidden includes entries whose name starts with '.'.
	IncludeHidden bool

	// SkipDirs lists directory names skipped entirely. Nil means
	// DefaultSkipDirs; an empty non-nil slice skips nothing.
	SkipDirs []string

	// FileFilter, when set, keeps only files for which it returns true.
	// Directories are always traversed subject to the other options.
	FileFilter func(name string) bool
}

// DefaultMaxDepth bounds recursion when the caller does not.
const DefaultMaxDepth = 20

// DefaultSkipDirs are directory names that are almost never interesting to
// an assistant and frequently enormous.
func DefaultSkipDirs() []string {
	return []string{
		"node_modules",
		".git",
		"vendor",
		"target",
		"build",
		"dist",
		".next",
		".cache",
		"__pycache__",
		".idea",
		".vscode",
	}
}

// Scan walks the workspace from relDir (use "." for the root) and returns
// the matching files sorted by path. Unreadable subdirectories are skipped;
// the security boundary of the workspace root applies throughout.
func (w *Workspace) Scan(relDir string, opts ScanOptions) ([]Entry, error) {
	if relDir == "" {
		relDir = "."
	}
	if err := ValidateRelPath(relDir); err != nil {
		return nil, err
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if opts.SkipDirs == nil {
		opts.SkipDirs = DefaultSkipDirs()
	}

	var results []Entry
	visited := map[string]bool{}
	if err := w.scanDir(filepath.Clean(relDir), 1, opts, visited, &results); err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Path < results[j].Path })
	return results, nil
}

func (w *Workspace) scanDir(relDir string, depth int, opts ScanOptions, visited map[string]bool, results *[]Entry) error {
	if depth > opts.MaxDepth {
		return nil
	}
	if visited[relDir] {
		return nil
	}
	visited[relDir] = true

	dir, err := w.root.Open(relDir)
	if err != nil {
		if relDir == "." {
			return fmt.Errorf("cannot open scan directory: %w", err)
		}
		return nil
	}
	entries, err := dir.ReadDir(-1)
	dir.Close()
	if err != nil {
		return nil
	}

	for _, entry := range entries {
		name := entry.Name()
		entryPath := filepath.Join(relDir, name)

		if entry.IsDir() {
			if !opts.IncludeHidden && strings.HasPrefix(name, ".") {
				continue
			}
			if slices.Contains(opts.SkipDirs, name) {
				continue
			}
			if err := w.scanDir(entryPath, depth+1, opts, visited, results); err != nil {
				return err
			}
			continue
		}

		if !opts.IncludeHidden && strings.HasPrefix(name, ".") {
			continue
		}
		if opts.FileFilter != nil && !opts.FileFilter(name) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}
		*results = append(*results, Entry{
			Name:    name,
			Path:    entryPath,
			IsDir:   false,
			Size:    info.Size(),
			ModTime: info.ModTime(),
			Mode:    info.Mode(),
		})
	}

	return nil
}
