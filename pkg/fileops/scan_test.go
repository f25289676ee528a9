package fileops

import (
	"strings"
	"testing"
)

func seedTree(t *testing.T, ws *Workspace) {
	t.Helper()
	files := map[string]string{
		"main.go":                 "package main\n",
		"internal/server/http.go": "package server\n",
		"internal/server/doc.md":  "# server\n",
		"node_modules/pkg/x.js":   "ignored\n",
		".git/config":             "ignored\n",
		".env":                    "SECRET=1\n",
		"README.md":               "# readme\n",
	}
	for path, content := range files {
		if err := ws.WriteFile(path, []byte(content)); err != nil {
			t.Fatalf("seeding %s: %v", path, err)
		}
	}
}

func paths(entries []Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Path)
	}
	return out
}

func TestScanSkipsNoiseDirectories(t *testing.T) {
	ws := newTestWorkspace(t)
	seedTree(t, ws)

	entries, err := ws.Scan(".", ScanOptions{})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}

	got := strings.Join(paths(entries), ",")
	if strings.Contains(got, "node_modules") || strings.Contains(got, ".git") {
		t.Errorf("noise directories must be skipped, got %s", got)
	}
	if strings.Contains(got, ".env") {
		t.Errorf("hidden files must be skipped by default, got %s", got)
	}
	if !strings.Contains(got, "internal/server/http.go") {
		t.Errorf("nested files must be found, got %s", got)
	}
}

func TestScanIncludeHidden(t *testing.T) {
	ws := newTestWorkspace(t)
	seedTree(t, ws)

	entries, err := ws.Scan(".", ScanOptions{IncludeHidden: true, SkipDirs: []string{}})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}

	got := strings.Join(paths(entries), ",")
	if !strings.Contains(got, ".env") {
		t.Errorf("hidden files must appear when requested, got %s", got)
	}
	if !strings.Contains(got, ".git/config") {
		t.Errorf("empty skip list must disable directory skipping, got %s", got)
	}
}

func TestScanFileFilter(t *testing.T) {
	ws := newTestWorkspace(t)
	seedTree(t, ws)

	entries, err := ws.Scan(".", ScanOptions{
		FileFilter: func(name string) bool { return strings.HasSuffix(name, ".go") },
	})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}

	if len(entries) != 2 {
		t.Fatalf("expected 2 .go files, got %v", paths(entries))
	}
	for _, e := range entries {
		if !strings.HasSuffix(e.Name, ".go") {
			t.Errorf("filter leaked %s", e.Path)
		}
	}
}

func TestScanSubdirectory(t *testing.T) {
	ws := newTestWorkspace(t)
	seedTree(t, ws)

	entries, err := ws.Scan("internal", ScanOptions{})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	for _, e := range entries {
		if !strings.HasPrefix(e.Path, "internal/") {
			t.Errorf("entry outside the scan directory: %s", e.Path)
		}
	}
	if len(entries) != 2 {
		t.Errorf("expected 2 entries under internal, got %v", paths(entries))
	}
}

func TestScanMaxDepth(t *testing.T) {
	ws := newTestWorkspace(t)
	if err := ws.WriteFile("a/b/c/deep.txt", []byte("x")); err != nil {
		t.Fatal(err)
	}
	if err := ws.WriteFile("top.txt", []byte("x")); err != nil {
		t.Fatal(err)
	}

	entries, err := ws.Scan(".", ScanOptions{MaxDepth: 1})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if got := strings.Join(paths(entries), ","); got != "top.txt" {
		t.Errorf("depth 1 must only see the top level, got %s", got)
	}
}

func TestScanResultsSorted(t *testing.T) {
	ws := newTestWorkspace(t)
	seedTree(t, ws)

	entries, err := ws.Scan(".", ScanOptions{})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	for i := 1; i < len(entries); i++ {
		if entries[i-1].Path > entries[i].Path {
			t.Fatalf("results not sorted: %v", paths(entries))
		}
	}
}
