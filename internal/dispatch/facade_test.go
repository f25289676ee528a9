package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"codeassist/internal/logging"
	"codeassist/internal/mcpclient"
)

// stubRemote counts calls so tests can assert the session contract:
// connect once, discover once, invoke only for catalog tools.
type stubRemote struct {
	catalog *mcpclient.Catalog

	connectErr  error
	catalogErr  error
	invokeErr   error
	invokeBody  string
	connects    int
	discoveries int
	invokes     int
	resets      int
	lastInv     mcpclient.Invocation
}

func (s *stubRemote) Connect(ctx context.Context) error {
	s.connects++
	return s.connectErr
}

func (s *stubRemote) Catalog(ctx context.Context) (*mcpclient.Catalog, error) {
	if s.catalogErr != nil {
		s.discoveries++
		return nil, s.catalogErr
	}
	// Session-lifetime cache: only the first call counts as a discovery.
	if s.discoveries == 0 {
		s.discoveries++
	}
	return s.catalog, nil
}

func (s *stubRemote) Invoke(ctx context.Context, inv mcpclient.Invocation) (mcpclient.Result, error) {
	s.invokes++
	s.lastInv = inv
	if s.invokeErr != nil {
		return mcpclient.Result{}, s.invokeErr
	}
	return mcpclient.Result{Content: s.invokeBody}, nil
}

func (s *stubRemote) Reset() {
	s.resets++
	s.discoveries = 0
}

func githubCatalog(t *testing.T) *mcpclient.Catalog {
	t.Helper()
	catalog, err := mcpclient.NewCatalog([]mcpclient.Descriptor{
		{
			Name:        "search_repositories",
			Description: "Search for GitHub repositories",
			Schema: mcpclient.ParameterSchema{
				Type: "object",
				Properties: map[string]any{
					"query": map[string]any{"type": "string"},
				},
				Required: []string{"query"},
			},
		},
		{
			Name:        "get_file_contents",
			Description: "Read a file from a repository",
			Schema: mcpclient.ParameterSchema{
				Type: "object",
				Properties: map[string]any{
					"owner": map[string]any{"type": "string"},
					"repo":  map[string]any{"type": "string"},
					"path":  map[string]any{"type": "string"},
				},
				Required: []string{"owner", "repo", "path"},
			},
		},
	})
	if err != nil {
		t.Fatalf("building catalog: %v", err)
	}
	return catalog
}

func pickTool(name string, args map[string]any) Selector {
	return SelectorFunc(func(ctx context.Context, query string, catalog *mcpclient.Catalog) (mcpclient.Invocation, error) {
		return mcpclient.NewInvocation(name, args), nil
	})
}

func noMatch() Selector {
	return SelectorFunc(func(ctx context.Context, query string, catalog *mcpclient.Catalog) (mcpclient.Invocation, error) {
		return mcpclient.Invocation{}, ErrNoMatch
	})
}

func newTestFacade(t *testing.T, remote RemoteClient, sel Selector) *Facade {
	t.Helper()
	logger, _ := logging.NewTestLogger()
	return NewFacade(remote, sel, logger)
}

// repoSearchPayload mimics the GitHub MCP search_repositories response shape.
func repoSearchPayload(count int) string {
	items := make([]string, 0, count)
	for i := 0; i < count; i++ {
		items = append(items, fmt.Sprintf(`{"full_name":"Abhitheshek/repo-%d"}`, i))
	}
	return fmt.Sprintf(`{"total_count":%d,"items":[%s]}`, count, strings.Join(items, ","))
}

func TestDispatchSearchScenario(t *testing.T) {
	remote := &stubRemote{
		catalog:    githubCatalog(t),
		invokeBody: repoSearchPayload(17),
	}
	facade := newTestFacade(t, remote, pickTool("search_repositories", map[string]any{"query": "user:Abhitheshek"}))

	out := facade.Dispatch(context.Background(), "list the repositories of user Abhitheshek")

	if !strings.Contains(out, "17 results from search_repositories") {
		t.Errorf("expected a 17-result headline, got:\n%s", out)
	}
	if remote.invokes != 1 {
		t.Errorf("expected exactly one invocation, got %d", remote.invokes)
	}
	if remote.lastInv.Tool != "search_repositories" {
		t.Errorf("wrong tool invoked: %s", remote.lastInv.Tool)
	}
	if got := facade.State(); got != StateCatalogLoaded {
		t.Errorf("expected CatalogLoaded after dispatch, got %s", got)
	}
}

func TestDispatchNoMatchNeverInvokes(t *testing.T) {
	remote := &stubRemote{catalog: githubCatalog(t)}
	facade := newTestFacade(t, remote, noMatch())

	out := facade.Dispatch(context.Background(), "what is the meaning of life")

	if remote.invokes != 0 {
		t.Fatalf("no-match queries must not reach the remote client, got %d invokes", remote.invokes)
	}
	if !strings.Contains(out, "couldn't match") {
		t.Errorf("expected a no-match explanation, got:\n%s", out)
	}
}

func TestDispatchRejectsUnknownToolFromSelector(t *testing.T) {
	remote := &stubRemote{catalog: githubCatalog(t)}
	facade := newTestFacade(t, remote, pickTool("delete_everything", nil))

	out := facade.Dispatch(context.Background(), "clean up")

	if remote.invokes != 0 {
		t.Fatalf("a tool outside the catalog must never be invoked, got %d invokes", remote.invokes)
	}
	if !strings.Contains(out, "couldn't match") {
		t.Errorf("expected a no-match explanation, got:\n%s", out)
	}
}

func TestDispatchCachesCatalogAcrossCalls(t *testing.T) {
	remote := &stubRemote{
		catalog:    githubCatalog(t),
		invokeBody: `{"status":"ok"}`,
	}
	facade := newTestFacade(t, remote, pickTool("search_repositories", map[string]any{"query": "q"}))

	facade.Dispatch(context.Background(), "first")
	facade.Dispatch(context.Background(), "second")
	facade.Dispatch(context.Background(), "third")

	if remote.connects != 1 {
		t.Errorf("expected one connect for the whole session, got %d", remote.connects)
	}
	if remote.discoveries != 1 {
		t.Errorf("expected one discovery for the whole session, got %d", remote.discoveries)
	}
	if remote.invokes != 3 {
		t.Errorf("expected three invocations, got %d", remote.invokes)
	}
}

func TestDispatchTimeoutKeepsSessionAlive(t *testing.T) {
	remote := &stubRemote{
		catalog: githubCatalog(t),
		invokeErr: &mcpclient.InvokeError{
			Kind:   mcpclient.InvokeTimeout,
			Tool:   "search_repositories",
			Detail: "no response within 30s",
		},
	}
	facade := newTestFacade(t, remote, pickTool("search_repositories", map[string]any{"query": "q"}))

	out := facade.Dispatch(context.Background(), "slow query")

	if !strings.Contains(out, "timed out") {
		t.Errorf("expected a timeout explanation, got:\n%s", out)
	}
	if got := facade.State(); got != StateCatalogLoaded {
		t.Fatalf("a timeout must leave the session usable, state is %s", got)
	}

	// The retry reuses the same connection and catalog.
	remote.invokeErr = nil
	remote.invokeBody = `{"status":"ok"}`
	facade.Dispatch(context.Background(), "retry")

	if remote.connects != 1 {
		t.Errorf("retry must not reconnect, got %d connects", remote.connects)
	}
	if remote.discoveries != 1 {
		t.Errorf("retry must not rediscover, got %d discoveries", remote.discoveries)
	}
}

func TestDispatchConnectFailure(t *testing.T) {
	remote := &stubRemote{connectErr: errors.New("npx: command not found")}
	facade := newTestFacade(t, remote, noMatch())

	out := facade.Dispatch(context.Background(), "anything")

	if !strings.Contains(out, "couldn't reach") {
		t.Errorf("expected a connection failure explanation, got:\n%s", out)
	}
	if got := facade.State(); got != StateUninitialized {
		t.Errorf("a failed connect must leave the session Uninitialized, got %s", got)
	}

	// The next dispatch retries the connection.
	remote.connectErr = nil
	remote.catalog = githubCatalog(t)
	facade.Dispatch(context.Background(), "again")
	if remote.connects != 2 {
		t.Errorf("expected a second connect attempt, got %d", remote.connects)
	}
}

func TestDispatchRemoteFailure(t *testing.T) {
	remote := &stubRemote{
		catalog: githubCatalog(t),
		invokeErr: &mcpclient.InvokeError{
			Kind:   mcpclient.InvokeRemoteFailure,
			Tool:   "get_file_contents",
			Detail: "404 Not Found",
		},
	}
	facade := newTestFacade(t, remote, pickTool("get_file_contents", map[string]any{
		"owner": "octocat", "repo": "hello", "path": "README.md",
	}))

	out := facade.Dispatch(context.Background(), "read the readme")

	if !strings.Contains(out, "404 Not Found") {
		t.Errorf("expected the remote error detail, got:\n%s", out)
	}
}

func TestDispatchAfterClose(t *testing.T) {
	remote := &stubRemote{catalog: githubCatalog(t)}
	facade := newTestFacade(t, remote, noMatch())

	facade.Close()
	out := facade.Dispatch(context.Background(), "anything")

	if !strings.Contains(out, "couldn't reach") {
		t.Errorf("expected a no-session explanation after close, got:\n%s", out)
	}
	if remote.connects != 0 {
		t.Errorf("a closed facade must not reconnect, got %d connects", remote.connects)
	}
}

func TestResetForcesRediscovery(t *testing.T) {
	remote := &stubRemote{
		catalog:    githubCatalog(t),
		invokeBody: `{"status":"ok"}`,
	}
	facade := newTestFacade(t, remote, pickTool("search_repositories", map[string]any{"query": "q"}))

	facade.Dispatch(context.Background(), "first")
	facade.Reset()
	facade.Dispatch(context.Background(), "second")

	if remote.resets != 1 {
		t.Errorf("expected the remote client to be reset once, got %d", remote.resets)
	}
	if remote.connects != 2 {
		t.Errorf("expected a reconnect after reset, got %d connects", remote.connects)
	}
	if remote.discoveries != 1 {
		t.Errorf("expected a fresh discovery after reset, got %d", remote.discoveries)
	}
}

func TestFormatResult(t *testing.T) {
	t.Run("json array", func(t *testing.T) {
		out := formatResult("list_issues", `[{"n":1},{"n":2},{"n":3}]`)
		if !strings.HasPrefix(out, "3 results from list_issues") {
			t.Errorf("unexpected formatting:\n%s", out)
		}
	})

	t.Run("search envelope", func(t *testing.T) {
		out := formatResult("search_repositories", repoSearchPayload(2))
		if !strings.HasPrefix(out, "2 results from search_repositories") {
			t.Errorf("unexpected formatting:\n%s", out)
		}
	})

	t.Run("plain object", func(t *testing.T) {
		out := formatResult("get_me", `{"login":"octocat"}`)
		if !strings.Contains(out, `"login": "octocat"`) {
			t.Errorf("expected pretty-printed object, got:\n%s", out)
		}
	})

	t.Run("plain text passes through", func(t *testing.T) {
		out := formatResult("get_file_contents", "package main\n")
		if out != "package main\n" {
			t.Errorf("plain text must pass through untouched, got:\n%s", out)
		}
	})

	t.Run("null payload passes through", func(t *testing.T) {
		out := formatResult("get_me", "null")
		if out != "null" {
			t.Errorf("null must not become a result count, got:\n%s", out)
		}
	})

	t.Run("empty array still counts", func(t *testing.T) {
		out := formatResult("list_issues", `[]`)
		if !strings.HasPrefix(out, "0 results from list_issues") {
			t.Errorf("unexpected formatting:\n%s", out)
		}
	})
}
