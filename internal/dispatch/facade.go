// Package dispatch hides the multi-tool MCP client behind one callable
// surface. A free-text query goes in; a human-readable answer comes out.
// Tool selection happens through a pluggable Selector, execution through
// the remote client, and every failure is converted to text at this
// boundary: no structured error escapes Dispatch.
package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"codeassist/internal/logging"
	"codeassist/internal/mcpclient"
	"codeassist/internal/quiet"
)

// SessionState tracks where the facade's single session is in its lifecycle.
type SessionState string

const (
	StateUninitialized SessionState = "Uninitialized"
	StateConnected     SessionState = "Connected"
	StateCatalogLoaded SessionState = "CatalogLoaded"
	StateDispatching   SessionState = "Dispatching"
	StateClosed        SessionState = "Closed"
)

// FacadeErrorKind classifies facade-level failures.
type FacadeErrorKind string

const (
	// FacadeNoSession means the underlying connection could not be established.
	FacadeNoSession FacadeErrorKind = "no_session"
	// FacadeNoMatch means the selector produced no usable tool for the query.
	FacadeNoMatch FacadeErrorKind = "no_match"
)

// FacadeError is the facade's own failure type. It exists for the internal
// dispatch path and for tests; the public Dispatch method renders it to text
// like every other error.
type FacadeError struct {
	Kind FacadeErrorKind
	Err  error
}

func (e *FacadeError) Error() string {
	switch e.Kind {
	case FacadeNoSession:
		return fmt.Sprintf("no session: %v", e.Err)
	default:
		return "no matching tool"
	}
}

func (e *FacadeError) Unwrap() error { return e.Err }

// RemoteClient is the slice of the MCP client the facade needs.
// *mcpclient.Client satisfies it; tests substitute stubs.
type RemoteClient interface {
	Connect(ctx context.Context) error
	Catalog(ctx context.Context) (*mcpclient.Catalog, error)
	Invoke(ctx context.Context, inv mcpclient.Invocation) (mcpclient.Result, error)
	Reset()
}

// Facade is the single externally visible dispatch surface. One session,
// one in-flight dispatch at a time; concurrent callers serialize.
type Facade struct {
	client   RemoteClient
	selector Selector
	logger   *logging.AppLogger

	mu    sync.Mutex
	state SessionState
}

// NewFacade wires a facade from a remote client and a selector.
func NewFacade(client RemoteClient, selector Selector, logger *logging.AppLogger) *Facade {
	return &Facade{
		client:   client,
		selector: selector,
		logger:   logger,
		state:    StateUninitialized,
	}
}

// State returns the current session state.
func (f *Facade) State() SessionState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Dispatch maps one free-text query to one remote tool call and returns a
// human-readable result. It never returns an error and never panics past
// its boundary; every failure becomes a readable message. A failed
// invocation keeps the session alive: the next call reuses the connection
// and the cached catalog.
func (f *Facade) Dispatch(ctx context.Context, query string) string {
	text, err := f.dispatch(ctx, query)
	if err != nil {
		return f.describeFailure(err)
	}
	return text
}

// dispatch is the typed core of Dispatch. Exposed to tests via the package
// boundary only.
func (f *Facade) dispatch(ctx context.Context, query string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state == StateClosed {
		return "", &FacadeError{Kind: FacadeNoSession, Err: errors.New("session is closed")}
	}

	// 1. Ensure a session exists, connecting lazily. Server startup chatter
	// goes through the diagnostic filter, not the conversation.
	if f.state == StateUninitialized {
		noise, err := quiet.Capture(func() error {
			return f.client.Connect(ctx)
		})
		f.logNoise("connect", noise)
		if err != nil {
			return "", &FacadeError{Kind: FacadeNoSession, Err: err}
		}
		f.transition(StateConnected)
	}

	// 2. Load or reuse the session's tool catalog.
	var catalog *mcpclient.Catalog
	noise, err := quiet.Capture(func() error {
		var cerr error
		catalog, cerr = f.client.Catalog(ctx)
		return cerr
	})
	f.logNoise("discover", noise)
	if err != nil {
		return "", err
	}
	if f.state == StateConnected {
		f.transition(StateCatalogLoaded)
	}

	// 3. Map the query onto exactly one invocation. An unknown tool name
	// must never reach the remote client.
	inv, err := f.selector.Select(ctx, query, catalog)
	if err != nil {
		if errors.Is(err, ErrNoMatch) {
			return "", &FacadeError{Kind: FacadeNoMatch, Err: err}
		}
		return "", err
	}
	if !catalog.Has(inv.Tool) {
		return "", &FacadeError{Kind: FacadeNoMatch, Err: fmt.Errorf("selector chose unknown tool %q", inv.Tool)}
	}

	// 4. Execute. Invocation failures return the session to CatalogLoaded,
	// never to Uninitialized.
	f.transition(StateDispatching)
	var result mcpclient.Result
	noise, err = quiet.Capture(func() error {
		var ierr error
		result, ierr = f.client.Invoke(ctx, inv)
		return ierr
	})
	f.logNoise("invoke", noise)
	f.transition(StateCatalogLoaded)

	if err != nil {
		return "", err
	}

	// 5. Format the payload for humans.
	return formatResult(inv.Tool, result.Content), nil
}

// Reset drops the session entirely. The next dispatch reconnects and
// rediscovers the catalog.
func (f *Facade) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.client.Reset()
	f.transition(StateUninitialized)
}

// Close shuts the facade down permanently.
func (f *Facade) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.client.Reset()
	f.transition(StateClosed)
}

func (f *Facade) transition(to SessionState) {
	f.logger.LogSessionTransition(string(f.state), string(to))
	f.state = to
}

func (f *Facade) logNoise(phase, noise string) {
	if noise != "" {
		f.logger.Debug("Suppressed provider diagnostics", "phase", phase, "bytes", len(noise))
	}
}

// describeFailure turns any structured error into conversational text.
// This is the single point where the error taxonomy is flattened.
func (f *Facade) describeFailure(err error) string {
	var facadeErr *FacadeError
	if errors.As(err, &facadeErr) {
		switch facadeErr.Kind {
		case FacadeNoSession:
			return fmt.Sprintf("I couldn't reach the GitHub tool server (%v). I'll try to reconnect on your next request.", facadeErr.Err)
		case FacadeNoMatch:
			return "I couldn't match that request to any available GitHub tool. Try rephrasing it, or type 'tools' to see what I can do."
		}
	}

	var invokeErr *mcpclient.InvokeError
	if errors.As(err, &invokeErr) {
		switch invokeErr.Kind {
		case mcpclient.InvokeNotFound:
			return fmt.Sprintf("The tool %q isn't available on the GitHub server right now.", invokeErr.Tool)
		case mcpclient.InvokeBadArguments:
			return fmt.Sprintf("That request was missing details the %s tool needs: %s.", invokeErr.Tool, invokeErr.Detail)
		case mcpclient.InvokeTimeout:
			return fmt.Sprintf("The %s call timed out (%s). The connection is still alive, so feel free to retry.", invokeErr.Tool, invokeErr.Detail)
		default:
			return fmt.Sprintf("GitHub reported an error for %s: %s", invokeErr.Tool, invokeErr.Detail)
		}
	}

	var discErr *mcpclient.DiscoveryError
	if errors.As(err, &discErr) {
		return fmt.Sprintf("The GitHub tool server returned an unusable tool catalog: %s.", discErr.Reason)
	}

	var connErr *mcpclient.ConnectError
	if errors.As(err, &connErr) {
		return fmt.Sprintf("I couldn't reach the GitHub tool server (%v). I'll try to reconnect on your next request.", connErr.Err)
	}

	return fmt.Sprintf("Something went wrong while handling that request: %v", err)
}

// formatResult renders a tool payload as readable text. JSON arrays and
// GitHub-style search envelopes get a count headline; everything else
// passes through untouched.
func formatResult(tool, content string) string {
	// A payload of literal "null" decodes into a nil slice (and a nil map)
	// without error; it must pass through, not become "0 results".
	var arr []any
	if err := json.Unmarshal([]byte(content), &arr); err == nil && arr != nil {
		return fmt.Sprintf("%d results from %s:\n%s", len(arr), tool, prettyJSON(arr))
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(content), &obj); err == nil && obj != nil {
		if items, ok := obj["items"].([]any); ok {
			return fmt.Sprintf("%d results from %s:\n%s", len(items), tool, prettyJSON(items))
		}
		return prettyJSON(obj)
	}

	return content
}

func prettyJSON(v any) string {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(raw)
}
