package mcpclient

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"codeassist/internal/config"
	"codeassist/internal/logging"

	mcpgo "github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
)

const clientVersion = "1.0.0"

// Result is the successful payload of one tool invocation. Failures are
// reported through the error return, never through the result.
type Result struct {
	// Content is the provider's text output, concatenated across content
	// blocks. Non-text blocks are rendered as JSON.
	Content string
}

// Client is the remote tool client for one MCP server. It owns at most one
// connection and one discovered catalog at a time. Methods are safe for
// concurrent use; invocations themselves are at-most-once.
type Client struct {
	cfg     config.MCPServerConfig
	timeout time.Duration
	logger  *logging.AppLogger

	mu      sync.Mutex
	mc      *mcpgo.Client
	catalog *Catalog
}

// NewClient creates a client for the configured MCP server. No connection
// is made until Connect or the first catalog request.
func NewClient(cfg config.MCPServerConfig, timeout time.Duration, logger *logging.AppLogger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		cfg:     cfg,
		timeout: timeout,
		logger:  logger,
	}
}

// Connect establishes the MCP connection and runs the initialize handshake.
// Calling Connect on an already-connected client is a no-op. Provider
// chatter on stderr during startup is expected and is not an error.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.mc != nil {
		return nil
	}

	var cli *mcpgo.Client
	var err error

	switch {
	case len(c.cfg.Command) > 0:
		c.logger.Debug("Starting MCP server subprocess", "command", c.cfg.Command)
		env := make([]string, 0, len(c.cfg.Env))
		for k, v := range c.cfg.Env {
			env = append(env, k+"="+v)
		}
		cli, err = mcpgo.NewStdioMCPClient(c.cfg.Command[0], env, c.cfg.Command[1:]...)
		if err != nil {
			return &ConnectError{Err: err}
		}

	case c.cfg.URL != "":
		c.logger.Debug("Connecting to MCP server over HTTP", "url", c.cfg.URL)
		cli, err = mcpgo.NewStreamableHttpClient(c.cfg.URL)
		if err != nil {
			return &ConnectError{Err: err}
		}
		if err := cli.Start(ctx); err != nil {
			return &ConnectError{Err: err}
		}

	default:
		return &ConnectError{Err: errors.New("no MCP server command or URL configured")}
	}

	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{Name: "codeassist", Version: clientVersion}

	initCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if _, err := cli.Initialize(initCtx, initReq); err != nil {
		cli.Close()
		return &ConnectError{Err: fmt.Errorf("initialize handshake: %w", err)}
	}

	// On the stdio transport the subprocess's stderr is a pipe we own. It
	// must be drained continuously or a chatty server fills the pipe buffer
	// and blocks mid-write, stalling every subsequent round trip.
	if stderr, ok := mcpgo.GetStderr(cli); ok {
		go c.drainStderr(stderr)
	}

	c.mc = cli
	c.logger.Debug("MCP connection established")
	return nil
}

// drainStderr consumes the server's stderr until EOF, forwarding each line
// to the debug log. EOF arrives when the subprocess exits.
func (c *Client) drainStderr(r io.Reader) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), 256*1024)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			c.logger.Debug("MCP server stderr", "line", line)
		}
	}
}

// Connected reports whether a connection is currently open.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mc != nil
}

// Catalog returns the cached catalog, discovering it on first use. Within
// one session this issues at most one tools/list call; only Reset or an
// explicit Discover invalidates the cache.
func (c *Client) Catalog(ctx context.Context) (*Catalog, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.catalog != nil {
		return c.catalog, nil
	}

	catalog, err := c.discoverLocked(ctx)
	if err != nil {
		return nil, err
	}
	c.catalog = catalog
	return catalog, nil
}

// Discover queries the server for its tool list, replacing any cached
// catalog. Requires an active connection.
func (c *Client) Discover(ctx context.Context) (*Catalog, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	catalog, err := c.discoverLocked(ctx)
	if err != nil {
		return nil, err
	}
	c.catalog = catalog
	return catalog, nil
}

func (c *Client) discoverLocked(ctx context.Context) (*Catalog, error) {
	if c.mc == nil {
		return nil, &ConnectError{Err: errors.New("not connected")}
	}

	start := time.Now()
	listCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	res, err := c.mc.ListTools(listCtx, mcp.ListToolsRequest{})
	if err != nil {
		return nil, &DiscoveryError{Reason: "tools/list request failed", Err: err}
	}
	if len(res.Tools) == 0 {
		return nil, &DiscoveryError{Reason: "provider returned an empty catalog"}
	}

	descriptors := make([]Descriptor, 0, len(res.Tools))
	for _, tool := range res.Tools {
		descriptors = append(descriptors, Descriptor{
			Name:        tool.Name,
			Description: tool.Description,
			Schema: ParameterSchema{
				Type:       tool.InputSchema.Type,
				Properties: tool.InputSchema.Properties,
				Required:   tool.InputSchema.Required,
			},
		})
	}

	catalog, err := NewCatalog(descriptors)
	if err != nil {
		return nil, &DiscoveryError{Reason: "malformed catalog", Err: err}
	}

	c.logger.LogPerformance("discovery", start)
	c.logger.Debug("Discovered tool catalog", "toolCount", catalog.Len())
	return catalog, nil
}

// Invoke executes one tool call. The tool name must exist in the
// last-discovered catalog and the arguments must satisfy its schema; both
// are checked locally before anything goes over the wire. The call is
// bounded by the configured timeout and is never retried.
func (c *Client) Invoke(ctx context.Context, inv Invocation) (Result, error) {
	c.mu.Lock()
	mc := c.mc
	catalog := c.catalog
	c.mu.Unlock()

	if mc == nil {
		return Result{}, &ConnectError{Err: errors.New("not connected")}
	}
	if catalog == nil {
		return Result{}, &DiscoveryError{Reason: "no catalog discovered yet"}
	}

	if err := catalog.ValidateInvocation(&inv); err != nil {
		return Result{}, err
	}

	c.logger.LogToolCall(inv.Tool, inv.Arguments)

	req := mcp.CallToolRequest{}
	req.Params.Name = inv.Tool
	req.Params.Arguments = inv.Arguments

	// Per-call timeout, independent of the session. Cancelling the caller's
	// context stops the wait without touching the connection.
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	res, err := mc.CallTool(callCtx, req)
	c.logger.LogPerformance("invoke "+inv.Tool, start)

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || callCtx.Err() == context.DeadlineExceeded {
			return Result{}, &InvokeError{
				Kind:   InvokeTimeout,
				Tool:   inv.Tool,
				Detail: fmt.Sprintf("no response within %s", c.timeout),
				Err:    err,
			}
		}
		return Result{}, &InvokeError{
			Kind:   InvokeRemoteFailure,
			Tool:   inv.Tool,
			Detail: err.Error(),
			Err:    err,
		}
	}

	content := flattenContent(res.Content)
	if res.IsError {
		return Result{}, &InvokeError{
			Kind:   InvokeRemoteFailure,
			Tool:   inv.Tool,
			Detail: content,
		}
	}

	return Result{Content: content}, nil
}

// Reset tears down the session: the connection is closed and the cached
// catalog dropped. The next Connect starts fresh.
func (c *Client) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.mc != nil {
		c.mc.Close()
		c.mc = nil
	}
	c.catalog = nil
	c.logger.Debug("MCP session reset")
}

// Close shuts the client down. Equivalent to Reset; named for defer sites.
func (c *Client) Close() error {
	c.Reset()
	return nil
}

// flattenContent renders MCP content blocks into one text payload.
func flattenContent(blocks []mcp.Content) string {
	var out string
	for i, block := range blocks {
		if i > 0 {
			out += "\n"
		}
		switch b := block.(type) {
		case mcp.TextContent:
			out += b.Text
		default:
			raw, err := json.Marshal(block)
			if err != nil {
				out += fmt.Sprintf("%v", block)
				continue
			}
			out += string(raw)
		}
	}
	return out
}
