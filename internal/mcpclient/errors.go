package mcpclient

import (
	"errors"
	"fmt"
)

// ConnectError reports that the MCP server could not be reached or the
// initialize handshake failed. Connection failures are recoverable: the next
// dispatch may try again.
type ConnectError struct {
	Err error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("mcp connect failed: %v", e.Err)
}

func (e *ConnectError) Unwrap() error { return e.Err }

// DiscoveryError reports that the server returned a malformed or empty tool
// catalog during tools/list.
type DiscoveryError struct {
	Reason string
	Err    error
}

func (e *DiscoveryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("mcp discovery failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("mcp discovery failed: %s", e.Reason)
}

func (e *DiscoveryError) Unwrap() error { return e.Err }

// InvokeErrorKind classifies a failed tool invocation.
type InvokeErrorKind string

const (
	// InvokeNotFound means the tool name is absent from the last-discovered catalog.
	InvokeNotFound InvokeErrorKind = "not_found"
	// InvokeBadArguments means required parameters are missing or mistyped.
	InvokeBadArguments InvokeErrorKind = "bad_arguments"
	// InvokeRemoteFailure means the provider executed the tool but reported an error.
	InvokeRemoteFailure InvokeErrorKind = "remote_failure"
	// InvokeTimeout means no response arrived within the bounded wait.
	InvokeTimeout InvokeErrorKind = "timeout"
)

// InvokeError reports a failed tool invocation. NotFound, BadArguments and
// Timeout all leave the session usable; none of them forces a reconnect or
// a catalog refresh.
type InvokeError struct {
	Kind   InvokeErrorKind
	Tool   string
	Detail string
	Err    error
}

func (e *InvokeError) Error() string {
	switch e.Kind {
	case InvokeNotFound:
		return fmt.Sprintf("tool %q not found in catalog", e.Tool)
	case InvokeBadArguments:
		return fmt.Sprintf("bad arguments for tool %q: %s", e.Tool, e.Detail)
	case InvokeTimeout:
		return fmt.Sprintf("tool %q timed out: %s", e.Tool, e.Detail)
	default:
		return fmt.Sprintf("tool %q failed: %s", e.Tool, e.Detail)
	}
}

func (e *InvokeError) Unwrap() error { return e.Err }

// IsInvokeKind reports whether err is an *InvokeError of the given kind.
func IsInvokeKind(err error, kind InvokeErrorKind) bool {
	var ie *InvokeError
	if !errors.As(err, &ie) {
		return false
	}
	return ie.Kind == kind
}
