package mcpclient

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestInvokeErrorMessages(t *testing.T) {
	tests := []struct {
		name string
		err  *InvokeError
		want string
	}{
		{
			name: "not found",
			err:  &InvokeError{Kind: InvokeNotFound, Tool: "push_files"},
			want: "not found in catalog",
		},
		{
			name: "bad arguments",
			err:  &InvokeError{Kind: InvokeBadArguments, Tool: "create_issue", Detail: `missing required parameter "title"`},
			want: "bad arguments",
		},
		{
			name: "timeout",
			err:  &InvokeError{Kind: InvokeTimeout, Tool: "search_code", Detail: "no response within 30s"},
			want: "timed out",
		},
		{
			name: "remote failure",
			err:  &InvokeError{Kind: InvokeRemoteFailure, Tool: "fork_repository", Detail: "API rate limit exceeded"},
			want: "failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			if !strings.Contains(msg, tt.want) {
				t.Errorf("Expected %q in message, got %q", tt.want, msg)
			}
			if !strings.Contains(msg, tt.err.Tool) {
				t.Errorf("Expected tool name in message, got %q", msg)
			}
		})
	}
}

func TestIsInvokeKind(t *testing.T) {
	err := &InvokeError{Kind: InvokeTimeout, Tool: "search_code"}

	if !IsInvokeKind(err, InvokeTimeout) {
		t.Error("Expected direct match")
	}
	if IsInvokeKind(err, InvokeNotFound) {
		t.Error("Kinds must not cross-match")
	}

	wrapped := fmt.Errorf("dispatch failed: %w", err)
	if !IsInvokeKind(wrapped, InvokeTimeout) {
		t.Error("Expected match through wrapping")
	}

	if IsInvokeKind(errors.New("plain"), InvokeTimeout) {
		t.Error("Plain errors must not match")
	}
	if IsInvokeKind(nil, InvokeTimeout) {
		t.Error("nil must not match")
	}
}

func TestErrorUnwrapping(t *testing.T) {
	cause := errors.New("connection refused")

	connectErr := &ConnectError{Err: cause}
	if !errors.Is(connectErr, cause) {
		t.Error("ConnectError should unwrap to its cause")
	}

	discErr := &DiscoveryError{Reason: "tools/list request failed", Err: cause}
	if !errors.Is(discErr, cause) {
		t.Error("DiscoveryError should unwrap to its cause")
	}

	invokeErr := &InvokeError{Kind: InvokeRemoteFailure, Tool: "x", Err: cause}
	if !errors.Is(invokeErr, cause) {
		t.Error("InvokeError should unwrap to its cause")
	}
}

func TestDiscoveryErrorMessage(t *testing.T) {
	withCause := &DiscoveryError{Reason: "tools/list request failed", Err: errors.New("broken pipe")}
	if !strings.Contains(withCause.Error(), "broken pipe") {
		t.Errorf("Expected cause in message, got %q", withCause.Error())
	}

	withoutCause := &DiscoveryError{Reason: "provider returned an empty catalog"}
	if !strings.Contains(withoutCause.Error(), "empty catalog") {
		t.Errorf("Expected reason in message, got %q", withoutCause.Error())
	}
}
