// Package quiet provides scoped suppression of diagnostic output.
//
// External MCP servers are chatty: the GitHub server prints startup banners
// and schema warnings on stderr during connect, discovery and tool calls.
// That text is incidental and must not reach the conversational UI, but it
// must never mask the wrapped call's own result or error.
//
// Capture models the suppression as a scoped resource: the diagnostic stream
// is swapped for the duration of one call and unconditionally restored on
// every exit path, including panics.
package quiet

import (
	"io"
	"os"
	"sync"
)

// captureMu serializes captures. The swap targets process-wide state, so
// overlapping captures from concurrent dispatches must not interleave.
var captureMu sync.Mutex

// Capture runs fn with os.Stderr redirected into an in-memory buffer.
// It returns whatever fn returns, plus the text fn (or anything it called)
// wrote to stderr while it ran. The previous stderr is restored before
// Capture returns, whether fn succeeds, fails, or panics.
func Capture(fn func() error) (captured string, err error) {
	captureMu.Lock()
	defer captureMu.Unlock()

	r, w, pipeErr := os.Pipe()
	if pipeErr != nil {
		// No pipe, no suppression. Run fn anyway; losing the filter is
		// better than losing the call.
		return "", fn()
	}

	prev := os.Stderr
	os.Stderr = w

	drained := make(chan string, 1)
	go func() {
		data, _ := io.ReadAll(r)
		drained <- string(data)
	}()

	defer func() {
		os.Stderr = prev
		w.Close()
		captured = <-drained
		r.Close()
	}()

	err = fn()
	return captured, err
}

// Discard runs fn with stderr suppressed and throws the captured text away.
func Discard(fn func() error) error {
	_, err := Capture(fn)
	return err
}
