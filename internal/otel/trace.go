package otel

import (
	"os"
	"strings"
	"sync/atomic"
)

// traceEnabled gates the trace.msg_* events the feed UI emits for every
// Bubble Tea message. Read on the UI goroutine, toggled by tests.
var traceEnabled atomic.Bool

func init() {
	traceEnabled.Store(traceFromEnv(os.Getenv("ARTSCROLL_TRACE")))
}

// traceFromEnv treats any ARTSCROLL_TRACE value except empty, "0", "false"
// and "off" as on.
func traceFromEnv(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "0", "false", "off":
		return false
	}
	return true
}

// TraceEnabled reports whether per-message UI tracing is on.
func TraceEnabled() bool {
	return traceEnabled.Load()
}

func setTraceEnabled(v bool) {
	traceEnabled.Store(v)
}
