// Package otel provides structured observability for artscroll.
//
// Events are typed structs serialized as JSONL lines. The Logger writes
// events asynchronously via a buffered channel and background drain goroutine.
// An optional RingBuffer provides live in-memory inspection for the debug overlay.
package otel

import (
	"encoding/json"
	"time"
)

// Level defines event severity for filtering.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// EventKind identifies the category of an observability event.
// Dot-delimited: "<subsystem>.<action>".
type EventKind string

const (
	// Load session events
	KindLoadStart    EventKind = "load.start"
	KindLoadComplete EventKind = "load.complete"
	KindLoadSkip     EventKind = "load.skip"
	KindLoadEmpty    EventKind = "load.empty"

	// Candidate events
	KindItemAccept EventKind = "item.accept"
	KindItemReject EventKind = "item.reject"

	// Pool events
	KindPoolInit   EventKind = "pool.init"
	KindPoolRefill EventKind = "pool.refill"
	KindPoolError  EventKind = "pool.error"

	// Store events
	KindStoreError EventKind = "store.error"

	// UI events
	KindKeyPress EventKind = "ui.key"
	KindNearEnd  EventKind = "ui.near_end"

	// System events
	KindStartup  EventKind = "sys.startup"
	KindShutdown EventKind = "sys.shutdown"
	KindError    EventKind = "sys.error"

	// Trace events
	KindMsgReceived EventKind = "trace.msg_received"
	KindMsgHandled  EventKind = "trace.msg_handled"
)

// Event is the universal observability record. Every field except Kind and
// Time is optional. Serialized as a single JSONL line.
type Event struct {
	Time      time.Time      `json:"t"`
	Level     Level          `json:"level,omitempty"`
	Kind      EventKind      `json:"kind"`
	Comp      string         `json:"comp,omitempty"`       // component: "feed", "ui", "catalog", "main"
	SessionID string         `json:"session_id,omitempty"` // same for entire app run
	LoadID    string         `json:"load_id,omitempty"`    // load session correlation ID
	ItemID    int64          `json:"item_id,omitempty"`
	Dur       time.Duration  `json:"-"`                // not serialized directly
	DurMs     float64        `json:"dur_ms,omitempty"` // computed from Dur at marshal time
	Count     int            `json:"count,omitempty"`
	Attempts  int            `json:"attempts,omitempty"`
	Err       string         `json:"err,omitempty"`
	Msg       string         `json:"msg,omitempty"`
	Extra     map[string]any `json:"extra,omitempty"`
}

// MarshalJSON implements json.Marshaler, converting Dur to DurMs.
func (e Event) MarshalJSON() ([]byte, error) {
	type Alias Event
	a := struct {
		Alias
	}{Alias: Alias(e)}
	if e.Dur > 0 {
		a.DurMs = float64(e.Dur) / float64(time.Millisecond)
	}
	return json.Marshal(a)
}
