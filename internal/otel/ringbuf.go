package otel

import "sync"

// DefaultRingSize holds the debug overlay's history. A default load session
// (batch 6, budget 30 attempts) emits at most ~35 events, so this spans the
// last ~30 sessions.
const DefaultRingSize = 1024

// RingBuffer keeps the most recent feed events in memory for the debug
// overlay. The logger's drain goroutine pushes; the UI reads.
type RingBuffer struct {
	mu    sync.Mutex
	buf   []Event
	size  int
	head  int // next write position
	count int // number of valid entries (0..size)
}

// NewRingBuffer creates a ring buffer with the given capacity.
func NewRingBuffer(size int) *RingBuffer {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &RingBuffer{
		buf:  make([]Event, size),
		size: size,
	}
}

// Push adds an event, overwriting the oldest if full.
// Extra is copied so later edits by the emitter do not show through.
func (r *RingBuffer) Push(e Event) {
	if e.Extra != nil {
		cp := make(map[string]any, len(e.Extra))
		for k, v := range e.Extra {
			cp[k] = v
		}
		e.Extra = cp
	}
	r.mu.Lock()
	r.buf[r.head] = e
	r.head = (r.head + 1) % r.size
	if r.count < r.size {
		r.count++
	}
	r.mu.Unlock()
}

// Snapshot returns a copy of all events in chronological order (oldest first).
// The returned slice is safe to use without locks.
func (r *RingBuffer) Snapshot() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.count == 0 {
		return nil
	}

	result := make([]Event, r.count)
	if r.count < r.size {
		copy(result, r.buf[:r.count])
	} else {
		n := copy(result, r.buf[r.head:])
		copy(result[n:], r.buf[:r.head])
	}
	return result
}

// Last returns the N most recent events in chronological order.
// If n > count, returns all events. If n <= 0, returns nil.
func (r *RingBuffer) Last(n int) []Event {
	if n <= 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.count == 0 {
		return nil
	}
	if n > r.count {
		n = r.count
	}

	result := make([]Event, n)
	start := (r.head - n + r.size) % r.size
	if start+n <= r.size {
		copy(result, r.buf[start:start+n])
	} else {
		first := r.size - start
		copy(result, r.buf[start:])
		copy(result[first:], r.buf[:n-first])
	}
	return result
}

// Len returns the number of events currently in the buffer.
func (r *RingBuffer) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// Cap returns the buffer capacity.
func (r *RingBuffer) Cap() int {
	return r.size
}

// Count returns how many buffered events have the given kind.
func (r *RingBuffer) Count(kind EventKind) int {
	return r.Stats()[kind]
}

// LastLoad reports the newest load session in the buffer and how many
// candidates it accepted and rejected. id is empty when no load event is
// buffered.
func (r *RingBuffer) LastLoad() (id string, accepted, rejected int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := 0; i < r.count; i++ {
		e := r.buf[(r.head-1-i+r.size)%r.size]
		if e.LoadID == "" {
			continue
		}
		if id == "" {
			id = e.LoadID
		}
		if e.LoadID != id {
			continue
		}
		switch e.Kind {
		case KindItemAccept:
			accepted++
		case KindItemReject:
			rejected++
		}
	}
	return id, accepted, rejected
}

// Stats returns aggregated counts by EventKind over all buffered events.
func (r *RingBuffer) Stats() map[EventKind]int {
	r.mu.Lock()
	defer r.mu.Unlock()

	counts := make(map[EventKind]int)
	start := 0
	if r.count >= r.size {
		start = r.head
	}
	for i := 0; i < r.count; i++ {
		idx := (start + i) % r.size
		counts[r.buf[idx].Kind]++
	}
	return counts
}
