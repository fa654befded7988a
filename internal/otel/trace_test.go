package otel

import "testing"

func TestTraceFromEnv(t *testing.T) {
	tests := []struct {
		val  string
		want bool
	}{
		{"", false},
		{"0", false},
		{"false", false},
		{" OFF ", false},
		{"1", true},
		{"true", true},
		{"ui", true},
	}
	for _, tt := range tests {
		if got := traceFromEnv(tt.val); got != tt.want {
			t.Errorf("traceFromEnv(%q) = %v, want %v", tt.val, got, tt.want)
		}
	}
}

func TestTraceToggleRecordsUIMessages(t *testing.T) {
	orig := TraceEnabled()
	defer setTraceEnabled(orig)

	ring := NewRingBuffer(8)
	l := NewNullLogger()
	l.SetRingBuffer(ring)

	// Mirrors the UI: trace events are only emitted while tracing is on.
	emit := func(msg string) {
		if TraceEnabled() {
			l.Emit(Event{Level: LevelDebug, Kind: KindMsgReceived, Comp: "ui", Msg: msg})
		}
	}

	setTraceEnabled(false)
	emit("ui.ItemAppended")
	setTraceEnabled(true)
	emit("ui.LoadFinished")
	l.Close()

	if n := ring.Count(KindMsgReceived); n != 1 {
		t.Fatalf("trace events = %d, want 1", n)
	}
	if got := ring.Last(1)[0].Msg; got != "ui.LoadFinished" {
		t.Errorf("traced message = %q", got)
	}
}
