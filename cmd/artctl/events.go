package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// eventRecord mirrors otel.Event for JSON decoding.
// We decode from JSONL rather than importing otel to keep this
// subcommand usable even if the event schema evolves.
type eventRecord struct {
	Time      time.Time      `json:"t"`
	Level     string         `json:"level"`
	Kind      string         `json:"kind"`
	Comp      string         `json:"comp"`
	SessionID string         `json:"session_id"`
	LoadID    string         `json:"load_id"`
	ItemID    int64          `json:"item_id"`
	DurMs     float64        `json:"dur_ms"`
	Count     int            `json:"count"`
	Attempts  int            `json:"attempts"`
	Err       string         `json:"err"`
	Msg       string         `json:"msg"`
	Extra     map[string]any `json:"extra"`
}

// levelRank returns a numeric rank for filtering (higher = more severe).
func levelRank(level string) int {
	switch level {
	case "debug":
		return 0
	case "info":
		return 1
	case "warn":
		return 2
	case "error":
		return 3
	default:
		return 0
	}
}

type eventFilter struct {
	kind   string
	level  string
	comp   string
	loadID string
}

func (f eventFilter) match(ev eventRecord) bool {
	if f.kind != "" && !strings.HasPrefix(ev.Kind, f.kind) {
		return false
	}
	if f.level != "" && levelRank(ev.Level) < levelRank(f.level) {
		return false
	}
	if f.comp != "" && ev.Comp != f.comp {
		return false
	}
	if f.loadID != "" && !strings.HasPrefix(ev.LoadID, f.loadID) {
		return false
	}
	return true
}

func formatEvent(ev eventRecord) string {
	ts := ev.Time.Format("15:04:05.000")
	lvl := strings.ToUpper(ev.Level)
	if lvl == "" {
		lvl = "?"
	}

	parts := []string{fmt.Sprintf("%s %-5s [%-7s] %-18s", ts, lvl, ev.Comp, ev.Kind)}

	if ev.Msg != "" {
		parts = append(parts, "- "+ev.Msg)
	}
	if ev.DurMs > 0 {
		parts = append(parts, fmt.Sprintf("(%.*fms)", durPrecision(ev.DurMs), ev.DurMs))
	}
	if ev.Count > 0 {
		parts = append(parts, fmt.Sprintf("n=%d", ev.Count))
	}
	if ev.Attempts > 0 {
		parts = append(parts, fmt.Sprintf("attempts=%d", ev.Attempts))
	}
	if ev.ItemID != 0 {
		parts = append(parts, fmt.Sprintf("item=%d", ev.ItemID))
	}
	if ev.LoadID != "" {
		lid := ev.LoadID
		if len(lid) > 8 {
			lid = lid[:8]
		}
		parts = append(parts, "load="+lid)
	}
	if exit, ok := ev.Extra["exit"].(string); ok {
		parts = append(parts, "exit="+exit)
	}
	if ev.Err != "" {
		parts = append(parts, "err="+ev.Err)
	}

	return strings.Join(parts, " ")
}

func newEventsCommand(ctx *commandContext) *cobra.Command {
	var (
		tail    int
		follow  bool
		rawJSON bool
		filter  eventFilter
	)

	cmd := &cobra.Command{
		Use:   "events",
		Short: "JSONL event log viewer",
		RunE: func(cmd *cobra.Command, args []string) error {
			logPath, err := ctx.eventLogPath()
			if err != nil {
				return err
			}
			f, err := os.Open(logPath)
			if err != nil {
				return fmt.Errorf("event log not found at %s (run artscroll first): %w", logPath, err)
			}
			defer f.Close()

			out := cmd.OutOrStdout()
			emit := func(ev eventRecord, raw []byte) {
				if rawJSON {
					fmt.Fprintln(out, string(raw))
					return
				}
				fmt.Fprintln(out, formatEvent(ev))
			}

			for _, l := range readTailLines(f, tail, filter.match) {
				emit(l.ev, l.raw)
			}
			if !follow {
				return nil
			}
			return followEvents(cmd.Context(), f, filter.match, emit)
		},
	}

	cmd.Flags().IntVarP(&tail, "tail", "n", 50, "Number of recent lines to show")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Follow mode (like tail -f)")
	cmd.Flags().StringVar(&filter.kind, "kind", "", "Filter by event kind prefix (e.g. 'load')")
	cmd.Flags().StringVar(&filter.level, "level", "", "Minimum level: debug, info, warn, error")
	cmd.Flags().StringVar(&filter.comp, "comp", "", "Filter by component name")
	cmd.Flags().StringVar(&filter.loadID, "load", "", "Filter by load session ID prefix")
	cmd.Flags().BoolVar(&rawJSON, "json", false, "Output raw JSON lines")
	return cmd
}

// followEvents polls f for appended lines until ctx is done.
func followEvents(ctx context.Context, f *os.File, match func(eventRecord) bool, emit func(eventRecord, []byte)) error {
	reader := bufio.NewReader(f)
	for {
		line, err := reader.ReadBytes('\n')
		if err != nil {
			if err != io.EOF {
				return err
			}
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(100 * time.Millisecond):
			}
			continue
		}
		line = trimLine(line)
		if len(line) == 0 {
			continue
		}
		var ev eventRecord
		if json.Unmarshal(line, &ev) != nil {
			continue
		}
		if match(ev) {
			emit(ev, line)
		}
	}
}

type parsedLine struct {
	ev  eventRecord
	raw []byte
}

// readTailLines reads r and returns the last n lines matching the filter.
func readTailLines(r io.Reader, n int, match func(eventRecord) bool) []parsedLine {
	scanner := bufio.NewScanner(r)
	// Allow large lines (some events may have big Extra maps)
	scanner.Buffer(make([]byte, 0, 64*1024), 256*1024)

	var ring []parsedLine
	if n > 0 {
		ring = make([]parsedLine, 0, n)
	}

	for scanner.Scan() {
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var ev eventRecord
		if json.Unmarshal(raw, &ev) != nil {
			continue
		}
		if !match(ev) {
			continue
		}
		if n <= 0 {
			continue
		}
		// Make a copy of raw since scanner reuses the buffer
		rawCopy := make([]byte, len(raw))
		copy(rawCopy, raw)

		if len(ring) < n {
			ring = append(ring, parsedLine{ev: ev, raw: rawCopy})
		} else {
			// Shift left
			copy(ring, ring[1:])
			ring[n-1] = parsedLine{ev: ev, raw: rawCopy}
		}
	}

	return ring
}

// kindHistogram counts events per kind across the whole log.
func kindHistogram(r io.Reader) (map[string]int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 256*1024)

	counts := make(map[string]int)
	for scanner.Scan() {
		var ev eventRecord
		if json.Unmarshal(scanner.Bytes(), &ev) != nil || ev.Kind == "" {
			continue
		}
		counts[ev.Kind]++
	}
	return counts, scanner.Err()
}

func trimLine(b []byte) []byte {
	for len(b) > 0 && (b[len(b)-1] == '\n' || b[len(b)-1] == '\r') {
		b = b[:len(b)-1]
	}
	return b
}

func durPrecision(ms float64) int {
	if ms >= 100 {
		return 0
	}
	if ms >= 1 {
		return 1
	}
	return 2
}
