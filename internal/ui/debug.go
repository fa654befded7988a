package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/abelbrown/artscroll/internal/otel"
)

// debugPanelChrome is the number of terminal lines consumed by DebugPanel's
// border (top + bottom = 2) and vertical padding (top + bottom = 2).
// Must be updated if DebugPanel style changes.
const debugPanelChrome = 4

// debugOverlay renders the debug panel showing feed stats and recent events.
// Pure function with no side effects. Returns empty string if ring is nil.
func debugOverlay(ring *otel.RingBuffer, width, height int) string {
	if ring == nil {
		return ""
	}

	stats := ring.Stats()
	recent := ring.Last(20)

	// --- Stats section (keyed lookups, not map iteration) ---
	var lines []string
	lines = append(lines, DebugHeaderStyle.Render("Feed Stats"))
	lines = append(lines, fmt.Sprintf("  Loads:      %d started, %d complete, %d skipped, %d empty",
		stats[otel.KindLoadStart], stats[otel.KindLoadComplete], stats[otel.KindLoadSkip], stats[otel.KindLoadEmpty]))
	lines = append(lines, fmt.Sprintf("  Items:      %d accepted, %d rejected",
		stats[otel.KindItemAccept], stats[otel.KindItemReject]))
	lines = append(lines, fmt.Sprintf("  Pool:       %d init, %d refill, %d errors",
		stats[otel.KindPoolInit], stats[otel.KindPoolRefill], stats[otel.KindPoolError]))
	lines = append(lines, fmt.Sprintf("  Store:      %d errors", stats[otel.KindStoreError]))
	if id, acc, rej := ring.LastLoad(); id != "" {
		lines = append(lines, fmt.Sprintf("  Last load:  %s  %d accepted, %d rejected", shortID(id), acc, rej))
	}
	lines = append(lines, fmt.Sprintf("  Buffer:     %d / %d events", ring.Len(), ring.Cap()))
	lines = append(lines, "")

	// --- Recent events section ---
	lines = append(lines, DebugHeaderStyle.Render("Recent Events"))
	for _, e := range recent {
		age := time.Since(e.Time)
		ageStr := formatAge(age)

		line := fmt.Sprintf("  %6s  %-22s", ageStr, string(e.Kind))
		if e.Msg != "" {
			line += "  " + clip(e.Msg, 40)
		}
		if e.Err != "" {
			line += "  ERR:" + clip(e.Err, 30)
		}
		if e.ItemID != 0 {
			line += fmt.Sprintf("  #%d", e.ItemID)
		}
		if e.LoadID != "" {
			line += "  load:" + shortID(e.LoadID)
		}
		lines = append(lines, line)
	}

	// Truncate to fit terminal height (subtract chrome added by DebugPanel border/padding)
	maxHeight := height - debugPanelChrome
	if maxHeight < 1 {
		maxHeight = 1
	}
	if len(lines) > maxHeight {
		lines = lines[:maxHeight]
	}

	panelWidth := 76
	if panelWidth > width-4 {
		panelWidth = width - 4
	}
	if panelWidth < 20 {
		panelWidth = 20
	}

	content := strings.Join(lines, "\n")
	return DebugPanel.Width(panelWidth).Render(content)
}

// shortID trims a load UUID to its first 8 characters.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// formatAge formats a duration as a compact human string.
// Handles negative durations from clock skew by clamping to "0ms".
func formatAge(d time.Duration) string {
	if d < 0 {
		return "0ms"
	}
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		return fmt.Sprintf("%.0fm", d.Minutes())
	}
}

// debugStatusBar renders the status bar for the debug overlay.
func debugStatusBar(width int) string {
	keys := StatusBarKey.Render("D") + StatusBarText.Render(":close")
	return StatusBar.Width(width).Render("  [DEBUG]  " + keys)
}
