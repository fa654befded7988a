package ui

// ScrollTrigger decides when the feed is close enough to its end that more
// items should be requested.
type ScrollTrigger struct {
	Threshold int // rows from the last item
}

// Near reports whether the cursor is within Threshold rows of the last item,
// or the feed is too short to fill the visible rows.
func (t ScrollTrigger) Near(cursor, total, visible int) bool {
	if total <= visible {
		return true
	}
	return total-1-cursor <= t.Threshold
}
