package ui

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dustin/go-humanize"

	"github.com/abelbrown/artscroll/internal/catalog"
)

// titleLimit is the rune budget for a title in the feed list.
const titleLimit = 40

// linesPerItem is the rendered height of one feed entry (title + meta).
const linesPerItem = 2

// TruncateTitle shortens titles longer than max runes, ending in "...". When
// the last space within the first max runes lies past 70% of max the title is
// cut there and "..." appended, so the result can run up to max+2 runes.
// Otherwise it is exactly max runes.
func TruncateTitle(title string, max int) string {
	if utf8.RuneCountInString(title) <= max {
		return title
	}
	runes := []rune(title)
	cut := runes[:max]

	lastSpace := -1
	for i := len(cut) - 1; i >= 0; i-- {
		if cut[i] == ' ' {
			lastSpace = i
			break
		}
	}
	if float64(lastSpace) > float64(max)*0.7 {
		return string(cut[:lastSpace]) + "..."
	}
	if max < 3 {
		return string(cut)
	}
	return string(runes[:max-3]) + "..."
}

// clip cuts s to width runes with an ellipsis.
func clip(s string, width int) string {
	if width <= 0 || utf8.RuneCountInString(s) <= width {
		return s
	}
	runes := []rune(s)
	if width == 1 {
		return "…"
	}
	return string(runes[:width-1]) + "…"
}

// scrollOffset returns the first item index to render so the cursor stays
// within the visible window.
func scrollOffset(cursor, visible int) int {
	if visible < 1 {
		visible = 1
	}
	if cursor >= visible {
		return cursor - visible + 1
	}
	return 0
}

// RenderFeed renders up to visible entries around the cursor.
func RenderFeed(items []catalog.Item, cursor, width, visible int) string {
	if len(items) == 0 {
		return HelpStyle.Render("Gathering artworks...")
	}

	var b strings.Builder
	start := scrollOffset(cursor, visible)
	for i := start; i < len(items) && i < start+visible; i++ {
		b.WriteString(renderEntry(items[i], i == cursor, width))
	}
	return b.String()
}

func renderEntry(item catalog.Item, selected bool, width int) string {
	title := clip(TruncateTitle(item.DisplayTitle(), titleLimit), width-4)
	style := NormalItem
	marker := "  "
	if selected {
		style = SelectedItem
		marker = "▸ "
	}
	meta := clip(item.MetaLine(), width-4)
	return marker + style.Render(title) + "\n" + MetaLine.Render(meta) + "\n"
}

// renderStatusBar shows position, feed size, pool size and the spinner.
func renderStatusBar(cursor, total, pool, width int, loading bool, spin string) string {
	pos := "0/0"
	if total > 0 {
		pos = fmt.Sprintf("%d/%d", cursor+1, total)
	}
	left := StatusBarText.Render(pos + "  pool " + humanize.Comma(int64(pool)))
	if loading {
		left += "  " + spin + StatusBarText.Render(" loading")
	}
	keys := StatusBarKey.Render("j/k") + StatusBarText.Render(":scroll ") +
		StatusBarKey.Render("enter") + StatusBarText.Render(":details ") +
		StatusBarKey.Render("q") + StatusBarText.Render(":quit")
	return StatusBar.Width(width).Render(left + "   " + keys)
}
