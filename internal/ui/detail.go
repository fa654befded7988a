package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/abelbrown/artscroll/internal/catalog"
)

// detailChrome is the lines taken by DetailPanel's border plus the footer.
const detailChrome = 3

// detailContent renders every display field of an artwork for the viewport,
// wrapped to width.
func detailContent(item catalog.Item, width int) string {
	var lines []string
	lines = append(lines, DetailTitle.Render(item.DisplayTitle()), "")

	field := func(label, value string) {
		if value == "" {
			return
		}
		lines = append(lines, DetailLabel.Render(label)+" "+value)
	}
	field("Artist", item.Artist())
	field("Date", item.ObjectDate)
	field("Medium", item.Medium)
	field("Department", item.Department)
	field("Classification", item.Classification)
	field("Dimensions", item.Dimensions)
	field("Culture", item.Culture)
	field("Period", item.Period)
	field("Acquired", item.AccessionYear)
	field("Credit", item.CreditLine)
	if n := len(item.AdditionalImages); n > 0 {
		field("Images", fmt.Sprintf("%d additional", n))
	}
	field("Image", item.ImageURL())

	lines = append(lines, "")
	if item.ObjectURL != "" {
		lines = append(lines, DetailLabel.Render("Museum")+" "+LinkStyle.Render(item.ObjectURL))
	}
	if item.WikidataURL != "" {
		lines = append(lines, DetailLabel.Render("Wikipedia")+" "+LinkStyle.Render(item.WikidataURL))
	}
	lines = append(lines, DetailLabel.Render("Search")+" "+LinkStyle.Render(item.SearchURL()))

	content := strings.Join(lines, "\n")
	if width > 0 {
		content = lipgloss.NewStyle().Width(width).Render(content)
	}
	return content
}

func detailFooter(width int) string {
	keys := StatusBarKey.Render("j/k") + StatusBarText.Render(":scroll ") +
		StatusBarKey.Render("esc") + StatusBarText.Render(":back")
	return StatusBar.Width(width).Render(keys)
}
