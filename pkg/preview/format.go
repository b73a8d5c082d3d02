// Package preview provides an interactive terminal view over a digest using Bubble Tea.
package preview

import (
	"fmt"
	"strings"
	"time"

	"github.com/ricomanifesto/sentrydigest/pkg/feed"
	"github.com/ricomanifesto/sentrydigest/pkg/feedtypes"
)

// wrapText wraps text to the specified width, breaking at word boundaries when possible
func wrapText(text string, width int) string {
	if width <= 0 {
		width = 70
	}

	var result strings.Builder
	var line strings.Builder
	lineLen := 0

	words := strings.Fields(text)
	for i, word := range words {
		wordLen := len(word)

		// If adding this word would exceed width, start a new line
		if lineLen > 0 && lineLen+1+wordLen > width {
			result.WriteString(line.String())
			result.WriteString("\n")
			line.Reset()
			lineLen = 0
		}

		// Add space before word if not at start of line
		if lineLen > 0 {
			line.WriteString(" ")
			lineLen++
		}

		line.WriteString(word)
		lineLen += wordLen

		// Write the last line
		if i == len(words)-1 {
			result.WriteString(line.String())
		}
	}

	return result.String()
}

// FormatCompactListItem formats a single news item in compact list format
// Example: " 1. [Krebs on Security   ] 2025-10-21 13:33  Post Title"
func FormatCompactListItem(index int, item feedtypes.NewsItem) string {
	const (
		maxSourceLength = 20
		maxTitleLength  = 70
	)

	return fmt.Sprintf("%2d. [%-*s] %s  %s", index+1, maxSourceLength,
		truncate(item.SourceName, maxSourceLength), item.PublishedAt.UTC().Format("2006-01-02 15:04"),
		truncate(item.Title, maxTitleLength))
}

// FormatDetailedItem formats a single news item with all metadata
func FormatDetailedItem(item feedtypes.NewsItem, now time.Time) string {
	var b strings.Builder

	b.WriteString("═══════════════════════════════════════════════════════════════════════\n")
	b.WriteString(fmt.Sprintf("Title: %s\n", item.Title))
	b.WriteString(fmt.Sprintf("Link: %s\n", item.Link))
	b.WriteString(fmt.Sprintf("Source: %s\n", item.SourceName))

	if !item.PublishedAt.IsZero() {
		b.WriteString(fmt.Sprintf("Published: %s (%s)\n", item.PublishedAt.UTC().Format(time.RFC3339), formatTimeAgo(item.PublishedAt, now)))
	}

	if item.Summary != "" {
		b.WriteString(fmt.Sprintf("\nSummary:\n%s\n", wrapText(item.Summary, 70)))
	}

	b.WriteString("═══════════════════════════════════════════════════════════════════════\n")

	return b.String()
}

// FormatXMLItem formats a single news item as the <item> element written to the RSS feed
func FormatXMLItem(item feedtypes.NewsItem) string {
	out, err := feed.RenderItem(item)
	if err != nil {
		return fmt.Sprintf("Error generating item: %s", err)
	}

	// Word-wrap long lines for readability (but keep XML structure intact)
	return wrapXMLContent(out, 80)
}

// truncate shortens s to at most n runes, marking the cut with "..."
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}

// wrapXMLContent wraps only the content inside tags, not the tags themselves
func wrapXMLContent(xml string, width int) string {
	// Simple approach: just ensure lines don't exceed width by adding newlines
	// This preserves the XML structure while making it readable
	var result strings.Builder
	lines := strings.Split(xml, "\n")

	for _, line := range lines {
		if len(line) <= width {
			result.WriteString(line)
			result.WriteString("\n")
			continue
		}

		// For very long lines (usually content), try to wrap at tag boundaries or spaces
		remaining := line
		for len(remaining) > width {
			breakPoint := width
			// Try to find a good break point (space, > or <)
			for i := width; i > width-20 && i > 0; i-- {
				if remaining[i] == ' ' || remaining[i] == '>' {
					breakPoint = i + 1
					break
				}
			}
			result.WriteString(remaining[:breakPoint])
			result.WriteString("\n")
			remaining = remaining[breakPoint:]
		}
		if remaining != "" {
			result.WriteString(remaining)
			result.WriteString("\n")
		}
	}

	return result.String()
}

// formatTimeAgo formats a time.Time as a human-readable "X ago" string relative to now
func formatTimeAgo(t, now time.Time) string {
	duration := now.Sub(t)

	switch {
	case duration < time.Minute:
		return "just now"
	case duration < time.Hour:
		mins := int(duration.Minutes())
		if mins == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", mins)
	case duration < 24*time.Hour:
		hours := int(duration.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	case duration < 7*24*time.Hour:
		days := int(duration.Hours() / 24)
		if days == 1 {
			return "1 day ago"
		}
		return fmt.Sprintf("%d days ago", days)
	default:
		return t.Format("2006-01-02")
	}
}
