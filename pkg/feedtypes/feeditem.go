// Package feedtypes provides shared type definitions used by feed generation.
package feedtypes

import (
	"sort"
	"time"
)

// NewsItem is a single normalized entry fetched from a news source.
type NewsItem struct {
	Title       string    `json:"title"`
	Link        string    `json:"link"`
	PublishedAt time.Time `json:"date"`
	SourceName  string    `json:"source"`
	Summary     string    `json:"summary"`
}

// Digest is the ordered, truncated result of one aggregation run.
// It is the hand-off between the fetch stage and the publish stage.
type Digest []NewsItem

// SortNewestFirst orders items by publish date, newest first.
// Items with equal dates keep their relative order.
func SortNewestFirst(items []NewsItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].PublishedAt.After(items[j].PublishedAt)
	})
}

// Sources returns the distinct source names present in the digest, in order of first appearance.
func (d Digest) Sources() []string {
	seen := make(map[string]bool)
	var names []string
	for _, item := range d {
		if seen[item.SourceName] {
			continue
		}
		seen[item.SourceName] = true
		names = append(names, item.SourceName)
	}
	return names
}
