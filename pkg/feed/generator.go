package feed

import (
	"log/slog"
	"time"

	"github.com/gorilla/feeds"

	"github.com/ricomanifesto/sentrydigest/pkg/feedtypes"
)

// Build converts a digest into a gorilla feed, preserving item order.
// All timestamps are normalized to UTC.
func (g *Generator) Build(digest feedtypes.Digest, now time.Time) *feeds.Feed {
	now = now.UTC()

	feed := &feeds.Feed{
		Title:       g.Site.Title,
		Link:        &feeds.Link{Href: g.Site.Link},
		Description: g.Site.Description,
		Created:     now,
		Updated:     now,
	}
	if g.Site.ImageURL != "" {
		feed.Image = &feeds.Image{Url: g.Site.ImageURL, Title: g.Site.Title, Link: g.Site.Link}
	}

	for _, item := range digest {
		feed.Items = append(feed.Items, feedItem(item))
	}

	slog.Debug("Built feed", "items", len(feed.Items))
	return feed
}

// feedItem maps a news item to a gorilla item. The link doubles as a
// non-permalink guid.
func feedItem(item feedtypes.NewsItem) *feeds.Item {
	return &feeds.Item{
		Id:          item.Link,
		IsPermaLink: "false",
		Title:       item.Title,
		Link:        &feeds.Link{Href: item.Link},
		Description: itemDescription(item),
		Author:      &feeds.Author{Name: item.SourceName},
		Created:     item.PublishedAt.UTC(),
	}
}

func itemDescription(item feedtypes.NewsItem) string {
	if item.Summary == "" {
		return NoSummary
	}
	return item.Summary
}
