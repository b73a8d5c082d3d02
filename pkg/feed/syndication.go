package feed

import (
	"encoding/xml"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gorilla/feeds"

	"github.com/ricomanifesto/sentrydigest/pkg/feedtypes"
)

const (
	dcNamespace   = "http://purl.org/dc/elements/1.1/"
	atomNamespace = "http://www.w3.org/2005/Atom"

	// SourcesCommentPrefix starts the channel comment listing contributing sources
	SourcesCommentPrefix = "News aggregated from: "
)

// RSSDocument is an RSS 2.0 document with Dublin Core and Atom extensions
type RSSDocument struct {
	XMLName xml.Name    `xml:"rss"`
	Version string      `xml:"version,attr"`
	DC      string      `xml:"xmlns:dc,attr"`
	Atom    string      `xml:"xmlns:atom,attr"`
	Channel *RSSChannel `xml:"channel"`
}

// RSSChannel is the channel element of an RSSDocument
type RSSChannel struct {
	Title         string          `xml:"title"`
	Link          string          `xml:"link"`
	Description   string          `xml:"description"`
	AtomLink      *AtomLink       `xml:"atom:link,omitempty"`
	Image         *feeds.RssImage `xml:"image,omitempty"`
	Language      string          `xml:"language,omitempty"`
	Generator     string          `xml:"generator,omitempty"`
	PubDate       string          `xml:"pubDate,omitempty"`
	LastBuildDate string          `xml:"lastBuildDate,omitempty"`
	TTL           int             `xml:"ttl,omitempty"`
	Comment       string          `xml:"comment,omitempty"`
	Items         []*RSSItem      `xml:"item"`
}

// AtomLink is the self reference of the channel
type AtomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
}

// RSSItem is a gorilla item extended with Dublin Core source and date
type RSSItem struct {
	XMLName     xml.Name       `xml:"item"`
	Title       string         `xml:"title"`
	Link        string         `xml:"link"`
	Description string         `xml:"description"`
	GUID        *feeds.RssGuid `xml:"guid,omitempty"`
	Category    string         `xml:"category,omitempty"`
	Author      string         `xml:"author,omitempty"`
	PubDate     string         `xml:"pubDate,omitempty"`
	DCSource    string         `xml:"dc:source,omitempty"`
	DCDate      string         `xml:"dc:date,omitempty"`
}

// RenderRSS renders the digest as an RSS 2.0 document. sources lists the
// contributing source names for the channel comment.
func (g *Generator) RenderRSS(digest feedtypes.Digest, sources []string, now time.Time) (string, error) {
	doc := g.Document(digest, sources, now)

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal rss feed: %w", err)
	}

	slog.Info("Generated feed", "type", "rss", "items", len(doc.Channel.Items))
	return xml.Header + string(out) + "\n", nil
}

// Document builds the RSS document for digest on top of the gorilla channel
func (g *Generator) Document(digest feedtypes.Digest, sources []string, now time.Time) *RSSDocument {
	std := (&feeds.Rss{Feed: g.Build(digest, now)}).RssFeed()

	channel := &RSSChannel{
		Title:         std.Title,
		Link:          std.Link,
		Description:   std.Description,
		Image:         std.Image,
		Language:      g.Site.Language,
		Generator:     g.Site.Generator,
		PubDate:       std.PubDate,
		LastBuildDate: std.LastBuildDate,
		TTL:           g.Site.TTLMinutes,
		Comment:       SourcesCommentPrefix + strings.Join(sources, ", "),
		Items:         make([]*RSSItem, 0, len(std.Items)),
	}
	if g.Site.FeedURL != "" {
		channel.AtomLink = &AtomLink{Href: g.Site.FeedURL, Rel: "self", Type: "application/rss+xml"}
	}

	// gorilla keeps item order, so std.Items lines up with digest
	for i, stdItem := range std.Items {
		channel.Items = append(channel.Items, convertItem(stdItem, digest[i]))
	}

	return &RSSDocument{
		Version: "2.0",
		DC:      dcNamespace,
		Atom:    atomNamespace,
		Channel: channel,
	}
}

// RenderItem renders a single item element
func RenderItem(item feedtypes.NewsItem) (string, error) {
	std := (&feeds.Rss{Feed: &feeds.Feed{
		Link:  &feeds.Link{},
		Items: []*feeds.Item{feedItem(item)},
	}}).RssFeed()

	out, err := xml.MarshalIndent(convertItem(std.Items[0], item), "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal rss item: %w", err)
	}
	return string(out), nil
}

// convertItem copies a gorilla item and adds the fields gorilla has no
// input for: category, the plain source author and the Dublin Core pair.
func convertItem(std *feeds.RssItem, item feedtypes.NewsItem) *RSSItem {
	return &RSSItem{
		Title:       std.Title,
		Link:        std.Link,
		Description: std.Description,
		GUID:        std.Guid,
		Category:    item.SourceName,
		Author:      item.SourceName,
		PubDate:     std.PubDate,
		DCSource:    item.SourceName,
		DCDate:      dcDate(item.PublishedAt),
	}
}
