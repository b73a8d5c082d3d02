package feed

import (
	"time"

	"github.com/ricomanifesto/sentrydigest/pkg/feedtypes"
)

// NoSummary is the item description used when an item has no summary
const NoSummary = "No summary available"

// Site describes the published site and its feed
type Site struct {
	Title         string
	Description   string
	Link          string
	FeedURL       string
	FeedHref      string
	ImageURL      string
	Language      string
	Generator     string
	TTLMinutes    int
	FeedInfoTitle string
}

// DefaultSite returns the metadata of the public SentryDigest site
func DefaultSite() Site {
	return Site{
		Title:         "Cybersecurity News Aggregator",
		Description:   "Latest cybersecurity news from top sources",
		Link:          "https://ricomanifesto.github.io/SentryDigest/",
		FeedURL:       "https://ricomanifesto.github.io/SentryDigest/feed.xml",
		FeedHref:      "./feed.xml",
		ImageURL:      "https://ricomanifesto.github.io/SentryDigest/icon.png",
		Language:      "en",
		Generator:     "sentrydigest",
		TTLMinutes:    180,
		FeedInfoTitle: "Cybersecurity News Aggregator RSS Feed",
	}
}

// Generator renders a digest into the published artifacts
type Generator struct {
	Site Site
}

// NewGenerator creates a new generator for site
func NewGenerator(site Site) *Generator {
	return &Generator{Site: site}
}

// FeedInfo summarizes a generated feed
type FeedInfo struct {
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	ItemCount   int       `json:"itemCount"`
	Sources     []string  `json:"sources"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// Summarize describes the feed generated from digest. sources lists the
// contributing source names.
func (g *Generator) Summarize(digest feedtypes.Digest, sources []string, now time.Time) FeedInfo {
	names := make([]string, len(sources))
	copy(names, sources)

	return FeedInfo{
		Title:       g.Site.FeedInfoTitle,
		URL:         g.Site.FeedURL,
		ItemCount:   len(digest),
		Sources:     names,
		LastUpdated: now.UTC(),
	}
}
