// Package rss implements the provider for RSS, Atom and JSON Feed sources.
package rss

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/ricomanifesto/sentrydigest/pkg/feedtypes"
	httputil "github.com/ricomanifesto/sentrydigest/pkg/http"
	"github.com/ricomanifesto/sentrydigest/pkg/providers"
	"github.com/ricomanifesto/sentrydigest/pkg/urlutils"
)

// Provider fetches a syndication feed over HTTP and maps its entries to news items
type Provider struct {
	client *httputil.Client
	parser *gofeed.Parser
	now    func() time.Time
}

// NewProvider creates a new RSS provider
func NewProvider(opts providers.Options) *Provider {
	if opts.Client == nil {
		opts.Client = httputil.NewClient(nil)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Provider{
		client: opts.Client,
		parser: gofeed.NewParser(),
		now:    opts.Now,
	}
}

// factory creates an RSS provider from the shared options
func factory(opts providers.Options) (providers.Provider, error) {
	return NewProvider(opts), nil
}

func init() {
	providers.RegisterProvider(&providers.ProviderInfo{
		Kind:        feedtypes.KindRSS,
		Description: "Fetch RSS, Atom and JSON feeds",
		Factory:     factory,
	})
}

// Fetch implements the providers.Provider interface
func (p *Provider) Fetch(ctx context.Context, src feedtypes.Source) ([]feedtypes.NewsItem, error) {
	if !urlutils.IsValidURL(src.URL) {
		return nil, fmt.Errorf("invalid feed URL %q", src.URL)
	}

	slog.Debug("Fetching feed", "source", src.Name, "url", src.URL)

	resp, err := p.client.GetWithContext(ctx, src.URL)
	if err != nil {
		return nil, err
	}

	body, err := httputil.ReadResponseBody(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read feed body: %w", err)
	}

	if err := httputil.EnsureStatusOK(resp); err != nil {
		return nil, err
	}
	slog.Debug("Fetched feed body", "source", src.Name, "content_type", httputil.GetContentType(resp), "bytes", len(body))

	parsed, err := p.parser.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	now := p.now()
	items := make([]feedtypes.NewsItem, 0, len(parsed.Items))
	for _, entry := range parsed.Items {
		if entry == nil {
			continue
		}
		items = append(items, convertItem(entry, parsed.Link, src, now))
	}

	return items, nil
}

// convertItem maps a parsed feed entry to a NewsItem
func convertItem(entry *gofeed.Item, siteLink string, src feedtypes.Source, now time.Time) feedtypes.NewsItem {
	return feedtypes.NewsItem{
		Title:       strings.TrimSpace(entry.Title),
		Link:        entryLink(entry, siteLink),
		PublishedAt: publishedAt(entry, now),
		SourceName:  src.Name,
		Summary:     Snippet(entrySnippet(entry)),
	}
}

// publishedAt prefers the published date, then the updated date, then now
func publishedAt(entry *gofeed.Item, now time.Time) time.Time {
	switch {
	case entry.PublishedParsed != nil:
		return *entry.PublishedParsed
	case entry.UpdatedParsed != nil:
		return *entry.UpdatedParsed
	default:
		return now
	}
}

func entryLink(entry *gofeed.Item, siteLink string) string {
	link := strings.TrimSpace(entry.Link)
	if link == "" && len(entry.Links) > 0 {
		link = strings.TrimSpace(entry.Links[0])
	}
	if link == "" || siteLink == "" {
		return link
	}

	resolved, err := urlutils.ResolveURL(siteLink, link)
	if err != nil {
		return link
	}
	return resolved
}

// entrySnippet returns the plain text of the description, falling back to the content
func entrySnippet(entry *gofeed.Item) string {
	if text := PlainText(entry.Description); text != "" {
		return text
	}
	return PlainText(entry.Content)
}
