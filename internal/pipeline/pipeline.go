// Package pipeline runs the two publishing stages: fetching sources into the
// news data artifact and the HTML page, then rendering the RSS feed from that
// artifact.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ricomanifesto/sentrydigest/internal/aggregator"
	"github.com/ricomanifesto/sentrydigest/internal/config"
	"github.com/ricomanifesto/sentrydigest/internal/registry"
	jsonfile "github.com/ricomanifesto/sentrydigest/pkg/config"
	"github.com/ricomanifesto/sentrydigest/pkg/feed"
	"github.com/ricomanifesto/sentrydigest/pkg/feedtypes"
	"github.com/ricomanifesto/sentrydigest/pkg/filesystem"
	httputil "github.com/ricomanifesto/sentrydigest/pkg/http"
	"github.com/ricomanifesto/sentrydigest/pkg/providers"
)

// ErrDigestNotFound is returned when the news data artifact does not exist yet
var ErrDigestNotFound = errors.New("news data file not found, run fetch first")

// Pipeline runs the fetch and publish stages for one configuration
type Pipeline struct {
	cfg       *config.Config
	providers *providers.ProviderRegistry
	now       func() time.Time
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithProviders uses reg instead of providers.DefaultRegistry
func WithProviders(reg *providers.ProviderRegistry) Option {
	return func(p *Pipeline) {
		p.providers = reg
	}
}

// WithClock replaces the wall clock
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		p.now = now
	}
}

// New creates a pipeline for cfg
func New(cfg *config.Config, opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg:       cfg,
		providers: providers.DefaultRegistry,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Fetch loads the source registry, aggregates all enabled sources and writes
// the news data artifact and the HTML page. The registry's lastUpdated is
// refreshed afterwards.
func (p *Pipeline) Fetch(ctx context.Context) (feedtypes.Digest, error) {
	now := p.now()
	sourcesPath := p.cfg.Path(p.cfg.Paths.Sources)

	reg, err := registry.Load(sourcesPath, now)
	if err != nil {
		return nil, fmt.Errorf("failed to load sources: %w", err)
	}

	for _, problem := range reg.Validate(p.providers.Has) {
		slog.Warn("Source will be skipped", "problem", problem)
	}

	agg := aggregator.New(p.providers, providers.Options{
		Client: httputil.NewClient(p.cfg.HTTPConfig()),
		Now:    p.now,
	}, p.cfg.Fetch.Timeout)

	enabled := reg.Enabled()
	digest := agg.Aggregate(ctx, enabled, reg.MaxItems())
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("fetch interrupted: %w", err)
	}
	slog.Info("Aggregated news", "sources", len(enabled), "items", len(digest))

	page, err := feed.NewGenerator(p.cfg.SiteInfo()).RenderHTML(digest, now)
	if err != nil {
		return nil, fmt.Errorf("failed to render HTML: %w", err)
	}

	data, err := jsonfile.MarshalJSON(digest)
	if err != nil {
		return nil, fmt.Errorf("failed to encode news data: %w", err)
	}

	// the page never gets ahead of the news data
	dataPath := p.cfg.Path(p.cfg.Paths.Data)
	if err := filesystem.WriteFileAtomic(dataPath, data); err != nil {
		return nil, fmt.Errorf("failed to write news data: %w", err)
	}
	slog.Info("Generated news data", "path", dataPath)

	htmlPath := p.cfg.Path(p.cfg.Paths.HTML)
	if err := filesystem.WriteFileAtomic(htmlPath, []byte(page)); err != nil {
		return nil, fmt.Errorf("failed to write HTML page: %w", err)
	}
	slog.Info("Generated HTML page", "path", htmlPath)

	reg.Touch(p.now())
	if err := reg.Save(sourcesPath); err != nil {
		return nil, fmt.Errorf("failed to update sources timestamp: %w", err)
	}

	return digest, nil
}

// Publish renders the RSS feed and its summary from the news data artifact
// written by Fetch. It never fetches sources itself.
func (p *Pipeline) Publish() error {
	now := p.now()

	digest, err := LoadDigest(p.cfg.Path(p.cfg.Paths.Data))
	if err != nil {
		return err
	}

	reg, err := registry.Load(p.cfg.Path(p.cfg.Paths.Sources), now)
	if err != nil {
		return fmt.Errorf("failed to load sources: %w", err)
	}
	sources := reg.EnabledNames()

	gen := feed.NewGenerator(p.cfg.SiteInfo())

	rss, err := gen.RenderRSS(digest, sources, now)
	if err != nil {
		return fmt.Errorf("failed to render RSS feed: %w", err)
	}

	info, err := jsonfile.MarshalJSON(gen.Summarize(digest, sources, now))
	if err != nil {
		return fmt.Errorf("failed to encode feed info: %w", err)
	}

	feedPath := p.cfg.Path(p.cfg.Paths.Feed)
	if err := filesystem.WriteFileAtomic(feedPath, []byte(rss)); err != nil {
		return fmt.Errorf("failed to write RSS feed: %w", err)
	}
	slog.Info("Generated RSS feed", "path", feedPath, "items", len(digest))

	infoPath := p.cfg.Path(p.cfg.Paths.FeedInfo)
	if err := filesystem.WriteFileAtomic(infoPath, info); err != nil {
		return fmt.Errorf("failed to write feed info: %w", err)
	}
	slog.Info("Generated feed info", "path", infoPath)

	return nil
}

// Run executes Fetch followed by Publish
func (p *Pipeline) Run(ctx context.Context) error {
	if _, err := p.Fetch(ctx); err != nil {
		return err
	}
	return p.Publish()
}

// LoadDigest reads the news data artifact at path
func LoadDigest(path string) (feedtypes.Digest, error) {
	var digest feedtypes.Digest
	if err := jsonfile.LoadJSON(path, &digest); err != nil {
		if errors.Is(err, filesystem.ErrFileNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrDigestNotFound, path)
		}
		return nil, fmt.Errorf("failed to load news data: %w", err)
	}

	if digest == nil {
		digest = feedtypes.Digest{}
	}
	return digest, nil
}
