// Package aggregator fetches every enabled source concurrently and merges the
// results into a single digest ordered newest first.
package aggregator

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ricomanifesto/sentrydigest/pkg/feedtypes"
	"github.com/ricomanifesto/sentrydigest/pkg/providers"
)

// DefaultTimeout bounds a single source fetch.
const DefaultTimeout = 30 * time.Second

// Aggregator fans out source fetches and joins them into a digest
type Aggregator struct {
	registry *providers.ProviderRegistry
	opts     providers.Options
	timeout  time.Duration
}

// New creates an aggregator. A nil registry uses providers.DefaultRegistry and
// a non-positive timeout uses DefaultTimeout.
func New(registry *providers.ProviderRegistry, opts providers.Options, timeout time.Duration) *Aggregator {
	if registry == nil {
		registry = providers.DefaultRegistry
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Aggregator{
		registry: registry,
		opts:     opts,
		timeout:  timeout,
	}
}

// Aggregate fetches all enabled sources, waits for every fetch to finish and
// returns at most maxItems items sorted newest first. Failing or timed out
// sources contribute nothing; Aggregate itself never fails.
func (a *Aggregator) Aggregate(ctx context.Context, sources []feedtypes.Source, maxItems int) feedtypes.Digest {
	results := make([][]feedtypes.NewsItem, len(sources))

	// one goroutine per enabled source, all started before the first join
	var g errgroup.Group
	for i, src := range sources {
		if !src.Enabled {
			continue
		}
		g.Go(func() error {
			results[i] = a.fetchSource(ctx, src)
			return nil // errors are reported per source
		})
	}

	_ = g.Wait()

	var all []feedtypes.NewsItem
	for _, items := range results {
		all = append(all, items...)
	}

	slog.Info("Fetched news items", "sources", len(sources), "items", len(all))

	feedtypes.SortNewestFirst(all)

	if maxItems <= 0 {
		return feedtypes.Digest{}
	}
	if len(all) > maxItems {
		all = all[:maxItems]
	}

	digest := make(feedtypes.Digest, len(all))
	copy(digest, all)
	return digest
}

// fetchSource runs one fetch under its own deadline. A provider that ignores
// cancellation is abandoned once the deadline passes.
func (a *Aggregator) fetchSource(ctx context.Context, src feedtypes.Source) []feedtypes.NewsItem {
	fetchCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	done := make(chan []feedtypes.NewsItem, 1)
	go func() {
		done <- providers.FetchOne(fetchCtx, a.registry, a.opts, src)
	}()

	select {
	case items := <-done:
		return items
	case <-fetchCtx.Done():
		if err := ctx.Err(); err != nil {
			slog.Warn("Source fetch interrupted", "source", src.Name, "error", err)
		} else {
			slog.Warn("Source fetch timed out", "source", src.Name, "timeout", a.timeout, "error", fetchCtx.Err())
		}
		return []feedtypes.NewsItem{}
	}
}
