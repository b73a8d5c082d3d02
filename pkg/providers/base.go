package providers

import (
	"context"
	"log/slog"

	"github.com/ricomanifesto/sentrydigest/pkg/feedtypes"
)

// Noop is the provider used for source kinds nothing is registered for.
type Noop struct{}

// Fetch returns no items.
func (Noop) Fetch(context.Context, feedtypes.Source) ([]feedtypes.NewsItem, error) {
	return []feedtypes.NewsItem{}, nil
}

// FetchOne fetches a single source and never fails: any error, including a
// timeout, is logged with the source name and yields an empty result.
func FetchOne(ctx context.Context, registry *ProviderRegistry, opts Options, src feedtypes.Source) []feedtypes.NewsItem {
	provider, err := registry.Resolve(src.Kind, opts)
	if err != nil {
		slog.Warn("Failed to create provider", "source", src.Name, "kind", src.Kind, "error", err)
		return []feedtypes.NewsItem{}
	}

	items, err := provider.Fetch(ctx, src)
	if err != nil {
		slog.Warn("Failed to fetch source", "source", src.Name, "error", err)
		return []feedtypes.NewsItem{}
	}

	slog.Debug("Fetched source", "source", src.Name, "items", len(items))
	if items == nil {
		items = []feedtypes.NewsItem{}
	}
	return items
}
