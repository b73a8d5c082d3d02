package providers

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ricomanifesto/sentrydigest/pkg/feedtypes"
	httputil "github.com/ricomanifesto/sentrydigest/pkg/http"
)

// Provider fetches and normalizes the items of one source kind.
type Provider interface {
	Fetch(ctx context.Context, src feedtypes.Source) ([]feedtypes.NewsItem, error)
}

// Options carries the shared dependencies handed to provider factories.
type Options struct {
	Client *httputil.Client
	Now    func() time.Time
}

// ProviderFactory creates a new instance of a provider.
type ProviderFactory func(opts Options) (Provider, error)

// ProviderInfo contains metadata about a provider.
type ProviderInfo struct {
	Kind        feedtypes.Kind
	Description string
	Factory     ProviderFactory
}

// ProviderRegistry maps source kinds to provider factories.
type ProviderRegistry struct {
	mu        sync.RWMutex
	providers map[feedtypes.Kind]*ProviderInfo
}

// NewProviderRegistry creates a new provider registry.
func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{
		providers: make(map[feedtypes.Kind]*ProviderInfo),
	}
}

// Register adds a provider to the registry.
func (r *ProviderRegistry) Register(info *ProviderInfo) error {
	if info == nil || info.Factory == nil {
		return fmt.Errorf("provider info for kind %q has no factory", kindOf(info))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.providers[info.Kind]; exists {
		return fmt.Errorf("provider %s is already registered", info.Kind)
	}

	r.providers[info.Kind] = info
	return nil
}

// Get retrieves a provider by kind.
func (r *ProviderRegistry) Get(kind feedtypes.Kind) (*ProviderInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	info, exists := r.providers[kind]
	if !exists {
		return nil, fmt.Errorf("provider %s not found", kind)
	}

	return info, nil
}

// Has reports whether a provider is registered for kind.
func (r *ProviderRegistry) Has(kind feedtypes.Kind) bool {
	_, err := r.Get(kind)
	return err == nil
}

// List returns all registered kinds in sorted order.
func (r *ProviderRegistry) List() []feedtypes.Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]feedtypes.Kind, 0, len(r.providers))
	for kind := range r.providers {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })

	return kinds
}

// Resolve creates the provider for kind. Kinds without a registered
// provider resolve to Noop so new kinds can appear in configuration
// before their provider exists.
func (r *ProviderRegistry) Resolve(kind feedtypes.Kind, opts Options) (Provider, error) {
	info, err := r.Get(kind)
	if err != nil {
		return Noop{}, nil
	}

	if opts.Client == nil {
		opts.Client = httputil.NewClient(nil)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return info.Factory(opts)
}

func kindOf(info *ProviderInfo) feedtypes.Kind {
	if info == nil {
		return ""
	}
	return info.Kind
}

// Global registry instance
var DefaultRegistry = NewProviderRegistry()
