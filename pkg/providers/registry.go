package providers

import (
	"log/slog"

	"github.com/ricomanifesto/sentrydigest/pkg/feedtypes"
)

// RegisterProvider is a convenience function to register a provider with the default registry.
func RegisterProvider(info *ProviderInfo) {
	if err := DefaultRegistry.Register(info); err != nil {
		slog.Warn("Failed to register provider", "kind", kindOf(info), "error", err)
	} else {
		slog.Debug("Registered provider", "kind", info.Kind, "description", info.Description)
	}
}

// GetProvider is a convenience function to get a provider from the default registry.
func GetProvider(kind feedtypes.Kind) (*ProviderInfo, error) {
	return DefaultRegistry.Get(kind)
}

// ListProviders is a convenience function to list all kinds in the default registry.
func ListProviders() []feedtypes.Kind {
	return DefaultRegistry.List()
}
