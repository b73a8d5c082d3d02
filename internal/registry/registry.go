// Package registry loads and persists the list of news sources and the
// aggregation settings.
package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ricomanifesto/sentrydigest/configs"
	"github.com/ricomanifesto/sentrydigest/pkg/config"
	"github.com/ricomanifesto/sentrydigest/pkg/feedtypes"
	"github.com/ricomanifesto/sentrydigest/pkg/filesystem"
	"github.com/ricomanifesto/sentrydigest/pkg/urlutils"
)

// DefaultMaxItems is used when the settings carry no usable item limit.
const DefaultMaxItems = 30

// ErrMalformed marks a configuration file that exists but cannot be used.
var ErrMalformed = errors.New("malformed source configuration")

// Settings holds aggregation settings
type Settings struct {
	MaxNewsItems int       `json:"maxNewsItems"`
	LastUpdated  time.Time `json:"lastUpdated"`
}

// Registry is the persisted source configuration
type Registry struct {
	Sources  []feedtypes.Source `json:"sources"`
	Settings Settings           `json:"settings"`
}

// Load reads the registry at path. When the file does not exist the
// embedded default registry is written there and returned.
func Load(path string, now time.Time) (*Registry, error) {
	if err := filesystem.EnsureDirectoryExists(path); err != nil {
		return nil, fmt.Errorf("failed to create configuration directory: %w", err)
	}

	var reg Registry
	err := config.LoadJSON(path, &reg)
	switch {
	case errors.Is(err, filesystem.ErrFileNotFound):
		slog.Info("No configuration found, creating default config", "path", path)
		def, err := Default(now)
		if err != nil {
			return nil, err
		}
		if err := def.Save(path); err != nil {
			return nil, err
		}
		return def, nil
	case err != nil:
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	reg.normalize()
	slog.Info("Loaded configuration", "sources", len(reg.Sources), "path", path)
	return &reg, nil
}

// Default returns the built-in source list with default settings.
func Default(now time.Time) (*Registry, error) {
	data, err := configs.EmbeddedConfigs.ReadFile(configs.DefaultSourcesFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded default sources: %w", err)
	}

	var reg Registry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("failed to parse embedded default sources: %w", err)
	}

	reg.normalize()
	reg.Settings.LastUpdated = now.UTC()
	return &reg, nil
}

// Save writes the registry to path, keeping disabled sources.
func (r *Registry) Save(path string) error {
	return config.SaveJSON(path, r)
}

// Touch records now as the time of the last successful update.
func (r *Registry) Touch(now time.Time) {
	r.Settings.LastUpdated = now.UTC()
}

// Enabled returns the sources that should be fetched, in configuration order.
func (r *Registry) Enabled() []feedtypes.Source {
	enabled := make([]feedtypes.Source, 0, len(r.Sources))
	for _, src := range r.Sources {
		if src.Enabled {
			enabled = append(enabled, src)
		}
	}
	return enabled
}

// EnabledNames returns the names of the enabled sources.
func (r *Registry) EnabledNames() []string {
	enabled := r.Enabled()
	names := make([]string, 0, len(enabled))
	for _, src := range enabled {
		names = append(names, src.Name)
	}
	return names
}

// MaxItems returns the configured item limit, or DefaultMaxItems when the
// stored value is missing or not positive. The stored value is left as is.
func (r *Registry) MaxItems() int {
	if r.Settings.MaxNewsItems <= 0 {
		return DefaultMaxItems
	}
	return r.Settings.MaxNewsItems
}

// Validate reports problems with enabled sources that will make them
// contribute nothing. hasKind tells whether a fetcher exists for a kind.
func (r *Registry) Validate(hasKind func(feedtypes.Kind) bool) []string {
	var problems []string
	for _, src := range r.Enabled() {
		if src.Name == "" {
			problems = append(problems, fmt.Sprintf("source with url %q has no name", src.URL))
		}
		if !urlutils.IsValidURL(src.URL) {
			problems = append(problems, fmt.Sprintf("source %q has invalid url %q", src.Name, src.URL))
		}
		if hasKind != nil && !hasKind(src.Kind) {
			problems = append(problems, fmt.Sprintf("source %q has unsupported type %q", src.Name, src.Kind))
		}
	}
	return problems
}

func (r *Registry) normalize() {
	if r.Sources == nil {
		r.Sources = []feedtypes.Source{}
	}
}
