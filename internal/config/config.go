// Package config loads the optional YAML application configuration.
package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/ricomanifesto/sentrydigest/pkg/feed"
	"github.com/ricomanifesto/sentrydigest/pkg/filesystem"
	httputil "github.com/ricomanifesto/sentrydigest/pkg/http"
)

// Config holds the central application configuration
type Config struct {
	// Root is the project directory all relative paths resolve against
	Root string `mapstructure:"-"`

	// Published site metadata
	Site struct {
		Title         string `mapstructure:"title"`
		Description   string `mapstructure:"description"`
		URL           string `mapstructure:"url"`
		FeedURL       string `mapstructure:"feed_url"`
		ImageURL      string `mapstructure:"image_url"`
		Language      string `mapstructure:"language"`
		TTLMinutes    int    `mapstructure:"ttl_minutes"`
		FeedInfoTitle string `mapstructure:"feed_info_title"`
	} `mapstructure:"site"`

	// Artifact locations, relative to Root
	Paths struct {
		Sources  string `mapstructure:"sources"`
		Data     string `mapstructure:"data"`
		HTML     string `mapstructure:"html"`
		Feed     string `mapstructure:"feed"`
		FeedInfo string `mapstructure:"feed_info"`
	} `mapstructure:"paths"`

	// Source fetching
	Fetch struct {
		Timeout   time.Duration `mapstructure:"timeout"`
		UserAgent string        `mapstructure:"user_agent"`
	} `mapstructure:"fetch"`
}

func setDefaults(v *viper.Viper) {
	site := feed.DefaultSite()
	v.SetDefault("site.title", site.Title)
	v.SetDefault("site.description", site.Description)
	v.SetDefault("site.url", site.Link)
	v.SetDefault("site.feed_url", site.FeedURL)
	v.SetDefault("site.image_url", site.ImageURL)
	v.SetDefault("site.language", site.Language)
	v.SetDefault("site.ttl_minutes", site.TTLMinutes)
	v.SetDefault("site.feed_info_title", site.FeedInfoTitle)

	v.SetDefault("paths.sources", "config/news-sources.json")
	v.SetDefault("paths.data", "news-data.json")
	v.SetDefault("paths.html", "index.html")
	v.SetDefault("paths.feed", "feed.xml")
	v.SetDefault("paths.feed_info", "feed-info.json")

	v.SetDefault("fetch.timeout", 30*time.Second)
	v.SetDefault("fetch.user_agent", httputil.DefaultConfig().UserAgent)
}

// LoadConfig loads the configuration from path under root. A missing file
// yields the defaults; a file that cannot be parsed is an error.
func LoadConfig(root, path string) (*Config, error) {
	if path == "" {
		path = "config.yaml"
	}
	path = filesystem.ResolvePath(root, path)

	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)

	if filesystem.FileExists(path) {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if config.Fetch.Timeout <= 0 {
		return nil, fmt.Errorf("fetch.timeout must be positive, got %s", config.Fetch.Timeout)
	}

	config.Root = root
	return &config, nil
}

// Path resolves a configured artifact path against Root
func (c *Config) Path(path string) string {
	return filesystem.ResolvePath(c.Root, path)
}

// SiteInfo returns the site metadata used by the renderers
func (c *Config) SiteInfo() feed.Site {
	site := feed.DefaultSite()
	site.Title = c.Site.Title
	site.Description = c.Site.Description
	site.Link = c.Site.URL
	site.FeedURL = c.Site.FeedURL
	site.ImageURL = c.Site.ImageURL
	site.Language = c.Site.Language
	site.TTLMinutes = c.Site.TTLMinutes
	site.FeedInfoTitle = c.Site.FeedInfoTitle
	site.FeedHref = "./" + filepath.ToSlash(filepath.Base(c.Paths.Feed))
	return site
}

// HTTPConfig returns the HTTP client settings for source fetching
func (c *Config) HTTPConfig() *httputil.ClientConfig {
	cfg := httputil.DefaultConfig()
	cfg.Timeout = c.Fetch.Timeout
	if c.Fetch.UserAgent != "" {
		cfg.UserAgent = c.Fetch.UserAgent
	}
	return cfg
}
