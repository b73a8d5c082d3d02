// Package configs provides embedded configuration files for sentrydigest.
package configs

import "embed"

// DefaultSourcesFile is the embedded source list written on first run.
const DefaultSourcesFile = "news-sources.json"

// EmbeddedConfigs exposes embedded configuration files for read-only access.
//
//go:embed *.json
var EmbeddedConfigs embed.FS
