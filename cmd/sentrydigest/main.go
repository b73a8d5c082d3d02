// Package main provides the CLI entry point for sentrydigest.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	kongyaml "github.com/alecthomas/kong-yaml"

	"github.com/ricomanifesto/sentrydigest/internal/config"
	"github.com/ricomanifesto/sentrydigest/internal/pipeline"
	"github.com/ricomanifesto/sentrydigest/pkg/preview"
	"github.com/ricomanifesto/sentrydigest/pkg/providers"

	// Import providers to trigger init() self-registration
	_ "github.com/ricomanifesto/sentrydigest/internal/rss"
)

// CLI structure
var CLI struct {
	Root   string `help:"Project root that artifact paths resolve against" default:"." type:"path"`
	Config string `help:"Application configuration file, relative to root" default:"config.yaml"`
	Debug  bool   `help:"Enable debug logging" default:"false"`

	Fetch struct{} `cmd:"fetch" help:"Fetch all enabled sources and write news-data.json and index.html."`
	RSS   struct{} `cmd:"" name:"rss" help:"Render feed.xml and feed-info.json from news-data.json."`
	Run   struct{} `cmd:"run" help:"Fetch sources, then render the RSS feed."`

	Sources struct{} `cmd:"sources" help:"List the source kinds this build can fetch."`

	Preview struct {
		Index int `help:"Output XML for specific item index (0-based) to stdout" default:"-1"`
	} `cmd:"preview" help:"Preview the fetched news items interactively."`
}

func main() {
	// Parse CLI with Kong YAML configuration file loading
	ctx := kong.Parse(&CLI,
		kong.Name("sentrydigest"),
		kong.Description("Aggregate cybersecurity news into a static page and an RSS feed."),
		kong.Configuration(kongyaml.Loader, "sentrydigest.yaml", "~/.sentrydigest/config.yaml"),
	)

	// Configure logging level based on debug flag
	if CLI.Debug {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	} else {
		slog.SetLogLoggerLevel(slog.LevelInfo)
	}

	cfg, err := config.LoadConfig(CLI.Root, CLI.Config)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p := pipeline.New(cfg)

	switch ctx.Command() {
	case "fetch":
		if _, err := p.Fetch(runCtx); err != nil {
			fatal("Fetch failed", err)
		}

	case "rss":
		if err := p.Publish(); err != nil {
			fatal("RSS generation failed", err)
		}

	case "run":
		if err := p.Run(runCtx); err != nil {
			fatal("Run failed", err)
		}

	case "sources":
		if err := printSources(os.Stdout); err != nil {
			fatal("Failed to list sources", err)
		}

	case "preview":
		previewDigest(cfg, CLI.Preview.Index)

	default:
		panic(ctx.Command())
	}
}

// printSources writes one line per registered source kind
func printSources(w io.Writer) error {
	for _, kind := range providers.ListProviders() {
		info, err := providers.GetProvider(kind)
		if err != nil {
			return fmt.Errorf("failed to describe source kind %s: %w", kind, err)
		}
		fmt.Fprintf(w, "%-8s %s\n", kind, info.Description)
	}
	return nil
}

// previewDigest shows the persisted digest, or prints one item's XML when index is set
func previewDigest(cfg *config.Config, index int) {
	digest, err := pipeline.LoadDigest(cfg.Path(cfg.Paths.Data))
	if err != nil {
		fatal("Failed to load news data", err)
	}

	// If index is specified, output XML directly to stdout
	if index >= 0 {
		if index >= len(digest) {
			slog.Error("Index out of range", "index", index, "total", len(digest))
			os.Exit(1)
		}
		fmt.Println(preview.FormatXMLItem(digest[index]))
		return
	}

	if err := preview.Run(digest, cfg.Site.Title); err != nil {
		fatal("Preview failed", err)
	}
}

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}
