package feed

import (
	"bytes"
	"fmt"
	"html/template"
	"log/slog"
	"time"

	"github.com/ricomanifesto/sentrydigest/pkg/feedtypes"
)

// IndexTemplate is the template file used for the HTML page
const IndexTemplate = "index.html.tmpl"

// TemplateData represents the data structure passed to the page template
type TemplateData struct {
	Site        Site
	FeedHref    string
	GeneratedAt time.Time
	Items       feedtypes.Digest
}

// LoadTemplate parses the named page template from the override or embedded filesystem
func LoadTemplate(name string) (*template.Template, error) {
	content, err := readTemplate(name)
	if err != nil {
		return nil, err
	}

	tmpl, err := template.New(name).Funcs(TemplateFuncs()).Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
	}
	return tmpl, nil
}

// RenderHTML renders the digest as a standalone HTML page. All item text is
// escaped by the template engine.
func (g *Generator) RenderHTML(digest feedtypes.Digest, generatedAt time.Time) (string, error) {
	tmpl, err := LoadTemplate(IndexTemplate)
	if err != nil {
		return "", err
	}

	feedHref := g.Site.FeedHref
	if feedHref == "" {
		feedHref = DefaultSite().FeedHref
	}

	data := TemplateData{
		Site:        g.Site,
		FeedHref:    feedHref,
		GeneratedAt: generatedAt,
		Items:       digest,
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", IndexTemplate, err)
	}

	slog.Debug("Rendered HTML page", "items", len(digest))
	return buf.String(), nil
}
