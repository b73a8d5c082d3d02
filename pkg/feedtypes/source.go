package feedtypes

// Kind identifies the protocol used to fetch a source.
type Kind string

// Known source kinds
const (
	KindRSS Kind = "rss"
)

// Source describes one configured news source.
type Source struct {
	Name    string `json:"name"`
	URL     string `json:"url"`
	Kind    Kind   `json:"type"`
	Enabled bool   `json:"enabled"`
}
