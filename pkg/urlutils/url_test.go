package urlutils

import "testing"

func TestIsValidURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://krebsonsecurity.com/feed/", true},
		{"http://localhost:8080/rss", true},
		{"krebsonsecurity.com/feed", false},
		{"/relative/path", false},
		{"", false},
		{"https://", false},
		{"://broken", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			if got := IsValidURL(tt.url); got != tt.want {
				t.Errorf("IsValidURL(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}

func TestResolveURL(t *testing.T) {
	tests := []struct {
		name     string
		base     string
		relative string
		want     string
		wantErr  bool
	}{
		{"absolute unchanged", "https://example.com/", "https://other.com/post", "https://other.com/post", false},
		{"root relative", "https://example.com/blog/", "/advisories/42", "https://example.com/advisories/42", false},
		{"path relative", "https://example.com/blog/", "post-1", "https://example.com/blog/post-1", false},
		{"query only", "https://example.com/news", "?page=2", "https://example.com/news?page=2", false},
		{"bad relative", "https://example.com/", "%zz", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveURL(tt.base, tt.relative)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ResolveURL() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ResolveURL(%q, %q) = %q, want %q", tt.base, tt.relative, got, tt.want)
			}
		})
	}
}
