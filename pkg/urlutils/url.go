// Package urlutils validates source feed URLs and resolves relative item
// links against the site link of the feed they came from.
package urlutils

import "net/url"

// IsValidURL reports whether urlStr is absolute with both scheme and host,
// the minimum a registry source needs to be fetchable.
func IsValidURL(urlStr string) bool {
	u, err := url.Parse(urlStr)
	return err == nil && u.Scheme != "" && u.Host != ""
}

// ResolveURL resolves an item link against the feed's site link. Absolute
// links are returned unchanged.
func ResolveURL(siteLink, link string) (string, error) {
	rel, err := url.Parse(link)
	if err != nil {
		return "", err
	}
	if rel.IsAbs() {
		return link, nil
	}

	base, err := url.Parse(siteLink)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(rel).String(), nil
}
