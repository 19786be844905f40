package common

import (
	"net/url"
)

// ResolveURL normalizes a possibly relative href against the page it was
// extracted from. Returns the href unchanged when it cannot be parsed.
func ResolveURL(pageURL, href string) string {
	if href == "" {
		return ""
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}

	return base.ResolveReference(ref).String()
}
