package utils

import (
	"net/url"
	"strings"
)

// GetDomainFromURL reduces an URL to its second level domain so hosts can be
// logged without the full address, strings that are not an URL are returned
// unchanged
func GetDomainFromURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	parts := strings.Split(parsed.Hostname(), ".")
	if len(parts) < 2 {
		return rawURL
	}

	return strings.Join(parts[len(parts)-2:], ".")
}
