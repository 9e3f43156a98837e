// Package listing detects listing links in a query, scrapes the pages and
// turns them into property records and rent valuations.
package listing

import (
	"regexp"
	"strings"
)

const listingBaseURL = "https://www.rightmove.co.uk/properties/"

var listingURLPattern = regexp.MustCompile(`https://(?:www\.)?rightmove\.co\.uk/properties/(\d+)[^\s"'<>]*`)

// DetectURLs returns the canonical listing URLs found in text, with
// fragments and query strings removed, deduplicated in first-seen order.
func DetectURLs(text string) []string {
	var urls []string
	seen := make(map[string]bool)
	for _, m := range listingURLPattern.FindAllStringSubmatch(text, -1) {
		u := CanonicalURL(m[1])
		if seen[u] {
			continue
		}
		seen[u] = true
		urls = append(urls, u)
	}
	return urls
}

// CanonicalURL builds the listing URL for a property id.
func CanonicalURL(id string) string {
	return listingBaseURL + id
}

// ListingID extracts the numeric property id from a listing URL, or "" when
// u is not a listing URL.
func ListingID(u string) string {
	m := listingURLPattern.FindStringSubmatch(strings.TrimSpace(u))
	if m == nil {
		return ""
	}
	return m[1]
}
