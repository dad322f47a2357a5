// Package urlmatch recognizes TikTok share links in free-form chat text.
package urlmatch

import (
	"slices"
	"strings"
)

var hosts = []string{"tiktok.com", "vm.tiktok.com", "vt.tiktok.com"}

// Hosts returns the host fragments accepted as TikTok links.
func Hosts() []string {
	return slices.Clone(hosts)
}

// Supported reports whether text contains one of the recognized hosts.
// Matching is case-insensitive.
func Supported(text string) bool {
	lower := strings.ToLower(text)
	for _, h := range hosts {
		if strings.Contains(lower, h) {
			return true
		}
	}
	return false
}

// LooksLikeLink reports whether text contains anything URL-ish: an "http"
// prefix or one of the recognized hosts. Text that fails this check gets a
// greeting rather than a usage error.
func LooksLikeLink(text string) bool {
	if strings.Contains(strings.ToLower(text), "http") {
		return true
	}
	return Supported(text)
}

// Extract returns the first whitespace-separated token of text that is a
// supported link. If no single token matches, the trimmed text is returned.
func Extract(text string) string {
	for _, field := range strings.Fields(text) {
		if Supported(field) {
			return field
		}
	}
	return strings.TrimSpace(text)
}
