package crawler

import (
	"fmt"
	"net/url"
	"strings"
)

// NormalizeURL standardizes a URL so duplicates collapse to one form.
// It lowercases the scheme and host, strips default ports and fragments,
// and sorts query parameters.
func NormalizeURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)

	if u.Scheme == "http" {
		u.Host = strings.TrimSuffix(u.Host, ":80")
	}
	if u.Scheme == "https" {
		u.Host = strings.TrimSuffix(u.Host, ":443")
	}

	u.Fragment = ""
	u.RawQuery = u.Query().Encode()

	return u.String(), nil
}

// CleanURLs trims each entry, discards anything that is not a syntactically
// valid absolute http(s) address, and deduplicates preserving first-seen
// order. The output never contains an invalid entry or a duplicate.
func CleanURLs(urls []string) []string {
	seen := make(map[string]struct{}, len(urls))
	cleaned := make([]string, 0, len(urls))
	for _, raw := range urls {
		candidate := strings.TrimSpace(raw)
		if !isAbsoluteHTTP(candidate) {
			continue
		}
		if _, dup := seen[candidate]; dup {
			continue
		}
		seen[candidate] = struct{}{}
		cleaned = append(cleaned, candidate)
	}
	return cleaned
}

// Classify filters URLs by the profile's include/exclude pattern sets.
// A URL passes when the include set is empty or any include pattern matches
// its path, and no exclude pattern matches. Exclude always overrides
// include. The result is deduplicated, order-preserving, and truncated to
// cap entries. A zero or negative cap means no truncation.
func Classify(urls []string, profile Profile, cap int) []string {
	seen := make(map[string]struct{}, len(urls))
	out := make([]string, 0, len(urls))
	for _, candidate := range urls {
		if _, dup := seen[candidate]; dup {
			continue
		}
		seen[candidate] = struct{}{}
		if !matchesProfile(candidate, profile) {
			continue
		}
		out = append(out, candidate)
		if cap > 0 && len(out) >= cap {
			break
		}
	}
	return out
}

func matchesProfile(rawURL string, profile Profile) bool {
	path := strings.ToLower(urlPath(rawURL))
	for _, pattern := range profile.ExcludePatterns {
		if strings.Contains(path, strings.ToLower(pattern)) {
			return false
		}
	}
	if len(profile.IncludePatterns) == 0 {
		return true
	}
	for _, pattern := range profile.IncludePatterns {
		if strings.Contains(path, strings.ToLower(pattern)) {
			return true
		}
	}
	return false
}

func isAbsoluteHTTP(rawURL string) bool {
	if rawURL == "" {
		return false
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// urlPath extracts the path component; an unparseable URL yields the raw
// string so substring matching still gets a chance.
func urlPath(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.Path
}
