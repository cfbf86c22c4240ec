// Package sitemap discovers candidate page URLs for a seed origin by
// probing well-known sitemap locations and, failing that, the robots.txt
// Sitemap directive. Discovery is best-effort: every failure degrades to a
// smaller (possibly empty) result, never an error.
package sitemap

import (
	"context"
	"encoding/xml"
	"net/url"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/paulosgsf/typingmind-webscraper/internal/crawler"
)

// Well-known sitemap locations, probed in order against the seed origin.
var probePaths = []string{
	"/sitemap.xml",
	"/sitemap_index.xml",
	"/sitemap-index.xml",
	"/sitemap/sitemap.xml",
	"/wp-sitemap.xml",
	"/sitemaps.xml",
}

// maxIndexDepth bounds sitemap-index recursion so that self-referential or
// deeply nested indexes cannot loop the resolver.
const maxIndexDepth = 5

var robotsSitemapRe = regexp.MustCompile(`(?im)^sitemap:\s*(\S+)`)

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	URLs    []sitemapLoc `xml:"url"`
}

type sitemapIndex struct {
	XMLName  xml.Name     `xml:"sitemapindex"`
	Sitemaps []sitemapLoc `xml:"sitemap"`
}

type sitemapLoc struct {
	Loc string `xml:"loc"`
}

// Resolver implements crawler.Resolver over HTTP sitemaps.
type Resolver struct {
	fetcher crawler.Fetcher
	logger  *zap.Logger
	timeout time.Duration
}

// NewResolver builds a Resolver using the given fetcher for all sitemap and
// robots.txt requests.
func NewResolver(fetcher crawler.Fetcher, logger *zap.Logger, timeout time.Duration) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Resolver{fetcher: fetcher, logger: logger, timeout: timeout}
}

// Discover probes the well-known sitemap paths under the seed's origin,
// falling back to robots.txt Sitemap directives. The first location that
// yields any URLs wins; an empty result means no sitemap was found.
func (r *Resolver) Discover(ctx context.Context, seedURL string) []string {
	origin, err := originOf(seedURL)
	if err != nil {
		r.logger.Debug("sitemap discovery skipped, unparseable seed",
			zap.String("seed", seedURL), zap.Error(err))
		return nil
	}

	for _, path := range probePaths {
		if ctx.Err() != nil {
			return nil
		}
		urls := dedupe(r.resolve(ctx, origin+path, origin, 0, map[string]bool{}))
		if len(urls) > 0 {
			r.logger.Debug("sitemap found",
				zap.String("location", origin+path), zap.Int("urls", len(urls)))
			return urls
		}
	}

	for _, loc := range r.robotsSitemaps(ctx, origin) {
		if ctx.Err() != nil {
			return nil
		}
		urls := dedupe(r.resolve(ctx, loc, origin, 0, map[string]bool{}))
		if len(urls) > 0 {
			r.logger.Debug("sitemap found via robots.txt",
				zap.String("location", loc), zap.Int("urls", len(urls)))
			return urls
		}
	}

	r.logger.Debug("no sitemap found", zap.String("origin", origin))
	return nil
}

// resolve fetches one sitemap document and returns its page URLs, following
// sitemap-index entries recursively up to maxIndexDepth.
func (r *Resolver) resolve(ctx context.Context, location, origin string, depth int, visited map[string]bool) []string {
	if depth > maxIndexDepth || visited[location] {
		return nil
	}
	visited[location] = true

	resp, err := r.fetcher.Fetch(ctx, crawler.FetchRequest{URL: location, Timeout: r.timeout})
	if err != nil {
		return nil
	}

	if index, ok := parseIndex(resp.Body); ok {
		var urls []string
		for _, entry := range index.Sitemaps {
			child := rebase(strings.TrimSpace(entry.Loc), origin)
			if child == "" {
				continue
			}
			urls = append(urls, r.resolve(ctx, child, origin, depth+1, visited)...)
		}
		return urls
	}

	set, ok := parseURLSet(resp.Body)
	if !ok {
		r.logger.Debug("sitemap parse failed", zap.String("location", location))
		return nil
	}
	urls := make([]string, 0, len(set.URLs))
	for _, entry := range set.URLs {
		if loc := rebase(strings.TrimSpace(entry.Loc), origin); loc != "" {
			urls = append(urls, loc)
		}
	}
	return urls
}

// robotsSitemaps extracts Sitemap directives from the origin's robots.txt.
func (r *Resolver) robotsSitemaps(ctx context.Context, origin string) []string {
	resp, err := r.fetcher.Fetch(ctx, crawler.FetchRequest{URL: origin + "/robots.txt", Timeout: r.timeout})
	if err != nil {
		return nil
	}
	var locations []string
	for _, match := range robotsSitemapRe.FindAllStringSubmatch(string(resp.Body), -1) {
		if loc := rebase(strings.TrimSpace(match[1]), origin); loc != "" {
			locations = append(locations, loc)
		}
	}
	return locations
}

func parseIndex(body []byte) (sitemapIndex, bool) {
	var index sitemapIndex
	if err := xml.Unmarshal(body, &index); err != nil {
		return sitemapIndex{}, false
	}
	return index, len(index.Sitemaps) > 0
}

func parseURLSet(body []byte) (urlSet, bool) {
	var set urlSet
	if err := xml.Unmarshal(body, &set); err != nil {
		return urlSet{}, false
	}
	return set, true
}

// dedupe keeps the first occurrence of each URL. Child urlsets under a
// shared index frequently repeat pages.
func dedupe(urls []string) []string {
	seen := make(map[string]bool, len(urls))
	out := urls[:0]
	for _, u := range urls {
		if seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, u)
	}
	return out
}

// rebase resolves loc against the seed origin: absolute http(s) URLs pass
// through, relative paths are joined, anything else is dropped.
func rebase(loc, origin string) string {
	if loc == "" {
		return ""
	}
	parsed, err := url.Parse(loc)
	if err != nil {
		return ""
	}
	switch parsed.Scheme {
	case "http", "https":
		return loc
	case "":
		if strings.HasPrefix(loc, "/") {
			return origin + loc
		}
		return origin + "/" + loc
	default:
		return ""
	}
}

func originOf(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	return u.Scheme + "://" + u.Host, nil
}
