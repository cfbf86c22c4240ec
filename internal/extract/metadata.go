package extract

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/paulosgsf/typingmind-webscraper/internal/crawler"
)

// Validity bands per metadata field. A candidate outside its band is
// rejected and the next source is consulted.
const (
	maxTitleChars       = 300
	minDescriptionChars = 10
	maxDescriptionChars = 500
	maxAuthorChars      = 100
	maxKeywords         = 10
)

// resolveMetadata consults ordered source lists per field and takes the
// first candidate inside the field's validity band. Absence yields the
// zero value ("unknown" for language), never an error.
func resolveMetadata(doc *goquery.Document, pageURL string) crawler.PageMetadata {
	return crawler.PageMetadata{
		Author:       resolveAuthor(doc),
		Keywords:     resolveKeywords(doc),
		PublishDate:  resolvePublishDate(doc),
		Language:     resolveLanguage(doc),
		ContentType:  resolveContentType(doc, pageURL),
		CanonicalURL: resolveCanonical(doc),
	}
}

func resolveTitle(doc *goquery.Document) string {
	candidates := []string{
		metaContent(doc, `meta[property="og:title"]`),
		metaContent(doc, `meta[name="twitter:title"]`),
		normalizeText(doc.Find("h1").First().Text()),
		normalizeText(doc.Find("title").First().Text()),
	}
	return firstInBand(candidates, 1, maxTitleChars)
}

func resolveDescription(doc *goquery.Document) string {
	candidates := []string{
		metaContent(doc, `meta[name="description"]`),
		metaContent(doc, `meta[property="og:description"]`),
		metaContent(doc, `meta[name="twitter:description"]`),
	}
	return firstInBand(candidates, minDescriptionChars, maxDescriptionChars)
}

func resolveAuthor(doc *goquery.Document) string {
	candidates := []string{
		metaContent(doc, `meta[name="author"]`),
		metaContent(doc, `meta[property="article:author"]`),
		normalizeText(doc.Find(`[rel="author"]`).First().Text()),
		normalizeText(doc.Find(".author").First().Text()),
	}
	return firstInBand(candidates, 1, maxAuthorChars)
}

func resolvePublishDate(doc *goquery.Document) string {
	if content := metaContent(doc, `meta[property="article:published_time"]`); content != "" {
		return content
	}
	if datetime, ok := doc.Find("time[datetime]").First().Attr("datetime"); ok {
		if trimmed := strings.TrimSpace(datetime); trimmed != "" {
			return trimmed
		}
	}
	return metaContent(doc, `meta[name="date"]`)
}

func resolveLanguage(doc *goquery.Document) string {
	if lang, ok := doc.Find("html").First().Attr("lang"); ok {
		if trimmed := strings.TrimSpace(lang); trimmed != "" {
			return trimmed
		}
	}
	if content := metaContent(doc, `meta[http-equiv="content-language"]`); content != "" {
		return content
	}
	return "unknown"
}

func resolveKeywords(doc *goquery.Document) []string {
	raw := metaContent(doc, `meta[name="keywords"]`)
	if raw == "" {
		return nil
	}
	var keywords []string
	for _, part := range strings.Split(raw, ",") {
		if kw := strings.TrimSpace(part); kw != "" {
			keywords = append(keywords, kw)
			if len(keywords) == maxKeywords {
				break
			}
		}
	}
	return keywords
}

func resolveCanonical(doc *goquery.Document) string {
	if href, ok := doc.Find(`link[rel="canonical"]`).First().Attr("href"); ok {
		return strings.TrimSpace(href)
	}
	return ""
}

// resolveContentType labels the page from its path and markup shape.
func resolveContentType(doc *goquery.Document, pageURL string) string {
	path := ""
	if u, err := url.Parse(pageURL); err == nil {
		path = strings.ToLower(u.Path)
	}
	switch {
	case containsAnyOf(path, "docs", "documentation", "guide", "manual", "reference", "api"):
		return "documentation"
	case containsAnyOf(path, "blog", "news"):
		return "blog"
	case doc.Find("article").Length() > 0 ||
		metaContent(doc, `meta[property="article:published_time"]`) != "":
		return "article"
	default:
		return "general"
	}
}

func metaContent(doc *goquery.Document, selector string) string {
	content, _ := doc.Find(selector).First().Attr("content")
	return strings.TrimSpace(content)
}

func firstInBand(candidates []string, minLen, maxLen int) string {
	for _, candidate := range candidates {
		if n := len(candidate); n >= minLen && n <= maxLen {
			return candidate
		}
	}
	return ""
}

func containsAnyOf(s string, substrings ...string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
