// Package extract turns raw HTML into clean structured text plus page
// metadata, without any site-specific configuration. Extraction is total:
// it never fails, it degrades to empty output.
package extract

import (
	"bytes"
	"math"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/paulosgsf/typingmind-webscraper/internal/crawler"
)

// Selector cascade for likely main-content regions, tried in order. The
// first candidate holding more than minCascadeChars of text wins.
var contentSelectors = []string{
	"main article",
	"article",
	"main",
	"[role=main]",
	"#content",
	"#main-content",
	".main-content",
	".content",
	".post-content",
	".entry-content",
	".article-content",
	".article-body",
	".documentation",
	".docs-content",
	".markdown-body",
}

// noiseSelectors name subtrees that never carry main content.
const noiseSelectors = "script, style, nav, header, footer, aside, form, iframe, noscript, svg"

// Class and id fragments identifying boilerplate containers. The ad subset
// takes the lighter scoring penalty; everything else counts as noise.
var adNamePatterns = []string{"advert", "adsense", "ad-banner", "ad-container"}

var noiseNamePatterns = append([]string{
	"social", "share", "breadcrumb", "pagination", "pager",
	"sidebar", "widget", "banner", "cookie", "popup", "promo", "comment",
}, adNamePatterns...)

var positiveNamePatterns = []string{"content", "main", "article", "post"}
var negativeNamePatterns = []string{"sidebar", "nav", "footer", "header"}

const (
	minCascadeChars   = 200
	minScore          = 50
	maxLinkDensity    = 0.7
	minLinkClustChars = 200
	minBlockChars     = 30
	minStructured     = 100
)

// Extractor implements crawler.Extractor over goquery documents.
type Extractor struct {
	logger   *zap.Logger
	detector *Detector
}

// New builds an Extractor.
func New(logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{logger: logger, detector: NewDetector()}
}

// Extract parses the page and runs the four-phase content selection, the
// cleaning pass, and text structuring. The returned result carries only
// extraction fields; the orchestrator owns URL, Success and Timestamp.
func (e *Extractor) Extract(pageURL string, body []byte) crawler.PageResult {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		e.logger.Debug("page parse failed, yielding empty extraction",
			zap.String("url", pageURL), zap.Error(err))
		return crawler.PageResult{Metadata: crawler.PageMetadata{Language: "unknown"}}
	}

	metadata := resolveMetadata(doc, pageURL)
	title := resolveTitle(doc)
	description := resolveDescription(doc)
	flagged := e.detector.RenderFlagged(doc)

	stripNoise(doc)
	container := e.selectContainer(doc)
	cleanContainer(container)
	bodyText := structureText(container)

	metadata.WordCount = len(strings.Fields(bodyText))
	if metadata.WordCount > 0 {
		metadata.ReadingTime = (metadata.WordCount + 199) / 200
	}

	return crawler.PageResult{
		Title:         title,
		Description:   description,
		BodyText:      bodyText,
		Length:        len(bodyText),
		RenderFlagged: flagged,
		Metadata:      metadata,
	}
}

// selectContainer applies the semantic cascade, then the scoring fallback,
// then the whole body.
func (e *Extractor) selectContainer(doc *goquery.Document) *goquery.Selection {
	for _, selector := range contentSelectors {
		sel := doc.Find(selector).First()
		if sel.Length() > 0 && len(normalizeText(sel.Text())) > minCascadeChars {
			return sel
		}
	}
	if best := bestScoredContainer(doc); best != nil {
		return best
	}
	return doc.Find("body").First()
}

// bestScoredContainer scores every block container and returns the winner,
// or nil when nothing clears the floor.
func bestScoredContainer(doc *goquery.Document) *goquery.Selection {
	var best *goquery.Selection
	bestScore := float64(minScore)
	doc.Find("div, section").Each(func(_ int, sel *goquery.Selection) {
		score := scoreContainer(sel)
		if score > bestScore {
			bestScore = score
			best = sel
		}
	})
	return best
}

// scoreContainer implements the heuristic content score. Negative results
// clamp to 0 so they never beat the floor.
func scoreContainer(sel *goquery.Selection) float64 {
	text := normalizeText(sel.Text())
	textLen := len(text)
	if textLen == 0 {
		return 0
	}

	linkLen := 0
	sel.Find("a").Each(func(_ int, a *goquery.Selection) {
		linkLen += len(normalizeText(a.Text()))
	})
	linkDensity := float64(linkLen) / math.Max(float64(textLen), 1)

	noise, ads := 0, 0
	sel.Find("*").Each(func(_ int, child *goquery.Selection) {
		name := elementNames(child)
		if containsPattern(name, noiseNamePatterns) {
			if containsPattern(name, adNamePatterns) {
				ads++
			} else {
				noise++
			}
		}
	})

	score := math.Sqrt(float64(textLen))
	score -= linkDensity * 200
	score -= float64(noise) * 50
	score -= float64(ads) * 30
	score += float64(sel.Find("p").Length()) * 15
	score += float64(sel.Find("h1, h2, h3, h4, h5, h6").Length()) * 10
	score += float64(sel.Find("ul, ol").Length()) * 5

	names := elementNames(sel)
	if containsPattern(names, positiveNamePatterns) {
		score += 25
	}
	if containsPattern(names, negativeNamePatterns) {
		score -= 25
	}
	return math.Max(score, 0)
}

// stripNoise removes structural noise subtrees and boilerplate-named
// containers from the parsed document.
func stripNoise(doc *goquery.Document) {
	doc.Find(noiseSelectors).Remove()
	doc.Find("div, section, ul, span").Each(func(_ int, sel *goquery.Selection) {
		if containsPattern(elementNames(sel), noiseNamePatterns) {
			sel.Remove()
		}
	})
}

// cleanContainer drops link clusters and headingless UI chrome from the
// selected subtree.
func cleanContainer(sel *goquery.Selection) {
	sel.Find("div, section, table, ul, ol").Each(func(_ int, child *goquery.Selection) {
		text := normalizeText(child.Text())
		textLen := len(text)
		if textLen == 0 {
			child.Remove()
			return
		}
		linkLen := 0
		child.Find("a").Each(func(_ int, a *goquery.Selection) {
			linkLen += len(normalizeText(a.Text()))
		})
		density := float64(linkLen) / math.Max(float64(textLen), 1)
		if density > maxLinkDensity && textLen < minLinkClustChars {
			child.Remove()
			return
		}
		if textLen < minBlockChars && child.Find("h1, h2, h3, h4, h5, h6").Length() == 0 {
			child.Remove()
		}
	})
}

// structureText rebuilds plain text from the cleaned subtree, preserving
// heading hierarchy, paragraph breaks, and list bullets. Falls back to the
// raw concatenated text when the structured result is too small.
func structureText(sel *goquery.Selection) string {
	var b strings.Builder
	sel.Find("h1, h2, h3, h4, h5, h6, p, li, pre, blockquote").Each(func(_ int, node *goquery.Selection) {
		var text string
		tag := goquery.NodeName(node)
		if tag == "pre" {
			text = strings.TrimSpace(node.Text())
		} else {
			text = normalizeText(node.Text())
		}
		if text == "" {
			return
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		switch tag {
		case "h1", "h2", "h3", "h4", "h5", "h6":
			level := int(tag[1] - '0')
			b.WriteString(strings.Repeat("#", level))
			b.WriteString(" ")
			b.WriteString(text)
		case "li":
			b.WriteString("• ")
			b.WriteString(text)
		default:
			b.WriteString(text)
		}
	})

	structured := b.String()
	if len(structured) >= minStructured {
		return structured
	}
	raw := normalizeText(sel.Text())
	if len(raw) > len(structured) {
		return raw
	}
	return structured
}

// elementNames joins an element's class and id attributes, lowercased, for
// pattern matching.
func elementNames(sel *goquery.Selection) string {
	class, _ := sel.Attr("class")
	id, _ := sel.Attr("id")
	return strings.ToLower(class + " " + id)
}

func containsPattern(name string, patterns []string) bool {
	if strings.TrimSpace(name) == "" {
		return false
	}
	for _, pattern := range patterns {
		if strings.Contains(name, pattern) {
			return true
		}
	}
	return false
}

// normalizeText collapses all runs of whitespace to single spaces.
func normalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
