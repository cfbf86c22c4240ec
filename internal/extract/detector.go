package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Markers of client-side rendering frameworks found in script sources or
// inline bootstrap code.
var frameworkMarkers = []string{
	"react", "vue", "angular", "ember", "svelte",
	"__next_data__", "webpack", "window.__nuxt__",
}

// Empty mount points frameworks hydrate into at view time.
var mountSelectors = []string{"#root", "#app", "#__next", "[data-reactroot]"}

// Detector flags pages whose visible content is likely generated at view
// time by client-side script. The pipeline only flags; it never renders.
type Detector struct {
	// MinTextBytes is the visible-text threshold below which a page is
	// suspicious (default 200).
	MinTextBytes int
}

// NewDetector builds a Detector with default thresholds.
func NewDetector() *Detector {
	return &Detector{MinTextBytes: 200}
}

// RenderFlagged reports whether the page looks script-rendered: too little
// visible text combined with framework markers or an empty mount point.
func (d *Detector) RenderFlagged(doc *goquery.Document) bool {
	body := doc.Find("body").First()
	text := normalizeText(body.Text())
	if len(text) >= d.MinTextBytes {
		return false
	}
	return d.hasFrameworkMarker(doc) || d.hasEmptyMount(doc)
}

func (d *Detector) hasFrameworkMarker(doc *goquery.Document) bool {
	found := false
	doc.Find("script").EachWithBreak(func(_ int, script *goquery.Selection) bool {
		src, _ := script.Attr("src")
		haystack := strings.ToLower(src + " " + script.Text())
		for _, marker := range frameworkMarkers {
			if strings.Contains(haystack, marker) {
				found = true
				return false
			}
		}
		return true
	})
	return found
}

func (d *Detector) hasEmptyMount(doc *goquery.Document) bool {
	for _, selector := range mountSelectors {
		mount := doc.Find(selector).First()
		if mount.Length() > 0 && normalizeText(mount.Text()) == "" {
			return true
		}
	}
	return false
}
