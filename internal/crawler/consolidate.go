package crawler

import (
	"fmt"
	"strings"
)

const headerRule = "=========================================="

// Consolidate merges successful pages into one annotated document, in the
// order the pages were scraped. Pages that failed, or whose extracted text
// falls below minChars, are skipped.
func Consolidate(pages []PageResult, minChars int) string {
	var b strings.Builder
	for _, page := range pages {
		if !page.Success || page.Length < minChars {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		writePageHeader(&b, page)
		b.WriteString("\n")
		b.WriteString(page.BodyText)
	}
	return b.String()
}

// writePageHeader emits the per-page banner carrying title, URL, and
// whichever metadata fields resolved to a value.
func writePageHeader(b *strings.Builder, page PageResult) {
	title := page.Title
	if title == "" {
		title = "Untitled"
	}
	b.WriteString(headerRule)
	b.WriteString("\n")
	fmt.Fprintf(b, "Title: %s\n", title)
	fmt.Fprintf(b, "URL: %s\n", page.URL)
	if page.Metadata.Author != "" {
		fmt.Fprintf(b, "Author: %s\n", page.Metadata.Author)
	}
	if page.Metadata.ContentType != "" {
		fmt.Fprintf(b, "Content-Type: %s\n", page.Metadata.ContentType)
	}
	if page.Metadata.ReadingTime > 0 {
		fmt.Fprintf(b, "Reading-Time: %d min\n", page.Metadata.ReadingTime)
	}
	if len(page.Metadata.Keywords) > 0 {
		fmt.Fprintf(b, "Keywords: %s\n", strings.Join(page.Metadata.Keywords, ", "))
	}
	b.WriteString(headerRule)
	b.WriteString("\n")
}
