package crawler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConsolidateSkipsFailedAndShortPages(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("content ", 20)
	pages := []PageResult{
		{URL: "https://example.com/a", Title: "A", BodyText: long, Length: len(long), Success: true},
		{URL: "https://example.com/b", Success: false, ErrorKind: ErrorKindFetch},
		{URL: "https://example.com/c", Title: "C", BodyText: "tiny", Length: 4, Success: true},
	}
	got := Consolidate(pages, 50)
	require.Contains(t, got, "Title: A")
	require.Contains(t, got, long)
	require.NotContains(t, got, "example.com/b")
	require.NotContains(t, got, "Title: C")
}

func TestConsolidateHeaderCarriesMetadata(t *testing.T) {
	t.Parallel()

	body := strings.Repeat("words ", 20)
	pages := []PageResult{{
		URL:      "https://example.com/docs/intro",
		Title:    "Intro",
		BodyText: body,
		Length:   len(body),
		Success:  true,
		Metadata: PageMetadata{
			Author:      "Jane Doe",
			ContentType: "documentation",
			ReadingTime: 2,
			Keywords:    []string{"go", "scraping"},
		},
	}}
	got := Consolidate(pages, 50)
	require.Contains(t, got, "Title: Intro")
	require.Contains(t, got, "URL: https://example.com/docs/intro")
	require.Contains(t, got, "Author: Jane Doe")
	require.Contains(t, got, "Content-Type: documentation")
	require.Contains(t, got, "Reading-Time: 2 min")
	require.Contains(t, got, "Keywords: go, scraping")
}

func TestConsolidateUntitledFallbackAndOrder(t *testing.T) {
	t.Parallel()

	body := strings.Repeat("x", 60)
	pages := []PageResult{
		{URL: "https://example.com/1", BodyText: body, Length: 60, Success: true},
		{URL: "https://example.com/2", Title: "Second", BodyText: body, Length: 60, Success: true},
	}
	got := Consolidate(pages, 50)
	require.Contains(t, got, "Title: Untitled")
	require.Less(t, strings.Index(got, "example.com/1"), strings.Index(got, "example.com/2"))
}

func TestConsolidateEmptyInput(t *testing.T) {
	t.Parallel()
	require.Empty(t, Consolidate(nil, 50))
}
