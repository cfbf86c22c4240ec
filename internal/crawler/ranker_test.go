package crawler

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func mustProfile(t *testing.T, name string) Profile {
	t.Helper()
	p, err := LookupProfile(name)
	require.NoError(t, err)
	return p
}

func TestScoreURLDocsRootAtIndexZero(t *testing.T) {
	t.Parallel()

	// 100 base − 3 depth + 30 root + 50 position, no tier keyword matches.
	profile := mustProfile(t, "documentation")
	require.Equal(t, 177, ScoreURL("https://example.com/docs/", 0, profile))
}

func TestScoreURLComponents(t *testing.T) {
	t.Parallel()

	profile := mustProfile(t, "documentation")

	t.Run("site root gets root bonus", func(t *testing.T) {
		t.Parallel()
		// 100 + 30 + 50, zero segments.
		require.Equal(t, 180, ScoreURL("https://example.com/", 0, profile))
	})

	t.Run("section child bonus", func(t *testing.T) {
		t.Parallel()
		// 100 − 6 + 20 + 50; "intro" matches the high tier "introduction"?
		// No: containment runs the other way, so no tier bonus applies.
		require.Equal(t, 164, ScoreURL("https://example.com/docs/intro", 0, profile))
	})

	t.Run("keyword tiers contribute independently", func(t *testing.T) {
		t.Parallel()
		// 100 − 9 + 25(high: quickstart) + 15(medium: guide) + 5(low: api)
		// + 20? no, three segments + 50 position.
		got := ScoreURL("https://example.com/guide/api/quickstart", 0, profile)
		require.Equal(t, 100-9+25+15+5+50, got)
	})

	t.Run("data extension penalty", func(t *testing.T) {
		t.Parallel()
		withExt := ScoreURL("https://example.com/docs/data.json", 3, profile)
		withoutExt := ScoreURL("https://example.com/docs/data", 3, profile)
		require.Equal(t, withoutExt-20, withExt)
	})

	t.Run("index bonus suppressed near api", func(t *testing.T) {
		t.Parallel()
		plain := ScoreURL("https://example.com/manual/index", 0, profile)
		nearAPI := ScoreURL("https://example.com/api/index", 0, profile)
		// Same shape otherwise: both are section children. The api path
		// loses the index bonus but gains the low-tier "api" keyword.
		require.Equal(t, plain-10+5, nearAPI)
	})

	t.Run("position bonus decays to zero", func(t *testing.T) {
		t.Parallel()
		early := ScoreURL("https://example.com/docs/x", 0, profile)
		late := ScoreURL("https://example.com/docs/x", 60, profile)
		require.Equal(t, early-50, late)
	})

	t.Run("score never negative", func(t *testing.T) {
		t.Parallel()
		deep := "https://example.com/a/b/c/d/e/f/g/h/i/j/k/l/m/n/o/p/q/r/s/t/u/v/w/x/y/z/a/b/c/d/e/f/g/h/i/j/k/l/m/o.pdf"
		require.GreaterOrEqual(t, ScoreURL(deep, 99, profile), 0)
	})
}

func TestRankStableTieBreakByDiscoveryOrder(t *testing.T) {
	t.Parallel()

	profile := Profile{}
	// Identical paths on different hosts score identically at equal depth,
	// except for the position bonus; neutralize it by placing both past the
	// bonus window.
	urls := make([]string, 0, 52)
	for i := 0; i < 50; i++ {
		urls = append(urls, "https://filler.example/a/b/c/d/e/f/g/h/i/j")
	}
	urls = append(urls, "https://one.example/page", "https://two.example/page")

	ranked := Rank(urls, profile, len(urls))
	// The two equal-score tail URLs must keep their discovery order.
	oneIdx, twoIdx := -1, -1
	for i, u := range ranked {
		switch u {
		case "https://one.example/page":
			oneIdx = i
		case "https://two.example/page":
			twoIdx = i
		}
	}
	require.NotEqual(t, -1, oneIdx)
	require.NotEqual(t, -1, twoIdx)
	require.Less(t, oneIdx, twoIdx)
}

func TestRankRespectsMaxPages(t *testing.T) {
	t.Parallel()

	profile := mustProfile(t, "documentation")
	urls := []string{
		"https://example.com/docs/",
		"https://example.com/docs/a",
		"https://example.com/docs/b",
		"https://example.com/docs/c",
	}
	require.Len(t, Rank(urls, profile, 2), 2)
	require.Len(t, Rank(urls, profile, 10), 4)
}

func TestRankIsDeterministic(t *testing.T) {
	t.Parallel()

	profile := mustProfile(t, "documentation")
	urls := []string{
		"https://example.com/docs/guide",
		"https://example.com/docs/",
		"https://example.com/reference/api.json",
		"https://example.com/docs/readme",
	}
	first := Rank(urls, profile, 4)
	for i := 0; i < 10; i++ {
		require.Equal(t, first, Rank(urls, profile, 4))
	}
}
