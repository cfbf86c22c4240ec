package crawler

import (
	"sort"
	"strings"
)

const (
	baseScore           = 100
	depthPenaltyPerSeg  = 3
	highKeywordBonus    = 25
	mediumKeywordBonus  = 15
	lowKeywordBonus     = 5
	rootBonus           = 30
	sectionChildBonus   = 20
	indexBonus          = 10
	readmeBonus         = 15
	dataExtensionMalus  = 20
	positionBonusWindow = 50
)

// Top-level sections whose direct children get the structural child bonus.
var recognizedSections = map[string]struct{}{
	"docs": {}, "documentation": {}, "guide": {}, "guides": {},
	"manual": {}, "reference": {}, "api": {}, "help": {},
	"learn": {}, "tutorial": {}, "tutorials": {}, "blog": {},
}

var dataExtensions = []string{".xml", ".json", ".pdf"}

// ScoreURL computes the priority score for one URL. The score is a pure
// function of (url, originalIndex, profile): identical inputs always yield
// the identical score.
func ScoreURL(rawURL string, originalIndex int, profile Profile) int {
	path := strings.ToLower(urlPath(rawURL))
	segments := pathSegments(path)

	score := baseScore
	score -= depthPenaltyPerSeg * len(segments)

	// Keyword tiers are checked independently; each tier contributes at
	// most once no matter how many of its keywords match.
	if containsAny(path, profile.HighKeywords) {
		score += highKeywordBonus
	}
	if containsAny(path, profile.MediumKeywords) {
		score += mediumKeywordBonus
	}
	if containsAny(path, profile.LowKeywords) {
		score += lowKeywordBonus
	}

	if isContentRoot(segments) {
		score += rootBonus
	}
	if isSectionChild(segments) {
		score += sectionChildBonus
	}
	if strings.Contains(path, "index") && !strings.Contains(path, "api") {
		score += indexBonus
	}
	if strings.Contains(path, "readme") {
		score += readmeBonus
	}

	for _, ext := range dataExtensions {
		if strings.HasSuffix(path, ext) {
			score -= dataExtensionMalus
			break
		}
	}

	if originalIndex < positionBonusWindow {
		score += positionBonusWindow - originalIndex
	}

	if score < 0 {
		score = 0
	}
	return score
}

// Rank scores all URLs, orders them by descending score with ascending
// discovery index as the tie-break, and returns the first maxPages entries.
// The ordering is fully deterministic.
func Rank(urls []string, profile Profile, maxPages int) []string {
	scored := make([]ScoredURL, len(urls))
	for i, u := range urls {
		scored[i] = ScoredURL{URL: u, Score: ScoreURL(u, i, profile), OriginalIndex: i}
	}
	sort.SliceStable(scored, func(a, b int) bool {
		if scored[a].Score != scored[b].Score {
			return scored[a].Score > scored[b].Score
		}
		return scored[a].OriginalIndex < scored[b].OriginalIndex
	})

	if maxPages > 0 && maxPages < len(scored) {
		scored = scored[:maxPages]
	}
	ranked := make([]string, len(scored))
	for i, s := range scored {
		ranked[i] = s.URL
	}
	return ranked
}

func pathSegments(path string) []string {
	var segments []string
	for _, seg := range strings.Split(path, "/") {
		if seg != "" {
			segments = append(segments, seg)
		}
	}
	return segments
}

// isContentRoot reports whether the path is the site root or a canonical
// content root such as /docs or /docs/.
func isContentRoot(segments []string) bool {
	if len(segments) == 0 {
		return true
	}
	if len(segments) != 1 {
		return false
	}
	_, ok := recognizedSections[segments[0]]
	return ok
}

func isSectionChild(segments []string) bool {
	if len(segments) != 2 {
		return false
	}
	_, ok := recognizedSections[segments[0]]
	return ok
}

func containsAny(path string, keywords []string) bool {
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(path, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
