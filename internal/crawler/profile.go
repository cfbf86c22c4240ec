package crawler

import "fmt"

// Profile is a named configuration of include/exclude path patterns and
// keyword tiers used to filter and rank URLs for a content category.
// Profiles are process-wide constants, initialized once and never mutated.
type Profile struct {
	Name            string
	IncludePatterns []string
	ExcludePatterns []string
	HighKeywords    []string
	MediumKeywords  []string
	LowKeywords     []string
}

// DefaultProfile is used when a job does not name one.
const DefaultProfile = "documentation"

var profiles = map[string]Profile{
	"documentation": {
		Name: "documentation",
		IncludePatterns: []string{
			"/docs", "/documentation", "/guide", "/guides", "/manual",
			"/reference", "/api", "/tutorial", "/tutorials", "/learn",
			"/getting-started", "/quickstart", "/handbook", "/wiki", "/help",
		},
		ExcludePatterns: []string{
			"/blog", "/news", "/changelog", "/releases", "/download",
			"/pricing", "/login", "/signup", "/register", "/careers",
			"/jobs", "/legal", "/privacy", "/terms", "/contact",
		},
		HighKeywords: []string{
			"getting-started", "quickstart", "introduction", "overview",
			"installation", "setup",
		},
		MediumKeywords: []string{
			"guide", "tutorial", "concepts", "usage", "examples", "reference",
		},
		LowKeywords: []string{"api", "advanced", "configuration", "faq"},
	},
	"article": {
		Name: "article",
		IncludePatterns: []string{
			"/blog", "/article", "/articles", "/post", "/posts", "/news",
			"/story", "/stories",
		},
		ExcludePatterns: []string{
			"/tag", "/tags", "/category", "/categories", "/author",
			"/archive", "/page/", "/login", "/signup", "/subscribe",
			"/privacy", "/terms",
		},
		HighKeywords:   []string{"featured", "announcement", "deep-dive"},
		MediumKeywords: []string{"blog", "article", "post", "story"},
		LowKeywords:    []string{"update", "review", "opinion"},
	},
	"general": {
		Name:            "general",
		IncludePatterns: nil, // empty include set: everything passes
		ExcludePatterns: []string{
			"/login", "/signup", "/register", "/cart", "/checkout",
			"/account", "/privacy", "/terms", "/cookie",
		},
		HighKeywords:   []string{"about", "overview", "index"},
		MediumKeywords: []string{"product", "service", "feature"},
		LowKeywords:    []string{"info", "detail"},
	},
}

// LookupProfile resolves a profile by name. An empty name selects the
// default. Unknown names are a caller error and abort the crawl.
func LookupProfile(name string) (Profile, error) {
	if name == "" {
		name = DefaultProfile
	}
	p, ok := profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("unknown profile %q", name)
	}
	return p, nil
}

// ProfileNames lists the registered profiles (for API validation errors).
func ProfileNames() []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	return names
}
