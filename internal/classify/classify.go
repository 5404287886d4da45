// Package classify scores and categorizes candidate articles using
// keyword heuristics. All functions are pure and deterministic.
package classify

import (
	"net/url"
	"strings"
)

// Category is a topical category for a positive-news article.
type Category string

const (
	ScienceInnovation Category = "science-innovation"
	Environment       Category = "environment"
	Community         Category = "community"
	Kindness          Category = "kindness"
	HealthRecovery    Category = "health-recovery"
	Education         Category = "education"
	GlobalProgress    Category = "global-progress"
	Technology        Category = "technology"
)

// Categories lists all categories in their canonical order.
var Categories = []Category{
	ScienceInnovation,
	Environment,
	Community,
	Kindness,
	HealthRecovery,
	Education,
	GlobalProgress,
	Technology,
}

var categoryKeywords = map[Category][]string{
	ScienceInnovation: {"science", "research", "study", "discovery", "breakthrough", "scientists", "university", "laboratory"},
	Environment:       {"climate", "environment", "renewable", "solar", "wind", "sustainable", "conservation", "wildlife", "ocean", "forest"},
	Community:         {"community", "neighborhood", "local", "volunteer", "initiative", "together", "grassroots"},
	Kindness:          {"kindness", "generosity", "donation", "charity", "helped", "rescued", "saved", "compassion"},
	HealthRecovery:    {"health", "medical", "treatment", "therapy", "recovery", "cure", "patient", "hospital"},
	Education:         {"education", "school", "student", "teacher", "learning", "scholarship", "university", "literacy"},
	GlobalProgress:    {"global", "international", "world", "nations", "progress", "development", "poverty", "peace"},
	Technology:        {"technology", "innovation", "ai", "artificial intelligence", "startup", "app", "digital", "software"},
}

// trustedDomains is the publisher allow list. Subdomains of a listed
// domain are trusted too.
var trustedDomains = []string{
	"bbc.com", "bbc.co.uk",
	"theguardian.com",
	"nytimes.com",
	"washingtonpost.com",
	"reuters.com",
	"apnews.com",
	"npr.org",
	"pbs.org",
	"theatlantic.com",
	"nature.com",
	"scientificamerican.com",
	"newscientist.com",
	"science.org",
	"nationalgeographic.com",
	"smithsonianmag.com",
	"wired.com",
	"arstechnica.com",
	"techcrunch.com",
	"theverge.com",
	"mit.edu",
	"stanford.edu",
	"harvard.edu",
	"time.com",
	"economist.com",
	"forbes.com",
	"bloomberg.com",
	"axios.com",
	"propublica.org",
	"usatoday.com",
	"csmonitor.com",
	"popsci.com",
	"grist.org",
	"motherjones.com",
	"vox.com",
	"theconversation.com",
}

var positiveKeywords = []string{
	"breakthrough", "innovation", "discovery", "achievement", "recovery",
	"cure", "solution", "improvement", "progress", "kindness", "generosity",
	"volunteer", "help", "support", "community", "together", "unity",
	"hope", "inspiring", "uplifting", "celebration",
	"overcome", "resilience", "donated", "saved", "rescued",
	"renewable", "sustainable", "conservation", "restore", "protect",
	"scholarship", "education", "learning", "research", "scientific",
	"medical advance", "treatment", "therapy", "healing",
}

var negativeKeywords = []string{
	"death", "murder", "war", "violence", "crash", "disaster", "terrorism",
	"crime", "scandal", "controversy", "conflict", "shooting", "attack",
	"fraud", "corruption", "lawsuit", "bankruptcy", "fired", "layoffs",
}

var sportsKeywords = []string{
	"game", "match", "score", "playoff", "championship", "tournament",
	"league", "season", "team wins", "defeats", "beat", "vs", "versus",
	"quarterback", "touchdown", "goal", "basket", "home run", "inning",
	"nfl", "nba", "mlb", "nhl", "premier league", "world cup",
	"soccer", "football", "basketball", "baseball", "hockey",
}

var entertainmentKeywords = []string{
	"movie", "film", "actor", "actress", "celebrity", "red carpet",
	"box office", "premiere", "trailer", "netflix", "streaming",
	"album", "song", "concert", "tour", "grammy", "oscar", "emmy",
}

// PositivityScore returns the number of distinct positive keywords found in
// text minus the number of distinct negative keywords. Matching is
// case-insensitive substring containment; each keyword counts at most once.
func PositivityScore(text string) int {
	lower := strings.ToLower(text)

	score := 0
	for _, kw := range positiveKeywords {
		if strings.Contains(lower, kw) {
			score++
		}
	}
	for _, kw := range negativeKeywords {
		if strings.Contains(lower, kw) {
			score--
		}
	}
	return score
}

// DetectCategories returns the categories whose keyword lists match the
// article's title and description. Falls back to global-progress when
// nothing matches, so the result is never empty.
func DetectCategories(title, description string) []Category {
	text := strings.ToLower(title + " " + description)

	var matched []Category
	for _, cat := range Categories {
		for _, kw := range categoryKeywords[cat] {
			if strings.Contains(text, kw) {
				matched = append(matched, cat)
				break
			}
		}
	}

	if len(matched) == 0 {
		return []Category{GlobalProgress}
	}
	return matched
}

// FromTrustedDomain reports whether rawURL points at a publisher on the
// allow list. Malformed URLs are treated as untrusted.
func FromTrustedDomain(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return false
	}

	host := strings.ToLower(u.Hostname())
	for _, trusted := range trustedDomains {
		if host == trusted || strings.HasSuffix(host, "."+trusted) {
			return true
		}
	}
	return false
}

// SportsOrEntertainment reports whether text matches the sports or
// entertainment exclusion lists.
func SportsOrEntertainment(text string) bool {
	lower := strings.ToLower(text)

	for _, kw := range sportsKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	for _, kw := range entertainmentKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// QualityArticle is the admission gate for externally fetched candidates:
// trusted domain, no sports/entertainment match, positivity score of at
// least 1.
func QualityArticle(title, description, rawURL string) bool {
	if !FromTrustedDomain(rawURL) {
		return false
	}

	text := title + " " + description
	if SportsOrEntertainment(text) {
		return false
	}

	return PositivityScore(text) >= 1
}

// TrustedDomains returns a copy of the first n entries of the allow list,
// for building provider domain filters.
func TrustedDomains(n int) []string {
	if n <= 0 || n > len(trustedDomains) {
		n = len(trustedDomains)
	}
	out := make([]string, n)
	copy(out, trustedDomains[:n])
	return out
}

// ParseCategory converts a string to a known Category. Unknown values map
// to global-progress.
func ParseCategory(s string) Category {
	for _, cat := range Categories {
		if string(cat) == s {
			return cat
		}
	}
	return GlobalProgress
}
