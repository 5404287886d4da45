// Package recommend scores unseen candidate articles against the local
// reading history. The scorer is a pure function of (history, candidates,
// clock); nothing here is persisted.
package recommend

import (
	"fmt"
	"sort"
	"time"

	"github.com/kindlingnews/kindling/internal/classify"
	"github.com/kindlingnews/kindling/internal/history"
	"github.com/kindlingnews/kindling/internal/news"
)

// Weights of the scoring terms.
const (
	categoryWeightFactor = 40.0
	recentBoostFactor    = 20.0
	sourceWeightFactor   = 15.0
	diversityBonus       = 5.0
	streakContinueBonus  = 8.0
	streakRestartBonus   = 3.0
	maxScore             = 100.0

	coldStartScore  = 0.5
	coldStartReason = "New user - showing popular articles"
)

// Score is a scored candidate with human-readable reasons, highest-signal
// contract of the engine.
type Score struct {
	Article news.Article `json:"article"`
	Score   float64      `json:"score"`
	Reasons []string     `json:"reasons"`
}

// categoryPreference is the derived per-category affinity: fraction of
// all-time reads and fraction of last-7-day reads.
type categoryPreference struct {
	weight      float64
	recentBoost float64
}

// Scorer ranks candidates for one reader.
type Scorer struct {
	history []history.Entry
	now     time.Time
}

// NewScorer builds a Scorer over a history snapshot at the given time.
func NewScorer(entries []history.Entry, now time.Time) *Scorer {
	return &Scorer{history: entries, now: now}
}

// Recommendations scores and ranks the candidates, highest first, at most
// limit results. With an empty history every candidate gets the flat
// cold-start score in input order.
func (s *Scorer) Recommendations(candidates []news.Article, limit int) []Score {
	if limit <= 0 {
		return nil
	}

	if len(s.history) == 0 {
		n := limit
		if n > len(candidates) {
			n = len(candidates)
		}
		out := make([]Score, 0, n)
		for _, a := range candidates[:n] {
			out = append(out, Score{Article: a, Score: coldStartScore, Reasons: []string{coldStartReason}})
		}
		return out
	}

	catPrefs := s.categoryPreferences()
	sourcePrefs := s.sourcePreferences()
	readIDs := make(map[string]bool, len(s.history))
	readCats := make(map[classify.Category]bool)
	for _, e := range s.history {
		readIDs[e.ArticleID] = true
		for _, c := range e.Categories {
			readCats[c] = true
		}
	}
	streak := s.streakBonus()

	var scored []Score
	for _, a := range candidates {
		if readIDs[a.ID] {
			continue
		}
		scored = append(scored, s.scoreArticle(a, catPrefs, sourcePrefs, readCats, streak))
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored
}

func (s *Scorer) scoreArticle(
	a news.Article,
	catPrefs map[classify.Category]categoryPreference,
	sourcePrefs map[string]float64,
	readCats map[classify.Category]bool,
	streakBonus float64,
) Score {
	score := 0.0
	var reasons []string

	// Category affinity: each matched category contributes independently.
	topCategory := classify.Category("")
	topCategoryScore := 0.0
	for _, cat := range a.Categories {
		pref, ok := catPrefs[cat]
		if !ok {
			continue
		}
		catScore := pref.weight*categoryWeightFactor + pref.recentBoost*recentBoostFactor
		score += catScore
		if catScore > topCategoryScore {
			topCategory = cat
			topCategoryScore = catScore
		}
	}
	if topCategoryScore > 5 {
		reasons = append(reasons, fmt.Sprintf("Matches your interest in %s", topCategory))
	}

	// Source affinity.
	if weight, ok := sourcePrefs[a.Source]; ok {
		sourceScore := weight * sourceWeightFactor
		score += sourceScore
		if sourceScore > 3 {
			reasons = append(reasons, fmt.Sprintf("From %s, a source you read often", a.Source))
		}
	}

	// Freshness.
	recency := s.recencyBonus(a.PublishedAt)
	score += recency
	if recency > 5 {
		reasons = append(reasons, "Recently published")
	}

	// Exploration nudge once there is enough history to know what is new.
	diversity := 0.0
	if len(s.history) > 5 {
		for _, cat := range a.Categories {
			if !readCats[cat] {
				diversity = diversityBonus
				break
			}
		}
	}
	score += diversity
	if diversity > 0 {
		reasons = append(reasons, "Explores new topics for you")
	}

	score += streakBonus

	if len(reasons) == 0 {
		reasons = append(reasons, "Recommended based on your reading profile")
	}

	if score > maxScore {
		score = maxScore
	}
	return Score{Article: a, Score: score, Reasons: reasons}
}

func (s *Scorer) categoryPreferences() map[classify.Category]categoryPreference {
	weekAgo := s.now.Add(-7 * 24 * time.Hour).UnixMilli()

	counts := make(map[classify.Category]int)
	recentCounts := make(map[classify.Category]int)
	recentReads := 0

	for _, e := range s.history {
		recent := e.Timestamp > weekAgo
		if recent {
			recentReads++
		}
		for _, cat := range e.Categories {
			counts[cat]++
			if recent {
				recentCounts[cat]++
			}
		}
	}

	total := len(s.history)
	prefs := make(map[classify.Category]categoryPreference, len(counts))
	for cat, count := range counts {
		pref := categoryPreference{weight: float64(count) / float64(total)}
		if recentReads > 0 {
			pref.recentBoost = float64(recentCounts[cat]) / float64(recentReads)
		}
		prefs[cat] = pref
	}
	return prefs
}

func (s *Scorer) sourcePreferences() map[string]float64 {
	counts := make(map[string]int)
	for _, e := range s.history {
		counts[e.Source]++
	}

	total := len(s.history)
	prefs := make(map[string]float64, len(counts))
	for source, count := range counts {
		prefs[source] = float64(count) / float64(total)
	}
	return prefs
}

// recencyBonus rewards fresh articles on strictly-less-than hour
// thresholds.
func (s *Scorer) recencyBonus(publishedAt time.Time) float64 {
	hours := s.now.Sub(publishedAt).Hours()
	switch {
	case hours < 6:
		return 10
	case hours < 24:
		return 7
	case hours < 48:
		return 4
	case hours < 72:
		return 2
	default:
		return 0
	}
}

// streakBonus nudges the reader to keep a streak alive: nothing more to
// gain once today has a read, a strong nudge when yesterday's streak is
// about to break, a small one otherwise.
func (s *Scorer) streakBonus() float64 {
	if len(s.history) == 0 {
		return 0
	}

	today := history.DateOf(s.now)
	yesterday := history.DateOf(s.now.AddDate(0, 0, -1))

	readToday := false
	readYesterday := false
	for _, e := range s.history {
		switch e.Date {
		case today:
			readToday = true
		case yesterday:
			readYesterday = true
		}
	}

	if readToday {
		return 0
	}
	if readYesterday {
		return streakContinueBonus
	}
	return streakRestartBonus
}
