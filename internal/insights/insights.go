// Package insights derives reading stats, streaks, and badges from the
// local reading history.
package insights

import (
	"sort"
	"time"

	"github.com/kindlingnews/kindling/internal/classify"
	"github.com/kindlingnews/kindling/internal/history"
)

// Badge is a fixed achievement evaluated against the history. Badges are
// independent booleans with no unlock ordering.
type Badge struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Earned      bool   `json:"earned"`
}

// CategoryCount pairs a category with its read count.
type CategoryCount struct {
	Category classify.Category `json:"category"`
	Count    int               `json:"count"`
}

// Stats aggregates the reading history for display.
type Stats struct {
	TotalArticlesRead int             `json:"totalArticlesRead"`
	CurrentStreak     int             `json:"currentStreak"`
	LongestStreak     int             `json:"longestStreak"`
	ArticlesThisWeek  int             `json:"articlesThisWeek"`
	ArticlesThisMonth int             `json:"articlesThisMonth"`
	TopCategories     []CategoryCount `json:"topCategories"`
	ReadingHistory    []history.Entry `json:"readingHistory"`
	LastReadDate      string          `json:"lastReadDate,omitempty"`
	Badges            []Badge         `json:"badges"`
}

const historyDisplayLimit = 50

// Compute derives Stats from the history at the given time.
func Compute(entries []history.Entry, now time.Time) Stats {
	current, longest := Streaks(entries, now)

	weekAgo := now.Add(-7 * 24 * time.Hour).UnixMilli()
	monthAgo := now.Add(-30 * 24 * time.Hour).UnixMilli()

	week, month := 0, 0
	catCounts := make(map[classify.Category]int)
	var catOrder []classify.Category
	for _, e := range entries {
		if e.Timestamp > weekAgo {
			week++
		}
		if e.Timestamp > monthAgo {
			month++
		}
		for _, cat := range e.Categories {
			if catCounts[cat] == 0 {
				catOrder = append(catOrder, cat)
			}
			catCounts[cat]++
		}
	}

	top := make([]CategoryCount, 0, len(catOrder))
	for _, cat := range catOrder {
		top = append(top, CategoryCount{Category: cat, Count: catCounts[cat]})
	}
	sort.SliceStable(top, func(i, j int) bool { return top[i].Count > top[j].Count })
	if len(top) > 5 {
		top = top[:5]
	}

	recent := entries
	if len(recent) > historyDisplayLimit {
		recent = recent[:historyDisplayLimit]
	}

	lastRead := ""
	if len(entries) > 0 {
		lastRead = entries[0].Date
	}

	return Stats{
		TotalArticlesRead: len(entries),
		CurrentStreak:     current,
		LongestStreak:     longest,
		ArticlesThisWeek:  week,
		ArticlesThisMonth: month,
		TopCategories:     top,
		ReadingHistory:    recent,
		LastReadDate:      lastRead,
		Badges:            Badges(len(entries), current, longest, week),
	}
}

// Streaks returns the current and longest run of consecutive calendar
// days with at least one read. The current streak is zero unless the most
// recent read was today or yesterday.
func Streaks(entries []history.Entry, now time.Time) (current, longest int) {
	if len(entries) == 0 {
		return 0, 0
	}

	seen := make(map[string]bool)
	var dates []string
	for _, e := range entries {
		if !seen[e.Date] {
			seen[e.Date] = true
			dates = append(dates, e.Date)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))

	today := history.DateOf(now)
	yesterday := history.DateOf(now.AddDate(0, 0, -1))

	if dates[0] == today || dates[0] == yesterday {
		current = 1
		for i := 1; i < len(dates); i++ {
			if dayGap(dates[i-1], dates[i]) == 1 {
				current++
			} else {
				break
			}
		}
	}

	longest = 1
	run := 1
	for i := 1; i < len(dates); i++ {
		if dayGap(dates[i-1], dates[i]) == 1 {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 1
		}
	}
	if current > longest {
		longest = current
	}
	return current, longest
}

// dayGap returns the whole-day difference between two YYYY-MM-DD dates,
// later first. Unparseable dates yield a gap that breaks the run.
func dayGap(later, earlier string) int {
	a, err1 := time.Parse("2006-01-02", later)
	b, err2 := time.Parse("2006-01-02", earlier)
	if err1 != nil || err2 != nil {
		return -1
	}
	return int(a.Sub(b).Hours() / 24)
}

// Badges evaluates the fixed badge thresholds.
func Badges(totalRead, currentStreak, longestStreak, weeklyRead int) []Badge {
	return []Badge{
		{ID: "first_article", Name: "First Steps", Description: "Read your first article", Earned: totalRead >= 1},
		{ID: "streak_3", Name: "Consistent Reader", Description: "Maintain a 3-day reading streak", Earned: currentStreak >= 3},
		{ID: "streak_7", Name: "Week Warrior", Description: "Maintain a 7-day reading streak", Earned: currentStreak >= 7},
		{ID: "streak_30", Name: "Monthly Master", Description: "Maintain a 30-day reading streak", Earned: longestStreak >= 30},
		{ID: "articles_10", Name: "Getting Started", Description: "Read 10 articles", Earned: totalRead >= 10},
		{ID: "articles_50", Name: "Knowledgeable", Description: "Read 50 articles", Earned: totalRead >= 50},
		{ID: "articles_100", Name: "News Enthusiast", Description: "Read 100 articles", Earned: totalRead >= 100},
		{ID: "weekly_10", Name: "Weekly Reader", Description: "Read 10 articles in a week", Earned: weeklyRead >= 10},
	}
}
