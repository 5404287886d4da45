package recommend

import (
	"sort"

	"github.com/kindlingnews/kindling/internal/classify"
)

// CategoryCount pairs a category with how many recommended articles
// carry it.
type CategoryCount struct {
	Category classify.Category `json:"category"`
	Count    int               `json:"count"`
}

// InsightsSummary explains a recommendation batch: the three most common
// reasons, the mean score, and the category spread.
type InsightsSummary struct {
	TopReasons           []string        `json:"topReasons"`
	AvgScore             float64         `json:"avgScore"`
	CategoryDistribution []CategoryCount `json:"categoryDistribution"`
}

// Insights summarizes a batch of recommendations. Ties are broken by
// first-encountered order so the output is deterministic.
func Insights(recommendations []Score) InsightsSummary {
	reasonCounts := make(map[string]int)
	var reasonOrder []string
	total := 0.0

	catCounts := make(map[classify.Category]int)
	var catOrder []classify.Category

	for _, rec := range recommendations {
		total += rec.Score
		for _, reason := range rec.Reasons {
			if reasonCounts[reason] == 0 {
				reasonOrder = append(reasonOrder, reason)
			}
			reasonCounts[reason]++
		}
		for _, cat := range rec.Article.Categories {
			if catCounts[cat] == 0 {
				catOrder = append(catOrder, cat)
			}
			catCounts[cat]++
		}
	}

	topReasons := make([]string, len(reasonOrder))
	copy(topReasons, reasonOrder)
	sort.SliceStable(topReasons, func(i, j int) bool {
		return reasonCounts[topReasons[i]] > reasonCounts[topReasons[j]]
	})
	if len(topReasons) > 3 {
		topReasons = topReasons[:3]
	}

	distribution := make([]CategoryCount, 0, len(catOrder))
	for _, cat := range catOrder {
		distribution = append(distribution, CategoryCount{Category: cat, Count: catCounts[cat]})
	}
	sort.SliceStable(distribution, func(i, j int) bool {
		return distribution[i].Count > distribution[j].Count
	})

	avg := 0.0
	if len(recommendations) > 0 {
		avg = total / float64(len(recommendations))
	}

	return InsightsSummary{
		TopReasons:           topReasons,
		AvgScore:             avg,
		CategoryDistribution: distribution,
	}
}
