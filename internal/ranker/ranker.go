// Package ranker orders catalog items for a child's mood and age.
package ranker

import "github.com/tahcohcat/calmkid/internal/models"

// Matches reports whether an item targets mood exactly. The "Any" tag is not
// a match for any mood.
func Matches(item models.CatalogItem, mood models.Mood) bool {
	return mood != "" && item.MoodTag == mood
}

// Eligible keeps the items whose age bounds admit age. A nil age keeps all.
func Eligible(items []models.CatalogItem, age *int) []models.CatalogItem {
	out := make([]models.CatalogItem, 0, len(items))
	for _, it := range items {
		if age == nil || it.EligibleFor(*age) {
			out = append(out, it)
		}
	}
	return out
}

// Rank filters by age then moves mood-matching items ahead of the rest,
// keeping catalog order inside each group. An empty mood leaves the filtered
// order as is. The input slice is never modified.
func Rank(items []models.CatalogItem, mood models.Mood, age *int) []models.CatalogItem {
	eligible := Eligible(items, age)
	if mood == "" {
		return eligible
	}

	out := make([]models.CatalogItem, 0, len(eligible))
	var rest []models.CatalogItem
	for _, it := range eligible {
		if Matches(it, mood) {
			out = append(out, it)
		} else {
			rest = append(rest, it)
		}
	}
	return append(out, rest...)
}

// TopSuggestions returns at most k eligible items matching mood. Non-matching
// items are never used to fill the list.
func TopSuggestions(items []models.CatalogItem, mood models.Mood, age *int, k int) []models.CatalogItem {
	out := []models.CatalogItem{}
	if k <= 0 || mood == "" {
		return out
	}
	for _, it := range Rank(items, mood, age) {
		if !Matches(it, mood) || len(out) == k {
			break
		}
		out = append(out, it)
	}
	return out
}
