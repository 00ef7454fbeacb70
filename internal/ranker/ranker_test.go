package ranker

import (
	"reflect"
	"testing"

	"github.com/tahcohcat/calmkid/internal/models"
)

func intp(v int) *int { return &v }

func item(id string, mood models.Mood) models.CatalogItem {
	return models.CatalogItem{ID: id, Title: id, MoodTag: mood}
}

func ids(items []models.CatalogItem) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func TestRankMoodFirstStable(t *testing.T) {
	catalog := []models.CatalogItem{
		item("A", models.MoodCalm),
		item("B", models.MoodAngry),
		item("C", models.MoodCalm),
	}

	got := ids(Rank(catalog, models.MoodCalm, nil))
	want := []string{"A", "C", "B"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Rank=%v, want %v", got, want)
	}
}

func TestRankDoesNotMutateInput(t *testing.T) {
	catalog := []models.CatalogItem{
		item("A", models.MoodSad),
		item("B", models.MoodHappy),
	}
	before := ids(catalog)
	_ = Rank(catalog, models.MoodHappy, nil)
	if !reflect.DeepEqual(ids(catalog), before) {
		t.Fatalf("input reordered: %v", ids(catalog))
	}
}

func TestRankAnyIsNotAMatch(t *testing.T) {
	catalog := []models.CatalogItem{
		item("water", models.MoodAny),
		item("talk", models.MoodSad),
	}
	got := ids(Rank(catalog, models.MoodSad, nil))
	if !reflect.DeepEqual(got, []string{"talk", "water"}) {
		t.Fatalf("Rank=%v", got)
	}
}

func TestRankWithoutMoodKeepsOrder(t *testing.T) {
	catalog := []models.CatalogItem{
		item("A", models.MoodSad),
		item("B", models.MoodHappy),
		item("C", models.MoodSad),
	}
	got := ids(Rank(catalog, "", nil))
	if !reflect.DeepEqual(got, []string{"A", "B", "C"}) {
		t.Fatalf("Rank=%v", got)
	}
}

func TestRankAgeFilter(t *testing.T) {
	young := item("young", models.MoodCalm)
	young.MaxAge = intp(6)
	older := item("older", models.MoodCalm)
	older.MinAge = intp(8)
	open := item("open", models.MoodAngry)

	got := ids(Rank([]models.CatalogItem{young, older, open}, models.MoodCalm, intp(9)))
	if !reflect.DeepEqual(got, []string{"older", "open"}) {
		t.Fatalf("Rank=%v", got)
	}
}

func TestRankIdempotentAndLossless(t *testing.T) {
	catalog := []models.CatalogItem{
		item("1", models.MoodHappy),
		item("2", models.MoodAnxious),
		item("3", models.MoodHappy),
		item("4", models.MoodAny),
		item("5", models.MoodAnxious),
	}
	for _, mood := range append([]models.Mood{""}, models.Moods...) {
		once := Rank(catalog, mood, nil)
		twice := Rank(once, mood, nil)
		if !reflect.DeepEqual(ids(once), ids(twice)) {
			t.Fatalf("mood %q: not idempotent %v vs %v", mood, ids(once), ids(twice))
		}
		if len(once) != len(catalog) {
			t.Fatalf("mood %q: len=%d, want %d", mood, len(once), len(catalog))
		}
		seen := map[string]bool{}
		for _, it := range once {
			if seen[it.ID] {
				t.Fatalf("mood %q: duplicate %s", mood, it.ID)
			}
			seen[it.ID] = true
		}
	}
}

func TestTopSuggestions(t *testing.T) {
	catalog := []models.CatalogItem{
		item("a", models.MoodAnxious),
		item("b", models.MoodHappy),
		item("c", models.MoodAnxious),
		item("d", models.MoodAnxious),
		item("e", models.MoodAnxious),
	}

	got := ids(TopSuggestions(catalog, models.MoodAnxious, nil, 3))
	if !reflect.DeepEqual(got, []string{"a", "c", "d"}) {
		t.Fatalf("TopSuggestions=%v", got)
	}

	got = ids(TopSuggestions(catalog, models.MoodHappy, nil, 3))
	if !reflect.DeepEqual(got, []string{"b"}) {
		t.Fatalf("no backfill expected, got %v", got)
	}

	if got := TopSuggestions(catalog, "", nil, 3); len(got) != 0 {
		t.Fatalf("no mood should yield no suggestions, got %v", ids(got))
	}
	if got := TopSuggestions(catalog, models.MoodAnxious, nil, 0); len(got) != 0 {
		t.Fatalf("k=0 should yield no suggestions, got %v", ids(got))
	}
}
