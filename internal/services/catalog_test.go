package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/tahcohcat/calmkid/internal/models"
)

func TestCatalogImport(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	sum, err := f.svc.Catalog.Import(ctx, strings.NewReader(fixtureCatalog))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if sum.Activities != 3 || sum.Challenges != 2 || sum.Rewards != 2 {
		t.Fatalf("unexpected summary %+v", sum)
	}

	acts, err := f.svc.Catalog.Activities(ctx)
	if err != nil || len(acts) != 3 {
		t.Fatalf("Activities = %v, %v", acts, err)
	}
	if acts[0].ID != "a" || acts[2].MinAge == nil || *acts[2].MinAge != 8 || acts[0].MinAge != nil {
		t.Fatalf("unexpected activities %+v", acts)
	}

	ch, err := f.svc.Catalog.Challenge(ctx, "ch2")
	if err != nil || !ch.IsWeekly || ch.MoodTag != models.MoodCalm {
		t.Fatalf("Challenge = %+v, %v", ch, err)
	}
	if _, err := f.svc.Catalog.Activity(ctx, "ch2"); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("challenge id looked up as activity: %v", err)
	}

	// Re-importing updates in place.
	if _, err := f.svc.Catalog.Import(ctx, strings.NewReader(`
activities:
  - {id: a, title: Big Balloon, mood_tag: angry, star_reward: 6}
`)); err != nil {
		t.Fatalf("re-Import: %v", err)
	}
	a, _ := f.svc.Catalog.Activity(ctx, "a")
	if a.Title != "Big Balloon" || a.StarReward != 6 || a.MoodTag != models.MoodAngry {
		t.Fatalf("unexpected update %+v", a)
	}
	if acts, _ := f.svc.Catalog.Activities(ctx); len(acts) != 3 || acts[0].ID != "a" {
		t.Fatalf("upsert changed catalog order: %+v", acts)
	}
}

func TestCatalogImportRejectsInvalid(t *testing.T) {
	const good = "  - {id: ok, title: Fine, mood_tag: Happy}\n"
	tests := []struct {
		name string
		doc  string
	}{
		{"unknown mood tag", "activities:\n" + good + "  - {id: x, title: X, mood_tag: Hyper}\n"},
		{"negative reward", "activities:\n" + good + "challenges:\n  - {id: x, title: X, mood_tag: Any, star_reward: -1}\n"},
		{"inverted ages", "activities:\n" + good + "  - {id: x, title: X, mood_tag: Calm, min_age: 9, max_age: 5}\n"},
		{"missing id", "activities:\n" + good + "  - {title: X, mood_tag: Calm}\n"},
		{"reward cost", "activities:\n" + good + "rewards:\n  - {id: r, title: R, cost: -5}\n"},
		{"not yaml", "activities: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil)
			ctx := context.Background()

			if _, err := f.svc.Catalog.Import(ctx, strings.NewReader(tt.doc)); !errors.Is(err, models.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if acts, _ := f.svc.Catalog.Activities(ctx); len(acts) != 0 {
				t.Fatalf("partial import left %d activities", len(acts))
			}
		})
	}
}
