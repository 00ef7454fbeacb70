package services

import (
	"context"
	"testing"
	"time"

	"github.com/tahcohcat/calmkid/internal/models"
)

func ids(items []models.CatalogItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestHome(t *testing.T) {
	f := newFixture(t, nil)
	f.importCatalog(t)
	ctx := context.Background()

	home, err := f.svc.Dashboard.Home(ctx, "u", time.Time{})
	if err != nil {
		t.Fatalf("Home: %v", err)
	}
	if home.Profile != nil || home.TodayMood != "" || len(home.Suggestions) != 0 {
		t.Fatalf("expected an empty home, got %+v", home)
	}

	f.svc.Moods.RecordMood(ctx, "u", "angry", time.Time{})
	home, _ = f.svc.Dashboard.Home(ctx, "u", time.Time{})
	if got := ids(home.Suggestions); len(got) != 2 || got[0] != "a" || got[1] != "c" {
		t.Fatalf("suggestions without a profile = %v", got)
	}

	if _, err := f.svc.Profiles.Setup(ctx, "u", models.ProfileSetup{Name: "Mia", Age: 6, Region: "North", School: "Oak"}); err != nil {
		t.Fatalf("Setup: %v", err)
	}
	f.svc.Progress.RecordCompletion(ctx, "u", "ch1", models.KindChallenge, 10)

	home, err = f.svc.Dashboard.Home(ctx, "u", time.Time{})
	if err != nil {
		t.Fatalf("Home: %v", err)
	}
	if got := ids(home.Suggestions); len(got) != 1 || got[0] != "a" {
		t.Fatalf("suggestions for a six year old = %v", got)
	}
	if home.Stars != 10 || home.ChallengeProgress != 0.5 || home.TodayMood != models.MoodAngry {
		t.Fatalf("unexpected home %+v", home)
	}
}

func TestCatalogView(t *testing.T) {
	f := newFixture(t, nil)
	f.importCatalog(t)
	ctx := context.Background()

	f.svc.Moods.RecordMood(ctx, "u", "Calm", time.Time{})
	f.svc.Progress.RecordCompletion(ctx, "u", "ch1", models.KindChallenge, 10)

	view, err := f.svc.Dashboard.Catalog(ctx, "u", models.KindChallenge, time.Time{})
	if err != nil {
		t.Fatalf("Catalog: %v", err)
	}
	if len(view.Items) != 2 {
		t.Fatalf("got %d items", len(view.Items))
	}
	first, second := view.Items[0], view.Items[1]
	if first.ID != "ch2" || !first.Recommended || first.Completed {
		t.Fatalf("first = %+v", first)
	}
	if second.ID != "ch1" || second.Recommended || !second.Completed {
		t.Fatalf("second = %+v", second)
	}
	if view.Progress != 0.5 || view.Stars != 10 || view.Mood != models.MoodCalm {
		t.Fatalf("unexpected view %+v", view)
	}
}
