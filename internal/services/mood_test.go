package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/tahcohcat/calmkid/internal/models"
)

func TestTodayMoodLatestWins(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	if _, err := f.svc.Moods.RecordMood(ctx, "u", "Happy", day.Add(9*time.Hour)); err != nil {
		t.Fatalf("RecordMood: %v", err)
	}
	if _, err := f.svc.Moods.RecordMood(ctx, "u", "sad", day.Add(14*time.Hour)); err != nil {
		t.Fatalf("RecordMood: %v", err)
	}

	mood, ok, err := f.svc.Moods.TodayMood(ctx, "u", day.Add(20*time.Hour))
	if err != nil || !ok || mood != models.MoodSad {
		t.Fatalf("TodayMood = %q, %v, %v", mood, ok, err)
	}

	if _, ok, _ := f.svc.Moods.TodayMood(ctx, "u", day.AddDate(0, 0, 1)); ok {
		t.Fatal("yesterday's mood must not count for today")
	}
	if _, ok, _ := f.svc.Moods.TodayMood(ctx, "other", day); ok {
		t.Fatal("moods are per user")
	}
}

func TestTodayMoodSameInstantUsesInsertionOrder(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	at := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

	f.svc.Moods.RecordMood(ctx, "u", "Calm", at)
	f.svc.Moods.RecordMood(ctx, "u", "Anxious", at)

	if mood, _, _ := f.svc.Moods.TodayMood(ctx, "u", at); mood != models.MoodAnxious {
		t.Fatalf("TodayMood = %q, want Anxious", mood)
	}
}

func TestTodayMoodUsesReferenceZone(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	f := newFixture(t, tokyo)
	ctx := context.Background()

	// 23:30 UTC on the 9th is 08:30 on the 10th in JST.
	at := time.Date(2026, 3, 9, 23, 30, 0, 0, time.UTC)
	f.svc.Moods.RecordMood(ctx, "u", "Angry", at)

	if mood, ok, _ := f.svc.Moods.TodayMood(ctx, "u", time.Date(2026, 3, 10, 12, 0, 0, 0, tokyo)); !ok || mood != models.MoodAngry {
		t.Fatalf("expected Angry on the 10th in JST, got %q %v", mood, ok)
	}
	if _, ok, _ := f.svc.Moods.TodayMood(ctx, "u", time.Date(2026, 3, 9, 12, 0, 0, 0, tokyo)); ok {
		t.Fatal("entry belongs to the 10th in JST, not the 9th")
	}
}

func TestRecordMoodRejectsUnknownLabel(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.svc.Moods.RecordMood(context.Background(), "u", "Hapy", time.Time{})
	if !errors.Is(err, models.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !strings.Contains(err.Error(), "Happy") {
		t.Fatalf("expected a suggestion in %q", err)
	}

	if _, err := f.svc.Moods.RecordMood(context.Background(), "u", "Any", time.Time{}); !errors.Is(err, models.ErrValidation) {
		t.Fatalf("Any is not a mood a child can log: %v", err)
	}
}

func TestMoodHistory(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	for i, m := range []string{"Happy", "Sad", "Calm"} {
		f.svc.Moods.RecordMood(ctx, "u", m, base.AddDate(0, 0, i))
	}

	entries, err := f.svc.Moods.History(ctx, "u", base.AddDate(0, 0, 1), base.AddDate(0, 0, 3))
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(entries) != 2 || entries[0].Mood != models.MoodCalm || entries[1].Mood != models.MoodSad {
		t.Fatalf("unexpected history %+v", entries)
	}
}
