package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/tahcohcat/calmkid/internal/models"
)

func TestChallengeCompletesOnce(t *testing.T) {
	f := newFixture(t, nil)
	f.importCatalog(t)
	ctx := context.Background()
	p := f.svc.Progress

	res, err := p.RecordCompletion(ctx, "u", "ch1", models.KindChallenge, 10)
	if err != nil {
		t.Fatalf("RecordCompletion: %v", err)
	}
	if res.NewBalance != 10 || res.Record.StarsAwarded != 10 {
		t.Fatalf("unexpected result %+v", res)
	}

	if _, err := p.RecordCompletion(ctx, "u", "ch1", models.KindChallenge, 10); !errors.Is(err, models.ErrAlreadyCompleted) {
		t.Fatalf("expected ErrAlreadyCompleted, got %v", err)
	}
	if bal, _ := f.svc.Ledger.Balance(ctx, "u"); bal != 10 {
		t.Fatalf("balance = %d after rejected repeat, want 10", bal)
	}

	done, err := p.HasCompleted(ctx, "u", "ch1", models.KindChallenge)
	if err != nil || !done {
		t.Fatalf("HasCompleted = %v, %v", done, err)
	}
	if done, _ := p.HasCompleted(ctx, "other", "ch1", models.KindChallenge); done {
		t.Fatal("completion is per user")
	}
}

func TestConcurrentChallengeTapsCreditOnce(t *testing.T) {
	f := newFixture(t, nil)
	f.importCatalog(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	ok := 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Progress.RecordCompletion(ctx, "u", "ch2", models.KindChallenge, 15)
			if err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			} else if !errors.Is(err, models.ErrAlreadyCompleted) {
				t.Errorf("RecordCompletion: %v", err)
			}
		}()
	}
	wg.Wait()

	if ok != 1 {
		t.Fatalf("%d completions succeeded, want 1", ok)
	}
	if bal, _ := f.svc.Ledger.Balance(ctx, "u"); bal != 15 {
		t.Fatalf("balance = %d, want 15", bal)
	}
}

func TestActivitiesRepeat(t *testing.T) {
	f := newFixture(t, nil)
	f.importCatalog(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := f.svc.Progress.RecordCompletion(ctx, "u", "a", models.KindActivity, 5); err != nil {
			t.Fatalf("RecordCompletion #%d: %v", i, err)
		}
	}
	if bal, _ := f.svc.Ledger.Balance(ctx, "u"); bal != 15 {
		t.Fatalf("balance = %d, want 15", bal)
	}

	ratio, err := f.svc.Progress.ProgressRatio(ctx, "u", models.KindActivity)
	if err != nil {
		t.Fatalf("ProgressRatio: %v", err)
	}
	if want := 1.0 / 3.0; ratio != want {
		t.Fatalf("ratio = %v, want %v (distinct items only)", ratio, want)
	}

	recent, err := f.svc.Progress.Recent(ctx, "u", 2)
	if err != nil || len(recent) != 2 || recent[0].Kind != models.KindActivity {
		t.Fatalf("Recent = %+v, %v", recent, err)
	}
}

func TestProgressRatio(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	if r, err := f.svc.Progress.ProgressRatio(ctx, "u", models.KindChallenge); err != nil || r != 0 {
		t.Fatalf("empty catalog ratio = %v, %v", r, err)
	}

	f.importCatalog(t)
	f.svc.Progress.RecordCompletion(ctx, "u", "ch1", models.KindChallenge, 10)
	if r, _ := f.svc.Progress.ProgressRatio(ctx, "u", models.KindChallenge); r != 0.5 {
		t.Fatalf("ratio = %v, want 0.5", r)
	}

	// Completions of items no longer in the catalog do not count.
	f.svc.Progress.RecordCompletion(ctx, "u", "retired", models.KindChallenge, 1)
	if r, _ := f.svc.Progress.ProgressRatio(ctx, "u", models.KindChallenge); r != 0.5 {
		t.Fatalf("ratio = %v, want 0.5", r)
	}

	ids, err := f.svc.Progress.CompletedIDs(ctx, "u", models.KindChallenge)
	if err != nil || len(ids) != 2 || ids[0] != "ch1" {
		t.Fatalf("CompletedIDs = %v, %v", ids, err)
	}
}

func TestRecordCompletionValidation(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	if _, err := f.svc.Progress.RecordCompletion(ctx, "u", "x", models.KindActivity, -1); !errors.Is(err, models.ErrValidation) {
		t.Fatalf("negative reward: %v", err)
	}
	if _, err := f.svc.Progress.RecordCompletion(ctx, "u", "x", models.ItemKind("quest"), 1); !errors.Is(err, models.ErrValidation) {
		t.Fatalf("unknown kind: %v", err)
	}
}
