package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/tahcohcat/calmkid/internal/models"
)

func TestLedgerCreditDebit(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	l := f.svc.Ledger

	if bal, err := l.Credit(ctx, "u", 10); err != nil || bal != 10 {
		t.Fatalf("Credit = %d, %v", bal, err)
	}

	_, err := l.Debit(ctx, "u", 15)
	var funds *models.InsufficientFundsError
	if !errors.As(err, &funds) || !errors.Is(err, models.ErrInsufficientFunds) {
		t.Fatalf("expected InsufficientFundsError, got %v", err)
	}
	if funds.Balance != 10 || funds.Amount != 15 {
		t.Fatalf("unexpected error detail %+v", funds)
	}
	if bal, _ := l.Balance(ctx, "u"); bal != 10 {
		t.Fatalf("balance changed after failed debit: %d", bal)
	}

	if bal, err := l.Debit(ctx, "u", 10); err != nil || bal != 0 {
		t.Fatalf("Debit = %d, %v", bal, err)
	}
}

func TestLedgerValidation(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	if _, err := f.svc.Ledger.Credit(ctx, "u", -1); !errors.Is(err, models.ErrValidation) {
		t.Fatalf("negative credit: %v", err)
	}
	if _, err := f.svc.Ledger.Debit(ctx, "u", -1); !errors.Is(err, models.ErrValidation) {
		t.Fatalf("negative debit: %v", err)
	}
	if _, err := f.svc.Ledger.Credit(ctx, "", 1); !errors.Is(err, models.ErrValidation) {
		t.Fatalf("empty user: %v", err)
	}
	if bal, err := f.svc.Ledger.Balance(ctx, "nobody"); err != nil || bal != 0 {
		t.Fatalf("Balance of unknown user = %d, %v", bal, err)
	}
	if bal, err := f.svc.Ledger.Debit(ctx, "nobody", 0); err != nil || bal != 0 {
		t.Fatalf("Debit(0) = %d, %v", bal, err)
	}
}

func TestLedgerConcurrentMutations(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	l := f.svc.Ledger

	if _, err := l.Credit(ctx, "u", 50); err != nil {
		t.Fatalf("Credit: %v", err)
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	debited := 0
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if _, err := l.Credit(ctx, "u", 1); err != nil {
				t.Errorf("Credit: %v", err)
			}
		}()
		go func() {
			defer wg.Done()
			_, err := l.Debit(ctx, "u", 5)
			switch {
			case err == nil:
				mu.Lock()
				debited += 5
				mu.Unlock()
			case errors.Is(err, models.ErrInsufficientFunds):
			default:
				t.Errorf("Debit: %v", err)
			}
		}()
	}
	wg.Wait()

	bal, err := l.Balance(ctx, "u")
	if err != nil {
		t.Fatalf("Balance: %v", err)
	}
	if want := 50 + 20 - debited; bal != want {
		t.Fatalf("balance = %d, want %d", bal, want)
	}
	if bal < 0 {
		t.Fatalf("balance went negative: %d", bal)
	}

	entries, err := l.Entries(ctx, "u", 1000)
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	sum := 0
	for _, e := range entries {
		sum += e.Delta
	}
	if sum != bal {
		t.Fatalf("ledger entries sum to %d, balance is %d", sum, bal)
	}
	if entries[0].BalanceAfter != bal {
		t.Fatalf("latest entry balance_after = %d, want %d", entries[0].BalanceAfter, bal)
	}
}

func TestLedgerNotifiesAfterCommit(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	f.svc.Ledger.Credit(ctx, "u", 3)
	f.svc.Ledger.Debit(ctx, "u", 10)

	events := f.notes.Events()
	if len(events) != 1 {
		t.Fatalf("expected one event for the successful credit, got %+v", events)
	}
	if e := events[0]; e.Type != EventStarsChanged || e.Stars != 3 || e.Delta != 3 {
		t.Fatalf("unexpected event %+v", e)
	}
}

func TestUsersDoNotShareBalances(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for _, u := range []string{"a", "b", "c"} {
		wg.Add(1)
		go func(u string) {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				f.svc.Ledger.Credit(ctx, u, 2)
			}
		}(u)
	}
	wg.Wait()

	for _, u := range []string{"a", "b", "c"} {
		if bal, _ := f.svc.Ledger.Balance(ctx, u); bal != 20 {
			t.Fatalf("%s balance = %d, want 20", u, bal)
		}
	}
}
