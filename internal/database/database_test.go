package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewDB(filepath.Join(t.TempDir(), "calmkid.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestNewDBCreatesSchema(t *testing.T) {
	db := openTestDB(t)

	for _, table := range []string{"profiles", "mood_logs", "activities", "challenges", "rewards",
		"activity_logs", "user_challenges", "user_rewards", "ledger_entries", "behavior_logs", "triggers", "accounts"} {
		var n int
		if err := db.Get(&n, `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, table); err != nil {
			t.Fatalf("lookup %s: %v", table, err)
		}
		if n != 1 {
			t.Fatalf("table %s missing", table)
		}
	}
}

func TestBalanceCheckConstraint(t *testing.T) {
	db := openTestDB(t)
	now := time.Now().UTC()
	if _, err := db.Exec(`INSERT INTO profiles (id, stars, created_at, updated_at) VALUES ('u1', 3, ?, ?)`, now, now); err != nil {
		t.Fatalf("insert profile: %v", err)
	}
	if _, err := db.Exec(`UPDATE profiles SET stars = stars - 5 WHERE id = 'u1'`); err == nil {
		t.Fatalf("expected CHECK (stars >= 0) to reject negative balance")
	}
}

func TestWithTxRollsBack(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC()
	boom := errors.New("boom")

	err := db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO mood_logs (user_id, mood, created_at) VALUES ('u1', 'Happy', ?)`, now); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithTx err=%v, want boom", err)
	}

	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM mood_logs`); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Fatalf("rows=%d after rollback, want 0", n)
	}

	err = db.WithTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO mood_logs (user_id, mood, created_at) VALUES ('u1', 'Calm', ?)`, now)
		return err
	})
	if err != nil {
		t.Fatalf("WithTx commit: %v", err)
	}
	if err := db.Get(&n, `SELECT COUNT(*) FROM mood_logs`); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("rows=%d after commit, want 1", n)
	}
}
