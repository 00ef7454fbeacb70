package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/tahcohcat/calmkid/internal/database"
	"github.com/tahcohcat/calmkid/internal/models"
)

// LedgerService owns every change to a user's star balance. Writes for one
// user are serialised; different users never wait on each other.
type LedgerService struct {
	base
	locks *userLocks
}

func NewLedgerService(db *database.DB, opts Options) *LedgerService {
	return &LedgerService{base: newBase(db, opts), locks: newUserLocks()}
}

// Balance returns the current stars, 0 when the user has no profile yet.
func (s *LedgerService) Balance(ctx context.Context, userID string) (int, error) {
	if err := requireUser(userID); err != nil {
		return 0, err
	}
	ctx, cancel := s.bounded(ctx)
	defer cancel()

	var stars int
	err := s.db.GetContext(ctx, &stars, `SELECT stars FROM profiles WHERE id = ?`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, storeError("get balance", err)
	}
	return stars, nil
}

// Credit adds amount stars and returns the new balance.
func (s *LedgerService) Credit(ctx context.Context, userID string, amount int) (int, error) {
	var balance int
	err := s.inUserTx(ctx, "credit", userID, func(tx *sqlx.Tx) error {
		var err error
		balance, err = s.credit(ctx, tx, userID, amount, models.ReasonGrant, "")
		return err
	})
	if err != nil {
		return 0, err
	}
	s.notify(userID, balance, amount, models.ReasonGrant, "")
	return balance, nil
}

// Debit removes amount stars, failing with InsufficientFundsError when the
// balance at write time is too low.
func (s *LedgerService) Debit(ctx context.Context, userID string, amount int) (int, error) {
	var balance int
	err := s.inUserTx(ctx, "debit", userID, func(tx *sqlx.Tx) error {
		var err error
		balance, err = s.debit(ctx, tx, userID, amount, models.ReasonSpend, "")
		return err
	})
	if err != nil {
		return 0, err
	}
	s.notify(userID, balance, -amount, models.ReasonSpend, "")
	return balance, nil
}

// Entries lists committed balance changes, newest first.
func (s *LedgerService) Entries(ctx context.Context, userID string, limit int) ([]models.LedgerEntry, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 20
	}
	ctx, cancel := s.bounded(ctx)
	defer cancel()

	entries := []models.LedgerEntry{}
	err := s.db.SelectContext(ctx, &entries, `
		SELECT id, user_id, delta, balance_after, reason, ref_id, created_at
		FROM ledger_entries
		WHERE user_id = ?
		ORDER BY id DESC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, storeError("list ledger entries", err)
	}
	return entries, nil
}

// inUserTx holds the user's lock for the whole transaction so that the read
// of the balance and the write that depends on it cannot interleave with
// another writer for the same user.
func (s *LedgerService) inUserTx(ctx context.Context, op, userID string, fn func(tx *sqlx.Tx) error) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	unlock := s.locks.lock(userID)
	defer unlock()

	ctx, cancel := s.bounded(ctx)
	defer cancel()

	if err := s.db.WithTx(ctx, fn); err != nil {
		err = storeError(op, err)
		if errors.Is(err, models.ErrStoreUnavailable) {
			s.log.WithUser(userID).WithError(err).Warn(op + " failed")
		}
		return err
	}
	return nil
}

func (s *LedgerService) credit(ctx context.Context, tx *sqlx.Tx, userID string, amount int, reason, ref string) (int, error) {
	if amount < 0 {
		return 0, models.Invalid("amount", "credit must not be negative, got %d", amount)
	}
	now := s.now()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO profiles (id, stars, created_at, updated_at)
		VALUES (?, 0, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, userID, now, now); err != nil {
		return 0, fmt.Errorf("ensure profile: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE profiles SET stars = stars + ?, updated_at = ? WHERE id = ?`, amount, now, userID); err != nil {
		return 0, fmt.Errorf("add stars: %w", err)
	}

	var balance int
	if err := tx.GetContext(ctx, &balance, `SELECT stars FROM profiles WHERE id = ?`, userID); err != nil {
		return 0, fmt.Errorf("read balance: %w", err)
	}

	if err := s.appendEntry(ctx, tx, userID, amount, balance, reason, ref); err != nil {
		return 0, err
	}
	return balance, nil
}

func (s *LedgerService) debit(ctx context.Context, tx *sqlx.Tx, userID string, amount int, reason, ref string) (int, error) {
	if amount < 0 {
		return 0, models.Invalid("amount", "debit must not be negative, got %d", amount)
	}

	var balance int
	err := tx.GetContext(ctx, &balance, `SELECT stars FROM profiles WHERE id = ?`, userID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("read balance: %w", err)
	}
	if amount == 0 {
		return balance, nil
	}

	// The WHERE clause re-checks sufficiency inside the write itself.
	res, err := tx.ExecContext(ctx, `
		UPDATE profiles SET stars = stars - ?, updated_at = ?
		WHERE id = ? AND stars >= ?
	`, amount, s.now(), userID, amount)
	if err != nil {
		return 0, fmt.Errorf("remove stars: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("remove stars: %w", err)
	}
	if n == 0 {
		return 0, &models.InsufficientFundsError{Balance: balance, Amount: amount}
	}

	balance -= amount
	if err := s.appendEntry(ctx, tx, userID, -amount, balance, reason, ref); err != nil {
		return 0, err
	}
	return balance, nil
}

func (s *LedgerService) appendEntry(ctx context.Context, tx *sqlx.Tx, userID string, delta, balance int, reason, ref string) error {
	if delta == 0 {
		return nil
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO ledger_entries (user_id, delta, balance_after, reason, ref_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, userID, delta, balance, reason, ref, s.now())
	if err != nil {
		return fmt.Errorf("append ledger entry: %w", err)
	}
	return nil
}

func (s *LedgerService) notify(userID string, balance, delta int, reason, ref string) {
	if delta == 0 {
		return
	}
	s.log.WithUser(userID).Debug(fmt.Sprintf("stars %+d (%s) -> %d", delta, reason, balance))
	s.opts.Notifier.Notify(userID, Event{
		Type:   EventStarsChanged,
		UserID: userID,
		Stars:  balance,
		Delta:  delta,
		Reason: reason,
		RefID:  ref,
		At:     s.now(),
	})
}
