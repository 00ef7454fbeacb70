package services

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/tahcohcat/calmkid/internal/database"
	"github.com/tahcohcat/calmkid/internal/models"
)

// RewardService spends stars on rewards. An unlocked reward is owned forever.
type RewardService struct {
	base
	ledger  *LedgerService
	catalog *CatalogService
}

func NewRewardService(db *database.DB, ledger *LedgerService, catalog *CatalogService, opts Options) *RewardService {
	return &RewardService{base: newBase(db, opts), ledger: ledger, catalog: catalog}
}

// Purchase debits the reward cost and records the unlock atomically.
func (s *RewardService) Purchase(ctx context.Context, userID, rewardID string) (*models.PurchaseResult, error) {
	reward, err := s.catalog.Reward(ctx, rewardID)
	if err != nil {
		return nil, err
	}

	unlock := models.RewardUnlock{UserID: userID, RewardID: reward.ID, Cost: reward.Cost, UnlockedAt: s.now()}
	var balance int

	err = s.ledger.inUserTx(ctx, "purchase reward", userID, func(tx *sqlx.Tx) error {
		var n int
		if err := tx.GetContext(ctx, &n, `SELECT COUNT(*) FROM user_rewards WHERE user_id = ? AND reward_id = ?`, userID, reward.ID); err != nil {
			return fmt.Errorf("check unlock: %w", err)
		}
		if n > 0 {
			return fmt.Errorf("reward %s: %w", reward.ID, models.ErrAlreadyOwned)
		}

		var err error
		if balance, err = s.ledger.debit(ctx, tx, userID, reward.Cost, models.ReasonReward, reward.ID); err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx, `
			INSERT INTO user_rewards (user_id, reward_id, cost, unlocked_at) VALUES (?, ?, ?, ?)
		`, userID, reward.ID, reward.Cost, unlock.UnlockedAt)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("reward %s: %w", reward.ID, models.ErrAlreadyOwned)
			}
			return fmt.Errorf("insert unlock: %w", err)
		}
		unlock.ID, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return nil, err
	}

	s.ledger.notify(userID, balance, -reward.Cost, models.ReasonReward, reward.ID)
	s.opts.Notifier.Notify(userID, Event{Type: EventRewardUnlocked, UserID: userID, Stars: balance, RefID: reward.ID, At: unlock.UnlockedAt})
	s.log.WithUser(userID).Success(fmt.Sprintf("unlocked %q for %d stars", reward.Title, reward.Cost))

	return &models.PurchaseResult{Unlock: unlock, NewBalance: balance}, nil
}

// Owned lists the reward ids the user has unlocked.
func (s *RewardService) Owned(ctx context.Context, userID string) ([]string, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	ctx, cancel := s.bounded(ctx)
	defer cancel()

	ids := []string{}
	if err := s.db.SelectContext(ctx, &ids, `SELECT reward_id FROM user_rewards WHERE user_id = ? ORDER BY unlocked_at, id`, userID); err != nil {
		return nil, storeError("list unlocks", err)
	}
	return ids, nil
}
