package models

import "time"

// CompletionRecord is durable evidence that a user finished an item.
type CompletionRecord struct {
	ID           int64     `json:"id" db:"id"`
	UserID       string    `json:"user_id" db:"user_id"`
	ItemID       string    `json:"item_id" db:"item_id"`
	Kind         ItemKind  `json:"kind" db:"kind"`
	StarsAwarded int       `json:"stars_awarded" db:"stars_awarded"`
	CompletedAt  time.Time `json:"completed_at" db:"completed_at"`
}

type CompletionResult struct {
	Record     CompletionRecord `json:"record"`
	NewBalance int              `json:"new_balance"`
}

// RewardUnlock marks a reward as permanently owned.
type RewardUnlock struct {
	ID         int64     `json:"id" db:"id"`
	UserID     string    `json:"user_id" db:"user_id"`
	RewardID   string    `json:"reward_id" db:"reward_id"`
	Cost       int       `json:"cost" db:"cost"`
	UnlockedAt time.Time `json:"unlocked_at" db:"unlocked_at"`
}

type PurchaseResult struct {
	Unlock     RewardUnlock `json:"unlock"`
	NewBalance int          `json:"new_balance"`
}

// Ledger entry reasons
const (
	ReasonActivity  = "activity"
	ReasonChallenge = "challenge"
	ReasonReward    = "reward"
	ReasonGrant     = "grant"
	ReasonSpend     = "spend"
)

// LedgerEntry is one committed balance change.
type LedgerEntry struct {
	ID           int64     `json:"id" db:"id"`
	UserID       string    `json:"user_id" db:"user_id"`
	Delta        int       `json:"delta" db:"delta"`
	BalanceAfter int       `json:"balance_after" db:"balance_after"`
	Reason       string    `json:"reason" db:"reason"`
	RefID        string    `json:"ref_id" db:"ref_id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
