package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/jmoiron/sqlx"

	"github.com/tahcohcat/calmkid/internal/database"
	"github.com/tahcohcat/calmkid/internal/models"
)

type completionTable struct {
	logs    string // completion rows
	itemCol string // column holding the catalog id
	catalog string // catalog table
	reason  string
}

func tableFor(kind models.ItemKind) (completionTable, error) {
	switch kind {
	case models.KindActivity:
		return completionTable{logs: "activity_logs", itemCol: "activity_id", catalog: "activities", reason: models.ReasonActivity}, nil
	case models.KindChallenge:
		return completionTable{logs: "user_challenges", itemCol: "challenge_id", catalog: "challenges", reason: models.ReasonChallenge}, nil
	default:
		return completionTable{}, models.Invalid("kind", "%q is neither activity nor challenge", kind)
	}
}

// ProgressService records completions and answers "what has this user done".
// RecordCompletion is the only way stars are earned.
type ProgressService struct {
	base
	ledger *LedgerService
}

func NewProgressService(db *database.DB, ledger *LedgerService, opts Options) *ProgressService {
	return &ProgressService{base: newBase(db, opts), ledger: ledger}
}

func (s *ProgressService) HasCompleted(ctx context.Context, userID, itemID string, kind models.ItemKind) (bool, error) {
	t, err := tableFor(kind)
	if err != nil {
		return false, err
	}
	if err := requireUser(userID); err != nil {
		return false, err
	}
	ctx, cancel := s.bounded(ctx)
	defer cancel()

	var n int
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE user_id = ? AND %s = ?`, t.logs, t.itemCol)
	if err := s.db.GetContext(ctx, &n, query, userID, itemID); err != nil {
		return false, storeError("has completed", err)
	}
	return n > 0, nil
}

// RecordCompletion writes the completion and credits starReward in one
// transaction. A challenge can be completed once per user; activities repeat.
func (s *ProgressService) RecordCompletion(ctx context.Context, userID, itemID string, kind models.ItemKind, starReward int) (*models.CompletionResult, error) {
	t, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	if itemID == "" {
		return nil, models.Invalid("item_id", "is required")
	}
	if starReward < 0 {
		return nil, models.Invalid("star_reward", "must not be negative, got %d", starReward)
	}

	record := models.CompletionRecord{
		UserID:       userID,
		ItemID:       itemID,
		Kind:         kind,
		StarsAwarded: starReward,
		CompletedAt:  s.now(),
	}
	var balance int

	err = s.ledger.inUserTx(ctx, "record completion", userID, func(tx *sqlx.Tx) error {
		if kind == models.KindChallenge {
			var n int
			if err := tx.GetContext(ctx, &n, `SELECT COUNT(*) FROM user_challenges WHERE user_id = ? AND challenge_id = ?`, userID, itemID); err != nil {
				return fmt.Errorf("check challenge: %w", err)
			}
			if n > 0 {
				return fmt.Errorf("challenge %s: %w", itemID, models.ErrAlreadyCompleted)
			}
		}

		query := fmt.Sprintf(`INSERT INTO %s (user_id, %s, stars_awarded, completed_at) VALUES (?, ?, ?, ?)`, t.logs, t.itemCol)
		res, err := tx.ExecContext(ctx, query, userID, itemID, starReward, record.CompletedAt)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("challenge %s: %w", itemID, models.ErrAlreadyCompleted)
			}
			return fmt.Errorf("insert completion: %w", err)
		}
		if record.ID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("completion id: %w", err)
		}

		balance, err = s.ledger.credit(ctx, tx, userID, starReward, t.reason, itemID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.ledger.notify(userID, balance, starReward, t.reason, itemID)
	s.log.WithUser(userID).Success(fmt.Sprintf("%s %s completed, +%d stars (total %d)", kind, itemID, starReward, balance))
	return &models.CompletionResult{Record: record, NewBalance: balance}, nil
}

// ProgressRatio is distinct completed catalog items over catalog size, 0 for
// an empty catalog.
func (s *ProgressService) ProgressRatio(ctx context.Context, userID string, kind models.ItemKind) (float64, error) {
	t, err := tableFor(kind)
	if err != nil {
		return 0, err
	}
	if err := requireUser(userID); err != nil {
		return 0, err
	}
	ctx, cancel := s.bounded(ctx)
	defer cancel()

	var total int
	if err := s.db.GetContext(ctx, &total, fmt.Sprintf(`SELECT COUNT(*) FROM %s`, t.catalog)); err != nil {
		return 0, storeError("count catalog", err)
	}
	if total == 0 {
		return 0, nil
	}

	var done int
	query := fmt.Sprintf(`
		SELECT COUNT(DISTINCT l.%[2]s)
		FROM %[1]s l
		JOIN %[3]s c ON c.id = l.%[2]s
		WHERE l.user_id = ?
	`, t.logs, t.itemCol, t.catalog)
	if err := s.db.GetContext(ctx, &done, query, userID); err != nil {
		return 0, storeError("count completions", err)
	}

	ratio := float64(done) / float64(total)
	if ratio > 1 {
		ratio = 1
	}
	return ratio, nil
}

// CompletedIDs lists the distinct items of kind the user has finished.
func (s *ProgressService) CompletedIDs(ctx context.Context, userID string, kind models.ItemKind) ([]string, error) {
	t, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	ctx, cancel := s.bounded(ctx)
	defer cancel()

	ids := []string{}
	query := fmt.Sprintf(`SELECT DISTINCT %s FROM %s WHERE user_id = ? ORDER BY %s`, t.itemCol, t.logs, t.itemCol)
	if err := s.db.SelectContext(ctx, &ids, query, userID); err != nil {
		return nil, storeError("list completions", err)
	}
	return ids, nil
}

// Recent merges activity and challenge completions, newest first.
func (s *ProgressService) Recent(ctx context.Context, userID string, limit int) ([]models.CompletionRecord, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 10
	}
	ctx, cancel := s.bounded(ctx)
	defer cancel()

	var all []models.CompletionRecord
	for _, kind := range []models.ItemKind{models.KindActivity, models.KindChallenge} {
		t, _ := tableFor(kind)
		var rows []models.CompletionRecord
		query := fmt.Sprintf(`
			SELECT id, user_id, %s AS item_id, stars_awarded, completed_at
			FROM %s
			WHERE user_id = ?
			ORDER BY completed_at DESC, id DESC
			LIMIT ?
		`, t.itemCol, t.logs)
		if err := s.db.SelectContext(ctx, &rows, query, userID, limit); err != nil {
			return nil, storeError("recent completions", err)
		}
		for i := range rows {
			rows[i].Kind = kind
		}
		all = append(all, rows...)
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].CompletedAt.After(all[j].CompletedAt)
	})
	if len(all) > limit {
		all = all[:limit]
	}
	if all == nil {
		all = []models.CompletionRecord{}
	}
	return all, nil
}
