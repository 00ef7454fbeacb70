package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/tahcohcat/calmkid/internal/database"
	"github.com/tahcohcat/calmkid/internal/models"
)

const maxNoteLength = 2000

// JournalService stores parent-mode behaviour notes and triggers.
type JournalService struct {
	base
}

func NewJournalService(db *database.DB, opts Options) *JournalService {
	return &JournalService{base: newBase(db, opts)}
}

func (s *JournalService) AddNote(ctx context.Context, userID, note, severity string) (*models.BehaviorLog, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	note = strings.TrimSpace(note)
	if note == "" {
		return nil, models.Invalid("note", "is required")
	}
	if len(note) > maxNoteLength {
		return nil, models.Invalid("note", "is longer than %d characters", maxNoteLength)
	}
	sev, err := models.ParseSeverity(severity)
	if err != nil {
		return nil, err
	}

	entry := &models.BehaviorLog{UserID: userID, Note: note, Severity: sev, CreatedAt: s.now()}

	ctx, cancel := s.bounded(ctx)
	defer cancel()

	res, err := s.db.ExecContext(ctx, `INSERT INTO behavior_logs (user_id, note, severity, created_at) VALUES (?, ?, ?, ?)`,
		entry.UserID, entry.Note, entry.Severity, entry.CreatedAt)
	if err != nil {
		return nil, storeError("add note", err)
	}
	if entry.ID, err = res.LastInsertId(); err != nil {
		return nil, storeError("add note", err)
	}
	return entry, nil
}

func (s *JournalService) Notes(ctx context.Context, userID string, limit int) ([]models.BehaviorLog, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}
	ctx, cancel := s.bounded(ctx)
	defer cancel()

	logs := []models.BehaviorLog{}
	err := s.db.SelectContext(ctx, &logs, `
		SELECT id, user_id, note, severity, created_at FROM behavior_logs
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, storeError("list notes", err)
	}
	return logs, nil
}

// canonicalTrigger maps a common trigger to its listed spelling and keeps
// custom triggers as typed.
func canonicalTrigger(name string) string {
	name = strings.Join(strings.Fields(name), " ")
	for _, common := range models.CommonTriggers {
		if strings.EqualFold(name, common) {
			return common
		}
	}
	return name
}

// LogTriggers stores one row per distinct trigger name.
func (s *JournalService) LogTriggers(ctx context.Context, userID string, names []string) ([]models.TriggerLog, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	var clean []string
	for _, n := range names {
		c := canonicalTrigger(n)
		if c == "" || seen[strings.ToLower(c)] {
			continue
		}
		seen[strings.ToLower(c)] = true
		clean = append(clean, c)
	}
	if len(clean) == 0 {
		return nil, models.Invalid("triggers", "at least one trigger is required")
	}

	now := s.now()
	logs := make([]models.TriggerLog, 0, len(clean))

	ctx, cancel := s.bounded(ctx)
	defer cancel()

	err := s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		for _, name := range clean {
			res, err := tx.ExecContext(ctx, `INSERT INTO triggers (user_id, trigger_name, created_at) VALUES (?, ?, ?)`, userID, name, now)
			if err != nil {
				return fmt.Errorf("insert trigger: %w", err)
			}
			id, err := res.LastInsertId()
			if err != nil {
				return fmt.Errorf("trigger id: %w", err)
			}
			logs = append(logs, models.TriggerLog{ID: id, UserID: userID, TriggerName: name, CreatedAt: now})
		}
		return nil
	})
	if err != nil {
		return nil, storeError("log triggers", err)
	}
	return logs, nil
}

func (s *JournalService) Triggers(ctx context.Context, userID string, limit int) ([]models.TriggerLog, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 5
	}
	ctx, cancel := s.bounded(ctx)
	defer cancel()

	logs := []models.TriggerLog{}
	err := s.db.SelectContext(ctx, &logs, `
		SELECT id, user_id, trigger_name, created_at FROM triggers
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, storeError("list triggers", err)
	}
	return logs, nil
}
