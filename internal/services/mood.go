package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tahcohcat/calmkid/internal/database"
	"github.com/tahcohcat/calmkid/internal/models"
)

// MoodService is the append-only mood log. "Today" is the calendar day in
// the configured reference zone.
type MoodService struct {
	base
}

func NewMoodService(db *database.DB, opts Options) *MoodService {
	return &MoodService{base: newBase(db, opts)}
}

// RecordMood appends an entry. A zero at means now.
func (s *MoodService) RecordMood(ctx context.Context, userID, label string, at time.Time) (*models.MoodEntry, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	mood, err := models.ParseMood(label)
	if err != nil {
		return nil, err
	}
	if at.IsZero() {
		at = s.now()
	}

	entry := &models.MoodEntry{UserID: userID, Mood: mood, CreatedAt: at.UTC()}

	ctx, cancel := s.bounded(ctx)
	defer cancel()

	res, err := s.db.ExecContext(ctx, `INSERT INTO mood_logs (user_id, mood, created_at) VALUES (?, ?, ?)`,
		entry.UserID, entry.Mood, entry.CreatedAt)
	if err != nil {
		return nil, storeError("record mood", err)
	}
	if entry.ID, err = res.LastInsertId(); err != nil {
		return nil, storeError("record mood", err)
	}

	s.log.WithUser(userID).Debug(fmt.Sprintf("mood %s logged", mood))
	return entry, nil
}

// TodayMood returns the latest mood logged during today's calendar day.
// ok is false when nothing was logged.
func (s *MoodService) TodayMood(ctx context.Context, userID string, today time.Time) (mood models.Mood, ok bool, err error) {
	if err := requireUser(userID); err != nil {
		return "", false, err
	}
	if today.IsZero() {
		today = s.now()
	}
	start := startOfDay(today, s.opts.Location)
	end := start.AddDate(0, 0, 1)

	ctx, cancel := s.bounded(ctx)
	defer cancel()

	err = s.db.GetContext(ctx, &mood, `
		SELECT mood FROM mood_logs
		WHERE user_id = ? AND created_at >= ? AND created_at < ?
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`, userID, start.UTC(), end.UTC())
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, storeError("today mood", err)
	}
	return mood, true, nil
}

// History lists entries in [from, to), newest first.
func (s *MoodService) History(ctx context.Context, userID string, from, to time.Time) ([]models.MoodEntry, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	ctx, cancel := s.bounded(ctx)
	defer cancel()

	entries := []models.MoodEntry{}
	err := s.db.SelectContext(ctx, &entries, `
		SELECT id, user_id, mood, created_at FROM mood_logs
		WHERE user_id = ? AND created_at >= ? AND created_at < ?
		ORDER BY created_at DESC, id DESC
	`, userID, from.UTC(), to.UTC())
	if err != nil {
		return nil, storeError("mood history", err)
	}
	return entries, nil
}
