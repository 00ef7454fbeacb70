package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/tahcohcat/calmkid/internal/database"
	"github.com/tahcohcat/calmkid/internal/models"
)

const ReportDays = 7

// ReportService builds the parent-mode weekly summary.
type ReportService struct {
	base
	moods    *MoodService
	progress *ProgressService
}

func NewReportService(db *database.DB, moods *MoodService, progress *ProgressService, opts Options) *ReportService {
	return &ReportService{base: newBase(db, opts), moods: moods, progress: progress}
}

// Weekly covers the seven calendar days ending with now's day.
func (s *ReportService) Weekly(ctx context.Context, userID string, now time.Time) (*models.Report, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if now.IsZero() {
		now = s.now()
	}
	loc := s.opts.Location
	end := startOfDay(now, loc).AddDate(0, 0, 1)
	start := end.AddDate(0, 0, -ReportDays)

	report := &models.Report{UserID: userID, From: start.UTC(), To: end.UTC()}

	entries, err := s.moods.History(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}
	report.Days, report.DominantMood = bucketMoods(entries, start, loc)

	ctx, cancel := s.bounded(ctx)
	defer cancel()

	var top string
	err = s.db.GetContext(ctx, &top, `
		SELECT trigger_name FROM triggers
		WHERE user_id = ? AND created_at >= ? AND created_at < ?
		GROUP BY trigger_name
		ORDER BY COUNT(*) DESC, MAX(created_at) DESC
		LIMIT 1
	`, userID, start.UTC(), end.UTC())
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, storeError("top trigger", err)
	}
	report.TopTrigger = top

	if err := s.db.GetContext(ctx, &report.StarsEarned, `
		SELECT COALESCE(SUM(delta), 0) FROM ledger_entries
		WHERE user_id = ? AND delta > 0 AND created_at >= ? AND created_at < ?
	`, userID, start.UTC(), end.UTC()); err != nil {
		return nil, storeError("stars earned", err)
	}

	if err := s.db.GetContext(ctx, &report.ActivitiesFinished, `
		SELECT COUNT(*) FROM activity_logs
		WHERE user_id = ? AND completed_at >= ? AND completed_at < ?
	`, userID, start.UTC(), end.UTC()); err != nil {
		return nil, storeError("activities finished", err)
	}

	if report.ChallengeProgress, err = s.progress.ProgressRatio(ctx, userID, models.KindChallenge); err != nil {
		return nil, err
	}
	return report, nil
}

// bucketMoods counts entries per calendar day, oldest day first, and picks
// the most frequent mood (ties go to the earlier mood in models.Moods).
func bucketMoods(entries []models.MoodEntry, start time.Time, loc *time.Location) ([]models.DayMoods, models.Mood) {
	days := make([]models.DayMoods, ReportDays)
	index := make(map[string]int, ReportDays)
	for i := range days {
		d := start.AddDate(0, 0, i).Format("2006-01-02")
		days[i] = models.DayMoods{Date: d, Counts: map[models.Mood]int{}}
		index[d] = i
	}

	total := map[models.Mood]int{}
	for _, e := range entries {
		i, ok := index[e.CreatedAt.In(loc).Format("2006-01-02")]
		if !ok {
			continue
		}
		days[i].Counts[e.Mood]++
		total[e.Mood]++
	}

	var dominant models.Mood
	best := 0
	for _, m := range models.Moods {
		if total[m] > best {
			dominant, best = m, total[m]
		}
	}
	return days, dominant
}
