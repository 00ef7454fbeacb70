package services

import (
	"context"
	"errors"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tahcohcat/calmkid/internal/models"
	"github.com/tahcohcat/calmkid/internal/ranker"
)

const DefaultSuggestions = 3

// Home is everything the child's home screen shows.
type Home struct {
	Profile           *models.Profile      `json:"profile,omitempty"`
	TodayMood         models.Mood          `json:"today_mood,omitempty"`
	Suggestions       []models.CatalogItem `json:"suggestions"`
	ChallengeProgress float64              `json:"challenge_progress"`
	Stars             int                  `json:"stars"`
}

// CatalogEntry is a ranked catalog item with the user's badges.
type CatalogEntry struct {
	models.CatalogItem
	Recommended bool `json:"recommended"`
	Completed   bool `json:"completed"`
}

type CatalogView struct {
	Kind     models.ItemKind `json:"kind"`
	Mood     models.Mood     `json:"mood,omitempty"`
	Items    []CatalogEntry  `json:"items"`
	Progress float64         `json:"progress"`
	Stars    int             `json:"stars"`
}

// DashboardService composes the read side for the child-facing screens.
type DashboardService struct {
	profiles *ProfileService
	moods    *MoodService
	catalog  *CatalogService
	progress *ProgressService
	limit    int
}

func NewDashboardService(profiles *ProfileService, moods *MoodService, catalog *CatalogService, progress *ProgressService, suggestions int) *DashboardService {
	if suggestions <= 0 {
		suggestions = DefaultSuggestions
	}
	return &DashboardService{profiles: profiles, moods: moods, catalog: catalog, progress: progress, limit: suggestions}
}

// load fetches the profile (may be missing), today's mood and a catalog
// concurrently.
func (s *DashboardService) load(ctx context.Context, userID string, kind models.ItemKind, now time.Time) (*models.Profile, models.Mood, []models.CatalogItem, error) {
	var (
		profile *models.Profile
		mood    models.Mood
		items   []models.CatalogItem
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.profiles.Get(gctx, userID)
		if errors.Is(err, models.ErrNotFound) {
			return nil
		}
		profile = p
		return err
	})
	g.Go(func() error {
		m, _, err := s.moods.TodayMood(gctx, userID, now)
		mood = m
		return err
	})
	g.Go(func() error {
		var err error
		items, err = s.catalog.Items(gctx, kind)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, "", nil, err
	}
	return profile, mood, items, nil
}

func (s *DashboardService) Home(ctx context.Context, userID string, now time.Time) (*Home, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	var (
		profile  *models.Profile
		mood     models.Mood
		items    []models.CatalogItem
		progress float64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		profile, mood, items, err = s.load(gctx, userID, models.KindActivity, now)
		return err
	})
	g.Go(func() error {
		var err error
		progress, err = s.progress.ProgressRatio(gctx, userID, models.KindChallenge)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	home := &Home{Profile: profile, TodayMood: mood, ChallengeProgress: progress}
	var age *int
	if profile != nil {
		age = profile.Age
		home.Stars = profile.Stars
	}
	home.Suggestions = ranker.TopSuggestions(items, mood, age, s.limit)
	return home, nil
}

// Catalog ranks the kind's catalog for the user's mood and age and marks
// recommended and completed entries.
func (s *DashboardService) Catalog(ctx context.Context, userID string, kind models.ItemKind, now time.Time) (*CatalogView, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	var (
		profile *models.Profile
		mood    models.Mood
		items   []models.CatalogItem
		done    []string
		ratio   float64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		profile, mood, items, err = s.load(gctx, userID, kind, now)
		return err
	})
	g.Go(func() error {
		var err error
		done, err = s.progress.CompletedIDs(gctx, userID, kind)
		return err
	})
	g.Go(func() error {
		var err error
		ratio, err = s.progress.ProgressRatio(gctx, userID, kind)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var age *int
	view := &CatalogView{Kind: kind, Mood: mood, Progress: ratio}
	if profile != nil {
		age = profile.Age
		view.Stars = profile.Stars
	}

	sort.Strings(done)
	ranked := ranker.Rank(items, mood, age)
	view.Items = make([]CatalogEntry, 0, len(ranked))
	for _, it := range ranked {
		i := sort.SearchStrings(done, it.ID)
		view.Items = append(view.Items, CatalogEntry{
			CatalogItem: it,
			Recommended: ranker.Matches(it, mood),
			Completed:   i < len(done) && done[i] == it.ID,
		})
	}
	return view, nil
}
