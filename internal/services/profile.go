package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tahcohcat/calmkid/internal/database"
	"github.com/tahcohcat/calmkid/internal/models"
)

type ProfileService struct {
	base
}

func NewProfileService(db *database.DB, opts Options) *ProfileService {
	return &ProfileService{base: newBase(db, opts)}
}

// Create makes an empty profile with no stars. An existing profile is kept.
func (s *ProfileService) Create(ctx context.Context, userID, name string) (*models.Profile, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	ctx, cancel := s.bounded(ctx)
	defer cancel()

	now := s.now()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profiles (id, name, stars, created_at, updated_at)
		VALUES (?, ?, 0, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, userID, name, now, now)
	if err != nil {
		return nil, storeError("create profile", err)
	}
	return s.get(ctx, userID)
}

// Setup fills in the profile form. The star balance is never touched here.
func (s *ProfileService) Setup(ctx context.Context, userID string, setup models.ProfileSetup) (*models.Profile, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if err := setup.Validate(); err != nil {
		return nil, err
	}
	ctx, cancel := s.bounded(ctx)
	defer cancel()

	now := s.now()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profiles (id, name, age, region, school, stars, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, 0, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			age = excluded.age,
			region = excluded.region,
			school = excluded.school,
			updated_at = excluded.updated_at
	`, userID, setup.Name, setup.Age, setup.Region, setup.School, now, now)
	if err != nil {
		return nil, storeError("setup profile", err)
	}

	s.log.WithUser(userID).Info(fmt.Sprintf("profile set up for %s (age %d)", setup.Name, setup.Age))
	return s.get(ctx, userID)
}

// Get returns the profile or ErrNotFound.
func (s *ProfileService) Get(ctx context.Context, userID string) (*models.Profile, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	ctx, cancel := s.bounded(ctx)
	defer cancel()
	return s.get(ctx, userID)
}

func (s *ProfileService) get(ctx context.Context, userID string) (*models.Profile, error) {
	var p models.Profile
	err := s.db.GetContext(ctx, &p, `
		SELECT id, name, age, stars, region, school, created_at, updated_at
		FROM profiles WHERE id = ?
	`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("profile %s: %w", userID, models.ErrNotFound)
	}
	if err != nil {
		return nil, storeError("get profile", err)
	}
	return &p, nil
}
