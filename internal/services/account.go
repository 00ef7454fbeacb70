package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/tahcohcat/calmkid/internal/database"
	"github.com/tahcohcat/calmkid/internal/models"
)

// AccountService manages sign-in accounts. Each account owns exactly one
// child profile with the same id.
type AccountService struct {
	base
}

func NewAccountService(db *database.DB, opts Options) *AccountService {
	return &AccountService{base: newBase(db, opts)}
}

// Register creates the account and its empty profile together.
func (s *AccountService) Register(ctx context.Context, req models.RegisterRequest) (*models.Account, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	account := &models.Account{
		ID:        uuid.NewString(),
		Email:     req.Email,
		CreatedAt: s.now(),
	}
	if err := account.SetPassword(req.Password); err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	ctx, cancel := s.bounded(ctx)
	defer cancel()

	err := s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		var n int
		if err := tx.GetContext(ctx, &n, `SELECT COUNT(*) FROM accounts WHERE email = ?`, account.Email); err != nil {
			return fmt.Errorf("check email: %w", err)
		}
		if n > 0 {
			return fmt.Errorf("%s: %w", account.Email, models.ErrEmailTaken)
		}

		_, err := tx.NamedExecContext(ctx, `
			INSERT INTO accounts (id, email, password_hash, created_at)
			VALUES (:id, :email, :password_hash, :created_at)
		`, account)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%s: %w", account.Email, models.ErrEmailTaken)
			}
			return fmt.Errorf("insert account: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO profiles (id, name, stars, created_at, updated_at) VALUES (?, ?, 0, ?, ?)
		`, account.ID, req.Name, account.CreatedAt, account.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert profile: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, storeError("register", err)
	}

	s.log.WithUser(account.ID).Info("account registered")
	return account, nil
}

// Authenticate checks the credentials and stamps the login time.
func (s *AccountService) Authenticate(ctx context.Context, req models.LoginRequest) (*models.Account, error) {
	account, err := s.byEmail(ctx, req.Email)
	if errors.Is(err, models.ErrNotFound) {
		return nil, models.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !account.CheckPassword(req.Password) {
		return nil, models.ErrInvalidCredentials
	}

	now := s.now()
	ctx, cancel := s.bounded(ctx)
	defer cancel()
	if _, err := s.db.ExecContext(ctx, `UPDATE accounts SET last_login_at = ? WHERE id = ?`, now, account.ID); err != nil {
		s.log.WithUser(account.ID).WithError(err).Warn("failed to update last login")
	} else {
		account.LastLoginAt = &now
	}
	return account, nil
}

// Get retrieves an account by id without its password hash.
func (s *AccountService) Get(ctx context.Context, id string) (*models.Account, error) {
	ctx, cancel := s.bounded(ctx)
	defer cancel()

	var account models.Account
	err := s.db.GetContext(ctx, &account, `SELECT id, email, created_at, last_login_at FROM accounts WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("account %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, storeError("get account", err)
	}
	return &account, nil
}

// ChangePassword requires the current password.
func (s *AccountService) ChangePassword(ctx context.Context, id, current, next string) error {
	if len(next) < models.MinPasswordLength {
		return models.Invalid("password", "must be at least %d characters", models.MinPasswordLength)
	}

	ctx, cancel := s.bounded(ctx)
	defer cancel()

	var account models.Account
	if err := s.db.GetContext(ctx, &account, `SELECT id, password_hash FROM accounts WHERE id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.ErrInvalidCredentials
		}
		return storeError("get account", err)
	}
	if !account.CheckPassword(current) {
		return models.ErrInvalidCredentials
	}
	if err := account.SetPassword(next); err != nil {
		return fmt.Errorf("failed to hash new password: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `UPDATE accounts SET password_hash = ? WHERE id = ?`, account.Password, id); err != nil {
		return storeError("change password", err)
	}
	return nil
}

func (s *AccountService) byEmail(ctx context.Context, email string) (*models.Account, error) {
	ctx, cancel := s.bounded(ctx)
	defer cancel()

	var account models.Account
	err := s.db.GetContext(ctx, &account, `
		SELECT id, email, password_hash, created_at, last_login_at FROM accounts WHERE email = lower(trim(?))
	`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, storeError("get account", err)
	}
	return &account, nil
}
