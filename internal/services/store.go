package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/tahcohcat/calmkid/internal/database"
	"github.com/tahcohcat/calmkid/internal/logger"
	"github.com/tahcohcat/calmkid/internal/models"
)

const DefaultTimeout = 5 * time.Second

// Options are shared by every service.
type Options struct {
	// Timeout bounds each store interaction.
	Timeout time.Duration
	// Location is the reference zone for calendar days.
	Location *time.Location
	Now      func() time.Time
	Notifier Notifier
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.Location == nil {
		o.Location = time.UTC
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Notifier == nil {
		o.Notifier = NopNotifier{}
	}
	return o
}

type base struct {
	db   *database.DB
	opts Options
	log  *logger.Log
}

func newBase(db *database.DB, opts Options) base {
	return base{db: db, opts: opts.withDefaults(), log: logger.New()}
}

func (b base) bounded(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, b.opts.Timeout)
}

func (b base) now() time.Time {
	return b.opts.Now().UTC()
}

// startOfDay is midnight of t's calendar day in loc.
func startOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

var domainErrors = []error{
	models.ErrValidation,
	models.ErrInsufficientFunds,
	models.ErrAlreadyCompleted,
	models.ErrAlreadyOwned,
	models.ErrInvalidState,
	models.ErrNotFound,
	models.ErrStoreUnavailable,
	models.ErrEmailTaken,
	models.ErrInvalidCredentials,
}

// storeError passes domain errors through and wraps everything else, driver
// failures and deadline expiry alike, as StoreUnavailableError.
func storeError(op string, err error) error {
	if err == nil {
		return nil
	}
	for _, d := range domainErrors {
		if errors.Is(err, d) {
			return err
		}
	}
	return &models.StoreUnavailableError{Op: op, Err: err}
}

func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.ExtendedCode == sqlite3.ErrConstraintUnique || se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// userLocks hands out one mutex per user id and forgets it once unused.
type userLocks struct {
	mu    sync.Mutex
	locks map[string]*userLock
}

type userLock struct {
	mu   sync.Mutex
	refs int
}

func newUserLocks() *userLocks {
	return &userLocks{locks: make(map[string]*userLock)}
}

func (l *userLocks) lock(userID string) (unlock func()) {
	l.mu.Lock()
	ul, ok := l.locks[userID]
	if !ok {
		ul = &userLock{}
		l.locks[userID] = ul
	}
	ul.refs++
	l.mu.Unlock()

	ul.mu.Lock()
	return func() {
		ul.mu.Unlock()
		l.mu.Lock()
		ul.refs--
		if ul.refs == 0 {
			delete(l.locks, userID)
		}
		l.mu.Unlock()
	}
}

func requireUser(userID string) error {
	if userID == "" {
		return models.Invalid("user_id", "is required")
	}
	return nil
}
