// Package session is the countdown for a single activity. Time is fed in
// through Tick by whatever owns the clock; the session itself never sleeps.
package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/tahcohcat/calmkid/internal/models"
)

type State string

const (
	StateReady     State = "ready"
	StateRunning   State = "running"
	StatePaused    State = "paused"
	StateExpired   State = "expired"
	StateClaimed   State = "claimed"
	StateCancelled State = "cancelled"
)

// Terminal states accept no further transitions except Expired -> Claimed.
func (s State) Terminal() bool {
	switch s {
	case StateExpired, StateClaimed, StateCancelled:
		return true
	}
	return false
}

// Completer records the finished activity and credits its stars.
type Completer interface {
	RecordCompletion(ctx context.Context, userID, itemID string, kind models.ItemKind, starReward int) (*models.CompletionResult, error)
}

type Snapshot struct {
	ID        string  `json:"id"`
	UserID    string  `json:"user_id"`
	Activity  string  `json:"activity_id"`
	State     State   `json:"state"`
	Remaining int     `json:"remaining_seconds"`
	Total     int     `json:"total_seconds"`
	Progress  float64 `json:"progress"`
	Display   string  `json:"display"`
}

type Session struct {
	mu        sync.Mutex
	id        string
	userID    string
	activity  models.CatalogItem
	total     int
	remaining int
	state     State
	claiming  bool
}

func New(id, userID string, activity models.CatalogItem) *Session {
	total := activity.DurationSeconds
	if total < 0 {
		total = 0
	}
	return &Session{
		id:        id,
		userID:    userID,
		activity:  activity,
		total:     total,
		remaining: total,
		state:     StateReady,
	}
}

func (s *Session) ID() string     { return s.id }
func (s *Session) UserID() string { return s.userID }

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start runs a ready or paused session. A zero-length activity expires at once.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateReady && s.state != StatePaused {
		return &models.InvalidStateError{Op: "start", State: string(s.state)}
	}
	s.state = StateRunning
	if s.remaining == 0 {
		s.state = StateExpired
	}
	return nil
}

func (s *Session) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRunning {
		return &models.InvalidStateError{Op: "pause", State: string(s.state)}
	}
	s.state = StatePaused
	return nil
}

// Tick counts down elapsed seconds while running and returns the new state.
// It is a no-op in every other state.
func (s *Session) Tick(elapsed int) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRunning || elapsed <= 0 {
		return s.state
	}
	s.remaining -= elapsed
	if s.remaining <= 0 {
		s.remaining = 0
		s.state = StateExpired
	}
	return s.state
}

// Cancel discards a session that has not finished. Nothing is recorded.
func (s *Session) Cancel() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Terminal() {
		return &models.InvalidStateError{Op: "cancel", State: string(s.state)}
	}
	s.state = StateCancelled
	return nil
}

// Claim records the completion exactly once. Only an expired session can be
// claimed. If the completer fails the session stays expired and may be
// claimed again.
func (s *Session) Claim(ctx context.Context, c Completer) (*models.CompletionResult, error) {
	s.mu.Lock()
	if s.state != StateExpired || s.claiming {
		st := s.state
		if s.claiming {
			st = "being claimed"
		}
		s.mu.Unlock()
		return nil, &models.InvalidStateError{Op: "claim", State: string(st)}
	}
	s.claiming = true
	s.mu.Unlock()

	res, err := c.RecordCompletion(ctx, s.userID, s.activity.ID, models.KindActivity, s.activity.StarReward)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.claiming = false
	if err != nil {
		return nil, err
	}
	s.state = StateClaimed
	return res, nil
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	progress := 1.0
	if s.total > 0 {
		progress = 1 - float64(s.remaining)/float64(s.total)
	}
	return Snapshot{
		ID:        s.id,
		UserID:    s.userID,
		Activity:  s.activity.ID,
		State:     s.state,
		Remaining: s.remaining,
		Total:     s.total,
		Progress:  progress,
		Display:   FormatRemaining(s.remaining),
	}
}

// FormatRemaining renders seconds as m:ss.
func FormatRemaining(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
