package api

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tahcohcat/calmkid/internal/logger"
	"github.com/tahcohcat/calmkid/internal/models"
	"github.com/tahcohcat/calmkid/internal/services"
	"github.com/tahcohcat/calmkid/internal/session"
)

// timers owns the live activity sessions. A running session has exactly one
// goroutine ticking it once per interval; it exits when the session stops
// running and is restarted on resume.
type timers struct {
	mu       sync.Mutex
	sessions map[string]*entry
	every    time.Duration
	notifier services.Notifier
	done     chan struct{}
	wg       sync.WaitGroup
	log      *logger.Log
}

func newTimers(every time.Duration, notifier services.Notifier) *timers {
	if every <= 0 {
		every = time.Second
	}
	if notifier == nil {
		notifier = services.NopNotifier{}
	}
	return &timers{
		sessions: make(map[string]*entry),
		every:    every,
		notifier: notifier,
		done:     make(chan struct{}),
		log:      logger.New(),
	}
}

type entry struct {
	s       *session.Session
	ticking bool // guarded by timers.mu
}

func (t *timers) start(userID string, activity models.CatalogItem) (*session.Session, error) {
	s := session.New(uuid.NewString(), userID, activity)
	if err := s.Start(); err != nil {
		return nil, err
	}

	e := &entry{s: s}
	t.mu.Lock()
	t.sessions[s.ID()] = e
	if s.State() == session.StateRunning {
		t.spawn(e)
	}
	t.mu.Unlock()

	if s.State() == session.StateExpired {
		t.expired(s)
	}
	return s, nil
}

// spawn must be called with t.mu held.
func (t *timers) spawn(e *entry) {
	if e.ticking {
		return
	}
	e.ticking = true
	t.wg.Add(1)
	go t.run(e)
}

func (t *timers) run(e *entry) {
	defer t.wg.Done()

	ticker := time.NewTicker(t.every)
	defer ticker.Stop()

	for {
		select {
		case <-t.done:
			return
		case <-ticker.C:
			state := e.s.Tick(1)
			if state == session.StateExpired {
				t.stopTicking(e)
				t.expired(e.s)
				return
			}
			if state != session.StateRunning && t.stopTicking(e) {
				return
			}
		}
	}
}

// stopTicking clears the ticking flag unless the session was resumed in
// the meantime, in which case the caller keeps ticking.
func (t *timers) stopTicking(e *entry) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if e.s.State() == session.StateRunning {
		return false
	}
	e.ticking = false
	return true
}

func (t *timers) expired(s *session.Session) {
	snap := s.Snapshot()
	t.log.WithUser(s.UserID()).Debug(fmt.Sprintf("activity %s finished, ready to claim", snap.Activity))
	t.notifier.Notify(s.UserID(), services.Event{
		Type:   services.EventReminder,
		UserID: s.UserID(),
		Reason: "activity_finished",
		RefID:  snap.Activity,
		At:     time.Now().UTC(),
	})
}

// get returns the user's session; other users' sessions are not found.
func (t *timers) get(userID, id string) (*session.Session, error) {
	t.mu.Lock()
	e, ok := t.sessions[id]
	t.mu.Unlock()
	if !ok || e.s.UserID() != userID {
		return nil, fmt.Errorf("session %s: %w", id, models.ErrNotFound)
	}
	return e.s, nil
}

// resume restarts the countdown for a paused session.
func (t *timers) resume(s *session.Session) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.sessions[s.ID()]
	if !ok {
		return fmt.Errorf("session %s: %w", s.ID(), models.ErrNotFound)
	}
	if s.State() != session.StatePaused {
		return &models.InvalidStateError{Op: "resume", State: string(s.State())}
	}
	if err := s.Start(); err != nil {
		return err
	}
	t.spawn(e)
	return nil
}

func (t *timers) claim(ctx context.Context, s *session.Session, c session.Completer) (*models.CompletionResult, error) {
	res, err := s.Claim(ctx, c)
	if err != nil {
		return nil, err
	}
	t.forget(s)
	return res, nil
}

func (t *timers) cancel(s *session.Session) error {
	if err := s.Cancel(); err != nil {
		return err
	}
	t.forget(s)
	return nil
}

func (t *timers) forget(s *session.Session) {
	t.mu.Lock()
	delete(t.sessions, s.ID())
	t.mu.Unlock()
}

// Close stops every countdown goroutine.
func (t *timers) Close() {
	select {
	case <-t.done:
	default:
		close(t.done)
	}
	t.wg.Wait()
}
