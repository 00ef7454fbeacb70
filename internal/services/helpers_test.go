package services

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/tahcohcat/calmkid/internal/database"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) Notify(_ string, e Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func (r *recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

type fixture struct {
	db    *database.DB
	svc   *Services
	clock *clock
	notes *recorder
}

func newFixture(t *testing.T, loc *time.Location) *fixture {
	t.Helper()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "calmkid.db"))
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	clk := &clock{now: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)}
	rec := &recorder{}
	svc := New(db, Options{Location: loc, Now: clk.Now, Notifier: rec}, 3)
	return &fixture{db: db, svc: svc, clock: clk, notes: rec}
}

const fixtureCatalog = `
activities:
  - {id: a, title: Balloon Breathing, mood_tag: Angry, star_reward: 5, duration_seconds: 60}
  - {id: b, title: Happy Dance, mood_tag: Happy, star_reward: 3, duration_seconds: 60}
  - {id: c, title: Squeeze Ball, mood_tag: Angry, star_reward: 4, duration_seconds: 30, min_age: 8}
challenges:
  - {id: ch1, title: Say something kind, mood_tag: Any, star_reward: 10}
  - {id: ch2, title: Tidy your room, mood_tag: Calm, star_reward: 15, is_weekly: true}
rewards:
  - {id: r1, title: Dragon Avatar, cost: 20, type: Avatar}
  - {id: r2, title: Star Sticker, cost: 5, type: Sticker}
`

func (f *fixture) importCatalog(t *testing.T) {
	t.Helper()
	if _, err := f.svc.Catalog.Import(context.Background(), strings.NewReader(fixtureCatalog)); err != nil {
		t.Fatalf("Import: %v", err)
	}
}
