package services

import "time"

const (
	EventStarsChanged   = "stars_changed"
	EventRewardUnlocked = "reward_unlocked"
	EventReminder       = "reminder"
)

// Event is pushed to a user's connected clients.
type Event struct {
	Type   string    `json:"type"`
	UserID string    `json:"user_id"`
	Stars  int       `json:"stars,omitempty"`
	Delta  int       `json:"delta,omitempty"`
	Reason string    `json:"reason,omitempty"`
	RefID  string    `json:"ref_id,omitempty"`
	At     time.Time `json:"at"`
}

// Notifier delivers events best effort. Notify must not block.
type Notifier interface {
	Notify(userID string, event Event)
}

type NopNotifier struct{}

func (NopNotifier) Notify(string, Event) {}
