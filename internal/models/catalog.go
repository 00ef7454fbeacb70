package models

import "strings"

// ItemKind separates activities (repeatable) from challenges (once per user).
type ItemKind string

const (
	KindActivity  ItemKind = "activity"
	KindChallenge ItemKind = "challenge"
)

func ParseKind(s string) (ItemKind, error) {
	switch ItemKind(strings.ToLower(strings.TrimSpace(s))) {
	case KindActivity:
		return KindActivity, nil
	case KindChallenge:
		return KindChallenge, nil
	default:
		return "", Invalid("kind", "%q is neither activity nor challenge", s)
	}
}

// CatalogItem is an activity or a challenge. Both rank the same way.
type CatalogItem struct {
	ID              string   `json:"id" db:"id" yaml:"id"`
	Kind            ItemKind `json:"kind" db:"-" yaml:"-"`
	Title           string   `json:"title" db:"title" yaml:"title"`
	Description     string   `json:"description" db:"description" yaml:"description"`
	Category        string   `json:"category" db:"category" yaml:"category"`
	MoodTag         Mood     `json:"mood_tag" db:"mood_tag" yaml:"mood_tag"`
	MinAge          *int     `json:"min_age,omitempty" db:"min_age" yaml:"min_age"`
	MaxAge          *int     `json:"max_age,omitempty" db:"max_age" yaml:"max_age"`
	StarReward      int      `json:"star_reward" db:"star_reward" yaml:"star_reward"`
	DurationSeconds int      `json:"duration_seconds,omitempty" db:"duration_seconds" yaml:"duration_seconds"`
	IsWeekly        bool     `json:"is_weekly,omitempty" db:"is_weekly" yaml:"is_weekly"`
}

// Validate checks the catalog invariants and canonicalises the mood tag.
func (c *CatalogItem) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return Invalid("id", "is required")
	}
	if strings.TrimSpace(c.Title) == "" {
		return Invalid("title", "is required")
	}
	if c.StarReward < 0 {
		return Invalid("star_reward", "must not be negative, got %d", c.StarReward)
	}
	if c.DurationSeconds < 0 {
		return Invalid("duration_seconds", "must not be negative, got %d", c.DurationSeconds)
	}
	if c.MinAge != nil && c.MaxAge != nil && *c.MinAge > *c.MaxAge {
		return Invalid("age", "min_age %d is above max_age %d", *c.MinAge, *c.MaxAge)
	}
	tag, err := ParseMoodTag(string(c.MoodTag))
	if err != nil {
		return err
	}
	c.MoodTag = tag
	return nil
}

// EligibleFor reports whether age sits inside the optional bounds.
func (c CatalogItem) EligibleFor(age int) bool {
	if c.MinAge != nil && age < *c.MinAge {
		return false
	}
	if c.MaxAge != nil && age > *c.MaxAge {
		return false
	}
	return true
}

type Reward struct {
	ID    string `json:"id" db:"id" yaml:"id"`
	Title string `json:"title" db:"title" yaml:"title"`
	Cost  int    `json:"cost" db:"cost" yaml:"cost"`
	Type  string `json:"type" db:"type" yaml:"type"` // Avatar, Sticker, Theme, Music
}

func (r *Reward) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return Invalid("id", "is required")
	}
	if strings.TrimSpace(r.Title) == "" {
		return Invalid("title", "is required")
	}
	if r.Cost < 0 {
		return Invalid("cost", "must not be negative, got %d", r.Cost)
	}
	return nil
}
