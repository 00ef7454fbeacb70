package models

import (
	"strings"
	"time"
)

// Profile holds the child's details and star balance. Region and school are
// display metadata only.
type Profile struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Age       *int      `json:"age,omitempty" db:"age"`
	Stars     int       `json:"stars" db:"stars"`
	Region    string    `json:"region" db:"region"`
	School    string    `json:"school" db:"school"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ProfileSetup is the one-time "tell us about you" form.
type ProfileSetup struct {
	Name   string `json:"name"`
	Age    int    `json:"age"`
	Region string `json:"region"`
	School string `json:"school"`
}

const (
	MinProfileAge = 1
	MaxProfileAge = 18
)

func (p *ProfileSetup) Validate() error {
	p.Name = strings.TrimSpace(p.Name)
	p.Region = strings.TrimSpace(p.Region)
	p.School = strings.TrimSpace(p.School)

	if p.Name == "" {
		return Invalid("name", "is required")
	}
	if p.Age < MinProfileAge || p.Age > MaxProfileAge {
		return Invalid("age", "must be between %d and %d, got %d", MinProfileAge, MaxProfileAge, p.Age)
	}
	if p.Region == "" {
		return Invalid("region", "is required")
	}
	if p.School == "" {
		return Invalid("school", "is required")
	}
	return nil
}
