package models

import (
	"strings"
	"time"
)

type Severity string

const (
	SeverityLow    Severity = "Low"
	SeverityMedium Severity = "Medium"
	SeverityHigh   Severity = "High"
)

// ParseSeverity defaults an empty value to Medium.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return SeverityMedium, nil
	case "low":
		return SeverityLow, nil
	case "medium":
		return SeverityMedium, nil
	case "high":
		return SeverityHigh, nil
	default:
		return "", Invalid("severity", "%q is not one of Low, Medium, High", s)
	}
}

// BehaviorLog is a parent's journal note.
type BehaviorLog struct {
	ID        int64     `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Note      string    `json:"note" db:"note"`
	Severity  Severity  `json:"severity" db:"severity"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// CommonTriggers are offered as one-tap choices in parent mode.
var CommonTriggers = []string{"Hunger", "Tiredness", "Screen Time", "Fights", "Homework", "Loud Noise"}

type TriggerLog struct {
	ID          int64     `json:"id" db:"id"`
	UserID      string    `json:"user_id" db:"user_id"`
	TriggerName string    `json:"trigger_name" db:"trigger_name"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// DayMoods counts mood entries for one calendar day.
type DayMoods struct {
	Date   string       `json:"date"` // YYYY-MM-DD in the reference zone
	Counts map[Mood]int `json:"counts"`
}

// Report is the parent-mode weekly progress summary.
type Report struct {
	UserID             string     `json:"user_id"`
	From               time.Time  `json:"from"`
	To                 time.Time  `json:"to"`
	Days               []DayMoods `json:"days"`
	DominantMood       Mood       `json:"dominant_mood,omitempty"`
	TopTrigger         string     `json:"top_trigger,omitempty"`
	StarsEarned        int        `json:"stars_earned"`
	ChallengeProgress  float64    `json:"challenge_progress"`
	ActivitiesFinished int        `json:"activities_finished"`
}
