package models

import (
	"strings"
	"time"

	"github.com/schollz/closestmatch"
)

// Mood is a self-reported feeling. MoodAny is only valid as a catalog tag.
type Mood string

const (
	MoodHappy   Mood = "Happy"
	MoodSad     Mood = "Sad"
	MoodAngry   Mood = "Angry"
	MoodCalm    Mood = "Calm"
	MoodAnxious Mood = "Anxious"

	MoodAny Mood = "Any"
)

// Moods lists the recordable moods in display order.
var Moods = []Mood{MoodHappy, MoodSad, MoodAngry, MoodCalm, MoodAnxious}

var moodMatcher = func() *closestmatch.ClosestMatch {
	names := make([]string, 0, len(Moods))
	for _, m := range Moods {
		names = append(names, strings.ToLower(string(m)))
	}
	return closestmatch.New(names, []int{2})
}()

// ParseMood resolves a label case-insensitively. Unknown labels fail with a
// ValidationError that suggests the nearest known mood.
func ParseMood(label string) (Mood, error) {
	s := strings.TrimSpace(label)
	for _, m := range Moods {
		if strings.EqualFold(s, string(m)) {
			return m, nil
		}
	}
	if s == "" {
		return "", Invalid("mood", "label is required")
	}
	if guess := moodMatcher.Closest(strings.ToLower(s)); guess != "" {
		return "", Invalid("mood", "%q is not a recognised mood (did you mean %s?)", s, titleCase(guess))
	}
	return "", Invalid("mood", "%q is not a recognised mood", s)
}

// ParseMoodTag accepts a recordable mood or the wildcard.
func ParseMoodTag(tag string) (Mood, error) {
	if strings.EqualFold(strings.TrimSpace(tag), string(MoodAny)) {
		return MoodAny, nil
	}
	return ParseMood(tag)
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

type MoodEntry struct {
	ID        int64     `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Mood      Mood      `json:"mood" db:"mood"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
