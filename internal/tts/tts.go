package tts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tahcohcat/calmkid/config"
	"github.com/tahcohcat/calmkid/internal/models"
)

const DefaultVoice = "en-US-Chirp-HD-F"

// ErrDisabled is returned by the dummy narrator.
var ErrDisabled = errors.New("narration is disabled")

// Narrator turns activity instructions into MP3 audio.
type Narrator interface {
	Narrate(ctx context.Context, text string, mood models.Mood) ([]byte, error)
	Name() string
}

// New returns the Google narrator when enabled and a dummy otherwise.
func New(ctx context.Context, cfg config.TtsConfig) (Narrator, error) {
	if !cfg.Enabled {
		return NewDummyTts(), nil
	}
	return NewGoogleNarrator(ctx, cfg)
}

// Script is what gets read aloud for an activity.
func Script(item models.CatalogItem) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(item.Title))
	b.WriteString(". ")
	if d := strings.TrimSpace(item.Description); d != "" {
		b.WriteString(d)
		if !strings.HasSuffix(d, ".") {
			b.WriteString(".")
		}
		b.WriteString(" ")
	}
	if item.DurationSeconds > 0 {
		mins := item.DurationSeconds / 60
		secs := item.DurationSeconds % 60
		switch {
		case mins > 0 && secs == 0:
			fmt.Fprintf(&b, "Let's do this together for %d %s.", mins, plural(mins, "minute"))
		case mins > 0:
			fmt.Fprintf(&b, "Let's do this together for %d %s and %d %s.", mins, plural(mins, "minute"), secs, plural(secs, "second"))
		default:
			fmt.Fprintf(&b, "Let's do this together for %d %s.", secs, plural(secs, "second"))
		}
	}
	return strings.TrimSpace(b.String())
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

// speakingRate slows the voice down for upset moods.
func speakingRate(mood models.Mood) float64 {
	switch mood {
	case models.MoodAngry, models.MoodAnxious:
		return 0.80
	case models.MoodSad:
		return 0.85
	case models.MoodCalm:
		return 0.90
	case models.MoodHappy:
		return 1.0
	default:
		return 0.95
	}
}

func pitch(mood models.Mood) float64 {
	switch mood {
	case models.MoodAngry, models.MoodAnxious:
		return -2.0
	case models.MoodSad:
		return 1.0
	case models.MoodHappy:
		return 2.0
	default:
		return 0.0
	}
}

// languageCode extracts the language from a voice name ("en-GB-Standard-D" -> "en-GB").
func languageCode(voice string) string {
	parts := strings.Split(voice, "-")
	if len(parts) >= 2 {
		return parts[0] + "-" + parts[1]
	}
	return "en-US"
}
