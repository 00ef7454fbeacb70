package tts

import (
	"context"
	"fmt"

	"github.com/tahcohcat/calmkid/internal/logger"
	"github.com/tahcohcat/calmkid/internal/models"
)

// DummyTts stands in when narration is switched off. Every request fails
// with ErrDisabled so the API can answer 503.
type DummyTts struct{}

func NewDummyTts() *DummyTts {
	return &DummyTts{}
}

func (d *DummyTts) Narrate(_ context.Context, text string, mood models.Mood) ([]byte, error) {
	logger.New().Debug(fmt.Sprintf("narration disabled, dropping %d-character %s script", len(text), mood))
	return nil, ErrDisabled
}

func (d *DummyTts) Name() string {
	return "disabled"
}
