package tts

import (
	"context"
	"fmt"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	ttspb "cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"google.golang.org/api/option"

	"github.com/tahcohcat/calmkid/config"
	"github.com/tahcohcat/calmkid/internal/logger"
	"github.com/tahcohcat/calmkid/internal/models"
)

// GoogleNarrator uses Google Cloud Text-to-Speech. Without a credentials
// file the client falls back to GOOGLE_APPLICATION_CREDENTIALS.
type GoogleNarrator struct {
	client *texttospeech.Client
	voice  string
	logger *logger.Log
}

func NewGoogleNarrator(ctx context.Context, cfg config.TtsConfig) (*GoogleNarrator, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := texttospeech.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Google TTS client: %w", err)
	}

	voice := cfg.Voice
	if voice == "" {
		voice = DefaultVoice
	}
	return &GoogleNarrator{client: client, voice: voice, logger: logger.New()}, nil
}

func request(text, voice string, mood models.Mood) *ttspb.SynthesizeSpeechRequest {
	return &ttspb.SynthesizeSpeechRequest{
		Input: &ttspb.SynthesisInput{
			InputSource: &ttspb.SynthesisInput_Text{Text: text},
		},
		Voice: &ttspb.VoiceSelectionParams{
			LanguageCode: languageCode(voice),
			Name:         voice,
		},
		AudioConfig: &ttspb.AudioConfig{
			AudioEncoding:   ttspb.AudioEncoding_MP3,
			SpeakingRate:    speakingRate(mood),
			Pitch:           pitch(mood),
			SampleRateHertz: 22050,
		},
	}
}

func (g *GoogleNarrator) Narrate(ctx context.Context, text string, mood models.Mood) ([]byte, error) {
	if text == "" {
		return nil, models.Invalid("text", "is required")
	}

	g.logger.Debug(fmt.Sprintf("Generating narration with voice %s for mood %q", g.voice, mood))

	resp, err := g.client.SynthesizeSpeech(ctx, request(text, g.voice, mood))
	if err != nil {
		return nil, fmt.Errorf("failed to synthesize speech: %w", err)
	}
	if len(resp.AudioContent) == 0 {
		return nil, fmt.Errorf("empty audio content received from Google TTS")
	}

	g.logger.Debug(fmt.Sprintf("Generated %d bytes of MP3 audio", len(resp.AudioContent)))
	return resp.AudioContent, nil
}

func (g *GoogleNarrator) Name() string {
	return "Google Cloud Text-to-Speech"
}

func (g *GoogleNarrator) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}
