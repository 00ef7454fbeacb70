package llm

import (
	"context"
)

// LLM is a text generation backend. Callers ask for a JSON reply in the
// prompt; providers that support it also force JSON output.
type LLM interface {
	// GenerateResponse answers prompt under the given system instructions.
	GenerateResponse(ctx context.Context, system, prompt string) (string, error)

	// IsModelAvailable checks if the configured model is available
	IsModelAvailable(ctx context.Context) error
}
