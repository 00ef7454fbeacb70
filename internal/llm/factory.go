package llm

import (
	"fmt"

	"github.com/tahcohcat/calmkid/config"
	"github.com/tahcohcat/calmkid/internal/llm/ollama"
	"github.com/tahcohcat/calmkid/internal/llm/openai"
)

type Provider string

const (
	ProviderNone   Provider = "none"
	ProviderOllama Provider = "ollama"
	ProviderOpenAI Provider = "openai"
)

// NewLLMClient returns nil, nil when tips should not be personalised.
func NewLLMClient(cfg *config.Config) (LLM, error) {
	switch Provider(cfg.LLM.Provider) {
	case "", ProviderNone:
		return nil, nil
	case ProviderOllama:
		c, err := ollama.NewClient(&cfg.Ollama)
		if err != nil {
			return nil, err
		}
		return c, nil
	case ProviderOpenAI:
		c, err := openai.NewClient(&cfg.OpenAI)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.LLM.Provider)
	}
}
