package ollama

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/ollama/ollama/api"

	"github.com/tahcohcat/calmkid/config"
	"github.com/tahcohcat/calmkid/internal/logger"
)

type Client struct {
	client *api.Client
	config *config.OllamaConfig
	logger *logger.Log
}

// NewClient talks to cfg.Host, or to OLLAMA_HOST when no host is configured.
func NewClient(cfg *config.OllamaConfig) (*Client, error) {
	var client *api.Client
	if cfg.Host == "" {
		c, err := api.ClientFromEnvironment()
		if err != nil {
			return nil, fmt.Errorf("failed to create ollama client: %w", err)
		}
		client = c
	} else {
		base, err := url.Parse(cfg.Host)
		if err != nil {
			return nil, fmt.Errorf("invalid ollama host %q: %w", cfg.Host, err)
		}
		client = api.NewClient(base, http.DefaultClient)
	}

	return &Client{
		client: client,
		config: cfg,
		logger: logger.New(),
	}, nil
}

func (c *Client) GenerateResponse(ctx context.Context, system, prompt string) (string, error) {
	stream := false

	req := &api.GenerateRequest{
		Model:  c.config.Model,
		System: system,
		Prompt: prompt,
		Format: []byte(`"json"`),
		Stream: &stream,
		Options: map[string]interface{}{
			"temperature": 0.5,
		},
	}

	timeout := time.Duration(c.config.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	c.logger.Debug(fmt.Sprintf("Generating response with model %s", c.config.Model))

	var response string
	err := c.client.Generate(timeoutCtx, req, func(g api.GenerateResponse) error {
		response += g.Response
		return nil
	})
	if err != nil {
		c.logger.WithError(err).Error("Failed to generate response")
		return "", fmt.Errorf("ollama generation failed: %w", err)
	}

	return response, nil
}

func (c *Client) IsModelAvailable(ctx context.Context) error {
	models, err := c.client.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list models: %w", err)
	}

	names := make([]string, 0, len(models.Models))
	for _, model := range models.Models {
		if model.Name == c.config.Model || model.Model == c.config.Model {
			return nil
		}
		names = append(names, model.Name)
	}

	return fmt.Errorf("model %s not found. Available models: %v", c.config.Model, names)
}
