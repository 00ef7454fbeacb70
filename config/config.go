package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Auth        AuthConfig        `mapstructure:"auth"`
	Store       StoreConfig       `mapstructure:"store"`
	Mood        MoodConfig        `mapstructure:"mood"`
	Suggestions SuggestionsConfig `mapstructure:"suggestions"`
	Log         LogConfig         `mapstructure:"log"`
	LLM         LLMConfig         `mapstructure:"llm"`
	Ollama      OllamaConfig      `mapstructure:"ollama"`
	OpenAI      OpenAIConfig      `mapstructure:"openai"`
	Tts         TtsConfig         `mapstructure:"tts"`
}

type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type AuthConfig struct {
	SessionSecret string `mapstructure:"session_secret"`
}

// StoreConfig bounds every call against the database.
type StoreConfig struct {
	Timeout int `mapstructure:"timeout"` // seconds
}

// MoodConfig.Timezone is the reference zone for "today".
type MoodConfig struct {
	Timezone string `mapstructure:"timezone"`
}

type SuggestionsConfig struct {
	Limit int `mapstructure:"limit"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// LLM provider selection
type LLMConfig struct {
	Provider string `mapstructure:"provider"` // "none", "ollama" or "openai"
}

type OpenAIConfig struct {
	APIKey    string `mapstructure:"api_key"`
	Model     string `mapstructure:"model"`
	BaseURL   string `mapstructure:"base_url"`   // Optional, defaults to OpenAI API
	MaxTokens int    `mapstructure:"max_tokens"` // Optional, defaults to model's max
	Timeout   int    `mapstructure:"timeout"`
}

type OllamaConfig struct {
	Host    string `mapstructure:"host"`
	Model   string `mapstructure:"model"`
	Timeout int    `mapstructure:"timeout"` // seconds
}

type TtsConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	CredentialsFile string `mapstructure:"credentials_file"`
	Voice           string `mapstructure:"voice"`
}

// StoreTimeout returns the store timeout as a duration.
func (c *Config) StoreTimeout() time.Duration {
	if c.Store.Timeout <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.Store.Timeout) * time.Second
}

// Location resolves the mood reference timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	if c.Mood.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Mood.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000", "http://localhost:8080"})

	v.SetDefault("database.path", "./calmkid.db")
	v.SetDefault("auth.session_secret", "your-secret-key-change-this-in-production")

	v.SetDefault("store.timeout", 5)
	v.SetDefault("mood.timezone", "UTC")
	v.SetDefault("suggestions.limit", 3)
	v.SetDefault("log.level", "info")

	v.SetDefault("llm.provider", "none")
	v.SetDefault("ollama.host", "http://localhost:11434")
	v.SetDefault("ollama.model", "llama3.2")
	v.SetDefault("ollama.timeout", 30)
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("openai.timeout", 30)
	v.SetDefault("openai.max_tokens", 600)

	v.SetDefault("tts.enabled", false)
	v.SetDefault("tts.voice", "en-US-Chirp-HD-F")
}

// Load reads config.yaml (and config.local.yaml overrides) from . or ./config,
// then environment variables prefixed with CALMKID_.
func Load() (*Config, error) {
	return load(viper.New(), ".", "./config")
}

func load(v *viper.Viper, paths ...string) (*Config, error) {
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	setDefaults(v)

	v.BindEnv("openai.api_key", "CALMKID_OPENAI_API_KEY", "OPENAI_API_KEY")
	v.BindEnv("llm.provider", "CALMKID_LLM_PROVIDER", "LLM_PROVIDER")

	v.SetEnvPrefix("CALMKID")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		// Config file not found, use defaults
	} else {
		// Local overrides (ignored by git)
		v.SetConfigName("config.local")
		_ = v.MergeInConfig()
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
