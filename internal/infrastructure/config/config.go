package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"screen-agent/internal/infrastructure/logger"

	"github.com/spf13/viper"
)

const EnvPrefix = "SCREEN_AGENT"

type LLMConfig struct {
	APIKey            string        `mapstructure:"api_key"`
	BaseURL           string        `mapstructure:"base_url"`
	Model             string        `mapstructure:"model"`
	VisionModel       string        `mapstructure:"vision_model"`
	Temperature       float32       `mapstructure:"temperature"`
	MaxTokens         int           `mapstructure:"max_tokens"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
	Timeout           time.Duration `mapstructure:"timeout"`
}

type GroundingConfig struct {
	// Concurrency above 1 grounds screenshots in parallel.
	Concurrency int `mapstructure:"concurrency"`
	// MaxTokens caps each condense and convert reply. llm.max_tokens applies
	// to planning only.
	MaxTokens int `mapstructure:"max_tokens"`
}

type VisionConfig struct {
	MaxWidth    int `mapstructure:"max_width"`
	JPEGQuality int `mapstructure:"jpeg_quality"`
}

type Config struct {
	LLM       LLMConfig       `mapstructure:"llm"`
	Grounding GroundingConfig `mapstructure:"grounding"`
	Vision    VisionConfig    `mapstructure:"vision"`
	Logger    logger.Config   `mapstructure:"logger"`
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault("llm.base_url", "https://openrouter.ai/api/v1")
	v.SetDefault("llm.model", "openai/gpt-4o")
	v.SetDefault("llm.vision_model", "openai/gpt-4o")
	v.SetDefault("llm.temperature", 0.1)
	v.SetDefault("llm.max_tokens", 8192)
	v.SetDefault("llm.requests_per_minute", 0)
	v.SetDefault("llm.timeout", 2*time.Minute)

	v.SetDefault("grounding.concurrency", 1)
	v.SetDefault("grounding.max_tokens", 4096)

	v.SetDefault("vision.max_width", 1024)
	v.SetDefault("vision.jpeg_quality", 75)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.file", "")
	v.SetDefault("logger.max_size", 20)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 14)
	v.SetDefault("logger.compress", false)
	v.SetDefault("logger.name", "screen-agent")
}

// New returns a viper instance with defaults and environment binding in
// place. SCREEN_AGENT_LLM_MODEL overrides llm.model, and so on.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Provider keys keep their conventional names.
	_ = v.BindEnv("llm.api_key", EnvPrefix+"_LLM_API_KEY", "OPENROUTER_API_KEY", "OPENAI_API_KEY")
	return v
}

// ReadFile merges a YAML/JSON/TOML config file into v when path is set.
func ReadFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	return nil
}

func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks value ranges. The API key is checked by the commands that
// talk to a provider.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.LLM.Model) == "" {
		errs = append(errs, errors.New("llm.model must not be empty"))
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		errs = append(errs, fmt.Errorf("llm.temperature must be within [0, 2], got %v", c.LLM.Temperature))
	}
	if c.LLM.MaxTokens <= 0 {
		errs = append(errs, errors.New("llm.max_tokens must be a positive integer"))
	}
	if c.LLM.RequestsPerMinute < 0 {
		errs = append(errs, errors.New("llm.requests_per_minute must not be negative"))
	}
	if c.Grounding.Concurrency <= 0 {
		errs = append(errs, errors.New("grounding.concurrency must be a positive integer"))
	}
	if c.Grounding.MaxTokens <= 0 {
		errs = append(errs, errors.New("grounding.max_tokens must be a positive integer"))
	}
	if c.Vision.MaxWidth <= 0 {
		errs = append(errs, errors.New("vision.max_width must be a positive integer"))
	}
	if c.Vision.JPEGQuality < 1 || c.Vision.JPEGQuality > 100 {
		errs = append(errs, fmt.Errorf("vision.jpeg_quality must be within [1, 100], got %d", c.Vision.JPEGQuality))
	}
	return errors.Join(errs...)
}

func (c *Config) RequireAPIKey() error {
	if strings.TrimSpace(c.LLM.APIKey) == "" {
		return errors.New("llm.api_key is not set (export OPENROUTER_API_KEY or OPENAI_API_KEY)")
	}
	return nil
}
