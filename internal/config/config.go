package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const envPrefix = "AGT"

type Config struct {
	Model     ModelConfig     `mapstructure:"model"`
	Search    SearchConfig    `mapstructure:"search"`
	Runner    RunnerConfig    `mapstructure:"runner"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Banner    bool            `mapstructure:"banner"`
}

type ModelConfig struct {
	Name         string `mapstructure:"name"`
	MaxTokens    int64  `mapstructure:"max_tokens"`
	SystemPrompt string `mapstructure:"system_prompt"`
	APIKey       string `mapstructure:"api_key"`
	BaseURL      string `mapstructure:"base_url"`
}

type SearchConfig struct {
	Provider   string         `mapstructure:"provider"`
	MaxResults int            `mapstructure:"max_results"`
	APIKey     string         `mapstructure:"api_key"`
	Settings   map[string]any `mapstructure:"settings"`
}

type RunnerConfig struct {
	MaxSteps int `mapstructure:"max_steps"`
}

type TelemetryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Load reads configuration from defaults, the optional file at path and the
// environment. Environment keys use the AGT_ prefix with dots replaced by
// underscores (AGT_MODEL_NAME); ANTHROPIC_API_KEY and TAVILY_API_KEY are also
// honoured.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetDefault("model.name", "claude-3-7-sonnet-latest")
	v.SetDefault("model.max_tokens", 1024)
	v.SetDefault("model.system_prompt", "")
	v.SetDefault("model.api_key", "")
	v.SetDefault("model.base_url", "")
	v.SetDefault("search.provider", "tavily")
	v.SetDefault("search.max_results", 2)
	v.SetDefault("search.api_key", "")
	v.SetDefault("runner.max_steps", 25)
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.path", ".agent/events.jsonl")
	v.SetDefault("banner", true)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("model.api_key", envPrefix+"_MODEL_API_KEY", "ANTHROPIC_API_KEY")
	_ = v.BindEnv("search.api_key", envPrefix+"_SEARCH_API_KEY", "TAVILY_API_KEY")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal: %w", err)
	}
	cfg.Search.Provider = strings.ToLower(strings.TrimSpace(cfg.Search.Provider))
	return cfg, nil
}

// Validate reports the first missing or out-of-range setting.
func (c Config) Validate() error {
	if err := RequireString(c.Model.Name, "model.name"); err != nil {
		return err
	}
	if c.Model.MaxTokens <= 0 {
		return fmt.Errorf("model.max_tokens must be positive, got %d", c.Model.MaxTokens)
	}
	if c.Runner.MaxSteps <= 0 {
		return fmt.Errorf("runner.max_steps must be positive, got %d", c.Runner.MaxSteps)
	}
	if err := RequireString(c.Search.Provider, "search.provider"); err != nil {
		return err
	}
	if c.Telemetry.Enabled {
		if err := RequireString(c.Telemetry.Path, "telemetry.path"); err != nil {
			return err
		}
	}
	return nil
}
