package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port            string        `mapstructure:"port"`
	DefaultEngine   string        `mapstructure:"default_engine"`
	DefaultLanguage string        `mapstructure:"default_language"`
	AnalyzingDelay  time.Duration `mapstructure:"analyzing_delay"`

	Gemini   GeminiConfig   `mapstructure:"gemini"`
	OpenAI   OpenAIConfig   `mapstructure:"openai"`
	Deepseek DeepseekConfig `mapstructure:"deepseek"`
	Database DatabaseConfig `mapstructure:"database"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Telegram TelegramConfig `mapstructure:"telegram"`
}

type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

type DeepseekConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

type DatabaseConfig struct {
	// URL is the Postgres DSN; the answer cache is disabled when empty.
	URL string `mapstructure:"url"`
}

type CacheConfig struct {
	MaxAge        time.Duration `mapstructure:"max_age"`
	PurgeInterval time.Duration `mapstructure:"purge_interval"`
}

type TelegramConfig struct {
	BotToken string `mapstructure:"bot_token"`
}

// Load reads an optional YAML config file and the well-known environment
// variables. configFile may be empty, in which case ./config.yaml is tried.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
	}

	v.SetDefault("port", "8000")
	v.SetDefault("default_engine", "gemini")
	v.SetDefault("default_language", "English")
	v.SetDefault("analyzing_delay", "1200ms")
	v.SetDefault("gemini.model", "gemini-2.5-flash")
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("openai.base_url", "https://api.openai.com/v1")
	v.SetDefault("deepseek.model", "deepseek-chat")
	v.SetDefault("deepseek.base_url", "https://api.deepseek.com/v1")
	v.SetDefault("cache.max_age", "720h")
	v.SetDefault("cache.purge_interval", "12h")

	bindings := map[string]string{
		"port":               "PORT",
		"gemini.api_key":     "GEMINI_API_KEY",
		"gemini.model":       "GEMINI_MODEL",
		"openai.api_key":     "OPENAI_API_KEY",
		"openai.model":       "OPENAI_MODEL",
		"deepseek.api_key":   "DEEPSEEK_API_KEY",
		"deepseek.model":     "DEEPSEEK_MODEL",
		"database.url":       "DATABASE_URL",
		"telegram.bot_token": "TELEGRAM_BOT_TOKEN",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s environment variable: %w", env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}
