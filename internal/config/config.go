// Package config provides configuration management for Marionette
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"marionette/internal/anim"
	"marionette/internal/assistant"
	"marionette/internal/llm"
	"marionette/internal/models"
)

// Config holds all application configuration
type Config struct {
	LLM       LLMConfig       `mapstructure:"llm"`
	Avatar    AvatarConfig    `mapstructure:"avatar"`
	Assistant AssistantConfig `mapstructure:"assistant"`
	Log       LogConfig       `mapstructure:"log"`
}

// LLMConfig configures the hosted model endpoint
type LLMConfig struct {
	BaseURL    string        `mapstructure:"base_url"`
	APIKey     string        `mapstructure:"api_key"`
	Model      string        `mapstructure:"model"`
	Timeout    time.Duration `mapstructure:"timeout"`
	MaxRetries int           `mapstructure:"max_retries"`
}

// AvatarConfig configures the avatar and its idle behaviour
type AvatarConfig struct {
	AssetPath string        `mapstructure:"asset_path"` // .glb/.gltf; empty uses the built-in rig
	AutoIdle  bool          `mapstructure:"auto_idle"`
	IdleDelay time.Duration `mapstructure:"idle_delay"`
}

// AssistantConfig configures the conversational assistant
type AssistantConfig struct {
	Greeting string `mapstructure:"greeting"`
	Persona  string `mapstructure:"persona"`
}

// LogConfig configures the log file
type LogConfig struct {
	Dir   string `mapstructure:"dir"`
	Level string `mapstructure:"level"` // debug, info, warn, error
}

// DefaultConfig returns sensible default configuration
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			BaseURL:    llm.DefaultBaseURL,
			Model:      models.AvailableModels[0].ID,
			Timeout:    60 * time.Second,
			MaxRetries: 2,
		},
		Avatar: AvatarConfig{
			AutoIdle:  true,
			IdleDelay: anim.DefaultIdleDelay,
		},
		Assistant: AssistantConfig{
			Greeting: assistant.DefaultGreeting,
			Persona:  assistant.DefaultPersona,
		},
		Log: LogConfig{
			Dir:   defaultLogDir(),
			Level: "info",
		},
	}
}

// Load reads configuration from an optional file, .env and the environment.
// An explicit path must exist; otherwise ~/.config/marionette/config.yaml and
// ./config.yaml are tried.
func Load(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := DefaultConfig()
	v := viper.New()
	setDefaults(v, cfg)

	v.SetEnvPrefix("MARIONETTE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("llm.api_key", "MARIONETTE_LLM_API_KEY", "OPENROUTER_API_KEY"); err != nil {
		return nil, err
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if dir, err := ConfigDir(); err == nil {
			v.AddConfigPath(dir)
		}
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if c.Avatar.IdleDelay < anim.MinIdleDelay || c.Avatar.IdleDelay > anim.MaxIdleDelay {
		return fmt.Errorf("avatar.idle_delay must be %s-%s, got %s", anim.MinIdleDelay, anim.MaxIdleDelay, c.Avatar.IdleDelay)
	}
	if c.LLM.MaxRetries < 0 || c.LLM.MaxRetries > 10 {
		return fmt.Errorf("llm.max_retries must be 0-10, got %d", c.LLM.MaxRetries)
	}
	if c.LLM.Timeout <= 0 {
		return fmt.Errorf("llm.timeout must be positive, got %s", c.LLM.Timeout)
	}
	if strings.TrimSpace(c.LLM.Model) == "" {
		return errors.New("llm.model must be set")
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error, got %q", c.Log.Level)
	}
	return nil
}

// LLMClient returns the client settings.
func (c *Config) LLMClient() llm.Config {
	return llm.Config{
		APIKey:     c.LLM.APIKey,
		BaseURL:    c.LLM.BaseURL,
		Model:      c.LLM.Model,
		Timeout:    c.LLM.Timeout,
		MaxRetries: c.LLM.MaxRetries,
	}
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("llm.base_url", cfg.LLM.BaseURL)
	v.SetDefault("llm.api_key", cfg.LLM.APIKey)
	v.SetDefault("llm.model", cfg.LLM.Model)
	v.SetDefault("llm.timeout", cfg.LLM.Timeout)
	v.SetDefault("llm.max_retries", cfg.LLM.MaxRetries)
	v.SetDefault("avatar.asset_path", cfg.Avatar.AssetPath)
	v.SetDefault("avatar.auto_idle", cfg.Avatar.AutoIdle)
	v.SetDefault("avatar.idle_delay", cfg.Avatar.IdleDelay)
	v.SetDefault("assistant.greeting", cfg.Assistant.Greeting)
	v.SetDefault("assistant.persona", cfg.Assistant.Persona)
	v.SetDefault("log.dir", cfg.Log.Dir)
	v.SetDefault("log.level", cfg.Log.Level)
}

// ConfigDir returns the configuration directory path
func ConfigDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "marionette"), nil
}

func defaultLogDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "marionette", "logs")
	}
	return filepath.Join(os.TempDir(), "marionette-logs")
}
