// Package config loads server configuration from an optional YAML file and
// SMART_TASK_* environment variables, and can watch the file for changes.
package config

import (
	"time"

	"smart-task-manager/internal/auth"
	"smart-task-manager/internal/classifier"
	"smart-task-manager/internal/logging"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Auth      AuthConfig      `mapstructure:"auth"`
	AI        AIConfig        `mapstructure:"ai"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port" validate:"gt=0,lt=65536"`
	LogLevel        string        `mapstructure:"log_level" validate:"oneof=trace debug info warn error fatal"`
	LogFormat       string        `mapstructure:"log_format" validate:"oneof=json text"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret" validate:"required,min=16"`
	Issuer    string        `mapstructure:"issuer" validate:"required"`
	Audience  string        `mapstructure:"audience" validate:"required"`
	TokenTTL  time.Duration `mapstructure:"token_ttl" validate:"gt=0"`
}

// AIConfig is the part of the configuration that can change while the
// server runs.
type AIConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	Provider       string        `mapstructure:"provider" validate:"oneof=ollama gemini"`
	BaseURL        string        `mapstructure:"base_url" validate:"omitempty,url"`
	Model          string        `mapstructure:"model" validate:"required"`
	Timeout        time.Duration `mapstructure:"timeout" validate:"gt=0"`
	MaxTokens      int           `mapstructure:"max_tokens" validate:"gt=0"`
	Temperature    float64       `mapstructure:"temperature" validate:"gte=0,lte=2"`
	Async          bool          `mapstructure:"async"`
	MaxConcurrent  int           `mapstructure:"max_concurrent" validate:"gte=0"`
	GeminiAPIKey   string        `mapstructure:"gemini_api_key" validate:"required_if=Provider gemini"`
	CacheTTL       time.Duration `mapstructure:"cache_ttl" validate:"gte=0"`
	PromptTemplate string        `mapstructure:"prompt_template"`
}

// CacheConfig selects the classification cache. An empty RedisAddr keeps
// results in process memory.
type CacheConfig struct {
	RedisAddr string `mapstructure:"redis_addr" validate:"omitempty,hostname_port"`
	Prefix    string `mapstructure:"prefix"`
}

type SchedulerConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	OverdueSpec string `mapstructure:"overdue_spec" validate:"required_if=Enabled true"`
	PurgeSpec   string `mapstructure:"purge_spec" validate:"required_if=Enabled true"`
}

// Classifier converts the ai section into classifier settings.
func (c AIConfig) Classifier() classifier.Settings {
	return classifier.Settings{
		Enabled:        c.Enabled,
		Provider:       c.Provider,
		BaseURL:        c.BaseURL,
		Model:          c.Model,
		Timeout:        c.Timeout,
		MaxTokens:      c.MaxTokens,
		Temperature:    c.Temperature,
		GeminiAPIKey:   c.GeminiAPIKey,
		MaxConcurrent:  c.MaxConcurrent,
		CacheTTL:       c.CacheTTL,
		PromptTemplate: c.PromptTemplate,
	}
}

func (c ServerConfig) Logging() logging.Config {
	return logging.Config{Level: c.LogLevel, Format: c.LogFormat}
}

func (c AuthConfig) Token() auth.TokenConfig {
	return auth.TokenConfig{
		Secret:   c.JWTSecret,
		Issuer:   c.Issuer,
		Audience: c.Audience,
		TTL:      c.TokenTTL,
	}
}
