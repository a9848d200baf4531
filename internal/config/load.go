package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"smart-task-manager/internal/classifier"
)

const (
	EnvPrefix  = "SMART_TASK"
	EnvFileVar = "SMART_TASK_CONFIG"

	// DevJWTSecret is used when no secret is configured. It is only fit for
	// local development.
	DevJWTSecret = "development-insecure-secret-change-me"
)

var validate = validator.New()

func setDefaults(v *viper.Viper) {
	ai := classifier.DefaultSettings()

	v.SetDefault("server.port", 8008)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.log_format", "json")
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.shutdown_timeout", "15s")

	v.SetDefault("database.path", "smart-tasks.db")

	v.SetDefault("auth.jwt_secret", DevJWTSecret)
	v.SetDefault("auth.issuer", "smart-task-manager")
	v.SetDefault("auth.audience", "smart-task-clients")
	v.SetDefault("auth.token_ttl", "24h")

	v.SetDefault("ai.enabled", ai.Enabled)
	v.SetDefault("ai.provider", ai.Provider)
	v.SetDefault("ai.base_url", ai.BaseURL)
	v.SetDefault("ai.model", ai.Model)
	v.SetDefault("ai.timeout", ai.Timeout.String())
	v.SetDefault("ai.max_tokens", ai.MaxTokens)
	v.SetDefault("ai.temperature", ai.Temperature)
	v.SetDefault("ai.async", false)
	v.SetDefault("ai.max_concurrent", ai.MaxConcurrent)
	v.SetDefault("ai.gemini_api_key", "")
	v.SetDefault("ai.cache_ttl", ai.CacheTTL.String())
	v.SetDefault("ai.prompt_template", "")

	v.SetDefault("cache.redis_addr", "")
	v.SetDefault("cache.prefix", "smart-task:")

	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.overdue_spec", "@hourly")
	v.SetDefault("scheduler.purge_spec", "@every 10m")
}

// Source reads configuration from one optional file plus the environment.
type Source struct {
	v    *viper.Viper
	path string
	mu   sync.Mutex
}

// NewSource binds a config file and the environment. When path is empty the
// SMART_TASK_CONFIG variable is consulted; with neither, only defaults and
// environment variables apply.
func NewSource(path string) (*Source, error) {
	if path == "" {
		path = os.Getenv(EnvFileVar)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}
	return &Source{v: v, path: path}, nil
}

// Path returns the config file in use, or "".
func (s *Source) Path() string {
	return s.path
}

// Load unmarshals and validates the current configuration.
func (s *Source) Load() (*Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var cfg Config
	if err := s.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal configuration: %w", err)
	}
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// Watch calls onChange with the reloaded configuration whenever the config
// file changes. Invalid edits are logged and skipped. Without a file, Watch
// does nothing.
func (s *Source) Watch(log zerolog.Logger, onChange func(*Config)) error {
	if s.path == "" {
		return errors.New("no config file to watch")
	}
	s.v.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := s.Load()
		if err != nil {
			log.Error().Err(err).Str("file", e.Name).Msg("ignoring invalid configuration change")
			return
		}
		log.Info().Str("file", e.Name).Str("op", e.Op.String()).Msg("configuration reloaded")
		onChange(cfg)
	})
	s.v.WatchConfig()
	return nil
}

// Load is NewSource followed by Source.Load.
func Load(path string) (*Config, error) {
	src, err := NewSource(path)
	if err != nil {
		return nil, err
	}
	return src.Load()
}
