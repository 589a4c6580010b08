// Package config provides configuration loading and parsing for holicache.
package config

import (
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/mo"

	"github.com/omarluq/holicache/internal/cache"
	"github.com/omarluq/holicache/internal/health"
	"github.com/omarluq/holicache/internal/hybrid"
	"github.com/omarluq/holicache/internal/local"
	"github.com/omarluq/holicache/internal/remote"
)

// RuntimeConfig defines the interface for accessing runtime configuration that supports hot-reload.
// Components that need to observe config changes should use this interface instead of
// holding a direct *Config pointer, which would become stale after hot-reload.
//
// Usage pattern:
//
//	func (s *engineService) refresh() {
//		cfg := s.runtime.Get()
//		s.engine.UpdateOptions(cfg.Engine.Options(cfg.Remote.IsEnabled()))
//	}
type RuntimeConfig interface {
	Get() *Config
}

// Log level constants.
const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

// Default server values.
const (
	DefaultListen          = "127.0.0.1:8790"
	DefaultShutdownTimeout = 10 * time.Second
)

// Config is the top-level holicache configuration.
type Config struct {
	Remote    remote.Config   `yaml:"remote" toml:"remote"`
	Local     local.Config    `yaml:"local" toml:"local"`
	Memory    cache.Config    `yaml:"memory" toml:"memory"`
	Engine    hybrid.Config   `yaml:"engine" toml:"engine"`
	Health    health.Config   `yaml:"health" toml:"health"`
	Generator GeneratorConfig `yaml:"generator" toml:"generator"`
	Logging   LoggingConfig   `yaml:"logging" toml:"logging"`
	Server    ServerConfig    `yaml:"server" toml:"server"`
}

// EngineOptions returns the hybrid engine options for the current config.
// The remote tier counts as enabled only when it is switched on and has
// connection details.
func (c *Config) EngineOptions() hybrid.Options {
	return c.Engine.Options(c.Remote.IsEnabled() && c.Remote.IsConfigured())
}

// ServerConfig defines the ops HTTP surface started by `holicache serve`.
type ServerConfig struct {
	Listen            string `yaml:"listen" toml:"listen" env:"HOLICACHE_LISTEN"`
	ReadTimeoutMS     int    `yaml:"read_timeout_ms" toml:"read_timeout_ms"`
	ShutdownTimeoutMS int    `yaml:"shutdown_timeout_ms" toml:"shutdown_timeout_ms"`
}

// GetListen returns the listen address or DefaultListen.
func (s *ServerConfig) GetListen() string {
	if s.Listen == "" {
		return DefaultListen
	}
	return s.Listen
}

// GetReadTimeoutOption returns the read timeout as an Option.
// Returns None if ReadTimeoutMS is zero (no timeout).
func (s *ServerConfig) GetReadTimeoutOption() mo.Option[time.Duration] {
	if s.ReadTimeoutMS <= 0 {
		return mo.None[time.Duration]()
	}
	return mo.Some(time.Duration(s.ReadTimeoutMS) * time.Millisecond)
}

// GetShutdownTimeout returns the graceful shutdown window. Default 10s.
func (s *ServerConfig) GetShutdownTimeout() time.Duration {
	if s.ShutdownTimeoutMS <= 0 {
		return DefaultShutdownTimeout
	}
	return time.Duration(s.ShutdownTimeoutMS) * time.Millisecond
}

// GeneratorConfig selects the content producers behind the resolve path.
type GeneratorConfig struct {
	// StaticPath points at a YAML table of curated descriptions. Empty
	// disables the curated producer.
	StaticPath string `yaml:"static_path" toml:"static_path" env:"HOLICACHE_STATIC_PATH"`

	// Template enables the one-sentence fallback producer. Defaults to true.
	Template *bool `yaml:"template" toml:"template"`
}

// GetStaticPathOption returns the curated table path as an Option.
func (g *GeneratorConfig) GetStaticPathOption() mo.Option[string] {
	if g.StaticPath == "" {
		return mo.None[string]()
	}
	return mo.Some(g.StaticPath)
}

// IsTemplateEnabled returns whether the template producer is used.
func (g *GeneratorConfig) IsTemplateEnabled() bool {
	if g.Template == nil {
		return true
	}
	return *g.Template
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level" env:"HOLICACHE_LOG_LEVEL"` // debug, info, warn, error
	Format string `yaml:"format" toml:"format"`                         // json, console
	Output string `yaml:"output" toml:"output"`                         // stdout, stderr, or file path
	Pretty bool   `yaml:"pretty" toml:"pretty"`                         // enable colored console output
}

// ParseLevel converts a string log level to zerolog.Level.
// Returns zerolog.InfoLevel if the level string is invalid.
func (l *LoggingConfig) ParseLevel() zerolog.Level {
	switch strings.ToLower(l.Level) {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelInfo:
		return zerolog.InfoLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// GetOutputOption returns the output target as an Option.
// Returns None when logs go to the default stdout.
func (l *LoggingConfig) GetOutputOption() mo.Option[string] {
	if l.Output == "" || l.Output == "stdout" {
		return mo.None[string]()
	}
	return mo.Some(l.Output)
}
