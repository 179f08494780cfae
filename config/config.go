// Package config loads the TOML configuration of the inspection tool.
//
// Keys left out of the file keep the values of Default:
//
//	[log]
//	level = "info"        # zerolog level name
//	json = false          # console output when false
//
//	[http]
//	addr = ":8480"
//	shutdown_timeout = "5s"
//
//	[fixture]
//	path = "plant.yaml"   # address space loaded on top of the standard nodes
//
//	[catalog]
//	paths = ["tables.yaml"]
//
//	[client]
//	timeout = "10s"       # per-request deadline
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config is the tool configuration.
type Config struct {
	Log     LogConfig
	HTTP    HTTPConfig
	Fixture FixtureConfig
	Catalog CatalogConfig
	Client  ClientConfig
}

// LogConfig selects the log level and format.
type LogConfig struct {
	Level string
	JSON  bool
}

// HTTPConfig configures the HTTP listener.
type HTTPConfig struct {
	Addr            string
	ShutdownTimeout time.Duration
}

// FixtureConfig names the YAML address-space fixture. An empty path serves
// the standard nodes only.
type FixtureConfig struct {
	Path string
}

// CatalogConfig lists YAML table files added to the standard catalog.
type CatalogConfig struct {
	Paths []string
}

// ClientConfig configures proxy access.
type ClientConfig struct {
	Timeout time.Duration
}

type fileConfig struct {
	Log struct {
		Level string `toml:"level"`
		JSON  bool   `toml:"json"`
	} `toml:"log"`
	HTTP struct {
		Addr            string `toml:"addr"`
		ShutdownTimeout string `toml:"shutdown_timeout"`
	} `toml:"http"`
	Fixture struct {
		Path string `toml:"path"`
	} `toml:"fixture"`
	Catalog struct {
		Paths []string `toml:"paths"`
	} `toml:"catalog"`
	Client struct {
		Timeout string `toml:"timeout"`
	} `toml:"client"`
}

// Default returns the configuration used for keys absent from the file.
func Default() Config {
	return Config{
		Log:    LogConfig{Level: "info"},
		HTTP:   HTTPConfig{Addr: ":8480", ShutdownTimeout: 5 * time.Second},
		Client: ClientConfig{Timeout: 10 * time.Second},
	}
}

// Load reads the TOML file at path over Default and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}

	if meta.IsDefined("log", "level") {
		cfg.Log.Level = strings.TrimSpace(raw.Log.Level)
	}
	if meta.IsDefined("log", "json") {
		cfg.Log.JSON = raw.Log.JSON
	}
	if meta.IsDefined("http", "addr") {
		cfg.HTTP.Addr = strings.TrimSpace(raw.HTTP.Addr)
	}
	if meta.IsDefined("http", "shutdown_timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.HTTP.ShutdownTimeout))
		if err != nil {
			return Config{}, fmt.Errorf("parse http.shutdown_timeout: %w", err)
		}
		cfg.HTTP.ShutdownTimeout = d
	}
	if meta.IsDefined("fixture", "path") {
		cfg.Fixture.Path = strings.TrimSpace(raw.Fixture.Path)
	}
	if meta.IsDefined("catalog", "paths") {
		cfg.Catalog.Paths = normalizePaths(raw.Catalog.Paths)
	}
	if meta.IsDefined("client", "timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.Client.Timeout))
		if err != nil {
			return Config{}, fmt.Errorf("parse client.timeout: %w", err)
		}
		cfg.Client.Timeout = d
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("config load failed (%s): %w: unknown key %s", path, ErrInvalidConfig, undecoded[0])
	}
	if err := ValidateConfig(cfg); err != nil {
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	return cfg, nil
}

// ValidateConfig checks cfg for values the tool cannot run with.
func ValidateConfig(cfg Config) error {
	if _, err := zerolog.ParseLevel(cfg.Log.Level); err != nil || cfg.Log.Level == "" {
		return fmt.Errorf("%w: log.level %q", ErrInvalidConfig, cfg.Log.Level)
	}
	if cfg.HTTP.Addr == "" {
		return fmt.Errorf("%w: http.addr is required", ErrInvalidConfig)
	}
	if cfg.HTTP.ShutdownTimeout <= 0 {
		return fmt.Errorf("%w: http.shutdown_timeout must be positive", ErrInvalidConfig)
	}
	if cfg.Client.Timeout <= 0 {
		return fmt.Errorf("%w: client.timeout must be positive", ErrInvalidConfig)
	}
	return nil
}

// ParsedLevel returns the zerolog level. Validated configs never fail.
func (c LogConfig) ParsedLevel() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.Level)
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}

func normalizePaths(in []string) []string {
	out := make([]string, 0, len(in))
	for _, p := range in {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
