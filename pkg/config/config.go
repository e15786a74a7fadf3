// Package config loads the wordsort YAML configuration.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/hazyhaar/wordsort/pkg/wordsort"
	"gopkg.in/yaml.v3"
)

// Config is the on-disk configuration shared by every subcommand.
type Config struct {
	Addr          string           `yaml:"addr"`
	LogLevel      string           `yaml:"log_level"`
	DefaultLocale string           `yaml:"default_locale"`
	PresetsDir    string           `yaml:"presets_dir"`
	HistoryDB     string           `yaml:"history_db"`
	MaxBodyBytes  int64            `yaml:"max_body_bytes"`
	QUIC          bool             `yaml:"quic"`
	TLS           TLSConfig        `yaml:"tls"`
	Defaults      wordsort.Options `yaml:"defaults"`
}

// TLSConfig points at production certificates. Both empty = self-signed.
type TLSConfig struct {
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Addr:          ":8421",
		LogLevel:      "info",
		DefaultLocale: wordsort.DefaultLocale,
		PresetsDir:    "presets",
		HistoryDB:     "wordsort.db",
		MaxBodyBytes:  1 << 20,
		Defaults:      wordsort.DefaultOptions(),
	}
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string, logger *slog.Logger) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if logger != nil {
				logger.Info("no config file, using defaults", "path", path)
			}
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail later at request time.
func (c Config) Validate() error {
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("max_body_bytes must be positive, got %d", c.MaxBodyBytes)
	}
	if _, err := wordsort.ResolveLocale(c.DefaultLocale); err != nil {
		return fmt.Errorf("default_locale: %w", err)
	}
	if (c.TLS.CertFile == "") != (c.TLS.KeyFile == "") {
		return errors.New("tls: cert_file and key_file must be set together")
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ParseLevel maps a log_level value onto a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log_level %q", s)
	}
}

// NewLogger builds the stderr text logger for the configured level.
func (c Config) NewLogger() *slog.Logger {
	level, _ := ParseLevel(c.LogLevel)
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
