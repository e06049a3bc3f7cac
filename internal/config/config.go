package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config captures the settings lockdash reads at startup.
type Config struct {
	APIBaseURL     string
	PollInterval   time.Duration
	StatsDays      int
	ReconnectDelay time.Duration
	LogLevel       string
	LogFormat      string
	LogFile        string
}

const (
	defaultConfigPath     = "~/.config/lockdash/config.toml"
	defaultLogFile        = "~/.local/share/lockdash/lockdash.log"
	defaultAPIBaseURL     = "http://localhost:8000"
	defaultPollInterval   = 5 * time.Second
	defaultStatsDays      = 7
	defaultReconnectDelay = 3 * time.Second
	defaultLogLevel       = "info"
	defaultLogFormat      = "console"
)

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		APIBaseURL:     defaultAPIBaseURL,
		PollInterval:   defaultPollInterval,
		StatsDays:      defaultStatsDays,
		ReconnectDelay: defaultReconnectDelay,
		LogLevel:       defaultLogLevel,
		LogFormat:      defaultLogFormat,
		LogFile:        mustExpand(defaultLogFile),
	}
}

type rawConfig struct {
	APIBaseURL       string `toml:"api_base_url"`
	PollSeconds      int    `toml:"poll_seconds"`
	StatsDays        int    `toml:"stats_days"`
	ReconnectSeconds int    `toml:"reconnect_seconds"`
	Log              struct {
		Level  string `toml:"level"`
		Format string `toml:"format"`
		File   string `toml:"file"`
	} `toml:"log"`
}

// Load locates and parses the lockdash config, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw rawConfig
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if base := strings.TrimSpace(raw.APIBaseURL); base != "" {
		cfg.APIBaseURL = base
	}
	if raw.PollSeconds > 0 {
		cfg.PollInterval = time.Duration(raw.PollSeconds) * time.Second
	}
	if raw.StatsDays > 0 {
		cfg.StatsDays = raw.StatsDays
	}
	if raw.ReconnectSeconds > 0 {
		cfg.ReconnectDelay = time.Duration(raw.ReconnectSeconds) * time.Second
	}
	if level := strings.TrimSpace(raw.Log.Level); level != "" {
		cfg.LogLevel = level
	}
	if format := strings.TrimSpace(raw.Log.Format); format != "" {
		cfg.LogFormat = format
	}
	if logFile := strings.TrimSpace(raw.Log.File); logFile != "" {
		cfg.LogFile = mustExpand(logFile)
	}

	return cfg, nil
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return defaultConfigPath
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return ExpandPath(defaultConfigPath)
	}
	return ExpandPath(path)
}

func mustExpand(path string) string {
	expanded, err := ExpandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

// ExpandPath resolves a leading ~ and returns an absolute path.
func ExpandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
