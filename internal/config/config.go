package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/jdelaire/clipbot/internal/keychain"
)

// Environment variables.
const (
	EnvToken  = "BOT_TOKEN"
	EnvConfig = "CLIPBOT_CONFIG"
)

// Defaults.
const (
	DefaultMaxConcurrent    = 4
	DefaultTimeoutSeconds   = 300
	DefaultFormat           = "best[ext=mp4]/best"
	DefaultLogLevel         = "info"
	maxConcurrentUpperBound = 32
)

// ErrMissingToken is returned when no bot token can be found.
var ErrMissingToken = errors.New("bot token not set: export " + EnvToken + " or store it in the system keychain")

// Config holds the bot settings. The token never comes from the file.
type Config struct {
	Token string `toml:"-"`

	AllowedChats           []int64 `toml:"allowed_chats"`
	MaxConcurrentDownloads int     `toml:"max_concurrent_downloads"`
	DownloadTimeoutSeconds int     `toml:"download_timeout_seconds"`
	Format                 string  `toml:"format"`
	InstallYTDLP           bool    `toml:"install_ytdlp"`
	LogLevel               string  `toml:"log_level"`
}

// Default returns the settings used when no config file is given.
func Default() *Config {
	return &Config{
		MaxConcurrentDownloads: DefaultMaxConcurrent,
		DownloadTimeoutSeconds: DefaultTimeoutSeconds,
		Format:                 DefaultFormat,
		LogLevel:               DefaultLogLevel,
	}
}

// Load reads .env (if present), the optional TOML file at path (or at
// $CLIPBOT_CONFIG when path is empty) and resolves the bot token. The
// returned config has been validated.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	if path == "" {
		path = os.Getenv(EnvConfig)
	}

	cfg := Default()
	if path != "" {
		var err error
		if cfg, err = LoadFile(path); err != nil {
			return nil, err
		}
	}

	token, err := resolveToken()
	if err != nil {
		return nil, err
	}
	cfg.Token = token

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile decodes a TOML file over the defaults. Unknown keys are rejected.
// The token is left empty.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("parse config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return cfg, nil
}

// Validate checks ranges and that a token is present.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Token) == "" {
		return ErrMissingToken
	}
	if c.MaxConcurrentDownloads < 1 || c.MaxConcurrentDownloads > maxConcurrentUpperBound {
		return fmt.Errorf("max_concurrent_downloads must be between 1 and %d, got %d",
			maxConcurrentUpperBound, c.MaxConcurrentDownloads)
	}
	if c.DownloadTimeoutSeconds < 1 {
		return fmt.Errorf("download_timeout_seconds must be positive, got %d", c.DownloadTimeoutSeconds)
	}
	if strings.TrimSpace(c.Format) == "" {
		return errors.New("format must not be empty")
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// DownloadTimeout returns the per-download time limit.
func (c *Config) DownloadTimeout() time.Duration {
	return time.Duration(c.DownloadTimeoutSeconds) * time.Second
}

// SlogLevel returns the configured log level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log_level %q", s)
	}
	return level, nil
}

// resolveToken reads the token from the environment, falling back to the
// system keychain. Keychain errors (no keyring daemon, for instance) are
// treated as absence.
func resolveToken() (string, error) {
	if token := strings.TrimSpace(os.Getenv(EnvToken)); token != "" {
		return token, nil
	}

	token, err := keychain.Get(keychain.TokenAccount)
	if err != nil || strings.TrimSpace(token) == "" {
		return "", ErrMissingToken
	}
	return strings.TrimSpace(token), nil
}
