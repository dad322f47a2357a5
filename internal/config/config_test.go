package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/zalando/go-keyring"

	"github.com/jdelaire/clipbot/internal/keychain"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clipbot.toml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	keyring.MockInit()
	t.Setenv(EnvToken, "123:abc")
	t.Setenv(EnvConfig, "")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Token != "123:abc" {
		t.Errorf("token = %q", cfg.Token)
	}
	if cfg.MaxConcurrentDownloads != DefaultMaxConcurrent {
		t.Errorf("max concurrent = %d", cfg.MaxConcurrentDownloads)
	}
	if cfg.DownloadTimeout() != 5*time.Minute {
		t.Errorf("timeout = %v", cfg.DownloadTimeout())
	}
	if cfg.Format != DefaultFormat {
		t.Errorf("format = %q", cfg.Format)
	}
	if len(cfg.AllowedChats) != 0 {
		t.Errorf("allowed chats = %v, want none", cfg.AllowedChats)
	}
}

func TestLoadMissingToken(t *testing.T) {
	keyring.MockInit()
	t.Setenv(EnvToken, "")
	t.Setenv(EnvConfig, "")

	_, err := Load("")
	if !errors.Is(err, ErrMissingToken) {
		t.Fatalf("err = %v, want ErrMissingToken", err)
	}
	if !strings.Contains(err.Error(), EnvToken) {
		t.Errorf("diagnostic %q should name %s", err, EnvToken)
	}
}

func TestLoadTokenFromKeychain(t *testing.T) {
	keyring.MockInit()
	t.Setenv(EnvToken, "")
	t.Setenv(EnvConfig, "")
	if err := keychain.Set(keychain.TokenAccount, " 999:kc "); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Token != "999:kc" {
		t.Errorf("token = %q, want 999:kc", cfg.Token)
	}
}

func TestLoadFile(t *testing.T) {
	keyring.MockInit()
	t.Setenv(EnvToken, "123:abc")

	path := writeConfig(t, `
allowed_chats = [100, -200]
max_concurrent_downloads = 2
download_timeout_seconds = 60
format = "best"
install_ytdlp = true
log_level = "debug"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.AllowedChats) != 2 || cfg.AllowedChats[1] != -200 {
		t.Errorf("allowed chats = %v", cfg.AllowedChats)
	}
	if cfg.MaxConcurrentDownloads != 2 || cfg.DownloadTimeout() != time.Minute {
		t.Errorf("limits = %d/%v", cfg.MaxConcurrentDownloads, cfg.DownloadTimeout())
	}
	if cfg.Format != "best" || !cfg.InstallYTDLP {
		t.Errorf("format/install = %q/%v", cfg.Format, cfg.InstallYTDLP)
	}
	if cfg.SlogLevel() != slog.LevelDebug {
		t.Errorf("level = %v, want debug", cfg.SlogLevel())
	}
}

func TestLoadFileFromEnv(t *testing.T) {
	keyring.MockInit()
	t.Setenv(EnvToken, "123:abc")
	t.Setenv(EnvConfig, writeConfig(t, "max_concurrent_downloads = 3\n"))

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.MaxConcurrentDownloads != 3 {
		t.Errorf("max concurrent = %d, want 3", cfg.MaxConcurrentDownloads)
	}
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.toml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadFileUnknownKey(t *testing.T) {
	_, err := LoadFile(writeConfig(t, "bot_token = \"leak\"\n"))
	if err == nil || !strings.Contains(err.Error(), "unknown keys: bot_token") {
		t.Fatalf("err = %v, want unknown key error", err)
	}
}

func TestLoadFileSyntaxError(t *testing.T) {
	_, err := LoadFile(writeConfig(t, "max_concurrent_downloads = \n"))
	if err == nil {
		t.Fatal("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		want   string
	}{
		{"ok", func(c *Config) {}, ""},
		{"no token", func(c *Config) { c.Token = " " }, "bot token not set"},
		{"zero concurrency", func(c *Config) { c.MaxConcurrentDownloads = 0 }, "max_concurrent_downloads"},
		{"huge concurrency", func(c *Config) { c.MaxConcurrentDownloads = 100 }, "max_concurrent_downloads"},
		{"zero timeout", func(c *Config) { c.DownloadTimeoutSeconds = 0 }, "download_timeout_seconds"},
		{"empty format", func(c *Config) { c.Format = "" }, "format"},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
	}

	for _, tt := range tests {
		cfg := Default()
		cfg.Token = "t"
		tt.modify(cfg)
		err := cfg.Validate()
		if tt.want == "" {
			if err != nil {
				t.Errorf("%s: unexpected error: %v", tt.name, err)
			}
			continue
		}
		if err == nil || !strings.Contains(err.Error(), tt.want) {
			t.Errorf("%s: err = %v, want %q", tt.name, err, tt.want)
		}
	}
}

func TestSlogLevelDefault(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = ""
	if cfg.SlogLevel() != slog.LevelInfo {
		t.Errorf("level = %v, want info", cfg.SlogLevel())
	}
}
