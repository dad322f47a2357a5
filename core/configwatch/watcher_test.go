package configwatch

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jdelaire/clipbot/core/policy"
	"github.com/jdelaire/clipbot/internal/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// writeAt writes content and pins the mtime so consecutive writes within
// the filesystem's timestamp granularity still look different.
func writeAt(t *testing.T, path, content string, mtime time.Time) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatal(err)
	}
}

func TestCheckReloadsAllowlist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clipbot.toml")
	base := time.Now().Add(-time.Hour)
	writeAt(t, path, "allowed_chats = [1]\n", base)

	pol := policy.New([]int64{1})
	w := New(path, time.Hour, testLogger())
	w.OnReload(func(cfg *config.Config) { pol.SetAllowed(cfg.AllowedChats) })

	if w.Check() {
		t.Fatal("unchanged file should not reload")
	}

	writeAt(t, path, "allowed_chats = [2]\n", base.Add(time.Minute))
	if !w.Check() {
		t.Fatal("expected reload after change")
	}

	if err := pol.Authorize(2, 1, time.Now()); err != nil {
		t.Errorf("chat 2 should be allowed after reload: %v", err)
	}
	if err := pol.Authorize(1, 2, time.Now()); err == nil {
		t.Error("chat 1 should be rejected after reload")
	}
}

func TestCheckKeepsSettingsOnBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clipbot.toml")
	base := time.Now().Add(-time.Hour)
	writeAt(t, path, "allowed_chats = [1]\n", base)

	var calls int
	w := New(path, time.Hour, testLogger())
	w.OnReload(func(*config.Config) { calls++ })

	writeAt(t, path, "allowed_chats = [\n", base.Add(time.Minute))
	if w.Check() {
		t.Error("broken file should not reload")
	}
	if calls != 0 {
		t.Errorf("callback fired %d times for broken file", calls)
	}

	// Fixing the file is picked up on the next check.
	writeAt(t, path, "allowed_chats = [3]\n", base.Add(2*time.Minute))
	if !w.Check() || calls != 1 {
		t.Errorf("expected one reload after fix, got %d", calls)
	}
}

func TestCheckIgnoresDeletedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clipbot.toml")
	writeAt(t, path, "allowed_chats = [1]\n", time.Now().Add(-time.Hour))

	var calls int
	w := New(path, time.Hour, testLogger())
	w.OnReload(func(*config.Config) { calls++ })

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	if w.Check() || calls != 0 {
		t.Errorf("deleted file triggered reload (%d calls)", calls)
	}
}

func TestCheckFileAppearsLater(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clipbot.toml")

	var got []int64
	w := New(path, time.Hour, testLogger())
	w.OnReload(func(cfg *config.Config) { got = cfg.AllowedChats })

	writeAt(t, path, "allowed_chats = [42]\n", time.Now())
	if !w.Check() {
		t.Fatal("expected reload when file appears")
	}
	if len(got) != 1 || got[0] != 42 {
		t.Errorf("allowed chats = %v, want [42]", got)
	}
}

func TestRunPicksUpChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clipbot.toml")
	base := time.Now().Add(-time.Hour)
	writeAt(t, path, "allowed_chats = [1]\n", base)

	reloaded := make(chan []int64, 1)
	w := New(path, 20*time.Millisecond, testLogger())
	w.OnReload(func(cfg *config.Config) {
		select {
		case reloaded <- cfg.AllowedChats:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	writeAt(t, path, "allowed_chats = [7, 8]\n", base.Add(time.Minute))

	select {
	case ids := <-reloaded:
		if len(ids) != 2 {
			t.Errorf("allowed chats = %v, want [7 8]", ids)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for reload")
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	w := New(filepath.Join(t.TempDir(), "none.toml"), 10*time.Millisecond, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not exit after context cancel")
	}
}

func TestNewDefaultInterval(t *testing.T) {
	w := New("x.toml", 0, testLogger())
	if w.interval != DefaultInterval {
		t.Errorf("interval = %v, want %v", w.interval, DefaultInterval)
	}
}
