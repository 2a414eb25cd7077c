package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func startWatcher(t *testing.T, path string) <-chan *Config {
	t.Helper()

	changes := make(chan *Config, 8)
	w, err := NewWatcher(path, 20*time.Millisecond, zerolog.Nop(), func(cfg *Config) {
		changes <- cfg
	})
	if err != nil {
		t.Fatalf("NewWatcher() error: %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	t.Cleanup(w.Stop)
	return changes
}

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	os.WriteFile(path, []byte("settings:\n  buttonStyle: numeric\n"), 0644)

	changes := startWatcher(t, path)

	os.WriteFile(path, []byte("settings:\n  buttonStyle: windows\n"), 0644)

	select {
	case cfg := <-changes:
		if cfg.Settings.ButtonStyle != ButtonStyleWindows {
			t.Errorf("ButtonStyle = %q, want windows", cfg.Settings.ButtonStyle)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no reload after write")
	}
}

func TestWatcher_SkipsInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	os.WriteFile(path, []byte("settings:\n  buttonStyle: numeric\n"), 0644)

	changes := startWatcher(t, path)

	os.WriteFile(path, []byte("settings:\n  buttonStyle: sparkles\n"), 0644)

	select {
	case cfg := <-changes:
		t.Fatalf("invalid config should not be delivered, got %+v", cfg.Settings)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	os.WriteFile(path, []byte("{}\n"), 0644)

	changes := startWatcher(t, path)

	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hello"), 0644)

	select {
	case <-changes:
		t.Fatal("unrelated file should not trigger a reload")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcher_DefaultJSONConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, DefaultConfigDir)
	path := filepath.Join(dir, "config.json")
	os.MkdirAll(dir, 0755)
	os.WriteFile(path, []byte(`{"settings": {"buttonStyle": "numeric"}}`), 0644)

	w, err := NewWatcher("", 20*time.Millisecond, zerolog.Nop(), nil)
	if err != nil {
		t.Fatalf("NewWatcher() error: %v", err)
	}
	defer w.Stop()
	if w.Path() != path {
		t.Fatalf("Path() = %q, want %q", w.Path(), path)
	}

	changes := startWatcher(t, "")
	os.WriteFile(path, []byte(`{"settings": {"buttonStyle": "windows"}}`), 0644)

	select {
	case cfg := <-changes:
		if cfg.Settings.ButtonStyle != ButtonStyleWindows {
			t.Errorf("ButtonStyle = %q, want windows", cfg.Settings.ButtonStyle)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no reload after writing config.json")
	}
}

func TestWatcher_AtomicSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	os.WriteFile(path, []byte("{}\n"), 0644)

	changes := startWatcher(t, path)

	tmp := filepath.Join(dir, ".config.yaml.swp")
	os.WriteFile(tmp, []byte("refresh:\n  interval: 30s\n"), 0644)
	os.Rename(tmp, path)

	select {
	case cfg := <-changes:
		if cfg.RefreshInterval() != 30*time.Second {
			t.Errorf("RefreshInterval() = %v", cfg.RefreshInterval())
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no reload after rename")
	}
}
