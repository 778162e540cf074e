package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Format != "json" || cfg.LogLevel != "warn" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	d, err := cfg.Debounce()
	if err != nil || d != 3*time.Second {
		t.Fatalf("Debounce = %v, %v", d, err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	cfg := DefaultConfig()
	cfg.Author = "qa@plant"
	cfg.AutosaveDebounce = "500ms"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Author != "qa@plant" {
		t.Fatalf("expected author qa@plant, got %q", loaded.Author)
	}
	if d, _ := loaded.Debounce(); d != 500*time.Millisecond {
		t.Fatalf("expected 500ms, got %v", d)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CHECKLIST_DIR", "/tmp/checklists")
	t.Setenv("CHECKLIST_FORMAT", "yaml")
	t.Setenv("CHECKLIST_AUTHOR", "env-author")

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("author: file-author\nformat: json\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DataDir != "/tmp/checklists" || cfg.Format != "yaml" || cfg.Author != "env-author" {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
}

func TestLoad_RejectsBadInput(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("format: [json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(bad); err == nil {
		t.Fatalf("expected parse error")
	}

	neg := filepath.Join(dir, "neg.yaml")
	if err := os.WriteFile(neg, []byte("autosave_debounce: -1s\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(neg); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestLoadDefault_UsesConfigDir(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CHECKLIST_CONFIG_DIR", dir)
	t.Setenv("CHECKLIST_DIR", "")

	cfg, err := LoadDefault()
	if err != nil {
		t.Fatalf("LoadDefault: %v", err)
	}
	if cfg.DataDir != filepath.Join(dir, "data") {
		t.Fatalf("unexpected data dir %q", cfg.DataDir)
	}
}

func TestSet_WritesOnlyFileValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	t.Setenv("CHECKLIST_AUTHOR", "from-env")

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Author != "" {
		t.Fatalf("LoadFile must ignore env, got author %q", cfg.Author)
	}
	if err := cfg.Set("autosave_debounce", " 1s "); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := cfg.Set("autosave_debounce", "soon"); err == nil {
		t.Fatalf("expected invalid duration to be rejected")
	}
	cfg.AutosaveDebounce = "1s"
	if err := cfg.Set("colour", "red"); err == nil {
		t.Fatalf("expected unknown key error")
	}
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(b) == "" || !strings.Contains(string(b), "autosave_debounce: 1s") || strings.Contains(string(b), "from-env") {
		t.Fatalf("unexpected file:\n%s", b)
	}
}
