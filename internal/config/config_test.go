package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/1broseidon/quickterm/internal/geometry"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if cfg.WindowPosition() != geometry.PositionTop {
		t.Fatalf("expected default position top, got %q", cfg.Position)
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Ratio != 0.25 {
		t.Fatalf("expected default ratio 0.25, got %v", cfg.Ratio)
	}
}

func TestLoadFromPath_MergesOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := strings.Join([]string{
		"term: kitty",
		"position: bottom",
		"ratio: 0.4",
		"shells:",
		"  python: python3",
		"  js: node",
		"",
	}, "\n")
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Term != "kitty" {
		t.Fatalf("expected term kitty, got %q", cfg.Term)
	}
	if cfg.WindowPosition() != geometry.PositionBottom {
		t.Fatalf("expected position bottom, got %q", cfg.Position)
	}
	if diff := cmp.Diff([]string{"js", "python"}, cfg.ShellNames()); diff != "" {
		t.Fatalf("shell names mismatch (-want +got):\n%s", diff)
	}
	if !cfg.HasShell("python") || cfg.HasShell("ruby") {
		t.Fatal("HasShell gave wrong answers")
	}
}

func TestLoadFromPath_RejectsBadRatio(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("ratio: 1.5\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := LoadFromPath(path); err == nil {
		t.Fatal("expected error for ratio outside (0,1)")
	}
}

func TestLoadFromPath_RejectsBadPosition(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("position: left\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := LoadFromPath(path); err == nil {
		t.Fatal("expected error for unknown position")
	}
}

func TestValidate_RejectsEmptyShellCommand(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Shells = map[string]string{"python": "  "}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for empty shell command")
	}
}
