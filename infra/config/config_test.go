package config

import (
	"strings"
	"testing"
)

func TestLoad_RequiresServer(t *testing.T) {
	t.Setenv("WALLTERM_SERVER", "")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error without WALLTERM_SERVER")
	}
}

func TestLoad_RejectsBadScheme(t *testing.T) {
	t.Setenv("WALLTERM_SERVER", "ftp://wall.example.com")
	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "scheme") {
		t.Fatalf("expected scheme error, got %v", err)
	}
}

func TestLoad_TrimsTrailingSlash(t *testing.T) {
	t.Setenv("WALLTERM_SERVER", "https://wall.example.com/")
	t.Setenv("WALLTERM_TOKEN", "abc")
	t.Setenv("WALLTERM_WALL", " w1 ")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ServerURL != "https://wall.example.com" {
		t.Fatalf("trailing slash kept: %q", cfg.ServerURL)
	}
	if cfg.Token != "abc" || cfg.WallID != "w1" {
		t.Fatalf("unexpected config: %#v", cfg)
	}
}
