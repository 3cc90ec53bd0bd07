package config

import (
	"path/filepath"
	"testing"
)

func TestDirExplicitOverride(t *testing.T) {
	t.Setenv("ICEX_CONFIG_HOME", "/tmp/custom-icex")
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")

	if got := Dir(); got != "/tmp/custom-icex" {
		t.Errorf("Dir() = %q, want %q", got, "/tmp/custom-icex")
	}
}

func TestDirXDG(t *testing.T) {
	t.Setenv("ICEX_CONFIG_HOME", "")
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")

	want := filepath.Join("/tmp/xdg", "icex")
	if got := Dir(); got != want {
		t.Errorf("Dir() = %q, want %q", got, want)
	}
}

func TestDirHomeFallback(t *testing.T) {
	t.Setenv("ICEX_CONFIG_HOME", "")
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("HOME", "/tmp/home")

	want := filepath.Join("/tmp/home", ".config", "icex")
	if got := Dir(); got != want {
		t.Errorf("Dir() = %q, want %q", got, want)
	}
}
