// Package config provides configuration defaults for icex: the global
// configuration directory, the optional config.yaml file, and env files.
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// Dir returns the icex configuration directory.
//
// Resolution:
//   - $ICEX_CONFIG_HOME if set (explicit override)
//   - $XDG_CONFIG_HOME/icex if set (respects XDG on any platform)
//   - %AppData%/icex on Windows
//   - ~/.config/icex on macOS and Linux
func Dir() string {
	// Explicit override
	if dir := os.Getenv("ICEX_CONFIG_HOME"); dir != "" {
		return dir
	}

	// XDG override (works on any platform)
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "icex")
	}

	// Windows: use AppData
	if runtime.GOOS == "windows" {
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "icex")
		}
	}

	// macOS and Linux: ~/.config/icex
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "icex")
}
