package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults applied when no config file overrides them.
const (
	DefaultBaseURL   = "https://icity.ly"
	DefaultOutputDir = "./export"
	DefaultPageDelay = 150 * time.Millisecond
)

// Config holds the export defaults that can be set in config.yaml.
// Flags and interactive prompts always override file values.
type Config struct {
	BaseURL     string `yaml:"base_url"`
	OutputDir   string `yaml:"output_dir"`
	Prefix      string `yaml:"prefix"`
	TargetUser  string `yaml:"target_user"`
	MaxPages    int    `yaml:"max_pages"`
	PageDelayMS int    `yaml:"page_delay_ms"`
	Markdown    *bool  `yaml:"markdown"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		BaseURL:     DefaultBaseURL,
		OutputDir:   DefaultOutputDir,
		PageDelayMS: int(DefaultPageDelay / time.Millisecond),
	}
}

// Load reads a config file and fills unset fields with defaults.
// A missing file is not an error and yields the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config file %s: %w", path, err)
	}

	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return cfg, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	cfg.merge(file)
	return cfg, nil
}

// LoadDefault reads config.yaml from the icex configuration directory.
func LoadDefault() (Config, error) {
	dir := Dir()
	if dir == "" {
		return Default(), nil
	}
	return Load(filepath.Join(dir, "config.yaml"))
}

// merge overlays non-zero file values onto the config.
func (c *Config) merge(file Config) {
	if file.BaseURL != "" {
		c.BaseURL = file.BaseURL
	}
	if file.OutputDir != "" {
		c.OutputDir = file.OutputDir
	}
	if file.Prefix != "" {
		c.Prefix = file.Prefix
	}
	if file.TargetUser != "" {
		c.TargetUser = file.TargetUser
	}
	if file.MaxPages > 0 {
		c.MaxPages = file.MaxPages
	}
	if file.PageDelayMS > 0 {
		c.PageDelayMS = file.PageDelayMS
	}
	if file.Markdown != nil {
		c.Markdown = file.Markdown
	}
}

// PageDelay returns the inter-page delay as a duration.
func (c *Config) PageDelay() time.Duration {
	return time.Duration(c.PageDelayMS) * time.Millisecond
}

// WantMarkdown reports whether the day-bucketed Markdown tree should be
// produced. Defaults to true when the config file does not say otherwise.
func (c *Config) WantMarkdown() bool {
	if c.Markdown == nil {
		return true
	}
	return *c.Markdown
}
