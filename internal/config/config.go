package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// HolidayConfig controls the public holiday feed.
type HolidayConfig struct {
	// URL is a JSON document mapping "YYYY-MM-DD" to a holiday name.
	URL string `yaml:"url" json:"url"`

	// RefreshCron re-fetches the feed on a cron schedule so a long-running
	// server picks up the next year's data. Empty disables refresh; the feed
	// is then fetched once at startup only.
	RefreshCron string `yaml:"refresh" json:"refresh"`
}

// ExportConfig controls the PDF export pipeline.
type ExportConfig struct {
	// Dir is where generated PDF files are written.
	Dir string `yaml:"dir" json:"dir"`

	// MonthTimeoutSec / YearTimeoutSec bound a single export run.
	MonthTimeoutSec int `yaml:"month_timeout_sec" json:"month_timeout_sec"`
	YearTimeoutSec  int `yaml:"year_timeout_sec" json:"year_timeout_sec"`

	// CaptureWidth / CaptureHeight are the viewport dimensions used when
	// rasterizing the print view.
	CaptureWidth  int `yaml:"capture_width" json:"capture_width"`
	CaptureHeight int `yaml:"capture_height" json:"capture_height"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the Web UI and API.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA timezone used for "today" and "tomorrow".
	Timezone string `yaml:"timezone" json:"timezone"`

	// StatePath is the JSON file holding categories and rules.
	StatePath string `yaml:"state_path" json:"state_path"`

	Holidays HolidayConfig `yaml:"holidays" json:"holidays"`
	Export   ExportConfig  `yaml:"export" json:"export"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:    "127.0.0.1:8765",
		Timezone:  "Asia/Tokyo",
		StatePath: "gomical-state.json",
		Holidays: HolidayConfig{
			URL:         "https://holidays-jp.github.io/api/v1/date.json",
			RefreshCron: "0 6 * * *",
		},
		Export: ExportConfig{
			Dir:             "exports",
			MonthTimeoutSec: 120,
			YearTimeoutSec:  600,
			CaptureWidth:    1400,
			CaptureHeight:   990,
		},
	}
}

// Normalize fills in missing/zero values with defaults so partially-filled
// configs still behave correctly.
func (c *Config) Normalize() {
	def := DefaultConfig()
	if c.Listen == "" {
		c.Listen = def.Listen
	}
	if c.Timezone == "" {
		c.Timezone = def.Timezone
	}
	if c.StatePath == "" {
		c.StatePath = def.StatePath
	}
	if c.Holidays.URL == "" {
		c.Holidays.URL = def.Holidays.URL
	}
	if c.Export.Dir == "" {
		c.Export.Dir = def.Export.Dir
	}
	if c.Export.MonthTimeoutSec <= 0 {
		c.Export.MonthTimeoutSec = def.Export.MonthTimeoutSec
	}
	if c.Export.YearTimeoutSec <= 0 {
		c.Export.YearTimeoutSec = def.Export.YearTimeoutSec
	}
	if c.Export.CaptureWidth <= 0 {
		c.Export.CaptureWidth = def.Export.CaptureWidth
	}
	if c.Export.CaptureHeight <= 0 {
		c.Export.CaptureHeight = def.Export.CaptureHeight
	}
}

// Load loads configuration from the given YAML path.
//
// If the file does not exist, a default config is written there (creating the
// parent directory if needed) and returned.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes cfg to path atomically (temp file + rename) with 0600
// permissions, creating the parent directory if needed.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".gomical-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
