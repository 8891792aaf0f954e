// Package config persists reader preferences between sessions.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/haasele/focus-reader/internal/logging"
	"github.com/haasele/focus-reader/internal/paginate"
	"github.com/haasele/focus-reader/internal/rsvp"
)

// Config holds the preferences worth remembering between sessions. Flags
// override these for a single run; only an explicit Save writes them back.
type Config struct {
	WPM           float64 `json:"wpm"`
	LongWordDelay bool    `json:"long_word_delay"`
	ORPPolicy     string  `json:"orp_policy"`
	PageSize      int     `json:"page_size"`
}

// Default returns the out-of-the-box preferences.
func Default() Config {
	return Config{
		WPM:           rsvp.DefaultWPM,
		LongWordDelay: true,
		ORPPolicy:     rsvp.PolicyProportional.String(),
		PageSize:      paginate.DefaultPageSize,
	}
}

// Path returns the config file location under the XDG config dir.
func Path() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "focus-reader", "config.json"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "focus-reader", "config.json"), nil
}

// Load reads the stored preferences. A missing or unreadable file is not an
// error; defaults apply and the reason is logged.
func Load() Config {
	cfg := Default()
	p, err := Path()
	if err != nil {
		return cfg
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if !os.IsNotExist(err) {
			logging.Warn("config unreadable, using defaults", "path", p, "err", err)
		}
		return cfg
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		logging.Warn("config malformed, using defaults", "path", p, "err", err)
		return Default()
	}
	return cfg.clamped()
}

// Save writes the preferences as indented JSON, creating the directory as
// needed.
func Save(cfg Config) error {
	p, err := Path()
	if err != nil {
		return fmt.Errorf("config: resolve path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("config: create config dir: %w", err)
	}
	data, err := json.MarshalIndent(cfg.clamped(), "", "  ")
	if err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	if err := os.WriteFile(p, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("config: write: %w", err)
	}
	return nil
}

// clamped folds out-of-range values back to something usable rather than
// carrying them into a session.
func (c Config) clamped() Config {
	c.WPM = rsvp.ClampWPM(c.WPM)
	if c.PageSize < 1 {
		c.PageSize = paginate.DefaultPageSize
	}
	c.ORPPolicy = rsvp.ParsePolicy(c.ORPPolicy).String()
	return c
}
