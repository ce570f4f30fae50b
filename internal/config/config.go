package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the runtime settings for the notice board server.
// Values come from an optional YAML file; NOTICEBOARD_* environment
// variables override individual fields.
type Config struct {
	Addr        string `yaml:"addr"`
	DBPath      string `yaml:"db_path"`
	Environment string `yaml:"environment"` // "development" or "production"
	CSRFKey     string `yaml:"csrf_key"`    // 64 hex characters (32 bytes)

	// AuthorID is the placeholder logged-in user id handed to every request
	// until real authentication exists. Injected per request, never global state.
	AuthorID string `yaml:"author_id"`

	Email EmailConfig `yaml:"email"`
}

// EmailConfig controls the pinned-notice announcement emails.
type EmailConfig struct {
	ResendKey  string   `yaml:"resend_key"`
	From       string   `yaml:"from"`
	ReplyTo    string   `yaml:"reply_to"`
	AnnounceTo []string `yaml:"announce_to"`
}

func defaults() Config {
	return Config{
		Addr:        ":8080",
		DBPath:      "noticeboard.db",
		Environment: "development",
		AuthorID:    "USER01",
		Email: EmailConfig{
			From: "Notice Board <noreply@example.com>",
		},
	}
}

// Load reads the config file at path (skipped when path is blank or missing)
// and applies environment overrides.
// PRE: path is a YAML file path or ""
// POST: Returns a fully populated Config
func Load(path string) (Config, error) {
	cfg := defaults()
	if strings.TrimSpace(path) != "" {
		b, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return cfg, err
		}
		if err == nil {
			if err := yaml.Unmarshal(b, &cfg); err != nil {
				return cfg, fmt.Errorf("%s: %w", path, err)
			}
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

// applyEnv overrides file values with NOTICEBOARD_* environment variables.
func (c *Config) applyEnv() {
	c.Addr = envOrDefault("NOTICEBOARD_ADDR", c.Addr)
	c.DBPath = envOrDefault("NOTICEBOARD_DB_PATH", c.DBPath)
	c.Environment = envOrDefault("NOTICEBOARD_ENV", c.Environment)
	c.CSRFKey = envOrDefault("NOTICEBOARD_CSRF_KEY", c.CSRFKey)
	c.AuthorID = envOrDefault("NOTICEBOARD_AUTHOR_ID", c.AuthorID)
	c.Email.ResendKey = envOrDefault("NOTICEBOARD_RESEND_KEY", c.Email.ResendKey)
	c.Email.From = envOrDefault("NOTICEBOARD_RESEND_FROM", c.Email.From)
	c.Email.ReplyTo = envOrDefault("NOTICEBOARD_REPLY_TO", c.Email.ReplyTo)
	if v := os.Getenv("NOTICEBOARD_ANNOUNCE_TO"); v != "" {
		var to []string
		for _, addr := range strings.Split(v, ",") {
			if addr = strings.TrimSpace(addr); addr != "" {
				to = append(to, addr)
			}
		}
		c.Email.AnnounceTo = to
	}
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
