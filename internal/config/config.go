// Package config loads caffeine tracker configuration from TOML and the
// environment
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/baely/caffeine/internal/common/errors"
	"github.com/baely/caffeine/internal/common/logger"
)

// Config holds all caffeine tracker configuration.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Decay    DecayConfig    `toml:"decay"`
	Up       UpConfig       `toml:"up"`
	Log      LogConfig      `toml:"log"`
}

type ServerConfig struct {
	Addr         string   `toml:"addr"`
	TrackerHosts []string `toml:"tracker_hosts"` // empty means any host
	WebhookHosts []string `toml:"webhook_hosts"`
}

type DatabaseConfig struct {
	Driver   string `toml:"driver"` // "sqlite" or "postgres"
	Path     string `toml:"path"`   // sqlite only
	User     string `toml:"user"`
	Password string `toml:"password"`
	Host     string `toml:"host"`
	Port     string `toml:"port"`
	Name     string `toml:"name"`
	SSLMode  string `toml:"sslmode"`
}

type DecayConfig struct {
	HalfLifeHours float64 `toml:"half_life_hours"`
	Timezone      string  `toml:"timezone"` // IANA name or "Local"
}

type UpConfig struct {
	AccessToken   string `toml:"access_token"`
	WebhookSecret string `toml:"webhook_secret"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr: ":8080",
		},
		Database: DatabaseConfig{
			Driver:  "sqlite",
			Path:    "", // resolved at runtime via DefaultDBPath()
			Port:    "5432",
			SSLMode: "disable",
		},
		Decay: DecayConfig{
			HalfLifeHours: 5,
			Timezone:      "Local",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// DefaultDBPath returns the default database path: ~/.caffeine/caffeine.db
func DefaultDBPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".caffeine", "caffeine.db"), nil
}

// Load reads the TOML file at path over the defaults, applies environment
// overrides and validates the result. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		md, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return Config{}, errors.Invalid("unknown config keys in %s: %s", path, strings.Join(keys, ", "))
		}
	}

	cfg.applyEnv(os.LookupEnv)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	set := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	set("DB_USER", &c.Database.User)
	set("DB_PASSWORD", &c.Database.Password)
	set("DB_HOST", &c.Database.Host)
	set("DB_PORT", &c.Database.Port)
	set("DB_NAME", &c.Database.Name)
	set("CAFFEINE_DB_PATH", &c.Database.Path)
	set("CAFFEINE_TZ", &c.Decay.Timezone)
	set("UP_ACCESS_TOKEN", &c.Up.AccessToken)
	set("UP_WEBHOOK_SECRET", &c.Up.WebhookSecret)

	// A postgres host in the environment means the deployment is postgres
	if _, ok := lookup("DB_HOST"); ok && c.Database.Host != "" {
		c.Database.Driver = "postgres"
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Decay.HalfLifeHours <= 0 {
		return errors.Invalid("decay.half_life_hours must be > 0, got %v", c.Decay.HalfLifeHours)
	}
	switch c.Database.Driver {
	case "sqlite":
	case "postgres":
		if c.Database.Host == "" || c.Database.Name == "" {
			return errors.Invalid("postgres needs database.host and database.name")
		}
	default:
		return errors.Invalid("unknown database.driver %q", c.Database.Driver)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		return errors.Wrap(errors.ErrInvalidInput, "%v", err)
	}
	return nil
}

// Location resolves the timezone used to pick the calendar day of charts.
func (c *Config) Location() (*time.Location, error) {
	if c.Decay.Timezone == "" || c.Decay.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Decay.Timezone)
	if err != nil {
		return nil, errors.Invalid("decay.timezone %q: %v", c.Decay.Timezone, err)
	}
	return loc, nil
}

// PostgresDSN returns the lib/pq connection string.
func (d DatabaseConfig) PostgresDSN() string {
	return fmt.Sprintf("user=%s password=%s host=%s port=%s dbname=%s sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}
