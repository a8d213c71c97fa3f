// Package config loads notedeck configuration.
//
// Values are layered, later sources overriding earlier ones:
//   - built-in defaults (Default)
//   - an optional YAML file
//   - a .env file in the working directory, if present
//   - NOTEDECK_* environment variables, with "__" separating sections
//     (NOTEDECK_DATABASE__DSN sets database.dsn)
//   - command-line flags that were explicitly set
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

const envPrefix = "NOTEDECK_"

// Config is the full application configuration.
type Config struct {
	Database Database `koanf:"database"`
	HTTP     HTTP     `koanf:"http"`
	Sync     Sync     `koanf:"sync"`
	Review   Review   `koanf:"review"`
	Log      Log      `koanf:"log"`
}

type Database struct {
	Driver string `koanf:"driver" validate:"oneof=sqlite postgres"`
	DSN    string `koanf:"dsn" validate:"required"`
}

type HTTP struct {
	Addr            string        `koanf:"addr" validate:"required"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"min=0"`
}

type Sync struct {
	// ReposDir holds local clones of git sources.
	ReposDir string `koanf:"repos_dir" validate:"required"`
	// Interval between scheduled syncs; zero disables scheduling.
	Interval time.Duration `koanf:"interval" validate:"min=0"`
}

type Review struct {
	// DefaultTZOffset is used when a request carries no offset, in minutes east of UTC.
	DefaultTZOffset   int `koanf:"default_tz_offset" validate:"min=-720,max=840"`
	StreakHorizonDays int `koanf:"streak_horizon_days" validate:"min=1"`
}

type Log struct {
	Level  string `koanf:"level" validate:"oneof=debug info warn error"`
	Format string `koanf:"format" validate:"oneof=text json"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Database: Database{Driver: "sqlite", DSN: "notedeck.db"},
		HTTP:     HTTP{Addr: ":8080", ShutdownTimeout: 5 * time.Second},
		Sync:     Sync{ReposDir: "repos", Interval: time.Hour},
		Review:   Review{DefaultTZOffset: 0, StreakHorizonDays: 365},
		Log:      Log{Level: "info", Format: "text"},
	}
}

// RegisterFlags adds a flag for every setting to flags, defaulting to Default().
// Flag names are the koanf keys, e.g. --database.dsn.
func RegisterFlags(flags *pflag.FlagSet) {
	d := Default()
	flags.String("database.driver", d.Database.Driver, "Database driver: sqlite or postgres")
	flags.String("database.dsn", d.Database.DSN, "Database DSN (a file path for sqlite)")
	flags.String("http.addr", d.HTTP.Addr, "HTTP listen address")
	flags.Duration("http.shutdown_timeout", d.HTTP.ShutdownTimeout, "Grace period for in-flight requests on shutdown")
	flags.String("sync.repos_dir", d.Sync.ReposDir, "Directory for local clones of git sources")
	flags.Duration("sync.interval", d.Sync.Interval, "Interval between scheduled syncs (0 disables)")
	flags.Int("review.default_tz_offset", d.Review.DefaultTZOffset, "UTC offset in minutes used when a request has none")
	flags.Int("review.streak_horizon_days", d.Review.StreakHorizonDays, "How many days back streaks are counted")
	flags.String("log.level", d.Log.Level, "Log level: debug, info, warn or error")
	flags.String("log.format", d.Log.Format, "Log format: text or json")
}

// Load builds the configuration from path (optional), the environment and
// the flags (may be nil), then validates it.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	if flags != nil {
		// Unchanged flags only fill keys that no earlier layer set.
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	cfg := Default()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// envKey maps NOTEDECK_SYNC__REPOS_DIR to sync.repos_dir.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, envPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks every field constraint and reports all violations at once.
func Validate(cfg *Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("failed to validate config: %w", err)
	}
	msgs := make([]string, len(verrs))
	for i, fe := range verrs {
		msgs[i] = fmt.Sprintf("%s fails %q (got %v)", fe.Namespace(), fe.Tag(), fe.Value())
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}
