// Package config loads the command line configuration from the environment.
//
// Values come from MIXIN_AP_* variables, optionally seeded from a .env file,
// and are overridden by command line flags. The result is checked with
// struct tags before use.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"mixin-ap/internal/logging"
	"mixin-ap/internal/targets"
)

// Environment variables read by FromEnv.
const (
	EnvLogLevel    = "MIXIN_AP_LOG_LEVEL"
	EnvLogDir      = "MIXIN_AP_LOG_DIR"
	EnvStore       = "MIXIN_AP_STORE"
	EnvStoreDir    = "MIXIN_AP_STORE_DIR"
	EnvMetricsFile = "MIXIN_AP_METRICS_FILE"
	EnvDebounce    = "MIXIN_AP_WATCH_DEBOUNCE"
	EnvOptions     = "MIXIN_AP_OPTIONS"
	EnvSession     = "MIXIN_AP_SESSION"
)

// Target store kinds.
const (
	StoreFile   = "file"
	StoreBadger = "badger"
	StoreMemory = "memory"
)

// DefaultDebounce is the watch debounce when none is configured.
const DefaultDebounce = 300 * time.Millisecond

// Config is the command line configuration.
type Config struct {
	LogLevel string `validate:"omitempty,oneof=debug info warn warning error"`
	LogDir   string
	// Store selects the target association store.
	Store string `validate:"oneof=file badger memory"`
	// StoreDir is the session directory of the file store or the database
	// directory of the badger store.
	StoreDir    string `validate:"required_if=Store badger"`
	MetricsFile string
	Debounce    time.Duration `validate:"gte=0"`
	// Options are processor options, overridden per key by flags.
	Options map[string]string `validate:"dive,keys,optionkey,endkeys"`
	// Session pins the target session instead of generating one.
	Session string `validate:"omitempty,session"`
}

var (
	validate      = newValidator()
	optionKeyExpr = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_.\-]*$`)
	sessionExpr   = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.\-]*$`)
)

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("optionkey", func(fl validator.FieldLevel) bool {
		return optionKeyExpr.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("session", func(fl validator.FieldLevel) bool {
		return sessionExpr.MatchString(fl.Field().String())
	})

	return v
}

// Load reads the given .env files (".env" when none are given; missing
// files are skipped) into the process environment, then builds the
// configuration from it.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}

	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	return FromEnv(os.Getenv)
}

// FromEnv builds the configuration from getenv. It does not validate.
func FromEnv(getenv func(string) string) (*Config, error) {
	c := &Config{
		LogLevel:    strings.ToLower(strings.TrimSpace(getenv(EnvLogLevel))),
		LogDir:      strings.TrimSpace(getenv(EnvLogDir)),
		Store:       firstNonEmpty(strings.ToLower(strings.TrimSpace(getenv(EnvStore))), StoreFile),
		StoreDir:    strings.TrimSpace(getenv(EnvStoreDir)),
		MetricsFile: strings.TrimSpace(getenv(EnvMetricsFile)),
		Session:     strings.TrimSpace(getenv(EnvSession)),
		Debounce:    DefaultDebounce,
		Options:     map[string]string{},
	}

	if raw := strings.TrimSpace(getenv(EnvDebounce)); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", EnvDebounce, err)
		}

		c.Debounce = d
	}

	if err := c.SetOptions(strings.Fields(getenv(EnvOptions))); err != nil {
		return nil, fmt.Errorf("%s: %w", EnvOptions, err)
	}

	return c, nil
}

// SetOptions merges "key=value" pairs into Options, later pairs winning.
func (c *Config) SetOptions(pairs []string) error {
	if c.Options == nil {
		c.Options = map[string]string{}
	}

	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return fmt.Errorf("option %q is not key=value", pair)
		}

		c.Options[strings.TrimSpace(key)] = value
	}

	return nil
}

// Validate checks the struct tags.
func (c *Config) Validate() error {
	return validate.Struct(c)
}

// Logger builds the logger described by the configuration, writing text
// to out.
func (c *Config) Logger(out io.Writer) *logging.Logger {
	level, _ := logging.ParseLevel(c.LogLevel)

	return logging.New(logging.Config{Level: level, LogDir: c.LogDir, Service: "mixin-ap", Output: out})
}

// OpenStore opens the configured target store. The returned closer must be
// called when the store is no longer needed.
func (c *Config) OpenStore(logger *slog.Logger) (targets.Store, io.Closer, error) {
	switch c.Store {
	case StoreBadger, StoreMemory:
		store, err := targets.OpenBadgerStore(targets.BadgerConfig{
			Path:     c.StoreDir,
			InMemory: c.Store == StoreMemory,
			Logger:   logger,
		})
		if err != nil {
			return nil, nil, err
		}

		return store, store, nil
	default:
		return targets.FileStore{Dir: c.StoreDir}, nopCloser{}, nil
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}

	return ""
}
