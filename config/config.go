// Package config loads the settings of the gsheets command line from a TOML file and the
// environment.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
	"go.alis.build/gsheets"
	"go.alis.build/gsheets/alog"
	"go.alis.build/gsheets/retry"
	"google.golang.org/api/option"
)

// Environment variables overriding the file settings.
const (
	EnvCredentials = "GOOGLESHEETS_CREDENTIALS"
	EnvRunMode     = "GOOGLESHEETS_RUN_MODE"
	EnvLogLevel    = "GOOGLESHEETS_LOG_LEVEL"
	EnvProject     = "ALIS_OS_PROJECT"
)

// Run modes select the kind of credentials file looked up when none is configured.
const (
	RunModeService = "service"
	RunModeUser    = "user"
)

// ErrInvalidConfig is returned for settings that cannot be used.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds every setting of the command line.
type Config struct {
	// Credentials is the path of a service account or authorized user JSON file. Empty falls back
	// to the run mode's default file, then to Application Default Credentials.
	Credentials string      `toml:"credentials"`
	RunMode     string      `toml:"run_mode"`
	Project     string      `toml:"project"`
	Log         LogConfig   `toml:"log"`
	Retry       RetryConfig `toml:"retry"`
	DriveRetry  RetryConfig `toml:"drive_retry"`
}

// LogConfig configures the alog.Logger.
type LogConfig struct {
	Level          string `toml:"level"`
	Local          bool   `toml:"local"`
	SourceLocation bool   `toml:"source_location"`
}

// RetryConfig configures a retry.Policy.
type RetryConfig struct {
	MaxAttempts  int     `toml:"max_attempts"`
	InitialDelay string  `toml:"initial_delay"`
	Multiplier   float64 `toml:"multiplier"`
	// Retryable lists classifications such as "googleapi:429".
	Retryable []string `toml:"retryable"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		RunMode:    RunModeService,
		Log:        LogConfig{Level: "info"},
		Retry:      retryConfig(retry.DefaultPolicy()),
		DriveRetry: retryConfig(retry.DrivePolicy()),
	}
}

func retryConfig(p *retry.Policy) RetryConfig {
	c := RetryConfig{
		MaxAttempts:  p.MaxAttempts(),
		InitialDelay: p.InitialDelay().String(),
		Multiplier:   p.Multiplier(),
	}
	for _, cl := range p.RetryableSet() {
		c.Retryable = append(c.Retryable, cl.String())
	}
	return c
}

// Load reads the TOML file at path over the defaults and applies the environment overrides. An
// empty path skips the file. Unknown keys are rejected.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := Decode(bytes.NewReader(data), cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Decode decodes TOML from r into cfg, keeping the values of absent keys.
func Decode(r io.Reader, cfg *Config) error {
	dec := toml.NewDecoder(r).DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return fmt.Errorf("%w: %s", ErrInvalidConfig, strict.String())
		}
		var decodeErr *toml.DecodeError
		if errors.As(err, &decodeErr) {
			row, col := decodeErr.Position()
			return fmt.Errorf("%w: line %d column %d: %v", ErrInvalidConfig, row, col, decodeErr)
		}
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Encode writes cfg as TOML.
func Encode(w io.Writer, cfg *Config) error {
	return toml.NewEncoder(w).SetIndentTables(true).Encode(cfg)
}

func (c *Config) applyEnv() {
	if v, ok := os.LookupEnv(EnvCredentials); ok {
		c.Credentials = v
	}
	if v, ok := os.LookupEnv(EnvRunMode); ok && v != "" {
		c.RunMode = v
	}
	if v, ok := os.LookupEnv(EnvLogLevel); ok && v != "" {
		c.Log.Level = v
	}
	if v, ok := os.LookupEnv(EnvProject); ok {
		c.Project = v
	}
}

// Validate checks the run mode and both retry policies.
func (c *Config) Validate() error {
	switch c.RunMode {
	case RunModeService, RunModeUser:
	default:
		return fmt.Errorf("%w: run_mode %q must be %q or %q", ErrInvalidConfig, c.RunMode, RunModeService, RunModeUser)
	}
	if _, err := c.Retry.Policy(); err != nil {
		return fmt.Errorf("%w: retry: %w", ErrInvalidConfig, err)
	}
	if _, err := c.DriveRetry.Policy(); err != nil {
		return fmt.Errorf("%w: drive_retry: %w", ErrInvalidConfig, err)
	}
	return nil
}

// Policy builds the retry.Policy described by c.
func (c RetryConfig) Policy() (*retry.Policy, error) {
	delay, err := time.ParseDuration(c.InitialDelay)
	if err != nil {
		return nil, fmt.Errorf("%w: initial_delay: %v", retry.ErrInvalidPolicy, err)
	}
	classes := make([]retry.Classification, 0, len(c.Retryable))
	for _, s := range c.Retryable {
		cl, err := retry.ParseClassification(s)
		if err != nil {
			return nil, err
		}
		classes = append(classes, cl)
	}
	return retry.NewPolicy(c.MaxAttempts, delay, c.Multiplier, classes...)
}

// Logger builds the logger described by c.Log, writing to w.
func (c *Config) Logger(w io.Writer) *alog.Logger {
	env := alog.EnvironmentGoogle
	if c.Log.Local {
		env = alog.EnvironmentLocal
	}
	opts := []alog.Option{
		alog.WithWriter(w),
		alog.WithLevel(alog.ParseLevel(c.Log.Level)),
		alog.WithEnvironment(env),
		alog.WithProject(c.Project),
	}
	if c.Log.SourceLocation {
		opts = append(opts, alog.WithSourceLocation())
	}
	return alog.New(opts...)
}

// CredentialsFile returns the credentials file to use, or "" for Application Default Credentials.
// Without an explicit file the run mode's file under ~/.config/gspread is used when it exists.
func (c *Config) CredentialsFile() string {
	if c.Credentials != "" {
		return c.Credentials
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	name := "service_account.json"
	if c.RunMode == RunModeUser {
		name = "authorized_user.json"
	}
	path := filepath.Join(dir, "gspread", name)
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

// ClientOptions returns the gsheets options described by c.
func (c *Config) ClientOptions(log *alog.Logger) ([]gsheets.Option, error) {
	policy, err := c.Retry.Policy()
	if err != nil {
		return nil, err
	}
	drivePolicy, err := c.DriveRetry.Policy()
	if err != nil {
		return nil, err
	}
	opts := []gsheets.Option{
		gsheets.WithLogger(log),
		gsheets.WithPolicy(policy),
		gsheets.WithDrivePolicy(drivePolicy),
	}
	if path := c.CredentialsFile(); path != "" {
		opts = append(opts, gsheets.WithClientOptions(option.WithCredentialsFile(path)))
	}
	return opts, nil
}
