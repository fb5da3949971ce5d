// Package config provides configuration management for the Framereel Agent.
// Configuration is loaded from defaults, an optional TOML file and
// environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

const (
	// Default values
	DefaultPort            = 8787
	DefaultLogLevel        = "info"
	DefaultDataDir         = ".framereel"
	DefaultHistoryMaxItems = 50
	DefaultHistoryMaxBytes = 64 * 1024 * 1024 // 64MB
	DefaultDelayMs         = 100

	// Environment variable names
	EnvPort            = "FRAMEREEL_PORT"
	EnvLogLevel        = "FRAMEREEL_LOG_LEVEL"
	EnvDataDir         = "FRAMEREEL_DATA_DIR"
	EnvHeadless        = "FRAMEREEL_HEADLESS"
	EnvHistoryMaxItems = "FRAMEREEL_HISTORY_MAX_ITEMS"
	EnvHistoryMaxBytes = "FRAMEREEL_HISTORY_MAX_BYTES"
	EnvDefaultDelayMs  = "FRAMEREEL_DEFAULT_DELAY_MS"
	EnvConfigFile      = "FRAMEREEL_CONFIG"

	// Database filename
	DBFilename = "framereel.db"

	// ConfigFilename is looked up inside the data directory when
	// FRAMEREEL_CONFIG is unset.
	ConfigFilename = "config.toml"

	// LockFilename guards against two agents sharing a data directory.
	LockFilename = "framereel.lock"

	minDelayMs = 50
	maxDelayMs = 2000
)

// Config defines the application configuration interface
type Config interface {
	Port() int
	LogLevel() string
	DataDir() string
	DBPath() string
	LockPath() string
	ExportDir() string
	Headless() bool
	HistoryMaxItems() int
	HistoryMaxBytes() int64
	DefaultDelayMs() int
	ConfigFile() string
}

// fileConfig mirrors the TOML file layout. Pointer fields distinguish
// "absent" from zero.
type fileConfig struct {
	Port     *int    `toml:"port"`
	LogLevel *string `toml:"log_level"`
	Headless *bool   `toml:"headless"`
	History  struct {
		MaxItems *int   `toml:"max_items"`
		MaxBytes *int64 `toml:"max_bytes"`
	} `toml:"history"`
	Encode struct {
		DefaultDelayMs *int   `toml:"default_delay_ms"`
		ExportDir      string `toml:"export_dir"`
	} `toml:"encode"`
}

// EnvConfig reads configuration from environment variables, layered over
// an optional TOML file.
type EnvConfig struct {
	port            int
	logLevel        string
	dataDir         string
	exportDir       string
	headless        bool
	historyMaxItems int
	historyMaxBytes int64
	defaultDelayMs  int
	configFile      string
}

// New creates a new EnvConfig with defaults, file values and environment
// variable overrides.
func New() (*EnvConfig, error) {
	cfg := &EnvConfig{
		port:            DefaultPort,
		logLevel:        DefaultLogLevel,
		dataDir:         defaultDataDir(),
		historyMaxItems: DefaultHistoryMaxItems,
		historyMaxBytes: DefaultHistoryMaxBytes,
		defaultDelayMs:  DefaultDelayMs,
	}

	// The data directory decides where the default config file lives, so
	// it is resolved from the environment first.
	if dd := os.Getenv(EnvDataDir); dd != "" {
		cfg.dataDir = dd
	}

	cfg.configFile = filepath.Join(cfg.dataDir, ConfigFilename)
	if cf := os.Getenv(EnvConfigFile); cf != "" {
		cfg.configFile = cf
	}
	if err := cfg.loadFile(cfg.configFile); err != nil {
		return nil, err
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *EnvConfig) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var fc fileConfig
	if err := toml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	if fc.Port != nil {
		c.port = *fc.Port
	}
	if fc.LogLevel != nil {
		c.logLevel = *fc.LogLevel
	}
	if fc.Headless != nil {
		c.headless = *fc.Headless
	}
	if fc.History.MaxItems != nil {
		c.historyMaxItems = *fc.History.MaxItems
	}
	if fc.History.MaxBytes != nil {
		c.historyMaxBytes = *fc.History.MaxBytes
	}
	if fc.Encode.DefaultDelayMs != nil {
		c.defaultDelayMs = *fc.Encode.DefaultDelayMs
	}
	if fc.Encode.ExportDir != "" {
		c.exportDir = fc.Encode.ExportDir
	}
	return nil
}

func (c *EnvConfig) applyEnv() error {
	// Override port from environment
	if p := os.Getenv(EnvPort); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvPort, err)
		}
		c.port = port
	}

	if ll := os.Getenv(EnvLogLevel); ll != "" {
		c.logLevel = ll
	}

	if h := os.Getenv(EnvHeadless); h != "" {
		headless, err := strconv.ParseBool(h)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvHeadless, err)
		}
		c.headless = headless
	}

	if v := os.Getenv(EnvHistoryMaxItems); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvHistoryMaxItems, err)
		}
		c.historyMaxItems = n
	}

	if v := os.Getenv(EnvHistoryMaxBytes); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvHistoryMaxBytes, err)
		}
		c.historyMaxBytes = n
	}

	if v := os.Getenv(EnvDefaultDelayMs); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvDefaultDelayMs, err)
		}
		c.defaultDelayMs = n
	}
	return nil
}

func (c *EnvConfig) validate() error {
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port %d: must be between 1 and 65535", c.port)
	}
	switch strings.ToLower(c.logLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.logLevel)
	}
	if c.historyMaxItems < 1 {
		return fmt.Errorf("invalid history max items %d: must be positive", c.historyMaxItems)
	}
	if c.historyMaxBytes < 1 {
		return fmt.Errorf("invalid history max bytes %d: must be positive", c.historyMaxBytes)
	}
	if c.defaultDelayMs < minDelayMs || c.defaultDelayMs > maxDelayMs {
		return fmt.Errorf("invalid default delay %dms: must be between %d and %d", c.defaultDelayMs, minDelayMs, maxDelayMs)
	}
	return nil
}

// Port returns the HTTP server port
func (c *EnvConfig) Port() int {
	return c.port
}

// LogLevel returns the log level (debug, info, warn, error)
func (c *EnvConfig) LogLevel() string {
	return c.logLevel
}

// DataDir returns the data directory path
func (c *EnvConfig) DataDir() string {
	return c.dataDir
}

// DBPath returns the full path to the SQLite database file
func (c *EnvConfig) DBPath() string {
	return filepath.Join(c.dataDir, DBFilename)
}

func (c *EnvConfig) LockPath() string {
	return filepath.Join(c.dataDir, LockFilename)
}

// ExportDir returns where history exports go when no directory is given.
func (c *EnvConfig) ExportDir() string {
	if c.exportDir != "" {
		return c.exportDir
	}
	return filepath.Join(c.dataDir, "exports")
}

// Headless reports whether the tray icon is disabled.
func (c *EnvConfig) Headless() bool {
	return c.headless
}

func (c *EnvConfig) HistoryMaxItems() int {
	return c.historyMaxItems
}

func (c *EnvConfig) HistoryMaxBytes() int64 {
	return c.historyMaxBytes
}

// DefaultDelayMs is the frame duration used when a frame has none set.
func (c *EnvConfig) DefaultDelayMs() int {
	return c.defaultDelayMs
}

// ConfigFile returns the TOML path that was consulted, whether or not it
// existed.
func (c *EnvConfig) ConfigFile() string {
	return c.configFile
}

// defaultDataDir returns the default data directory path
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home is not available
		return DefaultDataDir
	}
	return filepath.Join(home, DefaultDataDir)
}

// Version information (set at build time via ldflags)
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)
