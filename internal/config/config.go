package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned by Load when an explicit config file is missing.
var ErrNotFound = errors.New("config file not found")

// Project config file names, in lookup order.
var projectFileNames = []string{"relterms.yaml", ".relterms.yaml", ".relterms.yml"}

// Config represents the complete relterms configuration.
type Config struct {
	Version   int             `yaml:"version" json:"version"`
	Database  DatabaseConfig  `yaml:"database" json:"database"`
	StopWords StopWordsConfig `yaml:"stopwords" json:"stopwords"`
	Weights   WeightsConfig   `yaml:"weights" json:"weights"`
	Indexer   IndexerConfig   `yaml:"indexer" json:"indexer"`
	Schedule  ScheduleConfig  `yaml:"schedule" json:"schedule"`
	Logging   LoggingConfig   `yaml:"logging" json:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics" json:"metrics"`
}

// DatabaseConfig selects the SQL database holding content and the term cache.
type DatabaseConfig struct {
	// Driver is "sqlite" or "postgres".
	Driver string `yaml:"driver" json:"driver"`

	// DSN is a file path for sqlite or a connection string for postgres.
	DSN string `yaml:"dsn" json:"dsn"`
}

// StopWordsConfig locates the locale stop-word files.
type StopWordsConfig struct {
	// Dir holds one <locale>.yaml file per locale.
	Dir string `yaml:"dir" json:"dir"`

	// Locale is used when a run does not name one. Empty means the
	// process locale (LC_ALL, LC_MESSAGES, LANG), then en_US.
	Locale string `yaml:"locale" json:"locale"`

	// Extra words are ignored in addition to the locale list.
	Extra []string `yaml:"extra,omitempty" json:"extra,omitempty"`
}

// WeightsConfig sets how many times a term from each source counts.
type WeightsConfig struct {
	Title    int `yaml:"title" json:"title"`
	Tag      int `yaml:"tag" json:"tag"`
	Category int `yaml:"category" json:"category"`
}

// IndexerConfig tunes batch indexing.
type IndexerConfig struct {
	// BatchLimit caps documents per batch; 0 means all unindexed documents.
	BatchLimit int `yaml:"batch_limit" json:"batch_limit"`

	// Workers is the number of documents indexed concurrently.
	Workers int `yaml:"workers" json:"workers"`

	// LinkCacheSize bounds memoised link lookups; 0 disables the cache.
	LinkCacheSize int `yaml:"link_cache_size" json:"link_cache_size"`

	// DocumentType is the type listed and counted by default.
	DocumentType string `yaml:"document_type" json:"document_type"`
}

// ScheduleConfig configures recurring batches.
type ScheduleConfig struct {
	// Interval is a Go duration ("15m"). Empty disables scheduling.
	Interval string `yaml:"interval" json:"interval"`
}

// LoggingConfig configures file logging.
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`

	// File overrides the default log file path.
	File string `yaml:"file" json:"file"`
}

// MetricsConfig configures metrics output.
type MetricsConfig struct {
	// Textfile is written after every batch when set.
	Textfile string `yaml:"textfile" json:"textfile"`
}

// NewConfig creates a new Config with sensible defaults.
func NewConfig() *Config {
	dataDir := DataDir()
	return &Config{
		Version: 1,
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    filepath.Join(dataDir, "relterms.db"),
		},
		StopWords: StopWordsConfig{
			Dir:    filepath.Join(dataDir, "stopwords"),
			Locale: "", // Empty falls back to the process locale
		},
		Weights: WeightsConfig{
			Title:    80,
			Tag:      10,
			Category: 20,
		},
		Indexer: IndexerConfig{
			BatchLimit:    0,
			Workers:       1,
			LinkCacheSize: 1024,
			DocumentType:  "post",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// DataDir returns the relterms data directory: $RELTERMS_HOME, or
// ~/.relterms.
func DataDir() string {
	if v := os.Getenv("RELTERMS_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".relterms")
	}
	return filepath.Join(home, ".relterms")
}

// GetUserConfigPath returns the path to the user/global configuration file.
// It follows XDG Base Directory specification:
//   - $XDG_CONFIG_HOME/relterms/config.yaml (if XDG_CONFIG_HOME is set)
//   - ~/.config/relterms/config.yaml (default)
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "relterms", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "relterms", "config.yaml")
	}
	return filepath.Join(home, ".config", "relterms", "config.yaml")
}

// UserConfigExists returns true if the user configuration file exists.
func UserConfigExists() bool {
	return fileExists(GetUserConfigPath())
}

// FindProjectConfig returns the first project config file in dir, or "".
func FindProjectConfig(dir string) string {
	for _, name := range projectFileNames {
		path := filepath.Join(dir, name)
		if fileExists(path) {
			return path
		}
	}
	return ""
}

// Load loads configuration. It applies, in order of increasing precedence:
//  1. Hardcoded defaults
//  2. User/global config (~/.config/relterms/config.yaml)
//  3. The explicit file when path is set, otherwise the project config
//     (relterms.yaml, .relterms.yaml or .relterms.yml in dir)
//  4. Environment variables (RELTERMS_*)
func Load(dir, path string) (*Config, error) {
	cfg := NewConfig()

	if UserConfigExists() {
		userPath := GetUserConfigPath()
		if err := cfg.loadYAML(userPath); err != nil {
			return nil, fmt.Errorf("failed to load user config: %w", err)
		}
	}

	if path == "" {
		path = FindProjectConfig(dir)
	} else if !fileExists(path) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if path != "" {
		if err := cfg.loadYAML(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// loadYAML decodes path over the current values. Keys absent from the file
// keep their value; unknown keys are rejected.
func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// applyEnvOverrides applies RELTERMS_* environment variable overrides.
// Empty variables are ignored.
func (c *Config) applyEnvOverrides() error {
	strs := map[string]*string{
		"RELTERMS_DATABASE_DRIVER":   &c.Database.Driver,
		"RELTERMS_DATABASE_DSN":      &c.Database.DSN,
		"RELTERMS_STOPWORDS_DIR":     &c.StopWords.Dir,
		"RELTERMS_LOCALE":            &c.StopWords.Locale,
		"RELTERMS_DOCUMENT_TYPE":     &c.Indexer.DocumentType,
		"RELTERMS_SCHEDULE_INTERVAL": &c.Schedule.Interval,
		"RELTERMS_LOG_LEVEL":         &c.Logging.Level,
		"RELTERMS_LOG_FILE":          &c.Logging.File,
		"RELTERMS_METRICS_TEXTFILE":  &c.Metrics.Textfile,
	}
	for key, dst := range strs {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	ints := map[string]*int{
		"RELTERMS_WEIGHT_TITLE":    &c.Weights.Title,
		"RELTERMS_WEIGHT_TAG":      &c.Weights.Tag,
		"RELTERMS_WEIGHT_CATEGORY": &c.Weights.Category,
		"RELTERMS_BATCH_LIMIT":     &c.Indexer.BatchLimit,
		"RELTERMS_WORKERS":         &c.Indexer.Workers,
		"RELTERMS_LINK_CACHE_SIZE": &c.Indexer.LinkCacheSize,
	}
	for key, dst := range ints {
		v := os.Getenv(key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s must be an integer, got %q", key, v)
		}
		*dst = n
	}
	return nil
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite":
	case "postgres":
		if c.Database.DSN == "" {
			return fmt.Errorf("database.dsn is required for postgres")
		}
	default:
		return fmt.Errorf("database.driver must be 'sqlite' or 'postgres', got %s", c.Database.Driver)
	}

	if c.Weights.Title < 0 || c.Weights.Tag < 0 || c.Weights.Category < 0 {
		return fmt.Errorf("weights must be non-negative, got title=%d tag=%d category=%d",
			c.Weights.Title, c.Weights.Tag, c.Weights.Category)
	}

	if c.Indexer.BatchLimit < 0 {
		return fmt.Errorf("indexer.batch_limit must be non-negative, got %d", c.Indexer.BatchLimit)
	}
	if c.Indexer.Workers < 1 {
		return fmt.Errorf("indexer.workers must be at least 1, got %d", c.Indexer.Workers)
	}
	if c.Indexer.LinkCacheSize < 0 {
		return fmt.Errorf("indexer.link_cache_size must be non-negative, got %d", c.Indexer.LinkCacheSize)
	}
	if strings.TrimSpace(c.Indexer.DocumentType) == "" {
		return fmt.Errorf("indexer.document_type must not be empty")
	}

	if _, err := c.ScheduleInterval(); err != nil {
		return err
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("logging.level must be 'debug', 'info', 'warn', or 'error', got %s", c.Logging.Level)
	}

	return nil
}

// ScheduleInterval parses schedule.interval. Zero means scheduling is off.
func (c *Config) ScheduleInterval() (time.Duration, error) {
	if c.Schedule.Interval == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Schedule.Interval)
	if err != nil {
		return 0, fmt.Errorf("schedule.interval: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("schedule.interval must be positive, got %s", c.Schedule.Interval)
	}
	return d, nil
}

// RunLockPath returns the path of the cross-process run lock: next to the
// SQLite file, or in the data directory for other databases.
func (c *Config) RunLockPath() string {
	if c.Database.Driver == "sqlite" && c.Database.DSN != "" && c.Database.DSN != ":memory:" {
		return c.Database.DSN + ".lock"
	}
	return filepath.Join(DataDir(), "relterms.lock")
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
