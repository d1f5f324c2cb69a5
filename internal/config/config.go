package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"festivalbot/internal/atomicfile"
)

const (
	DefaultDataFile     = "festivals.json"
	DefaultBackupFile   = "festivals_backup.json"
	DefaultUpcomingDays = 30

	defaultAppName           = "FestivalBot"
	defaultRemindCron        = "0 9 * * *"
	defaultImportHorizonDays = 365
	defaultLogLevel          = "error"
)

// Environment variables that override values from the YAML file. They may
// also be provided through a .env file in the working directory.
const (
	EnvDataFile   = "FESTIVALBOT_DATA_FILE"
	EnvBackupFile = "FESTIVALBOT_BACKUP_FILE"
	EnvLogLevel   = "FESTIVALBOT_LOG_LEVEL"
)

// Config is the top-level application configuration.
type Config struct {
	// DataFile is the JSON file holding the saved festivals.
	DataFile string `yaml:"data_file"`

	// BackupFile is the export target used when the user leaves the
	// filename prompt blank.
	BackupFile string `yaml:"backup_file"`

	// UpcomingDays is the window suggested by the "upcoming" prompt and used
	// by the upcoming command when no N is given.
	UpcomingDays int `yaml:"upcoming_days"`

	// Table toggles the boxed table renderer. When false, festivals are
	// listed one per line.
	Table bool `yaml:"table"`

	// Notify toggles desktop notifications for reminders.
	Notify bool `yaml:"notify"`

	// AppName is shown as the notification source.
	AppName string `yaml:"app_name"`

	// RemindCron is the cron-style schedule (e.g. "0 9 * * *") used by the
	// watch command.
	RemindCron string `yaml:"remind_cron"`

	// ImportHorizonDays bounds recurrence expansion during iCalendar import.
	ImportHorizonDays int `yaml:"import_horizon_days"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		DataFile:          DefaultDataFile,
		BackupFile:        DefaultBackupFile,
		UpcomingDays:      DefaultUpcomingDays,
		Table:             true,
		Notify:            true,
		AppName:           defaultAppName,
		RemindCron:        defaultRemindCron,
		ImportHorizonDays: defaultImportHorizonDays,
		LogLevel:          defaultLogLevel,
	}
}

// DefaultPath returns <UserConfigDir>/festivalbot/config.yaml, or a path in
// the working directory when no user config dir is available.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "festivalbot.yaml"
	}
	return filepath.Join(dir, "festivalbot", "config.yaml")
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	if strings.TrimSpace(c.DataFile) == "" {
		c.DataFile = DefaultDataFile
	}
	if strings.TrimSpace(c.BackupFile) == "" {
		c.BackupFile = DefaultBackupFile
	}
	if c.UpcomingDays <= 0 {
		c.UpcomingDays = DefaultUpcomingDays
	}
	if c.AppName == "" {
		c.AppName = defaultAppName
	}
	if c.RemindCron == "" {
		c.RemindCron = defaultRemindCron
	}
	if c.ImportHorizonDays <= 0 {
		c.ImportHorizonDays = defaultImportHorizonDays
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
		c.LogLevel = strings.ToLower(c.LogLevel)
	default:
		c.LogLevel = defaultLogLevel
	}
}

// ApplyEnv loads a .env file from the working directory if one exists and
// lets FESTIVALBOT_* variables override the file-based values.
func (c *Config) ApplyEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	if v := os.Getenv(EnvDataFile); v != "" {
		c.DataFile = v
	}
	if v := os.Getenv(EnvBackupFile); v != "" {
		c.BackupFile = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	c.Normalize()
	return nil
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist, a default config is written with 0600
//     perms and returned.
//   - If the file exists, it is unmarshalled and normalized. Keys absent
//     from the file keep their default values.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return cfg, nil
}

// Save writes the given configuration to the specified path atomically with
// 0600 permissions.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return atomicfile.WriteFile(path, data, 0o600)
}

// Save is a convenience method on Config that delegates to the package-level
// Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
