package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

const (
	// ProjectConfigFile is the name of the project-level config file
	ProjectConfigFile = "semrepo.yaml"
	// UserConfigDir is the directory for user-level config
	UserConfigDir = ".config/semrepo"
	// UserConfigFile is the name of the user-level config file
	UserConfigFile = "config.yaml"
)

// Loader handles configuration loading with layered precedence
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a new configuration loader
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger}
}

// Load loads configuration with layered precedence:
// 1. Default config
// 2. User config (~/.config/semrepo/config.yaml)
// 3. Project config (semrepo.yaml in current or parent directories)
func (l *Loader) Load() (*Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = ""
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}
	return l.load(cwd, home)
}

// LoadFile loads defaults overlaid with a single explicit config file.
// Relative repository paths are resolved against the file's directory.
func (l *Loader) LoadFile(path string) (*Config, error) {
	config := DefaultConfig()
	fileConfig, err := LoadFromFile(path)
	if err != nil {
		return nil, err
	}
	resolvePaths(fileConfig, filepath.Dir(path))
	config.Merge(fileConfig)
	l.logger.Debug("Loaded config", slog.String("path", path))

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (l *Loader) load(workDir, homeDir string) (*Config, error) {
	config := DefaultConfig()

	if homeDir != "" {
		userConfigPath := filepath.Join(homeDir, UserConfigDir, UserConfigFile)
		if userConfig, err := LoadFromFile(userConfigPath); err == nil {
			l.logger.Debug("Loaded user config", slog.String("path", userConfigPath))
			resolvePaths(userConfig, filepath.Dir(userConfigPath))
			config.Merge(userConfig)
		} else if !errors.Is(err, fs.ErrNotExist) {
			l.logger.Warn("Failed to load user config", slog.String("path", userConfigPath), slog.String("error", err.Error()))
		}
	}

	if projectConfigPath := findProjectConfig(workDir); projectConfigPath != "" {
		if projectConfig, err := LoadFromFile(projectConfigPath); err == nil {
			l.logger.Debug("Loaded project config", slog.String("path", projectConfigPath))
			resolvePaths(projectConfig, filepath.Dir(projectConfigPath))
			config.Merge(projectConfig)
		} else {
			l.logger.Warn("Failed to load project config", slog.String("path", projectConfigPath), slog.String("error", err.Error()))
		}
	} else {
		l.logger.Debug("No project config found")
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// EnsureUserConfig creates the user config file with defaults if it doesn't exist
func (l *Loader) EnsureUserConfig() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}
	userConfigPath := filepath.Join(home, UserConfigDir, UserConfigFile)

	if _, err := os.Stat(userConfigPath); err == nil {
		return nil
	}

	if err := DefaultConfig().SaveToFile(userConfigPath); err != nil {
		return err
	}

	l.logger.Info("Created default user config", slog.String("path", userConfigPath))
	return nil
}

// findProjectConfig searches for semrepo.yaml in dir and its parents
func findProjectConfig(dir string) string {
	if dir == "" {
		return ""
	}
	for {
		configPath := filepath.Join(dir, ProjectConfigFile)
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// resolvePaths makes relative file paths in c relative to base.
func resolvePaths(c *Config, base string) {
	if c.Repository.Seed != "" && !filepath.IsAbs(c.Repository.Seed) {
		c.Repository.Seed = filepath.Join(base, c.Repository.Seed)
	}
	if c.Repository.SQLitePath != "" && c.Repository.SQLitePath != ":memory:" && !filepath.IsAbs(c.Repository.SQLitePath) {
		c.Repository.SQLitePath = filepath.Join(base, c.Repository.SQLitePath)
	}
}
