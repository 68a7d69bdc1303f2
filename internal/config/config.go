// Package config layers climeta settings from defaults, config files, the
// environment and command-line flags.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"
)

// ProjectFile is the per-project configuration file searched for upward from
// the working directory.
const ProjectFile = "climeta.toml"

// EnvPrefix prefixes environment overrides, e.g. CLIMETA_LOG_LEVEL.
const EnvPrefix = "CLIMETA"

// Config holds the resolved settings.
type Config struct {
	Lang   string      `mapstructure:"lang"`
	Output string      `mapstructure:"output"`
	Log    LogConfig   `mapstructure:"log"`
	Watch  WatchConfig `mapstructure:"watch"`
}

// LogConfig configures internal/logger.
type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// WatchConfig configures generate --watch.
type WatchConfig struct {
	DebounceMS int `mapstructure:"debounce_ms"`
}

// Debounce returns the watch debounce as a duration.
func (w WatchConfig) Debounce() time.Duration {
	return time.Duration(w.DebounceMS) * time.Millisecond
}

// Options control where New looks for files. Zero values mean the current
// working directory and the user's home directory.
type Options struct {
	// File, when set, replaces the project file search.
	File     string
	StartDir string
	HomeDir  string
}

// SetDefaults registers the default value of every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("lang", "python")
	v.SetDefault("output", "-")
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.json", false)
	v.SetDefault("watch.debounce_ms", 200)
}

// New builds a viper instance with defaults, then the user file, then the
// project file, then CLIMETA_* variables. Callers bind flags on top.
func New(opts Options) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)

	paths, err := configPaths(opts)
	if err != nil {
		return nil, err
	}
	for _, path := range paths {
		if err := mergeFile(v, path); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// Decode unmarshals v into a Config and validates it.
func Decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	if cfg.Watch.DebounceMS < 0 {
		return nil, errors.Newf("watch.debounce_ms must not be negative, got %d", cfg.Watch.DebounceMS)
	}
	return &cfg, nil
}

// UserFile is the per-user configuration path below home.
func UserFile(home string) string {
	return filepath.Join(home, ".config", "climeta", "config.toml")
}

func configPaths(opts Options) ([]string, error) {
	home := opts.HomeDir
	if home == "" {
		home, _ = os.UserHomeDir()
	}
	var paths []string
	if home != "" {
		paths = append(paths, UserFile(home))
	}

	if opts.File != "" {
		if _, err := os.Stat(opts.File); err != nil {
			return nil, errors.Wrapf(err, "config file %s", opts.File)
		}
		return append(paths, opts.File), nil
	}

	start := opts.StartDir
	if start == "" {
		wd, err := os.Getwd()
		if err != nil {
			return paths, nil
		}
		start = wd
	}
	project, err := FindProjectFile(start)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	if project != "" {
		paths = append(paths, project)
	}
	return paths, nil
}

// FindProjectFile walks up from startDir looking for ProjectFile. It returns
// os.ErrNotExist when the file system root is reached without a match.
func FindProjectFile(startDir string) (string, error) {
	dir := filepath.Clean(startDir)
	for {
		path := filepath.Join(dir, ProjectFile)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		} else if !os.IsNotExist(err) {
			return "", err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", os.ErrNotExist
}

// mergeFile merges a TOML file into v. Missing files are skipped.
func mergeFile(v *viper.Viper, path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(err, "config file %s", path)
	}
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.MergeInConfig(); err != nil {
		return errors.WithHint(errors.Wrapf(err, "failed to read config file %s", path),
			"config files are TOML with keys lang, output, [log] and [watch]")
	}
	return nil
}
