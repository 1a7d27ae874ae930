// Package config loads dailycode settings that live outside the store:
// where the store is, how the daemon listens, and logging.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/julianstephens/dailycode/internal/constants"
)

// EnvPrefix prefixes environment overrides, e.g. DAILYCODE_STORE.
const EnvPrefix = "DAILYCODE"

// Config holds the file and environment configuration
type Config struct {
	Store        string        `mapstructure:"store"`
	Debug        bool          `mapstructure:"debug"`
	ListenAddr   string        `mapstructure:"listen_addr"`
	StartupDelay time.Duration `mapstructure:"startup_delay"`
	DryRun       bool          `mapstructure:"dry_run"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig(home string) *Config {
	return &Config{
		Store:        filepath.Join(home, constants.DefaultStoreName),
		Debug:        false,
		ListenAddr:   constants.DefaultListenAddr,
		StartupDelay: constants.DefaultStartupDelay,
		DryRun:       false,
	}
}

// Path returns the config file location under home.
func Path(home string) string {
	return filepath.Join(home, constants.ConfigFileName)
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	userHome, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(userHome, strings.TrimPrefix(path, "~"))
}

func newViper(home string) *viper.Viper {
	defaults := DefaultConfig(home)

	v := viper.New()
	v.SetDefault("store", defaults.Store)
	v.SetDefault("debug", defaults.Debug)
	v.SetDefault("listen_addr", defaults.ListenAddr)
	v.SetDefault("startup_delay", defaults.StartupDelay)
	v.SetDefault("dry_run", defaults.DryRun)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads <home>/config.yaml and DAILYCODE_* environment variables over
// the defaults. A missing file is not an error.
func Load(home string) (*Config, error) {
	v := newViper(home)

	path := Path(home)
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to stat config %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.Store = ExpandHome(cfg.Store)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Store) == "" {
		return errors.New("config: store must not be empty")
	}
	if c.StartupDelay < 0 {
		return fmt.Errorf("config: startup_delay must not be negative, got %v", c.StartupDelay)
	}
	host, _, err := net.SplitHostPort(c.ListenAddr)
	if err != nil {
		return fmt.Errorf("config: invalid listen_addr %q: %w", c.ListenAddr, err)
	}
	// Clients dial DaemonHost with the port from the lockfile
	if host != constants.DaemonHost {
		return fmt.Errorf("config: listen_addr must be on %s, got %q", constants.DaemonHost, c.ListenAddr)
	}
	return nil
}

// Write saves cfg to <home>/config.yaml.
func Write(home string, cfg *Config) error {
	if err := os.MkdirAll(home, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()
	v.Set("store", cfg.Store)
	v.Set("debug", cfg.Debug)
	v.Set("listen_addr", cfg.ListenAddr)
	v.Set("startup_delay", cfg.StartupDelay.String())
	v.Set("dry_run", cfg.DryRun)

	if err := v.WriteConfigAs(Path(home)); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
