// Package config loads settings from an optional .env file, a YAML file in
// the user config directory and MINUTEMIND_* environment variables, in
// increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/sadopc/minutemind/internal/store"
)

const (
	appName   = "minutemind"
	envPrefix = "MINUTEMIND"
)

type Config struct {
	Backend     string // store.BackendLocal or store.BackendRemote
	DBPath      string
	PostgresURL string
	OwnerID     string
	LogFile     string
	LogLevel    string
	MetricsAddr string // empty disables the metrics endpoint
	ExportDir   string
}

// Dir returns the default configuration directory.
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, appName), nil
}

// Load reads configuration, looking for minutemind.yaml in dir. An empty dir
// means Dir(). A missing file is not an error.
func Load(dir string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	if dir == "" {
		d, err := Dir()
		if err != nil {
			return nil, fmt.Errorf("config dir: %w", err)
		}
		dir = d
	}

	v := viper.New()
	v.SetConfigName(appName)
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	home, _ := os.UserHomeDir()
	v.SetDefault("backend", store.BackendLocal)
	v.SetDefault("db_path", filepath.Join(dir, appName+".db"))
	v.SetDefault("postgres_url", "")
	v.SetDefault("owner_id", "")
	v.SetDefault("log_file", filepath.Join(dir, appName+".log"))
	v.SetDefault("log_level", "info")
	v.SetDefault("metrics_addr", "")
	v.SetDefault("export_dir", home)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{
		Backend:     v.GetString("backend"),
		DBPath:      v.GetString("db_path"),
		PostgresURL: v.GetString("postgres_url"),
		OwnerID:     v.GetString("owner_id"),
		LogFile:     v.GetString("log_file"),
		LogLevel:    v.GetString("log_level"),
		MetricsAddr: v.GetString("metrics_addr"),
		ExportDir:   v.GetString("export_dir"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Backend {
	case store.BackendLocal:
	case store.BackendRemote:
		if c.PostgresURL == "" {
			return fmt.Errorf("config: backend %q requires postgres_url", c.Backend)
		}
	default:
		return fmt.Errorf("config: unknown backend %q", c.Backend)
	}
	if c.DBPath == "" {
		return errors.New("config: db_path is empty")
	}
	return nil
}
