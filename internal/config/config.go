package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Defaults applied when neither the config file nor the environment
// provides a value.
const (
	DefaultDBPath   = ".devbank/devbank.db"
	DefaultHTTPAddr = ""
	DefaultLogLevel = "info"
)

// Config holds runtime settings for the server binaries.
type Config struct {
	// DBPath is the SQLite database file path.
	DBPath string `yaml:"db_path"`

	// HTTPAddr is the listen address for the REST API. Empty disables
	// the HTTP server and only the stdio transport runs.
	HTTPAddr string `yaml:"http_addr"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// Load builds a Config from defaults, an optional YAML file and
// environment variables, in increasing precedence. A .env file in the
// working directory is loaded first if present. path may be empty, in
// which case DEVBANK_CONFIG is consulted and a missing file is not an
// error.
func Load(path string) (*Config, error) {
	// Ignore a missing .env, it is optional.
	_ = godotenv.Load()

	cfg := &Config{
		DBPath:   DefaultDBPath,
		HTTPAddr: DefaultHTTPAddr,
		LogLevel: DefaultLogLevel,
	}

	explicit := path != ""
	if path == "" {
		path = os.Getenv("DEVBANK_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if explicit || !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(cfg)

	if cfg.LogLevel != "debug" && cfg.LogLevel != "info" && cfg.LogLevel != "warn" && cfg.LogLevel != "error" {
		return nil, fmt.Errorf("invalid log level %q", cfg.LogLevel)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("DEVBANK_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("DEVBANK_HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}
	if v := os.Getenv("DEVBANK_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
}
