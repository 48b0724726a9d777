// Package config loads sidequest configuration with koanf.
//
// Sources are layered, later ones winning:
//  1. built-in defaults
//  2. an optional YAML file (CONFIG_PATH, or sidequest.yaml in the working directory)
//  3. SIDEQUEST_* environment variables
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar overrides the config file location
const ConfigPathEnvVar = "CONFIG_PATH"

// EnvPrefix is stripped from environment variable names
const EnvPrefix = "SIDEQUEST_"

// DefaultConfigPaths are searched in order when CONFIG_PATH is unset
var DefaultConfigPaths = []string{"sidequest.yaml", "sidequest.yml"}

// Config is the full application configuration
type Config struct {
	Storage   StorageConfig   `koanf:"storage"`
	Recommend RecommendConfig `koanf:"recommend"`
	Server    ServerConfig    `koanf:"server"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// StorageConfig selects the ledger backend
type StorageConfig struct {
	// Backend is file, duckdb or badger
	Backend string `koanf:"backend" validate:"oneof=file duckdb badger"`
	// Path is a JSON file, a DuckDB database file or a badger directory
	Path string `koanf:"path" validate:"required"`
}

// RecommendConfig configures the similarity recommender
type RecommendConfig struct {
	ModelPath string `koanf:"model_path" validate:"required"`
	TopN      int    `koanf:"top_n" validate:"min=1,max=100"`
	// InvalidateOnWrite deletes the model artifact whenever an adventure is logged
	InvalidateOnWrite bool          `koanf:"invalidate_on_write"`
	SpinnerInterval   time.Duration `koanf:"spinner_interval" validate:"min=0"`
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Port        string   `koanf:"port" validate:"required,numeric"`
	CORSOrigins []string `koanf:"cors_origins"`
}

// LoggingConfig configures zerolog
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			Backend: "file",
			Path:    "adventure_tracker.json",
		},
		Recommend: RecommendConfig{
			ModelPath:         "recommendation_model.gob.gz",
			TopN:              3,
			InvalidateOnWrite: false,
			SpinnerInterval:   200 * time.Millisecond,
		},
		Server: ServerConfig{
			Port:        "8080",
			CORSOrigins: []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// envKeys maps lower-cased variable names (prefix removed) to koanf paths
var envKeys = map[string]string{
	"storage_backend":               "storage.backend",
	"storage_path":                  "storage.path",
	"recommend_model_path":          "recommend.model_path",
	"recommend_top_n":               "recommend.top_n",
	"recommend_invalidate_on_write": "recommend.invalidate_on_write",
	"recommend_spinner_interval":    "recommend.spinner_interval",
	"server_port":                   "server.port",
	"server_cors_origins":           "server.cors_origins",
	"log_level":                     "logging.level",
	"log_format":                    "logging.format",
	"log_caller":                    "logging.caller",
}

func envTransform(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	return envKeys[key]
}

// Load reads configuration from defaults, the optional file and the environment
func Load() (*Config, error) {
	return LoadFile(findConfigFile())
}

// LoadFile is Load with an explicit config file; an empty path skips the file layer
func LoadFile(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks field constraints
func (c *Config) Validate() error {
	return validator.New(validator.WithRequiredStructEnabled()).Struct(c)
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
