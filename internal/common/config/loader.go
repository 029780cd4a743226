// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// legacyEnv maps config keys to the plain variables that also set them.
var legacyEnv = map[string]string{
	"server.port":        "PORT",
	"datastore.url":      "OPENSEARCH_URL",
	"datastore.username": "OPENSEARCH_USER",
	"datastore.password": "OPENSEARCH_PASS",
}

const (
	defaultPort           = 3000
	defaultIndexPattern   = "wazuh-alerts-*"
	defaultRequestTimeout = 10000
)

func Load() (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // ignore error if not found

	return finish(v)
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finish(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// AutomaticEnv only resolves keys viper already knows about.
	for _, key := range []string{
		"app.name", "app.version", "app.environment",
		"server.host", "server.read_header_timeout", "server.shutdown_timeout",
		"server.cors_allowed_origins", "server.catalog_file",
		"datastore.driver",
		"datastore.index_pattern", "datastore.request_timeout", "datastore.tls_skip_verify",
		"datastore.ca_cert_file",
		"cache.enabled", "cache.address", "cache.password", "cache.db", "cache.ttl",
		"logging.level", "logging.format",
		"metrics.enabled", "metrics.path",
		"tracing.enabled", "tracing.jaeger_endpoint",
	} {
		_ = v.BindEnv(key)
	}

	// Plain variable names used by existing deployments. The structured name
	// wins when both are set.
	for key, legacy := range legacyEnv {
		_ = v.BindEnv(append([]string{key, strings.ToUpper(strings.ReplaceAll(key, ".", "_"))}, legacy)...)
	}

	v.SetDefault("metrics.enabled", true)
	return v
}

func finish(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// expandEnvVars resolves ${VAR} placeholders in string values of the config file.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if !strings.Contains(strVal, "${") {
			continue
		}
		// Unset variables expand to "", so required-field checks still fire.
		if expanded := os.ExpandEnv(strVal); expanded != strVal {
			v.Set(key, expanded)
		}
	}
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "soc-dashboard"
	}
	if cfg.App.Environment == "" {
		cfg.App.Environment = "development"
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = defaultPort
	}
	if cfg.Server.ReadHeaderTimeout == 0 {
		cfg.Server.ReadHeaderTimeout = 10000
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 25000
	}

	if cfg.Datastore.Driver == "" {
		cfg.Datastore.Driver = DriverOpenSearch
	}
	cfg.Datastore.Driver = strings.ToLower(cfg.Datastore.Driver)
	cfg.Datastore.URL = strings.TrimRight(cfg.Datastore.URL, "/")
	if cfg.Datastore.IndexPattern == "" {
		cfg.Datastore.IndexPattern = defaultIndexPattern
	}
	if cfg.Datastore.RequestTimeout == 0 {
		cfg.Datastore.RequestTimeout = defaultRequestTimeout
	}

	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = 30000
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}

	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	if cfg.Datastore.URL == "" {
		return fmt.Errorf("datastore.url (or OPENSEARCH_URL) is required")
	}

	switch cfg.Datastore.Driver {
	case DriverOpenSearch, DriverElasticsearch:
	default:
		return fmt.Errorf("unsupported datastore.driver: %s", cfg.Datastore.Driver)
	}

	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", cfg.Server.Port)
	}

	if cfg.Datastore.RequestTimeout < 0 {
		return fmt.Errorf("datastore.request_timeout must not be negative")
	}

	if cfg.Cache.Enabled && cfg.Cache.Address == "" {
		return fmt.Errorf("cache.address is required when cache is enabled")
	}

	if cfg.Tracing.Enabled && cfg.Tracing.JaegerEndpoint == "" {
		return fmt.Errorf("tracing.jaeger_endpoint is required when tracing is enabled")
	}

	return nil
}
