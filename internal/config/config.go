// Package config loads the geosearch service configuration from per-environment
// YAML files with ${VAR} substitution.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the geosearch service configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Cache    CacheConfig    `yaml:"cache"`
	Geocode  GeocodeConfig  `yaml:"geocode"`
	Events   EventsConfig   `yaml:"events"`
	Auth     AuthConfig     `yaml:"auth"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// CacheConfig holds cache TTL overrides in seconds. Zero keeps the defaults
// (search 5m, geolocation 1h, geocode 24h).
type CacheConfig struct {
	SearchTTLSec      int `yaml:"search_ttl_sec"`
	GeolocationTTLSec int `yaml:"geolocation_ttl_sec"`
	GeocodeTTLSec     int `yaml:"geocode_ttl_sec"`
}

// SearchTTL returns the search page TTL, zero when not overridden.
func (c CacheConfig) SearchTTL() time.Duration {
	return time.Duration(c.SearchTTLSec) * time.Second
}

// GeolocationTTL returns the spatial query TTL, zero when not overridden.
func (c CacheConfig) GeolocationTTL() time.Duration {
	return time.Duration(c.GeolocationTTLSec) * time.Second
}

// GeocodeTTL returns the geocode result TTL, zero when not overridden.
func (c CacheConfig) GeocodeTTL() time.Duration {
	return time.Duration(c.GeocodeTTLSec) * time.Second
}

// GeocodeConfig holds geocoding provider settings.
type GeocodeConfig struct {
	TimeoutSec int              `yaml:"timeout_sec"` // per-provider call timeout
	Nominatim  NominatimConfig  `yaml:"nominatim"`
	LocationIQ LocationIQConfig `yaml:"locationiq"`
}

// NominatimConfig holds the free OSM provider settings.
type NominatimConfig struct {
	BaseURL   string `yaml:"base_url"`
	UserAgent string `yaml:"user_agent"`
}

// LocationIQConfig holds the paid fallback provider settings.
type LocationIQConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
}

// EventsConfig holds the write-notification consumer settings.
type EventsConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
	GroupID string   `yaml:"group_id"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Geocode.TimeoutSec <= 0 {
		c.Geocode.TimeoutSec = 5
	}
	if c.Geocode.Nominatim.BaseURL == "" {
		c.Geocode.Nominatim.BaseURL = "https://nominatim.openstreetmap.org"
	}
	if c.Geocode.Nominatim.UserAgent == "" {
		c.Geocode.Nominatim.UserAgent = "geosearch"
	}
	if c.Geocode.LocationIQ.BaseURL == "" {
		c.Geocode.LocationIQ.BaseURL = "https://us1.locationiq.com"
	}
	if c.Events.Topic == "" {
		c.Events.Topic = "catalog.writes"
	}
	if c.Events.GroupID == "" {
		c.Events.GroupID = "geosearch-invalidator"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
