package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the craft-mcp-wrapper configuration.
type Config struct {
	Documents  []Document       `yaml:"documents"`
	HTTP       HTTPConfig       `yaml:"http"`
	Upstream   UpstreamConfig   `yaml:"upstream"`
	Truncation TruncationConfig `yaml:"truncation"`
	Server     ServerConfig     `yaml:"server"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// Document identifies one upstream Craft document API.
// Name is the caller-facing key; APIEndpoint is the base URL.
type Document struct {
	Name        string `yaml:"name" json:"name"`
	APIEndpoint string `yaml:"api_endpoint" json:"apiEndpoint"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings for the sse and rest transports.
// APIKeys enables Bearer auth for inbound requests when non-empty.
type HTTPConfig struct {
	Port            int      `yaml:"port"`
	ReadTimeoutSec  int      `yaml:"read_timeout_sec"`
	WriteTimeoutSec int      `yaml:"write_timeout_sec"`
	ShutdownSec     int      `yaml:"shutdown_timeout_sec"`
	APIKeys         []string `yaml:"api_keys"`
}

// UpstreamConfig holds settings for calls to the document APIs.
type UpstreamConfig struct {
	TimeoutSec int `yaml:"timeout_sec"`
}

// TruncationConfig holds response size budget settings. The fraction and
// divisor are configurable rather than hardcoded; the defaults mirror the
// historical truncation behavior.
type TruncationConfig struct {
	MaxResponseBytes int     `yaml:"max_response_bytes"`
	BudgetFraction   float64 `yaml:"budget_fraction"`
	NestedDivisor    int     `yaml:"nested_divisor"`
	NestedArrayMin   int     `yaml:"nested_array_min"`
	MaxStringLen     int     `yaml:"max_string_len"`
}

// ServerConfig describes this MCP server to clients.
type ServerConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
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

// DocumentNames returns the configured document names in configuration order.
func (c *Config) DocumentNames() []string {
	names := make([]string, len(c.Documents))
	for i, d := range c.Documents {
		names[i] = d.Name
	}
	return names
}

// FindDocument looks up a document by exact name match.
func (c *Config) FindDocument(name string) (Document, bool) {
	for _, d := range c.Documents {
		if d.Name == name {
			return d, true
		}
	}
	return Document{}, false
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Port <= 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 60
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Upstream.TimeoutSec <= 0 {
		c.Upstream.TimeoutSec = 30
	}
	if c.Truncation.MaxResponseBytes <= 0 {
		c.Truncation.MaxResponseBytes = 1048576
	}
	if c.Truncation.BudgetFraction <= 0 {
		c.Truncation.BudgetFraction = 0.9
	}
	if c.Truncation.NestedDivisor <= 0 {
		c.Truncation.NestedDivisor = 4
	}
	if c.Truncation.NestedArrayMin <= 0 {
		c.Truncation.NestedArrayMin = 10
	}
	if c.Truncation.MaxStringLen <= 0 {
		c.Truncation.MaxStringLen = 1000
	}
	if c.Server.Name == "" {
		c.Server.Name = "craft-mcp-wrapper"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if len(c.Documents) == 0 {
		return fmt.Errorf("documents is required and must be non-empty")
	}
	seen := make(map[string]struct{}, len(c.Documents))
	for i, d := range c.Documents {
		if d.Name == "" {
			return fmt.Errorf("documents[%d].name is required", i)
		}
		if d.APIEndpoint == "" {
			return fmt.Errorf("documents[%d].api_endpoint is required", i)
		}
		if _, dup := seen[d.Name]; dup {
			return fmt.Errorf("documents[%d].name %q is not unique", i, d.Name)
		}
		seen[d.Name] = struct{}{}
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Truncation.BudgetFraction <= 0 || c.Truncation.BudgetFraction > 1 {
		return fmt.Errorf(
			"truncation.budget_fraction must be in (0, 1], got %v", c.Truncation.BudgetFraction,
		)
	}
	if c.Truncation.NestedDivisor < 1 {
		return fmt.Errorf("truncation.nested_divisor must be >= 1, got %d", c.Truncation.NestedDivisor)
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
