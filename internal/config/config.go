package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mcncl/gloss/internal/cache"
	"github.com/mcncl/gloss/internal/decoder"
	"github.com/mcncl/gloss/internal/encoder"
	"github.com/mcncl/gloss/internal/logging"
	"gopkg.in/yaml.v3"
)

// Config represents the complete configuration for gloss
type Config struct {
	Decoding  DecodingConfig  `yaml:"decoding"`
	Encoding  EncodingConfig  `yaml:"encoding"`
	Fields    []string        `yaml:"fields"`
	Transport TransportConfig `yaml:"transport"`
	Cache     CacheConfig     `yaml:"cache"`
	Log       LogConfig       `yaml:"log"`
}

// DecodingConfig controls how date fields are read
type DecodingConfig struct {
	DateLayout string `yaml:"date_layout"`
	Timezone   string `yaml:"timezone"`
}

// EncodingConfig controls how decoded fields are written back out
type EncodingConfig struct {
	KeyStyle string `yaml:"key_style"` // none, snake, camel, lower_camel, kebab
	Indent   int    `yaml:"indent"`
}

// TransportConfig controls the HTTP client
type TransportConfig struct {
	BaseURL string            `yaml:"base_url"`
	Headers map[string]string `yaml:"headers"`
	Timeout time.Duration     `yaml:"timeout"`
}

// CacheConfig selects the response cache
type CacheConfig struct {
	// none or redis. ristretto and bigcache live in process memory and are
	// only accepted for library use, see ValidateForCLI.
	Backend   string        `yaml:"backend"`
	TTL       time.Duration `yaml:"ttl"`
	MaxCost   int64         `yaml:"max_cost"`
	RedisAddr string        `yaml:"redis_addr"`
}

// LogConfig selects the logging backend
type LogConfig struct {
	Backend string `yaml:"backend"` // zap, logrus, none
	Level   string `yaml:"level"`
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		Decoding: DecodingConfig{
			DateLayout: decoder.ISO8601.Layout,
			Timezone:   "UTC",
		},
		Encoding: EncodingConfig{
			KeyStyle: string(encoder.KeyStyleNone),
			Indent:   2,
		},
		Fields: []string{},
		Transport: TransportConfig{
			Headers: make(map[string]string),
			Timeout: 30 * time.Second,
		},
		Cache: CacheConfig{
			Backend: string(cache.BackendNone),
			TTL:     5 * time.Minute,
			MaxCost: 64 << 20,
		},
		Log: LogConfig{
			Backend: string(logging.BackendZap),
			Level:   "warn",
		},
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults
	cfg := NewConfig()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file: %w", err)
	}

	return cfg, nil
}

// FindConfigFile searches for a config file in current directory and parents
func FindConfigFile() string {
	configNames := []string{".gloss.yml", ".gloss.yaml", "gloss.yml", "gloss.yaml"}

	currentDir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		for _, name := range configNames {
			configPath := filepath.Join(currentDir, name)
			if _, err := os.Stat(configPath); err == nil {
				return configPath
			}
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			break
		}
		currentDir = parentDir
	}

	return ""
}

// Validate checks the values that can only be checked after parsing
func (c *Config) Validate() error {
	if _, err := c.DateFormat(); err != nil {
		return err
	}
	if _, err := encoder.ParseKeyStyle(c.Encoding.KeyStyle); err != nil {
		return err
	}
	if c.Encoding.Indent < 0 {
		return fmt.Errorf("indent must not be negative, got %d", c.Encoding.Indent)
	}
	if c.Transport.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", c.Transport.Timeout)
	}
	switch cache.Backend(strings.ToLower(c.Cache.Backend)) {
	case "", cache.BackendNone, cache.BackendRistretto, cache.BackendBigcache:
	case cache.BackendRedis:
		if c.Cache.RedisAddr == "" {
			return fmt.Errorf("cache backend redis requires redis_addr")
		}
	default:
		return fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}
	switch logging.Backend(strings.ToLower(c.Log.Backend)) {
	case "", logging.BackendZap, logging.BackendLogrus, logging.BackendNone:
	default:
		return fmt.Errorf("unknown log backend %q", c.Log.Backend)
	}
	return nil
}

// ValidateForCLI adds the checks for a single gloss run. The process exits
// after one request, so an in-process cache backend could never hit.
func (c *Config) ValidateForCLI() error {
	if err := c.Validate(); err != nil {
		return err
	}
	switch b := cache.Backend(strings.ToLower(c.Cache.Backend)); b {
	case cache.BackendRistretto, cache.BackendBigcache:
		return fmt.Errorf("cache backend %s is in-process only; use redis or none from the command line", b)
	}
	return nil
}

// DateFormat resolves the configured layout and timezone
func (c *Config) DateFormat() (decoder.DateFormat, error) {
	layout := c.Decoding.DateLayout
	if layout == "" {
		layout = decoder.ISO8601.Layout
	}
	tz := c.Decoding.Timezone
	if tz == "" {
		tz = "UTC"
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return decoder.DateFormat{}, fmt.Errorf("invalid timezone %q: %w", tz, err)
	}
	return decoder.DateFormat{Layout: layout, Location: loc}, nil
}

// CacheOptions converts the cache section for cache.New
func (c *Config) CacheOptions() cache.Options {
	return cache.Options{
		Backend:   cache.Backend(c.Cache.Backend),
		MaxCost:   c.Cache.MaxCost,
		TTL:       c.Cache.TTL,
		RedisAddr: c.Cache.RedisAddr,
	}
}

// CLIOverrides carries flag values that take precedence over the config file.
// Zero values and nil pointers mean "not set".
type CLIOverrides struct {
	Fields     []string
	DateLayout string
	KeyStyle   string
	Indent     *int
	BaseURL    string
	Headers    map[string]string
	Debug      bool
}

// LoadConfigWithCLI loads config with CLI argument precedence
func LoadConfigWithCLI(configPath string, cli CLIOverrides) (*Config, error) {
	cfg := NewConfig()

	if configPath != "" {
		fileConfig, err := LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = fileConfig
	}

	// Flag fields are added to the file's fields rather than replacing them.
	cfg.Fields = append(cfg.Fields, cli.Fields...)
	if cli.DateLayout != "" {
		cfg.Decoding.DateLayout = cli.DateLayout
	}
	if cli.KeyStyle != "" {
		cfg.Encoding.KeyStyle = cli.KeyStyle
	}
	if cli.Indent != nil {
		cfg.Encoding.Indent = *cli.Indent
	}
	if cli.BaseURL != "" {
		cfg.Transport.BaseURL = cli.BaseURL
	}
	if len(cli.Headers) > 0 {
		if cfg.Transport.Headers == nil {
			cfg.Transport.Headers = make(map[string]string, len(cli.Headers))
		}
		for k, v := range cli.Headers {
			cfg.Transport.Headers[k] = v
		}
	}
	if cli.Debug {
		cfg.Log.Level = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
