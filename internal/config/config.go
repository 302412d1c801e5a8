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

// Config holds the seqsearch server configuration.
type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	Blast   BlastConfig   `yaml:"blast"`
	Store   StoreConfig   `yaml:"store"`
	Links   LinksConfig   `yaml:"links"`
	Auth    AuthConfig    `yaml:"auth"`
	Logging LoggingConfig `yaml:"logging"`
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

// BlastConfig locates the search binaries and corpora.
type BlastConfig struct {
	BinDir      string         `yaml:"bin_dir"`      // empty: PATH
	DatabaseDir string         `yaml:"database_dir"` // scanned recursively; empty: static corpora only
	NumThreads  int            `yaml:"num_threads"`  // 0: binary default
	TimeoutSec  int            `yaml:"timeout_sec"`  // per-search limit
	GraceSec    int            `yaml:"grace_sec"`    // interrupt-to-kill delay on cancellation
	TempDir     string         `yaml:"temp_dir"`     // empty: OS temp dir
	Corpora     []CorpusConfig `yaml:"corpora"`
}

// CorpusConfig declares a corpus explicitly.
type CorpusConfig struct {
	ID    string `yaml:"id"`
	Path  string `yaml:"path"`
	Title string `yaml:"title"`
	Kind  string `yaml:"kind"` // nucleotide, protein
}

// StoreConfig holds result store settings.
type StoreConfig struct {
	Driver           string   `yaml:"driver"` // none, redis, bolt (default: none)
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	Standalone       bool     `yaml:"standalone"`
	Path             string   `yaml:"path"`
	TTLSec           int      `yaml:"ttl_sec"` // 0: keep forever
	SweepIntervalSec int      `yaml:"sweep_interval_sec"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
	CacheTTLSec      int      `yaml:"cache_ttl_sec"` // reuse identical runs; 0: disabled
}

// LinksConfig controls hit cross-references.
type LinksConfig struct {
	BasePath string `yaml:"base_path"`
}

// Store drivers.
const (
	StoreNone  = "none"
	StoreRedis = "redis"
	StoreBolt  = "bolt"
)

// Load reads configuration from a YAML file by environment name (local, docker, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit path.
func LoadFile(configPath string) (Config, error) {
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
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Blast.TimeoutSec <= 0 {
		c.Blast.TimeoutSec = 300
	}
	if c.Blast.GraceSec <= 0 {
		c.Blast.GraceSec = 3
	}
	// Responses are written after the search finishes.
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = c.Blast.TimeoutSec + 30
	}
	if c.Store.Driver == "" {
		c.Store.Driver = StoreNone
	}
	if c.Store.ReadinessTimeout <= 0 {
		c.Store.ReadinessTimeout = 10
	}
	if c.Store.SweepIntervalSec <= 0 {
		c.Store.SweepIntervalSec = 600
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Blast.NumThreads < 0 {
		return fmt.Errorf("blast.num_threads must not be negative, got %d", c.Blast.NumThreads)
	}
	if c.Blast.DatabaseDir == "" && len(c.Blast.Corpora) == 0 {
		return fmt.Errorf("blast.database_dir or blast.corpora is required")
	}
	for i, cc := range c.Blast.Corpora {
		if cc.Path == "" {
			return fmt.Errorf("blast.corpora[%d].path is required", i)
		}
		switch cc.Kind {
		case "nucleotide", "protein":
			// ok
		default:
			return fmt.Errorf("blast.corpora[%d].kind must be \"nucleotide\" or \"protein\", got %q", i, cc.Kind)
		}
	}
	switch c.Store.Driver {
	case StoreNone:
	case StoreRedis:
		if len(c.Store.Addrs) == 0 {
			return fmt.Errorf("store.addrs is required for the redis driver")
		}
	case StoreBolt:
		if c.Store.Path == "" {
			return fmt.Errorf("store.path is required for the bolt driver")
		}
	default:
		return fmt.Errorf("store.driver must be one of none, redis, bolt, got %q", c.Store.Driver)
	}
	if c.Store.CacheTTLSec < 0 {
		return fmt.Errorf("store.cache_ttl_sec must not be negative, got %d", c.Store.CacheTTLSec)
	}
	if c.Store.TTLSec < 0 {
		return fmt.Errorf("store.ttl_sec must not be negative, got %d", c.Store.TTLSec)
	}
	if c.Links.BasePath != "" && !strings.HasPrefix(c.Links.BasePath, "/") {
		return fmt.Errorf("links.base_path must start with /, got %q", c.Links.BasePath)
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
