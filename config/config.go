// Package config loads TradeMesh configuration from the environment and
// optionally from a YAML file with ${VAR} expansion. YAML values win over
// environment values; anything left empty falls back to the environment
// and then to the built-in defaults.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values applied when neither YAML nor environment provide one.
const (
	DefaultModelName   = "google/gemini-2.5-pro"
	DefaultBaseURL     = "https://openrouter.ai/api/v1"
	DefaultTemperature = 1.0
	DefaultWorkspace   = "./workspace"
	DefaultRedisPrefix = "trademesh:session:"
	DefaultMetricsAddr = ":9090"
	DefaultHeartbeat   = "@every 30s"
)

// ModelConfig selects the LLM backing model-driven agents and the think
// tool.
type ModelConfig struct {
	Name        string  `yaml:"name"`
	BaseURL     string  `yaml:"base_url"`
	APIKey      string  `yaml:"api_key"`
	Temperature float64 `yaml:"temperature"`
}

// RedisConfig selects the shared session backend. An empty Addr means
// sessions stay in process memory.
type RedisConfig struct {
	Addr     string   `yaml:"addr"`
	Password string   `yaml:"password"`
	DB       int      `yaml:"db"`
	Prefix   string   `yaml:"prefix"`
	TTL      Duration `yaml:"ttl"`
}

// Config represents the application configuration.
type Config struct {
	// Model configuration
	Model ModelConfig `yaml:"model"`

	// Workspace is the directory tool by-products are written under.
	Workspace string `yaml:"workspace"`

	// Tool API keys
	GoogleAPIKey  string `yaml:"google_api_key"`
	GoogleCSEID   string `yaml:"google_cse_id"`
	DatalabAPIKey string `yaml:"datalab_api_key"`
	GeminiAPIKey  string `yaml:"gemini_api_key"`

	// Session backend
	Redis RedisConfig `yaml:"redis"`

	// Observability
	MetricsAddr string `yaml:"metrics_addr"`

	// HeartbeatSchedule is a cron spec such as "@every 30s".
	HeartbeatSchedule string `yaml:"heartbeat_schedule"`
}

// FromEnv builds a configuration from environment variables, applying
// defaults for anything unset. Malformed numeric values fall back to
// their defaults rather than failing startup.
func FromEnv() *Config {
	cfg := &Config{}
	cfg.fillFromEnv()
	return cfg
}

// Load reads a YAML configuration file, expands ${VAR} references from
// the environment, and fills remaining empty fields from the environment
// and defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.fillFromEnv()
	return &cfg, nil
}

// Validate checks the fields every deployment needs. Tool-specific keys
// are checked by the tool adapters that consume them.
func (c *Config) Validate() error {
	if c.Model.Name == "" {
		return fmt.Errorf("model name is required")
	}
	if c.Model.BaseURL == "" {
		return fmt.Errorf("model base URL is required")
	}
	if c.Model.Temperature < 0 || c.Model.Temperature > 2 {
		return fmt.Errorf("temperature %v out of range [0, 2]", c.Model.Temperature)
	}
	return nil
}

func (c *Config) fillFromEnv() {
	if c.Model.Name == "" {
		c.Model.Name = envString("MODEL_NAME", DefaultModelName)
	}
	if c.Model.BaseURL == "" {
		c.Model.BaseURL = envString("BASE_URL", DefaultBaseURL)
	}
	if c.Model.APIKey == "" {
		c.Model.APIKey = os.Getenv("API_KEY")
	}
	if c.Model.Temperature == 0 {
		c.Model.Temperature = envFloat("TEMPERATURE", DefaultTemperature)
	}

	if c.Workspace == "" {
		c.Workspace = envString("WORKSPACE", DefaultWorkspace)
	}

	if c.GoogleAPIKey == "" {
		c.GoogleAPIKey = os.Getenv("GOOGLE_API_KEY")
	}
	if c.GoogleCSEID == "" {
		c.GoogleCSEID = os.Getenv("GOOGLE_CSE_ID")
	}
	if c.DatalabAPIKey == "" {
		c.DatalabAPIKey = os.Getenv("DATALAB_API_KEY")
	}
	if c.GeminiAPIKey == "" {
		c.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	}

	if c.Redis.Addr == "" {
		c.Redis.Addr = os.Getenv("REDIS_ADDR")
	}
	if c.Redis.Password == "" {
		c.Redis.Password = os.Getenv("REDIS_PASSWORD")
	}
	if c.Redis.DB == 0 {
		c.Redis.DB = envInt("REDIS_DB", 0)
	}
	if c.Redis.Prefix == "" {
		c.Redis.Prefix = envString("REDIS_PREFIX", DefaultRedisPrefix)
	}
	if c.Redis.TTL == 0 {
		c.Redis.TTL = Duration(envDuration("REDIS_TTL", 0))
	}

	if c.MetricsAddr == "" {
		c.MetricsAddr = envString("METRICS_ADDR", DefaultMetricsAddr)
	}
	if c.HeartbeatSchedule == "" {
		c.HeartbeatSchedule = envString("HEARTBEAT_SCHEDULE", DefaultHeartbeat)
	}
}

func envString(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

func envFloat(name string, fallback float64) float64 {
	v := os.Getenv(name)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func envInt(name string, fallback int) int {
	v := os.Getenv(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envDuration(name string, fallback time.Duration) time.Duration {
	v := os.Getenv(name)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
