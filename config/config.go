package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// SecretEnv overrides token.secret when set.
const SecretEnv = "SALTEDTOKEN_SECRET"

// Config is the service configuration read from YAML.
type Config struct {
	Server struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
	} `yaml:"server"`

	Log struct {
		Level       string `yaml:"level"`
		Development bool   `yaml:"development"`
	} `yaml:"log"`

	Token struct {
		Secret     string        `yaml:"secret"`
		TTL        time.Duration `yaml:"ttl"` // 0 or negative means tokens never expire
		Iterations int           `yaml:"iterations"`
		DenyTTL    time.Duration `yaml:"deny_ttl"` // how long never-expiring tokens stay denied after logout
	} `yaml:"token"`

	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`

	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		DB       int    `yaml:"db"`
		Password string `yaml:"password"`
	} `yaml:"redis"`

	Postgres struct {
		Enabled  bool   `yaml:"enabled"`
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		DBName   string `yaml:"dbname"`
		SSLMode  string `yaml:"sslmode"`
		Table    string `yaml:"table"`
	} `yaml:"postgres"`
}

// LoadConfig reads filename, applies SecretEnv and fills defaults. A missing
// secret is an error.
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	config := &Config{}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if secret := os.Getenv(SecretEnv); secret != "" {
		config.Token.Secret = secret
	}

	// Set defaults if not specified
	if config.Server.Port == 0 {
		config.Server.Port = 8080
	}
	if config.Server.Host == "" {
		config.Server.Host = "localhost"
	}
	if config.Log.Level == "" {
		config.Log.Level = "info"
	}
	if config.Token.Iterations == 0 {
		config.Token.Iterations = 100000
	}
	if config.Token.DenyTTL == 0 {
		config.Token.DenyTTL = 24 * time.Hour
	}
	if config.Metrics.Path == "" {
		config.Metrics.Path = "/metrics"
	}
	if config.Redis.Host == "" {
		config.Redis.Host = "localhost"
	}
	if config.Redis.Port == 0 {
		config.Redis.Port = 6379
	}
	if config.Postgres.Host == "" {
		config.Postgres.Host = "localhost"
	}
	if config.Postgres.Port == 0 {
		config.Postgres.Port = 5432
	}
	if config.Postgres.SSLMode == "" {
		config.Postgres.SSLMode = "disable"
	}
	if config.Postgres.Table == "" {
		config.Postgres.Table = "items"
	}

	if config.Token.Secret == "" {
		return nil, fmt.Errorf("token secret is required (set token.secret or %s)", SecretEnv)
	}

	return config, nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// RedisAddr returns the Redis host:port.
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

// PostgresDSN returns a lib/pq connection string.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Postgres.Host,
		c.Postgres.Port,
		c.Postgres.User,
		c.Postgres.Password,
		c.Postgres.DBName,
		c.Postgres.SSLMode,
	)
}
