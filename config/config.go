package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds all configuration for the application
type Config struct {
	Env Environment `yaml:"-"`

	// Server configuration
	ServerHost      string        `yaml:"server_host"`
	ServerPort      string        `yaml:"server_port" validate:"required,numeric"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" validate:"gt=0"`
	LogLevel        string        `yaml:"log_level" validate:"oneof=debug info warn error"`
	CORSOrigins     []string      `yaml:"cors_origins" validate:"min=1"`

	// Database configuration
	DBDriver          string        `yaml:"db_driver" validate:"oneof=sqlite postgres"`
	DBPath            string        `yaml:"db_path" validate:"required_if=DBDriver sqlite"`
	DBHost            string        `yaml:"db_host" validate:"required_if=DBDriver postgres"`
	DBPort            string        `yaml:"db_port" validate:"omitempty,numeric"`
	DBUser            string        `yaml:"db_user" validate:"required_if=DBDriver postgres"`
	DBPassword        string        `yaml:"-"`
	DBName            string        `yaml:"db_name" validate:"required_if=DBDriver postgres"`
	DBSSLMode         string        `yaml:"db_ssl_mode" validate:"omitempty,oneof=disable allow prefer require verify-ca verify-full"`
	DBMaxOpenConns    int           `yaml:"db_max_open_conns" validate:"gte=1"`
	DBMaxIdleConns    int           `yaml:"db_max_idle_conns" validate:"gte=0"`
	DBConnMaxLifetime time.Duration `yaml:"db_conn_max_lifetime" validate:"gte=0"`
	DBSlowQuery       time.Duration `yaml:"db_slow_query" validate:"gte=0"`

	// Redis configuration. Redis is optional; without it the page cache is
	// off and rate limiting is kept in process.
	RedisURL      string `yaml:"redis_url" validate:"omitempty,url"`
	RedisHost     string `yaml:"redis_host"`
	RedisPort     string `yaml:"redis_port" validate:"omitempty,numeric"`
	RedisPassword string `yaml:"-"`
	RedisDB       int    `yaml:"redis_db" validate:"gte=0"`

	CacheTTL time.Duration `yaml:"cache_ttl" validate:"gte=0"`

	// RateLimitRequests is the per-client budget per RateLimitWindow. Zero
	// disables rate limiting.
	RateLimitRequests int           `yaml:"rate_limit_requests" validate:"gte=0"`
	RateLimitWindow   time.Duration `yaml:"rate_limit_window" validate:"gt=0"`
}

// RedisEnabled reports whether a Redis server is configured.
func (c *Config) RedisEnabled() bool {
	return c.RedisURL != "" || c.RedisHost != ""
}

// Addr is the listen address of the HTTP server.
func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}

// DSN returns the lib/pq connection string for the Postgres driver.
func (c *Config) DSN() string {
	sslMode := c.DBSSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, sslMode,
	)
}

// Default returns the configuration used when nothing is overridden: a
// local SQLite file on port 8080.
func Default() *Config {
	return &Config{
		Env:               Development,
		ServerHost:        "0.0.0.0",
		ServerPort:        "8080",
		ShutdownTimeout:   10 * time.Second,
		LogLevel:          "info",
		CORSOrigins:       []string{"*"},
		DBDriver:          DriverSQLite,
		DBPath:            "USA_recipes.db",
		DBPort:            "5432",
		DBSSLMode:         "disable",
		DBMaxOpenConns:    25,
		DBMaxIdleConns:    25,
		DBConnMaxLifetime: 5 * time.Minute,
		DBSlowQuery:       200 * time.Millisecond,
		CacheTTL:          5 * time.Minute,
		RateLimitRequests: 100,
		RateLimitWindow:   time.Minute,
	}
}

// LoadConfig builds the configuration from defaults, the optional YAML file
// named by CONFIG_FILE, environment variables and, outside CI, Docker
// secrets. Later sources win.
func LoadConfig() (*Config, error) {
	env := GetEnvironment()
	cfg := Default()
	cfg.Env = env

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := loadEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load %s configuration: %w", env, err)
	}

	if env != CI {
		loadSecrets(cfg)
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

func loadEnv(cfg *Config) error {
	cfg.ServerHost = getEnv("SERVER_HOST", cfg.ServerHost)
	cfg.ServerPort = getEnv("SERVER_PORT", cfg.ServerPort)
	cfg.LogLevel = strings.ToLower(getEnv("LOG_LEVEL", cfg.LogLevel))
	cfg.CORSOrigins = getEnvList("CORS_ORIGINS", cfg.CORSOrigins)

	cfg.DBDriver = getEnv("DB_DRIVER", cfg.DBDriver)
	cfg.DBPath = getEnv("DB_PATH", cfg.DBPath)
	cfg.DBHost = getEnv("DB_HOST", cfg.DBHost)
	cfg.DBPort = getEnv("DB_PORT", cfg.DBPort)
	cfg.DBUser = getEnv("DB_USER", cfg.DBUser)
	cfg.DBPassword = getEnv("DB_PASSWORD", cfg.DBPassword)
	cfg.DBName = getEnv("DB_NAME", cfg.DBName)
	cfg.DBSSLMode = getEnv("DB_SSL_MODE", cfg.DBSSLMode)

	cfg.RedisURL = getEnv("REDIS_URL", cfg.RedisURL)
	cfg.RedisHost = getEnv("REDIS_HOST", cfg.RedisHost)
	cfg.RedisPort = getEnv("REDIS_PORT", cfg.RedisPort)
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", cfg.RedisPassword)

	var err error
	if cfg.DBMaxOpenConns, err = getEnvInt("DB_MAX_OPEN_CONNS", cfg.DBMaxOpenConns); err != nil {
		return err
	}
	if cfg.DBMaxIdleConns, err = getEnvInt("DB_MAX_IDLE_CONNS", cfg.DBMaxIdleConns); err != nil {
		return err
	}
	if cfg.RedisDB, err = getEnvInt("REDIS_DB", cfg.RedisDB); err != nil {
		return err
	}
	if cfg.RateLimitRequests, err = getEnvInt("RATE_LIMIT_REQUESTS", cfg.RateLimitRequests); err != nil {
		return err
	}
	if cfg.ShutdownTimeout, err = getEnvDuration("SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout); err != nil {
		return err
	}
	if cfg.DBConnMaxLifetime, err = getEnvDuration("DB_CONN_MAX_LIFETIME", cfg.DBConnMaxLifetime); err != nil {
		return err
	}
	if cfg.DBSlowQuery, err = getEnvDuration("DB_SLOW_QUERY", cfg.DBSlowQuery); err != nil {
		return err
	}
	if cfg.CacheTTL, err = getEnvDuration("CACHE_TTL", cfg.CacheTTL); err != nil {
		return err
	}
	if cfg.RateLimitWindow, err = getEnvDuration("RATE_LIMIT_WINDOW", cfg.RateLimitWindow); err != nil {
		return err
	}
	return nil
}

// loadSecrets overrides passwords with Docker secrets when present.
func loadSecrets(cfg *Config) {
	if v := readSecret("db_password"); v != "" {
		cfg.DBPassword = v
	}
	if v := readSecret("redis_password"); v != "" {
		cfg.RedisPassword = v
	}
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	if data, err := os.ReadFile(filepath.Join(secretsDir, name)); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s (%q): %w", key, v, err)
	}
	return n, nil
}

func getEnvDuration(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s (%q): %w", key, v, err)
	}
	return d, nil
}

func getEnvList(key string, def []string) []string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
