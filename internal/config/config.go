package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server   ServerConfig
	Runner   RunnerConfig
	Fetch    FetchConfig
	Search   SearchConfig
	Redis    RedisConfig
	Database DatabaseConfig
	Tasks    TaskConfig
}

type ServerConfig struct {
	Port            int
	BaseURL         string
	ShutdownTimeout time.Duration
}

type RunnerConfig struct {
	// BaseDir holds run roots and archives.
	BaseDir      string
	ImageQuality int
	// ImageCap limits saved images per product; 0 means unlimited.
	ImageCap int
}

type FetchConfig struct {
	PageTimeout     time.Duration
	ImageTimeout    time.Duration
	DocumentTimeout time.Duration
	UserAgent       string
}

type SearchConfig struct {
	// Endpoint of the JSON search provider. Credentials absent means search
	// strategies short-circuit to empty records.
	Endpoint string
	APIKey   string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type DatabaseConfig struct {
	// URL enables the pgx-backed run history when non-empty.
	URL string
}

type TaskConfig struct {
	// TTL keeps finished task records around for polling before eviction.
	TTL time.Duration
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnvInt("PORT", 8080),
			BaseURL:         getEnv("BASE_URL", "http://localhost:8080"),
			ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Runner: RunnerConfig{
			BaseDir:      getEnv("BASE_DIR", "data"),
			ImageQuality: getEnvInt("IMAGE_QUALITY", 85),
			ImageCap:     getEnvInt("IMAGE_CAP", 0),
		},
		Fetch: FetchConfig{
			PageTimeout:     getEnvDuration("PAGE_TIMEOUT", 25*time.Second),
			ImageTimeout:    getEnvDuration("IMAGE_TIMEOUT", 25*time.Second),
			DocumentTimeout: getEnvDuration("DOC_TIMEOUT", 30*time.Second),
			UserAgent:       getEnv("USER_AGENT", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
		},
		Search: SearchConfig{
			Endpoint: getEnv("SEARCH_API_URL", ""),
			APIKey:   getEnv("SEARCH_API_KEY", ""),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Database: DatabaseConfig{
			URL: getEnv("DATABASE_URL", ""),
		},
		Tasks: TaskConfig{
			TTL: getEnvDuration("TASK_TTL", time.Hour),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Runner.BaseDir == "" {
		return fmt.Errorf("BASE_DIR is required")
	}

	if c.Runner.ImageQuality < 1 || c.Runner.ImageQuality > 100 {
		return fmt.Errorf("IMAGE_QUALITY must be between 1 and 100, got %d", c.Runner.ImageQuality)
	}

	if c.Runner.ImageCap < 0 {
		return fmt.Errorf("IMAGE_CAP cannot be negative")
	}

	if c.Tasks.TTL <= 0 {
		return fmt.Errorf("TASK_TTL must be positive")
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
