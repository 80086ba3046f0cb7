package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

// Config - структура для хранения конфигурации приложения
type Config struct {
	StorageDriver   string        `envconfig:"STORAGE_DRIVER" default:"postgres"`
	DatabaseURL     string        `envconfig:"DATABASE_URL"`
	MigrationsPath  string        `envconfig:"MIGRATIONS_PATH" default:"file://migrations"`
	HTTPPort        string        `envconfig:"HTTP_PORT" default:"8080"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat       string        `envconfig:"LOG_FORMAT" default:"json"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"5s"`

	// Redis Config (пустой адрес отключает кеш и вебхуки)
	RedisAddr string        `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPass string        `envconfig:"REDIS_PASSWORD"`
	RedisDB   int           `envconfig:"REDIS_DB" default:"0"`
	CacheTTL  time.Duration `envconfig:"CACHE_TTL" default:"5m"`

	// Webhook Config
	WebhookURL        string        `envconfig:"WEBHOOK_URL"`
	WebhookSecret     string        `envconfig:"WEBHOOK_SECRET"`
	WebhookTimeout    time.Duration `envconfig:"WEBHOOK_TIMEOUT" default:"5s"`
	WebhookMaxRetries int           `envconfig:"WEBHOOK_MAX_RETRIES" default:"3"`
	WebhookBaseDelay  time.Duration `envconfig:"WEBHOOK_BASE_DELAY" default:"1s"`

	// Evolution Config
	EvolutionEnabled      bool          `envconfig:"EVOLUTION_ENABLED" default:"true"`
	EvolutionInterval     time.Duration `envconfig:"EVOLUTION_INTERVAL" default:"5s"`
	ContainProbability    float64       `envconfig:"EVOLUTION_CONTAIN_PROBABILITY" default:"0.3"`
	ExtinguishProbability float64       `envconfig:"EVOLUTION_EXTINGUISH_PROBABILITY" default:"0.4"`
	EvolutionSeed         uint64        `envconfig:"EVOLUTION_SEED" default:"0"`

	// Stream Config
	StreamSnapshotSize int           `envconfig:"STREAM_SNAPSHOT_SIZE" default:"10"`
	StreamBufferSize   int           `envconfig:"STREAM_BUFFER_SIZE" default:"64"`
	StreamHeartbeat    time.Duration `envconfig:"STREAM_HEARTBEAT" default:"15s"`

	// Файл с сетками регионов; пустое значение - встроенный каталог
	RegionsFile string `envconfig:"REGIONS_FILE"`
}

// LoadConfig загружает конфигурацию из переменных окружения и .env файла
func LoadConfig() (*Config, error) {
	// Загрузка переменных окружения из .env файла (если есть)
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate проверяет взаимозависимые параметры
func (c *Config) Validate() error {
	switch c.StorageDriver {
	case StorageDriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL environment variable is required for the postgres storage driver")
		}
	case StorageDriverMemory:
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q (expected %s or %s)", c.StorageDriver, StorageDriverPostgres, StorageDriverMemory)
	}

	if c.EvolutionInterval <= 0 {
		return fmt.Errorf("EVOLUTION_INTERVAL must be positive")
	}
	if !isProbability(c.ContainProbability) || !isProbability(c.ExtinguishProbability) {
		return fmt.Errorf("evolution probabilities must be in [0,1]")
	}
	if c.StreamSnapshotSize < 0 {
		return fmt.Errorf("STREAM_SNAPSHOT_SIZE must be >= 0")
	}
	if c.StreamBufferSize < 1 {
		return fmt.Errorf("STREAM_BUFFER_SIZE must be >= 1")
	}
	if c.StreamHeartbeat <= 0 {
		return fmt.Errorf("STREAM_HEARTBEAT must be positive")
	}
	if c.WebhookMaxRetries < 1 {
		return fmt.Errorf("WEBHOOK_MAX_RETRIES must be >= 1")
	}
	return nil
}

func isProbability(p float64) bool {
	return p >= 0 && p <= 1
}
