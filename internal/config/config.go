package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	AppEnv  string `env:"APP_ENV" env-default:"development"`
	AppPort string `env:"APP_PORT" env-default:"8080"`

	DBHost     string `env:"DB_HOST" env-default:"localhost"`
	DBPort     string `env:"DB_PORT" env-default:"5432"`
	DBUser     string `env:"DB_USER" env-default:"postgres"`
	DBPassword string `env:"DB_PASSWORD" env-default:"postgres"`
	DBName     string `env:"DB_NAME" env-default:"ledgerdb"`
	DBSSLMode  string `env:"DB_SSLMODE" env-default:"disable"`
	DBMigrate  bool   `env:"DB_MIGRATE" env-default:"true"`

	// StoreDriver selects postgres or the in-process memory store.
	StoreDriver string `env:"STORE_DRIVER" env-default:"postgres"`

	KafkaBrokers             []string      `env:"KAFKA_BROKERS" env-separator:"," env-default:"kafka:9092"`
	KafkaClientID            string        `env:"KAFKA_CLIENT_ID" env-default:"coach-ledger"`
	KafkaGroupID             string        `env:"KAFKA_GROUP_ID" env-default:"ledger-sale-consumers"`
	KafkaRetryGroupID        string        `env:"KAFKA_RETRY_GROUP_ID" env-default:"ledger-sale-retry"`
	KafkaTopicPartitions     int           `env:"KAFKA_TOPIC_PARTITIONS" env-default:"3"`
	KafkaRetryPartitions     int           `env:"KAFKA_RETRY_PARTITIONS" env-default:"1"`
	KafkaReplicationFactor   int           `env:"KAFKA_REPLICATION_FACTOR" env-default:"1"`
	KafkaMaxDeliveryAttempts int           `env:"KAFKA_MAX_DELIVERY_ATTEMPTS" env-default:"5"`
	KafkaRetryDelay          time.Duration `env:"KAFKA_RETRY_DELAY" env-default:"5s"`
	EventDrivenEnabled       bool          `env:"EVENT_DRIVEN_ENABLED" env-default:"false"`

	LedgerOperationTimeout time.Duration `env:"LEDGER_OPERATION_TIMEOUT" env-default:"5s"`
	LedgerMaxAttempts      int           `env:"LEDGER_MAX_ATTEMPTS" env-default:"3"`
	LedgerRetryBackoff     time.Duration `env:"LEDGER_RETRY_BACKOFF" env-default:"50ms"`
	DefaultCommissionRate  float64       `env:"DEFAULT_COMMISSION_RATE" env-default:"15"`
	PublicCoachID          string        `env:"PUBLIC_COACH_ID" env-default:"public"`
	NotifyWorkers          int           `env:"NOTIFY_WORKERS" env-default:"16"`

	LogLevel  string `env:"LOG_LEVEL" env-default:"info"`
	LogFormat string `env:"LOG_FORMAT" env-default:"json"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.StoreDriver {
	case "postgres", "memory":
	default:
		return fmt.Errorf("STORE_DRIVER must be postgres or memory, got %q", c.StoreDriver)
	}
	if c.DefaultCommissionRate < 0 || c.DefaultCommissionRate > 100 {
		return fmt.Errorf("DEFAULT_COMMISSION_RATE must be between 0 and 100, got %v", c.DefaultCommissionRate)
	}
	if c.PublicCoachID == "" {
		return fmt.Errorf("PUBLIC_COACH_ID must not be empty")
	}
	return nil
}

func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgresql://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser,
		c.DBPassword,
		c.DBHost,
		c.DBPort,
		c.DBName,
		c.DBSSLMode,
	)
}

// MigrateDSN is DSN in the scheme golang-migrate's pgx/v5 driver expects.
func (c *Config) MigrateDSN() string {
	return fmt.Sprintf(
		"pgx5://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser,
		c.DBPassword,
		c.DBHost,
		c.DBPort,
		c.DBName,
		c.DBSSLMode,
	)
}

func (c *Config) CommissionRate() decimal.Decimal {
	return decimal.NewFromFloat(c.DefaultCommissionRate).Round(2)
}

func (c *Config) TopicPartitions() int {
	return positive(c.KafkaTopicPartitions, 3)
}

func (c *Config) RetryPartitions() int {
	return positive(c.KafkaRetryPartitions, 1)
}

func (c *Config) ReplicationFactor() int16 {
	return int16(positive(c.KafkaReplicationFactor, 1))
}

func positive(value, fallback int) int {
	if value <= 0 {
		return fallback
	}
	return value
}
