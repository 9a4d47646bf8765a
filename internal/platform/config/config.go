package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/erp_ledger/internal/core/domain"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Store drivers.
const (
	DriverPostgres = "postgres"
	DriverBolt     = "bolt"
	DriverMemory   = "memory"
)

// Config holds application configuration.
type Config struct {
	StoreDriver    string
	DatabaseURL    string
	DBMaxConns     int32
	BoltPath       string
	MigrationsPath string
	RunMigrations  bool
	IsProduction   bool
	EnableDBCheck  bool

	LogLevel  string
	LogFormat string

	Ledger LedgerConfig
	Kafka  KafkaConfig
	Worker WorkerConfig
}

// LedgerConfig holds the posting and generation policies.
type LedgerConfig struct {
	ValidateBalances          bool
	MissingAccountPolicy      domain.MissingAccountPolicy
	DuplicateGenerationPolicy domain.DuplicateGenerationPolicy
	EnforceLineExclusivity    bool
	DefaultActor              string
}

// KafkaConfig configures the outbox relay.
type KafkaConfig struct {
	Brokers         []string
	Topic           string
	OutboxBatchSize int
	PollInterval    time.Duration
}

// WorkerConfig configures the long-running worker command.
type WorkerConfig struct {
	Addr              string
	RecurringInterval time.Duration
}

func setDefaults() {
	viper.SetDefault("STORE_DRIVER", DriverPostgres)
	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PGSQL_MAX_CONNS", 0)
	viper.SetDefault("BOLT_PATH", "ledger.db")
	viper.SetDefault("MIGRATIONS_PATH", "file://migrations")
	viper.SetDefault("RUN_MIGRATIONS", false)
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", true)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "text")

	viper.SetDefault("LEDGER_VALIDATE_BALANCES", true)
	viper.SetDefault("LEDGER_MISSING_ACCOUNT_POLICY", string(domain.MissingAccountFallback))
	viper.SetDefault("LEDGER_RECURRING_DUPLICATE_POLICY", string(domain.DuplicateIdempotent))
	viper.SetDefault("LEDGER_ENFORCE_LINE_EXCLUSIVITY", false)
	viper.SetDefault("LEDGER_DEFAULT_ACTOR", domain.SystemActor)

	viper.SetDefault("KAFKA_BROKERS", "")
	viper.SetDefault("KAFKA_TOPIC", "ledger.events")
	viper.SetDefault("OUTBOX_BATCH_SIZE", 100)
	viper.SetDefault("OUTBOX_POLL_INTERVAL", "5s")

	viper.SetDefault("WORKER_ADDR", ":8080")
	viper.SetDefault("WORKER_RECURRING_INTERVAL", "1h")
}

// LoadConfig loads configuration from environment variables and .env files.
// With no arguments the .env file of the working directory is used if present.
func LoadConfig(envFiles ...string) (*Config, error) {
	if len(envFiles) > 0 {
		if err := godotenv.Load(envFiles...); err != nil {
			return nil, fmt.Errorf("load env file: %w", err)
		}
	} else {
		_ = godotenv.Load()
	}

	setDefaults()
	viper.AutomaticEnv()

	cfg := &Config{
		StoreDriver:    strings.ToLower(viper.GetString("STORE_DRIVER")),
		DatabaseURL:    viper.GetString("PGSQL_URL"),
		DBMaxConns:     viper.GetInt32("PGSQL_MAX_CONNS"),
		BoltPath:       viper.GetString("BOLT_PATH"),
		MigrationsPath: viper.GetString("MIGRATIONS_PATH"),
		RunMigrations:  viper.GetBool("RUN_MIGRATIONS"),
		IsProduction:   viper.GetBool("IS_PRODUCTION"),
		EnableDBCheck:  viper.GetBool("ENABLE_DB_CHECK"),
		LogLevel:       viper.GetString("LOG_LEVEL"),
		LogFormat:      viper.GetString("LOG_FORMAT"),
	}

	var err error
	cfg.Ledger.ValidateBalances = viper.GetBool("LEDGER_VALIDATE_BALANCES")
	cfg.Ledger.EnforceLineExclusivity = viper.GetBool("LEDGER_ENFORCE_LINE_EXCLUSIVITY")
	cfg.Ledger.DefaultActor = viper.GetString("LEDGER_DEFAULT_ACTOR")
	if cfg.Ledger.MissingAccountPolicy, err = domain.ParseMissingAccountPolicy(viper.GetString("LEDGER_MISSING_ACCOUNT_POLICY")); err != nil {
		return nil, err
	}
	if cfg.Ledger.DuplicateGenerationPolicy, err = domain.ParseDuplicateGenerationPolicy(viper.GetString("LEDGER_RECURRING_DUPLICATE_POLICY")); err != nil {
		return nil, err
	}

	cfg.Kafka.Brokers = splitList(viper.GetString("KAFKA_BROKERS"))
	cfg.Kafka.Topic = viper.GetString("KAFKA_TOPIC")
	cfg.Kafka.OutboxBatchSize = viper.GetInt("OUTBOX_BATCH_SIZE")
	if cfg.Kafka.PollInterval, err = parseDuration("OUTBOX_POLL_INTERVAL", 5*time.Second); err != nil {
		return nil, err
	}

	cfg.Worker.Addr = viper.GetString("WORKER_ADDR")
	if cfg.Worker.RecurringInterval, err = parseDuration("WORKER_RECURRING_INTERVAL", time.Hour); err != nil {
		return nil, err
	}

	if cfg.StoreDriver == DriverPostgres && cfg.DatabaseURL == "" {
		slog.Warn("PGSQL_URL environment variable not set.")
	}

	return cfg, cfg.Validate()
}

// Validate rejects settings no command can run with.
func (c *Config) Validate() error {
	var errs []error
	switch c.StoreDriver {
	case DriverPostgres, DriverBolt, DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver))
	}
	if c.StoreDriver == DriverBolt && c.BoltPath == "" {
		errs = append(errs, errors.New("BOLT_PATH is required for the bolt driver"))
	}
	if c.Kafka.OutboxBatchSize <= 0 {
		errs = append(errs, fmt.Errorf("OUTBOX_BATCH_SIZE must be positive, got %d", c.Kafka.OutboxBatchSize))
	}
	if c.Kafka.PollInterval <= 0 {
		errs = append(errs, errors.New("OUTBOX_POLL_INTERVAL must be positive"))
	}
	if c.Worker.RecurringInterval <= 0 {
		errs = append(errs, errors.New("WORKER_RECURRING_INTERVAL must be positive"))
	}
	return errors.Join(errs...)
}

func parseDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := viper.GetString(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s (%q): %w", key, raw, err)
	}
	return d, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
