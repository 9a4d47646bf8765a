package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/SscSPs/erp_ledger/internal/core/domain"
	"github.com/SscSPs/erp_ledger/internal/platform/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("STORE_DRIVER", "memory")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, config.DriverMemory, cfg.StoreDriver)
	assert.True(t, cfg.Ledger.ValidateBalances)
	assert.Equal(t, domain.MissingAccountFallback, cfg.Ledger.MissingAccountPolicy)
	assert.Equal(t, domain.DuplicateIdempotent, cfg.Ledger.DuplicateGenerationPolicy)
	assert.False(t, cfg.Ledger.EnforceLineExclusivity)
	assert.Equal(t, "System", cfg.Ledger.DefaultActor)
	assert.Equal(t, 100, cfg.Kafka.OutboxBatchSize)
	assert.Equal(t, 5*time.Second, cfg.Kafka.PollInterval)
	assert.Equal(t, time.Hour, cfg.Worker.RecurringInterval)
	assert.Empty(t, cfg.Kafka.Brokers)
}

func TestLoadConfig_Overrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("STORE_DRIVER", "BOLT")
	t.Setenv("BOLT_PATH", "/tmp/ledger.db")
	t.Setenv("LEDGER_VALIDATE_BALANCES", "false")
	t.Setenv("LEDGER_MISSING_ACCOUNT_POLICY", "strict")
	t.Setenv("LEDGER_RECURRING_DUPLICATE_POLICY", "reject")
	t.Setenv("LEDGER_ENFORCE_LINE_EXCLUSIVITY", "true")
	t.Setenv("LEDGER_DEFAULT_ACTOR", "batch")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092")
	t.Setenv("OUTBOX_POLL_INTERVAL", "250ms")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, config.DriverBolt, cfg.StoreDriver)
	assert.Equal(t, "/tmp/ledger.db", cfg.BoltPath)
	assert.False(t, cfg.Ledger.ValidateBalances)
	assert.Equal(t, domain.MissingAccountStrict, cfg.Ledger.MissingAccountPolicy)
	assert.Equal(t, domain.DuplicateReject, cfg.Ledger.DuplicateGenerationPolicy)
	assert.True(t, cfg.Ledger.EnforceLineExclusivity)
	assert.Equal(t, "batch", cfg.Ledger.DefaultActor)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 250*time.Millisecond, cfg.Kafka.PollInterval)
}

func TestLoadConfig_EnvFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	path := filepath.Join(dir, "ledger.env")
	require.NoError(t, os.WriteFile(path, []byte("STORE_DRIVER=memory\nLEDGER_DEFAULT_ACTOR=from-file\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("STORE_DRIVER")
		os.Unsetenv("LEDGER_DEFAULT_ACTOR")
	})

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.Ledger.DefaultActor)

	_, err = config.LoadConfig(filepath.Join(dir, "missing.env"))
	assert.Error(t, err)
}

func TestLoadConfig_RejectsUnknownPolicy(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("LEDGER_MISSING_ACCOUNT_POLICY", "ignore")

	_, err := config.LoadConfig()
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	cfg := &config.Config{
		StoreDriver: "sqlite",
		Kafka:       config.KafkaConfig{OutboxBatchSize: 0},
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STORE_DRIVER")
	assert.Contains(t, err.Error(), "OUTBOX_BATCH_SIZE")
	assert.Contains(t, err.Error(), "WORKER_RECURRING_INTERVAL")
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir, added in Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatal(err)
		}
	})
}
