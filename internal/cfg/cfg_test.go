package cfg

import (
	"testing"
	"time"

	"github.com/DRSN-tech/dropship-sync/pkg/e"
	"github.com/DRSN-tech/dropship-sync/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MemoryStorage(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("SUPPLIER_TIMEOUT", "3s")
	t.Setenv("RUN_CONCURRENCY", "2")

	config, err := Load(logger.NewNop())
	require.NoError(t, err)

	assert.Equal(t, StorageMemory, config.Storage)
	assert.Equal(t, 3*time.Second, config.Supplier.Timeout)
	assert.Equal(t, 5.0, config.Supplier.RateLimit)
	assert.Equal(t, 2, config.Runs.Concurrency)
	assert.Equal(t, 10*time.Minute, config.Runs.LockTTL)
	assert.Equal(t, "8080", config.Http.Port)
	assert.Nil(t, config.Db)
	assert.Nil(t, config.Kafka)
}

func TestLoad_PostgresRequiresInfrastructure(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "postgres")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("DROPSHIP_ENCRYPTION_KEY", "")

	_, err := Load(logger.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DROPSHIP_ENCRYPTION_KEY")

	t.Setenv("DROPSHIP_ENCRYPTION_KEY", "a2V5")
	t.Setenv("POSTGRES_USER", "")
	_, err = Load(logger.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "POSTGRES_USER")
}

func TestLoad_Postgres(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "postgres")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("DROPSHIP_ENCRYPTION_KEY", "a2V5")
	t.Setenv("POSTGRES_USER", "dropship")
	t.Setenv("POSTGRES_PASSWORD", "pw")
	t.Setenv("POSTGRES_DB", "dropship")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")
	t.Setenv("KAFKA_TOPIC", "")
	t.Setenv("POSTGRES_MAX_CONNS", "16")

	config, err := Load(logger.NewNop())
	require.NoError(t, err)

	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, config.Kafka.Brokers)
	assert.Equal(t, "dropship.events", config.Kafka.Topic)
	assert.Equal(t, "dropship-snapshots", config.Minio.BucketName)
	assert.Equal(t, 5*time.Minute, config.Redis.ConfigTTL)
	assert.Equal(t, 2*time.Minute, config.Outbox.StaleAfter)
	assert.Equal(t, "host=localhost port=5432 user=dropship password=pw dbname=dropship sslmode=disable", config.Db.DSN())
	assert.Equal(t, 16, config.Db.MaxConns)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{name: "storage driver", key: "STORAGE_DRIVER", val: "sqlite"},
		{name: "rate limit", key: "SUPPLIER_RATE_LIMIT", val: "-1"},
		{name: "concurrency", key: "RUN_CONCURRENCY", val: "zero"},
		{name: "timeout", key: "SUPPLIER_TIMEOUT", val: "soon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("STORAGE_DRIVER", "memory")
			t.Setenv("JWT_SECRET", "test-secret")
			t.Setenv(tt.key, tt.val)

			_, err := Load(logger.NewNop())
			require.Error(t, err)
		})
	}
}

func TestLoad_JWTSecretRequired(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("JWT_SECRET", "")

	_, err := Load(logger.NewNop())
	require.Error(t, err)
}

func TestParseIntEnv(t *testing.T) {
	t.Setenv("SOME_INT", "x")
	_, err := parseIntEnv("SOME_INT", 4)
	assert.ErrorIs(t, err, e.ErrIncorrectEnvVariable)

	t.Setenv("SOME_INT", "")
	v, err := parseIntEnv("SOME_INT", 4)
	require.NoError(t, err)
	assert.Equal(t, 4, v)
}
