package cfg

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/DRSN-tech/dropship-sync/pkg/e"
	"github.com/DRSN-tech/dropship-sync/pkg/logger"
	"github.com/jimlawless/whereami"
	"github.com/joho/godotenv"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

type Config struct {
	Storage  string
	Log      *LogCfg
	Http     *HTTPConfig
	Grpc     *GRPCConfig
	Auth     *AuthCfg
	Secrets  *SecretsCfg
	Supplier *SupplierCfg
	Runs     *RunsCfg
	// Заполнены только при STORAGE_DRIVER=postgres
	Db     *PGDBCfg
	Redis  *RedisCfg
	Minio  *MinIOCfg
	Kafka  *KafkaCfg
	Outbox *OutboxCfg
}

type LogCfg struct {
	Level  string
	Format string
}

type KafkaCfg struct {
	Topic             string
	Brokers           []string
	NetworkMode       string
	Partitions        int
	ReplicationFactor int
}

type OutboxCfg struct {
	PollInterval time.Duration
	StaleAfter   time.Duration
}

type MinIOCfg struct {
	MinioEndpoint     string // Адрес конечной точки Minio
	BucketName        string // Бакет для архива ответов поставщиков
	MinioRootUser     string
	MinioRootPassword string
	MinioUseSSL       bool
}

type HTTPConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type GRPCConfig struct {
	Port        string
	NetworkMode string
}

type PGDBCfg struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int // 0: значение pgxpool по умолчанию
}

type RedisCfg struct {
	Addr        string
	Password    string
	User        string
	DB          int
	MaxRetries  int
	DialTimeout time.Duration
	Timeout     time.Duration
	ConfigTTL   time.Duration // TTL кэша активной конфигурации
}

// AuthCfg настраивает проверку JWT вызывающего. Выдача токенов вне этого сервиса.
type AuthCfg struct {
	JWTSecret string
	Issuer    string
}

type SecretsCfg struct {
	// Base64 ключ (32 байта) для шифрования учётных данных поставщиков.
	EncryptionKey string
}

type SupplierCfg struct {
	Timeout     time.Duration
	RateLimit   float64
	RateBurst   int
	MaxRetries  int
	BackoffBase time.Duration
	BackoffMax  time.Duration
}

// RunsCfg — параметры пакетных запусков импорта и сверки.
type RunsCfg struct {
	Concurrency int
	LockTTL     time.Duration
}

// LoadEnvFile подгружает .env, если он есть. Уже заданные переменные не перезаписываются.
func LoadEnvFile() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	return nil
}

func LoadLogCfg() *LogCfg {
	return &LogCfg{
		Level:  getEnvOrDefault("LOG_LEVEL", "info"),
		Format: getEnvOrDefault("LOG_FORMAT", "json"),
	}
}

// Load безопасно загружает конфигурацию и возвращает ошибку в случае неудачи.
func Load(log logger.Logger) (*Config, error) {
	storage := strings.ToLower(getEnvOrDefault("STORAGE_DRIVER", StoragePostgres))
	if storage != StoragePostgres && storage != StorageMemory {
		return nil, e.Wrap("STORAGE_DRIVER", e.ErrIncorrectEnvVariable)
	}

	http, err := loadHTTPConfig(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	auth, err := loadAuthCfg()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	supplier, err := loadSupplierCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	runs, err := loadRunsCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	config := &Config{
		Storage:  storage,
		Log:      LoadLogCfg(),
		Http:     http,
		Grpc:     loadGRPCConfig(),
		Auth:     auth,
		Secrets:  &SecretsCfg{EncryptionKey: getEnv("DROPSHIP_ENCRYPTION_KEY")},
		Supplier: supplier,
		Runs:     runs,
	}

	if storage == StorageMemory {
		return config, nil
	}

	if config.Secrets.EncryptionKey == "" {
		return nil, fmt.Errorf("DROPSHIP_ENCRYPTION_KEY is required for %s storage", storage)
	}

	if config.Db, err = loadPGDBCfg(log); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	if config.Redis, err = loadRedisCfg(log); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	if config.Minio, err = loadMinIOCfg(log); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	if config.Kafka, err = loadKafkaCfg(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	if config.Outbox, err = loadOutboxCfg(log); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return config, nil
}

// DSN строка подключения в формате libpq.
func (c *PGDBCfg) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func loadAuthCfg() (*AuthCfg, error) {
	secret := getEnv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}

	return &AuthCfg{
		JWTSecret: secret,
		Issuer:    getEnv("JWT_ISSUER"),
	}, nil
}

func loadSupplierCfg(log logger.Logger) (*SupplierCfg, error) {
	const (
		defaultTimeout     = 15 * time.Second
		defaultRateLimit   = 5.0
		defaultRateBurst   = 1
		defaultMaxRetries  = 3
		defaultBackoffBase = 200 * time.Millisecond
		defaultBackoffMax  = 5 * time.Second
	)

	timeout, err := parseDurationEnv("SUPPLIER_TIMEOUT", defaultTimeout)
	if err != nil {
		log.Errorf(err, "invalid SUPPLIER_TIMEOUT")
		return nil, err
	}

	rateLimit, err := strconv.ParseFloat(getEnvOrDefault("SUPPLIER_RATE_LIMIT", strconv.FormatFloat(defaultRateLimit, 'f', -1, 64)), 64)
	if err != nil || rateLimit <= 0 {
		log.Errorf(e.ErrIncorrectEnvVariable, "invalid SUPPLIER_RATE_LIMIT")
		return nil, e.Wrap("SUPPLIER_RATE_LIMIT", e.ErrIncorrectEnvVariable)
	}

	burst, err := parseIntEnv("SUPPLIER_RATE_BURST", defaultRateBurst)
	if err != nil {
		return nil, e.Wrap("SUPPLIER_RATE_BURST", err)
	}

	maxRetries, err := parseIntEnv("SUPPLIER_MAX_RETRIES", defaultMaxRetries)
	if err != nil {
		return nil, e.Wrap("SUPPLIER_MAX_RETRIES", err)
	}

	backoffBase, err := parseDurationEnv("SUPPLIER_BACKOFF_BASE", defaultBackoffBase)
	if err != nil {
		log.Errorf(err, "invalid SUPPLIER_BACKOFF_BASE")
		return nil, err
	}

	backoffMax, err := parseDurationEnv("SUPPLIER_BACKOFF_MAX", defaultBackoffMax)
	if err != nil {
		log.Errorf(err, "invalid SUPPLIER_BACKOFF_MAX")
		return nil, err
	}

	return &SupplierCfg{
		Timeout:     timeout,
		RateLimit:   rateLimit,
		RateBurst:   burst,
		MaxRetries:  maxRetries,
		BackoffBase: backoffBase,
		BackoffMax:  backoffMax,
	}, nil
}

func loadRunsCfg(log logger.Logger) (*RunsCfg, error) {
	const (
		defaultConcurrency = 8
		defaultLockTTL     = 10 * time.Minute
	)

	concurrency, err := parseIntEnv("RUN_CONCURRENCY", defaultConcurrency)
	if err != nil || concurrency <= 0 {
		return nil, e.Wrap("RUN_CONCURRENCY", e.ErrIncorrectEnvVariable)
	}

	lockTTL, err := parseDurationEnv("RUN_LOCK_TTL", defaultLockTTL)
	if err != nil {
		log.Errorf(err, "invalid RUN_LOCK_TTL")
		return nil, err
	}

	return &RunsCfg{Concurrency: concurrency, LockTTL: lockTTL}, nil
}

func loadKafkaCfg() (*KafkaCfg, error) {
	const (
		defaultPartitions        = 3
		defaultReplicationFactor = 1
		defaultNetworkMode       = "tcp"
		defaultTopic             = "dropship.events"
	)

	brokerStr := os.Getenv("KAFKA_BROKERS")
	if brokerStr == "" {
		return nil, fmt.Errorf("KAFKA_BROKERS environment variable is required")
	}
	brokers := strings.Split(brokerStr, ",")

	partitions, err := parseIntEnv("KAFKA_PARTITIONS", defaultPartitions)
	if err != nil {
		return nil, e.Wrap("KAFKA_PARTITIONS", err)
	}

	replicationFactor, err := parseIntEnv("REPLICATION_FACTOR", defaultReplicationFactor)
	if err != nil {
		return nil, e.Wrap("REPLICATION_FACTOR", err)
	}

	return &KafkaCfg{
		Brokers:           brokers,
		Topic:             getEnvOrDefault("KAFKA_TOPIC", defaultTopic),
		Partitions:        partitions,
		ReplicationFactor: replicationFactor,
		NetworkMode:       getEnvOrDefault("KAFKA_NETWORK_MODE", defaultNetworkMode),
	}, nil
}

func loadOutboxCfg(log logger.Logger) (*OutboxCfg, error) {
	const (
		defaultPollInterval = 5 * time.Second
		defaultStaleAfter   = 2 * time.Minute
	)

	poll, err := parseDurationEnv("OUTBOX_POLL_INTERVAL", defaultPollInterval)
	if err != nil {
		log.Errorf(err, "invalid OUTBOX_POLL_INTERVAL")
		return nil, err
	}

	stale, err := parseDurationEnv("OUTBOX_STALE_AFTER", defaultStaleAfter)
	if err != nil {
		log.Errorf(err, "invalid OUTBOX_STALE_AFTER")
		return nil, err
	}

	return &OutboxCfg{PollInterval: poll, StaleAfter: stale}, nil
}

func loadMinIOCfg(log logger.Logger) (*MinIOCfg, error) {
	const (
		defaultUseSSL   = false
		defaultEndpoint = "minio:9000"
		defaultBucket   = "dropship-snapshots"
	)

	useSSL, err := strconv.ParseBool(getEnvOrDefault("MINIO_USE_SSL", strconv.FormatBool(defaultUseSSL)))
	if err != nil {
		log.Errorf(err, "invalid MINIO_USE_SSL")
		return nil, err
	}

	return &MinIOCfg{
		MinioEndpoint:     getEnvOrDefault("MINIO_ENDPOINT", defaultEndpoint),
		BucketName:        getEnvOrDefault("BUCKET_NAME", defaultBucket),
		MinioRootUser:     getEnv("MINIO_ROOT_USER"),
		MinioRootPassword: getEnv("MINIO_ROOT_PASSWORD"),
		MinioUseSSL:       useSSL,
	}, nil
}

func loadHTTPConfig(log logger.Logger) (*HTTPConfig, error) {
	const (
		defaultPort         = "8080"
		defaultReadTimeout  = 5 * time.Second
		defaultWriteTimeout = 2 * time.Minute // импорт большого листинга идёт синхронно
		defaultIdleTimeout  = 60 * time.Second
	)

	port := getEnvOrDefault("HTTP_PORT", defaultPort)

	readTimeout, err := parseDurationEnv("HTTP_READ_TIMEOUT", defaultReadTimeout)
	if err != nil {
		log.Errorf(err, "invalid HTTP_READ_TIMEOUT")
		return nil, err
	}

	writeTimeout, err := parseDurationEnv("HTTP_WRITE_TIMEOUT", defaultWriteTimeout)
	if err != nil {
		log.Errorf(err, "invalid HTTP_WRITE_TIMEOUT")
		return nil, err
	}

	idleTimeout, err := parseDurationEnv("KEEP_ALIVE", defaultIdleTimeout)
	if err != nil {
		log.Errorf(err, "invalid KEEP_ALIVE")
		return nil, err
	}

	return &HTTPConfig{
		Port:         port,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}, nil
}

func loadGRPCConfig() *GRPCConfig {
	const (
		defaultPort        = "8091"
		defaultNetworkMode = "tcp"
	)

	return &GRPCConfig{
		Port:        getEnvOrDefault("GRPC_PORT", defaultPort),
		NetworkMode: getEnvOrDefault("GRPC_NETWORK_MODE", defaultNetworkMode),
	}
}

func loadPGDBCfg(log logger.Logger) (*PGDBCfg, error) {
	const (
		defaultHost    = "localhost"
		defaultPort    = "5432"
		defaultSSLMode = "disable"
	)

	user := getEnv("POSTGRES_USER")
	if user == "" {
		err := fmt.Errorf("POSTGRES_USER is required")
		log.Errorf(err, "missing POSTGRES_USER")
		return nil, err
	}

	password := getEnv("POSTGRES_PASSWORD")
	if password == "" {
		err := fmt.Errorf("POSTGRES_PASSWORD is required")
		log.Errorf(err, "missing POSTGRES_PASSWORD")
		return nil, err
	}

	dbName := getEnv("POSTGRES_DB")
	if dbName == "" {
		err := fmt.Errorf("POSTGRES_DB is required")
		log.Errorf(err, "missing POSTGRES_DB")
		return nil, err
	}

	maxConns, err := parseIntEnv("POSTGRES_MAX_CONNS", 0)
	if err != nil || maxConns < 0 {
		log.Errorf(e.ErrIncorrectEnvVariable, "invalid POSTGRES_MAX_CONNS")
		return nil, e.Wrap("POSTGRES_MAX_CONNS", e.ErrIncorrectEnvVariable)
	}

	return &PGDBCfg{
		Host:     getEnvOrDefault("POSTGRES_HOST", defaultHost),
		Port:     getEnvOrDefault("POSTGRES_PORT", defaultPort),
		User:     user,
		Password: password,
		DBName:   dbName,
		SSLMode:  getEnvOrDefault("SSL_MODE", defaultSSLMode),
		MaxConns: maxConns,
	}, nil
}

func loadRedisCfg(log logger.Logger) (*RedisCfg, error) {
	const (
		defaultAddr         = "localhost:6379"
		defaultDB           = 0
		defaultMaxRetries   = 3
		defaultDialTimeout  = 5 * time.Second
		defaultReadTimeout  = 3 * time.Second
		defaultWriteTimeout = 3 * time.Second
		defaultConfigTTL    = 5 * time.Minute
	)

	db, err := parseIntEnv("REDIS_DB_ID", defaultDB)
	if err != nil {
		log.Errorf(err, "invalid REDIS_DB_ID")
		return nil, err
	}

	maxRetries, err := parseIntEnv("REDIS_MAX_RETRIES", defaultMaxRetries)
	if err != nil {
		log.Errorf(err, "invalid REDIS_MAX_RETRIES")
		return nil, err
	}

	dialTimeout, err := parseDurationEnv("DIAL_TIMEOUT", defaultDialTimeout)
	if err != nil {
		log.Errorf(err, "invalid DIAL_TIMEOUT")
		return nil, err
	}

	readTimeout, err := parseDurationEnv("READ_TIMEOUT", defaultReadTimeout)
	if err != nil {
		log.Errorf(err, "invalid READ_TIMEOUT")
		return nil, err
	}

	writeTimeout, err := parseDurationEnv("WRITE_TIMEOUT", defaultWriteTimeout)
	if err != nil {
		log.Errorf(err, "invalid WRITE_TIMEOUT")
		return nil, err
	}

	configTTL, err := parseDurationEnv("CONFIG_CACHE_TTL", defaultConfigTTL)
	if err != nil {
		log.Errorf(err, "invalid CONFIG_CACHE_TTL")
		return nil, err
	}

	return &RedisCfg{
		Addr:        getEnvOrDefault("REDIS_ADDR", defaultAddr),
		Password:    getEnv("REDIS_PASSWORD"),
		User:        getEnv("REDIS_USER"),
		DB:          db,
		MaxRetries:  maxRetries,
		DialTimeout: dialTimeout,
		Timeout:     max(readTimeout, writeTimeout),
		ConfigTTL:   configTTL,
	}, nil
}

// getEnv возвращает значение переменной окружения.
// Возвращает пустую строку, если переменная не задана.
func getEnv(key string) string {
	return os.Getenv(key)
}

// getEnvOrDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return defaultValue
}

// parseDurationEnv считывает длительность или возвращает значение по умолчанию.
func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	if v := os.Getenv(key); v != "" {
		return time.ParseDuration(v)
	}

	return defaultValue, nil
}

func parseIntEnv(key string, defaultValue int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}

	intValue, err := strconv.Atoi(v)
	if err != nil {
		return defaultValue, e.ErrIncorrectEnvVariable
	}

	return intValue, nil
}
