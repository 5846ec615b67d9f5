package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/DRSN-tech/dropship-sync/internal/cfg"
	v1Grpc "github.com/DRSN-tech/dropship-sync/internal/delivery/v1/grpc"
	v1Http "github.com/DRSN-tech/dropship-sync/internal/delivery/v1/http"
	"github.com/DRSN-tech/dropship-sync/internal/infrastructure/kafka"
	"github.com/DRSN-tech/dropship-sync/internal/infrastructure/supplier"
	"github.com/DRSN-tech/dropship-sync/internal/metrics"
	"github.com/DRSN-tech/dropship-sync/internal/provider"
	"github.com/DRSN-tech/dropship-sync/internal/repository/memory"
	s3Repo "github.com/DRSN-tech/dropship-sync/internal/repository/minio"
	"github.com/DRSN-tech/dropship-sync/internal/repository/pgdb"
	"github.com/DRSN-tech/dropship-sync/internal/repository/redis"
	"github.com/DRSN-tech/dropship-sync/internal/usecase"
	"github.com/DRSN-tech/dropship-sync/pkg/clients"
	"github.com/DRSN-tech/dropship-sync/pkg/closer"
	"github.com/DRSN-tech/dropship-sync/pkg/e"
	"github.com/DRSN-tech/dropship-sync/pkg/logger"
	"github.com/DRSN-tech/dropship-sync/pkg/postgres"
	"github.com/DRSN-tech/dropship-sync/pkg/secret"
	"github.com/DRSN-tech/dropship-sync/pkg/tr"
	"github.com/go-chi/chi/v5"
	"github.com/jimlawless/whereami"
)

const shutdownTimeout = 15 * time.Second

// storage — набор хранилищ, выбранный по STORAGE_DRIVER.
type storage struct {
	configs      usecase.ConfigRepository
	cache        usecase.ConfigCache
	catalog      usecase.CatalogRepository
	syncLogs     usecase.SyncLogRepository
	fulfillments usecase.FulfillmentRepository
	outbox       usecase.OutboxRepository
	snapshots    usecase.SnapshotStore
	lock         usecase.RunLock
	tx           usecase.TxManager
	sealer       usecase.SecretSealer
}

type App struct {
	cfg     *config.Config
	logger  logger.Logger
	closer  *closer.Closer
	httpSrv *v1Http.Server
	grpcSrv *v1Grpc.GRPCServer
	outbox  *kafka.OutboxWorker
}

// NewApp собирает зависимости. Ресурсы регистрируются в closer по мере открытия.
func NewApp(cfg *config.Config, log logger.Logger) (*App, error) {
	a := &App{
		cfg:    cfg,
		logger: log,
		closer: closer.NewCloser(5 * time.Second),
	}

	var (
		st  *storage
		err error
	)
	switch cfg.Storage {
	case config.StorageMemory:
		st, err = a.initMemory()
	default:
		st, err = a.initPostgresStack()
	}
	if err != nil {
		_ = a.closer.Close(context.Background())
		return nil, err
	}

	m := metrics.New()

	factory := supplier.NewFactory(provider.DefaultRegistry(), supplier.Options{
		Timeout:     cfg.Supplier.Timeout,
		RateLimit:   cfg.Supplier.RateLimit,
		RateBurst:   cfg.Supplier.RateBurst,
		MaxRetries:  cfg.Supplier.MaxRetries,
		BackoffBase: cfg.Supplier.BackoffBase,
		BackoffMax:  cfg.Supplier.BackoffMax,
	}, m, log)

	audit := usecase.NewAuditWriter(st.syncLogs, st.fulfillments, st.outbox, kafka.EventEncoder{}, st.tx)
	configUC := usecase.NewConfigUC(st.configs, st.cache, st.sealer, factory, st.tx, log)

	dropshipUC := usecase.NewDropshipService(
		configUC,
		usecase.NewCatalogImporter(configUC, factory, st.catalog, audit, st.snapshots, cfg.Runs.Concurrency, m, log),
		usecase.NewInventoryReconciler(configUC, factory, st.catalog, audit, cfg.Runs.Concurrency, m, log),
		usecase.NewFulfillmentDispatcher(configUC, factory, audit, m, log),
		st.syncLogs,
		st.fulfillments,
	)

	r := chi.NewRouter()
	auth := v1Http.NewAuthenticator(cfg.Auth.JWTSecret, cfg.Auth.Issuer, log)
	v1Http.NewRouter(r, auth, m, log).Init(dropshipUC, st.lock, cfg.Runs.LockTTL, m.Handler())
	a.httpSrv = v1Http.NewServer(r, cfg.Http)

	a.grpcSrv = v1Grpc.NewGRPCServer(cfg.Grpc, log)
	a.grpcSrv.RegisterServices()

	return a, nil
}

// initMemory собирает всё в памяти процесса, без внешних сервисов.
func (a *App) initMemory() (*storage, error) {
	sealer, err := a.newSealer()
	if err != nil {
		return nil, err
	}

	a.logger.Warnf("STORAGE_DRIVER=memory: data is not persisted and events are not published")
	return &storage{
		configs:      memory.NewConfigRepo(),
		cache:        memory.ConfigCache{},
		catalog:      memory.NewCatalogRepo(),
		syncLogs:     memory.NewSyncLogRepo(),
		fulfillments: memory.NewFulfillmentRepo(),
		outbox:       memory.NewOutboxRepo(),
		snapshots:    memory.NewSnapshotStore(),
		lock:         memory.NewRunLock(),
		tx:           memory.TxManager{},
		sealer:       sealer,
	}, nil
}

func (a *App) initPostgresStack() (*storage, error) {
	cfg := a.cfg

	sealer, err := a.newSealer()
	if err != nil {
		return nil, err
	}

	db, err := initPGDB(a.logger, cfg)
	if err != nil {
		return nil, err
	}
	a.closer.Add("postgres", func(context.Context) error {
		db.Close()
		return nil
	})

	redisClient := clients.NewRedisClient(cfg.Redis)
	a.closer.Add("redis", func(context.Context) error { return redisClient.Close() })

	redisCtx, redisCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer redisCancel()
	if err := redisClient.Ping(redisCtx); err != nil {
		a.logger.Errorf(err, "failed to connect to redis")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	minioClient, err := clients.NewMinIOClient(cfg.Minio)
	if err != nil {
		a.logger.Errorf(err, "failed to initialize minio client")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	minioCtx, minioCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer minioCancel()
	if err := clients.EnsureBucket(minioCtx, minioClient, cfg.Minio.BucketName); err != nil {
		a.logger.Errorf(err, "failed to initialize MinIO bucket")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	producer, err := kafka.NewProducer(a.logger, cfg.Kafka)
	if err != nil {
		a.logger.Errorf(err, "failed to initialize kafka producer")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	a.closer.Add("kafka producer", func(context.Context) error { return producer.Close() })
	if err := producer.EnsureTopic(10 * time.Second); err != nil {
		a.logger.Errorf(err, "failed to ensure kafka topic")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	outboxRepo := pgdb.NewOutboxEventRepo(db.Pool)
	a.outbox = kafka.NewOutboxWorker(outboxRepo, a.logger, producer, db.Dsn, cfg.Outbox.PollInterval, cfg.Outbox.StaleAfter)

	return &storage{
		configs:      pgdb.NewConfigRepo(db.Pool),
		cache:        redis.NewCacheRepo(redisClient, cfg.Redis, a.logger),
		catalog:      pgdb.NewCatalogRepo(db.Pool),
		syncLogs:     pgdb.NewSyncLogRepo(db.Pool),
		fulfillments: pgdb.NewFulfillmentRepo(db.Pool),
		outbox:       outboxRepo,
		snapshots:    s3Repo.NewSnapshotRepo(minioClient, cfg.Minio),
		lock:         redis.NewRunLock(redisClient),
		tx:           tr.NewManager(db.Pool),
		sealer:       sealer,
	}, nil
}

// newSealer: без ключа в памяти генерируется временный, зашифрованные данные не переживут рестарт.
func (a *App) newSealer() (*secret.Sealer, error) {
	if key := a.cfg.Secrets.EncryptionKey; key != "" {
		sealer, err := secret.NewSealerFromBase64(key)
		if err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		return sealer, nil
	}

	a.logger.Warnf("DROPSHIP_ENCRYPTION_KEY is not set, using an ephemeral key")
	return secret.NewSealer(secret.GenerateKey())
}

// Run запускает серверы и блокируется до сигнала или фатальной ошибки сервера.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if a.outbox != nil {
		a.outbox.Start(ctx)
		a.logger.Infof("Outbox worker started")
	}

	grpcErrCh := make(chan error, 1)
	go func() {
		a.logger.Infof("gRPC server starting on %s:%s", a.cfg.Grpc.NetworkMode, a.cfg.Grpc.Port)
		if err := a.grpcSrv.Start(); err != nil {
			grpcErrCh <- err
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		a.logger.Infof("HTTP server started on port %s", a.cfg.Http.Port)
		if err := a.httpSrv.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	a.grpcSrv.SetServing(true)

	// === Ожидание сигнала или ошибки ===
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	var appErr error
	select {
	case appErr = <-errCh:
		a.logger.Errorf(appErr, "HTTP server fatal error")
	case appErr = <-grpcErrCh:
		a.logger.Errorf(appErr, "gRPC server fatal error")
	case <-shutdown:
		a.logger.Infof("Received shutdown signal, stopping gracefully...")
	}

	a.stop(cancel)

	if appErr != nil {
		return e.Wrap(whereami.WhereAmI(), appErr)
	}
	return nil
}

// stop останавливает приём запросов, затем воркер outbox и внешние ресурсы (LIFO через closer).
func (a *App) stop(cancel context.CancelFunc) {
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	a.grpcSrv.SetServing(false)

	if err := a.httpSrv.Stop(shutdownCtx); err != nil {
		a.logger.Errorf(err, "HTTP server shutdown error")
	} else {
		a.logger.Infof("HTTP server stopped")
	}

	if err := a.grpcSrv.Stop(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		a.logger.Errorf(err, "gRPC server shutdown error")
	}

	cancel()
	if a.outbox != nil {
		a.outbox.Stop()
		a.logger.Infof("Outbox worker stopped")
	}

	if err := a.closer.Close(shutdownCtx); err != nil {
		a.logger.Errorf(err, "resource shutdown error")
	}
	a.logger.Infof("Application shutdown complete")
	_ = logger.Sync(a.logger)
}

func initPGDB(logger logger.Logger, cfg *config.Config) (*postgres.PgDatabase, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := postgres.Connect(ctx, cfg.Db)
	if err != nil {
		logger.Errorf(err, "failed to connect to database")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := db.RunMigrations(logger); err != nil {
		logger.Errorf(err, "failed to run migrations")
		db.Close()
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := db.Ping(ctx); err != nil {
		logger.Errorf(err, "failed to ping database")
		db.Close()
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return db, nil
}
