package main // Entry point package

import (
	"context"
	"errors"
	"log" // used only before the zap logger exists
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"                   // Echo web framework
	echomw "github.com/labstack/echo/v4/middleware" // recover, request id, CORS
	"go.uber.org/zap"

	"github.com/bocattovalley/bocatto-server/internal/availability"
	"github.com/bocattovalley/bocatto-server/internal/config" // Internal config loader
	"github.com/bocattovalley/bocatto-server/internal/database"
	"github.com/bocattovalley/bocatto-server/internal/directory"
	"github.com/bocattovalley/bocatto-server/internal/handler"
	"github.com/bocattovalley/bocatto-server/internal/kv"
	"github.com/bocattovalley/bocatto-server/internal/middleware"
	"github.com/bocattovalley/bocatto-server/internal/queue"
	"github.com/bocattovalley/bocatto-server/internal/repository"
	"github.com/bocattovalley/bocatto-server/internal/reservation"
	"github.com/bocattovalley/bocatto-server/internal/router" // Internal router setup
	"github.com/bocattovalley/bocatto-server/internal/service"
	"github.com/bocattovalley/bocatto-server/internal/utils"
	"github.com/bocattovalley/bocatto-server/internal/workspace"
)

func main() {
	config.LoadDotEnv()
	logger, err := config.NewLogger(config.LoadLogConfig())
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	cfg := config.Load() // Load environment config
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rdb := config.NewRedisClient(logger)
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
	}

	// ---- Scope stores and availability ----
	index := availability.New(ctx, rdb, logger)
	hasher := utils.BcryptHasher{Cost: cfg.BcryptCost}
	seed, err := directory.SeedUsers(hasher)
	if err != nil {
		logger.Fatal("hash seed users", zap.Error(err))
	}
	catalog := reservation.DefaultCatalog()
	publisher := service.NewReservationPublisher(cfg.AMQPURL, logger)
	registry := kv.NewRegistry(rdb, cfg.TabTTL)
	if rdb == nil {
		go registry.SweepEvery(ctx, time.Minute)
	}
	provider := &workspace.Provider{
		Registry:  registry,
		Seed:      seed,
		Hasher:    hasher,
		Index:     index,
		Catalog:   catalog,
		Publisher: publisher,
		NewID:     utils.SnowflakeIDs(utils.NewSnowflakeNode(cfg.SnowflakeNode)),
		Logger:    logger,
	}

	if cfg.ConsumerEnabled {
		startConsumer(ctx, cfg.AMQPURL, logger)
	}

	// ---- Registration endpoint ----
	accounts, closeAccounts := newAccountStore(ctx, cfg, logger)
	defer closeAccounts()
	registrar := service.NewRegistrar(accounts, hasher, nil, logger)

	// ---- HTTP ----
	e := echo.New() // Create Echo instance
	e.HideBanner = true
	e.Validator = handler.NewRequestValidator()
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(echomw.CORS())
	e.Use(middleware.RequestLogger(logger))

	router.RegisterRoutes(e, rdb)
	router.RegisterScope(e, handler.NewScopeHandler(cfg.JWTSecret, cfg.ScopeTTL))
	cacheCfg := config.LoadCacheConfig()
	var catalogCache kv.Store
	if rdb != nil {
		catalogCache = kv.NewRedis(rdb, cacheCfg.Prefix+":", cacheCfg.TTL)
	}
	router.RegisterCatalog(e, handler.NewEnvironmentHandler(catalog), middleware.CatalogCache(cacheCfg, catalogCache))

	authLimit := middleware.NewTokenBucket(config.LoadAuthRateLimitConfig(), rdb, logger)
	router.RegisterRegistration(e, handler.NewRegistrationHandler(registrar), authLimit)

	scoped := router.Scoped(e, cfg.JWTSecret, provider, middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, logger))
	router.RegisterAuth(scoped, handler.NewAuthHandler(), authLimit)
	router.RegisterReservations(scoped, handler.NewReservationHandler(index))
	router.RegisterAdmin(scoped, handler.NewAdminHandler())

	addr := ":" + cfg.Port // Address string with port
	go func() {
		logger.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}

// startConsumer runs the reservation.confirmed consumer until ctx ends.
func startConsumer(ctx context.Context, url string, logger *zap.Logger) {
	out, err := queue.NewReservationLog("logs")
	if err != nil {
		logger.Warn("reservation log unavailable, consumer disabled", zap.Error(err))
		return
	}
	c := &queue.Consumer{URL: url, Out: out, Logger: logger}
	go func() {
		defer func() { _ = out.Close() }()
		if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("reservation consumer stopped", zap.Error(err))
		}
	}()
}

// newAccountStore opens the configured registration backend.  When the
// database cannot be reached the endpoint keeps working on process memory.
func newAccountStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (repository.AccountStore, func()) {
	noop := func() {}
	switch cfg.RegistryBackend {
	case config.BackendMySQL:
		db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
		if err != nil {
			logger.Warn("mysql unavailable, accounts kept in memory", zap.Error(err))
			return repository.NewMemoryAccountRepo(), noop
		}
		repo := repository.NewMySQLAccountRepo(db)
		if err := repo.EnsureTable(ctx); err != nil {
			logger.Warn("create accounts table failed", zap.Error(err))
		}
		logger.Info("accounts stored in mysql", zap.String("db", cfg.DBName))
		return repo, func() { _ = db.Close() }
	default:
		client, err := database.OpenMongo(cfg.MongoURI)
		if err != nil {
			logger.Warn("mongodb unavailable, accounts kept in memory", zap.Error(err))
			return repository.NewMemoryAccountRepo(), noop
		}
		coll := client.Database(cfg.MongoDB).Collection(cfg.MongoCollection)
		logger.Info("accounts stored in mongodb", zap.String("db", cfg.MongoDB), zap.String("collection", cfg.MongoCollection))
		return repository.NewMongoAccountRepo(coll), func() { _ = client.Disconnect(context.Background()) }
	}
}
