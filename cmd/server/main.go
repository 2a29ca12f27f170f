package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/edusuite/backend/internal/application/quota"
	"github.com/edusuite/backend/internal/application/subscriptions"
	"github.com/edusuite/backend/internal/application/tenantctx"
	"github.com/edusuite/backend/internal/application/usage"
	"github.com/edusuite/backend/internal/infrastructure/auth"
	"github.com/edusuite/backend/internal/infrastructure/cache"
	"github.com/edusuite/backend/internal/infrastructure/config"
	"github.com/edusuite/backend/internal/infrastructure/logger"
	"github.com/edusuite/backend/internal/infrastructure/persistence"
	"github.com/edusuite/backend/internal/infrastructure/scope"
	"github.com/edusuite/backend/internal/interfaces/http/handler"
	"github.com/edusuite/backend/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() { _ = db.Close() }()

	if err := db.EnableTracing(cfg.Telemetry); err != nil {
		log.Fatal("failed to enable database tracing", zap.Error(err))
	}

	// Snapshot cache: Redis when configured, in-process otherwise
	var store cache.SnapshotStore
	if cfg.Redis.Host != "" {
		redisStore, err := cache.NewRedisSnapshotStore(cache.RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Warn("redis unavailable, falling back to in-memory snapshot cache", zap.Error(err))
			store = cache.NewMemorySnapshotStore(cache.WithDefaultTTL(cfg.Usage.CacheTTL))
		} else {
			store = redisStore
		}
	} else {
		store = cache.NewMemorySnapshotStore(cache.WithDefaultTTL(cfg.Usage.CacheTTL))
	}
	defer func() { _ = store.Close() }()

	// Repositories
	schoolRepo := persistence.NewGormSchoolRepository(db.DB)
	branchRepo := persistence.NewGormBranchRepository(db.DB)
	courseRepo := persistence.NewGormCourseRepository(db.DB)
	assignmentRepo := persistence.NewGormAssignmentRepository(db.DB)
	subscriptionRepo := persistence.NewGormSubscriptionRepository(db.DB)
	packageRepo := persistence.NewGormPackageRepository(db.DB)
	usageCounters := persistence.NewGormUsageCounters(db.DB)

	// Engine services
	calculator := usage.NewCalculator(schoolRepo, usageCounters, log)
	cacheWriter := usage.NewCacheWriter(subscriptionRepo, calculator, store, cfg.Usage.CacheTTL, log)
	tenantResolver := tenantctx.NewResolver(schoolRepo, subscriptionRepo, packageRepo, log)
	scopeResolver := scope.NewResolver(assignmentRepo, log)
	verifier := scope.NewVerifier(db.DB, log)
	gate := quota.NewGate(tenantResolver, log)
	txGate := quota.NewTxGate(db, subscriptionRepo, packageRepo, log)
	subscriptionService := subscriptions.NewService(schoolRepo, subscriptionRepo, packageRepo, cacheWriter, log)

	jwtService := auth.NewJWTService(cfg.JWT)

	engine := router.New(router.Config{
		HTTP:          cfg.HTTP,
		JWTService:    jwtService,
		ScopeResolver: scopeResolver,
		Logger:        log,
	},
		router.SubscriptionRoutes{Handler: handler.NewSubscriptionHandler(subscriptionService)},
		router.UsageRoutes{Handler: handler.NewUsageHandler(cacheWriter, calculator, tenantResolver)},
		router.OrgRoutes{Handler: handler.NewOrgHandler(branchRepo, courseRepo, assignmentRepo, gate, txGate, verifier, cacheWriter)},
	)

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("server starting",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.App.Env))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("forced shutdown", zap.Error(err))
	}
	log.Info("server stopped")
}
