package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"range-breakout/api"
	"range-breakout/internal/config"
	"range-breakout/internal/engine"
	"range-breakout/internal/infrastructure"
	"range-breakout/internal/push"
	"range-breakout/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// App defines the application structure and its dependencies
type App struct {
	Config      *config.Config
	Logger      *zap.Logger
	DB          *pgxpool.Pool
	NC          *nats.Conn
	JS          nats.JetStreamContext
	Cache       storage.ReportCache
	Publisher   *ReportPublisher
	Pool        *engine.WorkerPool
	PushGateway *push.PushGateway
	HTTPServer  *http.Server

	closers []func() error
}

// NewApp creates a new application instance
func NewApp() (*App, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := infrastructure.Init(cfg.LogLevel); err != nil {
		return nil, err
	}
	logger := infrastructure.Logger

	return &App{
		Config: &cfg,
		Logger: logger,
	}, nil
}

// Init initializes all application components
func (a *App) Init(ctx context.Context) error {
	// 1. Database
	dbPool, err := pgxpool.Connect(ctx, a.Config.DB_DSN)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	a.DB = dbPool

	if err := a.initDatabase(ctx); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	// 2. NATS
	nc, js, err := infrastructure.InitNATS(a.Config.NatsURL, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}
	a.NC = nc
	a.JS = js

	// 3. Report cache
	a.Cache = a.initCache(ctx)

	// 4. Services
	a.Publisher = NewReportPublisher(js, a.Logger)
	a.Pool = engine.NewWorkerPool(a.Config.SweepWorkers, a.Logger)
	a.PushGateway = push.NewPushGateway(js, a.Logger)

	return nil
}

// initCache prefers redis and falls back to process memory when it is not
// configured or not reachable.
func (a *App) initCache(ctx context.Context) storage.ReportCache {
	if a.Config.RedisAddr == "" {
		a.Logger.Info("REDIS_ADDR not set, using in-memory report cache")
		return storage.NewMemoryCache(a.Config.ReportTTL)
	}

	rc := storage.NewRedisCache(a.Config.RedisAddr, a.Config.RedisPassword, a.Config.RedisDB, a.Config.ReportTTL)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rc.Ping(pingCtx); err != nil {
		a.Logger.Warn("redis unreachable, using in-memory report cache", zap.String("addr", a.Config.RedisAddr), zap.Error(err))
		rc.Close()
		return storage.NewMemoryCache(a.Config.ReportTTL)
	}
	a.closers = append(a.closers, rc.Close)
	return rc
}

// Run starts the application services and the HTTP server
func (a *App) Run(ctx context.Context) error {
	// Start Persistence Service
	runSaver := storage.NewRunSaver(a.DB, a.Logger)
	if err := a.startPersistenceService(ctx, runSaver); err != nil {
		return fmt.Errorf("failed to start persistence service: %w", err)
	}

	// Setup HTTP Server
	a.HTTPServer = &http.Server{
		Addr:    ":" + a.Config.Port,
		Handler: a.setupRouter(),
	}

	go func() {
		a.Logger.Info("starting http server", zap.String("port", a.Config.Port))
		if err := a.HTTPServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.Logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	return a.waitForShutdown()
}

// waitForShutdown handles graceful shutdown signals
func (a *App) waitForShutdown() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	a.Logger.Info("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.HTTPServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil {
			a.Logger.Warn("close failed", zap.Error(err))
		}
	}
	a.NC.Close()
	a.DB.Close()
	_ = a.Logger.Sync()

	return nil
}

// initDatabase runs the database initialization script
func (a *App) initDatabase(ctx context.Context) error {
	sqlFile := "scripts/init.sql"
	content, err := os.ReadFile(sqlFile)
	if err != nil {
		return fmt.Errorf("failed to read init script: %w", err)
	}

	_, err = a.DB.Exec(ctx, string(content))
	if err != nil {
		return fmt.Errorf("failed to execute init script: %w", err)
	}

	a.Logger.Info("database initialized successfully")
	return nil
}

// setupRouter configures the Gin router and its routes
func (a *App) setupRouter() *gin.Engine {
	r := gin.Default()

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	apiHandler := api.NewHandler(
		engine.NewDataLoader(a.DB),
		a.Cache,
		a.Publisher,
		a.Pool,
		api.Options{
			Params:     a.Config.StrategyParams(),
			Settings:   a.Config.BacktestSettings(),
			JWTSecret:  a.Config.JWTSecret,
			APIKeyHash: a.Config.APIKeyHash,
		},
		a.Logger,
	)
	apiHandler.Routes(r)

	r.GET("/ws", func(c *gin.Context) {
		a.PushGateway.ServeHTTP(c.Writer, c.Request)
	})

	return r
}
