// Package server assembles notesum: it opens the database, runs migrations,
// builds the services and runs the HTTP API next to the gRPC health probe
// until the process is told to stop.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/notesum/internal/logging"
	"github.com/dmitrijs2005/notesum/internal/server/config"
	"github.com/dmitrijs2005/notesum/internal/server/export"
	"github.com/dmitrijs2005/notesum/internal/server/httpapi"
	"github.com/dmitrijs2005/notesum/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/notesum/internal/server/services"
	"github.com/dmitrijs2005/notesum/internal/server/summarizer"
	"github.com/gin-gonic/gin"

	gs "github.com/dmitrijs2005/notesum/internal/server/grpc"
)

// openDB is a seam for tests.
var openDB = func(driver, dsn string) (*sql.DB, error) {
	return sql.Open(driver, dsn)
}

type App struct {
	config         *config.Config
	logger         logging.Logger
	db             *sql.DB
	userService    *services.UserService
	summaryService *services.SummaryService
	summarizer     httpapi.Summarizer
	limiter        *httpapi.RateLimiter
	metrics        *httpapi.Metrics
}

func NewApp(c *config.Config) (*App, error) {

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := logging.NewLogger(c.LogLevel, c.LogFormat, os.Stdout)

	db, err := openDB("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.DatabaseConnectTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db connect error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db migration error: %w", err)
	}

	var archiver services.Archiver
	if c.S3Enabled() {
		archiver = export.NewS3Archiver(c)
	} else {
		logger.Info(ctx, "S3 storage is not configured, archiving disabled")
	}

	var sum httpapi.Summarizer
	if c.LLMEnabled() {
		sum = summarizer.New(c, logger)
	} else {
		logger.Info(ctx, "LLM API key is not set, summarizer disabled")
	}

	return &App{
		config:         c,
		logger:         logger,
		db:             db,
		userService:    services.NewUserService(db, rm, c),
		summaryService: services.NewSummaryService(db, rm, archiver),
		summarizer:     sum,
		limiter:        httpapi.NewRateLimiter(c.RateLimitRPS, c.RateLimitBurst),
		metrics:        httpapi.NewMetrics(),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) router() (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)

	return httpapi.NewRouter(httpapi.Deps{
		Users:          app.userService,
		Summaries:      app.summaryService,
		Summarizer:     app.summarizer,
		Limiter:        app.limiter,
		Metrics:        app.metrics,
		AllowedOrigins: app.config.AllowedOrigins,
		TrustedProxies: app.config.TrustedProxies,
		Logger:         app.logger,
	})
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	router, err := app.router()
	if err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
		return
	}

	s := httpapi.NewServer(app.config.EndpointAddrHTTP, router, app.logger)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if app.config.EndpointAddrGRPC == "" {
		app.logger.Info(ctx, "gRPC health endpoint is disabled")
		return
	}

	s := gs.NewHealthServer(app.config.EndpointAddrGRPC, app.logger, app.db, app.config.HealthCheckInterval)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx is cancelled or a termination signal arrives.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(3)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.limiter.Run(ctx)
	}()

	wg.Wait()

	app.logger.Info(ctx, "App stopped")
}

// Close releases the database pool.
func (app *App) Close() error {
	return app.db.Close()
}
