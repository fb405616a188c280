// Package server wires the walletlink process: configuration, logging, the
// PostgreSQL pool and migrations, the Redis idempotency store, the receipt
// archive, and the HTTP and gRPC health servers. It handles graceful shutdown.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/walletlink/internal/dbx"
	"github.com/dmitrijs2005/walletlink/internal/idempotency"
	"github.com/dmitrijs2005/walletlink/internal/logging"
	"github.com/dmitrijs2005/walletlink/internal/server/config"
	"github.com/dmitrijs2005/walletlink/internal/server/httpapi"
	"github.com/dmitrijs2005/walletlink/internal/server/receipts"
	"github.com/dmitrijs2005/walletlink/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/walletlink/internal/server/services"
	"github.com/dmitrijs2005/walletlink/internal/sigverify"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	gs "github.com/dmitrijs2005/walletlink/internal/server/grpc"
)

type App struct {
	config *config.Config
	logger logging.Logger
	pool   *dbx.Pool
	redis  *redis.Client
	deps   httpapi.Deps
	health *gs.HealthServer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	pool := &dbx.Pool{}
	db, err := pool.GetOrInit(ctx, dbx.Open(c.DatabaseDSN))
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     c.RedisAddr,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
	})

	archive, err := receipts.New(ctx, receipts.Config{
		Region:       c.S3Region,
		AccessKey:    c.S3AccessKey,
		SecretKey:    c.S3SecretKey,
		Bucket:       c.S3Bucket,
		BaseEndpoint: c.S3BaseEndpoint,
	})
	if err != nil {
		_ = rdb.Close()
		_ = pool.Close()
		return nil, fmt.Errorf("receipt archive init error: %w", err)
	}

	links := services.NewWalletLinkService(db, rm, c, sigverify.DefaultRegistry(), archive, logger)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return &App{
		config: c,
		logger: logger,
		pool:   pool,
		redis:  rdb,
		deps: httpapi.Deps{
			Links:             links,
			Keys:              idempotency.NewGuard(rdb),
			IdempotencyWindow: c.IdempotencyWindow,
			Gates:             c.Gates,
			SecretKey:         []byte(c.SecretKey),
			Logger:            logger,
			Metrics:           httpapi.NewMetrics(reg),
		},
		health: gs.NewHealthServer(c.HealthAddrGRPC, logger),
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

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := httpapi.NewServer(app.config.EndpointAddrHTTP, httpapi.NewRouter(app.deps), app.logger)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.health.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	app.health.SetServing(true)

	wg.Wait()

	app.close(context.Background())
}

func (app *App) close(ctx context.Context) {
	if err := app.redis.Close(); err != nil {
		app.logger.Error(ctx, "redis close error", "error", err)
	}
	if err := app.pool.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
