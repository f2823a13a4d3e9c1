// Package server wires the GoalKeeper server: storage backend, session
// revocation store, event publisher, tracing and the HTTP API. It handles
// graceful shutdown on SIGINT, SIGTERM and SIGQUIT.
package server

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/goalkeeper/internal/logging"
	"github.com/dmitrijs2005/goalkeeper/internal/server/config"
	"github.com/dmitrijs2005/goalkeeper/internal/server/events"
	"github.com/dmitrijs2005/goalkeeper/internal/server/httpapi"
	"github.com/dmitrijs2005/goalkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/goalkeeper/internal/server/repositories/memory"
	"github.com/dmitrijs2005/goalkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/goalkeeper/internal/server/services"
	"github.com/dmitrijs2005/goalkeeper/internal/server/sessions"
	"github.com/dmitrijs2005/goalkeeper/internal/server/telemetry"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	repomanager repomanager.RepositoryManager
	revocations sessions.RevocationStore
	publisher   events.Publisher
	shutdownTel telemetry.ShutdownFunc
	http        *httpapi.Server

	closers []io.Closer
}

// NewApp opens every backend named by c. Empty endpoints select the
// in-process alternatives.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(c.LogFormat, os.Stdout, c.Debug)
	app := &App{config: c, logger: logger}

	if err := app.initStore(ctx); err != nil {
		return nil, err
	}
	if err := app.initRevocations(ctx); err != nil {
		app.close(ctx)
		return nil, err
	}
	if err := app.initEvents(); err != nil {
		app.close(ctx)
		return nil, err
	}

	shutdown, err := telemetry.Init(ctx, httpapi.ServiceName, c.OTLPEndpoint)
	if err != nil {
		app.close(ctx)
		return nil, fmt.Errorf("telemetry init error: %w", err)
	}
	app.shutdownTel = shutdown

	met := metrics.New()
	ids := services.NewIdentityService(app.repomanager, c, logger, met, app.publisher)
	gs := services.NewGoalService(app.repomanager, c, logger, met, app.publisher)
	app.http = httpapi.NewServer(c, logger, ids, gs, app.revocations, met, app.repomanager)

	return app, nil
}

func (app *App) initStore(ctx context.Context) error {
	if app.config.DatabaseDSN == "" {
		app.logger.Warn(ctx, "no database DSN configured, using the in-memory store")
		app.repomanager = memory.NewManager()
		return nil
	}

	pm, err := repomanager.OpenPostgres(ctx, app.config.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("db init error: %w", err)
	}
	if err := pm.RunMigrations(ctx); err != nil {
		_ = pm.Close()
		return fmt.Errorf("db migration error: %w", err)
	}
	app.repomanager = pm
	app.closers = append(app.closers, pm)
	return nil
}

func (app *App) initRevocations(ctx context.Context) error {
	if app.config.RedisAddr == "" {
		app.revocations = sessions.NewMemoryStore()
		return nil
	}
	rs, err := sessions.OpenRedis(ctx, app.config.RedisAddr)
	if err != nil {
		return err
	}
	app.revocations = rs
	app.closers = append(app.closers, rs)
	return nil
}

func (app *App) initEvents() error {
	if app.config.NATSURL == "" {
		app.publisher = events.Nop{}
		return nil
	}
	p, err := events.NewNATSPublisher(app.config.NATSURL)
	if err != nil {
		return fmt.Errorf("nats connect error: %w", err)
	}
	app.publisher = p
	return nil
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
	if err := app.http.Run(ctx); err != nil {
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

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	app.close(context.WithoutCancel(ctx))
	app.logger.Info(ctx, "App stopped")
}

func (app *App) close(ctx context.Context) {
	if app.publisher != nil {
		app.publisher.Close()
	}
	if app.shutdownTel != nil {
		if err := app.shutdownTel(ctx); err != nil {
			app.logger.Warn(ctx, "telemetry shutdown", "error", err)
		}
	}
	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i].Close(); err != nil {
			app.logger.Warn(ctx, "close error", "error", err)
		}
	}
}
