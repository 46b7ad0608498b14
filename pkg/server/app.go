package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"TopoPull/internal/handler/ws"
	"TopoPull/internal/services/tda"
	"TopoPull/internal/usecase"
	xcache "TopoPull/pkg/cache"
	pkgch "TopoPull/pkg/clickhouse"
	"TopoPull/pkg/config"
	xhttp "TopoPull/pkg/http"
	applogger "TopoPull/pkg/logger"
)

// App encapsulates the entire application lifecycle: one batch pipeline
// run over the configured input, plus the HTTP surface for inline
// computes, stored-run queries, and the live stream.
type App struct {
	cfg     *config.Config
	l       *applogger.Logger
	runner  *usecase.FeatureRunner
	pipe    *tda.Pipeline
	handler xhttp.Handler

	httpServer *xhttp.Server
	chClient   *pkgch.Client
	hub        *ws.Hub
	cache      xcache.Service
}

// New creates a new App instance with all dependencies. chClient, hub,
// and cache may be nil when the corresponding feature is disabled.
func New(
	cfg *config.Config,
	l *applogger.Logger,
	runner *usecase.FeatureRunner,
	pipe *tda.Pipeline,
	handler xhttp.Handler,
	chClient *pkgch.Client,
	hub *ws.Hub,
	cache xcache.Service,
) *App {
	return &App{
		cfg:      cfg,
		l:        l,
		runner:   runner,
		pipe:     pipe,
		handler:  handler,
		chClient: chClient,
		hub:      hub,
		cache:    cache,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithRequestMetrics(a.l, time.Second),
	)
	if err := a.httpServer.Start(); err != nil {
		a.l.Error("http server start error", applogger.Error(err))
		return err
	}

	// The batch run processes the configured input once; the HTTP API
	// stays up for inline computes and run queries afterwards.
	go func() {
		summary, err := a.runner.RunBatch(ctx, a.pipe)
		if err != nil {
			a.l.Error("batch pipeline failed", applogger.Error(err))
			return
		}
		a.l.Info("batch pipeline complete",
			applogger.String("run_id", summary.RunID),
			applogger.Int("windows", summary.Windows),
			applogger.Int("rows", summary.Rows),
		)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.l.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.l.Error("http shutdown error", applogger.Error(err))
	}

	if a.hub != nil {
		if err := a.hub.Close(); err != nil {
			a.l.Warn("stream hub close error", applogger.Error(err))
		}
	}

	if err := a.runner.Close(); err != nil {
		a.l.Warn("runner close error", applogger.Error(err))
	}

	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.l.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.l.Warn("cache close error", applogger.Error(err))
		}
	}

	a.l.Info("shutdown complete")
	return nil
}
