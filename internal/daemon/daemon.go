package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"reelforge/internal/admission"
	"reelforge/internal/api"
	"reelforge/internal/config"
	"reelforge/internal/ingest"
	"reelforge/internal/keepalive"
	"reelforge/internal/logging"
	"reelforge/internal/metrics"
	"reelforge/internal/pipeline"
	"reelforge/internal/preflight"
	"reelforge/internal/store"
)

// Daemon coordinates the ingestion service and enforces single-instance
// execution.
type Daemon struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   *store.Store
	service *ingest.Service
	metrics *metrics.Pipeline

	httpServer *http.Server
	keepalive  *keepalive.Pinger

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	failed  chan error
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, st *store.Store, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || st == nil || logger == nil {
		return nil, errors.New("daemon requires config, store, and logger")
	}

	collectors := metrics.New()

	adapters, err := buildAdapters(cfg)
	if err != nil {
		return nil, err
	}
	schedule, err := pipeline.ParseSchedule(cfg.Pipeline.Schedule)
	if err != nil {
		return nil, fmt.Errorf("daemon: %w", err)
	}
	orchestrator, err := pipeline.NewOrchestrator(pipeline.Options{
		Adapters: adapters,
		Schedule: schedule,
		Logger:   logger,
		Metrics:  collectors,
	})
	if err != nil {
		return nil, err
	}

	queue, err := admission.New(cfg.Pipeline.MaxConcurrentJobs, func(inFlight, depth int) {
		collectors.SetInFlight(inFlight)
		collectors.SetQueueDepth(depth)
	})
	if err != nil {
		return nil, err
	}

	service, err := ingest.NewService(ingest.Options{
		Queue:        queue,
		Orchestrator: orchestrator,
		Store:        st,
		StagingRoot:  cfg.Paths.StagingDir,
		Logger:       logger,
	})
	if err != nil {
		return nil, err
	}

	apiServer, err := api.NewServer(api.Options{
		Ingestor:    service,
		Results:     st,
		Metrics:     collectors,
		Logger:      logger,
		Token:       cfg.Paths.APIToken,
		Development: cfg.Development,
	})
	if err != nil {
		return nil, err
	}

	d := &Daemon{
		cfg:     cfg,
		logger:  logging.NewComponentLogger(logger, "daemon"),
		store:   st,
		service: service,
		metrics: collectors,
		httpServer: &http.Server{
			Addr:              cfg.Paths.APIBind,
			Handler:           apiServer.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		},
		lockPath: filepath.Join(cfg.Paths.DataDir, "reelforged.lock"),
		failed:   make(chan error, 1),
	}
	d.lock = flock.New(d.lockPath)
	if cfg.KeepAlive.Enabled {
		d.keepalive = keepalive.New(cfg.KeepAlive.URL,
			time.Duration(cfg.KeepAlive.IntervalSeconds)*time.Second, logger)
	}
	return d, nil
}

// Start runs preflight, acquires the instance lock, and begins serving.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	checks := preflight.RunAll(ctx, d.cfg)
	for _, check := range checks {
		if check.Passed {
			d.logger.Debug("preflight check passed",
				logging.String("check", check.Name),
				logging.String("detail", check.Detail),
			)
			continue
		}
		d.logger.Error("preflight check failed",
			logging.String("check", check.Name),
			logging.String("detail", check.Detail),
		)
	}
	if !preflight.AllPassed(checks) {
		return errors.New("preflight checks failed")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another reelforge daemon instance is already running")
	}

	d.serveHTTP()
	if d.keepalive != nil {
		d.keepalive.Start()
	}

	d.running.Store(true)
	d.logger.Info("daemon started",
		logging.String("bind", d.cfg.Paths.APIBind),
		logging.String("schedule", d.cfg.Pipeline.Schedule),
		logging.Int("max_concurrent_jobs", d.cfg.Pipeline.MaxConcurrentJobs),
		logging.String("lock", d.lockPath),
	)
	return nil
}

// serveHTTP runs the API server in the background. An unexpected exit lands on
// the failed channel so the process entry point can terminate instead of
// blocking forever on a daemon that no longer serves.
func (d *Daemon) serveHTTP() {
	go func() {
		err := d.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			d.logger.Error("http server stopped", logging.Error(err))
			select {
			case d.failed <- err:
			default:
			}
		}
	}()
}

// Failed reports an unrecoverable serving error after Start has returned.
func (d *Daemon) Failed() <-chan error {
	return d.failed
}

// Stop shuts the HTTP server down gracefully and releases the instance lock.
// In-flight jobs finish; waiting submissions are dropped with the server.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.keepalive != nil {
		d.keepalive.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := d.httpServer.Shutdown(shutdownCtx); err != nil {
		d.logger.Warn("http shutdown", logging.Error(err))
	}

	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}
