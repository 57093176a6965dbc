// Package murmurservice wires configuration, storage, services and the HTTP
// surface into the runnable voice-memo service.
package murmurservice

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/murmur-app/murmur/internal/api"
	"github.com/murmur-app/murmur/internal/blobstore"
	"github.com/murmur-app/murmur/internal/config"
	"github.com/murmur-app/murmur/internal/health"
	"github.com/murmur-app/murmur/internal/index"
	"github.com/murmur-app/murmur/internal/logger"
	"github.com/murmur-app/murmur/internal/services"
	"github.com/murmur-app/murmur/internal/sweeper"
)

// Run starts the murmur HTTP service and blocks until shutdown or error.
func Run() error {
	log := logger.New("murmur-service")

	cfg, err := config.New()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return err
	}

	log.Info().
		Int("http_port", cfg.HTTPPort).
		Str("data_dir", cfg.DataDir).
		Str("index_backend", cfg.IndexBackend).
		Msg("Murmur service starting")

	// Create cancellable root context bound to SIGINT/SIGTERM
	ctx, stop := newServerContext()
	defer stop()

	blobs, docs, idx, err := initDependencies(cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = docs.Close() }()

	conv := services.NewConversationService(idx, blobs, log)
	drafts := services.NewDraftService(idx, log)
	router := api.NewRouter(conv, drafts, log)

	// Start health checkers and bind service health
	svcHealth := startHealthCheckers(ctx, cfg, log, blobs, idx)

	// Block startup until dependencies report healthy; fail fast otherwise
	if err := waitUntilHealthy(ctx, cfg, svcHealth); err != nil {
		log.Error().Stack().Err(err).Msg("startup health check failed")
		return err
	}

	// Startup reconciliation is fire-and-forget: the server does not wait
	// for the sweep and a failed sweep never blocks serving.
	if cfg.SweepOnStart {
		sw := sweeper.New(idx, blobs, cfg.RetentionWindow(), log)
		go func() {
			if _, err := sw.Sweep(ctx); err != nil {
				log.Warn().Err(err).Msg("startup sweep failed")
			}
		}()
	}

	server := newHTTPServer(ctx, cfg, router)
	errCh := serveHTTP(server, log, cfg)

	// Graceful shutdown on context cancel or server error
	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down server")
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctxShutdown); err != nil {
			log.Error().Stack().Err(err).Msg("Server forced to shutdown")
			return err
		}
		log.Info().Msg("Server exited")
		return nil
	case err := <-errCh:
		log.Error().Stack().Err(err).Msg("HTTP server failed")
		return err
	}
}

// initDependencies constructs the recording store, the document store and
// the index, failing fast when the data directory is unusable.
func initDependencies(cfg *config.Config, log zerolog.Logger) (*blobstore.FS, index.DocStore, *index.Index, error) {
	blobs, err := blobstore.NewFS(cfg.RecordingsDir(), log)
	if err != nil {
		log.Error().Stack().Err(err).Msg("Recording store unavailable")
		return nil, nil, nil, err
	}

	var docs index.DocStore
	switch cfg.IndexBackend {
	case "sqlite":
		docs, err = index.NewSqliteDoc(cfg.IndexPath())
	default:
		docs, err = index.NewFileDoc(cfg.IndexPath())
	}
	if err != nil {
		log.Error().Stack().Err(err).Msg("Index document store unavailable")
		return nil, nil, nil, err
	}

	return blobs, docs, index.New(docs, blobs, log), nil
}

// startHealthCheckers starts component checkers and service-level aggregator; binds health.
func startHealthCheckers(ctx context.Context, cfg *config.Config, log zerolog.Logger, blobs *blobstore.FS, idx *index.Index) *health.ServiceHealthChecker {
	probeTimeout := time.Duration(cfg.HealthProbeTimeoutSeconds) * time.Second
	interval := time.Duration(cfg.HealthIntervalSeconds) * time.Second

	storeChecker := health.NewPingChecker("recordingstore", health.PingFunc(blobs.Ping), log, probeTimeout)
	go storeChecker.Start(ctx, interval)

	idxChecker := health.NewPingChecker("index", health.PingFunc(idx.Ping), log, probeTimeout)
	go idxChecker.Start(ctx, interval)

	svcHealth := health.NewServiceHealthChecker(log, storeChecker, idxChecker)
	go svcHealth.Start(ctx, interval)
	api.BindServiceHealth(svcHealth.IsHealthy)
	return svcHealth
}

func newHTTPServer(ctx context.Context, cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
}

func serveHTTP(server *http.Server, log zerolog.Logger, cfg *config.Config) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	return errCh
}

// calculateStartupHealthTimeout returns the startup health timeout in seconds,
// calculated as interval*2 with a minimum of 60 seconds.
func calculateStartupHealthTimeout(healthIntervalSeconds int) int {
	timeout := healthIntervalSeconds * 2
	if timeout < 60 {
		return 60
	}
	return timeout
}

// waitUntilHealthy blocks until service health is healthy or the startup window expires.
func waitUntilHealthy(ctx context.Context, cfg *config.Config, svcHealth *health.ServiceHealthChecker) error {
	timeoutSeconds := calculateStartupHealthTimeout(cfg.HealthIntervalSeconds)
	deadline := time.Now().Add(time.Duration(timeoutSeconds) * time.Second)
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()
	for {
		if svcHealth.IsHealthy() {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("startup aborted: dependencies not healthy within %d seconds", timeoutSeconds)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// newServerContext returns a cancellable context that is cancelled on SIGINT/SIGTERM.
func newServerContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
